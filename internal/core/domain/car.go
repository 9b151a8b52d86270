package domain

import "time"

type FuelType string

const (
	FuelPetrol   FuelType = "Petrol"
	FuelDiesel   FuelType = "Diesel"
	FuelElectric FuelType = "Electric"
	FuelHybrid   FuelType = "Hybrid"
	FuelCNG      FuelType = "CNG"
)

// FuelAll is the wildcard fuel selector; it is not a valid FuelType for a car.
const FuelAll = "All"

// PlaceholderImageURL is stored for cars created without an image.
const PlaceholderImageURL = "https://images.unsplash.com/photo-1494976388531-d1058494cdd8?w=800&q=80"

var fuelTypes = []FuelType{FuelPetrol, FuelDiesel, FuelElectric, FuelHybrid, FuelCNG}

// FuelTypes returns the enumerated fuel types in display order.
func FuelTypes() []FuelType {
	out := make([]FuelType, len(fuelTypes))
	copy(out, fuelTypes)
	return out
}

// FuelSelectors returns the selector values offered to visitors, wildcard first.
func FuelSelectors() []string {
	out := []string{FuelAll}
	for _, f := range fuelTypes {
		out = append(out, string(f))
	}
	return out
}

func (f FuelType) Valid() bool {
	for _, known := range fuelTypes {
		if f == known {
			return true
		}
	}
	return false
}

type Car struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Price     int64     `json:"price" yaml:"price"` // whole rupees
	Model     string    `json:"model" yaml:"model"`
	FuelType  FuelType  `json:"fuelType" yaml:"fuelType"`
	ImageURL  string    `json:"imageUrl" yaml:"imageUrl"`
	CreatedAt time.Time `json:"createdAt" yaml:"-"`
}
