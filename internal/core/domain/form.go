package domain

import (
	"fmt"
	"io"
	"path"
	"strings"
)

const MaxImageSize = 5 << 20

// ImageUpload is an image chosen in the admin form that has not been uploaded yet.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.ReadSeeker
}

// CarFormData is the transient input of the admin create form.
type CarFormData struct {
	Name     string
	Price    string
	Model    string
	FuelType string
	Image    *ImageUpload

	// SubmissionID deduplicates repeated submits of the same form.
	SubmissionID string
}

// CheckRequired verifies name, price and model are present. Emptiness is the
// only check here; value checks happen in Car.
func (f CarFormData) CheckRequired() error {
	for _, field := range []struct{ name, value string }{
		{"name", f.Name},
		{"price", f.Price},
		{"model", f.Model},
	} {
		if strings.TrimSpace(field.value) == "" {
			return invalid(field.name, "Please fill in all required fields")
		}
	}
	return nil
}

// Car builds the record to store from the form. ImageURL is left empty.
func (f CarFormData) Car() (Car, error) {
	if err := f.CheckRequired(); err != nil {
		return Car{}, err
	}

	price, err := ParsePrice(f.Price)
	if err != nil {
		return Car{}, err
	}

	fuel := FuelType(f.FuelType)
	if f.FuelType == "" {
		fuel = FuelPetrol
	}
	if !fuel.Valid() {
		return Car{}, invalid("fuelType", fmt.Sprintf("unknown fuel type %q", f.FuelType))
	}

	if f.Image != nil {
		if err := f.Image.check(); err != nil {
			return Car{}, err
		}
	}

	return Car{
		Name:     strings.TrimSpace(f.Name),
		Price:    price,
		Model:    strings.TrimSpace(f.Model),
		FuelType: fuel,
	}, nil
}

func (u *ImageUpload) check() error {
	if u.Body == nil {
		return invalid("image", "image has no content")
	}
	if !strings.HasPrefix(u.ContentType, "image/") {
		return invalid("image", "only image files can be uploaded")
	}
	if u.Size > MaxImageSize {
		return invalid("image", "image must be 5MB or smaller")
	}
	return nil
}

// BlobKey is the storage key for an image uploaded at the given epoch millis.
func (u *ImageUpload) BlobKey(epochMillis int64) string {
	return fmt.Sprintf("cars/%d_%s", epochMillis, path.Base(u.Filename))
}
