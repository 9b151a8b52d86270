package domain

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed samples.yaml
var samplesYAML []byte

// sampleEpoch is the CreatedAt of the first built-in sample. Later samples
// are one second older each, so newest-first order is the file order.
var sampleEpoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

var sampleCars = mustLoadSamples(samplesYAML)

func mustLoadSamples(data []byte) []Car {
	cars, err := loadSamples(data)
	if err != nil {
		panic(fmt.Sprintf("domain: built-in sample cars: %v", err))
	}
	return cars
}

func loadSamples(data []byte) ([]Car, error) {
	var cars []Car
	if err := yaml.Unmarshal(data, &cars); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(cars))
	for i := range cars {
		c := &cars[i]
		if c.ID == "" || seen[c.ID] {
			return nil, fmt.Errorf("sample %d: missing or duplicate id %q", i, c.ID)
		}
		if !c.FuelType.Valid() {
			return nil, fmt.Errorf("sample %s: unknown fuel type %q", c.ID, c.FuelType)
		}
		seen[c.ID] = true
		c.CreatedAt = sampleEpoch.Add(-time.Duration(i) * time.Second)
	}
	return cars, nil
}

// SampleCars returns a fresh copy of the fallback sample set.
func SampleCars() []Car {
	out := make([]Car, len(sampleCars))
	copy(out, sampleCars)
	return out
}

// SampleCar looks up a fallback sample by id.
func SampleCar(id string) (Car, bool) {
	for _, c := range sampleCars {
		if c.ID == id {
			return c, true
		}
	}
	return Car{}, false
}
