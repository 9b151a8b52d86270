package port

import (
	"context"

	"github.com/cartec/catalog/internal/core/domain"
)

type CarRepository interface {
	// ListCars returns every stored car, newest first
	ListCars(ctx context.Context) ([]domain.Car, error)

	// GetCar returns nil, nil when no car has the id
	GetCar(ctx context.Context, id string) (*domain.Car, error)

	// CreateCar stores a car and returns the id assigned by the store.
	// ID and CreatedAt of the argument are ignored.
	CreateCar(ctx context.Context, car domain.Car) (string, error)

	// DeleteCar removes a car, returning domain.ErrNotFound if it does not exist
	DeleteCar(ctx context.Context, id string) error
}
