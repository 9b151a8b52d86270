package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cartec/catalog/internal/core/domain"
	"github.com/cartec/catalog/internal/port"
)

// CarService fronts the record store. Reads never fail: store errors and an
// empty store fall back to the built-in sample set and are only logged.
type CarService struct {
	repo   port.CarRepository
	blobs  port.BlobStorage
	logger *zap.Logger
	now    func() time.Time

	// timeout bounds each record store call; zero means none
	timeout time.Duration
}

func NewCarService(repo port.CarRepository, blobs port.BlobStorage, logger *zap.Logger) *CarService {
	return &CarService{
		repo:   repo,
		blobs:  blobs,
		logger: logger,
		now:    time.Now,
	}
}

// WithStoreTimeout bounds every record store call by d. A timed out read
// falls back like any other store failure.
func (s *CarService) WithStoreTimeout(d time.Duration) *CarService {
	s.timeout = d
	return s
}

func (s *CarService) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// ListCars returns stored cars newest first, or the sample set when the store
// is unreachable or empty. The result is never empty.
func (s *CarService) ListCars(ctx context.Context) []domain.Car {
	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	cars, err := s.repo.ListCars(ctx)
	if err != nil {
		s.logger.Warn("listing cars failed, serving sample cars", zap.Error(err))
		return domain.SampleCars()
	}
	if len(cars) == 0 {
		s.logger.Debug("record store is empty, serving sample cars")
		return domain.SampleCars()
	}

	for _, c := range cars {
		if !c.FuelType.Valid() {
			s.logger.Warn("stored car has unknown fuel type",
				zap.String("id", c.ID), zap.String("fuel_type", string(c.FuelType)))
		}
	}
	return cars
}

// GetCar looks a car up in the store, then in the sample set.
func (s *CarService) GetCar(ctx context.Context, id string) (domain.Car, error) {
	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	car, err := s.repo.GetCar(ctx, id)
	if err != nil {
		s.logger.Warn("fetching car failed, checking sample cars", zap.String("id", id), zap.Error(err))
	}
	if err == nil && car != nil {
		return *car, nil
	}

	if sample, ok := domain.SampleCar(id); ok {
		return sample, nil
	}
	return domain.Car{}, fmt.Errorf("car %q: %w", id, domain.ErrNotFound)
}

// CreateCar uploads the form image if any, then stores the car and returns
// its new id.
func (s *CarService) CreateCar(ctx context.Context, capability domain.AdminCapability, form domain.CarFormData) (string, error) {
	if !capability.Valid() {
		return "", domain.ErrNotAuthorized
	}

	car, err := form.Car()
	if err != nil {
		return "", err
	}

	car.ImageURL = domain.PlaceholderImageURL
	if form.Image != nil {
		key := form.Image.BlobKey(s.now().UnixMilli())
		url, err := s.blobs.Upload(ctx, key, form.Image.ContentType, form.Image.Body)
		if err != nil {
			return "", fmt.Errorf("upload %s: %w: %w", key, domain.ErrUploadFailure, err)
		}
		car.ImageURL = url
	}

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()

	id, err := s.repo.CreateCar(storeCtx, car)
	if err != nil {
		return "", fmt.Errorf("create car: %w: %w", domain.ErrStoreUnavailable, err)
	}

	s.logger.Info("car created",
		zap.String("id", id), zap.String("name", car.Name), zap.String("by", capability.Holder().Email))
	return id, nil
}

// DeleteCar removes a stored car. The uploaded image, if any, is left in
// blob storage.
func (s *CarService) DeleteCar(ctx context.Context, capability domain.AdminCapability, id string) error {
	if !capability.Valid() {
		return domain.ErrNotAuthorized
	}

	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	if err := s.repo.DeleteCar(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("delete car %q: %w", id, err)
		}
		return fmt.Errorf("delete car %q: %w: %w", id, domain.ErrStoreUnavailable, err)
	}

	s.logger.Info("car deleted", zap.String("id", id), zap.String("by", capability.Holder().Email))
	return nil
}
