package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/cartec/catalog/internal/core/domain"
)

type CatalogState int

const (
	StateIdle CatalogState = iota
	StateLoading
	StateReady
)

func (s CatalogState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "idle"
	}
}

// CarLister is the read side of CarService.
type CarLister interface {
	ListCars(ctx context.Context) []domain.Car
}

// CatalogView is a point-in-time copy of the catalog.
type CatalogView struct {
	State CatalogState
	Cars  []domain.Car
	Err   error
}

// Catalog holds the current car list. Each refetch replaces the whole list;
// a result is dropped if its context was cancelled or a newer refetch began.
type Catalog struct {
	source CarLister
	logger *zap.Logger

	mu         sync.RWMutex
	state      CatalogState
	cars       []domain.Car
	err        error
	generation uint64
}

func NewCatalog(source CarLister, logger *zap.Logger) *Catalog {
	return &Catalog{source: source, logger: logger}
}

// Refetch loads the list from the source. It returns ctx.Err() when the
// result was discarded because ctx ended first.
func (c *Catalog) Refetch(ctx context.Context) error {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.state = StateLoading
	c.mu.Unlock()

	cars := c.source.ListCars(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		// a newer refetch owns the state now
		return nil
	}

	if err := ctx.Err(); err != nil {
		c.err = err
		c.state = StateIdle
		if c.cars != nil {
			c.state = StateReady
		}
		c.logger.Debug("catalog refetch abandoned", zap.Error(err))
		return err
	}

	c.cars = cars
	c.err = nil
	c.state = StateReady
	return nil
}

func (c *Catalog) Snapshot() CatalogView {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cars := make([]domain.Car, len(c.cars))
	copy(cars, c.cars)
	return CatalogView{State: c.state, Cars: cars, Err: c.err}
}

// Search filters the current list.
func (c *Catalog) Search(query, fuel string) []domain.Car {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return domain.Filter(c.cars, query, fuel)
}

// Watch refetches once per value received on changes until it is closed or
// ctx is done.
func (c *Catalog) Watch(ctx context.Context, changes <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
			if err := c.Refetch(ctx); err != nil {
				c.logger.Debug("catalog refetch after change", zap.Error(err))
			}
		}
	}
}
