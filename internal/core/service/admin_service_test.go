package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cartec/catalog/internal/core/domain"
	"github.com/cartec/catalog/internal/testutil"
)

type adminFixture struct {
	repo    *testutil.MemoryCarRepository
	cache   *testutil.MemoryCache
	catalog *Catalog
	admin   *AdminService
}

func newAdminFixture(cars ...domain.Car) *adminFixture {
	repo := testutil.NewMemoryCarRepository(cars...)
	cache := testutil.NewMemoryCache()
	carService := NewCarService(repo, &testutil.FakeBlobStorage{}, zap.NewNop())
	catalog := NewCatalog(carService, zap.NewNop())
	return &adminFixture{
		repo:    repo,
		cache:   cache,
		catalog: catalog,
		admin:   NewAdminService(carService, cache, catalog, zap.NewNop()),
	}
}

func TestSubmitNewCar_RoundTrip(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()

	form := domain.CarFormData{Name: "Kia EV6", Price: "6000000", Model: "2024 GT-Line", FuelType: "Electric"}
	id, err := f.admin.SubmitNewCar(ctx, adminCapability(t), form)
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.Publishes)

	require.NoError(t, f.catalog.Refetch(ctx))
	view := f.catalog.Snapshot()
	require.Len(t, view.Cars, 1)
	got := view.Cars[0]
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "Kia EV6", got.Name)
	assert.Equal(t, int64(6000000), got.Price)
	assert.Equal(t, "2024 GT-Line", got.Model)
	assert.Equal(t, domain.FuelElectric, got.FuelType)
}

func TestSubmitNewCar_RefreshesCatalog(t *testing.T) {
	f := newAdminFixture(domain.Car{ID: "a", Name: "A", FuelType: domain.FuelCNG})
	ctx := context.Background()
	require.NoError(t, f.catalog.Refetch(ctx))

	_, err := f.admin.SubmitNewCar(ctx, adminCapability(t),
		domain.CarFormData{Name: "B", Price: "1", Model: "2020", FuelType: "Diesel"})
	require.NoError(t, err)

	assert.Len(t, f.catalog.Snapshot().Cars, 2)
}

func TestSubmitNewCar_EmptyNameRejected(t *testing.T) {
	f := newAdminFixture()

	_, err := f.admin.SubmitNewCar(context.Background(), adminCapability(t),
		domain.CarFormData{Name: "", Price: "500", Model: "2024", FuelType: "Petrol"})

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "name", ve.Field)
	assert.Zero(t, f.repo.Creates)
	assert.Zero(t, f.cache.Publishes)
}

func TestSubmitNewCar_RequiresCapability(t *testing.T) {
	f := newAdminFixture()

	_, err := f.admin.SubmitNewCar(context.Background(), domain.AdminCapability{},
		domain.CarFormData{Name: "A", Price: "500", Model: "2024", FuelType: "Petrol"})
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)
	assert.Zero(t, f.repo.Creates)
}

func TestSubmitNewCar_DuplicateSubmission(t *testing.T) {
	f := newAdminFixture()
	form := domain.CarFormData{Name: "A", Price: "500", Model: "2024", FuelType: "Petrol", SubmissionID: "form-1"}

	_, err := f.admin.SubmitNewCar(context.Background(), adminCapability(t), form)
	require.NoError(t, err)

	_, err = f.admin.SubmitNewCar(context.Background(), adminCapability(t), form)
	assert.ErrorIs(t, err, domain.ErrDuplicateSubmission)
	assert.Equal(t, 1, f.repo.Creates)
}

func TestSubmitNewCar_StoreFailure(t *testing.T) {
	f := newAdminFixture()
	f.repo.CreateErr = testutil.ErrUnavailable

	_, err := f.admin.SubmitNewCar(context.Background(), adminCapability(t),
		domain.CarFormData{Name: "A", Price: "500", Model: "2024", FuelType: "Petrol"})
	assert.ErrorIs(t, err, domain.ErrSubmissionFailed)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.Zero(t, f.cache.Publishes)
}

func TestSubmitNewCar_RetryAfterStoreFailure(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()
	form := domain.CarFormData{Name: "A", Price: "500", Model: "2024", FuelType: "Petrol", SubmissionID: "form-1"}

	f.repo.CreateErr = testutil.ErrUnavailable
	_, err := f.admin.SubmitNewCar(ctx, adminCapability(t), form)
	require.ErrorIs(t, err, domain.ErrSubmissionFailed)

	f.repo.CreateErr = nil
	id, err := f.admin.SubmitNewCar(ctx, adminCapability(t), form)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, 1, f.repo.Creates)

	_, err = f.admin.SubmitNewCar(ctx, adminCapability(t), form)
	assert.ErrorIs(t, err, domain.ErrDuplicateSubmission)
	assert.Equal(t, 1, f.repo.Creates)
}

func TestSubmitNewCar_IdempotencyStoreDown(t *testing.T) {
	f := newAdminFixture()
	f.cache.Err = testutil.ErrUnavailable

	_, err := f.admin.SubmitNewCar(context.Background(), adminCapability(t),
		domain.CarFormData{Name: "A", Price: "500", Model: "2024", FuelType: "Petrol", SubmissionID: "s"})
	assert.ErrorIs(t, err, domain.ErrSubmissionFailed)
	assert.Zero(t, f.repo.Creates)
}

func TestRequestDelete(t *testing.T) {
	ctx := context.Background()
	car := domain.Car{ID: "x", Name: "Jaguar F-Type", FuelType: domain.FuelPetrol}

	t.Run("declined", func(t *testing.T) {
		f := newAdminFixture(car)
		var prompt string
		err := f.admin.RequestDelete(ctx, adminCapability(t), "x", car.Name,
			ConfirmFunc(func(_ context.Context, p string) bool { prompt = p; return false }))

		assert.ErrorIs(t, err, domain.ErrDeletionCancelled)
		assert.Equal(t, `Are you sure you want to delete "Jaguar F-Type"?`, prompt)
		stored, _ := f.repo.GetCar(ctx, "x")
		assert.NotNil(t, stored)
	})

	t.Run("confirmed", func(t *testing.T) {
		f := newAdminFixture(car)
		err := f.admin.RequestDelete(ctx, adminCapability(t), "x", car.Name,
			ConfirmFunc(func(context.Context, string) bool { return true }))

		require.NoError(t, err)
		stored, _ := f.repo.GetCar(ctx, "x")
		assert.Nil(t, stored)
		assert.Equal(t, 1, f.cache.Publishes)
		assert.Equal(t, StateReady, f.catalog.Snapshot().State)
	})

	t.Run("store failure", func(t *testing.T) {
		f := newAdminFixture(car)
		f.repo.DeleteErr = testutil.ErrUnavailable
		err := f.admin.RequestDelete(ctx, adminCapability(t), "x", car.Name,
			ConfirmFunc(func(context.Context, string) bool { return true }))

		assert.ErrorIs(t, err, domain.ErrDeletionFailed)
		assert.Zero(t, f.cache.Publishes)
	})

	t.Run("no capability", func(t *testing.T) {
		f := newAdminFixture(car)
		asked := false
		err := f.admin.RequestDelete(ctx, domain.AdminCapability{}, "x", car.Name,
			ConfirmFunc(func(context.Context, string) bool { asked = true; return true }))

		assert.ErrorIs(t, err, domain.ErrNotAuthorized)
		assert.False(t, asked)
	})
}
