package service_test

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cartec/catalog/internal/adapter/storage"
	"github.com/cartec/catalog/internal/core/domain"
	"github.com/cartec/catalog/internal/core/service"
	"github.com/cartec/catalog/internal/testutil"
)

type instance struct {
	catalog *service.Catalog
	admin   *service.AdminService
}

type testEnv struct {
	redis *redis.Client
	mysql *sql.DB
	cache *storage.RedisAdapter
	db    *storage.MySQLAdapter
}

func setupTestEnv(t *testing.T) *testEnv {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	mysqlDSN := os.Getenv("MYSQL_TEST_DSN")
	if mysqlDSN == "" {
		mysqlDSN = "root:root@tcp(localhost:3306)/cartec_test?parseTime=true"
	}

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		rdb.Close()
		t.Skipf("Redis not available: %v", err)
	}

	db, err := sql.Open("mysql", mysqlDSN)
	if err != nil {
		rdb.Close()
		t.Skipf("MySQL not available: %v", err)
	}
	if err := db.Ping(); err != nil {
		rdb.Close()
		db.Close()
		t.Skipf("MySQL not available: %v", err)
	}
	t.Cleanup(func() {
		rdb.Close()
		db.Close()
	})

	env := &testEnv{
		redis: rdb,
		mysql: db,
		cache: storage.NewRedisAdapter(rdb, zap.NewNop()),
		db:    storage.NewMySQLAdapter(db),
	}
	require.NoError(t, env.db.Migrate(context.Background()))
	return env
}

// newInstance builds one server's worth of services over the shared stores.
func (e *testEnv) newInstance() *instance {
	cars := service.NewCarService(e.db, &testutil.FakeBlobStorage{}, zap.NewNop()).WithStoreTimeout(5 * time.Second)
	catalog := service.NewCatalog(cars, zap.NewNop())
	return &instance{
		catalog: catalog,
		admin:   service.NewAdminService(cars, e.cache, catalog, zap.NewNop()),
	}
}

func contains(cars []domain.Car, id string) bool {
	for _, c := range cars {
		if c.ID == id {
			return true
		}
	}
	return false
}

func capability(t *testing.T) domain.AdminCapability {
	capability, err := domain.NewAdminPolicy([]string{"owner@cartec.com"}).
		Authorize(domain.Identity{UID: "owner", Email: "owner@cartec.com"})
	require.NoError(t, err)
	return capability
}

func TestIntegration_ChangesReachOtherInstances(t *testing.T) {
	env := setupTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	t.Cleanup(func() {
		cancel()
		<-done
	})

	writer := env.newInstance()
	reader := env.newInstance()
	require.NoError(t, reader.catalog.Refetch(ctx))

	go func() {
		defer close(done)
		reader.catalog.Watch(ctx, env.cache.SubscribeCatalogChanges(ctx))
	}()

	form := domain.CarFormData{
		Name: "Mahindra XUV700", Price: "2400000", Model: "2025 AX7", FuelType: "Diesel",
		SubmissionID: uuid.NewString(),
	}
	id, err := writer.admin.SubmitNewCar(ctx, capability(t), form)
	require.NoError(t, err)
	assert.True(t, contains(writer.catalog.Snapshot().Cars, id), "writer refreshes itself")

	// the subscription registers asynchronously, so keep announcing the change
	require.Eventually(t, func() bool {
		if contains(reader.catalog.Snapshot().Cars, id) {
			return true
		}
		_ = env.cache.PublishCatalogChange(ctx)
		return false
	}, 5*time.Second, 50*time.Millisecond)

	_, err = writer.admin.SubmitNewCar(ctx, capability(t), form)
	assert.ErrorIs(t, err, domain.ErrDuplicateSubmission)

	approve := service.ConfirmFunc(func(context.Context, string) bool { return true })
	require.NoError(t, writer.admin.RequestDelete(ctx, capability(t), id, form.Name, approve))

	require.Eventually(t, func() bool {
		if !contains(reader.catalog.Snapshot().Cars, id) {
			return true
		}
		_ = env.cache.PublishCatalogChange(ctx)
		return false
	}, 5*time.Second, 50*time.Millisecond)

	err = writer.admin.RequestDelete(ctx, capability(t), id, form.Name, approve)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func sampleNames(cars []domain.Car) []string {
	var out []string
	for _, c := range cars {
		if _, ok := domain.SampleCar(c.ID); ok {
			out = append(out, c.Name)
		}
	}
	return out
}

func TestIntegration_SeedThenList(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	// drop rows left by earlier seeds so every sample gets its current timestamp
	for _, sample := range domain.SampleCars() {
		_, err := env.mysql.ExecContext(ctx, `DELETE FROM cars WHERE id = ?`, sample.ID)
		require.NoError(t, err)
	}
	_, err := env.db.Seed(ctx, domain.SampleCars())
	require.NoError(t, err)

	inst := env.newInstance()
	require.NoError(t, inst.catalog.Refetch(ctx))

	view := inst.catalog.Snapshot()
	assert.Equal(t, service.StateReady, view.State)
	assert.Equal(t, sampleNames(domain.SampleCars()), sampleNames(view.Cars), "seeded cars list in file order")
	assert.Equal(t, []string{"Tesla Model S", "Audi e-tron GT", "Porsche Taycan"},
		sampleNames(inst.catalog.Search("", "Electric")))
}
