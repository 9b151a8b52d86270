package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/cartec/catalog/internal/adapter/storage"
	"github.com/cartec/catalog/internal/config"
	"github.com/cartec/catalog/internal/core/domain"
	"github.com/cartec/catalog/internal/core/service"
)

const (
	readers         = 50
	cyclesPerReader = 20
	submitters      = 20
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger, err := config.NewLogger("warn")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		logger.Fatal("failed to open mysql", zap.Error(err))
	}
	defer db.Close()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to connect redis", zap.Error(err))
	}
	defer rdb.Close()

	repo := storage.NewMySQLAdapter(db)
	cache := storage.NewRedisAdapter(rdb, logger)
	cars := service.NewCarService(repo, nil, logger).WithStoreTimeout(cfg.StoreTimeout)
	catalog := service.NewCatalog(cars, logger)
	admin := service.NewAdminService(cars, cache, catalog, logger)

	capability, err := domain.NewAdminPolicy([]string{"stress@cartec.test"}).
		Authorize(domain.Identity{UID: "stress", Email: "stress@cartec.test"})
	if err != nil {
		logger.Fatal("authorize", zap.Error(err))
	}

	var emptySnapshots, searches atomic.Int32
	var wg sync.WaitGroup
	start := time.Now()

	// readers refetch and search while submitters race on one submission id
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < cyclesPerReader; j++ {
				_ = catalog.Refetch(ctx)
				if view := catalog.Snapshot(); view.State == service.StateReady && len(view.Cars) == 0 {
					emptySnapshots.Add(1)
				}
				catalog.Search("a", domain.FuelAll)
				searches.Add(1)
			}
		}()
	}

	submissionID := uuid.NewString()
	form := domain.CarFormData{
		Name: "Stress Test Car", Price: "100000", Model: "2025", FuelType: string(domain.FuelCNG),
		SubmissionID: submissionID,
	}
	var created, duplicates, failed atomic.Int32
	var createdID atomic.Value

	for i := 0; i < submitters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := admin.SubmitNewCar(ctx, capability, form)
			switch {
			case err == nil:
				created.Add(1)
				createdID.Store(id)
			case errors.Is(err, domain.ErrDuplicateSubmission):
				duplicates.Add(1)
			default:
				failed.Add(1)
				logger.Warn("submit failed", zap.Error(err))
			}
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	if id, ok := createdID.Load().(string); ok {
		approve := service.ConfirmFunc(func(context.Context, string) bool { return true })
		if err := admin.RequestDelete(ctx, capability, id, form.Name, approve); err != nil {
			logger.Warn("cleanup failed", zap.String("id", id), zap.Error(err))
		}
	}

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Readers:          %d x %d cycles\n", readers, cyclesPerReader)
	fmt.Printf("Searches:         %d\n", searches.Load())
	fmt.Printf("Empty snapshots:  %d\n", emptySnapshots.Load())
	fmt.Printf("Submitters:       %d\n", submitters)
	fmt.Printf("Created:          %d\n", created.Load())
	fmt.Printf("Duplicates:       %d\n", duplicates.Load())
	fmt.Printf("Failed:           %d\n", failed.Load())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	if emptySnapshots.Load() == 0 {
		fmt.Println("PASS: catalog was never empty")
	} else {
		fmt.Printf("FAIL: %d empty snapshots\n", emptySnapshots.Load())
	}

	if created.Load() == 1 && duplicates.Load() == int32(submitters-1) {
		fmt.Printf("PASS: exactly 1 submission stored, %d rejected as duplicates\n", submitters-1)
	} else {
		fmt.Printf("FAIL: expected 1 created/%d duplicates, got %d/%d\n",
			submitters-1, created.Load(), duplicates.Load())
	}
}
