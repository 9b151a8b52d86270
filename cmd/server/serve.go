package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/cartec/catalog/internal/adapter/handler"
	"github.com/cartec/catalog/internal/adapter/identity"
	"github.com/cartec/catalog/internal/adapter/storage"
	"github.com/cartec/catalog/internal/core/domain"
	"github.com/cartec/catalog/internal/core/service"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and gRPC servers",
	Long: `Starts the public HTTP API, the read-only gRPC catalog service and the
catalog change subscription. SIGINT or SIGTERM shuts everything down.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

// server is everything serve runs, wired but not yet listening.
type server struct {
	db    *sql.DB
	rdb   *redis.Client
	cache *storage.RedisAdapter

	catalog *service.Catalog
	http    *http.Server
	grpc    *grpc.Server
}

// newServer wires the stores, services and handlers. An unreachable MySQL
// or Redis is logged and left to the pools to reconnect: reads fall back to
// the built-in samples meanwhile.
func newServer(ctx context.Context) (*server, error) {
	db, err := newMySQL(cfg.MySQLDSN)
	if err != nil {
		return nil, err
	}
	rdb := newRedis(cfg.RedisAddr)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		logger.Warn("mysql unreachable, serving samples until it recovers", zap.Error(err))
	} else {
		logger.Info("connected to mysql")
	}
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unreachable, sessions and change events unavailable", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}

	s3Client, err := storage.NewS3Client(storage.S3Options{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	})
	if err != nil {
		db.Close()
		rdb.Close()
		return nil, err
	}

	repo := storage.NewMySQLAdapter(db)
	cache := storage.NewRedisAdapter(rdb, logger)
	blobs := storage.NewS3Adapter(s3Client, cfg.S3Bucket, cfg.S3PublicURL)

	cars := service.NewCarService(repo, blobs, logger).WithStoreTimeout(cfg.StoreTimeout)
	catalog := service.NewCatalog(cars, logger)
	admin := service.NewAdminService(cars, cache, catalog, logger)

	httpHandler := handler.NewHTTPHandler(handler.HTTPOptions{
		Catalog:  catalog,
		Cars:     cars,
		Admin:    admin,
		Policy:   domain.NewAdminPolicy(cfg.AdminAllowList),
		Provider: identity.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL),
		Sessions: identity.NewSessionManager(cfg.SessionSecret, cfg.SessionTTL, cache),

		WhatsAppNumber: cfg.WhatsAppNumber,
		SecureCookies:  strings.HasPrefix(cfg.GoogleRedirectURL, "https://"),
		Logger:         logger,
	})

	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(handler.UnaryLogger(logger)))
	handler.RegisterCatalogServer(grpcServer, handler.NewGRPCHandler(catalog, cars, logger))

	return &server{
		db:      db,
		rdb:     rdb,
		cache:   cache,
		catalog: catalog,
		http: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           httpHandler.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		},
		grpc: grpcServer,
	}, nil
}

func (s *server) Close() {
	if err := s.rdb.Close(); err != nil {
		logger.Warn("close redis", zap.Error(err))
	}
	if err := s.db.Close(); err != nil {
		logger.Warn("close mysql", zap.Error(err))
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv, err := newServer(ctx)
	if err != nil {
		return err
	}
	defer srv.Close()

	if err := srv.catalog.Refetch(ctx); err != nil {
		return fmt.Errorf("initial catalog load: %w", err)
	}
	logger.Info("catalog loaded", zap.Int("cars", len(srv.catalog.Snapshot().Cars)))

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.GRPCAddr, err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server listening", zap.String("address", cfg.HTTPAddr))
		if err := srv.http.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("gRPC server listening", zap.String("address", cfg.GRPCAddr))
		if err := srv.grpc.Serve(lis); err != nil {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		srv.catalog.Watch(gctx, srv.cache.SubscribeCatalogChanges(gctx))
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.http.Shutdown(shutdownCtx); err != nil {
			logger.Warn("HTTP shutdown", zap.Error(err))
		}
		logger.Info("HTTP server stopped")

		srv.grpc.GracefulStop()
		logger.Info("gRPC server stopped")
		return nil
	})

	return g.Wait()
}
