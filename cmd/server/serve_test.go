package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cartec/catalog/internal/adapter/handler"
	"github.com/cartec/catalog/internal/config"
	"github.com/cartec/catalog/internal/core/domain"
	"github.com/cartec/catalog/internal/core/service"
)

func TestNewServer_StoresDown(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, logs := observer.New(zap.WarnLevel)
	prevCfg, prevLogger := cfg, logger
	t.Cleanup(func() { cfg, logger = prevCfg, prevLogger })

	// nothing listens on port 1
	cfg = &config.Config{
		HTTPAddr:           "127.0.0.1:0",
		GRPCAddr:           "127.0.0.1:0",
		MySQLDSN:           "root:root@tcp(127.0.0.1:1)/cartec?parseTime=true&timeout=200ms",
		RedisAddr:          "127.0.0.1:1",
		S3Region:           "ap-south-1",
		S3Bucket:           "cartec-images",
		S3PublicURL:        "https://cartec-images.s3.ap-south-1.amazonaws.com",
		GoogleClientID:     "client-id",
		GoogleClientSecret: "client-secret",
		GoogleRedirectURL:  "http://localhost:8080/auth/callback",
		SessionSecret:      "test-secret",
		SessionTTL:         time.Hour,
		StoreTimeout:       500 * time.Millisecond,
	}
	logger = zap.New(core)

	srv, err := newServer(context.Background())
	require.NoError(t, err)
	defer srv.Close()

	assert.Equal(t, 1, logs.FilterMessage("mysql unreachable, serving samples until it recovers").Len())
	assert.Equal(t, 1, logs.FilterMessage("redis unreachable, sessions and change events unavailable").Len())

	require.NoError(t, srv.catalog.Refetch(context.Background()))
	view := srv.catalog.Snapshot()
	assert.Equal(t, service.StateReady, view.State)
	assert.Len(t, view.Cars, len(domain.SampleCars()))

	w := httptest.NewRecorder()
	srv.http.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/cars", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var got handler.CarsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "ready", got.State)
	assert.Equal(t, len(domain.SampleCars()), got.Count)
}
