package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cartec/catalog/internal/core/domain"
	"github.com/cartec/catalog/internal/core/service"
	"github.com/cartec/catalog/internal/port"
)

// Sessions issues and resolves the signed-in user's session token.
type Sessions interface {
	Issue(ctx context.Context, id domain.Identity) (string, error)
	Identity(ctx context.Context, token string) (domain.Identity, error)
	Revoke(ctx context.Context, token string) error
	TTL() time.Duration
}

type HTTPOptions struct {
	Catalog  *service.Catalog
	Cars     *service.CarService
	Admin    *service.AdminService
	Policy   domain.AdminPolicy
	Provider port.IdentityProvider
	Sessions Sessions

	WhatsAppNumber string
	SecureCookies  bool
	Logger         *zap.Logger
}

type HTTPHandler struct {
	catalog  *service.Catalog
	cars     *service.CarService
	admin    *service.AdminService
	policy   domain.AdminPolicy
	provider port.IdentityProvider
	sessions Sessions

	whatsApp      string
	secureCookies bool
	logger        *zap.Logger
}

type CarResponse struct {
	domain.Car
	PriceDisplay string `json:"priceDisplay"`
}

type CarsResponse struct {
	State string        `json:"state"`
	Count int           `json:"count"`
	Cars  []CarResponse `json:"cars"`
}

type ErrorResponse struct {
	Error  string `json:"error"`
	Field  string `json:"field,omitempty"`
	Prompt string `json:"prompt,omitempty"`
	Back   string `json:"back,omitempty"`
}

func NewHTTPHandler(opts HTTPOptions) *HTTPHandler {
	return &HTTPHandler{
		catalog:       opts.Catalog,
		cars:          opts.Cars,
		admin:         opts.Admin,
		policy:        opts.Policy,
		provider:      opts.Provider,
		sessions:      opts.Sessions,
		whatsApp:      opts.WhatsAppNumber,
		secureCookies: opts.SecureCookies,
		logger:        opts.Logger,
	}
}

// Router wires every route onto a new gin engine.
func (h *HTTPHandler) Router() *gin.Engine {
	router := gin.New()
	router.Use(requestLogger(h.logger), gin.Recovery(), h.loadSession)

	router.GET("/health", h.HealthCheck)
	router.GET("/login", h.Login)
	router.GET("/auth/callback", h.Callback)
	router.POST("/logout", h.Logout)

	api := router.Group("/api")
	{
		api.GET("/cars", h.ListCars)
		api.GET("/cars/:id", h.GetCar)
		api.GET("/fuel-types", h.FuelTypes)
		api.GET("/contact", h.Contact)
		api.GET("/me", h.Me)
	}

	admin := router.Group("/api/admin", h.requireAdmin)
	{
		admin.GET("/cars", h.AdminListCars)
		admin.POST("/cars", h.CreateCar)
		admin.DELETE("/cars/:id", h.DeleteCar)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found", Back: "/"})
	})

	return router
}

func (h *HTTPHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "catalog": h.catalog.Snapshot().State.String()})
}

func (h *HTTPHandler) ListCars(c *gin.Context) {
	fuel := c.DefaultQuery("fuel", domain.FuelAll)
	if fuel != domain.FuelAll && !domain.FuelType(fuel).Valid() {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("unknown fuel type %q", fuel), Field: "fuel"})
		return
	}
	view := h.catalog.Snapshot()
	cars := domain.Filter(view.Cars, c.Query("q"), fuel)

	c.JSON(http.StatusOK, CarsResponse{
		State: view.State.String(),
		Count: len(cars),
		Cars:  toResponses(cars),
	})
}

func (h *HTTPHandler) GetCar(c *gin.Context) {
	car, err := h.cars.GetCar(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(car))
}

func (h *HTTPHandler) FuelTypes(c *gin.Context) {
	c.JSON(http.StatusOK, domain.FuelSelectors())
}

func (h *HTTPHandler) Contact(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"url": domain.ContactLink(h.whatsApp, c.Query("car"))})
}

// writeError maps domain errors onto HTTP statuses. Internal details only go
// to the log.
func (h *HTTPHandler) writeError(c *gin.Context, err error) {
	var verr *domain.ValidationError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: verr.Message, Field: verr.Field})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "car not found", Back: "/"})
	case errors.Is(err, domain.ErrNotAuthorized):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "not authorized"})
	case errors.Is(err, domain.ErrDuplicateSubmission):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "this car was already submitted"})
	case errors.Is(err, domain.ErrUploadFailure):
		h.logger.Error("image upload failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "failed to upload image"})
	case errors.Is(err, domain.ErrSubmissionFailed):
		h.logger.Error("submission failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to add car"})
	case errors.Is(err, domain.ErrDeletionFailed):
		h.logger.Error("deletion failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to delete car"})
	default:
		h.logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

func toResponse(car domain.Car) CarResponse {
	return CarResponse{Car: car, PriceDisplay: domain.FormatPrice(car.Price)}
}

func toResponses(cars []domain.Car) []CarResponse {
	out := make([]CarResponse, len(cars))
	for i, car := range cars {
		out[i] = toResponse(car)
	}
	return out
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.Info("HTTP request",
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
