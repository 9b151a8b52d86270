package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cartec/catalog/internal/core/domain"
	"github.com/cartec/catalog/internal/core/service"
)

// AdminListCars returns the full catalog, unfiltered.
func (h *HTTPHandler) AdminListCars(c *gin.Context) {
	view := h.catalog.Snapshot()
	c.JSON(http.StatusOK, CarsResponse{
		State: view.State.String(),
		Count: len(view.Cars),
		Cars:  toResponses(view.Cars),
	})
}

// CreateCar accepts the admin form as multipart data with an optional image.
func (h *HTTPHandler) CreateCar(c *gin.Context) {
	form := domain.CarFormData{
		Name:         c.PostForm("name"),
		Price:        c.PostForm("price"),
		Model:        c.PostForm("model"),
		FuelType:     c.PostForm("fuelType"),
		SubmissionID: c.PostForm("submissionId"),
	}

	header, err := c.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	case err != nil:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid image upload", Field: "image"})
		return
	default:
		file, err := header.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid image upload", Field: "image"})
			return
		}
		defer file.Close()

		form.Image = &domain.ImageUpload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Body:        file,
		}
	}

	id, err := h.admin.SubmitNewCar(c.Request.Context(), currentCapability(c), form)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// DeleteCar removes a car once the request carries confirm=true. Otherwise
// it answers 428 with the question to put to the admin.
func (h *HTTPHandler) DeleteCar(c *gin.Context) {
	id := c.Param("id")
	name := c.Query("name")
	if name == "" {
		name = h.displayName(c.Request.Context(), id)
	}
	confirmed, _ := strconv.ParseBool(c.Query("confirm"))

	var asked string
	confirmer := service.ConfirmFunc(func(_ context.Context, prompt string) bool {
		asked = prompt
		return confirmed
	})

	err := h.admin.RequestDelete(c.Request.Context(), currentCapability(c), id, name, confirmer)
	if errors.Is(err, domain.ErrDeletionCancelled) {
		c.JSON(http.StatusPreconditionRequired, ErrorResponse{Error: "confirmation required", Prompt: asked})
		return
	}
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": "deleted"})
}

func (h *HTTPHandler) displayName(ctx context.Context, id string) string {
	car, err := h.cars.GetCar(ctx, id)
	if err != nil {
		return id
	}
	return car.Name
}
