package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cartec/catalog/internal/core/domain"
	"github.com/cartec/catalog/internal/port"
)

const submissionKeyPrefix = "submission:"

// Confirmer asks a human to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool {
	return f(ctx, prompt)
}

// Refresher reloads the catalog after a mutation.
type Refresher interface {
	Refetch(ctx context.Context) error
}

// AdminService validates and submits inventory changes. Every operation takes
// the caller's AdminCapability.
type AdminService struct {
	cars      *CarService
	cache     port.CacheRepository
	refresher Refresher
	logger    *zap.Logger
}

func NewAdminService(cars *CarService, cache port.CacheRepository, refresher Refresher, logger *zap.Logger) *AdminService {
	return &AdminService{
		cars:      cars,
		cache:     cache,
		refresher: refresher,
		logger:    logger,
	}
}

// DeletePrompt is the confirmation question shown before deleting a car.
func DeletePrompt(displayName string) string {
	return fmt.Sprintf("Are you sure you want to delete %q?", displayName)
}

// SubmitNewCar validates the form, creates the car and refreshes the catalog.
// Validation errors are returned as is; later failures wrap
// domain.ErrSubmissionFailed and are not retried. A failed submission gives
// its submission id back.
func (s *AdminService) SubmitNewCar(ctx context.Context, capability domain.AdminCapability, form domain.CarFormData) (string, error) {
	if !capability.Valid() {
		return "", domain.ErrNotAuthorized
	}
	if _, err := form.Car(); err != nil {
		return "", err
	}

	if form.SubmissionID != "" {
		ok, err := s.cache.SetIdempotency(ctx, submissionKeyPrefix+form.SubmissionID)
		if err != nil {
			return "", fmt.Errorf("%w: idempotency check failed: %w", domain.ErrSubmissionFailed, err)
		}
		if !ok {
			return "", domain.ErrDuplicateSubmission
		}
	}

	id, err := s.cars.CreateCar(ctx, capability, form)
	if err != nil {
		s.logger.Error("car submission failed", zap.String("name", form.Name), zap.Error(err))
		s.release(ctx, form.SubmissionID)
		return "", fmt.Errorf("%w: %w", domain.ErrSubmissionFailed, err)
	}

	s.changed(ctx)
	return id, nil
}

// RequestDelete deletes a car once confirmer approves.
func (s *AdminService) RequestDelete(ctx context.Context, capability domain.AdminCapability, id, displayName string, confirmer Confirmer) error {
	if !capability.Valid() {
		return domain.ErrNotAuthorized
	}
	if !confirmer.Confirm(ctx, DeletePrompt(displayName)) {
		return domain.ErrDeletionCancelled
	}

	if err := s.cars.DeleteCar(ctx, capability, id); err != nil {
		s.logger.Error("car deletion failed", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("%w: %w", domain.ErrDeletionFailed, err)
	}

	s.changed(ctx)
	return nil
}

// release frees a submission id whose car was not stored, so the admin can
// submit the same form again.
func (s *AdminService) release(ctx context.Context, submissionID string) {
	if submissionID == "" {
		return
	}
	if err := s.cache.ReleaseIdempotency(ctx, submissionKeyPrefix+submissionID); err != nil {
		s.logger.Warn("releasing submission id", zap.String("submission_id", submissionID), zap.Error(err))
	}
}

func (s *AdminService) changed(ctx context.Context) {
	if err := s.refresher.Refetch(ctx); err != nil {
		s.logger.Warn("catalog refetch after mutation", zap.Error(err))
	}
	if err := s.cache.PublishCatalogChange(ctx); err != nil {
		s.logger.Warn("publishing catalog change", zap.Error(err))
	}
}
