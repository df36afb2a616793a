package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/Gilbert-2/security-threat-detection-sub000/internal/models"
	appErrors "github.com/Gilbert-2/security-threat-detection-sub000/pkg/errors"
)

type activityRepository interface {
	List(ctx context.Context, filter models.ActivityFilter) ([]models.AuditLog, int, error)
}

// ActivityService serves the history and user-activity views from the
// audit log.
type ActivityService struct {
	repo   activityRepository
	logger *zap.Logger
}

// NewActivityService creates an instance of ActivityService.
func NewActivityService(repo activityRepository, logger *zap.Logger) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{repo: repo, logger: logger}
}

// List returns a page of audit log entries.
func (s *ActivityService) List(ctx context.Context, filter models.ActivityFilter) ([]models.AuditLog, *models.Pagination, error) {
	logs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list activity")
	}

	page := models.NormalizePageQuery(filter.Page, filter.PageSize)
	pagination := models.NewPagination(page.Page, page.Limit, total)
	return logs, pagination, nil
}
