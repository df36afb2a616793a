package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Gilbert-2/security-threat-detection-sub000/internal/models"
	appErrors "github.com/Gilbert-2/security-threat-detection-sub000/pkg/errors"
)

type notificationRepository interface {
	List(ctx context.Context, userID string, filter models.NotificationFilter) ([]models.Notification, int, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	Create(ctx context.Context, n *models.Notification) error
	MarkRead(ctx context.Context, userID, id string, readAt time.Time) (int64, error)
	MarkAllRead(ctx context.Context, userID string, readAt time.Time) (int64, error)
	Delete(ctx context.Context, userID, id string) (int64, error)
}

// CreateNotificationRequest represents payload for creating notifications.
type CreateNotificationRequest struct {
	UserID    string                  `json:"userId" validate:"required"`
	Type      models.NotificationType `json:"type" validate:"required,oneof=security system hardware user"`
	Title     string                  `json:"title" validate:"required"`
	Message   string                  `json:"message" validate:"required"`
	RelatedID *string                 `json:"relatedId"`
}

// NotificationService handles per-user notification workflows.
type NotificationService struct {
	repo      notificationRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewNotificationService creates an instance of NotificationService.
func NewNotificationService(repo notificationRepository, validate *validator.Validate, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &NotificationService{repo: repo, validator: validate, logger: logger}
}

// List returns a page of the user's notifications with display styles attached.
func (s *NotificationService) List(ctx context.Context, userID string, filter models.NotificationFilter) ([]models.Notification, *models.Pagination, error) {
	notifications, total, err := s.repo.List(ctx, userID, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}

	for i := range notifications {
		notifications[i].Display = notifications[i].Type.Style()
	}

	page := models.NormalizePageQuery(filter.Page, filter.PageSize)
	pagination := models.NewPagination(page.Page, page.Limit, total)
	return notifications, pagination, nil
}

// UnreadCount returns the number of unread notifications for the user.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	count, err := s.repo.UnreadCount(ctx, userID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count unread notifications")
	}
	return count, nil
}

// Create stores a notification for a user.
func (s *NotificationService) Create(ctx context.Context, req CreateNotificationRequest) (*models.Notification, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid notification payload")
	}

	n := &models.Notification{
		UserID:    req.UserID,
		Type:      req.Type,
		Title:     req.Title,
		Message:   req.Message,
		RelatedID: req.RelatedID,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create notification")
	}
	n.Display = n.Type.Style()
	return n, nil
}

// MarkRead marks a notification as read. Marking a notification that is
// already read or already deleted succeeds: the end state is the same.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	if _, err := s.repo.MarkRead(ctx, userID, id, time.Now().UTC()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notification read")
	}
	return nil
}

// MarkAllRead marks every unread notification for the user as read and
// returns how many were affected.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	affected, err := s.repo.MarkAllRead(ctx, userID, time.Now().UTC())
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notifications read")
	}
	return affected, nil
}

// Delete removes a notification. Deleting a notification that no longer
// exists succeeds for the same idempotence reason as MarkRead.
func (s *NotificationService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.repo.Delete(ctx, userID, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete notification")
	}
	return nil
}
