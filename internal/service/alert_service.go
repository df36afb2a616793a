package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Gilbert-2/security-threat-detection-sub000/internal/models"
	appErrors "github.com/Gilbert-2/security-threat-detection-sub000/pkg/errors"
)

type alertRepository interface {
	List(ctx context.Context, filter models.AlertFilter) ([]models.Alert, int, error)
	FindByID(ctx context.Context, id string) (*models.Alert, error)
	Create(ctx context.Context, alert *models.Alert) error
	UpdateStatus(ctx context.Context, id string, status models.AlertStatus, resolvedAt *time.Time) error
	Assign(ctx context.Context, id, userID string) error
}

type alertAuditor interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// AlertIngestor receives newly created alerts for rule evaluation.
type AlertIngestor interface {
	Ingest(alert *models.Alert)
}

// CreateAlertRequest represents payload for raising an alert manually.
type CreateAlertRequest struct {
	Type        string               `json:"type" validate:"required"`
	Severity    models.AlertSeverity `json:"severity" validate:"required,oneof=low medium high critical"`
	Camera      string               `json:"camera" validate:"required"`
	Location    string               `json:"location"`
	Description string               `json:"description" validate:"required"`
	Confidence  *float64             `json:"confidence" validate:"omitempty,gte=0,lte=1"`
	ClipPath    *string              `json:"clipPath"`
	OccurredAt  *time.Time           `json:"occurredAt"`
}

// UpdateAlertStatusRequest asks for a status transition.
type UpdateAlertStatusRequest struct {
	Status models.AlertStatus `json:"status" validate:"required,oneof=new acknowledged in_progress resolved false_alarm"`
}

// AlertService manages the alert lifecycle.
type AlertService struct {
	repo      alertRepository
	auditor   alertAuditor
	ingestor  AlertIngestor
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAlertService creates an instance of AlertService. The ingestor and
// metrics service may be nil.
func NewAlertService(repo alertRepository, auditor alertAuditor, ingestor AlertIngestor, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *AlertService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AlertService{repo: repo, auditor: auditor, ingestor: ingestor, metrics: metrics, validator: validate, logger: logger}
}

// List returns a page of alerts with pagination metadata.
func (s *AlertService) List(ctx context.Context, filter models.AlertFilter) ([]models.Alert, *models.Pagination, error) {
	alerts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list alerts")
	}

	page := models.NormalizePageQuery(filter.Page, filter.PageSize)
	pagination := models.NewPagination(page.Page, page.Limit, total)
	return alerts, pagination, nil
}

// Get returns an alert by ID including response actions.
func (s *AlertService) Get(ctx context.Context, id string) (*models.Alert, error) {
	alert, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "alert not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load alert")
	}
	return alert, nil
}

// Create raises a new alert and feeds it to the rule engine.
func (s *AlertService) Create(ctx context.Context, req CreateAlertRequest) (*models.Alert, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid alert payload")
	}

	alert := &models.Alert{
		Type:        req.Type,
		Severity:    req.Severity,
		Status:      models.AlertStatusNew,
		Camera:      req.Camera,
		Location:    req.Location,
		Description: req.Description,
		Confidence:  req.Confidence,
		ClipPath:    req.ClipPath,
	}
	if req.OccurredAt != nil {
		alert.OccurredAt = *req.OccurredAt
	}

	if err := s.repo.Create(ctx, alert); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create alert")
	}

	if s.metrics != nil {
		s.metrics.ObserveAlertCreated(string(alert.Severity))
	}
	if s.ingestor != nil {
		s.ingestor.Ingest(alert)
	}
	return alert, nil
}

// UpdateStatus transitions an alert to a new lifecycle state. Illegal
// transitions are rejected without touching storage.
func (s *AlertService) UpdateStatus(ctx context.Context, id string, req UpdateAlertStatusRequest, actorID string) (*models.Alert, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}

	alert, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "alert not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load alert")
	}

	if alert.Status == req.Status {
		return alert, nil
	}

	if !alert.Status.CanTransition(req.Status) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition,
			fmt.Sprintf("cannot move alert from %s to %s", alert.Status, req.Status))
	}

	var resolvedAt *time.Time
	if req.Status.Terminal() {
		now := time.Now().UTC()
		resolvedAt = &now
	}

	if err := s.repo.UpdateStatus(ctx, id, req.Status, resolvedAt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update alert status")
	}

	if s.auditor != nil {
		body, _ := json.Marshal(map[string]string{"from": string(alert.Status), "to": string(req.Status)})
		log := &models.AuditLog{
			Action:     models.AuditActionAlertStatus,
			Resource:   "alerts",
			ResourceID: &id,
			NewValues:  body,
		}
		if actorID != "" {
			log.UserID = &actorID
		}
		if err := s.auditor.CreateAuditLog(ctx, log); err != nil {
			s.logger.Warn("failed to record alert status audit log", zap.Error(err))
		}
	}

	alert.Status = req.Status
	alert.ResolvedAt = resolvedAt
	return alert, nil
}

// Assign hands an alert to a user.
func (s *AlertService) Assign(ctx context.Context, id, userID string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "alert not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load alert")
	}
	if err := s.repo.Assign(ctx, id, userID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign alert")
	}
	return nil
}
