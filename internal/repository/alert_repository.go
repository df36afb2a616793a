package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Gilbert-2/security-threat-detection-sub000/internal/models"
)

// AlertRepository provides database access for security alerts and their
// response actions.
type AlertRepository struct {
	db *sqlx.DB
}

// NewAlertRepository creates a new instance of AlertRepository.
func NewAlertRepository(db *sqlx.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

const alertColumns = `id, type, severity, status, camera, location, description, confidence, clip_path, assigned_to, occurred_at, resolved_at, created_at, updated_at`

// List returns alerts based on filters with total count.
func (r *AlertRepository) List(ctx context.Context, filter models.AlertFilter) ([]models.Alert, int, error) {
	baseQuery := `FROM alerts WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.Severity != nil {
		conditions = append(conditions, fmt.Sprintf("severity = $%d", len(args)+1))
		args = append(args, *filter.Severity)
	}
	if filter.Camera != "" {
		conditions = append(conditions, fmt.Sprintf("camera = $%d", len(args)+1))
		args = append(args, filter.Camera)
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("occurred_at >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("occurred_at <= $%d", len(args)+1))
		args = append(args, *filter.To)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(description) LIKE $%d OR LOWER(location) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"occurred_at": true,
		"severity":    true,
		"status":      true,
		"created_at":  true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "occurred_at"
	}

	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "DESC"
	}

	page := models.NormalizePageQuery(filter.Page, filter.PageSize)
	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", alertColumns, baseQuery, sortBy, sortOrder, page.Limit, page.Offset())

	var alerts []models.Alert
	if err := r.db.SelectContext(ctx, &alerts, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list alerts: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count alerts: %w", err)
	}

	return alerts, total, nil
}

// FindByID returns an alert with its response actions.
func (r *AlertRepository) FindByID(ctx context.Context, id string) (*models.Alert, error) {
	query := fmt.Sprintf(`SELECT %s FROM alerts WHERE id = $1 LIMIT 1`, alertColumns)
	var alert models.Alert
	if err := r.db.GetContext(ctx, &alert, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find alert: %w", err)
	}

	const actionsQuery = `SELECT id, alert_id, rule_id, action_type, detail, executed_at FROM response_actions WHERE alert_id = $1 ORDER BY executed_at ASC`
	if err := r.db.SelectContext(ctx, &alert.ResponseActions, actionsQuery, id); err != nil {
		return nil, fmt.Errorf("list response actions: %w", err)
	}
	return &alert, nil
}

// Create inserts a new alert.
func (r *AlertRepository) Create(ctx context.Context, alert *models.Alert) error {
	if alert.ID == "" {
		alert.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = now
	}
	alert.UpdatedAt = now
	if alert.OccurredAt.IsZero() {
		alert.OccurredAt = now
	}
	if alert.Status == "" {
		alert.Status = models.AlertStatusNew
	}

	const query = `INSERT INTO alerts (id, type, severity, status, camera, location, description, confidence, clip_path, assigned_to, occurred_at, created_at, updated_at)
		VALUES (:id, :type, :severity, :status, :camera, :location, :description, :confidence, :clip_path, :assigned_to, :occurred_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, alert); err != nil {
		return fmt.Errorf("create alert: %w", err)
	}
	return nil
}

// UpdateStatus transitions an alert to a new status.
func (r *AlertRepository) UpdateStatus(ctx context.Context, id string, status models.AlertStatus, resolvedAt *time.Time) error {
	const query = `UPDATE alerts SET status = $2, resolved_at = $3, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, resolvedAt, time.Now().UTC()); err != nil {
		return fmt.Errorf("update alert status: %w", err)
	}
	return nil
}

// Assign sets the assignee of an alert.
func (r *AlertRepository) Assign(ctx context.Context, id, userID string) error {
	const query = `UPDATE alerts SET assigned_to = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, userID, time.Now().UTC()); err != nil {
		return fmt.Errorf("assign alert: %w", err)
	}
	return nil
}

// CreateResponseAction records an executed response action against an alert.
func (r *AlertRepository) CreateResponseAction(ctx context.Context, action *models.ResponseAction) error {
	if action.ID == "" {
		action.ID = uuid.NewString()
	}
	if action.ExecutedAt.IsZero() {
		action.ExecutedAt = time.Now().UTC()
	}
	const query = `INSERT INTO response_actions (id, alert_id, rule_id, action_type, detail, executed_at)
		VALUES (:id, :alert_id, :rule_id, :action_type, :detail, :executed_at)`
	if _, err := r.db.NamedExecContext(ctx, query, action); err != nil {
		return fmt.Errorf("create response action: %w", err)
	}
	return nil
}
