package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Gilbert-2/security-threat-detection-sub000/internal/models"
)

// ReportRepository provides database access for generated reports.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository creates a new instance of ReportRepository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

const reportColumns = `id, type, format, status, file_path, error, requested_by, created_at, completed_at`

// Create inserts a new report request in the pending status.
func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}
	if report.Status == "" {
		report.Status = models.ReportStatusPending
	}
	const query = `INSERT INTO reports (id, type, format, status, requested_by, created_at)
		VALUES (:id, :type, :format, :status, :requested_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, report); err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	return nil
}

// FindByID returns a report by identifier.
func (r *ReportRepository) FindByID(ctx context.Context, id string) (*models.Report, error) {
	query := fmt.Sprintf(`SELECT %s FROM reports WHERE id = $1 LIMIT 1`, reportColumns)
	var report models.Report
	if err := r.db.GetContext(ctx, &report, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find report: %w", err)
	}
	return &report, nil
}

// ListByUser returns reports requested by a user, newest first.
func (r *ReportRepository) ListByUser(ctx context.Context, userID string, limit int) ([]models.Report, error) {
	query := fmt.Sprintf(`SELECT %s FROM reports WHERE requested_by = $1 ORDER BY created_at DESC LIMIT %d`, reportColumns, limit)
	var reports []models.Report
	if err := r.db.SelectContext(ctx, &reports, query, userID); err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

// MarkCompleted records a successfully generated report file.
func (r *ReportRepository) MarkCompleted(ctx context.Context, id, filePath string, completedAt time.Time) error {
	const query = `UPDATE reports SET status = $2, file_path = $3, completed_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.ReportStatusCompleted, filePath, completedAt); err != nil {
		return fmt.Errorf("mark report completed: %w", err)
	}
	return nil
}

// MarkFailed records a report generation failure.
func (r *ReportRepository) MarkFailed(ctx context.Context, id, reason string, failedAt time.Time) error {
	const query = `UPDATE reports SET status = $2, error = $3, completed_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.ReportStatusFailed, reason, failedAt); err != nil {
		return fmt.Errorf("mark report failed: %w", err)
	}
	return nil
}
