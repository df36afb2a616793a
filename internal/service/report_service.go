package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Gilbert-2/security-threat-detection-sub000/internal/models"
	appErrors "github.com/Gilbert-2/security-threat-detection-sub000/pkg/errors"
	"github.com/Gilbert-2/security-threat-detection-sub000/pkg/export"
	"github.com/Gilbert-2/security-threat-detection-sub000/pkg/jobs"
	"github.com/Gilbert-2/security-threat-detection-sub000/pkg/storage"
)

type reportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	FindByID(ctx context.Context, id string) (*models.Report, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]models.Report, error)
	MarkCompleted(ctx context.Context, id, filePath string, completedAt time.Time) error
	MarkFailed(ctx context.Context, id, reason string, failedAt time.Time) error
}

type reportAlertSource interface {
	List(ctx context.Context, filter models.AlertFilter) ([]models.Alert, int, error)
}

type reportActivitySource interface {
	List(ctx context.Context, filter models.ActivityFilter) ([]models.AuditLog, int, error)
}

// ReportRequest asks for an export of one dataset over a window.
type ReportRequest struct {
	Type   models.ReportType   `json:"type" validate:"required,oneof=alerts activity"`
	Format models.ReportFormat `json:"format" validate:"required,oneof=csv pdf"`
	From   *time.Time          `json:"from"`
	To     *time.Time          `json:"to"`
}

// ReportConfig tunes the generation worker pool.
type ReportConfig struct {
	Workers    int
	MaxRetries int
}

// ReportService generates CSV and PDF exports asynchronously and hands out
// signed download URLs for completed files.
type ReportService struct {
	repo     reportRepository
	alerts   reportAlertSource
	activity reportActivitySource
	files    *storage.LocalStorage
	signer   *storage.SignedURLSigner
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
	queue    *jobs.Queue
}

type reportJob struct {
	ReportID string
	Request  ReportRequest
}

// NewReportService creates an instance of ReportService and its queue.
func NewReportService(repo reportRepository, alerts reportAlertSource, activity reportActivitySource, files *storage.LocalStorage, signer *storage.SignedURLSigner, logger *zap.Logger, cfg ReportConfig) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ReportService{
		repo:     repo,
		alerts:   alerts,
		activity: activity,
		files:    files,
		signer:   signer,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
	}
	s.queue = jobs.NewQueue("reports", s.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		Logger:     logger,
	})
	return s
}

// Start begins background generation.
func (s *ReportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the worker pool.
func (s *ReportService) Stop() {
	s.queue.Stop()
}

// Request validates and enqueues a report. The returned report is pending.
func (s *ReportService) Request(ctx context.Context, req ReportRequest, userID string) (*models.Report, error) {
	if !req.Type.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown report type")
	}
	if !req.Format.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown report format")
	}

	report := &models.Report{
		ID:          uuid.NewString(),
		Type:        req.Type,
		Format:      req.Format,
		Status:      models.ReportStatusPending,
		RequestedBy: userID,
	}
	if err := s.repo.Create(ctx, report); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create report")
	}

	if err := s.queue.Enqueue(jobs.Job{ID: report.ID, Type: "generate-report", Payload: reportJob{ReportID: report.ID, Request: req}}); err != nil {
		now := time.Now().UTC()
		_ = s.repo.MarkFailed(ctx, report.ID, "queue unavailable", now)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue report")
	}
	return report, nil
}

// Get returns a report, attaching a signed download URL when completed. Only
// the requester may see it.
func (s *ReportService) Get(ctx context.Context, id, userID string) (*models.Report, error) {
	report, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report")
	}
	if report.RequestedBy != userID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "report belongs to another user")
	}

	s.attachDownloadURL(report)
	return report, nil
}

// List returns the caller's most recent reports.
func (s *ReportService) List(ctx context.Context, userID string) ([]models.Report, error) {
	reports, err := s.repo.ListByUser(ctx, userID, 50)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reports")
	}
	for i := range reports {
		s.attachDownloadURL(&reports[i])
	}
	return reports, nil
}

// Open validates a signed token and opens the underlying file.
func (s *ReportService) Open(token string) (*os.File, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	file, err := s.files.Open(relPath)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report file no longer exists")
	}
	return file, nil
}

func (s *ReportService) attachDownloadURL(report *models.Report) {
	if report.Status != models.ReportStatusCompleted || report.FilePath == nil || s.signer == nil {
		return
	}
	token, _, err := s.signer.Generate(report.ID, *report.FilePath)
	if err != nil {
		s.logger.Warn("failed to sign report download", zap.String("report_id", report.ID), zap.Error(err))
		return
	}
	url := fmt.Sprintf("/api/v1/reports/download/%s", token)
	report.DownloadURL = &url
}

func (s *ReportService) handle(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(reportJob)
	if !ok {
		s.logger.Error("report queue received unexpected payload", zap.String("job_id", job.ID))
		return nil
	}

	table, title, err := s.buildTable(ctx, payload.Request)
	if err != nil {
		_ = s.repo.MarkFailed(ctx, payload.ReportID, err.Error(), time.Now().UTC())
		return err
	}

	var rendered []byte
	switch payload.Request.Format {
	case models.ReportFormatCSV:
		rendered, err = s.csv.Render(*table)
	case models.ReportFormatPDF:
		rendered, err = s.pdf.Render(*table, title)
	default:
		err = fmt.Errorf("unknown format %q", payload.Request.Format)
	}
	if err != nil {
		_ = s.repo.MarkFailed(ctx, payload.ReportID, err.Error(), time.Now().UTC())
		return err
	}

	filename := fmt.Sprintf("%s-%s.%s", payload.Request.Type, payload.ReportID, payload.Request.Format)
	if _, err := s.files.Save(filename, rendered); err != nil {
		_ = s.repo.MarkFailed(ctx, payload.ReportID, "failed to store report file", time.Now().UTC())
		return err
	}

	if err := s.repo.MarkCompleted(ctx, payload.ReportID, filename, time.Now().UTC()); err != nil {
		return err
	}
	s.logger.Info("report generated", zap.String("report_id", payload.ReportID), zap.String("file", filename))
	return nil
}

func (s *ReportService) buildTable(ctx context.Context, req ReportRequest) (*export.Table, string, error) {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -30)
	to := now
	if req.From != nil {
		from = *req.From
	}
	if req.To != nil {
		to = *req.To
	}

	switch req.Type {
	case models.ReportTypeAlerts:
		alerts, err := s.collectAlerts(ctx, from, to)
		if err != nil {
			return nil, "", fmt.Errorf("load alerts: %w", err)
		}
		table := &export.Table{
			Columns: []string{"ID", "Type", "Severity", "Status", "Camera", "Location", "Confidence", "Occurred At"},
		}
		for _, alert := range alerts {
			confidence := ""
			if alert.Confidence != nil {
				confidence = strconv.FormatFloat(*alert.Confidence, 'f', 2, 64)
			}
			table.Rows = append(table.Rows, []string{
				alert.ID,
				alert.Type,
				string(alert.Severity),
				string(alert.Status),
				alert.Camera,
				alert.Location,
				confidence,
				alert.OccurredAt.Format(time.RFC3339),
			})
		}
		return table, "Security Alerts", nil

	case models.ReportTypeActivity:
		logs, err := s.collectActivity(ctx, from, to)
		if err != nil {
			return nil, "", fmt.Errorf("load activity: %w", err)
		}
		table := &export.Table{
			Columns: []string{"ID", "User", "Action", "Resource", "IP Address", "Created At"},
		}
		for _, log := range logs {
			user := ""
			if log.UserID != nil {
				user = *log.UserID
			}
			table.Rows = append(table.Rows, []string{
				log.ID,
				user,
				log.Action,
				log.Resource,
				log.IPAddress,
				log.CreatedAt.Format(time.RFC3339),
			})
		}
		return table, "User Activity", nil
	}
	return nil, "", fmt.Errorf("unknown report type %q", req.Type)
}

// reportPageSize is the per-page fetch size while draining a dataset. Exports
// cover the whole window, so the collectors keep paging until the source runs
// dry rather than stopping at the API's list cap.
const reportPageSize = 50

func (s *ReportService) collectAlerts(ctx context.Context, from, to time.Time) ([]models.Alert, error) {
	var all []models.Alert
	for page := 1; ; page++ {
		batch, total, err := s.alerts.List(ctx, models.AlertFilter{
			From:      &from,
			To:        &to,
			Page:      page,
			PageSize:  reportPageSize,
			SortBy:    "occurred_at",
			SortOrder: "ASC",
		})
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < reportPageSize || len(all) >= total {
			return all, nil
		}
	}
}

func (s *ReportService) collectActivity(ctx context.Context, from, to time.Time) ([]models.AuditLog, error) {
	var all []models.AuditLog
	for page := 1; ; page++ {
		batch, total, err := s.activity.List(ctx, models.ActivityFilter{
			From:     &from,
			To:       &to,
			Page:     page,
			PageSize: reportPageSize,
		})
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < reportPageSize || len(all) >= total {
			return all, nil
		}
	}
}
