package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Gilbert-2/security-threat-detection-sub000/internal/models"
	"github.com/Gilbert-2/security-threat-detection-sub000/pkg/jobs"
	"github.com/Gilbert-2/security-threat-detection-sub000/pkg/storage"
)

type reportRepoStub struct {
	mu      sync.Mutex
	reports map[string]*models.Report
}

func newReportRepoStub() *reportRepoStub {
	return &reportRepoStub{reports: map[string]*models.Report{}}
}

func (r *reportRepoStub) Create(ctx context.Context, report *models.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *report
	r.reports[report.ID] = &copied
	return nil
}

func (r *reportRepoStub) FindByID(ctx context.Context, id string) (*models.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	report, ok := r.reports[id]
	if !ok {
		return nil, errors.New("not found")
	}
	copied := *report
	return &copied, nil
}

func (r *reportRepoStub) ListByUser(ctx context.Context, userID string, limit int) ([]models.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Report
	for _, report := range r.reports {
		if report.RequestedBy == userID {
			out = append(out, *report)
		}
	}
	return out, nil
}

func (r *reportRepoStub) MarkCompleted(ctx context.Context, id, filePath string, completedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	report, ok := r.reports[id]
	if !ok {
		return errors.New("not found")
	}
	report.Status = models.ReportStatusCompleted
	report.FilePath = &filePath
	report.CompletedAt = &completedAt
	return nil
}

func (r *reportRepoStub) MarkFailed(ctx context.Context, id, reason string, failedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	report, ok := r.reports[id]
	if !ok {
		return errors.New("not found")
	}
	report.Status = models.ReportStatusFailed
	report.Error = &reason
	return nil
}

// pagedAlertSource serves a fixed dataset one page at a time, the way the
// alert repository does, and records which pages were requested.
type pagedAlertSource struct {
	mu     sync.Mutex
	alerts []models.Alert
	pages  []int
}

func (s *pagedAlertSource) List(ctx context.Context, filter models.AlertFilter) ([]models.Alert, int, error) {
	s.mu.Lock()
	s.pages = append(s.pages, filter.Page)
	s.mu.Unlock()
	start := (filter.Page - 1) * filter.PageSize
	if start >= len(s.alerts) {
		return nil, len(s.alerts), nil
	}
	end := start + filter.PageSize
	if end > len(s.alerts) {
		end = len(s.alerts)
	}
	return s.alerts[start:end], len(s.alerts), nil
}

type pagedActivitySource struct {
	logs []models.AuditLog
}

func (s *pagedActivitySource) List(ctx context.Context, filter models.ActivityFilter) ([]models.AuditLog, int, error) {
	start := (filter.Page - 1) * filter.PageSize
	if start >= len(s.logs) {
		return nil, len(s.logs), nil
	}
	end := start + filter.PageSize
	if end > len(s.logs) {
		end = len(s.logs)
	}
	return s.logs[start:end], len(s.logs), nil
}

func makeAlerts(n int) []models.Alert {
	now := time.Now().UTC()
	alerts := make([]models.Alert, n)
	for i := range alerts {
		alerts[i] = models.Alert{
			ID:         fmt.Sprintf("alert-%03d", i),
			Type:       "intrusion",
			Severity:   models.SeverityHigh,
			Status:     models.AlertStatusNew,
			Camera:     "cam-01",
			Location:   "east wing",
			OccurredAt: now.Add(time.Duration(i) * time.Minute),
		}
	}
	return alerts
}

func newReportServiceForTest(t *testing.T, alerts reportAlertSource, activity reportActivitySource) (*ReportService, *reportRepoStub) {
	t.Helper()
	repo := newReportRepoStub()
	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	svc := NewReportService(repo, alerts, activity, files, signer, zap.NewNop(), ReportConfig{Workers: 1, MaxRetries: 1})
	return svc, repo
}

func TestReportExportDrainsAllAlertPages(t *testing.T) {
	source := &pagedAlertSource{alerts: makeAlerts(120)}
	svc, _ := newReportServiceForTest(t, source, &pagedActivitySource{})

	table, title, err := svc.buildTable(context.Background(), ReportRequest{
		Type:   models.ReportTypeAlerts,
		Format: models.ReportFormatCSV,
	})
	require.NoError(t, err)
	assert.Equal(t, "Security Alerts", title)

	// Every alert in the window lands in the export, not just the first
	// page the list endpoint would serve.
	require.Len(t, table.Rows, 120)
	assert.Equal(t, "alert-000", table.Rows[0][0])
	assert.Equal(t, "alert-119", table.Rows[119][0])
	assert.Equal(t, []int{1, 2, 3}, source.pages)
}

func TestReportExportDrainsAllActivityPages(t *testing.T) {
	logs := make([]models.AuditLog, 75)
	now := time.Now().UTC()
	for i := range logs {
		logs[i] = models.AuditLog{
			ID:        fmt.Sprintf("log-%03d", i),
			Action:    "alert.update",
			Resource:  "alerts",
			CreatedAt: now,
		}
	}
	svc, _ := newReportServiceForTest(t, &pagedAlertSource{}, &pagedActivitySource{logs: logs})

	table, _, err := svc.buildTable(context.Background(), ReportRequest{
		Type:   models.ReportTypeActivity,
		Format: models.ReportFormatCSV,
	})
	require.NoError(t, err)
	require.Len(t, table.Rows, 75)
	assert.Equal(t, "log-074", table.Rows[74][0])
}

func TestReportHandleCompletesLargeExport(t *testing.T) {
	source := &pagedAlertSource{alerts: makeAlerts(120)}
	svc, repo := newReportServiceForTest(t, source, &pagedActivitySource{})

	report := &models.Report{
		ID:          "report-1",
		Type:        models.ReportTypeAlerts,
		Format:      models.ReportFormatCSV,
		Status:      models.ReportStatusPending,
		RequestedBy: "admin-1",
	}
	require.NoError(t, repo.Create(context.Background(), report))

	err := svc.handle(context.Background(), jobs.Job{
		ID:   report.ID,
		Type: "generate-report",
		Payload: reportJob{
			ReportID: report.ID,
			Request:  ReportRequest{Type: models.ReportTypeAlerts, Format: models.ReportFormatCSV},
		},
	})
	require.NoError(t, err)

	stored, err := repo.FindByID(context.Background(), report.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusCompleted, stored.Status)
	require.NotNil(t, stored.FilePath)
}

func TestReportHandleMarksFailedOnSourceError(t *testing.T) {
	svc, repo := newReportServiceForTest(t, failingAlertSource{}, &pagedActivitySource{})

	report := &models.Report{
		ID:          "report-2",
		Type:        models.ReportTypeAlerts,
		Format:      models.ReportFormatCSV,
		Status:      models.ReportStatusPending,
		RequestedBy: "admin-1",
	}
	require.NoError(t, repo.Create(context.Background(), report))

	err := svc.handle(context.Background(), jobs.Job{
		ID:      report.ID,
		Type:    "generate-report",
		Payload: reportJob{ReportID: report.ID, Request: ReportRequest{Type: models.ReportTypeAlerts, Format: models.ReportFormatCSV}},
	})
	require.Error(t, err)

	stored, err := repo.FindByID(context.Background(), report.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusFailed, stored.Status)
}

type failingAlertSource struct{}

func (failingAlertSource) List(ctx context.Context, filter models.AlertFilter) ([]models.Alert, int, error) {
	return nil, 0, errors.New("database unavailable")
}
