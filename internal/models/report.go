package models

import "time"

// ReportType selects the dataset a report covers.
type ReportType string

const (
	ReportTypeAlerts   ReportType = "alerts"
	ReportTypeActivity ReportType = "activity"
)

// Valid reports whether the report type is recognised.
func (t ReportType) Valid() bool {
	return t == ReportTypeAlerts || t == ReportTypeActivity
}

// ReportFormat selects the rendered file format.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// Valid reports whether the format is recognised.
func (f ReportFormat) Valid() bool {
	return f == ReportFormatCSV || f == ReportFormatPDF
}

// ReportStatus tracks an asynchronous generation job.
type ReportStatus string

const (
	ReportStatusPending   ReportStatus = "pending"
	ReportStatusCompleted ReportStatus = "completed"
	ReportStatusFailed    ReportStatus = "failed"
)

// Report is a generated (or in-flight) export job.
type Report struct {
	ID          string       `db:"id" json:"id"`
	Type        ReportType   `db:"type" json:"type"`
	Format      ReportFormat `db:"format" json:"format"`
	Status      ReportStatus `db:"status" json:"status"`
	FilePath    *string      `db:"file_path" json:"-"`
	DownloadURL *string      `db:"-" json:"downloadUrl,omitempty"`
	Error       *string      `db:"error" json:"error,omitempty"`
	RequestedBy string       `db:"requested_by" json:"requestedBy"`
	CreatedAt   time.Time    `db:"created_at" json:"createdAt"`
	CompletedAt *time.Time   `db:"completed_at" json:"completedAt,omitempty"`
}
