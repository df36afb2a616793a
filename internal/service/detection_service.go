package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Gilbert-2/security-threat-detection-sub000/internal/models"
	appErrors "github.com/Gilbert-2/security-threat-detection-sub000/pkg/errors"
)

type detectorClient interface {
	Predict(ctx context.Context, filename string, clip io.Reader, threshold float64) (*models.Prediction, error)
}

type clipStorage interface {
	Save(filename string, data []byte) (string, error)
	Delete(filename string) error
}

type detectionAlertCreator interface {
	Create(ctx context.Context, req CreateAlertRequest) (*models.Alert, error)
}

// DetectionConfig tunes the detection pipeline.
type DetectionConfig struct {
	Threshold    float64
	MaxClipBytes int64
}

// DetectionService runs video clips through the fight detector, archives
// clips that raised an alert and drops the rest.
type DetectionService struct {
	detector detectorClient
	clips    clipStorage
	alerts   detectionAlertCreator
	auditor  alertAuditor
	metrics  *MetricsService
	logger   *zap.Logger
	config   DetectionConfig
}

// NewDetectionService creates an instance of DetectionService.
func NewDetectionService(detector detectorClient, clips clipStorage, alerts detectionAlertCreator, auditor alertAuditor, metrics *MetricsService, logger *zap.Logger, config DetectionConfig) *DetectionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Threshold <= 0 || config.Threshold > 1 {
		config.Threshold = 0.7
	}
	if config.MaxClipBytes <= 0 {
		config.MaxClipBytes = 100 << 20
	}
	return &DetectionService{detector: detector, clips: clips, alerts: alerts, auditor: auditor, metrics: metrics, logger: logger, config: config}
}

// Analyze stores the clip, runs inference and raises a critical alert when
// the prediction crosses the threshold. Clips that did not alert are
// removed again.
func (s *DetectionService) Analyze(ctx context.Context, filename, camera, location string, clip io.Reader, actorID string) (*models.DetectionResult, error) {
	if camera == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "camera is required")
	}

	data, err := io.ReadAll(io.LimitReader(clip, s.config.MaxClipBytes+1))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read clip")
	}
	if int64(len(data)) > s.config.MaxClipBytes {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("clip exceeds maximum size of %d bytes", s.config.MaxClipBytes))
	}
	if len(data) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "clip is empty")
	}

	storedName := fmt.Sprintf("%s-%s%s", time.Now().UTC().Format("20060102T150405"), uuid.NewString()[:8], filepath.Ext(filename))
	clipPath, err := s.clips.Save(storedName, data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store clip")
	}

	prediction, err := s.detector.Predict(ctx, storedName, bytes.NewReader(data), s.config.Threshold)
	if err != nil {
		if cleanupErr := s.clips.Delete(storedName); cleanupErr != nil {
			s.logger.Warn("failed to remove clip after detector error", zap.String("clip", storedName), zap.Error(cleanupErr))
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ObserveDetection(prediction.Label)
	}

	result := &models.DetectionResult{
		Prediction: *prediction,
		ClipPath:   clipPath,
		Camera:     camera,
		AnalyzedAt: time.Now().UTC(),
	}

	if prediction.Violent(s.config.Threshold) {
		confidence := prediction.Confidence
		alert, err := s.alerts.Create(ctx, CreateAlertRequest{
			Type:        "fight",
			Severity:    models.SeverityCritical,
			Camera:      camera,
			Location:    location,
			Description: fmt.Sprintf("Fight detected with %.0f%% confidence", confidence*100),
			Confidence:  &confidence,
			ClipPath:    &clipPath,
		})
		if err != nil {
			return nil, err
		}
		result.AlertID = &alert.ID
	} else {
		if err := s.clips.Delete(storedName); err != nil {
			s.logger.Warn("failed to remove non-alerting clip", zap.String("clip", storedName), zap.Error(err))
		}
		result.ClipPath = ""
	}

	if s.auditor != nil {
		log := &models.AuditLog{
			Action:    models.AuditActionDetection,
			Resource:  "detection",
			NewValues: []byte(fmt.Sprintf(`{"label":%q,"confidence":%.4f,"camera":%q}`, prediction.Label, prediction.Confidence, camera)),
		}
		if actorID != "" {
			log.UserID = &actorID
		}
		if err := s.auditor.CreateAuditLog(ctx, log); err != nil {
			s.logger.Warn("failed to record detection audit log", zap.Error(err))
		}
	}

	return result, nil
}
