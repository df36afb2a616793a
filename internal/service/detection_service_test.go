package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Gilbert-2/security-threat-detection-sub000/internal/models"
	appErrors "github.com/Gilbert-2/security-threat-detection-sub000/pkg/errors"
)

type mockDetector struct {
	prediction *models.Prediction
	err        error
	calls      int
}

func (m *mockDetector) Predict(_ context.Context, _ string, clip io.Reader, _ float64) (*models.Prediction, error) {
	m.calls++
	_, _ = io.Copy(io.Discard, clip)
	if m.err != nil {
		return nil, m.err
	}
	return m.prediction, nil
}

type mockClipStorage struct {
	saved   map[string][]byte
	deleted []string
	saveErr error
}

func newMockClipStorage() *mockClipStorage {
	return &mockClipStorage{saved: map[string][]byte{}}
}

func (m *mockClipStorage) Save(filename string, data []byte) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	m.saved[filename] = data
	return "clips/" + filename, nil
}

func (m *mockClipStorage) Delete(filename string) error {
	m.deleted = append(m.deleted, filename)
	delete(m.saved, filename)
	return nil
}

type mockAlertCreator struct {
	requests []CreateAlertRequest
}

func (m *mockAlertCreator) Create(_ context.Context, req CreateAlertRequest) (*models.Alert, error) {
	m.requests = append(m.requests, req)
	return &models.Alert{ID: "alert-1", Severity: req.Severity, Camera: req.Camera}, nil
}

func TestAnalyzeViolentClipRaisesAlertAndKeepsClip(t *testing.T) {
	detector := &mockDetector{prediction: &models.Prediction{Label: "fight", Confidence: 0.94}}
	clips := newMockClipStorage()
	creator := &mockAlertCreator{}
	svc := NewDetectionService(detector, clips, creator, nil, nil, zap.NewNop(), DetectionConfig{Threshold: 0.7})

	result, err := svc.Analyze(context.Background(), "cam04.mp4", "cam-04", "lobby", strings.NewReader("clip-bytes"), "user-1")
	require.NoError(t, err)

	require.NotNil(t, result.AlertID)
	assert.Equal(t, "alert-1", *result.AlertID)
	assert.NotEmpty(t, result.ClipPath)
	assert.Len(t, clips.saved, 1, "alerting clip must stay archived")
	assert.Empty(t, clips.deleted)

	require.Len(t, creator.requests, 1)
	req := creator.requests[0]
	assert.Equal(t, "fight", req.Type)
	assert.Equal(t, models.SeverityCritical, req.Severity)
	assert.Equal(t, "cam-04", req.Camera)
	require.NotNil(t, req.Confidence)
	assert.InDelta(t, 0.94, *req.Confidence, 0.001)
	require.NotNil(t, req.ClipPath)
}

func TestAnalyzeQuietClipIsDiscarded(t *testing.T) {
	detector := &mockDetector{prediction: &models.Prediction{Label: "noFight", Confidence: 0.91}}
	clips := newMockClipStorage()
	creator := &mockAlertCreator{}
	svc := NewDetectionService(detector, clips, creator, nil, nil, zap.NewNop(), DetectionConfig{Threshold: 0.7})

	result, err := svc.Analyze(context.Background(), "cam04.mp4", "cam-04", "", strings.NewReader("clip-bytes"), "")
	require.NoError(t, err)

	assert.Nil(t, result.AlertID)
	assert.Empty(t, result.ClipPath)
	assert.Empty(t, creator.requests)
	assert.Empty(t, clips.saved, "non-alerting clip must be removed")
	assert.Len(t, clips.deleted, 1)
}

func TestAnalyzeBelowThresholdFightIsNotAnAlert(t *testing.T) {
	detector := &mockDetector{prediction: &models.Prediction{Label: "fight", Confidence: 0.55}}
	clips := newMockClipStorage()
	creator := &mockAlertCreator{}
	svc := NewDetectionService(detector, clips, creator, nil, nil, zap.NewNop(), DetectionConfig{Threshold: 0.7})

	result, err := svc.Analyze(context.Background(), "c.mp4", "cam-04", "", strings.NewReader("clip"), "")
	require.NoError(t, err)
	assert.Nil(t, result.AlertID)
	assert.Empty(t, creator.requests)
}

func TestAnalyzeRequiresCamera(t *testing.T) {
	svc := NewDetectionService(&mockDetector{}, newMockClipStorage(), &mockAlertCreator{}, nil, nil, zap.NewNop(), DetectionConfig{})

	_, err := svc.Analyze(context.Background(), "c.mp4", "", "", strings.NewReader("clip"), "")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestAnalyzeRejectsOversizedClip(t *testing.T) {
	svc := NewDetectionService(&mockDetector{}, newMockClipStorage(), &mockAlertCreator{}, nil, nil, zap.NewNop(), DetectionConfig{MaxClipBytes: 8})

	_, err := svc.Analyze(context.Background(), "c.mp4", "cam-01", "", bytes.NewReader(make([]byte, 16)), "")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestAnalyzeRejectsEmptyClip(t *testing.T) {
	svc := NewDetectionService(&mockDetector{}, newMockClipStorage(), &mockAlertCreator{}, nil, nil, zap.NewNop(), DetectionConfig{})

	_, err := svc.Analyze(context.Background(), "c.mp4", "cam-01", "", strings.NewReader(""), "")
	require.Error(t, err)
}

func TestAnalyzeDetectorFailureCleansUpClip(t *testing.T) {
	detector := &mockDetector{err: errors.New("inference service down")}
	clips := newMockClipStorage()
	svc := NewDetectionService(detector, clips, &mockAlertCreator{}, nil, nil, zap.NewNop(), DetectionConfig{})

	_, err := svc.Analyze(context.Background(), "c.mp4", "cam-01", "", strings.NewReader("clip"), "")
	require.Error(t, err)
	assert.Empty(t, clips.saved, "clip must not linger after a detector failure")
	assert.Len(t, clips.deleted, 1)
}
