package models

import "time"

// Prediction is the fight-detection inference result for one clip.
type Prediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Frames     int     `json:"frames"`
	DurationS  float64 `json:"duration"`
}

// Violent reports whether the prediction crosses the alerting threshold.
func (p Prediction) Violent(threshold float64) bool {
	return p.Label == "fight" && p.Confidence >= threshold
}

// DetectionResult combines the stored clip, the prediction and the alert
// raised for it, if any.
type DetectionResult struct {
	Prediction Prediction `json:"prediction"`
	ClipPath   string     `json:"clipPath"`
	AlertID    *string    `json:"alertId,omitempty"`
	Camera     string     `json:"camera"`
	AnalyzedAt time.Time  `json:"analyzedAt"`
}
