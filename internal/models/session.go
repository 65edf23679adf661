package models

import "github.com/google/uuid"

// Session defines the structure for detection-session records. Per-frame
// metrics are never persisted; only the session lifecycle and its final
// summary aggregates are.
type Session struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	SourceKind      string    `json:"source_kind" gorm:"index"` // camera, video or image
	MediaID         *uint     `json:"media_id" gorm:"index"`    // Optional foreign key to Media.ID for uploads
	Status          string    `json:"status" gorm:"index"`      // running, stopped, failed
	DurationSec     float64   `json:"duration_sec"`
	SampleCount     int       `json:"sample_count"`
	AvgTorsoLeanDeg float64   `json:"avg_torso_lean_deg"`
	StdTorsoLeanDeg float64   `json:"std_torso_lean_deg"`
	AvgCadenceSpm   float64   `json:"avg_cadence_spm"`
	Notes           *string   `json:"notes"`
	CreateTime      string    `json:"create_time"`
	UpdateTime      string    `json:"update_time"`
	IsDeleted       bool      `json:"is_deleted,omitempty" gorm:"default:false;index"`
}
