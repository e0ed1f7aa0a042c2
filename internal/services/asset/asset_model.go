package asset

import (
	"time"

	"github.com/google/uuid"
)

// AssetKind distinguishes generated images from generated videos.
type AssetKind string

const (
	KindImage AssetKind = "image"
	KindVideo AssetKind = "video"
)

// Asset is one generated artifact persisted to disk, with its metadata row.
type Asset struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	ProjectID       uuid.UUID  `json:"project_id" db:"project_id"`
	SceneID         *uuid.UUID `json:"scene_id,omitempty" db:"scene_id"`
	Kind            AssetKind  `json:"kind" db:"kind"`
	MimeType        string     `json:"mime_type" db:"mime_type"`
	DurationSeconds *int       `json:"duration_seconds,omitempty" db:"duration_seconds"`
	FilePath        string     `json:"-" db:"file_path"`
	SizeBytes       int64      `json:"size_bytes" db:"size_bytes"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
}

// CreateAssetRequest captures the metadata for storing a new asset. The
// binary payload travels separately through the blob store.
type CreateAssetRequest struct {
	ProjectID       uuid.UUID  `json:"project_id" validate:"required"`
	SceneID         *uuid.UUID `json:"scene_id,omitempty"`
	Kind            AssetKind  `json:"kind" validate:"required"`
	MimeType        string     `json:"mime_type" validate:"required"`
	DurationSeconds *int       `json:"duration_seconds,omitempty"`
}
