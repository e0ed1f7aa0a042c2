package scene

import (
	"time"

	"github.com/google/uuid"
)

// Scene is one storyboard panel: a description plus the prompts and asset
// references produced while generating its image and video.
type Scene struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	ProjectID       uuid.UUID  `json:"project_id" db:"project_id"`
	Position        int        `json:"position" db:"position"`
	Description     string     `json:"description" db:"description"`
	ImagePrompt     *string    `json:"image_prompt,omitempty" db:"image_prompt"`
	AnimationPrompt *string    `json:"animation_prompt,omitempty" db:"animation_prompt"`
	DurationSeconds *int       `json:"duration_seconds,omitempty" db:"duration_seconds"`
	ImageAssetID    *uuid.UUID `json:"image_asset_id,omitempty" db:"image_asset_id"`
	VideoAssetID    *uuid.UUID `json:"video_asset_id,omitempty" db:"video_asset_id"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// CreateSceneRequest captures payload for creating a scene
type CreateSceneRequest struct {
	ProjectID       uuid.UUID `json:"project_id" validate:"required"`
	Position        int       `json:"position"`
	Description     string    `json:"description" validate:"required"`
	ImagePrompt     *string   `json:"image_prompt,omitempty"`
	AnimationPrompt *string   `json:"animation_prompt,omitempty"`
	DurationSeconds *int      `json:"duration_seconds,omitempty"`
}

// UpdateSceneRequest captures payload for updating a scene
type UpdateSceneRequest struct {
	Position        *int       `json:"position,omitempty"`
	Description     *string    `json:"description,omitempty"`
	ImagePrompt     *string    `json:"image_prompt,omitempty"`
	AnimationPrompt *string    `json:"animation_prompt,omitempty"`
	DurationSeconds *int       `json:"duration_seconds,omitempty"`
	ImageAssetID    *uuid.UUID `json:"image_asset_id,omitempty"`
	VideoAssetID    *uuid.UUID `json:"video_asset_id,omitempty"`
}
