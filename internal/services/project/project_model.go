package project

import (
	"time"

	"github.com/google/uuid"
)

// Project is one video production workspace: an ordered set of scenes plus
// its generation defaults.
type Project struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Description  *string   `json:"description,omitempty" db:"description"`
	AspectRatio  string    `json:"aspect_ratio" db:"aspect_ratio"`
	DefaultModel *string   `json:"default_model,omitempty" db:"default_model"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// CreateProjectRequest captures payload for creating a project
type CreateProjectRequest struct {
	Name         string  `json:"name" validate:"required,min=1,max=255"`
	Description  *string `json:"description,omitempty"`
	AspectRatio  string  `json:"aspect_ratio,omitempty"`
	DefaultModel *string `json:"default_model,omitempty"`
}

// UpdateProjectRequest captures payload for updating a project
type UpdateProjectRequest struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Description  *string `json:"description,omitempty"`
	AspectRatio  *string `json:"aspect_ratio,omitempty"`
	DefaultModel *string `json:"default_model,omitempty"`
}
