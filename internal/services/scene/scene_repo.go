package scene

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrSceneNotFound = errors.New("scene not found")

// SceneRepo handles database operations for scenes
type SceneRepo struct {
	db *sqlx.DB
}

// NewSceneRepo creates a new scene repository
func NewSceneRepo(db *sqlx.DB) *SceneRepo {
	return &SceneRepo{db: db}
}

const sceneColumns = `id, project_id, position, description, image_prompt, animation_prompt,
        duration_seconds, image_asset_id, video_asset_id, created_at, updated_at`

// Create creates a new scene
func (r *SceneRepo) Create(ctx context.Context, req *CreateSceneRequest) (*Scene, error) {
	query := fmt.Sprintf(`
        INSERT INTO scenes (project_id, position, description, image_prompt, animation_prompt, duration_seconds)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING %s
    `, sceneColumns)

	var scene Scene
	err := r.db.GetContext(ctx, &scene, query,
		req.ProjectID, req.Position, req.Description, req.ImagePrompt, req.AnimationPrompt, req.DurationSeconds)
	if err != nil {
		return nil, fmt.Errorf("failed to create scene: %w", err)
	}

	return &scene, nil
}

// GetByID retrieves a scene by ID
func (r *SceneRepo) GetByID(ctx context.Context, id uuid.UUID) (*Scene, error) {
	query := fmt.Sprintf(`SELECT %s FROM scenes WHERE id = $1`, sceneColumns)

	var scene Scene
	err := r.db.GetContext(ctx, &scene, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSceneNotFound
		}
		return nil, fmt.Errorf("failed to get scene: %w", err)
	}

	return &scene, nil
}

// ListByProject retrieves all scenes of a project in storyboard order
func (r *SceneRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*Scene, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM scenes
        WHERE project_id = $1
        ORDER BY position ASC, created_at ASC
    `, sceneColumns)

	var scenes []*Scene
	err := r.db.SelectContext(ctx, &scenes, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list scenes: %w", err)
	}

	return scenes, nil
}

// Update updates scene fields
func (r *SceneRepo) Update(ctx context.Context, id uuid.UUID, req *UpdateSceneRequest) (*Scene, error) {
	setParts := []string{}
	args := []interface{}{}

	if req.Position != nil {
		setParts = append(setParts, fmt.Sprintf("position = $%d", len(args)+1))
		args = append(args, *req.Position)
	}

	if req.Description != nil {
		setParts = append(setParts, fmt.Sprintf("description = $%d", len(args)+1))
		args = append(args, *req.Description)
	}

	if req.ImagePrompt != nil {
		setParts = append(setParts, fmt.Sprintf("image_prompt = $%d", len(args)+1))
		args = append(args, *req.ImagePrompt)
	}

	if req.AnimationPrompt != nil {
		setParts = append(setParts, fmt.Sprintf("animation_prompt = $%d", len(args)+1))
		args = append(args, *req.AnimationPrompt)
	}

	if req.DurationSeconds != nil {
		setParts = append(setParts, fmt.Sprintf("duration_seconds = $%d", len(args)+1))
		args = append(args, *req.DurationSeconds)
	}

	if req.ImageAssetID != nil {
		setParts = append(setParts, fmt.Sprintf("image_asset_id = $%d", len(args)+1))
		args = append(args, *req.ImageAssetID)
	}

	if req.VideoAssetID != nil {
		setParts = append(setParts, fmt.Sprintf("video_asset_id = $%d", len(args)+1))
		args = append(args, *req.VideoAssetID)
	}

	if len(setParts) == 0 {
		return r.GetByID(ctx, id)
	}

	setParts = append(setParts, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`
        UPDATE scenes
        SET %s
        WHERE id = $%d
        RETURNING %s
    `, strings.Join(setParts, ", "), len(args), sceneColumns)

	var scene Scene
	err := r.db.GetContext(ctx, &scene, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSceneNotFound
		}
		return nil, fmt.Errorf("failed to update scene: %w", err)
	}

	return &scene, nil
}

// Delete removes a scene by ID
func (r *SceneRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM scenes WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete scene: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrSceneNotFound
	}

	return nil
}
