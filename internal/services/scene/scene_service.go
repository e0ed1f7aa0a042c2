package scene

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// SceneService contains business logic for scenes
type SceneService struct {
	repo *SceneRepo
}

// NewSceneService constructs a new SceneService
func NewSceneService(repo *SceneRepo) *SceneService {
	return &SceneService{repo: repo}
}

// Create adds a scene to a project's storyboard
func (s *SceneService) Create(ctx context.Context, req *CreateSceneRequest) (*Scene, error) {
	if req.Description == "" {
		return nil, fmt.Errorf("scene description is required")
	}

	scene, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create scene: %w", err)
	}

	return scene, nil
}

// GetByID fetches a scene by its identifier
func (s *SceneService) GetByID(ctx context.Context, id uuid.UUID) (*Scene, error) {
	scene, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSceneNotFound) {
			return nil, ErrSceneNotFound
		}
		return nil, fmt.Errorf("failed to get scene: %w", err)
	}

	return scene, nil
}

// ListByProject returns a project's scenes in storyboard order
func (s *SceneService) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*Scene, error) {
	scenes, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list scenes: %w", err)
	}

	return scenes, nil
}

// Update modifies mutable scene fields
func (s *SceneService) Update(ctx context.Context, id uuid.UUID, req *UpdateSceneRequest) (*Scene, error) {
	scene, err := s.repo.Update(ctx, id, req)
	if err != nil {
		if errors.Is(err, ErrSceneNotFound) {
			return nil, ErrSceneNotFound
		}
		return nil, fmt.Errorf("failed to update scene: %w", err)
	}

	return scene, nil
}

// Delete removes a scene by ID
func (s *SceneService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrSceneNotFound) {
			return ErrSceneNotFound
		}
		return fmt.Errorf("failed to delete scene: %w", err)
	}

	return nil
}
