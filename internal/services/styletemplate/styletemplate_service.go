package styletemplate

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// StyleTemplateService contains business logic for style templates
type StyleTemplateService struct {
	repo *StyleTemplateRepo
}

// NewStyleTemplateService constructs a new StyleTemplateService
func NewStyleTemplateService(repo *StyleTemplateRepo) *StyleTemplateService {
	return &StyleTemplateService{repo: repo}
}

// Create registers a new style template
func (s *StyleTemplateService) Create(ctx context.Context, req *CreateStyleTemplateRequest) (*StyleTemplate, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("style template name is required")
	}
	if len(req.Prompts) == 0 {
		return nil, fmt.Errorf("style template needs at least one prompt")
	}

	tpl, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create style template: %w", err)
	}

	return tpl, nil
}

// GetByID fetches a style template by its identifier
func (s *StyleTemplateService) GetByID(ctx context.Context, id uuid.UUID) (*StyleTemplate, error) {
	tpl, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrStyleTemplateNotFound) {
			return nil, ErrStyleTemplateNotFound
		}
		return nil, fmt.Errorf("failed to get style template: %w", err)
	}

	return tpl, nil
}

// List returns all style templates
func (s *StyleTemplateService) List(ctx context.Context) ([]*StyleTemplate, error) {
	templates, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list style templates: %w", err)
	}

	return templates, nil
}

// Update modifies mutable style template fields
func (s *StyleTemplateService) Update(ctx context.Context, id uuid.UUID, req *UpdateStyleTemplateRequest) (*StyleTemplate, error) {
	tpl, err := s.repo.Update(ctx, id, req)
	if err != nil {
		if errors.Is(err, ErrStyleTemplateNotFound) {
			return nil, ErrStyleTemplateNotFound
		}
		return nil, fmt.Errorf("failed to update style template: %w", err)
	}

	return tpl, nil
}

// Delete removes a style template by ID
func (s *StyleTemplateService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrStyleTemplateNotFound) {
			return ErrStyleTemplateNotFound
		}
		return fmt.Errorf("failed to delete style template: %w", err)
	}

	return nil
}
