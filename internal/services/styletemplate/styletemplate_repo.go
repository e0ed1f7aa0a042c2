package styletemplate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrStyleTemplateNotFound = errors.New("style template not found")

// StyleTemplateRepo handles database operations for style templates
type StyleTemplateRepo struct {
	db *sqlx.DB
}

// NewStyleTemplateRepo creates a new style template repository
func NewStyleTemplateRepo(db *sqlx.DB) *StyleTemplateRepo {
	return &StyleTemplateRepo{db: db}
}

const styleTemplateColumns = `id, name, description, prompts, created_at, updated_at`

// Create creates a new style template
func (r *StyleTemplateRepo) Create(ctx context.Context, req *CreateStyleTemplateRequest) (*StyleTemplate, error) {
	query := fmt.Sprintf(`
        INSERT INTO style_templates (name, description, prompts)
        VALUES ($1, $2, $3)
        RETURNING %s
    `, styleTemplateColumns)

	var tpl StyleTemplate
	err := r.db.GetContext(ctx, &tpl, query, req.Name, req.Description, req.Prompts)
	if err != nil {
		return nil, fmt.Errorf("failed to create style template: %w", err)
	}

	return &tpl, nil
}

// GetByID retrieves a style template by ID
func (r *StyleTemplateRepo) GetByID(ctx context.Context, id uuid.UUID) (*StyleTemplate, error) {
	query := fmt.Sprintf(`SELECT %s FROM style_templates WHERE id = $1`, styleTemplateColumns)

	var tpl StyleTemplate
	err := r.db.GetContext(ctx, &tpl, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrStyleTemplateNotFound
		}
		return nil, fmt.Errorf("failed to get style template: %w", err)
	}

	return &tpl, nil
}

// List retrieves all style templates ordered by name
func (r *StyleTemplateRepo) List(ctx context.Context) ([]*StyleTemplate, error) {
	query := fmt.Sprintf(`SELECT %s FROM style_templates ORDER BY name ASC`, styleTemplateColumns)

	var templates []*StyleTemplate
	err := r.db.SelectContext(ctx, &templates, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list style templates: %w", err)
	}

	return templates, nil
}

// Update updates style template fields
func (r *StyleTemplateRepo) Update(ctx context.Context, id uuid.UUID, req *UpdateStyleTemplateRequest) (*StyleTemplate, error) {
	setParts := []string{}
	args := []interface{}{}

	if req.Name != nil {
		setParts = append(setParts, fmt.Sprintf("name = $%d", len(args)+1))
		args = append(args, *req.Name)
	}

	if req.Description != nil {
		setParts = append(setParts, fmt.Sprintf("description = $%d", len(args)+1))
		args = append(args, *req.Description)
	}

	if req.Prompts != nil {
		setParts = append(setParts, fmt.Sprintf("prompts = $%d", len(args)+1))
		args = append(args, req.Prompts)
	}

	if len(setParts) == 0 {
		return r.GetByID(ctx, id)
	}

	setParts = append(setParts, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`
        UPDATE style_templates
        SET %s
        WHERE id = $%d
        RETURNING %s
    `, strings.Join(setParts, ", "), len(args), styleTemplateColumns)

	var tpl StyleTemplate
	err := r.db.GetContext(ctx, &tpl, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrStyleTemplateNotFound
		}
		return nil, fmt.Errorf("failed to update style template: %w", err)
	}

	return &tpl, nil
}

// Delete removes a style template by ID
func (r *StyleTemplateRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM style_templates WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete style template: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrStyleTemplateNotFound
	}

	return nil
}
