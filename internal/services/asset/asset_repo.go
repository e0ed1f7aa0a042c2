package asset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrAssetNotFound = errors.New("asset not found")

// AssetRepo handles database operations for assets
type AssetRepo struct {
	db *sqlx.DB
}

// NewAssetRepo creates a new asset repository
func NewAssetRepo(db *sqlx.DB) *AssetRepo {
	return &AssetRepo{db: db}
}

const assetColumns = `id, project_id, scene_id, kind, mime_type, duration_seconds, file_path, size_bytes, created_at`

// Create inserts an asset metadata row
func (r *AssetRepo) Create(ctx context.Context, req *CreateAssetRequest, filePath string, sizeBytes int64) (*Asset, error) {
	query := fmt.Sprintf(`
        INSERT INTO assets (project_id, scene_id, kind, mime_type, duration_seconds, file_path, size_bytes)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING %s
    `, assetColumns)

	var asset Asset
	err := r.db.GetContext(ctx, &asset, query,
		req.ProjectID, req.SceneID, req.Kind, req.MimeType, req.DurationSeconds, filePath, sizeBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to create asset: %w", err)
	}

	return &asset, nil
}

// GetByID retrieves an asset by ID
func (r *AssetRepo) GetByID(ctx context.Context, id uuid.UUID) (*Asset, error) {
	query := fmt.Sprintf(`SELECT %s FROM assets WHERE id = $1`, assetColumns)

	var asset Asset
	err := r.db.GetContext(ctx, &asset, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAssetNotFound
		}
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}

	return &asset, nil
}

// ListByProject retrieves all assets of a project, newest first
func (r *AssetRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*Asset, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM assets
        WHERE project_id = $1
        ORDER BY created_at DESC
    `, assetColumns)

	var assets []*Asset
	err := r.db.SelectContext(ctx, &assets, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}

	return assets, nil
}

// Delete removes an asset row by ID
func (r *AssetRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM assets WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrAssetNotFound
	}

	return nil
}
