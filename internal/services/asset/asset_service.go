package asset

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
)

// AssetService stores and retrieves generated artifacts. Metadata lives in
// Postgres, payloads on the blob store.
type AssetService struct {
	repo  *AssetRepo
	blobs BlobStore
}

// NewAssetService constructs a new AssetService
func NewAssetService(repo *AssetRepo, blobs BlobStore) *AssetService {
	return &AssetService{repo: repo, blobs: blobs}
}

// Store persists an artifact payload and its metadata row.
func (s *AssetService) Store(ctx context.Context, req *CreateAssetRequest, data []byte) (*Asset, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("asset payload is empty")
	}
	if req.Kind != KindImage && req.Kind != KindVideo {
		return nil, fmt.Errorf("unknown asset kind: %s", req.Kind)
	}

	relPath := filepath.Join(req.ProjectID.String(), fmt.Sprintf("%s%s", uuid.NewString(), extensionFor(req.MimeType)))

	sizeBytes, err := s.blobs.Save(relPath, data)
	if err != nil {
		return nil, fmt.Errorf("failed to store asset payload: %w", err)
	}

	asset, err := s.repo.Create(ctx, req, relPath, sizeBytes)
	if err != nil {
		// Roll back the orphaned payload so disk and DB stay in sync.
		_ = s.blobs.Delete(relPath)
		return nil, fmt.Errorf("failed to create asset: %w", err)
	}

	return asset, nil
}

// GetByID fetches asset metadata by identifier
func (s *AssetService) GetByID(ctx context.Context, id uuid.UUID) (*Asset, error) {
	asset, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAssetNotFound) {
			return nil, ErrAssetNotFound
		}
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}

	return asset, nil
}

// Open returns an asset's metadata along with its payload.
func (s *AssetService) Open(ctx context.Context, id uuid.UUID) (*Asset, []byte, error) {
	asset, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	data, err := s.blobs.Read(asset.FilePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read asset payload: %w", err)
	}

	return asset, data, nil
}

// ListByProject returns a project's assets, newest first
func (s *AssetService) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*Asset, error) {
	assets, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}

	return assets, nil
}

// Delete removes an asset's metadata and payload
func (s *AssetService) Delete(ctx context.Context, id uuid.UUID) error {
	asset, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAssetNotFound) {
			return ErrAssetNotFound
		}
		return fmt.Errorf("failed to get asset: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrAssetNotFound) {
			return ErrAssetNotFound
		}
		return fmt.Errorf("failed to delete asset: %w", err)
	}

	if err := s.blobs.Delete(asset.FilePath); err != nil {
		return fmt.Errorf("failed to delete asset payload: %w", err)
	}

	return nil
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "video/mp4":
		return ".mp4"
	case "video/webm":
		return ".webm"
	default:
		return ".bin"
	}
}
