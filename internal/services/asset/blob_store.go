package asset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// BlobStore persists asset payloads outside the database.
type BlobStore interface {
	Save(relPath string, data []byte) (int64, error)
	Read(relPath string) ([]byte, error)
	Delete(relPath string) error
}

// DiskBlobStore keeps asset payloads on the local filesystem under a
// single base directory, one subdirectory per project.
type DiskBlobStore struct {
	Path string
}

func NewDiskBlobStore(path string) *DiskBlobStore {
	return &DiskBlobStore{
		Path: path,
	}
}

// Save writes data under the base directory and returns the size written.
func (s *DiskBlobStore) Save(relPath string, data []byte) (int64, error) {
	fullPath, err := s.resolve(relPath)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return 0, fmt.Errorf("failed to create asset directory: %w", err)
	}

	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return 0, fmt.Errorf("failed to write asset file: %w", err)
	}

	return int64(len(data)), nil
}

// Read loads an asset payload from disk.
func (s *DiskBlobStore) Read(relPath string) ([]byte, error) {
	fullPath, err := s.resolve(relPath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read asset file: %w", err)
	}

	return data, nil
}

// Delete removes an asset payload from disk. Missing files are not an error.
func (s *DiskBlobStore) Delete(relPath string) error {
	fullPath, err := s.resolve(relPath)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete asset file: %w", err)
	}

	return nil
}

// resolve joins relPath under the base directory and rejects paths that
// would escape it.
func (s *DiskBlobStore) resolve(relPath string) (string, error) {
	cleanPath := filepath.Clean(relPath)
	if strings.HasPrefix(cleanPath, "..") || filepath.IsAbs(cleanPath) {
		return "", fmt.Errorf("invalid asset path: %s", relPath)
	}

	fullPath := filepath.Join(s.Path, cleanPath)

	absBase, err := filepath.Abs(s.Path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base directory: %w", err)
	}
	absFull, err := filepath.Abs(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve asset path: %w", err)
	}
	if !strings.HasPrefix(absFull, absBase) {
		return "", fmt.Errorf("invalid asset path: %s", relPath)
	}

	return fullPath, nil
}
