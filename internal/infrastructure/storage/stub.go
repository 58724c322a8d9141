package storage

import (
	"context"
	"errors"
	"sync"

	catalogapp "github.com/catalogdash/backend/internal/application/catalog"
)

// MemoryImageStorage is an in-memory implementation of ImageStorage.
// Use this for development until a real storage backend is configured.
type MemoryImageStorage struct {
	// BaseURL is the base URL for generated display URLs
	BaseURL string

	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryImageStorage creates a new MemoryImageStorage
func NewMemoryImageStorage() *MemoryImageStorage {
	return &MemoryImageStorage{
		BaseURL: "https://storage.example.com",
		objects: make(map[string][]byte),
	}
}

// Ensure MemoryImageStorage implements ImageStorage
var _ catalogapp.ImageStorage = (*MemoryImageStorage)(nil)

// Upload stores the image bytes in memory.
func (s *MemoryImageStorage) Upload(ctx context.Context, fileName, contentType string, data []byte) (*catalogapp.ImageRef, error) {
	if len(data) == 0 {
		return nil, errors.New("image data is required")
	}

	key := newImageKey(fileName)

	s.mu.Lock()
	stored := make([]byte, len(data))
	copy(stored, data)
	s.objects[key] = stored
	s.mu.Unlock()

	url, err := s.ResolveURL(ctx, key)
	if err != nil {
		return nil, err
	}
	return &catalogapp.ImageRef{ID: key, URL: url}, nil
}

// Delete removes a stored image. Deleting an unknown image is an error so
// callers exercise the same failure paths as with a real backend.
func (s *MemoryImageStorage) Delete(ctx context.Context, imageID string) error {
	if imageID == "" {
		return errors.New("image ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[imageID]; !ok {
		return errors.New("image not found")
	}
	delete(s.objects, imageID)
	return nil
}

// ResolveURL derives a display URL for a stored image.
func (s *MemoryImageStorage) ResolveURL(ctx context.Context, imageID string) (string, error) {
	if imageID == "" {
		return "", errors.New("image ID is required")
	}
	return s.BaseURL + "/" + imageID, nil
}

// Len returns the number of stored images.
func (s *MemoryImageStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
