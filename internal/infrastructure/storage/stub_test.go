package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryImageStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("upload returns ref with display URL", func(t *testing.T) {
		s := NewMemoryImageStorage()

		ref, err := s.Upload(ctx, "photo.jpg", "image/jpeg", []byte{1, 2, 3})

		require.NoError(t, err)
		assert.NotEmpty(t, ref.ID)
		assert.Contains(t, ref.URL, ref.ID)
		assert.Equal(t, 1, s.Len())
	})

	t.Run("upload rejects empty data", func(t *testing.T) {
		s := NewMemoryImageStorage()
		_, err := s.Upload(ctx, "photo.jpg", "image/jpeg", nil)
		require.Error(t, err)
	})

	t.Run("delete removes stored image", func(t *testing.T) {
		s := NewMemoryImageStorage()
		ref, err := s.Upload(ctx, "photo.jpg", "image/jpeg", []byte{1})
		require.NoError(t, err)

		require.NoError(t, s.Delete(ctx, ref.ID))
		assert.Equal(t, 0, s.Len())
	})

	t.Run("delete of unknown image fails", func(t *testing.T) {
		s := NewMemoryImageStorage()
		require.Error(t, s.Delete(ctx, "missing"))
	})

	t.Run("resolve URL requires image ID", func(t *testing.T) {
		s := NewMemoryImageStorage()
		_, err := s.ResolveURL(ctx, "")
		require.Error(t, err)
	})
}
