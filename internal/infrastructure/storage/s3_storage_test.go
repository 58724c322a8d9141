package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/catalogdash/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewS3ImageStorage_Validation(t *testing.T) {
	t.Run("nil config returns error", func(t *testing.T) {
		_, err := NewS3ImageStorage(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration is required")
	})

	t.Run("missing bucket returns error", func(t *testing.T) {
		cfg := &config.StorageConfig{
			AccessKey: "test-key",
			SecretKey: "test-secret",
		}
		_, err := NewS3ImageStorage(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket is required")
	})

	t.Run("missing access key returns error", func(t *testing.T) {
		cfg := &config.StorageConfig{
			Bucket:    "test-bucket",
			SecretKey: "test-secret",
		}
		_, err := NewS3ImageStorage(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "access key is required")
	})

	t.Run("missing secret key returns error", func(t *testing.T) {
		cfg := &config.StorageConfig{
			Bucket:    "test-bucket",
			AccessKey: "test-key",
		}
		_, err := NewS3ImageStorage(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "secret key is required")
	})

	t.Run("valid config creates storage", func(t *testing.T) {
		cfg := &config.StorageConfig{
			Bucket:            "test-bucket",
			AccessKey:         "test-key",
			SecretKey:         "test-secret",
			Region:            "us-east-1",
			Endpoint:          "http://localhost:9000",
			UsePathStyle:      true,
			PresignExpiration: 15 * time.Minute,
		}
		storage, err := NewS3ImageStorage(cfg)
		require.NoError(t, err)
		require.NotNil(t, storage)
		assert.Equal(t, "test-bucket", storage.GetBucket())
		assert.Equal(t, 15*time.Minute, storage.presignExpiration)
	})

	t.Run("default presign expiration is one hour", func(t *testing.T) {
		cfg := &config.StorageConfig{
			Bucket:    "test-bucket",
			AccessKey: "test-key",
			SecretKey: "test-secret",
		}
		storage, err := NewS3ImageStorage(cfg)
		require.NoError(t, err)
		assert.Equal(t, time.Hour, storage.presignExpiration)
	})
}

func TestNewS3ImageStorage_Options(t *testing.T) {
	cfg := &config.StorageConfig{
		Bucket:    "test-bucket",
		AccessKey: "test-key",
		SecretKey: "test-secret",
	}

	logger := zap.NewNop()
	storage, err := NewS3ImageStorage(cfg,
		WithLogger(logger),
		WithPresignExpiration(5*time.Minute),
	)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, storage.presignExpiration)
	assert.Same(t, logger, storage.logger)
}

func TestNewImageKey(t *testing.T) {
	t.Run("keeps lowercase extension", func(t *testing.T) {
		key := newImageKey("Photo.PNG")
		assert.True(t, strings.HasPrefix(key, imageKeyPrefix))
		assert.True(t, strings.HasSuffix(key, ".png"))
	})

	t.Run("no extension produces bare key", func(t *testing.T) {
		key := newImageKey("photo")
		assert.True(t, strings.HasPrefix(key, imageKeyPrefix))
		assert.False(t, strings.Contains(key[len(imageKeyPrefix):], "."))
	})

	t.Run("keys are unique", func(t *testing.T) {
		assert.NotEqual(t, newImageKey("a.png"), newImageKey("a.png"))
	})
}
