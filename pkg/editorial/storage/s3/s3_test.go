package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-editorial/pkg/editorial"
)

func TestS3Backend_BasicConfiguration(t *testing.T) {
	t.Run("EmptyBucket", func(t *testing.T) {
		_, err := New(Config{Region: "us-east-1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket name is required")
	})

	t.Run("DefaultRegion", func(t *testing.T) {
		backend, err := New(Config{
			Bucket:          "test-bucket",
			AccessKeyID:     "test-key",
			SecretAccessKey: "test-secret",
		})
		require.NoError(t, err)
		assert.Equal(t, "us-east-1", backend.config.Region)
	})
}

func TestPublicURL(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		expected string
	}{
		{
			name:     "aws virtual host",
			config:   Config{Bucket: "media-bucket", Region: "eu-west-1"},
			expected: "https://media-bucket.s3.eu-west-1.amazonaws.com/media/a.png",
		},
		{
			name:     "path style endpoint",
			config:   Config{Bucket: "media-bucket", Endpoint: "http://localhost:9000/", UsePathStyle: true},
			expected: "http://localhost:9000/media-bucket/media/a.png",
		},
		{
			name:     "virtual host endpoint",
			config:   Config{Bucket: "media-bucket", Endpoint: "https://storage.example.com"},
			expected: "https://media-bucket.storage.example.com/media/a.png",
		},
		{
			name:     "public base url wins",
			config:   Config{Bucket: "media-bucket", Endpoint: "http://localhost:9000", PublicBaseURL: "https://cdn.example.com/"},
			expected: "https://cdn.example.com/media/a.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, publicURL(tt.config, "media/a.png"))
		})
	}
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(&types.NoSuchKey{}))
	assert.True(t, isNotFound(&types.NotFound{}))
	assert.True(t, isNotFound(&smithy.GenericAPIError{Code: "NoSuchKey"}))
	assert.False(t, isNotFound(&smithy.GenericAPIError{Code: "AccessDenied"}))
	assert.False(t, isNotFound(errors.New("connection reset")))
}

// TestS3Backend_Integration runs against an S3-compatible service such as MinIO
// when S3_TEST_ENDPOINT is set.
func TestS3Backend_Integration(t *testing.T) {
	endpoint := os.Getenv("S3_TEST_ENDPOINT")
	if endpoint == "" {
		t.Skip("S3_TEST_ENDPOINT not set")
	}

	backend, err := New(Config{
		Region:                 "us-east-1",
		Bucket:                 "editorial-test",
		AccessKeyID:            os.Getenv("S3_TEST_ACCESS_KEY"),
		SecretAccessKey:        os.Getenv("S3_TEST_SECRET_KEY"),
		Endpoint:               endpoint,
		UsePathStyle:           true,
		CreateBucketIfNotExist: true,
	})
	require.NoError(t, err)

	ctx := context.Background()
	key := "media/" + uuid.NewString() + ".txt"
	data := []byte("hello s3")

	require.NoError(t, backend.Upload(ctx, key, bytes.NewReader(data), "text/plain"))

	meta, err := backend.GetObjectMeta(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), meta.Size)
	assert.Equal(t, "text/plain", meta.ContentType)

	rc, err := backend.Download(ctx, key)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, data, got)

	require.NoError(t, backend.Delete(ctx, key))
	assert.ErrorIs(t, backend.Delete(ctx, key), editorial.ErrObjectNotFound)
}
