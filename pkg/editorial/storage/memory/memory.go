package memory

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/tendant/simple-editorial/pkg/editorial"
)

type object struct {
	data        []byte
	contentType string
	updatedAt   time.Time
}

// Backend is an in-memory implementation of the editorial.BlobStore interface
type Backend struct {
	mu        sync.RWMutex
	objects   map[string]*object
	urlPrefix string
}

// New creates a new in-memory storage backend. Public URLs are urlPrefix joined
// with the object key; an empty prefix yields memory:// URLs.
func New(urlPrefix string) *Backend {
	urlPrefix = strings.TrimSuffix(urlPrefix, "/")
	if urlPrefix == "" {
		urlPrefix = "memory:/"
	}
	return &Backend{
		objects:   make(map[string]*object),
		urlPrefix: urlPrefix,
	}
}

var _ editorial.BlobStore = (*Backend)(nil)

// Upload stores the content of reader under key
func (b *Backend) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[key] = &object{data: data, contentType: contentType, updatedAt: time.Now().UTC()}
	return nil
}

// Download returns a reader over a copy of the stored content
func (b *Backend) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, exists := b.objects[key]
	if !exists {
		return nil, editorial.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(bytes.Clone(obj.data))), nil
}

// Delete removes the object
func (b *Backend) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.objects[key]; !exists {
		return editorial.ErrObjectNotFound
	}
	delete(b.objects, key)
	return nil
}

// GetObjectMeta returns metadata of a stored object
func (b *Backend) GetObjectMeta(ctx context.Context, key string) (*editorial.ObjectMeta, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, exists := b.objects[key]
	if !exists {
		return nil, editorial.ErrObjectNotFound
	}
	sum := md5.Sum(obj.data)
	return &editorial.ObjectMeta{
		Key:         key,
		Size:        int64(len(obj.data)),
		ContentType: obj.contentType,
		UpdatedAt:   obj.updatedAt,
		ETag:        hex.EncodeToString(sum[:]),
	}, nil
}

// PublicURL returns the URL prefix joined with key
func (b *Backend) PublicURL(key string) string {
	return b.urlPrefix + "/" + key
}

// Len returns the number of stored objects
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.objects)
}
