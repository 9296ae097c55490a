package editorial

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/google/uuid"
)

// mediaPrefix is the blob store folder of the media library
const mediaPrefix = "media/"

// mediaFileName builds the stored name of an upload: "<unix millis>-<random>.<ext>"
func (s *service) mediaFileName(originalName string) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	name := fmt.Sprintf("%d-%s", s.now().UnixMilli(), random)
	if ext := strings.ToLower(path.Ext(originalName)); ext != "" && ext != "." {
		name += ext
	}
	return name
}

func mediaKey(fileName string) string {
	return mediaPrefix + fileName
}

// countingReader counts the bytes read through it
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func (s *service) UploadMedia(ctx context.Context, principal Principal, req UploadMediaRequest) (*Media, error) {
	req.FileName = strings.TrimSpace(req.FileName)
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if s.blobStore == nil {
		return nil, asDependency(errors.New("media library has no blob store configured"))
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(path.Ext(req.FileName))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	fileName := s.mediaFileName(req.FileName)
	key := mediaKey(fileName)
	body := &countingReader{r: req.Body}
	if err := s.blobStore.Upload(ctx, key, body, contentType); err != nil {
		return nil, asDependency(&StorageError{Key: key, Op: "upload", Err: err})
	}

	media := &Media{
		ID:           uuid.New(),
		FileName:     fileName,
		OriginalName: req.FileName,
		FileURL:      s.blobStore.PublicURL(key),
		FileType:     contentType,
		FileSize:     body.n,
		AltText:      req.AltText,
		Caption:      req.Caption,
		CreatedAt:    s.now(),
	}
	if principal.ID != uuid.Nil {
		uploader := principal.ID
		media.UploadedBy = &uploader
	}

	if err := s.repo.CreateMedia(ctx, media); err != nil {
		// The row never existed; drop the orphaned blob
		if delErr := s.blobStore.Delete(ctx, key); delErr != nil {
			s.logger.Warn("failed to remove orphaned media blob", "key", key, "error", delErr)
		}
		return nil, fmt.Errorf("create media: %w", asDependency(err))
	}

	s.logger.Info("media uploaded", "media_id", media.ID, "key", key, "size", media.FileSize)
	return media, nil
}

func (s *service) GetMedia(ctx context.Context, id uuid.UUID) (*Media, error) {
	media, err := s.repo.GetMedia(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get media %s: %w", id, asDependency(err))
	}
	return media, nil
}

func (s *service) ListMedia(ctx context.Context, filter MediaFilter) (*Page[*Media], error) {
	filter.FileType = strings.TrimSpace(filter.FileType)
	filter.Offset, filter.Limit = normalizePage(filter.Offset, filter.Limit)

	items, total, err := s.repo.ListMedia(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", asDependency(err))
	}
	if items == nil {
		items = []*Media{}
	}
	return &Page[*Media]{Items: items, Total: total, Offset: filter.Offset, Limit: filter.Limit}, nil
}

func (s *service) DeleteMedia(ctx context.Context, id uuid.UUID) error {
	media, err := s.repo.GetMedia(ctx, id)
	if err != nil {
		return fmt.Errorf("delete media %s: %w", id, asDependency(err))
	}
	if s.blobStore == nil {
		return asDependency(errors.New("media library has no blob store configured"))
	}

	key := mediaKey(media.FileName)
	// A blob that is already gone does not block removing the row
	if err := s.blobStore.Delete(ctx, key); err != nil && !errors.Is(err, ErrObjectNotFound) {
		return asDependency(&StorageError{Key: key, Op: "delete", Err: err})
	}

	if err := s.repo.DeleteMedia(ctx, id); err != nil {
		return fmt.Errorf("delete media %s: %w", id, asDependency(err))
	}
	return nil
}

func (s *service) OpenMediaFile(ctx context.Context, fileName string) (io.ReadCloser, *ObjectMeta, error) {
	if s.blobStore == nil {
		return nil, nil, asDependency(errors.New("media library has no blob store configured"))
	}
	if fileName == "" || strings.ContainsAny(fileName, "/\\") || strings.Contains(fileName, "..") {
		return nil, nil, fmt.Errorf("%w: %s", ErrObjectNotFound, fileName)
	}

	key := mediaKey(fileName)
	meta, err := s.blobStore.GetObjectMeta(ctx, key)
	if err != nil {
		return nil, nil, asDependency(&StorageError{Key: key, Op: "stat", Err: err})
	}
	body, err := s.blobStore.Download(ctx, key)
	if err != nil {
		return nil, nil, asDependency(&StorageError{Key: key, Op: "download", Err: err})
	}
	return body, meta, nil
}
