package editorial

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// PostRepository persists posts and their relations
type PostRepository interface {
	CreatePost(ctx context.Context, post *Post) error
	GetPost(ctx context.Context, id uuid.UUID) (*Post, error)
	GetPostBySlug(ctx context.Context, slug string) (*Post, error)
	UpdatePost(ctx context.Context, post *Post) error
	// DeletePost removes the post with its tag links, SEO settings and comments
	DeletePost(ctx context.Context, id uuid.UUID) error
	ListPosts(ctx context.Context, filter PostFilter) ([]*Post, int64, error)
	// AddViewCount atomically adds delta to the view count and returns the new value
	AddViewCount(ctx context.Context, id uuid.UUID, delta int64) (int64, error)

	ListPostTagIDs(ctx context.Context, postID uuid.UUID) ([]uuid.UUID, error)
	// AddPostTags links tags to a post. Unknown tag ids fail with ErrInvalidReference
	// and nothing is written.
	AddPostTags(ctx context.Context, postID uuid.UUID, tagIDs []uuid.UUID) error
	RemovePostTags(ctx context.Context, postID uuid.UUID, tagIDs []uuid.UUID) error
	// ListTagsForPosts returns the tags of each post, ordered by name
	ListTagsForPosts(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID][]*Tag, error)

	GetSEOSettings(ctx context.Context, postID uuid.UUID) (*SEOSettings, error)
	UpsertSEOSettings(ctx context.Context, settings *SEOSettings) error
}

// CommentRepository persists comments
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *Comment) error
	GetComment(ctx context.Context, id uuid.UUID) (*Comment, error)
	UpdateComment(ctx context.Context, comment *Comment) error
	// DeleteComment removes the comment and, for a root comment, its replies
	DeleteComment(ctx context.Context, id uuid.UUID) error
	// ListCommentsByPost returns every comment of a post, newest first
	ListCommentsByPost(ctx context.Context, postID uuid.UUID) ([]*Comment, error)
	// ListRootComments returns root comments matching the filter, newest first
	ListRootComments(ctx context.Context, filter CommentFilter) ([]*Comment, int64, error)
}

// TaxonomyRepository persists categories and tags
type TaxonomyRepository interface {
	CreateCategory(ctx context.Context, category *Category) error
	GetCategory(ctx context.Context, id uuid.UUID) (*Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*Category, error)
	UpdateCategory(ctx context.Context, category *Category) error
	// DeleteCategory removes the category and clears it from its posts
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	// ListCategories returns categories ordered by name with their post counts
	ListCategories(ctx context.Context) ([]*Category, error)

	CreateTag(ctx context.Context, tag *Tag) error
	GetTag(ctx context.Context, id uuid.UUID) (*Tag, error)
	GetTagBySlug(ctx context.Context, slug string) (*Tag, error)
	UpdateTag(ctx context.Context, tag *Tag) error
	// DeleteTag removes the tag and its post links
	DeleteTag(ctx context.Context, id uuid.UUID) error
	ListTags(ctx context.Context) ([]*Tag, error)
}

// ProfileRepository persists staff profiles
type ProfileRepository interface {
	CreateProfile(ctx context.Context, profile *Profile) error
	GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error)
	UpdateProfile(ctx context.Context, profile *Profile) error
	// ListProfiles returns profiles newest first with their post counts
	ListProfiles(ctx context.Context) ([]*Profile, error)
}

// MediaRepository persists media metadata
type MediaRepository interface {
	CreateMedia(ctx context.Context, media *Media) error
	GetMedia(ctx context.Context, id uuid.UUID) (*Media, error)
	DeleteMedia(ctx context.Context, id uuid.UUID) error
	ListMedia(ctx context.Context, filter MediaFilter) ([]*Media, int64, error)
}

// Repository is the transactional store behind the engine
type Repository interface {
	PostRepository
	CommentRepository
	TaxonomyRepository
	ProfileRepository
	MediaRepository

	// InTx runs fn inside a single transaction. The repository passed to fn is
	// bound to that transaction; fn returning an error rolls it back.
	InTx(ctx context.Context, fn func(tx Repository) error) error
}

// ObjectMeta describes a stored blob
type ObjectMeta struct {
	Key         string
	Size        int64
	ContentType string
	UpdatedAt   time.Time
	ETag        string
}

// BlobStore stores media objects
type BlobStore interface {
	// Upload stores the content of reader under key
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) error

	// Download returns the content stored under key
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the object. A missing object fails with ErrObjectNotFound.
	Delete(ctx context.Context, key string) error

	// GetObjectMeta returns metadata of a stored object
	GetObjectMeta(ctx context.Context, key string) (*ObjectMeta, error)

	// PublicURL returns the public reference URL of key
	PublicURL(key string) string
}

// EventSink receives lifecycle notifications after successful writes
type EventSink interface {
	PostCreated(ctx context.Context, post *Post) error
	PostUpdated(ctx context.Context, post *Post) error
	PostStatusChanged(ctx context.Context, post *Post, from PostStatus) error
	PostDeleted(ctx context.Context, postID uuid.UUID) error

	CommentCreated(ctx context.Context, comment *Comment) error
	CommentStatusChanged(ctx context.Context, comment *Comment, from CommentStatus) error
	CommentDeleted(ctx context.Context, commentID uuid.UUID) error
}

// ViewCounter records public post views
type ViewCounter interface {
	// Increment records one view of post and returns its view count including that view
	Increment(ctx context.Context, post *Post) (int64, error)
}
