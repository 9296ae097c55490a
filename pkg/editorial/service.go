package editorial

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// Service is the editorial engine: post lifecycle, comment moderation, taxonomy,
// profiles and the media library.
type Service interface {
	// Post operations
	CreatePost(ctx context.Context, principal Principal, req CreatePostRequest) (*Post, error)
	UpdatePost(ctx context.Context, id uuid.UUID, req UpdatePostRequest) (*Post, error)
	DeletePost(ctx context.Context, id uuid.UUID) error
	GetPost(ctx context.Context, id uuid.UUID) (*Post, error)
	// GetPostBySlug with includeUnpublished false only returns published posts and
	// records a view.
	GetPostBySlug(ctx context.Context, slug string, includeUnpublished bool) (*Post, error)
	ListPosts(ctx context.Context, filter PostFilter) (*Page[*Post], error)
	ListPublishedPosts(ctx context.Context, filter PostFilter) (*Page[*Post], error)
	// PublishDue publishes every scheduled post whose time is at or before now
	PublishDue(ctx context.Context, now time.Time) (int, error)

	// Relation sync
	SyncTags(ctx context.Context, postID uuid.UUID, tagIDs []uuid.UUID) (*TagSyncResult, error)
	SyncSEOSettings(ctx context.Context, postID uuid.UUID, patch SEOPatch) (*SEOSettings, error)
	ListPostTags(ctx context.Context, postID uuid.UUID) ([]*Tag, error)

	// Comment operations
	CreateComment(ctx context.Context, req CreateCommentRequest) (*Comment, error)
	GetComment(ctx context.Context, id uuid.UUID) (*Comment, error)
	SetCommentStatus(ctx context.Context, id uuid.UUID, status CommentStatus) (*Comment, error)
	DeleteComment(ctx context.Context, id uuid.UUID) error
	// ListCommentsForPost returns root comments newest first with their replies attached
	ListCommentsForPost(ctx context.Context, postID uuid.UUID, onlyApproved bool) ([]*Comment, error)
	// ListComments returns the moderation queue of root comments
	ListComments(ctx context.Context, filter CommentFilter) (*Page[*Comment], error)

	// Category operations
	CreateCategory(ctx context.Context, req CreateCategoryRequest) (*Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, req UpdateCategoryRequest) (*Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	GetCategory(ctx context.Context, id uuid.UUID) (*Category, error)
	ListCategories(ctx context.Context) ([]*Category, error)

	// Tag operations
	CreateTag(ctx context.Context, req CreateTagRequest) (*Tag, error)
	UpdateTag(ctx context.Context, id uuid.UUID, req UpdateTagRequest) (*Tag, error)
	DeleteTag(ctx context.Context, id uuid.UUID) error
	GetTag(ctx context.Context, id uuid.UUID) (*Tag, error)
	ListTags(ctx context.Context) ([]*Tag, error)

	// Profile operations
	CreateProfile(ctx context.Context, req CreateProfileRequest) (*Profile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*Profile, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error)
	ListProfiles(ctx context.Context) ([]*Profile, error)

	// Media operations
	UploadMedia(ctx context.Context, principal Principal, req UploadMediaRequest) (*Media, error)
	GetMedia(ctx context.Context, id uuid.UUID) (*Media, error)
	ListMedia(ctx context.Context, filter MediaFilter) (*Page[*Media], error)
	// DeleteMedia removes the blob first and keeps the metadata row if that fails
	DeleteMedia(ctx context.Context, id uuid.UUID) error
	// OpenMediaFile streams a stored media file by its stored file name
	OpenMediaFile(ctx context.Context, fileName string) (io.ReadCloser, *ObjectMeta, error)
}
