package editorial

import (
	"time"

	"github.com/google/uuid"
)

// PostStatus represents the lifecycle state of a post
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
	PostStatusScheduled PostStatus = "scheduled"
	PostStatusArchived  PostStatus = "archived"
)

// IsValid reports whether s is a known post status
func (s PostStatus) IsValid() bool {
	switch s {
	case PostStatusDraft, PostStatusPublished, PostStatusScheduled, PostStatusArchived:
		return true
	}
	return false
}

// CommentStatus represents the moderation state of a comment
type CommentStatus string

const (
	CommentStatusPending  CommentStatus = "pending"
	CommentStatusApproved CommentStatus = "approved"
	CommentStatusSpam     CommentStatus = "spam"
	CommentStatusTrash    CommentStatus = "trash"
)

// IsValid reports whether s is a known comment status
func (s CommentStatus) IsValid() bool {
	switch s {
	case CommentStatusPending, CommentStatusApproved, CommentStatusSpam, CommentStatusTrash:
		return true
	}
	return false
}

// Role is the editorial role of a profile or principal
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleAuthor Role = "author"
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleAuthor:
		return true
	}
	return false
}

// DefaultCategoryColor is assigned to categories created without a color
const DefaultCategoryColor = "#3B82F6"

// DefaultRobotsMeta is the robots directive of SEO settings that never set one
const DefaultRobotsMeta = "index,follow"

// Principal identifies the caller of an operation. It is only used to stamp ownership.
type Principal struct {
	ID   uuid.UUID `json:"id"`
	Role Role      `json:"role"`
}

// Post is an editorial article
type Post struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Content       string     `json:"content"`
	Excerpt       string     `json:"excerpt,omitempty"`
	FeaturedImage string     `json:"featured_image,omitempty"`
	Status        PostStatus `json:"status"`
	CategoryID    *uuid.UUID `json:"category_id,omitempty"`
	AuthorID      uuid.UUID  `json:"author_id"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
	ScheduledFor  *time.Time `json:"scheduled_for,omitempty"`
	ViewCount     int64      `json:"view_count"`
	LikeCount     int64      `json:"like_count"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Hydrated on read paths
	Category *Category    `json:"category,omitempty"`
	Tags     []*Tag       `json:"tags,omitempty"`
	SEO      *SEOSettings `json:"seo_settings,omitempty"`
}

// Category groups posts
type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"created_at"`

	// PostCount is filled by ListCategories
	PostCount int64 `json:"post_count"`
}

// Tag labels posts
type Tag struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

// SEOSettings holds per-post search and social overrides
type SEOSettings struct {
	PostID             uuid.UUID `json:"post_id"`
	MetaTitle          *string   `json:"meta_title,omitempty"`
	MetaDescription    *string   `json:"meta_description,omitempty"`
	Keywords           *string   `json:"keywords,omitempty"`
	OGTitle            *string   `json:"og_title,omitempty"`
	OGDescription      *string   `json:"og_description,omitempty"`
	OGImage            *string   `json:"og_image,omitempty"`
	TwitterTitle       *string   `json:"twitter_title,omitempty"`
	TwitterDescription *string   `json:"twitter_description,omitempty"`
	TwitterImage       *string   `json:"twitter_image,omitempty"`
	CanonicalURL       *string   `json:"canonical_url,omitempty"`
	RobotsMeta         string    `json:"robots_meta"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Comment is a reader comment on a post. Replies nest one level deep.
type Comment struct {
	ID          uuid.UUID     `json:"id"`
	PostID      uuid.UUID     `json:"post_id"`
	ParentID    *uuid.UUID    `json:"parent_id,omitempty"`
	AuthorName  string        `json:"author_name"`
	AuthorEmail string        `json:"author_email"`
	Content     string        `json:"content"`
	Status      CommentStatus `json:"status"`
	IPAddress   string        `json:"ip_address,omitempty"`
	UserAgent   string        `json:"user_agent,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`

	Replies []*Comment `json:"replies,omitempty"`

	// Post is set on moderation queue entries
	Post *PostSummary `json:"post,omitempty"`
}

// PostSummary names the post a comment belongs to
type PostSummary struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
	Slug  string    `json:"slug"`
}

// IsRoot reports whether the comment starts a thread
func (c *Comment) IsRoot() bool {
	return c.ParentID == nil
}

// Profile is an editorial staff member
type Profile struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	Role        Role      `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// PostCount is filled by ListProfiles
	PostCount int64 `json:"post_count"`
}

// Media is an uploaded file stored in a BlobStore
type Media struct {
	ID           uuid.UUID  `json:"id"`
	FileName     string     `json:"file_name"`
	OriginalName string     `json:"original_name"`
	FileURL      string     `json:"file_url"`
	FileType     string     `json:"file_type"`
	FileSize     int64      `json:"file_size"`
	AltText      string     `json:"alt_text,omitempty"`
	Caption      string     `json:"caption,omitempty"`
	UploadedBy   *uuid.UUID `json:"uploaded_by,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Page is one page of a filtered listing
type Page[T any] struct {
	Items  []T   `json:"items"`
	Total  int64 `json:"total"`
	Offset int   `json:"offset"`
	Limit  int   `json:"limit"`
}

// PostFilter selects posts for ListPosts
type PostFilter struct {
	Status          *PostStatus
	CategoryID      *uuid.UUID
	AuthorID        *uuid.UUID
	Search          string
	ScheduledBefore *time.Time
	Offset          int
	Limit           int
}

// CommentFilter selects root comments for the moderation queue
type CommentFilter struct {
	PostID *uuid.UUID
	Status *CommentStatus
	Offset int
	Limit  int
}

// MediaFilter selects media items
type MediaFilter struct {
	UploadedBy *uuid.UUID
	// FileType matches as a prefix, so "image/" selects every image
	FileType string
	Offset   int
	Limit    int
}

const (
	// DefaultPageLimit applies when a filter has no limit
	DefaultPageLimit = 20
	// MaxPageLimit caps the limit of any filter
	MaxPageLimit = 100
)

// normalizePage clamps offset and limit into their valid ranges
func normalizePage(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return offset, limit
}
