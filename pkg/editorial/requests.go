package editorial

import (
	"io"
	"time"

	"github.com/google/uuid"
)

// CreatePostRequest contains parameters for creating a post
type CreatePostRequest struct {
	Title         string      `json:"title" validate:"required,max=300"`
	Content       string      `json:"content" validate:"required"`
	Excerpt       string      `json:"excerpt,omitempty" validate:"max=1000"`
	FeaturedImage string      `json:"featured_image,omitempty" validate:"max=2048"`
	Status        PostStatus  `json:"status,omitempty"` // Defaults to draft
	CategoryID    *uuid.UUID  `json:"category_id,omitempty"`
	ScheduledFor  *time.Time  `json:"scheduled_for,omitempty"`
	TagIDs        []uuid.UUID `json:"tag_ids,omitempty"`
	SEO           *SEOPatch   `json:"seo_settings,omitempty"`
}

// UpdatePostRequest is a partial update of a post. Nil fields are left unchanged.
type UpdatePostRequest struct {
	Title         *string     `json:"title,omitempty" validate:"omitempty,min=1,max=300"`
	Slug          *string     `json:"slug,omitempty" validate:"omitempty,min=1,max=300"`
	Content       *string     `json:"content,omitempty" validate:"omitempty,min=1"`
	Excerpt       *string     `json:"excerpt,omitempty" validate:"omitempty,max=1000"`
	FeaturedImage *string     `json:"featured_image,omitempty" validate:"omitempty,max=2048"`
	Status        *PostStatus `json:"status,omitempty"`
	CategoryID    *uuid.UUID  `json:"category_id,omitempty"`
	ClearCategory bool        `json:"clear_category,omitempty"`
	ScheduledFor  *time.Time  `json:"scheduled_for,omitempty"`

	// TagIDs replaces the tag set when non-nil; an empty slice removes every tag
	TagIDs *[]uuid.UUID `json:"tag_ids,omitempty"`
	SEO    *SEOPatch    `json:"seo_settings,omitempty"`
}

// SEOPatch is a partial set of SEO fields. Nil fields are never written.
type SEOPatch struct {
	MetaTitle          *string `json:"meta_title,omitempty" validate:"omitempty,max=300"`
	MetaDescription    *string `json:"meta_description,omitempty" validate:"omitempty,max=1000"`
	Keywords           *string `json:"keywords,omitempty" validate:"omitempty,max=1000"`
	OGTitle            *string `json:"og_title,omitempty" validate:"omitempty,max=300"`
	OGDescription      *string `json:"og_description,omitempty" validate:"omitempty,max=1000"`
	OGImage            *string `json:"og_image,omitempty" validate:"omitempty,max=2048"`
	TwitterTitle       *string `json:"twitter_title,omitempty" validate:"omitempty,max=300"`
	TwitterDescription *string `json:"twitter_description,omitempty" validate:"omitempty,max=1000"`
	TwitterImage       *string `json:"twitter_image,omitempty" validate:"omitempty,max=2048"`
	CanonicalURL       *string `json:"canonical_url,omitempty" validate:"omitempty,url"`
	RobotsMeta         *string `json:"robots_meta,omitempty" validate:"omitempty,max=100"`
}

// CreateCommentRequest contains parameters for submitting a comment.
// There is no status field: new comments always wait for moderation.
type CreateCommentRequest struct {
	PostID      uuid.UUID  `json:"post_id"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	AuthorName  string     `json:"author_name" validate:"required,max=100"`
	AuthorEmail string     `json:"author_email" validate:"required,email,max=254"`
	Content     string     `json:"content" validate:"required,max=10000"`
	IPAddress   string     `json:"ip_address,omitempty" validate:"max=64"`
	UserAgent   string     `json:"user_agent,omitempty" validate:"max=512"`
}

// CreateCategoryRequest contains parameters for creating a category
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description,omitempty" validate:"max=1000"`
	Color       string `json:"color,omitempty" validate:"omitempty,hexcolor"`
}

// UpdateCategoryRequest is a partial update of a category
type UpdateCategoryRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	Color       *string `json:"color,omitempty" validate:"omitempty,hexcolor"`
}

// CreateTagRequest contains parameters for creating a tag
type CreateTagRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// UpdateTagRequest is a partial update of a tag
type UpdateTagRequest struct {
	Name *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
}

// CreateProfileRequest contains parameters for creating a profile.
// ID is usually the identity of the auth collaborator; a new one is generated when empty.
type CreateProfileRequest struct {
	ID          uuid.UUID `json:"id,omitempty"`
	Email       string    `json:"email" validate:"required,email,max=254"`
	DisplayName string    `json:"display_name" validate:"required,max=200"`
	AvatarURL   string    `json:"avatar_url,omitempty" validate:"omitempty,url"`
	Role        Role      `json:"role" validate:"required,oneof=admin editor author"`
}

// UpdateProfileRequest is a partial update of a profile
type UpdateProfileRequest struct {
	Email       *string `json:"email,omitempty" validate:"omitempty,email,max=254"`
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,min=1,max=200"`
	AvatarURL   *string `json:"avatar_url,omitempty" validate:"omitempty,url"`
	Role        *Role   `json:"role,omitempty" validate:"omitempty,oneof=admin editor author"`
}

// UploadMediaRequest contains a file to store in the media library
type UploadMediaRequest struct {
	FileName    string    `json:"file_name" validate:"required,max=255"`
	ContentType string    `json:"content_type,omitempty" validate:"max=255"`
	Body        io.Reader `json:"-" validate:"required"`
	AltText     string    `json:"alt_text,omitempty" validate:"max=500"`
	Caption     string    `json:"caption,omitempty" validate:"max=2000"`
}
