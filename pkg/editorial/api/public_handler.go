package api

import (
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/simple-editorial/pkg/editorial"
)

// PublicHandler serves published content to anonymous readers
type PublicHandler struct {
	service editorial.Service
	logger  *slog.Logger
}

// NewPublicHandler creates a new public handler
func NewPublicHandler(service editorial.Service, logger *slog.Logger) *PublicHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PublicHandler{service: service, logger: logger}
}

// Routes returns the routes for public reads
func (h *PublicHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/posts", h.ListPosts)
	r.Get("/posts/{slug}", h.GetPost)
	r.Get("/posts/{slug}/comments", h.ListComments)
	r.Post("/posts/{slug}/comments", h.CreateComment)

	r.Get("/categories", h.ListCategories)
	r.Get("/tags", h.ListTags)

	r.Get("/files/media/{fileName}", h.ServeMedia)

	return r
}

// ListPosts lists published posts, newest first
func (h *PublicHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	offset, limit, err := queryPage(r)
	if err != nil {
		writeStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}
	categoryID, err := queryID(r, "category_id")
	if err != nil {
		writeStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.service.ListPublishedPosts(r.Context(), editorial.PostFilter{
		CategoryID: categoryID,
		Search:     r.URL.Query().Get("search"),
		Offset:     offset,
		Limit:      limit,
	})
	if err != nil {
		writeError(w, r, h.logger, "Failed to list published posts", err)
		return
	}
	render.JSON(w, r, page)
}

// GetPost returns a published post by slug and counts the view
func (h *PublicHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.GetPostBySlug(r.Context(), chi.URLParam(r, "slug"), false)
	if err != nil {
		writePublicError(w, r, h.logger, "Failed to get post", err)
		return
	}
	render.JSON(w, r, post)
}

// publishedPost resolves the slug without counting a view
func (h *PublicHandler) publishedPost(w http.ResponseWriter, r *http.Request) (*editorial.Post, bool) {
	post, err := h.service.GetPostBySlug(r.Context(), chi.URLParam(r, "slug"), true)
	if err != nil {
		writePublicError(w, r, h.logger, "Failed to get post", err)
		return nil, false
	}
	if post.Status != editorial.PostStatusPublished {
		writeStatus(w, r, http.StatusNotFound, contentNotAvailable)
		return nil, false
	}
	return post, true
}

// ListComments returns the approved thread of a published post
func (h *PublicHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	post, ok := h.publishedPost(w, r)
	if !ok {
		return
	}
	comments, err := h.service.ListCommentsForPost(r.Context(), post.ID, true)
	if err != nil {
		writePublicError(w, r, h.logger, "Failed to list comments", err)
		return
	}
	if comments == nil {
		comments = []*editorial.Comment{}
	}
	render.JSON(w, r, comments)
}

// PublicCommentRequest is the body of a reader comment
type PublicCommentRequest struct {
	ParentID    string `json:"parent_id,omitempty"`
	AuthorName  string `json:"author_name"`
	AuthorEmail string `json:"author_email"`
	Content     string `json:"content"`
}

// CreateComment submits a comment for moderation
func (h *PublicHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	var req PublicCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}
	post, ok := h.publishedPost(w, r)
	if !ok {
		return
	}

	create := editorial.CreateCommentRequest{
		PostID:      post.ID,
		AuthorName:  req.AuthorName,
		AuthorEmail: req.AuthorEmail,
		Content:     req.Content,
		IPAddress:   clientIP(r),
		UserAgent:   r.UserAgent(),
	}
	if req.ParentID != "" {
		parent, err := uuid.Parse(req.ParentID)
		if err != nil {
			writeStatus(w, r, http.StatusBadRequest, "invalid parent_id")
			return
		}
		create.ParentID = &parent
	}

	comment, err := h.service.CreateComment(r.Context(), create)
	if err != nil {
		writeError(w, r, h.logger, "Failed to create comment", err)
		return
	}

	h.logger.Info("Comment submitted", "comment_id", comment.ID, "post_id", post.ID)
	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, comment)
}

// ListCategories lists categories with post counts
func (h *PublicHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, h.logger, "Failed to list categories", err)
		return
	}
	render.JSON(w, r, categories)
}

// ListTags lists tags by name
func (h *PublicHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.service.ListTags(r.Context())
	if err != nil {
		writeError(w, r, h.logger, "Failed to list tags", err)
		return
	}
	render.JSON(w, r, tags)
}

// ServeMedia streams a media file from the blob store
func (h *PublicHandler) ServeMedia(w http.ResponseWriter, r *http.Request) {
	body, meta, err := h.service.OpenMediaFile(r.Context(), chi.URLParam(r, "fileName"))
	if err != nil {
		writePublicError(w, r, h.logger, "Failed to open media file", err)
		return
	}
	defer body.Close()

	if meta.ETag != "" {
		w.Header().Set("ETag", meta.ETag)
		if r.Header.Get("If-None-Match") == meta.ETag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}
	if meta.ContentType != "" {
		w.Header().Set("Content-Type", meta.ContentType)
	}
	if meta.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(meta.Size, 10))
	}
	if !meta.UpdatedAt.IsZero() {
		w.Header().Set("Last-Modified", meta.UpdatedAt.UTC().Format(http.TimeFormat))
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")

	if _, err := io.Copy(w, body); err != nil {
		h.logger.Warn("Media stream interrupted", "file", meta.Key, "error", err)
	}
}

// clientIP prefers the address chi's RealIP middleware put in RemoteAddr
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
