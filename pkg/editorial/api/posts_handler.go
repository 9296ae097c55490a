package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/simple-editorial/pkg/editorial"
)

// PostsHandler handles the editorial post endpoints
type PostsHandler struct {
	service editorial.Service
	logger  *slog.Logger
}

// NewPostsHandler creates a new posts handler
func NewPostsHandler(service editorial.Service, logger *slog.Logger) *PostsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostsHandler{service: service, logger: logger}
}

// Routes returns the routes for posts
func (h *PostsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListPosts)
	r.Post("/", h.CreatePost)
	r.Get("/{id}", h.GetPost)
	r.Patch("/{id}", h.UpdatePost)
	r.Delete("/{id}", h.DeletePost)

	// Relations
	r.Get("/{id}/tags", h.ListTags)
	r.Put("/{id}/tags", h.SyncTags)
	r.Put("/{id}/seo", h.SyncSEO)
	r.Get("/{id}/comments", h.ListComments)

	return r
}

// ListPosts lists posts of any status
func (h *PostsHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	var filter editorial.PostFilter
	var err error
	if filter.Offset, filter.Limit, err = queryPage(r); err != nil {
		writeStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if filter.CategoryID, err = queryID(r, "category_id"); err != nil {
		writeStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if filter.AuthorID, err = queryID(r, "author_id"); err != nil {
		writeStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if v := r.URL.Query().Get("status"); v != "" {
		status := editorial.PostStatus(v)
		filter.Status = &status
	}
	filter.Search = r.URL.Query().Get("search")

	page, err := h.service.ListPosts(r.Context(), filter)
	if err != nil {
		writeError(w, r, h.logger, "Failed to list posts", err)
		return
	}
	render.JSON(w, r, page)
}

// CreatePost creates a post authored by the caller
func (h *PostsHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeStatus(w, r, http.StatusUnauthorized, "missing principal")
		return
	}
	var req editorial.CreatePostRequest
	if err := decodeJSON(r, &req); err != nil {
		writeStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}

	post, err := h.service.CreatePost(r.Context(), principal, req)
	if err == nil {
		h.logger.Info("Post created", "post_id", post.ID, "slug", post.Slug, "author_id", principal.ID)
	}
	writeSaved(w, r, h.logger, http.StatusCreated, post, err)
}

// GetPost returns a post with its category, tags and SEO settings
func (h *PostsHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}
	post, err := h.service.GetPost(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, "Failed to get post", err)
		return
	}
	render.JSON(w, r, post)
}

// UpdatePost applies a partial update
func (h *PostsHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}
	var req editorial.UpdatePostRequest
	if err := decodeJSON(r, &req); err != nil {
		writeStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}

	post, err := h.service.UpdatePost(r.Context(), id, req)
	writeSaved(w, r, h.logger, http.StatusOK, post, err)
}

// DeletePost deletes a post with its comments, tag links and SEO settings
func (h *PostsHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.service.DeletePost(r.Context(), id); err != nil {
		writeError(w, r, h.logger, "Failed to delete post", err)
		return
	}
	h.logger.Info("Post deleted", "post_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// ListTags returns the tags of a post
func (h *PostsHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}
	tags, err := h.service.ListPostTags(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, "Failed to list post tags", err)
		return
	}
	if tags == nil {
		tags = []*editorial.Tag{}
	}
	render.JSON(w, r, tags)
}

// SyncTagsRequest is the desired tag set of a post
type SyncTagsRequest struct {
	TagIDs []uuid.UUID `json:"tag_ids"`
}

// SyncTagsResponse reports the links written by a tag sync
type SyncTagsResponse struct {
	Added   []uuid.UUID `json:"added"`
	Removed []uuid.UUID `json:"removed"`
}

// SyncTags replaces the tag set of a post
func (h *PostsHandler) SyncTags(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}
	var req SyncTagsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.SyncTags(r.Context(), id, req.TagIDs)
	if err != nil {
		writeError(w, r, h.logger, "Failed to sync tags", err)
		return
	}
	resp := SyncTagsResponse{Added: result.Added, Removed: result.Removed}
	if resp.Added == nil {
		resp.Added = []uuid.UUID{}
	}
	if resp.Removed == nil {
		resp.Removed = []uuid.UUID{}
	}
	render.JSON(w, r, resp)
}

// SyncSEO writes the non-nil SEO fields of a post
func (h *PostsHandler) SyncSEO(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}
	var patch editorial.SEOPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}

	settings, err := h.service.SyncSEOSettings(r.Context(), id, patch)
	if err != nil {
		writeError(w, r, h.logger, "Failed to sync SEO settings", err)
		return
	}
	render.JSON(w, r, settings)
}

// ListComments returns the full thread of a post, unapproved comments included
func (h *PostsHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}
	comments, err := h.service.ListCommentsForPost(r.Context(), id, false)
	if err != nil {
		writeError(w, r, h.logger, "Failed to list comments", err)
		return
	}
	if comments == nil {
		comments = []*editorial.Comment{}
	}
	render.JSON(w, r, comments)
}
