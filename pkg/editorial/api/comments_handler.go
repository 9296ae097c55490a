package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-editorial/pkg/editorial"
)

// CommentsHandler handles the moderation endpoints
type CommentsHandler struct {
	service editorial.Service
	logger  *slog.Logger
}

// NewCommentsHandler creates a new comments handler
func NewCommentsHandler(service editorial.Service, logger *slog.Logger) *CommentsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommentsHandler{service: service, logger: logger}
}

// Routes returns the routes for comment moderation
func (h *CommentsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListComments)
	r.Get("/{id}", h.GetComment)
	r.Put("/{id}/status", h.SetStatus)
	r.Delete("/{id}", h.DeleteComment)

	return r
}

// ListComments returns the moderation queue of root comments
func (h *CommentsHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	var filter editorial.CommentFilter
	var err error
	if filter.Offset, filter.Limit, err = queryPage(r); err != nil {
		writeStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if filter.PostID, err = queryID(r, "post_id"); err != nil {
		writeStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if v := r.URL.Query().Get("status"); v != "" {
		status := editorial.CommentStatus(v)
		filter.Status = &status
	}

	page, err := h.service.ListComments(r.Context(), filter)
	if err != nil {
		writeError(w, r, h.logger, "Failed to list comments", err)
		return
	}
	render.JSON(w, r, page)
}

// GetComment returns a single comment
func (h *CommentsHandler) GetComment(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}
	comment, err := h.service.GetComment(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, "Failed to get comment", err)
		return
	}
	render.JSON(w, r, comment)
}

// SetStatusRequest moves a comment to another moderation status
type SetStatusRequest struct {
	Status editorial.CommentStatus `json:"status"`
}

// SetStatus changes the moderation status of a comment
func (h *CommentsHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}
	var req SetStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}

	comment, err := h.service.SetCommentStatus(r.Context(), id, req.Status)
	if err != nil {
		writeError(w, r, h.logger, "Failed to set comment status", err)
		return
	}
	if p, ok := PrincipalFromContext(r.Context()); ok {
		h.logger.Info("Comment moderated", "comment_id", id, "status", comment.Status, "moderator_id", p.ID)
	}
	render.JSON(w, r, comment)
}

// DeleteComment deletes a comment; deleting a root comment deletes its replies
func (h *CommentsHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.service.DeleteComment(r.Context(), id); err != nil {
		writeError(w, r, h.logger, "Failed to delete comment", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
