package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/tendant/simple-editorial/pkg/editorial"
)

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Error string `json:"error"`
}

// SyncFailureResponse is returned with 207 when a post was saved but one of its
// relations could not be synchronised
type SyncFailureResponse struct {
	Post  *editorial.Post    `json:"post"`
	Step  editorial.SyncStep `json:"failed_step"`
	Error string             `json:"error"`
}

const contentNotAvailable = "content not available"

// statusFor maps an engine error kind to an HTTP status
func statusFor(err error) int {
	switch editorial.Kind(err) {
	case editorial.ErrNotFound:
		return http.StatusNotFound
	case editorial.ErrConflict:
		return http.StatusConflict
	case editorial.ErrInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, msg string, err error) {
	status := statusFor(err)
	body := ErrorResponse{Error: err.Error()}
	if status == http.StatusBadGateway {
		logger.ErrorContext(r.Context(), msg, "error", err)
		body.Error = "a backing service failed, try again later"
	}
	render.Status(r, status)
	render.JSON(w, r, body)
}

// writePublicError hides whether unpublished content exists
func writePublicError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, msg string, err error) {
	switch editorial.Kind(err) {
	case editorial.ErrNotFound, editorial.ErrInvalidInput:
		writeStatus(w, r, http.StatusNotFound, contentNotAvailable)
	default:
		writeError(w, r, logger, msg, err)
	}
}

func writeStatus(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: msg})
}

// writeSaved renders a saved post, or 207 when a relation sync failed after the save
func writeSaved(w http.ResponseWriter, r *http.Request, logger *slog.Logger, status int, post *editorial.Post, err error) {
	var syncErr *editorial.SyncError
	if errors.As(err, &syncErr) && post != nil {
		logger.WarnContext(r.Context(), "post saved with failed relation sync", "post_id", post.ID, "step", syncErr.Step, "error", syncErr.Err)
		render.Status(r, http.StatusMultiStatus)
		render.JSON(w, r, SyncFailureResponse{Post: post, Step: syncErr.Step, Error: syncErr.Err.Error()})
		return
	}
	if err != nil {
		writeError(w, r, logger, "Failed to save post", err)
		return
	}
	render.Status(r, status)
	render.JSON(w, r, post)
}
