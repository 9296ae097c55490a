package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-editorial/pkg/editorial"
)

const (
	maxUploadSize   = 50 << 20
	maxUploadMemory = 8 << 20
)

// MediaHandler handles the media library endpoints
type MediaHandler struct {
	service editorial.Service
	logger  *slog.Logger
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(service editorial.Service, logger *slog.Logger) *MediaHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &MediaHandler{service: service, logger: logger}
}

// Routes returns the routes for media
func (h *MediaHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListMedia)
	r.Post("/", h.UploadMedia)
	r.Get("/{id}", h.GetMedia)
	r.Delete("/{id}", h.DeleteMedia)
	return r
}

// ListMedia lists media, optionally by uploader and file type prefix
func (h *MediaHandler) ListMedia(w http.ResponseWriter, r *http.Request) {
	var filter editorial.MediaFilter
	var err error
	if filter.Offset, filter.Limit, err = queryPage(r); err != nil {
		writeStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if filter.UploadedBy, err = queryID(r, "uploaded_by"); err != nil {
		writeStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}
	filter.FileType = r.URL.Query().Get("type")

	page, err := h.service.ListMedia(r.Context(), filter)
	if err != nil {
		writeError(w, r, h.logger, "Failed to list media", err)
		return
	}
	render.JSON(w, r, page)
}

// UploadMedia stores the multipart "file" field in the media library
func (h *MediaHandler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeStatus(w, r, http.StatusUnauthorized, "missing principal")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeStatus(w, r, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		writeStatus(w, r, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeStatus(w, r, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	media, err := h.service.UploadMedia(r.Context(), principal, editorial.UploadMediaRequest{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
		AltText:     r.FormValue("alt_text"),
		Caption:     r.FormValue("caption"),
	})
	if err != nil {
		writeError(w, r, h.logger, "Failed to upload media", err)
		return
	}

	h.logger.Info("Media uploaded", "media_id", media.ID, "file_name", media.FileName, "size", media.FileSize)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, media)
}

func (h *MediaHandler) GetMedia(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}
	media, err := h.service.GetMedia(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, "Failed to get media", err)
		return
	}
	render.JSON(w, r, media)
}

// DeleteMedia removes the stored file and then the media record
func (h *MediaHandler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.service.DeleteMedia(r.Context(), id); err != nil {
		writeError(w, r, h.logger, "Failed to delete media", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
