package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-editorial/pkg/editorial"
)

// ProfilesHandler handles staff profiles
type ProfilesHandler struct {
	service editorial.Service
	logger  *slog.Logger
}

// NewProfilesHandler creates a new profiles handler
func NewProfilesHandler(service editorial.Service, logger *slog.Logger) *ProfilesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfilesHandler{service: service, logger: logger}
}

// Routes returns the routes for profiles. Everything but /me is admin only.
func (h *ProfilesHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/me", h.GetMe)
	r.Group(func(r chi.Router) {
		r.Use(RequireRole(editorial.RoleAdmin))
		r.Get("/", h.ListProfiles)
		r.Post("/", h.CreateProfile)
		r.Get("/{id}", h.GetProfile)
		r.Patch("/{id}", h.UpdateProfile)
	})
	return r
}

// GetMe returns the caller's profile
func (h *ProfilesHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeStatus(w, r, http.StatusUnauthorized, "missing principal")
		return
	}
	profile, err := h.service.GetProfile(r.Context(), principal.ID)
	if err != nil {
		writeError(w, r, h.logger, "Failed to get profile", err)
		return
	}
	render.JSON(w, r, profile)
}

func (h *ProfilesHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.service.ListProfiles(r.Context())
	if err != nil {
		writeError(w, r, h.logger, "Failed to list profiles", err)
		return
	}
	render.JSON(w, r, profiles)
}

func (h *ProfilesHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var req editorial.CreateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}
	profile, err := h.service.CreateProfile(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, "Failed to create profile", err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, profile)
}

func (h *ProfilesHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}
	profile, err := h.service.GetProfile(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, "Failed to get profile", err)
		return
	}
	render.JSON(w, r, profile)
}

func (h *ProfilesHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}
	var req editorial.UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}
	profile, err := h.service.UpdateProfile(r.Context(), id, req)
	if err != nil {
		writeError(w, r, h.logger, "Failed to update profile", err)
		return
	}
	render.JSON(w, r, profile)
}
