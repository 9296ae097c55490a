package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-editorial/pkg/editorial"
)

// TaxonomyHandler handles categories and tags
type TaxonomyHandler struct {
	service editorial.Service
	logger  *slog.Logger
}

// NewTaxonomyHandler creates a new taxonomy handler
func NewTaxonomyHandler(service editorial.Service, logger *slog.Logger) *TaxonomyHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaxonomyHandler{service: service, logger: logger}
}

// CategoryRoutes returns the routes for categories
func (h *TaxonomyHandler) CategoryRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListCategories)
	r.Get("/{id}", h.GetCategory)
	r.Group(func(r chi.Router) {
		r.Use(RequireRole(editorial.RoleAdmin, editorial.RoleEditor))
		r.Post("/", h.CreateCategory)
		r.Patch("/{id}", h.UpdateCategory)
		r.Delete("/{id}", h.DeleteCategory)
	})
	return r
}

// TagRoutes returns the routes for tags
func (h *TaxonomyHandler) TagRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListTags)
	r.Get("/{id}", h.GetTag)
	r.Group(func(r chi.Router) {
		r.Use(RequireRole(editorial.RoleAdmin, editorial.RoleEditor))
		r.Post("/", h.CreateTag)
		r.Patch("/{id}", h.UpdateTag)
		r.Delete("/{id}", h.DeleteTag)
	})
	return r
}

func (h *TaxonomyHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, h.logger, "Failed to list categories", err)
		return
	}
	render.JSON(w, r, categories)
}

func (h *TaxonomyHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}
	category, err := h.service.GetCategory(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, "Failed to get category", err)
		return
	}
	render.JSON(w, r, category)
}

func (h *TaxonomyHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req editorial.CreateCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}
	category, err := h.service.CreateCategory(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, "Failed to create category", err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, category)
}

func (h *TaxonomyHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}
	var req editorial.UpdateCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}
	category, err := h.service.UpdateCategory(r.Context(), id, req)
	if err != nil {
		writeError(w, r, h.logger, "Failed to update category", err)
		return
	}
	render.JSON(w, r, category)
}

// DeleteCategory deletes a category; its posts become uncategorised
func (h *TaxonomyHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.service.DeleteCategory(r.Context(), id); err != nil {
		writeError(w, r, h.logger, "Failed to delete category", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaxonomyHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.service.ListTags(r.Context())
	if err != nil {
		writeError(w, r, h.logger, "Failed to list tags", err)
		return
	}
	render.JSON(w, r, tags)
}

func (h *TaxonomyHandler) GetTag(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}
	tag, err := h.service.GetTag(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, "Failed to get tag", err)
		return
	}
	render.JSON(w, r, tag)
}

func (h *TaxonomyHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req editorial.CreateTagRequest
	if err := decodeJSON(r, &req); err != nil {
		writeStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}
	tag, err := h.service.CreateTag(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, "Failed to create tag", err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, tag)
}

func (h *TaxonomyHandler) UpdateTag(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}
	var req editorial.UpdateTagRequest
	if err := decodeJSON(r, &req); err != nil {
		writeStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}
	tag, err := h.service.UpdateTag(r.Context(), id, req)
	if err != nil {
		writeError(w, r, h.logger, "Failed to update tag", err)
		return
	}
	render.JSON(w, r, tag)
}

func (h *TaxonomyHandler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.service.DeleteTag(r.Context(), id); err != nil {
		writeError(w, r, h.logger, "Failed to delete tag", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
