package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lendstock/lendstock-backend/internal/inventory/repository"
	"github.com/lendstock/lendstock-backend/pkg/httputil"
	"github.com/lendstock/lendstock-backend/pkg/logger"
)

// LocationHandler handles storage location endpoints
type LocationHandler struct {
	repo   *repository.LocationRepository
	logger *logger.Logger
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(repo *repository.LocationRepository, log *logger.Logger) *LocationHandler {
	return &LocationHandler{
		repo:   repo,
		logger: log,
	}
}

// List lists active locations
func (h *LocationHandler) List(w http.ResponseWriter, r *http.Request) {
	locations, err := h.repo.List(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, locations)
}

// Get gets a location by ID
func (h *LocationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	location, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, location)
}

// Create creates a new location
func (h *LocationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string  `json:"name" validate:"required"`
		Description *string `json:"description,omitempty"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	if _, ok := requireActor(w, r); !ok {
		return
	}

	location := &repository.Location{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
	}
	if err := h.repo.Create(r.Context(), location); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, location)
}

// Update updates a location
func (h *LocationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var location repository.Location
	if err := httputil.DecodeJSON(r, &location); err != nil {
		httputil.Error(w, err)
		return
	}

	if _, ok := requireActor(w, r); !ok {
		return
	}

	location.ID = id
	if err := h.repo.Update(r.Context(), &location); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, location)
}

// Deactivate retires a location
func (h *LocationHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, ok := requireActor(w, r); !ok {
		return
	}

	if err := h.repo.Deactivate(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}
