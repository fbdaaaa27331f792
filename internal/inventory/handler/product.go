package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lendstock/lendstock-backend/internal/inventory/repository"
	"github.com/lendstock/lendstock-backend/pkg/httputil"
	"github.com/lendstock/lendstock-backend/pkg/logger"
)

// ProductHandler handles product catalog endpoints
type ProductHandler struct {
	repo   *repository.ProductRepository
	logger *logger.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(repo *repository.ProductRepository, log *logger.Logger) *ProductHandler {
	return &ProductHandler{
		repo:   repo,
		logger: log,
	}
}

// List lists products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}
	perPage := queryInt(r, "per_page", 20)
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	category := r.URL.Query().Get("category")

	products, total, err := h.repo.List(r.Context(), page, perPage, category)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	totalPages := int(total) / perPage
	if int(total)%perPage > 0 {
		totalPages++
	}

	httputil.JSONWithMeta(w, http.StatusOK, products, &httputil.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	})
}

// Get gets a product by ID
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, product)
}

// Create creates a new product
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         string  `json:"name" validate:"required"`
		Description  *string `json:"description,omitempty"`
		Manufacturer *string `json:"manufacturer,omitempty"`
		Model        *string `json:"model,omitempty"`
		Category     string  `json:"category" validate:"required"`
		UPC          *string `json:"upc,omitempty"`
		ImageURL     *string `json:"image_url,omitempty"`
		IsConsumable bool    `json:"is_consumable"`
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

	product := &repository.Product{
		Name:         req.Name,
		Description:  req.Description,
		Manufacturer: req.Manufacturer,
		Model:        req.Model,
		Category:     req.Category,
		UPC:          req.UPC,
		ImageURL:     req.ImageURL,
		IsConsumable: req.IsConsumable,
		IsActive:     true,
	}
	if err := h.repo.Create(r.Context(), product); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, product)
}

// Update updates a product
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var product repository.Product
	if err := httputil.DecodeJSON(r, &product); err != nil {
		httputil.Error(w, err)
		return
	}

	if _, ok := requireActor(w, r); !ok {
		return
	}

	product.ID = id
	if err := h.repo.Update(r.Context(), &product); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, product)
}

// Deactivate retires a product from the catalog
func (h *ProductHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
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
