package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lendstock/lendstock-backend/internal/inventory/domain"
	"github.com/lendstock/lendstock-backend/internal/inventory/service"
	"github.com/lendstock/lendstock-backend/pkg/httputil"
	"github.com/lendstock/lendstock-backend/pkg/logger"
)

// ItemHandler handles read-only item endpoints
type ItemHandler struct {
	service *service.EquipmentService
	logger  *logger.Logger
}

// NewItemHandler creates a new item handler
func NewItemHandler(svc *service.EquipmentService, log *logger.Logger) *ItemHandler {
	return &ItemHandler{
		service: svc,
		logger:  log,
	}
}

// GetByUUID looks up an item by its label UUID
func (h *ItemHandler) GetByUUID(w http.ResponseWriter, r *http.Request) {
	itemUUID := chi.URLParam(r, "uuid")

	item, err := h.service.GetItemByUUID(r.Context(), itemUUID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, item)
}

// ListAvailable lists items ready for checkout
func (h *ItemHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.GetAvailableItems(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, items)
}

// ListByStatus lists items in a given status
func (h *ItemHandler) ListByStatus(w http.ResponseWriter, r *http.Request) {
	status := domain.Status(chi.URLParam(r, "status"))

	items, err := h.service.GetItemsByStatus(r.Context(), status)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, items)
}

// ListByLocation lists items stored at a location
func (h *ItemHandler) ListByLocation(w http.ResponseWriter, r *http.Request) {
	locationID := chi.URLParam(r, "id")

	items, err := h.service.GetItemsByLocation(r.Context(), locationID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, items)
}

// ListByUser lists items currently held by a user
func (h *ItemHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	items, err := h.service.GetItemsByUser(r.Context(), userID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, items)
}

// ListOverdue lists items checked out longer than the given number of days
func (h *ItemHandler) ListOverdue(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 30)

	items, err := h.service.GetOverdueItems(r.Context(), days)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, items)
}

// ListTransactions lists the transaction ledger for an item, newest first
func (h *ItemHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "id")

	page := queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}
	perPage := queryInt(r, "per_page", 20)
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	txns, total, err := h.service.ListTransactionsByItem(r.Context(), itemID, page, perPage)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	totalPages := int(total) / perPage
	if int(total)%perPage > 0 {
		totalPages++
	}

	httputil.JSONWithMeta(w, http.StatusOK, txns, &httputil.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	})
}
