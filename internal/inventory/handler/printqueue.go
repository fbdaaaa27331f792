package handler

import (
	"net/http"
	"time"

	"github.com/lendstock/lendstock-backend/internal/inventory/service"
	"github.com/lendstock/lendstock-backend/pkg/httputil"
	"github.com/lendstock/lendstock-backend/pkg/logger"
)

// PrintQueueHandler handles label print queue endpoints
type PrintQueueHandler struct {
	service *service.PrintQueueService
	logger  *logger.Logger
}

// NewPrintQueueHandler creates a new print queue handler
func NewPrintQueueHandler(svc *service.PrintQueueService, log *logger.Logger) *PrintQueueHandler {
	return &PrintQueueHandler{
		service: svc,
		logger:  log,
	}
}

// ListUnprinted lists queue entries waiting to be printed
func (h *PrintQueueHandler) ListUnprinted(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.GetUnprintedQueue(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, entries)
}

// Add queues an item's label for printing
func (h *PrintQueueHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ItemID string `json:"item_id" validate:"required"`
		Notes  string `json:"notes"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	a, ok := requireActor(w, r)
	if !ok {
		return
	}

	entry, err := h.service.AddItemToQueue(r.Context(), req.ItemID, a.ID, req.Notes)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, entry)
}

// MarkPrinted marks queue entries as printed
func (h *PrintQueueHandler) MarkPrinted(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids" validate:"required,min=1"`
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

	updated, err := h.service.MarkItemsPrinted(r.Context(), req.IDs)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]interface{}{"updated": updated})
}

// Remove removes queue entries without printing them
func (h *PrintQueueHandler) Remove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids" validate:"required,min=1"`
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

	removed, err := h.service.RemoveItemsFromQueue(r.Context(), req.IDs)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]interface{}{"removed": removed})
}

// Cleanup deletes printed entries older than the given number of days
func (h *PrintQueueHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OlderThanDays int `json:"older_than_days" validate:"required,gt=0"`
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

	deleted, err := h.service.CleanupPrintedItems(r.Context(), time.Duration(req.OlderThanDays)*24*time.Hour)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]interface{}{"deleted": deleted})
}

// ClearPrinted deletes all printed entries
func (h *PrintQueueHandler) ClearPrinted(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireActor(w, r); !ok {
		return
	}

	deleted, err := h.service.ClearPrintedItems(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]interface{}{"deleted": deleted})
}
