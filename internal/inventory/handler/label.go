package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lendstock/lendstock-backend/internal/inventory/service"
	"github.com/lendstock/lendstock-backend/pkg/httputil"
	"github.com/lendstock/lendstock-backend/pkg/logger"
)

// LabelHandler handles label identity and QR generation endpoints
type LabelHandler struct {
	service *service.LabelService
	logger  *logger.Logger
}

// NewLabelHandler creates a new label handler
func NewLabelHandler(svc *service.LabelService, log *logger.Logger) *LabelHandler {
	return &LabelHandler{
		service: svc,
		logger:  log,
	}
}

// CreateBatch creates a batch of new items for a product, each with a
// fresh label UUID and a pending print-queue entry
func (h *LabelHandler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID  string  `json:"product_id" validate:"required"`
		Count      int     `json:"count" validate:"required,gt=0,max=500"`
		LocationID *string `json:"location_id,omitempty"`
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

	items, err := h.service.CreateItemBatch(r.Context(), req.ProductID, req.Count, req.LocationID, a.ID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, items)
}

// GetQR renders the QR code PNG for a label UUID
func (h *LabelHandler) GetQR(w http.ResponseWriter, r *http.Request) {
	labelUUID := chi.URLParam(r, "uuid")
	size := queryInt(r, "size", 0)

	png, err := h.service.GenerateItemQR(labelUUID, size)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(png)))
	w.Write(png)
}

// RegenerateQR retires the item's current label UUID and issues a new one
func (h *LabelHandler) RegenerateQR(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "id")

	var req struct {
		Reason string `json:"reason" validate:"required"`
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

	item, err := h.service.RegenerateQRForItem(r.Context(), itemID, req.Reason, a.ID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, item)
}

// BindProvisional attaches a pre-printed sheet label to an item
func (h *LabelHandler) BindProvisional(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LabelUUID string `json:"label_uuid" validate:"required,uuid4"`
		ItemID    string `json:"item_id" validate:"required"`
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

	item, err := h.service.BindProvisionalUUID(r.Context(), req.LabelUUID, req.ItemID, a.ID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, item)
}

// GenerateSheet renders a printable PDF of provisional labels
func (h *LabelHandler) GenerateSheet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Count int `json:"count" validate:"required,gt=0,max=280"`
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

	pdf, uuids, err := h.service.GeneratePrintableSheet(r.Context(), req.Count, a.ID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	filename := fmt.Sprintf("label-sheet-%s.pdf", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("X-Label-Count", fmt.Sprintf("%d", len(uuids)))
	w.Write(pdf)
}
