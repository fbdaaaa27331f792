package handler

import (
	"net/http"

	"github.com/lendstock/lendstock-backend/internal/inventory/service"
	"github.com/lendstock/lendstock-backend/pkg/errors"
	"github.com/lendstock/lendstock-backend/pkg/httputil"
	"github.com/lendstock/lendstock-backend/pkg/logger"
)

// ScanHandler handles barcode and QR scan dispatch
type ScanHandler struct {
	service *service.ScanService
	logger  *logger.Logger
}

// NewScanHandler creates a new scan handler
func NewScanHandler(svc *service.ScanService, log *logger.Logger) *ScanHandler {
	return &ScanHandler{
		service: svc,
		logger:  log,
	}
}

// Process classifies scanned data and routes it to the right lookup
func (h *ScanHandler) Process(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Data string `json:"data" validate:"required"`
		Type string `json:"type" validate:"omitempty,oneof=auto qr upc"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	// Reject excessively long input to avoid unnecessary DB queries
	if len(req.Data) > 200 {
		httputil.Error(w, errors.BadRequest("scan data too long"))
		return
	}

	result, err := h.service.ProcessScan(r.Context(), req.Data, req.Type)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, result)
}
