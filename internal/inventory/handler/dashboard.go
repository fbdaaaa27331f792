package handler

import (
	"net/http"

	"github.com/lendstock/lendstock-backend/internal/inventory/service"
	"github.com/lendstock/lendstock-backend/pkg/httputil"
	"github.com/lendstock/lendstock-backend/pkg/logger"
)

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	service *service.EquipmentService
	logger  *logger.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(svc *service.EquipmentService, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: svc,
		logger:  log,
	}
}

// Summary returns inventory counts by status and condition
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.GetInventorySummary(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, summary)
}

// SearchUsers searches the user directory for borrower pickers
func (h *DashboardHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	limit := queryInt(r, "limit", 20)

	users, err := h.service.SearchUsers(r.Context(), query, limit)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, users)
}
