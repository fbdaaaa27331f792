package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lendstock/lendstock-backend/internal/inventory/domain"
	"github.com/lendstock/lendstock-backend/internal/inventory/service"
	"github.com/lendstock/lendstock-backend/pkg/httputil"
	"github.com/lendstock/lendstock-backend/pkg/logger"
)

// EquipmentHandler handles equipment lifecycle endpoints
type EquipmentHandler struct {
	service *service.EquipmentService
	logger  *logger.Logger
}

// NewEquipmentHandler creates a new equipment handler
func NewEquipmentHandler(svc *service.EquipmentService, log *logger.Logger) *EquipmentHandler {
	return &EquipmentHandler{
		service: svc,
		logger:  log,
	}
}

func (h *EquipmentHandler) respond(w http.ResponseWriter, result *service.OperationResult) {
	if result.Err != nil {
		httputil.Error(w, result.Err)
		return
	}
	httputil.JSON(w, http.StatusOK, result)
}

// CheckOut checks an item out to a borrower
func (h *EquipmentHandler) CheckOut(w http.ResponseWriter, r *http.Request) {
	itemUUID := chi.URLParam(r, "uuid")

	var req struct {
		UserID string `json:"user_id" validate:"required"`
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

	h.respond(w, h.service.CheckOutItem(r.Context(), itemUUID, req.UserID, a.ID, req.Notes))
}

// CheckIn returns a checked-out item to a location
func (h *EquipmentHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	itemUUID := chi.URLParam(r, "uuid")

	var req struct {
		LocationID string `json:"location_id" validate:"required"`
		Condition  string `json:"condition" validate:"omitempty,oneof=excellent good fair poor needs_repair"`
		Notes      string `json:"notes"`
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

	var condition *domain.Condition
	if req.Condition != "" {
		c := domain.Condition(req.Condition)
		condition = &c
	}

	h.respond(w, h.service.CheckInItem(r.Context(), itemUUID, req.LocationID, a.ID, condition, req.Notes))
}

// AssignUser assigns an item to a user regardless of its current holder
func (h *EquipmentHandler) AssignUser(w http.ResponseWriter, r *http.Request) {
	itemUUID := chi.URLParam(r, "uuid")

	var req struct {
		UserID string `json:"user_id" validate:"required"`
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

	h.respond(w, h.service.AssignToUser(r.Context(), itemUUID, req.UserID, a.ID, req.Notes))
}

// AssignLocation moves an item to a storage location
func (h *EquipmentHandler) AssignLocation(w http.ResponseWriter, r *http.Request) {
	itemUUID := chi.URLParam(r, "uuid")

	var req struct {
		LocationID string `json:"location_id" validate:"required"`
		Notes      string `json:"notes"`
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

	h.respond(w, h.service.AssignToLocation(r.Context(), itemUUID, req.LocationID, a.ID, req.Notes))
}

// Unassign clears both holder and location from an item
func (h *EquipmentHandler) Unassign(w http.ResponseWriter, r *http.Request) {
	itemUUID := chi.URLParam(r, "uuid")

	var req struct {
		Notes string `json:"notes"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	a, ok := requireActor(w, r)
	if !ok {
		return
	}

	h.respond(w, h.service.UnassignEquipment(r.Context(), itemUUID, a.ID, req.Notes))
}

// Remove retires an item from the inventory
func (h *EquipmentHandler) Remove(w http.ResponseWriter, r *http.Request) {
	itemUUID := chi.URLParam(r, "uuid")

	var req struct {
		Reason string `json:"reason" validate:"required"`
		Notes  string `json:"notes"`
		Force  bool   `json:"force"`
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

	if req.Force {
		h.respond(w, h.service.ForceRemoveItemFromInventory(r.Context(), itemUUID, req.Reason, a.ID, req.Notes))
		return
	}
	h.respond(w, h.service.RemoveItemFromInventory(r.Context(), itemUUID, req.Reason, a.ID, req.Notes))
}

// UpdateNotes records a condition note against an item without changing its state
func (h *EquipmentHandler) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	itemUUID := chi.URLParam(r, "uuid")

	var req struct {
		Notes string `json:"notes" validate:"required"`
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

	h.respond(w, h.service.UpdateEquipmentNotes(r.Context(), itemUUID, a.ID, req.Notes))
}

// BulkCheckOut checks out several items to the same borrower
func (h *EquipmentHandler) BulkCheckOut(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UUIDs  []string `json:"uuids" validate:"required,min=1,max=100"`
		UserID string   `json:"user_id" validate:"required"`
		Notes  string   `json:"notes"`
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

	result := h.service.BulkCheckOut(r.Context(), req.UUIDs, req.UserID, a.ID, req.Notes)
	httputil.JSON(w, http.StatusOK, result)
}

// BulkCheckIn returns several items to the same location
func (h *EquipmentHandler) BulkCheckIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UUIDs      []string `json:"uuids" validate:"required,min=1,max=100"`
		LocationID string   `json:"location_id" validate:"required"`
		Condition  string   `json:"condition" validate:"omitempty,oneof=excellent good fair poor needs_repair"`
		Notes      string   `json:"notes"`
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

	var condition *domain.Condition
	if req.Condition != "" {
		c := domain.Condition(req.Condition)
		condition = &c
	}

	result := h.service.BulkCheckIn(r.Context(), req.UUIDs, req.LocationID, a.ID, condition, req.Notes)
	httputil.JSON(w, http.StatusOK, result)
}
