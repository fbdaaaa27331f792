package service

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lendstock/lendstock-backend/internal/inventory/domain"
	"github.com/lendstock/lendstock-backend/internal/inventory/events"
	"github.com/lendstock/lendstock-backend/internal/inventory/repository"
	"github.com/lendstock/lendstock-backend/pkg/database"
	"github.com/lendstock/lendstock-backend/pkg/errors"
	"github.com/lendstock/lendstock-backend/pkg/logger"
)

// minSearchLength is the shortest user search query that hits the database
const minSearchLength = 2

// EquipmentService implements the equipment lifecycle state machine.
// Every mutation runs inside one database transaction covering the item
// update and its ledger entry; the item row is locked first and the
// precondition re-checked against the locked state, so concurrent
// mutations lose cleanly with a domain error.
type EquipmentService struct {
	db        *database.DB
	itemRepo  *repository.ItemRepository
	txnRepo   *repository.TransactionRepository
	queueRepo *repository.PrintQueueRepository
	userRepo  *repository.UserDirectoryRepository
	publisher *events.EquipmentEventPublisher
	logger    *logger.Logger
}

// NewEquipmentService creates a new equipment service
func NewEquipmentService(
	db *database.DB,
	itemRepo *repository.ItemRepository,
	txnRepo *repository.TransactionRepository,
	queueRepo *repository.PrintQueueRepository,
	userRepo *repository.UserDirectoryRepository,
	publisher *events.EquipmentEventPublisher,
	log *logger.Logger,
) *EquipmentService {
	return &EquipmentService{
		db:        db,
		itemRepo:  itemRepo,
		txnRepo:   txnRepo,
		queueRepo: queueRepo,
		userRepo:  userRepo,
		publisher: publisher,
		logger:    log,
	}
}

// InventorySummary is the dashboard aggregate
type InventorySummary struct {
	TotalItems       int64            `json:"total_items"`
	ByStatus         map[string]int64 `json:"by_status"`
	ByCondition      map[string]int64 `json:"by_condition"`
	TransactionsWeek int64            `json:"transactions_last_7_days"`
}

// CheckOutItem hands an available item to a borrower. The item leaves its
// storage location and the move is recorded as a checkout ledger entry.
func (s *EquipmentService) CheckOutItem(ctx context.Context, itemUUID, toUserID, processorID string, notes string) *OperationResult {
	if err := validateUUID(itemUUID); err != nil {
		return resultErr(err)
	}

	var updated *repository.EquipmentItem

	err := s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		item, err := s.itemRepo.GetByUUIDForUpdateTx(ctx, tx, itemUUID)
		if err != nil {
			return err
		}

		if !domain.CanApply(domain.OpCheckOut, item.Status) {
			return errors.ItemNotAvailable(itemUUID)
		}

		fromLocation := item.LocationID
		conditionBefore := string(item.ConditionStatus)

		item.Status = domain.OpCheckOut.Next()
		item.CurrentUserID = &toUserID
		item.LocationID = nil

		if err := s.itemRepo.UpdateStateTx(ctx, tx, item); err != nil {
			return err
		}

		txn := &repository.EquipmentTransaction{
			ItemID:          item.ID,
			TransactionType: domain.TransactionCheckout,
			ToUserID:        &toUserID,
			FromLocationID:  fromLocation,
			ProcessedBy:     processorID,
			ConditionBefore: &conditionBefore,
			Notes:           optional(notes),
		}
		if err := s.txnRepo.CreateTx(ctx, tx, txn); err != nil {
			return err
		}

		updated = item
		return nil
	})
	if err != nil {
		return resultErr(err)
	}

	s.publisher.PublishCheckedOut(ctx, updated, toUserID, processorID)
	s.logger.Info().
		Str("item_uuid", itemUUID).
		Str("to_user", toUserID).
		Str("processor", processorID).
		Msg("item checked out")

	return resultOK("item checked out", updated)
}

// CheckInItem returns a checked-out item to a storage location, optionally
// updating its condition grade
func (s *EquipmentService) CheckInItem(ctx context.Context, itemUUID, locationID, processorID string, condition *domain.Condition, notes string) *OperationResult {
	if err := validateUUID(itemUUID); err != nil {
		return resultErr(err)
	}
	if condition != nil && !condition.Valid() {
		return resultErr(errors.Validation(map[string]string{
			"condition": "must be one of: excellent, good, fair, poor, needs_repair",
		}))
	}

	var updated *repository.EquipmentItem

	err := s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		item, err := s.itemRepo.GetByUUIDForUpdateTx(ctx, tx, itemUUID)
		if err != nil {
			return err
		}

		if !domain.CanApply(domain.OpCheckIn, item.Status) {
			return errors.ItemNotCheckedOut(itemUUID)
		}

		fromUser := item.CurrentUserID
		conditionBefore := string(item.ConditionStatus)

		item.Status = domain.OpCheckIn.Next()
		item.CurrentUserID = nil
		item.LocationID = &locationID
		item.StudentLabel = nil
		if condition != nil {
			item.ConditionStatus = *condition
		}
		conditionAfter := string(item.ConditionStatus)

		if err := s.itemRepo.UpdateStateTx(ctx, tx, item); err != nil {
			return err
		}

		txn := &repository.EquipmentTransaction{
			ItemID:          item.ID,
			TransactionType: domain.TransactionCheckin,
			FromUserID:      fromUser,
			ToLocationID:    &locationID,
			ProcessedBy:     processorID,
			ConditionBefore: &conditionBefore,
			ConditionAfter:  &conditionAfter,
			Notes:           optional(notes),
		}
		if err := s.txnRepo.CreateTx(ctx, tx, txn); err != nil {
			return err
		}

		updated = item
		return nil
	})
	if err != nil {
		return resultErr(err)
	}

	s.publisher.PublishCheckedIn(ctx, updated, processorID)
	s.logger.Info().
		Str("item_uuid", itemUUID).
		Str("to_location", locationID).
		Str("processor", processorID).
		Msg("item checked in")

	return resultOK("item checked in", updated)
}

// AssignToUser re-assigns an item to a user regardless of its current
// assignment. Removed items stay removed; everything else moves.
func (s *EquipmentService) AssignToUser(ctx context.Context, itemUUID, toUserID, processorID string, notes string) *OperationResult {
	if err := validateUUID(itemUUID); err != nil {
		return resultErr(err)
	}

	var updated *repository.EquipmentItem

	err := s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		item, err := s.itemRepo.GetByUUIDForUpdateTx(ctx, tx, itemUUID)
		if err != nil {
			return err
		}

		if !domain.CanApply(domain.OpAssignUser, item.Status) {
			return errors.AlreadyRemoved(itemUUID)
		}

		fromUser := item.CurrentUserID
		fromLocation := item.LocationID

		item.Status = domain.OpAssignUser.Next()
		item.CurrentUserID = &toUserID
		item.LocationID = nil

		if err := s.itemRepo.UpdateStateTx(ctx, tx, item); err != nil {
			return err
		}

		txn := &repository.EquipmentTransaction{
			ItemID:          item.ID,
			TransactionType: domain.TransactionCheckout,
			FromUserID:      fromUser,
			ToUserID:        &toUserID,
			FromLocationID:  fromLocation,
			ProcessedBy:     processorID,
			Notes:           optional(notes),
		}
		if err := s.txnRepo.CreateTx(ctx, tx, txn); err != nil {
			return err
		}

		updated = item
		return nil
	})
	if err != nil {
		return resultErr(err)
	}

	s.publisher.PublishCheckedOut(ctx, updated, toUserID, processorID)

	return resultOK("item assigned to user", updated)
}

// AssignToLocation moves an item to a storage location and marks it
// available. The ledger entry is a checkin when the item had a holder,
// otherwise a transfer between locations.
func (s *EquipmentService) AssignToLocation(ctx context.Context, itemUUID, locationID, processorID string, notes string) *OperationResult {
	if err := validateUUID(itemUUID); err != nil {
		return resultErr(err)
	}

	var updated *repository.EquipmentItem

	err := s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		item, err := s.itemRepo.GetByUUIDForUpdateTx(ctx, tx, itemUUID)
		if err != nil {
			return err
		}

		if !domain.CanApply(domain.OpAssignLocation, item.Status) {
			return errors.AlreadyRemoved(itemUUID)
		}

		fromUser := item.CurrentUserID
		fromLocation := item.LocationID

		txnType := domain.TransactionTransfer
		if fromUser != nil {
			txnType = domain.TransactionCheckin
		}

		item.Status = domain.OpAssignLocation.Next()
		item.CurrentUserID = nil
		item.LocationID = &locationID
		item.StudentLabel = nil

		if err := s.itemRepo.UpdateStateTx(ctx, tx, item); err != nil {
			return err
		}

		txn := &repository.EquipmentTransaction{
			ItemID:          item.ID,
			TransactionType: txnType,
			FromUserID:      fromUser,
			FromLocationID:  fromLocation,
			ToLocationID:    &locationID,
			ProcessedBy:     processorID,
			Notes:           optional(notes),
		}
		if err := s.txnRepo.CreateTx(ctx, tx, txn); err != nil {
			return err
		}

		updated = item
		return nil
	})
	if err != nil {
		return resultErr(err)
	}

	s.publisher.PublishCheckedIn(ctx, updated, processorID)

	return resultOK("item assigned to location", updated)
}

// UnassignEquipment clears both holder and location, leaving the item
// available but unplaced
func (s *EquipmentService) UnassignEquipment(ctx context.Context, itemUUID, processorID string, notes string) *OperationResult {
	if err := validateUUID(itemUUID); err != nil {
		return resultErr(err)
	}

	var updated *repository.EquipmentItem

	err := s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		item, err := s.itemRepo.GetByUUIDForUpdateTx(ctx, tx, itemUUID)
		if err != nil {
			return err
		}

		if !domain.CanApply(domain.OpUnassign, item.Status) {
			return errors.AlreadyRemoved(itemUUID)
		}

		fromUser := item.CurrentUserID
		fromLocation := item.LocationID

		item.Status = domain.OpUnassign.Next()
		item.CurrentUserID = nil
		item.LocationID = nil
		item.StudentLabel = nil

		if err := s.itemRepo.UpdateStateTx(ctx, tx, item); err != nil {
			return err
		}

		txn := &repository.EquipmentTransaction{
			ItemID:          item.ID,
			TransactionType: domain.TransactionCheckin,
			FromUserID:      fromUser,
			FromLocationID:  fromLocation,
			ProcessedBy:     processorID,
			Notes:           optional(notes),
		}
		if err := s.txnRepo.CreateTx(ctx, tx, txn); err != nil {
			return err
		}

		updated = item
		return nil
	})
	if err != nil {
		return resultErr(err)
	}

	return resultOK("item unassigned", updated)
}

// RemoveItemFromInventory retires an item permanently. Checked-out items
// must be checked in first; ForceRemoveItemFromInventory overrides that.
func (s *EquipmentService) RemoveItemFromInventory(ctx context.Context, itemUUID, reason, processorID string, notes string) *OperationResult {
	return s.remove(ctx, itemUUID, reason, processorID, notes, false)
}

// ForceRemoveItemFromInventory retires an item even while checked out.
// The ledger note is tagged so the override stays visible in the history.
func (s *EquipmentService) ForceRemoveItemFromInventory(ctx context.Context, itemUUID, reason, processorID string, notes string) *OperationResult {
	return s.remove(ctx, itemUUID, reason, processorID, notes, true)
}

func (s *EquipmentService) remove(ctx context.Context, itemUUID, reason, processorID string, notes string, force bool) *OperationResult {
	if err := validateUUID(itemUUID); err != nil {
		return resultErr(err)
	}

	var updated *repository.EquipmentItem

	err := s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		item, err := s.itemRepo.GetByUUIDForUpdateTx(ctx, tx, itemUUID)
		if err != nil {
			return err
		}

		if item.Status.Terminal() {
			return errors.AlreadyRemoved(itemUUID)
		}

		op := domain.OpRemove
		if force {
			op = domain.OpForceRemove
		}
		if !domain.CanApply(op, item.Status) {
			return errors.ItemCheckedOut(itemUUID)
		}

		fromUser := item.CurrentUserID
		fromLocation := item.LocationID

		item.Status = op.Next()
		item.CurrentUserID = nil
		item.LocationID = nil
		item.StudentLabel = nil

		if err := s.itemRepo.UpdateStateTx(ctx, tx, item); err != nil {
			return err
		}

		note := strings.TrimSpace(reason)
		if notes != "" {
			if note != "" {
				note += "; "
			}
			note += notes
		}
		if force {
			note = strings.TrimSpace(note + " [forced]")
		}

		txn := &repository.EquipmentTransaction{
			ItemID:          item.ID,
			TransactionType: domain.TransactionRemoval,
			FromUserID:      fromUser,
			FromLocationID:  fromLocation,
			ProcessedBy:     processorID,
			Notes:           optional(note),
		}
		if err := s.txnRepo.CreateTx(ctx, tx, txn); err != nil {
			return err
		}

		// A removed item has no label to print
		if err := s.queueRepo.DeleteByItemTx(ctx, tx, item.ID); err != nil {
			return err
		}

		updated = item
		return nil
	})
	if err != nil {
		return resultErr(err)
	}

	s.publisher.PublishRemoved(ctx, updated, reason, processorID, force)
	s.logger.Info().
		Str("item_uuid", itemUUID).
		Str("processor", processorID).
		Bool("forced", force).
		Msg("item removed from inventory")

	return resultOK("item removed from inventory", updated)
}

// UpdateEquipmentNotes appends a condition_update ledger entry without
// touching the item state
func (s *EquipmentService) UpdateEquipmentNotes(ctx context.Context, itemUUID, processorID string, notes string) *OperationResult {
	if err := validateUUID(itemUUID); err != nil {
		return resultErr(err)
	}
	if strings.TrimSpace(notes) == "" {
		return resultErr(errors.BadRequest("notes must not be empty"))
	}

	item, err := s.itemRepo.GetByUUID(ctx, itemUUID)
	if err != nil {
		return resultErr(err)
	}

	condition := string(item.ConditionStatus)
	txn := &repository.EquipmentTransaction{
		ItemID:          item.ID,
		TransactionType: domain.TransactionConditionUpdate,
		ProcessedBy:     processorID,
		ConditionBefore: &condition,
		ConditionAfter:  &condition,
		Notes:           &notes,
	}
	if err := s.txnRepo.CreateTx(ctx, s.db, txn); err != nil {
		return resultErr(err)
	}

	return resultOK("notes recorded", item)
}

// BulkCheckOut checks out each item in turn. Failures are collected per
// item; the batch itself is not atomic.
func (s *EquipmentService) BulkCheckOut(ctx context.Context, itemUUIDs []string, toUserID, processorID string, notes string) *OperationResult {
	bulk := &BulkResult{Succeeded: []string{}, Failed: []BulkFailure{}}

	for _, itemUUID := range itemUUIDs {
		res := s.CheckOutItem(ctx, itemUUID, toUserID, processorID, notes)
		if res.Success {
			bulk.Succeeded = append(bulk.Succeeded, itemUUID)
		} else {
			bulk.Failed = append(bulk.Failed, BulkFailure{
				UUID:    itemUUID,
				Code:    res.Code,
				Message: res.Message,
			})
		}
	}

	return &OperationResult{
		Success: len(bulk.Failed) == 0,
		Message: bulkMessage(bulk),
		Bulk:    bulk,
	}
}

// BulkCheckIn checks in each item in turn. Failures are collected per
// item; the batch itself is not atomic.
func (s *EquipmentService) BulkCheckIn(ctx context.Context, itemUUIDs []string, locationID, processorID string, condition *domain.Condition, notes string) *OperationResult {
	bulk := &BulkResult{Succeeded: []string{}, Failed: []BulkFailure{}}

	for _, itemUUID := range itemUUIDs {
		res := s.CheckInItem(ctx, itemUUID, locationID, processorID, condition, notes)
		if res.Success {
			bulk.Succeeded = append(bulk.Succeeded, itemUUID)
		} else {
			bulk.Failed = append(bulk.Failed, BulkFailure{
				UUID:    itemUUID,
				Code:    res.Code,
				Message: res.Message,
			})
		}
	}

	return &OperationResult{
		Success: len(bulk.Failed) == 0,
		Message: bulkMessage(bulk),
		Bulk:    bulk,
	}
}

// Read operations

// GetItemByUUID gets an item by its active label UUID
func (s *EquipmentService) GetItemByUUID(ctx context.Context, itemUUID string) (*repository.EquipmentItem, error) {
	if err := validateUUID(itemUUID); err != nil {
		return nil, err
	}
	return s.itemRepo.GetByUUID(ctx, itemUUID)
}

// GetAvailableItems lists items ready for checkout
func (s *EquipmentService) GetAvailableItems(ctx context.Context) ([]*repository.EquipmentItem, error) {
	return s.itemRepo.ListByStatus(ctx, domain.StatusAvailable)
}

// GetItemsByStatus lists items in the given status
func (s *EquipmentService) GetItemsByStatus(ctx context.Context, status domain.Status) ([]*repository.EquipmentItem, error) {
	if !status.Valid() {
		return nil, errors.BadRequest("unknown status: " + string(status))
	}
	return s.itemRepo.ListByStatus(ctx, status)
}

// GetItemsByLocation lists items stored at a location
func (s *EquipmentService) GetItemsByLocation(ctx context.Context, locationID string) ([]*repository.EquipmentItem, error) {
	return s.itemRepo.ListByLocation(ctx, locationID)
}

// GetItemsByUser lists items held by a user
func (s *EquipmentService) GetItemsByUser(ctx context.Context, userID string) ([]*repository.EquipmentItem, error) {
	return s.itemRepo.ListByUser(ctx, userID)
}

// GetOverdueItems lists items checked out longer than daysOverdue days
func (s *EquipmentService) GetOverdueItems(ctx context.Context, daysOverdue int) ([]*repository.EquipmentItem, error) {
	if daysOverdue <= 0 {
		return nil, errors.BadRequest("days_overdue must be positive")
	}

	cutoff := time.Now().AddDate(0, 0, -daysOverdue)
	return s.itemRepo.ListOverdue(ctx, cutoff)
}

// GetInventorySummary aggregates the dashboard counts. Removed items are
// excluded from the total but reported under their own status key.
func (s *EquipmentService) GetInventorySummary(ctx context.Context) (*InventorySummary, error) {
	statusCounts, err := s.itemRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	conditionCounts, err := s.itemRepo.CountByCondition(ctx)
	if err != nil {
		return nil, err
	}

	weekAgo := time.Now().AddDate(0, 0, -7)
	txnCount, err := s.txnRepo.CountSince(ctx, weekAgo)
	if err != nil {
		return nil, err
	}

	summary := &InventorySummary{
		ByStatus:         make(map[string]int64),
		ByCondition:      make(map[string]int64),
		TransactionsWeek: txnCount,
	}

	for _, c := range statusCounts {
		summary.ByStatus[string(c.Status)] = c.Count
		if c.Status != domain.StatusRemoved {
			summary.TotalItems += c.Count
		}
	}
	for _, c := range conditionCounts {
		summary.ByCondition[string(c.Condition)] = c.Count
	}

	return summary, nil
}

// SearchUsers searches the user directory. Queries below the minimum
// length return an empty result instead of scanning the cache.
func (s *EquipmentService) SearchUsers(ctx context.Context, query string, limit int) ([]*repository.DirectoryUser, error) {
	query = strings.TrimSpace(query)
	if len(query) < minSearchLength {
		return []*repository.DirectoryUser{}, nil
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	return s.userRepo.Search(ctx, query, limit)
}

// ListTransactionsByItem lists the movement ledger for an item
func (s *EquipmentService) ListTransactionsByItem(ctx context.Context, itemID string, page, perPage int) ([]*repository.EquipmentTransaction, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	return s.txnRepo.ListByItem(ctx, itemID, page, perPage)
}

// validateUUID rejects values that are not canonical lowercase v4 UUIDs
// before any database work happens. Labels are always printed in canonical
// form, so uppercase, braced, or undashed variants are malformed input,
// not alternate spellings of a stored identity.
func validateUUID(value string) error {
	if !uuidV4Pattern.MatchString(value) {
		return errors.InvalidUUID(value)
	}
	return nil
}

// optional returns nil for empty strings so the column stays NULL
func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func bulkMessage(b *BulkResult) string {
	if len(b.Failed) == 0 {
		return "all items processed"
	}
	if len(b.Succeeded) == 0 {
		return "no items processed"
	}
	return "some items failed"
}
