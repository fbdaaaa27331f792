package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lendstock/lendstock-backend/internal/inventory/domain"
	"github.com/lendstock/lendstock-backend/pkg/database"
	"github.com/lendstock/lendstock-backend/pkg/errors"
)

// EquipmentItem is one physical unit of equipment. The uuid column holds
// the active QR label identity and changes only through relabeling, which
// archives the old value in uuid_history. Items are never hard-deleted;
// status "removed" is terminal and clears holder and location.
type EquipmentItem struct {
	ID              string           `db:"id" json:"id"`
	UUID            string           `db:"uuid" json:"uuid"`
	ProductID       string           `db:"product_id" json:"product_id"`
	LocationID      *string          `db:"location_id" json:"location_id,omitempty"`
	CurrentUserID   *string          `db:"current_user_id" json:"current_user_id,omitempty"`
	Status          domain.Status    `db:"status" json:"status"`
	ConditionStatus domain.Condition `db:"condition_status" json:"condition_status"`
	StudentLabel    *string          `db:"student_label" json:"student_label,omitempty"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time        `db:"updated_at" json:"updated_at"`
}

// StatusCount is a per-status item tally for the dashboard summary
type StatusCount struct {
	Status domain.Status `db:"status" json:"status"`
	Count  int64         `db:"count" json:"count"`
}

// ConditionCount is a per-condition item tally for the dashboard summary
type ConditionCount struct {
	Condition domain.Condition `db:"condition_status" json:"condition_status"`
	Count     int64            `db:"count" json:"count"`
}

const itemColumns = `id, uuid, product_id, location_id, current_user_id,
	       status, condition_status, student_label, created_at, updated_at`

// ItemRepository handles equipment item persistence
type ItemRepository struct {
	db *database.DB
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *database.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// CreateTx inserts a new item inside a caller-scoped transaction
func (r *ItemRepository) CreateTx(ctx context.Context, q database.Queryer, item *EquipmentItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}

	query := `
		INSERT INTO equipment_items (
			id, uuid, product_id, location_id, current_user_id,
			status, condition_status, student_label
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err := q.QueryRowxContext(ctx, query,
		item.ID, item.UUID, item.ProductID, item.LocationID, item.CurrentUserID,
		item.Status, item.ConditionStatus, item.StudentLabel,
	).Scan(&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	return nil
}

// GetByID gets an item by its internal ID
func (r *ItemRepository) GetByID(ctx context.Context, id string) (*EquipmentItem, error) {
	var item EquipmentItem

	query := `SELECT ` + itemColumns + ` FROM equipment_items WHERE id = $1`
	err := r.db.GetContext(ctx, &item, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("item")
	}
	if err != nil {
		return nil, err
	}

	return &item, nil
}

// GetByUUID gets an item by its active label UUID
func (r *ItemRepository) GetByUUID(ctx context.Context, itemUUID string) (*EquipmentItem, error) {
	var item EquipmentItem

	query := `SELECT ` + itemColumns + ` FROM equipment_items WHERE uuid = $1`
	err := r.db.GetContext(ctx, &item, query, itemUUID)
	if err == sql.ErrNoRows {
		return nil, errors.ItemNotFound(itemUUID)
	}
	if err != nil {
		return nil, err
	}

	return &item, nil
}

// GetByUUIDForUpdateTx locks and returns an item row inside a caller-scoped
// transaction. Lifecycle operations re-check their precondition against the
// locked row, so a concurrent checkout loses cleanly instead of double-writing.
func (r *ItemRepository) GetByUUIDForUpdateTx(ctx context.Context, q database.Queryer, itemUUID string) (*EquipmentItem, error) {
	var item EquipmentItem

	query := `SELECT ` + itemColumns + ` FROM equipment_items WHERE uuid = $1 FOR UPDATE`
	err := q.GetContext(ctx, &item, query, itemUUID)
	if err == sql.ErrNoRows {
		return nil, errors.ItemNotFound(itemUUID)
	}
	if err != nil {
		return nil, err
	}

	return &item, nil
}

// GetByIDForUpdateTx locks and returns an item row by internal ID
func (r *ItemRepository) GetByIDForUpdateTx(ctx context.Context, q database.Queryer, id string) (*EquipmentItem, error) {
	var item EquipmentItem

	query := `SELECT ` + itemColumns + ` FROM equipment_items WHERE id = $1 FOR UPDATE`
	err := q.GetContext(ctx, &item, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("item")
	}
	if err != nil {
		return nil, err
	}

	return &item, nil
}

// UpdateStateTx writes an item's mutable state inside a caller-scoped
// transaction: label uuid, assignment, status, condition, student label
func (r *ItemRepository) UpdateStateTx(ctx context.Context, q database.Queryer, item *EquipmentItem) error {
	query := `
		UPDATE equipment_items SET
			uuid = $2, location_id = $3, current_user_id = $4,
			status = $5, condition_status = $6, student_label = $7,
			updated_at = NOW()
		WHERE id = $1
	`

	result, err := q.ExecContext(ctx, query,
		item.ID, item.UUID, item.LocationID, item.CurrentUserID,
		item.Status, item.ConditionStatus, item.StudentLabel,
	)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("item")
	}

	return nil
}

// ListByStatus lists items in the given status, newest first
func (r *ItemRepository) ListByStatus(ctx context.Context, status domain.Status) ([]*EquipmentItem, error) {
	var items []*EquipmentItem

	query := `SELECT ` + itemColumns + ` FROM equipment_items WHERE status = $1 ORDER BY updated_at DESC`
	if err := r.db.SelectContext(ctx, &items, query, status); err != nil {
		return nil, err
	}

	return items, nil
}

// ListByLocation lists non-removed items stored at a location
func (r *ItemRepository) ListByLocation(ctx context.Context, locationID string) ([]*EquipmentItem, error) {
	var items []*EquipmentItem

	query := `
		SELECT ` + itemColumns + `
		FROM equipment_items
		WHERE location_id = $1 AND status != 'removed'
		ORDER BY updated_at DESC
	`
	if err := r.db.SelectContext(ctx, &items, query, locationID); err != nil {
		return nil, err
	}

	return items, nil
}

// ListByUser lists items currently held by a user
func (r *ItemRepository) ListByUser(ctx context.Context, userID string) ([]*EquipmentItem, error) {
	var items []*EquipmentItem

	query := `
		SELECT ` + itemColumns + `
		FROM equipment_items
		WHERE current_user_id = $1 AND status != 'removed'
		ORDER BY updated_at DESC
	`
	if err := r.db.SelectContext(ctx, &items, query, userID); err != nil {
		return nil, err
	}

	return items, nil
}

// ListOverdue lists checked-out items whose most recent checkout is older
// than the cutoff
func (r *ItemRepository) ListOverdue(ctx context.Context, cutoff time.Time) ([]*EquipmentItem, error) {
	var items []*EquipmentItem

	query := `
		SELECT ` + itemColumns + `
		FROM equipment_items i
		WHERE i.status = 'checked_out'
		  AND (
			SELECT MAX(t.created_at) FROM equipment_transactions t
			WHERE t.item_id = i.id AND t.transaction_type = 'checkout'
		  ) < $1
		ORDER BY i.updated_at ASC
	`
	if err := r.db.SelectContext(ctx, &items, query, cutoff); err != nil {
		return nil, err
	}

	return items, nil
}

// CountByStatus tallies items per status. Removed items are included so
// the caller can decide whether to subtract them from the total.
func (r *ItemRepository) CountByStatus(ctx context.Context) ([]*StatusCount, error) {
	var counts []*StatusCount

	query := `SELECT status, COUNT(*) AS count FROM equipment_items GROUP BY status`
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, err
	}

	return counts, nil
}

// CountByCondition tallies non-removed items per condition grade
func (r *ItemRepository) CountByCondition(ctx context.Context) ([]*ConditionCount, error) {
	var counts []*ConditionCount

	query := `
		SELECT condition_status, COUNT(*) AS count
		FROM equipment_items
		WHERE status != 'removed'
		GROUP BY condition_status
	`
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, err
	}

	return counts, nil
}
