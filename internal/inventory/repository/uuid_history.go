package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lendstock/lendstock-backend/pkg/database"
	"github.com/lendstock/lendstock-backend/pkg/errors"
)

// UUIDHistoryEntry records one label identity issued for an item. An item
// has at most one active entry at a time; relabeling deactivates the old
// entry with who/why/when and inserts a fresh active one. Entries with an
// empty item_id are provisional sheet stock not yet bound to an item.
type UUIDHistoryEntry struct {
	ID                 string     `db:"id" json:"id"`
	ItemID             string     `db:"item_id" json:"item_id"`
	UUID               string     `db:"uuid" json:"uuid"`
	IsActive           bool       `db:"is_active" json:"is_active"`
	CreatedBy          string     `db:"created_by" json:"created_by"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	DeactivatedBy      *string    `db:"deactivated_by" json:"deactivated_by,omitempty"`
	DeactivationReason *string    `db:"deactivation_reason" json:"deactivation_reason,omitempty"`
	DeactivatedAt      *time.Time `db:"deactivated_at" json:"deactivated_at,omitempty"`
}

// UUIDHistoryRepository handles label identity history persistence
type UUIDHistoryRepository struct {
	db *database.DB
}

// NewUUIDHistoryRepository creates a new UUID history repository
func NewUUIDHistoryRepository(db *database.DB) *UUIDHistoryRepository {
	return &UUIDHistoryRepository{db: db}
}

// CreateTx inserts a history entry inside a caller-scoped transaction
func (r *UUIDHistoryRepository) CreateTx(ctx context.Context, q database.Queryer, entry *UUIDHistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	query := `
		INSERT INTO uuid_history (id, item_id, uuid, is_active, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := q.QueryRowxContext(ctx, query,
		entry.ID, entry.ItemID, entry.UUID, entry.IsActive, entry.CreatedBy,
	).Scan(&entry.CreatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	return nil
}

// DeactivateActiveTx retires the currently active entry for an item,
// recording who retired it and why. No-op when the item has no active entry.
func (r *UUIDHistoryRepository) DeactivateActiveTx(ctx context.Context, q database.Queryer, itemID, deactivatedBy, reason string) error {
	query := `
		UPDATE uuid_history SET
			is_active = false, deactivated_by = $2, deactivation_reason = $3,
			deactivated_at = NOW()
		WHERE item_id = $1 AND is_active = true
	`

	_, err := q.ExecContext(ctx, query, itemID, deactivatedBy, reason)
	return err
}

// BindProvisionalTx attaches a provisional sheet UUID to a real item and
// activates it. Fails with not-found when the UUID is unknown, already
// bound, or already active.
func (r *UUIDHistoryRepository) BindProvisionalTx(ctx context.Context, q database.Queryer, labelUUID, itemID string) error {
	query := `
		UPDATE uuid_history SET item_id = $2, is_active = true
		WHERE uuid = $1 AND item_id = '' AND is_active = false
	`

	result, err := q.ExecContext(ctx, query, labelUUID, itemID)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("provisional uuid")
	}

	return nil
}

// GetActiveByItem returns the active entry for an item
func (r *UUIDHistoryRepository) GetActiveByItem(ctx context.Context, itemID string) (*UUIDHistoryEntry, error) {
	var entry UUIDHistoryEntry

	query := `
		SELECT id, item_id, uuid, is_active, created_by, created_at,
		       deactivated_by, deactivation_reason, deactivated_at
		FROM uuid_history
		WHERE item_id = $1 AND is_active = true
	`
	err := r.db.GetContext(ctx, &entry, query, itemID)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("active uuid")
	}
	if err != nil {
		return nil, err
	}

	return &entry, nil
}

// GetByUUID returns the entry for a label UUID, active or not
func (r *UUIDHistoryRepository) GetByUUID(ctx context.Context, labelUUID string) (*UUIDHistoryEntry, error) {
	var entry UUIDHistoryEntry

	query := `
		SELECT id, item_id, uuid, is_active, created_by, created_at,
		       deactivated_by, deactivation_reason, deactivated_at
		FROM uuid_history
		WHERE uuid = $1
	`
	err := r.db.GetContext(ctx, &entry, query, labelUUID)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("uuid")
	}
	if err != nil {
		return nil, err
	}

	return &entry, nil
}

// ListByItem lists all entries ever issued for an item, newest first
func (r *UUIDHistoryRepository) ListByItem(ctx context.Context, itemID string) ([]*UUIDHistoryEntry, error) {
	var entries []*UUIDHistoryEntry

	query := `
		SELECT id, item_id, uuid, is_active, created_by, created_at,
		       deactivated_by, deactivation_reason, deactivated_at
		FROM uuid_history
		WHERE item_id = $1
		ORDER BY created_at DESC
	`
	if err := r.db.SelectContext(ctx, &entries, query, itemID); err != nil {
		return nil, err
	}

	return entries, nil
}
