package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lendstock/lendstock-backend/internal/inventory/domain"
	"github.com/lendstock/lendstock-backend/pkg/database"
)

// EquipmentTransaction is one entry in the append-only movement ledger.
// Entries are never updated or deleted; the ledger is the authoritative
// history of who moved what, where, and when.
type EquipmentTransaction struct {
	ID              string                 `db:"id" json:"id"`
	ItemID          string                 `db:"item_id" json:"item_id"`
	TransactionType domain.TransactionType `db:"transaction_type" json:"transaction_type"`
	FromUserID      *string                `db:"from_user_id" json:"from_user_id,omitempty"`
	ToUserID        *string                `db:"to_user_id" json:"to_user_id,omitempty"`
	FromLocationID  *string                `db:"from_location_id" json:"from_location_id,omitempty"`
	ToLocationID    *string                `db:"to_location_id" json:"to_location_id,omitempty"`
	ProcessedBy     string                 `db:"processed_by" json:"processed_by"`
	ConditionBefore *string                `db:"condition_before" json:"condition_before,omitempty"`
	ConditionAfter  *string                `db:"condition_after" json:"condition_after,omitempty"`
	Notes           *string                `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time              `db:"created_at" json:"created_at"`
}

// TransactionRepository handles the movement ledger.
// All operations are append-only: no UPDATE or DELETE is permitted.
type TransactionRepository struct {
	db *database.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *database.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// CreateTx appends a ledger entry inside a caller-scoped transaction
func (r *TransactionRepository) CreateTx(ctx context.Context, q database.Queryer, txn *EquipmentTransaction) error {
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}

	query := `
		INSERT INTO equipment_transactions (
			id, item_id, transaction_type, from_user_id, to_user_id,
			from_location_id, to_location_id, processed_by,
			condition_before, condition_after, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at
	`

	err := q.QueryRowxContext(ctx, query,
		txn.ID, txn.ItemID, txn.TransactionType, txn.FromUserID, txn.ToUserID,
		txn.FromLocationID, txn.ToLocationID, txn.ProcessedBy,
		txn.ConditionBefore, txn.ConditionAfter, txn.Notes,
	).Scan(&txn.CreatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	return nil
}

// ListByItem lists ledger entries for an item with pagination, newest first
func (r *TransactionRepository) ListByItem(ctx context.Context, itemID string, page, perPage int) ([]*EquipmentTransaction, int64, error) {
	var total int64
	var entries []*EquipmentTransaction

	countQuery := `SELECT COUNT(*) FROM equipment_transactions WHERE item_id = $1`
	if err := r.db.GetContext(ctx, &total, countQuery, itemID); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage
	query := `
		SELECT id, item_id, transaction_type, from_user_id, to_user_id,
		       from_location_id, to_location_id, processed_by,
		       condition_before, condition_after, notes, created_at
		FROM equipment_transactions
		WHERE item_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	if err := r.db.SelectContext(ctx, &entries, query, itemID, perPage, offset); err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// CountSince counts ledger entries created at or after the given time
func (r *TransactionRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64

	query := `SELECT COUNT(*) FROM equipment_transactions WHERE created_at >= $1`
	if err := r.db.GetContext(ctx, &count, query, since); err != nil {
		return 0, err
	}

	return count, nil
}
