package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/lendstock/lendstock-backend/pkg/database"
)

// PrintQueueEntry is a pending or completed QR label print job.
// At most one unprinted entry exists per item; re-queuing an already
// queued item is rejected at the service layer.
type PrintQueueEntry struct {
	ID        string     `db:"id" json:"id"`
	ItemID    string     `db:"item_id" json:"item_id"`
	ItemUUID  string     `db:"item_uuid" json:"item_uuid"`
	QueuedBy  string     `db:"queued_by" json:"queued_by"`
	QueuedAt  time.Time  `db:"queued_at" json:"queued_at"`
	PrintedAt *time.Time `db:"printed_at" json:"printed_at,omitempty"`
	Notes     *string    `db:"notes" json:"notes,omitempty"`
}

// QueueEntryDetail joins a queue entry with item and product context
// for the print view
type QueueEntryDetail struct {
	PrintQueueEntry
	ProductName  string  `db:"product_name" json:"product_name"`
	Manufacturer *string `db:"manufacturer" json:"manufacturer,omitempty"`
	LocationName *string `db:"location_name" json:"location_name,omitempty"`
}

// PrintQueueRepository handles print queue persistence
type PrintQueueRepository struct {
	db *database.DB
}

// NewPrintQueueRepository creates a new print queue repository
func NewPrintQueueRepository(db *database.DB) *PrintQueueRepository {
	return &PrintQueueRepository{db: db}
}

// HasUnprinted reports whether an unprinted entry exists for the item
func (r *PrintQueueRepository) HasUnprinted(ctx context.Context, itemID string) (bool, error) {
	return r.HasUnprintedTx(ctx, r.db, itemID)
}

// HasUnprintedTx reports whether an unprinted entry exists for the item,
// inside a caller-scoped transaction
func (r *PrintQueueRepository) HasUnprintedTx(ctx context.Context, q database.Queryer, itemID string) (bool, error) {
	var exists bool

	query := `SELECT EXISTS(SELECT 1 FROM print_queue WHERE item_id = $1 AND printed_at IS NULL)`
	if err := q.GetContext(ctx, &exists, query, itemID); err != nil {
		return false, err
	}

	return exists, nil
}

// Insert adds a queue entry
func (r *PrintQueueRepository) Insert(ctx context.Context, entry *PrintQueueEntry) error {
	return r.InsertTx(ctx, r.db, entry)
}

// InsertTx adds a queue entry inside a caller-scoped transaction
func (r *PrintQueueRepository) InsertTx(ctx context.Context, q database.Queryer, entry *PrintQueueEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	query := `
		INSERT INTO print_queue (id, item_id, item_uuid, queued_by, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING queued_at
	`

	err := q.QueryRowxContext(ctx, query,
		entry.ID, entry.ItemID, entry.ItemUUID, entry.QueuedBy, entry.Notes,
	).Scan(&entry.QueuedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	return nil
}

// ListUnprinted lists pending entries with product context, oldest first
func (r *PrintQueueRepository) ListUnprinted(ctx context.Context) ([]*QueueEntryDetail, error) {
	var entries []*QueueEntryDetail

	query := `
		SELECT pq.id, pq.item_id, pq.item_uuid, pq.queued_by, pq.queued_at,
		       pq.printed_at, pq.notes,
		       p.name AS product_name, p.manufacturer,
		       l.name AS location_name
		FROM print_queue pq
		JOIN equipment_items i ON i.id = pq.item_id
		JOIN products p ON p.id = i.product_id
		LEFT JOIN locations l ON l.id = i.location_id
		WHERE pq.printed_at IS NULL
		ORDER BY pq.queued_at ASC
	`
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, err
	}

	return entries, nil
}

// MarkPrinted stamps the given entries as printed and returns how many
// rows changed. Already printed entries are left untouched.
func (r *PrintQueueRepository) MarkPrinted(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := `UPDATE print_queue SET printed_at = NOW() WHERE id = ANY($1) AND printed_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, pq.Array(ids))
	if err != nil {
		return 0, err
	}

	affected, _ := result.RowsAffected()
	return affected, nil
}

// Remove deletes the given entries regardless of printed state
func (r *PrintQueueRepository) Remove(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := `DELETE FROM print_queue WHERE id = ANY($1)`
	result, err := r.db.ExecContext(ctx, query, pq.Array(ids))
	if err != nil {
		return 0, err
	}

	affected, _ := result.RowsAffected()
	return affected, nil
}

// DeletePrintedBefore deletes printed entries older than the cutoff
func (r *PrintQueueRepository) DeletePrintedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM print_queue WHERE printed_at IS NOT NULL AND printed_at < $1`
	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}

	affected, _ := result.RowsAffected()
	return affected, nil
}

// DeleteAllPrinted deletes every printed entry
func (r *PrintQueueRepository) DeleteAllPrinted(ctx context.Context) (int64, error) {
	query := `DELETE FROM print_queue WHERE printed_at IS NOT NULL`
	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, err
	}

	affected, _ := result.RowsAffected()
	return affected, nil
}

// DeleteByItemTx purges all queue entries for an item inside a caller-scoped
// transaction. Invoked when an item is removed from inventory.
func (r *PrintQueueRepository) DeleteByItemTx(ctx context.Context, q database.Queryer, itemID string) error {
	query := `DELETE FROM print_queue WHERE item_id = $1`
	_, err := q.ExecContext(ctx, query, itemID)
	return err
}
