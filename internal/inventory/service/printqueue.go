package service

import (
	"context"
	"time"

	"github.com/lendstock/lendstock-backend/internal/inventory/repository"
	"github.com/lendstock/lendstock-backend/pkg/errors"
	"github.com/lendstock/lendstock-backend/pkg/logger"
)

// PrintQueueService manages the queue of labels waiting to be printed
type PrintQueueService struct {
	itemRepo  *repository.ItemRepository
	queueRepo *repository.PrintQueueRepository
	logger    *logger.Logger
}

// NewPrintQueueService creates a new print queue service
func NewPrintQueueService(
	itemRepo *repository.ItemRepository,
	queueRepo *repository.PrintQueueRepository,
	log *logger.Logger,
) *PrintQueueService {
	return &PrintQueueService{
		itemRepo:  itemRepo,
		queueRepo: queueRepo,
		logger:    log,
	}
}

// AddItemToQueue queues an item's label for printing. Items with a
// pending entry are rejected, so requeuing is idempotent at one entry.
func (s *PrintQueueService) AddItemToQueue(ctx context.Context, itemID, processorID string, notes string) (*repository.PrintQueueEntry, error) {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.Status.Terminal() {
		return nil, errors.AlreadyRemoved(item.UUID)
	}

	queued, err := s.queueRepo.HasUnprinted(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if queued {
		return nil, errors.Conflict("item is already queued for printing")
	}

	entry := &repository.PrintQueueEntry{
		ItemID:   item.ID,
		ItemUUID: item.UUID,
		QueuedBy: processorID,
		Notes:    optional(notes),
	}
	if err := s.queueRepo.Insert(ctx, entry); err != nil {
		return nil, err
	}

	return entry, nil
}

// GetUnprintedQueue lists pending labels with product context,
// oldest first
func (s *PrintQueueService) GetUnprintedQueue(ctx context.Context) ([]*repository.QueueEntryDetail, error) {
	return s.queueRepo.ListUnprinted(ctx)
}

// MarkItemsPrinted stamps queue entries as printed and reports how many
// actually changed
func (s *PrintQueueService) MarkItemsPrinted(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, errors.BadRequest("no queue entries given")
	}
	return s.queueRepo.MarkPrinted(ctx, ids)
}

// RemoveItemsFromQueue deletes queue entries regardless of printed state
func (s *PrintQueueService) RemoveItemsFromQueue(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, errors.BadRequest("no queue entries given")
	}
	return s.queueRepo.Remove(ctx, ids)
}

// CleanupPrintedItems deletes printed entries older than the given age
func (s *PrintQueueService) CleanupPrintedItems(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, errors.BadRequest("retention must be positive")
	}

	cutoff := time.Now().Add(-olderThan)
	deleted, err := s.queueRepo.DeletePrintedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		s.logger.Info().Int64("deleted", deleted).Msg("printed queue entries cleaned up")
	}

	return deleted, nil
}

// ClearPrintedItems deletes every printed entry
func (s *PrintQueueService) ClearPrintedItems(ctx context.Context) (int64, error) {
	return s.queueRepo.DeleteAllPrinted(ctx)
}
