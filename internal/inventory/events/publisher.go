package events

import (
	"context"
	"time"

	"github.com/lendstock/lendstock-backend/internal/inventory/repository"
	"github.com/lendstock/lendstock-backend/pkg/logger"
	"github.com/lendstock/lendstock-backend/pkg/messaging"
)

// EquipmentEventPublisher publishes equipment lifecycle events.
// A nil publisher is valid and publishes nothing, so the service can run
// without a broker in development. Publish failures are logged and never
// fail the inventory operation that triggered them.
type EquipmentEventPublisher struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewEquipmentEventPublisher creates a new equipment event publisher
func NewEquipmentEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*EquipmentEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeEquipmentEvents, "inventory-service", log)
	if err != nil {
		return nil, err
	}

	return &EquipmentEventPublisher{
		publisher: publisher,
		logger:    log,
	}, nil
}

// PublishCheckedOut publishes a checkout event
func (p *EquipmentEventPublisher) PublishCheckedOut(ctx context.Context, item *repository.EquipmentItem, borrowerID, processorID string) {
	if p == nil {
		return
	}

	data := messaging.EquipmentCheckedOutEvent{
		ItemID:      item.ID,
		ItemUUID:    item.UUID,
		ProductID:   item.ProductID,
		BorrowerID:  borrowerID,
		ProcessorID: processorID,
		CheckedOut:  time.Now().UTC(),
	}

	if err := p.publisher.Publish(ctx, messaging.EventEquipmentCheckedOut, data); err != nil {
		p.logger.Error().Err(err).Str("item_id", item.ID).Msg("failed to publish checkout event")
	}
}

// PublishCheckedIn publishes a checkin event
func (p *EquipmentEventPublisher) PublishCheckedIn(ctx context.Context, item *repository.EquipmentItem, processorID string) {
	if p == nil {
		return
	}

	locationID := ""
	if item.LocationID != nil {
		locationID = *item.LocationID
	}

	data := messaging.EquipmentCheckedInEvent{
		ItemID:      item.ID,
		ItemUUID:    item.UUID,
		ProductID:   item.ProductID,
		LocationID:  locationID,
		ProcessorID: processorID,
		Condition:   string(item.ConditionStatus),
		CheckedIn:   time.Now().UTC(),
	}

	if err := p.publisher.Publish(ctx, messaging.EventEquipmentCheckedIn, data); err != nil {
		p.logger.Error().Err(err).Str("item_id", item.ID).Msg("failed to publish checkin event")
	}
}

// PublishRemoved publishes a removal event
func (p *EquipmentEventPublisher) PublishRemoved(ctx context.Context, item *repository.EquipmentItem, reason, processorID string, forced bool) {
	if p == nil {
		return
	}

	data := messaging.EquipmentRemovedEvent{
		ItemID:      item.ID,
		ItemUUID:    item.UUID,
		ProductID:   item.ProductID,
		ProcessorID: processorID,
		Reason:      reason,
		Forced:      forced,
	}

	if err := p.publisher.Publish(ctx, messaging.EventEquipmentRemoved, data); err != nil {
		p.logger.Error().Err(err).Str("item_id", item.ID).Msg("failed to publish removal event")
	}
}

// PublishRelabeled publishes a label regeneration event
func (p *EquipmentEventPublisher) PublishRelabeled(ctx context.Context, itemID, oldUUID, newUUID, processorID string) {
	if p == nil {
		return
	}

	data := messaging.EquipmentRelabeledEvent{
		ItemID:      itemID,
		OldUUID:     oldUUID,
		NewUUID:     newUUID,
		ProcessorID: processorID,
	}

	if err := p.publisher.Publish(ctx, messaging.EventEquipmentRelabeled, data); err != nil {
		p.logger.Error().Err(err).Str("item_id", itemID).Msg("failed to publish relabel event")
	}
}

// PublishCreated publishes a batch creation event
func (p *EquipmentEventPublisher) PublishCreated(ctx context.Context, productID string, itemUUIDs []string, locationID, processorID string) {
	if p == nil {
		return
	}

	data := messaging.EquipmentCreatedEvent{
		ProductID:   productID,
		ItemUUIDs:   itemUUIDs,
		LocationID:  locationID,
		ProcessorID: processorID,
	}

	if err := p.publisher.Publish(ctx, messaging.EventEquipmentCreated, data); err != nil {
		p.logger.Error().Err(err).Str("product_id", productID).Msg("failed to publish item creation event")
	}
}
