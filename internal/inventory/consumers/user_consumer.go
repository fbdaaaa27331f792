package consumers

import (
	"context"

	"github.com/lendstock/lendstock-backend/internal/inventory/repository"
	"github.com/lendstock/lendstock-backend/pkg/logger"
	"github.com/lendstock/lendstock-backend/pkg/messaging"
)

// UserEventConsumer keeps the user directory cache in sync with the
// accounts service
type UserEventConsumer struct {
	consumer *messaging.Consumer
	userRepo *repository.UserDirectoryRepository
	logger   *logger.Logger
}

// NewUserEventConsumer creates a new user event consumer
func NewUserEventConsumer(rmq *messaging.RabbitMQ, userRepo *repository.UserDirectoryRepository, log *logger.Logger) (*UserEventConsumer, error) {
	consumer, err := messaging.NewConsumer(rmq, "inventory-service.user-events", log)
	if err != nil {
		return nil, err
	}

	// Subscribe to user events
	if err := consumer.Subscribe(messaging.ExchangeUserEvents, "user.#"); err != nil {
		return nil, err
	}

	c := &UserEventConsumer{
		consumer: consumer,
		userRepo: userRepo,
		logger:   log,
	}

	// Register handlers
	consumer.RegisterHandler(messaging.EventUserCreated, c.handleUserCreated)
	consumer.RegisterHandler(messaging.EventUserUpdated, c.handleUserUpdated)
	consumer.RegisterHandler(messaging.EventUserDeleted, c.handleUserDeleted)

	return c, nil
}

// Start starts consuming messages
func (c *UserEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Start(ctx)
}

func (c *UserEventConsumer) handleUserCreated(ctx context.Context, event *messaging.Event) error {
	var data messaging.UserCreatedEvent
	if err := event.UnmarshalData(&data); err != nil {
		return err
	}

	c.logger.Info().
		Str("user_id", data.UserID).
		Str("name", data.FullName()).
		Msg("received user created event")

	return c.userRepo.Upsert(ctx, &repository.DirectoryUser{
		UserID:    data.UserID,
		FirstName: data.FirstName,
		LastName:  data.LastName,
		Email:     data.Email,
	})
}

func (c *UserEventConsumer) handleUserUpdated(ctx context.Context, event *messaging.Event) error {
	var data messaging.UserUpdatedEvent
	if err := event.UnmarshalData(&data); err != nil {
		return err
	}

	c.logger.Info().
		Str("user_id", data.UserID).
		Msg("received user updated event")

	existing, _ := c.userRepo.Get(ctx, data.UserID)
	if existing == nil {
		return nil
	}

	if v, ok := data.Fields["first_name"].(string); ok {
		existing.FirstName = v
	}
	if v, ok := data.Fields["last_name"].(string); ok {
		existing.LastName = v
	}
	if v, ok := data.Fields["email"].(string); ok {
		existing.Email = v
	}

	return c.userRepo.Upsert(ctx, existing)
}

func (c *UserEventConsumer) handleUserDeleted(ctx context.Context, event *messaging.Event) error {
	var data messaging.UserDeletedEvent
	if err := event.UnmarshalData(&data); err != nil {
		return err
	}

	c.logger.Info().
		Str("user_id", data.UserID).
		Msg("received user deleted event")

	return c.userRepo.Delete(ctx, data.UserID)
}
