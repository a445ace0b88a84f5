package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"warehouse-service/internal/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher handles publishing domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishPackageCreated publishes PackageCreated event
func (ep *EventPublisher) PublishPackageCreated(ctx context.Context, event *models.PackageCreatedEvent) error {
	key := fmt.Sprintf("package-%s", event.PackageID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishPackageAssigned publishes PackageAssigned event
func (ep *EventPublisher) PublishPackageAssigned(ctx context.Context, event *models.PackageAssignedEvent) error {
	key := fmt.Sprintf("package-%s", event.PackageID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishPackageDeleted publishes PackageDeleted event
func (ep *EventPublisher) PublishPackageDeleted(ctx context.Context, event *models.PackageDeletedEvent) error {
	key := fmt.Sprintf("package-%s", event.PackageID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishPackageArchived publishes PackageArchived event
func (ep *EventPublisher) PublishPackageArchived(ctx context.Context, event *models.PackageArchivedEvent) error {
	key := fmt.Sprintf("package-%s", event.PackageID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler handles incoming events
type EventHandler struct {
	onPackageArchived func(context.Context, *models.PackageArchivedEvent) error
	onPackageAssigned func(context.Context, *models.PackageAssignedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnPackageArchived registers a handler for PackageArchived events
func (eh *EventHandler) OnPackageArchived(handler func(context.Context, *models.PackageArchivedEvent) error) {
	eh.onPackageArchived = handler
}

// OnPackageAssigned registers a handler for PackageAssigned events
func (eh *EventHandler) OnPackageAssigned(handler func(context.Context, *models.PackageAssignedEvent) error) {
	eh.onPackageAssigned = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	log.Printf("Handling event: type=%s, id=%s", baseEvent.EventType, baseEvent.EventID)

	switch baseEvent.EventType {
	case models.EventTypePackageArchived:
		if eh.onPackageArchived != nil {
			var event models.PackageArchivedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal PackageArchived event: %w", err)
			}
			return eh.onPackageArchived(ctx, &event)
		}

	case models.EventTypePackageAssigned:
		if eh.onPackageAssigned != nil {
			var event models.PackageAssignedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal PackageAssigned event: %w", err)
			}
			return eh.onPackageAssigned(ctx, &event)
		}

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}
