package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"inventory-service/internal/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher handles publishing domain events. Movement events are keyed
// per item so consumers see a pair's movements in order; purchase order
// events are keyed per order.
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishMovementRecorded publishes a MovementRecorded event
func (ep *EventPublisher) PublishMovementRecorded(ctx context.Context, event *models.MovementRecordedEvent) error {
	key := fmt.Sprintf("item-%d", event.ItemID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishPOCreated publishes a POCreated event
func (ep *EventPublisher) PublishPOCreated(ctx context.Context, event *models.POCreatedEvent) error {
	key := fmt.Sprintf("po-%d", event.PurchaseOrderID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishPOStatusChanged publishes a POStatusChanged event
func (ep *EventPublisher) PublishPOStatusChanged(ctx context.Context, event *models.POStatusChangedEvent) error {
	key := fmt.Sprintf("po-%d", event.PurchaseOrderID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishPOReceived publishes a POReceived event
func (ep *EventPublisher) PublishPOReceived(ctx context.Context, event *models.POReceivedEvent) error {
	key := fmt.Sprintf("po-%d", event.PurchaseOrderID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishLowStockDetected publishes a LowStockDetected event
func (ep *EventPublisher) PublishLowStockDetected(ctx context.Context, event *models.LowStockDetectedEvent) error {
	key := fmt.Sprintf("item-%d", event.ItemID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler routes incoming events to registered handlers by event type.
type EventHandler struct {
	onMovementRecorded func(context.Context, *models.MovementRecordedEvent) error
	onPOReceived       func(context.Context, *models.POReceivedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnMovementRecorded registers a handler for MovementRecorded events
func (eh *EventHandler) OnMovementRecorded(handler func(context.Context, *models.MovementRecordedEvent) error) {
	eh.onMovementRecorded = handler
}

// OnPOReceived registers a handler for POReceived events
func (eh *EventHandler) OnPOReceived(handler func(context.Context, *models.POReceivedEvent) error) {
	eh.onPOReceived = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	switch baseEvent.EventType {
	case models.EventTypeMovementRecorded:
		if eh.onMovementRecorded != nil {
			var event models.MovementRecordedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal MovementRecorded event: %w", err)
			}
			return eh.onMovementRecorded(ctx, &event)
		}

	case models.EventTypePOReceived:
		if eh.onPOReceived != nil {
			var event models.POReceivedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal POReceived event: %w", err)
			}
			return eh.onPOReceived(ctx, &event)
		}
	}

	return nil
}
