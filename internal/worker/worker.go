package worker

import (
	"context"
	"time"

	"inventory-service/internal/apperrors"
	"inventory-service/internal/broker"
	"inventory-service/internal/models"
	"inventory-service/internal/store"
	"inventory-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LowStockMonitor watches committed movements and raises an alert when a
// movement leaves available quantity at or below the item's reorder point.
// It re-reads the snapshot rather than trusting the event payload, since the
// event may be stale by the time it is consumed.
type LowStockMonitor struct {
	consumer       *broker.Consumer
	eventHandler   *broker.EventHandler
	store          *store.Store
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewLowStockMonitor creates a new low-stock monitor
func NewLowStockMonitor(
	consumer *broker.Consumer,
	store *store.Store,
	eventPublisher *broker.EventPublisher,
) *LowStockMonitor {
	m := &LowStockMonitor{
		consumer:       consumer,
		store:          store,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnMovementRecorded(m.handleMovementRecorded)
	m.eventHandler = eventHandler

	return m
}

// Start starts the monitor
func (m *LowStockMonitor) Start(ctx context.Context) error {
	m.logger.Info("Starting low-stock monitor")
	return m.consumer.StartConsuming(ctx, m.eventHandler.HandleMessage)
}

// Stop stops the monitor
func (m *LowStockMonitor) Stop() error {
	m.logger.Info("Stopping low-stock monitor")
	return m.consumer.Close()
}

// handleMovementRecorded evaluates the reorder threshold for the pair a
// movement touched. Dedupe by event ID keeps redelivery from double-alerting.
func (m *LowStockMonitor) handleMovementRecorded(ctx context.Context, event *models.MovementRecordedEvent) error {
	processed, err := m.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return err
	}
	if processed {
		return nil
	}

	item, err := m.store.GetItemByID(ctx, event.ItemID)
	if err != nil {
		// Unknown item ID; nothing to alert on.
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			return m.store.MarkEventProcessed(ctx, event.EventID, event.EventType)
		}
		return err
	}

	snap, err := m.store.GetSnapshot(ctx, event.ItemID, event.LocationID)
	if err != nil {
		return err
	}

	if item.IsActive && snap.QuantityAvailable <= item.ReorderPoint {
		alert := &models.LowStockDetectedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeLowStockDetected,
				Timestamp: time.Now(),
			},
			ItemID:            item.ID,
			SKU:               item.SKU,
			LocationID:        event.LocationID,
			QuantityAvailable: snap.QuantityAvailable,
			ReorderPoint:      item.ReorderPoint,
		}
		if err := m.eventPublisher.PublishLowStockDetected(ctx, alert); err != nil {
			m.logger.Error("Failed to publish LowStockDetected event", zap.Error(err))
			return err
		}

		util.LowStockAlertsTotal.Inc()
		m.logger.Warn("Low stock detected",
			zap.String("sku", item.SKU),
			zap.Int64("location_id", event.LocationID),
			zap.Int("available", snap.QuantityAvailable),
			zap.Int("reorder_point", item.ReorderPoint))
	}

	return m.store.MarkEventProcessed(ctx, event.EventID, event.EventType)
}
