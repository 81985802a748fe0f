package service

import (
	"context"
	"time"

	"inventory-service/internal/apperrors"
	"inventory-service/internal/broker"
	"inventory-service/internal/models"
	"inventory-service/internal/redisclient"
	"inventory-service/internal/store"
	"inventory-service/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InventoryService owns the stock ledger: every change in quantity flows
// through RecordMovement so the snapshot invariants are enforced in one place.
type InventoryService struct {
	store          *store.Store
	redis          *redisclient.Client
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
	cacheTTL       time.Duration
}

// NewInventoryService creates a new inventory service
func NewInventoryService(
	store *store.Store,
	redis *redisclient.Client,
	eventPublisher *broker.EventPublisher,
	cacheTTL time.Duration,
) *InventoryService {
	return &InventoryService{
		store:          store,
		redis:          redis,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
		cacheTTL:       cacheTTL,
	}
}

// RecordMovementRequest represents a request to append a ledger entry.
type RecordMovementRequest struct {
	ItemID         int64            `json:"item_id" binding:"required"`
	LocationID     int64            `json:"location_id" binding:"required"`
	MovementType   string           `json:"movement_type" binding:"required"`
	QuantityChange int              `json:"quantity_change"`
	UnitCost       *decimal.Decimal `json:"unit_cost,omitempty"`
	ReferenceType  string           `json:"reference_type,omitempty"`
	ReferenceID    *int64           `json:"reference_id,omitempty"`
	ReasonCode     string           `json:"reason_code,omitempty"`
	Notes          string           `json:"notes,omitempty"`
	IdempotencyKey string           `json:"idempotency_key,omitempty"`
	RecordedBy     string           `json:"recorded_by,omitempty"`
}

// RecordMovementResponse carries the created (or replayed) movement and the
// snapshot it produced.
type RecordMovementResponse struct {
	Movement *models.StockMovement `json:"movement"`
	Snapshot *models.StockSnapshot `json:"snapshot"`
	Replayed bool                  `json:"replayed,omitempty"`
}

// RecordMovement validates the request, appends a ledger entry and updates
// the snapshot atomically, then invalidates cached stock views and publishes
// a MovementRecorded event. With an idempotency key, replaying the same call
// returns the original movement without applying it again.
func (s *InventoryService) RecordMovement(ctx context.Context, req *RecordMovementRequest) (*RecordMovementResponse, error) {
	ctx, span := util.StartSpan(ctx, "InventoryService.RecordMovement")
	defer span.End()

	start := time.Now()
	defer func() {
		util.RecordMovementLatency.Observe(time.Since(start).Seconds())
	}()

	movementType, err := models.ParseMovementType(req.MovementType)
	if err != nil {
		util.MovementsRejectedTotal.WithLabelValues("invalid_type").Inc()
		return nil, apperrors.Validation("%v", err)
	}
	if req.QuantityChange == 0 {
		util.MovementsRejectedTotal.WithLabelValues("zero_change").Inc()
		return nil, apperrors.Validation("quantity_change must be a non-zero signed integer")
	}
	if req.UnitCost != nil && req.UnitCost.IsNegative() {
		util.MovementsRejectedTotal.WithLabelValues("negative_cost").Inc()
		return nil, apperrors.Validation("unit_cost must not be negative")
	}

	item, err := s.store.GetItemByID(ctx, req.ItemID)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			util.MovementsRejectedTotal.WithLabelValues("unknown_item").Inc()
			return nil, apperrors.Validation("unknown item: %d", req.ItemID)
		}
		return nil, err
	}
	if !item.IsActive {
		util.MovementsRejectedTotal.WithLabelValues("inactive_item").Inc()
		return nil, apperrors.Validation("item %s is retired", item.SKU)
	}

	location, err := s.store.GetLocationByID(ctx, req.LocationID)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			util.MovementsRejectedTotal.WithLabelValues("unknown_location").Inc()
			return nil, apperrors.Validation("unknown location: %d", req.LocationID)
		}
		return nil, err
	}
	if !location.IsActive {
		util.MovementsRejectedTotal.WithLabelValues("inactive_location").Inc()
		return nil, apperrors.Validation("location %s is retired", location.Code)
	}

	if req.IdempotencyKey != "" {
		if resp, err := s.replayByKey(ctx, req.IdempotencyKey); err != nil || resp != nil {
			return resp, err
		}
	}

	movement := &models.StockMovement{
		ItemID:         req.ItemID,
		LocationID:     req.LocationID,
		MovementType:   movementType,
		QuantityChange: req.QuantityChange,
		UnitCost:       req.UnitCost,
		ReferenceType:  req.ReferenceType,
		ReferenceID:    req.ReferenceID,
		ReasonCode:     req.ReasonCode,
		Notes:          req.Notes,
		RecordedBy:     req.RecordedBy,
	}
	if req.IdempotencyKey != "" {
		movement.IdempotencyKey = &req.IdempotencyKey
	}

	snapshot, err := s.store.RecordMovement(ctx, movement)
	if err != nil {
		// A concurrent request may have won the idempotency-key insert race;
		// the unique index makes this safe to resolve by replay.
		if req.IdempotencyKey != "" && apperrors.IsCode(err, apperrors.CodeUniquenessConflict) {
			if resp, replayErr := s.replayByKey(ctx, req.IdempotencyKey); replayErr == nil && resp != nil {
				return resp, nil
			}
		}
		if apperrors.IsCode(err, apperrors.CodeInsufficientStock) {
			util.MovementsRejectedTotal.WithLabelValues("insufficient_stock").Inc()
		}
		return nil, err
	}

	util.MovementsRecordedTotal.WithLabelValues(string(movementType)).Inc()
	s.logger.Info("Movement recorded",
		zap.Int64("movement_id", movement.ID),
		zap.Int64("item_id", movement.ItemID),
		zap.Int64("location_id", movement.LocationID),
		zap.String("movement_type", string(movementType)),
		zap.Int("quantity_change", movement.QuantityChange),
		zap.Int("on_hand", snapshot.QuantityOnHand))

	s.invalidateAndPublish(ctx, movement, snapshot)

	return &RecordMovementResponse{Movement: movement, Snapshot: snapshot}, nil
}

// replayByKey returns the previously recorded movement for an idempotency
// key, or nil when the key is unseen.
func (s *InventoryService) replayByKey(ctx context.Context, key string) (*RecordMovementResponse, error) {
	existing, err := s.store.GetMovementByIdempotencyKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	s.logger.Info("Duplicate movement request detected",
		zap.String("idempotency_key", key),
		zap.Int64("movement_id", existing.ID))

	snapshot, err := s.store.GetSnapshot(ctx, existing.ItemID, existing.LocationID)
	if err != nil {
		return nil, err
	}
	return &RecordMovementResponse{Movement: existing, Snapshot: snapshot, Replayed: true}, nil
}

// invalidateAndPublish drops the stock views affected by a committed movement
// and emits the MovementRecorded event. Neither failure unwinds the commit;
// both are logged.
func (s *InventoryService) invalidateAndPublish(ctx context.Context, movement *models.StockMovement, snapshot *models.StockSnapshot) {
	if err := s.redis.InvalidateStockViews(ctx, movement.ItemID, movement.LocationID); err != nil {
		s.logger.Warn("Failed to invalidate stock views",
			zap.Int64("item_id", movement.ItemID),
			zap.Error(err))
	}

	event := &models.MovementRecordedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeMovementRecorded,
			Timestamp: time.Now(),
		},
		MovementID:        movement.ID,
		ItemID:            movement.ItemID,
		LocationID:        movement.LocationID,
		MovementType:      movement.MovementType,
		QuantityChange:    movement.QuantityChange,
		QuantityOnHand:    snapshot.QuantityOnHand,
		QuantityAvailable: snapshot.QuantityAvailable,
		RecordedBy:        movement.RecordedBy,
	}
	if err := s.eventPublisher.PublishMovementRecorded(ctx, event); err != nil {
		s.logger.Error("Failed to publish MovementRecorded event", zap.Error(err))
	}
}

// GetSnapshot retrieves the current snapshot, read-through cached.
func (s *InventoryService) GetSnapshot(ctx context.Context, itemID, locationID int64) (*models.StockSnapshot, error) {
	ctx, span := util.StartSpan(ctx, "InventoryService.GetSnapshot")
	defer span.End()

	cached, err := s.redis.GetCachedSnapshot(ctx, itemID, locationID)
	if err != nil {
		s.logger.Warn("Snapshot cache read failed", zap.Error(err))
	}
	if cached != nil {
		util.SnapshotCacheHits.WithLabelValues("hit").Inc()
		return cached, nil
	}
	util.SnapshotCacheHits.WithLabelValues("miss").Inc()

	snap, err := s.store.GetSnapshot(ctx, itemID, locationID)
	if err != nil {
		return nil, err
	}

	if err := s.redis.CacheSnapshot(ctx, snap, s.cacheTTL); err != nil {
		s.logger.Warn("Failed to cache snapshot", zap.Error(err))
	}
	return snap, nil
}

// GetLowStock returns every (item, location) snapshot at or under the item's
// reorder point, most urgent first, via the cached view.
func (s *InventoryService) GetLowStock(ctx context.Context) ([]models.LowStockEntry, error) {
	ctx, span := util.StartSpan(ctx, "InventoryService.GetLowStock")
	defer span.End()

	entries, hit, err := s.redis.GetCachedLowStock(ctx)
	if err != nil {
		s.logger.Warn("Low-stock cache read failed", zap.Error(err))
	}
	if hit {
		return entries, nil
	}

	entries, err = s.store.GetLowStock(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.redis.CacheLowStock(ctx, entries, s.cacheTTL); err != nil {
		s.logger.Warn("Failed to cache low-stock view", zap.Error(err))
	}
	return entries, nil
}

// ListMovements retrieves ledger history, newest first.
func (s *InventoryService) ListMovements(ctx context.Context, itemID, locationID int64, limit int) ([]models.StockMovement, error) {
	return s.store.ListMovements(ctx, itemID, locationID, limit)
}
