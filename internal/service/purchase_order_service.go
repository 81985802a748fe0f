package service

import (
	"context"
	"fmt"
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

// PurchaseOrderService manages the order lifecycle from draft to received and
// reconciles received quantities back into the stock ledger.
type PurchaseOrderService struct {
	store          *store.Store
	redis          *redisclient.Client
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
	taxRate        decimal.Decimal
	receiveLockTTL time.Duration
}

// NewPurchaseOrderService creates a new purchase order service
func NewPurchaseOrderService(
	store *store.Store,
	redis *redisclient.Client,
	eventPublisher *broker.EventPublisher,
	taxRate decimal.Decimal,
	receiveLockTTL time.Duration,
) *PurchaseOrderService {
	return &PurchaseOrderService{
		store:          store,
		redis:          redis,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
		taxRate:        taxRate,
		receiveLockTTL: receiveLockTTL,
	}
}

// CreatePurchaseOrderRequest represents a request to create a purchase order.
type CreatePurchaseOrderRequest struct {
	VendorID             int64                      `json:"vendor_id" binding:"required"`
	LocationID           int64                      `json:"location_id" binding:"required"`
	Items                []PurchaseOrderLineRequest `json:"items" binding:"required,min=1"`
	ExpectedDeliveryDate *time.Time                 `json:"expected_delivery_date,omitempty"`
	ShippingCost         decimal.Decimal            `json:"shipping_cost"`
	Notes                string                     `json:"notes,omitempty"`
	CreatedBy            string                     `json:"created_by,omitempty"`
}

// PurchaseOrderLineRequest represents one line of a new purchase order.
type PurchaseOrderLineRequest struct {
	ItemID          int64           `json:"item_id" binding:"required"`
	QuantityOrdered int             `json:"quantity_ordered"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
}

// PurchaseOrderResponse is the header plus its lines.
type PurchaseOrderResponse struct {
	Order *models.PurchaseOrder      `json:"order"`
	Items []models.PurchaseOrderItem `json:"items"`
}

// computeTotals derives line totals, subtotal, tax and grand total with exact
// decimal arithmetic. Tax is rounded to cents on the subtotal, not per line.
func computeTotals(lines []models.PurchaseOrderItem, taxRate, shipping decimal.Decimal) (subtotal, tax, total decimal.Decimal) {
	subtotal = decimal.Zero
	for i := range lines {
		lines[i].LineTotal = lines[i].UnitCost.Mul(decimal.NewFromInt(int64(lines[i].QuantityOrdered)))
		subtotal = subtotal.Add(lines[i].LineTotal)
	}
	tax = subtotal.Mul(taxRate).Round(2)
	total = subtotal.Add(tax).Add(shipping)
	return subtotal, tax, total
}

// CreatePurchaseOrder validates vendor, location and lines, generates the
// location-scoped PO number and persists header plus lines atomically. The
// new order starts in draft.
func (s *PurchaseOrderService) CreatePurchaseOrder(ctx context.Context, req *CreatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	ctx, span := util.StartSpan(ctx, "PurchaseOrderService.CreatePurchaseOrder")
	defer span.End()

	vendor, err := s.store.GetVendorByID(ctx, req.VendorID)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			return nil, apperrors.Validation("unknown vendor: %d", req.VendorID)
		}
		return nil, err
	}
	if !vendor.IsActive {
		return nil, apperrors.Validation("vendor %q is retired", vendor.Name)
	}

	location, err := s.store.GetLocationByID(ctx, req.LocationID)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			return nil, apperrors.Validation("unknown location: %d", req.LocationID)
		}
		return nil, err
	}
	if !location.IsActive {
		return nil, apperrors.Validation("location %s is retired", location.Code)
	}

	if req.ShippingCost.IsNegative() {
		return nil, apperrors.Validation("shipping_cost must not be negative")
	}

	lines, err := s.validateLines(ctx, req.Items)
	if err != nil {
		util.PurchaseOrdersFailedTotal.WithLabelValues("invalid_lines").Inc()
		return nil, err
	}

	subtotal, tax, total := computeTotals(lines, s.taxRate, req.ShippingCost)

	po := &models.PurchaseOrder{
		VendorID:             req.VendorID,
		LocationID:           req.LocationID,
		Status:               models.POStatusDraft,
		OrderDate:            time.Now(),
		ExpectedDeliveryDate: req.ExpectedDeliveryDate,
		Subtotal:             subtotal,
		TaxAmount:            tax,
		ShippingCost:         req.ShippingCost,
		TotalAmount:          total,
		Notes:                req.Notes,
		CreatedBy:            req.CreatedBy,
	}

	if err := s.store.CreatePurchaseOrder(ctx, po, lines, location.Code); err != nil {
		util.PurchaseOrdersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, err
	}

	util.PurchaseOrdersCreatedTotal.Inc()
	s.logger.Info("Purchase order created",
		zap.Int64("po_id", po.ID),
		zap.String("po_number", po.PONumber),
		zap.Int64("vendor_id", po.VendorID),
		zap.String("total_amount", po.TotalAmount.String()))

	event := &models.POCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypePOCreated,
			Timestamp: time.Now(),
		},
		PurchaseOrderID: po.ID,
		PONumber:        po.PONumber,
		VendorID:        po.VendorID,
		LocationID:      po.LocationID,
		TotalAmount:     po.TotalAmount,
		LineCount:       len(lines),
	}
	if err := s.eventPublisher.PublishPOCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish POCreated event", zap.Error(err))
	}

	return &PurchaseOrderResponse{Order: po, Items: lines}, nil
}

// validateLines checks that every line references a distinct, existing,
// active item with a positive quantity and a non-negative cost.
func (s *PurchaseOrderService) validateLines(ctx context.Context, reqLines []PurchaseOrderLineRequest) ([]models.PurchaseOrderItem, error) {
	seen := make(map[int64]bool, len(reqLines))
	ids := make([]int64, 0, len(reqLines))
	for _, line := range reqLines {
		if line.QuantityOrdered <= 0 {
			return nil, apperrors.Validation("quantity_ordered must be positive for item %d", line.ItemID)
		}
		if line.UnitCost.IsNegative() {
			return nil, apperrors.Validation("unit_cost must not be negative for item %d", line.ItemID)
		}
		if seen[line.ItemID] {
			return nil, apperrors.Validation("item %d appears on more than one line", line.ItemID)
		}
		seen[line.ItemID] = true
		ids = append(ids, line.ItemID)
	}

	items, err := s.store.GetItemsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	itemByID := make(map[int64]*models.InventoryItem, len(items))
	for i := range items {
		itemByID[items[i].ID] = &items[i]
	}

	lines := make([]models.PurchaseOrderItem, 0, len(reqLines))
	for _, line := range reqLines {
		item, ok := itemByID[line.ItemID]
		if !ok {
			return nil, apperrors.Validation("unknown item: %d", line.ItemID)
		}
		if !item.IsActive {
			return nil, apperrors.Validation("item %s is retired", item.SKU)
		}
		lines = append(lines, models.PurchaseOrderItem{
			ItemID:          line.ItemID,
			QuantityOrdered: line.QuantityOrdered,
			UnitCost:        line.UnitCost,
		})
	}
	return lines, nil
}

// GetPurchaseOrder retrieves an order with its lines.
func (s *PurchaseOrderService) GetPurchaseOrder(ctx context.Context, id int64) (*PurchaseOrderResponse, error) {
	po, items, err := s.store.GetPurchaseOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	return &PurchaseOrderResponse{Order: po, Items: items}, nil
}

// ListPurchaseOrders retrieves order headers filtered by status and vendor.
func (s *PurchaseOrderService) ListPurchaseOrders(ctx context.Context, statusFilter string, vendorID int64) ([]models.PurchaseOrder, error) {
	var status models.POStatus
	if statusFilter != "" {
		parsed, err := models.ParsePOStatus(statusFilter)
		if err != nil {
			return nil, apperrors.Validation("%v", err)
		}
		status = parsed
	}
	return s.store.ListPurchaseOrders(ctx, status, vendorID)
}

// Transition applies an explicit single-step status change. The received
// state is never settable here; it only arises from a completed receipt.
func (s *PurchaseOrderService) Transition(ctx context.Context, id int64, targetRaw string) (*models.PurchaseOrder, error) {
	ctx, span := util.StartSpan(ctx, "PurchaseOrderService.Transition")
	defer span.End()

	target, err := models.ParsePOStatus(targetRaw)
	if err != nil {
		return nil, apperrors.Validation("%v", err)
	}
	if target == models.POStatusReceived {
		return nil, apperrors.Validation("status %q is set by receiving items, not by direct transition", target)
	}
	if target == models.POStatusDraft {
		return nil, apperrors.Validation("cannot transition back to %q", target)
	}

	po, from, err := s.store.TransitionPurchaseOrder(ctx, id, target)
	if err != nil {
		return nil, err
	}

	if target == models.POStatusCancelled {
		util.PurchaseOrdersCancelledTotal.Inc()
	}
	s.logger.Info("Purchase order transitioned",
		zap.Int64("po_id", po.ID),
		zap.String("from", string(from)),
		zap.String("to", string(target)))

	event := &models.POStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypePOStatusChanged,
			Timestamp: time.Now(),
		},
		PurchaseOrderID: po.ID,
		PONumber:        po.PONumber,
		FromStatus:      from,
		ToStatus:        target,
	}
	if err := s.eventPublisher.PublishPOStatusChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish POStatusChanged event", zap.Error(err))
	}

	return po, nil
}

// ReceiveItemsRequest represents an incoming delivery.
type ReceiveItemsRequest struct {
	Receipts   []models.ReceiptLine `json:"receipts" binding:"required,min=1"`
	ReceivedBy string               `json:"received_by,omitempty"`
}

// ReceiveItems records a delivery against a sent or acknowledged order. The
// whole call is one failure unit: every line's quantity bump and its receipt
// movement commit together or not at all. An advisory lock serializes
// concurrent receivers of the same order across instances, on top of the
// database row lock.
func (s *PurchaseOrderService) ReceiveItems(ctx context.Context, poID int64, req *ReceiveItemsRequest) (*store.ReceiveResult, error) {
	ctx, span := util.StartSpan(ctx, "PurchaseOrderService.ReceiveItems")
	defer span.End()

	start := time.Now()
	defer func() {
		util.ReceiveItemsLatency.Observe(time.Since(start).Seconds())
	}()

	lockKey := fmt.Sprintf("po:%d:receive", poID)
	acquired, err := s.redis.AcquireLock(ctx, lockKey, s.receiveLockTTL)
	if err != nil {
		s.logger.Warn("Receive lock unavailable, relying on row lock", zap.Error(err))
	} else if !acquired {
		return nil, apperrors.Persistence("purchase order receipt already in progress", nil)
	} else {
		defer func() {
			if err := s.redis.ReleaseLock(context.Background(), lockKey); err != nil {
				s.logger.Warn("Failed to release receive lock", zap.Error(err))
			}
		}()
	}

	result, err := s.store.ReceiveItems(ctx, poID, req.Receipts, req.ReceivedBy)
	if err != nil {
		util.PurchaseOrdersFailedTotal.WithLabelValues("receive_failed").Inc()
		return nil, err
	}

	for i := range result.Movements {
		s.afterReceiptMovement(ctx, &result.Movements[i], &result.Snapshots[i])
	}

	if result.Completed {
		util.PurchaseOrdersReceivedTotal.Inc()
		s.logger.Info("Purchase order fully received",
			zap.Int64("po_id", result.Order.ID),
			zap.String("po_number", result.Order.PONumber))

		event := &models.POReceivedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypePOReceived,
				Timestamp: time.Now(),
			},
			PurchaseOrderID: result.Order.ID,
			PONumber:        result.Order.PONumber,
			LocationID:      result.Order.LocationID,
		}
		if result.Order.ActualDeliveryDate != nil {
			event.ActualDeliveryDate = *result.Order.ActualDeliveryDate
		}
		if err := s.eventPublisher.PublishPOReceived(ctx, event); err != nil {
			s.logger.Error("Failed to publish POReceived event", zap.Error(err))
		}
	}

	return result, nil
}

// afterReceiptMovement mirrors the ledger side effects of a receipt: cache
// invalidation and the MovementRecorded event.
func (s *PurchaseOrderService) afterReceiptMovement(ctx context.Context, movement *models.StockMovement, snapshot *models.StockSnapshot) {
	if err := s.redis.InvalidateStockViews(ctx, movement.ItemID, movement.LocationID); err != nil {
		s.logger.Warn("Failed to invalidate stock views",
			zap.Int64("item_id", movement.ItemID),
			zap.Error(err))
	}

	util.MovementsRecordedTotal.WithLabelValues(string(models.MovementReceipt)).Inc()

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
