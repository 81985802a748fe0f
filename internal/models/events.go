package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeMovementRecorded = "MOVEMENT_RECORDED"
	EventTypePOCreated        = "PO_CREATED"
	EventTypePOStatusChanged  = "PO_STATUS_CHANGED"
	EventTypePOReceived       = "PO_RECEIVED"
	EventTypeLowStockDetected = "LOW_STOCK_DETECTED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// MovementRecordedEvent published after a ledger append commits. Carries the
// resulting snapshot so consumers can evaluate thresholds without a read.
type MovementRecordedEvent struct {
	BaseEvent
	MovementID        int64        `json:"movement_id"`
	ItemID            int64        `json:"item_id"`
	LocationID        int64        `json:"location_id"`
	MovementType      MovementType `json:"movement_type"`
	QuantityChange    int          `json:"quantity_change"`
	QuantityOnHand    int          `json:"quantity_on_hand"`
	QuantityAvailable int          `json:"quantity_available"`
	RecordedBy        string       `json:"recorded_by"`
}

// POCreatedEvent published when a purchase order is created
type POCreatedEvent struct {
	BaseEvent
	PurchaseOrderID int64           `json:"purchase_order_id"`
	PONumber        string          `json:"po_number"`
	VendorID        int64           `json:"vendor_id"`
	LocationID      int64           `json:"location_id"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	LineCount       int             `json:"line_count"`
}

// POStatusChangedEvent published on every explicit status transition
type POStatusChangedEvent struct {
	BaseEvent
	PurchaseOrderID int64    `json:"purchase_order_id"`
	PONumber        string   `json:"po_number"`
	FromStatus      POStatus `json:"from_status"`
	ToStatus        POStatus `json:"to_status"`
}

// POReceivedEvent published when all lines reach their ordered quantity
type POReceivedEvent struct {
	BaseEvent
	PurchaseOrderID    int64     `json:"purchase_order_id"`
	PONumber           string    `json:"po_number"`
	LocationID         int64     `json:"location_id"`
	ActualDeliveryDate time.Time `json:"actual_delivery_date"`
}

// LowStockDetectedEvent published by the monitor when available quantity
// drops to or below the item's reorder point.
type LowStockDetectedEvent struct {
	BaseEvent
	ItemID            int64  `json:"item_id"`
	SKU               string `json:"sku"`
	LocationID        int64  `json:"location_id"`
	QuantityAvailable int    `json:"quantity_available"`
	ReorderPoint      int    `json:"reorder_point"`
}
