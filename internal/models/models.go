package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Vendor represents a supplier in the registry. Vendors are deactivated,
// never deleted, so old purchase orders keep resolving.
type Vendor struct {
	ID            int64     `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	ContactPerson string    `db:"contact_person" json:"contact_person,omitempty"`
	Email         string    `db:"email" json:"email,omitempty"`
	Phone         string    `db:"phone" json:"phone,omitempty"`
	Address       string    `db:"address" json:"address,omitempty"`
	PaymentTerms  int       `db:"payment_terms" json:"payment_terms"`
	TaxID         string    `db:"tax_id" json:"tax_id,omitempty"`
	IsActive      bool      `db:"is_active" json:"is_active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// InventoryItem represents a stock-keeping unit in the catalog.
type InventoryItem struct {
	ID                int64           `db:"id" json:"id"`
	SKU               string          `db:"sku" json:"sku"`
	Name              string          `db:"name" json:"name"`
	Category          string          `db:"category" json:"category,omitempty"`
	UnitOfMeasure     string          `db:"unit_of_measure" json:"unit_of_measure"`
	Barcode           string          `db:"barcode" json:"barcode,omitempty"`
	MinStockLevel     int             `db:"min_stock_level" json:"min_stock_level"`
	ReorderPoint      int             `db:"reorder_point" json:"reorder_point"`
	MaxStockLevel     *int            `db:"max_stock_level" json:"max_stock_level,omitempty"`
	StandardCost      decimal.Decimal `db:"standard_cost" json:"standard_cost"`
	PreferredVendorID *int64          `db:"preferred_vendor_id" json:"preferred_vendor_id,omitempty"`
	IsConsumable      bool            `db:"is_consumable" json:"is_consumable"`
	IsActive          bool            `db:"is_active" json:"is_active"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`
}

// Location is master data resolved for PO numbering and stock keying.
// Rows are provisioned externally; this service only reads them.
type Location struct {
	ID       int64  `db:"id" json:"id"`
	Code     string `db:"code" json:"code"`
	Name     string `db:"name" json:"name"`
	IsActive bool   `db:"is_active" json:"is_active"`
}

// StockSnapshot is the materialized current state for an (item, location)
// pair. It is only ever written in the same transaction as a ledger append,
// so on_hand always equals the running sum of movement deltas.
type StockSnapshot struct {
	ItemID            int64     `db:"item_id" json:"item_id"`
	LocationID        int64     `db:"location_id" json:"location_id"`
	QuantityOnHand    int       `db:"quantity_on_hand" json:"quantity_on_hand"`
	QuantityReserved  int       `db:"quantity_reserved" json:"quantity_reserved"`
	QuantityAvailable int       `db:"quantity_available" json:"quantity_available"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// LowStockEntry is a snapshot joined with its item's reorder threshold.
type LowStockEntry struct {
	ItemID            int64  `db:"item_id" json:"item_id"`
	SKU               string `db:"sku" json:"sku"`
	ItemName          string `db:"item_name" json:"item_name"`
	LocationID        int64  `db:"location_id" json:"location_id"`
	LocationCode      string `db:"location_code" json:"location_code"`
	QuantityOnHand    int    `db:"quantity_on_hand" json:"quantity_on_hand"`
	QuantityAvailable int    `db:"quantity_available" json:"quantity_available"`
	ReorderPoint      int    `db:"reorder_point" json:"reorder_point"`
}

// StockMovement is one immutable entry in the append-only ledger.
// Corrections are new offsetting entries, never edits.
type StockMovement struct {
	ID             int64            `db:"id" json:"id"`
	ItemID         int64            `db:"item_id" json:"item_id"`
	LocationID     int64            `db:"location_id" json:"location_id"`
	MovementType   MovementType     `db:"movement_type" json:"movement_type"`
	QuantityChange int              `db:"quantity_change" json:"quantity_change"`
	UnitCost       *decimal.Decimal `db:"unit_cost" json:"unit_cost,omitempty"`
	ReferenceType  string           `db:"reference_type" json:"reference_type,omitempty"`
	ReferenceID    *int64           `db:"reference_id" json:"reference_id,omitempty"`
	ReasonCode     string           `db:"reason_code" json:"reason_code,omitempty"`
	Notes          string           `db:"notes" json:"notes,omitempty"`
	IdempotencyKey *string          `db:"idempotency_key" json:"idempotency_key,omitempty"`
	RecordedBy     string           `db:"recorded_by" json:"recorded_by"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
}

// PurchaseOrder is the order header. It exclusively owns its line items.
type PurchaseOrder struct {
	ID                   int64           `db:"id" json:"id"`
	PONumber             string          `db:"po_number" json:"po_number"`
	VendorID             int64           `db:"vendor_id" json:"vendor_id"`
	LocationID           int64           `db:"location_id" json:"location_id"`
	Status               POStatus        `db:"status" json:"status"`
	OrderDate            time.Time       `db:"order_date" json:"order_date"`
	ExpectedDeliveryDate *time.Time      `db:"expected_delivery_date" json:"expected_delivery_date,omitempty"`
	ActualDeliveryDate   *time.Time      `db:"actual_delivery_date" json:"actual_delivery_date,omitempty"`
	Subtotal             decimal.Decimal `db:"subtotal" json:"subtotal"`
	TaxAmount            decimal.Decimal `db:"tax_amount" json:"tax_amount"`
	ShippingCost         decimal.Decimal `db:"shipping_cost" json:"shipping_cost"`
	TotalAmount          decimal.Decimal `db:"total_amount" json:"total_amount"`
	Notes                string          `db:"notes" json:"notes,omitempty"`
	CreatedBy            string          `db:"created_by" json:"created_by"`
	CreatedAt            time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time       `db:"updated_at" json:"updated_at"`
}

// PurchaseOrderItem is one line on a purchase order. QuantityReceived is
// monotone non-decreasing and bounded by QuantityOrdered.
type PurchaseOrderItem struct {
	ID               int64           `db:"id" json:"id"`
	PurchaseOrderID  int64           `db:"purchase_order_id" json:"purchase_order_id"`
	ItemID           int64           `db:"item_id" json:"item_id"`
	QuantityOrdered  int             `db:"quantity_ordered" json:"quantity_ordered"`
	QuantityReceived int             `db:"quantity_received" json:"quantity_received"`
	UnitCost         decimal.Decimal `db:"unit_cost" json:"unit_cost"`
	LineTotal        decimal.Decimal `db:"line_total" json:"line_total"`
}

// ReceiptLine is one line of an incoming delivery against a purchase order.
type ReceiptLine struct {
	ItemID           int64 `json:"item_id"`
	QuantityReceived int   `json:"quantity_received"`
}

// ProcessedEvent tracks consumed event IDs so the low-stock monitor stays
// idempotent under redelivery.
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}
