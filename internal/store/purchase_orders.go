package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"inventory-service/internal/apperrors"
	"inventory-service/internal/models"
)

// nextPONumber bumps the per-location sequence and formats the human-readable
// PO number. The upsert-returning form is atomic with respect to concurrent
// creators at the same location, so two creates can never draw the same value.
func nextPONumber(ctx context.Context, tx sqlxExt, locationID int64, locationCode string) (string, error) {
	var seq int64
	err := tx.GetContext(ctx, &seq, `
		INSERT INTO po_sequences (location_id, next_value)
		VALUES ($1, 1)
		ON CONFLICT (location_id) DO UPDATE SET next_value = po_sequences.next_value + 1
		RETURNING next_value`,
		locationID)
	if err != nil {
		return "", apperrors.Persistence("failed to advance po sequence", err)
	}
	return fmt.Sprintf("%s-%06d", locationCode, seq), nil
}

// sqlxExt is the subset of sqlx.Tx used by query helpers.
type sqlxExt interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// CreatePurchaseOrder persists the header and its lines as one transaction,
// drawing the PO number from the location-scoped sequence inside the same
// transaction. A header without lines is never observable.
func (s *Store) CreatePurchaseOrder(ctx context.Context, po *models.PurchaseOrder, items []models.PurchaseOrderItem, locationCode string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.Persistence("failed to begin transaction", err)
	}
	defer tx.Rollback()

	po.PONumber, err = nextPONumber(ctx, tx, po.LocationID, locationCode)
	if err != nil {
		return err
	}

	headerQuery := `
		INSERT INTO purchase_orders
			(po_number, vendor_id, location_id, status, order_date,
			 expected_delivery_date, subtotal, tax_amount, shipping_cost,
			 total_amount, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at`

	err = tx.GetContext(ctx, po, headerQuery,
		po.PONumber, po.VendorID, po.LocationID, po.Status, po.OrderDate,
		po.ExpectedDeliveryDate, po.Subtotal, po.TaxAmount, po.ShippingCost,
		po.TotalAmount, po.Notes, po.CreatedBy)
	if err != nil {
		return apperrors.FromPostgres("failed to insert purchase order", err)
	}

	lineQuery := `
		INSERT INTO purchase_order_items
			(purchase_order_id, item_id, quantity_ordered, quantity_received, unit_cost, line_total)
		VALUES ($1, $2, $3, 0, $4, $5)
		RETURNING id`

	for i := range items {
		items[i].PurchaseOrderID = po.ID
		err = tx.GetContext(ctx, &items[i].ID, lineQuery,
			po.ID, items[i].ItemID, items[i].QuantityOrdered,
			items[i].UnitCost, items[i].LineTotal)
		if err != nil {
			return apperrors.FromPostgres("failed to insert purchase order line", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Persistence("failed to commit purchase order", err)
	}
	return nil
}

// GetPurchaseOrder retrieves the header and its lines.
func (s *Store) GetPurchaseOrder(ctx context.Context, id int64) (*models.PurchaseOrder, []models.PurchaseOrderItem, error) {
	var po models.PurchaseOrder
	err := s.db.GetContext(ctx, &po, "SELECT * FROM purchase_orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil, apperrors.NotFound("purchase order not found: %d", id)
	}
	if err != nil {
		return nil, nil, apperrors.Persistence("failed to get purchase order", err)
	}

	items, err := s.getPurchaseOrderItems(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return &po, items, nil
}

func (s *Store) getPurchaseOrderItems(ctx context.Context, poID int64) ([]models.PurchaseOrderItem, error) {
	var items []models.PurchaseOrderItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM purchase_order_items WHERE purchase_order_id = $1 ORDER BY id", poID)
	if err != nil {
		return nil, apperrors.Persistence("failed to get purchase order lines", err)
	}
	return items, nil
}

// ListPurchaseOrders retrieves headers, optionally filtered by status and
// vendor, newest first.
func (s *Store) ListPurchaseOrders(ctx context.Context, status models.POStatus, vendorID int64) ([]models.PurchaseOrder, error) {
	query := "SELECT * FROM purchase_orders WHERE 1=1"
	args := []interface{}{}
	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if vendorID > 0 {
		args = append(args, vendorID)
		query += fmt.Sprintf(" AND vendor_id = $%d", len(args))
	}
	query += " ORDER BY order_date DESC, id DESC"

	var orders []models.PurchaseOrder
	if err := s.db.SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, apperrors.Persistence("failed to list purchase orders", err)
	}
	return orders, nil
}

// TransitionPurchaseOrder applies a single-step status transition under a row
// lock so concurrent transitions against the same order serialize. Terminal
// states and forward skips are rejected.
func (s *Store) TransitionPurchaseOrder(ctx context.Context, id int64, target models.POStatus) (*models.PurchaseOrder, models.POStatus, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, "", apperrors.Persistence("failed to begin transaction", err)
	}
	defer tx.Rollback()

	var po models.PurchaseOrder
	err = tx.GetContext(ctx, &po, "SELECT * FROM purchase_orders WHERE id = $1 FOR UPDATE", id)
	if err == sql.ErrNoRows {
		return nil, "", apperrors.NotFound("purchase order not found: %d", id)
	}
	if err != nil {
		return nil, "", apperrors.Persistence("failed to lock purchase order", err)
	}

	from := po.Status
	if !from.CanTransitionTo(target) {
		return nil, "", apperrors.InvalidTransition(string(from), string(target))
	}

	err = tx.GetContext(ctx, &po,
		"UPDATE purchase_orders SET status = $1, updated_at = NOW() WHERE id = $2 RETURNING *",
		target, id)
	if err != nil {
		return nil, "", apperrors.Persistence("failed to update purchase order status", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, "", apperrors.Persistence("failed to commit status transition", err)
	}
	return &po, from, nil
}

// ReceiveResult is the outcome of a committed receipt.
type ReceiveResult struct {
	Order     *models.PurchaseOrder
	Lines     []models.PurchaseOrderItem
	Movements []models.StockMovement
	Snapshots []models.StockSnapshot
	Completed bool
}

// ReceiveItems records a delivery against a purchase order as one failure
// unit: the order row is locked, every receipt line is validated (over-receipt
// rejects the whole call), line counters are bumped, and a receipt movement is
// folded into the stock ledger per line. When every line reaches its ordered
// quantity the order flips to received and the actual delivery date is set.
func (s *Store) ReceiveItems(ctx context.Context, poID int64, receipts []models.ReceiptLine, actor string) (*ReceiveResult, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, apperrors.Persistence("failed to begin transaction", err)
	}
	defer tx.Rollback()

	var po models.PurchaseOrder
	err = tx.GetContext(ctx, &po, "SELECT * FROM purchase_orders WHERE id = $1 FOR UPDATE", poID)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("purchase order not found: %d", poID)
	}
	if err != nil {
		return nil, apperrors.Persistence("failed to lock purchase order", err)
	}

	if !po.Status.CanReceive() {
		return nil, apperrors.InvalidTransition(string(po.Status), string(models.POStatusReceived))
	}

	var lines []models.PurchaseOrderItem
	err = tx.SelectContext(ctx, &lines,
		"SELECT * FROM purchase_order_items WHERE purchase_order_id = $1 ORDER BY id", poID)
	if err != nil {
		return nil, apperrors.Persistence("failed to get purchase order lines", err)
	}

	lineByItem := make(map[int64]*models.PurchaseOrderItem, len(lines))
	for i := range lines {
		lineByItem[lines[i].ItemID] = &lines[i]
	}

	result := &ReceiveResult{Order: &po}
	for _, r := range receipts {
		line, ok := lineByItem[r.ItemID]
		if !ok {
			return nil, apperrors.Validation("item %d is not on purchase order %s", r.ItemID, po.PONumber)
		}
		if r.QuantityReceived <= 0 {
			return nil, apperrors.Validation("quantity_received must be positive for item %d", r.ItemID)
		}

		cumulative := line.QuantityReceived + r.QuantityReceived
		if cumulative > line.QuantityOrdered {
			return nil, apperrors.Validation(
				"over-receipt for item %d on %s: ordered=%d, already_received=%d, attempted=%d",
				r.ItemID, po.PONumber, line.QuantityOrdered, line.QuantityReceived, r.QuantityReceived)
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE purchase_order_items SET quantity_received = $1 WHERE id = $2",
			cumulative, line.ID)
		if err != nil {
			return nil, apperrors.Persistence("failed to update received quantity", err)
		}
		line.QuantityReceived = cumulative

		unitCost := line.UnitCost
		movement := &models.StockMovement{
			ItemID:         r.ItemID,
			LocationID:     po.LocationID,
			MovementType:   models.MovementReceipt,
			QuantityChange: r.QuantityReceived,
			UnitCost:       &unitCost,
			ReferenceType:  "purchase_order",
			ReferenceID:    &po.ID,
			RecordedBy:     actor,
		}
		snap, err := s.applyMovementTx(ctx, tx, movement)
		if err != nil {
			return nil, err
		}
		result.Movements = append(result.Movements, *movement)
		result.Snapshots = append(result.Snapshots, *snap)
	}

	complete := true
	for i := range lines {
		if lines[i].QuantityReceived < lines[i].QuantityOrdered {
			complete = false
			break
		}
	}

	if complete {
		now := time.Now()
		err = tx.GetContext(ctx, &po, `
			UPDATE purchase_orders
			SET status = $1, actual_delivery_date = $2, updated_at = NOW()
			WHERE id = $3
			RETURNING *`,
			models.POStatusReceived, now, poID)
		if err != nil {
			return nil, apperrors.Persistence("failed to mark purchase order received", err)
		}
		result.Completed = true
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.Persistence("failed to commit receipt", err)
	}

	result.Order = &po
	result.Lines = lines
	return result, nil
}
