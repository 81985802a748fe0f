package store

import (
	"context"
	"database/sql"
	"strconv"

	"inventory-service/internal/apperrors"
	"inventory-service/internal/models"

	"github.com/jmoiron/sqlx"
)

// applyMovementTx appends a ledger entry and folds it into the snapshot row
// for (item, location) inside an open transaction. The snapshot row is locked
// FOR UPDATE so concurrent movements against the same pair serialize; a
// result that would drive on_hand or available below zero aborts the whole
// transaction. This is the only code path that writes inventory_stock.
func (s *Store) applyMovementTx(ctx context.Context, tx *sqlx.Tx, m *models.StockMovement) (*models.StockSnapshot, error) {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO inventory_stock (item_id, location_id, quantity_on_hand, quantity_reserved, quantity_available)
		VALUES ($1, $2, 0, 0, 0)
		ON CONFLICT (item_id, location_id) DO NOTHING`,
		m.ItemID, m.LocationID)
	if err != nil {
		return nil, apperrors.Persistence("failed to ensure snapshot row", err)
	}

	var snap models.StockSnapshot
	err = tx.GetContext(ctx, &snap, `
		SELECT * FROM inventory_stock
		WHERE item_id = $1 AND location_id = $2
		FOR UPDATE`,
		m.ItemID, m.LocationID)
	if err != nil {
		return nil, apperrors.Persistence("failed to lock snapshot row", err)
	}

	newOnHand := snap.QuantityOnHand + m.QuantityChange
	newAvailable := newOnHand - snap.QuantityReserved
	if newOnHand < 0 || newAvailable < 0 {
		return nil, apperrors.InsufficientStock(m.ItemID, m.LocationID, snap.QuantityOnHand, m.QuantityChange)
	}

	query := `
		INSERT INTO inventory_movements
			(item_id, location_id, movement_type, quantity_change, unit_cost,
			 reference_type, reference_id, reason_code, notes, idempotency_key, recorded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at`

	err = tx.GetContext(ctx, m, query,
		m.ItemID, m.LocationID, m.MovementType, m.QuantityChange, m.UnitCost,
		m.ReferenceType, m.ReferenceID, m.ReasonCode, m.Notes, m.IdempotencyKey, m.RecordedBy)
	if err != nil {
		return nil, apperrors.FromPostgres("failed to append movement", err)
	}

	err = tx.GetContext(ctx, &snap, `
		UPDATE inventory_stock
		SET quantity_on_hand = $1, quantity_available = $2, updated_at = NOW()
		WHERE item_id = $3 AND location_id = $4
		RETURNING *`,
		newOnHand, newAvailable, m.ItemID, m.LocationID)
	if err != nil {
		return nil, apperrors.Persistence("failed to update snapshot", err)
	}

	return &snap, nil
}

// RecordMovement atomically appends a ledger entry and updates the snapshot.
// Either both are committed or neither is.
func (s *Store) RecordMovement(ctx context.Context, m *models.StockMovement) (*models.StockSnapshot, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, apperrors.Persistence("failed to begin transaction", err)
	}
	defer tx.Rollback()

	snap, err := s.applyMovementTx(ctx, tx, m)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.Persistence("failed to commit movement", err)
	}
	return snap, nil
}

// GetMovementByIdempotencyKey retrieves a movement by its idempotency key.
// Returns (nil, nil) when no movement carries the key.
func (s *Store) GetMovementByIdempotencyKey(ctx context.Context, key string) (*models.StockMovement, error) {
	var m models.StockMovement
	err := s.db.GetContext(ctx, &m,
		"SELECT * FROM inventory_movements WHERE idempotency_key = $1", key)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Persistence("failed to get movement", err)
	}
	return &m, nil
}

// GetSnapshot retrieves the current snapshot for an (item, location) pair.
func (s *Store) GetSnapshot(ctx context.Context, itemID, locationID int64) (*models.StockSnapshot, error) {
	var snap models.StockSnapshot
	err := s.db.GetContext(ctx, &snap,
		"SELECT * FROM inventory_stock WHERE item_id = $1 AND location_id = $2",
		itemID, locationID)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("no stock recorded for item %d at location %d", itemID, locationID)
	}
	if err != nil {
		return nil, apperrors.Persistence("failed to get snapshot", err)
	}
	return &snap, nil
}

// ListMovements retrieves ledger history, newest first. Zero-valued filters
// are ignored.
func (s *Store) ListMovements(ctx context.Context, itemID, locationID int64, limit int) ([]models.StockMovement, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := "SELECT * FROM inventory_movements WHERE 1=1"
	args := []interface{}{}
	if itemID > 0 {
		args = append(args, itemID)
		query += " AND item_id = $" + strconv.Itoa(len(args))
	}
	if locationID > 0 {
		args = append(args, locationID)
		query += " AND location_id = $" + strconv.Itoa(len(args))
	}
	args = append(args, limit)
	query += " ORDER BY created_at DESC, id DESC LIMIT $" + strconv.Itoa(len(args))

	var movements []models.StockMovement
	if err := s.db.SelectContext(ctx, &movements, query, args...); err != nil {
		return nil, apperrors.Persistence("failed to list movements", err)
	}
	return movements, nil
}

// GetLowStock returns snapshots at or under the item's reorder point,
// most urgent first. Retired items are excluded.
func (s *Store) GetLowStock(ctx context.Context) ([]models.LowStockEntry, error) {
	query := `
		SELECT st.item_id, i.sku, i.name AS item_name,
		       st.location_id, l.code AS location_code,
		       st.quantity_on_hand, st.quantity_available, i.reorder_point
		FROM inventory_stock st
		JOIN inventory_items i ON i.id = st.item_id
		JOIN locations l ON l.id = st.location_id
		WHERE i.is_active = true
		  AND st.quantity_available <= i.reorder_point
		ORDER BY st.quantity_available ASC`

	var entries []models.LowStockEntry
	if err := s.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, apperrors.Persistence("failed to query low stock", err)
	}
	return entries, nil
}
