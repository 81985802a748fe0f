package store

import (
	"context"
	"database/sql"

	"inventory-service/internal/apperrors"
	"inventory-service/internal/models"

	"github.com/jmoiron/sqlx"
)

// CreateItem inserts a new catalog item. SKUs are unique.
func (s *Store) CreateItem(ctx context.Context, item *models.InventoryItem) error {
	query := `
		INSERT INTO inventory_items
			(sku, name, category, unit_of_measure, barcode, min_stock_level,
			 reorder_point, max_stock_level, standard_cost, preferred_vendor_id,
			 is_consumable, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, true)
		RETURNING id, is_active, created_at, updated_at`

	err := s.db.GetContext(ctx, item, query,
		item.SKU, item.Name, item.Category, item.UnitOfMeasure, item.Barcode,
		item.MinStockLevel, item.ReorderPoint, item.MaxStockLevel,
		item.StandardCost, item.PreferredVendorID, item.IsConsumable)
	if err != nil {
		return apperrors.FromPostgres("failed to create item", err)
	}
	return nil
}

// GetItemByID retrieves an item regardless of lifecycle state.
func (s *Store) GetItemByID(ctx context.Context, id int64) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := s.db.GetContext(ctx, &item, "SELECT * FROM inventory_items WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("item not found: %d", id)
	}
	if err != nil {
		return nil, apperrors.Persistence("failed to get item", err)
	}
	return &item, nil
}

// GetItemBySKU retrieves an item by its SKU.
func (s *Store) GetItemBySKU(ctx context.Context, sku string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := s.db.GetContext(ctx, &item, "SELECT * FROM inventory_items WHERE sku = $1", sku)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("item not found: %s", sku)
	}
	if err != nil {
		return nil, apperrors.Persistence("failed to get item", err)
	}
	return &item, nil
}

// GetItemsByIDs retrieves multiple items by IDs
func (s *Store) GetItemsByIDs(ctx context.Context, ids []int64) ([]models.InventoryItem, error) {
	if len(ids) == 0 {
		return []models.InventoryItem{}, nil
	}

	query, args, err := sqlx.In("SELECT * FROM inventory_items WHERE id IN (?)", ids)
	if err != nil {
		return nil, apperrors.Persistence("failed to build item query", err)
	}
	query = s.db.Rebind(query)

	var items []models.InventoryItem
	if err := s.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, apperrors.Persistence("failed to get items", err)
	}
	return items, nil
}

// ListItems retrieves catalog items, filtered to active unless includeInactive.
func (s *Store) ListItems(ctx context.Context, includeInactive bool) ([]models.InventoryItem, error) {
	query := "SELECT * FROM inventory_items ORDER BY sku"
	if !includeInactive {
		query = "SELECT * FROM inventory_items WHERE is_active = true ORDER BY sku"
	}

	var items []models.InventoryItem
	if err := s.db.SelectContext(ctx, &items, query); err != nil {
		return nil, apperrors.Persistence("failed to list items", err)
	}
	return items, nil
}

// SetItemActive flips the item lifecycle state. Items are never hard-deleted.
func (s *Store) SetItemActive(ctx context.Context, id int64, active bool) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := s.db.GetContext(ctx, &item,
		"UPDATE inventory_items SET is_active = $1, updated_at = NOW() WHERE id = $2 RETURNING *",
		active, id)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("item not found: %d", id)
	}
	if err != nil {
		return nil, apperrors.Persistence("failed to update item", err)
	}
	return &item, nil
}
