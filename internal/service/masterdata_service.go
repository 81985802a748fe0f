package service

import (
	"context"

	"inventory-service/internal/apperrors"
	"inventory-service/internal/models"
	"inventory-service/internal/store"
	"inventory-service/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MasterDataService manages the vendor registry and item catalog. Both follow
// a deactivate-don't-delete lifecycle so recorded movements and past orders
// keep resolving.
type MasterDataService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewMasterDataService creates a new master data service
func NewMasterDataService(store *store.Store) *MasterDataService {
	return &MasterDataService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// CreateVendorRequest represents a request to register a vendor.
type CreateVendorRequest struct {
	Name          string `json:"name" binding:"required"`
	ContactPerson string `json:"contact_person,omitempty"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Address       string `json:"address,omitempty"`
	PaymentTerms  int    `json:"payment_terms"`
	TaxID         string `json:"tax_id,omitempty"`
}

// CreateVendor registers a new active vendor. Names are unique.
func (s *MasterDataService) CreateVendor(ctx context.Context, req *CreateVendorRequest) (*models.Vendor, error) {
	ctx, span := util.StartSpan(ctx, "MasterDataService.CreateVendor")
	defer span.End()

	if req.PaymentTerms < 0 {
		return nil, apperrors.Validation("payment_terms must not be negative")
	}

	vendor := &models.Vendor{
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
		PaymentTerms:  req.PaymentTerms,
		TaxID:         req.TaxID,
	}
	if err := s.store.CreateVendor(ctx, vendor); err != nil {
		return nil, err
	}

	s.logger.Info("Vendor created", zap.Int64("vendor_id", vendor.ID), zap.String("name", vendor.Name))
	return vendor, nil
}

// GetVendor resolves a vendor regardless of lifecycle state.
func (s *MasterDataService) GetVendor(ctx context.Context, id int64) (*models.Vendor, error) {
	return s.store.GetVendorByID(ctx, id)
}

// ListVendors lists vendors, active only by default.
func (s *MasterDataService) ListVendors(ctx context.Context, includeInactive bool) ([]models.Vendor, error) {
	return s.store.ListVendors(ctx, includeInactive)
}

// SetVendorActive transitions a vendor between its two lifecycle states.
func (s *MasterDataService) SetVendorActive(ctx context.Context, id int64, active bool) (*models.Vendor, error) {
	vendor, err := s.store.SetVendorActive(ctx, id, active)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Vendor lifecycle changed",
		zap.Int64("vendor_id", id),
		zap.Bool("is_active", active))
	return vendor, nil
}

// CreateItemRequest represents a request to add a catalog item.
type CreateItemRequest struct {
	SKU               string          `json:"sku" binding:"required"`
	Name              string          `json:"name" binding:"required"`
	Category          string          `json:"category,omitempty"`
	UnitOfMeasure     string          `json:"unit_of_measure" binding:"required"`
	Barcode           string          `json:"barcode,omitempty"`
	MinStockLevel     int             `json:"min_stock_level"`
	ReorderPoint      int             `json:"reorder_point"`
	MaxStockLevel     *int            `json:"max_stock_level,omitempty"`
	StandardCost      decimal.Decimal `json:"standard_cost"`
	PreferredVendorID *int64          `json:"preferred_vendor_id,omitempty"`
	IsConsumable      bool            `json:"is_consumable"`
}

// validateStockLevels enforces min <= reorder <= max (when max is set).
func validateStockLevels(min, reorder int, max *int) error {
	if min < 0 || reorder < 0 {
		return apperrors.Validation("stock levels must not be negative")
	}
	if min > reorder {
		return apperrors.Validation("min_stock_level (%d) must not exceed reorder_point (%d)", min, reorder)
	}
	if max != nil && reorder > *max {
		return apperrors.Validation("reorder_point (%d) must not exceed max_stock_level (%d)", reorder, *max)
	}
	return nil
}

// CreateItem adds a new active catalog item. SKUs are unique and
// human-assigned. The preferred vendor is a weak reference and may point at a
// retired vendor.
func (s *MasterDataService) CreateItem(ctx context.Context, req *CreateItemRequest) (*models.InventoryItem, error) {
	ctx, span := util.StartSpan(ctx, "MasterDataService.CreateItem")
	defer span.End()

	if err := validateStockLevels(req.MinStockLevel, req.ReorderPoint, req.MaxStockLevel); err != nil {
		return nil, err
	}
	if req.StandardCost.IsNegative() {
		return nil, apperrors.Validation("standard_cost must not be negative")
	}

	if req.PreferredVendorID != nil {
		if _, err := s.store.GetVendorByID(ctx, *req.PreferredVendorID); err != nil {
			if apperrors.IsCode(err, apperrors.CodeNotFound) {
				return nil, apperrors.Validation("unknown preferred vendor: %d", *req.PreferredVendorID)
			}
			return nil, err
		}
	}

	item := &models.InventoryItem{
		SKU:               req.SKU,
		Name:              req.Name,
		Category:          req.Category,
		UnitOfMeasure:     req.UnitOfMeasure,
		Barcode:           req.Barcode,
		MinStockLevel:     req.MinStockLevel,
		ReorderPoint:      req.ReorderPoint,
		MaxStockLevel:     req.MaxStockLevel,
		StandardCost:      req.StandardCost,
		PreferredVendorID: req.PreferredVendorID,
		IsConsumable:      req.IsConsumable,
	}
	if err := s.store.CreateItem(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info("Item created", zap.Int64("item_id", item.ID), zap.String("sku", item.SKU))
	return item, nil
}

// GetItem resolves an item regardless of lifecycle state.
func (s *MasterDataService) GetItem(ctx context.Context, id int64) (*models.InventoryItem, error) {
	return s.store.GetItemByID(ctx, id)
}

// ListItems lists catalog items, active only by default.
func (s *MasterDataService) ListItems(ctx context.Context, includeInactive bool) ([]models.InventoryItem, error) {
	return s.store.ListItems(ctx, includeInactive)
}

// SetItemActive transitions an item between its two lifecycle states.
func (s *MasterDataService) SetItemActive(ctx context.Context, id int64, active bool) (*models.InventoryItem, error) {
	item, err := s.store.SetItemActive(ctx, id, active)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Item lifecycle changed",
		zap.Int64("item_id", id),
		zap.Bool("is_active", active))
	return item, nil
}

// ListLocations lists the externally provisioned locations.
func (s *MasterDataService) ListLocations(ctx context.Context) ([]models.Location, error) {
	return s.store.ListLocations(ctx)
}
