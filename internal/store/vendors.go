package store

import (
	"context"
	"database/sql"

	"inventory-service/internal/apperrors"
	"inventory-service/internal/models"
)

// CreateVendor inserts a new vendor. Vendor names are unique.
func (s *Store) CreateVendor(ctx context.Context, vendor *models.Vendor) error {
	query := `
		INSERT INTO vendors (name, contact_person, email, phone, address, payment_terms, tax_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, true)
		RETURNING id, is_active, created_at, updated_at`

	err := s.db.GetContext(ctx, vendor, query,
		vendor.Name, vendor.ContactPerson, vendor.Email, vendor.Phone,
		vendor.Address, vendor.PaymentTerms, vendor.TaxID)
	if err != nil {
		return apperrors.FromPostgres("failed to create vendor", err)
	}
	return nil
}

// GetVendorByID retrieves a vendor regardless of lifecycle state, so
// historical purchase orders still resolve deactivated vendors.
func (s *Store) GetVendorByID(ctx context.Context, id int64) (*models.Vendor, error) {
	var vendor models.Vendor
	err := s.db.GetContext(ctx, &vendor, "SELECT * FROM vendors WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("vendor not found: %d", id)
	}
	if err != nil {
		return nil, apperrors.Persistence("failed to get vendor", err)
	}
	return &vendor, nil
}

// ListVendors retrieves vendors, filtered to active unless includeInactive.
func (s *Store) ListVendors(ctx context.Context, includeInactive bool) ([]models.Vendor, error) {
	query := "SELECT * FROM vendors ORDER BY name"
	if !includeInactive {
		query = "SELECT * FROM vendors WHERE is_active = true ORDER BY name"
	}

	var vendors []models.Vendor
	if err := s.db.SelectContext(ctx, &vendors, query); err != nil {
		return nil, apperrors.Persistence("failed to list vendors", err)
	}
	return vendors, nil
}

// SetVendorActive flips the vendor lifecycle state. Vendors are never
// hard-deleted.
func (s *Store) SetVendorActive(ctx context.Context, id int64, active bool) (*models.Vendor, error) {
	var vendor models.Vendor
	err := s.db.GetContext(ctx, &vendor,
		"UPDATE vendors SET is_active = $1, updated_at = NOW() WHERE id = $2 RETURNING *",
		active, id)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("vendor not found: %d", id)
	}
	if err != nil {
		return nil, apperrors.Persistence("failed to update vendor", err)
	}
	return &vendor, nil
}
