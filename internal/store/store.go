package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"inventory-service/internal/apperrors"
	"inventory-service/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// GetLocationByID resolves a location. Locations are provisioned externally;
// this service only reads them.
func (s *Store) GetLocationByID(ctx context.Context, id int64) (*models.Location, error) {
	var loc models.Location
	err := s.db.GetContext(ctx, &loc, "SELECT * FROM locations WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("location not found: %d", id)
	}
	if err != nil {
		return nil, apperrors.Persistence("failed to get location", err)
	}
	return &loc, nil
}

// ListLocations retrieves all active locations
func (s *Store) ListLocations(ctx context.Context) ([]models.Location, error) {
	var locations []models.Location
	err := s.db.SelectContext(ctx, &locations,
		"SELECT * FROM locations WHERE is_active = true ORDER BY code")
	if err != nil {
		return nil, apperrors.Persistence("failed to list locations", err)
	}
	return locations, nil
}

// IsEventProcessed checks if an event has been processed
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM processed_events WHERE event_id = $1)", eventID)
	if err != nil {
		return false, apperrors.Persistence("failed to check processed event", err)
	}
	return exists, nil
}

// MarkEventProcessed marks an event as processed
func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO processed_events (event_id, event_type) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		eventID, eventType)
	if err != nil {
		return apperrors.Persistence("failed to mark event processed", err)
	}
	return nil
}
