package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"inventory-service/internal/models"

	"github.com/go-redis/redis/v8"
)

const lowStockKey = "stock:low"

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

func snapshotKey(itemID, locationID int64) string {
	return fmt.Sprintf("stock:%d:%d", itemID, locationID)
}

// CacheSnapshot stores the current snapshot for an (item, location) pair.
func (c *Client) CacheSnapshot(ctx context.Context, snap *models.StockSnapshot, ttl time.Duration) error {
	key := snapshotKey(snap.ItemID, snap.LocationID)

	pipe := c.rdb.Pipeline()
	pipe.HSet(ctx, key,
		"on_hand", snap.QuantityOnHand,
		"reserved", snap.QuantityReserved,
		"available", snap.QuantityAvailable,
	)
	pipe.Expire(ctx, key, ttl)

	_, err := pipe.Exec(ctx)
	return err
}

// GetCachedSnapshot retrieves a cached snapshot. Returns (nil, nil) on a miss.
func (c *Client) GetCachedSnapshot(ctx context.Context, itemID, locationID int64) (*models.StockSnapshot, error) {
	result, err := c.rdb.HGetAll(ctx, snapshotKey(itemID, locationID)).Result()
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, nil
	}

	snap := &models.StockSnapshot{ItemID: itemID, LocationID: locationID}
	if _, err := fmt.Sscanf(result["on_hand"], "%d", &snap.QuantityOnHand); err != nil {
		return nil, fmt.Errorf("corrupt cached snapshot for %d:%d", itemID, locationID)
	}
	fmt.Sscanf(result["reserved"], "%d", &snap.QuantityReserved)
	fmt.Sscanf(result["available"], "%d", &snap.QuantityAvailable)
	return snap, nil
}

// InvalidateStockViews drops every cached read view a committed movement can
// affect: the pair's snapshot and the low-stock list.
func (c *Client) InvalidateStockViews(ctx context.Context, itemID, locationID int64) error {
	return c.rdb.Del(ctx, snapshotKey(itemID, locationID), lowStockKey).Err()
}

// CacheLowStock stores the serialized low-stock view.
func (c *Client) CacheLowStock(ctx context.Context, entries []models.LowStockEntry, ttl time.Duration) error {
	payload, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, lowStockKey, payload, ttl).Err()
}

// GetCachedLowStock retrieves the cached low-stock view. Returns (nil, false)
// on a miss.
func (c *Client) GetCachedLowStock(ctx context.Context) ([]models.LowStockEntry, bool, error) {
	payload, err := c.rdb.Get(ctx, lowStockKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var entries []models.LowStockEntry
	if err := json.Unmarshal(payload, &entries); err != nil {
		return nil, false, err
	}
	return entries, true, nil
}

// AcquireLock acquires an advisory lock, used to serialize receipt processing
// per purchase order across instances.
func (c *Client) AcquireLock(ctx context.Context, lockKey string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, fmt.Sprintf("lock:%s", lockKey), "1", ttl).Result()
}

// ReleaseLock releases an advisory lock
func (c *Client) ReleaseLock(ctx context.Context, lockKey string) error {
	return c.rdb.Del(ctx, fmt.Sprintf("lock:%s", lockKey)).Err()
}
