package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"handcraft_market/internal/models"

	"github.com/go-redis/redis/v8"
)

// Client caches committed read projections. Entries hold only what has been
// written to the database; services refresh or invalidate them on every
// mutation, so a cache hit never leaks in-flight state.
type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

func Initialize(redisURL string, ttl time.Duration) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb, ttl: ttl}, nil
}

// Wallet summary projection

func (c *Client) SetWalletSummary(summary *models.WalletSummary) error {
	ctx := context.Background()
	jsonData, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal wallet summary: %w", err)
	}

	key := fmt.Sprintf("wallet_summary:%d", summary.ArtistID)
	return c.rdb.Set(ctx, key, jsonData, c.ttl).Err()
}

func (c *Client) GetWalletSummary(artistID uint) (*models.WalletSummary, error) {
	ctx := context.Background()
	key := fmt.Sprintf("wallet_summary:%d", artistID)
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("wallet summary not cached")
		}
		return nil, fmt.Errorf("failed to get wallet summary: %w", err)
	}

	var summary models.WalletSummary
	if err := json.Unmarshal([]byte(val), &summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal wallet summary: %w", err)
	}

	return &summary, nil
}

func (c *Client) InvalidateWalletSummary(artistID uint) error {
	ctx := context.Background()
	return c.rdb.Del(ctx, fmt.Sprintf("wallet_summary:%d", artistID)).Err()
}

// Order status projection

func (c *Client) SetOrderStatus(orderID uint, status models.OrderStatus) error {
	ctx := context.Background()
	key := fmt.Sprintf("order_status:%d", orderID)
	return c.rdb.Set(ctx, key, string(status), c.ttl).Err()
}

func (c *Client) GetOrderStatus(orderID uint) (models.OrderStatus, error) {
	ctx := context.Background()
	key := fmt.Sprintf("order_status:%d", orderID)
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", fmt.Errorf("order status not cached")
		}
		return "", fmt.Errorf("failed to get order status: %w", err)
	}

	status, ok := models.ParseOrderStatus(val)
	if !ok {
		return "", fmt.Errorf("invalid cached order status %q", val)
	}
	return status, nil
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
