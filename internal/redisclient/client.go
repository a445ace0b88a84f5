package redisclient

import (
	"context"
	_ "embed"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

//go:embed scripts/confirm_scan.lua
var confirmScanScript string

type Client struct {
	rdb           *redis.Client
	confirmScript *redis.Script
}

// NewClient creates a new Redis client with Lua scripts loaded
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

	return &Client{
		rdb:           rdb,
		confirmScript: redis.NewScript(confirmScanScript),
	}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

func pickKey(packageID string) string {
	return fmt.Sprintf("pick:%s", packageID)
}

// ConfirmScan atomically adds a product to a package's confirmed-pick set
// using a Lua script. Returns the new set size. Re-confirming an already
// present product is a no-op; set semantics hold.
func (c *Client) ConfirmScan(ctx context.Context, packageID, productID string) (int, error) {
	result, err := c.confirmScript.Run(ctx, c.rdb, []string{pickKey(packageID)}, productID).Result()
	if err != nil {
		return 0, fmt.Errorf("confirm scan script failed: %w", err)
	}

	values, ok := result.([]interface{})
	if !ok || len(values) != 2 {
		return 0, fmt.Errorf("unexpected script result type")
	}

	size, ok := values[1].(int64)
	if !ok {
		return 0, fmt.Errorf("unexpected script result type")
	}

	return int(size), nil
}

// GetConfirmed retrieves the confirmed-pick set for a package
func (c *Client) GetConfirmed(ctx context.Context, packageID string) ([]string, error) {
	return c.rdb.SMembers(ctx, pickKey(packageID)).Result()
}

// ClearConfirmed discards the confirmed-pick set for a package
func (c *Client) ClearConfirmed(ctx context.Context, packageID string) error {
	return c.rdb.Del(ctx, pickKey(packageID)).Err()
}

func productKey(productID string) string {
	return fmt.Sprintf("product:%s", productID)
}

// CacheProduct stores a product's name and on-hand quantity with a TTL
func (c *Client) CacheProduct(ctx context.Context, productID, name string, quantity int, ttl time.Duration) error {
	key := productKey(productID)

	pipe := c.rdb.Pipeline()
	pipe.HSet(ctx, key, "name", name)
	pipe.HSet(ctx, key, "quantity", quantity)
	pipe.Expire(ctx, key, ttl)

	_, err := pipe.Exec(ctx)
	return err
}

// GetCachedProduct retrieves a cached product name and quantity. The bool
// result reports a cache hit.
func (c *Client) GetCachedProduct(ctx context.Context, productID string) (string, int, bool, error) {
	result, err := c.rdb.HGetAll(ctx, productKey(productID)).Result()
	if err != nil {
		return "", 0, false, err
	}
	if len(result) == 0 {
		return "", 0, false, nil
	}

	quantity, _ := strconv.Atoi(result["quantity"])
	return result["name"], quantity, true, nil
}

// InvalidateProduct drops a product's cache entry
func (c *Client) InvalidateProduct(ctx context.Context, productID string) error {
	return c.rdb.Del(ctx, productKey(productID)).Err()
}

func sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}

// SetSession stores a serialized login session under a bearer token with TTL
func (c *Client) SetSession(ctx context.Context, token string, payload []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, sessionKey(token), payload, ttl).Err()
}

// GetSession retrieves a serialized login session; nil when absent or expired
func (c *Client) GetSession(ctx context.Context, token string) ([]byte, error) {
	payload, err := c.rdb.Get(ctx, sessionKey(token)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// DeleteSession revokes a bearer token
func (c *Client) DeleteSession(ctx context.Context, token string) error {
	return c.rdb.Del(ctx, sessionKey(token)).Err()
}
