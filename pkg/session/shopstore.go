package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// KV is the slice of the Redis client the store needs.
type KV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// ShopStore binds POS terminals to the shop whose kitchen they feed.
type ShopStore struct {
	client KV
}

func NewShopStore(client KV) *ShopStore {
	return &ShopStore{client: client}
}

func NewRedisShopStore(addr string) (*ShopStore, *redis.Client) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	return NewShopStore(client), client
}

func shopKey(terminalID string) string {
	return fmt.Sprintf("kitchenscreen:terminal:%s:shop", terminalID)
}

// SaveShop records the shop for a terminal. The binding does not expire.
func (s *ShopStore) SaveShop(ctx context.Context, terminalID string, shopID int64) error {
	if terminalID == "" {
		return fmt.Errorf("terminal id is required")
	}
	return s.client.Set(ctx, shopKey(terminalID), shopID, 0).Err()
}

// FindShop returns the shop bound to a terminal, or 0 when none is recorded.
func (s *ShopStore) FindShop(ctx context.Context, terminalID string) (int64, error) {
	if terminalID == "" {
		return 0, nil
	}
	raw, err := s.client.Get(ctx, shopKey(terminalID)).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid shop id %q for terminal %s: %w", raw, terminalID, err)
	}
	return id, nil
}

// ResolveShopID prefers the configured shop, recording it for the terminal,
// and falls back to the terminal binding. Zero means the dashboard has no shop
// and will show nothing.
func ResolveShopID(ctx context.Context, configured string, terminalID string, store *ShopStore) (int64, error) {
	if configured != "" {
		id, err := strconv.ParseInt(configured, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid shop id %q: %w", configured, err)
		}
		if store != nil && terminalID != "" {
			if err := store.SaveShop(ctx, terminalID, id); err != nil {
				return id, fmt.Errorf("cannot record shop for terminal %s: %w", terminalID, err)
			}
		}
		return id, nil
	}
	if store == nil {
		return 0, nil
	}
	return store.FindShop(ctx, terminalID)
}
