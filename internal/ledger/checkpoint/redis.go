// Package checkpoint caches running account balances in Redis.
package checkpoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tillbook/internal/ledger"
)

const keyPrefix = "tillbook:balance"

type Cache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// New returns a cache whose entries expire after ttl. Zero keeps them forever.
func New(client redis.Cmdable, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Key is tillbook:balance:<restaurant>:<account>, with "house" for the cash drawer.
func Key(restaurantID uuid.UUID, accountID *uuid.UUID) string {
	account := "house"
	if accountID != nil {
		account = accountID.String()
	}

	return fmt.Sprintf("%s:%s:%s", keyPrefix, restaurantID, account)
}

func (c *Cache) Get(ctx context.Context, restaurantID uuid.UUID, accountID *uuid.UUID) (*ledger.Checkpoint, error) {
	raw, err := c.client.Get(ctx, Key(restaurantID, accountID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}

		return nil, fmt.Errorf("reading checkpoint: %w", err)
	}

	var cp ledger.Checkpoint
	if err := json.Unmarshal([]byte(raw), &cp); err != nil {
		return nil, fmt.Errorf("decoding checkpoint: %w", err)
	}

	return &cp, nil
}

func (c *Cache) Put(ctx context.Context, restaurantID uuid.UUID, accountID *uuid.UUID, cp ledger.Checkpoint) error {
	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("encoding checkpoint: %w", err)
	}

	if err := c.client.Set(ctx, Key(restaurantID, accountID), string(data), c.ttl).Err(); err != nil {
		return fmt.Errorf("writing checkpoint: %w", err)
	}

	return nil
}
