package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/propexpo/stall-booking-api/internal/config"
)

// Client wraps redis.Client so the rest of the app does not import go-redis.
type Client struct {
	*redis.Client
}

func NewClient(conf *config.RedisConfig) *Client {
	return &Client{
		Client: redis.NewClient(&redis.Options{
			Addr:     conf.Addr,
			Password: conf.Password,
			DB:       conf.DB,
		}),
	}
}

// CapacityCache stores the remaining capacity of events under
// event:{id}:remaining. Invalidate increments event:{id}:generation, and a
// write is dropped when the generation moved since the caller read it.
// Entries expire after ttl in case an invalidation is lost.
type CapacityCache struct {
	client *Client
	ttl    time.Duration
}

func NewCapacityCache(client *Client, ttl time.Duration) *CapacityCache {
	return &CapacityCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *CapacityCache) GetRemaining(ctx context.Context, eventID uint) (int, bool, error) {
	remaining, err := c.client.Get(ctx, remainingKey(eventID)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}

		return 0, false, fmt.Errorf("c.client.Get -> %w", err)
	}

	return remaining, true, nil
}

// Generation is zero until the event is first invalidated.
func (c *CapacityCache) Generation(ctx context.Context, eventID uint) (int64, error) {
	generation, err := getGeneration(ctx, c.client, eventID)
	if err != nil {
		return 0, fmt.Errorf("getGeneration -> %w", err)
	}

	return generation, nil
}

func (c *CapacityCache) SetRemaining(ctx context.Context, eventID uint, generation int64, remaining int) error {
	key := generationKey(eventID)

	err := c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := getGeneration(ctx, tx, eventID)
		if err != nil {
			return err
		}
		if current != generation {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, remainingKey(eventID), remaining, c.ttl)
			return nil
		})
		return err
	}, key)
	if err != nil {
		// invalidated while we were writing
		if errors.Is(err, redis.TxFailedErr) {
			return nil
		}

		return fmt.Errorf("c.client.Watch -> %w", err)
	}

	return nil
}

func (c *CapacityCache) Invalidate(ctx context.Context, eventID uint) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(eventID))
		pipe.Del(ctx, remainingKey(eventID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("c.client.TxPipelined -> %w", err)
	}

	return nil
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func getGeneration(ctx context.Context, cmd getter, eventID uint) (int64, error) {
	generation, err := cmd.Get(ctx, generationKey(eventID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}

		return 0, err
	}

	return generation, nil
}

func remainingKey(eventID uint) string {
	return fmt.Sprintf("event:%d:remaining", eventID)
}

func generationKey(eventID uint) string {
	return fmt.Sprintf("event:%d:generation", eventID)
}
