package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisSink appends each event to a durable list and announces it on a channel named after its topic.
type RedisSink struct {
	client  redis.Cmdable
	listKey string
}

func NewRedisSink(client redis.Cmdable, listKey string) *RedisSink {
	return &RedisSink{client: client, listKey: listKey}
}

func (s *RedisSink) Deliver(ctx context.Context, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	if err := s.client.RPush(ctx, s.listKey, string(data)).Err(); err != nil {
		return fmt.Errorf("queueing event: %w", err)
	}

	if err := s.client.Publish(ctx, e.Topic, string(data)).Err(); err != nil {
		return fmt.Errorf("publishing event: %w", err)
	}

	return nil
}
