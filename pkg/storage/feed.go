package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const feedChannelPrefix = "portal:changes:"

// envelope wraps an event with the publishing instance id so a replica can
// skip messages it published itself (those already ran on the local bus).
type envelope struct {
	Origin string `json:"origin"`
	Event  Event  `json:"event"`
}

// RedisFeed fans change events out across portal replicas via Redis pub/sub.
// Local mutations are published to a per-table channel; a background loop
// republishes remote events onto the local bus so panel subscriptions fire
// regardless of which instance performed the write.
type RedisFeed struct {
	client   *redis.Client
	bus      *Bus
	instance string
}

// NewRedisFeed connects to Redis and verifies the connection
func NewRedisFeed(url, password string, db int, bus *Bus) (*RedisFeed, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	if password != "" {
		opts.Password = password
	}
	if db >= 0 {
		opts.DB = db
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisFeed{client: client, bus: bus, instance: uuid.NewString()}, nil
}

// NewRedisFeedFromClient wraps an existing client (used by tests)
func NewRedisFeedFromClient(client *redis.Client, bus *Bus) *RedisFeed {
	return &RedisFeed{client: client, bus: bus, instance: uuid.NewString()}
}

// Client exposes the underlying Redis client for health checks
func (f *RedisFeed) Client() *redis.Client { return f.client }

// Publish sends a change event to the table's channel
func (f *RedisFeed) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(envelope{Origin: f.instance, Event: event})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	channel := feedChannelPrefix + string(event.Table)
	if err := f.client.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Run consumes remote events until the context is cancelled, republishing
// each onto the local bus. Call it from a dedicated goroutine.
func (f *RedisFeed) Run(ctx context.Context) error {
	pubsub := f.client.PSubscribe(ctx, feedChannelPrefix+"*")
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				// Skip malformed payloads rather than stop the feed
				continue
			}
			if env.Origin == f.instance {
				continue
			}
			f.bus.Publish(env.Event)
		}
	}
}

// Close releases the Redis connection
func (f *RedisFeed) Close() error {
	return f.client.Close()
}
