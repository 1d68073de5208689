package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/onexay/gitobs/internal/types"
)

const defaultChannelPrefix = "gitobs"

// RedisConfig defines Redis/KeyDB connection settings.
type RedisConfig struct {
	Addr          string
	Username      string
	Password      string
	Database      int
	ChannelPrefix string
}

// RedisSink publishes deliveries on a pub/sub channel per branch and event
// type, and keeps a per-hook list so deliveries can be listed later.
type RedisSink struct {
	client *redis.Client
	prefix string
}

// NewRedisSink connects to Redis and verifies the connection.
func NewRedisSink(cfg RedisConfig) (*RedisSink, error) {
	addr := cfg.Addr
	if addr == "" {
		addr = "localhost:6379"
	}
	prefix := cfg.ChannelPrefix
	if prefix == "" {
		prefix = defaultChannelPrefix
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.Database,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisSink{client: client, prefix: prefix}, nil
}

// Deliver records the delivery in the hook's list and publishes it.
func (s *RedisSink) Deliver(ctx context.Context, delivery types.Delivery) error {
	payload, err := json.Marshal(delivery)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, deliveriesKey(s.prefix, delivery.HookID), payload)
	pipe.Publish(ctx, Channel(s.prefix, delivery.Event.Type, delivery.Event.Branch), payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish delivery %s: %w", delivery.ID, err)
	}
	return nil
}

// Deliveries reads the hook's list, oldest first.
func (s *RedisSink) Deliveries(ctx context.Context, hookID string) ([]types.Delivery, error) {
	items, err := s.client.LRange(ctx, deliveriesKey(s.prefix, hookID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	result := make([]types.Delivery, 0, len(items))
	for _, item := range items {
		var d types.Delivery
		if err := json.Unmarshal([]byte(item), &d); err != nil {
			return nil, fmt.Errorf("decode delivery: %w", err)
		}
		result = append(result, d)
	}
	return result, nil
}

// Close releases the Redis connection pool.
func (s *RedisSink) Close() error {
	return s.client.Close()
}

// Channel returns the pub/sub channel carrying events of typ on branch.
func Channel(prefix, typ, branch string) string {
	return fmt.Sprintf("%s:%s:%s", prefix, typ, branch)
}

func deliveriesKey(prefix, hookID string) string {
	return fmt.Sprintf("%s:hook:%s:deliveries", prefix, hookID)
}
