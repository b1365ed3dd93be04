// internal/history/redis.go
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultQueueName is the Redis list game action records are pushed to
// for the external historian.
const DefaultQueueName = "foursouls_actions"

// ActionRecord holds the minimal info the historian needs to replay a
// game: which game, which action in sequence, who, and what.
type ActionRecord struct {
	GameID      string         `json:"game_id"`
	ActionIndex int            `json:"action_index"`
	PlayerID    string         `json:"player_id"`
	ActionType  string         `json:"action_type"`
	Payload     map[string]any `json:"payload,omitempty"`
	Timestamp   int64          `json:"timestamp"`
}

// Publisher pushes action records onto a Redis queue. It is safe for
// concurrent use by multiple game actors.
type Publisher struct {
	client *redis.Client
	queue  string
}

// NewPublisher connects to Redis and verifies the connection.
func NewPublisher(addr string, db int, queue string) (*Publisher, error) {
	if queue == "" {
		queue = DefaultQueueName
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}
	return &Publisher{client: client, queue: queue}, nil
}

// Publish serialises the record and RPushes it. Callers treat failures
// as best-effort: game progress never depends on the historian.
func (p *Publisher) Publish(ctx context.Context, record ActionRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal action record: %w", err)
	}
	if err := p.client.RPush(ctx, p.queue, data).Err(); err != nil {
		return fmt.Errorf("rpush to %s: %w", p.queue, err)
	}
	return nil
}

// Close releases the Redis client.
func (p *Publisher) Close() error { return p.client.Close() }
