package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/marcelsud/alloy-bridge/webhook"
	"github.com/redis/go-redis/v9"
)

/* Redis Streams implementation of webhook.Forwarder
 * Accepted deliveries are appended to a per-event-category stream that
 * the host execution pipeline consumes. The bridge never reads back.
 * Also implements webhook.ReplayGuard via SETNX keys with a TTL.
 */

const (
	streamKey   = "alloy:webhooks" // Stream carrying accepted deliveries
	replayKeyPF = "alloy:event"    // Replay guard naming: alloy:event:{event_id}
)

type Forwarder struct {
	client *redis.Client
}

// NewForwarder creates a new Redis forwarder and verifies connectivity
func NewForwarder(addr, password string, db int) (*Forwarder, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to Redis: %w", err)
	}

	return &Forwarder{
		client: client,
	}, nil
}

// Forward appends a delivery to the hand-off stream
func (f *Forwarder) Forward(ctx context.Context, delivery webhook.Delivery) error {
	headersJSON, err := json.Marshal(delivery.Headers)
	if err != nil {
		return fmt.Errorf("marshaling headers: %w", err)
	}

	streamData := map[string]interface{}{
		"event_id":    delivery.ID,
		"event_type":  delivery.Envelope.EventType,
		"body":        delivery.Body,
		"headers":     string(headersJSON),
		"received_at": delivery.ReceivedAt.Unix(),
	}
	if delivery.Envelope.EntityToken != "" {
		streamData["entity_token"] = delivery.Envelope.EntityToken
	}
	if delivery.Envelope.EvaluationToken != "" {
		streamData["evaluation_token"] = delivery.Envelope.EvaluationToken
	}

	_, err = f.client.XAdd(ctx, &redis.XAddArgs{
		Stream: streamKey,
		Values: streamData,
	}).Result()
	if err != nil {
		return fmt.Errorf("adding to stream: %w", err)
	}

	return nil
}

// FirstSeen records an event ID and reports whether it was new.
// SETNX with a TTL gives an atomic first-observation check that
// expires together with the signature replay window.
func (f *Forwarder) FirstSeen(ctx context.Context, eventID string, window time.Duration) (bool, error) {
	key := fmt.Sprintf("%s:%s", replayKeyPF, eventID)

	first, err := f.client.SetNX(ctx, key, time.Now().Unix(), window).Result()
	if err != nil {
		return false, fmt.Errorf("recording event ID: %w", err)
	}

	return first, nil
}

// Close closes the Redis connection
func (f *Forwarder) Close(ctx context.Context) error {
	return f.client.Close()
}

// GetClient returns the underlying Redis client for advanced operations
func (f *Forwarder) GetClient() *redis.Client {
	return f.client
}
