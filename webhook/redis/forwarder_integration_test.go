//go:build integration

package redis_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/marcelsud/alloy-bridge/webhook"
	"github.com/marcelsud/alloy-bridge/webhook/envelope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForward(t *testing.T) {
	ctx := context.Background()

	rc, cleanup := SetupRedisContainer(t, ctx)
	defer cleanup()

	fwd := CreateTestForwarder(t, rc.Addr)
	defer fwd.Close(ctx)

	t.Run("success - delivery lands on the stream", func(t *testing.T) {
		body := []byte(`{"event_type":"evaluation.completed","event_id":"evt_int_1","data":{"outcome":"Approved"},"entity_token":"P-abc"}`)
		env, err := envelope.Parse(body)
		require.NoError(t, err)

		delivery := webhook.Delivery{
			ID:         "evt_int_1",
			Envelope:   env,
			Body:       body,
			Headers:    map[string]string{"Content-Type": "application/json"},
			ReceivedAt: time.Now(),
		}

		require.NoError(t, fwd.Forward(ctx, delivery))

		client := createRedisClient(rc.Addr)
		defer client.Close()

		messages, err := client.XRange(ctx, "alloy:webhooks", "-", "+").Result()
		require.NoError(t, err)
		require.Len(t, messages, 1)

		values := messages[0].Values
		assert.Equal(t, "evt_int_1", values["event_id"])
		assert.Equal(t, "evaluation.completed", values["event_type"])
		assert.Equal(t, "P-abc", values["entity_token"])
		assert.JSONEq(t, string(body), values["body"].(string))

		var headers map[string]string
		require.NoError(t, json.Unmarshal([]byte(values["headers"].(string)), &headers))
		assert.Equal(t, "application/json", headers["Content-Type"])
	})

	t.Run("success - deliveries preserve stream order", func(t *testing.T) {
		for _, id := range []string{"evt_order_1", "evt_order_2", "evt_order_3"} {
			body := []byte(`{"event_type":"entity.updated","event_id":"` + id + `"}`)
			env, err := envelope.Parse(body)
			require.NoError(t, err)

			require.NoError(t, fwd.Forward(ctx, webhook.Delivery{
				ID:         id,
				Envelope:   env,
				Body:       body,
				ReceivedAt: time.Now(),
			}))
		}

		client := createRedisClient(rc.Addr)
		defer client.Close()

		messages, err := client.XRange(ctx, "alloy:webhooks", "-", "+").Result()
		require.NoError(t, err)

		var got []string
		for _, msg := range messages {
			id := msg.Values["event_id"].(string)
			if len(id) > 9 && id[:9] == "evt_order" {
				got = append(got, id)
			}
		}
		assert.Equal(t, []string{"evt_order_1", "evt_order_2", "evt_order_3"}, got)
	})
}

func TestFirstSeen(t *testing.T) {
	ctx := context.Background()

	rc, cleanup := SetupRedisContainer(t, ctx)
	defer cleanup()

	fwd := CreateTestForwarder(t, rc.Addr)
	defer fwd.Close(ctx)

	t.Run("first observation returns true, replay returns false", func(t *testing.T) {
		first, err := fwd.FirstSeen(ctx, "evt_dup_1", 5*time.Minute)
		require.NoError(t, err)
		assert.True(t, first)

		again, err := fwd.FirstSeen(ctx, "evt_dup_1", 5*time.Minute)
		require.NoError(t, err)
		assert.False(t, again)
	})

	t.Run("guard key expires with the window", func(t *testing.T) {
		first, err := fwd.FirstSeen(ctx, "evt_ttl_1", 1*time.Second)
		require.NoError(t, err)
		assert.True(t, first)

		time.Sleep(1500 * time.Millisecond)

		again, err := fwd.FirstSeen(ctx, "evt_ttl_1", 1*time.Second)
		require.NoError(t, err)
		assert.True(t, again, "expired guard key must allow re-observation")
	})

	t.Run("distinct event IDs are independent", func(t *testing.T) {
		first, err := fwd.FirstSeen(ctx, "evt_a", 5*time.Minute)
		require.NoError(t, err)
		assert.True(t, first)

		other, err := fwd.FirstSeen(ctx, "evt_b", 5*time.Minute)
		require.NoError(t, err)
		assert.True(t, other)
	})
}
