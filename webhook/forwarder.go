package webhook

import (
	"context"
	"time"
)

/* Small, focused interfaces following "The Go Way"
 * Interfaces abstract behavior, not things
 * Written for users of the API, not just for testing
 */

// Forwarder hands verified deliveries off to the host execution
// pipeline. The bridge owns no delivery state beyond this call.
type Forwarder interface {
	/* Context is always the first parameter in functions that do I/O
	 * This allows for cancellation, timeouts, and shared values
	 */
	Forward(ctx context.Context, delivery Delivery) error
	Close(ctx context.Context) error
}

// ReplayGuard tracks event IDs so redelivered webhooks inside the
// replay window are acknowledged without being forwarded twice.
type ReplayGuard interface {
	/* FirstSeen returns true when the event ID has not been observed
	 * within the window; the observation is recorded atomically
	 */
	FirstSeen(ctx context.Context, eventID string, window time.Duration) (bool, error)
}
