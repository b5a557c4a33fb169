package webhook

import (
	"time"

	"github.com/marcelsud/alloy-bridge/webhook/envelope"
)

/* Delivery represents an accepted webhook on its way to the host pipeline
 * Uses value semantics as it represents data, not behavior
 */
type Delivery struct {
	ID         string
	Envelope   envelope.Envelope
	Body       []byte
	Headers    map[string]string
	ReceivedAt time.Time
}

// Result is the outcome of processing one webhook delivery.
// A non-processed result is still a successful HTTP exchange; the
// reason explains why the event was not handed off.
type Result struct {
	EventID   string
	Processed bool
	Reason    string
}
