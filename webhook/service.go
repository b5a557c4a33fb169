package webhook

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/marcelsud/alloy-bridge/webhook/envelope"
	"github.com/marcelsud/alloy-bridge/webhook/signature"
)

/* Service represents the business logic layer
 * Uses pointer semantics as it's an API, not data
 */

// FilteredReason is returned when the configured allowlist excludes the
// delivered event type
const FilteredReason = "Event type not in filter"

// DuplicateReason is returned when the replay guard has already seen
// the delivery's event ID
const DuplicateReason = "Duplicate delivery"

// UseCase defines the business operations for webhook ingestion
type UseCase interface {
	Receive(ctx context.Context, body []byte, headers http.Header) (Result, error)
}

// Options configures the ingestion pipeline
type Options struct {
	// Secret enables signature verification when non-empty
	Secret string

	// EventTypes is the allowlist; empty accepts every event type
	EventTypes []string

	// DedupeWindow bounds replay de-duplication; defaults to the
	// signature replay window when zero
	DedupeWindow time.Duration
}

type Service struct {
	forwarder Forwarder
	guard     ReplayGuard
	opts      Options
}

// NewService creates a new webhook service with dependency injection.
// guard may be nil, which disables replay de-duplication.
func NewService(forwarder Forwarder, guard ReplayGuard, opts Options) *Service {
	if opts.DedupeWindow <= 0 {
		opts.DedupeWindow = signature.ReplayWindow
	}
	return &Service{
		forwarder: forwarder,
		guard:     guard,
		opts:      opts,
	}
}

// Receive runs one delivery through the pipeline:
// verify -> parse -> de-duplicate -> filter -> forward.
// Rejections come back as sentinel errors; filtered and duplicate
// events come back as non-processed results, not errors.
func (s *Service) Receive(ctx context.Context, body []byte, headers http.Header) (Result, error) {
	if s.opts.Secret != "" {
		sig, ts := signature.Extract(headers)
		if sig == "" {
			return Result{}, ErrMissingSignature
		}
		if !signature.Verify(body, sig, s.opts.Secret, ts) {
			return Result{}, ErrInvalidSignature
		}
	}

	env, err := envelope.Parse(body)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s", ErrInvalidPayload, err)
	}

	eventID := env.EventID
	if eventID == "" {
		eventID = uuid.New().String()
	}

	if s.guard != nil && env.EventID != "" {
		first, err := s.guard.FirstSeen(ctx, env.EventID, s.opts.DedupeWindow)
		if err != nil {
			return Result{}, fmt.Errorf("checking replay guard: %w", err)
		}
		if !first {
			return Result{EventID: eventID, Processed: false, Reason: DuplicateReason}, nil
		}
	}

	if !env.MatchesEventType(s.opts.EventTypes) {
		return Result{EventID: eventID, Processed: false, Reason: FilteredReason}, nil
	}

	delivery := Delivery{
		ID:         eventID,
		Envelope:   env,
		Body:       body,
		Headers:    flattenHeaders(headers),
		ReceivedAt: time.Now(),
	}

	if err := s.forwarder.Forward(ctx, delivery); err != nil {
		return Result{}, fmt.Errorf("forwarding delivery: %w", err)
	}

	return Result{EventID: eventID, Processed: true}, nil
}

// flattenHeaders keeps the first value of each header for hand-off
func flattenHeaders(headers http.Header) map[string]string {
	flat := make(map[string]string, len(headers))
	for key, values := range headers {
		if len(values) > 0 {
			flat[key] = values[0]
		}
	}
	return flat
}
