package metrics

import (
	"context"
	"sync/atomic"
	"time"
)

// Ingest outcomes recorded at the webhook boundary
const (
	OutcomeProcessed = "processed"
	OutcomeFiltered  = "filtered"
	OutcomeDuplicate = "duplicate"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)

// Snapshot represents the current state of the bridge.
type Snapshot struct {
	// Ingest maps outcome name to count of webhook deliveries
	Ingest map[string]int64 `json:"ingest"`

	// OutboundRequests is the total number of API calls issued
	OutboundRequests int64 `json:"outbound_requests"`

	// OutboundErrors is the number of API calls that failed
	OutboundErrors int64 `json:"outbound_errors"`

	// RateLimited is the number of 429 responses observed
	RateLimited int64 `json:"rate_limited"`

	// Timestamp when the snapshot was taken
	Timestamp time.Time `json:"timestamp"`
}

// Collector defines the interface for collecting metrics from the bridge.
type Collector interface {
	// Collect gathers current metrics
	Collect(ctx context.Context) (Snapshot, error)
}

/* Recorder is the in-process Collector implementation.
 * Counters are plain atomics; the bridge is request-scoped and owns no
 * other shared state.
 */
type Recorder struct {
	processed atomic.Int64
	filtered  atomic.Int64
	duplicate atomic.Int64
	rejected  atomic.Int64
	failed    atomic.Int64

	outboundRequests atomic.Int64
	outboundErrors   atomic.Int64
	rateLimited      atomic.Int64
}

// NewRecorder creates a new recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// ObserveIngest records the outcome of one webhook delivery
func (r *Recorder) ObserveIngest(outcome string) {
	switch outcome {
	case OutcomeProcessed:
		r.processed.Add(1)
	case OutcomeFiltered:
		r.filtered.Add(1)
	case OutcomeDuplicate:
		r.duplicate.Add(1)
	case OutcomeRejected:
		r.rejected.Add(1)
	case OutcomeFailed:
		r.failed.Add(1)
	}
}

// ObserveOutbound records the outcome of one API call; implements the
// client's observer contract
func (r *Recorder) ObserveOutbound(statusCode int, err error) {
	r.outboundRequests.Add(1)
	if err != nil {
		r.outboundErrors.Add(1)
	}
	if statusCode == 429 {
		r.rateLimited.Add(1)
	}
}

// Collect gathers current metrics
func (r *Recorder) Collect(ctx context.Context) (Snapshot, error) {
	return Snapshot{
		Ingest: map[string]int64{
			OutcomeProcessed: r.processed.Load(),
			OutcomeFiltered:  r.filtered.Load(),
			OutcomeDuplicate: r.duplicate.Load(),
			OutcomeRejected:  r.rejected.Load(),
			OutcomeFailed:    r.failed.Load(),
		},
		OutboundRequests: r.outboundRequests.Load(),
		OutboundErrors:   r.outboundErrors.Load(),
		RateLimited:      r.rateLimited.Load(),
		Timestamp:        time.Now(),
	}, nil
}
