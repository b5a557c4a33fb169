package envelope

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// eventTypePattern validates event types: hierarchical, full-stop delimited, [a-zA-Z0-9_.]
var eventTypePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+(\.[a-zA-Z0-9_]+)*$`)

// Envelope represents an Alloy webhook delivery payload.
// Immutable once parsed; the raw body stays authoritative for signing.
type Envelope struct {
	// EventType is a full-stop delimited type associated with the event
	// Examples: "evaluation.completed", "review.completed", "entity.updated"
	EventType string `json:"event_type"`

	// EventID uniquely identifies the delivery; used for replay de-duplication
	EventID string `json:"event_id"`

	// Timestamp is the delivery time as reported by the platform
	Timestamp string `json:"timestamp"`

	// Data is the event body, kept raw for downstream consumers
	Data json.RawMessage `json:"data"`

	// Tokens tie the event back to platform records; all optional
	EntityToken      string `json:"entity_token,omitempty"`
	EvaluationToken  string `json:"evaluation_token,omitempty"`
	ApplicationToken string `json:"application_token,omitempty"`
}

// Validate checks the envelope's structural requirements. Only the
// event type is mandatory; everything else is carried opportunistically.
func (e Envelope) Validate() error {
	if e.EventType == "" {
		return fmt.Errorf("event_type is required")
	}

	if !eventTypePattern.MatchString(e.EventType) {
		return fmt.Errorf("event_type must be hierarchical and contain only [a-zA-Z0-9_.]: %s", e.EventType)
	}

	if len(e.Data) > 0 && !json.Valid(e.Data) {
		return fmt.Errorf("data must be valid JSON")
	}

	return nil
}

// Parse parses a JSON body into an Envelope and validates it
func Parse(body []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Envelope{}, fmt.Errorf("unmarshaling envelope: %w", err)
	}

	if err := env.Validate(); err != nil {
		return Envelope{}, fmt.Errorf("validating envelope: %w", err)
	}

	return env, nil
}

// MatchesEventType checks if the envelope's type matches any of the given event types
// Supports exact matching and prefix matching (e.g., "evaluation.*" matches "evaluation.completed")
func (e Envelope) MatchesEventType(eventTypes []string) bool {
	if len(eventTypes) == 0 {
		// No filter means accept all
		return true
	}

	for _, eventType := range eventTypes {
		// Exact match
		if e.EventType == eventType {
			return true
		}

		// Prefix match (e.g., "evaluation.*" matches "evaluation.completed")
		if len(eventType) > 2 && eventType[len(eventType)-2:] == ".*" {
			prefix := eventType[:len(eventType)-2]
			if len(e.EventType) > len(prefix) && e.EventType[:len(prefix)] == prefix && e.EventType[len(prefix)] == '.' {
				return true
			}
		}
	}

	return false
}

// ValidateEventType validates an event type filter entry
func ValidateEventType(eventType string) error {
	if eventType == "" {
		return fmt.Errorf("event type cannot be empty")
	}

	// Allow wildcard suffix for filtering
	if len(eventType) > 2 && eventType[len(eventType)-2:] == ".*" {
		eventType = eventType[:len(eventType)-2]
	}

	if !eventTypePattern.MatchString(eventType) {
		return fmt.Errorf("event type must be hierarchical and contain only [a-zA-Z0-9_.]: %s", eventType)
	}

	return nil
}
