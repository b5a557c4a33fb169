package chi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/marcelsud/alloy-bridge/metrics"
	"github.com/marcelsud/alloy-bridge/webhook"
)

/* HTTP layer DTOs for the bridge API
 * Separate from domain entities to avoid leaking internal structure
 */

// webhookResponse represents the API response for a webhook delivery
type webhookResponse struct {
	Received  bool   `json:"received"`
	Processed bool   `json:"processed"`
	Reason    string `json:"reason,omitempty"`
	EventID   string `json:"event_id,omitempty"`
}

// errorResponse represents a rejection
type errorResponse struct {
	Error string `json:"error"`
}

// postWebhook handles POST /v1/webhooks/alloy
func postWebhook(webhookService webhook.UseCase, recorder *metrics.Recorder) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The server closes the request body; no explicit Close needed
		body, err := io.ReadAll(r.Body)
		if err != nil {
			recorder.ObserveIngest(metrics.OutcomeRejected)
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "failed to read request body"})
			return
		}

		result, err := webhookService.Receive(r.Context(), body, r.Header)
		if err != nil {
			if webhook.IsRejection(err) {
				recorder.ObserveIngest(metrics.OutcomeRejected)
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
				return
			}
			recorder.ObserveIngest(metrics.OutcomeFailed)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to process webhook"})
			return
		}

		recorder.ObserveIngest(ingestOutcome(result))
		writeJSON(w, http.StatusOK, webhookResponse{
			Received:  true,
			Processed: result.Processed,
			Reason:    result.Reason,
			EventID:   result.EventID,
		})
	})
}

func ingestOutcome(result webhook.Result) string {
	switch {
	case result.Processed:
		return metrics.OutcomeProcessed
	case result.Reason == webhook.DuplicateReason:
		return metrics.OutcomeDuplicate
	default:
		return metrics.OutcomeFiltered
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
