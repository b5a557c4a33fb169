package alloy

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrTimeout marks transport-level deadline failures so callers can
// tell them apart from remote API errors
var ErrTimeout = errors.New("alloy: request timed out")

// APIError represents a normalized non-2xx response from the Alloy API
type APIError struct {
	// Code is the remote error code, or HTTP_<status> when absent
	Code string

	// Message is the remote error message, or a generic fallback
	Message string

	// StatusCode is the HTTP status of the response
	StatusCode int

	// Details carries the raw response body for diagnostics
	Details json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("alloy: %s: %s (status %d)", e.Code, e.Message, e.StatusCode)
}

/* Alloy error bodies come in two shapes:
 *   {"error": {"code": "...", "message": "..."}}
 *   {"message": "..."}
 * Anything else gets a synthesized code and a generic message.
 */
type errorBody struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Message string `json:"message"`
}

// newAPIError normalizes a non-2xx response into an APIError
func newAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{
		Code:       fmt.Sprintf("HTTP_%d", statusCode),
		Message:    fmt.Sprintf("request failed with status %d", statusCode),
		StatusCode: statusCode,
	}
	if len(body) > 0 && json.Valid(body) {
		apiErr.Details = json.RawMessage(body)
	}

	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return apiErr
	}

	if parsed.Error != nil {
		if parsed.Error.Code != "" {
			apiErr.Code = parsed.Error.Code
		}
		if parsed.Error.Message != "" {
			apiErr.Message = parsed.Error.Message
		}
		return apiErr
	}

	if parsed.Message != "" {
		apiErr.Message = parsed.Message
	}

	return apiErr
}

// IsRateLimited reports whether an error is a 429 response, the only
// class the retry decorator acts on
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 429
}

// IsTimeout reports whether an error is a transport-level timeout
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsAuthFailure reports whether the remote API rejected the credentials
func IsAuthFailure(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && (apiErr.StatusCode == 401 || apiErr.StatusCode == 403)
}
