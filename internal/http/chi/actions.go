package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/marcelsud/alloy-bridge/actions"
	"github.com/marcelsud/alloy-bridge/alloy"
)

// Executor runs catalog actions against the remote API
type Executor interface {
	Execute(ctx context.Context, resource, operation string, params alloy.Params) (json.RawMessage, error)
}

// actionResponse represents a catalog action in the API
type actionResponse struct {
	Resource  string   `json:"resource"`
	Operation string   `json:"operation"`
	Method    string   `json:"method"`
	Path      string   `json:"path"`
	Required  []string `json:"required,omitempty"`
	Paginated bool     `json:"paginated"`
}

// executeRequest carries the caller-supplied inputs for one execution
type executeRequest struct {
	Path  map[string]string `json:"path,omitempty"`
	Query map[string]string `json:"query,omitempty"`
	Body  json.RawMessage   `json:"body,omitempty"`
}

// getActions handles GET /v1/actions
func getActions(catalog *actions.Catalog) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		all := catalog.List()

		responses := make([]actionResponse, 0, len(all))
		for _, action := range all {
			responses = append(responses, actionResponse{
				Resource:  action.Resource,
				Operation: action.Operation,
				Method:    action.Method,
				Path:      action.Path,
				Required:  action.Required,
				Paginated: action.Paginated,
			})
		}

		writeJSON(w, http.StatusOK, responses)
	})
}

// postAction handles POST /v1/actions/{resource}/{operation}
func postAction(executor Executor) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req executeRequest
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
				return
			}
		}

		params := alloy.Params{
			Path:  req.Path,
			Query: url.Values{},
		}
		for key, value := range req.Query {
			params.Query.Set(key, value)
		}
		if len(req.Body) > 0 {
			params.Body = req.Body
		}

		resource := chi.URLParam(r, "resource")
		operation := chi.URLParam(r, "operation")

		result, err := executor.Execute(r.Context(), resource, operation, params)
		if err != nil {
			writeActionError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, result)
	})
}

// writeActionError maps execution failures onto HTTP statuses.
// Catalog and parameter failures are the caller's fault; remote
// statuses pass through; anything else is an upstream failure.
func writeActionError(w http.ResponseWriter, err error) {
	var apiErr *alloy.APIError
	switch {
	case errors.Is(err, actions.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, actions.ErrMissingParam):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case alloy.IsTimeout(err):
		writeJSON(w, http.StatusGatewayTimeout, errorResponse{Error: "upstream request timed out"})
	case errors.As(err, &apiErr):
		writeJSON(w, apiErr.StatusCode, errorResponse{Error: apiErr.Message})
	default:
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "upstream request failed"})
	}
}
