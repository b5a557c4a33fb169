package alloy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/marcelsud/alloy-bridge/actions"
)

/* Runner executes catalog actions through the resilient client.
 * It is the single dispatch point replacing per-endpoint wrappers:
 * the catalog supplies method and path, the runner supplies transport,
 * retry, and pagination behavior.
 */

// Params carries the caller-supplied inputs for one action execution
type Params struct {
	// Path holds values for the action's path placeholders
	Path map[string]string

	// Query holds additional query-string filters
	Query url.Values

	// Body is JSON-marshaled into the request body when non-nil
	Body any
}

// RunnerOption configures the runner
type RunnerOption func(*Runner)

// WithWorkflowToken sets the default workflow token applied to actions
// that accept one and were not given one explicitly
func WithWorkflowToken(token string) RunnerOption {
	return func(r *Runner) {
		r.workflowToken = token
	}
}

// WithRetryPolicy sets the rate-limit retry policy for all executions
func WithRetryPolicy(policy RetryPolicy) RunnerOption {
	return func(r *Runner) {
		r.retry = policy
	}
}

type Runner struct {
	client        *Client
	catalog       *actions.Catalog
	workflowToken string
	retry         RetryPolicy
}

// NewRunner creates a runner over a client and an action catalog
func NewRunner(client *Client, catalog *actions.Catalog, opts ...RunnerOption) *Runner {
	r := &Runner{
		client:  client,
		catalog: catalog,
		retry:   DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Execute runs one action as a single request and returns the raw
// response body. Rate-limited responses are retried per the policy.
func (r *Runner) Execute(ctx context.Context, resource, operation string, params Params) (json.RawMessage, error) {
	action, endpoint, query, err := r.prepare(resource, operation, params)
	if err != nil {
		return nil, err
	}

	return WithRetry(ctx, r.retry, func() (json.RawMessage, error) {
		return r.client.Do(ctx, action.Method, endpoint, params.Body, query)
	})
}

// List runs a paginated action for a single page
func (r *Runner) List(ctx context.Context, resource, operation string, params Params, page PageRequest) (PagedResult, error) {
	action, endpoint, query, err := r.prepare(resource, operation, params)
	if err != nil {
		return PagedResult{}, err
	}
	if !action.Paginated {
		return PagedResult{}, fmt.Errorf("action %s.%s is not paginated", resource, operation)
	}

	return WithRetry(ctx, r.retry, func() (PagedResult, error) {
		return r.client.GetPaginated(ctx, endpoint, page, query)
	})
}

// ListAll runs a paginated action across every page
func (r *Runner) ListAll(ctx context.Context, resource, operation string, params Params) ([]json.RawMessage, error) {
	action, endpoint, query, err := r.prepare(resource, operation, params)
	if err != nil {
		return nil, err
	}
	if !action.Paginated {
		return nil, fmt.Errorf("action %s.%s is not paginated", resource, operation)
	}

	return WithRetry(ctx, r.retry, func() ([]json.RawMessage, error) {
		return r.client.FetchAllPages(ctx, endpoint, query)
	})
}

// prepare resolves the action, expands its path, and assembles the
// query including the workflow-token fallback
func (r *Runner) prepare(resource, operation string, params Params) (*actions.Action, string, url.Values, error) {
	action, err := r.catalog.Get(resource, operation)
	if err != nil {
		return nil, "", nil, err
	}

	endpoint, err := action.ExpandPath(params.Path)
	if err != nil {
		return nil, "", nil, err
	}

	query := url.Values{}
	for key, values := range params.Query {
		for _, value := range values {
			query.Add(key, value)
		}
	}
	if action.WorkflowToken && r.workflowToken != "" && query.Get("workflow_token") == "" {
		query.Set("workflow_token", r.workflowToken)
	}

	return action, endpoint, query, nil
}
