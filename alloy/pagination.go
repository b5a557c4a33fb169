package alloy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const (
	// allPagesLimit is the page size used for full traversals
	allPagesLimit = 100

	// maxPages caps a full traversal so a server that never reports
	// has_more=false cannot produce an unbounded loop
	maxPages = 1000

	defaultPageLimit = 20
)

// ErrPageCapExceeded is returned alongside the accumulated items when
// a traversal hits maxPages without the server ending the result set
var ErrPageCapExceeded = errors.New("alloy: pagination exceeded maximum page count")

// PageRequest selects one page of a list endpoint
type PageRequest struct {
	Page  int
	Limit int
}

// Page describes the pagination cursor derived from one response.
// HasMore is authoritative: a missing field means false.
type Page struct {
	Page    int
	Limit   int
	Total   int
	HasMore bool
}

// PagedResult is one page of items plus its cursor
type PagedResult struct {
	Data []json.RawMessage
	Page Page
}

/* Alloy list responses come in three shapes:
 *   {"data": [...], "has_more": true, "total": 42, "page": 1, "limit": 20}
 *   {"entities": [...], ...}
 *   [...]
 * unwrapPage resolves them in that order so the contract stays
 * enumerable and testable.
 */
type pageEnvelope struct {
	Data     []json.RawMessage `json:"data"`
	Entities []json.RawMessage `json:"entities"`
	HasMore  *bool             `json:"has_more"`
	Total    *int              `json:"total"`
	Page     *int              `json:"page"`
	Limit    *int              `json:"limit"`
}

func unwrapPage(raw json.RawMessage) (pageEnvelope, error) {
	trimmed := firstNonSpace(raw)

	if trimmed == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return pageEnvelope{}, fmt.Errorf("unmarshaling list response: %w", err)
		}
		return pageEnvelope{Data: items}, nil
	}

	var env pageEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return pageEnvelope{}, fmt.Errorf("unmarshaling list envelope: %w", err)
	}
	if env.Data == nil && env.Entities != nil {
		env.Data = env.Entities
	}
	return env, nil
}

func firstNonSpace(raw []byte) byte {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return b
		}
	}
	return 0
}

// GetPaginated fetches one page, flattening page, limit, and filters
// into the query string. Cursor fields missing from the response fall
// back to the requested values; a missing has_more is false.
func (c *Client) GetPaginated(ctx context.Context, endpoint string, req PageRequest, filters url.Values) (PagedResult, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = defaultPageLimit
	}

	query := url.Values{}
	for key, values := range filters {
		for _, value := range values {
			query.Add(key, value)
		}
	}
	query.Set("page", strconv.Itoa(req.Page))
	query.Set("limit", strconv.Itoa(req.Limit))

	raw, err := c.Do(ctx, http.MethodGet, endpoint, nil, query)
	if err != nil {
		return PagedResult{}, err
	}

	env, err := unwrapPage(raw)
	if err != nil {
		return PagedResult{}, err
	}

	page := Page{
		Page:  req.Page,
		Limit: req.Limit,
	}
	if env.Page != nil {
		page.Page = *env.Page
	}
	if env.Limit != nil {
		page.Limit = *env.Limit
	}
	if env.Total != nil {
		page.Total = *env.Total
	}
	if env.HasMore != nil {
		page.HasMore = *env.HasMore
	}

	data := env.Data
	if data == nil {
		data = []json.RawMessage{}
	}

	return PagedResult{Data: data, Page: page}, nil
}

// FetchAllPages traverses a list endpoint in strictly increasing page
// order, appending items in arrival order, until has_more is false or
// the defensive page cap trips. On a cap trip the accumulated items
// are returned together with ErrPageCapExceeded.
func (c *Client) FetchAllPages(ctx context.Context, endpoint string, filters url.Values) ([]json.RawMessage, error) {
	var items []json.RawMessage

	for page := 1; ; page++ {
		result, err := c.GetPaginated(ctx, endpoint, PageRequest{Page: page, Limit: allPagesLimit}, filters)
		if err != nil {
			return nil, fmt.Errorf("fetching page %d: %w", page, err)
		}

		items = append(items, result.Data...)

		if !result.Page.HasMore {
			return items, nil
		}
		if page >= maxPages {
			return items, fmt.Errorf("%w (%d pages)", ErrPageCapExceeded, maxPages)
		}
	}
}
