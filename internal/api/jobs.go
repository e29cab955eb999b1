package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jonathan/hiredoor/internal/schemas"
	"github.com/jonathan/hiredoor/internal/types"
)

// SearchJob sends POST /api/jobs/search to parse a job posting and discover contacts.
func (c *Client) SearchJob(ctx context.Context, req types.SearchJobRequest) (*types.SearchJobResponse, error) {
	return c.search(ctx, "/api/jobs/search", req)
}

// ConfirmDomain sends POST /api/jobs/search/confirm to re-run a search with the company domain pinned.
func (c *Client) ConfirmDomain(ctx context.Context, req types.SearchJobRequest) (*types.SearchJobResponse, error) {
	if req.SelectedDomain == "" {
		return nil, fmt.Errorf("selected domain is required to confirm a search")
	}
	return c.search(ctx, "/api/jobs/search/confirm", req)
}

func (c *Client) search(ctx context.Context, path string, req types.SearchJobRequest) (*types.SearchJobResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid search request: %w", err)
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, path, nil, "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}

	if err := schemas.ValidateSearchResponse(body); err != nil {
		return nil, fmt.Errorf("unexpected search response: %w", err)
	}

	var result types.SearchJobResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}
	return &result, nil
}
