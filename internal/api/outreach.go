package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/jonathan/hiredoor/internal/types"
)

// GenerateEmail sends POST /api/email/generate.
func (c *Client) GenerateEmail(ctx context.Context, req types.GenerateEmailRequest) (*types.GenerateEmailResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid email request: %w", err)
	}
	var result types.GenerateEmailResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/email/generate", nil, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetOutreaches sends GET /api/outreach to list every tracked job.
func (c *Client) GetOutreaches(ctx context.Context) (*types.GetOutreachesResponse, error) {
	var result types.GetOutreachesResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/outreach", nil, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetOutreachStatuses sends GET /api/outreach/statuses for the given job and contact emails.
func (c *Client) GetOutreachStatuses(ctx context.Context, jobURL string, emails []string) (*types.OutreachStatusResponse, error) {
	query := url.Values{}
	query.Set("jobUrl", jobURL)
	query.Set("emails", strings.Join(emails, ","))

	var result types.OutreachStatusResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/outreach/statuses", query, nil, &result); err != nil {
		return nil, err
	}
	if result.Statuses == nil {
		result.Statuses = map[string]types.OutreachStatusEntry{}
	}
	return &result, nil
}

// GetPreviousOutreaches sends GET /api/outreach/previous for a contact email.
func (c *Client) GetPreviousOutreaches(ctx context.Context, email string) (*types.PreviousOutreachesResponse, error) {
	query := url.Values{}
	query.Set("email", email)

	var result types.PreviousOutreachesResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/outreach/previous", query, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateOutreach sends POST /api/outreach to add a contact to the tracker.
func (c *Client) CreateOutreach(ctx context.Context, req types.CreateOutreachRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid outreach request: %w", err)
	}
	return c.doJSON(ctx, http.MethodPost, "/api/outreach", nil, req, nil)
}

// UpdateOutreachStatus sends PUT /api/outreach/status.
func (c *Client) UpdateOutreachStatus(ctx context.Context, req types.UpdateOutreachStatusRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid status update: %w", err)
	}
	return c.doJSON(ctx, http.MethodPut, "/api/outreach/status", nil, req, nil)
}

// DeleteOutreaches sends DELETE /api/outreach with a JSON body naming the contacts to remove.
func (c *Client) DeleteOutreaches(ctx context.Context, req types.DeleteOutreachesRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid delete request: %w", err)
	}
	return c.doJSON(ctx, http.MethodDelete, "/api/outreach", nil, req, nil)
}
