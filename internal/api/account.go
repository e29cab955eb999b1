package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jonathan/hiredoor/internal/types"
)

// CreateCheckoutSession sends POST /api/payments/checkout and returns the hosted checkout URL.
func (c *Client) CreateCheckoutSession(ctx context.Context, req types.CheckoutRequest) (*types.CheckoutResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid checkout request: %w", err)
	}
	var result types.CheckoutResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/payments/checkout", nil, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreatePortalSession sends POST /api/payments/portal and returns the billing portal URL.
func (c *Client) CreatePortalSession(ctx context.Context, returnURL string) (*types.PortalResponse, error) {
	var result types.PortalResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/payments/portal", nil, types.PortalRequest{ReturnURL: returnURL}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetTokenUsage sends GET /api/tokens/usage.
func (c *Client) GetTokenUsage(ctx context.Context) (*types.TokenUsageResponse, error) {
	var result types.TokenUsageResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/tokens/usage", nil, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpsertUser sends POST /api/user to create or update the signed-in user's record.
func (c *Client) UpsertUser(ctx context.Context, req types.UpsertUserRequest) (*types.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid user: %w", err)
	}
	var result types.UserResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/user", nil, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetUser sends GET /api/user/{id}.
func (c *Client) GetUser(ctx context.Context, id string) (*types.UserResponse, error) {
	if id == "" {
		return nil, fmt.Errorf("user id is required")
	}
	var result types.UserResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/user/"+url.PathEscape(id), nil, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
