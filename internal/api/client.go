// Package api provides typed wrappers around the hiredoor backend HTTP API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/jonathan/hiredoor/internal/logger"
)

// DefaultBaseURL is the backend address used when none is configured.
const DefaultBaseURL = "http://localhost:3030"

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 60 * time.Second

// DefaultUserAgent is the user agent string for API requests.
const DefaultUserAgent = "hiredoor-cli/1.0"

// Options configures a Client.
type Options struct {
	BaseURL     string
	TokenSource oauth2.TokenSource
	HTTPClient  *http.Client
	Limiter     *rate.Limiter
	Logger      *slog.Logger
	UserAgent   string

	// OnUnauthorized is invoked for every 401 response, before the error is returned.
	OnUnauthorized func()
}

// Client issues authenticated requests to the backend.
type Client struct {
	baseURL        string
	tokens         oauth2.TokenSource
	httpClient     *http.Client
	limiter        *rate.Limiter
	log            *slog.Logger
	userAgent      string
	onUnauthorized func()
}

// NewClient creates a client from opts. Only BaseURL is validated; everything else has defaults.
func NewClient(opts Options) (*Client, error) {
	base := opts.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q", base)
	}

	c := &Client{
		baseURL:        strings.TrimRight(base, "/"),
		tokens:         opts.TokenSource,
		httpClient:     opts.HTTPClient,
		limiter:        opts.Limiter,
		log:            opts.Logger,
		userAgent:      opts.UserAgent,
		onUnauthorized: opts.OnUnauthorized,
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if c.log == nil {
		c.log = logger.Discard()
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	return c, nil
}

// BaseURL returns the backend address the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// doJSON sends body (if non-nil) as JSON and decodes a successful response into out (if non-nil).
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	contentType := ""
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
		contentType = "application/json"
	}

	respBody, err := c.do(ctx, method, path, query, contentType, reader)
	if err != nil {
		return err
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response from %s %s: %w", method, path, err)
	}
	return nil
}

// do executes a request and returns the raw body of a 2xx response.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, contentType string, body io.Reader) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &TransportError{Method: method, Path: path, Cause: err}
		}
	}

	requestID := uuid.NewString()
	ctx = logger.WithRequestID(ctx, requestID)
	log := logger.FromContext(ctx, c.log)

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	c.authorize(req, log)

	start := time.Now()
	log.Debug("api request", "method", method, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, Cause: fmt.Errorf("failed to read response body: %w", err)}
	}

	log.Debug("api response", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := parseError(resp.StatusCode, respBody)
		if resp.StatusCode == http.StatusUnauthorized {
			if c.onUnauthorized != nil {
				c.onUnauthorized()
			}
			return nil, fmt.Errorf("%w: %w", ErrUnauthorized, apiErr)
		}
		return nil, apiErr
	}

	return respBody, nil
}

// authorize attaches the bearer token when a session is available.
// Requests without a session go out unauthenticated and let the backend decide.
func (c *Client) authorize(req *http.Request, log *slog.Logger) {
	if c.tokens == nil {
		return
	}
	tok, err := c.tokens.Token()
	if err != nil {
		log.Debug("no session token available", "error", err)
		return
	}
	if tok != nil && tok.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	}
}

func parseError(status int, body []byte) *Error {
	apiErr := &Error{StatusCode: status}

	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
		apiErr.UserMessage = envelope.Error.UserMessage
		apiErr.Timestamp = envelope.Error.Timestamp
		apiErr.Path = envelope.Error.Path
		return apiErr
	}

	apiErr.Body = strings.TrimSpace(string(body))
	return apiErr
}
