// Package authority is the portal's HTTP client for the authoritative API.
// It implements ports.ModerationAuthority and ports.OrderingAuthority and
// maps every response onto the domain failure taxonomy. It never retries.
package authority

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hirehub/portal-core/internal/api/metrics"
	"github.com/hirehub/portal-core/internal/core/domain"
)

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 4 << 10
)

// Error is a 4xx response that does not map onto a domain failure.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("authority error: status=%d message=%s", e.StatusCode, e.Message)
}

// Client calls the authoritative API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithTimeout bounds every call, including reading the response.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	return c
}

type pendingResponse struct {
	Items []domain.SubmittedEntity `json:"items"`
}

type bannersResponse struct {
	Banners []domain.Banner `json:"banners"`
}

type repositionRequest struct {
	Positions []domain.Position `json:"positions"`
}

// ListPending returns the entities of kind awaiting a decision.
func (c *Client) ListPending(ctx context.Context, credential string, kind domain.EntityKind) ([]domain.SubmittedEntity, error) {
	var out pendingResponse
	path := "/v1/moderation/" + url.PathEscape(string(kind)) + "/pending"
	if err := c.do(ctx, "list_pending", http.MethodGet, path, credential, nil, &out); err != nil {
		return nil, err
	}
	if out.Items == nil {
		out.Items = []domain.SubmittedEntity{}
	}
	return out.Items, nil
}

// Decide submits an approve or reject decision and returns the entity as
// recorded by the authority.
func (c *Client) Decide(ctx context.Context, credential string, kind domain.EntityKind, id string, decision domain.Decision) (*domain.SubmittedEntity, error) {
	var out domain.SubmittedEntity
	path := "/v1/moderation/" + url.PathEscape(string(kind)) + "/" + url.PathEscape(id) + "/" + url.PathEscape(string(decision))
	if err := c.do(ctx, "decide", http.MethodPost, path, credential, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListBanners returns the banners of placement ordered by position.
func (c *Client) ListBanners(ctx context.Context, credential, placement string) ([]domain.Banner, error) {
	var out bannersResponse
	path := "/v1/placements/" + url.PathEscape(placement) + "/banners"
	if err := c.do(ctx, "list_banners", http.MethodGet, path, credential, nil, &out); err != nil {
		return nil, err
	}
	if out.Banners == nil {
		out.Banners = []domain.Banner{}
	}
	return out.Banners, nil
}

// Reposition writes every position of placement in one request.
func (c *Client) Reposition(ctx context.Context, credential, placement string, positions []domain.Position) ([]domain.Banner, error) {
	var out bannersResponse
	path := "/v1/placements/" + url.PathEscape(placement) + "/banners/positions"
	if err := c.do(ctx, "reposition", http.MethodPut, path, credential, repositionRequest{Positions: positions}, &out); err != nil {
		return nil, err
	}
	if out.Banners == nil {
		out.Banners = []domain.Banner{}
	}
	return out.Banners, nil
}

func (c *Client) do(ctx context.Context, op, method, path, credential string, body, out any) (err error) {
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = string(domain.Classify(err))
		}
		metrics.AuthorityRequestDuration.WithLabelValues(op, outcome).Observe(time.Since(start).Seconds())
	}()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s: %w", op, err)
		}
		reader = bytes.NewReader(b)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			if readFault(ctx, err) {
				return fmt.Errorf("%s: %w: %w", op, domain.ErrTransient, err)
			}
			return fmt.Errorf("decode %s: %w", op, err)
		}
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return fmt.Errorf("%s: %w", op, statusError(resp.StatusCode, raw))
}

// readFault reports whether a body decode failed because the connection or
// deadline did, rather than because the payload was malformed.
func readFault(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// statusError maps a non-2xx response onto the domain taxonomy.
func statusError(status int, body []byte) error {
	msg := errorMessage(body)
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrSessionInvalid, msg)
	case status == http.StatusNotFound || status == http.StatusConflict:
		return fmt.Errorf("%w: %s", domain.ErrStateConflict, msg)
	case status >= 500:
		return fmt.Errorf("%w: status %d: %s", domain.ErrTransient, status, msg)
	}
	return &Error{StatusCode: status, Message: msg}
}

func errorMessage(body []byte) string {
	var env struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err == nil && env.Error != "" {
		return env.Error
	}
	return strings.TrimSpace(string(body))
}
