package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrStatus reports an unexpected HTTP status from the service.
var ErrStatus = errors.New("unexpected status")

// Client talks to a running analysis service.
type Client struct {
	client  *http.Client
	baseURL string
}

// NewClient creates a client for baseURL with a per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Health checks GET /healthz.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, http.StatusOK, nil)
}

// Roster fetches GET /roster.
func (c *Client) Roster(ctx context.Context) (Roster, error) {
	var r Roster
	err := c.do(ctx, http.MethodGet, "/roster", nil, http.StatusOK, &r)
	return r, err
}

// CreateSession posts the initial inputs.
func (c *Client) CreateSession(ctx context.Context, in Inputs) (Session, error) {
	var s Session
	err := c.do(ctx, http.MethodPost, "/sessions", in, http.StatusCreated, &s)
	return s, err
}

// Session fetches a session's current report.
func (c *Client) Session(ctx context.Context, id string) (Session, error) {
	var s Session
	err := c.do(ctx, http.MethodGet, "/sessions/"+id, nil, http.StatusOK, &s)
	return s, err
}

// PlayRound records a winner.
func (c *Client) PlayRound(ctx context.Context, id, winner, roundID string) (Session, error) {
	var s Session
	err := c.do(ctx, http.MethodPost, "/sessions/"+id+"/rounds", roundRequest{Winner: winner, RoundID: roundID}, http.StatusOK, &s)
	return s, err
}

// DeleteSession removes a session.
func (c *Client) DeleteSession(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/sessions/"+id, nil, http.StatusNoContent, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body any, want int, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != want {
		var apiErr errorResponse
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Code != "" {
			return fmt.Errorf("%w: %s %s: %d %s: %s", ErrStatus, method, path, resp.StatusCode, apiErr.Code, apiErr.Message)
		}
		return fmt.Errorf("%w: %s %s: %d", ErrStatus, method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
