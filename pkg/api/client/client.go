package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client provides typed access to the officeboard API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customises client instantiation.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// New constructs a Client pointing at the provided API base URL.
func New(base string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(base)
	if trimmed == "" {
		trimmed = "http://localhost:4000"
	}
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		trimmed = "http://" + trimmed
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	cli := &Client{
		baseURL:    strings.TrimRight(trimmed, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(cli)
	}
	return cli, nil
}

// BaseURL reports the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// APIError represents an error response from the API.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api request failed with status %d", e.Status)
	}
	return fmt.Sprintf("api request failed (%d): %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0 when err is not an APIError.
func StatusOf(err error) int {
	var apiErr APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsUnauthorized reports whether the API rejected the session.
func IsUnauthorized(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized
}

// IsNotFound reports whether the resource does not exist for this user.
func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}

func (c *Client) do(ctx context.Context, method, path string, body any, token string, v any) error {
	if c == nil {
		return errors.New("client is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if strings.TrimSpace(token) != "" {
		req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(token))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if v == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := APIError{Status: resp.StatusCode}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(data) == 0 {
		return apiErr
	}
	var payload struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		apiErr.Message = strings.TrimSpace(string(data))
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(payload.Error)
	apiErr.Fields = payload.Fields
	return apiErr
}

// SignUp registers an account and returns its first session.
func (c *Client) SignUp(ctx context.Context, email, password string) (Session, error) {
	var out Session
	err := c.do(ctx, http.MethodPost, "/auth/signup", Credentials{Email: email, Password: password}, "", &out)
	return out, err
}

// SignIn exchanges credentials for a session.
func (c *Client) SignIn(ctx context.Context, email, password string) (Session, error) {
	var out Session
	err := c.do(ctx, http.MethodPost, "/auth/login", Credentials{Email: email, Password: password}, "", &out)
	return out, err
}

// CurrentUser returns the user owning token.
func (c *Client) CurrentUser(ctx context.Context, token string) (User, error) {
	var out User
	err := c.do(ctx, http.MethodGet, "/auth/me", nil, token, &out)
	return out, err
}

// SignOut revokes token.
func (c *Client) SignOut(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, token, nil)
}

// ListOffices returns the caller's offices, newest first.
func (c *Client) ListOffices(ctx context.Context, token string) ([]Office, error) {
	var out []Office
	err := c.do(ctx, http.MethodGet, "/offices", nil, token, &out)
	return out, err
}

// GetOffice fetches one office.
func (c *Client) GetOffice(ctx context.Context, token, officeID string) (Office, error) {
	var out Office
	err := c.do(ctx, http.MethodGet, "/offices/"+url.PathEscape(officeID), nil, token, &out)
	return out, err
}

// CreateOffice creates an office owned by the caller.
func (c *Client) CreateOffice(ctx context.Context, token string, input OfficeInput) (Office, error) {
	var out Office
	err := c.do(ctx, http.MethodPost, "/offices", input, token, &out)
	return out, err
}

// DeleteOffice deletes an office.
func (c *Client) DeleteOffice(ctx context.Context, token, officeID string) error {
	return c.do(ctx, http.MethodDelete, "/offices/"+url.PathEscape(officeID), nil, token, nil)
}

// CountWorkers returns the headcount of an office.
func (c *Client) CountWorkers(ctx context.Context, token, officeID string) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	err := c.do(ctx, http.MethodGet, "/offices/"+url.PathEscape(officeID)+"/workers/count", nil, token, &out)
	return out.Count, err
}

// ListWorkers returns the workers of an office, newest first.
func (c *Client) ListWorkers(ctx context.Context, token, officeID string) ([]Worker, error) {
	var out []Worker
	err := c.do(ctx, http.MethodGet, "/offices/"+url.PathEscape(officeID)+"/workers", nil, token, &out)
	return out, err
}

// CreateWorker adds a worker to an office.
func (c *Client) CreateWorker(ctx context.Context, token, officeID string, input WorkerInput) (Worker, error) {
	var out Worker
	err := c.do(ctx, http.MethodPost, "/offices/"+url.PathEscape(officeID)+"/workers", input, token, &out)
	return out, err
}

// UpdateWorker changes a worker's name, position and email.
func (c *Client) UpdateWorker(ctx context.Context, token, officeID, workerID string, input WorkerInput) (Worker, error) {
	var out Worker
	path := "/offices/" + url.PathEscape(officeID) + "/workers/" + url.PathEscape(workerID)
	err := c.do(ctx, http.MethodPut, path, input, token, &out)
	return out, err
}

// DeleteWorker removes a worker.
func (c *Client) DeleteWorker(ctx context.Context, token, officeID, workerID string) error {
	path := "/offices/" + url.PathEscape(officeID) + "/workers/" + url.PathEscape(workerID)
	return c.do(ctx, http.MethodDelete, path, nil, token, nil)
}

// DashboardSummary returns the server-side aggregation of the caller's offices.
func (c *Client) DashboardSummary(ctx context.Context, token string) (Summary, error) {
	var out Summary
	err := c.do(ctx, http.MethodGet, "/dashboard/summary", nil, token, &out)
	return out, err
}
