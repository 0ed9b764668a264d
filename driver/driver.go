// Package driver provides a typed Go client for the TypeDB HTTP API.
package driver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Driver is the top-level TypeDB HTTP client. It signs in lazily and refreshes
// its bearer token when the server answers 401.
type Driver struct {
	address    string
	username   string
	password   string
	httpClient *http.Client
	timeout    time.Duration

	mu    sync.Mutex
	token string

	Databases    *DatabaseService
	Transactions *TransactionService
}

// Option configures a Driver.
type Option func(*Driver)

// WithCredentials sets the username and password used to sign in.
func WithCredentials(username, password string) Option {
	return func(d *Driver) {
		d.username = username
		d.password = password
	}
}

// WithHTTPClient sets a custom HTTP client. The client is not modified.
func WithHTTPClient(hc *http.Client) Option {
	return func(d *Driver) { d.httpClient = hc }
}

// WithTimeout sets the per-request timeout. It applies to a copy of the HTTP
// client, so it works in any order with WithHTTPClient and never changes a
// client shared with other code.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Driver) { d.timeout = timeout }
}

// New creates a driver for the given server address (e.g. "http://localhost:8000").
func New(address string, opts ...Option) *Driver {
	d := &Driver{
		address:    strings.TrimRight(address, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(d)
	}
	if d.timeout > 0 {
		hc := *d.httpClient
		hc.Timeout = d.timeout
		d.httpClient = &hc
	}
	d.Databases = &DatabaseService{d: d}
	d.Transactions = &TransactionService{d: d}
	return d
}

// Address returns the server address the driver talks to.
func (d *Driver) Address() string {
	return d.address
}

// Health checks that the server is reachable. It does not require a token.
func (d *Driver) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.address+"/v1/health", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return parseAPIError(resp.StatusCode, body)
	}
	return nil
}

// Query runs a single query in its own transaction.
func (d *Driver) Query(ctx context.Context, database string, txType TransactionType, query string) (*QueryResponse, error) {
	var resp QueryResponse
	body := oneShotQueryRequest{
		DatabaseName:    database,
		TransactionType: txType,
		Query:           query,
		Commit:          txType != TransactionRead,
	}
	if err := d.post(ctx, "/v1/query", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SignIn exchanges the configured credentials for a fresh token.
func (d *Driver) SignIn(ctx context.Context) error {
	_, err := d.refreshToken(ctx)
	return err
}

func (d *Driver) currentToken(ctx context.Context) (string, error) {
	d.mu.Lock()
	token := d.token
	d.mu.Unlock()

	if token != "" {
		return token, nil
	}
	return d.refreshToken(ctx)
}

func (d *Driver) refreshToken(ctx context.Context) (string, error) {
	data, err := json.Marshal(signInRequest{Username: d.username, Password: d.password})
	if err != nil {
		return "", fmt.Errorf("marshal sign-in: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.address+"/v1/signin", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sign-in failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return "", parseAPIError(resp.StatusCode, body)
	}

	var out signInResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode sign-in: %w", err)
	}
	if out.Token == "" {
		return "", fmt.Errorf("sign-in returned an empty token")
	}

	d.mu.Lock()
	d.token = out.Token
	d.mu.Unlock()
	return out.Token, nil
}

// do executes an authenticated request, re-signing in once on 401, and decodes the JSON response.
func (d *Driver) do(ctx context.Context, method, path string, body any, result any) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		payload = data
	}

	token, err := d.currentToken(ctx)
	if err != nil {
		return err
	}

	status, respBody, err := d.send(ctx, method, path, payload, token)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized {
		if token, err = d.refreshToken(ctx); err != nil {
			return err
		}
		if status, respBody, err = d.send(ctx, method, path, payload, token); err != nil {
			return err
		}
	}

	if status >= 400 {
		return parseAPIError(status, respBody)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (d *Driver) send(ctx context.Context, method, path string, payload []byte, token string) (int, []byte, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, d.address+path, bodyReader)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

// get is a convenience wrapper for GET requests.
func (d *Driver) get(ctx context.Context, path string, result any) error {
	return d.do(ctx, http.MethodGet, path, nil, result)
}

// post is a convenience wrapper for POST requests.
func (d *Driver) post(ctx context.Context, path string, body any, result any) error {
	if body == nil {
		body = struct{}{}
	}
	return d.do(ctx, http.MethodPost, path, body, result)
}

// del is a convenience wrapper for DELETE requests.
func (d *Driver) del(ctx context.Context, path string) error {
	return d.do(ctx, http.MethodDelete, path, nil, nil)
}
