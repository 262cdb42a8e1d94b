// Package client talks to the outright server's compute and case endpoints.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/iwvelando/outright-forecast/internal/cases"
	"github.com/iwvelando/outright-forecast/internal/metrics"
	"github.com/iwvelando/outright-forecast/internal/scenario"
	"github.com/iwvelando/outright-forecast/internal/server"
	"go.uber.org/zap"
)

// APIError is a failed response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps a 404 onto cases.ErrNotFound.
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return cases.ErrNotFound
	}
	return nil
}

// Client is an HTTP client for the compute service and case store.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a client for the server at baseURL.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// BaseURL returns the server location.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) do(ctx context.Context, method, path string, body, target interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("API call",
		zap.String("op", "client.do"),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	var status server.ErrorResponse
	_ = json.Unmarshal(data, &status)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := status.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	if !status.Success {
		msg := status.Error
		if msg == "" {
			msg = "request was not successful"
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if target == nil {
		return nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Compute returns the raw monthly series for in.
func (c *Client) Compute(ctx context.Context, in scenario.Input) ([]metrics.RawRow, error) {
	var resp server.ComputeResponse
	if err := c.do(ctx, http.MethodPost, "/api/compute", in, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// List returns case summaries in creation order.
func (c *Client) List(ctx context.Context) ([]cases.Summary, error) {
	var resp server.ListResponse
	if err := c.do(ctx, http.MethodGet, "/api/cases", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Cases, nil
}

// Create stores a new case; the server computes its results.
func (c *Client) Create(ctx context.Context, name string, in scenario.Input) (*cases.Case, error) {
	var resp server.CaseResponse
	if err := c.do(ctx, http.MethodPost, "/api/cases", server.CaseRequest{Name: name, Inputs: in}, &resp); err != nil {
		return nil, err
	}
	return caseFrom(resp)
}

// Get returns the full case.
func (c *Client) Get(ctx context.Context, id string) (*cases.Case, error) {
	var resp server.CaseResponse
	if err := c.do(ctx, http.MethodGet, "/api/cases/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	return caseFrom(resp)
}

// Update replaces the inputs of a case; the server recomputes its results.
func (c *Client) Update(ctx context.Context, id string, in scenario.Input) (*cases.Case, error) {
	var resp server.CaseResponse
	if err := c.do(ctx, http.MethodPut, "/api/cases/"+url.PathEscape(id), server.CaseRequest{Inputs: in}, &resp); err != nil {
		return nil, err
	}
	return caseFrom(resp)
}

// Delete removes a case.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/cases/"+url.PathEscape(id), nil, nil)
}

// Version reports the server build and forecast year.
func (c *Client) Version(ctx context.Context) (server.VersionResponse, error) {
	var resp server.VersionResponse
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/version", nil)
	if err != nil {
		return resp, err
	}
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return resp, fmt.Errorf("GET /api/version: %w", err)
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode != http.StatusOK {
		return resp, &APIError{StatusCode: httpResp.StatusCode, Message: http.StatusText(httpResp.StatusCode)}
	}
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return resp, fmt.Errorf("failed to decode response: %w", err)
	}
	return resp, nil
}

func caseFrom(resp server.CaseResponse) (*cases.Case, error) {
	if resp.Case == nil {
		return nil, fmt.Errorf("response carried no case")
	}
	return resp.Case, nil
}
