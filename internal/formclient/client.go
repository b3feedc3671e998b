// Package formclient submits landing page leads to the lead API and tracks
// the form's submission state.
package formclient

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

	"github.com/nirvista/leadcapture/internal/leads"
)

// DefaultEndpoint is used when LEAD_API_URL is unset.
const DefaultEndpoint = "http://localhost:5000/api/leads"

const maxResponseBytes = 1 << 20

// Values are the three form fields, sent as the POST body.
type Values struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// APIError is a non-success response from the lead API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("formclient: lead api returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("formclient: lead api returned status %d: %s", e.StatusCode, e.Message)
}

// Client posts leads to the lead API.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient builds a client for endpoint. An empty endpoint selects
// DefaultEndpoint and a nil httpClient gets a 15s timeout.
func NewClient(endpoint string, httpClient *http.Client) *Client {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{endpoint: endpoint, httpClient: httpClient}
}

// Endpoint returns the URL leads are posted to.
func (c *Client) Endpoint() string { return c.endpoint }

type createLeadResult struct {
	Success bool        `json:"success"`
	Data    *leads.Lead `json:"data"`
	Message string      `json:"message"`
}

// CreateLead posts v and returns the stored lead. Any response other than a
// 2xx with success=true yields an *APIError.
func (c *Client) CreateLead(ctx context.Context, v Values) (*leads.Lead, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("formclient: marshal lead: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("formclient: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("formclient: post lead: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("formclient: read response: %w", err)
	}

	var result createLeadResult
	// Non-JSON bodies (proxies, HTML error pages) still produce an APIError.
	_ = json.Unmarshal(raw, &result)

	if resp.StatusCode < 200 || resp.StatusCode > 299 || !result.Success {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: result.Message}
	}
	if result.Data == nil {
		return nil, errors.New("formclient: response missing lead data")
	}
	return result.Data, nil
}
