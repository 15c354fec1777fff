package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"admission-analytics/internal/analytics"
)

// AdmissionsPath is the analytics endpoint served by the API
const AdmissionsPath = "/api/v1/analytics/admissions"

// HealthPath is the health check endpoint served by the API
const HealthPath = "/api/health"

// RequestIDHeader carries the per-request correlation id
const RequestIDHeader = "X-Request-ID"

// Fetcher retrieves one admission analytics snapshot per call
type Fetcher interface {
	FetchAdmissionAnalytics(ctx context.Context) (*analytics.AdmissionAnalytics, error)
}

// FetcherFunc adapts a plain function to the Fetcher interface
type FetcherFunc func(ctx context.Context) (*analytics.AdmissionAnalytics, error)

// FetchAdmissionAnalytics calls f(ctx)
func (f FetcherFunc) FetchAdmissionAnalytics(ctx context.Context) (*analytics.AdmissionAnalytics, error) {
	return f(ctx)
}

// Client handles HTTP requests to the admission analytics API
type Client struct {
	baseURL    string
	httpClient *http.Client
	config     *ClientConfig
}

// ClientConfig configures the API client behavior
type ClientConfig struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string

	// HTTPClient overrides the transport; Timeout is ignored when set
	HTTPClient *http.Client
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// NewClient creates a new API client
func NewClient(config *ClientConfig) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if config.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	parsed, err := url.Parse(config.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid base URL: %s", config.BaseURL)
	}
	if config.HTTPClient == nil && config.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive")
	}

	if config.UserAgent == "" {
		config.UserAgent = "admission-analytics/1.0"
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: config.Timeout,
		}
	}

	return &Client{
		baseURL:    strings.TrimSuffix(config.BaseURL, "/"),
		httpClient: httpClient,
		config:     config,
	}, nil
}

// FetchAdmissionAnalytics performs exactly one GET against the admissions
// endpoint. It never retries or caches; failures come back as *NetworkError
// or *MalformedResponseError.
func (c *Client) FetchAdmissionAnalytics(ctx context.Context) (*analytics.AdmissionAnalytics, error) {
	endpoint := c.baseURL + AdmissionsPath
	requestID := uuid.NewString()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &NetworkError{URL: endpoint, RequestID: requestID, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set(RequestIDHeader, requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: endpoint, RequestID: requestID, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{URL: endpoint, RequestID: requestID, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &NetworkError{
			URL:        endpoint,
			RequestID:  requestID,
			StatusCode: resp.StatusCode,
			Err:        errors.New(statusMessage(resp.StatusCode, body)),
		}
	}

	snapshot, err := decodeSnapshot(body)
	if err != nil {
		return nil, &MalformedResponseError{URL: endpoint, RequestID: requestID, Err: err}
	}

	return snapshot, nil
}

// wireSnapshot mirrors analytics.AdmissionAnalytics with pointer fields so
// that missing or null members can be told apart from zero values
type wireSnapshot struct {
	TotalApplicants        *int                      `json:"totalApplicants"`
	VerifiedApplicants     *int                      `json:"verifiedApplicants"`
	RejectedApplicants     *int                      `json:"rejectedApplicants"`
	ApplicationsPerProgram *[]analytics.ProgramCount `json:"applicationsPerProgram"`
	ApplicationTrends      *[]analytics.TrendPoint   `json:"applicationTrends"`
}

// decodeSnapshot parses and validates a response body
func decodeSnapshot(body []byte) (*analytics.AdmissionAnalytics, error) {
	var wire wireSnapshot
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	var missing []string
	if wire.TotalApplicants == nil {
		missing = append(missing, "totalApplicants")
	}
	if wire.VerifiedApplicants == nil {
		missing = append(missing, "verifiedApplicants")
	}
	if wire.RejectedApplicants == nil {
		missing = append(missing, "rejectedApplicants")
	}
	if wire.ApplicationsPerProgram == nil {
		missing = append(missing, "applicationsPerProgram")
	}
	if wire.ApplicationTrends == nil {
		missing = append(missing, "applicationTrends")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing fields: %s", strings.Join(missing, ", "))
	}

	snapshot := &analytics.AdmissionAnalytics{
		TotalApplicants:        *wire.TotalApplicants,
		VerifiedApplicants:     *wire.VerifiedApplicants,
		RejectedApplicants:     *wire.RejectedApplicants,
		ApplicationsPerProgram: *wire.ApplicationsPerProgram,
		ApplicationTrends:      *wire.ApplicationTrends,
	}
	if err := snapshot.Validate(); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// HealthCheck verifies the API is accessible
func (c *Client) HealthCheck(ctx context.Context) error {
	endpoint := c.baseURL + HealthPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}

	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{URL: endpoint, Err: fmt.Errorf("health check request failed: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &NetworkError{
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("health check failed: %s", statusMessage(resp.StatusCode, body)),
		}
	}

	return nil
}

// GetBaseURL returns the configured base URL
func (c *Client) GetBaseURL() string {
	return c.baseURL
}

// statusMessage builds a readable message from a non-200 response, preferring
// the server's JSON error body
func statusMessage(status int, body []byte) string {
	var errorResp ErrorResponse
	if err := json.Unmarshal(body, &errorResp); err == nil && errorResp.Error != "" {
		return fmt.Sprintf("HTTP %d: %s", status, errorResp.Error)
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		text = http.StatusText(status)
	}
	return fmt.Sprintf("HTTP %d: %s", status, text)
}
