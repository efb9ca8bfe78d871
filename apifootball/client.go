package apifootball

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	// DefaultBaseURL is the default API base URL
	DefaultBaseURL = "https://v3.football.api-sports.io"

	// DefaultTimeout is the default HTTP client timeout
	DefaultTimeout = 30 * time.Second
)

// Client represents the API-Football REST client
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Config holds the configuration for the API client
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NewClient creates a new API-Football client
func NewClient(apiKey string) *Client {
	return NewClientWithConfig(Config{
		BaseURL: DefaultBaseURL,
		APIKey:  apiKey,
		Timeout: DefaultTimeout,
	})
}

// NewClientWithConfig creates a new client with custom configuration
func NewClientWithConfig(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}

	return &Client{
		baseURL: config.BaseURL,
		apiKey:  config.APIKey,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// envelope is the standard API-Football response wrapper
type envelope struct {
	Get      string          `json:"get"`
	Errors   json.RawMessage `json:"errors"`
	Results  int             `json:"results"`
	Response json.RawMessage `json:"response"`
}

// doRequest performs an HTTP request and unwraps the response envelope
func (c *Client) doRequest(method, endpoint string, params url.Values) (*envelope, error) {
	u, err := url.Parse(c.baseURL + endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	if params != nil {
		u.RawQuery = params.Encode()
	}

	req, err := http.NewRequest(method, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("x-apisports-key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal envelope: %w", err)
	}

	if apiErr := parseAPIErrors(env.Errors); apiErr != nil {
		return nil, apiErr
	}

	return &env, nil
}

// get performs a GET request
func (c *Client) get(endpoint string, params url.Values) (*envelope, error) {
	return c.doRequest(http.MethodGet, endpoint, params)
}

// APIError represents an API error response.
// API-Football reports errors as either an empty array or a
// field-to-message object inside the envelope.
type APIError struct {
	Fields map[string]string
}

// Error implements the error interface
func (e *APIError) Error() string {
	for field, msg := range e.Fields {
		return fmt.Sprintf("API error on %s: %s", field, msg)
	}
	return "API error"
}

// parseAPIErrors interprets the polymorphic errors field of the envelope
func parseAPIErrors(raw json.RawMessage) *APIError {
	if len(raw) == 0 {
		return nil
	}

	// Empty array means no error
	var asList []interface{}
	if err := json.Unmarshal(raw, &asList); err == nil {
		return nil
	}

	var asMap map[string]string
	if err := json.Unmarshal(raw, &asMap); err == nil && len(asMap) > 0 {
		return &APIError{Fields: asMap}
	}

	return nil
}
