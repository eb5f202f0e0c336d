package refdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/myhometown/missionary-import/internal/models"
)

// Client reads reference lists from the backend API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a client for the API at baseURL. token, when set, is
// sent as a bearer token.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// envelope mirrors the API response wrapper.
type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Cities fetches GET /api/database/cities.
func (c *Client) Cities(ctx context.Context) ([]models.City, error) {
	var cities []models.City
	if err := c.get(ctx, "/api/database/cities", &cities); err != nil {
		return nil, err
	}
	return cities, nil
}

// Communities fetches GET /api/database/communities.
func (c *Client) Communities(ctx context.Context) ([]models.Community, error) {
	var communities []models.Community
	if err := c.get(ctx, "/api/database/communities", &communities); err != nil {
		return nil, err
	}
	return communities, nil
}

// Missionaries fetches GET /api/database/missionaries, the full record set.
func (c *Client) Missionaries(ctx context.Context) ([]models.Missionary, error) {
	var missionaries []models.Missionary
	if err := c.get(ctx, "/api/database/missionaries", &missionaries); err != nil {
		return nil, err
	}
	return missionaries, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("GET %s: read body: %w", path, err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("GET %s: status %d: decode response: %w", path, resp.StatusCode, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 || env.Status != "success" {
		msg := strings.TrimSpace(string(body))
		if env.Error != nil {
			msg = env.Error.Message
		}
		return fmt.Errorf("GET %s: status %d: %s", path, resp.StatusCode, msg)
	}

	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("GET %s: decode data: %w", path, err)
	}
	return nil
}
