package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dgallion1/patentdraft/internal/retry"
)

// Client queries a remote patent search service over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *slog.Logger
	policy     retry.Policy
}

func NewClient(baseURL, apiKey string, log *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

// searchResponse is the body of GET /search.
type searchResponse struct {
	Results []Record `json:"results"`
}

// Search runs GET /search?q=...&k=... and retries transient failures.
func (c *Client) Search(ctx context.Context, query string, k int) ([]Record, error) {
	return retry.Do(ctx, c.policy, c.log, func(ctx context.Context) ([]Record, error) {
		return c.search(ctx, query, k)
	})
}

func (c *Client) search(ctx context.Context, query string, k int) ([]Record, error) {
	u := c.baseURL + "/search?q=" + url.QueryEscape(query)
	if k > 0 {
		u += "&k=" + strconv.Itoa(k)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &retry.RetryableError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("search %q: status %d: %s", query, resp.StatusCode, string(respBody))
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}
	if k > 0 && len(result.Results) > k {
		result.Results = result.Results[:k]
	}
	return result.Results, nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
