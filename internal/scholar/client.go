// Package scholar counts indexed article releases for cross-referencing
// scanned holdings against catalog completeness. The release index is an
// external search service; the pipeline depends only on the Client
// interface.
package scholar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ReleaseFilter selects releases by exact-term match. All four fields are
// required; partial filters never reach the service.
type ReleaseFilter struct {
	ContainerID string
	Year        int
	Volume      string
	Issue       string
}

// Client counts article releases matching an exact filter.
type Client interface {
	CountReleases(ctx context.Context, filter ReleaseFilter) (int, error)
}

// HTTPDoer abstracts http.Client.Do for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

type httpClient struct {
	baseURL string
	index   string
	client  HTTPDoer
}

// NewHTTPClient constructs a release-count client against the given search
// base URL and index name.
func NewHTTPClient(baseURL, index string, client HTTPDoer) Client {
	return &httpClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		index:   index,
		client:  client,
	}
}

type countQuery struct {
	Query struct {
		Bool struct {
			Filter []map[string]map[string]any `json:"filter"`
		} `json:"bool"`
	} `json:"query"`
}

func term(field string, value any) map[string]map[string]any {
	return map[string]map[string]any{"term": {field: value}}
}

func (c *httpClient) CountReleases(ctx context.Context, filter ReleaseFilter) (int, error) {
	var query countQuery
	query.Query.Bool.Filter = []map[string]map[string]any{
		term("container_id", filter.ContainerID),
		term("year", filter.Year),
		term("volume", filter.Volume),
		term("issue", filter.Issue),
	}

	body, err := json.Marshal(query)
	if err != nil {
		return 0, fmt.Errorf("marshal count query: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/_count", c.baseURL, c.index)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build count request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("release count request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return 0, fmt.Errorf("release count query returned %d: %s",
			resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var result struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("decode count response: %w", err)
	}
	if result.Count < 0 {
		return 0, fmt.Errorf("release count query returned negative count %d", result.Count)
	}
	return result.Count, nil
}
