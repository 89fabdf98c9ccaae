// Package catalog looks up canonical container entities for publication
// venues. The lookup service is external; the core pipeline only depends on
// the narrow Client interface so it stays testable without a network.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// ErrNotFound signals that no container is linked to the requested ISSN.
// Callers treat this as a normal outcome, distinct from service failures.
var ErrNotFound = errors.New("container not found")

// Container is the canonical catalog entity representing a publication
// venue, distinct from a scanned collection's own publication record.
type Container struct {
	ISSNL       string `json:"issnl"`
	Ident       string `json:"ident"`
	WikidataQID string `json:"wikidata_qid"`
}

// Client resolves an ISSN linking identifier to a container entity.
type Client interface {
	LookupContainer(ctx context.Context, issnl string) (*Container, error)
}

// HTTPDoer abstracts http.Client.Do for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

type httpClient struct {
	baseURL string
	client  HTTPDoer
}

// NewHTTPClient constructs a catalog client against the given API base URL.
func NewHTTPClient(baseURL string, client HTTPDoer) Client {
	return &httpClient{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (c *httpClient) LookupContainer(ctx context.Context, issnl string) (*Container, error) {
	endpoint := fmt.Sprintf("%s/container/lookup?issnl=%s", c.baseURL, url.QueryEscape(issnl))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build container lookup request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("container lookup request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("issnl %s: %w", issnl, ErrNotFound)
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("container lookup for issnl %s returned %d: %s",
			issnl, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var container Container
	if err := json.NewDecoder(resp.Body).Decode(&container); err != nil {
		return nil, fmt.Errorf("decode container lookup response: %w", err)
	}
	if container.Ident == "" {
		return nil, errors.New("container lookup response missing ident")
	}
	return &container, nil
}
