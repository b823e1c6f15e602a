package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-shopadmin/catalog"
)

// DefaultBackendURL is used when no backend URL is configured.
const DefaultBackendURL = "http://localhost:8000"

// Client talks to the cache and search backend.
type Client struct {
	BaseURL string
	Project string
	HTTP    *http.Client
	// Concurrency bounds parallel chunk fetches. Defaults to 4.
	Concurrency int
	Logger      catalog.Logger
}

// NewClient builds a client with a timeout-bound HTTP client.
func NewClient(baseURL, project string, timeout time.Duration) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBackendURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Project: project,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

type keysResponse struct {
	Keys []string `json:"keys"`
}

type chunkResponse struct {
	Data []any `json:"data"`
}

// SearchRequest is the search API body.
type SearchRequest struct {
	Project     string `json:"project"`
	Table       string `json:"table"`
	Query       string `json:"query"`
	HitsPerPage int    `json:"hitsPerPage"`
	Page        int    `json:"page"`
}

type searchResponse struct {
	Hits []Hit `json:"hits"`
}

// Hit is one raw search result.
type Hit map[string]any

// ObjectID returns the hit's objectID as a string.
func (h Hit) ObjectID() string {
	switch v := h["objectID"].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return catalog.FormatNumber(v)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

// FetchKeys lists the chunk keys for a table.
func (c *Client) FetchKeys(ctx context.Context, table string) ([]string, error) {
	var out keysResponse
	if err := c.getJSON(ctx, c.cacheURL(table, ""), &out); err != nil {
		return nil, err
	}
	return out.Keys, nil
}

// FetchChunk reads the raw records of chunk n.
func (c *Client) FetchChunk(ctx context.Context, table string, n int) ([]any, error) {
	var out chunkResponse
	if err := c.getJSON(ctx, c.cacheURL(table, "chunk:"+strconv.Itoa(n)), &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// FetchTable fetches every chunk of a table in parallel and merges them in
// ascending chunk number order.
func (c *Client) FetchTable(ctx context.Context, table string) ([]any, error) {
	keys, err := c.FetchKeys(ctx, table)
	if err != nil {
		return nil, err
	}
	chunks := ChunkNumbers(keys, catalog.LoggerOrNop(c.Logger))

	results := make([][]any, len(chunks))
	group, gctx := errgroup.WithContext(ctx)
	limit := c.Concurrency
	if limit <= 0 {
		limit = 4
	}
	group.SetLimit(limit)
	for i, n := range chunks {
		group.Go(func() error {
			data, err := c.FetchChunk(gctx, table, n)
			if err != nil {
				return err
			}
			results[i] = data
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, chunk := range results {
		total += len(chunk)
	}
	merged := make([]any, 0, total)
	for _, chunk := range results {
		merged = append(merged, chunk...)
	}
	return merged, nil
}

// ChunkNumbers extracts the final colon segment of each key as a chunk
// number, sorted ascending and deduplicated. Non-numeric keys are skipped.
func ChunkNumbers(keys []string, logger catalog.Logger) []int {
	seen := map[int]bool{}
	out := make([]int, 0, len(keys))
	for _, key := range keys {
		segment := key
		if idx := strings.LastIndex(key, ":"); idx >= 0 {
			segment = key[idx+1:]
		}
		n, err := strconv.Atoi(strings.TrimSpace(segment))
		if err != nil {
			catalog.LoggerOrNop(logger).Debugf("remote: skipping cache key %q", key)
			continue
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// Search posts a query to the search API.
func (c *Client) Search(ctx context.Context, req SearchRequest) ([]Hit, error) {
	if req.Project == "" {
		req.Project = c.Project
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, catalog.NewError(catalog.KindValidation, "search request invalid", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base()+"/search/query", bytes.NewReader(payload))
	if err != nil {
		return nil, catalog.NewError(catalog.KindInternal, "search request failed", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var out searchResponse
	if err := c.do(httpReq, &out); err != nil {
		return nil, err
	}
	return out.Hits, nil
}

func (c *Client) cacheURL(table, key string) string {
	q := url.Values{}
	q.Set("project", c.Project)
	q.Set("table", table)
	if key != "" {
		q.Set("key", key)
	}
	return c.base() + "/cache/data?" + q.Encode()
}

func (c *Client) base() string {
	if c == nil || strings.TrimSpace(c.BaseURL) == "" {
		return DefaultBackendURL
	}
	return strings.TrimRight(c.BaseURL, "/")
}

func (c *Client) getJSON(ctx context.Context, target string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return catalog.NewError(catalog.KindInternal, "cache request failed", err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return catalog.NewError(catalog.KindExternal, "backend request failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, resp.Body)
		return catalog.NewError(catalog.KindExternal, "backend responded "+resp.Status, nil)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return catalog.NewError(catalog.KindExternal, "backend response invalid", err)
	}
	return nil
}
