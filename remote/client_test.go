package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"
)

func newCacheServer(t *testing.T, chunks map[string][]any, delays map[string]time.Duration) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cache/data" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.URL.Query().Get("project") != "shop" || r.URL.Query().Get("table") != "orders" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		key := r.URL.Query().Get("key")
		if key == "" {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"keys": []string{"shop:orders:chunk:10", "shop:orders:chunk:2", "shop:orders:meta", "shop:orders:chunk:1"},
			})
			return
		}
		if d := delays[key]; d > 0 {
			time.Sleep(d)
		}
		data, ok := chunks[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
	}))
}

func TestClientFetchTable_MergesInChunkOrder(t *testing.T) {
	chunks := map[string][]any{
		"chunk:1":  {map[string]any{"id": "a"}, map[string]any{"id": "b"}},
		"chunk:2":  {map[string]any{"id": "c"}},
		"chunk:10": {map[string]any{"id": "d"}},
	}
	// the first chunk is the slowest so arrival order differs from merge order
	srv := newCacheServer(t, chunks, map[string]time.Duration{"chunk:1": 30 * time.Millisecond})
	defer srv.Close()

	client := &Client{BaseURL: srv.URL, Project: "shop", HTTP: srv.Client(), Concurrency: 3}
	raws, err := client.FetchTable(context.Background(), "orders")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	var got []string
	for _, raw := range raws {
		got = append(got, raw.(map[string]any)["id"].(string))
	}
	if !reflect.DeepEqual(got, []string{"a", "b", "c", "d"}) {
		t.Fatalf("unexpected merge order: %v", got)
	}
}

func TestClientFetchTable_ChunkFailure(t *testing.T) {
	srv := newCacheServer(t, map[string][]any{"chunk:1": {}}, nil)
	defer srv.Close()

	client := &Client{BaseURL: srv.URL, Project: "shop", HTTP: srv.Client()}
	if _, err := client.FetchTable(context.Background(), "orders"); err == nil {
		t.Fatalf("expected error for missing chunk")
	}
}

func TestChunkNumbers(t *testing.T) {
	got := ChunkNumbers([]string{"x:chunk:3", "chunk:1", "x:chunk:3", "bad", "y:2"}, nil)
	if !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Fatalf("unexpected chunk numbers: %v", got)
	}
}

func TestClientSearch_PostsBody(t *testing.T) {
	var body SearchRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/search/query" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			w.WriteHeader(http.StatusUnsupportedMediaType)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"hits": []map[string]any{{"objectID": "p-9", "title": "Trail Runner"}},
		})
	}))
	defer srv.Close()

	client := &Client{BaseURL: srv.URL, Project: "shop", HTTP: srv.Client()}
	hits, err := client.Search(context.Background(), SearchRequest{Table: "products", Query: "trail", HitsPerPage: 20})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if body.Project != "shop" || body.Table != "products" || body.Query != "trail" || body.HitsPerPage != 20 {
		t.Fatalf("unexpected request body: %#v", body)
	}
	if len(hits) != 1 || hits[0].ObjectID() != "p-9" {
		t.Fatalf("unexpected hits: %#v", hits)
	}
}

func TestClientSearch_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := &Client{BaseURL: srv.URL, HTTP: srv.Client()}
	if _, err := client.Search(context.Background(), SearchRequest{Query: "x"}); err == nil {
		t.Fatalf("expected error on 502")
	}
}
