package meteostat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

type mapCache struct {
	entries map[string][]byte
	sets    int
}

func (m *mapCache) Get(key string, _ time.Duration) ([]byte, bool, error) {
	payload, ok := m.entries[key]
	return payload, ok, nil
}

func (m *mapCache) Set(key string, payload []byte) error {
	if m.entries == nil {
		m.entries = make(map[string][]byte)
	}
	m.entries[key] = payload
	m.sets++
	return nil
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write(gzipped(t, "payload"))
	}))
	defer srv.Close()

	c := NewClient(WithEndpoint(srv.URL), WithHTTPClient(srv.Client()))
	c.backoff.initialInterval = time.Millisecond
	c.backoff.maxInterval = time.Millisecond

	body, err := c.fetch(context.Background(), "daily/X.csv.gz")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if string(body) != "payload" {
		t.Errorf("unexpected payload: %q", body)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestFetchDoesNotRetryNotFound(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient(WithEndpoint(srv.URL), WithHTTPClient(srv.Client()))
	c.backoff.initialInterval = time.Millisecond

	if _, err := c.fetch(context.Background(), "daily/X.csv.gz"); err == nil {
		t.Fatal("expected error for 404")
	}
	if calls.Load() != 1 {
		t.Errorf("expected single attempt for 404, got %d", calls.Load())
	}
}

func TestFetchUsesCache(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write(gzipped(t, "fresh"))
	}))
	defer srv.Close()

	cache := &mapCache{}
	c := NewClient(WithEndpoint(srv.URL), WithHTTPClient(srv.Client()), WithCache(cache))

	for i := 0; i < 2; i++ {
		body, err := c.fetch(context.Background(), "daily/X.csv.gz")
		if err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
		if string(body) != "fresh" {
			t.Errorf("unexpected payload: %q", body)
		}
	}

	if calls.Load() != 1 {
		t.Errorf("expected one network download, got %d", calls.Load())
	}
	if cache.sets != 1 {
		t.Errorf("expected one cache write, got %d", cache.sets)
	}
}

func TestReadBodyPlainPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("plain"))
	}))
	defer srv.Close()

	c := NewClient(WithEndpoint(srv.URL), WithHTTPClient(srv.Client()))
	body, err := c.fetch(context.Background(), "stations/lite.json.gz")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if string(body) != "plain" {
		t.Errorf("unexpected payload: %q", body)
	}
}
