package integrations

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/pipelock/pkg/cache"
)

func TestGetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name": "flask"}`))
	}))
	defer server.Close()

	c := NewClient(cache.NullCache{}, 0, nil)
	var out struct {
		Name string `json:"name"`
	}
	if err := c.GetJSON(context.Background(), server.URL, &out); err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}
	if out.Name != "flask" {
		t.Errorf("name = %q, want flask", out.Name)
	}
}

func TestGetJSONNotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	c := NewClient(cache.NullCache{}, 0, nil)
	err := c.GetJSON(context.Background(), server.URL, &struct{}{})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetJSONClientError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	c := NewClient(cache.NullCache{}, 0, nil)
	err := c.GetJSON(context.Background(), server.URL, &struct{}{})
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("expected ErrNetwork, got %v", err)
	}
	if cache.IsRetryable(err) {
		t.Error("4xx responses must not be retried")
	}
}

func TestGetJSONHeaders(t *testing.T) {
	var got atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.Header.Get("User-Agent"))
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := NewClient(cache.NullCache{}, 0, map[string]string{"User-Agent": "pipelock"})
	if err := c.GetJSON(context.Background(), server.URL, &struct{}{}); err != nil {
		t.Fatal(err)
	}
	if got.Load() != "pipelock" {
		t.Errorf("user agent = %v", got.Load())
	}
}

func TestGetJSONUsesCache(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"name": "flask"}`))
	}))
	defer server.Close()

	backend, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := NewClient(backend, time.Hour, nil)

	var out struct{ Name string }
	for i := 0; i < 2; i++ {
		if err := c.GetJSON(context.Background(), server.URL, &out); err != nil {
			t.Fatal(err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("server hit %d times, want 1", calls.Load())
	}
}
