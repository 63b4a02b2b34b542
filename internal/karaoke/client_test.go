package karaoke

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func newFakeService(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/separate" {
			t.Errorf("path = %s, want /separate", r.URL.Path)
		}
		var req struct {
			SongName string `json:"song_name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		hits.Add(1)
		json.NewEncoder(w).Encode(map[string]string{
			"vocals_url":       "/static/" + req.SongName + "/vocals.mp3",
			"instrumental_url": "/static/" + req.SongName + "/instrumental.mp3",
			"lyrics_url":       "/static/" + req.SongName + "/lyrics.json",
		})
	}))
}

func TestEnsure_GeneratesAndCaches(t *testing.T) {
	var hits atomic.Int32
	srv := newFakeService(t, &hits)
	defer srv.Close()

	c := NewClient(srv.URL)
	ctx := context.Background()

	assets, err := c.Ensure(ctx, "  Yesterday ")
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if assets.DisplayName != "Yesterday" {
		t.Errorf("display name = %q", assets.DisplayName)
	}
	if assets.VocalsURL != "/static/yesterday/vocals.mp3" {
		t.Errorf("vocals url = %q", assets.VocalsURL)
	}

	// Different casing of the same title is a cache hit.
	again, err := c.Ensure(ctx, "YESTERDAY")
	if err != nil {
		t.Fatalf("Ensure (cached): %v", err)
	}
	if again.DisplayName != "YESTERDAY" {
		t.Errorf("cached display name = %q", again.DisplayName)
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("service hits = %d, want 1", got)
	}
}

func TestEnsure_EmptyName(t *testing.T) {
	c := NewClient("http://unused")
	if _, err := c.Ensure(context.Background(), "   "); !errors.Is(err, ErrEmptyName) {
		t.Errorf("err = %v, want ErrEmptyName", err)
	}
}

func TestEnsure_ServiceFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model crashed", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.Ensure(context.Background(), "Yesterday"); err == nil {
		t.Fatal("expected error on 500")
	}
	// A failed generation must not poison the cache.
	if len(c.cache) != 0 {
		t.Errorf("cache = %v, want empty", c.cache)
	}
}
