// Package karaoke is a thin client for the external separation/alignment
// service. The service does the heavy lifting and returns URLs to hosted
// assets; this client only normalizes names and caches results.
package karaoke

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zylo-music/zylo/internal/domain"
)

var ErrEmptyName = errors.New("song name cannot be empty")

type Client struct {
	base string
	http *http.Client

	mu    sync.Mutex
	cache map[string]domain.KaraokeAssets
}

func NewClient(base string) *Client {
	return &Client{
		base:  strings.TrimRight(base, "/"),
		http:  &http.Client{Timeout: 5 * time.Minute},
		cache: make(map[string]domain.KaraokeAssets),
	}
}

// Ensure returns karaoke assets for the requested song, generating them
// on first request. Results are cached by normalized title so repeated
// requests for the same song never hit the inference service twice; the
// caller-facing display name keeps the original casing.
func (c *Client) Ensure(ctx context.Context, rawName string) (*domain.KaraokeAssets, error) {
	normalized := domain.NormalizeTitle(rawName)
	if normalized == "" {
		return nil, ErrEmptyName
	}
	display := strings.TrimSpace(rawName)

	c.mu.Lock()
	if assets, ok := c.cache[normalized]; ok {
		c.mu.Unlock()
		assets.DisplayName = display
		return &assets, nil
	}
	c.mu.Unlock()

	body, err := json.Marshal(map[string]string{"song_name": normalized})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/separate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("karaoke service: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("karaoke service returned %d", resp.StatusCode)
	}

	var assets domain.KaraokeAssets
	if err := json.NewDecoder(resp.Body).Decode(&assets); err != nil {
		return nil, fmt.Errorf("karaoke response: %w", err)
	}

	c.mu.Lock()
	c.cache[normalized] = assets
	c.mu.Unlock()
	log.Info().Str("module", "karaoke").Str("song", normalized).Msg("assets generated")

	assets.DisplayName = display
	return &assets, nil
}
