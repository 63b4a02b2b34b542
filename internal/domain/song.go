// Package domain contains entity without logic, just meta-data
package domain

import "strings"

// CatalogSong is a row of the external song catalog.
type CatalogSong struct {
	ID     int64  `json:"id" db:"id"`
	Title  string `json:"title" db:"title"`
	Artist string `json:"artist" db:"artist_name"`
}

// QueueEntry is one suggested song on a space's leaderboard. Its ID is
// allocated from a single process-wide counter, so entries are unique
// across all spaces, not per-space.
type QueueEntry struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Artist      string `json:"artist"`
	Votes       int    `json:"votes"`
	SubmittedBy string `json:"submitted_by"`
	CatalogID   int64  `json:"catalog_id"`
	AudioURL    string `json:"audio_url,omitempty"`
}

// NormalizeTitle is the canonical form used for catalog lookups and
// karaoke caching.
func NormalizeTitle(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
