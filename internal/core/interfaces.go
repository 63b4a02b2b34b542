package core

import (
	"context"

	"github.com/zylo-music/zylo/internal/domain"
)

// ConnID identifies one client connection for the lifetime of its socket.
type ConnID string

// Publisher fans events out to every connection joined to a space, or to
// exactly one connection. Implementations must serialize the payload
// synchronously, so a caller may publish while holding a space lock and the
// delivered frames observe the handler's causal order.
type Publisher interface {
	ToSpace(space domain.SpaceName, event string, payload any)
	ToConn(conn ConnID, event string, payload any)
	ToAll(event string, payload any)
}

// Membership is the transport-side space subscription primitive.
// Owned by the adapter; the core only asks to join or leave.
type Membership interface {
	Join(conn ConnID, space domain.SpaceName)
	Leave(conn ConnID, space domain.SpaceName)
}

// Catalog is the read-only external song catalog.
type Catalog interface {
	// LookupTitle resolves an exact, case-insensitive title match.
	// Returns ErrSongNotFound on a miss.
	LookupTitle(ctx context.Context, title string) (*domain.CatalogSong, error)
}

// MediaResolver turns a catalog id into a URL clients can play.
// Must not block: it is called while a space lock is held.
type MediaResolver interface {
	StreamURL(catalogID int64) string
}
