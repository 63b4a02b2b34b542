package core

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/zylo-music/zylo/internal/domain"
)

// Registry owns the process-wide space map and the shared QueueEntry id
// counter. Spaces are created lazily and live for the process lifetime.
type Registry struct {
	mu     sync.RWMutex
	spaces map[domain.SpaceName]*Space
	nextID atomic.Int64
}

func NewRegistry() *Registry {
	return &Registry{
		spaces: make(map[domain.SpaceName]*Space),
	}
}

// Ensure returns the space with the given name, creating it if absent.
// The creator seeds the admin set only on creation; on an existing space
// it is ignored. The second result reports whether the space was created.
func (r *Registry) Ensure(name domain.SpaceName, creator string) (*Space, bool) {
	r.mu.RLock()
	s, ok := r.spaces[name]
	r.mu.RUnlock()
	if ok {
		return s, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok = r.spaces[name]; ok {
		return s, false
	}
	s = newSpace(name, creator)
	r.spaces[name] = s
	log.Info().Str("module", "core.registry").Str("space", string(name)).Str("creator", creator).Msg("space created")
	return s, true
}

func (r *Registry) Get(name domain.SpaceName) (*Space, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.spaces[name]
	return s, ok
}

// Names lists all space names, sorted for a stable wire representation.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.spaces))
	for name := range r.spaces {
		out = append(out, string(name))
	}
	sort.Strings(out)
	return out
}

// All snapshots the current space set. Callers iterate without holding the
// registry lock, so a space created mid-iteration is simply picked up on
// the next pass.
func (r *Registry) All() []*Space {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Space, 0, len(r.spaces))
	for _, s := range r.spaces {
		out = append(out, s)
	}
	return out
}

// NextEntryID allocates a process-wide unique leaderboard entry id.
func (r *Registry) NextEntryID() int64 {
	return r.nextID.Add(1)
}

// DropConnection sweeps every space's roster after a disconnect. Each
// space does its own locked update and publishes its member list only if
// the connection was actually present.
func (r *Registry) DropConnection(pub Publisher, conn ConnID) {
	for _, s := range r.All() {
		s.DropConn(pub, conn)
	}
}
