package ws

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/zylo-music/zylo/internal/core"
	"github.com/zylo-music/zylo/internal/domain"
)

// envelope is the wire frame for both directions.
type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Hub implements core.Publisher and core.Membership over live websocket
// connections. Payloads are marshalled synchronously in the publishing
// call, so a handler that publishes while holding a space lock gets its
// frames serialized in causal order.
type Hub struct {
	mu      sync.RWMutex
	conns   map[core.ConnID]*Conn
	members map[domain.SpaceName]map[core.ConnID]struct{}
}

func NewHub() *Hub {
	return &Hub{
		conns:   make(map[core.ConnID]*Conn),
		members: make(map[domain.SpaceName]map[core.ConnID]struct{}),
	}
}

func (h *Hub) Add(id core.ConnID, c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[id] = c
}

// Remove forgets the connection and every space subscription it held.
func (h *Hub) Remove(id core.ConnID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, id)
	for _, set := range h.members {
		delete(set, id)
	}
}

func (h *Hub) Join(conn core.ConnID, space domain.SpaceName) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.members[space]
	if !ok {
		set = make(map[core.ConnID]struct{})
		h.members[space] = set
	}
	set[conn] = struct{}{}
}

func (h *Hub) Leave(conn core.ConnID, space domain.SpaceName) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.members[space]; ok {
		delete(set, conn)
	}
}

func (h *Hub) ToSpace(space domain.SpaceName, event string, payload any) {
	frame, ok := h.marshal(event, payload)
	if !ok {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id := range h.members[space] {
		h.deliver(id, event, frame)
	}
}

func (h *Hub) ToConn(conn core.ConnID, event string, payload any) {
	frame, ok := h.marshal(event, payload)
	if !ok {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	h.deliver(conn, event, frame)
}

func (h *Hub) ToAll(event string, payload any) {
	frame, ok := h.marshal(event, payload)
	if !ok {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id := range h.conns {
		h.deliver(id, event, frame)
	}
}

func (h *Hub) marshal(event string, payload any) ([]byte, bool) {
	frame, err := json.Marshal(envelope{Event: event, Data: payload})
	if err != nil {
		log.Error().Err(err).Str("module", "ws.hub").Str("event", event).Msg("marshal event")
		return nil, false
	}
	return frame, true
}

// deliver expects h.mu to be held at least for reading.
func (h *Hub) deliver(id core.ConnID, event string, frame []byte) {
	c, ok := h.conns[id]
	if !ok {
		return
	}
	if err := c.TrySend(frame); err != nil {
		log.Warn().Err(err).Str("module", "ws.hub").Str("conn", string(id)).Str("event", event).Msg("frame dropped")
	}
}
