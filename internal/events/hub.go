package events

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	// channel buffer per connected client
	clientBuffer = 32
	// how long a push waits on a slow client before dropping the frame
	pushTimeout = time.Second
)

// Hub routes outbound events to the single active connection of each
// identity. Connections register a buffered channel; a slow consumer
// loses frames rather than blocking a room.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]chan Event
	log     zerolog.Logger
}

// NewHub creates an empty hub
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{clients: make(map[string]chan Event), log: log}
}

// Register attaches uid's outbound channel, replacing any previous one.
// The previous channel, if any, is closed so its write pump exits.
func (h *Hub) Register(uid string) chan Event {
	ch := make(chan Event, clientBuffer)
	h.mu.Lock()
	if prev, ok := h.clients[uid]; ok {
		close(prev)
	}
	h.clients[uid] = ch
	h.mu.Unlock()
	return ch
}

// Unregister detaches uid's channel if it is still the registered one
func (h *Hub) Unregister(uid string, ch chan Event) {
	h.mu.Lock()
	if current, ok := h.clients[uid]; ok && current == ch {
		delete(h.clients, uid)
		close(current)
	}
	h.mu.Unlock()
}

// Push delivers one event to uid. Returns false if the user has no
// connection or the frame was dropped on timeout.
func (h *Hub) Push(uid string, ev Event) bool {
	h.mu.RLock()
	ch, ok := h.clients[uid]
	h.mu.RUnlock()
	if !ok {
		return false
	}
	select {
	case ch <- ev:
		return true
	case <-time.After(pushTimeout):
		h.log.Warn().Str("uid", uid).Str("event", ev.Name).Msg("dropped event for slow client")
		return false
	}
}

// BroadcastPersonalized pushes a per-player event to each listed uid.
// The build func runs outside any room lock held by the caller.
func (h *Hub) BroadcastPersonalized(uids []string, build func(uid string) (Event, bool)) {
	for _, uid := range uids {
		if ev, ok := build(uid); ok {
			h.Push(uid, ev)
		}
	}
}

// Connected reports whether uid currently has a registered connection
func (h *Hub) Connected(uid string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[uid]
	return ok
}
