package session

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	// HeartbeatInterval is the expected client ping cadence
	HeartbeatInterval = 25 * time.Second

	// recentActivityWindow classifies a disconnect: a heartbeat seen
	// within this window means the loss is likely transient (mobile
	// lock screen, brief network blip).
	recentActivityWindow = 2 * HeartbeatInterval

	// GraceRecentlyActive is the removal grace for transient losses
	GraceRecentlyActive = 5 * time.Minute

	// GraceIdle is the removal grace for connections already idle
	GraceIdle = time.Minute

	// LeaveWindow is how long an explicit leave blocks a silent rejoin,
	// covering a page reload racing the leave ack.
	LeaveWindow = 10 * time.Second
)

type pendingRemoval struct {
	timer    *time.Timer
	roomCode string
}

// Coordinator is the process-wide per-user connection bookkeeping:
// single active session per identity, heartbeat liveness, grace-period
// disconnect handling and the explicit-leave flag. It is the only
// cross-room shared mutable state and carries its own lock.
type Coordinator struct {
	mu          sync.Mutex
	activeConns map[string]string
	lastSeen    map[string]time.Time
	pending     map[string]*pendingRemoval
	leftUntil   map[string]time.Time
	log         zerolog.Logger
	now         func() time.Time
}

// NewCoordinator creates an empty coordinator
func NewCoordinator(log zerolog.Logger) *Coordinator {
	return &Coordinator{
		activeConns: make(map[string]string),
		lastSeen:    make(map[string]time.Time),
		pending:     make(map[string]*pendingRemoval),
		leftUntil:   make(map[string]time.Time),
		log:         log,
		now:         time.Now,
	}
}

// Register makes connID the single active session for uid. The previous
// connection id, if different, is returned so the transport can signal
// and close it before the new one takes over.
func (c *Coordinator) Register(uid, connID string) (prevConnID string, hadPrev bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev, ok := c.activeConns[uid]
	if ok && prev != connID {
		prevConnID, hadPrev = prev, true
		c.log.Info().Str("uid", uid).Msg("superseding previous session")
	}
	c.activeConns[uid] = connID
	c.lastSeen[uid] = c.now()
	return prevConnID, hadPrev
}

// IsActive reports whether connID is still uid's active session
func (c *Coordinator) IsActive(uid, connID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeConns[uid] == connID
}

// Heartbeat refreshes uid's liveness timestamp
func (c *Coordinator) Heartbeat(uid string) {
	c.mu.Lock()
	c.lastSeen[uid] = c.now()
	c.mu.Unlock()
}

// Disconnected handles a socket close for uid's connection connID. If it
// is still the active session, a removal timer is scheduled: the grace
// period depends on whether the identity was recently active. onExpire
// fires after the grace window unless a reconnection cancels it; it must
// re-enter the room's own serialization point.
func (c *Coordinator) Disconnected(uid, connID, roomCode string, onExpire func(uid, roomCode string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.activeConns[uid] != connID {
		// a newer session already took over
		return
	}
	delete(c.activeConns, uid)
	if roomCode == "" {
		return
	}

	grace := GraceIdle
	if seen, ok := c.lastSeen[uid]; ok && c.now().Sub(seen) <= recentActivityWindow {
		grace = GraceRecentlyActive
	}
	if prev, ok := c.pending[uid]; ok {
		prev.timer.Stop()
	}
	c.pending[uid] = &pendingRemoval{
		roomCode: roomCode,
		timer: time.AfterFunc(grace, func() {
			c.mu.Lock()
			removal, ok := c.pending[uid]
			if ok {
				delete(c.pending, uid)
			}
			c.mu.Unlock()
			if ok {
				onExpire(uid, removal.roomCode)
			}
		}),
	}
	c.log.Info().Str("uid", uid).Dur("grace", grace).Msg("disconnect grace started")
}

// Reconnected cancels uid's pending removal, restoring the player
// without them ever having left the roster. Returns true if a removal
// was pending.
func (c *Coordinator) Reconnected(uid string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	removal, ok := c.pending[uid]
	if !ok {
		return false
	}
	removal.timer.Stop()
	delete(c.pending, uid)
	c.log.Info().Str("uid", uid).Msg("reconnected within grace window")
	return true
}

// MarkLeft flags an explicit leave so an immediate reconnect does not
// silently rejoin. The flag self-expires after LeaveWindow.
func (c *Coordinator) MarkLeft(uid string) {
	c.mu.Lock()
	c.leftUntil[uid] = c.now().Add(LeaveWindow)
	if removal, ok := c.pending[uid]; ok {
		removal.timer.Stop()
		delete(c.pending, uid)
	}
	c.mu.Unlock()
}

// RecentlyLeft reports whether uid explicitly left within the window
func (c *Coordinator) RecentlyLeft(uid string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	until, ok := c.leftUntil[uid]
	if !ok {
		return false
	}
	if c.now().After(until) {
		delete(c.leftUntil, uid)
		return false
	}
	return true
}
