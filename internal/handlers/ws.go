package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/impostor-party/server/internal/events"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxFrameSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The engine does its own membership checks; origin policy belongs
	// to the deployment in front of this server.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWS is the bidirectional per-user event channel. The client
// identifies itself with a uid query parameter (minted here on first
// contact); frames are JSON {action, roomId, payload}.
func (ctx *Context) HandleWS(w http.ResponseWriter, r *http.Request) {
	uid := r.URL.Query().Get("uid")
	if uid == "" {
		uid = uuid.New().String()
	}
	connID := uuid.New().String()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		ctx.Log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	// Single active session per identity: tell the previous connection
	// it has been superseded before its channel is replaced.
	if _, had := ctx.Sessions.Register(uid, connID); had {
		ctx.Hub.Push(uid, events.Event{Name: events.EventSuperseded})
	}
	ch := ctx.Hub.Register(uid)
	go ctx.writePump(conn, ch)

	ctx.Log.Debug().Str("uid", uid).Str("conn", connID).Msg("connection opened")

	// Session restore: an existing room member gets their state back and
	// any pending disconnect removal is cancelled — unless they just
	// explicitly left, in which case the reconnect must not rejoin them.
	if rc, ok := ctx.Rooms.FindByMember(uid); ok {
		if ctx.Sessions.RecentlyLeft(uid) {
			rc.RemovePlayer(uid)
		} else {
			ctx.Sessions.Reconnected(uid)
			if view, err := rc.GetStateFor(uid); err == nil {
				ctx.Hub.Push(uid, events.Event{Name: events.EventState, Data: view})
			}
		}
	}

	ctx.readPump(conn, uid, connID, ch)
}

// readPump consumes inbound frames until the socket drops, then starts
// the disconnect grace period.
func (ctx *Context) readPump(conn *websocket.Conn, uid, connID string, ch chan events.Event) {
	defer func() {
		ctx.Hub.Unregister(uid, ch)
		roomCode := ""
		if rc, ok := ctx.Rooms.FindByMember(uid); ok {
			roomCode = rc.Code()
		}
		ctx.Sessions.Disconnected(uid, connID, roomCode, ctx.removeAfterGrace)
		conn.Close()
		ctx.Log.Debug().Str("uid", uid).Str("conn", connID).Msg("connection closed")
	}()

	conn.SetReadLimit(maxFrameSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		ctx.Sessions.Heartbeat(uid)
		return nil
	})

	limiter := rate.NewLimiter(rate.Limit(5), 10)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if !ctx.Sessions.IsActive(uid, connID) {
			return
		}
		if !limiter.Allow() {
			continue
		}
		var frame clientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			ctx.pushError(uid, "", err)
			continue
		}
		ctx.Sessions.Heartbeat(uid)
		if err := ctx.dispatch(uid, frame); err != nil {
			ctx.pushError(uid, frame.Action, err)
		}
	}
}

// writePump drains the player's outbound channel onto the socket and
// keeps the connection alive with pings. Exits when the channel closes
// (superseded or unregistered) or a write fails.
func (ctx *Context) writePump(conn *websocket.Conn, ch chan events.Event) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()
	for {
		select {
		case ev, ok := <-ch:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "superseded"))
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// removeAfterGrace fires when a disconnect grace window expires
func (ctx *Context) removeAfterGrace(uid, roomCode string) {
	rc, ok := ctx.Rooms.Get(roomCode)
	if !ok {
		return
	}
	ctx.Log.Info().Str("uid", uid).Str("room", roomCode).Msg("disconnect grace expired")
	rc.RemovePlayer(uid)
}

// pushError reports a failed action to the acting client only
func (ctx *Context) pushError(uid, action string, err error) {
	ctx.Hub.Push(uid, events.Event{
		Name: events.EventError,
		Data: events.ErrorData{Action: action, Message: err.Error()},
	})
}
