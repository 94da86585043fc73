package handlers

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/impostor-party/server/internal/events"
	"github.com/impostor-party/server/internal/game"
	"github.com/impostor-party/server/internal/models"
)

// clientFrame is one inbound action: (userId, action, payload)
type clientFrame struct {
	Action  string          `json:"action"`
	RoomID  string          `json:"roomId,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type createRoomPayload struct {
	Name    string             `json:"name"`
	Avatar  string             `json:"avatar,omitempty"`
	Options models.RoomOptions `json:"options"`
}

type joinRoomPayload struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

type targetPayload struct {
	TargetID string `json:"targetId"`
}

type votePayload struct {
	// nil retracts the pending vote
	TargetID *string `json:"targetId"`
}

type cluePayload struct {
	Text string `json:"text"`
}

type optionsPayload struct {
	Options models.RoomOptions `json:"options"`
}

type startMatchPayload struct {
	Options *models.RoomOptions `json:"options,omitempty"`
}

// dispatch routes one validated frame to the engine. Returned errors are
// user-attributable and go back to the acting client only.
func (ctx *Context) dispatch(uid string, frame clientFrame) error {
	switch frame.Action {
	case "heartbeat":
		ctx.Sessions.Heartbeat(uid)
		return nil

	case "createRoom":
		var p createRoomPayload
		if err := decode(frame.Payload, &p); err != nil {
			return err
		}
		return ctx.createRoom(uid, p)

	case "joinRoom":
		var p joinRoomPayload
		if err := decode(frame.Payload, &p); err != nil {
			return err
		}
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return fmt.Errorf("name is required")
		}
		rc, err := ctx.roomFor(frame.RoomID)
		if err != nil {
			return err
		}
		return rc.AddPlayer(game.UserInfo{UID: uid, DisplayName: name, AvatarRef: p.Avatar})

	case "leaveRoom":
		rc, err := ctx.roomFor(frame.RoomID)
		if err != nil {
			return err
		}
		ctx.Sessions.MarkLeft(uid)
		return rc.RemovePlayer(uid)

	case "kickPlayer":
		var p targetPayload
		if err := decode(frame.Payload, &p); err != nil {
			return err
		}
		rc, err := ctx.roomFor(frame.RoomID)
		if err != nil {
			return err
		}
		return rc.Kick(uid, p.TargetID)

	case "startMatch":
		var p startMatchPayload
		if len(frame.Payload) > 0 {
			if err := decode(frame.Payload, &p); err != nil {
				return err
			}
		}
		rc, err := ctx.roomFor(frame.RoomID)
		if err != nil {
			return err
		}
		return rc.StartMatch(uid, p.Options)

	case "castVote":
		var p votePayload
		if err := decode(frame.Payload, &p); err != nil {
			return err
		}
		rc, err := ctx.roomFor(frame.RoomID)
		if err != nil {
			return err
		}
		target := ""
		if p.TargetID != nil {
			target = *p.TargetID
		}
		return rc.CastVote(uid, target)

	case "submitClue":
		var p cluePayload
		if err := decode(frame.Payload, &p); err != nil {
			return err
		}
		text := strings.TrimSpace(p.Text)
		if text == "" {
			return fmt.Errorf("clue text is required")
		}
		rc, err := ctx.roomFor(frame.RoomID)
		if err != nil {
			return err
		}
		return rc.SubmitClue(uid, text)

	case "continueToNextRound":
		rc, err := ctx.roomFor(frame.RoomID)
		if err != nil {
			return err
		}
		return rc.ContinueToNextRound(uid)

	case "endMatch":
		rc, err := ctx.roomFor(frame.RoomID)
		if err != nil {
			return err
		}
		return rc.EndMatch(uid)

	case "playAgain":
		rc, err := ctx.roomFor(frame.RoomID)
		if err != nil {
			return err
		}
		return rc.PlayAgain(uid)

	case "leaveMatch":
		rc, err := ctx.roomFor(frame.RoomID)
		if err != nil {
			return err
		}
		return rc.LeaveMatch(uid)

	case "updateOptions":
		var p optionsPayload
		if err := decode(frame.Payload, &p); err != nil {
			return err
		}
		rc, err := ctx.roomFor(frame.RoomID)
		if err != nil {
			return err
		}
		return rc.UpdateOptions(uid, p.Options)

	case "getState":
		return ctx.pushState(uid, frame.RoomID)

	default:
		return fmt.Errorf("unknown action %q", frame.Action)
	}
}

func (ctx *Context) createRoom(uid string, p createRoomPayload) error {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return fmt.Errorf("name is required")
	}
	code := game.GetUniqueRoomCode(ctx.Rooms.Exists)
	rc := game.NewRoomController(code,
		game.UserInfo{UID: uid, DisplayName: name, AvatarRef: p.Avatar},
		p.Options, ctx.Words, newRoomRng(), ctx, ctx.Log)
	ctx.Rooms.Set(code, rc)
	ctx.Log.Info().Str("room", code).Str("host", uid).Msg("room created")
	ctx.RoomChanged(code)
	return nil
}

// pushState re-delivers the full projection to one player on demand
func (ctx *Context) pushState(uid, roomCode string) error {
	var rc *game.RoomController
	if roomCode != "" {
		var err error
		rc, err = ctx.roomFor(roomCode)
		if err != nil {
			return err
		}
	} else {
		var ok bool
		rc, ok = ctx.Rooms.FindByMember(uid)
		if !ok {
			return game.ErrRoomNotFound
		}
	}
	view, err := rc.GetStateFor(uid)
	if err != nil {
		return err
	}
	ctx.Hub.Push(uid, events.Event{Name: events.EventState, Data: view})
	return nil
}

func (ctx *Context) roomFor(code string) (*game.RoomController, error) {
	if code == "" {
		return nil, game.ErrRoomNotFound
	}
	rc, ok := ctx.Rooms.Get(strings.ToUpper(strings.TrimSpace(code)))
	if !ok {
		return nil, game.ErrRoomNotFound
	}
	return rc, nil
}

func decode(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return fmt.Errorf("missing payload")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}
