package events

// Event names pushed to clients. "state" carries the full per-player
// projection and is always the source of truth, so a client can recover
// from any missed frame by re-reading the next one.
const (
	EventState      = "state"
	EventError      = "error"
	EventSuperseded = "superseded"
)

// Event is one outbound frame
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data,omitempty"`
}

// ErrorData is the payload of an error event, delivered only to the
// acting client.
type ErrorData struct {
	Action  string `json:"action,omitempty"`
	Message string `json:"message"`
}
