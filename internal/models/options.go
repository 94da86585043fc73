package models

// GameMode selects how clue-giving happens
type GameMode string

const (
	// ModeVoice means players describe the word out loud; the engine
	// only runs the vote cycle.
	ModeVoice GameMode = "voice"
	// ModeChat adds a clue_round phase where players type clues in turn.
	ModeChat GameMode = "chat"
)

// RoomOptions are set at room creation and mutable by the host pre-match
type RoomOptions struct {
	GameMode         GameMode `json:"gameMode"`
	Language         string   `json:"language"`
	ShowImpostorHint bool     `json:"showImpostorHint"`
}

// Normalize fills defaults for zero-valued fields
func (o RoomOptions) Normalize() RoomOptions {
	if o.GameMode != ModeChat {
		o.GameMode = ModeVoice
	}
	if o.Language == "" {
		o.Language = "en"
	}
	return o
}
