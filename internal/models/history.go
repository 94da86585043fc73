package models

// RoundHistoryEntry is one line of the append-only audit trail, recorded
// for every resolved round before its outcome is acted on.
type RoundHistoryEntry struct {
	Round      int               `json:"round"`
	Votes      map[string]string `json:"votes"`
	VoteCount  map[string]int    `json:"voteCount"`
	Eliminated string            `json:"eliminated,omitempty"`
	Tie        bool              `json:"tie"`
}

// Clue is one typed clue in chat mode
type Clue struct {
	Round int    `json:"round"`
	UID   string `json:"uid"`
	Text  string `json:"text"`
}
