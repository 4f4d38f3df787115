package protocol

const (
	MsgJoin     = "join"
	MsgUpdate   = "update"
	MsgGameOver = "gameOver"
	MsgScores   = "scores"
)

// Message is one decoded client event. Username is set for join, Score for
// update and gameOver.
type Message struct {
	Type     string
	Username string
	Score    int
}

// inbound mirrors the wire record; pointers tell missing fields apart from zero values.
type inbound struct {
	Type     string  `json:"type"`
	Username *string `json:"username"`
	Score    *int    `json:"score"`
}

// Score is one row of the active roster or the leaderboard.
type Score struct {
	Username string `json:"username"`
	Score    int    `json:"score"`
}

// Scores is the full view pushed to every connection after a change.
type Scores struct {
	Type        string  `json:"type"`
	Active      []Score `json:"active"`
	Leaderboard []Score `json:"leaderboard"`
}
