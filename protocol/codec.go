package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrMalformed = errors.New("malformed message")

// Decode parses and validates one client message. Every failure wraps
// ErrMalformed.
func Decode(b []byte) (Message, error) {
	if len(b) == 0 {
		return Message{}, fmt.Errorf("%w: empty payload", ErrMalformed)
	}
	var in inbound
	if err := json.Unmarshal(b, &in); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	switch in.Type {
	case MsgJoin:
		if in.Username == nil {
			return Message{}, fmt.Errorf("%w: join without username", ErrMalformed)
		}
		// any string is a valid display name, kept exactly as sent
		return Message{Type: MsgJoin, Username: *in.Username}, nil

	case MsgUpdate, MsgGameOver:
		if in.Score == nil {
			return Message{}, fmt.Errorf("%w: %s without score", ErrMalformed, in.Type)
		}
		return Message{Type: in.Type, Score: *in.Score}, nil

	case "":
		return Message{}, fmt.Errorf("%w: missing type", ErrMalformed)
	default:
		return Message{}, fmt.Errorf("%w: unknown type %q", ErrMalformed, in.Type)
	}
}

// EncodeScores serialises a scores view. Nil rosters are sent as empty arrays.
func EncodeScores(s Scores) ([]byte, error) {
	s.Type = MsgScores
	if s.Active == nil {
		s.Active = []Score{}
	}
	if s.Leaderboard == nil {
		s.Leaderboard = []Score{}
	}
	return json.Marshal(s)
}
