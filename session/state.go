package session

// State is where a connection sits in its lifecycle:
//
//	Connected --join--> Joined --gameOver/disconnect--> Finished --disconnect--> Closed
//
// The registry only tracks connections that joined, so one that closes
// before joining is indistinguishable from one that is still Connected.
type State int

const (
	StateConnected State = iota
	StateJoined
	StateFinished
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateJoined:
		return "joined"
	case StateFinished:
		return "finished"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// State reports the lifecycle state of the connection id.
func (r *Registry) State(id ID) State {
	s, ok := r.sessions[id]
	if !ok {
		return StateConnected
	}
	switch {
	case s.Active:
		return StateJoined
	case s.Closed:
		return StateClosed
	default:
		return StateFinished
	}
}
