package ipc

// State is a server lifecycle phase.
type State int

const (
	StateCreated State = iota
	StateListening
	StateAccepting
	StateServing
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateListening:
		return "listening"
	case StateAccepting:
		return "accepting"
	case StateServing:
		return "serving"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
