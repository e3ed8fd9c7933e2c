package controller

// State is where a voting session is in its lifecycle.
type State int

const (
	StateIdle State = iota
	StateSelecting
	StateComposing
	StateSubmitting
	StateDone
)

var stateNames = map[State]string{
	StateIdle:       "idle",
	StateSelecting:  "selecting",
	StateComposing:  "composing",
	StateSubmitting: "submitting",
	StateDone:       "done",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
