package session

// State is the active-case state machine: NoActiveCase or ActiveCase(id).
type State struct {
	id string
}

// NoActiveCase is the state with no case loaded.
var NoActiveCase = State{}

// ActiveCase is the state with the case id loaded for editing.
func ActiveCase(id string) State {
	return State{id: id}
}

// Active returns the active case id, if any.
func (s State) Active() (string, bool) {
	return s.id, s.id != ""
}

// IsActive reports whether s refers to the case id.
func (s State) IsActive(id string) bool {
	return s.id != "" && s.id == id
}

func (s State) String() string {
	if s.id == "" {
		return "NoActiveCase"
	}
	return "ActiveCase(" + s.id + ")"
}
