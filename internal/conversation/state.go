package conversation

import "time"

// State is the per-session conversation state. A State is owned exclusively
// by one active turn at a time (the session manager enforces this), so the
// methods need no locking.
type State struct {
	ID       string
	Messages []Message

	// Resolved accumulates mention -> canonical name pairs across turns.
	// Entries are final once added and the map never shrinks in a session.
	Resolved map[string]string

	// Schema is the cached database description with its retrieval time.
	Schema          string
	SchemaFetchedAt time.Time

	// FixAttempts counts SQL repair attempts within the current turn. It is
	// monotonic within a turn and reset by BeginTurn.
	FixAttempts int
}

// NewState creates an empty session state.
func NewState(id string) *State {
	return &State{ID: id, Resolved: make(map[string]string)}
}

// Append adds a message to the log, assigning its position.
func (s *State) Append(role Role, content, tag string) Message {
	msg := Message{Role: role, Content: content, Tag: tag, Position: len(s.Messages)}
	s.Messages = append(s.Messages, msg)
	return msg
}

// BeginTurn records the user's utterance and resets the fix-attempt counter.
func (s *State) BeginTurn(utterance string) {
	s.FixAttempts = 0
	s.Append(RoleHuman, utterance, "")
}

// Remember merges newly resolved entities into the session mapping without
// overwriting existing entries.
func (s *State) Remember(resolved map[string]string) {
	for mention, canonical := range resolved {
		if _, exists := s.Resolved[mention]; !exists {
			s.Resolved[mention] = canonical
		}
	}
}

// Last returns the final message in the log, or false when empty.
func (s *State) Last() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}
