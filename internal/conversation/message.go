// Package conversation holds the per-session message log and the context
// window manager that bounds what the model gets to see of it.
package conversation

// Role identifies who produced a message.
type Role string

const (
	RoleHuman  Role = "human"
	RoleAgent  Role = "agent"
	RoleSystem Role = "system"
)

// Tags label agent and system messages so pipeline steps can locate each
// other's output in the log.
const (
	TagError       = "error"
	TagSQLQuery    = "sql_query"
	TagResults     = "results"
	TagClarify     = "clarify"
	TagClarified   = "clarified"
	TagCheckResult = "check_result"
	TagSummary     = "conversation_summary"
	TagClarifyLoop = "clarification_request"
	TagErrorRun    = "error_summary"
)

// Message is one immutable entry in a session's append-only log.
type Message struct {
	Role     Role
	Content  string
	Tag      string
	Position int
}

// IsError reports whether the message carries an error tag.
func (m Message) IsError() bool {
	return m.Tag == TagError
}

// LastByTag returns the most recent message with the given tag, or false.
func LastByTag(msgs []Message, tag string) (Message, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Tag == tag {
			return msgs[i], true
		}
	}
	return Message{}, false
}

// LastHuman returns the most recent human message, or false.
func LastHuman(msgs []Message) (Message, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == RoleHuman {
			return msgs[i], true
		}
	}
	return Message{}, false
}
