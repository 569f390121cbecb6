package workflow

// State enumerates the stations a turn moves through.
type State int

const (
	StateClarify State = iota
	StateGenerate
	StateCheck
	StateFix
	StateExecute
	StateFormat
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateClarify:
		return "clarify"
	case StateGenerate:
		return "generate"
	case StateCheck:
		return "check"
	case StateFix:
		return "fix"
	case StateExecute:
		return "execute"
	case StateFormat:
		return "format"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Event is the outcome a step reports to the transition function.
type Event int

const (
	// EventProceed means the step completed and the turn moves forward.
	EventProceed Event = iota
	// EventClarified means ambiguity was found and a clarification ends the turn.
	EventClarified
	// EventValid and EventInvalid are the two syntax-check outcomes.
	EventValid
	EventInvalid
	// EventSkipFormat ends the turn after execution with raw results.
	EventSkipFormat
	// EventError is a terminal step failure routed to the error handler.
	EventError
)

// Transition is the pure control function of the turn state machine.
// attempts is the number of fix attempts already consumed; maxAttempts
// bounds the Check -> Fix loop.
func Transition(state State, event Event, attempts, maxAttempts int) State {
	if event == EventError {
		return StateFailed
	}
	switch state {
	case StateClarify:
		if event == EventClarified {
			return StateDone
		}
		return StateGenerate
	case StateGenerate, StateFix:
		return StateCheck
	case StateCheck:
		if event == EventValid {
			return StateExecute
		}
		if attempts < maxAttempts {
			return StateFix
		}
		return StateFailed
	case StateExecute:
		if event == EventSkipFormat {
			return StateDone
		}
		return StateFormat
	case StateFormat:
		return StateDone
	}
	return StateFailed
}
