package model

import "task-manager.com/task-manager/internal/constants"

// CompletionRule says how a write changes the status/completed pair.
type CompletionRule uint8

const (
	// CompletionKeep leaves status and completed untouched.
	CompletionKeep CompletionRule = iota
	// CompletionSet writes Completion.Status and completed = (status == done).
	CompletionSet
	// CompletionReopen clears completed; a done task falls back to pending,
	// any other status is kept.
	CompletionReopen
	// CompletionToggle flips completed; status becomes done or pending to match.
	CompletionToggle
)

// Completion is the reconciled status/completed change for a single write.
// Stores apply it inside the same atomic document update as the other fields.
type Completion struct {
	Rule   CompletionRule
	Status constants.TaskStatus
}

// DeriveCompletion is the only place where a requested status and/or completed
// flag is turned into a consistent change. A supplied status always wins and
// the completed flag is derived from it.
func DeriveCompletion(status *constants.TaskStatus, completed *bool) Completion {
	switch {
	case status != nil:
		return Completion{Rule: CompletionSet, Status: *status}
	case completed != nil && *completed:
		return Completion{Rule: CompletionSet, Status: constants.StatusDone}
	case completed != nil:
		return Completion{Rule: CompletionReopen}
	default:
		return Completion{Rule: CompletionKeep}
	}
}

func ToggleCompletion() Completion {
	return Completion{Rule: CompletionToggle}
}

// Apply computes the pair a store must end up with when the change is applied
// to a document currently holding (status, completed).
func (c Completion) Apply(status constants.TaskStatus, completed bool) (constants.TaskStatus, bool) {
	switch c.Rule {
	case CompletionSet:
		return c.Status, c.Status == constants.StatusDone
	case CompletionReopen:
		if status == constants.StatusDone {
			return constants.StatusPending, false
		}
		return status, false
	case CompletionToggle:
		if completed {
			return constants.StatusPending, false
		}
		return constants.StatusDone, true
	default:
		return status, completed
	}
}
