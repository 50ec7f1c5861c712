package constants

type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in progress"
	StatusDone       TaskStatus = "done"
)

// TaskStatuses lists every canonical status in reporting order.
var TaskStatuses = []TaskStatus{StatusPending, StatusInProgress, StatusDone}

func (s TaskStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// legacyStatuses maps spellings written by older clients to the canonical value.
var legacyStatuses = map[string]TaskStatus{
	"in-progress": StatusInProgress,
	"in_progress": StatusInProgress,
	"inprogress":  StatusInProgress,
	"completed":   StatusDone,
}

// LegacyStatusSpellings returns the stored values the normalization migration
// rewrites, keyed by their canonical replacement.
func LegacyStatusSpellings() map[TaskStatus][]string {
	out := make(map[TaskStatus][]string)
	for legacy, canonical := range legacyStatuses {
		out[canonical] = append(out[canonical], legacy)
	}
	return out
}
