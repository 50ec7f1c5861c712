package model

import (
	"time"

	"task-manager.com/task-manager/internal/constants"
)

// TaskChanges is a partial update. Nil fields are not written.
type TaskChanges struct {
	Title        *string
	Description  *string
	Priority     *constants.TaskPriority
	DueDate      *time.Time
	ClearDueDate bool
	Completion   Completion
}

// Apply mutates t the way every store must apply the changes in one atomic
// write.
func (c TaskChanges) Apply(t *Task) {
	if c.Title != nil {
		t.Title = *c.Title
	}
	if c.Description != nil {
		t.Description = *c.Description
	}
	if c.Priority != nil {
		t.Priority = *c.Priority
	}
	if c.ClearDueDate {
		t.DueDate = nil
	} else if c.DueDate != nil {
		due := *c.DueDate
		t.DueDate = &due
	}
	t.Status, t.Completed = c.Completion.Apply(t.Status, t.Completed)
	t.Version++
}
