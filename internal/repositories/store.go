package repository

import (
	"context"
	"errors"
	"time"

	"task-manager.com/task-manager/internal/constants"
	model "task-manager.com/task-manager/internal/models"
)

var (
	ErrTaskNotFound   = errors.New("task not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrInvalidTask    = errors.New("invalid task document")
)

// TaskFilter narrows an owner's task listing. Zero values match everything.
type TaskFilter struct {
	Status    constants.TaskStatus
	Query     string
	DueFrom   *time.Time
	DueBefore *time.Time
}

// TaskStore is the persistence boundary for tasks. Every operation is scoped
// by owner; there is no way to read or write a task by id alone.
type TaskStore interface {
	Create(ctx context.Context, task *model.Task) error

	FindOwned(ctx context.Context, ownerID, id string) (*model.Task, error)

	ListOwned(ctx context.Context, ownerID string, filter TaskFilter) ([]model.Task, error)

	PageOwned(ctx context.Context, ownerID string, offset, limit int) ([]model.Task, error)

	CountOwned(ctx context.Context, ownerID string) (int64, error)

	CountByStatus(ctx context.Context, ownerID string) (map[constants.TaskStatus]int64, error)

	// UpdateOwned applies changes in a single atomic write and returns the
	// task as stored afterwards.
	UpdateOwned(ctx context.Context, ownerID, id string, changes model.TaskChanges) (*model.Task, error)

	DeleteOwned(ctx context.Context, ownerID, id string) error

	// NormalizeLegacy rewrites documents written by older clients so that
	// status is canonical and completed agrees with it. It returns the number
	// of documents changed.
	NormalizeLegacy(ctx context.Context) (int64, error)
}

type UserStore interface {
	Create(ctx context.Context, user *model.User) error

	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

// validateTask enforces the schema rules the document store itself does not.
func validateTask(task *model.Task) error {
	switch {
	case task.ID == "", task.OwnerID == "", task.Title == "":
		return ErrInvalidTask
	case !task.Priority.IsValid(), !task.Status.IsValid():
		return ErrInvalidTask
	case !task.Consistent():
		return ErrInvalidTask
	}
	return nil
}

func validateChanges(changes model.TaskChanges) error {
	if changes.Title != nil && *changes.Title == "" {
		return ErrInvalidTask
	}
	if changes.Priority != nil && !changes.Priority.IsValid() {
		return ErrInvalidTask
	}
	if changes.Completion.Rule == model.CompletionSet && !changes.Completion.Status.IsValid() {
		return ErrInvalidTask
	}
	return nil
}
