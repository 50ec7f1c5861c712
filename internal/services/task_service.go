package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"task-manager.com/task-manager/internal/constants"
	apperrors "task-manager.com/task-manager/internal/errors"
	model "task-manager.com/task-manager/internal/models"
	repository "task-manager.com/task-manager/internal/repositories"
)

// TaskService owns the task lifecycle: creation defaults, owner scoping and
// the status/completed reconciliation on every write.
type TaskService struct {
	repo repository.TaskStore
	now  func() time.Time
}

type CreateTaskInput struct {
	Title       string
	Description string
	Priority    string
	DueDate     *time.Time
}

// UpdateTaskInput is a partial update; nil fields are left unchanged.
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	Priority     *string
	DueDate      *time.Time
	ClearDueDate bool
	Status       *string
	Completed    *bool
}

func NewTaskService(repo repository.TaskStore) *TaskService {
	return &TaskService{
		repo: repo,
		now:  time.Now,
	}
}

func (s *TaskService) CreateTask(ctx context.Context, ownerID string, in CreateTaskInput) (*model.Task, error) {
	if ownerID == "" {
		return nil, apperrors.ErrUnauthenticated
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperrors.Validation("title", "title is required")
	}

	priority := constants.DefaultPriority
	if in.Priority != "" {
		p, err := parsePriority(in.Priority)
		if err != nil {
			return nil, err
		}
		priority = p
	}

	task := &model.Task{
		ID:          uuid.NewString(),
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Priority:    priority,
		DueDate:     utcInstant(in.DueDate),
		Status:      constants.StatusPending,
		Completed:   false,
		OwnerID:     ownerID,
		Version:     1,
		CreatedAt:   s.now().UTC(),
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, storeError(err)
	}
	return task, nil
}

func (s *TaskService) ListTasks(ctx context.Context, ownerID string) ([]model.Task, error) {
	tasks, err := s.repo.ListOwned(ctx, ownerID, repository.TaskFilter{})
	if err != nil {
		return nil, storeError(err)
	}
	return tasks, nil
}

// GetTask reports ErrTaskNotFound both for missing tasks and for tasks owned
// by someone else.
func (s *TaskService) GetTask(ctx context.Context, ownerID, id string) (*model.Task, error) {
	task, err := s.repo.FindOwned(ctx, ownerID, id)
	if err != nil {
		return nil, storeError(err)
	}
	return task, nil
}

func (s *TaskService) UpdateTask(ctx context.Context, ownerID, id string, in UpdateTaskInput) (*model.Task, error) {
	changes, err := buildChanges(in)
	if err != nil {
		return nil, err
	}

	task, err := s.repo.UpdateOwned(ctx, ownerID, id, changes)
	if err != nil {
		return nil, storeError(err)
	}
	return task, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, ownerID, id string) error {
	if err := s.repo.DeleteOwned(ctx, ownerID, id); err != nil {
		return storeError(err)
	}
	return nil
}

func (s *TaskService) ToggleTask(ctx context.Context, ownerID, id string) (*model.Task, error) {
	task, err := s.repo.UpdateOwned(ctx, ownerID, id, model.TaskChanges{
		Completion: model.ToggleCompletion(),
	})
	if err != nil {
		return nil, storeError(err)
	}
	return task, nil
}

func buildChanges(in UpdateTaskInput) (model.TaskChanges, error) {
	var changes model.TaskChanges

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return changes, apperrors.Validation("title", "title must not be empty")
		}
		changes.Title = &title
	}
	if in.Description != nil {
		description := strings.TrimSpace(*in.Description)
		changes.Description = &description
	}
	if in.Priority != nil {
		p, err := parsePriority(*in.Priority)
		if err != nil {
			return changes, err
		}
		changes.Priority = &p
	}
	if in.ClearDueDate {
		changes.ClearDueDate = true
	} else {
		changes.DueDate = utcInstant(in.DueDate)
	}

	var status *constants.TaskStatus
	if in.Status != nil {
		st, err := parseStatus(*in.Status)
		if err != nil {
			return changes, err
		}
		status = &st
	}
	changes.Completion = model.DeriveCompletion(status, in.Completed)

	return changes, nil
}

func parsePriority(raw string) (constants.TaskPriority, error) {
	p := constants.TaskPriority(raw)
	if !p.IsValid() {
		return "", apperrors.Validation("priority", "priority must be one of low, medium, high")
	}
	return p, nil
}

// parseStatus accepts canonical spellings only. Legacy values in storage are
// rewritten by the migrate command, not translated per request.
func parseStatus(raw string) (constants.TaskStatus, error) {
	st := constants.TaskStatus(raw)
	if !st.IsValid() {
		return "", apperrors.Validation("status", "status must be one of pending, in progress, done")
	}
	return st, nil
}

// utcInstant keeps the due instant exactly as sent; only the zone is
// normalized for storage.
func utcInstant(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// startOfDay is midnight of t's calendar day in t's own location.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func storeError(err error) error {
	switch {
	case errors.Is(err, repository.ErrTaskNotFound):
		return apperrors.ErrTaskNotFound
	case errors.Is(err, repository.ErrInvalidTask):
		return apperrors.ErrValidation
	}
	return err
}
