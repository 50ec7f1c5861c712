package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"task-manager.com/task-manager/internal/constants"
	model "task-manager.com/task-manager/internal/models"
)

const newestFirst = "created_at desc, id desc"

// TaskRepository is the gorm-backed TaskStore.
type TaskRepository struct {
	db *gorm.DB
}

var _ TaskStore = (*TaskRepository)(nil)

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) owned(ctx context.Context, ownerID string) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.Task{}).Where("owner_id = ?", ownerID)
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := validateTask(task); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) FindOwned(ctx context.Context, ownerID, id string) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).First(&task, "id = ? AND owner_id = ?", id, ownerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return &task, nil
}

func (r *TaskRepository) ListOwned(ctx context.Context, ownerID string, filter TaskFilter) ([]model.Task, error) {
	query := r.owned(ctx, ownerID)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if q := strings.ToLower(strings.TrimSpace(filter.Query)); q != "" {
		pattern := "%" + escapeLike(q) + "%"
		query = query.Where(
			`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`,
			pattern, pattern,
		)
	}
	if filter.DueFrom != nil {
		query = query.Where("due_date >= ?", filter.DueFrom.UTC())
	}
	if filter.DueBefore != nil {
		query = query.Where("due_date < ?", filter.DueBefore.UTC())
	}

	tasks := make([]model.Task, 0)
	if err := query.Order(newestFirst).Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) PageOwned(ctx context.Context, ownerID string, offset, limit int) ([]model.Task, error) {
	if limit <= 0 {
		return nil, errors.New("limit must be positive")
	}

	tasks := make([]model.Task, 0, limit)
	err := r.owned(ctx, ownerID).
		Order(newestFirst).
		Offset(offset).
		Limit(limit).
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("page tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) CountOwned(ctx context.Context, ownerID string) (int64, error) {
	var n int64
	if err := r.owned(ctx, ownerID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

func (r *TaskRepository) CountByStatus(ctx context.Context, ownerID string) (map[constants.TaskStatus]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.owned(ctx, ownerID).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count tasks by status: %w", err)
	}

	counts := make(map[constants.TaskStatus]int64, len(rows))
	for _, row := range rows {
		counts[constants.TaskStatus(row.Status)] += row.Count
	}
	return counts, nil
}

// UpdateOwned writes every change, including the completion rule, in one
// UPDATE statement so concurrent writers serialize in the database. The
// read-back happens in the same transaction.
func (r *TaskRepository) UpdateOwned(ctx context.Context, ownerID, id string, changes model.TaskChanges) (*model.Task, error) {
	if err := validateChanges(changes); err != nil {
		return nil, err
	}

	updates := updateColumns(changes)

	var task model.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Task{}).
			Where("id = ? AND owner_id = ?", id, ownerID).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTaskNotFound
		}
		return tx.First(&task, "id = ? AND owner_id = ?", id, ownerID).Error
	})
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("update task: %w", err)
	}
	return &task, nil
}

func updateColumns(changes model.TaskChanges) map[string]interface{} {
	updates := map[string]interface{}{
		"version": gorm.Expr("version + 1"),
	}

	if changes.Title != nil {
		updates["title"] = *changes.Title
	}
	if changes.Description != nil {
		updates["description"] = *changes.Description
	}
	if changes.Priority != nil {
		updates["priority"] = *changes.Priority
	}
	if changes.ClearDueDate {
		updates["due_date"] = nil
	} else if changes.DueDate != nil {
		updates["due_date"] = changes.DueDate.UTC()
	}

	switch c := changes.Completion; c.Rule {
	case model.CompletionSet:
		updates["status"] = c.Status
		updates["completed"] = c.Status == constants.StatusDone
	case model.CompletionReopen:
		updates["status"] = gorm.Expr(
			"CASE WHEN status = ? THEN ? ELSE status END",
			constants.StatusDone, constants.StatusPending,
		)
		updates["completed"] = false
	case model.CompletionToggle:
		// Both expressions read the row as it was before this statement.
		updates["completed"] = gorm.Expr("NOT completed")
		updates["status"] = gorm.Expr(
			"CASE WHEN completed THEN ? ELSE ? END",
			constants.StatusPending, constants.StatusDone,
		)
	}

	return updates
}

func (r *TaskRepository) DeleteOwned(ctx context.Context, ownerID, id string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&model.Task{})
	if res.Error != nil {
		return fmt.Errorf("delete task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) NormalizeLegacy(ctx context.Context) (int64, error) {
	var changed int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		run := func(q *gorm.DB) error {
			if q.Error != nil {
				return q.Error
			}
			changed += q.RowsAffected
			return nil
		}
		tasks := func() *gorm.DB { return tx.Model(&model.Task{}) }

		legacy := constants.LegacyStatusSpellings()
		for _, canonical := range constants.TaskStatuses {
			spellings := append([]string{string(canonical)}, legacy[canonical]...)
			if err := run(tasks().
				Where("status <> ? AND LOWER(TRIM(status)) IN ?", canonical, spellings).
				Update("status", canonical)); err != nil {
				return err
			}
		}

		if err := run(tasks().
			Where("status IS NULL OR status NOT IN ?", constants.TaskStatuses).
			Update("status", gorm.Expr(
				"CASE WHEN completed THEN ? ELSE ? END",
				constants.StatusDone, constants.StatusPending,
			))); err != nil {
			return err
		}

		// completed is the flag the old toggle endpoint wrote, so it wins.
		if err := run(tasks().
			Where("completed AND status <> ?", constants.StatusDone).
			Update("status", constants.StatusDone)); err != nil {
			return err
		}
		if err := run(tasks().
			Where("NOT completed AND status = ?", constants.StatusDone).
			Update("status", constants.StatusPending)); err != nil {
			return err
		}

		priorities := []constants.TaskPriority{
			constants.PriorityLow, constants.PriorityMedium, constants.PriorityHigh,
		}
		if err := run(tasks().
			Where("priority NOT IN ? AND LOWER(TRIM(priority)) IN ?", priorities, priorities).
			Update("priority", gorm.Expr("LOWER(TRIM(priority))"))); err != nil {
			return err
		}
		return run(tasks().
			Where("priority IS NULL OR priority NOT IN ?", priorities).
			Update("priority", constants.DefaultPriority))
	})
	if err != nil {
		return 0, fmt.Errorf("normalize tasks: %w", err)
	}
	return changed, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
