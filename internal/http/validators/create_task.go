package validators

import (
	"strings"

	dto "task-manager.com/task-manager/internal/data_models"
	apperrors "task-manager.com/task-manager/internal/errors"
)

// ValidateCreateTaskRequest catches what struct tags cannot: a title made of
// whitespace only.
func ValidateCreateTaskRequest(r *dto.CreateTaskRequest) error {
	if strings.TrimSpace(r.Title) == "" {
		return apperrors.Validation("title", "title is required")
	}
	return nil
}

func ValidateUpdateTaskRequest(r *dto.UpdateTaskRequest) error {
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		return apperrors.Validation("title", "title must not be empty")
	}
	return nil
}
