package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	dto "task-manager.com/task-manager/internal/data_models"
	apperrors "task-manager.com/task-manager/internal/errors"
	middleware "task-manager.com/task-manager/internal/http/middlewares"
	"task-manager.com/task-manager/internal/http/validators"
	"task-manager.com/task-manager/internal/services"
)

type Handler struct {
	taskService  *services.TaskService
	queryService *services.QueryService
	authService  *services.AuthService
}

func NewHandler(
	taskService *services.TaskService,
	queryService *services.QueryService,
	authService *services.AuthService,
) *Handler {
	return &Handler{
		taskService:  taskService,
		queryService: queryService,
		authService:  authService,
	}
}

// bind decodes the JSON body and runs struct-tag validation.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) && httpErr.Code == http.StatusUnsupportedMediaType {
			return err
		}
		return apperrors.ErrInvalidJSON
	}
	return c.Validate(req)
}

func taskID(c echo.Context) (string, error) {
	id := c.Param("id")
	if id == "" {
		return "", apperrors.ErrTaskIDRequired
	}
	return id, nil
}

func (h *Handler) CreateTask(c echo.Context) error {
	var req dto.CreateTaskRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := validators.ValidateCreateTaskRequest(&req); err != nil {
		return err
	}

	task, err := h.taskService.CreateTask(c.Request().Context(), middleware.OwnerID(c), services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate.Time,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, task)
}

func (h *Handler) ListTasks(c echo.Context) error {
	tasks, err := h.taskService.ListTasks(c.Request().Context(), middleware.OwnerID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tasks)
}

func (h *Handler) GetTask(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}

	task, err := h.taskService.GetTask(c.Request().Context(), middleware.OwnerID(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

func (h *Handler) UpdateTask(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}

	var req dto.UpdateTaskRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := validators.ValidateUpdateTaskRequest(&req); err != nil {
		return err
	}

	in := services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
		Completed:   req.Completed,
	}
	if req.DueDate.Set {
		in.DueDate = req.DueDate.Time
		in.ClearDueDate = req.DueDate.Time == nil
	}

	task, err := h.taskService.UpdateTask(c.Request().Context(), middleware.OwnerID(c), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

func (h *Handler) DeleteTask(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}

	if err := h.taskService.DeleteTask(c.Request().Context(), middleware.OwnerID(c), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "task deleted successfully"})
}

func (h *Handler) ToggleTask(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}

	task, err := h.taskService.ToggleTask(c.Request().Context(), middleware.OwnerID(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}
