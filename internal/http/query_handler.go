package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	dto "task-manager.com/task-manager/internal/data_models"
	apperrors "task-manager.com/task-manager/internal/errors"
	middleware "task-manager.com/task-manager/internal/http/middlewares"
)

const (
	defaultPage  = 1
	defaultLimit = 5
)

func queryInt(c echo.Context, name string, def int, invalid error) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalid
	}
	return n, nil
}

func (h *Handler) PaginateTasks(c echo.Context) error {
	page, err := queryInt(c, "page", defaultPage, apperrors.ErrInvalidPage)
	if err != nil {
		return err
	}
	limit, err := queryInt(c, "limit", defaultLimit, apperrors.ErrInvalidLimit)
	if err != nil {
		return err
	}

	result, err := h.queryService.Paginate(c.Request().Context(), middleware.OwnerID(c), page, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) TaskStats(c echo.Context) error {
	stats, err := h.queryService.Stats(c.Request().Context(), middleware.OwnerID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) SearchTasks(c echo.Context) error {
	tasks, err := h.queryService.Search(
		c.Request().Context(),
		middleware.OwnerID(c),
		c.QueryParam("q"),
		c.QueryParam("status"),
	)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tasks)
}

func (h *Handler) DueTasks(c echo.Context) error {
	var day *time.Time
	if raw := c.QueryParam("date"); raw != "" {
		t, err := dto.ParseDate(raw)
		if err != nil {
			return apperrors.Validation("date", "date must be YYYY-MM-DD or an RFC 3339 timestamp")
		}
		day = &t
	}

	tasks, err := h.queryService.DueOn(c.Request().Context(), middleware.OwnerID(c), day)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tasks)
}
