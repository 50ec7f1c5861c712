package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	dto "task-manager.com/task-manager/internal/data_models"
	apperrors "task-manager.com/task-manager/internal/errors"
)

// ErrorHandler renders expected failures with their own message and hides the
// cause of everything else behind a generic 500. The cause is logged once, by
// the request logger.
func ErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := errorResponse(err)

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logger.Error("write error response", slog.Any("error", err))
		}
	}
}

func errorResponse(err error) (int, dto.ErrorResponse) {
	if appErr, ok := apperrors.AsException(err); ok {
		return appErr.StatusCode, dto.ErrorResponse{
			Message: appErr.Message,
			Errors:  appErr.Fields,
		}
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) && httpErr.Code < http.StatusInternalServerError {
		msg := http.StatusText(httpErr.Code)
		if s, ok := httpErr.Message.(string); ok {
			msg = s
		} else if httpErr.Message != nil {
			msg = fmt.Sprint(httpErr.Message)
		}
		return httpErr.Code, dto.ErrorResponse{Message: msg}
	}

	return http.StatusInternalServerError, dto.ErrorResponse{Message: "internal server error"}
}
