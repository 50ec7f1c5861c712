package http

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"task-manager.com/task-manager/internal/auth"
	middleware "task-manager.com/task-manager/internal/http/middlewares"
	"task-manager.com/task-manager/internal/http/validators"
)

type ServerConfig struct {
	RateLimitPerMinute int
	RateLimitBurst     int
	AllowOrigins       []string
}

// NewServer builds the echo instance with the full middleware stack and all
// routes registered.
func NewServer(cfg ServerConfig, h *Handler, verifier *auth.Verifier, logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validators.NewRequestValidator()
	e.HTTPErrorHandler = ErrorHandler(logger)

	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.Use(echomw.Recover())
	e.Use(echomw.BodyLimit("1M"))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
	}))
	e.Use(middleware.RateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst, 3*time.Minute))

	Register(e, h, verifier)
	return e
}
