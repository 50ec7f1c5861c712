package http

import (
	"github.com/labstack/echo/v4"

	"task-manager.com/task-manager/internal/auth"
	middleware "task-manager.com/task-manager/internal/http/middlewares"
)

func Register(e *echo.Echo, h *Handler, verifier *auth.Verifier) {
	requireAuth := middleware.RequireAuth(verifier)

	e.GET("/healthz", h.Health)

	api := e.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.Register)
	authGroup.POST("/login", h.Login)
	authGroup.POST("/logout", h.Logout, requireAuth)

	tasks := api.Group("/tasks", requireAuth)
	tasks.GET("", h.ListTasks)
	tasks.POST("", h.CreateTask)
	tasks.GET("/paginated", h.PaginateTasks)
	tasks.GET("/stats", h.TaskStats)
	tasks.GET("/search", h.SearchTasks)
	tasks.GET("/due", h.DueTasks)
	tasks.GET("/:id", h.GetTask)
	tasks.PUT("/:id", h.UpdateTask)
	tasks.DELETE("/:id", h.DeleteTask)
	tasks.PATCH("/:id/toggle", h.ToggleTask)
}
