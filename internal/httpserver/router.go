package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/isys3001/todo-backend/internal/middleware"
)

type Deps struct {
	AuthHandler *AuthHTTP
	TodoHandler *TodoHTTP
	AuthMW      *middleware.BearerAuth
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	auth := e.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)

	todos := e.Group("/todos", d.AuthMW.RequireAuth)
	todos.POST("", d.TodoHandler.Create)
	todos.GET("", d.TodoHandler.List)
	todos.GET("/:id", d.TodoHandler.Get)
	todos.PUT("/:id", d.TodoHandler.Update)
	todos.DELETE("/:id", d.TodoHandler.Delete)
}
