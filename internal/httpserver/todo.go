package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/isys3001/todo-backend/internal/events"
	"github.com/isys3001/todo-backend/internal/logging"
	"github.com/isys3001/todo-backend/internal/middleware"
	"github.com/isys3001/todo-backend/internal/models"
	"github.com/isys3001/todo-backend/internal/service"
	"github.com/isys3001/todo-backend/internal/transport"
)

type TodoHTTP struct {
	Svc      *service.TodoService
	Producer *events.Producer
}

func principal(c echo.Context) (*models.User, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing principal")
	}
	return p, nil
}

// publish is fire-and-forget: a broker failure is logged and never fails
// the request.
func (h *TodoHTTP) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, fmt.Sprint(event["ownerID"]), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("event publish failed", "error", err)
	}
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "id is not an integer")
	}
	return uint(id), nil
}

func (h *TodoHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "todo_create")

	p, err := principal(c)
	if err != nil {
		return err
	}

	var req transport.CreateTodoRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("todo_create_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	todo, err := h.Svc.Create(ctx, p, req.Title, req.Description)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("todo_create_error", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		l.Error("todo_create_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create todo")
	}

	h.publish(c, map[string]any{
		"type":    "todo_created",
		"todoID":  todo.ID,
		"ownerID": todo.OwnerID,
	})
	l.Info("todo_create_success", "todo_id", todo.ID)
	return c.JSON(http.StatusCreated, transport.TodoResponseFrom(todo))
}

func (h *TodoHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "todo_list")

	p, err := principal(c)
	if err != nil {
		return err
	}

	todos, err := h.Svc.ListMine(ctx, p)
	if err != nil {
		l.Error("todo_list_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list todos")
	}

	return c.JSON(http.StatusOK, transport.TodoResponsesFrom(todos))
}

func (h *TodoHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "todo_get")

	p, err := principal(c)
	if err != nil {
		return err
	}

	id, err := parseID(c)
	if err != nil {
		return err
	}

	todo, err := h.Svc.Get(ctx, p, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("todo_get_error", "status", 404, "todo_id", id)
			return echo.NewHTTPError(http.StatusNotFound, "todo not found")
		}
		l.Error("todo_get_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get todo")
	}

	return c.JSON(http.StatusOK, transport.TodoResponseFrom(todo))
}

func (h *TodoHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "todo_update")

	p, err := principal(c)
	if err != nil {
		return err
	}

	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req transport.UpdateTodoRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("todo_update_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	todo, err := h.Svc.Update(ctx, p, id, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			l.Warn("todo_update_error", "status", 404, "todo_id", id)
			return echo.NewHTTPError(http.StatusNotFound, "todo not found")
		case errors.Is(err, service.ErrValidation):
			l.Warn("todo_update_error", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			l.Error("todo_update_error", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot update todo")
		}
	}

	h.publish(c, map[string]any{
		"type":    "todo_updated",
		"todoID":  todo.ID,
		"ownerID": todo.OwnerID,
	})
	l.Info("todo_update_success", "todo_id", todo.ID)
	return c.JSON(http.StatusOK, transport.TodoResponseFrom(todo))
}

func (h *TodoHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "todo_delete")

	p, err := principal(c)
	if err != nil {
		return err
	}

	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.Svc.Delete(ctx, p, id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("todo_delete_error", "status", 404, "todo_id", id)
			return echo.NewHTTPError(http.StatusNotFound, "todo not found")
		}
		l.Error("todo_delete_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete todo")
	}

	h.publish(c, map[string]any{
		"type":    "todo_deleted",
		"todoID":  id,
		"ownerID": p.ID,
	})
	l.Info("todo_delete_success", "todo_id", id)
	return c.NoContent(http.StatusNoContent)
}
