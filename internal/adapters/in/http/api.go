package http

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface lists one method per operation of openapi.json.
type ServerInterface interface {
	// (POST /login)
	Login(ctx echo.Context) error
	// (GET /users)
	ListUsers(ctx echo.Context) error
	// (POST /users)
	CreateUser(ctx echo.Context) error
	// (GET /users/{id})
	GetUser(ctx echo.Context, id uuid.UUID) error
	// (PUT /users/{id})
	UpdateUser(ctx echo.Context, id uuid.UUID) error
	// (GET /tasks)
	ListTasks(ctx echo.Context, params ListTasksParams) error
	// (POST /tasks)
	CreateTask(ctx echo.Context) error
	// (GET /tasks/available)
	GetAvailableTask(ctx echo.Context) error
	// (GET /tasks/events)
	StreamTaskEvents(ctx echo.Context) error
	// (GET /tasks/{id})
	GetTask(ctx echo.Context, id uuid.UUID) error
	// (PUT /tasks/{id})
	UpdateTask(ctx echo.Context, id uuid.UUID) error
	// (POST /tasks/{id}/{action})
	TransitionTask(ctx echo.Context, id uuid.UUID, action string) error
}

// ServerInterfaceWrapper binds path and query parameters before calling
// the ServerInterface.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

func (w *ServerInterfaceWrapper) Login(ctx echo.Context) error {
	return w.Handler.Login(ctx)
}

func (w *ServerInterfaceWrapper) ListUsers(ctx echo.Context) error {
	return w.Handler.ListUsers(ctx)
}

func (w *ServerInterfaceWrapper) CreateUser(ctx echo.Context) error {
	return w.Handler.CreateUser(ctx)
}

func (w *ServerInterfaceWrapper) GetUser(ctx echo.Context) error {
	id, err := bindID(ctx)
	if err != nil {
		return err
	}

	return w.Handler.GetUser(ctx, id)
}

func (w *ServerInterfaceWrapper) UpdateUser(ctx echo.Context) error {
	id, err := bindID(ctx)
	if err != nil {
		return err
	}

	return w.Handler.UpdateUser(ctx, id)
}

func (w *ServerInterfaceWrapper) ListTasks(ctx echo.Context) error {
	var params ListTasksParams

	err := runtime.BindQueryParameter("form", true, false, "state", ctx.QueryParams(), &params.State)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter state: %s", err))
	}

	return w.Handler.ListTasks(ctx, params)
}

func (w *ServerInterfaceWrapper) CreateTask(ctx echo.Context) error {
	return w.Handler.CreateTask(ctx)
}

func (w *ServerInterfaceWrapper) GetAvailableTask(ctx echo.Context) error {
	return w.Handler.GetAvailableTask(ctx)
}

func (w *ServerInterfaceWrapper) StreamTaskEvents(ctx echo.Context) error {
	return w.Handler.StreamTaskEvents(ctx)
}

func (w *ServerInterfaceWrapper) GetTask(ctx echo.Context) error {
	id, err := bindID(ctx)
	if err != nil {
		return err
	}

	return w.Handler.GetTask(ctx, id)
}

func (w *ServerInterfaceWrapper) UpdateTask(ctx echo.Context) error {
	id, err := bindID(ctx)
	if err != nil {
		return err
	}

	return w.Handler.UpdateTask(ctx, id)
}

func (w *ServerInterfaceWrapper) TransitionTask(ctx echo.Context) error {
	id, err := bindID(ctx)
	if err != nil {
		return err
	}

	var action string
	err = runtime.BindStyledParameterWithOptions("simple", "action", ctx.Param("action"), &action,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter action: %s", err))
	}

	return w.Handler.TransitionTask(ctx, id, action)
}

func bindID(ctx echo.Context) (uuid.UUID, error) {
	var id uuid.UUID

	err := runtime.BindStyledParameterWithOptions("simple", "id", ctx.Param("id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter id: %s", err))
	}

	return id, nil
}

// EchoRouter is satisfied by *echo.Echo and *echo.Group.
type EchoRouter interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RegisterHandlers adds every operation's route to router.
func RegisterHandlers(router EchoRouter, si ServerInterface) {
	wrapper := ServerInterfaceWrapper{
		Handler: si,
	}

	router.POST("/login", wrapper.Login)
	router.GET("/users", wrapper.ListUsers)
	router.POST("/users", wrapper.CreateUser)
	router.GET("/users/:id", wrapper.GetUser)
	router.PUT("/users/:id", wrapper.UpdateUser)
	router.GET("/tasks", wrapper.ListTasks)
	router.POST("/tasks", wrapper.CreateTask)
	router.GET("/tasks/available", wrapper.GetAvailableTask)
	router.GET("/tasks/events", wrapper.StreamTaskEvents)
	router.GET("/tasks/:id", wrapper.GetTask)
	router.PUT("/tasks/:id", wrapper.UpdateTask)
	router.POST("/tasks/:id/:action", wrapper.TransitionTask)
}
