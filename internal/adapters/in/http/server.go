// Package http exposes the task lifecycle over a JSON API built on echo.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	redisout "deliverytasks/internal/adapters/out/redis"
	"deliverytasks/internal/core/application/usecases/commands"
	"deliverytasks/internal/core/application/usecases/queries"
	"deliverytasks/internal/core/domain/model/actor"
	"deliverytasks/internal/core/domain/model/kernel"
	"deliverytasks/internal/core/domain/model/task"
	"deliverytasks/internal/core/domain/model/user"
	"deliverytasks/internal/core/domain/services"
	"deliverytasks/internal/pkg/errs"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Use case handlers the server delegates to.
type (
	LoginHandler interface {
		Handle(ctx context.Context, cmd commands.LoginCommand) (commands.LoginResult, error)
	}
	CreateUserHandler interface {
		Handle(ctx context.Context, cmd commands.CreateUserCommand) (*user.User, error)
	}
	UpdateUserHandler interface {
		Handle(ctx context.Context, cmd commands.UpdateUserCommand) (*user.User, error)
	}
	CreateTaskHandler interface {
		Handle(ctx context.Context, cmd commands.CreateTaskCommand) (*task.Task, error)
	}
	UpdateTaskHandler interface {
		Handle(ctx context.Context, cmd commands.UpdateTaskCommand) (*task.Task, error)
	}
	TransitionTaskHandler interface {
		Handle(ctx context.Context, cmd commands.TransitionTaskCommand) (*task.Task, error)
	}
	ListTasksHandler interface {
		Handle(ctx context.Context, query queries.ListTasksQuery) ([]queries.TaskSummary, error)
	}
	GetTaskHandler interface {
		Handle(ctx context.Context, query queries.GetTaskQuery) (queries.TaskDetail, error)
	}
	GetAvailableTaskHandler interface {
		Handle(ctx context.Context, query queries.GetAvailableTaskQuery) (queries.TaskSummary, error)
	}
	ListUsersHandler interface {
		Handle(ctx context.Context, query queries.ListUsersQuery) ([]queries.UserSummary, error)
	}
	GetUserHandler interface {
		Handle(ctx context.Context, query queries.GetUserQuery) (queries.UserSummary, error)
	}
	// TaskEventSubscriber follows the state changes of the tasks a store
	// manager created.
	TaskEventSubscriber interface {
		Subscribe(ctx context.Context, creatorID kernel.UUID) (<-chan redisout.StateChangedMessage, func(), error)
	}
)

// Handlers groups the use cases served over HTTP.
// TaskEvents may be nil, in which case GET /tasks/events answers 503.
type Handlers struct {
	Login            LoginHandler
	CreateUser       CreateUserHandler
	UpdateUser       UpdateUserHandler
	CreateTask       CreateTaskHandler
	UpdateTask       UpdateTaskHandler
	TransitionTask   TransitionTaskHandler
	ListTasks        ListTasksHandler
	GetTask          GetTaskHandler
	GetAvailableTask GetAvailableTaskHandler
	ListUsers        ListUsersHandler
	GetUser          GetUserHandler
	TaskEvents       TaskEventSubscriber
}

// Server implements ServerInterface. Every operation runs on behalf of the
// actor resolved by Authenticate.
type Server struct {
	handlers Handlers
	logger   *slog.Logger
}

var _ ServerInterface = (*Server)(nil)

func NewServer(handlers Handlers, logger *slog.Logger) *Server {
	return &Server{
		handlers: handlers,
		logger:   logger.With("component", "http"),
	}
}

// Health handles GET /health.
func (s *Server) Health(c echo.Context) error {
	return c.String(http.StatusOK, "Healthy")
}

// Login handles POST /login.
func (s *Server) Login(c echo.Context) error {
	var body LoginRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	cmd, err := commands.NewLoginCommand(body.Email, body.Password)
	if err != nil {
		return s.writeError(c, err)
	}

	result, err := s.handlers.Login.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(http.StatusOK, LoginResponse{Token: result.Token, ExpiresAt: result.ExpiresAt})
}

// ListUsers handles GET /users.
func (s *Server) ListUsers(c echo.Context) error {
	query, err := queries.NewListUsersQuery(ActorFromContext(c))
	if err != nil {
		return s.writeError(c, err)
	}

	users, err := s.handlers.ListUsers.Handle(c.Request().Context(), query)
	if err != nil {
		return s.writeError(c, err)
	}

	response := make([]User, len(users))
	for i, u := range users {
		response[i] = userFromSummary(u)
	}

	return c.JSON(http.StatusOK, response)
}

// CreateUser handles POST /users.
func (s *Server) CreateUser(c echo.Context) error {
	var body NewUser
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	role, err := actor.ParseRole(body.Role)
	if err != nil {
		return s.writeError(c, err)
	}

	cmd, err := commands.NewCreateUserCommand(ActorFromContext(c), body.Name, body.Email, body.Password, role)
	if err != nil {
		return s.writeError(c, err)
	}

	created, err := s.handlers.CreateUser.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(http.StatusCreated, userFromDomain(created))
}

// GetUser handles GET /users/{id}.
func (s *Server) GetUser(c echo.Context, id uuid.UUID) error {
	userID, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return s.writeError(c, err)
	}

	query, err := queries.NewGetUserQuery(ActorFromContext(c), userID)
	if err != nil {
		return s.writeError(c, err)
	}

	summary, err := s.handlers.GetUser.Handle(c.Request().Context(), query)
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(http.StatusOK, userFromSummary(summary))
}

// UpdateUser handles PUT /users/{id}.
func (s *Server) UpdateUser(c echo.Context, id uuid.UUID) error {
	var body UserUpdate
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	userID, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return s.writeError(c, err)
	}

	changes := commands.UserChanges{
		Name:     body.Name,
		Email:    body.Email,
		Password: body.Password,
	}
	if body.Role != nil {
		role, parseErr := actor.ParseRole(*body.Role)
		if parseErr != nil {
			return s.writeError(c, parseErr)
		}
		changes.Role = &role
	}

	cmd, err := commands.NewUpdateUserCommand(ActorFromContext(c), userID, changes)
	if err != nil {
		return s.writeError(c, err)
	}

	updated, err := s.handlers.UpdateUser.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(http.StatusOK, userFromDomain(updated))
}

// ListTasks handles GET /tasks.
func (s *Server) ListTasks(c echo.Context, params ListTasksParams) error {
	var states []task.State
	if params.State != nil {
		for _, name := range *params.State {
			state, err := task.ParseState(name)
			if err != nil {
				return s.writeError(c, err)
			}
			states = append(states, state)
		}
	}

	query, err := queries.NewListTasksQuery(ActorFromContext(c), states...)
	if err != nil {
		return s.writeError(c, err)
	}

	tasks, err := s.handlers.ListTasks.Handle(c.Request().Context(), query)
	if err != nil {
		return s.writeError(c, err)
	}

	response := make([]Task, len(tasks))
	for i, t := range tasks {
		response[i] = taskFromSummary(t)
	}

	return c.JSON(http.StatusOK, response)
}

// CreateTask handles POST /tasks.
func (s *Server) CreateTask(c echo.Context) error {
	var body NewTask
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	cmd, err := commands.NewCreateTaskCommand(ActorFromContext(c), body.Title, body.Destination, body.Priority)
	if err != nil {
		return s.writeError(c, err)
	}

	created, err := s.handlers.CreateTask.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(http.StatusCreated, taskDetailFromDomain(created))
}

// GetAvailableTask handles GET /tasks/available.
func (s *Server) GetAvailableTask(c echo.Context) error {
	query, err := queries.NewGetAvailableTaskQuery(ActorFromContext(c))
	if err != nil {
		return s.writeError(c, err)
	}

	summary, err := s.handlers.GetAvailableTask.Handle(c.Request().Context(), query)
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(http.StatusOK, taskFromSummary(summary))
}

// GetTask handles GET /tasks/{id}.
func (s *Server) GetTask(c echo.Context, id uuid.UUID) error {
	taskID, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return s.writeError(c, err)
	}

	query, err := queries.NewGetTaskQuery(ActorFromContext(c), taskID)
	if err != nil {
		return s.writeError(c, err)
	}

	detail, err := s.handlers.GetTask.Handle(c.Request().Context(), query)
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(http.StatusOK, taskDetailFromQuery(detail))
}

// UpdateTask handles PUT /tasks/{id}.
func (s *Server) UpdateTask(c echo.Context, id uuid.UUID) error {
	var body NewTask
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	taskID, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return s.writeError(c, err)
	}

	cmd, err := commands.NewUpdateTaskCommand(ActorFromContext(c), taskID, body.Title, body.Destination, body.Priority)
	if err != nil {
		return s.writeError(c, err)
	}

	updated, err := s.handlers.UpdateTask.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(http.StatusOK, taskDetailFromDomain(updated))
}

// StreamTaskEvents handles GET /tasks/events. It upgrades to a websocket
// and sends one text message per state change of a task the calling store
// manager created, until either side closes.
func (s *Server) StreamTaskEvents(c echo.Context) error {
	by := ActorFromContext(c)
	creatorID, ok := by.ID()
	if !ok || by.Role() != actor.StoreManager {
		return s.writeError(c, errs.NewUnauthorizedError(fmt.Sprintf("%s may not follow task events", by.Role())))
	}
	if s.handlers.TaskEvents == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "task events are not enabled")
	}

	events, cleanup, err := s.handlers.TaskEvents.Subscribe(c.Request().Context(), creatorID)
	if err != nil {
		return s.writeError(c, err)
	}
	defer cleanup()

	conn, err := websocket.Accept(c.Response(), c.Request(), nil)
	if err != nil {
		s.logger.WarnContext(c.Request().Context(), "websocket accept", "error", err)
		return nil
	}
	defer conn.CloseNow()

	ctx := conn.CloseRead(c.Request().Context())
	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "connection closed")
			return nil
		case event, open := <-events:
			if !open {
				_ = conn.Close(websocket.StatusNormalClosure, "subscription ended")
				return nil
			}
			payload, marshalErr := json.Marshal(event)
			if marshalErr != nil {
				s.logger.WarnContext(ctx, "dropping task event", "task_id", event.TaskID, "error", marshalErr)
				continue
			}
			if err = conn.Write(ctx, websocket.MessageText, payload); err != nil {
				s.logger.DebugContext(ctx, "websocket write", "error", err)
				return nil
			}
		}
	}
}

// TransitionTask handles POST /tasks/{id}/{action}.
func (s *Server) TransitionTask(c echo.Context, id uuid.UUID, action string) error {
	taskID, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return s.writeError(c, err)
	}

	parsed, err := services.ParseAction(action)
	if err != nil {
		return s.writeError(c, err)
	}

	cmd, err := commands.NewTransitionTaskCommand(ActorFromContext(c), taskID, parsed)
	if err != nil {
		return s.writeError(c, err)
	}

	updated, err := s.handlers.TransitionTask.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(http.StatusOK, taskDetailFromDomain(updated))
}
