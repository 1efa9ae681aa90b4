package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

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
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type MockLoginHandler struct{ mock.Mock }

func (m *MockLoginHandler) Handle(ctx context.Context, cmd commands.LoginCommand) (commands.LoginResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.LoginResult), args.Error(1)
}

type MockCreateUserHandler struct{ mock.Mock }

func (m *MockCreateUserHandler) Handle(ctx context.Context, cmd commands.CreateUserCommand) (*user.User, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

type MockCreateTaskHandler struct{ mock.Mock }

func (m *MockCreateTaskHandler) Handle(ctx context.Context, cmd commands.CreateTaskCommand) (*task.Task, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

type MockTransitionTaskHandler struct{ mock.Mock }

func (m *MockTransitionTaskHandler) Handle(ctx context.Context, cmd commands.TransitionTaskCommand) (*task.Task, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

type MockListTasksHandler struct{ mock.Mock }

func (m *MockListTasksHandler) Handle(ctx context.Context, query queries.ListTasksQuery) ([]queries.TaskSummary, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]queries.TaskSummary), args.Error(1)
}

type MockGetTaskHandler struct{ mock.Mock }

func (m *MockGetTaskHandler) Handle(ctx context.Context, query queries.GetTaskQuery) (queries.TaskDetail, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(queries.TaskDetail), args.Error(1)
}

type MockGetAvailableTaskHandler struct{ mock.Mock }

func (m *MockGetAvailableTaskHandler) Handle(
	ctx context.Context,
	query queries.GetAvailableTaskQuery,
) (queries.TaskSummary, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(queries.TaskSummary), args.Error(1)
}

type MockListUsersHandler struct{ mock.Mock }

func (m *MockListUsersHandler) Handle(ctx context.Context, query queries.ListUsersQuery) ([]queries.UserSummary, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]queries.UserSummary), args.Error(1)
}

type MockGetUserHandler struct{ mock.Mock }

func (m *MockGetUserHandler) Handle(ctx context.Context, query queries.GetUserQuery) (queries.UserSummary, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(queries.UserSummary), args.Error(1)
}

type MockUpdateUserHandler struct{ mock.Mock }

func (m *MockUpdateUserHandler) Handle(ctx context.Context, cmd commands.UpdateUserCommand) (*user.User, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

type MockUpdateTaskHandler struct{ mock.Mock }

func (m *MockUpdateTaskHandler) Handle(ctx context.Context, cmd commands.UpdateTaskCommand) (*task.Task, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

// bufferedTaskEvents hands every subscriber the same messages, then ends
// the stream.
type bufferedTaskEvents struct {
	messages []redisout.StateChangedMessage

	mu         sync.Mutex
	subscribed []kernel.UUID
	cleanedUp  int
}

func (b *bufferedTaskEvents) Subscribe(
	_ context.Context,
	creatorID kernel.UUID,
) (<-chan redisout.StateChangedMessage, func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribed = append(b.subscribed, creatorID)

	out := make(chan redisout.StateChangedMessage, len(b.messages))
	for _, msg := range b.messages {
		out <- msg
	}
	close(out)

	return out, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.cleanedUp++
	}, nil
}

func (b *bufferedTaskEvents) Subscribed() []kernel.UUID {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]kernel.UUID(nil), b.subscribed...)
}

func (b *bufferedTaskEvents) CleanedUp() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cleanedUp
}

// staticTokens resolves a fixed set of tokens.
type staticTokens map[string]actor.Actor

func (s staticTokens) Parse(token string) (actor.Actor, error) {
	if a, ok := s[token]; ok {
		return a, nil
	}
	return actor.Actor{}, errors.New("unknown token")
}

type ServerTestSuite struct {
	suite.Suite

	login            *MockLoginHandler
	createUser       *MockCreateUserHandler
	createTask       *MockCreateTaskHandler
	transitionTask   *MockTransitionTaskHandler
	listTasks        *MockListTasksHandler
	getTask          *MockGetTaskHandler
	getAvailableTask *MockGetAvailableTaskHandler
	listUsers        *MockListUsersHandler
	getUser          *MockGetUserHandler
	updateUser       *MockUpdateUserHandler
	updateTask       *MockUpdateTaskHandler
	taskEvents       *bufferedTaskEvents

	manager actor.Actor
	agent   actor.Actor
	admin   actor.Actor

	echo *echo.Echo
}

func (s *ServerTestSuite) SetupTest() {
	s.login = &MockLoginHandler{}
	s.createUser = &MockCreateUserHandler{}
	s.createTask = &MockCreateTaskHandler{}
	s.transitionTask = &MockTransitionTaskHandler{}
	s.listTasks = &MockListTasksHandler{}
	s.getTask = &MockGetTaskHandler{}
	s.getAvailableTask = &MockGetAvailableTaskHandler{}
	s.listUsers = &MockListUsersHandler{}
	s.getUser = &MockGetUserHandler{}
	s.updateUser = &MockUpdateUserHandler{}
	s.updateTask = &MockUpdateTaskHandler{}
	s.taskEvents = &bufferedTaskEvents{}

	s.manager = s.newActor(actor.StoreManager)
	s.agent = s.newActor(actor.DeliveryAgent)
	s.admin = s.newActor(actor.Admin)

	s.echo = s.newRouter(Handlers{
		Login:            s.login,
		CreateUser:       s.createUser,
		UpdateUser:       s.updateUser,
		CreateTask:       s.createTask,
		UpdateTask:       s.updateTask,
		TransitionTask:   s.transitionTask,
		ListTasks:        s.listTasks,
		GetTask:          s.getTask,
		GetAvailableTask: s.getAvailableTask,
		ListUsers:        s.listUsers,
		GetUser:          s.getUser,
		TaskEvents:       s.taskEvents,
	})
}

func (s *ServerTestSuite) newRouter(handlers Handlers) *echo.Echo {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	e, err := NewRouter(NewServer(handlers, logger), RouterConfig{
		Logger: logger,
		TokenParser: staticTokens{
			"manager-token": s.manager,
			"agent-token":   s.agent,
			"admin-token":   s.admin,
		},
	})
	s.Require().NoError(err)
	return e
}

func (s *ServerTestSuite) TearDownTest() {
	s.login.AssertExpectations(s.T())
	s.createUser.AssertExpectations(s.T())
	s.createTask.AssertExpectations(s.T())
	s.transitionTask.AssertExpectations(s.T())
	s.listTasks.AssertExpectations(s.T())
	s.getTask.AssertExpectations(s.T())
	s.getAvailableTask.AssertExpectations(s.T())
	s.listUsers.AssertExpectations(s.T())
	s.getUser.AssertExpectations(s.T())
	s.updateUser.AssertExpectations(s.T())
	s.updateTask.AssertExpectations(s.T())
}

func (s *ServerTestSuite) newActor(role actor.Role) actor.Actor {
	a, err := actor.NewActor(kernel.NewUUID(), role)
	s.Require().NoError(err)
	return a
}

func (s *ServerTestSuite) newTask() *task.Task {
	creatorID, _ := s.manager.ID()
	destination, err := kernel.NewDestination("Down Town")
	s.Require().NoError(err)
	tsk, err := task.NewTask(kernel.NewUUID(), creatorID, "Hot Chicken Kathi Roll", destination, task.High,
		time.Now().UTC())
	s.Require().NoError(err)
	return tsk
}

func (s *ServerTestSuite) do(method, target, token, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func (s *ServerTestSuite) decodeError(rec *httptest.ResponseRecorder) Error {
	var body Error
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func (s *ServerTestSuite) TestHealth() {
	rec := s.do(http.MethodGet, "/health", "", "")

	s.Equal(http.StatusOK, rec.Code)
	s.Equal("Healthy", rec.Body.String())
}

func (s *ServerTestSuite) TestUnknownRoute() {
	rec := s.do(http.MethodGet, "/reports", "", "")

	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal(http.StatusNotFound, s.decodeError(rec).Code)
}

func (s *ServerTestSuite) TestLogin() {
	expiresAt := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	s.login.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.LoginCommand) bool {
		return cmd.Email() == "m1@example.com" && cmd.Password() == "secret"
	})).Return(commands.LoginResult{Token: "signed", ExpiresAt: expiresAt}, nil).Once()

	rec := s.do(http.MethodPost, "/login", "", `{"email":"m1@example.com","password":"secret"}`)

	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var body LoginResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Equal("signed", body.Token)
	s.True(expiresAt.Equal(body.ExpiresAt))
}

func (s *ServerTestSuite) TestLogin_BadCredentials() {
	s.login.On("Handle", mock.Anything, mock.Anything).
		Return(commands.LoginResult{}, errs.NewUnauthorizedError("invalid credentials")).Once()

	rec := s.do(http.MethodPost, "/login", "", `{"email":"m1@example.com","password":"wrong"}`)

	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *ServerTestSuite) TestInvalidToken() {
	rec := s.do(http.MethodGet, "/tasks", "forged", "")

	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal("invalid or expired token", s.decodeError(rec).Message)
}

func (s *ServerTestSuite) TestMalformedAuthorizationHeader() {
	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.Header.Set(echo.HeaderAuthorization, "Basic Zm9vOmJhcg==")
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *ServerTestSuite) TestCreateTask() {
	created := s.newTask()
	s.createTask.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.CreateTaskCommand) bool {
		return cmd.Creator().Is(s.managerID()) &&
			cmd.Title() == "Hot Chicken Kathi Roll" &&
			cmd.Priority() == task.High
	})).Return(created, nil).Once()

	rec := s.do(http.MethodPost, "/tasks", "manager-token",
		`{"title":"Hot Chicken Kathi Roll","destination":"Down Town","priority":"high"}`)

	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var body TaskDetail
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Equal(created.ID().Bytes(), body.ID)
	s.Equal("new", body.State)
	s.Equal("high", body.Priority)
	s.Nil(body.AssigneeID)
	s.Equal(1, body.Version)
	s.Require().Len(body.History, 1)
	s.Equal(1, body.History[0].Sequence)
	s.Equal("new", body.History[0].State)
}

func (s *ServerTestSuite) TestCreateTask_MissingFieldIsRejectedBeforeHandler() {
	rec := s.do(http.MethodPost, "/tasks", "manager-token", `{"title":"Kathi Roll","destination":"Down Town"}`)

	s.Equal(http.StatusBadRequest, rec.Code)
	s.createTask.AssertNotCalled(s.T(), "Handle", mock.Anything, mock.Anything)
}

func (s *ServerTestSuite) TestCreateTask_UnknownPriority() {
	rec := s.do(http.MethodPost, "/tasks", "manager-token",
		`{"title":"Kathi Roll","destination":"Down Town","priority":"urgent"}`)

	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *ServerTestSuite) TestCreateTask_Anonymous() {
	s.createTask.On("Handle", mock.Anything, mock.Anything).
		Return(nil, errs.NewUnauthorizedError("only store managers create tasks")).Once()

	rec := s.do(http.MethodPost, "/tasks", "",
		`{"title":"Kathi Roll","destination":"Down Town","priority":"low"}`)

	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *ServerTestSuite) TestCreateTask_WrongRole() {
	s.createTask.On("Handle", mock.Anything, mock.Anything).
		Return(nil, errs.NewUnauthorizedError("only store managers create tasks")).Once()

	rec := s.do(http.MethodPost, "/tasks", "agent-token",
		`{"title":"Kathi Roll","destination":"Down Town","priority":"low"}`)

	s.Equal(http.StatusForbidden, rec.Code)
	s.False(s.decodeError(rec).Retryable)
}

func (s *ServerTestSuite) TestTransitionTask() {
	tsk := s.newTask()
	_, err := tsk.RecordTransition(task.Accepted, s.agent, time.Now().UTC())
	s.Require().NoError(err)

	s.transitionTask.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.TransitionTaskCommand) bool {
		return cmd.TaskID().IsEqual(tsk.ID()) && cmd.Action() == services.Accept && cmd.Actor().Is(s.agentID())
	})).Return(tsk, nil).Once()

	rec := s.do(http.MethodPost, "/tasks/"+tsk.ID().String()+"/accept", "agent-token", "")

	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var body TaskDetail
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Equal("accepted", body.State)
	s.Equal(2, body.Version)
	s.Require().NotNil(body.AssigneeID)
	s.Equal(s.agentID().Bytes(), *body.AssigneeID)
}

func (s *ServerTestSuite) TestTransitionTask_UnknownAction() {
	rec := s.do(http.MethodPost, "/tasks/"+kernel.NewUUID().String()+"/fly", "agent-token", "")

	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *ServerTestSuite) TestTransitionTask_Conflict() {
	s.transitionTask.On("Handle", mock.Anything, mock.Anything).
		Return(nil, errs.NewConflictError("task", kernel.NewUUID())).Once()

	rec := s.do(http.MethodPost, "/tasks/"+kernel.NewUUID().String()+"/accept", "agent-token", "")

	s.Equal(http.StatusConflict, rec.Code)
	s.True(s.decodeError(rec).Retryable)
}

func (s *ServerTestSuite) TestTransitionTask_InvalidTransition() {
	s.transitionTask.On("Handle", mock.Anything, mock.Anything).
		Return(nil, errs.NewInvalidTransitionError(task.Completed, task.Accepted)).Once()

	rec := s.do(http.MethodPost, "/tasks/"+kernel.NewUUID().String()+"/accept", "agent-token", "")

	s.Equal(http.StatusConflict, rec.Code)
	s.False(s.decodeError(rec).Retryable)
}

func (s *ServerTestSuite) TestGetTask_NotFound() {
	id := kernel.NewUUID()
	s.getTask.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.GetTaskQuery) bool {
		return q.TaskID().IsEqual(id)
	})).Return(queries.TaskDetail{}, errs.NewObjectNotFoundError("task", id)).Once()

	rec := s.do(http.MethodGet, "/tasks/"+id.String(), "agent-token", "")

	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *ServerTestSuite) TestGetTask_MalformedID() {
	rec := s.do(http.MethodGet, "/tasks/12345", "agent-token", "")

	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *ServerTestSuite) TestGetTask_InternalErrorIsHidden() {
	s.getTask.On("Handle", mock.Anything, mock.Anything).
		Return(queries.TaskDetail{}, errors.New("connection reset by peer")).Once()

	rec := s.do(http.MethodGet, "/tasks/"+kernel.NewUUID().String(), "admin-token", "")

	s.Equal(http.StatusInternalServerError, rec.Code)
	s.Equal(http.StatusText(http.StatusInternalServerError), s.decodeError(rec).Message)
}

func (s *ServerTestSuite) TestListTasks_StateFilter() {
	summary := queries.TaskSummary{
		ID:          kernel.NewUUID(),
		Title:       "Kathi Roll",
		Destination: "Down Town",
		Priority:    task.Low,
		CreatorID:   *s.managerID(),
		AssigneeID:  s.agentID(),
		State:       task.Accepted,
		Version:     2,
	}
	s.listTasks.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.ListTasksQuery) bool {
		states := q.States()
		return len(states) == 2 && states[0] == task.Accepted && states[1] == task.Completed
	})).Return([]queries.TaskSummary{summary}, nil).Once()

	rec := s.do(http.MethodGet, "/tasks?state=accepted&state=completed", "agent-token", "")

	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var body []Task
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Require().Len(body, 1)
	s.Equal("accepted", body[0].State)
	s.Equal(summary.ID.Bytes(), body[0].ID)
}

func (s *ServerTestSuite) TestListTasks_EmptyIsArray() {
	s.listTasks.On("Handle", mock.Anything, mock.Anything).Return([]queries.TaskSummary{}, nil).Once()

	rec := s.do(http.MethodGet, "/tasks", "", "")

	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`[]`, rec.Body.String())
}

func (s *ServerTestSuite) TestListTasks_UnknownState() {
	rec := s.do(http.MethodGet, "/tasks?state=lost", "agent-token", "")

	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *ServerTestSuite) TestGetAvailableTask_NoneWaiting() {
	s.getAvailableTask.On("Handle", mock.Anything, mock.Anything).
		Return(queries.TaskSummary{}, errs.NewObjectNotFoundError("task", "available")).Once()

	rec := s.do(http.MethodGet, "/tasks/available", "agent-token", "")

	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *ServerTestSuite) TestCreateUser() {
	created, err := user.NewUser(kernel.NewUUID(), "Agent One", "a1@example.com", "password1", actor.DeliveryAgent, 4)
	s.Require().NoError(err)
	s.createUser.On("Handle", mock.Anything, mock.Anything).Return(created, nil).Once()

	rec := s.do(http.MethodPost, "/users", "admin-token",
		`{"name":"Agent One","email":"a1@example.com","password":"password1","role":"delivery_agent"}`)

	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	s.NotContains(rec.Body.String(), "password")
	var body User
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Equal("delivery_agent", body.Role)
	s.Equal("a1@example.com", body.Email)
}

func (s *ServerTestSuite) TestCreateUser_DuplicateEmail() {
	s.createUser.On("Handle", mock.Anything, mock.Anything).
		Return(nil, errs.NewConflictError("user", "a1@example.com")).Once()

	rec := s.do(http.MethodPost, "/users", "admin-token",
		`{"name":"Agent One","email":"a1@example.com","password":"password1","role":"delivery_agent"}`)

	s.Equal(http.StatusConflict, rec.Code)
}

func (s *ServerTestSuite) TestListUsers_Forbidden() {
	s.listUsers.On("Handle", mock.Anything, mock.Anything).
		Return([]queries.UserSummary(nil), errs.NewUnauthorizedError("only admins may list users")).Once()

	rec := s.do(http.MethodGet, "/users", "manager-token", "")

	s.Equal(http.StatusForbidden, rec.Code)
}

func (s *ServerTestSuite) TestGetUser_Self() {
	id := *s.agentID()
	s.getUser.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.GetUserQuery) bool {
		return q.UserID().IsEqual(id) && q.Actor().Is(&id)
	})).Return(queries.UserSummary{ID: id, Name: "Agent One", Email: "a1@example.com", Role: actor.DeliveryAgent}, nil).
		Once()

	rec := s.do(http.MethodGet, "/users/"+id.String(), "agent-token", "")

	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var body User
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Equal(id.Bytes(), body.ID)
	s.Equal("delivery_agent", body.Role)
}

func (s *ServerTestSuite) TestGetUser_SomeoneElse() {
	s.getUser.On("Handle", mock.Anything, mock.Anything).
		Return(queries.UserSummary{}, errs.NewUnauthorizedError("only admins may read other users")).Once()

	rec := s.do(http.MethodGet, "/users/"+kernel.NewUUID().String(), "agent-token", "")

	s.Equal(http.StatusForbidden, rec.Code)
}

func (s *ServerTestSuite) TestUpdateUser_PartialBody() {
	id := *s.agentID()
	updated, err := user.NewUser(id, "Agent Renamed", "a1@example.com", "password1", actor.DeliveryAgent, 4)
	s.Require().NoError(err)
	s.updateUser.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.UpdateUserCommand) bool {
		changes := cmd.Changes()
		return cmd.UserID().IsEqual(id) &&
			changes.Name != nil && *changes.Name == "Agent Renamed" &&
			changes.Email == nil && changes.Password == nil && changes.Role == nil
	})).Return(updated, nil).Once()

	rec := s.do(http.MethodPut, "/users/"+id.String(), "agent-token", `{"name":"Agent Renamed"}`)

	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.NotContains(rec.Body.String(), "password")
	var body User
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Equal("Agent Renamed", body.Name)
}

func (s *ServerTestSuite) TestUpdateUser_RoleIsParsed() {
	id := *s.agentID()
	updated, err := user.NewUser(id, "Agent One", "a1@example.com", "password1", actor.StoreManager, 4)
	s.Require().NoError(err)
	s.updateUser.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.UpdateUserCommand) bool {
		role := cmd.Changes().Role
		return cmd.By().Is(s.adminID()) && role != nil && *role == actor.StoreManager
	})).Return(updated, nil).Once()

	rec := s.do(http.MethodPut, "/users/"+id.String(), "admin-token", `{"role":"store_manager"}`)

	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
}

func (s *ServerTestSuite) TestUpdateUser_EmptyBodyIsRejectedBeforeHandler() {
	rec := s.do(http.MethodPut, "/users/"+s.agentID().String(), "agent-token", `{}`)

	s.Equal(http.StatusBadRequest, rec.Code)
	s.updateUser.AssertNotCalled(s.T(), "Handle", mock.Anything, mock.Anything)
}

func (s *ServerTestSuite) TestUpdateTask() {
	tsk := s.newTask()
	destination, err := kernel.NewDestination("Up Town")
	s.Require().NoError(err)
	s.Require().NoError(tsk.Edit("Paneer Roll", destination, task.Low, time.Now().UTC()))

	s.updateTask.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.UpdateTaskCommand) bool {
		return cmd.TaskID().IsEqual(tsk.ID()) &&
			cmd.Actor().Is(s.managerID()) &&
			cmd.Title() == "Paneer Roll" &&
			cmd.Priority() == task.Low
	})).Return(tsk, nil).Once()

	rec := s.do(http.MethodPut, "/tasks/"+tsk.ID().String(), "manager-token",
		`{"title":"Paneer Roll","destination":"Up Town","priority":"low"}`)

	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var body TaskDetail
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Equal("Paneer Roll", body.Title)
	s.Equal("Up Town", body.Destination)
	s.Equal("low", body.Priority)
	s.Equal(1, body.Version)
}

func (s *ServerTestSuite) TestUpdateTask_NoLongerNew() {
	id := kernel.NewUUID()
	s.updateTask.On("Handle", mock.Anything, mock.Anything).
		Return(nil, errs.NewInvalidStateError("task", id, task.Accepted, "only a new task can be edited")).Once()

	rec := s.do(http.MethodPut, "/tasks/"+id.String(), "manager-token",
		`{"title":"Paneer Roll","destination":"Up Town","priority":"low"}`)

	s.Equal(http.StatusConflict, rec.Code)
	s.False(s.decodeError(rec).Retryable)
}

func (s *ServerTestSuite) TestStreamTaskEvents() {
	taskID := kernel.NewUUID()
	s.taskEvents.messages = []redisout.StateChangedMessage{
		{TaskID: taskID.String(), CreatorID: s.managerID().String(), From: "new", To: "accepted", Sequence: 2},
		{TaskID: taskID.String(), CreatorID: s.managerID().String(), From: "accepted", To: "completed", Sequence: 3},
	}
	srv := httptest.NewServer(s.echo)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/tasks/events",
		&websocket.DialOptions{
			HTTPHeader: http.Header{echo.HeaderAuthorization: []string{"Bearer manager-token"}},
		})
	s.Require().NoError(err)
	defer conn.CloseNow()

	for i, want := range []string{"accepted", "completed"} {
		typ, data, readErr := conn.Read(ctx)
		s.Require().NoError(readErr)
		s.Equal(websocket.MessageText, typ)

		var msg redisout.StateChangedMessage
		s.Require().NoError(json.Unmarshal(data, &msg))
		s.Equal(taskID.String(), msg.TaskID)
		s.Equal(want, msg.To)
		s.Equal(i+2, msg.Sequence)
	}

	_, _, err = conn.Read(ctx)
	s.Equal(websocket.StatusNormalClosure, websocket.CloseStatus(err))

	subscribed := s.taskEvents.Subscribed()
	s.Require().Len(subscribed, 1)
	s.True(subscribed[0].IsEqual(*s.managerID()))
	s.Eventually(func() bool { return s.taskEvents.CleanedUp() == 1 }, time.Second, 10*time.Millisecond)
}

func (s *ServerTestSuite) TestStreamTaskEvents_OnlyStoreManagers() {
	s.Equal(http.StatusForbidden, s.do(http.MethodGet, "/tasks/events", "agent-token", "").Code)
	s.Equal(http.StatusForbidden, s.do(http.MethodGet, "/tasks/events", "admin-token", "").Code)
	s.Equal(http.StatusUnauthorized, s.do(http.MethodGet, "/tasks/events", "", "").Code)
	s.Empty(s.taskEvents.Subscribed())
}

func (s *ServerTestSuite) TestStreamTaskEvents_Disabled() {
	s.echo = s.newRouter(Handlers{})

	rec := s.do(http.MethodGet, "/tasks/events", "manager-token", "")

	s.Equal(http.StatusServiceUnavailable, rec.Code)
}

func (s *ServerTestSuite) adminID() *kernel.UUID {
	id, _ := s.admin.ID()
	return &id
}

func (s *ServerTestSuite) managerID() *kernel.UUID {
	id, _ := s.manager.ID()
	return &id
}

func (s *ServerTestSuite) agentID() *kernel.UUID {
	id, _ := s.agent.ID()
	return &id
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func TestErrorStatus(t *testing.T) {
	id := kernel.NewUUID()

	tests := []struct {
		name          string
		err           error
		anonymous     bool
		wantStatus    int
		wantRetryable bool
	}{
		{"not found", errs.NewObjectNotFoundError("task", id), false, http.StatusNotFound, false},
		{"invalid value", errs.NewValueIsInvalidError("title"), false, http.StatusBadRequest, false},
		{"required value", errs.NewValueIsRequiredError("title"), false, http.StatusBadRequest, false},
		{"out of range", errs.NewValueIsOutOfRangeError("priority", 9, 1, 3), false, http.StatusBadRequest, false},
		{
			"invalid transition",
			errs.NewInvalidTransitionError(task.Completed, task.New),
			false, http.StatusConflict, false,
		},
		{
			"edit after new",
			errs.NewInvalidStateError("task", id, task.Accepted, "only a new task can be edited"),
			false, http.StatusConflict, false,
		},
		{"conflict", errs.NewConflictError("task", id), false, http.StatusConflict, true},
		{"unauthorized anonymous", errs.NewUnauthorizedError("x"), true, http.StatusUnauthorized, false},
		{"unauthorized known actor", errs.NewUnauthorizedError("x"), false, http.StatusForbidden, false},
		{"corrupt ledger", errs.NewVersionIsInvalidError("history"), false, http.StatusInternalServerError, false},
		{"unexpected", errors.New("boom"), false, http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, retryable := errorStatus(tt.err, tt.anonymous)

			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantRetryable, retryable)
		})
	}
}

func TestLoadOpenAPI(t *testing.T) {
	doc, err := LoadOpenAPI()

	require.NoError(t, err)
	assert.NotNil(t, doc.Paths.Find("/tasks/{id}/{action}"))
	assert.NotNil(t, doc.Paths.Find("/tasks/events").Get)
	assert.NotNil(t, doc.Paths.Find("/tasks/{id}").Put)
	assert.NotNil(t, doc.Paths.Find("/users/{id}").Put)
}
