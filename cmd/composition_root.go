package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	httpin "deliverytasks/internal/adapters/in/http"
	"deliverytasks/internal/adapters/out/postgres"
	"deliverytasks/internal/adapters/out/redis"
	"deliverytasks/internal/core/application/usecases/commands"
	"deliverytasks/internal/core/application/usecases/queries"
	"deliverytasks/internal/core/domain/services"
	"deliverytasks/internal/core/ports"
	"deliverytasks/internal/jobs"
	"deliverytasks/internal/pkg/auth"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	config     Config
	logger     *slog.Logger
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	publisher  *redis.TaskEventPublisher
	tokens     *auth.TokenManager
	lifecycle  services.Lifecycle
	visibility services.VisibilityPolicy
	bcryptCost int
}

// NewCompositionRoot wires the application around an open database. Task
// events go to Redis when REDIS_ADDR is set and are dropped otherwise.
func NewCompositionRoot(ctx context.Context, config Config, gormDB *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	tokens, err := auth.NewTokenManager(config.JWTSecret, config.JWTTTL)
	if err != nil {
		return nil, fmt.Errorf("token manager: %w", err)
	}

	root := &CompositionRoot{
		config:     config,
		logger:     logger,
		gormDB:     gormDB,
		tokens:     tokens,
		lifecycle:  services.NewLifecycle(services.NewTransitionPolicy()),
		visibility: services.NewVisibilityPolicy(),
		bcryptCost: bcrypt.DefaultCost,
	}

	var publisher ports.TaskEventPublisher
	if config.RedisAddr != "" {
		root.publisher, err = redis.New(ctx, config.RedisAddr, config.RedisPassword, config.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		publisher = root.publisher
		logger.InfoContext(ctx, "Publishing task events to redis", "addr", config.RedisAddr)
	} else {
		logger.InfoContext(ctx, "REDIS_ADDR is not set, task events will not be published")
	}

	root.uowFactory = postgres.NewGormUnitOfWorkFactory(gormDB, publisher, logger)
	return root, nil
}

func (c *CompositionRoot) Config() Config {
	return c.config
}

func (c *CompositionRoot) Logger() *slog.Logger {
	return c.logger
}

// Migrate creates or updates the schema.
func (c *CompositionRoot) Migrate(ctx context.Context) error {
	if err := postgres.Migrate(c.gormDB.WithContext(ctx)); err != nil {
		return err
	}
	c.logger.InfoContext(ctx, "Schema is up to date")
	return nil
}

// Close releases connections owned by the root.
func (c *CompositionRoot) Close() error {
	var closeErrs []error
	if c.publisher != nil {
		closeErrs = append(closeErrs, c.publisher.Close())
	}
	if sqlDB, err := c.gormDB.DB(); err == nil {
		closeErrs = append(closeErrs, sqlDB.Close())
	}
	return errors.Join(closeErrs...)
}

func (c *CompositionRoot) taskUoWFactory() commands.TaskUoWFactory {
	return FuncTaskUoWFactory(func() commands.TaskUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) userUoWFactory() commands.UserUoWFactory {
	return FuncUserUoWFactory(func() commands.UserUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateCreateTaskCommandHandler() *commands.CreateTaskCommandHandler {
	h := commands.NewCreateTaskCommandHandler(c.taskUoWFactory(), c.lifecycle)
	return &h
}

func (c *CompositionRoot) CreateTransitionTaskCommandHandler() *commands.TransitionTaskCommandHandler {
	h := commands.NewTransitionTaskCommandHandler(c.taskUoWFactory(), c.lifecycle, c.logger)
	return &h
}

func (c *CompositionRoot) CreateCreateUserCommandHandler() *commands.CreateUserCommandHandler {
	h := commands.NewCreateUserCommandHandler(c.userUoWFactory(), c.bcryptCost)
	return &h
}

func (c *CompositionRoot) CreateUpdateTaskCommandHandler() *commands.UpdateTaskCommandHandler {
	h := commands.NewUpdateTaskCommandHandler(c.taskUoWFactory(), c.lifecycle, c.logger)
	return &h
}

func (c *CompositionRoot) CreateUpdateUserCommandHandler() *commands.UpdateUserCommandHandler {
	h := commands.NewUpdateUserCommandHandler(c.userUoWFactory(), c.bcryptCost)
	return &h
}

func (c *CompositionRoot) CreateLoginCommandHandler() *commands.LoginCommandHandler {
	h := commands.NewLoginCommandHandler(c.userUoWFactory(), c.tokens)
	return &h
}

func (c *CompositionRoot) CreateListTasksQueryHandler() queries.ListTasksQueryHandler {
	return queries.NewListTasksQueryHandler(c.gormDB, c.visibility)
}

func (c *CompositionRoot) CreateGetTaskQueryHandler() queries.GetTaskQueryHandler {
	return queries.NewGetTaskQueryHandler(c.gormDB, c.visibility)
}

func (c *CompositionRoot) CreateGetAvailableTaskQueryHandler() queries.GetAvailableTaskQueryHandler {
	return queries.NewGetAvailableTaskQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListUsersQueryHandler() queries.ListUsersQueryHandler {
	return queries.NewListUsersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetUserQueryHandler() queries.GetUserQueryHandler {
	return queries.NewGetUserQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateAuditLedgerQueryHandler() queries.AuditLedgerQueryHandler {
	return queries.NewAuditLedgerQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(c.CreateAuditLedgerQueryHandler(), c.config.AuditSchedule, c.logger)
}

// CreateHTTPServer builds the echo instance serving the API.
func (c *CompositionRoot) CreateHTTPServer() (*echo.Echo, error) {
	handlers := httpin.Handlers{
		Login:            c.CreateLoginCommandHandler(),
		CreateUser:       c.CreateCreateUserCommandHandler(),
		UpdateUser:       c.CreateUpdateUserCommandHandler(),
		CreateTask:       c.CreateCreateTaskCommandHandler(),
		UpdateTask:       c.CreateUpdateTaskCommandHandler(),
		TransitionTask:   c.CreateTransitionTaskCommandHandler(),
		ListTasks:        c.CreateListTasksQueryHandler(),
		GetTask:          c.CreateGetTaskQueryHandler(),
		GetAvailableTask: c.CreateGetAvailableTaskQueryHandler(),
		ListUsers:        c.CreateListUsersQueryHandler(),
		GetUser:          c.CreateGetUserQueryHandler(),
	}
	if c.publisher != nil {
		handlers.TaskEvents = c.publisher
	}
	server := httpin.NewServer(handlers, c.logger)

	return httpin.NewRouter(server, httpin.RouterConfig{
		Logger:      c.logger,
		TokenParser: c.tokens,
		RateLimit:   c.config.RateLimit,
		RateBurst:   c.config.RateBurst,
	})
}

type FuncTaskUoWFactory func() commands.TaskUoW

func (f FuncTaskUoWFactory) Create() commands.TaskUoW {
	return f()
}

type FuncUserUoWFactory func() commands.UserUoW

func (f FuncUserUoWFactory) Create() commands.UserUoW {
	return f()
}
