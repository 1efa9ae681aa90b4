package cmd

import (
	"context"
	"errors"
	"fmt"

	"deliverytasks/internal/core/application/usecases/commands"
	"deliverytasks/internal/core/domain/model/actor"
	"deliverytasks/internal/core/domain/model/task"
	"deliverytasks/internal/core/domain/services"
	"deliverytasks/internal/pkg/errs"
)

// ErrAlreadySeeded is returned when the demo accounts already exist.
var ErrAlreadySeeded = errors.New("database is already seeded")

type seedUser struct {
	name     string
	email    string
	password string
	role     actor.Role
}

type seedTask struct {
	creator     int
	title       string
	destination string
	priority    string
}

var (
	seedUsers = []seedUser{
		{"Admin", "admin@delivery.local", "adminadmin", actor.Admin},
		{"John Sena", "john@cena.com", "johncena", actor.StoreManager},
		{"Tony Stark", "tony@stark.com", "tonystark", actor.StoreManager},
		{"Agent Vinod", "agent@vinod.com", "agentvinod", actor.DeliveryAgent},
		{"Flash Superhero", "flash@superhero.com", "flashsuperhero", actor.DeliveryAgent},
		{"Spider Man", "spider@man.com", "spiderman", actor.DeliveryAgent},
	}
	seedTasks = []seedTask{
		{1, "Hot Chicken Kathi Roll", "Down Town", "medium"},
		{1, "Mutton Biryani", "Home", "high"},
		{2, "Gulab Jamun, Phirni", "Home", "low"},
	}
)

// SeedReport counts what Seed created.
type SeedReport struct {
	Users       int
	Tasks       int
	Transitions int
}

// Seed creates demo accounts and tasks through the regular command handlers,
// then has the first delivery agent accept the first task.
func (c *CompositionRoot) Seed(ctx context.Context) (SeedReport, error) {
	var report SeedReport

	createUser := c.CreateCreateUserCommandHandler()
	createTask := c.CreateCreateTaskCommandHandler()
	transition := c.CreateTransitionTaskCommandHandler()

	actors := make([]actor.Actor, 0, len(seedUsers))
	for i, su := range seedUsers {
		cmd, err := commands.NewSystemCreateUserCommand(su.name, su.email, su.password, su.role)
		if err != nil {
			return report, err
		}
		created, err := createUser.Handle(ctx, cmd)
		if err != nil {
			if i == 0 && errors.Is(err, errs.ErrConflict) {
				return report, ErrAlreadySeeded
			}
			return report, fmt.Errorf("seed user %s: %w", su.email, err)
		}
		a, err := created.Actor()
		if err != nil {
			return report, err
		}
		actors = append(actors, a)
		report.Users++
	}

	tasks := make([]*task.Task, 0, len(seedTasks))
	for _, st := range seedTasks {
		cmd, err := commands.NewCreateTaskCommand(actors[st.creator], st.title, st.destination, st.priority)
		if err != nil {
			return report, err
		}
		created, err := createTask.Handle(ctx, cmd)
		if err != nil {
			return report, fmt.Errorf("seed task %q: %w", st.title, err)
		}
		tasks = append(tasks, created)
		report.Tasks++
	}

	accept, err := commands.NewTransitionTaskCommand(actors[3], tasks[0].ID(), services.Accept)
	if err != nil {
		return report, err
	}
	if _, err = transition.Handle(ctx, accept); err != nil {
		return report, fmt.Errorf("seed accept: %w", err)
	}
	report.Transitions++

	c.logger.InfoContext(ctx, "Seeded database",
		"users", report.Users,
		"tasks", report.Tasks,
		"transitions", report.Transitions)
	return report, nil
}
