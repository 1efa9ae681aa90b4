package http

import (
	"time"

	"deliverytasks/internal/core/application/usecases/queries"
	"deliverytasks/internal/core/domain/model/kernel"
	"deliverytasks/internal/core/domain/model/task"
	"deliverytasks/internal/core/domain/model/user"

	"github.com/google/uuid"
)

// Error is the body of every non-2xx response.
type Error struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type NewUser struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UserUpdate is the body of PUT /users/{id}. Absent fields are kept.
type UserUpdate struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
	Role     *string `json:"role,omitempty"`
}

type User struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

type NewTask struct {
	Title       string `json:"title"`
	Destination string `json:"destination"`
	Priority    string `json:"priority"`
}

type Task struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	Destination   string     `json:"destination"`
	Priority      string     `json:"priority"`
	CreatorID     uuid.UUID  `json:"creator_id"`
	AssigneeID    *uuid.UUID `json:"assignee_id"`
	State         string     `json:"state"`
	CreatedAt     time.Time  `json:"created_at"`
	LastUpdatedAt time.Time  `json:"last_updated_at"`
	Version       int        `json:"version"`
}

type StateRecord struct {
	Sequence   int       `json:"sequence"`
	State      string    `json:"state"`
	RecordedAt time.Time `json:"recorded_at"`
}

type TaskDetail struct {
	Task
	History []StateRecord `json:"history"`
}

// ListTasksParams are the query parameters of GET /tasks.
type ListTasksParams struct {
	State *[]string `form:"state,omitempty" json:"state,omitempty"`
}

func optionalID(id *kernel.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	raw := id.Bytes()
	return &raw
}

func taskFromSummary(s queries.TaskSummary) Task {
	return Task{
		ID:            s.ID.Bytes(),
		Title:         s.Title,
		Destination:   s.Destination,
		Priority:      s.Priority.String(),
		CreatorID:     s.CreatorID.Bytes(),
		AssigneeID:    optionalID(s.AssigneeID),
		State:         s.State.String(),
		CreatedAt:     s.CreatedAt,
		LastUpdatedAt: s.LastUpdatedAt,
		Version:       s.Version,
	}
}

func taskDetailFromQuery(d queries.TaskDetail) TaskDetail {
	history := make([]StateRecord, len(d.History))
	for i, entry := range d.History {
		history[i] = StateRecord{
			Sequence:   entry.Sequence,
			State:      entry.State.String(),
			RecordedAt: entry.RecordedAt,
		}
	}
	return TaskDetail{Task: taskFromSummary(d.TaskSummary), History: history}
}

func taskDetailFromDomain(t *task.Task) TaskDetail {
	records := t.History()
	history := make([]StateRecord, len(records))
	for i, record := range records {
		history[i] = StateRecord{
			Sequence:   record.Sequence(),
			State:      record.State().String(),
			RecordedAt: record.RecordedAt(),
		}
	}

	return TaskDetail{
		Task: Task{
			ID:            t.ID().Bytes(),
			Title:         t.Title(),
			Destination:   t.Destination().String(),
			Priority:      t.Priority().String(),
			CreatorID:     t.CreatorID().Bytes(),
			AssigneeID:    optionalID(t.AssigneeID()),
			State:         t.CurrentState().String(),
			CreatedAt:     t.CreatedAt(),
			LastUpdatedAt: t.LastUpdatedAt(),
			Version:       t.Version(),
		},
		History: history,
	}
}

func userFromDomain(u *user.User) User {
	return User{
		ID:    u.ID().Bytes(),
		Name:  u.Name(),
		Email: u.Email(),
		Role:  u.Role().String(),
	}
}

func userFromSummary(u queries.UserSummary) User {
	return User{
		ID:    u.ID.Bytes(),
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role.String(),
	}
}
