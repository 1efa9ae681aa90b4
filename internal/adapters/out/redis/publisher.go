// Package redis publishes task state changes on Redis pub/sub channels, one
// channel per store manager, so a manager's clients can follow the tasks
// they created.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"deliverytasks/internal/core/domain/model/kernel"
	"deliverytasks/internal/core/domain/model/task"

	"github.com/redis/go-redis/v9"
)

// StateChangedMessage is the JSON payload of a published event.
type StateChangedMessage struct {
	TaskID     string    `json:"task_id"`
	CreatorID  string    `json:"creator_id"`
	AssigneeID *string   `json:"assignee_id,omitempty"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	Sequence   int       `json:"sequence"`
	At         time.Time `json:"at"`
}

// TaskEventPublisher implements ports.TaskEventPublisher.
type TaskEventPublisher struct {
	client *redis.Client
}

// New connects and pings the server.
func New(ctx context.Context, addr, password string, db int) (*TaskEventPublisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis.New: ping: %w", err)
	}

	return &TaskEventPublisher{client: client}, nil
}

func (p *TaskEventPublisher) Close() error {
	if err := p.client.Close(); err != nil {
		return fmt.Errorf("redis.TaskEventPublisher.Close: %w", err)
	}
	return nil
}

func (p *TaskEventPublisher) Publish(ctx context.Context, event task.StateChanged) error {
	payload, err := json.Marshal(MessageFromEvent(event))
	if err != nil {
		return fmt.Errorf("redis.TaskEventPublisher.Publish: %w", err)
	}

	if err = p.client.Publish(ctx, TaskChannel(event.CreatorID), payload).Err(); err != nil {
		return fmt.Errorf("redis.TaskEventPublisher.Publish: %w", err)
	}
	return nil
}

// Subscribe streams the messages published for tasks created by creatorID
// until ctx is done or cleanup is called.
func (p *TaskEventPublisher) Subscribe(
	ctx context.Context,
	creatorID kernel.UUID,
) (<-chan StateChangedMessage, func(), error) {
	sub := p.client.Subscribe(ctx, TaskChannel(creatorID))

	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("redis.TaskEventPublisher.Subscribe: receive confirmation: %w", err)
	}

	out := make(chan StateChangedMessage, 64)
	redisCh := sub.Channel()

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-redisCh:
				if !ok {
					return
				}
				var decoded StateChangedMessage
				if err := json.Unmarshal([]byte(msg.Payload), &decoded); err != nil {
					continue
				}
				select {
				case out <- decoded:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	cleanup := func() {
		_ = sub.Close()
	}

	return out, cleanup, nil
}

func MessageFromEvent(event task.StateChanged) StateChangedMessage {
	msg := StateChangedMessage{
		TaskID:    event.TaskID.String(),
		CreatorID: event.CreatorID.String(),
		From:      event.From.String(),
		To:        event.To.String(),
		Sequence:  event.Sequence,
		At:        event.At.UTC(),
	}
	if event.AssigneeID != nil {
		assignee := event.AssigneeID.String()
		msg.AssigneeID = &assignee
	}
	return msg
}

// TaskChannel returns the channel carrying events of tasks created by creatorID.
func TaskChannel(creatorID kernel.UUID) string {
	return "tasks:" + creatorID.String()
}
