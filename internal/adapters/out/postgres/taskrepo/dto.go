// Package taskrepo persists task aggregates and their state ledgers with GORM.
package taskrepo

import (
	"time"

	"deliverytasks/internal/adapters/out/postgres/userrepo"
	"deliverytasks/internal/core/domain/model/kernel"
	"deliverytasks/internal/core/domain/model/task"

	"github.com/google/uuid"
)

// TaskDTO is a row of the tasks table. Version equals the number of ledger
// records and guards concurrent updates. Creator and Assignee exist only to
// declare the foreign keys to users; they are never loaded or saved.
type TaskDTO struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey"`
	Title         string           `gorm:"type:varchar(140);not null"`
	Destination   string           `gorm:"type:varchar(140);not null"`
	Priority      int              `gorm:"type:smallint;not null;index"`
	CreatorID     uuid.UUID        `gorm:"type:uuid;not null;index"`
	AssigneeID    *uuid.UUID       `gorm:"type:uuid;index"`
	CreatedAt     time.Time        `gorm:"type:timestamptz;not null;index"`
	LastUpdatedAt time.Time        `gorm:"type:timestamptz;not null"`
	Version       int              `gorm:"type:int;not null"`
	States        []StateRecordDTO `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`

	Creator  *userrepo.UserDTO `gorm:"foreignKey:CreatorID;constraint:OnDelete:RESTRICT"`
	Assignee *userrepo.UserDTO `gorm:"foreignKey:AssigneeID;constraint:OnDelete:RESTRICT"`
}

func (TaskDTO) TableName() string {
	return "tasks"
}

// StateRecordDTO is one ledger row. The composite primary key makes a second
// writer of the same sequence fail with a unique violation.
type StateRecordDTO struct {
	TaskID     uuid.UUID `gorm:"type:uuid;primaryKey;autoIncrement:false"`
	Sequence   int       `gorm:"type:int;primaryKey;autoIncrement:false"`
	State      int       `gorm:"type:smallint;not null"`
	RecordedAt time.Time `gorm:"type:timestamptz;not null"`
}

func (StateRecordDTO) TableName() string {
	return "task_states"
}

func fromDomain(aggregate *task.Task) TaskDTO {
	var assigneeID *uuid.UUID
	if id := aggregate.AssigneeID(); id != nil {
		raw := id.Bytes()
		assigneeID = &raw
	}

	history := aggregate.History()
	states := make([]StateRecordDTO, 0, len(history))
	for _, record := range history {
		states = append(states, recordFromDomain(record))
	}

	return TaskDTO{
		ID:            aggregate.ID().Bytes(),
		Title:         aggregate.Title(),
		Destination:   aggregate.Destination().String(),
		Priority:      int(aggregate.Priority()),
		CreatorID:     aggregate.CreatorID().Bytes(),
		AssigneeID:    assigneeID,
		CreatedAt:     aggregate.CreatedAt(),
		LastUpdatedAt: aggregate.LastUpdatedAt(),
		Version:       aggregate.Version(),
		States:        states,
	}
}

func recordFromDomain(record task.StateRecord) StateRecordDTO {
	return StateRecordDTO{
		TaskID:     record.TaskID().Bytes(),
		Sequence:   record.Sequence(),
		State:      int(record.State()),
		RecordedAt: record.RecordedAt(),
	}
}

func toDomain(dto TaskDTO) (*task.Task, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	creatorID, err := kernel.UUIDFromBytes(dto.CreatorID[:])
	if err != nil {
		return nil, err
	}

	var assigneeID *kernel.UUID
	if dto.AssigneeID != nil {
		aID, assigneeErr := kernel.UUIDFromBytes((*dto.AssigneeID)[:])
		if assigneeErr != nil {
			return nil, assigneeErr
		}
		assigneeID = &aID
	}

	destination, err := kernel.NewDestination(dto.Destination)
	if err != nil {
		return nil, err
	}

	history := make([]task.StateRecord, 0, len(dto.States))
	for _, s := range dto.States {
		record, recordErr := task.NewStateRecord(id, s.Sequence, task.State(s.State), s.RecordedAt)
		if recordErr != nil {
			return nil, recordErr
		}
		history = append(history, record)
	}

	return task.RestoreTask(
		id,
		creatorID,
		assigneeID,
		dto.Title,
		destination,
		task.Priority(dto.Priority),
		dto.CreatedAt,
		dto.LastUpdatedAt,
		history,
	)
}
