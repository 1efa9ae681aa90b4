package taskrepo

import (
	"context"
	"errors"
	"fmt"

	"deliverytasks/internal/core/domain/model/kernel"
	"deliverytasks/internal/core/domain/model/task"
	"deliverytasks/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository implements ports.TaskRepository using GORM. The *gorm.DB
// must be opened with TranslateError so unique violations surface as
// gorm.ErrDuplicatedKey.
type GormTaskRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormTaskRepository(db *gorm.DB, tracker aggregateTracker) *GormTaskRepository {
	return &GormTaskRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add inserts the task row and its ledger. A creator that is not a stored
// user yields errs.ErrObjectNotFound.
func (r *GormTaskRepository) Add(ctx context.Context, aggregate *task.Task) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(&dto).Error; err != nil {
		return translate(err, aggregate.ID())
	}
	if err := db.Create(&dto.States).Error; err != nil {
		return translate(err, aggregate.ID())
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get loads a task with its ledger ordered by sequence.
func (r *GormTaskRepository) Get(ctx context.Context, id kernel.UUID) (*task.Task, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto TaskDTO
	err := r.db.WithContext(ctx).
		Preload("States", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence")
		}).
		First(&dto, "id = ?", id.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("task", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// AppendState inserts one ledger record; a taken sequence is a conflict.
func (r *GormTaskRepository) AppendState(ctx context.Context, aggregate *task.Task, record task.StateRecord) error {
	if err := errors.Join(aggregate.Validate(), record.Validate()); err != nil {
		return err
	}
	if !record.TaskID().IsEqual(aggregate.ID()) {
		return errs.NewValueIsInvalidErrorWithCause("record",
			fmt.Errorf("record of task %s appended to task %s", record.TaskID(), aggregate.ID()))
	}

	dto := recordFromDomain(record)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return translate(err, aggregate.ID())
	}
	return nil
}

// Update writes the mutable columns if the stored version is expectedVersion.
func (r *GormTaskRepository) Update(ctx context.Context, aggregate *task.Task, expectedVersion int) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&TaskDTO{}).
		Where("id = ? AND version = ?", dto.ID, expectedVersion).
		Updates(map[string]any{
			"title":           dto.Title,
			"destination":     dto.Destination,
			"priority":        dto.Priority,
			"assignee_id":     dto.AssigneeID,
			"last_updated_at": dto.LastUpdatedAt,
			"version":         dto.Version,
		})
	if result.Error != nil {
		return translate(result.Error, aggregate.ID())
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&TaskDTO{}).Where("id = ?", dto.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errs.NewObjectNotFoundError("task", aggregate.ID().String())
		}
		return errs.NewConflictError("task", aggregate.ID().String())
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func translate(err error, id kernel.UUID) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errs.NewConflictErrorWithCause("task", id.String(), err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return errs.NewObjectNotFoundErrorWithCause("user of task", id.String(), err)
	default:
		return err
	}
}
