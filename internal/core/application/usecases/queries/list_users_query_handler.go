package queries

import (
	"context"
	"database/sql"

	"deliverytasks/internal/core/domain/model/actor"
	"deliverytasks/internal/core/domain/model/kernel"
	"deliverytasks/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListUsersQueryHandler struct {
	db *gorm.DB
}

func NewListUsersQueryHandler(db *gorm.DB) ListUsersQueryHandler {
	return ListUsersQueryHandler{db: db}
}

// Handle returns users ordered by name, then id.
func (h ListUsersQueryHandler) Handle(ctx context.Context, query ListUsersQuery) ([]UserSummary, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	if query.Actor().Role() != actor.Admin {
		return nil, errs.NewUnauthorizedError("only admins may list users")
	}

	users := make([]UserSummary, 0)

	rows, err := h.db.WithContext(ctx).Raw(userSummarySelect + "\n\tORDER BY name, id").Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		u, scanErr := scanUserSummary(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		users = append(users, u)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

const userSummarySelect = `
	SELECT
		id,
		name,
		email,
		role
	FROM users`

func scanUserSummary(rows *sql.Rows) (UserSummary, error) {
	var u UserSummary
	var id uuid.UUID
	var role int

	if err := rows.Scan(&id, &u.Name, &u.Email, &role); err != nil {
		return UserSummary{}, err
	}

	userID, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return UserSummary{}, err
	}
	u.ID = userID
	u.Role = actor.Role(role)
	return u, nil
}
