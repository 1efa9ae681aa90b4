package queries

import (
	"context"

	"deliverytasks/internal/core/domain/model/actor"
	"deliverytasks/internal/pkg/errs"

	"gorm.io/gorm"
)

type GetUserQueryHandler struct {
	db *gorm.DB
}

func NewGetUserQueryHandler(db *gorm.DB) GetUserQueryHandler {
	return GetUserQueryHandler{db: db}
}

// Handle checks access before the lookup, so a denied caller cannot tell
// whether the account exists.
func (h GetUserQueryHandler) Handle(ctx context.Context, query GetUserQuery) (UserSummary, error) {
	if err := query.Validate(); err != nil {
		return UserSummary{}, err
	}

	id := query.UserID()
	by := query.Actor()
	if by.Role() != actor.Admin && !by.Is(&id) {
		return UserSummary{}, errs.NewUnauthorizedError("only admins may view other users")
	}

	rows, err := h.db.WithContext(ctx).Raw(userSummarySelect+"\n\tWHERE id = ?", id.Bytes()).Rows()
	if err != nil {
		return UserSummary{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return UserSummary{}, err
		}
		return UserSummary{}, errs.NewObjectNotFoundError("user", id.String())
	}

	return scanUserSummary(rows)
}
