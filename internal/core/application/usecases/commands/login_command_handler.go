package commands

import (
	"context"
	"errors"
	"time"

	"deliverytasks/internal/core/domain/model/user"
	"deliverytasks/internal/pkg/errs"
)

// errBadCredentials does not say which of email or password was wrong.
var errBadCredentials = errs.NewUnauthorizedError("bad email or password")

// LoginResult is an issued access token.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
}

// LoginCommandHandler verifies credentials and issues a token whose claims
// carry the user's id and role.
type LoginCommandHandler struct {
	uowFactory UserUoWFactory
	issuer     TokenIssuer
}

func NewLoginCommandHandler(uowFactory UserUoWFactory, issuer TokenIssuer) LoginCommandHandler {
	return LoginCommandHandler{
		uowFactory: uowFactory,
		issuer:     issuer,
	}
}

// Handle reads without opening a transaction.
func (h *LoginCommandHandler) Handle(ctx context.Context, cmd LoginCommand) (LoginResult, error) {
	if err := cmd.Validate(); err != nil {
		return LoginResult{}, err
	}

	uow := h.uowFactory.Create()
	account, err := uow.UserRepository().GetByEmail(ctx, user.NormalizeEmail(cmd.Email()))
	if errors.Is(err, errs.ErrObjectNotFound) {
		return LoginResult{}, errBadCredentials
	}
	if err != nil {
		return LoginResult{}, err
	}

	if !account.VerifyPassword(cmd.Password()) {
		return LoginResult{}, errBadCredentials
	}

	a, err := account.Actor()
	if err != nil {
		return LoginResult{}, err
	}

	token, expiresAt, err := h.issuer.Issue(a)
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{Token: token, ExpiresAt: expiresAt}, nil
}
