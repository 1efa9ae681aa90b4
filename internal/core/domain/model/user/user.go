package user

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"deliverytasks/internal/core/domain/model/actor"
	"deliverytasks/internal/core/domain/model/kernel"
	"deliverytasks/internal/pkg/errs"
	"deliverytasks/internal/pkg/guard"

	"golang.org/x/crypto/bcrypt"
)

const (
	NameMaxLength     = 50
	EmailMaxLength    = 254
	PasswordMinLength = 6
	// bcrypt ignores everything past 72 bytes.
	PasswordMaxBytes = 72
)

var ErrUserIsNotConstructed = errors.New("User must be created via NewUser or RestoreUser constructor")

type User struct {
	id           kernel.UUID
	name         string
	email        string
	passwordHash []byte
	role         actor.Role
	guard        guard.ConstructorGuard
}

// NewUser creates a user and hashes password with bcrypt at the given cost.
// Anonymous is not a role an account can hold.
func NewUser(id kernel.UUID, name, email, password string, role actor.Role, cost int) (*User, error) {
	u := &User{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		u.setID(id),
		u.setName(name),
		u.setEmail(email),
		u.setRole(role),
		u.setPassword(password, cost),
	); err != nil {
		return nil, err
	}

	return u, nil
}

// RestoreUser rebuilds a user from persistence without rehashing.
func RestoreUser(id kernel.UUID, name, email string, passwordHash []byte, role actor.Role) (*User, error) {
	u := &User{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		u.setID(id),
		u.setName(name),
		u.setEmail(email),
		u.setRole(role),
	); err != nil {
		return nil, err
	}

	if _, err := bcrypt.Cost(passwordHash); err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause("passwordHash", err)
	}
	u.passwordHash = passwordHash

	return u, nil
}

func (u *User) Validate() error {
	if u == nil {
		return ErrUserIsNotConstructed
	}
	return u.guard.Validate(ErrUserIsNotConstructed)
}

func (u *User) ID() kernel.UUID {
	return u.id
}

func (u *User) Name() string {
	return u.name
}

func (u *User) Email() string {
	return u.email
}

func (u *User) PasswordHash() []byte {
	out := make([]byte, len(u.passwordHash))
	copy(out, u.passwordHash)
	return out
}

func (u *User) Role() actor.Role {
	return u.role
}

// VerifyPassword reports whether password matches the stored hash.
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword(u.passwordHash, []byte(password)) == nil
}

// Rename replaces the display name.
func (u *User) Rename(name string) error {
	return u.setName(name)
}

// ChangeEmail replaces the login address. Uniqueness is enforced by the
// repository.
func (u *User) ChangeEmail(email string) error {
	return u.setEmail(email)
}

// ChangeRole moves the account to another role. Anonymous is rejected.
func (u *User) ChangeRole(role actor.Role) error {
	return u.setRole(role)
}

// ChangePassword hashes password at cost and replaces the stored hash. The
// old hash is kept when password is rejected.
func (u *User) ChangePassword(password string, cost int) error {
	return u.setPassword(password, cost)
}

// Actor returns the actor this user acts as once authenticated.
func (u *User) Actor() (actor.Actor, error) {
	return actor.NewActor(u.id, u.role)
}

// NormalizeEmail lowercases and trims an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *User) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	u.id = id
	return nil
}

func (u *User) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errs.NewValueIsRequiredError("name")
	}
	if n := utf8.RuneCountInString(name); n > NameMaxLength {
		return errs.NewValueIsInvalidErrorWithCause("name",
			fmt.Errorf("%d characters exceeds the limit of %d", n, NameMaxLength))
	}
	u.name = name
	return nil
}

func (u *User) setEmail(email string) error {
	email = NormalizeEmail(email)
	if email == "" {
		return errs.NewValueIsRequiredError("email")
	}
	if len(email) > EmailMaxLength {
		return errs.NewValueIsInvalidErrorWithCause("email",
			fmt.Errorf("%d characters exceeds the limit of %d", len(email), EmailMaxLength))
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errs.NewValueIsInvalidErrorWithCause("email", fmt.Errorf("%q is not an email address", email))
	}
	u.email = email
	return nil
}

func (u *User) setRole(role actor.Role) error {
	if err := role.Validate(); err != nil {
		return err
	}
	if role == actor.Anonymous {
		return errs.NewValueIsInvalidErrorWithCause("role", errors.New("a user cannot be anonymous"))
	}
	u.role = role
	return nil
}

func (u *User) setPassword(password string, cost int) error {
	if utf8.RuneCountInString(password) < PasswordMinLength {
		return errs.NewValueIsInvalidErrorWithCause("password",
			fmt.Errorf("must be at least %d characters", PasswordMinLength))
	}
	if len(password) > PasswordMaxBytes {
		return errs.NewValueIsInvalidErrorWithCause("password",
			fmt.Errorf("must be at most %d bytes", PasswordMaxBytes))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.passwordHash = hash
	return nil
}
