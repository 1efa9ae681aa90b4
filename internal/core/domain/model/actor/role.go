package actor

import (
	"fmt"
	"strings"

	"deliverytasks/internal/pkg/errs"
)

// Role is the permission class of an actor. The numeric values are persisted
// in the users table and carried in access tokens.
type Role int

const (
	// Anonymous is an unauthenticated caller. It may not act on or see any task.
	Anonymous Role = iota

	// DeliveryAgent accepts, completes and declines tasks.
	DeliveryAgent

	// StoreManager creates tasks and cancels the ones they created.
	StoreManager

	// Admin observes everything and never transitions tasks.
	Admin
)

func getRoleStrings() map[Role]string {
	return map[Role]string{
		Anonymous:     "anonymous",
		DeliveryAgent: "delivery_agent",
		StoreManager:  "store_manager",
		Admin:         "admin",
	}
}

// ParseRole converts the wire name of a role ("delivery_agent", ...) into a Role.
func ParseRole(s string) (Role, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for role, name := range getRoleStrings() {
		if name == s {
			return role, nil
		}
	}
	return Anonymous, errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a known role", s))
}

// Validate rejects values outside the declared roles.
func (r Role) Validate() error {
	if _, ok := getRoleStrings()[r]; !ok {
		return errs.NewValueIsOutOfRangeError("role", int(r), int(Anonymous), int(Admin))
	}
	return nil
}

func (r Role) String() string {
	if str, ok := getRoleStrings()[r]; ok {
		return str
	}
	return "unknown"
}
