// Package actor models the authenticated caller of an operation: an identity
// plus one of four roles. Actors are resolved by the inbound adapters and are
// trusted by the lifecycle engine as already authenticated.
package actor
