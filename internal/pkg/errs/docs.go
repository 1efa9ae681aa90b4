// Package errs provides the typed error kinds shared by the task lifecycle
// backend. Every kind follows the same pattern:
//   - a sentinel error variable (e.g., ErrInvalidTransition)
//   - a struct type carrying the details
//   - constructor functions with and without cause
//   - Error() for formatting and Unwrap() returning the sentinel
//
// Callers classify failures with errors.Is against the sentinels:
//   - ErrObjectNotFound: the object is absent or not visible to the actor
//   - ErrValueIsInvalid, ErrValueIsRequired, ErrValueIsOutOfRange: malformed input
//   - ErrInvalidTransition: the target state is unreachable from the current state
//   - ErrUnauthorized: a role or ownership check failed
//   - ErrConflict: a concurrent writer committed first; the caller may retry
//   - ErrVersionIsInvalid: persisted state is corrupt
package errs
