// Package services provides the domain services of the task lifecycle engine.
// They hold the rules that involve an actor and a task together and so belong
// to neither aggregate alone.
//
// The package includes:
//   - TransitionPolicy: the table of who may move a task into which state
//   - VisibilityPolicy: which tasks an actor may see
//   - Lifecycle: applies an action to a task after both the state table and
//     the policy agreed
//
// Both policies live here so that permission changes are made in one place.
package services
