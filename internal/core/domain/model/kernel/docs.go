// Package kernel provides the value objects shared by every aggregate of the
// task lifecycle backend:
//   - UUID: identifier of tasks and users
//   - Destination: validated delivery address of a task
//
// Both are immutable and reject their zero value in Validate.
package kernel
