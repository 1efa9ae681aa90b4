// Package user provides the account aggregate used to authenticate actors.
//
// A User carries the role that becomes the actor's role once the user logs
// in. Passwords are hashed with bcrypt when the user is constructed; the
// plaintext is never stored.
package user
