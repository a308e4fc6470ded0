// Package session implements the SessionManager: a two-state machine
// (logged out, logged in as a user) whose state lives in a tab-scoped
// ephemeral store and is revalidated against the CredentialStore on every
// read.
//
// A Manager is an explicit value. Independent managers, each with its own
// ephemeral store, behave like independent browser tabs sharing one
// persistent medium.
package session
