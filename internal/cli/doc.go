// Package cli provides the interactive gophdesk command-line client.
//
// It wires configuration, the SQLite-backed persistent medium, the
// credential store, a session manager and the scoped data store into a REPL.
// One running client plays the part of one browser tab: its session lives in
// memory and is gone when the process exits.
//
// Commands:
//   - register, login, logout, whoami
//   - put, get, del, keys (namespaced to the logged-in user)
//   - passwd, unregister, history
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
