// Package cli provides the interactive civicdesk command-line client.
//
// It wires configuration, the HTTP API client and a small REPL for the
// account flow: register, login, me, refresh and logout. A background
// watcher polls the server's health endpoint and shows whether the client
// is online in the prompt.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
