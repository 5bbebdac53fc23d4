// Package client is the CLI's view of the civicdesk HTTP API.
//
// HTTPClient implements Client: it registers and logs in users, keeps the
// access and refresh tokens in memory, calls protected routes with a bearer
// token and refreshes the access token once when the server rejects it.
//
// Failures are reported through sentinel errors matched with errors.Is:
// ErrUnavailable for transport and 5xx failures, ErrUnauthorized for 401 and
// ErrNotLoggedIn when a call needs a session that does not exist. Other
// non-2xx answers come back as *APIError carrying the server's message.
package client
