// Package client talks to the trip planner backend over HTTP/JSON.
//
// # Overview
//
// The package provides:
//  1. The Client interface covering every backend endpoint the application
//     uses: authentication, profile, guest sessions, trip generation and the
//     health probe.
//  2. HTTPClient, the single configured request pipeline. It injects the
//     session's bearer token, stamps an X-Request-ID on every request, and
//     normalizes every failure into an *APIError.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) opening the
//     SQLite file and applying embedded goose migrations.
//
// # Error Handling
//
// Failures carry a Kind and can be matched with errors.Is against
// ErrNetwork, ErrTimeout, ErrCanceled, ErrUnauthorized, ErrValidation,
// ErrServer and ErrParse. A timeout matches ErrNetwork as well.
//
// Any 401 response, on any endpoint, triggers Config.OnUnauthorized before
// the error is returned.
//
// # Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept
// context.Context; cancelling it aborts the in-flight request.
package client
