// Package cli provides the interactive trip planner command-line client.
//
// It wires configuration, the local database, the session store, the
// backend client, the router and the services behind a REPL. Every
// command is a navigation: the router guard decides which page actually
// runs, so "profile" while signed out lands on the sign-in page.
//
// Key features:
//   - Sign in / sign up / guest access / sign out
//   - Profile view and edit, password change
//   - Trip plan generation (Ctrl-C cancels a running request)
//   - Plan history, plan details, local edits of notes and actual costs
//   - A background watcher showing online/offline state in the prompt
//
// A 401 from any request clears the session and queues a redirect to the
// sign-in page, which the REPL follows after the current command.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
