package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/tripplanner/internal/client/router"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Navigate(ctx context.Context, path string, args []string) error
	Guest(ctx context.Context) error
	Logout(ctx context.Context) error
	EditProfile(ctx context.Context) error
	ChangePassword(ctx context.Context) error
	Plan(ctx context.Context) error
	Health(ctx context.Context) error
	FollowPending(ctx context.Context)
}

const (
	helpSignedOut = "Available commands: home, login, register, guest, plan, result [n], edit, history, health, exit"
	helpSignedIn  = "Available commands: home, plan, result [n], edit, history [delete n], profile [edit], passwd, logout, health, exit"
)

// runREPL reads commands from reader until EOF, "exit" or "quit".
//
// Most commands are navigations: the router guard decides which page
// actually runs. After every command a redirect queued by a 401 response
// is followed. Handlers report their own errors; the loop ignores them.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("trip [%s]> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || strings.TrimSpace(line) == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpSignedOut)
			}

		case "home":
			_ = a.Navigate(ctx, router.PathHome, args)

		case "login":
			_ = a.Navigate(ctx, router.PathLogin, args)

		case "register":
			_ = a.Navigate(ctx, router.PathRegister, args)

		case "guest":
			_ = a.Guest(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "profile":
			if len(args) > 0 && args[0] == "edit" {
				_ = a.EditProfile(ctx)
			} else {
				_ = a.Navigate(ctx, router.PathProfile, args)
			}

		case "passwd":
			_ = a.ChangePassword(ctx)

		case "plan":
			_ = a.Plan(ctx)

		case "result":
			_ = a.Navigate(ctx, router.PathResult, args)

		case "edit":
			_ = a.Navigate(ctx, router.PathEdit, args)

		case "history":
			_ = a.Navigate(ctx, router.PathHistory, args)

		case "health":
			_ = a.Health(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		a.FollowPending(ctx)
		if err != nil {
			return
		}
	}
}
