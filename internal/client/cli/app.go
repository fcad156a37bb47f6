package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dmitrijs2005/tripplanner/internal/client/client"
	"github.com/dmitrijs2005/tripplanner/internal/client/config"
	"github.com/dmitrijs2005/tripplanner/internal/client/repositories/plans"
	"github.com/dmitrijs2005/tripplanner/internal/client/router"
	"github.com/dmitrijs2005/tripplanner/internal/client/services"
	"github.com/dmitrijs2005/tripplanner/internal/client/session"
	"github.com/dmitrijs2005/tripplanner/internal/logging"
	"golang.org/x/term"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type pageFn func(ctx context.Context, args []string) error

type App struct {
	config *config.Config
	db     *sql.DB
	store  *session.Store
	router *router.Router
	auth   services.AuthService
	trips  services.TripService
	log    logging.Logger
	pages  map[string]pageFn

	reader *bufio.Reader
	out    io.Writer
	// tty is set when passwords can be read without echo.
	tty bool

	mu          sync.Mutex
	mode        Mode
	title       string
	currentPlan string
	guestID     string
	// lastList is the plan ids of the latest history listing, so that
	// "result 2" can refer to a row by number.
	lastList []string
}

// Option customizes an App.
type Option func(*App)

// WithIO replaces stdin/stdout. Passwords are then read as plain lines.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(a *App) {
		a.reader = bufio.NewReader(in)
		a.out = out
		a.tty = false
	}
}

// NewApp opens the local database, restores the session and wires the
// backend client, router and services.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger, opts ...Option) (*App, error) {
	if log == nil {
		log = logging.Nop()
	}

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	store, err := session.New(ctx, db, log)
	if err != nil {
		log.Warn(ctx, "failed to restore session", "error", err)
	}

	a := &App{
		config: c,
		db:     db,
		store:  store,
		log:    log.With("component", "cli"),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		tty:    term.IsTerminal(int(os.Stdin.Fd())),
	}
	for _, o := range opts {
		o(a)
	}

	api, err := client.NewHTTPClient(client.Config{
		BaseURL:        c.APIBaseURL,
		Timeout:        c.RequestTimeout,
		TokenSource:    store,
		OnUnauthorized: a.handleUnauthorized,
		Logger:         log,
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	store.SetRemote(api)

	guard := router.NewGuard(
		func(context.Context) (bool, error) { return store.IsAuthenticated(), nil },
		router.WithTitleSetter(a.setTitle),
		router.WithLogger(log),
	)
	a.router = router.New(guard)
	a.auth = services.NewAuthService(api, store)
	a.trips = services.NewTripService(api, plans.NewSQLiteRepository(db), store)

	a.pages = map[string]pageFn{
		router.PathHome:     a.homePage,
		router.PathLogin:    a.loginPage,
		router.PathRegister: a.registerPage,
		router.PathProfile:  a.profilePage,
		router.PathHistory:  a.historyPage,
		router.PathResult:   a.resultPage,
		router.PathEdit:     a.editPage,
	}
	return a, nil
}

// Close releases the local database.
func (a *App) Close() error {
	return a.db.Close()
}

// Run starts the connectivity watcher and the REPL. It returns when the
// user exits, input ends or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.println("Welcome to the Smart Travel Assistant (type 'help' for commands)")

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	_ = a.Navigate(ctx, router.PathHome, nil)
	runREPL(ctx, a, a.status, a.reader)
}

// handleUnauthorized is the HTTP client's 401 hook: forget the session and
// send the user to the sign-in page.
func (a *App) handleUnauthorized(ctx context.Context) {
	if err := a.store.ClearAuth(ctx); err != nil {
		a.log.Error(ctx, "failed to clear session after 401", "error", err)
	}
	a.router.RedirectTo(router.PathLogin)
}

func (a *App) isLoggedIn() bool {
	return a.store.IsAuthenticated()
}

// Navigate runs the guard for path and then the page it lands on.
func (a *App) Navigate(ctx context.Context, path string, args []string) error {
	route, err := a.router.Navigate(ctx, path)
	if err != nil {
		if errors.Is(err, router.ErrNotFound) {
			a.println("Page not found:", path)
		} else {
			a.printErr(err)
		}
		return err
	}
	a.println("==", a.Title(), "==")

	page := a.pages[route.Path]
	if page == nil {
		return nil
	}
	if err := page(ctx, args); err != nil {
		a.printErr(err)
		return err
	}
	return nil
}

// enter navigates to path without running its page. If the guard sends
// the user elsewhere, that page runs instead and false is returned.
func (a *App) enter(ctx context.Context, path string) bool {
	route, err := a.router.Navigate(ctx, path)
	if err != nil {
		a.printErr(err)
		return false
	}
	if route.Path == path {
		return true
	}
	a.println("==", a.Title(), "==")
	if page := a.pages[route.Path]; page != nil {
		if err := page(ctx, nil); err != nil {
			a.printErr(err)
		}
	}
	return false
}

// FollowPending performs a redirect queued by the 401 hook. A redirect to
// the page that just ran is dropped.
func (a *App) FollowPending(ctx context.Context) {
	path, ok := a.router.TakePending()
	if !ok || path == a.router.Current().Path {
		return
	}
	a.println("Your session has ended. Please sign in again.")
	_ = a.Navigate(ctx, path, nil)
}

func (a *App) setTitle(t string) {
	a.mu.Lock()
	a.title = t
	a.mu.Unlock()
}

// Title returns the title of the current page.
func (a *App) Title() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.title
}

func (a *App) status() string {
	s := ""
	if name := a.store.Username(); name != "" {
		s = name + " "
	} else if g := a.guest(); g != "" {
		s = "guest "
	}
	s += string(a.Mode())
	return s
}

func (a *App) guest() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.guestID
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) printErr(err error) {
	a.println("Error:", describe(err))
}

// readSecret reads a password without echo on a terminal, or as a plain
// line otherwise.
func (a *App) readSecret(prompt string) (string, error) {
	if a.tty {
		return GetPassword(prompt, a.out)
	}
	return GetSimpleText(a.reader, prompt, a.out)
}

// describe returns the text to show for err: the backend's message for
// request failures, the error itself otherwise.
func describe(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
