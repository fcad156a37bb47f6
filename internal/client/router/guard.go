package router

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/tripplanner/internal/logging"
)

// Outcome is the guard's verdict for a navigation.
type Outcome int

const (
	Allow Outcome = iota + 1
	Redirect
	NotFound
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	case NotFound:
		return "not-found"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Decision is the result of Guard.Check.
type Decision struct {
	Outcome Outcome
	// Route is the resolved target; zero for NotFound.
	Route Route
	// To is the redirect target when Outcome is Redirect.
	To string
}

// SessionProvider reports whether a user is signed in.
type SessionProvider func(ctx context.Context) (bool, error)

// Guard evaluates navigations against the route table.
type Guard struct {
	routes   map[string]Route
	session  SessionProvider
	setTitle func(string)
	log      logging.Logger
}

// GuardOption customizes a Guard.
type GuardOption func(*Guard)

// WithTitleSetter installs the callback that receives page titles.
func WithTitleSetter(fn func(title string)) GuardOption {
	return func(g *Guard) { g.setTitle = fn }
}

// WithLogger sets the guard logger.
func WithLogger(l logging.Logger) GuardOption {
	return func(g *Guard) { g.log = l }
}

// WithRoutes replaces the default route table.
func WithRoutes(routes []Route) GuardOption {
	return func(g *Guard) {
		g.routes = make(map[string]Route, len(routes))
		for _, r := range routes {
			g.routes[normalize(r.Path)] = r
		}
	}
}

// NewGuard builds a guard over Routes using session to resolve the
// signed-in state.
func NewGuard(session SessionProvider, opts ...GuardOption) *Guard {
	g := &Guard{session: session, log: logging.Nop()}
	WithRoutes(Routes)(g)
	for _, o := range opts {
		o(g)
	}
	return g
}

// Lookup returns the route declared for path.
func (g *Guard) Lookup(path string) (Route, bool) {
	r, ok := g.routes[normalize(path)]
	return r, ok
}

// Check decides a navigation to path:
//  1. unknown paths are NotFound;
//  2. the target title, if any, is published;
//  3. protected routes redirect to /login when signed out;
//  4. /login redirects to / when already signed in;
//  5. everything else is allowed.
//
// If the session cannot be resolved the navigation is allowed and the
// error is logged.
func (g *Guard) Check(ctx context.Context, path string) Decision {
	route, ok := g.Lookup(path)
	if !ok {
		return Decision{Outcome: NotFound}
	}

	if t := route.FullTitle(); t != "" && g.setTitle != nil {
		g.setTitle(t)
	}

	if !route.RequiresAuth && route.Path != PathLogin {
		return Decision{Outcome: Allow, Route: route}
	}

	authed := false
	if g.session != nil {
		var err error
		authed, err = g.session(ctx)
		if err != nil {
			g.log.Error(ctx, "failed to resolve session, allowing navigation", "path", route.Path, "error", err)
			return Decision{Outcome: Allow, Route: route}
		}
	}

	switch {
	case route.RequiresAuth && !authed:
		return Decision{Outcome: Redirect, Route: route, To: PathLogin}
	case route.Path == PathLogin && authed:
		return Decision{Outcome: Redirect, Route: route, To: PathHome}
	}
	return Decision{Outcome: Allow, Route: route}
}

// MaxRedirects bounds redirect chains followed by Navigate.
const MaxRedirects = 5

var (
	ErrNotFound     = errors.New("page not found")
	ErrRedirectLoop = errors.New("too many redirects")
)

// Router tracks the current page and pending redirects on top of a Guard.
// It is safe for concurrent use.
type Router struct {
	guard *Guard

	mu      sync.Mutex
	current Route
	pending string
}

func New(g *Guard) *Router {
	return &Router{guard: g}
}

// Navigate runs the guard for path, following redirects, and makes the
// final route current. Unknown paths leave the current route unchanged.
func (r *Router) Navigate(ctx context.Context, path string) (Route, error) {
	target := path
	for hop := 0; hop <= MaxRedirects; hop++ {
		d := r.guard.Check(ctx, target)
		switch d.Outcome {
		case NotFound:
			return Route{}, fmt.Errorf("%w: %s", ErrNotFound, target)
		case Redirect:
			r.guard.log.Debug(ctx, "redirect", "from", d.Route.Path, "to", d.To)
			target = d.To
			continue
		}
		r.mu.Lock()
		r.current = d.Route
		r.mu.Unlock()
		return d.Route, nil
	}
	return Route{}, fmt.Errorf("%w: starting at %s", ErrRedirectLoop, path)
}

// Current returns the route last entered.
func (r *Router) Current() Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// RedirectTo queues a navigation to be performed by the UI loop. A later
// call replaces an earlier one.
func (r *Router) RedirectTo(path string) {
	r.mu.Lock()
	r.pending = path
	r.mu.Unlock()
}

// TakePending returns and clears the queued redirect.
func (r *Router) TakePending() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.pending
	r.pending = ""
	return p, p != ""
}
