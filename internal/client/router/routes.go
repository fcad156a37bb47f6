// Package router holds the client's route table and the navigation guard
// that decides, for every navigation, whether the target page may be
// entered, must redirect, or does not exist.
package router

import "strings"

// Route paths.
const (
	PathHome     = "/"
	PathLogin    = "/login"
	PathRegister = "/register"
	PathResult   = "/result"
	PathEdit     = "/edit"
	PathProfile  = "/profile"
	PathHistory  = "/history"
)

// TitleSuffix is appended to every page title.
const TitleSuffix = " - Smart Travel Assistant"

// Route is a static page declaration.
type Route struct {
	Path         string
	Name         string
	Title        string
	RequiresAuth bool
}

// FullTitle is the window title shown while the route is current.
func (r Route) FullTitle() string {
	if r.Title == "" {
		return ""
	}
	return r.Title + TitleSuffix
}

// Routes is the application route table.
var Routes = []Route{
	{Path: PathHome, Name: "Home", Title: "Smart Trip Planning"},
	{Path: PathLogin, Name: "Login", Title: "Sign In"},
	{Path: PathRegister, Name: "Register", Title: "Sign Up"},
	{Path: PathResult, Name: "Result", Title: "Trip Details"},
	{Path: PathEdit, Name: "EditPlan", Title: "Edit Trip"},
	{Path: PathProfile, Name: "Profile", Title: "My Profile", RequiresAuth: true},
	{Path: PathHistory, Name: "History", Title: "My Trips", RequiresAuth: true},
}

// normalize drops the query string and a trailing slash.
func normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return PathHome
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}
