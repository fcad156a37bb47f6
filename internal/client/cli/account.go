package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/tripplanner/internal/client/client"
	"github.com/dmitrijs2005/tripplanner/internal/client/models"
	"github.com/dmitrijs2005/tripplanner/internal/client/router"
)

var errPasswordMismatch = errors.New("passwords do not match")

func (a *App) homePage(ctx context.Context, _ []string) error {
	switch {
	case a.isLoggedIn():
		a.printf("Signed in as %s.\n", a.store.Username())
		if exp, ok := a.store.ExpiresAt(); ok {
			a.printf("Session valid until %s.\n", exp.Local().Format("2006-01-02 15:04"))
		}
	case a.guest() != "":
		a.println("Browsing as guest. Plans are kept on this machine only.")
	default:
		a.println("Not signed in. Use 'login', 'register' or 'guest'.")
	}
	a.println("Type 'plan' to generate a new trip.")
	return nil
}

// loginPage asks for credentials and signs in. On success the user is
// taken home.
func (a *App) loginPage(ctx context.Context, _ []string) error {
	username, err := GetSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}
	password, err := a.readSecret("Password")
	if err != nil {
		return err
	}

	u, err := a.auth.Login(ctx, username, password)
	if err != nil {
		return err
	}
	a.clearGuest()
	a.printf("Welcome back, %s!\n", u.Username)
	_, _ = a.router.Navigate(ctx, router.PathHome)
	return nil
}

func (a *App) registerPage(ctx context.Context, _ []string) error {
	username, err := GetSimpleText(a.reader, "Choose a username", a.out)
	if err != nil {
		return err
	}
	password, err := a.readSecret("Choose a password")
	if err != nil {
		return err
	}
	confirm, err := a.readSecret("Repeat the password")
	if err != nil {
		return err
	}
	if password != confirm {
		return errPasswordMismatch
	}

	u, err := a.auth.Register(ctx, username, password)
	if err != nil {
		return err
	}
	a.clearGuest()
	a.printf("Account created. Welcome, %s!\n", u.Username)
	_, _ = a.router.Navigate(ctx, router.PathHome)
	return nil
}

// profilePage shows the profile, refreshed from the backend when it is
// reachable and from the local copy otherwise.
func (a *App) profilePage(ctx context.Context, _ []string) error {
	u, err := a.auth.RefreshProfile(ctx)
	if err != nil {
		if !errors.Is(err, client.ErrNetwork) {
			return err
		}
		cached, ok := a.store.User()
		if !ok {
			return err
		}
		a.println("(offline copy)")
		u = &cached
	}
	a.printUser(*u)
	return nil
}

func (a *App) printUser(u models.User) {
	a.printf("Username:    %s\n", u.Username)
	a.printf("User ID:     %s\n", u.UserID)
	a.printf("Phone:       %s\n", deref(u.Phone))
	a.printf("Gender:      %s\n", deref(u.Gender))
	a.printf("Birthday:    %s\n", deref(u.Birthday))
	a.printf("Bio:         %s\n", deref(u.Bio))
	a.printf("Preferences: %s\n", strings.Join(u.TravelPreferences, ", "))
	a.printf("Avatar:      %s\n", deref(u.AvatarURL))
}

// EditProfile prompts for every profile field and sends the changed ones.
func (a *App) EditProfile(ctx context.Context) error {
	if !a.enter(ctx, router.PathProfile) {
		return nil
	}
	cur, _ := a.store.User()

	var p models.UserPatch
	var err error
	fields := []struct {
		label string
		cur   string
		dst   **string
	}{
		{"Username", cur.Username, &p.Username},
		{"Phone", deref(cur.Phone), &p.Phone},
		{"Gender (male/female/other)", deref(cur.Gender), &p.Gender},
		{"Birthday (YYYY-MM-DD)", deref(cur.Birthday), &p.Birthday},
		{"Bio", deref(cur.Bio), &p.Bio},
		{"Avatar URL", deref(cur.AvatarURL), &p.AvatarURL},
	}
	for _, f := range fields {
		if *f.dst, err = GetOptional(a.reader, f.label, f.cur, a.out); err != nil {
			return err
		}
	}
	prefs, err := GetOptional(a.reader, "Travel preferences (comma separated)", strings.Join(cur.TravelPreferences, ", "), a.out)
	if err != nil {
		return err
	}
	if prefs != nil {
		p.TravelPreferences = splitList(*prefs)
		if p.TravelPreferences == nil {
			p.TravelPreferences = []string{}
		}
	}

	if p.IsEmpty() {
		a.println("Nothing changed.")
		return nil
	}
	u, err := a.auth.UpdateProfile(ctx, p)
	if err != nil {
		a.printErr(err)
		return err
	}
	a.println("Profile updated.")
	a.printUser(*u)
	return nil
}

func (a *App) ChangePassword(ctx context.Context) error {
	if !a.enter(ctx, router.PathProfile) {
		return nil
	}
	err := func() error {
		oldPw, err := a.readSecret("Current password")
		if err != nil {
			return err
		}
		newPw, err := a.readSecret("New password")
		if err != nil {
			return err
		}
		confirm, err := a.readSecret("Repeat the new password")
		if err != nil {
			return err
		}
		if newPw != confirm {
			return errPasswordMismatch
		}
		return a.auth.ChangePassword(ctx, oldPw, newPw)
	}()
	if err != nil {
		a.printErr(err)
		return err
	}
	a.println("Password changed.")
	return nil
}

// Guest starts an anonymous session. Nothing is stored; the guest id lives
// until the process exits or the user signs in.
func (a *App) Guest(ctx context.Context) error {
	if a.isLoggedIn() {
		a.println("Already signed in as", a.store.Username())
		return nil
	}
	g, err := a.auth.Guest(ctx)
	if err != nil {
		a.printErr(err)
		return err
	}
	a.mu.Lock()
	a.guestID = g.UserID
	a.mu.Unlock()
	if g.Message != "" {
		a.println(g.Message)
	}
	a.println("Guest id:", g.UserID)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.clearGuest()
	err := a.auth.Logout(ctx)
	// a 401 from the backend logout queues /login; the user is leaving anyway
	a.router.TakePending()
	if err != nil {
		a.printErr(err)
		return err
	}
	a.println("Signed out.")
	_, _ = a.router.Navigate(ctx, router.PathHome)
	return nil
}

func (a *App) clearGuest() {
	a.mu.Lock()
	a.guestID = ""
	a.mu.Unlock()
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
