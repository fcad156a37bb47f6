// Package services contains the application services of the trip planner
// client. They sit between the CLI and the lower layers: the backend
// client, the session store and the local plan history.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/tripplanner/internal/client/client"
	"github.com/dmitrijs2005/tripplanner/internal/client/models"
)

var (
	ErrEmptyCredentials = errors.New("username and password are required")
	ErrSamePassword     = errors.New("new password must differ from the old one")
	ErrNotSignedIn      = errors.New("not signed in")
	ErrEmptyPatch       = errors.New("nothing to update")
	ErrInvalidGender    = errors.New("gender must be male, female or other")
)

// SessionStore is the part of the session the services write to.
type SessionStore interface {
	SetAuth(ctx context.Context, token string, user models.User) error
	UpdateUser(ctx context.Context, patch models.UserPatch) error
	Logout(ctx context.Context) error
	IsAuthenticated() bool
	UserID() string
}

// AuthService defines the account operations of the CLI.
//
// Contract:
//   - Login/Register: authenticate against the backend and persist the
//     returned session.
//   - Guest: obtain an ephemeral guest id; no session is stored.
//   - RefreshProfile/UpdateProfile: fold the server's profile into the
//     session user.
//   - ChangePassword: change the password of the signed-in user.
//   - Logout: end the session; backend failures never block it.
//   - Ping: check backend liveness.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*models.User, error)
	Register(ctx context.Context, username, password string) (*models.User, error)
	Guest(ctx context.Context) (*models.GuestSession, error)
	RefreshProfile(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, patch models.UserPatch) (*models.User, error)
	ChangePassword(ctx context.Context, oldPassword, newPassword string) error
	Logout(ctx context.Context) error
	Ping(ctx context.Context) error
}

type authService struct {
	client  client.Client
	session SessionStore
}

// NewAuthService constructs an AuthService bound to the given API client
// and session.
func NewAuthService(c client.Client, s SessionStore) AuthService {
	return &authService{client: c, session: s}
}

func (a *authService) Login(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrEmptyCredentials
	}
	resp, err := a.client.Login(ctx, models.LoginRequest{Username: username, Password: password})
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return a.establish(ctx, resp)
}

// Register creates the account and signs it in with the returned session.
func (a *authService) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrEmptyCredentials
	}
	resp, err := a.client.Register(ctx, models.RegisterRequest{Username: username, Password: password})
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return a.establish(ctx, resp)
}

func (a *authService) establish(ctx context.Context, resp *models.AuthResponse) (*models.User, error) {
	if err := a.session.SetAuth(ctx, resp.AccessToken, resp.User); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}
	u := resp.User.Clone()
	return &u, nil
}

func (a *authService) Guest(ctx context.Context) (*models.GuestSession, error) {
	g, err := a.client.CreateGuestSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("guest session: %w", err)
	}
	return g, nil
}

// RefreshProfile reloads the current user from the backend.
func (a *authService) RefreshProfile(ctx context.Context) (*models.User, error) {
	if !a.session.IsAuthenticated() {
		return nil, ErrNotSignedIn
	}
	u, err := a.client.GetCurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if err := a.session.UpdateUser(ctx, models.PatchFrom(*u)); err != nil {
		return nil, fmt.Errorf("saving profile: %w", err)
	}
	return u, nil
}

func (a *authService) UpdateProfile(ctx context.Context, patch models.UserPatch) (*models.User, error) {
	if !a.session.IsAuthenticated() {
		return nil, ErrNotSignedIn
	}
	if patch.IsEmpty() {
		return nil, ErrEmptyPatch
	}
	if patch.Gender != nil && !models.ValidGender(*patch.Gender) {
		return nil, ErrInvalidGender
	}
	u, err := a.client.UpdateProfile(ctx, patch)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if err := a.session.UpdateUser(ctx, models.PatchFrom(*u)); err != nil {
		return nil, fmt.Errorf("saving profile: %w", err)
	}
	return u, nil
}

func (a *authService) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	if !a.session.IsAuthenticated() {
		return ErrNotSignedIn
	}
	if oldPassword == "" || newPassword == "" {
		return ErrEmptyCredentials
	}
	if oldPassword == newPassword {
		return ErrSamePassword
	}
	_, err := a.client.ChangePassword(ctx, models.ChangePasswordRequest{OldPassword: oldPassword, NewPassword: newPassword})
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}

func (a *authService) Logout(ctx context.Context) error {
	return a.session.Logout(ctx)
}

// Ping reports an error unless the backend answers with status "ok".
func (a *authService) Ping(ctx context.Context) error {
	h, err := a.client.HealthCheck(ctx)
	if err != nil {
		return err
	}
	if h.Status != "ok" {
		return fmt.Errorf("backend status %q", h.Status)
	}
	return nil
}
