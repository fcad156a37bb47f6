package client

import (
	"context"

	"github.com/dmitrijs2005/tripplanner/internal/client/models"
)

// Client is the backend API used by the services. Every method is a single
// request/response round trip and honours ctx cancellation.
type Client interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	GetCurrentUser(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, patch models.UserPatch) (*models.User, error)
	ChangePassword(ctx context.Context, req models.ChangePasswordRequest) (*models.MessageResponse, error)
	Logout(ctx context.Context) (*models.MessageResponse, error)
	CreateGuestSession(ctx context.Context) (*models.GuestSession, error)
	CreateTripPlan(ctx context.Context, req models.TripPlanRequest) (*models.TripPlanResponse, error)
	HealthCheck(ctx context.Context) (*models.HealthStatus, error)
}
