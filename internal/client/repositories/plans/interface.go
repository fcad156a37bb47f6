// Package plans persists generated trip plans in the local SQLite database
// so they can be reopened and edited offline.
package plans

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/tripplanner/internal/client/models"
)

// ErrNotFound is returned when no plan has the requested id.
var ErrNotFound = errors.New("plan not found")

// Repository stores SavedPlan records.
type Repository interface {
	// Save inserts the plan or replaces the stored copy with the same ID.
	Save(ctx context.Context, p *models.SavedPlan) error
	// Get returns the plan with the given id.
	Get(ctx context.Context, id string) (*models.SavedPlan, error)
	// List returns the plans of userID, newest first.
	List(ctx context.Context, userID string) ([]models.SavedPlan, error)
	// Delete removes the plan with the given id.
	Delete(ctx context.Context, id string) error
}
