package models

import "time"

// SavedPlan is a generated itinerary kept in the local history together
// with the request that produced it. Edits (attraction notes and actual
// costs) are applied to Plan and stay on this machine.
type SavedPlan struct {
	ID string
	// UserID is the owner at generation time; empty for anonymous use.
	UserID    string
	Request   TripPlanRequest
	Plan      TripPlanResponse
	CreatedAt time.Time
	UpdatedAt time.Time
}
