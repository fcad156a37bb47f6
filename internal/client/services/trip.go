package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tripplanner/internal/client/client"
	"github.com/dmitrijs2005/tripplanner/internal/client/models"
	"github.com/dmitrijs2005/tripplanner/internal/client/repositories/plans"
	"github.com/google/uuid"
)

// ErrPlanNotFound is returned for unknown ids and for plans owned by a
// different user.
var ErrPlanNotFound = errors.New("plan not found")

// ErrNegativeCost rejects an actual cost below zero.
var ErrNegativeCost = errors.New("actual cost cannot be negative")

// Owner identifies whose plan history is in use. An empty id is the
// anonymous history.
type Owner interface {
	UserID() string
}

// AttractionEdit carries local changes to one attraction. Nil fields are
// left alone; ClearCost removes a recorded cost.
type AttractionEdit struct {
	Notes      *string
	ActualCost *float64
	ClearCost  bool
}

// TripService generates plans and manages the local plan history.
type TripService interface {
	// Plan validates req, asks the backend for an itinerary and saves it.
	Plan(ctx context.Context, req models.TripPlanRequest) (*models.SavedPlan, error)
	List(ctx context.Context) ([]models.SavedPlan, error)
	Get(ctx context.Context, id string) (*models.SavedPlan, error)
	Delete(ctx context.Context, id string) error
	// EditAttraction updates the notes or actual cost of the attraction at
	// index (0-based) of day (1-based). The change is never sent to the
	// backend.
	EditAttraction(ctx context.Context, id string, day, index int, edit AttractionEdit) (*models.SavedPlan, error)
	Spending(ctx context.Context, id string) (models.Spending, error)
}

type tripService struct {
	client client.Client
	repo   plans.Repository
	owner  Owner
	now    func() time.Time
}

func NewTripService(c client.Client, repo plans.Repository, owner Owner) TripService {
	return &tripService{client: c, repo: repo, owner: owner, now: time.Now}
}

func (s *tripService) ownerID() string {
	if s.owner == nil {
		return ""
	}
	return s.owner.UserID()
}

func (s *tripService) Plan(ctx context.Context, req models.TripPlanRequest) (*models.SavedPlan, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Budget == "" {
		req.Budget = models.BudgetModerate
	}

	resp, err := s.client.CreateTripPlan(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create plan: %w", err)
	}

	now := s.now().UTC()
	p := &models.SavedPlan{
		ID:        uuid.NewString(),
		UserID:    s.ownerID(),
		Request:   req,
		Plan:      *resp,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("saving plan: %w", err)
	}
	return p, nil
}

func (s *tripService) List(ctx context.Context) ([]models.SavedPlan, error) {
	list, err := s.repo.List(ctx, s.ownerID())
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return list, nil
}

func (s *tripService) Get(ctx context.Context, id string) (*models.SavedPlan, error) {
	p, err := s.repo.Get(ctx, id)
	if errors.Is(err, plans.ErrNotFound) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get plan: %w", err)
	}
	if p.UserID != s.ownerID() {
		return nil, ErrPlanNotFound
	}
	return p, nil
}

func (s *tripService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, plans.ErrNotFound) {
			return ErrPlanNotFound
		}
		return fmt.Errorf("delete plan: %w", err)
	}
	return nil
}

func (s *tripService) EditAttraction(ctx context.Context, id string, day, index int, edit AttractionEdit) (*models.SavedPlan, error) {
	if edit.ActualCost != nil && *edit.ActualCost < 0 {
		return nil, ErrNegativeCost
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	a, err := p.Plan.Attraction(day, index)
	if err != nil {
		return nil, err
	}

	if edit.Notes != nil {
		n := *edit.Notes
		a.Notes = &n
	}
	switch {
	case edit.ClearCost:
		a.ActualCost = nil
	case edit.ActualCost != nil:
		c := *edit.ActualCost
		a.ActualCost = &c
	}

	p.UpdatedAt = s.now().UTC()
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("saving plan: %w", err)
	}
	return p, nil
}

func (s *tripService) Spending(ctx context.Context, id string) (models.Spending, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return models.Spending{}, err
	}
	return p.Plan.Spending(), nil
}
