package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire format of trip dates.
const DateLayout = "2006-01-02"

// Budget tiers understood by the planner.
const (
	BudgetEconomy  = "economy"
	BudgetModerate = "moderate"
	BudgetLuxury   = "luxury"
)

var (
	ErrDestinationRequired = errors.New("destination is required")
	ErrInvalidDate         = errors.New("dates must be in YYYY-MM-DD format")
	ErrDateOrder           = errors.New("end date is before start date")
)

// TripPlanRequest is the body of POST /api/v1/trips/plan.
type TripPlanRequest struct {
	Destination      string   `json:"destination"`
	StartDate        string   `json:"start_date"`
	EndDate          string   `json:"end_date"`
	Preferences      []string `json:"preferences"`
	HotelPreferences []string `json:"hotel_preferences"`
	Budget           string   `json:"budget"`
}

// Validate checks the request before it is sent.
func (r TripPlanRequest) Validate() error {
	if strings.TrimSpace(r.Destination) == "" {
		return ErrDestinationRequired
	}
	start, err := time.Parse(DateLayout, r.StartDate)
	if err != nil {
		return fmt.Errorf("start date %q: %w", r.StartDate, ErrInvalidDate)
	}
	end, err := time.Parse(DateLayout, r.EndDate)
	if err != nil {
		return fmt.Errorf("end date %q: %w", r.EndDate, ErrInvalidDate)
	}
	if end.Before(start) {
		return ErrDateOrder
	}
	return nil
}

// Days returns the inclusive number of days the request covers, or 0 when
// the dates do not parse.
// MarshalJSON always sends the preference lists as arrays; the backend
// rejects null for them.
func (r TripPlanRequest) MarshalJSON() ([]byte, error) {
	type wire TripPlanRequest
	w := wire(r)
	if w.Preferences == nil {
		w.Preferences = []string{}
	}
	if w.HotelPreferences == nil {
		w.HotelPreferences = []string{}
	}
	return json.Marshal(w)
}

func (r TripPlanRequest) Days() int {
	start, err1 := time.Parse(DateLayout, r.StartDate)
	end, err2 := time.Parse(DateLayout, r.EndDate)
	if err1 != nil || err2 != nil || end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours()/24) + 1
}

// FlexNumber holds a value the backend sends either as a JSON number or as
// a string such as "free" or "4.5".
type FlexNumber struct {
	raw string
}

// NewFlexNumber wraps a float.
func NewFlexNumber(v float64) FlexNumber {
	return FlexNumber{raw: strconv.FormatFloat(v, 'f', -1, 64)}
}

// Float64 returns the numeric value and whether the raw value was numeric.
// Only finite values written as JSON numbers count; "NaN", "Inf" and hex
// floats stay text.
func (n FlexNumber) Float64() (float64, bool) {
	raw := strings.TrimSpace(n.raw)
	if !isJSONNumber(raw) {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

func isJSONNumber(s string) bool {
	if s == "" || (s[0] != '-' && (s[0] < '0' || s[0] > '9')) {
		return false
	}
	return json.Valid([]byte(s))
}

func (n FlexNumber) String() string { return n.raw }

func (n FlexNumber) MarshalJSON() ([]byte, error) {
	if _, ok := n.Float64(); ok {
		return []byte(strings.TrimSpace(n.raw)), nil
	}
	return json.Marshal(n.raw)
}

func (n *FlexNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		n.raw = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n.raw = s
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("flex number: %w", err)
	}
	n.raw = num.String()
	return nil
}

// Location is a map coordinate.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Attraction is a point of interest within a day.
// Notes and ActualCost are local edit fields and are never sent back.
type Attraction struct {
	Name                   string     `json:"name"`
	Type                   string     `json:"type"`
	Rating                 FlexNumber `json:"rating"`
	SuggestedDurationHours *float64   `json:"suggested_duration_hours,omitempty"`
	Description            string     `json:"description"`
	Address                string     `json:"address"`
	Location               *Location  `json:"location,omitempty"`
	ImageURLs              []string   `json:"image_urls"`
	TicketPrice            FlexNumber `json:"ticket_price"`

	Notes      *string  `json:"notes,omitempty"`
	ActualCost *float64 `json:"actual_cost,omitempty"`
}

// Hotel is a lodging recommendation.
type Hotel struct {
	Name                       string     `json:"name"`
	Address                    string     `json:"address"`
	Location                   *Location  `json:"location,omitempty"`
	Price                      FlexNumber `json:"price"`
	Rating                     FlexNumber `json:"rating"`
	DistanceToMainAttractionKM *float64   `json:"distance_to_main_attraction_km,omitempty"`
}

// Dining is a restaurant recommendation.
type Dining struct {
	Name          string     `json:"name"`
	Address       string     `json:"address"`
	Location      *Location  `json:"location,omitempty"`
	CostPerPerson FlexNumber `json:"cost_per_person"`
	Rating        FlexNumber `json:"rating"`
}

// Weather is the forecast for a single day.
type Weather struct {
	Date         string  `json:"date"`
	DayWeather   string  `json:"day_weather"`
	NightWeather string  `json:"night_weather"`
	DayTemp      string  `json:"day_temp"`
	NightTemp    string  `json:"night_temp"`
	DayWind      *string `json:"day_wind,omitempty"`
	NightWind    *string `json:"night_wind,omitempty"`
}

// BudgetBreakdown is the trip-wide budget; Total is the sum of the four items.
type BudgetBreakdown struct {
	TransportCost        float64 `json:"transport_cost"`
	DiningCost           float64 `json:"dining_cost"`
	HotelCost            float64 `json:"hotel_cost"`
	AttractionTicketCost float64 `json:"attraction_ticket_cost"`
	Total                float64 `json:"total"`
}

// DailyBudget has the same shape as BudgetBreakdown, scoped to one day.
type DailyBudget BudgetBreakdown

// DailyPlan is one day of the itinerary.
type DailyPlan struct {
	Day              int          `json:"day"`
	Theme            string       `json:"theme"`
	Weather          *Weather     `json:"weather,omitempty"`
	RecommendedHotel *Hotel       `json:"recommended_hotel,omitempty"`
	Attractions      []Attraction `json:"attractions"`
	Dinings          []Dining     `json:"dinings"`
	Budget           DailyBudget  `json:"budget"`
}

// TripPlanResponse is the generated itinerary.
type TripPlanResponse struct {
	TripTitle   string          `json:"trip_title"`
	TotalBudget BudgetBreakdown `json:"total_budget"`
	Hotels      []Hotel         `json:"hotels"`
	Days        []DailyPlan     `json:"days"`
}

// Spending compares the planned budget with the actual costs recorded
// against attractions.
type Spending struct {
	Planned float64
	Actual  float64
	// Recorded is the number of attractions with an actual cost.
	Recorded int
}

// Spending sums every recorded ActualCost against the planned total.
func (p *TripPlanResponse) Spending() Spending {
	s := Spending{Planned: p.TotalBudget.Total}
	for _, d := range p.Days {
		for _, a := range d.Attractions {
			if a.ActualCost != nil {
				s.Actual += *a.ActualCost
				s.Recorded++
			}
		}
	}
	return s
}

// Attraction returns a pointer into the plan for the given 1-based day
// number and 0-based attraction index.
func (p *TripPlanResponse) Attraction(day, index int) (*Attraction, error) {
	for i := range p.Days {
		if p.Days[i].Day != day {
			continue
		}
		if index < 0 || index >= len(p.Days[i].Attractions) {
			return nil, fmt.Errorf("day %d has no attraction #%d", day, index+1)
		}
		return &p.Days[i].Attractions[index], nil
	}
	return nil, fmt.Errorf("plan has no day %d", day)
}
