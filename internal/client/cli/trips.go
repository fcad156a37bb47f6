package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/tripplanner/internal/client/client"
	"github.com/dmitrijs2005/tripplanner/internal/client/models"
	"github.com/dmitrijs2005/tripplanner/internal/client/router"
	"github.com/dmitrijs2005/tripplanner/internal/client/services"
)

// notifyContext is a test seam for signal.NotifyContext.
var notifyContext = signal.NotifyContext

var errNoPlan = errors.New("no plan selected; use 'plan' or 'history' first")

// Plan asks for the trip parameters and generates a plan. Ctrl-C cancels
// the request immediately.
func (a *App) Plan(ctx context.Context) error {
	req, err := a.readPlanRequest()
	if err != nil {
		a.printErr(err)
		return err
	}
	if err := req.Validate(); err != nil {
		a.printErr(err)
		return err
	}

	pctx, stop := notifyContext(ctx, os.Interrupt)
	defer stop()

	a.printf("Planning %d day(s) in %s. This can take a few minutes; press Ctrl-C to cancel.\n", req.Days(), req.Destination)
	saved, err := a.trips.Plan(pctx, req)
	stop()
	if err != nil {
		if errors.Is(err, client.ErrCanceled) {
			a.println("Planning cancelled.")
			return err
		}
		a.printErr(err)
		return err
	}

	a.selectPlan(saved.ID)
	return a.Navigate(ctx, router.PathResult, nil)
}

func (a *App) readPlanRequest() (models.TripPlanRequest, error) {
	var req models.TripPlanRequest
	var err error
	if req.Destination, err = GetSimpleText(a.reader, "Destination", a.out); err != nil {
		return req, err
	}
	if req.StartDate, err = GetSimpleText(a.reader, "Start date (YYYY-MM-DD)", a.out); err != nil {
		return req, err
	}
	if req.EndDate, err = GetSimpleText(a.reader, "End date (YYYY-MM-DD)", a.out); err != nil {
		return req, err
	}
	if req.Preferences, err = GetList(a.reader, "Interests", a.out); err != nil {
		return req, err
	}
	if req.HotelPreferences, err = GetList(a.reader, "Hotel preferences", a.out); err != nil {
		return req, err
	}
	budget, err := GetSimpleText(a.reader, "Budget (economy/moderate/luxury) [moderate]", a.out)
	if err != nil {
		return req, err
	}
	req.Budget = strings.ToLower(budget)
	return req, nil
}

func (a *App) selectPlan(id string) {
	a.mu.Lock()
	a.currentPlan = id
	a.mu.Unlock()
}

func (a *App) selectedPlan() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.currentPlan
}

// resolvePlan turns a history row number or an id (prefix) into a plan id.
func (a *App) resolvePlan(ctx context.Context, ref string) (string, error) {
	a.mu.Lock()
	last := append([]string(nil), a.lastList...)
	a.mu.Unlock()

	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(last) {
			return "", fmt.Errorf("no plan #%d in the last history listing", n)
		}
		return last[n-1], nil
	}

	list, err := a.trips.List(ctx)
	if err != nil {
		return "", err
	}
	for _, p := range list {
		if strings.HasPrefix(p.ID, ref) {
			return p.ID, nil
		}
	}
	return "", services.ErrPlanNotFound
}

func (a *App) historyPage(ctx context.Context, args []string) error {
	if len(args) >= 2 && args[0] == "delete" {
		id, err := a.resolvePlan(ctx, args[1])
		if err != nil {
			return err
		}
		if err := a.trips.Delete(ctx, id); err != nil {
			return err
		}
		if a.selectedPlan() == id {
			a.selectPlan("")
		}
		a.println("Plan deleted.")
	}

	list, err := a.trips.List(ctx)
	if err != nil {
		return err
	}
	ids := make([]string, len(list))
	for i, p := range list {
		ids[i] = p.ID
	}
	a.mu.Lock()
	a.lastList = ids
	a.mu.Unlock()

	if len(list) == 0 {
		a.println("No saved trips yet.")
		return nil
	}
	for i, p := range list {
		a.printf("%2d. %-30s %s  %s..%s  (%s)\n", i+1, p.Plan.TripTitle, p.Request.Destination,
			p.Request.StartDate, p.Request.EndDate, p.ID[:min(8, len(p.ID))])
	}
	a.println("Use 'result <n>' to open a trip.")
	return nil
}

func (a *App) resultPage(ctx context.Context, args []string) error {
	if len(args) > 0 {
		id, err := a.resolvePlan(ctx, args[0])
		if err != nil {
			return err
		}
		a.selectPlan(id)
	}
	id := a.selectedPlan()
	if id == "" {
		return errNoPlan
	}
	p, err := a.trips.Get(ctx, id)
	if err != nil {
		return err
	}
	a.renderPlan(p)
	return nil
}

// editPage records notes or an actual cost for one attraction of the
// selected plan.
func (a *App) editPage(ctx context.Context, _ []string) error {
	id := a.selectedPlan()
	if id == "" {
		return errNoPlan
	}
	p, err := a.trips.Get(ctx, id)
	if err != nil {
		return err
	}

	for _, d := range p.Plan.Days {
		a.printf("Day %d - %s\n", d.Day, d.Theme)
		for i, at := range d.Attractions {
			a.printf("  %d. %s\n", i+1, at.Name)
		}
	}

	day, err := a.readInt("Day number")
	if err != nil {
		return err
	}
	idx, err := a.readInt("Attraction number")
	if err != nil {
		return err
	}
	at, err := p.Plan.Attraction(day, idx-1)
	if err != nil {
		return err
	}

	var edit services.AttractionEdit
	if edit.Notes, err = GetOptional(a.reader, "Notes", deref(at.Notes), a.out); err != nil {
		return err
	}
	curCost := ""
	if at.ActualCost != nil {
		curCost = strconv.FormatFloat(*at.ActualCost, 'f', -1, 64)
	}
	cost, err := GetOptional(a.reader, "Actual cost ('-' to clear)", curCost, a.out)
	if err != nil {
		return err
	}
	if cost != nil {
		if *cost == "-" {
			edit.ClearCost = true
		} else {
			v, err := strconv.ParseFloat(*cost, 64)
			if err != nil {
				return fmt.Errorf("invalid cost %q", *cost)
			}
			edit.ActualCost = &v
		}
	}

	updated, err := a.trips.EditAttraction(ctx, id, day, idx-1, edit)
	if err != nil {
		return err
	}
	a.println("Saved.")
	a.printSpending(updated.Plan.Spending())
	return nil
}

func (a *App) readInt(prompt string) (int, error) {
	s, err := GetSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	return n, nil
}

func (a *App) renderPlan(p *models.SavedPlan) {
	plan := p.Plan
	b := plan.TotalBudget
	a.println(plan.TripTitle)
	a.printf("%s, %s to %s\n", p.Request.Destination, p.Request.StartDate, p.Request.EndDate)
	a.printf("Budget: %s (transport %s, dining %s, hotel %s, tickets %s)\n",
		money(b.Total), money(b.TransportCost), money(b.DiningCost), money(b.HotelCost), money(b.AttractionTicketCost))

	for _, h := range plan.Hotels {
		a.printf("Hotel: %s, %s, %s/night\n", h.Name, h.Address, h.Price)
	}

	for _, d := range plan.Days {
		a.println()
		a.printf("Day %d - %s\n", d.Day, d.Theme)
		if w := d.Weather; w != nil {
			a.printf("  Weather: %s / %s, %s..%s\n", w.DayWeather, w.NightWeather, w.NightTemp, w.DayTemp)
		}
		if h := d.RecommendedHotel; h != nil {
			a.printf("  Stay: %s\n", h.Name)
		}
		for i, at := range d.Attractions {
			a.printf("  %d. %s (%s) rating %s, ticket %s\n", i+1, at.Name, at.Type, at.Rating, at.TicketPrice)
			if at.Notes != nil {
				a.printf("     notes: %s\n", *at.Notes)
			}
			if at.ActualCost != nil {
				a.printf("     spent: %s\n", money(*at.ActualCost))
			}
		}
		for _, dn := range d.Dinings {
			a.printf("  - %s, %s per person\n", dn.Name, dn.CostPerPerson)
		}
		a.printf("  Day budget: %s\n", money(d.Budget.Total))
	}
	a.println()
	a.printSpending(plan.Spending())
}

func (a *App) printSpending(s models.Spending) {
	if s.Recorded == 0 {
		a.printf("Planned budget %s, no actual costs recorded.\n", money(s.Planned))
		return
	}
	a.printf("Planned budget %s, spent %s across %d attraction(s).\n", money(s.Planned), money(s.Actual), s.Recorded)
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
