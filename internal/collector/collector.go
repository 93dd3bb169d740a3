package collector

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"BioSentinel/internal/calculator"
	"BioSentinel/internal/model"
	"BioSentinel/internal/strategy"
)

var (
	// ErrEndNotAfterStart is the user-facing window check; the generator itself accepts start == end.
	ErrEndNotAfterStart = errors.New("End date must be after start date.")
	ErrMissingPerson    = errors.New("choose a person")
	ErrWindowTooLarge   = errors.New("date window is too large")
)

// DefaultCustomName and DefaultCustomBirthdate prefill the custom entry.
const (
	DefaultCustomName      = "New Person"
	DefaultCustomBirthdate = "1990-01-01"
)

// Roster resolves people by name.
type Roster interface {
	Lookup(name string) (model.Person, error)
}

// Window is the default date window around today. MaxDays caps any
// requested window; zero means no cap.
type Window struct {
	DaysBefore int
	DaysAfter  int
	MaxDays    int
}

// Request carries raw, unvalidated inputs. Empty strings mean "use the default".
type Request struct {
	Person    string
	Name      string // display name, custom person only
	Birthdate string // custom person only
	Start     string
	End       string
}

// Collector validates user input and produces forecasts.
type Collector struct {
	Roster Roster
	Window Window
	Now    func() time.Time
}

// NewCollector creates a new Collector using the wall clock.
func NewCollector(roster Roster, window Window) *Collector {
	return &Collector{Roster: roster, Window: window, Now: time.Now}
}

// Today returns the current calendar day.
func (c *Collector) Today() model.Date {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return model.DateOf(now())
}

// Collect resolves the subject and date window of req.
func (c *Collector) Collect(req Request) (*model.Input, error) {
	subject, err := c.subject(req)
	if err != nil {
		return nil, err
	}

	today := c.Today()
	start := today.AddDays(-c.Window.DaysBefore)
	end := today.AddDays(c.Window.DaysAfter)
	if req.Start != "" {
		if start, err = model.ParseDate(req.Start); err != nil {
			return nil, fmt.Errorf("start date: %w", err)
		}
	}
	if req.End != "" {
		if end, err = model.ParseDate(req.End); err != nil {
			return nil, fmt.Errorf("end date: %w", err)
		}
	}
	if !start.Before(end) {
		return nil, ErrEndNotAfterStart
	}
	window := model.DateRange{Start: start, End: end}
	if limit := c.Window.MaxDays; limit > 0 && window.Days() > limit {
		return nil, fmt.Errorf("%w: %d days requested, at most %d allowed", ErrWindowTooLarge, window.Days(), limit)
	}

	return &model.Input{
		Person: subject,
		Range:  window,
		Today:  today,
	}, nil
}

func (c *Collector) subject(req Request) (model.Subject, error) {
	person := strings.TrimSpace(req.Person)
	if person == "" {
		return model.Subject{}, ErrMissingPerson
	}

	if strings.EqualFold(person, model.CustomPerson) {
		name := strings.TrimSpace(req.Name)
		if name == "" {
			name = DefaultCustomName
		}
		raw := req.Birthdate
		if raw == "" {
			raw = DefaultCustomBirthdate
		}
		birthdate, err := model.ParseDate(raw)
		if err != nil {
			return model.Subject{}, fmt.Errorf("birthdate: %w", err)
		}
		return model.Subject{DisplayName: name, Birthdate: birthdate}, nil
	}

	p, err := c.Roster.Lookup(person)
	if err != nil {
		return model.Subject{}, err
	}
	return model.Subject{DisplayName: p.Name, Birthdate: p.Birthdate}, nil
}

// Forecast collects req, generates the series and evaluates today when it is in the window.
func (c *Collector) Forecast(req Request) (*model.Forecast, error) {
	in, err := c.Collect(req)
	if err != nil {
		return nil, err
	}
	return Build(in)
}

// Build generates the forecast for an already validated input.
func Build(in *model.Input) (*model.Forecast, error) {
	series, err := calculator.GenerateSeries(in.Person.Birthdate, in.Range.Start, in.Range.End)
	if err != nil {
		return nil, fmt.Errorf("generate series: %w", err)
	}
	f := &model.Forecast{Input: *in, Series: series}
	if r, ok := series.Find(in.Today); ok {
		f.Outlook = strategy.Evaluate(r, in.Today.DaysSince(in.Person.Birthdate))
	}
	return f, nil
}
