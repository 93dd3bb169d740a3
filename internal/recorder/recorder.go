package recorder

import (
	"time"

	"BioSentinel/internal/model"
)

// ForecastEvent records one generated forecast.
type ForecastEvent struct {
	Person     string
	Birthdate  model.Date
	Start      model.Date
	End        model.Date
	Source     string // "daily", "command", "http", "cli"
	Today      *model.DailyReading
	TierLabel  string
	RecordedAt time.Time
}

// DeliveryEvent records a notification attempt.
type DeliveryEvent struct {
	Person string
	Kind   string // "text" or "photo"
	OK     bool
	Error  string
}

// Recorder persists forecast history for analysis.
type Recorder interface {
	RecordForecast(evt *ForecastEvent) error
	RecordDelivery(evt *DeliveryEvent) error
	RecentForecasts(person string, limit int) ([]ForecastEvent, error)
	Close() error
}

// NewForecastEvent builds an event from a forecast.
func NewForecastEvent(f *model.Forecast, source string) *ForecastEvent {
	evt := &ForecastEvent{
		Person:    f.Input.Person.DisplayName,
		Birthdate: f.Input.Person.Birthdate,
		Start:     f.Input.Range.Start,
		End:       f.Input.Range.End,
		Source:    source,
	}
	if r, ok := f.Series.Find(f.Input.Today); ok {
		evt.Today = &r
	}
	if f.Outlook != nil {
		evt.TierLabel = f.Outlook.Tier.Label
	}
	return evt
}
