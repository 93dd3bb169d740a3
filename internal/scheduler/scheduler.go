package scheduler

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"BioSentinel/internal/collector"
	"BioSentinel/internal/model"
	"BioSentinel/internal/notifier"
	"BioSentinel/internal/recorder"
	"BioSentinel/internal/roster"
)

// Notifier delivers text and chart messages.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
	SendPhotoWithRetry(ctx context.Context, png []byte, caption string, maxRetries int) error
}

// Renderer turns a forecast into a PNG.
type Renderer interface {
	Render(f *model.Forecast) ([]byte, error)
}

// Scheduler manages the cron tasks and answers bot commands.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Roster    *roster.Manager
	Renderer  Renderer
	Notifier  Notifier
	Recorder  recorder.Recorder
	Ctx       context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, rm *roster.Manager, rd Renderer, n Notifier, rec recorder.Recorder) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Roster:    rm,
		Renderer:  rd,
		Notifier:  n,
		Recorder:  rec,
		Ctx:       ctx,
	}
}

// RegisterAll registers the daily forecast task.
func (s *Scheduler) RegisterAll(dailyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyTask); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RunDailyNow executes the daily task immediately (for RUN_ON_START).
func (s *Scheduler) RunDailyNow() {
	s.dailyTask()
}

func (s *Scheduler) dailyTask() {
	people := s.Roster.List()
	log.Info().Int("people", len(people)).Msg("running daily forecast")
	for _, p := range people {
		f, err := s.Collector.Forecast(collector.Request{Person: p.Name})
		if err != nil {
			log.Error().Err(err).Str("person", p.Name).Msg("daily forecast")
			continue
		}
		s.record(f, "daily")
		s.deliver(f)
	}
}

func (s *Scheduler) deliver(f *model.Forecast) {
	if s.Notifier == nil {
		return
	}
	person := f.Input.Person.DisplayName

	if s.Renderer != nil {
		png, err := s.Renderer.Render(f)
		if err != nil {
			log.Error().Err(err).Str("person", person).Msg("render chart")
		} else {
			err = s.Notifier.SendPhotoWithRetry(s.Ctx, png, notifier.FormatCaption(f), 3)
			s.recordDelivery(person, "photo", err)
		}
	}
	err := s.Notifier.SendWithRetry(s.Ctx, notifier.FormatDailyForecast(f), 3)
	s.recordDelivery(person, "text", err)
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) notifier.Reply {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.Reply{Text: help}
	}
	args := fields[1:]
	// Strip "@botname" suffixes Telegram adds in group chats.
	name, _, _ := strings.Cut(fields[0], "@")

	switch name {
	case "/today":
		if len(args) < 1 {
			return notifier.Reply{Text: "Usage: /today <name>"}
		}
		f, err := s.Collector.Forecast(collector.Request{Person: strings.Join(args, " ")})
		if err != nil {
			return notifier.Reply{Text: userError(err)}
		}
		s.record(f, "command")
		return notifier.Reply{Text: notifier.FormatDailyForecast(f)}

	case "/chart":
		if len(args) < 1 {
			return notifier.Reply{Text: "Usage: /chart <name> [start YYYY-MM-DD] [end YYYY-MM-DD]"}
		}
		person, dates := splitTrailingDates(args, 2)
		if person == "" {
			return notifier.Reply{Text: "Usage: /chart <name> [start YYYY-MM-DD] [end YYYY-MM-DD]"}
		}
		req := collector.Request{Person: person}
		if len(dates) > 0 {
			req.Start = dates[0]
		}
		if len(dates) > 1 {
			req.End = dates[1]
		}
		f, err := s.Collector.Forecast(req)
		if err != nil {
			return notifier.Reply{Text: userError(err)}
		}
		s.record(f, "command")
		if s.Renderer == nil {
			return notifier.Reply{Text: notifier.FormatDailyForecast(f)}
		}
		png, err := s.Renderer.Render(f)
		if err != nil {
			log.Error().Err(err).Msg("render chart")
			return notifier.Reply{Text: "Could not draw the chart."}
		}
		return notifier.Reply{Photo: png, Caption: notifier.FormatCaption(f)}

	case "/history":
		if len(args) < 1 {
			return notifier.Reply{Text: "Usage: /history <name>"}
		}
		person := strings.Join(args, " ")
		if p, err := s.Roster.Lookup(person); err == nil {
			person = p.Name
		}
		events, err := s.Recorder.RecentForecasts(person, historyLimit)
		if err != nil {
			log.Error().Err(err).Str("person", person).Msg("load history")
			return notifier.Reply{Text: "Could not load history."}
		}
		return notifier.Reply{Text: notifier.FormatHistory(person, events)}

	case "/people":
		return notifier.Reply{Text: notifier.FormatPeople(s.Roster.List())}

	case "/add":
		person, dates := splitTrailingDates(args, 1)
		if person == "" || len(dates) != 1 {
			return notifier.Reply{Text: "Usage: /add <name> <YYYY-MM-DD>"}
		}
		birthdate, err := model.ParseDate(dates[0])
		if err != nil {
			return notifier.Reply{Text: userError(err)}
		}
		p, err := s.Roster.AddCustom(person, birthdate)
		if err != nil {
			return notifier.Reply{Text: userError(err)}
		}
		return notifier.Reply{Text: fmt.Sprintf("Saved %s (%s).", p.Name, p.Birthdate)}

	case "/remove":
		if len(args) < 1 {
			return notifier.Reply{Text: "Usage: /remove <name>"}
		}
		person := strings.Join(args, " ")
		if err := s.Roster.RemoveCustom(person); err != nil {
			return notifier.Reply{Text: userError(err)}
		}
		return notifier.Reply{Text: fmt.Sprintf("Removed %s.", person)}

	default:
		return notifier.Reply{Text: help}
	}
}

const historyLimit = 5

const help = "Commands:\n" +
	"• /today <name>\n" +
	"• /chart <name> [start] [end]\n" +
	"• /history <name>\n" +
	"• /people\n" +
	"• /add <name> <YYYY-MM-DD>\n" +
	"• /remove <name>"

// splitTrailingDates peels up to limit trailing date-like arguments off args
// and joins the rest into a name, so names may contain spaces.
func splitTrailingDates(args []string, limit int) (string, []string) {
	n := len(args)
	for n > 0 && len(args)-n < limit && dateShape.MatchString(args[n-1]) {
		n--
	}
	return strings.Join(args[:n], " "), args[n:]
}

// Digits and separators only; the collector reports malformed ones.
var dateShape = regexp.MustCompile(`^\d[\d./-]*$`)

// userError maps validation failures to a message fit for chat.
func userError(err error) string {
	switch {
	case errors.Is(err, collector.ErrEndNotAfterStart):
		return collector.ErrEndNotAfterStart.Error()
	case errors.Is(err, collector.ErrWindowTooLarge):
		return "That date window is too large. Pick a shorter range."
	case errors.Is(err, roster.ErrUnknownPerson):
		return "Unknown person. Send /people for the list."
	case errors.Is(err, roster.ErrPresetReadOnly):
		return "Preset people cannot be changed."
	case errors.Is(err, roster.ErrInvalidName):
		return "Please give a name."
	case errors.Is(err, model.ErrInvalidDate):
		return "Dates must look like 1990-01-31."
	}
	log.Error().Err(err).Msg("command failed")
	return "Something went wrong."
}

func (s *Scheduler) record(f *model.Forecast, source string) {
	if err := s.Recorder.RecordForecast(recorder.NewForecastEvent(f, source)); err != nil {
		log.Error().Err(err).Msg("record forecast")
	}
}

func (s *Scheduler) recordDelivery(person, kind string, sendErr error) {
	evt := &recorder.DeliveryEvent{Person: person, Kind: kind, OK: sendErr == nil}
	if sendErr != nil {
		evt.Error = sendErr.Error()
		log.Error().Err(sendErr).Str("person", person).Str("kind", kind).Msg("send notification")
	}
	if err := s.Recorder.RecordDelivery(evt); err != nil {
		log.Error().Err(err).Msg("record delivery")
	}
}
