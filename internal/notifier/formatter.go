package notifier

import (
	"fmt"
	"html"
	"strings"

	"BioSentinel/internal/calculator"
	"BioSentinel/internal/model"
	"BioSentinel/internal/recorder"
	"BioSentinel/internal/strategy"
)

var phaseIcons = map[model.Phase]string{
	model.PhasePeak:     "🔺",
	model.PhaseHigh:     "▲",
	model.PhaseCritical: "⚠️",
	model.PhaseLow:      "▼",
	model.PhaseTrough:   "🔻",
}

// FormatDailyForecast formats today's outlook for one person as a Telegram message.
func FormatDailyForecast(f *model.Forecast) string {
	var b strings.Builder
	name := html.EscapeString(f.Input.Person.DisplayName)
	b.WriteString(fmt.Sprintf("🌀 <b>Biorhythm</b> | %s | %s\n\n", name, f.Input.Today))

	if f.Outlook == nil {
		b.WriteString(fmt.Sprintf("Today is outside %s – %s.\n", f.Input.Range.Start, f.Input.Range.End))
		return b.String()
	}

	for _, c := range f.Outlook.Cycles {
		b.WriteString(fmt.Sprintf("%s %s: %s (%s)\n", phaseIcons[c.Phase], c.Cycle, c.Commentary, c.Phase))
	}
	b.WriteString("  ─────────────────\n")
	b.WriteString(fmt.Sprintf("  Average: %+.0f%%\n\n", f.Outlook.Average*100))
	b.WriteString(fmt.Sprintf("📌 <b>%s</b>: %s\n", f.Outlook.Tier.Label, f.Outlook.Tier.Advice))

	if ex, err := calculator.SeriesRange(f.Series); err == nil {
		b.WriteString(fmt.Sprintf("\nBest day: %s (%+.0f%%)\n", ex.HighDate, ex.High*100))
		b.WriteString(fmt.Sprintf("Lowest day: %s (%+.0f%%)\n", ex.LowDate, ex.Low*100))
	}

	var peaks []string
	for _, c := range model.Cycles {
		if ex, err := calculator.CycleRange(f.Series, c); err == nil {
			peaks = append(peaks, fmt.Sprintf("%s %s", c, ex.HighDate))
		}
	}
	if len(peaks) > 0 {
		b.WriteString(fmt.Sprintf("Peaks: %s\n", strings.Join(peaks, " · ")))
	}

	var upcoming []string
	for _, d := range strategy.CriticalDays(f.Series) {
		if d.After(f.Input.Today) {
			upcoming = append(upcoming, d.String())
		}
		if len(upcoming) == 3 {
			break
		}
	}
	if len(upcoming) > 0 {
		b.WriteString(fmt.Sprintf("Next critical days: %s\n", strings.Join(upcoming, ", ")))
	}
	return b.String()
}

// FormatCaption is the short caption attached to a chart photo.
func FormatCaption(f *model.Forecast) string {
	return fmt.Sprintf("<b>%s</b>\n%s – %s",
		html.EscapeString(f.Input.Person.DisplayName), f.Input.Range.Start, f.Input.Range.End)
}

// FormatHistory lists recorded forecasts for a person, newest first.
func FormatHistory(person string, events []recorder.ForecastEvent) string {
	var b strings.Builder
	name := html.EscapeString(person)
	b.WriteString(fmt.Sprintf("🗂 <b>History</b> | %s\n\n", name))
	if len(events) == 0 {
		b.WriteString(fmt.Sprintf("No forecasts recorded for %s.\n", name))
		return b.String()
	}
	for _, evt := range events {
		when := ""
		if !evt.RecordedAt.IsZero() {
			when = evt.RecordedAt.Format("2006-01-02 15:04") + " "
		}
		if evt.Today != nil {
			b.WriteString(fmt.Sprintf("• %s%s: %s (%+.0f%%) via %s\n",
				when, evt.Today.Date, evt.TierLabel, evt.Today.Average*100, evt.Source))
			continue
		}
		b.WriteString(fmt.Sprintf("• %s%s – %s via %s\n", when, evt.Start, evt.End, evt.Source))
	}
	return b.String()
}

// FormatPeople lists the roster.
func FormatPeople(people []model.Person) string {
	var b strings.Builder
	b.WriteString("👥 <b>People</b>\n\n")
	for _, p := range people {
		tag := ""
		if !p.Preset {
			tag = " (custom)"
		}
		b.WriteString(fmt.Sprintf("• %s: %s%s\n", html.EscapeString(p.Name), p.Birthdate, tag))
	}
	if len(people) == 0 {
		b.WriteString("No people configured.\n")
	}
	return b.String()
}

// FormatSeriesTable renders the series as fixed-width rows.
func FormatSeriesTable(f *model.Forecast) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-10s %9s %9s %12s %8s\n", "Date", "Physical", "Emotional", "Intellectual", "Average"))
	for _, r := range f.Series {
		marker := ""
		if r.Date.Equal(f.Input.Today) {
			marker = "  <- today"
		}
		b.WriteString(fmt.Sprintf("%-10s %+9.4f %+9.4f %+12.4f %+8.4f%s\n",
			r.Date, r.Physical, r.Emotional, r.Intellectual, r.Average, marker))
	}
	return b.String()
}
