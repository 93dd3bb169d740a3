package calculator

import (
	"fmt"
	"math"

	"BioSentinel/internal/model"
)

// CycleValue returns sin(2π·elapsed/period) for a signed day count.
func CycleValue(elapsed, period int) float64 {
	return math.Sin(2 * math.Pi * float64(elapsed) / float64(period))
}

// CycleRising reports whether the cycle is increasing at elapsed days.
func CycleRising(elapsed, period int) bool {
	return math.Cos(2*math.Pi*float64(elapsed)/float64(period)) > 0
}

// Calculate computes the physical, emotional and intellectual values for target
// relative to ref. target may precede ref.
func Calculate(ref, target model.Date) (model.Triple, error) {
	if err := ref.Validate(); err != nil {
		return model.Triple{}, fmt.Errorf("reference date: %w", err)
	}
	if err := target.Validate(); err != nil {
		return model.Triple{}, fmt.Errorf("target date: %w", err)
	}
	return triple(target.DaysSince(ref)), nil
}

func triple(elapsed int) model.Triple {
	return model.Triple{
		Physical:     CycleValue(elapsed, model.PhysicalPeriod),
		Emotional:    CycleValue(elapsed, model.EmotionalPeriod),
		Intellectual: CycleValue(elapsed, model.IntellectualPeriod),
	}
}

// GenerateSeries computes one reading per day from start to end inclusive.
// start == end yields a single reading; start after end is an InvalidRangeError.
func GenerateSeries(ref, start, end model.Date) (model.Series, error) {
	for _, d := range []struct {
		name string
		date model.Date
	}{{"reference date", ref}, {"start date", start}, {"end date", end}} {
		if err := d.date.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", d.name, err)
		}
	}
	if start.After(end) {
		return nil, &InvalidRangeError{Start: start, End: end}
	}

	n := end.DaysSince(start) + 1
	series := make(model.Series, 0, n)
	elapsed := start.DaysSince(ref)
	for i := 0; i < n; i++ {
		t := triple(elapsed + i)
		series = append(series, model.DailyReading{
			Date:         start.AddDays(i),
			Physical:     t.Physical,
			Emotional:    t.Emotional,
			Intellectual: t.Intellectual,
			Average:      t.Average(),
		})
	}
	return series, nil
}
