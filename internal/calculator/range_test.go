package calculator

import (
	"testing"
	"time"

	"BioSentinel/internal/model"
)

func TestSeriesRange(t *testing.T) {
	ref := model.MustDate(1990, time.January, 1)
	series, err := GenerateSeries(ref, ref, ref.AddDays(60))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	ex, err := SeriesRange(series)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ex.High <= ex.Low {
		t.Errorf("expected high > low, got %.3f <= %.3f", ex.High, ex.Low)
	}
	if r, ok := series.Find(ex.HighDate); !ok || r.Average != ex.High {
		t.Errorf("high date %s does not hold the high value", ex.HighDate)
	}
}

func TestCycleRange_Physical(t *testing.T) {
	ref := model.MustDate(1990, time.January, 1)
	series, err := GenerateSeries(ref, ref, ref.AddDays(model.PhysicalPeriod-1))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	ex, err := CycleRange(series, model.CyclePhysical)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Day 6 is the closest to a quarter period (5.75).
	if got := ex.HighDate.DaysSince(ref); got != 6 {
		t.Errorf("expected physical peak on day 6, got day %d", got)
	}
	if ex.High < 0.99 {
		t.Errorf("expected physical high near 1, got %.3f", ex.High)
	}
}

func TestSeriesRange_Empty(t *testing.T) {
	if _, err := SeriesRange(nil); err == nil {
		t.Fatal("expected error for empty series")
	}
}
