package calculator

import (
	"errors"
	"math"

	"BioSentinel/internal/model"
)

// Extremes holds the highest and lowest value of one line and the days they occur.
type Extremes struct {
	High     float64
	HighDate model.Date
	Low      float64
	LowDate  model.Date
}

// SeriesRange scans a series and returns the extremes of the average line.
func SeriesRange(series model.Series) (Extremes, error) {
	return scan(series, func(r model.DailyReading) float64 { return r.Average })
}

// CycleRange returns the extremes of a single cycle over the series.
func CycleRange(series model.Series, c model.Cycle) (Extremes, error) {
	return scan(series, func(r model.DailyReading) float64 { return r.Triple().Value(c) })
}

func scan(series model.Series, value func(model.DailyReading) float64) (Extremes, error) {
	if len(series) == 0 {
		return Extremes{}, errors.New("no readings provided")
	}
	ex := Extremes{High: math.Inf(-1), Low: math.Inf(1)}
	for _, r := range series {
		v := value(r)
		if v > ex.High {
			ex.High, ex.HighDate = v, r.Date
		}
		if v < ex.Low {
			ex.Low, ex.LowDate = v, r.Date
		}
	}
	return ex, nil
}
