package strategy

import (
	"BioSentinel/internal/model"
)

// Tiers maps the daily average, highest threshold first.
var Tiers = []struct {
	MinAverage float64
	Tier       model.OutlookTier
}{
	{0.6, model.OutlookTier{Label: "Excellent", Advice: "All cycles are with you. Good day for demanding work."}},
	{0.2, model.OutlookTier{Label: "Good", Advice: "Above baseline. Push on what matters."}},
	{-0.2, model.OutlookTier{Label: "Neutral", Advice: "Balanced day. Keep a steady pace."}},
	{-0.6, model.OutlookTier{Label: "Low", Advice: "Below baseline. Favour routine tasks."}},
}

// DefaultTier covers averages below -0.6.
var DefaultTier = model.OutlookTier{Label: "Rest", Advice: "Recharge. Postpone big decisions."}

func mapTier(average float64) model.OutlookTier {
	for _, t := range Tiers {
		if average >= t.MinAverage {
			return t.Tier
		}
	}
	return DefaultTier
}

// Evaluate classifies every cycle of a reading and maps its average to a tier.
// elapsed is the signed day count from the birthdate to r.Date.
func Evaluate(r model.DailyReading, elapsed int) *model.Outlook {
	values := r.Triple()
	cycles := make([]model.CycleOutlook, 0, len(model.Cycles))
	for _, c := range model.Cycles {
		cycles = append(cycles, scoreCycle(c, values.Value(c), elapsed))
	}
	return &model.Outlook{
		Date:    r.Date,
		Cycles:  cycles,
		Average: r.Average,
		Tier:    mapTier(r.Average),
	}
}

// CriticalDays returns the days on which any cycle is zero or changes sign
// compared with the previous day, in series order.
func CriticalDays(series model.Series) []model.Date {
	var days []model.Date
	for i, r := range series {
		cur := r.Triple()
		for _, c := range model.Cycles {
			v := cur.Value(c)
			crossed := v == 0
			if i > 0 && !crossed {
				prev := series[i-1].Triple().Value(c)
				crossed = (prev < 0) != (v < 0)
			}
			if crossed {
				days = append(days, r.Date)
				break
			}
		}
	}
	return days
}
