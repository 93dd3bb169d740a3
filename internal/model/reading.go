package model

// Cycle periods in days.
const (
	PhysicalPeriod     = 23
	EmotionalPeriod    = 28
	IntellectualPeriod = 33
)

// Cycle names one of the three sinusoidal components.
type Cycle string

const (
	CyclePhysical     Cycle = "Physical"
	CycleEmotional    Cycle = "Emotional"
	CycleIntellectual Cycle = "Intellectual"
)

// Cycles lists the components in display order.
var Cycles = []Cycle{CyclePhysical, CycleEmotional, CycleIntellectual}

// Period returns the cycle length in days.
func (c Cycle) Period() int {
	switch c {
	case CyclePhysical:
		return PhysicalPeriod
	case CycleEmotional:
		return EmotionalPeriod
	case CycleIntellectual:
		return IntellectualPeriod
	}
	return 0
}

// Triple holds the three cycle values for one day.
type Triple struct {
	Physical     float64
	Emotional    float64
	Intellectual float64
}

// Average is the arithmetic mean of the three values.
func (t Triple) Average() float64 {
	return (t.Physical + t.Emotional + t.Intellectual) / 3
}

// Value returns the component for c.
func (t Triple) Value(c Cycle) float64 {
	switch c {
	case CyclePhysical:
		return t.Physical
	case CycleEmotional:
		return t.Emotional
	case CycleIntellectual:
		return t.Intellectual
	}
	return 0
}

// DailyReading is the biorhythm for one calendar day.
type DailyReading struct {
	Date         Date    `json:"date"`
	Physical     float64 `json:"physical"`
	Emotional    float64 `json:"emotional"`
	Intellectual float64 `json:"intellectual"`
	Average      float64 `json:"average"`
}

// Triple returns the three cycle values of r.
func (r DailyReading) Triple() Triple {
	return Triple{Physical: r.Physical, Emotional: r.Emotional, Intellectual: r.Intellectual}
}

// Series is a run of readings ordered by date ascending, one per day.
type Series []DailyReading

// Find returns the reading for d, if the series covers it.
func (s Series) Find(d Date) (DailyReading, bool) {
	if len(s) == 0 {
		return DailyReading{}, false
	}
	idx := d.DaysSince(s[0].Date)
	if idx < 0 || idx >= len(s) {
		return DailyReading{}, false
	}
	return s[idx], true
}
