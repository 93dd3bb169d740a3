package model

// Input is the validated request handed to the series generator.
type Input struct {
	Person Subject
	Range  DateRange
	Today  Date
}

// Subject identifies who a forecast is for.
type Subject struct {
	DisplayName string
	Birthdate   Date
}

// Phase classifies a single cycle value on one day.
type Phase string

const (
	PhasePeak     Phase = "PEAK"
	PhaseHigh     Phase = "HIGH"
	PhaseCritical Phase = "CRITICAL"
	PhaseLow      Phase = "LOW"
	PhaseTrough   Phase = "TROUGH"
)

// CycleOutlook describes one cycle's state for a day.
type CycleOutlook struct {
	Cycle      Cycle
	Value      float64
	Phase      Phase
	Rising     bool
	Commentary string
}

// OutlookTier maps an average value range to a label.
type OutlookTier struct {
	Label  string
	Advice string
}

// Outlook is the classified reading for a single day.
type Outlook struct {
	Date    Date
	Cycles  []CycleOutlook
	Average float64
	Tier    OutlookTier
}

// Forecast bundles a generated series with what the renderers need.
type Forecast struct {
	Input   Input
	Series  Series
	Outlook *Outlook // nil when today is outside the window
}
