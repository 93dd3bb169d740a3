package strategy

import (
	"fmt"
	"math"

	"BioSentinel/internal/calculator"
	"BioSentinel/internal/model"
)

// criticalBand is how close to zero a value must be to count as a crossing day.
// Half a day of the fastest cycle moves the value by about 0.136.
const criticalBand = 0.1

func scoreCycle(c model.Cycle, value float64, elapsed int) model.CycleOutlook {
	rising := calculator.CycleRising(elapsed, c.Period())

	var phase model.Phase
	switch {
	case math.Abs(value) < criticalBand:
		phase = model.PhaseCritical
	case value >= 0.8:
		phase = model.PhasePeak
	case value > 0:
		phase = model.PhaseHigh
	case value <= -0.8:
		phase = model.PhaseTrough
	default:
		phase = model.PhaseLow
	}

	trend := "falling"
	if rising {
		trend = "rising"
	}
	return model.CycleOutlook{
		Cycle:      c,
		Value:      value,
		Phase:      phase,
		Rising:     rising,
		Commentary: fmt.Sprintf("%+.0f%%, %s", value*100, trend),
	}
}
