package calculator

import (
	"errors"
	"fmt"

	"BioSentinel/internal/model"
)

// ErrInvalidRange is matched by every InvalidRangeError via errors.Is.
var ErrInvalidRange = errors.New("invalid date range")

// InvalidRangeError reports a window whose start is after its end.
type InvalidRangeError struct {
	Start model.Date
	End   model.Date
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid date range: start %s is after end %s", e.Start, e.End)
}

func (e *InvalidRangeError) Is(target error) bool { return target == ErrInvalidRange }
