package planner

import "errors"

var (
	ErrInvalidIndex      = errors.New("event index is out of range")
	ErrQuotaExceeded     = errors.New("regeneration limit reached for this outing")
	ErrExhaustedFallback = errors.New("local catalog could not supply distinct events")
	ErrNoReplacement     = errors.New("could not find a suitable replacement from any source")
)
