package swara

import "errors"

var (
	ErrInvalidSwara = errors.New("invalid swara")
	ErrRatioShape   = errors.New("malformed ratio entry")
	ErrArity        = errors.New("pitch or duration count does not match trajectory shape")
	ErrInvalidShape = errors.New("unknown trajectory shape")
	ErrGroupSize    = errors.New("group must contain at least two trajectories")
	ErrNotAdjacent  = errors.New("trajectories are not adjacent")
	ErrOutOfRaga    = errors.New("pitch is not in raga")
	ErrOutOfRange   = errors.New("value out of range")
	ErrNotFound     = errors.New("not found")
	ErrMissingField = errors.New("missing required field")
	ErrDuplicate    = errors.New("duplicate entry")
	ErrOverlap      = errors.New("overlapping meters")
)
