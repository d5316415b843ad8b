package numeric

import "errors"

// Sentinel errors for numeric helpers.
var (
	// ErrZeroDenominator indicates a rational with a zero denominator.
	ErrZeroDenominator = errors.New("numeric: zero denominator")

	// ErrBadRational indicates a malformed "num/den" string.
	ErrBadRational = errors.New("numeric: malformed rational")

	// ErrOverflow indicates a rational whose reduced value does not fit in int64 fields.
	ErrOverflow = errors.New("numeric: rational overflow")

	// ErrDegreeTooHigh indicates root finding was requested for a polynomial above degree 2.
	ErrDegreeTooHigh = errors.New("numeric: polynomial degree too high for root finding")

	// ErrEmptyInput indicates an operation over an empty value list.
	ErrEmptyInput = errors.New("numeric: empty input")
)
