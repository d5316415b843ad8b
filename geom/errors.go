package geom

import "errors"

// Sentinel errors for geometry helpers.
var (
	// ErrNotEnoughPoints indicates a line fit over fewer than two distinct points.
	ErrNotEnoughPoints = errors.New("geom: not enough points to define a line")

	// ErrLengthMismatch indicates abscissa and ordinate slices differ in length.
	ErrLengthMismatch = errors.New("geom: coordinate slices differ in length")

	// ErrVerticalLine indicates a y-for-x query on a vertical line.
	ErrVerticalLine = errors.New("geom: line is vertical")

	// ErrHorizontalLine indicates an x-for-y query on a horizontal line.
	ErrHorizontalLine = errors.New("geom: line is horizontal")

	// ErrNoCurrentPoint indicates a path segment added before any MoveTo.
	ErrNoCurrentPoint = errors.New("geom: path has no current point")
)
