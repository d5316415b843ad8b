package peaks

import (
	"errors"
	"fmt"
)

// Sentinel errors for peak detection.
var (
	// ErrBadDomain indicates an empty domain or a finder domain outside the function domain.
	ErrBadDomain = errors.New("peaks: invalid domain")

	// ErrOutOfDomain indicates an abscissa outside the function domain.
	ErrOutOfDomain = errors.New("peaks: x out of domain")
)

// Range is a (Min, Main, Max) triplet; Main is the apex abscissa.
type Range struct {
	Min  int
	Main int
	Max  int
}

// Width returns Max - Min + 1.
func (r Range) Width() int { return r.Max - r.Min + 1 }

func (r Range) String() string { return fmt.Sprintf("(%d,%d,%d)", r.Min, r.Main, r.Max) }

// IntegerFunction is an integer-valued function over [XMin, XMax].
type IntegerFunction struct {
	xMin, xMax int
	values     []int
}

// NewIntegerFunction allocates a zero function over [xMin, xMax].
func NewIntegerFunction(xMin, xMax int) (*IntegerFunction, error) {
	if xMax < xMin {
		return nil, ErrBadDomain
	}

	return &IntegerFunction{xMin: xMin, xMax: xMax, values: make([]int, xMax-xMin+1)}, nil
}

// FromValues builds a function over [0, len(values)-1].
func FromValues(values ...int) (*IntegerFunction, error) {
	f, err := NewIntegerFunction(0, len(values)-1)
	if err != nil {
		return nil, err
	}
	copy(f.values, values)

	return f, nil
}

// XMin returns the lower domain bound.
func (f *IntegerFunction) XMin() int { return f.xMin }

// XMax returns the upper domain bound.
func (f *IntegerFunction) XMax() int { return f.xMax }

// Value returns f(x). Values outside the domain are 0.
func (f *IntegerFunction) Value(x int) int {
	if x < f.xMin || x > f.xMax {
		return 0
	}

	return f.values[x-f.xMin]
}

// SetValue sets f(x).
func (f *IntegerFunction) SetValue(x, y int) error {
	if x < f.xMin || x > f.xMax {
		return ErrOutOfDomain
	}
	f.values[x-f.xMin] = y

	return nil
}

// AddValue adds delta to f(x).
func (f *IntegerFunction) AddValue(x, delta int) error {
	if x < f.xMin || x > f.xMax {
		return ErrOutOfDomain
	}
	f.values[x-f.xMin] += delta

	return nil
}

// Derivative returns f(x) - f(x-1).
func (f *IntegerFunction) Derivative(x int) int { return f.Value(x) - f.Value(x-1) }

// ArgMax returns the first x in [x1, x2] where f is maximal.
func (f *IntegerFunction) ArgMax(x1, x2 int) int {
	best := x1
	for x := x1 + 1; x <= x2; x++ {
		if f.Value(x) > f.Value(best) {
			best = x
		}
	}

	return best
}

// Sum returns Σ f(x) over [x1, x2].
func (f *IntegerFunction) Sum(x1, x2 int) int {
	var s int
	for x := x1; x <= x2; x++ {
		s += f.Value(x)
	}

	return s
}
