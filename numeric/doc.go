// Package numeric provides the small exact and floating-point helpers used by
// the editing engine: reduced rationals, greatest common divisors, low-degree
// polynomials and weighted barycenters.
//
// Rationals are normalized on construction (denominator strictly positive,
// numerator and denominator coprime), so two equal values always compare
// field-by-field equal. Comparisons that would overflow int64 fall back to
// arbitrary precision; results that do not fit are reported as ErrOverflow,
// never saturated.
//
// Errors:
//
//	ErrZeroDenominator - rational built or divided with a zero denominator.
//	ErrBadRational     - textual rational could not be parsed.
//	ErrOverflow        - rational result outside the int64 range.
//	ErrDegreeTooHigh   - root finding requested beyond degree 2.
//	ErrEmptyInput      - GCD over an empty list.
package numeric
