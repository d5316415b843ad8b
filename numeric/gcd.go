package numeric

// GCD returns the greatest common divisor of a and b. GCD(0, 0) is 0.
//
// The result is non-negative except for the single unrepresentable case
// 2^63, reached only when both a and b are in {0, math.MinInt64} and not
// both 0: GCD then returns math.MinInt64.
func GCD(a, b int64) int64 {
	x, y := absU(a), absU(b)
	for y != 0 {
		x, y = y, x%y
	}

	return int64(x)
}

// absU returns |v| without overflow.
func absU(v int64) uint64 {
	if v < 0 {
		return uint64(-(v + 1)) + 1
	}

	return uint64(v)
}

// GCDOf returns the greatest common divisor of all values.
func GCDOf(values ...int64) (int64, error) {
	if len(values) == 0 {
		return 0, ErrEmptyInput
	}
	g := GCD(values[0], 0)
	for _, v := range values[1:] {
		g = GCD(g, v)
		if g == 1 {
			break // cannot get lower
		}
	}

	return g, nil
}

// LCM returns the least common multiple of a and b, 0 if either is 0.
func LCM(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	l := a / GCD(a, b) * b
	if l < 0 {
		return -l
	}

	return l
}
