package peaks

import (
	"fmt"
	"sort"
)

// Params tunes HiLoPeakFinder.FindPeaks.
type Params struct {
	// MinValue is the minimum function value that keeps a Hi alive across a flat stretch.
	MinValue int
	// MinTopValue, when set, truncates results at the first peak whose apex is lower.
	MinTopValue *int
	// MinDerivative is the absolute derivative needed to count as a rise or a fall.
	MinDerivative int
	// MinGainRatio stops peak widening once gain/(total+gain) drops below it.
	MinGainRatio float64
}

// HiLoPeakFinder detects peaks of an IntegerFunction over a sub-domain.
type HiLoPeakFinder struct {
	Name       string
	fn         *IntegerFunction
	xMin, xMax int

	hilos []Range
	peaks []Range
}

// NewHiLoPeakFinder builds a finder over [xMin, xMax], which must lie in the function domain.
func NewHiLoPeakFinder(name string, fn *IntegerFunction, xMin, xMax int) (*HiLoPeakFinder, error) {
	if fn == nil || xMin < fn.XMin() || xMax > fn.XMax() || xMax < xMin {
		return nil, fmt.Errorf("%w: finder %q on [%d,%d]", ErrBadDomain, name, xMin, xMax)
	}

	return &HiLoPeakFinder{Name: name, fn: fn, xMin: xMin, xMax: xMax}, nil
}

// NewFullHiLoPeakFinder builds a finder over the whole function domain.
func NewFullHiLoPeakFinder(name string, fn *IntegerFunction) (*HiLoPeakFinder, error) {
	if fn == nil {
		return nil, ErrBadDomain
	}

	return NewHiLoPeakFinder(name, fn, fn.XMin(), fn.XMax())
}

// HiLos returns the hilo ranges found by the last FindPeaks call, in x order.
func (pf *HiLoPeakFinder) HiLos() []Range { return pf.hilos }

// Peaks returns the result of the last FindPeaks call.
func (pf *HiLoPeakFinder) Peaks() []Range { return pf.peaks }

// FindPeaks retrieves hilos, widens one peak per hilo, and returns peaks
// sorted by decreasing apex value.
//
// Hilos are processed from the highest apex down, so a higher peak claims
// contested cells before its lower neighbour; a peak never starts before the
// end of the peak (or hilo) immediately on its left.
func (pf *HiLoPeakFinder) FindPeaks(p Params) []Range {
	pf.retrieveHiLos(p)

	decreasing := make([]int, len(pf.hilos))
	for i := range decreasing {
		decreasing[i] = i
	}
	sort.SliceStable(decreasing, func(a, b int) bool {
		return pf.fn.Value(pf.hilos[decreasing[a]].Main) > pf.fn.Value(pf.hilos[decreasing[b]].Main)
	})

	hiloToPeak := make(map[int]Range, len(pf.hilos))
	peaks := make([]Range, 0, len(pf.hilos))
	for _, i := range decreasing {
		hilo := pf.hilos[i]
		pMin := max(hilo.Min-1, 1)
		if i > 0 {
			prev := pf.hilos[i-1]
			if prevPeak, ok := hiloToPeak[i-1]; ok {
				pMin = max(pMin, prevPeak.Max+1)
			} else {
				pMin = max(pMin, prev.Max+1)
			}
		}
		peak := pf.createPeak(p.MinGainRatio, pMin, hilo.Main, hilo.Max)
		hiloToPeak[i] = peak
		peaks = append(peaks, peak)
	}

	sort.SliceStable(peaks, func(a, b int) bool {
		return pf.fn.Value(peaks[a].Main) > pf.fn.Value(peaks[b].Main)
	})
	if p.MinTopValue != nil {
		for i, pk := range peaks {
			if pf.fn.Value(pk.Main) < *p.MinTopValue {
				peaks = peaks[:i]
				break
			}
		}
	}
	pf.peaks = peaks

	return peaks
}

// createPeak widens [main, main] one cell at a time toward the larger neighbour.
func (pf *HiLoPeakFinder) createPeak(minGainRatio float64, pMin, main, pMax int) Range {
	total := pf.fn.Value(main)
	lower, upper := main, main
	for {
		before, after := 0, 0
		if lower != pMin {
			before = pf.fn.Value(lower - 1)
		}
		if upper != pMax {
			after = pf.fn.Value(upper + 1)
		}
		gain := max(before, after)
		ratio := float64(gain) / float64(total+gain)
		if total+gain == 0 || ratio < minGainRatio {
			break
		}
		if before > after {
			lower--
		} else {
			upper++
		}
		total += gain
	}

	return Range{Min: lower, Main: main, Max: upper}
}

type derPeak struct {
	min, max int
	finished bool
}

// retrieveHiLos scans the derivative for a rise (Hi) followed by a fall (Lo).
func (pf *HiLoPeakFinder) retrieveHiLos(p Params) {
	pf.hilos = nil
	var hi, lo *derPeak
	closeHiLo := func() {
		pf.hilos = append(pf.hilos, Range{Min: hi.min, Main: pf.fn.ArgMax(hi.min, lo.max), Max: lo.max})
		hi, lo = nil, nil
	}

	for x := pf.xMin + 1; x <= pf.xMax; x++ {
		y := pf.fn.Value(x)
		der := pf.fn.Derivative(x)
		switch {
		case der >= p.MinDerivative:
			if lo != nil {
				closeHiLo()
			}
			if hi == nil || hi.finished {
				hi = &derPeak{min: x, max: x}
			} else {
				hi.max = x
			}
		case der <= -p.MinDerivative:
			if lo == nil {
				if hi != nil {
					lo = &derPeak{min: x, max: x}
				}
			} else {
				lo.max = x
			}
		case lo != nil:
			closeHiLo()
		case hi != nil:
			if y < p.MinValue {
				hi = nil
			} else {
				hi.finished = true
			}
		}
	}
}
