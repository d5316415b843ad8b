// Package peaks finds significant peaks in discrete data.
//
// IntegerFunction stores y = f(x) over a contiguous integer domain.
// HiLoPeakFinder detects peaks from the derivative signature of such a
// function: a strong rise ("Hi") followed by a strong fall ("Lo"). Histogram
// counts values per bucket and extracts double peaks and local maxima.
//
// All algorithms are deterministic: ties are resolved by the natural order of
// x values or bucket keys.
package peaks
