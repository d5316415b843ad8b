package peaks

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"sort"
	"strings"
)

// Number is the set of bucket key types.
type Number interface {
	~int | ~int32 | ~int64 | ~float32 | ~float64
}

// Histogram counts occurrences per bucket key. Iteration is in ascending key order.
// The zero value is not usable; call NewHistogram.
type Histogram[K Number] struct {
	counts map[K]int
	total  int
}

// DoublePeak is a peak range with sub-bucket precision on both ends.
type DoublePeak struct {
	First  float64
	Best   float64
	Second float64
}

func (p DoublePeak) String() string { return fmt.Sprintf("(%.1f,%.1f,%.1f)", p.First, p.Best, p.Second) }

// PeakEntry is a double peak with its relative weight (best count / total).
type PeakEntry struct {
	Peak  DoublePeak
	Value float64
}

// MaxEntry is a local maximum bucket with its relative weight.
type MaxEntry[K Number] struct {
	Key   K
	Value float64
}

// NewHistogram returns an empty histogram.
func NewHistogram[K Number]() *Histogram[K] {
	return &Histogram[K]{counts: make(map[K]int)}
}

// IncreaseCount adds delta to bucket.
func (h *Histogram[K]) IncreaseCount(bucket K, delta int) {
	h.counts[bucket] += delta
	h.total += delta
}

// Count returns the count of bucket, 0 if absent.
func (h *Histogram[K]) Count(bucket K) int { return h.counts[bucket] }

// TotalCount returns the sum of all counts.
func (h *Histogram[K]) TotalCount() int { return h.total }

// Size returns the number of buckets.
func (h *Histogram[K]) Size() int { return len(h.counts) }

// Clear removes all buckets.
func (h *Histogram[K]) Clear() {
	clear(h.counts)
	h.total = 0
}

// Buckets returns bucket keys in ascending order.
func (h *Histogram[K]) Buckets() []K { return slices.Sorted(maps.Keys(h.counts)) }

// FirstBucket returns the smallest key.
func (h *Histogram[K]) FirstBucket() (K, bool) {
	keys := h.Buckets()
	if len(keys) == 0 {
		var zero K
		return zero, false
	}

	return keys[0], true
}

// LastBucket returns the largest key.
func (h *Histogram[K]) LastBucket() (K, bool) {
	keys := h.Buckets()
	if len(keys) == 0 {
		var zero K
		return zero, false
	}

	return keys[len(keys)-1], true
}

// MaxBucket returns the first (smallest) key having the highest count.
func (h *Histogram[K]) MaxBucket() (K, bool) {
	var (
		bucket K
		found  bool
		best   = math.MinInt
	)
	for _, k := range h.Buckets() {
		if c := h.counts[k]; c > best {
			best, bucket, found = c, k, true
		}
	}

	return bucket, found
}

// MaxCount returns the highest bucket count, 0 when empty.
func (h *Histogram[K]) MaxCount() int {
	best := 0
	for _, c := range h.counts {
		best = max(best, c)
	}

	return best
}

// QuorumValue returns rint(ratio * total).
func (h *Histogram[K]) QuorumValue(ratio float64) int {
	return int(math.RoundToEven(ratio * float64(h.total)))
}

// DoublePeaks returns the runs of consecutive buckets whose count is at least
// minCount, sorted by decreasing weight. Run ends are refined by linear
// interpolation with the neighbouring bucket outside the run.
func (h *Histogram[K]) DoublePeaks(minCount int) []PeakEntry {
	keys := h.Buckets()
	var peaks []PeakEntry
	start, stop, best := -1, -1, -1
	flush := func() {
		peaks = append(peaks, PeakEntry{
			Peak:  h.doublePeak(keys, start, best, stop, minCount),
			Value: float64(h.counts[keys[best]]) / float64(h.total),
		})
		start, stop, best = -1, -1, -1
	}
	for i, k := range keys {
		c := h.counts[k]
		switch {
		case c >= minCount:
			if best < 0 || h.counts[keys[best]] < c {
				best = i
			}
			if start < 0 {
				start = i
			}
			stop = i
		case start >= 0:
			flush()
		}
	}
	if start >= 0 {
		flush()
	}
	sort.SliceStable(peaks, func(a, b int) bool { return peaks[a].Value > peaks[b].Value })

	return peaks
}

func (h *Histogram[K]) doublePeak(keys []K, first, best, second, count int) DoublePeak {
	p := DoublePeak{
		First:  float64(keys[first]),
		Best:   float64(keys[best]),
		Second: float64(keys[second]),
	}
	if first > 0 {
		p.First = h.preciseKey(keys[first-1], keys[first], count)
	}
	if second < len(keys)-1 {
		p.Second = h.preciseKey(keys[second], keys[second+1], count)
	}

	return p
}

// preciseKey interpolates the abscissa where the count crosses the quorum.
func (h *Histogram[K]) preciseKey(prev, next K, count int) float64 {
	pc, nc := float64(h.counts[prev]), float64(h.counts[next])
	if nc == pc {
		return float64(prev)
	}
	c := float64(count)

	return (float64(prev)*(nc-c) + float64(next)*(c-pc)) / (nc - pc)
}

// Peak returns the index-th double peak at the quorum given by quorumRatio.
// When spreadRatio is set, the peak is re-extracted at a quorum relative to
// the first result's own weight.
func (h *Histogram[K]) Peak(quorumRatio float64, spreadRatio *float64, index int) (PeakEntry, bool) {
	peaks := h.DoublePeaks(h.QuorumValue(quorumRatio))
	if index >= len(peaks) {
		return PeakEntry{}, false
	}
	peak := peaks[index]
	if spreadRatio != nil {
		peaks = h.DoublePeaks(h.QuorumValue(peak.Value * *spreadRatio))
		if index < len(peaks) {
			peak = peaks[index]
		}
	}

	return peak, true
}

// LocalMaxima returns buckets ending a non-decreasing run, sorted by decreasing weight.
func (h *Histogram[K]) LocalMaxima() []MaxEntry[K] {
	var (
		maxima    []MaxEntry[K]
		prevKey   K
		prevValue int
		growing   bool
	)
	for i, k := range h.Buckets() {
		v := h.counts[k]
		if i > 0 {
			if v >= prevValue {
				growing = true
			} else {
				if growing {
					maxima = append(maxima, MaxEntry[K]{Key: prevKey, Value: float64(prevValue) / float64(h.total)})
				}
				growing = false
			}
		}
		prevKey, prevValue = k, v
	}
	sort.SliceStable(maxima, func(a, b int) bool { return maxima[a].Value > maxima[b].Value })

	return maxima
}

// String renders "[k=c k=c ...]".
func (h *Histogram[K]) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, k := range h.Buckets() {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%v=%d", k, h.counts[k])
	}
	sb.WriteByte(']')

	return sb.String()
}
