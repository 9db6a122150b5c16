// Package histogram implements a bounded, log-linear histogram in the style
// of HdrHistogram: values are tracked with a fixed number of significant
// decimal digits across a configured range, giving constant memory and
// O(1) recording regardless of the value distribution.
//
// No HdrHistogram-compatible library was available, so this is a
// from-scratch, justified standard-library implementation; see the
// project's DESIGN.md.
package histogram

import "math"

// Histogram tracks values in [lowestTrackable, highestTrackable] with the
// given number of significant decimal digits. It is NOT safe for concurrent
// use; all of hotpath's histograms are owned by a single collector
// goroutine.
type Histogram struct {
	lowest, highest int64
	sigFigs         int

	unitMagnitude            int
	subBucketHalfCountMag    int
	subBucketCount           int
	subBucketHalfCount       int
	subBucketMask            int64
	bucketCount              int

	counts []uint64
	total  uint64
	sum    float64
	min    int64
	max    int64
}

// New returns a Histogram bounded to [lowest, highest] (inclusive, both
// must be >= 1) tracking sigFigs significant decimal digits (1-5).
func New(lowest, highest int64, sigFigs int) *Histogram {
	if lowest < 1 {
		lowest = 1
	}
	if highest < lowest {
		highest = lowest
	}
	if sigFigs < 1 {
		sigFigs = 1
	} else if sigFigs > 5 {
		sigFigs = 5
	}

	largestValueWithSingleUnitResolution := 2 * math.Pow10(sigFigs)
	subBucketCountMag := int(math.Ceil(math.Log2(largestValueWithSingleUnitResolution)))
	subBucketHalfCountMag := subBucketCountMag - 1
	if subBucketHalfCountMag < 0 {
		subBucketHalfCountMag = 0
	}
	subBucketCount := int(math.Pow(2, float64(subBucketHalfCountMag)+1))
	subBucketHalfCount := subBucketCount / 2

	unitMagnitude := int(math.Floor(math.Log2(float64(lowest))))
	if unitMagnitude < 0 {
		unitMagnitude = 0
	}
	subBucketMask := int64(subBucketCount-1) << unitMagnitude

	// determine bucket count: smallest n such that
	// subBucketCount * 2^n covers `highest`
	smallestUntrackable := int64(subBucketCount) << unitMagnitude
	bucketCount := 1
	for smallestUntrackable <= highest {
		smallestUntrackable <<= 1
		bucketCount++
	}

	counts := make([]uint64, (bucketCount+1)*subBucketHalfCount)

	return &Histogram{
		lowest:                lowest,
		highest:               highest,
		sigFigs:               sigFigs,
		unitMagnitude:         unitMagnitude,
		subBucketHalfCountMag: subBucketHalfCountMag,
		subBucketCount:        subBucketCount,
		subBucketHalfCount:    subBucketHalfCount,
		subBucketMask:         subBucketMask,
		bucketCount:           bucketCount,
		counts:                counts,
	}
}

func (h *Histogram) clamp(value int64) int64 {
	if value < h.lowest {
		return h.lowest
	}
	if value > h.highest {
		return h.highest
	}
	return value
}

// countsIndexFor returns the slice index for value, after clamping.
func (h *Histogram) countsIndexFor(value int64) int {
	value = h.clamp(value)

	bucketIndex := h.bucketIndexOf(value)
	subBucketIndex := h.subBucketIndexOf(value, bucketIndex)

	bucketBaseIndex := (bucketIndex + 1) << h.subBucketHalfCountMag
	offsetInBucket := subBucketIndex - h.subBucketHalfCount
	return bucketBaseIndex + offsetInBucket
}

func (h *Histogram) bucketIndexOf(value int64) int {
	pow2Ceiling := bitLen(value|h.subBucketMask)
	return pow2Ceiling - (h.unitMagnitude + h.subBucketHalfCountMag + 1)
}

func (h *Histogram) subBucketIndexOf(value int64, bucketIndex int) int {
	return int(value >> uint(bucketIndex+h.unitMagnitude))
}

func bitLen(v int64) int {
	n := 0
	for v != 0 {
		v >>= 1
		n++
	}
	return n
}

// valueFromIndex reconstructs the (lower-bound) value a counts slot
// represents, used only for percentile/mean reconstruction.
func (h *Histogram) valueFromIndex(index int) int64 {
	bucketIndex := (index >> h.subBucketHalfCountMag) - 1
	subBucketIndex := (index & (h.subBucketHalfCount - 1)) + h.subBucketHalfCount
	if bucketIndex < 0 {
		subBucketIndex -= h.subBucketHalfCount
		bucketIndex = 0
	}
	return int64(subBucketIndex) << uint(bucketIndex+h.unitMagnitude)
}

// Record adds value to the histogram, clamped to [lowest, highest].
func (h *Histogram) Record(value int64) {
	idx := h.countsIndexFor(value)
	if idx < 0 {
		idx = 0
	}
	if idx >= len(h.counts) {
		idx = len(h.counts) - 1
	}
	h.counts[idx]++
	h.total++
	clamped := h.clamp(value)
	h.sum += float64(clamped)
	if h.total == 1 || clamped < h.min {
		h.min = clamped
	}
	if h.total == 1 || clamped > h.max {
		h.max = clamped
	}
}

// Count returns the number of recorded values.
func (h *Histogram) Count() uint64 { return h.total }

// Sum returns the total of all recorded (clamped) values.
func (h *Histogram) Sum() float64 { return h.sum }

// Mean returns the arithmetic mean of recorded (clamped) values, or 0 if
// none have been recorded.
func (h *Histogram) Mean() float64 {
	if h.total == 0 {
		return 0
	}
	return h.sum / float64(h.total)
}

// Min returns the smallest recorded (clamped) value, or 0 if none recorded.
func (h *Histogram) Min() int64 { return h.min }

// Max returns the largest recorded (clamped) value, or 0 if none recorded.
func (h *Histogram) Max() int64 { return h.max }

// ValueAtPercentile returns the (approximate, bucket-resolution) value at
// the given percentile in (0, 100]. Returns 0 if nothing has been recorded.
func (h *Histogram) ValueAtPercentile(percentile float64) int64 {
	if h.total == 0 {
		return 0
	}
	if percentile > 100 {
		percentile = 100
	}
	if percentile < 0 {
		percentile = 0
	}

	target := uint64(math.Ceil((percentile / 100.0) * float64(h.total)))
	if target == 0 {
		target = 1
	}

	var cumulative uint64
	for i, c := range h.counts {
		cumulative += c
		if cumulative >= target {
			return h.valueFromIndex(i)
		}
	}
	return h.max
}
