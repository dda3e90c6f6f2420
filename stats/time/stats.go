package time

import (
	"math"
	"sort"
)

// Stats holds NaN-aware statistics of a position or force trace.
type Stats struct {
	Length int
	Valid  int // number of non-NaN samples
	Mean   float64
	Std    float64 // population standard deviation
	Median float64
	Q1     float64
	Q3     float64
	IQR    float64
	Min    float64
	Max    float64
}

func emptyStats(n int) Stats {
	nan := math.NaN()
	return Stats{
		Length: n,
		Mean:   nan,
		Std:    nan,
		Median: nan,
		Q1:     nan,
		Q3:     nan,
		IQR:    nan,
		Min:    nan,
		Max:    nan,
	}
}

// finiteSorted returns the non-NaN samples of x in ascending order.
func finiteSorted(x []float64) []float64 {
	out := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	sort.Float64s(out)
	return out
}

// Calculate computes all statistics of x, ignoring NaN samples.
func Calculate(x []float64) Stats {
	sorted := finiteSorted(x)
	if len(sorted) == 0 {
		return emptyStats(len(x))
	}

	mean, std := meanStd(sorted)
	q1 := percentileSorted(sorted, 25)
	q3 := percentileSorted(sorted, 75)

	return Stats{
		Length: len(x),
		Valid:  len(sorted),
		Mean:   mean,
		Std:    std,
		Median: percentileSorted(sorted, 50),
		Q1:     q1,
		Q3:     q3,
		IQR:    q3 - q1,
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
	}
}

// meanStd uses Welford's update for numerical stability.
func meanStd(x []float64) (mean, std float64) {
	var m2 float64
	n := 0
	for _, v := range x {
		if math.IsNaN(v) {
			continue
		}
		n++
		delta := v - mean
		mean += delta / float64(n)
		m2 += delta * (v - mean)
	}
	if n == 0 {
		return math.NaN(), math.NaN()
	}
	return mean, math.Sqrt(m2 / float64(n))
}

// Mean returns the mean of the non-NaN samples of x, or NaN if there are none.
func Mean(x []float64) float64 {
	var sum float64
	n := 0
	for _, v := range x {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// Std returns the population standard deviation of the non-NaN samples of x.
func Std(x []float64) float64 {
	_, std := meanStd(x)
	return std
}

// Median returns the median of the non-NaN samples of x.
func Median(x []float64) float64 {
	return Percentile(x, 50)
}

// Percentile returns the q-th percentile (0..100) of the non-NaN samples
// of x. When the rank falls between two samples, their midpoint is used.
func Percentile(x []float64, q float64) float64 {
	return percentileSorted(finiteSorted(x), q)
}

func percentileSorted(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 || math.IsNaN(q) {
		return math.NaN()
	}
	q = math.Min(math.Max(q, 0), 100)
	rank := q / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	return (sorted[lo] + sorted[hi]) / 2
}

// IQROutlierThreshold returns the half width of the band
// [Q1 - factor*IQR, Q3 + factor*IQR]. Samples whose magnitude exceeds the
// threshold can be treated as outliers: a factor of 1.5 marks weak and a
// factor of 3 strong outliers. NaN samples are ignored.
func IQROutlierThreshold(x []float64, factor float64) float64 {
	sorted := finiteSorted(x)
	q1 := percentileSorted(sorted, 25)
	q3 := percentileSorted(sorted, 75)
	iqr := q3 - q1
	upper := q3 + iqr*factor
	lower := q1 - iqr*factor
	return (upper - lower) / 2
}

// MovingMean returns the means of all windows of length window over data.
// The result has len(data)-window+1 elements with
// out[k] = mean(data[k:k+window]). It returns nil if window is not in
// [1, len(data)].
func MovingMean(data []float64, window int) []float64 {
	if window < 1 || window > len(data) {
		return nil
	}
	out := make([]float64, len(data)-window+1)
	// Kahan-compensated prefix sums.
	cumsum := make([]float64, len(data)+1)
	var sum, c float64
	for i, x := range data {
		y := x - c
		t := sum + y
		c = (t - sum) - y
		sum = t
		cumsum[i+1] = sum
	}
	w := float64(window)
	for k := range out {
		out[k] = (cumsum[k+window] - cumsum[k]) / w
	}
	return out
}
