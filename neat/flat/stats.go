package flat

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Summary holds the single-pass statistics of a fitness slice.
type Summary struct {
	Sum float32
	Min float32
	Max float32
}

// Stats computes sum, minimum and maximum in one pass. An empty slice yields the zero Summary.
func Stats(values []float32) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	s := Summary{Min: values[0], Max: values[0]}
	for _, v := range values {
		s.Sum += v
		s.Min = min(s.Min, v)
		s.Max = max(s.Max, v)
	}
	return s
}

// Description is a distributional summary used for reporting.
type Description struct {
	Mean   float64
	StdDev float64 // Sample standard deviation; 0 for fewer than two values
	Median float64
}

// Describe computes mean, sample standard deviation and median of values.
func Describe(values []float32) Description {
	if len(values) == 0 {
		return Description{}
	}
	x := make([]float64, len(values))
	for i, v := range values {
		x[i] = float64(v)
	}
	sort.Float64s(x)
	d := Description{
		Mean:   stat.Mean(x, nil),
		Median: stat.Quantile(0.5, stat.Empirical, x, nil),
	}
	if len(x) > 1 {
		d.StdDev = stat.StdDev(x, nil)
	}
	return d
}
