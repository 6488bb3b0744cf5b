package sink

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds descriptive statistics of a published array.
type Summary struct {
	Count  int
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64 // Sample standard deviation, 0 for fewer than two elements
	Norm   float64 // L2 norm
}

// Summarize computes statistics over data. An empty slice yields the zero
// Summary.
func Summarize(data []float64) Summary {
	if len(data) == 0 {
		return Summary{}
	}
	s := Summary{
		Count: len(data),
		Min:   floats.Min(data),
		Max:   floats.Max(data),
		Norm:  floats.Norm(data, 2),
	}
	if len(data) == 1 {
		s.Mean = data[0]
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(data, nil)
	return s
}
