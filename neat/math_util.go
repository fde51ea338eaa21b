package neat

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// clamp32 restricts a value to a given range [minVal, maxVal].
func clamp32(value, minVal, maxVal float32) float32 {
	if value < minVal {
		return minVal
	}
	if value > maxVal {
		return maxVal
	}
	return value
}

func abs32(x float32) float32 {
	return float32(math.Abs(float64(x)))
}

// --- Statistical Functions ---

// FitnessSummary describes the fitness distribution of a population.
type FitnessSummary struct {
	Mean  float64
	Stdev float64
	Max   float64
	Min   float64
}

// SummarizeFitness computes mean, sample standard deviation, max and min of the genomes' fitness.
// An empty population yields a zero summary.
func SummarizeFitness(genomes []*Genome) FitnessSummary {
	if len(genomes) == 0 {
		return FitnessSummary{}
	}
	values := make([]float64, len(genomes))
	summary := FitnessSummary{Max: math.Inf(-1), Min: math.Inf(1)}
	for i, g := range genomes {
		v := float64(g.Fitness)
		values[i] = v
		summary.Max = math.Max(summary.Max, v)
		summary.Min = math.Min(summary.Min, v)
	}
	summary.Mean, summary.Stdev = stat.MeanStdDev(values, nil)
	if len(values) < 2 {
		summary.Stdev = 0 // undefined for a single sample
	}
	return summary
}
