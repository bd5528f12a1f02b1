package profiling

import (
	"math"

	"github.com/montanaflynn/stats"
)

// Distribution summarises the present values of a numeric column
type Distribution struct {
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Median   float64 `json:"median"`
	Q25      float64 `json:"q25"`
	Q75      float64 `json:"q75"`
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis"`
	Outliers int     `json:"outliers"`
}

// AnalyzeDistribution computes summary and shape statistics. data must not
// be empty.
func AnalyzeDistribution(data []float64) (Distribution, error) {
	var d Distribution
	var err error

	if d.Mean, err = stats.Mean(data); err != nil {
		return d, err
	}
	if len(data) > 1 {
		if d.StdDev, err = stats.StandardDeviationSample(data); err != nil {
			return d, err
		}
	}
	if d.Min, err = stats.Min(data); err != nil {
		return d, err
	}
	if d.Max, err = stats.Max(data); err != nil {
		return d, err
	}
	if d.Median, err = stats.Median(data); err != nil {
		return d, err
	}
	// Quartiles for IQR-based outlier detection
	if d.Q25, err = stats.Percentile(data, 25); err != nil {
		return d, err
	}
	if d.Q75, err = stats.Percentile(data, 75); err != nil {
		return d, err
	}

	d.Skewness = calculateSkewness(data, d.Mean, d.StdDev)
	d.Kurtosis = calculateKurtosis(data, d.Mean, d.StdDev)
	d.Outliers = detectOutliers(data, d.Q25, d.Q75)
	return d, nil
}

// calculateSkewness computes sample skewness using the adjusted Fisher-Pearson coefficient
func calculateSkewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 {
		return 0
	}

	n := float64(len(data))
	sumCubedDeviations := 0.0
	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumCubedDeviations += deviation * deviation * deviation
	}

	skewness := sumCubedDeviations / n
	return skewness * math.Sqrt(n*(n-1)) / (n - 2)
}

// calculateKurtosis computes sample excess kurtosis
func calculateKurtosis(data []float64, mean, stdDev float64) float64 {
	if len(data) < 4 || stdDev == 0 {
		return 0
	}

	n := float64(len(data))
	sumFourthDeviations := 0.0
	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumFourthDeviations += deviation * deviation * deviation * deviation
	}

	excess := sumFourthDeviations/n - 3
	correction := (n - 1) / ((n - 2) * (n - 3))
	return excess*correction + 6/(n+1)
}

// detectOutliers counts values outside 1.5 IQR of the quartiles
func detectOutliers(data []float64, q25, q75 float64) int {
	iqr := q75 - q25
	lowerBound := q25 - 1.5*iqr
	upperBound := q75 + 1.5*iqr

	outlierCount := 0
	for _, x := range data {
		if x < lowerBound || x > upperBound {
			outlierCount++
		}
	}
	return outlierCount
}
