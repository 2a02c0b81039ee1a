package detect

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// windowFeatures holds the per-window statistics the event heuristics
// threshold against. All values are computed in one pass over the window.
type windowFeatures struct {
	Variance   float64 // sample variance of the window
	MeanAbs    float64 // mean absolute amplitude
	Min, Max   float64 // extreme amplitudes
	PeakToPeak float64 // Max - Min
	SharpDelta int     // count of sample-to-sample deltas above the delta threshold
}

// computeFeatures derives the detection features for one window.
// deltaThreshold is the minimum |x[i]-x[i-1]| counted as high-frequency
// content for the REM burst heuristic.
func computeFeatures(window []float64, deltaThreshold float64) windowFeatures {
	f := windowFeatures{
		Min: math.Inf(1),
		Max: math.Inf(-1),
	}
	if len(window) == 0 {
		return windowFeatures{}
	}

	f.Variance = stat.Variance(window, nil)

	var sumAbs float64
	for i, v := range window {
		sumAbs += math.Abs(v)
		f.Min = math.Min(f.Min, v)
		f.Max = math.Max(f.Max, v)

		if i > 0 && math.Abs(v-window[i-1]) > deltaThreshold {
			f.SharpDelta++
		}
	}

	f.MeanAbs = sumAbs / float64(len(window))
	f.PeakToPeak = f.Max - f.Min
	return f
}
