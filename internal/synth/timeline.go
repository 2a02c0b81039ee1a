package synth

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/somnolabs/somnoscope/internal/eeg"
)

// fallbackStage substitutes for out-of-range pattern indexes produced by
// floating point rounding at segment edges.
const fallbackStage = eeg.StageN2

// DefaultCyclePattern is the macro-cycle a typical night loosely follows:
// descent through the NREM stages, a return to N2 and a REM period.
var DefaultCyclePattern = []eeg.Stage{
	eeg.StageWake, eeg.StageN1, eeg.StageN2, eeg.StageN3,
	eeg.StageN2, eeg.StageREM, eeg.StageN2, eeg.StageN3,
}

// durationRange bounds the random duration drawn for one interval of a stage,
// in seconds.
type durationRange struct {
	Min, Max float64
}

var stageDurations = map[eeg.Stage]durationRange{
	eeg.StageWake: {30, 180},
	eeg.StageN1:   {60, 360},
	eeg.StageN2:   {600, 2400},
	eeg.StageN3:   {300, 1500},
	eeg.StageREM:  {300, 2100},
}

// Generate produces a dense stage timeline of exactly totalSamples entries.
// The sample index range is divided into cycles equal segments; within each
// segment the fractional position selects a pattern entry by even
// subdivision. Every output element is a member of the stage enumeration.
func Generate(totalSamples int, pattern []eeg.Stage, cycles int) ([]eeg.Stage, error) {
	if len(pattern) == 0 {
		return nil, fmt.Errorf("cycle pattern must not be empty")
	}
	if cycles <= 0 {
		return nil, fmt.Errorf("cycles must be positive, got %d", cycles)
	}
	for _, stage := range pattern {
		if !stage.Valid() {
			return nil, fmt.Errorf("%w: %q", eeg.ErrInvalidStage, string(stage))
		}
	}

	stages := make([]eeg.Stage, totalSamples)
	cycleLen := float64(totalSamples) / float64(cycles)

	for i := 0; i < totalSamples; i++ {
		pos := math.Mod(float64(i), cycleLen)
		idx := int(pos / cycleLen * float64(len(pattern)))
		if idx < 0 || idx >= len(pattern) {
			stages[i] = fallbackStage
			continue
		}
		stages[i] = pattern[idx]
	}

	return stages, nil
}

// GenerateIntervals produces the sparse form of a timeline: pattern stages
// are emitted in order, each with a duration drawn from its stage-specific
// range, cycling through the pattern until the cumulative duration reaches
// totalDuration seconds. The final interval is truncated to land exactly on
// totalDuration, so the intervals are contiguous and cover [0, totalDuration).
func GenerateIntervals(totalDuration float64, pattern []eeg.Stage, rng *rand.Rand) ([]eeg.StageInterval, error) {
	if len(pattern) == 0 {
		return nil, fmt.Errorf("cycle pattern must not be empty")
	}
	if totalDuration <= 0 {
		return nil, nil
	}

	var intervals []eeg.StageInterval
	var elapsed float64
	for i := 0; elapsed < totalDuration; i++ {
		stage := pattern[i%len(pattern)]
		r, ok := stageDurations[stage]
		if !ok {
			return nil, fmt.Errorf("%w: %q", eeg.ErrInvalidStage, string(stage))
		}

		d := r.Min + rng.Float64()*(r.Max-r.Min)
		if elapsed+d > totalDuration {
			d = totalDuration - elapsed
		}

		intervals = append(intervals, eeg.StageInterval{Stage: stage, Start: elapsed, Duration: d})
		elapsed += d
	}

	return intervals, nil
}

// IntervalsToDense expands a sparse timeline into one stage label per sample.
// Samples falling past the last interval resolve to the fallback stage.
func IntervalsToDense(intervals []eeg.StageInterval, totalSamples int, sampleRate float64) []eeg.Stage {
	stages := make([]eeg.Stage, totalSamples)
	j := 0
	for i := 0; i < totalSamples; i++ {
		t := float64(i) / sampleRate
		for j < len(intervals) && t >= intervals[j].End() {
			j++
		}
		if j < len(intervals) && t >= intervals[j].Start {
			stages[i] = intervals[j].Stage
		} else {
			stages[i] = fallbackStage
		}
	}
	return stages
}

// DenseToIntervals collapses consecutive runs of the same stage into
// intervals. The result is contiguous and covers the full series span.
func DenseToIntervals(stages []eeg.Stage, sampleRate float64) []eeg.StageInterval {
	if len(stages) == 0 {
		return nil
	}

	var intervals []eeg.StageInterval
	runStart := 0
	for i := 1; i <= len(stages); i++ {
		if i < len(stages) && stages[i] == stages[runStart] {
			continue
		}
		intervals = append(intervals, eeg.StageInterval{
			Stage:    stages[runStart],
			Start:    float64(runStart) / sampleRate,
			Duration: float64(i-runStart) / sampleRate,
		})
		runStart = i
	}
	return intervals
}
