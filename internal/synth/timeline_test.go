package synth

import (
	"math/rand"
	"testing"

	"github.com/somnolabs/somnoscope/internal/eeg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateLengthAndCoverage(t *testing.T) {
	for _, totalSamples := range []int{0, 1, 7, 80, 1000} {
		stages, err := Generate(totalSamples, DefaultCyclePattern, 4)
		require.NoError(t, err)
		require.Len(t, stages, totalSamples)

		for i, stage := range stages {
			assert.True(t, stage.Valid(), "sample %d resolved to invalid stage %q", i, stage)
		}
	}
}

func TestGenerateCyclePositions(t *testing.T) {
	pattern := []eeg.Stage{
		eeg.StageWake, eeg.StageN1, eeg.StageN2, eeg.StageN3,
		eeg.StageN2, eeg.StageREM, eeg.StageN2, eeg.StageN3,
	}

	stages, err := Generate(80, pattern, 8)
	require.NoError(t, err)

	// Each 10-sample cycle maps evenly onto the 8-entry pattern.
	assert.Equal(t, eeg.StageWake, stages[0])
	assert.Equal(t, eeg.StageN3, stages[79])
}

func TestGenerateRejectsBadInput(t *testing.T) {
	_, err := Generate(10, nil, 4)
	assert.Error(t, err)

	_, err = Generate(10, DefaultCyclePattern, 0)
	assert.Error(t, err)

	_, err = Generate(10, []eeg.Stage{"N4"}, 1)
	assert.ErrorIs(t, err, eeg.ErrInvalidStage)
}

func TestGenerateIntervals(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	const total = 8 * 3600.0
	intervals, err := GenerateIntervals(total, DefaultCyclePattern, rng)
	require.NoError(t, err)
	require.NotEmpty(t, intervals)

	// Contiguous, non-overlapping, covering [0, total).
	assert.Equal(t, 0.0, intervals[0].Start)
	for i := 1; i < len(intervals); i++ {
		assert.InDelta(t, intervals[i-1].End(), intervals[i].Start, 1e-9)
	}
	assert.InDelta(t, total, intervals[len(intervals)-1].End(), 1e-9)

	for _, interval := range intervals {
		assert.True(t, interval.Stage.Valid())
		assert.Greater(t, interval.Duration, 0.0)
	}
}

func TestGenerateIntervalsEmpty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	intervals, err := GenerateIntervals(0, DefaultCyclePattern, rng)
	require.NoError(t, err)
	assert.Empty(t, intervals)
}

func TestIntervalConversions(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	const sampleRate = 10.0
	const total = 3600.0

	intervals, err := GenerateIntervals(total, DefaultCyclePattern, rng)
	require.NoError(t, err)

	dense := IntervalsToDense(intervals, int(total*sampleRate), sampleRate)
	require.Len(t, dense, int(total*sampleRate))
	for _, stage := range dense {
		assert.True(t, stage.Valid())
	}

	// Collapsing the dense form and re-expanding it must not change any
	// sample's stage attribution.
	back := IntervalsToDense(DenseToIntervals(dense, sampleRate), len(dense), sampleRate)
	assert.Equal(t, dense, back)
}

func TestDenseToIntervalsRuns(t *testing.T) {
	stages := []eeg.Stage{
		eeg.StageWake, eeg.StageWake, eeg.StageN1, eeg.StageN1, eeg.StageN1, eeg.StageN2,
	}

	intervals := DenseToIntervals(stages, 2)
	require.Len(t, intervals, 3)

	assert.Equal(t, eeg.StageInterval{Stage: eeg.StageWake, Start: 0, Duration: 1}, intervals[0])
	assert.Equal(t, eeg.StageInterval{Stage: eeg.StageN1, Start: 1, Duration: 1.5}, intervals[1])
	assert.Equal(t, eeg.StageInterval{Stage: eeg.StageN2, Start: 2.5, Duration: 0.5}, intervals[2])
}
