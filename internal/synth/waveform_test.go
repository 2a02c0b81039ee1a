package synth

import (
	"math"
	"math/rand"
	"testing"

	"github.com/somnolabs/somnoscope/internal/eeg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSynthesizer(seed int64) *Synthesizer {
	return NewSynthesizer(rand.New(rand.NewSource(seed)))
}

func TestSampleRejectsUnknownLabels(t *testing.T) {
	s := newTestSynthesizer(1)

	_, err := s.Sample(0.1, "N4", eeg.RegionCentral)
	assert.ErrorIs(t, err, eeg.ErrInvalidStage)

	_, err = s.Sample(0.1, eeg.StageN2, "parietal-ish")
	assert.ErrorIs(t, err, eeg.ErrInvalidRegion)
}

func TestSampleIsPureOutsideN2(t *testing.T) {
	s := newTestSynthesizer(1)

	// No transient injection outside N2, so repeated calls agree exactly
	// regardless of the rand source state.
	for _, stage := range []eeg.Stage{eeg.StageWake, eeg.StageN1, eeg.StageN3, eeg.StageREM} {
		a, err := s.Sample(0.37, stage, eeg.RegionCentral)
		require.NoError(t, err)

		b, err := s.Sample(0.37, stage, eeg.RegionCentral)
		require.NoError(t, err)
		assert.Equal(t, a, b, "stage %s", stage)
	}
}

func TestSampleStageCharacter(t *testing.T) {
	s := NewSynthesizer(rand.New(rand.NewSource(1)), WithTransientProbability(0))

	// N3 slow-wave activity dwarfs REM amplitude on the same channel.
	var n3Peak, remPeak float64
	for i := 0; i < 200; i++ {
		t0 := float64(i) / 200

		v, err := s.Sample(t0, eeg.StageN3, eeg.RegionCentral)
		require.NoError(t, err)
		n3Peak = math.Max(n3Peak, math.Abs(v))

		v, err = s.Sample(t0, eeg.StageREM, eeg.RegionCentral)
		require.NoError(t, err)
		remPeak = math.Max(remPeak, math.Abs(v))
	}

	assert.Greater(t, n3Peak, remPeak)
}

func TestRegionModifier(t *testing.T) {
	s := NewSynthesizer(rand.New(rand.NewSource(1)), WithTransientProbability(0))

	// Pick a t where the Wake mix is non-zero.
	const t0 = 0.013

	central, err := s.Sample(t0, eeg.StageWake, eeg.RegionCentral)
	require.NoError(t, err)
	require.NotZero(t, central)

	occipital, err := s.Sample(t0, eeg.StageWake, eeg.RegionOccipital)
	require.NoError(t, err)
	frontal, err := s.Sample(t0, eeg.StageWake, eeg.RegionFrontal)
	require.NoError(t, err)

	// Posterior alpha boost while awake; frontal boost always.
	assert.InDelta(t, central*occipitalWakeBoost, occipital, 1e-9)
	assert.InDelta(t, central*frontalBoost, frontal, 1e-9)

	// No occipital boost once asleep.
	centralN3, err := s.Sample(t0, eeg.StageN3, eeg.RegionCentral)
	require.NoError(t, err)
	occipitalN3, err := s.Sample(t0, eeg.StageN3, eeg.RegionOccipital)
	require.NoError(t, err)
	assert.InDelta(t, centralN3, occipitalN3, 1e-9)
}

func TestN2TransientInjection(t *testing.T) {
	always := NewSynthesizer(rand.New(rand.NewSource(1)), WithTransientProbability(1))
	never := NewSynthesizer(rand.New(rand.NewSource(1)), WithTransientProbability(0))

	const t0 = 0.013
	base, err := never.Sample(t0, eeg.StageN2, eeg.RegionCentral)
	require.NoError(t, err)

	withTransient, err := always.Sample(t0, eeg.StageN2, eeg.RegionCentral)
	require.NoError(t, err)

	// The injected deflection is negative and large.
	assert.Less(t, withTransient, base-39)
}
