// Package synth produces simulated sleep-EEG time series: a per-stage
// waveform synthesizer, a sleep-stage timeline generator and a channel data
// generator that assembles full datasets from the two.
package synth

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/somnolabs/somnoscope/internal/eeg"
)

const (
	// defaultTransientProbability is the per-sample chance of injecting a
	// K-complex-like large negative transient while in stage N2.
	defaultTransientProbability = 0.002

	frontalBoost       = 1.1
	occipitalWakeBoost = 1.4
)

// component is one sinusoid of a stage's frequency mix.
type component struct {
	Freq float64 // Hz
	Amp  float64 // µV
}

// stageMix maps each sleep stage to the sinusoid components summed to form
// its baseline activity. N3 is dominated by slow high-amplitude delta waves,
// REM by fast low-amplitude activity, N2 carries sigma-band (spindle
// frequency) activity on top of theta.
var stageMix = map[eeg.Stage][]component{
	eeg.StageWake: {{10, 8}, {20, 4}, {30, 2}},
	eeg.StageN1:   {{6, 10}, {9, 5}, {12, 3}},
	eeg.StageN2:   {{5, 12}, {13, 8}, {1, 5}},
	eeg.StageN3:   {{0.8, 40}, {1.5, 25}, {2.5, 10}},
	eeg.StageREM:  {{5, 6}, {18, 4}, {26, 3}},
}

// WithTransientProbability overrides the per-sample probability of the N2
// transient injection. Zero disables it entirely.
func WithTransientProbability(p float64) func(*Synthesizer) {
	return func(s *Synthesizer) {
		s.transientProbability = p
	}
}

// Synthesizer produces one voltage-like sample at a time. It is pure given
// (t, stage, region) except for the optional N2 transient injection, which
// draws from the rand source supplied at construction so callers control
// determinism.
type Synthesizer struct {
	rng                  *rand.Rand
	transientProbability float64
}

// NewSynthesizer creates a Synthesizer drawing randomness from rng.
func NewSynthesizer(rng *rand.Rand, options ...func(*Synthesizer)) *Synthesizer {
	s := Synthesizer{
		rng:                  rng,
		transientProbability: defaultTransientProbability,
	}

	for _, option := range options {
		option(&s)
	}

	return &s
}

// Sample returns the synthesized amplitude at time t seconds for the given
// stage and scalp region. Stage and region labels outside their enumerations
// fail with eeg.ErrInvalidStage and eeg.ErrInvalidRegion respectively.
func (s *Synthesizer) Sample(t float64, stage eeg.Stage, region eeg.Region) (float64, error) {
	mix, ok := stageMix[stage]
	if !ok {
		return 0, fmt.Errorf("%w: %q", eeg.ErrInvalidStage, string(stage))
	}
	if !region.Valid() {
		return 0, fmt.Errorf("%w: %q", eeg.ErrInvalidRegion, string(region))
	}

	var v float64
	for _, c := range mix {
		v += c.Amp * math.Sin(2*math.Pi*c.Freq*t)
	}

	if stage == eeg.StageN2 && s.transientProbability > 0 && s.rng.Float64() < s.transientProbability {
		v -= 40 + s.rng.Float64()*35 // sharp negative deflection
	}

	return v * regionModifier(region, stage), nil
}

// regionModifier scales the synthesized value for the electrode's scalp
// region. Frontal derivations run slightly hot; occipital ones carry the
// prominent posterior alpha rhythm while awake.
func regionModifier(region eeg.Region, stage eeg.Stage) float64 {
	switch region {
	case eeg.RegionFrontal:
		return frontalBoost
	case eeg.RegionOccipital:
		if stage == eeg.StageWake {
			return occipitalWakeBoost
		}
	}
	return 1.0
}
