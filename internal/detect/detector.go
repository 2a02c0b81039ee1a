// Package detect scans fixed-size windows of a channel's series and emits
// sleep events (spindles, K-complexes, REM bursts) from stage-gated
// threshold heuristics. Window classifications are independent of each
// other; there is no cross-window memory.
package detect

import (
	"fmt"
	"math/rand"

	"github.com/somnolabs/somnoscope/internal/eeg"
)

// SpindleThresholds gates sleep spindle acceptance, eligible in N2 only.
type SpindleThresholds struct {
	Variance   float64 `yaml:"variance"`   // minimum window variance
	MeanAbs    float64 `yaml:"meanAbs"`    // minimum mean absolute amplitude
	Acceptance float64 `yaml:"acceptance"` // stochastic gate pass probability [0,1]
}

// KComplexThresholds gates K-complex acceptance, eligible in N2 only.
type KComplexThresholds struct {
	PeakToPeak float64 `yaml:"peakToPeak"` // minimum max-min amplitude
	MinBelow   float64 `yaml:"minBelow"`   // window minimum must be below this (negative)
	Acceptance float64 `yaml:"acceptance"`
}

// REMBurstThresholds gates REM burst acceptance, eligible in REM only.
type REMBurstThresholds struct {
	Delta      float64 `yaml:"delta"`      // minimum |sample-to-sample| delta counted
	Fraction   float64 `yaml:"fraction"`   // minimum fraction of window samples with such deltas
	Acceptance float64 `yaml:"acceptance"`
}

// Config is the tunable surface of the detector. The zero value is not
// usable; start from DefaultConfig.
type Config struct {
	WindowSize int                `yaml:"windowSize"` // samples per analysis window
	Spindle    SpindleThresholds  `yaml:"spindle"`
	KComplex   KComplexThresholds `yaml:"kComplex"`
	REMBurst   REMBurstThresholds `yaml:"remBurst"`
}

// DefaultConfig returns the detector tuning used by the canned dashboard
// presets (50-sample windows, ~5s at a 10 Hz display rate).
func DefaultConfig() Config {
	return Config{
		WindowSize: 50,
		Spindle:    SpindleThresholds{Variance: 40, MeanAbs: 8, Acceptance: 0.3},
		KComplex:   KComplexThresholds{PeakToPeak: 60, MinBelow: -30, Acceptance: 0.25},
		REMBurst:   REMBurstThresholds{Delta: 6, Fraction: 0.3, Acceptance: 0.35},
	}
}

// Detector runs one batch scan over a dataset. The stochastic acceptance
// gates draw from the rand source supplied at construction; the property
// "same input + same seed => same output" holds for a seeded source.
type Detector struct {
	config Config
	rng    *rand.Rand
}

// New creates a Detector with the given tuning, drawing randomness from rng.
func New(config Config, rng *rand.Rand) (*Detector, error) {
	if config.WindowSize <= 0 {
		return nil, fmt.Errorf("window size must be positive, got %d", config.WindowSize)
	}
	return &Detector{config: config, rng: rng}, nil
}

// Detect partitions the channel's series into non-overlapping windows and
// applies the three event heuristics to each. The returned events are in
// ascending time order and wholly replace any prior batch. An empty dataset
// yields an empty batch; a channel absent from the dataset fails with
// eeg.ErrUnknownChannel.
func (d *Detector) Detect(ds *eeg.Dataset, channel string) ([]eeg.Event, error) {
	series, err := ds.Channel(channel)
	if err != nil {
		return nil, err
	}

	var events []eeg.Event
	windowSize := d.config.WindowSize
	for start := 0; start+windowSize <= len(series); start += windowSize {
		window := series[start : start+windowSize]

		// Stage attribution uses the window's first sample even when a
		// transition lands mid-window.
		stage := ds.StageAt(start)
		t := float64(start) / ds.SampleRate

		f := computeFeatures(window, d.config.REMBurst.Delta)

		switch stage {
		case eeg.StageN2:
			if ev, ok := d.detectSpindle(f, t, channel); ok {
				events = append(events, ev)
			}
			if ev, ok := d.detectKComplex(f, t, channel); ok {
				events = append(events, ev)
			}

		case eeg.StageREM:
			if ev, ok := d.detectREMBurst(f, t, channel, windowSize); ok {
				events = append(events, ev)
			}
		}
	}

	return events, nil
}

func (d *Detector) detectSpindle(f windowFeatures, t float64, channel string) (eeg.Event, bool) {
	c := d.config.Spindle
	if f.Variance < c.Variance || f.MeanAbs < c.MeanAbs || !d.accept(c.Acceptance) {
		return eeg.Event{}, false
	}

	return eeg.Event{
		Time:       t,
		Channel:    channel,
		Type:       eeg.EventSpindle,
		Confidence: d.confidence(),
		Frequency:  11 + d.rng.Float64()*5,    // sigma band, 11-16 Hz
		Duration:   0.5 + d.rng.Float64()*1.5, // 0.5-2 s
	}, true
}

func (d *Detector) detectKComplex(f windowFeatures, t float64, channel string) (eeg.Event, bool) {
	c := d.config.KComplex
	if f.PeakToPeak < c.PeakToPeak || f.Min > c.MinBelow || !d.accept(c.Acceptance) {
		return eeg.Event{}, false
	}

	return eeg.Event{
		Time:       t,
		Channel:    channel,
		Type:       eeg.EventKComplex,
		Confidence: d.confidence(),
		Amplitude:  f.PeakToPeak,
	}, true
}

func (d *Detector) detectREMBurst(f windowFeatures, t float64, channel string, windowSize int) (eeg.Event, bool) {
	c := d.config.REMBurst
	if float64(f.SharpDelta) < c.Fraction*float64(windowSize) || !d.accept(c.Acceptance) {
		return eeg.Event{}, false
	}

	return eeg.Event{
		Time:       t,
		Channel:    channel,
		Type:       eeg.EventREMBurst,
		Confidence: d.confidence(),
		Duration:   0.3 + d.rng.Float64()*1.2, // 0.3-1.5 s
	}, true
}

// accept implements the stochastic acceptance gate modelling detector
// uncertainty. A probability >= 1 always passes without consuming
// randomness, so tests can force-accept deterministically.
func (d *Detector) accept(probability float64) bool {
	if probability >= 1 {
		return true
	}
	return d.rng.Float64() < probability
}

func (d *Detector) confidence() float64 {
	return 0.6 + d.rng.Float64()*0.4
}
