package eeg

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyDataset indicates that an input yielded no parseable samples.
	ErrEmptyDataset = errors.New("dataset contains no samples")

	// ErrUnknownChannel indicates that a requested channel is not present
	// in the dataset.
	ErrUnknownChannel = errors.New("unknown channel")
)

// Dataset is a dense multi-channel recording: one strictly increasing time
// axis, one amplitude series per channel and one stage label per sample.
// A Dataset is built wholesale by the generator or the CSV ingestor and
// replaced wholesale on reload; it is never partially mutated.
type Dataset struct {
	SampleRate float64              `json:"sampleRate"` // Hz
	Time       []float64            `json:"time"`       // seconds, fixed 1/SampleRate step
	Channels   map[string][]float64 `json:"channels"`   // channel code -> amplitude series
	Stages     []Stage              `json:"sleepStages,omitempty"`
}

// Samples returns the number of samples in the dataset.
func (d *Dataset) Samples() int {
	return len(d.Time)
}

// Duration returns the covered time span in seconds.
func (d *Dataset) Duration() float64 {
	if d.SampleRate <= 0 {
		return 0
	}
	return float64(len(d.Time)) / d.SampleRate
}

// StageAt returns the stage label at sample index i. Indexes outside the
// stage series resolve to Wake, the implicit default.
func (d *Dataset) StageAt(i int) Stage {
	if i < 0 || i >= len(d.Stages) {
		return StageWake
	}
	return d.Stages[i]
}

// Channel returns the amplitude series recorded for the given electrode code,
// failing with ErrUnknownChannel when the dataset holds no such series.
func (d *Dataset) Channel(code string) ([]float64, error) {
	series, ok := d.Channels[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownChannel, code)
	}
	return series, nil
}

// ChannelNames returns the channel codes present in the dataset, in channel
// table order first and any unrecognized codes after, so output is stable.
func (d *Dataset) ChannelNames() []string {
	names := make([]string, 0, len(d.Channels))
	for _, code := range ChannelCodes() {
		if _, ok := d.Channels[code]; ok {
			names = append(names, code)
		}
	}
	if len(names) == len(d.Channels) {
		return names
	}
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		seen[n] = struct{}{}
	}
	for code := range d.Channels {
		if _, ok := seen[code]; !ok {
			names = append(names, code)
		}
	}
	return names
}

// Validate checks the dense-form length invariant: every channel series and
// the stage series must match the time axis sample for sample.
func (d *Dataset) Validate() error {
	n := len(d.Time)
	for code, series := range d.Channels {
		if len(series) != n {
			return fmt.Errorf("channel %s has %d samples, want %d", code, len(series), n)
		}
	}
	if d.Stages != nil && len(d.Stages) != n {
		return fmt.Errorf("stage series has %d entries, want %d", len(d.Stages), n)
	}
	return nil
}
