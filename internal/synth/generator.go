package synth

import (
	"fmt"
	"math/rand"

	"github.com/somnolabs/somnoscope/internal/eeg"
)

// defaultNoiseAmplitude is the half-range of the uniform measurement noise
// added to every synthesized sample, in µV.
const defaultNoiseAmplitude = 2.5

// WithNoiseAmplitude overrides the additive uniform noise half-range.
// Zero disables the noise term.
func WithNoiseAmplitude(amp float64) func(*Generator) {
	return func(g *Generator) {
		g.noiseAmplitude = amp
	}
}

// WithSynthesizer replaces the waveform synthesizer used by the generator.
func WithSynthesizer(s *Synthesizer) func(*Generator) {
	return func(g *Generator) {
		g.synth = s
	}
}

// Generator builds dense channel series by iterating a stage timeline and the
// waveform synthesizer, applying per-channel amplitude scaling and additive
// uniform noise. Output is deterministic for a seeded rand source.
type Generator struct {
	synth          *Synthesizer
	rng            *rand.Rand
	noiseAmplitude float64
}

// NewGenerator creates a Generator drawing randomness from rng. The same
// source feeds both the noise term and the synthesizer's transient injection
// unless WithSynthesizer supplies a separately seeded one.
func NewGenerator(rng *rand.Rand, options ...func(*Generator)) *Generator {
	g := Generator{
		synth:          NewSynthesizer(rng),
		rng:            rng,
		noiseAmplitude: defaultNoiseAmplitude,
	}

	for _, option := range options {
		option(&g)
	}

	return &g
}

// Build produces the amplitude series for one channel: totalSamples values at
// sampleRate Hz, following the given dense stage timeline. totalSamples of
// zero yields an empty series, not an error. Unknown channel codes fail with
// eeg.ErrUnknownChannel.
func (g *Generator) Build(code string, totalSamples int, stages []eeg.Stage, sampleRate float64) ([]float64, error) {
	ch, ok := eeg.LookupChannel(code)
	if !ok {
		return nil, fmt.Errorf("%w: %s", eeg.ErrUnknownChannel, code)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %f", sampleRate)
	}

	series := make([]float64, totalSamples)
	for i := 0; i < totalSamples; i++ {
		t := float64(i) / sampleRate

		stage := eeg.StageWake
		if i < len(stages) {
			stage = stages[i]
		}

		v, err := g.synth.Sample(t, stage, ch.Region)
		if err != nil {
			return nil, fmt.Errorf("synthesizing %s at sample %d: %w", code, i, err)
		}

		if g.noiseAmplitude > 0 {
			v += (g.rng.Float64()*2 - 1) * g.noiseAmplitude
		}

		series[i] = v * ch.Multiplier
	}

	return series, nil
}

// BuildDataset assembles a complete dense dataset for the given channel list,
// sharing one time axis and one stage timeline across all channels. Channels
// are built in the order given so a seeded run is reproducible.
func (g *Generator) BuildDataset(codes []string, totalSamples int, stages []eeg.Stage, sampleRate float64) (*eeg.Dataset, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %f", sampleRate)
	}

	ds := eeg.Dataset{
		SampleRate: sampleRate,
		Time:       make([]float64, totalSamples),
		Channels:   make(map[string][]float64, len(codes)),
		Stages:     stages,
	}
	for i := range ds.Time {
		ds.Time[i] = float64(i) / sampleRate
	}

	for _, code := range codes {
		series, err := g.Build(code, totalSamples, stages, sampleRate)
		if err != nil {
			return nil, err
		}
		ds.Channels[code] = series
	}

	if err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("assembling dataset: %w", err)
	}
	return &ds, nil
}
