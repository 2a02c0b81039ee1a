package app

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/somnolabs/somnoscope/internal/eeg"
	"github.com/somnolabs/somnoscope/internal/synth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig(writeConfig(t, "settings:\n  logLevel: debug\n"))
	require.NoError(t, err)

	assert.Equal(t, slog.LevelDebug, config.Settings.SlogLevel())
	assert.Equal(t, float64(10), config.Recording.SampleRate)
	assert.Equal(t, float64(3600), config.Recording.DurationSeconds)
	assert.Equal(t, 36000, config.Recording.TotalSamples())
	assert.Equal(t, eeg.ChannelCodes(), config.Recording.Channels)
	assert.Equal(t, 4, config.Recording.Cycles)
	assert.Equal(t, 50, config.Detection.WindowSize)
	assert.Nil(t, config.Recording.NoiseAmplitude)

	pattern, err := config.Recording.Pattern()
	require.NoError(t, err)
	assert.Equal(t, synth.DefaultCyclePattern, pattern)
}

func TestLoadConfigOverrides(t *testing.T) {
	body := `
recording:
  sampleRate: 250
  durationSeconds: 120
  channels: [C3, O1]
  cyclePattern: [Wake, N1, N2]
  cycles: 2
  seed: 99
  noiseAmplitude: 0
detection:
  windowSize: 100
  spindle:
    variance: 55
`
	config, err := LoadConfig(writeConfig(t, body))
	require.NoError(t, err)

	assert.Equal(t, 30000, config.Recording.TotalSamples())
	assert.Equal(t, []string{"C3", "O1"}, config.Recording.Channels)
	assert.Equal(t, int64(99), config.Recording.Seed)
	require.NotNil(t, config.Recording.NoiseAmplitude)
	assert.Zero(t, *config.Recording.NoiseAmplitude)
	assert.Equal(t, 100, config.Detection.WindowSize)
	assert.Equal(t, float64(55), config.Detection.Spindle.Variance)

	pattern, err := config.Recording.Pattern()
	require.NoError(t, err)
	assert.Equal(t, []eeg.Stage{eeg.StageWake, eeg.StageN1, eeg.StageN2}, pattern)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"negative sample rate", "recording:\n  sampleRate: -1\n"},
		{"zero duration", "recording:\n  durationSeconds: 0\n"},
		{"zero cycles", "recording:\n  cycles: 0\n"},
		{"zero detection window", "detection:\n  windowSize: 0\n"},
		{"unknown channel", "recording:\n  channels: [Cz]\n"},
		{"not yaml", "{{{\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestPatternRejectsUnknownStage(t *testing.T) {
	r := RecordingConfig{CyclePattern: []string{"Wake", "N4"}}
	_, err := r.Pattern()
	assert.ErrorIs(t, err, eeg.ErrInvalidStage)
}
