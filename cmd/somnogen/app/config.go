package app

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/somnolabs/somnoscope/internal/detect"
	"github.com/somnolabs/somnoscope/internal/eeg"
	"github.com/somnolabs/somnoscope/internal/synth"
	"gopkg.in/yaml.v3"
)

// Config represents the main application configuration
type Config struct {
	Settings  Settings        `yaml:"settings"`
	Recording RecordingConfig `yaml:"recording"`
	Input     InputConfig     `yaml:"input"`
	Detection detect.Config   `yaml:"detection"`
	Storage   StorageConfig   `yaml:"storage"`
	Export    ExportConfig    `yaml:"export"`
}

// Settings represents global application settings
type Settings struct {
	LogLevel string `yaml:"logLevel"`
}

// SlogLevel maps the configured log level name onto a slog level,
// defaulting to info.
func (s Settings) SlogLevel() slog.Level {
	switch strings.ToLower(s.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// RecordingConfig shapes the synthesized recording.
type RecordingConfig struct {
	SampleRate      float64  `yaml:"sampleRate"`      // Hz
	DurationSeconds float64  `yaml:"durationSeconds"` // total recording length
	Channels        []string `yaml:"channels"`        // 10-20 electrode codes
	CyclePattern    []string `yaml:"cyclePattern"`    // macro-cycle stage sequence
	Cycles          int      `yaml:"cycles"`          // macro-cycles per recording
	Seed            int64    `yaml:"seed"`            // random seed; 0 means non-deterministic
	NoiseAmplitude  *float64 `yaml:"noiseAmplitude"`  // uniform noise half-range in µV
}

// TotalSamples returns the recording length in samples.
func (r RecordingConfig) TotalSamples() int {
	return int(r.DurationSeconds * r.SampleRate)
}

// Pattern resolves the configured stage labels, failing on labels outside
// the stage enumeration.
func (r RecordingConfig) Pattern() ([]eeg.Stage, error) {
	if len(r.CyclePattern) == 0 {
		return synth.DefaultCyclePattern, nil
	}

	pattern := make([]eeg.Stage, len(r.CyclePattern))
	for i, label := range r.CyclePattern {
		stage, err := eeg.ParseStage(label)
		if err != nil {
			return nil, fmt.Errorf("cycle pattern entry %d: %w: %q", i, err, label)
		}
		pattern[i] = stage
	}
	return pattern, nil
}

// InputConfig points the pipeline at an external CSV recording. When CSVPath
// is set the file replaces the synthesized dataset; on ingestion failure the
// pipeline falls back to synthesis and says so.
type InputConfig struct {
	CSVPath string `yaml:"csvPath"`
	MaxRows int    `yaml:"maxRows"`
}

// StorageConfig represents storage settings
type StorageConfig struct {
	DataDirectory string `yaml:"dataDirectory"`
}

// ExportConfig names optional output artifacts; empty paths disable them.
type ExportConfig struct {
	EDFPath    string `yaml:"edfPath"`
	ReportPath string `yaml:"reportPath"`
}

// LoadConfig reads and validates the YAML configuration at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration: %w", err)
	}

	config := Config{
		Recording: RecordingConfig{
			SampleRate:      10,
			DurationSeconds: 3600,
			Channels:        eeg.ChannelCodes(),
			Cycles:          4,
		},
		Detection: detect.DefaultConfig(),
	}
	if err = yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if config.Recording.SampleRate <= 0 {
		return nil, fmt.Errorf("recording.sampleRate must be positive")
	}
	if config.Recording.DurationSeconds <= 0 {
		return nil, fmt.Errorf("recording.durationSeconds must be positive")
	}
	if config.Recording.Cycles <= 0 {
		return nil, fmt.Errorf("recording.cycles must be positive")
	}
	if config.Detection.WindowSize <= 0 {
		return nil, fmt.Errorf("detection.windowSize must be positive")
	}
	for _, code := range config.Recording.Channels {
		if _, ok := eeg.LookupChannel(code); !ok {
			return nil, fmt.Errorf("recording.channels: %w: %s", eeg.ErrUnknownChannel, code)
		}
	}

	return &config, nil
}
