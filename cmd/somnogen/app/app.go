package app

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/somnolabs/somnoscope/internal/detect"
	"github.com/somnolabs/somnoscope/internal/eeg"
	"github.com/somnolabs/somnoscope/internal/export"
	"github.com/somnolabs/somnoscope/internal/ingest"
	"github.com/somnolabs/somnoscope/internal/report"
	"github.com/somnolabs/somnoscope/internal/storage"
	"github.com/somnolabs/somnoscope/internal/synth"
)

const storageDir = "data"

// Run executes the full pipeline: build or ingest a dataset, detect events
// on every channel, persist the session and write the optional exports.
func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	rng := rand.New(rand.NewSource(seed(config)))

	ds, source, err := buildDataset(config, rng, logger)
	if err != nil {
		return err
	}

	logger.Info("dataset ready",
		slog.String("source", source),
		slog.String("samples", humanize.Comma(int64(ds.Samples()))),
		slog.Int("channels", len(ds.Channels)),
		slog.String("duration", time.Duration(ds.Duration()*float64(time.Second)).String()))

	events, err := detectEvents(config, ds, rng, logger)
	if err != nil {
		return err
	}

	store, err := createStorage(&config.Storage)
	if err != nil {
		return fmt.Errorf("failed to create storage: %w", err)
	}
	defer store.Close()

	sessionID, err := store.CreateSession(ctx, source, ds.SampleRate, config.Recording)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}

	if err = store.StoreDataset(ctx, sessionID, ds); err != nil {
		return fmt.Errorf("storing dataset: %w", err)
	}
	if err = store.StoreEvents(ctx, sessionID, events); err != nil {
		return fmt.Errorf("storing events: %w", err)
	}

	logger.Info("session stored", slog.Int64("sessionID", sessionID))

	return writeExports(&config.Export, ds, events, logger)
}

func seed(config *Config) int64 {
	if config.Recording.Seed != 0 {
		return config.Recording.Seed
	}
	return time.Now().UnixNano()
}

func buildDataset(config *Config, rng *rand.Rand, logger *slog.Logger) (*eeg.Dataset, string, error) {
	if config.Input.CSVPath != "" {
		ds, err := ingestCSV(&config.Input, config.Recording.SampleRate, logger)
		if err == nil {
			return ds, "csv", nil
		}
		logger.Warn("could not load external data, falling back to synthesized data",
			slog.String("path", config.Input.CSVPath),
			slog.String("error", err.Error()))
	}

	ds, err := synthesize(config, rng)
	if err != nil {
		return nil, "", err
	}
	return ds, "synthesized", nil
}

func ingestCSV(config *InputConfig, sampleRate float64, logger *slog.Logger) (*eeg.Dataset, error) {
	raw, err := os.ReadFile(config.CSVPath)
	if err != nil {
		return nil, fmt.Errorf("reading CSV file: %w", err)
	}

	options := []func(*ingest.Parser){ingest.WithSampleRate(sampleRate)}
	if config.MaxRows > 0 {
		options = append(options, ingest.WithMaxRows(config.MaxRows))
	}

	ds, stats, err := ingest.NewParser(options...).Parse(string(raw))
	if err != nil {
		return nil, err
	}

	logger.Info("CSV ingested",
		slog.Int("rows", stats.Rows),
		slog.Int("skippedRows", stats.SkippedRows),
		slog.Int("malformedCells", stats.MalformedCells))
	return ds, nil
}

func synthesize(config *Config, rng *rand.Rand) (*eeg.Dataset, error) {
	pattern, err := config.Recording.Pattern()
	if err != nil {
		return nil, err
	}

	totalSamples := config.Recording.TotalSamples()
	stages, err := synth.Generate(totalSamples, pattern, config.Recording.Cycles)
	if err != nil {
		return nil, fmt.Errorf("generating stage timeline: %w", err)
	}

	var options []func(*synth.Generator)
	if config.Recording.NoiseAmplitude != nil {
		options = append(options, synth.WithNoiseAmplitude(*config.Recording.NoiseAmplitude))
	}

	generator := synth.NewGenerator(rng, options...)
	ds, err := generator.BuildDataset(config.Recording.Channels, totalSamples, stages, config.Recording.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("building dataset: %w", err)
	}
	return ds, nil
}

func detectEvents(config *Config, ds *eeg.Dataset, rng *rand.Rand, logger *slog.Logger) ([]eeg.Event, error) {
	detector, err := detect.New(config.Detection, rng)
	if err != nil {
		return nil, fmt.Errorf("creating detector: %w", err)
	}

	var events []eeg.Event
	for _, channel := range ds.ChannelNames() {
		batch, err := detector.Detect(ds, channel)
		if err != nil {
			return nil, fmt.Errorf("detecting on channel %s: %w", channel, err)
		}

		logger.Debug("channel scanned",
			slog.String("channel", channel),
			slog.Int("events", len(batch)))
		events = append(events, batch...)
	}

	// Per-channel batches are each time-ordered; the merged batch is not.
	sort.Slice(events, func(i, j int) bool { return events[i].Time < events[j].Time })

	logger.Info("detection finished", slog.Int("events", len(events)))
	return events, nil
}

func createStorage(config *StorageConfig) (*storage.SqliteStore, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current working directory: %w", err)
	}

	var dbPath string
	if config.DataDirectory != "" {
		dbPath = filepath.Join(wd, config.DataDirectory)
	} else {
		dbPath = filepath.Join(wd, storageDir)
	}

	stat, err := os.Stat(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("storage directory '%s' does not exist: %w", dbPath, err)
		}
		return nil, fmt.Errorf("checking storage directory '%s': %w", dbPath, err)
	}
	if !stat.IsDir() {
		return nil, fmt.Errorf("invalid storage directory '%s'", dbPath)
	}

	dbPath = filepath.Join(dbPath, fmt.Sprintf("eeg_session_%s.sqlite", time.Now().UTC().Format("20060102_150405")))
	return storage.NewSqliteStore(dbPath), nil
}

func writeExports(config *ExportConfig, ds *eeg.Dataset, events []eeg.Event, logger *slog.Logger) error {
	if config.EDFPath != "" {
		out, err := os.Create(config.EDFPath)
		if err != nil {
			return fmt.Errorf("creating EDF file: %w", err)
		}

		err = export.WriteEDF(out, ds, time.Now().UTC())
		if cErr := out.Close(); cErr != nil && err == nil {
			err = cErr
		}
		if err != nil {
			return err
		}

		logger.Info("EDF written", slog.String("path", config.EDFPath))
	}

	if config.ReportPath != "" {
		out, err := os.Create(config.ReportPath)
		if err != nil {
			return fmt.Errorf("creating report file: %w", err)
		}

		err = report.Render(out, ds, events)
		if cErr := out.Close(); cErr != nil && err == nil {
			err = cErr
		}
		if err != nil {
			return err
		}

		logger.Info("report written", slog.String("path", config.ReportPath))
	}

	return nil
}
