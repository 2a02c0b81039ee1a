package app

import (
	"context"
	"fmt"
	"image/jpeg"
	"image/png"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/somnolabs/somnoscope/internal/eeg"
	"github.com/somnolabs/somnoscope/internal/report"
	"github.com/somnolabs/somnoscope/internal/storage"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	if _, err := os.Stat(config.DBPath); err != nil && os.IsNotExist(err) {
		return fmt.Errorf("database file '%s' does not exist: %w", config.DBPath, err)
	}

	store := storage.NewSqliteStore(config.DBPath)
	defer store.Close()

	return renderSession(ctx, store, config, logger)
}

func renderSession(ctx context.Context, store *storage.SqliteStore, config *Config, logger *slog.Logger) error {
	var opts []storage.ReaderOption
	var filters []any
	switch {
	case config.StartTime != nil && config.EndTime != nil:
		opts = append(opts, storage.WithTimeRange(*config.StartTime, *config.EndTime))

		filters = append(filters,
			slog.String("startTime", fmt.Sprintf("%0.1fs", *config.StartTime)),
			slog.String("endTime", fmt.Sprintf("%0.1fs", *config.EndTime)))

	case config.StartTime != nil:
		opts = append(opts, storage.WithTimeRange(*config.StartTime, math.MaxFloat64))

		filters = append(filters, slog.String("startTime", fmt.Sprintf("%0.1fs", *config.StartTime)))

	case config.EndTime != nil:
		opts = append(opts, storage.WithTimeRange(0, *config.EndTime))

		filters = append(filters, slog.String("endTime", fmt.Sprintf("%0.1fs", *config.EndTime)))
	}

	if config.Format != OutputHTML && config.TraceChannel != "" {
		// The image draws only the hypnogram and one trace; skip loading
		// the remaining channels. The HTML report shows them all.
		opts = append(opts, storage.WithChannels(config.TraceChannel))
	}

	if config.Verbose {
		logger.Info("reader configuration", filters...)
	}

	ds, err := store.ReadDataset(ctx, config.SessionID, opts...)
	if err != nil {
		return fmt.Errorf("reading session %d: %w", config.SessionID, err)
	}

	events, err := store.Events(ctx, config.SessionID)
	if err != nil {
		return fmt.Errorf("reading events: %w", err)
	}
	events = filterEvents(events, ds)

	logger.Info("session loaded",
		slog.Group("stats",
			slog.String("samples", humanize.Comma(int64(ds.Samples()))),
			slog.Int("channels", len(ds.Channels)),
			slog.Int("events", len(events)),
			slog.String("duration", time.Duration(ds.Duration()*float64(time.Second)).String()),
		))

	out, err := os.Create(config.OutputFile)
	if err != nil {
		return err
	}
	defer out.Close()

	if config.Format == OutputHTML {
		return report.Render(out, ds, events)
	}

	renderer, err := NewRenderer(RenderConfig{
		TraceChannel: config.TraceChannel,
		Annotations:  !config.NoAnnotations,
	})
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}

	img, err := renderer.Render(ds, events)
	if err != nil {
		return fmt.Errorf("rendering hypnogram: %w", err)
	}

	logger.Info("rendering hypnogram",
		slog.Group("image",
			slog.String("destination", config.OutputFile),
			slog.String("format", string(config.Format)),
			slog.Int("width", img.Bounds().Dx()),
			slog.Int("height", img.Bounds().Dy()),
		))

	switch config.Format {
	case OutputPNG:
		err = png.Encode(out, img)

	case OutputJPEG:
		err = jpeg.Encode(out, img, &jpeg.Options{
			Quality: 98,
		})
	}
	return err
}

// filterEvents drops events outside the loaded dataset's time span, which
// matters when a time range filter narrowed the read.
func filterEvents(events []eeg.Event, ds *eeg.Dataset) []eeg.Event {
	if ds.Samples() == 0 {
		return nil
	}

	start := ds.Time[0]
	end := ds.Time[len(ds.Time)-1]

	filtered := events[:0]
	for _, ev := range events {
		if ev.Time >= start && ev.Time <= end {
			filtered = append(filtered, ev)
		}
	}
	return filtered
}
