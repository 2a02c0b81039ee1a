package storage

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	_ "github.com/mattn/go-sqlite3"
	"github.com/somnolabs/somnoscope/internal/eeg"
)

// ReaderOption configures a dataset read with filtering criteria.
type ReaderOption func(*datasetReader)

// WithChannels restricts the read to the given channel codes. Without it all
// stored channels are returned.
func WithChannels(channels ...string) ReaderOption {
	return func(r *datasetReader) {
		r.channels = channels
	}
}

// WithTimeRange restricts the read to samples whose time lies in
// [startTime, endTime] seconds.
func WithTimeRange(startTime, endTime float64) ReaderOption {
	return func(r *datasetReader) {
		r.startTime = &startTime
		r.endTime = &endTime
	}
}

type datasetReader struct {
	channels  []string
	startTime *float64
	endTime   *float64
}

// ReadDataset reassembles the dense dataset stored for a session. The stage
// timeline is rebuilt from the stored intervals, one label per returned
// sample. A session with no stored samples fails with eeg.ErrEmptyDataset.
func (s *SqliteStore) ReadDataset(ctx context.Context, sessionID int64, opts ...ReaderOption) (*eeg.Dataset, error) {
	var reader datasetReader
	for _, opt := range opts {
		opt(&reader)
	}

	session, err := s.Session(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session %d: %w", sessionID, err)
	}

	db, err := s.getReadDB()
	if err != nil {
		return nil, fmt.Errorf("getting read connection: %w", err)
	}

	startTime, endTime := 0.0, math.MaxFloat64
	if reader.startTime != nil {
		startTime = *reader.startTime
	}
	if reader.endTime != nil {
		endTime = *reader.endTime
	}

	ds, err := s.readSamples(ctx, db, sessionID, session.SampleRate, startTime, endTime, reader.channels)
	if err != nil {
		return nil, err
	}
	if ds.Samples() == 0 {
		return nil, fmt.Errorf("session %d: %w", sessionID, eeg.ErrEmptyDataset)
	}

	intervals, err := s.StageIntervals(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(intervals) > 0 {
		ds.Stages = make([]eeg.Stage, len(ds.Time))
		for i, t := range ds.Time {
			ds.Stages[i] = stageAtTime(intervals, t)
		}
	}

	return ds, nil
}

func (s *SqliteStore) readSamples(ctx context.Context, db *sql.DB, sessionID int64, sampleRate, startTime, endTime float64, channels []string) (ds *eeg.Dataset, err error) {
	rows, err := db.QueryContext(ctx, selectSamplesSQL, sessionID, startTime, endTime)
	if err != nil {
		return nil, fmt.Errorf("querying samples: %w", err)
	}
	defer closeWithError(rows, &err)

	var wanted map[string]struct{}
	if len(channels) > 0 {
		wanted = make(map[string]struct{}, len(channels))
		for _, c := range channels {
			wanted[c] = struct{}{}
		}
	}

	ds = &eeg.Dataset{
		SampleRate: sampleRate,
		Channels:   make(map[string][]float64),
	}

	var times []float64
	var firstChannel string
	for rows.Next() {
		var data sampleData
		if err = rows.Scan(&data.Channel, &data.Index, &data.Time, &data.Value); err != nil {
			return nil, fmt.Errorf("scanning sample: %w", err)
		}

		if wanted != nil {
			if _, ok := wanted[data.Channel]; !ok {
				continue
			}
		}

		// Rows arrive ordered by channel then index; the time axis is
		// shared, so capture it from the first channel seen.
		if firstChannel == "" {
			firstChannel = data.Channel
		}
		if data.Channel == firstChannel {
			times = append(times, data.Time)
		}

		ds.Channels[data.Channel] = append(ds.Channels[data.Channel], data.Value.Float64)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("reading samples: %w", err)
	}

	ds.Time = times
	if err = ds.Validate(); err != nil {
		return nil, fmt.Errorf("reassembling dataset: %w", err)
	}
	return ds, nil
}

// stageAtTime resolves the stage covering time t from a sorted interval list.
// Times past the final interval resolve to the last stage recorded.
func stageAtTime(intervals []eeg.StageInterval, t float64) eeg.Stage {
	for _, interval := range intervals {
		if t >= interval.Start && t < interval.End() {
			return interval.Stage
		}
	}
	return intervals[len(intervals)-1].Stage
}
