package storage

import (
	"database/sql"
	"errors"

	"github.com/somnolabs/somnoscope/internal/eeg"
)

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

func rollbackWithError(rb interface{ Rollback() error }, err *error) {
	if cErr := rb.Rollback(); cErr != nil && !errors.Is(cErr, sql.ErrTxDone) && *err == nil {
		*err = cErr
	}
}

func toNullFloat(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: v != 0}
}

func toEvent(d *eventData) eeg.Event {
	ev := eeg.Event{
		Time:       d.Time,
		Channel:    d.Channel,
		Type:       eeg.EventType(d.Type),
		Confidence: d.Confidence,
	}
	if d.Frequency.Valid {
		ev.Frequency = d.Frequency.Float64
	}
	if d.Amplitude.Valid {
		ev.Amplitude = d.Amplitude.Float64
	}
	if d.Duration.Valid {
		ev.Duration = d.Duration.Float64
	}
	return ev
}
