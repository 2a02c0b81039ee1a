package storage

import (
	"context"

	_ "github.com/mattn/go-sqlite3"
	"github.com/somnolabs/somnoscope/internal/eeg"
)

// Store provides an interface for managing recording storage operations:
// sessions, sample data, stage timelines and detected events. Writes are
// atomic; a stored event batch wholly replaces the previous one for its
// session.
type Store interface {
	// CreateSession initializes a new recording session and returns its
	// unique identifier. Source names where the data came from
	// ("synthesized", "csv"); config may be a string, []byte or any
	// JSON-serializable value.
	CreateSession(ctx context.Context, source string, sampleRate float64, config any) (sessionID int64, err error)

	// Session retrieves a session by its ID.
	Session(ctx context.Context, id int64) (*Session, error)

	// Sessions returns all stored sessions ordered by start time.
	Sessions(ctx context.Context) ([]*Session, error)

	// StoreDataset saves every channel series of a dense dataset plus its
	// stage timeline (collapsed to intervals) for the session.
	StoreDataset(ctx context.Context, sessionID int64, ds *eeg.Dataset) error

	// StoreEvents replaces the session's detected events with the given
	// batch in a single transaction.
	StoreEvents(ctx context.Context, sessionID int64, events []eeg.Event) error

	// ReadDataset reassembles the dense dataset stored for a session,
	// honouring the reader options (channel filter, time range).
	ReadDataset(ctx context.Context, sessionID int64, opts ...ReaderOption) (*eeg.Dataset, error)

	// StageIntervals returns the stored stage timeline in sparse form.
	StageIntervals(ctx context.Context, sessionID int64) ([]eeg.StageInterval, error)

	// Events returns the stored detected events ordered by time.
	Events(ctx context.Context, sessionID int64) ([]eeg.Event, error)

	// Close releases all database connections and resources. It is safe to
	// call Close multiple times.
	Close() error
}
