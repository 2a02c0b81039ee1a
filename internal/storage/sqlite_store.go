package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/somnolabs/somnoscope/internal/eeg"
	"github.com/somnolabs/somnoscope/internal/synth"
)

// maxBatchSize caps the number of rows written per transaction when storing
// sample data.
const maxBatchSize = 5000

// SqliteStore handles database operations backed by a single SQLite file.
// Write and read connections are opened lazily and kept separate so long
// reporting reads do not contend with batch writes.
type SqliteStore struct {
	dbPath string

	writeDB     *sql.DB
	writeDBOnce sync.Once
	writeDBErr  error

	readDB     *sql.DB
	readDBOnce sync.Once
	readDBErr  error

	closeOnce sync.Once
	closeErr  error
}

// NewSqliteStore creates a new store for the SQLite database at dbPath.
// The schema is initialized on first write.
func NewSqliteStore(dbPath string) *SqliteStore {
	return &SqliteStore{dbPath: dbPath}
}

func runSQLCommand(db *sql.DB, sql string) error {
	_, err := db.Exec(sql)
	return err
}

func (s *SqliteStore) getWriteDB() (*sql.DB, error) {
	s.writeDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "_journal_mode=WAL&_synchronous=NORMAL"))
		if err != nil {
			s.writeDBErr = fmt.Errorf("opening write connection: %w", err)
			return
		}

		if err = runSQLCommand(db, initSchemaSQL); err != nil {
			_ = db.Close()
			s.writeDBErr = fmt.Errorf("initializing schema: %w", err)
			return
		}

		s.writeDB = db
	})

	return s.writeDB, s.writeDBErr
}

func (s *SqliteStore) getReadDB() (*sql.DB, error) {
	s.readDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "mode=ro"))
		if err != nil {
			s.readDBErr = fmt.Errorf("opening read connection: %w", err)
			return
		}
		s.readDB = db
	})

	return s.readDB, s.readDBErr
}

func (s *SqliteStore) CreateSession(ctx context.Context, source string, sampleRate float64, config any) (sessionID int64, err error) {
	var configData sql.NullString

	if config != nil {
		switch c := config.(type) {
		case string:
			configData.Valid = true
			configData.String = c

		case []byte:
			configData.Valid = true
			configData.String = string(c)

		default:
			var p []byte
			if p, err = json.Marshal(config); err != nil {
				err = fmt.Errorf("marshaling config: %w", err)
				return
			}

			configData.Valid = true
			configData.String = string(p)
		}
	}

	db, err := s.getWriteDB()
	if err != nil {
		err = fmt.Errorf("getting write connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, insertSessionSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	result, err := stmt.ExecContext(ctx, source, sampleRate, configData)
	if err != nil {
		err = fmt.Errorf("inserting session: %w", err)
		return
	}

	sessionID, err = result.LastInsertId()
	if err != nil {
		err = fmt.Errorf("getting session ID: %w", err)
	}
	return
}

func (s *SqliteStore) Session(ctx context.Context, id int64) (session *Session, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, selectSessionSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	var data sessionData
	if err = stmt.QueryRowContext(ctx, id).Scan(&data.ID, &data.StartTime, &data.Source, &data.SampleRate, &data.Config); err != nil {
		err = fmt.Errorf("scanning session: %w", err)
		return
	}

	session = &Session{
		ID:         data.ID,
		StartTime:  data.StartTime,
		Source:     data.Source,
		SampleRate: data.SampleRate,
	}
	if data.Config.Valid {
		session.Config = &data.Config.String
	}
	return session, nil
}

func (s *SqliteStore) Sessions(ctx context.Context) (sessions []*Session, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectSessionsSQL)
	if err != nil {
		err = fmt.Errorf("querying sessions: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var data sessionData
		if err = rows.Scan(&data.ID, &data.StartTime, &data.Source, &data.SampleRate, &data.Config); err != nil {
			err = fmt.Errorf("scanning session: %w", err)
			return
		}

		session := &Session{
			ID:         data.ID,
			StartTime:  data.StartTime,
			Source:     data.Source,
			SampleRate: data.SampleRate,
		}
		if data.Config.Valid {
			session.Config = &data.Config.String
		}
		sessions = append(sessions, session)
	}

	err = rows.Err()
	return
}

func (s *SqliteStore) StoreDataset(ctx context.Context, sessionID int64, ds *eeg.Dataset) error {
	if err := ds.Validate(); err != nil {
		return fmt.Errorf("validating dataset: %w", err)
	}

	for _, channel := range ds.ChannelNames() {
		series := ds.Channels[channel]
		for start := 0; start < len(series); start += maxBatchSize {
			end := min(start+maxBatchSize, len(series))
			if err := s.storeSampleBatch(ctx, sessionID, channel, ds, start, end); err != nil {
				return fmt.Errorf("storing channel %s: %w", channel, err)
			}
		}
	}

	if ds.Stages != nil {
		intervals := synth.DenseToIntervals(ds.Stages, ds.SampleRate)
		if err := s.storeStageIntervals(ctx, sessionID, intervals); err != nil {
			return fmt.Errorf("storing stage timeline: %w", err)
		}
	}

	return nil
}

func (s *SqliteStore) storeSampleBatch(ctx context.Context, sessionID int64, channel string, ds *eeg.Dataset, start, end int) (err error) {
	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollbackWithError(tx, &err)

	stmt, err := tx.PrepareContext(ctx, insertSampleSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	series := ds.Channels[channel]
	for i := start; i < end; i++ {
		if _, err = stmt.ExecContext(ctx, sessionID, channel, i, ds.Time[i], series[i]); err != nil {
			return fmt.Errorf("inserting sample %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *SqliteStore) storeStageIntervals(ctx context.Context, sessionID int64, intervals []eeg.StageInterval) (err error) {
	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollbackWithError(tx, &err)

	stmt, err := tx.PrepareContext(ctx, insertStageIntervalSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	for _, interval := range intervals {
		if _, err = stmt.ExecContext(ctx, sessionID, string(interval.Stage), interval.Start, interval.Duration); err != nil {
			return fmt.Errorf("inserting stage interval: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *SqliteStore) StoreEvents(ctx context.Context, sessionID int64, events []eeg.Event) (err error) {
	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollbackWithError(tx, &err)

	// A detection batch wholly replaces the previous one.
	if _, err = tx.ExecContext(ctx, deleteEventsSQL, sessionID); err != nil {
		return fmt.Errorf("clearing previous events: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertEventSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	for _, ev := range events {
		_, err = stmt.ExecContext(ctx,
			sessionID,
			ev.Channel,
			string(ev.Type),
			ev.Time,
			ev.Confidence,
			toNullFloat(ev.Frequency),
			toNullFloat(ev.Amplitude),
			toNullFloat(ev.Duration),
		)
		if err != nil {
			return fmt.Errorf("inserting event: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *SqliteStore) StageIntervals(ctx context.Context, sessionID int64) (intervals []eeg.StageInterval, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectStageIntervalsSQL, sessionID)
	if err != nil {
		err = fmt.Errorf("querying stage intervals: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var stage string
		var interval eeg.StageInterval
		if err = rows.Scan(&stage, &interval.Start, &interval.Duration); err != nil {
			err = fmt.Errorf("scanning stage interval: %w", err)
			return
		}
		interval.Stage = eeg.Stage(stage)
		intervals = append(intervals, interval)
	}

	err = rows.Err()
	return
}

func (s *SqliteStore) Events(ctx context.Context, sessionID int64) (events []eeg.Event, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectEventsSQL, sessionID)
	if err != nil {
		err = fmt.Errorf("querying events: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var data eventData
		if err = rows.Scan(&data.Channel, &data.Type, &data.Time, &data.Confidence, &data.Frequency, &data.Amplitude, &data.Duration); err != nil {
			err = fmt.Errorf("scanning event: %w", err)
			return
		}
		events = append(events, toEvent(&data))
	}

	err = rows.Err()
	return
}

// Close closes the database connections. It is safe to call multiple times.
func (s *SqliteStore) Close() error {
	s.closeOnce.Do(func() {
		var writeErr, readErr error

		if s.writeDB != nil {
			writeErr = s.writeDB.Close()
			s.writeDB = nil
		}

		if s.readDB != nil {
			readErr = s.readDB.Close()
			s.readDB = nil
		}

		switch {
		case writeErr != nil && readErr != nil:
			s.closeErr = errors.Join(writeErr, readErr)
		case writeErr != nil:
			s.closeErr = writeErr
		case readErr != nil:
			s.closeErr = readErr
		}
	})

	return s.closeErr
}
