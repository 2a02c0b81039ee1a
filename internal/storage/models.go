package storage

import (
	"database/sql"
	"time"
)

// Session describes one stored recording session.
type Session struct {
	ID         int64     `json:"ID"`
	StartTime  time.Time `json:"startTime"`
	Source     string    `json:"source"`     // "synthesized" or "csv"
	SampleRate float64   `json:"sampleRate"` // Hz
	Config     *string   `json:"config,omitempty"` // generation/ingestion config as JSON
}

type sessionData struct {
	ID         int64
	StartTime  time.Time
	Source     string
	SampleRate float64
	Config     sql.NullString
}

type sampleData struct {
	Channel string
	Index   int64
	Time    float64
	Value   sql.NullFloat64
}

type eventData struct {
	Channel    string
	Type       string
	Time       float64
	Confidence float64
	Frequency  sql.NullFloat64
	Amplitude  sql.NullFloat64
	Duration   sql.NullFloat64
}
