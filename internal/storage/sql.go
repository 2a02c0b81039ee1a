package storage

import (
	_ "embed"
)

const (
	insertSessionSQL = `
INSERT INTO sessions (
                      start_time,
                      source,
                      sample_rate,
                      config)
VALUES (CURRENT_TIMESTAMP, ?, ?, ?)`

	selectSessionSQL = `
SELECT
    id,
    start_time,
    source,
    sample_rate,
    config
FROM sessions
WHERE
    id = ?`

	selectSessionsSQL = `
SELECT
    id,
    start_time,
    source,
    sample_rate,
    config
FROM sessions
ORDER BY start_time`

	insertSampleSQL = `
INSERT INTO samples (session_id,
                     channel,
                     idx,
                     time,
                     value)
VALUES (?, ?, ?, ?, ?)`

	selectSamplesSQL = `
SELECT
    channel,
    idx,
    time,
    value
FROM samples
WHERE
    session_id = ?
  	AND time BETWEEN ? AND ?
ORDER BY channel, idx`

	insertStageIntervalSQL = `
INSERT INTO stage_intervals (session_id,
                             stage,
                             start_time,
                             duration)
VALUES (?, ?, ?, ?)`

	selectStageIntervalsSQL = `
SELECT
    stage,
    start_time,
    duration
FROM stage_intervals
WHERE
    session_id = ?
ORDER BY start_time`

	deleteEventsSQL = `
DELETE FROM events
WHERE session_id = ?`

	insertEventSQL = `
INSERT INTO events (session_id,
                    channel,
                    type,
                    time,
                    confidence,
                    frequency,
                    amplitude,
                    duration)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	selectEventsSQL = `
SELECT
    channel,
    type,
    time,
    confidence,
    frequency,
    amplitude,
    duration
FROM events
WHERE
    session_id = ?
ORDER BY time`
)

//go:embed schema.sql
var initSchemaSQL string
