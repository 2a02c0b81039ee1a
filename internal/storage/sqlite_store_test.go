package storage

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/somnolabs/somnoscope/internal/eeg"
)

func newTestStore(t *testing.T) *SqliteStore {
	t.Helper()

	store := NewSqliteStore(filepath.Join(t.TempDir(), "test.sqlite"))
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return store
}

func testRecording() *eeg.Dataset {
	const n = 20
	ds := eeg.Dataset{
		SampleRate: 10,
		Time:       make([]float64, n),
		Channels: map[string][]float64{
			"C3": make([]float64, n),
			"O1": make([]float64, n),
		},
		Stages: make([]eeg.Stage, n),
	}
	for i := 0; i < n; i++ {
		ds.Time[i] = float64(i) / ds.SampleRate
		ds.Channels["C3"][i] = float64(i)
		ds.Channels["O1"][i] = -float64(i)
		ds.Stages[i] = eeg.StageN2
		if i >= n/2 {
			ds.Stages[i] = eeg.StageREM
		}
	}
	return &ds
}

func TestSessionRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.CreateSession(ctx, "synthesized", 10, map[string]int{"cycles": 4})
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if id <= 0 {
		t.Fatalf("CreateSession() id = %d, want > 0", id)
	}

	session, err := store.Session(ctx, id)
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}
	if session.Source != "synthesized" {
		t.Errorf("Source = %q, want %q", session.Source, "synthesized")
	}
	if session.SampleRate != 10 {
		t.Errorf("SampleRate = %f, want 10", session.SampleRate)
	}
	if session.Config == nil || *session.Config != `{"cycles":4}` {
		t.Errorf("Config = %v, want JSON payload", session.Config)
	}

	sessions, err := store.Sessions(ctx)
	if err != nil {
		t.Fatalf("Sessions() error = %v", err)
	}
	if len(sessions) != 1 || sessions[0].ID != id {
		t.Errorf("Sessions() = %v, want one session with ID %d", sessions, id)
	}
}

func TestDatasetRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.CreateSession(ctx, "synthesized", 10, nil)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	ds := testRecording()
	if err = store.StoreDataset(ctx, id, ds); err != nil {
		t.Fatalf("StoreDataset() error = %v", err)
	}

	got, err := store.ReadDataset(ctx, id)
	if err != nil {
		t.Fatalf("ReadDataset() error = %v", err)
	}

	if got.Samples() != ds.Samples() {
		t.Fatalf("Samples() = %d, want %d", got.Samples(), ds.Samples())
	}
	if len(got.Channels) != 2 {
		t.Fatalf("channels = %d, want 2", len(got.Channels))
	}
	for _, name := range []string{"C3", "O1"} {
		for i := range ds.Channels[name] {
			if math.Abs(got.Channels[name][i]-ds.Channels[name][i]) > 1e-9 {
				t.Fatalf("channel %s sample %d = %f, want %f", name, i, got.Channels[name][i], ds.Channels[name][i])
			}
		}
	}
	for i := range ds.Stages {
		if got.Stages[i] != ds.Stages[i] {
			t.Fatalf("stage %d = %s, want %s", i, got.Stages[i], ds.Stages[i])
		}
	}
}

func TestReadDatasetFiltering(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.CreateSession(ctx, "synthesized", 10, nil)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if err = store.StoreDataset(ctx, id, testRecording()); err != nil {
		t.Fatalf("StoreDataset() error = %v", err)
	}

	got, err := store.ReadDataset(ctx, id, WithChannels("C3"), WithTimeRange(0.5, 1.0))
	if err != nil {
		t.Fatalf("ReadDataset() error = %v", err)
	}

	if len(got.Channels) != 1 {
		t.Fatalf("channels = %d, want 1", len(got.Channels))
	}
	// Samples at t = 0.5 .. 1.0 inclusive at 10 Hz.
	if got.Samples() != 6 {
		t.Errorf("Samples() = %d, want 6", got.Samples())
	}
	if got.Time[0] != 0.5 {
		t.Errorf("Time[0] = %f, want 0.5", got.Time[0])
	}
}

func TestReadDatasetEmptySession(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.CreateSession(ctx, "csv", 10, nil)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	if _, err = store.ReadDataset(ctx, id); !errors.Is(err, eeg.ErrEmptyDataset) {
		t.Errorf("ReadDataset() error = %v, want ErrEmptyDataset", err)
	}
}

func TestStageIntervalsSparseForm(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.CreateSession(ctx, "synthesized", 10, nil)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if err = store.StoreDataset(ctx, id, testRecording()); err != nil {
		t.Fatalf("StoreDataset() error = %v", err)
	}

	intervals, err := store.StageIntervals(ctx, id)
	if err != nil {
		t.Fatalf("StageIntervals() error = %v", err)
	}

	want := []eeg.StageInterval{
		{Stage: eeg.StageN2, Start: 0, Duration: 1},
		{Stage: eeg.StageREM, Start: 1, Duration: 1},
	}
	if len(intervals) != len(want) {
		t.Fatalf("intervals = %v, want %v", intervals, want)
	}
	for i := range want {
		if intervals[i] != want[i] {
			t.Errorf("interval %d = %v, want %v", i, intervals[i], want[i])
		}
	}
}

func TestStoreEventsReplacesBatch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.CreateSession(ctx, "synthesized", 10, nil)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	first := []eeg.Event{
		{Time: 5, Channel: "C3", Type: eeg.EventSpindle, Confidence: 0.8, Frequency: 12.5, Duration: 1.1},
		{Time: 9, Channel: "C3", Type: eeg.EventKComplex, Confidence: 0.7, Amplitude: 80},
	}
	if err = store.StoreEvents(ctx, id, first); err != nil {
		t.Fatalf("StoreEvents() error = %v", err)
	}

	second := []eeg.Event{
		{Time: 2, Channel: "O1", Type: eeg.EventREMBurst, Confidence: 0.9, Duration: 0.6},
	}
	if err = store.StoreEvents(ctx, id, second); err != nil {
		t.Fatalf("StoreEvents() error = %v", err)
	}

	events, err := store.Events(ctx, id)
	if err != nil {
		t.Fatalf("Events() error = %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1 after replacement", len(events))
	}
	if events[0] != second[0] {
		t.Errorf("event = %v, want %v", events[0], second[0])
	}
}

func TestEventsOrderedByTime(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.CreateSession(ctx, "synthesized", 10, nil)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	batch := []eeg.Event{
		{Time: 42, Channel: "C3", Type: eeg.EventSpindle, Confidence: 0.8, Frequency: 13, Duration: 1},
		{Time: 7, Channel: "C3", Type: eeg.EventKComplex, Confidence: 0.7, Amplitude: 65},
		{Time: 19, Channel: "O1", Type: eeg.EventREMBurst, Confidence: 0.9, Duration: 0.5},
	}
	if err = store.StoreEvents(ctx, id, batch); err != nil {
		t.Fatalf("StoreEvents() error = %v", err)
	}

	events, err := store.Events(ctx, id)
	if err != nil {
		t.Fatalf("Events() error = %v", err)
	}
	if len(events) != len(batch) {
		t.Fatalf("events = %d, want %d", len(events), len(batch))
	}
	for i := 1; i < len(events); i++ {
		if events[i].Time < events[i-1].Time {
			t.Errorf("events out of order: %f before %f", events[i-1].Time, events[i].Time)
		}
	}
}
