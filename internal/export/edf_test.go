package export

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/OpenPSG/edf"
	"github.com/somnolabs/somnoscope/internal/eeg"
	"github.com/somnolabs/somnoscope/internal/synth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteEDFRoundTrip(t *testing.T) {
	stages, err := synth.Generate(50, synth.DefaultCyclePattern, 2)
	require.NoError(t, err)

	g := synth.NewGenerator(rand.New(rand.NewSource(21)))
	ds, err := g.BuildDataset([]string{"C3", "O1"}, 50, stages, 10)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "recording.edf")
	f, err := os.Create(path)
	require.NoError(t, err)

	start := time.Date(2025, 3, 14, 22, 30, 0, 0, time.UTC)
	require.NoError(t, WriteEDF(f, ds, start))
	require.NoError(t, f.Close())

	rf, err := os.Open(path)
	require.NoError(t, err)
	defer rf.Close()

	r, err := edf.Open(rf)
	require.NoError(t, err)

	// 50 samples at 10 Hz is 5 one-second records of 10 samples each.
	names := ds.ChannelNames()
	for i, name := range names {
		sr, err := r.Signal(i)
		require.NoError(t, err)

		got := make([]float64, 50)
		n, err := sr.Read(got)
		require.NoError(t, err)
		require.Equal(t, 50, n)

		want := ds.Channels[name]
		for j := range want {
			// 16-bit quantization over the data-driven physical range.
			assert.InDelta(t, want[j], got[j], 0.01, "signal %s sample %d", name, j)
		}
	}
}

func TestWriteEDFDropsPartialRecord(t *testing.T) {
	ds := flatDataset(25, 10) // 2 whole records plus 5 trailing samples

	path := filepath.Join(t.TempDir(), "partial.edf")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, WriteEDF(f, ds, time.Now()))
	require.NoError(t, f.Close())

	rf, err := os.Open(path)
	require.NoError(t, err)
	defer rf.Close()

	r, err := edf.Open(rf)
	require.NoError(t, err)

	sr, err := r.Signal(0)
	require.NoError(t, err)

	got := make([]float64, 25)
	n, _ := sr.Read(got)
	assert.Equal(t, 20, n)
}

func TestWriteEDFEmptyDataset(t *testing.T) {
	var ds eeg.Dataset
	err := WriteEDF(nopWriteSeeker{}, &ds, time.Now())
	assert.ErrorIs(t, err, eeg.ErrEmptyDataset)
}

func flatDataset(samples int, rate float64) *eeg.Dataset {
	ds := eeg.Dataset{
		SampleRate: rate,
		Time:       make([]float64, samples),
		Channels:   map[string][]float64{"C3": make([]float64, samples)},
	}
	for i := range ds.Time {
		ds.Time[i] = float64(i) / rate
		ds.Channels["C3"][i] = float64(i % 7)
	}
	return &ds
}

type nopWriteSeeker struct{}

func (nopWriteSeeker) Write(p []byte) (int, error)    { return len(p), nil }
func (nopWriteSeeker) Seek(int64, int) (int64, error) { return 0, nil }
