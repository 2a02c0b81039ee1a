package eeg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDataset() *Dataset {
	return &Dataset{
		SampleRate: 10,
		Time:       []float64{0, 0.1, 0.2, 0.3},
		Channels: map[string][]float64{
			"C3": {1, 2, 3, 4},
			"O1": {5, 6, 7, 8},
		},
		Stages: []Stage{StageWake, StageN1, StageN2, StageN2},
	}
}

func TestDatasetAccessors(t *testing.T) {
	ds := testDataset()

	assert.Equal(t, 4, ds.Samples())
	assert.InDelta(t, 0.4, ds.Duration(), 1e-9)

	series, err := ds.Channel("C3")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4}, series)

	_, err = ds.Channel("Fz")
	assert.ErrorIs(t, err, ErrUnknownChannel)
}

func TestDatasetStageAt(t *testing.T) {
	ds := testDataset()

	assert.Equal(t, StageWake, ds.StageAt(0))
	assert.Equal(t, StageN2, ds.StageAt(3))

	// Out-of-range indexes resolve to the implicit default.
	assert.Equal(t, StageWake, ds.StageAt(-1))
	assert.Equal(t, StageWake, ds.StageAt(4))
}

func TestDatasetChannelNames(t *testing.T) {
	ds := testDataset()

	// Channel table order, not map order.
	assert.Equal(t, []string{"C3", "O1"}, ds.ChannelNames())
}

func TestDatasetValidate(t *testing.T) {
	ds := testDataset()
	require.NoError(t, ds.Validate())

	ds.Channels["C3"] = ds.Channels["C3"][:2]
	assert.Error(t, ds.Validate())

	ds = testDataset()
	ds.Stages = ds.Stages[:1]
	assert.Error(t, ds.Validate())
}
