package eeg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStage(t *testing.T) {
	for _, stage := range Stages {
		parsed, err := ParseStage(string(stage))
		require.NoError(t, err)
		assert.Equal(t, stage, parsed)
	}

	_, err := ParseStage("N4")
	assert.ErrorIs(t, err, ErrInvalidStage)

	_, err = ParseStage("")
	assert.ErrorIs(t, err, ErrInvalidStage)
}

func TestStageInfo(t *testing.T) {
	for _, stage := range Stages {
		info := stage.Info()
		assert.NotEmpty(t, info.Name, "stage %s has no display name", stage)
		assert.Regexp(t, `^#[0-9a-f]{6}$`, info.Color, "stage %s has no display color", stage)
	}
}

func TestStageIntervalEnd(t *testing.T) {
	interval := StageInterval{Stage: StageN2, Start: 120, Duration: 630}
	assert.Equal(t, 750.0, interval.End())
}
