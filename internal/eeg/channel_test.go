package eeg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupChannel(t *testing.T) {
	ch, ok := LookupChannel("O1")
	require.True(t, ok)
	assert.Equal(t, RegionOccipital, ch.Region)
	assert.Equal(t, 1.3, ch.Multiplier)

	ch, ok = LookupChannel("Fp1")
	require.True(t, ok)
	assert.Equal(t, RegionFrontal, ch.Region)
	assert.Equal(t, 0.8, ch.Multiplier)

	_, ok = LookupChannel("Cz")
	assert.False(t, ok)
}

func TestChannelCodesStableOrder(t *testing.T) {
	codes := ChannelCodes()
	require.NotEmpty(t, codes)
	assert.Equal(t, codes, ChannelCodes())

	for _, code := range codes {
		ch, ok := LookupChannel(code)
		require.True(t, ok, "code %s", code)
		assert.True(t, ch.Region.Valid(), "code %s", code)
		assert.Greater(t, ch.Multiplier, 0.0, "code %s", code)
	}
}
