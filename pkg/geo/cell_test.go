package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLaunchCell(t *testing.T) {
	cell, err := LaunchCell(35.0, -115.0, 9)
	require.NoError(t, err)
	assert.Len(t, cell, 15)

	again, err := LaunchCell(35.0, -115.0, 9)
	require.NoError(t, err)
	assert.Equal(t, cell, again, "indexing must be deterministic")

	coarse, err := LaunchCell(35.0, -115.0, 5)
	require.NoError(t, err)
	assert.NotEqual(t, cell, coarse)
}

func TestLaunchCell_InvalidResolution(t *testing.T) {
	for _, res := range []int{-1, 16} {
		_, err := LaunchCell(35.0, -115.0, res)
		assert.Error(t, err, "resolution %d", res)
	}
}
