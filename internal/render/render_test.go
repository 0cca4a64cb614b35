package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImage(t *testing.T) {
	pixels := []byte{
		0, 1, 84,
		85, 169, 170,
	}

	got, err := Image(pixels, 3)
	require.NoError(t, err)
	assert.Equal(t, "| ..|\n|xxX|\n", got)
}

func TestImage_BadWidth(t *testing.T) {
	_, err := Image([]byte{1, 2, 3}, 2)
	assert.Error(t, err)

	_, err = Image([]byte{1, 2, 3}, 0)
	assert.Error(t, err)
}

func TestImage_Empty(t *testing.T) {
	got, err := Image(nil, 28)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNormalized(t *testing.T) {
	got, err := Normalized([]float64{0, 0.2, 0.5, 1, -3, 7}, 3)
	require.NoError(t, err)
	assert.Equal(t, "| .x|\n|X X|\n", got)
}

func TestLabeled(t *testing.T) {
	got, err := Labeled(7, []float64{1, 0}, 2)
	require.NoError(t, err)
	assert.Equal(t, "================= LABEL 7\n|X |\n", got)
}

func TestLabeled_MatchesRawBytes(t *testing.T) {
	raw := []byte{0, 1, 84, 85, 169, 170, 254, 255}
	input := make([]float64, len(raw))
	for i, p := range raw {
		input[i] = float64(p) / 255
	}

	want, err := Image(raw, 4)
	require.NoError(t, err)
	got, err := Labeled(3, input, 4)
	require.NoError(t, err)
	assert.Equal(t, "================= LABEL 3\n"+want, got)
}
