package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTemplateIDs_RoundTrip(t *testing.T) {
	ids := []int{0, 0, 0, 1, 1, -1, 2, 2, 2, 2, -1, -1}
	encoded := EncodeTemplateIDs(ids)
	decoded, err := DecodeTemplateIDs(encoded, len(ids))
	assert.NoError(t, err)
	assert.Equal(t, ids, decoded)
}

func TestTemplateIDs_AllUnmatched(t *testing.T) {
	ids := []int{-1, -1, -1, -1, -1}
	encoded := EncodeTemplateIDs(ids)
	decoded, err := DecodeTemplateIDs(encoded, len(ids))
	assert.NoError(t, err)
	assert.Equal(t, ids, decoded)
}

func TestFieldOffsets_RoundTrip(t *testing.T) {
	perLine := [][]uint64{
		{0, 1},
		{2},
		{},
		{3, 4, 5},
	}
	flat, counts := EncodeFieldOffsets(perLine)
	assert.Equal(t, []int{2, 1, 0, 3}, counts)

	decoded, err := DecodeFieldOffsets(flat, counts)
	assert.NoError(t, err)
	assert.Equal(t, perLine, decoded)
}

func TestFieldOffsets_SumMismatchErrors(t *testing.T) {
	flat := EncodeVarintList([]uint64{1, 2, 3})
	err := ValidateFieldOffsetCounts([]int{1, 1}, 3)
	assert.Error(t, err)
	_ = flat
}

func TestFieldOffsets_ValidateCountsOK(t *testing.T) {
	err := ValidateFieldOffsetCounts([]int{2, 1, 0, 3}, 6)
	assert.NoError(t, err)
}
