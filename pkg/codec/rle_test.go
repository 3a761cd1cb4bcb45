package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRLE_RoundTrip_PlainOnly(t *testing.T) {
	values := []uint64{1, 1, 1, 2, 2, 3, 1, 1}
	encoded := EncodeRLE(values)
	decoded, err := DecodeRLE(encoded, len(values))
	assert.NoError(t, err)
	assert.Equal(t, values, decoded)
}

func TestRLE_RoundTrip_WithLeadingPattern(t *testing.T) {
	pattern := []uint64{0, 1, 2}
	var values []uint64
	for i := 0; i < 5; i++ {
		values = append(values, pattern...)
	}
	values = append(values, 9, 9, 9, 7)

	encoded := EncodeRLE(values)
	assert.Equal(t, byte(0xFF), encoded[0])

	decoded, err := DecodeRLE(encoded, len(values))
	assert.NoError(t, err)
	assert.Equal(t, values, decoded)
}

func TestRLE_NoQualifyingPatternFallsBackToPlain(t *testing.T) {
	values := []uint64{5, 6, 7, 8, 9}
	encoded := EncodeRLE(values)
	assert.NotEqual(t, byte(0xFF), encoded[0])

	decoded, err := DecodeRLE(encoded, len(values))
	assert.NoError(t, err)
	assert.Equal(t, values, decoded)
}

func TestRLE_SingleValueRepeated(t *testing.T) {
	values := []uint64{4, 4, 4, 4, 4, 4, 4, 4, 4, 4}
	encoded := EncodeRLE(values)
	decoded, err := DecodeRLE(encoded, len(values))
	assert.NoError(t, err)
	assert.Equal(t, values, decoded)
}

func TestRLE_EmptyInput(t *testing.T) {
	encoded := EncodeRLE(nil)
	assert.Nil(t, encoded)
	decoded, err := DecodeRLE(encoded, 0)
	assert.NoError(t, err)
	assert.Nil(t, decoded)
}

func TestRLE_RoundTripProperty_VariousShapes(t *testing.T) {
	cases := [][]uint64{
		{1},
		{1, 2, 3, 4, 5},
		{0, 0, 1, 1, 1, 1, 0, 0, 0},
		{9, 9, 9, 9, 9, 9, 1, 2, 3, 1, 2, 3, 1, 2, 3, 1, 2, 3},
	}
	for _, values := range cases {
		encoded := EncodeRLE(values)
		decoded, err := DecodeRLE(encoded, len(values))
		assert.NoError(t, err)
		assert.Equal(t, values, decoded)
	}
}
