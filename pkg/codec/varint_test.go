package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVarint_KnownValues(t *testing.T) {
	cases := []struct {
		value uint64
		bytes []byte
	}{
		{0, []byte{0x00}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{300, []byte{0xac, 0x02}},
	}
	for _, c := range cases {
		assert.Equal(t, c.bytes, AppendVarint(nil, c.value))
		got, n, err := DecodeVarint(c.bytes, 0)
		assert.NoError(t, err)
		assert.Equal(t, c.value, got)
		assert.Equal(t, len(c.bytes), n)
	}
}

func TestVarintList_RoundTrip(t *testing.T) {
	values := []uint64{0, 127, 128, 300, 1, 2, 16383, 16384}
	encoded := EncodeVarintList(values)
	decoded, err := DecodeVarintList(encoded, len(values))
	assert.NoError(t, err)
	assert.Equal(t, values, decoded)
}

func TestDecodeVarint_IncompleteErrors(t *testing.T) {
	_, _, err := DecodeVarint([]byte{0x80}, 0)
	assert.Error(t, err)
}

func TestEstimateVarintSize(t *testing.T) {
	assert.Equal(t, 1, EstimateVarintSize(0))
	assert.Equal(t, 1, EstimateVarintSize(127))
	assert.Equal(t, 2, EstimateVarintSize(128))
	assert.Equal(t, 2, EstimateVarintSize(16383))
	assert.Equal(t, 3, EstimateVarintSize(16384))
}

func TestZigZag_RoundTrip(t *testing.T) {
	values := []int64{0, -1, 1, -2, 2, -1000000, 1000000}
	for _, v := range values {
		assert.Equal(t, v, ZigZagDecode(ZigZagEncode(v)))
	}
}

func TestZigZag_KnownMapping(t *testing.T) {
	assert.Equal(t, uint64(0), ZigZagEncode(0))
	assert.Equal(t, uint64(1), ZigZagEncode(-1))
	assert.Equal(t, uint64(2), ZigZagEncode(1))
	assert.Equal(t, uint64(3), ZigZagEncode(-2))
	assert.Equal(t, uint64(4), ZigZagEncode(2))
}

func TestEncodeDecodeDeltaZigZag_RoundTrip(t *testing.T) {
	values := []int64{1000, 1005, 1003, 1003, 2000, 1999}
	base, deltas := EncodeDeltaZigZag(values)
	assert.Equal(t, values, DecodeDeltaZigZag(base, deltas))
}
