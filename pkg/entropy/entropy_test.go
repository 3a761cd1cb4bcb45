package entropy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sample() []byte {
	return []byte(strings.Repeat("2024-01-15T10:30:00Z INFO template line number ", 200))
}

func TestEncodeDecode_Zstd_RoundTrip(t *testing.T) {
	data := sample()
	encoded, err := Encode(data, AlgorithmZstd, nil)
	assert.NoError(t, err)
	decoded, err := Decode(encoded, AlgorithmZstd, nil)
	assert.NoError(t, err)
	assert.Equal(t, data, decoded)
}

func TestEncodeDecode_Zstd_WithDictionary(t *testing.T) {
	data := sample()
	dict := &Dictionary{ID: "test-dict", Bytes: data[:64]}
	encoded, err := Encode(data, AlgorithmZstd, dict)
	assert.NoError(t, err)
	decoded, err := Decode(encoded, AlgorithmZstd, dict)
	assert.NoError(t, err)
	assert.Equal(t, data, decoded)
}

func TestEncodeDecode_LZ4_RoundTrip(t *testing.T) {
	data := sample()
	encoded, err := Encode(data, AlgorithmLZ4, nil)
	assert.NoError(t, err)
	decoded, err := Decode(encoded, AlgorithmLZ4, nil)
	assert.NoError(t, err)
	assert.Equal(t, data, decoded)
}

func TestEncodeDecode_Snappy_RoundTrip(t *testing.T) {
	data := sample()
	encoded, err := Encode(data, AlgorithmSnappy, nil)
	assert.NoError(t, err)
	decoded, err := Decode(encoded, AlgorithmSnappy, nil)
	assert.NoError(t, err)
	assert.Equal(t, data, decoded)
}

func TestEncodeDecode_None_IsIdentity(t *testing.T) {
	data := sample()
	encoded, err := Encode(data, AlgorithmNone, nil)
	assert.NoError(t, err)
	assert.Equal(t, data, encoded)
	decoded, err := Decode(encoded, AlgorithmNone, nil)
	assert.NoError(t, err)
	assert.Equal(t, data, decoded)
}

func TestEncode_UnsupportedAlgorithmErrors(t *testing.T) {
	_, err := Encode(sample(), Algorithm("gzip"), nil)
	assert.Error(t, err)
}
