package codec

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBWT_RoundTrip_Small(t *testing.T) {
	data := []byte("^BANANA|")
	encoded := BWTEncode(data, DefaultBWTBlockSize)
	decoded, err := BWTDecode(encoded)
	assert.NoError(t, err)
	assert.Equal(t, data, decoded)
}

func TestBWT_RoundTrip_UnevenTwoBlocks(t *testing.T) {
	// 258 bytes of a repeating "banana" pattern, block size 256: two
	// blocks, the second only two bytes long.
	data := []byte(strings.Repeat("banana", 43))[:258]
	assert.Len(t, data, 258)

	encoded := BWTEncode(data, 256)
	decoded, err := BWTDecode(encoded)
	assert.NoError(t, err)
	assert.True(t, bytes.Equal(data, decoded))
}

func TestBWT_RoundTrip_Empty(t *testing.T) {
	encoded := BWTEncode(nil, DefaultBWTBlockSize)
	decoded, err := BWTDecode(encoded)
	assert.NoError(t, err)
	assert.Empty(t, decoded)
}

func TestBWT_RoundTrip_SingleByte(t *testing.T) {
	data := []byte("x")
	encoded := BWTEncode(data, DefaultBWTBlockSize)
	decoded, err := BWTDecode(encoded)
	assert.NoError(t, err)
	assert.Equal(t, data, decoded)
}

func TestBWT_GroupsRepeatedBytes(t *testing.T) {
	data := []byte("banana")
	last, _ := bwtEncodeBlock(data)
	// The canonical BWT of "banana" groups its three 'a's together.
	runs := 0
	for i := 1; i < len(last); i++ {
		if last[i] == 'a' && last[i-1] == 'a' {
			runs++
		}
	}
	assert.Greater(t, runs, 0)
}

func TestBWTDecode_CorruptHeaderErrors(t *testing.T) {
	_, err := BWTDecode([]byte{0x01})
	assert.Error(t, err)
}
