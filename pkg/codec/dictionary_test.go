package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildWordDict_ScoresFrequencyTimesLength(t *testing.T) {
	messages := []string{
		"Connection established successfully",
		"Connection established successfully",
		"Connection failed",
	}
	dict := BuildWordDict(messages, 2)
	_, hasConnection := dict.WordToCode["Connection"]
	_, hasEstablished := dict.WordToCode["established"]
	_, hasFailed := dict.WordToCode["failed"]
	assert.True(t, hasConnection)
	assert.True(t, hasEstablished)
	assert.False(t, hasFailed, "failed appears once, below min_freq=2")
}

func TestEncodeDecodeMessage_RoundTrip(t *testing.T) {
	messages := []string{
		"Connection from host established successfully",
		"Connection from host established successfully",
		"Connection from host established successfully",
	}
	dict := BuildWordDict(messages, 2)

	for _, msg := range messages {
		encoded := EncodeMessage(msg, dict)
		assert.Less(t, len(encoded), len(msg))
		decoded := DecodeMessage(encoded, dict)
		assert.Equal(t, msg, decoded)
	}
}

func TestEncodeMessage_EmptyDictIsIdentity(t *testing.T) {
	dict := BuildWordDict(nil, 2)
	msg := "anything at all"
	assert.Equal(t, []byte(msg), EncodeMessage(msg, dict))
	assert.Equal(t, msg, DecodeMessage([]byte(msg), dict))
}

func TestEncodeMessage_LongestWordFirstAvoidsPartialOverlap(t *testing.T) {
	messages := []string{
		"Connect and Connection both appear",
		"Connect and Connection both appear",
	}
	dict := BuildWordDict(messages, 2)
	for _, msg := range messages {
		encoded := EncodeMessage(msg, dict)
		decoded := DecodeMessage(encoded, dict)
		assert.Equal(t, msg, decoded)
	}
}

func TestDecodeMessage_SinglePassHandlesAdjacentCodes(t *testing.T) {
	dict := BuildWordDict([]string{"alpha beta alpha beta", "alpha beta alpha beta"}, 2)
	msg := "alpha beta alpha beta"
	encoded := EncodeMessage(msg, dict)
	decoded := DecodeMessage(encoded, dict)
	assert.Equal(t, msg, decoded)
}
