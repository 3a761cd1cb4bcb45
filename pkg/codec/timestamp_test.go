package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTimestampMillis_ISO8601(t *testing.T) {
	ms, ok := ParseTimestampMillis("2024-01-15T10:30:00.123Z")
	assert.True(t, ok)
	assert.Equal(t, int64(1705314600123), ms)
}

func TestParseTimestampMillis_UnixSeconds(t *testing.T) {
	ms, ok := ParseTimestampMillis("1705314600")
	assert.True(t, ok)
	assert.Equal(t, int64(1705314600000), ms)
}

func TestParseTimestampMillis_UnixMillis(t *testing.T) {
	ms, ok := ParseTimestampMillis("1705314600123")
	assert.True(t, ok)
	assert.Equal(t, int64(1705314600123), ms)
}

func TestParseTimestampMillis_CustomYYYYMMDD(t *testing.T) {
	ms, ok := ParseTimestampMillis("20171223-22:15:29:606")
	assert.True(t, ok)
	assert.Greater(t, ms, int64(0))
}

func TestParseTimestampMillis_Syslog(t *testing.T) {
	ms, ok := ParseTimestampMillis("Jan 15 10:30:00 2024")
	assert.True(t, ok)
	assert.Greater(t, ms, int64(0))
}

func TestParseTimestampMillis_Unparseable(t *testing.T) {
	_, ok := ParseTimestampMillis("not a timestamp")
	assert.False(t, ok)
}

func TestFormatTimestamp_Epoch(t *testing.T) {
	assert.Equal(t, "1705314600123", FormatTimestamp(1705314600123, TimestampFormatEpoch))
}

func TestFormatTimestamp_RFC3339(t *testing.T) {
	out := FormatTimestamp(1705314600123, TimestampFormatRFC3339)
	assert.Contains(t, out, "2024-01-15T10:30:00.123")
}
