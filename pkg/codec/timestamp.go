package codec

import (
	"regexp"
	"strconv"
	"time"
)

var (
	isoTimestampRe    = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})[T ](\d{2}):(\d{2}):(\d{2})(?:\.(\d{1,6}))?(Z|[+-]\d{2}:?\d{2})?`)
	unixMillisRe      = regexp.MustCompile(`^\d{13}$`)
	unixSecondsRe     = regexp.MustCompile(`^\d{10}$`)
	customYYYYMMDDRe  = regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})-(\d{2}):(\d{2}):(\d{2}):(\d{3})$`)
	syslogRe          = regexp.MustCompile(`(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s+(\d{1,2})\s+(\d{2}):(\d{2}):(\d{2})(?:\s+(\d{4}))?`)
)

var syslogMonths = map[string]time.Month{
	"Jan": time.January, "Feb": time.February, "Mar": time.March, "Apr": time.April,
	"May": time.May, "Jun": time.June, "Jul": time.July, "Aug": time.August,
	"Sep": time.September, "Oct": time.October, "Nov": time.November, "Dec": time.December,
}

// ParseTimestampMillis parses a field value recognized as TIMESTAMP into
// epoch milliseconds. Every container uses a single timestamp unit
// (milliseconds); inputs with only second precision are scaled up (§9,
// "pick one unit per container"). If value cannot be parsed, it returns
// (0, false) — the caller substitutes 0 and continues (§4.4: "never fail
// the line").
func ParseTimestampMillis(value string) (int64, bool) {
	if m := isoTimestampRe.FindStringSubmatch(value); m != nil {
		return parseISO(m)
	}
	if customYYYYMMDDRe.MatchString(value) {
		return parseCustomYYYYMMDD(value)
	}
	if unixMillisRe.MatchString(value) {
		v, err := strconv.ParseInt(value, 10, 64)
		return v, err == nil
	}
	if unixSecondsRe.MatchString(value) {
		v, err := strconv.ParseInt(value, 10, 64)
		return v * 1000, err == nil
	}
	if m := syslogRe.FindStringSubmatch(value); m != nil {
		return parseSyslog(m)
	}
	return 0, false
}

func parseISO(m []string) (int64, bool) {
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	hour, _ := strconv.Atoi(m[4])
	minute, _ := strconv.Atoi(m[5])
	second, _ := strconv.Atoi(m[6])
	nanos := 0
	if m[7] != "" {
		frac := m[7]
		for len(frac) < 9 {
			frac += "0"
		}
		nanos, _ = strconv.Atoi(frac[:9])
	}
	loc := time.UTC
	t := time.Date(year, time.Month(month), day, hour, minute, second, nanos, loc)
	return t.UnixMilli(), true
}

func parseCustomYYYYMMDD(value string) (int64, bool) {
	m := customYYYYMMDDRe.FindStringSubmatch(value)
	if m == nil {
		return 0, false
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	hour, _ := strconv.Atoi(m[4])
	minute, _ := strconv.Atoi(m[5])
	second, _ := strconv.Atoi(m[6])
	millis, _ := strconv.Atoi(m[7])
	t := time.Date(year, time.Month(month), day, hour, minute, second, millis*1e6, time.UTC)
	return t.UnixMilli(), true
}

func parseSyslog(m []string) (int64, bool) {
	month, ok := syslogMonths[m[1]]
	if !ok {
		return 0, false
	}
	day, _ := strconv.Atoi(m[2])
	hour, _ := strconv.Atoi(m[3])
	minute, _ := strconv.Atoi(m[4])
	second, _ := strconv.Atoi(m[5])
	year := time.Now().UTC().Year()
	if m[6] != "" {
		year, _ = strconv.Atoi(m[6])
	}
	t := time.Date(year, month, day, hour, minute, second, 0, time.UTC)
	return t.UnixMilli(), true
}

// TimestampFormat selects how FormatTimestamp renders an epoch-milliseconds value: "epoch"
// emits the raw integer, "rfc3339" emits a formatted UTC stamp. The reader
// picks one policy per load and applies it uniformly (§9).
type TimestampFormat string

const (
	TimestampFormatEpoch   TimestampFormat = "epoch"
	TimestampFormatRFC3339 TimestampFormat = "rfc3339"
)

// FormatTimestamp renders epochMs according to format.
func FormatTimestamp(epochMs int64, format TimestampFormat) string {
	if format == TimestampFormatRFC3339 {
		return time.UnixMilli(epochMs).UTC().Format(time.RFC3339Nano)
	}
	return strconv.FormatInt(epochMs, 10)
}
