// Package semantic assigns a ranked list of semantic-type candidates to a
// single extracted field value (§4.2). Patterns and confidences are
// grounded on the original LogPress recognizer
// (semantic_types.py), translated from Python re to Go's RE2-based
// regexp package.
package semantic

import (
	"regexp"
	"strings"

	"logpress/pkg/types"
)

type patternRule struct {
	re          *regexp.Regexp
	confidence  float64
	patternName string
	// group selects which capture group (1-indexed) carries the matched
	// value; 0 means the whole match.
	group int
}

type categoryRules struct {
	semType types.SemanticType
	rules   []patternRule
}

// categoryOrder fixes the tie-break order from §4.2: earlier categories win
// when two matches have equal confidence.
var categoryOrder = []categoryRules{
	{types.SemanticTimestamp, []patternRule{
		{regexp.MustCompile(`\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}(\.\d{1,6})?(Z|[+-]\d{2}:?\d{2})?`), 0.95, "iso8601", 0},
		{regexp.MustCompile(`\b\d{13}\b`), 0.90, "unix_ms", 0},
		{regexp.MustCompile(`\b\d{10}\b`), 0.85, "unix_sec", 0},
		{regexp.MustCompile(`\b(Mon|Tue|Wed|Thu|Fri|Sat|Sun)?\s*(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s+\d{1,2}\s+\d{2}:\d{2}:\d{2}(\s+\d{4})?\b`), 0.90, "syslog", 0},
		{regexp.MustCompile(`\b\d{8}-\d{2}:\d{2}:\d{2}:\d{3}\b`), 0.95, "custom_yyyymmdd", 0},
		{regexp.MustCompile(`\b\d{2}:\d{2}:\d{2}[,.]\d{3,6}\b`), 0.85, "time_ms", 0},
		{regexp.MustCompile(`\b\d{2}:\d{2}:\d{2}\b`), 0.70, "time_simple", 0},
		{regexp.MustCompile(`\b\d{1,2}\.\d{2}\s+\d{2}:\d{2}:\d{2}\b`), 0.85, "short_datetime", 0},
	}},
	{types.SemanticIPAddress, []patternRule{
		{regexp.MustCompile(`\b(\d{1,3}\.){3}\d{1,3}\b`), 0.95, "ipv4", 0},
		{regexp.MustCompile(`\b([0-9a-fA-F]{1,4}:){7}[0-9a-fA-F]{1,4}\b`), 0.95, "ipv6_full", 0},
		{regexp.MustCompile(`\b([0-9a-fA-F]{1,4}:){1,7}:\b`), 0.90, "ipv6_compressed", 0},
	}},
	{types.SemanticPort, []patternRule{
		{regexp.MustCompile(`:(\d{1,5})\b`), 0.85, "port_colon", 1},
		{regexp.MustCompile(`(?i)\bport[:\s=]+(\d{1,5})\b`), 0.90, "port_keyword", 1},
	}},
	{types.SemanticSeverity, []patternRule{
		{regexp.MustCompile(`(?i)\b(DEBUG|INFO|WARN(ING)?|ERROR|FATAL|CRITICAL|TRACE|NOTICE)\b`), 0.95, "standard_levels", 0},
		{regexp.MustCompile(`(?i)\b(emerg|alert|crit|err|warning|notice|info|debug)\b`), 0.90, "syslog_levels", 0},
	}},
	{types.SemanticStatus, []patternRule{
		{regexp.MustCompile(`(?i)\b(success(ful)?|failed?|failure|timeout|denied|accepted|rejected|ok|error)\b`), 0.85, "common_status", 0},
		{regexp.MustCompile(`(?i)\bstatus:\s*(\d{3})\b`), 0.95, "http_status", 1},
	}},
	{types.SemanticErrorCode, []patternRule{
		{regexp.MustCompile(`(?i)\b(error|errno|err)[\s_-]?(code)?[:\s=]+([A-Z0-9_-]+)\b`), 0.95, "error_keyword", 3},
		{regexp.MustCompile(`\b[A-Z]{2,}[\s_-]?\d{3,}\b`), 0.80, "uppercase_code", 0},
		{regexp.MustCompile(`(?i)\[ERR[0-9X]+\]`), 0.90, "bracketed_error", 0},
	}},
	{types.SemanticUserID, []patternRule{
		{regexp.MustCompile(`(?i)\b(user|username|uid)[:\s=]+['"]?([a-zA-Z0-9_-]+)['"]?\b`), 0.95, "user_keyword", 2},
		{regexp.MustCompile(`(?i)\buid[:\s=]+(\d+)\b`), 0.90, "uid_numeric", 1},
	}},
	{types.SemanticProcessID, []patternRule{
		{regexp.MustCompile(`(?i)\b(pid|process_id|proc)[:\s=]+(\d+)\b`), 0.95, "pid_keyword", 2},
		{regexp.MustCompile(`\[(\d{4,6})\]`), 0.75, "bracketed_number", 1},
	}},
	{types.SemanticMetricValue, []patternRule{
		{regexp.MustCompile(`(?i)\b(\d+(\.\d+)?)\s*(ms|milliseconds?|seconds?|sec|minutes?|min|hours?|hrs?)\b`), 0.90, "time_metric", 1},
		{regexp.MustCompile(`(?i)\b(\d+(\.\d+)?)\s*(bytes?|KB|MB|GB|TB)\b`), 0.90, "size_metric", 1},
		{regexp.MustCompile(`(?i)\b(\d+(\.\d+)?)\s*(%|percent|CPU|memory|disk)\b`), 0.85, "percent_metric", 1},
	}},
	{types.SemanticModule, []patternRule{
		{regexp.MustCompile(`\b([a-z][a-z0-9_]*(\.[a-z][a-z0-9_]*){2,})\b`), 0.85, "dotted_module", 1},
		{regexp.MustCompile(`\b(Step_[A-Za-z]+)\b`), 0.90, "prefixed_component", 1},
	}},
	{types.SemanticRequestID, []patternRule{
		// The original regex used a bracketed-UUID pattern anchored on
		// "req-"; RE2 handles it directly, no lookaround needed.
		{regexp.MustCompile(`(?i)\[req-([a-f0-9-]{36,})\]`), 0.95, "bracketed_uuid", 1},
		{regexp.MustCompile(`(?i)\brequest[_-]?id[:\s=]+([a-zA-Z0-9-]+)\b`), 0.90, "request_keyword", 1},
	}},
	{types.SemanticFilename, []patternRule{
		{regexp.MustCompile(`\b([a-zA-Z0-9_-]+\.log(\.\d+)?(\.\d{4}-\d{2}-\d{2}_\d{2}:\d{2}:\d{2})?)\b`), 0.90, "log_filename", 1},
		{regexp.MustCompile(`\b([a-zA-Z0-9_/-]+\.(py|java|c|cpp|js|conf|cfg))\b`), 0.85, "source_file", 1},
	}},
	{types.SemanticHost, []patternRule{
		{regexp.MustCompile(`(?i)\b([a-z0-9-]+(\.[a-z0-9-]+)+\.[a-z]{2,})\b`), 0.90, "fqdn", 1},
		{regexp.MustCompile(`\b([a-z][a-z0-9-]*(\.[a-z][a-z0-9-]*)+)\b`), 0.75, "hostname", 1},
	}},
	{types.SemanticAction, []patternRule{
		{regexp.MustCompile(`(?i)\b(start(ed|ing)?|stop(ped|ping)?|restart(ed|ing)?|open(ed|ing)?|clos(ed?|ing)|connect(ed|ing)?|disconnect(ed|ing)?)\b`), 0.80, "action_verb", 0},
	}},
}

// Recognize maps a candidate field value to a ranked list of semantic
// matches, highest confidence first. If no pattern matches, it returns a
// single MESSAGE match with confidence 0.5 (§4.2).
func Recognize(value string) []types.SemanticMatch {
	if strings.TrimSpace(value) == "" {
		return nil
	}

	var matches []types.SemanticMatch
	for _, cat := range categoryOrder {
		for _, rule := range cat.rules {
			loc := rule.re.FindStringSubmatchIndex(value)
			if loc == nil {
				continue
			}
			start, end, matched := extractGroup(value, loc, rule.group)
			matches = append(matches, types.SemanticMatch{
				Type:         cat.semType,
				MatchedValue: matched,
				Confidence:   rule.confidence,
				PatternName:  rule.patternName,
				Start:        start,
				End:          end,
			})
		}
	}

	stableSortByConfidenceDesc(matches)

	if len(matches) == 0 {
		return []types.SemanticMatch{{
			Type:         types.SemanticMessage,
			MatchedValue: value,
			Confidence:   0.5,
			PatternName:  "default_message",
		}}
	}
	return matches
}

// BestMatch returns the single highest-confidence match for value, or an
// UNKNOWN match with confidence 0 if value is empty.
func BestMatch(value string) types.SemanticMatch {
	matches := Recognize(value)
	if len(matches) == 0 {
		return types.SemanticMatch{Type: types.SemanticUnknown, MatchedValue: value, PatternName: "no_match"}
	}
	return matches[0]
}

func extractGroup(value string, loc []int, group int) (start, end int, matched string) {
	idx := group * 2
	if idx+1 >= len(loc) || loc[idx] < 0 {
		idx = 0
	}
	return loc[idx], loc[idx+1], value[loc[idx]:loc[idx+1]]
}

// stableSortByConfidenceDesc is a small insertion sort: match counts per
// call are tiny (at most one hit per pattern rule), so this stays cheap
// and, crucially, stable — ties keep the §4.2 category order.
func stableSortByConfidenceDesc(matches []types.SemanticMatch) {
	for i := 1; i < len(matches); i++ {
		j := i
		for j > 0 && matches[j-1].Confidence < matches[j].Confidence {
			matches[j-1], matches[j] = matches[j], matches[j-1]
			j--
		}
	}
}
