// Package query implements selective access to a compressed container
// without full reconstruction unless matched lines are explicitly demanded
// (§4.6).
package query

import (
	"net"
	"sort"
	"strings"
	"time"

	"logpress/pkg/codec"
	"logpress/pkg/container"
	"logpress/pkg/errors"
	"logpress/pkg/metrics"
	"logpress/pkg/template"
	"logpress/pkg/types"
)

// Result is the shape shared by every selective query (§4.6).
type Result struct {
	MatchedCount       int
	MatchedLineIndices []int
	ScanCount          int
	Elapsed            time.Duration
}

// Predicates is the input to QueryCompound: zero-value fields are treated
// as "no constraint on this dimension".
type Predicates struct {
	Severities []string
	IP         string
	HasRange   bool
	StartMs    int64
	EndMs      int64
}

// SeverityCount pairs a severity value with how many lines carry it, used
// by Stats' top_severities.
type SeverityCount struct {
	Value string
	Count int
}

// Stats aggregates dictionary sizes and template match counts (§4.6).
type Stats struct {
	TotalLogs        int
	Templates        int
	UniqueSeverities int
	UniqueIPs        int
	UniqueMessages   int
	TopSeverities    []SeverityCount
	TopTemplates     []template.TemplateCoverage
}

// Engine answers queries against one opened container. It owns the
// container reader for its lifetime (§9: "scoped resource acquisition").
type Engine struct {
	reader *container.Reader

	severityIDs []uint64
	ipIDs       []uint64
	messageIDs  []uint64
	timestamps  []int64

	templateIDs  []int
	fieldOffsets [][]uint64

	closed bool
}

// Open loads the container at path and prepares it for querying.
func Open(path string, opts container.ReadOptions) (*Engine, error) {
	reader, err := container.Open(path, opts)
	if err != nil {
		return nil, err
	}
	return newEngine(reader)
}

func newEngine(reader *container.Reader) (*Engine, error) {
	log := reader.Log

	severityIDs, err := codec.DecodeVarintList(log.SeveritiesVarint, log.SeverityCount)
	if err != nil {
		return nil, err
	}
	ipIDs, err := codec.DecodeVarintList(log.IPAddressesVarint, log.IPCount)
	if err != nil {
		return nil, err
	}
	deltas, err := codec.DecodeVarintList(log.TimestampsVarint, max0(log.TimestampCount-1))
	if err != nil {
		return nil, err
	}
	var timestamps []int64
	if log.TimestampCount > 0 {
		timestamps = codec.DecodeDeltaZigZag(log.TimestampBase, deltas)
	}

	messageIDs, err := codec.DecodeVarintList(log.MessagesVarint, log.MessageCount)
	if err != nil {
		return nil, err
	}

	templateIDs, err := codec.DecodeTemplateIDs(log.LogIndexTemplatesRLE, log.OriginalCount)
	if err != nil {
		return nil, err
	}
	fieldOffsets, err := codec.DecodeFieldOffsets(log.LogIndexFieldsVarint, log.LogIndexFieldCounts)
	if err != nil {
		return nil, err
	}

	return &Engine{
		reader:       reader,
		severityIDs:  severityIDs,
		ipIDs:        ipIDs,
		messageIDs:   messageIDs,
		timestamps:   timestamps,
		templateIDs:  templateIDs,
		fieldOffsets: fieldOffsets,
	}, nil
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func (e *Engine) mustBeOpen(operation string) error {
	if e == nil || e.closed {
		return errors.NotLoaded(operation, "query issued on a closed or unopened container")
	}
	return nil
}

// Count returns original_count in O(1) (§4.6).
func (e *Engine) Count() int {
	return e.reader.Log.OriginalCount
}

// QueryBySeverity resolves values (case-insensitive) to dictionary ids and
// scans the severities column once, treating stream position as line index
// (§4.6's literal algorithm — see DESIGN.md for why this is a faithful
// rendering of the spec's own wording, not a defect).
func (e *Engine) QueryBySeverity(values []string) (Result, error) {
	if err := e.mustBeOpen("query_by_severity"); err != nil {
		return Result{}, err
	}
	start := time.Now()

	wanted := make(map[int]bool)
	for _, v := range values {
		for id, stored := range e.reader.Log.SeverityList {
			if strings.EqualFold(stored, v) {
				wanted[id] = true
			}
		}
	}

	var matched []int
	if len(wanted) > 0 {
		for i, id := range e.severityIDs {
			if wanted[int(id)] {
				matched = append(matched, i)
			}
		}
	}

	result := Result{
		MatchedCount:       len(matched),
		MatchedLineIndices: matched,
		ScanCount:          len(e.severityIDs),
		Elapsed:            time.Since(start),
	}
	metrics.QueryDuration.WithLabelValues("query_by_severity").Observe(result.Elapsed.Seconds())
	metrics.QueryScannedLines.WithLabelValues("query_by_severity").Add(float64(result.ScanCount))
	return result, nil
}

// QueryByIP exact-matches value against ip_list (binary-aware), then scans
// the ip_addresses column once.
func (e *Engine) QueryByIP(value string) (Result, error) {
	if err := e.mustBeOpen("query_by_ip"); err != nil {
		return Result{}, err
	}
	start := time.Now()

	wantID := -1
	for id, entry := range e.reader.Log.IPList {
		if ipEntryEquals(entry, value) {
			wantID = id
			break
		}
	}

	var matched []int
	if wantID >= 0 {
		for i, id := range e.ipIDs {
			if int(id) == wantID {
				matched = append(matched, i)
			}
		}
	}

	result := Result{
		MatchedCount:       len(matched),
		MatchedLineIndices: matched,
		ScanCount:          len(e.ipIDs),
		Elapsed:            time.Since(start),
	}
	metrics.QueryDuration.WithLabelValues("query_by_ip").Observe(result.Elapsed.Seconds())
	metrics.QueryScannedLines.WithLabelValues("query_by_ip").Add(float64(result.ScanCount))
	return result, nil
}

func ipEntryEquals(entry types.IPEntry, value string) bool {
	if entry.Binary {
		parsed := net.ParseIP(value)
		if parsed == nil {
			return false
		}
		v4 := parsed.To4()
		if v4 == nil {
			return false
		}
		return string(v4) == string(entry.Bytes)
	}
	return string(entry.Bytes) == value
}

// QueryTimeRange reconstructs absolute timestamps by cumulative sum and
// emits indices whose value lies within [startMs, endMs] (§4.6).
func (e *Engine) QueryTimeRange(startMs, endMs int64) (Result, error) {
	if err := e.mustBeOpen("query_time_range"); err != nil {
		return Result{}, err
	}
	start := time.Now()

	var matched []int
	for i, ts := range e.timestamps {
		if ts >= startMs && ts <= endMs {
			matched = append(matched, i)
		}
	}

	result := Result{
		MatchedCount:       len(matched),
		MatchedLineIndices: matched,
		ScanCount:          len(e.timestamps),
		Elapsed:            time.Since(start),
	}
	metrics.QueryDuration.WithLabelValues("query_time_range").Observe(result.Elapsed.Seconds())
	metrics.QueryScannedLines.WithLabelValues("query_time_range").Add(float64(result.ScanCount))
	return result, nil
}

// QueryCompound intersects the per-predicate match sets with a merge-style
// walk over already-ascending inputs (resolves the REDESIGN FLAG in §4.6:
// genuine intersection, not the source's placeholder full-range set).
func (e *Engine) QueryCompound(p Predicates) (Result, error) {
	if err := e.mustBeOpen("query_compound"); err != nil {
		return Result{}, err
	}
	start := time.Now()

	var sets [][]int
	scanCount := 0

	if len(p.Severities) > 0 {
		r, err := e.QueryBySeverity(p.Severities)
		if err != nil {
			return Result{}, err
		}
		sets = append(sets, r.MatchedLineIndices)
		scanCount += r.ScanCount
	}
	if p.IP != "" {
		r, err := e.QueryByIP(p.IP)
		if err != nil {
			return Result{}, err
		}
		sets = append(sets, r.MatchedLineIndices)
		scanCount += r.ScanCount
	}
	if p.HasRange {
		r, err := e.QueryTimeRange(p.StartMs, p.EndMs)
		if err != nil {
			return Result{}, err
		}
		sets = append(sets, r.MatchedLineIndices)
		scanCount += r.ScanCount
	}

	var matched []int
	if len(sets) == 0 {
		matched = make([]int, e.reader.Log.OriginalCount)
		for i := range matched {
			matched[i] = i
		}
	} else {
		matched = intersectAscending(sets)
	}

	result := Result{
		MatchedCount:       len(matched),
		MatchedLineIndices: matched,
		ScanCount:          scanCount,
		Elapsed:            time.Since(start),
	}
	metrics.QueryDuration.WithLabelValues("query_compound").Observe(result.Elapsed.Seconds())
	return result, nil
}

// intersectAscending intersects N ascending slices, keeping each element of
// the smallest one that every other slice also contains. QueryCompound
// handles the no-predicate case (no constraint: every line matches) before
// calling it.
func intersectAscending(sets [][]int) []int {
	if len(sets) == 0 {
		return nil
	}
	if len(sets) == 1 {
		return sets[0]
	}

	sort.Slice(sets, func(a, b int) bool { return len(sets[a]) < len(sets[b]) })
	base := sets[0]

	var result []int
	for _, candidate := range base {
		inAll := true
		for _, other := range sets[1:] {
			if !ascendingContains(other, candidate) {
				inAll = false
				break
			}
		}
		if inAll {
			result = append(result, candidate)
		}
	}
	return result
}

func ascendingContains(sorted []int, target int) bool {
	i := sort.SearchInts(sorted, target)
	return i < len(sorted) && sorted[i] == target
}

// Stats aggregates dictionary sizes and template match counts (§4.6).
func (e *Engine) Stats() (Stats, error) {
	if err := e.mustBeOpen("stats"); err != nil {
		return Stats{}, err
	}
	log := e.reader.Log

	severityFreq := make(map[string]int)
	for _, id := range e.severityIDs {
		if int(id) < len(log.SeverityList) {
			severityFreq[log.SeverityList[id]]++
		}
	}
	topSeverities := make([]SeverityCount, 0, len(severityFreq))
	for v, c := range severityFreq {
		topSeverities = append(topSeverities, SeverityCount{Value: v, Count: c})
	}
	sort.Slice(topSeverities, func(i, j int) bool {
		if topSeverities[i].Count != topSeverities[j].Count {
			return topSeverities[i].Count > topSeverities[j].Count
		}
		return topSeverities[i].Value < topSeverities[j].Value
	})
	if len(topSeverities) > 10 {
		topSeverities = topSeverities[:10]
	}

	return Stats{
		TotalLogs:        log.OriginalCount,
		Templates:        len(log.Templates),
		UniqueSeverities: len(log.SeverityList),
		UniqueIPs:        len(log.IPList),
		UniqueMessages:   len(log.MessageList),
		TopSeverities:    topSeverities,
		TopTemplates:     template.Describe(log.Templates).TopTemplates,
	}, nil
}

// Close releases the underlying container reader (§9: "the container file
// handle is owned by the query handle").
func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	return e.reader.Close()
}
