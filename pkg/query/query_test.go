package query

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"logpress/pkg/codec"
	"logpress/pkg/container"
	"logpress/pkg/types"
)

func buildFixture(t *testing.T) string {
	t.Helper()

	templates := []types.LogTemplate{
		{
			TemplateID: "T0000",
			Pattern: []types.PatternElement{
				{Placeholder: true, Type: types.SemanticTimestamp},
				{Placeholder: true, Type: types.SemanticSeverity},
				{Literal: "connection from"},
				{Placeholder: true, Type: types.SemanticIPAddress},
			},
			FieldTypes: map[int]types.SemanticType{0: types.SemanticTimestamp, 1: types.SemanticSeverity, 3: types.SemanticIPAddress},
			MatchCount: 3,
			Confidence: 3.0 / 13.0,
		},
	}
	pool := codec.NewTokenPool()
	refs := pool.InternTemplate(templates[0])
	refsInt := make([]int, len(refs))
	for i, r := range refs {
		refsInt[i] = int(r)
	}

	base, deltas := codec.EncodeDeltaZigZag([]int64{1705314600000, 1705314601000, 1705314602000})
	tsVarint := codec.EncodeVarintList(deltas)

	sevDict := codec.NewDict()
	sevIDs := []uint64{uint64(sevDict.Intern("INFO")), uint64(sevDict.Intern("ERROR")), uint64(sevDict.Intern("INFO"))}
	sevVarint := codec.EncodeVarintList(sevIDs)

	ipDict := codec.NewDict()
	ipIDs := []uint64{uint64(ipDict.Intern("10.0.0.1")), uint64(ipDict.Intern("10.0.0.2")), uint64(ipDict.Intern("10.0.0.1"))}
	ipVarint := codec.EncodeVarintList(ipIDs)
	ipList := make([]types.IPEntry, ipDict.Len())
	for i, v := range ipDict.Values() {
		ipList[i] = types.IPEntry{Bytes: []byte(v)}
	}

	msgDict := codec.NewDict()
	msgIDs := []uint64{uint64(msgDict.Intern("weird single line of text"))}
	msgVarint := codec.EncodeVarintList(msgIDs)
	msgList := make([][]byte, msgDict.Len())
	for i, v := range msgDict.Values() {
		msgList[i] = []byte(v)
	}

	templateIDs := []int{0, 0, 0, -1}
	logIndexRLE := codec.EncodeTemplateIDs(templateIDs)

	fieldOffsets := [][]uint64{{0, 0, 0}, {1, 1, 1}, {2, 2, 2}, {0}}
	flatOffsets, counts := codec.EncodeFieldOffsets(fieldOffsets)

	cl := &types.CompressedLog{
		Templates:            templates,
		TokenPool:            pool.Values(),
		TemplateTokenRefs:    [][]int{refsInt},
		TimestampBase:        base,
		TimestampCount:       3,
		TimestampUnit:        types.TimestampUnitMillis,
		TimestampsVarint:     tsVarint,
		SeverityCount:        3,
		SeverityList:         sevDict.Values(),
		SeveritiesVarint:     sevVarint,
		IPCount:              3,
		IPList:               ipList,
		IPAddressesVarint:    ipVarint,
		MessageCount:         1,
		MessageList:          msgList,
		MessagesVarint:       msgVarint,
		LogIndexTemplatesRLE: logIndexRLE,
		LogIndexFieldsVarint: flatOffsets,
		LogIndexFieldCounts:  counts,
		OriginalCount:        4,
		CompressedAt:         "2024-01-15T10:30:00Z",
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "fixture.logpress")
	assert.NoError(t, container.Write(cl, path, container.DefaultWriteOptions()))
	return path
}

func TestEngine_Count(t *testing.T) {
	path := buildFixture(t)
	e, err := Open(path, container.DefaultReadOptions())
	assert.NoError(t, err)
	defer e.Close()
	assert.Equal(t, 4, e.Count())
}

func TestEngine_QueryBySeverity_CaseInsensitive(t *testing.T) {
	path := buildFixture(t)
	e, err := Open(path, container.DefaultReadOptions())
	assert.NoError(t, err)
	defer e.Close()

	r, err := e.QueryBySeverity([]string{"info"})
	assert.NoError(t, err)
	assert.Equal(t, []int{0, 2}, r.MatchedLineIndices)
	assert.Equal(t, 2, r.MatchedCount)

	r2, err := e.QueryBySeverity([]string{"fatal"})
	assert.NoError(t, err)
	assert.Equal(t, 0, r2.MatchedCount)
}

func TestEngine_QueryByIP(t *testing.T) {
	path := buildFixture(t)
	e, err := Open(path, container.DefaultReadOptions())
	assert.NoError(t, err)
	defer e.Close()

	r, err := e.QueryByIP("10.0.0.1")
	assert.NoError(t, err)
	assert.Equal(t, []int{0, 2}, r.MatchedLineIndices)

	r2, err := e.QueryByIP("10.0.0.99")
	assert.NoError(t, err)
	assert.Equal(t, 0, r2.MatchedCount)
}

func TestEngine_QueryTimeRange(t *testing.T) {
	path := buildFixture(t)
	e, err := Open(path, container.DefaultReadOptions())
	assert.NoError(t, err)
	defer e.Close()

	r, err := e.QueryTimeRange(1705314600000, 1705314601000)
	assert.NoError(t, err)
	assert.Equal(t, []int{0, 1}, r.MatchedLineIndices)
}

func TestEngine_QueryCompound_Intersects(t *testing.T) {
	path := buildFixture(t)
	e, err := Open(path, container.DefaultReadOptions())
	assert.NoError(t, err)
	defer e.Close()

	r, err := e.QueryCompound(Predicates{
		Severities: []string{"info"},
		HasRange:   true,
		StartMs:    1705314600000,
		EndMs:      1705314602000,
	})
	assert.NoError(t, err)
	assert.Equal(t, []int{0, 2}, r.MatchedLineIndices)
}

func TestEngine_Stats(t *testing.T) {
	path := buildFixture(t)
	e, err := Open(path, container.DefaultReadOptions())
	assert.NoError(t, err)
	defer e.Close()

	stats, err := e.Stats()
	assert.NoError(t, err)
	assert.Equal(t, 4, stats.TotalLogs)
	assert.Equal(t, 1, stats.Templates)
	assert.Equal(t, 2, stats.UniqueSeverities)
	assert.Equal(t, 2, stats.UniqueIPs)
	assert.Equal(t, 1, stats.UniqueMessages)
}

func TestEngine_Materialize(t *testing.T) {
	path := buildFixture(t)
	e, err := Open(path, container.DefaultReadOptions())
	assert.NoError(t, err)
	defer e.Close()

	lines, err := e.Materialize([]int{0, 3})
	assert.NoError(t, err)
	assert.Equal(t, "1705314600000 INFO connection from 10.0.0.1", lines[0])
	assert.Equal(t, "weird single line of text", lines[1])
}

func TestEngine_Materialize_OutOfRangeErrors(t *testing.T) {
	path := buildFixture(t)
	e, err := Open(path, container.DefaultReadOptions())
	assert.NoError(t, err)
	defer e.Close()

	_, err = e.Materialize([]int{100})
	assert.Error(t, err)
}

func TestEngine_QueryOnClosed(t *testing.T) {
	path := buildFixture(t)
	e, err := Open(path, container.DefaultReadOptions())
	assert.NoError(t, err)
	assert.NoError(t, e.Close())

	_, err = e.QueryBySeverity([]string{"info"})
	assert.Error(t, err)
}
