package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"logpress/pkg/container"
	"logpress/pkg/query"
	"logpress/pkg/types"
)

func sampleLines() []string {
	lines := []string{
		"2024-01-15T10:30:00Z INFO connection from 10.0.0.1",
		"2024-01-15T10:30:01Z ERROR connection from 10.0.0.2",
		"2024-01-15T10:30:02Z INFO connection from 10.0.0.1",
	}
	// Repeat so the structural group clears the default min_support of 3.
	return append(append([]string{}, lines...), lines...)
}

func runToSerialized(t *testing.T, lines []string) *types.CompressedLog {
	t.Helper()
	enc := NewEncoder(types.PipelineConfig{MinSupport: 3}, nil)

	assert.NoError(t, enc.ExtractTemplates(lines))
	assert.Equal(t, StateTemplatesExtracted, enc.State())

	assert.NoError(t, enc.EncodeLines())
	assert.Equal(t, StateLinesEncoded, enc.State())

	assert.NoError(t, enc.FinalizeColumns(FinalizeOptions{}))
	assert.Equal(t, StateColumnsFinalized, enc.State())

	cl, err := enc.Serialize()
	assert.NoError(t, err)
	assert.Equal(t, StateSerialized, enc.State())
	return cl
}

func TestEncoder_StateMachine_HappyPath(t *testing.T) {
	cl := runToSerialized(t, sampleLines())
	assert.Equal(t, 6, cl.OriginalCount)
	assert.NotEmpty(t, cl.Templates)
}

func TestEncoder_OutOfOrderCallPanics(t *testing.T) {
	enc := NewEncoder(types.PipelineConfig{}, nil)
	assert.Panics(t, func() { _ = enc.EncodeLines() })

	enc2 := NewEncoder(types.PipelineConfig{}, nil)
	assert.NoError(t, enc2.ExtractTemplates(sampleLines()))
	assert.Panics(t, func() { _, _ = enc2.Serialize() })
}

func TestEncoder_EmptyInput_NoTemplates(t *testing.T) {
	enc := NewEncoder(types.PipelineConfig{}, nil)
	assert.NoError(t, enc.ExtractTemplates(nil))
	assert.NoError(t, enc.EncodeLines())
	assert.NoError(t, enc.FinalizeColumns(FinalizeOptions{}))
	cl, err := enc.Serialize()
	assert.NoError(t, err)
	assert.Equal(t, 0, cl.OriginalCount)
}

func TestEncoder_UnmatchedLinesFallBackToMessageColumn(t *testing.T) {
	lines := append(sampleLines(), "a wildly different one-off line of free-form text nobody templated")
	cl := runToSerialized(t, lines)
	assert.Equal(t, 7, cl.OriginalCount)
}

func TestEncoder_Determinism(t *testing.T) {
	lines := sampleLines()
	clA := runToSerialized(t, lines)
	clB := runToSerialized(t, lines)

	assert.Equal(t, clA.LogIndexTemplatesRLE, clB.LogIndexTemplatesRLE)
	assert.Equal(t, clA.TimestampsVarint, clB.TimestampsVarint)
	assert.Equal(t, clA.SeveritiesVarint, clB.SeveritiesVarint)
	assert.Equal(t, clA.IPAddressesVarint, clB.IPAddressesVarint)
}

// TestEncoder_WordDictionaries_DistinctTemplatesDoNotCollide covers §4.4's
// per-template word dictionaries: two structurally distinct templates that
// both happen to carry the literal message value "zqplm" must not share a
// message-dictionary id. The two groups below are built so their word
// dictionaries assign "zqplm" to *different* byte codes (a competing,
// higher-scoring word pushes "zqplm" out of code 0 in one group but not
// the other); if the two "zqplm" occurrences ever shared a dictionary id,
// the second template's encoding would silently overwrite the first's
// bytes. The BETA lines carry three more fields than the ALPHA lines, so
// Match (first template within two fields) cannot assign them to ALPHA.
func TestEncoder_WordDictionaries_DistinctTemplatesDoNotCollide(t *testing.T) {
	lines := []string{
		"ALPHA zqplm",
		"ALPHA zqplm",
		"ALPHA vextrolongword",
		"BETA X Y Z zqplm",
		"BETA X Y Z zqplm",
		"BETA X Y Z krunos",
	}

	enc := NewEncoder(types.PipelineConfig{MinSupport: 3}, nil)
	assert.NoError(t, enc.ExtractTemplates(lines))
	assert.NoError(t, enc.EncodeLines())
	assert.NoError(t, enc.FinalizeColumns(FinalizeOptions{WordDictionaries: true, WordDictMinFreq: 1}))
	cl, err := enc.Serialize()
	assert.NoError(t, err)
	assert.Len(t, cl.TemplateDictsSerialized, 2)

	dir := t.TempDir()
	path := dir + "/worddict.logpress"
	assert.NoError(t, container.Write(cl, path, container.DefaultWriteOptions()))

	eng, err := query.Open(path, container.DefaultReadOptions())
	assert.NoError(t, err)
	defer eng.Close()

	materialized, err := eng.Materialize([]int{0, 1, 2, 3, 4, 5})
	assert.NoError(t, err)
	assert.Equal(t, "ALPHA zqplm", materialized[0])
	assert.Equal(t, "ALPHA zqplm", materialized[1])
	assert.Equal(t, "ALPHA vextrolongword", materialized[2])
	assert.Equal(t, "BETA X Y Z zqplm", materialized[3])
	assert.Equal(t, "BETA X Y Z zqplm", materialized[4])
	assert.Equal(t, "BETA X Y Z krunos", materialized[5])
}

func TestEncoder_RoundTripThroughContainerAndQuery(t *testing.T) {
	lines := sampleLines()
	cl := runToSerialized(t, lines)

	dir := t.TempDir()
	path := dir + "/pipeline.logpress"

	assert.NoError(t, container.Write(cl, path, container.DefaultWriteOptions()))

	eng, err := query.Open(path, container.DefaultReadOptions())
	assert.NoError(t, err)
	defer eng.Close()

	assert.Equal(t, len(lines), eng.Count())

	materialized, err := eng.Materialize([]int{0, 1, 2})
	assert.NoError(t, err)
	assert.Equal(t, "1705314600000 INFO connection from 10.0.0.1", materialized[0])
	assert.Equal(t, "1705314601000 ERROR connection from 10.0.0.2", materialized[1])
	assert.Equal(t, "1705314602000 INFO connection from 10.0.0.1", materialized[2])
}
