// Package pipeline orchestrates the one-directional state machine that
// turns a slice of log lines into a frozen types.CompressedLog: extract
// templates, encode lines against them, finalize columns, serialize
// (§4.4).
package pipeline

import (
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"logpress/pkg/codec"
	"logpress/pkg/errors"
	"logpress/pkg/metrics"
	"logpress/pkg/template"
	"logpress/pkg/types"
)

// State is one node of the encoder's one-directional state machine.
type State int

const (
	StateIdle State = iota
	StateTemplatesExtracted
	StateLinesEncoded
	StateColumnsFinalized
	StateSerialized
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateTemplatesExtracted:
		return "TemplatesExtracted"
	case StateLinesEncoded:
		return "LinesEncoded"
	case StateColumnsFinalized:
		return "ColumnsFinalized"
	case StateSerialized:
		return "Serialized"
	default:
		return "Unknown"
	}
}

// Encoder carries the working state of one compression run. Reentering
// Idle is not possible — construct a new Encoder instead (§4.4).
type Encoder struct {
	config types.PipelineConfig
	logger *logrus.Logger
	state  State

	lines     []string
	templates []types.LogTemplate
	idByName  map[string]int

	tokenPool *codec.TokenPool

	severityDict *codec.Dict
	ipDict       *codec.Dict
	messageDict  *codec.Dict
	messageRaw   []string

	timestampValues []int64
	templateIDs     []int
	fieldOffsets    [][]uint64

	perTemplateMessages map[string][]string

	result *types.CompressedLog
}

// NewEncoder constructs an Idle encoder.
func NewEncoder(config types.PipelineConfig, logger *logrus.Logger) *Encoder {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if config.MinSupport <= 0 {
		config.MinSupport = 3
	}
	return &Encoder{
		config:              config,
		logger:              logger,
		state:               StateIdle,
		tokenPool:           codec.NewTokenPool(),
		severityDict:        codec.NewDict(),
		ipDict:              codec.NewDict(),
		messageDict:         codec.NewDict(),
		perTemplateMessages: make(map[string][]string),
	}
}

func (e *Encoder) requireState(want State, operation string) {
	if e.state != want {
		panic("pipeline: " + operation + " called in state " + e.state.String() + ", expected " + want.String())
	}
}

// ExtractTemplates runs the template extractor over lines (§7:
// EmptyInput and NoTemplates are recovered here, never surfaced as
// errors).
func (e *Encoder) ExtractTemplates(lines []string) error {
	e.requireState(StateIdle, "ExtractTemplates")

	e.lines = lines
	opts := template.DefaultOptions()
	opts.MinSupport = e.config.MinSupport

	e.templates = template.Extract(lines, opts)
	if len(e.templates) == 0 && len(lines) > 0 {
		e.logger.WithField("line_count", len(lines)).Info("no templates met min_support; every line will be encoded as unmatched")
	}

	e.idByName = make(map[string]int, len(e.templates))
	for i, t := range e.templates {
		e.idByName[t.TemplateID] = i
	}

	metrics.TemplatesExtracted.Observe(float64(len(e.templates)))
	e.state = StateTemplatesExtracted
	return nil
}

// EncodeLines matches every line against the extracted templates and
// appends category-column values plus a log-index entry for each (§4.4).
func (e *Encoder) EncodeLines() error {
	e.requireState(StateTemplatesExtracted, "EncodeLines")

	e.templateIDs = make([]int, len(e.lines))
	e.fieldOffsets = make([][]uint64, len(e.lines))

	for i, line := range e.lines {
		tmpl, fields, ok := template.Match(e.templates, line)
		if !ok {
			e.templateIDs[i] = codec.UnmatchedTemplateID
			msgID := e.internMessage(unmatchedMessageNamespace, line)
			e.fieldOffsets[i] = []uint64{uint64(msgID)}
			continue
		}

		idx := e.idByName[tmpl.TemplateID]
		e.templateIDs[i] = idx

		offsets := make([]uint64, 0, tmpl.NumPlaceholders())
		for pos, el := range tmpl.Pattern {
			if !el.Placeholder {
				continue
			}
			value := fields[pos]
			offset := e.appendFieldValue(el.Type, value, tmpl.TemplateID)
			offsets = append(offsets, offset)
		}
		e.fieldOffsets[i] = offsets
	}

	e.state = StateLinesEncoded
	return nil
}

// appendFieldValue routes value into the category column matching semType
// and returns the index it was appended at for timestamps, or its
// dictionary id for the other categories (finalizeOccurrenceStream later
// turns those ids into stream positions) (§4.4).
func (e *Encoder) appendFieldValue(semType types.SemanticType, value string, templateID string) uint64 {
	switch types.CategoryOf(semType) {
	case types.CategoryTimestamp:
		ms, ok := codec.ParseTimestampMillis(value)
		if !ok {
			ms = 0
		}
		e.timestampValues = append(e.timestampValues, ms)
		return uint64(len(e.timestampValues) - 1)
	case types.CategorySeverity:
		return uint64(e.severityDict.Intern(value))
	case types.CategoryIP:
		return uint64(e.ipDict.Intern(value))
	default:
		e.perTemplateMessages[templateID] = append(e.perTemplateMessages[templateID], value)
		return uint64(e.internMessage(templateID, value))
	}
}

// unmatchedMessageNamespace keys message-dict entries for lines that never
// matched a template, kept apart from any real template id.
const unmatchedMessageNamespace = ""

// internMessage assigns value a message-column id namespaced by templateID,
// so two templates that happen to produce the same raw text never share an
// id (§4.4). Sharing an id across templates would let one template's
// word-dictionary encoding overwrite another's stored bytes in
// buildMessageList. messageRaw mirrors the dictionary's id -> value mapping
// with the original, unprefixed text, since the dictionary itself is keyed
// on the namespaced string.
func (e *Encoder) internMessage(templateID, value string) int {
	key := templateID + "\x1f" + value
	before := e.messageDict.Len()
	id := e.messageDict.Intern(key)
	if id == before {
		e.messageRaw = append(e.messageRaw, value)
	}
	return id
}

// FinalizeOptions selects the optional encoders §6 exposes as feature
// toggles.
type FinalizeOptions struct {
	BinaryIP         bool
	WordDictionaries bool
	WordDictMinFreq  int
}

// FinalizeColumns freezes every dictionary, builds the varint/RLE streams,
// and (optionally) per-template word dictionaries (§4.4).
func (e *Encoder) FinalizeColumns(opts FinalizeOptions) error {
	e.requireState(StateLinesEncoded, "FinalizeColumns")
	if opts.WordDictMinFreq <= 0 {
		opts.WordDictMinFreq = 2
	}

	cl := &types.CompressedLog{
		OriginalCount: len(e.lines),
		CompressedAt:  time.Now().UTC().Format(time.RFC3339),
	}

	if len(e.timestampValues) > 0 {
		base, deltas := codec.EncodeDeltaZigZag(e.timestampValues)
		cl.TimestampBase = base
		cl.TimestampCount = len(e.timestampValues)
		cl.TimestampUnit = types.TimestampUnitMillis
		cl.TimestampsVarint = codec.EncodeVarintList(deltas)
	}

	cl.SeverityList = e.severityDict.Values()
	cl.SeverityCount, cl.SeveritiesVarint = e.finalizeOccurrenceStream(types.CategorySeverity)

	cl.IPCount, cl.IPAddressesVarint = e.finalizeOccurrenceStream(types.CategoryIP)
	cl.IPList = e.buildIPList(opts.BinaryIP)

	cl.MessageCount, cl.MessagesVarint = e.finalizeOccurrenceStream(types.CategoryMessage)
	cl.MessageList = e.buildMessageList(opts, cl)

	cl.Templates = e.templates
	cl.TemplateTokenRefs = make([][]int, len(e.templates))
	for i, t := range e.templates {
		refs := e.tokenPool.InternTemplate(t)
		out := make([]int, len(refs))
		for j, r := range refs {
			out[j] = int(r)
		}
		cl.TemplateTokenRefs[i] = out
	}
	cl.TokenPool = e.tokenPool.Values()

	cl.LogIndexTemplatesRLE = codec.EncodeTemplateIDs(e.templateIDs)
	cl.LogIndexFieldsVarint, cl.LogIndexFieldCounts = codec.EncodeFieldOffsets(e.fieldOffsets)

	e.result = cl
	e.state = StateColumnsFinalized
	return nil
}

// finalizeOccurrenceStream re-walks the log index to recover, in line
// order, the occurrence sequence of ids appended to category (the stream
// the query engine scans positionally — see DESIGN.md). Each log-index
// entry of that category holds a dictionary id on entry and is rewritten
// to its position in the returned stream.
func (e *Encoder) finalizeOccurrenceStream(category types.ColumnCategory) (int, []byte) {
	var ids []uint64
	for i, tid := range e.templateIDs {
		offsets := e.fieldOffsets[i]
		if tid == codec.UnmatchedTemplateID {
			if category == types.CategoryMessage {
				ids = append(ids, offsets[0])
				offsets[0] = uint64(len(ids) - 1)
			}
			continue
		}
		tmpl := e.templates[tid]
		cursor := 0
		for _, el := range tmpl.Pattern {
			if !el.Placeholder {
				continue
			}
			if types.CategoryOf(el.Type) == category {
				ids = append(ids, offsets[cursor])
				offsets[cursor] = uint64(len(ids) - 1)
			}
			cursor++
		}
	}
	return len(ids), codec.EncodeVarintList(ids)
}

func (e *Encoder) buildIPList(binary bool) []types.IPEntry {
	values := e.ipDict.Values()
	out := make([]types.IPEntry, len(values))
	for i, v := range values {
		if binary {
			if ip := parseIPv4(v); ip != nil {
				out[i] = types.IPEntry{Binary: true, Bytes: ip}
				continue
			}
		}
		out[i] = types.IPEntry{Bytes: []byte(v)}
	}
	return out
}

func (e *Encoder) buildMessageList(opts FinalizeOptions, cl *types.CompressedLog) [][]byte {
	out := make([][]byte, len(e.messageRaw))
	for i, v := range e.messageRaw {
		out[i] = []byte(v)
	}

	if !opts.WordDictionaries {
		return out
	}

	cl.TemplateDictsSerialized = make(map[string]types.WordDict)
	for _, tmpl := range e.templates {
		if tmpl.MatchCount < 2 {
			continue
		}
		messages := e.perTemplateMessages[tmpl.TemplateID]
		if len(messages) == 0 {
			continue
		}
		dict := codec.BuildWordDict(messages, opts.WordDictMinFreq)
		if len(dict.WordToCode) == 0 {
			continue
		}
		cl.TemplateDictsSerialized[tmpl.TemplateID] = dict

		for _, msg := range messages {
			id := e.internMessage(tmpl.TemplateID, msg)
			out[id] = codec.EncodeMessage(msg, dict)
		}
	}
	return out
}

func parseIPv4(value string) []byte {
	parts := strings.Split(value, ".")
	if len(parts) != 4 {
		return nil
	}
	parsed := net.ParseIP(value)
	if parsed == nil {
		return nil
	}
	v4 := parsed.To4()
	if v4 == nil {
		return nil
	}
	for _, p := range parts {
		if _, err := strconv.Atoi(p); err != nil {
			return nil
		}
	}
	return []byte(v4)
}

// Serialize freezes the assembled CompressedLog. It is a pure accessor —
// the record was already built by FinalizeColumns — kept as a distinct
// call so the state machine mirrors §4.4's four transitions explicitly.
func (e *Encoder) Serialize() (*types.CompressedLog, error) {
	e.requireState(StateColumnsFinalized, "Serialize")
	e.state = StateSerialized
	if e.result == nil {
		return nil, errors.CorruptContainer("serialize", "no result was finalized")
	}
	return e.result, nil
}

// State reports the encoder's current state, for diagnostics/tests.
func (e *Encoder) State() State {
	return e.state
}
