// Package container implements the self-describing binary container
// format: a structured, schemaless, length-prefixed record (§4.5) holding
// every column blob a CompressedLog needs to be queried without
// re-tokenizing the source lines.
package container

import (
	"sort"

	"github.com/vmihailenco/msgpack/v5"

	"logpress/pkg/codec"
	"logpress/pkg/types"
)

// wireFieldType is one entry of a template's FieldTypes, carried as a
// position-sorted slice rather than a map: vmihailenco/msgpack does not
// sort map keys, and Go randomizes map iteration order per range call, so
// marshaling a map directly would make the container's bytes vary across
// runs of the same logical CompressedLog (§9: deterministic re-encoding).
type wireFieldType struct {
	Pos  int                `msgpack:"pos"`
	Type types.SemanticType `msgpack:"type"`
}

// wireTemplate is a template's serialized metadata; its pattern is
// reconstructed on load from (token_pool, template_token_refs), not stored
// directly (§4.5 writer note: "templates (metadata only, minus
// reconstructed pattern)").
type wireTemplate struct {
	TemplateID string          `msgpack:"template_id"`
	FieldTypes []wireFieldType `msgpack:"field_types"`
	MatchCount int             `msgpack:"match_count"`
	Confidence float64         `msgpack:"confidence"`
	Examples   []string        `msgpack:"examples"`
}

// wireIPEntry mirrors types.IPEntry for the wire format.
type wireIPEntry struct {
	Binary bool   `msgpack:"binary"`
	Bytes  []byte `msgpack:"bytes"`
}

// wireWordDict mirrors types.WordDict for the wire format; msgpack cannot
// key a map by byte, so CodeToWord is carried as parallel slices, sorted
// ascending by code so the byte sequence is deterministic.
type wireWordDict struct {
	Codes []byte   `msgpack:"codes"`
	Words []string `msgpack:"words"`
}

// wireTemplateDict pairs a template id with its word dictionary; carried as
// a template-id-sorted slice for the same reason as wireFieldType above —
// TemplateDictsSerialized is a map at the logical level but must not be
// marshaled as one.
type wireTemplateDict struct {
	TemplateID string       `msgpack:"template_id"`
	Dict       wireWordDict `msgpack:"dict"`
}

func fieldTypesToWire(m map[int]types.SemanticType) []wireFieldType {
	out := make([]wireFieldType, 0, len(m))
	for pos, t := range m {
		out = append(out, wireFieldType{Pos: pos, Type: t})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Pos < out[j].Pos })
	return out
}

func fieldTypesFromWire(w []wireFieldType) map[int]types.SemanticType {
	m := make(map[int]types.SemanticType, len(w))
	for _, f := range w {
		m[f.Pos] = f.Type
	}
	return m
}

func wordDictToWire(wd types.WordDict) wireWordDict {
	codes := make([]byte, 0, len(wd.CodeToWord))
	for code := range wd.CodeToWord {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })

	words := make([]string, len(codes))
	for i, code := range codes {
		words[i] = wd.CodeToWord[code]
	}
	return wireWordDict{Codes: codes, Words: words}
}

func wordDictFromWire(wd wireWordDict) types.WordDict {
	codeToWord := make(map[byte]string, len(wd.Codes))
	wordToCode := make(map[string]byte, len(wd.Codes))
	for i, code := range wd.Codes {
		codeToWord[code] = wd.Words[i]
		wordToCode[wd.Words[i]] = code
	}
	return types.WordDict{WordToCode: wordToCode, CodeToWord: codeToWord}
}

// record is the structured, length-prefixed record written to (and read
// from) a container file, field-for-field per spec.md §3/§6.
type record struct {
	Version string `msgpack:"version"`

	Templates         []wireTemplate `msgpack:"templates"`
	TokenPool         []string       `msgpack:"token_pool"`
	TemplateTokenRefs [][]int        `msgpack:"template_token_refs"`

	TimestampBase    int64            `msgpack:"timestamp_base"`
	TimestampCount   int              `msgpack:"timestamp_count"`
	TimestampUnit    types.TimestampUnit `msgpack:"timestamp_unit"`
	TimestampsVarint []byte           `msgpack:"timestamps_varint"`

	SeverityCount    int      `msgpack:"severity_count"`
	SeverityList     []string `msgpack:"severity_list"`
	SeveritiesVarint []byte   `msgpack:"severities_varint"`

	IPCount           int           `msgpack:"ip_count"`
	IPList            []wireIPEntry `msgpack:"ip_list"`
	IPAddressesVarint []byte        `msgpack:"ip_addresses_varint"`

	MessageCount   int      `msgpack:"message_count"`
	MessageList    [][]byte `msgpack:"message_list"`
	MessagesVarint []byte   `msgpack:"messages_varint"`

	LogIndexTemplatesRLE []byte `msgpack:"log_index_templates_rle"`
	LogIndexFieldsVarint []byte `msgpack:"log_index_fields_varint"`
	LogIndexFieldCounts  []int  `msgpack:"log_index_field_counts"`

	OriginalCount int `msgpack:"original_count"`

	TemplateDictsSerialized []wireTemplateDict `msgpack:"template_dicts_serialized"`

	CompressedAt string `msgpack:"compressed_at"`
}

func toWire(cl *types.CompressedLog) *record {
	templates := make([]wireTemplate, len(cl.Templates))
	for i, t := range cl.Templates {
		templates[i] = wireTemplate{
			TemplateID: t.TemplateID,
			FieldTypes: fieldTypesToWire(t.FieldTypes),
			MatchCount: t.MatchCount,
			Confidence: t.Confidence,
			Examples:   t.Examples,
		}
	}

	ipList := make([]wireIPEntry, len(cl.IPList))
	for i, e := range cl.IPList {
		ipList[i] = wireIPEntry{Binary: e.Binary, Bytes: e.Bytes}
	}

	ids := make([]string, 0, len(cl.TemplateDictsSerialized))
	for id := range cl.TemplateDictsSerialized {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	dicts := make([]wireTemplateDict, 0, len(ids))
	for _, id := range ids {
		dicts = append(dicts, wireTemplateDict{
			TemplateID: id,
			Dict:       wordDictToWire(cl.TemplateDictsSerialized[id]),
		})
	}

	return &record{
		Version:                 cl.Version,
		Templates:               templates,
		TokenPool:               cl.TokenPool,
		TemplateTokenRefs:       cl.TemplateTokenRefs,
		TimestampBase:           cl.TimestampBase,
		TimestampCount:          cl.TimestampCount,
		TimestampUnit:           cl.TimestampUnit,
		TimestampsVarint:        cl.TimestampsVarint,
		SeverityCount:           cl.SeverityCount,
		SeverityList:            cl.SeverityList,
		SeveritiesVarint:        cl.SeveritiesVarint,
		IPCount:                 cl.IPCount,
		IPList:                  ipList,
		IPAddressesVarint:       cl.IPAddressesVarint,
		MessageCount:            cl.MessageCount,
		MessageList:             cl.MessageList,
		MessagesVarint:          cl.MessagesVarint,
		LogIndexTemplatesRLE:    cl.LogIndexTemplatesRLE,
		LogIndexFieldsVarint:    cl.LogIndexFieldsVarint,
		LogIndexFieldCounts:     cl.LogIndexFieldCounts,
		OriginalCount:           cl.OriginalCount,
		TemplateDictsSerialized: dicts,
		CompressedAt:            cl.CompressedAt,
	}
}

// toLogical rebuilds the logical CompressedLog, including reconstructing
// each template's Pattern from (token_pool, template_token_refs) — the
// pattern itself is never stored on the wire (§4.5).
func (r *record) toLogical() (*types.CompressedLog, error) {
	templates := make([]types.LogTemplate, len(r.Templates))
	for i, t := range r.Templates {
		var refs []uint64
		if i < len(r.TemplateTokenRefs) {
			refs = make([]uint64, len(r.TemplateTokenRefs[i]))
			for j, ref := range r.TemplateTokenRefs[i] {
				refs[j] = uint64(ref)
			}
		}
		pattern, err := codec.ReconstructPattern(refs, r.TokenPool)
		if err != nil {
			return nil, err
		}
		templates[i] = types.LogTemplate{
			TemplateID: t.TemplateID,
			Pattern:    pattern,
			FieldTypes: fieldTypesFromWire(t.FieldTypes),
			MatchCount: t.MatchCount,
			Confidence: t.Confidence,
			Examples:   t.Examples,
		}
	}

	ipList := make([]types.IPEntry, len(r.IPList))
	for i, e := range r.IPList {
		ipList[i] = types.IPEntry{Binary: e.Binary, Bytes: e.Bytes}
	}

	dicts := make(map[string]types.WordDict, len(r.TemplateDictsSerialized))
	for _, td := range r.TemplateDictsSerialized {
		dicts[td.TemplateID] = wordDictFromWire(td.Dict)
	}

	return &types.CompressedLog{
		Version:                 r.Version,
		Templates:               templates,
		TokenPool:               r.TokenPool,
		TemplateTokenRefs:       r.TemplateTokenRefs,
		TimestampBase:           r.TimestampBase,
		TimestampCount:          r.TimestampCount,
		TimestampUnit:           r.TimestampUnit,
		TimestampsVarint:        r.TimestampsVarint,
		SeverityCount:           r.SeverityCount,
		SeverityList:            r.SeverityList,
		SeveritiesVarint:        r.SeveritiesVarint,
		IPCount:                 r.IPCount,
		IPList:                  ipList,
		IPAddressesVarint:       r.IPAddressesVarint,
		MessageCount:            r.MessageCount,
		MessageList:             r.MessageList,
		MessagesVarint:          r.MessagesVarint,
		LogIndexTemplatesRLE:    r.LogIndexTemplatesRLE,
		LogIndexFieldsVarint:    r.LogIndexFieldsVarint,
		LogIndexFieldCounts:     r.LogIndexFieldCounts,
		OriginalCount:           r.OriginalCount,
		TemplateDictsSerialized: dicts,
		CompressedAt:            r.CompressedAt,
	}, nil
}

func marshalRecord(r *record) ([]byte, error) {
	return msgpack.Marshal(r)
}

func unmarshalRecord(data []byte) (*record, error) {
	var r record
	if err := msgpack.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
