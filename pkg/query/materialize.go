package query

import (
	"net"
	"strconv"
	"strings"

	"logpress/pkg/codec"
	"logpress/pkg/errors"
	"logpress/pkg/types"
)

// Materialize reconstructs the requested lines by decoding the log index at
// those positions and pulling one value per placeholder from the relevant
// category columns (§4.6).
func (e *Engine) Materialize(indices []int) ([]string, error) {
	if err := e.mustBeOpen("materialize"); err != nil {
		return nil, err
	}

	out := make([]string, len(indices))
	for i, idx := range indices {
		if idx < 0 || idx >= e.reader.Log.OriginalCount {
			return nil, errors.OutOfRange("materialize", "index out of range: "+strconv.Itoa(idx))
		}
		line, err := e.materializeOne(idx)
		if err != nil {
			return nil, err
		}
		out[i] = line
	}
	return out, nil
}

func (e *Engine) materializeOne(idx int) (string, error) {
	log := e.reader.Log
	templateID := e.templateIDs[idx]
	offsets := e.fieldOffsets[idx]

	if templateID == codec.UnmatchedTemplateID {
		if len(offsets) != 1 {
			return "", errors.CorruptContainer("materialize", "unmatched line does not have exactly one field offset")
		}
		return e.lookupMessage(int(offsets[0]))
	}

	if templateID < 0 || templateID >= len(log.Templates) {
		return "", errors.CorruptContainer("materialize", "template id out of range")
	}
	tmpl := log.Templates[templateID]

	var pieces []string
	cursor := 0
	for _, el := range tmpl.Pattern {
		if !el.Placeholder {
			pieces = append(pieces, el.Literal)
			continue
		}
		if cursor >= len(offsets) {
			return "", errors.CorruptContainer("materialize", "not enough field offsets for template placeholders")
		}
		offset := int(offsets[cursor])
		cursor++

		value, err := e.lookupPlaceholder(el.Type, offset, templateID)
		if err != nil {
			return "", err
		}
		pieces = append(pieces, value)
	}

	return strings.Join(pieces, " "), nil
}

func (e *Engine) lookupPlaceholder(semType types.SemanticType, offset int, templateID int) (string, error) {
	log := e.reader.Log
	switch types.CategoryOf(semType) {
	case types.CategoryTimestamp:
		if offset < 0 || offset >= len(e.timestamps) {
			return "", errors.CorruptContainer("materialize", "timestamp offset out of range")
		}
		return codec.FormatTimestamp(e.timestamps[offset], e.reader.Opts.TimestampFormat), nil
	case types.CategorySeverity:
		if offset < 0 || offset >= len(e.severityIDs) {
			return "", errors.CorruptContainer("materialize", "severity offset out of range")
		}
		id := int(e.severityIDs[offset])
		if id < 0 || id >= len(log.SeverityList) {
			return "", errors.CorruptContainer("materialize", "severity id out of range")
		}
		return log.SeverityList[id], nil
	case types.CategoryIP:
		if offset < 0 || offset >= len(e.ipIDs) {
			return "", errors.CorruptContainer("materialize", "ip offset out of range")
		}
		id := int(e.ipIDs[offset])
		if id < 0 || id >= len(log.IPList) {
			return "", errors.CorruptContainer("materialize", "ip id out of range")
		}
		return formatIPEntry(log.IPList[id]), nil
	default:
		return e.lookupMessageForTemplate(offset, templateID)
	}
}

func (e *Engine) lookupMessage(offset int) (string, error) {
	return e.lookupMessageForTemplate(offset, -1)
}

func (e *Engine) lookupMessageForTemplate(offset int, templateID int) (string, error) {
	log := e.reader.Log
	if offset < 0 || offset >= len(e.messageIDs) {
		return "", errors.CorruptContainer("materialize", "message offset out of range")
	}
	id := int(e.messageIDs[offset])
	if id < 0 || id >= len(log.MessageList) {
		return "", errors.CorruptContainer("materialize", "message id out of range")
	}
	raw := log.MessageList[id]

	if templateID >= 0 {
		if dict, ok := log.TemplateDictsSerialized[log.Templates[templateID].TemplateID]; ok {
			return codec.DecodeMessage(raw, dict), nil
		}
	}
	return string(raw), nil
}

func formatIPEntry(entry types.IPEntry) string {
	if entry.Binary && len(entry.Bytes) == 4 {
		return net.IP(entry.Bytes).String()
	}
	return string(entry.Bytes)
}
