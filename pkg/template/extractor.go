// Package template groups structurally similar log lines behind a shared,
// positionally-aligned pattern of literal text and typed placeholders
// (§4.3). It is grounded on the original LogPress template generator
// (template_generator.py).
package template

import (
	"fmt"
	"sort"
	"strings"

	"logpress/pkg/semantic"
	"logpress/pkg/tokenizer"
	"logpress/pkg/types"
)

// Options configures extraction.
type Options struct {
	// MinSupport is the minimum number of lines a structural group must
	// have before it is promoted to a template.
	MinSupport int
}

// DefaultOptions mirrors the original generator's constructor defaults.
func DefaultOptions() Options {
	return Options{MinSupport: 3}
}

type taggedLine struct {
	raw    string
	fields []string
	kinds  []types.TokenKind
	index  int
}

// Extract groups lines and aligns each group into a LogTemplate, sorted by
// match count descending (most common template first). Lines that never
// reach MinSupport in any group are dropped silently — their template
// assignment at encode time falls back to a catch-all (§7, EmptyInput /
// NoTemplates handled by the caller).
func Extract(lines []string, opts Options) []types.LogTemplate {
	if len(lines) == 0 {
		return nil
	}
	if opts.MinSupport <= 0 {
		opts.MinSupport = DefaultOptions().MinSupport
	}

	tagged := make([]taggedLine, 0, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		toks := tokenizer.Tokenize(line)
		tagged = append(tagged, taggedLine{
			raw:    line,
			fields: tokenizer.GetFields(toks),
			kinds:  nonWhitespaceKinds(toks),
			index:  i,
		})
	}

	groups := groupByStructure(tagged)

	templates := make([]types.LogTemplate, 0, len(groups))
	id := 0
	for _, group := range groups {
		if len(group) < opts.MinSupport {
			continue
		}
		tmpl := generateTemplate(group, id)
		templates = append(templates, tmpl)
		id++
	}

	sort.SliceStable(templates, func(i, j int) bool {
		return templates[i].MatchCount > templates[j].MatchCount
	})
	return templates
}

func nonWhitespaceKinds(toks []types.Token) []types.TokenKind {
	kinds := make([]types.TokenKind, 0, len(toks))
	for _, tok := range toks {
		if tok.Kind != types.TokenWhitespace {
			kinds = append(kinds, tok.Kind)
		}
	}
	return kinds
}

type structureKey struct {
	fieldCount int
	kindSig    string
}

// groupByStructure buckets lines by field count plus the kind of their
// first ten non-whitespace tokens, preserving first-seen group order so
// output is deterministic across runs with identical input.
func groupByStructure(tagged []taggedLine) [][]taggedLine {
	order := make([]structureKey, 0)
	buckets := make(map[structureKey][]taggedLine)

	for _, tl := range tagged {
		sig := tl.kinds
		if len(sig) > 10 {
			sig = sig[:10]
		}
		key := structureKey{fieldCount: len(tl.fields), kindSig: kindSignature(sig)}
		if _, ok := buckets[key]; !ok {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], tl)
	}

	groups := make([][]taggedLine, 0, len(order))
	for _, key := range order {
		groups = append(groups, buckets[key])
	}
	return groups
}

func kindSignature(kinds []types.TokenKind) string {
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = string(k)
	}
	return strings.Join(parts, ",")
}

// generateTemplate aligns a structural group field-by-field: a position
// that is identical across every line in the group becomes a literal (or,
// if recognized with confidence > 0.80, a high-confidence semantic
// placeholder); a position with low cardinality (<=3 distinct values
// across >=10 lines) becomes a categorical placeholder; everything else is
// typed by confidence-weighted vote across up to ten sample values.
func generateTemplate(group []taggedLine, groupID int) types.LogTemplate {
	maxFields := 0
	for _, tl := range group {
		if len(tl.fields) > maxFields {
			maxFields = len(tl.fields)
		}
	}

	pattern := make([]types.PatternElement, 0, maxFields)
	fieldTypes := make(map[int]types.SemanticType)

	for pos := 0; pos < maxFields; pos++ {
		valuesAtPos := make([]string, 0, len(group))
		for _, tl := range group {
			if pos < len(tl.fields) {
				valuesAtPos = append(valuesAtPos, tl.fields[pos])
			}
		}
		if len(valuesAtPos) == 0 {
			continue
		}

		unique := uniqueStrings(valuesAtPos)

		switch {
		case len(unique) == 1:
			pattern = appendConstantOrTyped(pattern, fieldTypes, pos, valuesAtPos[0], 0.80)

		case len(unique) <= 3 && len(group) >= 10:
			sample := valuesAtPos[0]
			best := semantic.BestMatch(sample)
			if best.Confidence > 0.75 {
				pattern = append(pattern, placeholderElement(best.Type))
				fieldTypes[pos] = best.Type
			} else {
				pattern = append(pattern, placeholderElement(types.SemanticField))
				fieldTypes[pos] = types.SemanticField
			}

		default:
			sampleCount := len(valuesAtPos)
			if sampleCount > 10 {
				sampleCount = 10
			}
			votes := make(map[types.SemanticType]float64)
			for _, val := range valuesAtPos[:sampleCount] {
				best := semantic.BestMatch(val)
				votes[best.Type] += best.Confidence
			}
			bestType, ok := maxVote(votes)
			if ok {
				pattern = append(pattern, placeholderElement(bestType))
				fieldTypes[pos] = bestType
			} else {
				pattern = append(pattern, placeholderElement(types.SemanticField))
				fieldTypes[pos] = types.SemanticField
			}
		}
	}

	exampleCount := len(group)
	if exampleCount > 5 {
		exampleCount = 5
	}
	examples := make([]string, exampleCount)
	for i := 0; i < exampleCount; i++ {
		examples[i] = group[i].raw
	}

	return types.LogTemplate{
		TemplateID: fmt.Sprintf("T%03d", groupID),
		Pattern:    pattern,
		FieldTypes: fieldTypes,
		MatchCount: len(group),
		// Normalizes by sample size so templates built from a handful of
		// lines don't read as equally trustworthy as ones built from
		// thousands.
		Confidence: float64(len(group)) / float64(len(group)+10),
		Examples:   examples,
	}
}

func appendConstantOrTyped(pattern []types.PatternElement, fieldTypes map[int]types.SemanticType, pos int, constant string, confidenceFloor float64) []types.PatternElement {
	best := semantic.BestMatch(constant)
	if best.Confidence > confidenceFloor {
		fieldTypes[pos] = best.Type
		return append(pattern, placeholderElement(best.Type))
	}
	return append(pattern, types.PatternElement{Literal: constant})
}

func placeholderElement(t types.SemanticType) types.PatternElement {
	return types.PatternElement{Placeholder: true, Type: t}
}

func uniqueStrings(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func maxVote(votes map[types.SemanticType]float64) (types.SemanticType, bool) {
	var best types.SemanticType
	var bestScore float64
	found := false
	// Deterministic tie-break: iterate semantic types in declaration order
	// rather than map order.
	for _, t := range voteOrder {
		score, ok := votes[t]
		if !ok {
			continue
		}
		if !found || score > bestScore {
			best, bestScore, found = t, score, true
		}
	}
	return best, found
}

var voteOrder = []types.SemanticType{
	types.SemanticTimestamp, types.SemanticIPAddress, types.SemanticPort,
	types.SemanticSeverity, types.SemanticStatus, types.SemanticErrorCode,
	types.SemanticUserID, types.SemanticProcessID, types.SemanticThreadID,
	types.SemanticMetricValue, types.SemanticMetricUnit, types.SemanticModule,
	types.SemanticFunction, types.SemanticRequestID, types.SemanticFilename,
	types.SemanticHost, types.SemanticURL, types.SemanticAction,
	types.SemanticMessage, types.SemanticUnknown, types.SemanticField,
}
