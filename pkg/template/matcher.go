package template

import (
	"logpress/pkg/tokenizer"
	"logpress/pkg/types"
)

// Match finds the first template (in slice order) whose field count is
// within two of the line's field count, and returns the values extracted
// at each placeholder position. It reports false if no template is within
// tolerance — the caller (pipeline encoder) treats that line as unmatched.
func Match(templates []types.LogTemplate, line string) (types.LogTemplate, map[int]string, bool) {
	fields := tokenizer.GetFields(tokenizer.Tokenize(line))

	for _, tmpl := range templates {
		if abs(len(fields)-len(tmpl.Pattern)) > 2 {
			continue
		}
		extracted := make(map[int]string, tmpl.NumPlaceholders())
		for pos, el := range tmpl.Pattern {
			if !el.Placeholder || pos >= len(fields) {
				continue
			}
			extracted[pos] = fields[pos]
		}
		return tmpl, extracted, true
	}
	return types.LogTemplate{}, nil, false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Summary describes aggregate coverage across a set of templates, used by
// the query engine's Stats call.
type Summary struct {
	TemplateCount    int
	TotalLinesMatched int
	TopTemplates      []TemplateCoverage
}

// TemplateCoverage is one row of Summary.TopTemplates.
type TemplateCoverage struct {
	ID       string
	Pattern  string
	Matches  int
	Coverage float64
}

// Describe computes a Summary over templates, capping TopTemplates at ten
// entries (templates are expected to already be sorted by match count).
func Describe(templates []types.LogTemplate) Summary {
	if len(templates) == 0 {
		return Summary{}
	}

	total := 0
	for _, t := range templates {
		total += t.MatchCount
	}

	top := templates
	if len(top) > 10 {
		top = top[:10]
	}
	coverage := make([]TemplateCoverage, 0, len(top))
	for _, t := range top {
		var ratio float64
		if total > 0 {
			ratio = float64(t.MatchCount) / float64(total)
		}
		coverage = append(coverage, TemplateCoverage{
			ID:       t.TemplateID,
			Pattern:  patternString(t),
			Matches:  t.MatchCount,
			Coverage: ratio,
		})
	}

	return Summary{
		TemplateCount:     len(templates),
		TotalLinesMatched: total,
		TopTemplates:      coverage,
	}
}

func patternString(t types.LogTemplate) string {
	out := make([]byte, 0, 64)
	for i, el := range t.Pattern {
		if i > 0 {
			out = append(out, ' ')
		}
		if el.Placeholder {
			out = append(out, '[')
			out = append(out, el.Type...)
			out = append(out, ']')
		} else {
			out = append(out, el.Literal...)
		}
	}
	return string(out)
}
