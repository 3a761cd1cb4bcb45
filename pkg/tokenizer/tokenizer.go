// Package tokenizer segments a single log line into an ordered sequence of
// typed lexical units, without any semantic interpretation (§4.1).
package tokenizer

import (
	"regexp"
	"strings"

	"logpress/pkg/types"
)

var (
	bracketPattern = regexp.MustCompile(`\[[^\]]+\]`)
	quotedPattern  = regexp.MustCompile(`"[^"]*"|'[^']*'`)
	numberPattern  = regexp.MustCompile(`^\d+(\.\d+)?$`)
	pipeShapePattern = regexp.MustCompile(`^([^|]+\|){2,}`)
)

const punctuationChars = ",:;-"

// Tokenize splits a log line into tokens whose [Start,End) spans partition
// the line. Trailing newlines should already be stripped by the caller.
// Empty input yields an empty slice.
func Tokenize(line string) []types.Token {
	if strings.TrimSpace(line) == "" {
		return nil
	}

	if pipeShapePattern.MatchString(line) {
		return tokenizePipeDelimited(line)
	}
	return tokenizeGeneral(line)
}

func tokenizePipeDelimited(line string) []types.Token {
	var tokens []types.Token
	fields := strings.Split(line, "|")
	pos := 0

	for i, field := range fields {
		if i > 0 {
			tokens = append(tokens, types.Token{Value: "|", Start: pos, End: pos + 1, Kind: types.TokenPipe})
			pos++
		}
		trimmed := strings.TrimSpace(field)
		tokens = append(tokens, types.Token{Value: trimmed, Start: pos, End: pos + len(field), Kind: types.TokenWord})
		pos += len(field)
	}
	return tokens
}

type span struct {
	start, end int
	kind       types.TokenKind
	value      string
}

func tokenizeGeneral(line string) []types.Token {
	var specials []span

	for _, loc := range bracketPattern.FindAllStringIndex(line, -1) {
		specials = append(specials, span{loc[0], loc[1], types.TokenBracket, line[loc[0]:loc[1]]})
	}
	for _, loc := range quotedPattern.FindAllStringIndex(line, -1) {
		insideBracket := false
		for _, s := range specials {
			if s.kind == types.TokenBracket && s.start <= loc[0] && loc[0] < s.end {
				insideBracket = true
				break
			}
		}
		if !insideBracket {
			specials = append(specials, span{loc[0], loc[1], types.TokenQuoted, line[loc[0]:loc[1]]})
		}
	}

	sortSpans(specials)

	var tokens []types.Token
	lastPos := 0
	for _, s := range specials {
		if s.start > lastPos {
			tokens = append(tokens, tokenizePlainText(line[lastPos:s.start], lastPos)...)
		}
		tokens = append(tokens, types.Token{Value: s.value, Start: s.start, End: s.end, Kind: s.kind})
		lastPos = s.end
	}
	if lastPos < len(line) {
		tokens = append(tokens, tokenizePlainText(line[lastPos:], lastPos)...)
	}
	return tokens
}

func sortSpans(specials []span) {
	for i := 1; i < len(specials); i++ {
		j := i
		for j > 0 && specials[j-1].start > specials[j].start {
			specials[j-1], specials[j] = specials[j], specials[j-1]
			j--
		}
	}
}

func tokenizePlainText(text string, offset int) []types.Token {
	var tokens []types.Token
	pos := offset
	start := 0

	flush := func(end int) {
		if end <= start {
			return
		}
		part := text[start:end]
		tokens = append(tokens, classify(part, pos, pos+len(part)))
		pos += len(part)
	}

	i := 0
	for i < len(text) {
		if isSpace(text[i]) {
			flush(i)
			j := i
			for j < len(text) && isSpace(text[j]) {
				j++
			}
			tokens = append(tokens, types.Token{Value: text[i:j], Start: pos, End: pos + (j - i), Kind: types.TokenWhitespace})
			pos += j - i
			i = j
			start = i
			continue
		}
		i++
	}
	flush(len(text))

	return tokens
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\v' || b == '\f'
}

func classify(part string, start, end int) types.Token {
	switch {
	case numberPattern.MatchString(part):
		return types.Token{Value: part, Start: start, End: end, Kind: types.TokenNumber}
	case len(part) == 1 && strings.ContainsRune(punctuationChars, rune(part[0])):
		return types.Token{Value: part, Start: start, End: end, Kind: types.TokenPunctuation}
	default:
		return types.Token{Value: part, Start: start, End: end, Kind: types.TokenWord}
	}
}

// GetFields extracts the ordered non-whitespace, non-punctuation token
// values, stripping bracket/quote delimiters. This is the substrate the
// template extractor and semantic recognizer operate on.
func GetFields(tokens []types.Token) []string {
	fields := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		switch tok.Kind {
		case types.TokenBracket, types.TokenQuoted:
			if len(tok.Value) >= 2 {
				fields = append(fields, tok.Value[1:len(tok.Value)-1])
			} else {
				fields = append(fields, tok.Value)
			}
		case types.TokenWord, types.TokenNumber:
			fields = append(fields, tok.Value)
		}
	}
	return fields
}
