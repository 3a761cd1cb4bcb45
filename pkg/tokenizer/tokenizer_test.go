package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"logpress/pkg/types"
)

func TestTokenize_Empty(t *testing.T) {
	assert.Nil(t, Tokenize(""))
	assert.Nil(t, Tokenize("   "))
}

func TestTokenize_BracketSeverityApache(t *testing.T) {
	line := "[Thu Jun 09 06:07:04 2005] [notice] LDAP: Built with OpenLDAP"
	tokens := Tokenize(line)

	var kinds []types.TokenKind
	for _, tok := range tokens {
		kinds = append(kinds, tok.Kind)
	}
	assert.Equal(t, types.TokenBracket, kinds[0])

	fields := GetFields(tokens)
	assert.Equal(t, "Thu Jun 09 06:07:04 2005", fields[0])
	assert.Equal(t, "notice", fields[1])
}

func TestTokenize_PipeDelimited(t *testing.T) {
	line := "20171223-22:15:29:606|Step_LSC|30002312|onStandStepChanged 3579"
	tokens := Tokenize(line)

	fields := GetFields(tokens)
	assert.Equal(t, []string{"20171223-22:15:29:606", "Step_LSC", "30002312", "onStandStepChanged 3579"}, fields)
}

func TestTokenize_QuotedOutsideBracket(t *testing.T) {
	line := `action "open file" [done]`
	tokens := Tokenize(line)

	var sawQuoted, sawBracket bool
	for _, tok := range tokens {
		if tok.Kind == types.TokenQuoted {
			sawQuoted = true
		}
		if tok.Kind == types.TokenBracket {
			sawBracket = true
		}
	}
	assert.True(t, sawQuoted)
	assert.True(t, sawBracket)
}

func TestTokenize_NumberVsWord(t *testing.T) {
	tokens := Tokenize("retries 12 at 1.2.3 ok")
	var fields []string
	for _, tok := range tokens {
		if tok.Kind == types.TokenNumber || tok.Kind == types.TokenWord {
			fields = append(fields, tok.Value)
		}
	}
	assert.Contains(t, fields, "12")
	assert.Contains(t, fields, "1.2.3")

	for _, tok := range tokens {
		if tok.Value == "1.2.3" {
			assert.Equal(t, types.TokenWord, tok.Kind)
		}
		if tok.Value == "12" {
			assert.Equal(t, types.TokenNumber, tok.Kind)
		}
	}
}

func TestTokenize_SpansPartitionLine(t *testing.T) {
	line := "[a b] word, 42"
	tokens := Tokenize(line)
	for i, tok := range tokens {
		assert.Equal(t, tok.Value, line[tok.Start:tok.End], "token %d value must match its span", i)
	}
}
