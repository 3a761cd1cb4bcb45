package codec

import (
	"strings"

	"logpress/pkg/errors"
	"logpress/pkg/types"
)

// TokenPool globally deduplicates pattern tokens across templates (§4.4):
// every literal string or typed placeholder a template's pattern contains
// is interned once, and each template stores only indices into the pool.
type TokenPool struct {
	dict *Dict
}

// NewTokenPool returns an empty pool.
func NewTokenPool() *TokenPool {
	return &TokenPool{dict: NewDict()}
}

// Values returns the frozen pool contents in id order.
func (p *TokenPool) Values() []string {
	return p.dict.Values()
}

const placeholderPrefix = "P:"
const literalPrefix = "L:"

func elementToToken(el types.PatternElement) string {
	if el.Placeholder {
		return placeholderPrefix + string(el.Type)
	}
	return literalPrefix + el.Literal
}

func tokenToElement(token string) (types.PatternElement, error) {
	switch {
	case strings.HasPrefix(token, placeholderPrefix):
		return types.PatternElement{Placeholder: true, Type: types.SemanticType(token[len(placeholderPrefix):])}, nil
	case strings.HasPrefix(token, literalPrefix):
		return types.PatternElement{Literal: token[len(literalPrefix):]}, nil
	default:
		return types.PatternElement{}, errors.CorruptContainer("token_pool_decode", "token has unrecognized prefix: "+token)
	}
}

// InternTemplate records tmpl's pattern tokens in the pool and returns the
// indices that reconstruct the pattern, in order.
func (p *TokenPool) InternTemplate(tmpl types.LogTemplate) []uint64 {
	refs := make([]uint64, len(tmpl.Pattern))
	for i, el := range tmpl.Pattern {
		refs[i] = uint64(p.dict.Intern(elementToToken(el)))
	}
	return refs
}

// ReconstructPattern rebuilds a template's pattern from its token-pool
// references and the pool's frozen value list (read path).
func ReconstructPattern(refs []uint64, pool []string) ([]types.PatternElement, error) {
	pattern := make([]types.PatternElement, len(refs))
	for i, ref := range refs {
		if int(ref) >= len(pool) {
			return nil, errors.CorruptContainer("token_pool_decode", "reference beyond pool size")
		}
		el, err := tokenToElement(pool[ref])
		if err != nil {
			return nil, err
		}
		pattern[i] = el
	}
	return pattern, nil
}
