package codec

import "logpress/pkg/errors"

// rlePatternMarker distinguishes a pattern-prefixed RLE-v2 stream from a
// plain-RLE one: if the first byte decodes to this value, a pattern block
// follows.
const rlePatternMarker = 0xFF

const (
	minPatternLen    = 2
	maxPatternLen    = 19
	minPatternRepeat = 3
)

// EncodeRLE implements RLE-v2 (§4.4): a leading repeating pattern of
// length 2-19 that repeats at least 3 times is factored out into a
// pattern block (marker, pattern length, pattern values, repeat count);
// the remainder (or the whole list, if no pattern qualifies) is encoded
// as plain RLE value/run-length pairs.
func EncodeRLE(values []uint64) []byte {
	if len(values) == 0 {
		return nil
	}

	patternLen, repeatCount, ok := detectLeadingPattern(values)
	if !ok {
		return encodePlainRLE(values)
	}

	buf := AppendVarint([]byte{rlePatternMarker}, uint64(patternLen))
	for i := 0; i < patternLen; i++ {
		buf = AppendVarint(buf, values[i])
	}
	buf = AppendVarint(buf, uint64(repeatCount))

	tail := values[patternLen*repeatCount:]
	buf = append(buf, encodePlainRLE(tail)...)
	return buf
}

// detectLeadingPattern looks for the longest pattern length in [2,19]
// whose repetition, starting at index 0, covers at least three full
// cycles. Longest-first maximizes how much of the stream the compact
// pattern block absorbs.
func detectLeadingPattern(values []uint64) (patternLen, repeatCount int, ok bool) {
	n := len(values)
	maxLen := maxPatternLen
	if maxLen > n/minPatternRepeat {
		maxLen = n / minPatternRepeat
	}
	for l := maxLen; l >= minPatternLen; l-- {
		if l == 0 {
			continue
		}
		reps := countLeadingRepeats(values, l)
		if reps >= minPatternRepeat {
			return l, reps, true
		}
	}
	return 0, 0, false
}

func countLeadingRepeats(values []uint64, patternLen int) int {
	n := len(values)
	reps := 0
	for (reps+1)*patternLen <= n {
		base := reps * patternLen
		matches := true
		for i := 0; i < patternLen; i++ {
			if values[base+i] != values[i] {
				matches = false
				break
			}
		}
		if !matches {
			break
		}
		reps++
	}
	return reps
}

func encodePlainRLE(values []uint64) []byte {
	var buf []byte
	i := 0
	for i < len(values) {
		run := 1
		for i+run < len(values) && values[i+run] == values[i] {
			run++
		}
		buf = AppendVarint(buf, values[i])
		buf = AppendVarint(buf, uint64(run))
		i += run
	}
	return buf
}

// DecodeRLE reverses EncodeRLE, expanding to exactly count elements.
func DecodeRLE(data []byte, count int) ([]uint64, error) {
	if count == 0 {
		return nil, nil
	}
	if len(data) == 0 {
		return nil, errors.CorruptContainer("decode_rle", "empty stream for non-zero count")
	}

	out := make([]uint64, 0, count)
	offset := 0

	if data[0] == rlePatternMarker {
		offset = 1
		patternLen, n, err := DecodeVarint(data, offset)
		if err != nil {
			return nil, err
		}
		offset += n

		pattern := make([]uint64, patternLen)
		for i := range pattern {
			v, n, err := DecodeVarint(data, offset)
			if err != nil {
				return nil, err
			}
			pattern[i] = v
			offset += n
		}

		repeatCount, n, err := DecodeVarint(data, offset)
		if err != nil {
			return nil, err
		}
		offset += n

		for r := uint64(0); r < repeatCount; r++ {
			out = append(out, pattern...)
		}
	}

	tail, err := decodePlainRLE(data[offset:], count-len(out))
	if err != nil {
		return nil, err
	}
	return append(out, tail...), nil
}

func decodePlainRLE(data []byte, want int) ([]uint64, error) {
	out := make([]uint64, 0, want)
	offset := 0
	for len(out) < want {
		if offset >= len(data) {
			return nil, errors.CorruptContainer("decode_rle", "ran out of data before reaching expected element count")
		}
		value, n, err := DecodeVarint(data, offset)
		if err != nil {
			return nil, err
		}
		offset += n
		run, n, err := DecodeVarint(data, offset)
		if err != nil {
			return nil, err
		}
		offset += n

		for i := uint64(0); i < run && len(out) < want; i++ {
			out = append(out, value)
		}
	}
	return out, nil
}
