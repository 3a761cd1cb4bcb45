package codec

import (
	"regexp"
	"sort"
	"strings"

	"logpress/pkg/types"
)

// wordPattern matches alphanumeric runs of two or more characters, the
// unit Otten's (2008) scoring operates over.
var wordPattern = regexp.MustCompile(`[0-9A-Za-z]{2,}`)

// unusedBytes lists the ~160 byte codes Otten found reliably absent from
// English log text: control characters minus \n \r \t, plus extended
// ASCII. Ordered ascending so code assignment is deterministic.
var unusedBytes = buildUnusedBytes()

func buildUnusedBytes() []byte {
	excluded := map[byte]bool{9: true, 10: true, 13: true}
	var out []byte
	for b := 0; b < 32; b++ {
		if !excluded[byte(b)] {
			out = append(out, byte(b))
		}
	}
	for b := 128; b < 256; b++ {
		out = append(out, byte(b))
	}
	return out
}

// BuildWordDict scores words across messages by frequency*(length-1) and
// assigns the top-scoring ones (at least minFreq occurrences) to unused byte codes, most
// valuable word first.
func BuildWordDict(messages []string, minFreq int) types.WordDict {
	freq := make(map[string]int)
	var order []string
	for _, msg := range messages {
		for _, w := range wordPattern.FindAllString(msg, -1) {
			if _, seen := freq[w]; !seen {
				order = append(order, w)
			}
			freq[w]++
		}
	}

	type scored struct {
		word  string
		score int
	}
	var candidates []scored
	for _, w := range order {
		f := freq[w]
		if f < minFreq {
			continue
		}
		candidates = append(candidates, scored{w, f * (len(w) - 1)})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	dict := types.WordDict{
		WordToCode: make(map[string]byte),
		CodeToWord: make(map[byte]string),
	}
	limit := len(unusedBytes)
	if len(candidates) < limit {
		limit = len(candidates)
	}
	for i := 0; i < limit; i++ {
		code := unusedBytes[i]
		word := candidates[i].word
		dict.WordToCode[word] = code
		dict.CodeToWord[code] = word
	}
	return dict
}

// EncodeMessage replaces dictionary words in message with their one-byte
// codes, longest word first so no replacement creates a spurious partial
// match inside a shorter dictionary word. The result is raw bytes, not a
// valid UTF-8 string: codes in [128,255] are single bytes, not the
// multi-byte UTF-8 encoding of the corresponding rune.
func EncodeMessage(message string, dict types.WordDict) []byte {
	data := []byte(message)
	if len(dict.WordToCode) == 0 {
		return data
	}

	words := make([]string, 0, len(dict.WordToCode))
	for w := range dict.WordToCode {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool { return len(words[i]) > len(words[j]) })

	for _, w := range words {
		data = replaceBytesWithCode(data, w, dict.WordToCode[w])
	}
	return data
}

func replaceBytesWithCode(data []byte, word string, code byte) []byte {
	if !strings.Contains(string(data), word) {
		return data
	}
	out := make([]byte, 0, len(data))
	for len(data) > 0 {
		idx := strings.Index(string(data), word)
		if idx < 0 {
			out = append(out, data...)
			break
		}
		out = append(out, data[:idx]...)
		out = append(out, code)
		data = data[idx+len(word):]
	}
	return out
}

// DecodeMessage reverses EncodeMessage with a single left-to-right scan of
// the byte stream: any byte matching a dictionary code is substituted for
// its word, every other byte is copied verbatim. This avoids the
// iterated-string-replacement approach, which can misfire if a decoded
// word's bytes happen to match another code later in the scan.
func DecodeMessage(data []byte, dict types.WordDict) string {
	if len(dict.CodeToWord) == 0 {
		return string(data)
	}
	out := make([]byte, 0, len(data)*2)
	for _, b := range data {
		if word, ok := dict.CodeToWord[b]; ok {
			out = append(out, word...)
		} else {
			out = append(out, b)
		}
	}
	return string(out)
}
