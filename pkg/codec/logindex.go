package codec

import "logpress/pkg/errors"

// UnmatchedTemplateID is the sentinel template id recorded for a line that
// no template matched (§4.3/§4.4). Zigzagging it produces 1, never 0, so it
// never collides with template index 0 in the RLE stream.
const UnmatchedTemplateID = -1

// EncodeTemplateIDs zigzags the per-line template-id stream (so −1 becomes
// 1) and passes it through enhanced run-length encoding (§4.4).
func EncodeTemplateIDs(ids []int) []byte {
	zz := make([]uint64, len(ids))
	for i, id := range ids {
		zz[i] = ZigZagEncode(int64(id))
	}
	return EncodeRLE(zz)
}

// DecodeTemplateIDs reverses EncodeTemplateIDs, producing exactly count
// template ids (§3 invariant: "the expansion ... has exactly original_count
// entries").
func DecodeTemplateIDs(data []byte, count int) ([]int, error) {
	zz, err := DecodeRLE(data, count)
	if err != nil {
		return nil, err
	}
	ids := make([]int, count)
	for i, z := range zz {
		ids[i] = int(ZigZagDecode(z))
	}
	return ids, nil
}

// EncodeFieldOffsets flattens each line's category-column offsets (in
// placeholder/extraction order) into one varint stream, plus the parallel
// per-line counts that partition it back (§4.4). perLine must have exactly
// original_count entries; a matched line's entry has one offset per
// placeholder position, an unmatched line's entry has exactly one offset
// (into the messages column, where its full raw text was stored).
func EncodeFieldOffsets(perLine [][]uint64) (flat []byte, counts []int) {
	counts = make([]int, len(perLine))
	var all []uint64
	for i, offsets := range perLine {
		counts[i] = len(offsets)
		all = append(all, offsets...)
	}
	return EncodeVarintList(all), counts
}

// DecodeFieldOffsets reverses EncodeFieldOffsets, validating that the flat
// stream's element count matches sum(counts) (§7 failure mode: invariant
// violation on load → CorruptContainer).
func DecodeFieldOffsets(flat []byte, counts []int) ([][]uint64, error) {
	total := 0
	for _, c := range counts {
		total += c
	}
	all, err := DecodeVarintList(flat, total)
	if err != nil {
		return nil, err
	}
	result := make([][]uint64, len(counts))
	pos := 0
	for i, c := range counts {
		result[i] = all[pos : pos+c]
		pos += c
	}
	return result, nil
}

// ValidateFieldOffsetCounts checks the §3 invariant
// sum(log_index_field_counts) == len(log_index_fields_varint items).
func ValidateFieldOffsetCounts(counts []int, flatElementCount int) error {
	total := 0
	for _, c := range counts {
		total += c
	}
	if total != flatElementCount {
		return errors.CorruptContainer("log_index_validate", "sum(field_counts) does not match decoded field-offset element count")
	}
	return nil
}
