// Package codec implements the columnar encodings used by the container
// format (§4.4): varint/zigzag integers, run-length encoding, dictionary
// encoding, token-pool deduplication, per-template word substitution, and
// the block-wise Burrows-Wheeler transform. Grounded on the original
// LogPress codec modules (varint.py, template_dictionary.py) and
// on logpress/context/encoding/bwt.py.
package codec

import "logpress/pkg/errors"

// AppendVarint appends value's Protocol-Buffer-style varint encoding to
// buf and returns the extended slice. value must be non-negative.
func AppendVarint(buf []byte, value uint64) []byte {
	for value > 0x7F {
		buf = append(buf, byte(value&0x7F)|0x80)
		value >>= 7
	}
	return append(buf, byte(value&0x7F))
}

// EncodeVarintList encodes a sequence of non-negative integers back to
// back, with no length prefix between elements.
func EncodeVarintList(values []uint64) []byte {
	buf := make([]byte, 0, len(values)*2)
	for _, v := range values {
		buf = AppendVarint(buf, v)
	}
	return buf
}

// DecodeVarint reads one varint from data starting at offset, returning
// the value and the number of bytes consumed.
func DecodeVarint(data []byte, offset int) (value uint64, bytesRead int, err error) {
	var shift uint
	for {
		if offset+bytesRead >= len(data) {
			return 0, 0, errors.CorruptContainer("decode_varint", "incomplete varint")
		}
		b := data[offset+bytesRead]
		bytesRead++
		value |= uint64(b&0x7F) << shift
		shift += 7
		if b&0x80 == 0 {
			break
		}
		if shift > 63 {
			return 0, 0, errors.CorruptContainer("decode_varint", "varint exceeds 64 bits")
		}
	}
	return value, bytesRead, nil
}

// DecodeVarintList decodes count consecutive varints from data.
func DecodeVarintList(data []byte, count int) ([]uint64, error) {
	values := make([]uint64, 0, count)
	offset := 0
	for i := 0; i < count; i++ {
		v, n, err := DecodeVarint(data, offset)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
		offset += n
	}
	return values, nil
}

// EstimateVarintSize returns the number of bytes value would occupy when
// varint-encoded, without performing the encoding.
func EstimateVarintSize(value uint64) int {
	if value == 0 {
		return 1
	}
	n := 0
	for value > 0 {
		n++
		value >>= 7
	}
	return n
}
