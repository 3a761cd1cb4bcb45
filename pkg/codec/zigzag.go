package codec

// ZigZagEncode maps a signed integer to an unsigned one so small-magnitude
// negatives varint-encode as compactly as small positives: 0, -1, 1, -2, 2
// become 0, 1, 2, 3, 4.
func ZigZagEncode(n int64) uint64 {
	return uint64((n << 1) ^ (n >> 63))
}

// ZigZagDecode reverses ZigZagEncode.
func ZigZagDecode(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}

// EncodeDeltaZigZag converts an ascending-ish sequence of absolute values
// into (base, deltas): the first value is returned as base, and each
// subsequent value is replaced by its zigzag-encoded delta from its
// predecessor. Timestamps are the motivating case (§4.4) but the helper
// is type-agnostic.
func EncodeDeltaZigZag(values []int64) (base int64, deltas []uint64) {
	if len(values) == 0 {
		return 0, nil
	}
	base = values[0]
	deltas = make([]uint64, len(values)-1)
	prev := base
	for i := 1; i < len(values); i++ {
		deltas[i-1] = ZigZagEncode(values[i] - prev)
		prev = values[i]
	}
	return base, deltas
}

// DecodeDeltaZigZag reverses EncodeDeltaZigZag.
func DecodeDeltaZigZag(base int64, deltas []uint64) []int64 {
	values := make([]int64, len(deltas)+1)
	values[0] = base
	prev := base
	for i, d := range deltas {
		prev += ZigZagDecode(d)
		values[i+1] = prev
	}
	return values
}
