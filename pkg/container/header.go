package container

import (
	"encoding/binary"

	"logpress/pkg/errors"
	"logpress/pkg/types"
)

// fileHeader is the framing written ahead of the entropy-coded
// record bytes: everything a reader needs before it can even attempt to
// decompress (§4.5 reader: "verify version" happens first).
type fileHeader struct {
	version          string
	bwt              bool
	bwtBlockSize     int
	checksum         uint64
	entropyAlgorithm string
	entropyDictID    string
}

func newFileHeader(bwt bool, bwtBlockSize int, checksum uint64, entropyAlgorithm, entropyDictID string) *fileHeader {
	return &fileHeader{
		version:          types.ContainerVersion,
		bwt:              bwt,
		bwtBlockSize:     bwtBlockSize,
		checksum:         checksum,
		entropyAlgorithm: entropyAlgorithm,
		entropyDictID:    entropyDictID,
	}
}

// marshal renders the header as: version (length-prefixed string),
// checksum (uint64 LE), bwt flag (1 byte), bwt block size (uint32 LE),
// entropy algorithm (length-prefixed string), entropy dict id
// (length-prefixed string).
func (h *fileHeader) marshal() []byte {
	out := make([]byte, 0, 48+len(h.version))
	out = appendLengthPrefixed(out, []byte(h.version))
	checksumBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(checksumBytes, h.checksum)
	out = append(out, checksumBytes...)
	if h.bwt {
		out = append(out, 1)
	} else {
		out = append(out, 0)
	}
	blockSizeBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(blockSizeBytes, uint32(h.bwtBlockSize))
	out = append(out, blockSizeBytes...)
	out = appendLengthPrefixed(out, []byte(h.entropyAlgorithm))
	out = appendLengthPrefixed(out, []byte(h.entropyDictID))
	return out
}

func parseFileHeader(data []byte) (*fileHeader, int, error) {
	version, n, err := readLengthPrefixed(data)
	if err != nil {
		return nil, 0, errors.CorruptContainer("read_header", "truncated version field")
	}
	offset := n
	if offset+13 > len(data) {
		return nil, 0, errors.CorruptContainer("read_header", "truncated header")
	}
	checksum := binary.LittleEndian.Uint64(data[offset : offset+8])
	offset += 8
	bwt := data[offset] != 0
	offset++
	blockSize := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
	offset += 4

	if string(version) != types.ContainerVersion {
		return nil, 0, errors.UnsupportedVersion("read_header", "container version "+string(version)+" is not supported")
	}

	algorithm, n, err := readLengthPrefixed(data[offset:])
	if err != nil {
		return nil, 0, errors.CorruptContainer("read_header", "truncated entropy algorithm field")
	}
	offset += n

	dictID, n, err := readLengthPrefixed(data[offset:])
	if err != nil {
		return nil, 0, errors.CorruptContainer("read_header", "truncated entropy dict id field")
	}
	offset += n

	return &fileHeader{
		version:          string(version),
		checksum:         checksum,
		bwt:              bwt,
		bwtBlockSize:     blockSize,
		entropyAlgorithm: string(algorithm),
		entropyDictID:    string(dictID),
	}, offset, nil
}

func appendLengthPrefixed(buf []byte, data []byte) []byte {
	lenBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(lenBytes, uint32(len(data)))
	buf = append(buf, lenBytes...)
	return append(buf, data...)
}

func readLengthPrefixed(data []byte) ([]byte, int, error) {
	if len(data) < 4 {
		return nil, 0, errors.CorruptContainer("read_length_prefixed", "truncated length prefix")
	}
	length := int(binary.LittleEndian.Uint32(data[:4]))
	if 4+length > len(data) {
		return nil, 0, errors.CorruptContainer("read_length_prefixed", "truncated payload")
	}
	return data[4 : 4+length], 4 + length, nil
}
