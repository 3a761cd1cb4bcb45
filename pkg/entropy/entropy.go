// Package entropy provides the outer entropy-coding stage a container's
// structured record passes through after (optional) BWT preprocessing
// (§4.5). It narrows the teacher's general-purpose HTTP compression
// algorithm set (gzip/zlib/zstd/lz4/snappy/auto/none) to the ones that make
// sense for a write-once, read-many container: zstd, lz4, snappy, none.
package entropy

import (
	"bytes"
	"fmt"
	"io"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"logpress/pkg/errors"
)

// Algorithm identifies the entropy coder applied to a container's record
// bytes.
type Algorithm string

const (
	AlgorithmZstd   Algorithm = "zstd"
	AlgorithmLZ4    Algorithm = "lz4"
	AlgorithmSnappy Algorithm = "snappy"
	AlgorithmNone   Algorithm = "none"
)

// Dictionary is a pre-trained shared dictionary for the zstd coder, built
// once from a diverse log sample and loaded read-only by both writer and
// reader (§5). A nil dictionary disables dictionary mode.
type Dictionary struct {
	ID    string
	Bytes []byte
}

// Encode compresses data with algorithm at a high compression level,
// optionally against a shared dictionary (zstd only — other algorithms
// ignore dict).
func Encode(data []byte, algorithm Algorithm, dict *Dictionary) ([]byte, error) {
	switch algorithm {
	case AlgorithmZstd:
		return encodeZstd(data, dict)
	case AlgorithmLZ4:
		return encodeLZ4(data)
	case AlgorithmSnappy:
		return snappy.Encode(nil, data), nil
	case AlgorithmNone:
		return data, nil
	default:
		return nil, errors.ProcessingError("entropy_encode", fmt.Sprintf("unsupported algorithm %q", algorithm))
	}
}

// Decode reverses Encode. The caller must supply the same algorithm and
// dictionary used at write time.
func Decode(data []byte, algorithm Algorithm, dict *Dictionary) ([]byte, error) {
	switch algorithm {
	case AlgorithmZstd:
		return decodeZstd(data, dict)
	case AlgorithmLZ4:
		return decodeLZ4(data)
	case AlgorithmSnappy:
		return snappy.Decode(nil, data)
	case AlgorithmNone:
		return data, nil
	default:
		return nil, errors.ProcessingError("entropy_decode", fmt.Sprintf("unsupported algorithm %q", algorithm))
	}
}

func encodeZstd(data []byte, dict *Dictionary) ([]byte, error) {
	opts := []zstd.EOption{zstd.WithEncoderLevel(zstd.SpeedBestCompression)}
	if dict != nil && len(dict.Bytes) > 0 {
		opts = append(opts, zstd.WithEncoderDicts(dict.Bytes))
	}
	encoder, err := zstd.NewWriter(nil, opts...)
	if err != nil {
		return nil, err
	}
	defer encoder.Close()
	return encoder.EncodeAll(data, make([]byte, 0, len(data))), nil
}

func decodeZstd(data []byte, dict *Dictionary) ([]byte, error) {
	var opts []zstd.DOption
	if dict != nil && len(dict.Bytes) > 0 {
		opts = append(opts, zstd.WithDecoderDicts(dict.Bytes))
	}
	decoder, err := zstd.NewReader(nil, opts...)
	if err != nil {
		return nil, err
	}
	defer decoder.Close()
	return decoder.DecodeAll(data, nil)
}

func encodeLZ4(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := lz4.NewWriter(&buf)
	if _, err := writer.Write(data); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeLZ4(data []byte) ([]byte, error) {
	reader := lz4.NewReader(bytes.NewReader(data))
	return io.ReadAll(reader)
}
