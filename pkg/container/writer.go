package container

import (
	"os"

	"github.com/cespare/xxhash/v2"

	"logpress/pkg/codec"
	"logpress/pkg/entropy"
	"logpress/pkg/errors"
	"logpress/pkg/metrics"
	"logpress/pkg/types"
)

// WriteOptions configures the outer stages applied to a CompressedLog
// before it hits disk (§4.5).
type WriteOptions struct {
	EntropyAlgorithm entropy.Algorithm
	EntropyDict      *entropy.Dictionary

	BWT          bool
	BWTBlockSize int
}

// DefaultWriteOptions mirrors the teacher's "sensible defaults, override
// per call" convention.
func DefaultWriteOptions() WriteOptions {
	return WriteOptions{
		EntropyAlgorithm: entropy.AlgorithmZstd,
		BWTBlockSize:     codec.DefaultBWTBlockSize,
	}
}

// Write serializes cl into the structured record, optionally BWT-transforms
// it, entropy-codes the result, and writes it to path (§4.5).
func Write(cl *types.CompressedLog, path string, opts WriteOptions) error {
	encoded, err := Encode(cl, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		metrics.ContainersWritten.WithLabelValues("write_error").Inc()
		return errors.CorruptContainer("write", "failed to write container file: "+err.Error())
	}
	metrics.ContainersWritten.WithLabelValues("ok").Inc()
	return nil
}

// Encode produces the final on-disk bytes for cl without touching the
// filesystem, letting callers embed a container in a larger stream.
func Encode(cl *types.CompressedLog, opts WriteOptions) ([]byte, error) {
	if opts.EntropyAlgorithm == "" {
		opts.EntropyAlgorithm = entropy.AlgorithmZstd
	}
	if opts.BWTBlockSize <= 0 {
		opts.BWTBlockSize = codec.DefaultBWTBlockSize
	}

	cl.Version = types.ContainerVersion
	cl.EntropyAlgorithm = string(opts.EntropyAlgorithm)
	if opts.EntropyDict != nil {
		cl.EntropyDict = opts.EntropyDict.ID
	}

	wire := toWire(cl)
	recordBytes, err := marshalRecord(wire)
	if err != nil {
		return nil, errors.CorruptContainer("write", "failed to marshal record: "+err.Error())
	}

	checksum := xxhash.Sum64(recordBytes)
	cl.Checksum = checksum

	dictID := ""
	if opts.EntropyDict != nil {
		dictID = opts.EntropyDict.ID
	}
	header := newFileHeader(opts.BWT, opts.BWTBlockSize, checksum, string(opts.EntropyAlgorithm), dictID)
	payload := recordBytes
	if opts.BWT {
		payload = codec.BWTEncode(payload, opts.BWTBlockSize)
	}

	compressed, err := entropy.Encode(payload, opts.EntropyAlgorithm, opts.EntropyDict)
	if err != nil {
		return nil, errors.CorruptContainer("write", "entropy encoding failed: "+err.Error())
	}

	ratio := 1.0
	if len(compressed) > 0 {
		ratio = float64(len(recordBytes)) / float64(len(compressed))
	}
	metrics.CompressionRatio.WithLabelValues(string(opts.EntropyAlgorithm)).Observe(ratio)

	out := header.marshal()
	out = append(out, compressed...)
	return out, nil
}
