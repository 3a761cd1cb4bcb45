package container

import (
	"os"
	"time"

	"github.com/cespare/xxhash/v2"

	"logpress/pkg/codec"
	"logpress/pkg/entropy"
	"logpress/pkg/errors"
	"logpress/pkg/metrics"
	"logpress/pkg/types"
)

// ReadOptions configures how a container is decoded back into logical
// values that never stored enough information to round-trip byte-for-byte
// on their own (timestamp formatting policy — §9).
type ReadOptions struct {
	EntropyDict      *entropy.Dictionary
	TimestampFormat  codec.TimestampFormat
}

// DefaultReadOptions matches the writer's defaults.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{TimestampFormat: codec.TimestampFormatEpoch}
}

// Reader holds a decoded, query-ready CompressedLog plus the read options
// it was opened with.
type Reader struct {
	Log  *types.CompressedLog
	Opts ReadOptions
}

// Open reads and fully decodes the container at path (§4.5 reader:
// "entropy-decompress, optional BWT inverse, structured-record unpack,
// verify version").
func Open(path string, opts ReadOptions) (*Reader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		metrics.ContainersOpened.WithLabelValues("read_error").Inc()
		return nil, errors.CorruptContainer("open", "failed to read container file: "+err.Error())
	}
	return Decode(data, opts)
}

// Decode reverses Encode, given opts. It never touches the filesystem.
func Decode(data []byte, opts ReadOptions) (*Reader, error) {
	if opts.TimestampFormat == "" {
		opts.TimestampFormat = codec.TimestampFormatEpoch
	}

	start := time.Now()

	header, n, err := parseFileHeader(data)
	if err != nil {
		metrics.ContainersOpened.WithLabelValues("bad_header").Inc()
		return nil, err
	}

	payload, err := entropy.Decode(data[n:], entropy.Algorithm(header.entropyAlgorithm), opts.EntropyDict)
	if err != nil {
		metrics.ContainersOpened.WithLabelValues("entropy_error").Inc()
		return nil, errors.CorruptContainer("open", "entropy decoding failed: "+err.Error())
	}

	if header.bwt {
		payload, err = codec.BWTDecode(payload)
		if err != nil {
			metrics.ContainersOpened.WithLabelValues("bwt_error").Inc()
			return nil, err
		}
	}

	if xxhash.Sum64(payload) != header.checksum {
		metrics.ContainersOpened.WithLabelValues("checksum_mismatch").Inc()
		return nil, errors.CorruptContainer("open", "checksum mismatch: container is corrupt")
	}

	wire, err := unmarshalRecord(payload)
	if err != nil {
		metrics.ContainersOpened.WithLabelValues("unmarshal_error").Inc()
		return nil, errors.CorruptContainer("open", "failed to unmarshal record: "+err.Error())
	}

	if wire.Version != types.ContainerVersion {
		metrics.ContainersOpened.WithLabelValues("bad_version").Inc()
		return nil, errors.UnsupportedVersion("open", "record version "+wire.Version+" is not supported")
	}

	cl, err := wire.toLogical()
	if err != nil {
		metrics.ContainersOpened.WithLabelValues("pattern_reconstruction_error").Inc()
		return nil, err
	}
	cl.Checksum = header.checksum
	cl.EntropyAlgorithm = header.entropyAlgorithm
	cl.EntropyDict = header.entropyDictID

	if err := validateInvariants(cl); err != nil {
		metrics.ContainersOpened.WithLabelValues("invariant_violation").Inc()
		return nil, err
	}

	metrics.ContainersOpened.WithLabelValues("ok").Inc()
	metrics.CompressionDuration.WithLabelValues(header.entropyAlgorithm).Observe(time.Since(start).Seconds())

	return &Reader{Log: cl, Opts: opts}, nil
}

// validateInvariants checks the §3 invariants a reader must enforce before
// a container is safe to query.
func validateInvariants(cl *types.CompressedLog) error {
	if err := codec.ValidateFieldOffsetCounts(cl.LogIndexFieldCounts, sumVarintListLen(cl.LogIndexFieldsVarint)); err != nil {
		return err
	}
	if len(cl.LogIndexFieldCounts) != cl.OriginalCount {
		return errors.CorruptContainer("validate_invariants", "log_index_field_counts length does not match original_count")
	}
	return nil
}

func sumVarintListLen(data []byte) int {
	count := 0
	offset := 0
	for offset < len(data) {
		_, n, err := codec.DecodeVarint(data, offset)
		if err != nil {
			return count
		}
		offset += n
		count++
	}
	return count
}

// Close releases any resources held by the reader. CompressedLog's column
// blobs are plain in-memory slices, so this is currently a no-op retained
// for interface symmetry with the query engine's Close.
func (r *Reader) Close() error {
	return nil
}
