package codec

import (
	"context"
	"encoding/binary"
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"logpress/pkg/errors"
	"logpress/pkg/workerpool"
)

// DefaultBWTBlockSize matches the upper end of the range the original
// block-sort implementation recommends (1 MiB); callers may pick smaller
// blocks for better worker-pool parallelism.
const DefaultBWTBlockSize = 1024 * 1024

const blockHeaderSize = 8 // size (uint32 LE) + original_index (uint32 LE)

// BWTEncode applies a block-wise Burrows-Wheeler Transform to data,
// splitting it into chunks of blockSize bytes and transforming each
// independently so blocks can be encoded in parallel (§4.4). The output
// format is: block_count (uint32 LE), then per block: size (uint32 LE),
// original_index (uint32 LE), transformed bytes.
func BWTEncode(data []byte, blockSize int) []byte {
	if blockSize <= 0 {
		blockSize = DefaultBWTBlockSize
	}
	if len(data) == 0 {
		header := make([]byte, 4)
		return header
	}

	numBlocks := (len(data) + blockSize - 1) / blockSize
	transformed := make([][]byte, numBlocks)
	indices := make([]uint32, numBlocks)

	runBlockwise(numBlocks, func(i int) {
		start := i * blockSize
		end := start + blockSize
		if end > len(data) {
			end = len(data)
		}
		out, origIndex := bwtEncodeBlock(data[start:end])
		transformed[i] = out
		indices[i] = uint32(origIndex)
	})

	out := make([]byte, 4)
	binary.LittleEndian.PutUint32(out, uint32(numBlocks))
	for i := 0; i < numBlocks; i++ {
		hdr := make([]byte, blockHeaderSize)
		binary.LittleEndian.PutUint32(hdr[0:4], uint32(len(transformed[i])))
		binary.LittleEndian.PutUint32(hdr[4:8], indices[i])
		out = append(out, hdr...)
		out = append(out, transformed[i]...)
	}
	return out
}

// BWTDecode reverses BWTEncode.
func BWTDecode(data []byte) ([]byte, error) {
	if len(data) < 4 {
		return nil, errors.CorruptContainer("bwt_decode", "stream shorter than block-count header")
	}
	numBlocks := int(binary.LittleEndian.Uint32(data[:4]))
	if numBlocks == 0 {
		return nil, nil
	}

	offsets := make([]int, numBlocks)
	lengths := make([]int, numBlocks)
	origIdx := make([]int, numBlocks)

	offset := 4
	for i := 0; i < numBlocks; i++ {
		if offset+blockHeaderSize > len(data) {
			return nil, errors.CorruptContainer("bwt_decode", fmt.Sprintf("truncated header for block %d", i))
		}
		size := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
		idx := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		offset += blockHeaderSize
		if offset+size > len(data) {
			return nil, errors.CorruptContainer("bwt_decode", fmt.Sprintf("truncated payload for block %d", i))
		}
		offsets[i] = offset
		lengths[i] = size
		origIdx[i] = idx
		offset += size
	}

	decoded := make([][]byte, numBlocks)
	decodeErrs := make([]error, numBlocks)
	runBlockwise(numBlocks, func(i int) {
		block := data[offsets[i] : offsets[i]+lengths[i]]
		out, err := bwtDecodeBlock(block, origIdx[i])
		decoded[i] = out
		decodeErrs[i] = err
	})
	for _, err := range decodeErrs {
		if err != nil {
			return nil, err
		}
	}

	result := make([]byte, 0, len(data))
	for _, d := range decoded {
		result = append(result, d...)
	}
	return result, nil
}

// runBlockwise dispatches n independent block jobs across a bounded
// worker pool, adapted from the teacher's generic task-queue pool: each
// job signals its own completion so the caller doesn't depend on the
// pool's shutdown drain to know when results are ready.
func runBlockwise(n int, job func(i int)) {
	if n <= 1 {
		for i := 0; i < n; i++ {
			job(i)
		}
		return
	}

	pool := workerpool.NewWorkerPool(workerpool.WorkerPoolConfig{
		MaxWorkers: n,
		QueueSize:  n,
	}, logrus.StandardLogger())
	if err := pool.Start(); err != nil {
		for i := 0; i < n; i++ {
			job(i)
		}
		return
	}
	defer pool.Stop()

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		idx := i
		task := workerpool.Task{
			ID: fmt.Sprintf("bwt-block-%d", idx),
			Execute: func(ctx context.Context) error {
				defer wg.Done()
				job(idx)
				return nil
			},
		}
		if err := pool.SubmitTask(task); err != nil {
			wg.Done()
			job(idx)
		}
	}
	wg.Wait()
}

// bwtEncodeBlock sorts all cyclic rotations of block lexicographically and
// returns their last column plus the row index of the unrotated original.
func bwtEncodeBlock(block []byte) ([]byte, int) {
	n := len(block)
	if n <= 1 {
		return append([]byte(nil), block...), 0
	}

	doubled := append(append([]byte(nil), block...), block...)
	rotations := make([]int, n)
	for i := range rotations {
		rotations[i] = i
	}
	sort.Slice(rotations, func(a, b int) bool {
		ra, rb := rotations[a], rotations[b]
		return string(doubled[ra:ra+n]) < string(doubled[rb:rb+n])
	})

	last := make([]byte, n)
	originalIndex := -1
	for row, start := range rotations {
		last[row] = block[(start-1+n)%n]
		if start == 0 {
			originalIndex = row
		}
	}
	return last, originalIndex
}

// bwtDecodeBlock reconstructs the original block from its last column via
// LF-mapping: count byte occurrences, derive each position's rank within
// its byte value, and walk backwards from originalIndex.
func bwtDecodeBlock(block []byte, originalIndex int) ([]byte, error) {
	n := len(block)
	if n <= 1 {
		return append([]byte(nil), block...), nil
	}
	if originalIndex < 0 || originalIndex >= n {
		return nil, errors.CorruptContainer("bwt_decode_block", "original index out of range")
	}

	var count [256]int
	for _, b := range block {
		count[b]++
	}
	var cumulative [256]int
	total := 0
	for v := 0; v < 256; v++ {
		cumulative[v] = total
		total += count[v]
	}

	lf := make([]int, n)
	var seen [256]int
	for i, b := range block {
		lf[i] = cumulative[b] + seen[b]
		seen[b]++
	}

	result := make([]byte, n)
	idx := originalIndex
	for i := n - 1; i >= 0; i-- {
		result[i] = block[idx]
		idx = lf[idx]
	}
	return result, nil
}
