package deflate64

import (
	"encoding/binary"

	"github.com/anthropic-go-student/deflate64/internal/huffman"
	"github.com/anthropic-go-student/deflate64/internal/window"
)

// checkpointTreesLen is the combined size of the serialized
// literal/length and distance code-length arrays in a checkpoint
// record (288 + 32), always present even when the current block has
// no dynamic trees, in which case they are filled with 0xFF.
const checkpointTreesLen = huffman.MaxLiteralTreeElements + huffman.MaxDistTreeElements

// checkpointHeaderLen is the size, in bytes, of everything in a
// checkpoint record before the trailing window snapshot: input bit
// position (8) + partial input byte (1) + block type/bfinal (1) +
// uncompressed-block remaining length (4) + code-length arrays (320)
// + cumulative output bytes written (8) + buffered output byte count
// (4).
const checkpointHeaderLen = 8 + 1 + 1 + 4 + checkpointTreesLen + 8 + 4

// CheckpointPositions reports, alongside a serialized checkpoint
// record, where in the original input and output streams the
// checkpoint was taken: how many leading input bytes the caller may
// skip when resuming from the checkpoint, and how many output bytes
// had already been returned to callers by that point.
type CheckpointPositions struct {
	InputBytesToSkip        uint64
	OutputBytesAlreadyReturned uint64
}

// Checkpoint serializes the Inflater's current state into a
// self-contained record ending in a Fletcher-32 checksum, suitable for
// storing alongside the compressed stream's current input offset so
// decoding can later resume via RestoreFromCheckpoint. It returns
// false if the Inflater is not at a valid checkpoint boundary (it must
// be mid-stream, past any block header, and not already Finished or
// Errored — see spec.md section 4.5).
func (f *Inflater) Checkpoint() ([]byte, CheckpointPositions, bool) {
	if f.Finished() || f.Errored() {
		return nil, CheckpointPositions{}, false
	}
	if f.state != stateDecodeTop && f.state != stateDecodingUncompressed {
		return nil, CheckpointPositions{}, false
	}

	byteOffset := f.totalBitsConsumed / 8
	partialBits := f.totalBitsConsumed % 8

	skip := byteOffset
	var partialByte byte
	if partialBits != 0 {
		skip++
		remainingMask := uint32(1)<<(8-partialBits) - 1
		partialByte = byte(f.bitBuffer & remainingMask)
	}

	buffered := f.output.AvailableBytes()
	cumulativeOutput := f.totalBytesReturned + uint64(buffered)

	buf := make([]byte, checkpointHeaderLen)
	binary.LittleEndian.PutUint64(buf[0:8], f.totalBitsConsumed)
	buf[8] = partialByte
	buf[9] = byte(f.blockType)
	if f.bfinal != 0 {
		buf[9] |= 0x80
	}
	binary.LittleEndian.PutUint32(buf[10:14], uint32(f.blockLength))

	trees := buf[14 : 14+checkpointTreesLen]
	if f.blockType == blockDynamic {
		copy(trees[:huffman.MaxLiteralTreeElements], f.literalLengthTree.CodeLengths())
		copy(trees[huffman.MaxLiteralTreeElements:], f.distanceTree.CodeLengths())
	} else {
		for i := range trees {
			trees[i] = 0xFF
		}
	}

	binary.LittleEndian.PutUint64(buf[14+checkpointTreesLen:22+checkpointTreesLen], cumulativeOutput)
	binary.LittleEndian.PutUint32(buf[22+checkpointTreesLen:26+checkpointTreesLen], uint32(buffered))

	historyLen := int(cumulativeOutput)
	if historyLen > maxDeflate64Distance {
		historyLen = maxDeflate64Distance
	}
	if buffered > historyLen {
		historyLen = buffered
	}
	snapshot := f.output.Snapshot(historyLen)

	record := append(buf, snapshot...)
	checksum := fletcher32(record)
	var checksumBytes [4]byte
	binary.LittleEndian.PutUint32(checksumBytes[:], checksum)
	record = append(record, checksumBytes[:]...)

	return record, CheckpointPositions{
		InputBytesToSkip:           skip,
		OutputBytesAlreadyReturned: f.totalBytesReturned,
	}, true
}

// RestoreFromCheckpoint rebuilds the Inflater's entire state from a
// record previously produced by Checkpoint, validating the trailing
// checksum before mutating anything (a failed restore leaves the
// Inflater untouched). It returns the same CheckpointPositions the
// original checkpoint reported, so the caller can re-seek its
// compressed-input source and re-derive how much output it has
// already delivered.
func (f *Inflater) RestoreFromCheckpoint(record []byte) (CheckpointPositions, error) {
	if len(record) < checkpointHeaderLen+4 {
		return CheckpointPositions{}, ErrCheckpointCorrupt
	}
	body := record[:len(record)-4]
	want := binary.LittleEndian.Uint32(record[len(record)-4:])
	if fletcher32(body) != want {
		return CheckpointPositions{}, ErrCheckpointCorrupt
	}

	totalBitsConsumed := binary.LittleEndian.Uint64(body[0:8])
	partialByte := body[8]
	blockTypeByte := body[9]
	bt := blockType(blockTypeByte & 0x7F)
	bfinal := int32(0)
	if blockTypeByte&0x80 != 0 {
		bfinal = 1
	}
	if bt != blockUncompressed && bt != blockStatic && bt != blockDynamic {
		return CheckpointPositions{}, ErrCheckpointCorrupt
	}
	blockLength := binary.LittleEndian.Uint32(body[10:14])

	trees := body[14 : 14+checkpointTreesLen]
	var literalLengthTree, distanceTree *huffman.Decoder
	if bt == blockDynamic {
		lit, ok := huffman.New(trees[:huffman.MaxLiteralTreeElements])
		if !ok {
			return CheckpointPositions{}, ErrCheckpointCorrupt
		}
		dist, ok := huffman.New(trees[huffman.MaxLiteralTreeElements:])
		if !ok {
			return CheckpointPositions{}, ErrCheckpointCorrupt
		}
		literalLengthTree, distanceTree = lit, dist
	} else if bt == blockStatic {
		literalLengthTree = huffman.NewStaticLiteralLengthTree()
		distanceTree = huffman.NewStaticDistanceTree()
	}

	cumulativeOutput := binary.LittleEndian.Uint64(body[14+checkpointTreesLen : 22+checkpointTreesLen])
	buffered := binary.LittleEndian.Uint32(body[22+checkpointTreesLen : 26+checkpointTreesLen])
	if uint64(buffered) > cumulativeOutput {
		return CheckpointPositions{}, ErrCheckpointCorrupt
	}
	snapshot := body[26+checkpointTreesLen:]

	// Everything above has been validated; now mutate.
	f.totalBitsConsumed = totalBitsConsumed
	if partialBits := totalBitsConsumed % 8; partialBits != 0 {
		f.bitBuffer = uint32(partialByte)
		f.bitCount = uint(8 - partialBits)
	} else {
		f.bitBuffer = 0
		f.bitCount = 0
	}
	f.bfinal = bfinal
	f.blockType = bt
	f.blockLength = int(blockLength)
	f.literalLengthTree = literalLengthTree
	f.distanceTree = distanceTree
	if bt == blockUncompressed {
		f.state = stateDecodingUncompressed
	} else {
		f.state = stateDecodeTop
	}

	f.output = window.New()
	f.output.Restore(snapshot, int(buffered))

	f.totalBytesReturned = cumulativeOutput - uint64(buffered)
	f.currentInflatedCount = f.totalBytesReturned
	f.err = nil

	byteOffset := totalBitsConsumed / 8
	skip := byteOffset
	if totalBitsConsumed%8 != 0 {
		skip++
	}
	return CheckpointPositions{
		InputBytesToSkip:           skip,
		OutputBytesAlreadyReturned: f.totalBytesReturned,
	}, nil
}

// fletcher32 computes a byte-wise Fletcher-32 checksum: a and b each
// accumulate with 32-bit wraparound, with no periodic modulus
// reduction beyond the final 16-bit truncation when packing the two
// halves together. Grounded on fletcher32_checksum in
// original_source/tests/checkpoint.rs, the one place in the retrieved
// corpus that pins down this algorithm's exact behavior.
func fletcher32(data []byte) uint32 {
	var a, b uint32
	for _, c := range data {
		a += uint32(c)
		b += a
	}
	return (b << 16) | (a & 0xFFFF)
}
