package deflate64

import (
	"github.com/anthropic-go-student/deflate64/internal/bitio"
	"github.com/anthropic-go-student/deflate64/internal/huffman"
	"github.com/anthropic-go-student/deflate64/internal/window"
)

// maxDeflate64Length and maxDeflate64Distance are the format maxima a
// well-formed Deflate64 length/distance pair must never exceed.
const (
	maxDeflate64Length   = 65536
	maxDeflate64Distance = 65538
)

// Inflater is a resumable, call-by-call Deflate64 decoder. All of its
// decode state lives in plain fields (no goroutines, no blocking I/O)
// so that a call to Inflate can suspend at any bit boundary and be
// resumed exactly by the next call, mirroring how JoshVarga/blast's
// `state` struct (reader.go) keeps the bit accumulator and output
// cursor as fields rather than stack locals — generalized here so
// that suspension can happen mid-stream instead of only at EOF.
type Inflater struct {
	output *window.Window

	// residual bit accumulator, carried across Inflate calls.
	bitBuffer uint32
	bitCount  uint

	literalLengthTree *huffman.Decoder
	distanceTree      *huffman.Decoder
	codeLengthTree    *huffman.Decoder

	state     inflaterState
	bfinal    int32
	blockType blockType

	// uncompressed block
	blockLengthBuffer [4]byte
	blockLength       int

	// compressed block
	length       int
	distanceCode int32
	extraBits    uint

	loopCounter            int32
	literalLengthCodeCount int32
	distanceCodeCount      int32
	codeLengthCodeCount    int32
	codeArraySize          int32
	lengthCode             int32

	codeList               [huffman.MaxLiteralTreeElements + huffman.MaxDistTreeElements]byte
	codeLengthTreeLengths  [huffman.NumberOfCodeLengthTreeElements]byte
	literalLengthTreeLengths [huffman.MaxLiteralTreeElements]byte
	distanceTreeLengths      [huffman.MaxDistTreeElements]byte

	deflate64 bool // always true and never read: length code 285 is always decoded with Deflate64's 16 extra bits

	hasUncompressedSize bool
	uncompressedSize    uint64
	currentInflatedCount uint64

	// cumulative counters, persisted across calls for checkpointing
	// (section 4.5/6 of spec.md); see Checkpoint/CheckpointPositions.
	totalBitsConsumed  uint64
	totalBytesReturned uint64

	inputFinishedFlag bool
	err               error
}

// NewInflater returns an Inflater with no declared uncompressed size:
// it will keep producing output for as long as the bitstream and the
// caller's output buffer allow.
func NewInflater() *Inflater {
	return &Inflater{
		output:    window.New(),
		state:     stateReadingBFinal,
		deflate64: true,
	}
}

// NewInflaterWithUncompressedSize returns an Inflater that stops
// producing output (reporting Finished) after exactly n bytes, even if
// the bitstream would naturally produce more.
func NewInflaterWithUncompressedSize(n uint64) *Inflater {
	f := NewInflater()
	f.hasUncompressedSize = true
	f.uncompressedSize = n
	return f
}

// Finished reports whether decoding has reached its end and all
// output has been drained to the caller.
func (f *Inflater) Finished() bool {
	return f.state == stateDone && f.output.AvailableBytes() == 0
}

// InputFinished reports whether the bitstream's final block has been
// fully consumed, even if output remains buffered in the window.
func (f *Inflater) InputFinished() bool {
	return f.state == stateDone || f.inputFinishedFlag
}

// errored is tracked via the state; Errored reports whether the
// stream has been permanently poisoned by a data error.
func (f *Inflater) Errored() bool { return f.state == stateDataErrored }

// Err returns the specific cause of a data error, or nil if the
// inflater has not errored.
func (f *Inflater) Err() error { return f.err }

// AvailableOutput reports how many decoded bytes are buffered in the
// window, not yet drained to a caller.
func (f *Inflater) AvailableOutput() int { return f.output.AvailableBytes() }

func (f *Inflater) fail(err error) bool {
	f.state = stateDataErrored
	f.err = err
	return true
}

// Inflate decodes as much of input as is needed to either fill output
// completely or exhaust input, draining previously buffered output
// first. All decoder state persists across calls: a caller may split
// a single bitstream across any number of Inflate calls with any
// input/output chunk sizes and get byte-identical results.
func (f *Inflater) Inflate(input []byte, output []byte) InflateResult {
	var result InflateResult
	r := bitio.New(input, f.bitBuffer, f.bitCount)

	for {
		copied := 0
		if !f.hasUncompressedSize {
			copied = f.output.CopyTo(output)
		} else if f.uncompressedSize > f.currentInflatedCount {
			limit := f.uncompressedSize - f.currentInflatedCount
			dst := output
			if uint64(len(dst)) > limit {
				dst = dst[:limit]
			}
			copied = f.output.CopyTo(dst)
			f.currentInflatedCount += uint64(copied)
		} else {
			f.state = stateDone
			f.output.ClearBytesUsed()
		}

		if copied > 0 {
			output = output[copied:]
			f.totalBytesReturned += uint64(copied)
			result.BytesWritten += copied
		}

		if len(output) == 0 {
			break
		}
		if f.Finished() || f.Errored() {
			break
		}
		if !f.decode(r) {
			break
		}
	}

	f.persistBitState(r)
	result.BytesConsumed = r.ReadBytes()
	result.DataError = f.Errored()
	if result.DataError {
		result.BytesConsumed = 0
		result.BytesWritten = 0
	}
	return result
}

// persistBitState folds r's residual accumulator and the bits it
// consumed this call back into the Inflater, so the next call (and
// Checkpoint) can pick up exactly where this one left off.
func (f *Inflater) persistBitState(r *bitio.Reader) {
	bitsBefore := uint64(f.bitCount)
	pulled := uint64(r.ReadBytes())
	bitsAfter := uint64(r.AvailableBits())
	f.totalBitsConsumed += bitsBefore + pulled*8 - bitsAfter
	f.bitBuffer = r.Buffer()
	f.bitCount = uint(r.AvailableBits())
}

// decode runs one step of the master state machine and reports
// whether progress was made (false means more input is needed before
// decode can do anything further this call).
func (f *Inflater) decode(r *bitio.Reader) bool {
	if f.Finished() || f.Errored() {
		return true
	}

	if f.state == stateReadingBFinal {
		if !r.EnsureBitsAvailable(1) {
			return false
		}
		f.bfinal = r.GetBits(1)
		f.state = stateReadingBType
	}

	if f.state == stateReadingBType {
		if !r.EnsureBitsAvailable(2) {
			f.state = stateReadingBType
			return false
		}
		bt := r.GetBits(2)
		switch bt {
		case 0:
			f.blockType = blockUncompressed
			f.state = stateUncompressedAligning
		case 1:
			f.blockType = blockStatic
			f.literalLengthTree = huffman.NewStaticLiteralLengthTree()
			f.distanceTree = huffman.NewStaticDistanceTree()
			f.state = stateDecodeTop
		case 2:
			f.blockType = blockDynamic
			f.state = stateReadingNumLitCodes
		default:
			return f.fail(ErrInvalidBlockType)
		}
	}

	var result bool
	eob := false
	switch {
	case f.blockType == blockDynamic && f.state < stateDecodeTop:
		result = f.decodeDynamicBlockHeader(r)
	case f.blockType == blockUncompressed:
		result = f.decodeUncompressedBlock(r, &eob)
	default: // static, or dynamic past its header
		result = f.decodeBlock(r, &eob)
	}

	if eob && f.bfinal != 0 {
		f.state = stateDone
	}
	if eob {
		f.inputFinishedFlag = f.bfinal != 0
	}
	return result
}
