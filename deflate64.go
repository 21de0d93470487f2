/*
Package deflate64 implements reading of the Deflate64 bitstream
format — Microsoft's widened variant of RFC 1951 Deflate used inside
ZIP entries whose declared compression method is 9.

The implementation provides functionality that decompresses during
reading.

For example, to read a raw Deflate64 stream from a buffer:

	r := deflate64.NewReader(&b)
	io.Copy(os.Stdout, r)
	r.Close()

For resumable, call-by-call decoding (no blocking I/O, callers manage
their own input/output slices), use Inflater directly.
*/
package deflate64

/*
 * Adapted to Go from anatawa12/deflate64-rs, which is itself a Rust
 * port of corefx's ZLibNative/Inflater managed fallback
 * (System.IO.Compression.DeflateManaged), generalized here the way
 * JoshVarga/blast generalizes Mark Adler's blast.c: a free-standing
 * struct holding all decode state plus bit-level helper methods, with
 * a package-level driving loop instead of a class hierarchy.
 *
 * Deflate64 widens RFC 1951 Deflate as follows:
 *   - the back-reference window grows from 32 KiB to 64 KiB
 *   - length code 285 takes 16 extra bits (lengths up to 65536)
 *     instead of 0 extra bits (length fixed at 258)
 *   - the distance alphabet grows from 30 to 32 codes, with the two
 *     new codes taking 14 extra bits (distances up to 65538)
 */

import "errors"

// Sentinel errors covering the dataError taxonomy. Inflate itself
// never returns one of these directly (it reports InflateResult.DataError),
// but Inflater.Err returns the specific cause once an inflater is
// poisoned, the way a caller might want to log *why* decoding failed.
var (
	ErrInvalidBlockType          = errors.New("deflate64: invalid block type")
	ErrInvalidHuffmanCode        = errors.New("deflate64: invalid or over-subscribed huffman code")
	ErrInvalidCodeLength         = errors.New("deflate64: code length zero for a decoded symbol")
	ErrInvalidUncompressedLength = errors.New("deflate64: uncompressed block length does not match its complement")
	ErrInvalidLengthDistance     = errors.New("deflate64: length/distance pair exceeds the format maximum")
	ErrMissingEndOfBlockCode     = errors.New("deflate64: literal/length tree has no end-of-block code")
	ErrInvalidRepeatCode         = errors.New("deflate64: repeat code used at an invalid position or overflowed the code array")
	ErrCheckpointCorrupt         = errors.New("deflate64: checkpoint record failed its integrity check")
)

// blockType is the 2-bit BTYPE field of a Deflate block header.
type blockType uint8

const (
	blockUncompressed blockType = 0
	blockStatic       blockType = 1
	blockDynamic      blockType = 2
)

// inflaterState names every point at which decode() may suspend,
// mirroring InflaterState in original_source/src/inflater_managed.rs
// (itself modeled on corefx's InflaterState enum) one for one, so that
// the state machine is resumable at exactly the granularity spec.md
// section 4.4 requires.
type inflaterState int

const (
	stateReadingBFinal inflaterState = iota
	stateReadingBType

	stateReadingNumLitCodes
	stateReadingNumDistCodes
	stateReadingNumCodeLengthCodes
	stateReadingCodeLengthCodes
	stateReadingTreeCodesBefore
	stateReadingTreeCodesAfter

	stateDecodeTop
	stateHaveInitialLength
	stateHaveFullLength
	stateHaveDistCode

	stateUncompressedAligning
	stateUncompressedByte1
	stateUncompressedByte2
	stateUncompressedByte3
	stateUncompressedByte4
	stateDecodingUncompressed

	stateDone
	stateDataErrored
)

// Static tables from RFC 1951 section 3.2.5, widened for Deflate64
// per spec.md section 6 (wire format).

// extraLengthBits gives the number of extra bits following length
// codes 257-285. Deflate64 widens code 285 (index 28) from 0 to 16
// extra bits.
var extraLengthBits = [29]uint{
	0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2, 3, 3,
	3, 3, 4, 4, 4, 4, 5, 5, 5, 5, 16,
}

// lengthBase gives the base length for length codes 257-285; the real
// length is lengthBase[code-257] + the value of the code's extra
// bits. Deflate64's code 285 uses base 3 with 16 extra bits (lengths
// 3..65538 are representable, though only up to 65536 is ever legal;
// decodeBlock rejects a longer length as a data error).
var lengthBase = [29]uint{
	3, 4, 5, 6, 7, 8, 9, 10, 11, 13, 15, 17, 19, 23, 27, 31, 35, 43, 51,
	59, 67, 83, 99, 115, 131, 163, 195, 227, 3,
}

// distanceBasePosition gives the base distance for distance codes
// 0-31; the real distance is distanceBasePosition[code] + the value
// of the code's extra bits. Codes 30 and 31 are Deflate64's extension
// beyond classic Deflate's 30-code alphabet.
var distanceBasePosition = [32]uint{
	1, 2, 3, 4, 5, 7, 9, 13, 17, 25, 33, 49, 65, 97, 129, 193, 257, 385, 513,
	769, 1025, 1537, 2049, 3073, 4097, 6145, 8193, 12289, 16385, 24577, 32769, 49153,
}

// codeOrder gives the order in which the dynamic block header's
// code-length alphabet code lengths are transmitted.
var codeOrder = [19]uint8{16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15}

// extraDistanceBits gives the number of extra bits following each of
// the 32 Deflate64 distance codes. The first 30 entries are RFC 1951's
// classic Deflate table; codes 30 and 31 are Deflate64's extension,
// each taking 14 extra bits.
var extraDistanceBits = [32]uint{
	0, 0, 0, 0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6,
	7, 7, 8, 8, 9, 9, 10, 10, 11, 11, 12, 12, 13, 13, 14, 14,
}

// staticDistanceTreeTable maps a 5-bit distance code read directly
// from a static block (no Huffman tree needed, since all 32 codes are
// uniform length) to its bit-reversed value.
var staticDistanceTreeTable = [32]byte{
	0x00, 0x10, 0x08, 0x18, 0x04, 0x14, 0x0c, 0x1c, 0x02, 0x12, 0x0a, 0x1a,
	0x06, 0x16, 0x0e, 0x1e, 0x01, 0x11, 0x09, 0x19, 0x05, 0x15, 0x0d, 0x1d,
	0x03, 0x13, 0x0b, 0x1b, 0x07, 0x17, 0x0f, 0x1f,
}

// InflateResult reports the outcome of a single Inflate call.
type InflateResult struct {
	// BytesConsumed is the number of bytes consumed from the input
	// slice; always <= len(input).
	BytesConsumed int
	// BytesWritten is the number of bytes written to the output
	// slice; always <= len(output).
	BytesWritten int
	// DataError is true once the bitstream has been found malformed;
	// the Inflater is permanently poisoned and every subsequent call
	// returns a zeroed InflateResult with DataError set.
	DataError bool
}
