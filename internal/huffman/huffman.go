// Package huffman builds and decodes canonical Huffman codes for the
// deflate64 literal/length, distance, and code-length alphabets.
//
// The direct-lookup-table-plus-overflow-tree design generalizes the
// canonical-code construction in JoshVarga/blast's construct()/decode()
// (reader.go): both derive per-length base codes from a histogram of
// code lengths and walk bit-reversed codes to recover symbols, but this
// decoder adds a flat lookup table sized for the 288-symbol
// literal/length alphabet (blast's alphabet tops out at 256 symbols
// and length 13, small enough for its length-stepping decode loop
// alone) plus a secondary binary tree for codes longer than the table
// width, as required by spec.md section 4.2.
package huffman

import "github.com/anthropic-go-student/deflate64/internal/bitio"

const (
	// MaxLiteralTreeElements is the size of the combined
	// literal/length alphabet (0-255 literals, 256 end-of-block,
	// 257-285 length codes, with Deflate64 widening code 285's
	// extra-bit count but not the alphabet itself).
	MaxLiteralTreeElements = 288
	// MaxDistTreeElements is the size of the Deflate64 distance
	// alphabet.
	MaxDistTreeElements = 32
	// NumberOfCodeLengthTreeElements is the size of the code-length
	// alphabet used to Huffman-code the dynamic block header itself.
	NumberOfCodeLengthTreeElements = 19
	// EndOfBlockCode is the literal/length symbol marking the end of
	// a compressed block.
	EndOfBlockCode = 256

	maxTableBits = 9
)

// Decoder is a canonical Huffman code over at most MaxLiteralTreeElements
// symbols, built from a vector of per-symbol code lengths.
type Decoder struct {
	tableBits uint
	tableMask uint32

	table []int16 // size 1<<tableBits; >=0 terminal symbol, <0 -index into left/right
	left  []int16
	right []int16

	codeLengths []byte // one entry per symbol, 0 meaning unused
}

// New builds a Decoder from codeLengths, whose length must be exactly
// MaxLiteralTreeElements, MaxDistTreeElements, or
// NumberOfCodeLengthTreeElements. It returns false if the code set is
// over-subscribed (a code length implies more symbols than the
// alphabet permits at that length).
func New(codeLengths []byte) (*Decoder, bool) {
	tableBits := uint(7)
	if len(codeLengths) == MaxLiteralTreeElements {
		tableBits = 9
	}

	d := &Decoder{
		tableBits:   tableBits,
		tableMask:   1<<tableBits - 1,
		table:       make([]int16, 1<<tableBits),
		left:        make([]int16, 2*len(codeLengths)),
		right:       make([]int16, 2*len(codeLengths)),
		codeLengths: append([]byte(nil), codeLengths...),
	}
	if !d.createTable() {
		return nil, false
	}
	return d, true
}

// staticLiteralLengthLengths returns the fixed RFC-1951 code lengths
// for the static literal/length tree.
func staticLiteralLengthLengths() []byte {
	lengths := make([]byte, MaxLiteralTreeElements)
	fill := func(start, n int, v byte) {
		for i := 0; i < n; i++ {
			lengths[start+i] = v
		}
	}
	fill(0, 144, 8)
	fill(144, 112, 9)
	fill(256, 24, 7)
	fill(280, 8, 8)
	return lengths
}

// staticDistanceLengths returns the fixed code lengths for the static
// distance tree: every one of the 32 Deflate64 distance codes is a
// uniform 5 bits.
func staticDistanceLengths() []byte {
	lengths := make([]byte, MaxDistTreeElements)
	for i := range lengths {
		lengths[i] = 5
	}
	return lengths
}

// CodeLengths returns the per-symbol code lengths this Decoder was
// built from, for use by the checkpoint facility when serializing a
// dynamic block's trees. Callers must not modify the returned slice.
func (d *Decoder) CodeLengths() []byte { return d.codeLengths }

// NewStaticLiteralLengthTree builds the fixed RFC-1951 literal/length
// tree used by static (BTYPE=01) blocks.
func NewStaticLiteralLengthTree() *Decoder {
	d, ok := New(staticLiteralLengthLengths())
	if !ok {
		panic("huffman: static literal/length tree is malformed")
	}
	return d
}

// NewStaticDistanceTree builds the fixed distance tree used by static
// blocks.
func NewStaticDistanceTree() *Decoder {
	d, ok := New(staticDistanceLengths())
	if !ok {
		panic("huffman: static distance tree is malformed")
	}
	return d
}

func bitReverse(code uint32, length uint) uint32 {
	var reversed uint32
	for i := uint(0); i < length; i++ {
		reversed |= code & 1
		reversed <<= 1
		code >>= 1
	}
	return reversed >> 1
}

// calculateCodes derives the canonical, bit-reversed code for each
// symbol from its code length, following the standard
// histogram -> nextCode -> assign algorithm from RFC 1951 section
// 3.2.2, generalizing blast's construct() (which performs the
// equivalent count/offset bookkeeping but does not need bit-reversed
// codes because it walks bit-by-bit instead of building a table).
func (d *Decoder) calculateCodes() []uint32 {
	var bitLengthCount [17]uint32
	for _, length := range d.codeLengths {
		bitLengthCount[length]++
	}
	bitLengthCount[0] = 0

	var nextCode [17]uint32
	var code uint32
	for bits := 1; bits <= 16; bits++ {
		code = (code + bitLengthCount[bits-1]) << 1
		nextCode[bits] = code
	}

	codes := make([]uint32, len(d.codeLengths))
	for symbol, length := range d.codeLengths {
		if length > 0 {
			codes[symbol] = bitReverse(nextCode[length], uint(length))
			nextCode[length]++
		}
	}
	return codes
}

// createTable builds the flat lookup table and, for codes longer than
// tableBits, the left/right overflow tree. It returns false on an
// over-subscribed code.
func (d *Decoder) createTable() bool {
	codes := d.calculateCodes()
	avail := int16(len(d.codeLengths))

	// Reject lengths that claim more than the whole code space. The
	// bit-reversed codes cannot show this on their own, since bitReverse
	// keeps only the low length bits of each code.
	var lengthCount [17]int
	for _, length := range d.codeLengths {
		lengthCount[length]++
	}
	left := 1
	for bits := 1; bits <= 16; bits++ {
		left = left<<1 - lengthCount[bits]
		if left < 0 {
			return false // over-subscribed
		}
	}

	for symbol, length := range d.codeLengths {
		if length == 0 {
			continue
		}
		start := codes[symbol]
		ulen := uint(length)

		if ulen <= d.tableBits {
			increment := uint32(1) << ulen
			if start >= increment {
				return false // over-subscribed
			}
			locs := 1 << (d.tableBits - ulen)
			for i := 0; i < locs; i++ {
				d.table[start] = int16(symbol)
				start += increment
			}
			continue
		}

		overflowBits := ulen - d.tableBits
		codeBitMask := uint32(1) << d.tableBits

		index := start & d.tableMask
		array := d.table
		for {
			value := array[index]
			if value == 0 {
				array[index] = -avail
				value = -avail
				avail++
			}
			if value > 0 {
				return false // over-subscribed
			}
			if start&codeBitMask == 0 {
				array = d.left
			} else {
				array = d.right
			}
			index = uint32(-value)

			codeBitMask <<= 1
			overflowBits--
			if overflowBits == 0 {
				break
			}
		}
		array[index] = int16(symbol)
	}
	return true
}

// Status is the three-way outcome of a symbol decode.
type Status int

const (
	// OK means GetNextSymbol produced a valid symbol and consumed its bits.
	OK Status = iota
	// NeedInput means too few bits were available to resolve a
	// symbol; the caller must not advance its own state and should
	// retry on the next Inflate call once more input arrives.
	NeedInput
	// Invalid means a full code was matched but its declared code
	// length is zero, which can only happen for an over-subscribed
	// or otherwise malformed Huffman tree.
	Invalid
)

// GetNextSymbol decodes the next symbol from r.
func (d *Decoder) GetNextSymbol(r *bitio.Reader) (int32, Status) {
	bitBuffer := r.TryLoad16Bits()
	if r.AvailableBits() == 0 {
		return 0, NeedInput
	}

	symbol := d.table[bitBuffer&d.tableMask]
	if symbol < 0 {
		mask := uint32(1) << d.tableBits
		for {
			symbol = -symbol
			if bitBuffer&mask == 0 {
				symbol = d.left[symbol]
			} else {
				symbol = d.right[symbol]
			}
			mask <<= 1
			if symbol >= 0 {
				break
			}
		}
	}

	codeLength := int(d.codeLengths[symbol])
	if codeLength <= 0 {
		return 0, Invalid
	}
	// If this code is longer than the bits we had buffered, we may
	// have walked the tree to a false match caused by missing bits;
	// the length mismatch against availableBits is how that is
	// detected, per spec.md section 4.2 step 5.
	if codeLength > r.AvailableBits() {
		return 0, NeedInput
	}
	r.SkipBits(uint(codeLength))
	return int32(symbol), OK
}
