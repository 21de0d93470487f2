// Package bitio implements the LSB-first bit reader used by the
// deflate64 block decoder.
//
// Bits are stored in bytes from the least significant bit to the most
// significant bit, per RFC 1951 section 3.1.1. Bits are therefore
// dropped from the bottom of the accumulator with a right shift, and
// new bytes are appended to the top of the accumulator with a left
// shift — the same discipline as the bit accumulator in
// JoshVarga/blast's bits() helper, generalized into a struct that
// borrows a byte slice for the duration of a single decode call
// instead of pulling from an io.Reader.
package bitio

// Reader holds a borrowed input slice and a 32-bit bit accumulator.
// The low Count bits of buffer are valid; higher bits are always zero.
//
// A Reader is only valid for the duration of a single Inflate call: it
// borrows the caller's input slice, and its residual accumulator state
// (buffer/count) must be copied back into the owning Inflater when the
// call returns, so that the next call can pick up exactly where this
// one left off.
type Reader struct {
	buf    []byte
	index  int
	buffer uint32
	count  uint
}

// New wraps buf for reading, seeded with a bit accumulator left over
// from a previous call (buffer/count may both be zero for a fresh
// stream).
func New(buf []byte, buffer uint32, count uint) *Reader {
	return &Reader{buf: buf, buffer: buffer, count: count}
}

// Buffer and Count expose the residual accumulator so the caller can
// persist it back into the owning Inflater at the end of a call.
func (r *Reader) Buffer() uint32 { return r.buffer }
func (r *Reader) Count() uint    { return r.count }

// ReadBytes reports how many whole bytes have been pulled out of the
// underlying slice so far (monotonic for the lifetime of this Reader).
func (r *Reader) ReadBytes() int { return r.index }

// NeedsInput reports whether the underlying slice is exhausted.
func (r *Reader) NeedsInput() bool { return r.index >= len(r.buf) }

// AvailableBits reports how many valid bits remain in the accumulator.
func (r *Reader) AvailableBits() int { return int(r.count) }

// AvailableBytes estimates the number of whole bytes of input
// remaining: the unread tail of the slice plus whatever whole bytes
// are parked in the bit accumulator.
//
// The original C#/Rust implementation computes this as
// buffer.len() + bitsInBuffer/4, which is an arithmetic bug (it should
// be a division by 8, one bit accumulator byte holding 8 bits, not 4).
// We compute the corrected value here; see spec.md's Open Question.
func (r *Reader) AvailableBytes() int {
	return (len(r.buf) - r.index) + int(r.count)/8
}

func (r *Reader) pullByte() bool {
	if r.NeedsInput() {
		return false
	}
	r.buffer |= uint32(r.buf[r.index]) << r.count
	r.index++
	r.count += 8
	return true
}

// EnsureBitsAvailable raises Count to at least n (1 <= n <= 16) by
// pulling up to two bytes from the underlying slice. It returns false
// only when the slice is exhausted before enough bits were loaded.
func (r *Reader) EnsureBitsAvailable(n uint) bool {
	if r.count < n {
		if !r.pullByte() {
			return false
		}
		if r.count < n {
			if !r.pullByte() {
				return false
			}
		}
	}
	return true
}

// TryLoad16Bits attempts to raise Count to at least 16 by pulling up
// to two bytes, and returns the accumulator's current value. The
// caller must only interpret the low Count bits of the result.
func (r *Reader) TryLoad16Bits() uint32 {
	switch {
	case r.count < 8:
		r.pullByte()
		r.pullByte()
	case r.count < 16:
		r.pullByte()
	}
	return r.buffer
}

// GetBits consumes and returns the low n bits (1 <= n <= 16) of the
// accumulator, pulling more input as needed. It returns -1 if the
// underlying slice is exhausted before n bits could be loaded.
func (r *Reader) GetBits(n uint) int32 {
	if !r.EnsureBitsAvailable(n) {
		return -1
	}
	mask := uint32(1)<<n - 1
	result := r.buffer & mask
	r.buffer >>= n
	r.count -= n
	return int32(result)
}

// SkipBits consumes n bits without returning them. The caller must
// have already ensured n bits are available.
func (r *Reader) SkipBits(n uint) {
	r.buffer >>= n
	r.count -= n
}

// SkipToByteBoundary drops the partial byte currently in the
// accumulator, leaving Count a multiple of 8.
func (r *Reader) SkipToByteBoundary() {
	drop := r.count % 8
	r.buffer >>= drop
	r.count -= drop
}

// CopyTo drains whole bytes from the accumulator first (the
// accumulator must already be byte-aligned — call
// SkipToByteBoundary first if it isn't), then block-copies directly
// from the underlying slice. It returns the number of bytes written.
func (r *Reader) CopyTo(dst []byte) int {
	written := 0
	for r.count > 0 && written < len(dst) {
		dst[written] = byte(r.buffer)
		r.buffer >>= 8
		r.count -= 8
		written++
	}
	if written == len(dst) {
		return written
	}
	n := copy(dst[written:], r.buf[r.index:])
	r.index += n
	return written + n
}
