// Package window implements the 256 KiB circular output buffer the
// deflate64 inflater drains into the caller's output slice.
//
// The replication loop in WriteLengthDistance generalizes the
// inline back-reference copy in JoshVarga/blast's decompress()
// (reader.go, the `to`/`from` byte-by-byte loop with wraparound at
// maxWindowSize): the teacher's window is a 4 KiB array sized for
// DCL's maximum 518-byte match, while Deflate64 allows matches up to
// 65536 bytes at distances up to 65538, so the window here is sized
// to 2^18 bytes (see Size) and the copy gets a wrap-free fast path for
// the common case, per spec.md section 4.3.
package window

import "github.com/anthropic-go-student/deflate64/internal/bitio"

const (
	// Size is the window capacity: large enough to hold the longest
	// possible Deflate64 back-reference (distance 65538, length
	// 65536) plus a full unflushed block without overwriting
	// referenced history.
	Size = 1 << 18
	mask = Size - 1
)

// Window is a fixed circular buffer of decompressed bytes awaiting
// drain to the caller, plus enough trailing history to satisfy any
// legal Deflate64 back-reference.
type Window struct {
	buf       [Size]byte
	end       int
	bytesUsed int
}

// New returns an empty Window.
func New() *Window {
	return &Window{}
}

// ClearBytesUsed discards the buffered-but-undrained byte count
// without touching buf, used when a caller-declared uncompressed size
// has been reached and any further buffered bytes must be dropped.
func (w *Window) ClearBytesUsed() {
	w.bytesUsed = 0
}

// Write appends a single literal byte. The caller guarantees
// bytesUsed < Size before calling.
func (w *Window) Write(b byte) {
	w.buf[w.end] = b
	w.end = (w.end + 1) & mask
	w.bytesUsed++
}

// WriteLengthDistance replicates a length/distance back-reference:
// copy length bytes from distance bytes back in the (logical, still
// circular) output stream to the current write position. Overlapping
// copies (distance < length) are handled correctly because the copy
// proceeds strictly forward one byte at a time in that case — e.g.
// length=5, distance=2 after "XY" produces "XYXYX".
//
// The caller guarantees 1 <= distance <= Size and
// bytesUsed+length <= Size.
func (w *Window) WriteLengthDistance(length, distance int) {
	w.bytesUsed += length
	copyStart := (w.end - distance) & mask

	border := Size - length
	if copyStart <= border && w.end < border {
		if length <= distance {
			copy(w.buf[w.end:w.end+length], w.buf[copyStart:copyStart+length])
			w.end += length
		} else {
			// The referenced run overlaps the write position, so a
			// block copy would read bytes we haven't written yet;
			// replicate byte by byte instead.
			for length > 0 {
				length--
				w.buf[w.end] = w.buf[copyStart]
				w.end++
				copyStart++
			}
		}
		return
	}

	// Either endpoint would wrap the buffer: copy byte by byte with
	// masking.
	for length > 0 {
		length--
		w.buf[w.end] = w.buf[copyStart]
		w.end = (w.end + 1) & mask
		copyStart = (copyStart + 1) & mask
	}
}

// CopyFrom copies up to length bytes directly from r (an uncompressed
// block) into the window, handling wraparound at the write cursor. It
// returns the number of bytes actually copied, which may be less than
// length if either r or the window's free space is exhausted.
func (w *Window) CopyFrom(r *bitio.Reader, length int) int {
	if free := Size - w.bytesUsed; length > free {
		length = free
	}
	if avail := r.AvailableBytes(); length > avail {
		length = avail
	}

	tailLen := Size - w.end
	var copied int
	if length > tailLen {
		copied = r.CopyTo(w.buf[w.end : w.end+tailLen])
		if copied == tailLen {
			copied += r.CopyTo(w.buf[:length-tailLen])
		}
	} else {
		copied = r.CopyTo(w.buf[w.end : w.end+length])
	}

	w.end = (w.end + copied) & mask
	w.bytesUsed += copied
	return copied
}

// FreeBytes reports how much room remains before the window is full.
func (w *Window) FreeBytes() int { return Size - w.bytesUsed }

// AvailableBytes reports how many undrained bytes are buffered.
func (w *Window) AvailableBytes() int { return w.bytesUsed }

// CopyTo drains up to len(dst) buffered bytes, oldest first, into
// dst, handling wraparound. It returns the number of bytes copied.
func (w *Window) CopyTo(dst []byte) int {
	var copyEnd int
	if len(dst) > w.bytesUsed {
		copyEnd = w.end
		dst = dst[:w.bytesUsed]
	} else {
		copyEnd = (w.end - w.bytesUsed + len(dst)) & mask
	}

	copied := len(dst)
	if len(dst) > copyEnd {
		tailLen := len(dst) - copyEnd
		copy(dst[:tailLen], w.buf[Size-tailLen:])
		dst = dst[tailLen:][:copyEnd]
	}
	copy(dst, w.buf[copyEnd-len(dst):copyEnd])
	w.bytesUsed -= copied
	return copied
}

// Snapshot returns the most recent n buffered-or-already-drained bytes
// ending at the current write cursor, for use by the checkpoint
// facility. n must be <= Size.
func (w *Window) Snapshot(n int) []byte {
	if n > Size {
		n = Size
	}
	out := make([]byte, n)
	start := (w.end - n) & mask
	if start+n <= Size {
		copy(out, w.buf[start:start+n])
	} else {
		first := Size - start
		copy(out, w.buf[start:])
		copy(out[first:], w.buf[:n-first])
	}
	return out
}

// Restore seeds the window from a snapshot previously produced by
// Snapshot, placing its bytes as the most recently written history,
// and sets the count of undrained bytes to bytesUsed (which must be
// <= len(data)).
func (w *Window) Restore(data []byte, bytesUsed int) {
	n := len(data)
	if n > Size {
		data = data[n-Size:]
		n = Size
	}
	// Place the snapshot so it ends at logical position n (mod Size);
	// the remainder of the buffer (positions n..Size) stays zeroed,
	// which is fine since a back-reference can never legally reach
	// further than the snapshot already covers.
	copy(w.buf[:n], data)
	w.end = n & mask
	w.bytesUsed = bytesUsed
}
