package deflate64

import (
	"fmt"
	"io"
)

// inputChunkSize is how much compressed data Reader pulls from its
// underlying io.Reader at a time.
const inputChunkSize = 32 * 1024

// Reader adapts an Inflater to the io.Reader interface for callers
// that just want a blocking decompressing stream, generalizing
// JoshVarga/blast's Reader (reader.go's NewReader/blast/Read): the
// teacher eagerly decompresses its entire input into a bytes.Buffer up
// front because blast.c's format caps out at a few hundred KB of
// dictionary; Deflate64 streams (ZIP entries, archive members) can run
// to gigabytes, so this Reader instead pulls fixed-size input chunks
// on demand and feeds them through Inflater incrementally.
type Reader struct {
	r   io.Reader
	inf *Inflater

	in    []byte
	inPos int
	inLen int
}

// NewReader returns a Reader that decompresses r's Deflate64 stream as
// it is read, with no declared uncompressed size.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r, inf: NewInflater(), in: make([]byte, inputChunkSize)}
}

// NewReaderSize returns a Reader that decompresses r, stopping after
// exactly uncompressedSize bytes even if the stream would naturally
// produce more.
func NewReaderSize(r io.Reader, uncompressedSize uint64) *Reader {
	return &Reader{r: r, inf: NewInflaterWithUncompressedSize(uncompressedSize), in: make([]byte, inputChunkSize)}
}

// Read implements io.Reader.
func (z *Reader) Read(p []byte) (int, error) {
	if z.inf.Finished() {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}

	for {
		result := z.inf.Inflate(z.in[z.inPos:z.inLen], p)
		z.inPos += result.BytesConsumed
		if result.DataError {
			return result.BytesWritten, fmt.Errorf("deflate64: %w", z.inf.Err())
		}
		if result.BytesWritten > 0 {
			return result.BytesWritten, nil
		}
		if z.inf.Finished() {
			return 0, io.EOF
		}
		if z.inPos < z.inLen {
			// Made no progress on a non-empty input chunk without
			// filling p or finishing: p must be too small to hold a
			// single decoded unit's worth of state-machine progress,
			// which cannot happen since every write advances by at
			// least one byte. Treat defensively as a stall and report
			// io.ErrNoProgress.
			return 0, io.ErrNoProgress
		}

		n, err := z.r.Read(z.in)
		z.inPos, z.inLen = 0, n
		if n == 0 {
			if err == nil {
				err = io.ErrUnexpectedEOF
			} else if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return 0, err
		}
	}
}

// Close releases the Reader. The underlying io.Reader is not closed,
// matching JoshVarga/blast's Close (a no-op, since that Reader never
// owns its source either).
func (z *Reader) Close() error { return nil }
