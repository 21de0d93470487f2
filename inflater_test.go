package deflate64_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/anthropic-go-student/deflate64"
)

// staticZerosStream is a single static (BTYPE=01) final block encoding
// one leading zero literal followed by two length-65536/distance-1
// back-references, producing 131073 zero bytes in total. Taken from spec.md's
// first seed scenario, itself grounded on
// original_source/tests/inflater_managed.rs's not_finished_until_drained
// test vector.
var staticZerosStream = []byte{0x63, 0x18, 0xED, 0xFF, 0x07, 0xA3, 0xFD, 0xFF, 0x00, 0x00}

func TestInflateStaticBlockProducesExpectedZeroRun(t *testing.T) {
	inf := deflate64.NewInflater()
	out := make([]byte, 200000)

	result := inf.Inflate(staticZerosStream, out)
	if result.DataError {
		t.Fatalf("unexpected data error: %v", inf.Err())
	}
	if result.BytesWritten != 131073 {
		t.Fatalf("got %d bytes, want 131073", result.BytesWritten)
	}
	for i, b := range out[:result.BytesWritten] {
		if b != 0 {
			t.Fatalf("byte %d: got %#x, want 0", i, b)
		}
	}
	if !inf.InputFinished() {
		t.Error("expected input finished")
	}
	if !inf.Finished() {
		t.Error("expected inflater finished once all output is drained")
	}
}

// TestInflateOneByteAtATime exercises resumability across the
// narrowest possible input and output chunking: one byte of
// compressed input and one byte of output room per call.
func TestInflateOneByteAtATime(t *testing.T) {
	inf := deflate64.NewInflater()
	var decoded []byte
	out := make([]byte, 1)

	for i := 0; i <= len(staticZerosStream); i++ {
		var chunk []byte
		if i < len(staticZerosStream) {
			chunk = staticZerosStream[i : i+1]
		}
		for {
			result := inf.Inflate(chunk, out)
			if result.DataError {
				t.Fatalf("unexpected data error: %v", inf.Err())
			}
			decoded = append(decoded, out[:result.BytesWritten]...)
			if result.BytesConsumed == 0 && result.BytesWritten == 0 {
				break
			}
			chunk = chunk[result.BytesConsumed:]
		}
		if inf.Finished() {
			break
		}
	}

	if len(decoded) != 131073 {
		t.Fatalf("got %d bytes, want 131073", len(decoded))
	}
	for i, b := range decoded {
		if b != 0 {
			t.Fatalf("byte %d: got %#x, want 0", i, b)
		}
	}
}

func TestReaderDecodesStaticBlock(t *testing.T) {
	r := deflate64.NewReader(bytes.NewReader(staticZerosStream))
	defer r.Close()

	decoded, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(decoded) != 131073 {
		t.Fatalf("got %d bytes, want 131073", len(decoded))
	}
}

func TestInflateRejectsInvalidBlockType(t *testing.T) {
	inf := deflate64.NewInflater()
	// BFINAL=1, BTYPE=11 (reserved/invalid): 0b111 in the low 3 bits.
	result := inf.Inflate([]byte{0x07}, make([]byte, 16))
	if !result.DataError {
		t.Fatal("expected a data error for an invalid block type")
	}
	if inf.Err() != deflate64.ErrInvalidBlockType {
		t.Fatalf("got error %v, want ErrInvalidBlockType", inf.Err())
	}
	if !inf.Errored() {
		t.Error("expected Errored() to report true")
	}
}

func TestInflateWithUncompressedSizeStopsEarly(t *testing.T) {
	inf := deflate64.NewInflaterWithUncompressedSize(10)
	out := make([]byte, 200000)

	result := inf.Inflate(staticZerosStream, out)
	if result.DataError {
		t.Fatalf("unexpected data error: %v", inf.Err())
	}
	if result.BytesWritten != 10 {
		t.Fatalf("got %d bytes, want 10", result.BytesWritten)
	}
	if !inf.Finished() {
		t.Error("expected Finished() once the declared size is reached")
	}
}
