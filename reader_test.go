package deflate64_test

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/anthropic-go-student/deflate64"
)

func TestReaderSmallBufferReadsEventuallyDrainEverything(t *testing.T) {
	r := deflate64.NewReader(bytes.NewReader(staticZerosStream))
	var out []byte
	buf := make([]byte, 4)
	for {
		n, err := r.Read(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
	}
	if len(out) != 131073 {
		t.Fatalf("got %d bytes, want 131073", len(out))
	}
}

func TestReaderSizeStopsAtDeclaredLength(t *testing.T) {
	r := deflate64.NewReaderSize(bytes.NewReader(staticZerosStream), 100)
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(out) != 100 {
		t.Fatalf("got %d bytes, want 100", len(out))
	}
}

func TestReaderPropagatesDataError(t *testing.T) {
	r := deflate64.NewReader(bytes.NewReader([]byte{0x07}))
	_, err := io.ReadAll(r)
	if err == nil {
		t.Fatal("expected an error for an invalid block type")
	}
	if !errors.Is(err, deflate64.ErrInvalidBlockType) {
		t.Fatalf("got %v, want an error wrapping ErrInvalidBlockType", err)
	}
}

func TestReaderCloseIsANoOp(t *testing.T) {
	r := deflate64.NewReader(bytes.NewReader(staticZerosStream))
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestReaderUnexpectedEOFOnTruncatedStream(t *testing.T) {
	// A single BFINAL=0, BTYPE=10 (dynamic block) bit pattern with
	// nothing following: the stream is truncated before the dynamic
	// header can be fully read.
	r := deflate64.NewReader(bytes.NewReader([]byte{0x04}))
	_, err := io.ReadAll(r)
	if err == nil {
		t.Fatal("expected an error on a truncated stream")
	}
}
