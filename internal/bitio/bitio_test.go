package bitio_test

import (
	"testing"

	"github.com/anthropic-go-student/deflate64/internal/bitio"
)

func TestGetBitsLSBFirst(t *testing.T) {
	// 0b10110100 read LSB first as 3 bits, 3 bits, then the remaining
	// 2 bits: 100, 110, 10.
	r := bitio.New([]byte{0b10110100}, 0, 0)

	if v := r.GetBits(3); v != 0b100 {
		t.Fatalf("first 3 bits: got %b, want 100", v)
	}
	if v := r.GetBits(3); v != 0b110 {
		t.Fatalf("next 3 bits: got %b, want 110", v)
	}
	if v := r.GetBits(2); v != 0b10 {
		t.Fatalf("last 2 bits: got %b, want 10", v)
	}
}

func TestGetBitsAcrossByteBoundary(t *testing.T) {
	r := bitio.New([]byte{0xFF, 0x01}, 0, 0)
	if v := r.GetBits(9); v != 0x1FF {
		t.Fatalf("got %#x, want 0x1ff", v)
	}
}

func TestGetBitsReturnsNegativeOneOnExhaustion(t *testing.T) {
	r := bitio.New([]byte{0x01}, 0, 0)
	r.GetBits(8)
	if v := r.GetBits(1); v != -1 {
		t.Fatalf("got %d, want -1 once input is exhausted", v)
	}
}

func TestResumeFromResidualAccumulator(t *testing.T) {
	first := bitio.New([]byte{0b10110100}, 0, 0)
	first.GetBits(3)
	buffer, count := first.Buffer(), first.Count()

	second := bitio.New([]byte{0b00000001}, buffer, count)
	if v := second.GetBits(3); v != 0b110 {
		t.Fatalf("resumed read: got %b, want 110", v)
	}
}

func TestSkipToByteBoundary(t *testing.T) {
	r := bitio.New([]byte{0xFF, 0xAA}, 0, 0)
	r.GetBits(3)
	r.SkipToByteBoundary()
	if r.Count()%8 != 0 {
		t.Fatalf("count %d is not byte-aligned", r.Count())
	}
	if v := r.GetBits(8); v != 0xAA {
		t.Fatalf("got %#x, want 0xaa", v)
	}
}

func TestCopyToDrainsAccumulatorThenSlice(t *testing.T) {
	r := bitio.New([]byte{0xAA, 0xBB, 0xCC}, 0, 0)
	r.GetBits(8) // consumes 0xAA, nothing left buffered

	dst := make([]byte, 2)
	n := r.CopyTo(dst)
	if n != 2 || dst[0] != 0xBB || dst[1] != 0xCC {
		t.Fatalf("got %x (n=%d), want [bb cc] (n=2)", dst, n)
	}
}

func TestAvailableBytesUsesDivisionByEight(t *testing.T) {
	r := bitio.New([]byte{0x01, 0x02}, 0, 0)
	r.GetBits(3) // loads a byte, leaves 5 residual bits
	// 1 unread byte in the slice + 5/8 == 0 whole bytes in the accumulator.
	if got, want := r.AvailableBytes(), 1; got != want {
		t.Fatalf("got %d, want %d", got, want)
	}
}
