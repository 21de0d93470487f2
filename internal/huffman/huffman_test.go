package huffman

import (
	"testing"

	"github.com/anthropic-go-student/deflate64/internal/bitio"
)

func TestStaticLiteralLengthTreeDecodesEndOfBlock(t *testing.T) {
	d := NewStaticLiteralLengthTree()
	// Symbol 256 (end-of-block) has code length 7 and canonical code
	// 0000000, which bit-reverses to itself.
	r := bitio.New([]byte{0x00, 0x00}, 0, 0)
	symbol, status := d.GetNextSymbol(r)
	if status != OK {
		t.Fatalf("status = %v, want OK", status)
	}
	if symbol != EndOfBlockCode {
		t.Fatalf("symbol = %d, want %d", symbol, EndOfBlockCode)
	}
}

func TestStaticDistanceTreeIsUniformFiveBits(t *testing.T) {
	d := NewStaticDistanceTree()
	// All 32 static distance codes are 5 bits wide; code 0 is 00000.
	r := bitio.New([]byte{0x00}, 0, 0)
	symbol, status := d.GetNextSymbol(r)
	if status != OK || symbol != 0 {
		t.Fatalf("got (%d, %v), want (0, OK)", symbol, status)
	}
}

func TestNewRejectsOverSubscribedCodeSet(t *testing.T) {
	// Two symbols both claiming the single 1-bit code is impossible: a
	// 1-bit alphabet holds exactly two codes, so three 1-bit lengths is
	// over-subscribed.
	lengths := make([]byte, NumberOfCodeLengthTreeElements)
	lengths[0] = 1
	lengths[1] = 1
	lengths[2] = 1
	if _, ok := New(lengths); ok {
		t.Fatal("expected New to reject an over-subscribed code set")
	}
}

func TestGetNextSymbolNeedsInputOnShortBuffer(t *testing.T) {
	d := NewStaticLiteralLengthTree()
	r := bitio.New(nil, 0, 0)
	_, status := d.GetNextSymbol(r)
	if status != NeedInput {
		t.Fatalf("status = %v, want NeedInput", status)
	}
}

func TestCodeLengthsRoundTrip(t *testing.T) {
	lengths := staticDistanceLengths()
	d, ok := New(lengths)
	if !ok {
		t.Fatal("New failed")
	}
	got := d.CodeLengths()
	if len(got) != len(lengths) {
		t.Fatalf("len(CodeLengths()) = %d, want %d", len(got), len(lengths))
	}
	for i := range lengths {
		if got[i] != lengths[i] {
			t.Fatalf("CodeLengths()[%d] = %d, want %d", i, got[i], lengths[i])
		}
	}
}

func TestOverflowTreeHandlesCodesLongerThanTableWidth(t *testing.T) {
	// A 19-symbol code-length alphabet where two symbols have 9-bit
	// codes (longer than the 7-bit table width) forces use of the
	// left/right overflow tree.
	lengths := make([]byte, NumberOfCodeLengthTreeElements)
	for i := range lengths {
		lengths[i] = 0
	}
	lengths[0] = 2
	lengths[1] = 2
	lengths[2] = 2
	lengths[3] = 9
	lengths[4] = 9
	d, ok := New(lengths)
	if !ok {
		t.Fatal("New failed to build a valid code set")
	}
	if d.tableBits != 7 {
		t.Fatalf("tableBits = %d, want 7 for a non-literal alphabet", d.tableBits)
	}
}
