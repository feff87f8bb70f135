package tasty

import (
	"bytes"
	"testing"
)

func TestNatRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 0x7f, 0x80, 0x3fff, 0x4000, 1 << 20, 1<<35 - 7}
	var b Buffer
	for _, v := range values {
		b.writeNat(v)
	}
	r := &reader{data: b.Bytes()}
	for _, want := range values {
		got, err := r.readNat()
		if err != nil {
			t.Fatalf("readNat: %v", err)
		}
		if got != want {
			t.Fatalf("nat round trip: got %d, want %d", got, want)
		}
	}
	if r.pos != len(b.Bytes()) {
		t.Fatalf("trailing bytes after decode")
	}
}

func TestNatSizeMatchesEncoding(t *testing.T) {
	for _, v := range []uint64{0, 0x7f, 0x80, 1 << 14, 1 << 21, 1 << 28} {
		var b Buffer
		b.writeNat(v)
		if got := natSize(v); got != b.Len() {
			t.Fatalf("natSize(%d) = %d, encoded %d bytes", v, got, b.Len())
		}
	}
}

func TestPaddedNatReadsBack(t *testing.T) {
	dst := make([]byte, slotWidth)
	putPaddedNat(dst, 300, slotWidth)
	r := &reader{data: dst}
	got, err := r.readNat()
	if err != nil || got != 300 {
		t.Fatalf("padded nat decoded as %d (%v)", got, err)
	}
	if r.pos != slotWidth {
		t.Fatalf("padded nat consumed %d bytes, want %d", r.pos, slotWidth)
	}
}

func TestFillKeepsAddresses(t *testing.T) {
	var b TreeBuffer
	b.writeByte(0x01)
	length := b.ReserveLength()
	b.writeBytes([]byte{2, 3, 4})
	b.PatchLength(length)
	target := Addr(b.Len())
	b.writeByte(0x05)
	b.WriteAddr(target)

	if err := b.Fill(); err != nil {
		t.Fatalf("fill: %v", err)
	}
	r := &reader{data: b.Bytes(), pos: 1}
	if got, _ := r.readNat(); got != 3 {
		t.Fatalf("length filled as %d, want 3", got)
	}
	r.pos = int(target) + 1
	if got, _ := r.readNat(); got != uint64(target) {
		t.Fatalf("address filled as %d, want %d", got, target)
	}
}

func TestCompactShrinksAndRemaps(t *testing.T) {
	var b TreeBuffer
	b.writeByte(0x01)
	length := b.ReserveLength()
	b.writeBytes(bytes.Repeat([]byte{0xee}, 5))
	b.PatchLength(length)
	target := Addr(b.Len())
	b.writeByte(0x02)
	b.WriteAddr(target)

	rawLen := b.Len()
	remap, err := b.Compact()
	if err != nil {
		t.Fatalf("compact: %v", err)
	}
	if b.Len() >= rawLen {
		t.Fatalf("compaction grew the buffer: %d -> %d", rawLen, b.Len())
	}

	// Record 2 started after one 4-byte slot that shrank to one byte.
	want := target - Addr(slotWidth-1)
	if got := remap(target); got != want {
		t.Fatalf("remap(%d) = %d, want %d", target, got, want)
	}
	r := &reader{data: b.Bytes(), pos: int(want) + 1}
	if got, _ := r.readNat(); got != uint64(want) {
		t.Fatalf("compacted address field holds %d, want %d", got, want)
	}

	r.pos = 1
	if got, _ := r.readNat(); got != 5 {
		t.Fatalf("compacted length holds %d, want 5", got)
	}
}
