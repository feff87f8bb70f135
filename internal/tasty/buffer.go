package tasty

import (
	"fmt"
	"sort"
)

// Addr is a byte offset into the tree section. Addresses are stable
// identities for records during pickling; compaction remaps them all
// through one delta table.
type Addr int

// NoAddr marks an address that was never assigned.
const NoAddr Addr = -1

// Buffer is a growable byte sink with the nat encoding used throughout
// the format: big-endian groups of 7 bits, the final byte marked by its
// high bit.
type Buffer struct {
	bytes []byte
}

func (b *Buffer) Len() int { return len(b.bytes) }

func (b *Buffer) Bytes() []byte { return b.bytes }

func (b *Buffer) writeByte(x byte) {
	b.bytes = append(b.bytes, x)
}

func (b *Buffer) writeBytes(xs []byte) {
	b.bytes = append(b.bytes, xs...)
}

// writeNat appends x in the variable-length encoding.
func (b *Buffer) writeNat(x uint64) {
	b.writeNatPrefix(x >> 7)
	b.bytes = append(b.bytes, byte(x&0x7f)|0x80)
}

func (b *Buffer) writeNatPrefix(x uint64) {
	if x == 0 {
		return
	}
	b.writeNatPrefix(x >> 7)
	b.bytes = append(b.bytes, byte(x&0x7f))
}

// writeFixed appends x big-endian in exactly n raw bytes.
func (b *Buffer) writeFixed(x uint64, n int) {
	for i := n - 1; i >= 0; i-- {
		b.bytes = append(b.bytes, byte(x>>(8*uint(i))))
	}
}

// natSize returns the encoded byte count of a nat.
func natSize(x uint64) int {
	n := 1
	for x >>= 7; x != 0; x >>= 7 {
		n++
	}
	return n
}

// putPaddedNat writes x at dst as a nat padded with leading zero septets
// to exactly width bytes.
func putPaddedNat(dst []byte, x uint64, width int) {
	for i := width - 1; i >= 0; i-- {
		dst[i] = byte(x & 0x7f)
		x >>= 7
	}
	dst[width-1] |= 0x80
}

// slotWidth is the reserved size of every patchable field. Four septets
// cover 256 MiB of tree section, far beyond any single unit.
const slotWidth = 4

// slot is one reserved patchable field: either a length prefix (value =
// distance from payload start to end) or an address field (value = target
// record address).
type slot struct {
	pos    int  // offset of the reserved bytes
	ref    int  // record end for lengths, target address for addresses
	length bool // length prefix vs. address field
	filled bool
}

// TreeBuffer extends Buffer with reserved slots for length prefixes and
// address fields, and with the compaction pass that re-encodes every slot
// at its minimal width while remapping all recorded addresses.
type TreeBuffer struct {
	Buffer
	slots []slot
}

// ReserveLength reserves a length-prefix slot and returns its index.
func (b *TreeBuffer) ReserveLength() int {
	return b.reserve(true)
}

// ReserveAddr reserves an address slot whose target is not yet known.
func (b *TreeBuffer) ReserveAddr() int {
	return b.reserve(false)
}

func (b *TreeBuffer) reserve(length bool) int {
	idx := len(b.slots)
	b.slots = append(b.slots, slot{pos: len(b.bytes), length: length})
	b.bytes = append(b.bytes, make([]byte, slotWidth)...)
	return idx
}

// PatchLength closes a length-prefixed record: the payload runs from just
// after the slot to the current end of the buffer.
func (b *TreeBuffer) PatchLength(idx int) {
	b.slots[idx].ref = len(b.bytes)
	b.slots[idx].filled = true
}

// PatchAddr records the target address of an address slot.
func (b *TreeBuffer) PatchAddr(idx int, target Addr) {
	b.slots[idx].ref = int(target)
	b.slots[idx].filled = true
}

// WriteAddr emits an already-known address reference. It still goes
// through a slot: the value must be remapped if compaction runs.
func (b *TreeBuffer) WriteAddr(target Addr) {
	idx := b.ReserveAddr()
	b.PatchAddr(idx, target)
}

// Fill writes every slot value at its full reserved width, leaving all
// addresses unchanged. The cheap alternative to Compact.
func (b *TreeBuffer) Fill() error {
	for i, s := range b.slots {
		if !s.filled {
			return fmt.Errorf("tasty: slot %d at offset %d was never patched", i, s.pos)
		}
		v := uint64(s.ref)
		if s.length {
			v = uint64(s.ref - (s.pos + slotWidth))
		}
		putPaddedNat(b.bytes[s.pos:s.pos+slotWidth], v, slotWidth)
	}
	b.slots = nil
	return nil
}

// Compact re-encodes every slot at minimal width and returns the function
// mapping old addresses to compacted ones. Every address recorded outside
// the buffer (symbol and share caches) must be pushed through it.
func (b *TreeBuffer) Compact() (func(Addr) Addr, error) {
	for i := range b.slots {
		if !b.slots[i].filled {
			return nil, fmt.Errorf("tasty: slot %d at offset %d was never patched", i, b.slots[i].pos)
		}
	}

	// savings[i]: bytes dropped from slot i; deltas[i]: total savings at
	// positions <= end of slot i. Widths depend on adjusted values, which
	// depend on widths, so iterate to the fixed point. Values only shrink,
	// so the loop terminates.
	n := len(b.slots)
	savings := make([]int, n)
	deltas := make([]int, n)
	ends := make([]int, n)
	for i, s := range b.slots {
		ends[i] = s.pos + slotWidth
	}

	adjusted := func(pos int) int {
		// Savings of every slot that ends at or before pos apply.
		i := sort.Search(n, func(i int) bool { return ends[i] > pos })
		if i == 0 {
			return pos
		}
		return pos - deltas[i-1]
	}
	value := func(i int) uint64 {
		s := b.slots[i]
		if s.length {
			return uint64(adjusted(s.ref) - adjusted(s.pos+slotWidth))
		}
		return uint64(adjusted(s.ref))
	}

	totalSavings := 0
	for {
		changed := false
		total := 0
		for i := range b.slots {
			w := natSize(value(i))
			if w > slotWidth {
				return nil, fmt.Errorf("tasty: slot value exceeds reserved width")
			}
			saving := slotWidth - w
			if saving != savings[i] {
				changed = true
				savings[i] = saving
			}
			total += saving
			deltas[i] = total
		}
		totalSavings = total
		if !changed {
			break
		}
	}

	out := make([]byte, 0, len(b.bytes)-totalSavings)
	prev := 0
	for i, s := range b.slots {
		out = append(out, b.bytes[prev:s.pos]...)
		width := slotWidth - savings[i]
		field := make([]byte, width)
		putPaddedNat(field, value(i), width)
		out = append(out, field...)
		prev = s.pos + slotWidth
	}
	out = append(out, b.bytes[prev:]...)
	b.bytes = out
	b.slots = nil

	return func(a Addr) Addr {
		if a == NoAddr {
			return a
		}
		return Addr(adjusted(int(a)))
	}, nil
}
