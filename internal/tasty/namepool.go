package tasty

import (
	"fmt"

	"github.com/skvithalani/dotty/internal/source"
)

// NamePool collects every identifier referenced by the tree section into a
// deduplicated side table. Records refer to names by pool index, never by
// inline text.
type NamePool struct {
	strings *source.Interner
	names   []source.StringID
	index   map[source.StringID]uint32
}

func NewNamePool(strings *source.Interner) *NamePool {
	return &NamePool{
		strings: strings,
		index:   make(map[source.StringID]uint32),
	}
}

// Ref returns the pool index for a name, adding it on first use.
func (p *NamePool) Ref(id source.StringID) uint32 {
	if idx, ok := p.index[id]; ok {
		return idx
	}
	idx := uint32(len(p.names))
	p.names = append(p.names, id)
	p.index[id] = idx
	return idx
}

func (p *NamePool) Len() int { return len(p.names) }

// WriteTo serializes the pool: a count followed by length-prefixed UTF-8.
func (p *NamePool) WriteTo(buf *Buffer) {
	buf.writeNat(uint64(len(p.names)))
	for _, id := range p.names {
		text := p.strings.MustLookup(id)
		buf.writeNat(uint64(len(text)))
		buf.writeBytes([]byte(text))
	}
}

// readNamePool decodes the pool section written by WriteTo.
func readNamePool(r *reader) ([]string, error) {
	count, err := r.readNat()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, count)
	for i := uint64(0); i < count; i++ {
		size, err := r.readNat()
		if err != nil {
			return nil, err
		}
		text, err := r.readBytes(int(size))
		if err != nil {
			return nil, fmt.Errorf("tasty: truncated name %d: %w", i, err)
		}
		names = append(names, string(text))
	}
	return names, nil
}
