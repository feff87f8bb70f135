package tasty

import (
	"fmt"
	"io"
)

// reader walks raw pickled bytes.
type reader struct {
	data []byte
	pos  int
}

func (r *reader) readByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, io.ErrUnexpectedEOF
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

func (r *reader) readNat() (uint64, error) {
	var x uint64
	for {
		b, err := r.readByte()
		if err != nil {
			return 0, err
		}
		x = x<<7 | uint64(b&0x7f)
		if b&0x80 != 0 {
			return x, nil
		}
	}
}

func (r *reader) readFixed(n int) (uint64, error) {
	var x uint64
	for i := 0; i < n; i++ {
		b, err := r.readByte()
		if err != nil {
			return 0, err
		}
		x = x<<8 | uint64(b)
	}
	return x, nil
}

func (r *reader) readBytes(n int) ([]byte, error) {
	if r.pos+n > len(r.data) {
		return nil, io.ErrUnexpectedEOF
	}
	out := r.data[r.pos : r.pos+n]
	r.pos += n
	return out, nil
}

// Node is one decoded record. Address-valued payloads (shared references,
// symbol references) keep the raw target in Value; At follows them.
type Node struct {
	Tag   Tag
	Addr  Addr
	Name  string
	Value uint64
	Kids  []*Node
}

// IsRef reports whether the node's Value is a tree-section address.
func (n *Node) IsRef() bool {
	switch n.Tag {
	case SHAREDterm, SHAREDtype, TERMREFsym, TYPEREFsym:
		return true
	}
	return false
}

// Unpickler decodes an artifact produced by Pickler.Bytes. The format is
// validated eagerly; decoding is per-record on demand.
type Unpickler struct {
	names []string
	tree  []byte
}

// NewUnpickler parses the header and sections. Artifacts written by a
// different major version are rejected.
func NewUnpickler(data []byte) (*Unpickler, error) {
	r := &reader{data: data}
	magic, err := r.readFixed(4)
	if err != nil {
		return nil, fmt.Errorf("tasty: truncated header: %w", err)
	}
	if uint32(magic) != Magic {
		return nil, fmt.Errorf("tasty: bad magic %#x", magic)
	}
	major, err := r.readNat()
	if err != nil {
		return nil, err
	}
	minor, err := r.readNat()
	if err != nil {
		return nil, err
	}
	if major != MajorVersion {
		return nil, fmt.Errorf("tasty: format version %d.%d is not readable by %d.%d",
			major, minor, MajorVersion, MinorVersion)
	}
	names, err := readNamePool(r)
	if err != nil {
		return nil, err
	}
	size, err := r.readNat()
	if err != nil {
		return nil, err
	}
	tree, err := r.readBytes(int(size))
	if err != nil {
		return nil, fmt.Errorf("tasty: truncated tree section: %w", err)
	}
	return &Unpickler{names: names, tree: tree}, nil
}

// Names returns the deduplicated name pool in index order.
func (u *Unpickler) Names() []string { return u.names }

// TreeSize reports the tree section's byte length.
func (u *Unpickler) TreeSize() int { return len(u.tree) }

// Roots decodes every top-level record in order.
func (u *Unpickler) Roots() ([]*Node, error) {
	r := &reader{data: u.tree}
	var out []*Node
	for r.pos < len(r.data) {
		n, err := u.decode(r)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// At decodes the record starting at a tree-section address. Use it to
// chase shared and symbol references.
func (u *Unpickler) At(addr Addr) (*Node, error) {
	if addr < 0 || int(addr) >= len(u.tree) {
		return nil, fmt.Errorf("tasty: address %d outside tree section", addr)
	}
	r := &reader{data: u.tree, pos: int(addr)}
	return u.decode(r)
}

func (u *Unpickler) name(idx uint64) (string, error) {
	if idx >= uint64(len(u.names)) {
		return "", fmt.Errorf("tasty: name index %d out of range", idx)
	}
	return u.names[idx], nil
}

func (u *Unpickler) decode(r *reader) (*Node, error) {
	addr := Addr(r.pos)
	tagByte, err := r.readByte()
	if err != nil {
		return nil, err
	}
	tag := Tag(tagByte)
	n := &Node{Tag: tag, Addr: addr}

	switch {
	case !tag.HasPayload():
		return n, nil

	case tag.HasNatPayload():
		if n.Value, err = r.readNat(); err != nil {
			return nil, err
		}
		if tag == STRINGconst {
			if n.Name, err = u.name(n.Value); err != nil {
				return nil, err
			}
		}
		return n, nil

	case tag.FixedPayloadSize() > 0:
		if n.Value, err = r.readFixed(tag.FixedPayloadSize()); err != nil {
			return nil, err
		}
		return n, nil
	}

	length, err := r.readNat()
	if err != nil {
		return nil, err
	}
	end := r.pos + int(length)
	if end > len(r.data) {
		return nil, fmt.Errorf("tasty: record at %d overruns the tree section", addr)
	}
	if err := u.decodeComposite(r, n, end); err != nil {
		return nil, err
	}
	if r.pos != end {
		return nil, fmt.Errorf("tasty: record %s at %d decoded %d bytes past its length",
			tag, addr, r.pos-end)
	}
	return n, nil
}

func (u *Unpickler) decodeComposite(r *reader, n *Node, end int) error {
	readName := func() error {
		idx, err := r.readNat()
		if err != nil {
			return err
		}
		n.Name, err = u.name(idx)
		return err
	}
	kid := func() error {
		k, err := u.decode(r)
		if err != nil {
			return err
		}
		n.Kids = append(n.Kids, k)
		return nil
	}
	rest := func() error {
		for r.pos < end {
			if err := kid(); err != nil {
				return err
			}
		}
		return nil
	}

	switch n.Tag {
	case IDENT, TYPEIDENT, SELECT, TYPESELECT, TERMREFname, TYPEREFname:
		if err := readName(); err != nil {
			return err
		}
		return rest()

	case VALDEF:
		if err := readName(); err != nil {
			return err
		}
		var err error
		if n.Value, err = r.readNat(); err != nil {
			return err
		}
		return rest()

	case DEFDEF:
		if err := readName(); err != nil {
			return err
		}
		var err error
		if n.Value, err = r.readNat(); err != nil {
			return err
		}
		count, err := r.readNat()
		if err != nil {
			return err
		}
		for i := uint64(0); i < count+2 && r.pos < end; i++ {
			if err := kid(); err != nil {
				return err
			}
		}
		return rest()

	case TYPEDEF:
		if err := readName(); err != nil {
			return err
		}
		var err error
		if n.Value, err = r.readNat(); err != nil {
			return err
		}
		if err := kid(); err != nil { // rhs
			return err
		}
		count, err := r.readNat()
		if err != nil {
			return err
		}
		for i := uint64(0); i < count; i++ {
			annot := &Node{Tag: ANNOTATED, Addr: Addr(r.pos)}
			idx, err := r.readNat()
			if err != nil {
				return err
			}
			if annot.Name, err = u.name(idx); err != nil {
				return err
			}
			arg, err := u.decode(r)
			if err != nil {
				return err
			}
			annot.Kids = append(annot.Kids, arg)
			n.Kids = append(n.Kids, annot)
		}
		return nil

	case TEMPLATE:
		if err := kid(); err != nil { // constructor
			return err
		}
		if _, err := r.readNat(); err != nil { // parent count
			return err
		}
		return rest()

	default:
		return rest()
	}
}
