package ast

import (
	"fmt"

	"fortio.org/safecast"
)

// Arena stores all nodes of one compilation unit in a compact slice.
// Index 0 is reserved for NoNodeID.
type Arena struct {
	nodes []Node
}

// NewArena creates an arena with an optional capacity hint.
func NewArena(capHint uint) *Arena {
	if capHint == 0 {
		capHint = 256
	}
	return &Arena{
		nodes: make([]Node, 1, capHint+1),
	}
}

// Alloc stores a node and returns its ID.
func (a *Arena) Alloc(n Node) NodeID {
	value, err := safecast.Conv[uint32](len(a.nodes))
	if err != nil {
		panic(fmt.Errorf("ast: arena overflow: %w", err))
	}
	id := NodeID(value)
	a.nodes = append(a.nodes, n)
	return id
}

// Get returns the node pointer, or nil for invalid IDs.
func (a *Arena) Get(id NodeID) *Node {
	if !id.IsValid() || int(id) >= len(a.nodes) {
		return nil
	}
	return &a.nodes[id]
}

// Len reports the number of allocated nodes excluding the sentinel.
func (a *Arena) Len() int { return len(a.nodes) - 1 }
