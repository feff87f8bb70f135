package ast

import (
	"slices"

	"github.com/skvithalani/dotty/internal/types"
)

// WithType attaches a resolved type following the copy-on-write rule: a
// node without a type is mutated in place, a node that already carries a
// different type is cloned into a fresh slot. Trees still shared across
// speculative typing attempts therefore never observe a type change.
// The returned ID is the node to use from now on.
func (a *Arena) WithType(id NodeID, ty types.TypeID) NodeID {
	n := a.Get(id)
	if n == nil || ty == types.NoTypeID {
		return id
	}
	if n.Type == ty {
		return id
	}
	if n.Type == types.NoTypeID {
		n.Type = ty
		n.Typed = true
		return id
	}
	clone := *n
	clone.Kids = slices.Clone(n.Kids)
	clone.Type = ty
	clone.Typed = true
	return a.Alloc(clone)
}

// MarkTyped moves a node into the typed universe without attaching a type.
// Definition nodes get their types on the defined symbol, not the tree.
func (a *Arena) MarkTyped(id NodeID) {
	if n := a.Get(id); n != nil {
		n.Typed = true
	}
}

// ValidateUniverse checks the splice invariant below root: typed nodes hold
// only typed kids except through UntypedSplice, untyped nodes hold only
// untyped kids except through TypedSplice.
func (a *Arena) ValidateUniverse(root NodeID) error {
	return a.validateUniverse(root)
}

func (a *Arena) validateUniverse(id NodeID) error {
	n := a.Get(id)
	if n == nil {
		return nil
	}
	for _, kid := range n.Kids {
		k := a.Get(kid)
		if k == nil {
			continue
		}
		switch {
		case n.Typed && !k.Typed && n.Kind != KindUntypedSplice:
			return &UniverseError{Parent: id, Kid: kid, ParentTyped: true}
		case !n.Typed && k.Typed && n.Kind != KindTypedSplice:
			return &UniverseError{Parent: id, Kid: kid, ParentTyped: false}
		}
		if err := a.validateUniverse(kid); err != nil {
			return err
		}
	}
	return nil
}

// UniverseError reports a typed/untyped mixing violation.
type UniverseError struct {
	Parent      NodeID
	Kid         NodeID
	ParentTyped bool
}

func (e *UniverseError) Error() string {
	if e.ParentTyped {
		return "ast: typed tree embeds an untyped child without an UntypedSplice"
	}
	return "ast: untyped tree embeds a typed child without a TypedSplice"
}
