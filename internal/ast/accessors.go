package ast

// Kid-layout accessors. These are the only readers of the layouts declared
// in builder.go.

// inlinedTrimmed marks an Inlined node whose expansion metadata was dropped.
const inlinedTrimmed uint32 = 1

// Qualifier returns the qualifier of a Select/TypeSelect.
func (a *Arena) Qualifier(id NodeID) NodeID {
	n := a.Get(id)
	if n == nil || len(n.Kids) == 0 {
		return NoNodeID
	}
	return n.Kids[0]
}

// Fun returns the function part of an Apply/TypeApply.
func (a *Arena) Fun(id NodeID) NodeID { return a.Qualifier(id) }

// Args returns the argument part of an Apply/TypeApply/AppliedType.
func (a *Arena) Args(id NodeID) []NodeID {
	n := a.Get(id)
	if n == nil || len(n.Kids) < 2 {
		return nil
	}
	return n.Kids[1:]
}

// ValDefTpt and ValDefRhs read a ValDef.
func (a *Arena) ValDefTpt(id NodeID) NodeID { return a.kid(id, 0) }
func (a *Arena) ValDefRhs(id NodeID) NodeID { return a.kid(id, 1) }

// DefDefTpt, DefDefRhs, and DefDefParams read a DefDef.
func (a *Arena) DefDefTpt(id NodeID) NodeID { return a.kid(id, 0) }
func (a *Arena) DefDefRhs(id NodeID) NodeID { return a.kid(id, 1) }
func (a *Arena) DefDefParams(id NodeID) []NodeID {
	n := a.Get(id)
	if n == nil || len(n.Kids) <= 2 {
		return nil
	}
	return n.Kids[2:]
}

// TypeDefRhs reads a TypeDef's right-hand side.
func (a *Arena) TypeDefRhs(id NodeID) NodeID { return a.kid(id, 0) }

// TemplateConstr, TemplateParents, and TemplateBody read a Template.
func (a *Arena) TemplateConstr(id NodeID) NodeID { return a.kid(id, 0) }

func (a *Arena) TemplateParents(id NodeID) []NodeID {
	n := a.Get(id)
	if n == nil || n.Kind != KindTemplate {
		return nil
	}
	return n.Kids[1 : 1+n.Aux]
}

func (a *Arena) TemplateBody(id NodeID) []NodeID {
	n := a.Get(id)
	if n == nil || n.Kind != KindTemplate {
		return nil
	}
	return n.Kids[1+n.Aux:]
}

// InlinedCall reads the call reference of an Inlined node.
func (a *Arena) InlinedCall(id NodeID) NodeID { return a.kid(id, 0) }

// InlinedIsTrimmed reports whether the expansion metadata was dropped.
func (a *Arena) InlinedIsTrimmed(id NodeID) bool {
	n := a.Get(id)
	return n != nil && n.Kind == KindInlined && n.Aux == inlinedTrimmed
}

// TrimInlined drops an Inlined node's expansion and bindings, keeping only
// the call reference and the span. The trim is irreversible; a second
// attempt returns false so callers can assert single application.
func (a *Arena) TrimInlined(id NodeID) bool {
	n := a.Get(id)
	if n == nil || n.Kind != KindInlined || n.Aux == inlinedTrimmed {
		return false
	}
	n.Kids = n.Kids[:1]
	n.Aux = inlinedTrimmed
	return true
}

// SpliceInner reads the wrapped subtree of either splice kind.
func (a *Arena) SpliceInner(id NodeID) NodeID { return a.kid(id, 0) }

func (a *Arena) kid(id NodeID, i int) NodeID {
	n := a.Get(id)
	if n == nil || i >= len(n.Kids) {
		return NoNodeID
	}
	return n.Kids[i]
}
