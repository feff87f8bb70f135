package ast

import (
	"github.com/skvithalani/dotty/internal/flags"
	"github.com/skvithalani/dotty/internal/source"
)

// Construction helpers. Each documents its kid layout; accessors in
// accessors.go are the only other place that layout is known.

func (a *Arena) Ident(span source.Span, name source.StringID) NodeID {
	return a.Alloc(Node{Kind: KindIdent, Span: span, Name: name})
}

// Select: kids = [qualifier].
func (a *Arena) Select(span source.Span, qual NodeID, name source.StringID) NodeID {
	return a.Alloc(Node{Kind: KindSelect, Span: span, Name: name, Kids: []NodeID{qual}})
}

// Apply: kids = [fun, args...].
func (a *Arena) Apply(span source.Span, fun NodeID, args ...NodeID) NodeID {
	return a.Alloc(Node{Kind: KindApply, Span: span, Kids: append([]NodeID{fun}, args...)})
}

// TypeApply: kids = [fun, targs...].
func (a *Arena) TypeApply(span source.Span, fun NodeID, targs ...NodeID) NodeID {
	return a.Alloc(Node{Kind: KindTypeApply, Span: span, Kids: append([]NodeID{fun}, targs...)})
}

func (a *Arena) Literal(span source.Span, c Constant) NodeID {
	return a.Alloc(Node{Kind: KindLiteral, Span: span, Const: c})
}

// NewInstance: kids = [type tree being constructed].
func (a *Arena) NewInstance(span source.Span, tpt NodeID) NodeID {
	return a.Alloc(Node{Kind: KindNew, Span: span, Kids: []NodeID{tpt}})
}

// If: kids = [cond, then, else]; else may be NoNodeID.
func (a *Arena) If(span source.Span, cond, then, els NodeID) NodeID {
	return a.Alloc(Node{Kind: KindIf, Span: span, Kids: []NodeID{cond, then, els}})
}

// Match: kids = [selector, cases...].
func (a *Arena) Match(span source.Span, selector NodeID, cases ...NodeID) NodeID {
	return a.Alloc(Node{Kind: KindMatch, Span: span, Kids: append([]NodeID{selector}, cases...)})
}

// CaseDef: kids = [pattern, guard, body]; guard may be NoNodeID.
func (a *Arena) CaseDef(span source.Span, pat, guard, body NodeID) NodeID {
	return a.Alloc(Node{Kind: KindCaseDef, Span: span, Kids: []NodeID{pat, guard, body}})
}

// Block: kids = [stats..., expr].
func (a *Arena) Block(span source.Span, stats []NodeID, expr NodeID) NodeID {
	return a.Alloc(Node{Kind: KindBlock, Span: span, Kids: append(append([]NodeID{}, stats...), expr)})
}

// ValDef: kids = [tpt, rhs]; either may be NoNodeID.
func (a *Arena) ValDef(span source.Span, name source.StringID, fl flags.FlagSet, tpt, rhs NodeID) NodeID {
	return a.Alloc(Node{Kind: KindValDef, Span: span, Name: name, Flags: fl, Kids: []NodeID{tpt, rhs}})
}

// DefDef: kids = [tpt, rhs, params...]; params are ValDefs.
func (a *Arena) DefDef(span source.Span, name source.StringID, fl flags.FlagSet, params []NodeID, tpt, rhs NodeID) NodeID {
	kids := append([]NodeID{tpt, rhs}, params...)
	return a.Alloc(Node{Kind: KindDefDef, Span: span, Name: name, Flags: fl, Kids: kids})
}

// TypeDef: kids = [rhs]; rhs is a Template for class-likes, a type tree for
// aliases and bounds.
func (a *Arena) TypeDef(span source.Span, name source.StringID, fl flags.FlagSet, rhs NodeID) NodeID {
	return a.Alloc(Node{Kind: KindTypeDef, Span: span, Name: name, Flags: fl, Kids: []NodeID{rhs}})
}

// Template: kids = [constr, parents..., body...]; Aux = len(parents).
func (a *Arena) Template(span source.Span, constr NodeID, parents, body []NodeID) NodeID {
	kids := append([]NodeID{constr}, parents...)
	kids = append(kids, body...)
	return a.Alloc(Node{Kind: KindTemplate, Span: span, Aux: uint32(len(parents)), Kids: kids})
}

// PackageDef: kids = [pid, stats...].
func (a *Arena) PackageDef(span source.Span, pid NodeID, stats ...NodeID) NodeID {
	return a.Alloc(Node{Kind: KindPackageDef, Span: span, Kids: append([]NodeID{pid}, stats...)})
}

// Import: kids = [expr, selectors...].
func (a *Arena) Import(span source.Span, expr NodeID, selectors ...NodeID) NodeID {
	return a.Alloc(Node{Kind: KindImport, Span: span, Kids: append([]NodeID{expr}, selectors...)})
}

// Annotated: kids = [arg, annotation].
func (a *Arena) Annotated(span source.Span, arg, annot NodeID) NodeID {
	return a.Alloc(Node{Kind: KindAnnotated, Span: span, Kids: []NodeID{arg, annot}})
}

// Inlined: kids = [call, expansion, bindings...]. After the post-typer trim
// only the call reference survives and Aux is set to inlinedTrimmed.
func (a *Arena) Inlined(span source.Span, call, expansion NodeID, bindings ...NodeID) NodeID {
	kids := append([]NodeID{call, expansion}, bindings...)
	return a.Alloc(Node{Kind: KindInlined, Span: span, Kids: kids})
}

// TypedSplice: kids = [typed subtree], legal only inside untyped trees.
func (a *Arena) TypedSplice(span source.Span, inner NodeID) NodeID {
	return a.Alloc(Node{Kind: KindTypedSplice, Span: span, Kids: []NodeID{inner}})
}

// UntypedSplice: kids = [untyped subtree], legal only inside typed trees.
// The splice itself belongs to the typed universe.
func (a *Arena) UntypedSplice(span source.Span, inner NodeID) NodeID {
	return a.Alloc(Node{Kind: KindUntypedSplice, Span: span, Typed: true, Kids: []NodeID{inner}})
}

func (a *Arena) TypeIdent(span source.Span, name source.StringID) NodeID {
	return a.Alloc(Node{Kind: KindTypeIdent, Span: span, Name: name})
}

// TypeSelect: kids = [qualifier].
func (a *Arena) TypeSelect(span source.Span, qual NodeID, name source.StringID) NodeID {
	return a.Alloc(Node{Kind: KindTypeSelect, Span: span, Name: name, Kids: []NodeID{qual}})
}

// AppliedType: kids = [tycon, args...].
func (a *Arena) AppliedType(span source.Span, tycon NodeID, args ...NodeID) NodeID {
	return a.Alloc(Node{Kind: KindAppliedType, Span: span, Kids: append([]NodeID{tycon}, args...)})
}

// TypeBoundsTree: kids = [lo, hi]; either may be NoNodeID.
func (a *Arena) TypeBoundsTree(span source.Span, lo, hi NodeID) NodeID {
	return a.Alloc(Node{Kind: KindTypeBoundsTree, Span: span, Kids: []NodeID{lo, hi}})
}
