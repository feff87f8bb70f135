package ast

import (
	"testing"

	"github.com/skvithalani/dotty/internal/source"
	"github.com/skvithalani/dotty/internal/types"
)

func TestWithTypeInPlaceOnFirstAttach(t *testing.T) {
	a := NewArena(0)
	sp := source.Span{File: 1}
	id := a.Literal(sp, IntConstant(42))

	got := a.WithType(id, types.TypeID(5))
	if got != id {
		t.Fatalf("first type attachment must mutate in place, got new node %v", got)
	}
	if a.Get(id).Type != types.TypeID(5) || !a.Get(id).Typed {
		t.Fatalf("type not attached: %+v", a.Get(id))
	}
}

func TestWithTypeSameTypeIsNoop(t *testing.T) {
	a := NewArena(0)
	id := a.Literal(source.Span{}, IntConstant(1))
	id = a.WithType(id, types.TypeID(5))

	before := a.Len()
	if got := a.WithType(id, types.TypeID(5)); got != id {
		t.Fatalf("re-attaching the same type must not clone")
	}
	if a.Len() != before {
		t.Fatalf("no allocation expected, arena grew from %d to %d", before, a.Len())
	}
}

func TestWithTypeClonesOnChange(t *testing.T) {
	a := NewArena(0)
	sp := source.Span{File: 1}
	shared := a.Ident(sp, source.StringID(3))
	parent := a.Apply(sp, shared)

	shared = a.WithType(shared, types.TypeID(5))
	clone := a.WithType(shared, types.TypeID(9))

	if clone == shared {
		t.Fatalf("attaching a different type must clone")
	}
	if a.Get(shared).Type != types.TypeID(5) {
		t.Fatalf("original node was corrupted: %+v", a.Get(shared))
	}
	if a.Get(clone).Type != types.TypeID(9) {
		t.Fatalf("clone has wrong type: %+v", a.Get(clone))
	}
	// The tree that captured the original still sees the old node.
	if a.Fun(parent) != shared {
		t.Fatalf("shared reference must be untouched by the clone")
	}
}

func TestValidateUniverseSplices(t *testing.T) {
	a := NewArena(0)
	sp := source.Span{File: 1}

	typedLit := a.WithType(a.Literal(sp, IntConstant(1)), types.TypeID(2))

	// Typed subtree inside an untyped tree needs a TypedSplice.
	bad := a.Apply(sp, typedLit)
	if err := a.ValidateUniverse(bad); err == nil {
		t.Fatalf("expected universe violation for typed child under untyped apply")
	}

	spliced := a.Apply(sp, a.TypedSplice(sp, typedLit))
	if err := a.ValidateUniverse(spliced); err != nil {
		t.Fatalf("TypedSplice must legalize the embedding: %v", err)
	}

	// Untyped subtree inside a typed tree needs an UntypedSplice.
	untypedLit := a.Literal(sp, IntConstant(3))
	typedParent := a.WithType(a.Apply(sp, untypedLit), types.TypeID(2))
	if err := a.ValidateUniverse(typedParent); err == nil {
		t.Fatalf("expected universe violation for untyped child under typed apply")
	}

	okParent := a.WithType(a.Apply(sp, a.UntypedSplice(sp, untypedLit)), types.TypeID(2))
	if err := a.ValidateUniverse(okParent); err != nil {
		t.Fatalf("UntypedSplice must legalize the embedding: %v", err)
	}
}

func TestTemplateLayout(t *testing.T) {
	a := NewArena(0)
	sp := source.Span{File: 1}

	ctor := a.DefDef(sp, source.StringID(1), 0, nil, NoNodeID, NoNodeID)
	p1 := a.TypeIdent(sp, source.StringID(2))
	p2 := a.TypeIdent(sp, source.StringID(3))
	m := a.ValDef(sp, source.StringID(4), 0, NoNodeID, NoNodeID)

	tmpl := a.Template(sp, ctor, []NodeID{p1, p2}, []NodeID{m})

	if got := a.TemplateConstr(tmpl); got != ctor {
		t.Fatalf("constr: %v", got)
	}
	if parents := a.TemplateParents(tmpl); len(parents) != 2 || parents[0] != p1 {
		t.Fatalf("parents: %v", parents)
	}
	if body := a.TemplateBody(tmpl); len(body) != 1 || body[0] != m {
		t.Fatalf("body: %v", body)
	}
}

func TestConstantFloatBits(t *testing.T) {
	c := DoubleConstant(0.1)
	if c.DoubleValue() != 0.1 {
		t.Fatalf("double round-trip lost precision")
	}
	f := FloatConstant(1.5e-3)
	if f.FloatValue() != 1.5e-3 {
		t.Fatalf("float round-trip lost precision")
	}
}
