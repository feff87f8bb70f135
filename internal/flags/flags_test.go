package flags

import (
	"strings"
	"testing"
)

func TestUnionIdentity(t *testing.T) {
	if got := Empty.Union(Method); got != Method {
		t.Fatalf("Empty | Method = %v, want %v", got, Method)
	}
	if got := Private.Union(Empty); got != Private {
		t.Fatalf("Private | Empty = %v, want %v", got, Private)
	}
}

func TestUnionKeepsOperands(t *testing.T) {
	cases := []struct{ a, b FlagSet }{
		{Private, Final},
		{Method, Implicit},
		{Abstract, Sealed},
		{Private, Method}, // common meets term-only
	}
	for _, tc := range cases {
		u := tc.a.Union(tc.b)
		if got := u.Intersect(tc.a); !got.Is(tc.a) {
			t.Fatalf("(a|b)&a lost a: a=%v b=%v got=%v", tc.a, tc.b, got)
		}
		if got := u.Intersect(tc.b); !got.Is(tc.b) {
			t.Fatalf("(a|b)&b lost b: a=%v b=%v got=%v", tc.a, tc.b, got)
		}
	}
}

func TestUnionKindIntersection(t *testing.T) {
	u := Private.Union(Method)
	if !u.IsTermFlags() || u.IsTypeFlags() {
		t.Fatalf("common|term must be term-only, got %v", u)
	}
}

func TestUnionDisjointKindsPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("union of term-only and type-only sets must panic")
		}
	}()
	_ = Method.Union(Abstract)
}

func TestIsChecksKindAndProps(t *testing.T) {
	// Method (term bit 7) and HigherKinded (type bit 7) share the property
	// bit but mean different things per side.
	if Method.Is(HigherKinded) {
		t.Fatalf("a term flag must not satisfy the type flag at the same bit")
	}
	if !Method.Is(Method) {
		t.Fatalf("flag must satisfy itself")
	}

	sym := UnionAll(Method, Private, Implicit)
	if !sym.Is(Implicit) || sym.Is(Lazy) {
		t.Fatalf("membership test broken for %v", sym)
	}
}

func TestIsButNot(t *testing.T) {
	fs := Private.Union(Final)
	if !fs.IsButNot(Private, Synthetic) {
		t.Fatalf("IsButNot must hold when butNot is absent")
	}
	if fs.IsButNot(Private, Final) {
		t.Fatalf("IsButNot must fail when butNot is present")
	}
}

func TestDiff(t *testing.T) {
	fs := UnionAll(Private, Final, Case)
	got := fs.Diff(Final)
	if got.Is(Final) || !got.Is(Private) || !got.Is(Case) {
		t.Fatalf("diff removed wrong bits: %v", got)
	}

	// Kind-disjoint diff is a no-op.
	if got := Method.Diff(Abstract); got != Method {
		t.Fatalf("kind-disjoint diff must be a no-op, got %v", got)
	}
}

func TestProjections(t *testing.T) {
	fs := Private.Union(Final)
	term := fs.ToTermFlags()
	if !term.IsTermFlags() || term.IsTypeFlags() {
		t.Fatalf("ToTermFlags: %v", term)
	}
	if Empty.ToTypeFlags() != Empty {
		t.Fatalf("projections must keep Empty empty")
	}
	if !fs.ToCommonFlags().IsCommonFlags() {
		t.Fatalf("ToCommonFlags must cover both sides")
	}
}

func TestConjunction(t *testing.T) {
	pl := AllOf(Private, Local)
	member := UnionAll(Private, Local, Method.ToCommonFlags())

	if !member.IsAllOf(pl) {
		t.Fatalf("%v should satisfy private+local", member)
	}
	if Private.IsAllOf(pl) {
		t.Fatalf("private alone must not satisfy private+local")
	}
	if !member.IsAllOfButNot(pl, Synthetic) {
		t.Fatalf("IsAllOfButNot must hold when butNot absent")
	}
}

func TestConjunctionRequiresSingleFlags(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("AllOf with a multi-bit operand must panic")
		}
	}()
	_ = AllOf(Private.Union(Final))
}

func TestIntrospection(t *testing.T) {
	fs := UnionAll(Private, Final)
	if fs.NumFlags() != 2 {
		t.Fatalf("NumFlags = %d, want 2", fs.NumFlags())
	}
	if fs.FirstBit() != 2 {
		t.Fatalf("FirstBit = %d, want 2 (private)", fs.FirstBit())
	}
	if Empty.FirstBit() != -1 {
		t.Fatalf("FirstBit of Empty must be -1")
	}
}

func TestStringRendering(t *testing.T) {
	if got := Empty.String(); got != "<empty>" {
		t.Fatalf("empty rendering: %q", got)
	}
	if got := Private.Union(Final).String(); got != "private final" {
		t.Fatalf("rendering: %q", got)
	}
	if got := Module.String(); got != "module" {
		t.Fatalf("term-side name: %q", got)
	}
	if got := ModuleClass.String(); got != "module class" {
		t.Fatalf("type-side name: %q", got)
	}
	// A common set over a dual-named bit shows both sides.
	dual := Module.ToCommonFlags().String()
	if !strings.Contains(dual, "module") {
		t.Fatalf("dual rendering: %q", dual)
	}
}

func TestSubsetOf(t *testing.T) {
	fs := Private.Union(Final)
	if !Private.SubsetOf(fs) {
		t.Fatalf("Private must be a subset of Private|Final")
	}
	if fs.SubsetOf(Private) {
		t.Fatalf("superset must not test as subset")
	}
}
