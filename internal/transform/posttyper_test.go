package transform

import (
	"testing"

	"github.com/skvithalani/dotty/internal/ast"
	"github.com/skvithalani/dotty/internal/diag"
	"github.com/skvithalani/dotty/internal/flags"
	"github.com/skvithalani/dotty/internal/source"
	"github.com/skvithalani/dotty/internal/symbols"
)

const testFile = source.FileID(1)

func setup() (*symbols.Table, *ast.Arena, *diag.Bag) {
	bag := diag.NewBag(16)
	tbl := symbols.NewTable(symbols.Hints{}, nil, nil, diag.BagReporter{Bag: bag})
	return tbl, ast.NewArena(0), bag
}

func index(tbl *symbols.Table, arena *ast.Arena, roots []ast.NodeID) *symbols.Result {
	return symbols.NewNamer(tbl, arena, nil).IndexFile(testFile, roots)
}

func TestAbstractInstantiationReported(t *testing.T) {
	tbl, arena, bag := setup()
	sp := source.Span{File: testFile}

	abstract := arena.TypeDef(sp, tbl.Strings.Intern("A"), flags.Abstract,
		arena.Template(sp, ast.NoNodeID, nil, nil))
	site := arena.NewInstance(sp, arena.TypeIdent(sp, tbl.Strings.Intern("A")))
	x := arena.ValDef(sp, tbl.Strings.Intern("x"), flags.Empty, ast.NoNodeID, site)

	res := index(tbl, arena, []ast.NodeID{abstract, x})
	p := New(tbl, arena, tbl.Reporter, "a.scala")
	p.TransformFile(res.RootScope, []ast.NodeID{abstract, x})

	if bag.Len() != 1 || bag.Items()[0].Code != diag.TransformAbstractNew {
		t.Fatalf("expected one instantiability diagnostic, got %v", bag.Items())
	}
	// The tree is reported, not rewritten.
	if got := arena.Get(site).Kind; got != ast.KindNew {
		t.Fatalf("construction site rewritten to %v", got)
	}
}

func TestAnnotationArgumentExemptFromInstantiationCheck(t *testing.T) {
	tbl, arena, bag := setup()
	sp := source.Span{File: testFile}

	abstract := arena.TypeDef(sp, tbl.Strings.Intern("A"), flags.Abstract,
		arena.Template(sp, ast.NoNodeID, nil, nil))
	site := arena.NewInstance(sp, arena.TypeIdent(sp, tbl.Strings.Intern("A")))
	annotated := arena.Annotated(sp, arena.Literal(sp, ast.IntConstant(1)), site)

	res := index(tbl, arena, []ast.NodeID{abstract})
	New(tbl, arena, tbl.Reporter, "a.scala").TransformFile(res.RootScope, []ast.NodeID{abstract, annotated})

	if bag.Len() != 0 {
		t.Fatalf("annotation argument must be exempt, got %v", bag.Items())
	}
}

func TestInlinedTrimHappensExactlyOnce(t *testing.T) {
	tbl, arena, bag := setup()
	sp := source.Span{File: testFile}

	call := arena.Ident(sp, tbl.Strings.Intern("f"))
	expansion := arena.Literal(sp, ast.IntConstant(42))
	binding := arena.ValDef(sp, tbl.Strings.Intern("tmp"), flags.Empty, ast.NoNodeID, expansion)
	inl := arena.Inlined(sp, call, expansion, binding)

	res := index(tbl, arena, nil)
	p := New(tbl, arena, tbl.Reporter, "a.scala")
	p.TransformFile(res.RootScope, []ast.NodeID{inl})

	if !arena.InlinedIsTrimmed(inl) {
		t.Fatalf("inlined node not trimmed")
	}
	if kids := arena.Get(inl).Kids; len(kids) != 1 || kids[0] != call {
		t.Fatalf("trim kept %v, want only the call reference", kids)
	}
	if bag.Len() != 0 {
		t.Fatalf("first trim must be silent, got %v", bag.Items())
	}

	p.TransformFile(res.RootScope, []ast.NodeID{inl})
	if bag.Len() != 1 || bag.Items()[0].Code != diag.TransformDoubleTrim {
		t.Fatalf("expected double-trim diagnostic, got %v", bag.Items())
	}
}

func TestSourceFileAnnotationStampedOnce(t *testing.T) {
	tbl, arena, _ := setup()
	sp := source.Span{File: testFile}

	cls := arena.TypeDef(sp, tbl.Strings.Intern("C"), flags.Empty,
		arena.Template(sp, ast.NoNodeID, nil, nil))
	res := index(tbl, arena, []ast.NodeID{cls})

	p := New(tbl, arena, tbl.Reporter, "c.scala")
	p.TransformFile(res.RootScope, []ast.NodeID{cls})
	p.TransformFile(res.RootScope, []ast.NodeID{cls})

	id, ok := tbl.DefSymbol(cls)
	if !ok {
		t.Fatalf("class symbol missing")
	}
	sym := tbl.Symbols.Get(id)
	name := tbl.Strings.Intern("SourceFile")
	if !sym.HasAnnotation(name) {
		t.Fatalf("source-file annotation missing")
	}
	if got := len(sym.Denot().Annotations); got != 1 {
		t.Fatalf("annotation stamped %d times", got)
	}
}

func TestCrossClassPrivateAccessGetsAccessor(t *testing.T) {
	tbl, arena, bag := setup()
	sp := source.Span{File: testFile}

	secret := arena.ValDef(sp, tbl.Strings.Intern("secret"), flags.Private,
		arena.TypeIdent(sp, tbl.Strings.Intern("Int")), ast.NoNodeID)
	leak := arena.DefDef(sp, tbl.Strings.Intern("leak"), flags.Empty, nil,
		arena.TypeIdent(sp, tbl.Strings.Intern("Int")),
		arena.Ident(sp, tbl.Strings.Intern("secret")))
	inner := arena.TypeDef(sp, tbl.Strings.Intern("Inner"), flags.Empty,
		arena.Template(sp, ast.NoNodeID, nil, []ast.NodeID{leak}))
	outer := arena.TypeDef(sp, tbl.Strings.Intern("Outer"), flags.Empty,
		arena.Template(sp, ast.NoNodeID, nil, []ast.NodeID{secret, inner}))

	res := index(tbl, arena, []ast.NodeID{outer})
	New(tbl, arena, tbl.Reporter, "o.scala").TransformFile(res.RootScope, []ast.NodeID{outer})

	outerID, _ := tbl.DefSymbol(outer)
	scope := tbl.Scopes.Get(tbl.MemberScope(outerID))
	accessors := scope.Lookup(tbl.Strings.Intern("secret$access"))
	if len(accessors) != 1 {
		t.Fatalf("expected one accessor, got %d", len(accessors))
	}
	acc := tbl.Symbols.Get(accessors[0])
	if !acc.Flags().Is(flags.Accessor) || !acc.Flags().Is(flags.Synthetic) {
		t.Fatalf("accessor flags: %v", acc.Flags())
	}
	want := tbl.Types.Method(nil, tbl.Types.Builtins().Int)
	if got := tbl.InfoOrError(accessors[0]); got != want {
		t.Fatalf("accessor info: got %v, want ()Int", got)
	}
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
}

func TestPrivateLocalAccessIsIllegal(t *testing.T) {
	tbl, arena, bag := setup()
	sp := source.Span{File: testFile}

	secret := arena.ValDef(sp, tbl.Strings.Intern("secret"), flags.Private.Union(flags.Local),
		arena.TypeIdent(sp, tbl.Strings.Intern("Int")), ast.NoNodeID)
	leak := arena.DefDef(sp, tbl.Strings.Intern("leak"), flags.Empty, nil,
		arena.TypeIdent(sp, tbl.Strings.Intern("Int")),
		arena.Ident(sp, tbl.Strings.Intern("secret")))
	inner := arena.TypeDef(sp, tbl.Strings.Intern("Inner"), flags.Empty,
		arena.Template(sp, ast.NoNodeID, nil, []ast.NodeID{leak}))
	outer := arena.TypeDef(sp, tbl.Strings.Intern("Outer"), flags.Empty,
		arena.Template(sp, ast.NoNodeID, nil, []ast.NodeID{secret, inner}))

	res := index(tbl, arena, []ast.NodeID{outer})
	New(tbl, arena, tbl.Reporter, "o.scala").TransformFile(res.RootScope, []ast.NodeID{outer})

	if bag.Len() != 1 || bag.Items()[0].Code != diag.TransformIllegalAccess {
		t.Fatalf("expected illegal-access diagnostic, got %v", bag.Items())
	}
}
