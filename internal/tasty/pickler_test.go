package tasty

import (
	"math"
	"strings"
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

// resolve follows address-valued references to the record they point at.
func resolve(t *testing.T, u *Unpickler, n *Node) *Node {
	t.Helper()
	for n.IsRef() {
		target, err := u.At(Addr(n.Value))
		if err != nil {
			t.Fatalf("resolving %s at %d: %v", n.Tag, n.Value, err)
		}
		n = target
	}
	return n
}

func nodesEqual(t *testing.T, u *Unpickler, a, b *Node) bool {
	t.Helper()
	a, b = resolve(t, u, a), resolve(t, u, b)
	if a.Tag != b.Tag || a.Name != b.Name || a.Value != b.Value || len(a.Kids) != len(b.Kids) {
		return false
	}
	for i := range a.Kids {
		if !nodesEqual(t, u, a.Kids[i], b.Kids[i]) {
			return false
		}
	}
	return true
}

func countTag(n *Node, tag Tag) int {
	total := 0
	if n.Tag == tag {
		total++
	}
	for _, kid := range n.Kids {
		total += countTag(kid, tag)
	}
	return total
}

func TestSharedSubtreeEmittedOnce(t *testing.T) {
	tbl, arena, _ := setup()
	sp := source.Span{File: testFile}

	shared := arena.Literal(sp, ast.IntConstant(7))
	apply := arena.Apply(sp, arena.Ident(sp, tbl.Strings.Intern("f")), shared, shared)

	p := NewPickler(tbl, arena, nil)
	if err := p.Pickle([]ast.NodeID{apply}); err != nil {
		t.Fatalf("pickle: %v", err)
	}
	data, err := p.Bytes(false)
	if err != nil {
		t.Fatalf("bytes: %v", err)
	}
	u, err := NewUnpickler(data)
	if err != nil {
		t.Fatalf("unpickle: %v", err)
	}
	roots, err := u.Roots()
	if err != nil {
		t.Fatalf("roots: %v", err)
	}
	root := roots[0]

	if got := countTag(root, INTconst); got != 1 {
		t.Fatalf("shared literal encoded %d times, want 1", got)
	}
	if got := countTag(root, SHAREDterm); got != 1 {
		t.Fatalf("expected 1 back-reference, got %d", got)
	}
	first, second := root.Kids[1], root.Kids[2]
	if second.Tag != SHAREDterm || Addr(second.Value) != first.Addr {
		t.Fatalf("back-reference points at %d, want %d", second.Value, first.Addr)
	}
	if !nodesEqual(t, u, first, second) {
		t.Fatalf("both occurrences must decode to equal records")
	}
}

// indexAndType builds `val x: C` followed by `class C` and forces the val's
// signature so its type annotation carries a reference to the class.
func indexAndType(t *testing.T, tbl *symbols.Table, arena *ast.Arena) (valX, clsC ast.NodeID, symC symbols.SymbolID) {
	t.Helper()
	sp := source.Span{File: testFile}
	valX = arena.ValDef(sp, tbl.Strings.Intern("x"), flags.Empty,
		arena.TypeIdent(sp, tbl.Strings.Intern("C")), ast.NoNodeID)
	clsC = arena.TypeDef(sp, tbl.Strings.Intern("C"), flags.Empty,
		arena.Template(sp, ast.NoNodeID, nil, nil))

	res := symbols.NewNamer(tbl, arena, nil).IndexFile(testFile, []ast.NodeID{valX, clsC})
	if _, err := tbl.Info(res.TopLevel[0]); err != nil {
		t.Fatalf("forcing val signature: %v", err)
	}
	return valX, clsC, res.TopLevel[1]
}

func TestForwardReferenceResolved(t *testing.T) {
	tbl, arena, _ := setup()
	valX, clsC, symC := indexAndType(t, tbl, arena)

	p := NewPickler(tbl, arena, nil)
	if err := p.Pickle([]ast.NodeID{valX, clsC}); err != nil {
		t.Fatalf("pickle: %v", err)
	}
	if got := p.PendingCount(); got != 0 {
		t.Fatalf("pending table holds %d entries after pickling", got)
	}

	classAddr, ok := p.SymbolAddr(symC)
	if !ok {
		t.Fatalf("class definition address not recorded")
	}
	data, err := p.Bytes(false)
	if err != nil {
		t.Fatalf("bytes: %v", err)
	}
	u, err := NewUnpickler(data)
	if err != nil {
		t.Fatalf("unpickle: %v", err)
	}
	roots, err := u.Roots()
	if err != nil {
		t.Fatalf("roots: %v", err)
	}

	// The val's type annotation must reference the class definition record
	// by direct address once back-patching ran.
	tpt := roots[0].Kids[0]
	if tpt.Tag != TYPEIDENT || len(tpt.Kids) != 1 {
		t.Fatalf("unexpected annotation shape: %v", tpt.Tag)
	}
	ref := tpt.Kids[0]
	if ref.Tag != TYPEREFsym || Addr(ref.Value) != classAddr {
		t.Fatalf("reference %s -> %d, want address %d", ref.Tag, ref.Value, classAddr)
	}
	if roots[1].Addr != classAddr {
		t.Fatalf("class record at %d, recorded address %d", roots[1].Addr, classAddr)
	}
}

func TestStrandedReferenceNamed(t *testing.T) {
	tbl, arena, bag := setup()
	valX, _, _ := indexAndType(t, tbl, arena)

	// The class is registered in the table but its definition is never
	// pickled, leaving the forward reference stranded.
	p := NewPickler(tbl, arena, tbl.Reporter)
	err := p.Pickle([]ast.NodeID{valX})
	if err == nil {
		t.Fatalf("expected a consistency error")
	}
	if !strings.Contains(err.Error(), "C") {
		t.Fatalf("error must name the stranded symbol: %v", err)
	}
	if bag.Len() != 1 || bag.Items()[0].Code != diag.PickleStrandedRef {
		t.Fatalf("expected stranded-reference diagnostic, got %v", bag.Items())
	}
	if _, err := p.Bytes(false); err == nil {
		t.Fatalf("assembly must refuse unresolved references")
	}
}

func TestLiteralFidelity(t *testing.T) {
	tbl, arena, _ := setup()
	sp := source.Span{File: testFile}

	floatBits := uint64(math.Float32bits(0.1))
	doubleBits := math.Float64bits(0.1)
	nanBits := uint64(0x7fc00001) // quiet NaN with payload, must survive untouched

	consts := []ast.Constant{
		ast.UnitConstant(),
		ast.BoolConstant(true),
		ast.BoolConstant(false),
		ast.ByteConstant(-5),
		ast.ShortConstant(-300),
		ast.IntConstant(-70000),
		ast.LongConstant(-1 << 40),
		ast.FloatConstant(0.1),
		ast.DoubleConstant(0.1),
		{Tag: ast.ConstFloat, Bits: nanBits},
		ast.CharConstant('λ'),
		ast.StringConstant(tbl.Strings.Intern("hello")),
	}
	roots := make([]ast.NodeID, 0, len(consts))
	for _, c := range consts {
		roots = append(roots, arena.Literal(sp, c))
	}

	p := NewPickler(tbl, arena, nil)
	if err := p.Pickle(roots); err != nil {
		t.Fatalf("pickle: %v", err)
	}
	data, err := p.Bytes(true)
	if err != nil {
		t.Fatalf("bytes: %v", err)
	}
	u, err := NewUnpickler(data)
	if err != nil {
		t.Fatalf("unpickle: %v", err)
	}
	decoded, err := u.Roots()
	if err != nil {
		t.Fatalf("roots: %v", err)
	}
	if len(decoded) != len(consts) {
		t.Fatalf("decoded %d records, want %d", len(decoded), len(consts))
	}

	byteVal := int8(-5)
	shortVal := int16(-300)
	intVal := int32(-70000)
	longVal := int64(-1 << 40)
	expect := []struct {
		tag   Tag
		value uint64
	}{
		{UNITconst, 0},
		{TRUEconst, 0},
		{FALSEconst, 0},
		{BYTEconst, uint64(uint8(byteVal))},
		{SHORTconst, uint64(uint16(shortVal))},
		{INTconst, uint64(uint32(intVal))},
		{LONGconst, uint64(longVal)},
		{FLOATconst, floatBits},
		{DOUBLEconst, doubleBits},
		{FLOATconst, nanBits},
		{CHARconst, uint64('λ')},
	}
	for i, want := range expect {
		got := decoded[i]
		if got.Tag != want.tag || got.Value != want.value {
			t.Fatalf("constant %d: got %s %#x, want %s %#x", i, got.Tag, got.Value, want.tag, want.value)
		}
	}
	str := decoded[len(consts)-1]
	if str.Tag != STRINGconst || str.Name != "hello" {
		t.Fatalf("string constant decoded as %s %q", str.Tag, str.Name)
	}
}

func TestCompactionRemapsAllAddresses(t *testing.T) {
	tbl, arena, _ := setup()
	valX, clsC, symC := indexAndType(t, tbl, arena)

	p := NewPickler(tbl, arena, nil)
	if err := p.Pickle([]ast.NodeID{valX, clsC}); err != nil {
		t.Fatalf("pickle: %v", err)
	}
	uncompacted := p.buf.Len()
	data, err := p.Bytes(true)
	if err != nil {
		t.Fatalf("bytes: %v", err)
	}
	u, err := NewUnpickler(data)
	if err != nil {
		t.Fatalf("unpickle: %v", err)
	}
	if u.TreeSize() >= uncompacted {
		t.Fatalf("compaction did not shrink the tree section: %d -> %d", uncompacted, u.TreeSize())
	}

	// The symbol cache was remapped alongside the buffer: the recorded
	// class address must still hit the TYPEDEF record.
	classAddr, _ := p.SymbolAddr(symC)
	rec, err := u.At(classAddr)
	if err != nil {
		t.Fatalf("remapped address: %v", err)
	}
	if rec.Tag != TYPEDEF || rec.Name != "C" {
		t.Fatalf("remapped address decodes to %s %q", rec.Tag, rec.Name)
	}

	// And the back-patched reference inside the val still resolves.
	roots, err := u.Roots()
	if err != nil {
		t.Fatalf("roots: %v", err)
	}
	ref := roots[0].Kids[0].Kids[0]
	if target := resolve(t, u, ref); target.Tag != TYPEDEF || target.Name != "C" {
		t.Fatalf("reference resolves to %s %q after compaction", target.Tag, target.Name)
	}
}

func TestVersionMismatchRejected(t *testing.T) {
	tbl, arena, _ := setup()
	sp := source.Span{File: testFile}
	root := arena.Literal(sp, ast.IntConstant(1))

	p := NewPickler(tbl, arena, nil)
	if err := p.Pickle([]ast.NodeID{root}); err != nil {
		t.Fatalf("pickle: %v", err)
	}
	data, err := p.Bytes(false)
	if err != nil {
		t.Fatalf("bytes: %v", err)
	}
	if _, err := NewUnpickler(data); err != nil {
		t.Fatalf("valid artifact rejected: %v", err)
	}

	tampered := append([]byte(nil), data...)
	tampered[4] = byte(MajorVersion+1) | 0x80
	if _, err := NewUnpickler(tampered); err == nil {
		t.Fatalf("major version bump must be rejected")
	}

	tampered = append([]byte(nil), data...)
	tampered[0] = 0
	if _, err := NewUnpickler(tampered); err == nil {
		t.Fatalf("bad magic must be rejected")
	}
}
