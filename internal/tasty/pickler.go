package tasty

import (
	"fmt"
	"sort"
	"strings"

	"github.com/skvithalani/dotty/internal/ast"
	"github.com/skvithalani/dotty/internal/diag"
	"github.com/skvithalani/dotty/internal/source"
	"github.com/skvithalani/dotty/internal/symbols"
	"github.com/skvithalani/dotty/internal/types"
)

// Pickler serializes one unit's typed trees into the tagged, address-based
// binary form. Single-use: build, Pickle once, then Bytes.
type Pickler struct {
	Table *symbols.Table
	Arena *ast.Arena
	Names *NamePool

	reporter diag.Reporter
	buf      TreeBuffer

	treeAddr map[ast.NodeID]Addr
	typeAddr map[types.TypeID]Addr
	symAddr  map[symbols.SymbolID]Addr

	// pending maps a registered-but-not-yet-emitted symbol to the address
	// slots waiting for its definition record. Drained at emission; must be
	// empty when the traversal ends.
	pending    map[symbols.SymbolID][]int
	registered map[symbols.SymbolID]bool

	pickled bool
}

func NewPickler(tbl *symbols.Table, arena *ast.Arena, reporter diag.Reporter) *Pickler {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	return &Pickler{
		Table:      tbl,
		Arena:      arena,
		Names:      NewNamePool(tbl.Strings),
		reporter:   reporter,
		treeAddr:   make(map[ast.NodeID]Addr),
		typeAddr:   make(map[types.TypeID]Addr),
		symAddr:    make(map[symbols.SymbolID]Addr),
		pending:    make(map[symbols.SymbolID][]int),
		registered: make(map[symbols.SymbolID]bool),
	}
}

// Pickle traverses the roots depth-first, emitting one record per node.
// Failure to resolve every forward reference is a consistency breach, not
// a recoverable condition.
func (p *Pickler) Pickle(roots []ast.NodeID) error {
	if p.pickled {
		return fmt.Errorf("tasty: pickler reused")
	}
	p.pickled = true

	// Every locally indexed symbol is fair game for a forward reference;
	// anything outside this set pickles as a structural name reference.
	for _, id := range p.Table.Definitions() {
		p.registered[id] = true
	}

	for _, root := range roots {
		if err := p.pickleTree(root); err != nil {
			return err
		}
	}
	return p.checkNoStranded()
}

func (p *Pickler) checkNoStranded() error {
	if len(p.pending) == 0 {
		return nil
	}
	names := make([]string, 0, len(p.pending))
	for id := range p.pending {
		names = append(names, p.Table.Name(id))
	}
	sort.Strings(names)
	msg := fmt.Sprintf("unresolved forward references to: %s", strings.Join(names, ", "))
	diag.ReportError(p.reporter, diag.PickleStrandedRef, source.Span{}, msg).Emit()
	return fmt.Errorf("tasty: %s", msg)
}

// Bytes finalizes the buffer and assembles the full artifact: header, name
// pool, then the length-prefixed tree section. With compact set, every
// reserved field shrinks to its minimal width and all cached addresses are
// remapped through the compaction delta.
func (p *Pickler) Bytes(compact bool) ([]byte, error) {
	if len(p.pending) != 0 {
		return nil, fmt.Errorf("tasty: assembling with unresolved forward references")
	}
	if compact {
		remap, err := p.buf.Compact()
		if err != nil {
			return nil, err
		}
		for id, addr := range p.symAddr {
			p.symAddr[id] = remap(addr)
		}
		for id, addr := range p.treeAddr {
			p.treeAddr[id] = remap(addr)
		}
		for id, addr := range p.typeAddr {
			p.typeAddr[id] = remap(addr)
		}
	} else if err := p.buf.Fill(); err != nil {
		return nil, err
	}

	var out Buffer
	out.writeFixed(uint64(Magic), 4)
	out.writeNat(MajorVersion)
	out.writeNat(MinorVersion)
	p.Names.WriteTo(&out)
	out.writeNat(uint64(p.buf.Len()))
	out.writeBytes(p.buf.Bytes())
	return out.Bytes(), nil
}

// SymbolAddr returns the tree-section address of a symbol's definition.
func (p *Pickler) SymbolAddr(id symbols.SymbolID) (Addr, bool) {
	addr, ok := p.symAddr[id]
	return addr, ok
}

// PendingCount reports how many symbols still wait for their definition.
func (p *Pickler) PendingCount() int { return len(p.pending) }

func (p *Pickler) pickleTree(id ast.NodeID) error {
	if !id.IsValid() {
		p.buf.writeByte(byte(EMPTYtree))
		return nil
	}
	if addr, ok := p.treeAddr[id]; ok {
		p.buf.writeByte(byte(SHAREDterm))
		p.buf.WriteAddr(addr)
		return nil
	}
	addr := Addr(p.buf.Len())
	p.treeAddr[id] = addr
	p.registerDef(id, addr)

	node := p.Arena.Get(id)
	switch node.Kind {
	case ast.KindLiteral:
		return p.pickleConst(node.Const)

	case ast.KindIdent:
		return p.lengthRecord(IDENT, func() error {
			p.buf.writeNat(uint64(p.Names.Ref(node.Name)))
			return p.pickleTypeOrNone(node.Type)
		})

	case ast.KindTypeIdent:
		return p.lengthRecord(TYPEIDENT, func() error {
			p.buf.writeNat(uint64(p.Names.Ref(node.Name)))
			return p.pickleTypeOrNone(node.Type)
		})

	case ast.KindSelect, ast.KindTypeSelect:
		tag := SELECT
		if node.Kind == ast.KindTypeSelect {
			tag = TYPESELECT
		}
		return p.lengthRecord(tag, func() error {
			p.buf.writeNat(uint64(p.Names.Ref(node.Name)))
			return p.pickleTree(p.Arena.Qualifier(id))
		})

	case ast.KindApply, ast.KindTypeApply, ast.KindAppliedType:
		tag := APPLY
		switch node.Kind {
		case ast.KindTypeApply:
			tag = TYPEAPPLY
		case ast.KindAppliedType:
			tag = APPLIEDtpt
		}
		return p.lengthRecord(tag, func() error {
			return p.pickleKids(node.Kids)
		})

	case ast.KindNew:
		return p.lengthRecord(NEW, func() error {
			return p.pickleTree(node.Kids[0])
		})

	case ast.KindIf, ast.KindCaseDef, ast.KindBlock, ast.KindMatch,
		ast.KindImport, ast.KindAnnotated, ast.KindPackageDef, ast.KindTypeBoundsTree:
		tag := map[ast.NodeKind]Tag{
			ast.KindIf:             IF,
			ast.KindCaseDef:        CASEDEF,
			ast.KindBlock:          BLOCK,
			ast.KindMatch:          MATCH,
			ast.KindImport:         IMPORT,
			ast.KindAnnotated:      ANNOTATED,
			ast.KindPackageDef:     PACKAGEdef,
			ast.KindTypeBoundsTree: TYPEBOUNDS,
		}[node.Kind]
		return p.lengthRecord(tag, func() error {
			return p.pickleKids(node.Kids)
		})

	case ast.KindValDef:
		return p.lengthRecord(VALDEF, func() error {
			p.buf.writeNat(uint64(p.Names.Ref(node.Name)))
			p.buf.writeNat(uint64(node.Flags))
			if err := p.pickleTree(p.Arena.ValDefTpt(id)); err != nil {
				return err
			}
			return p.pickleTree(p.Arena.ValDefRhs(id))
		})

	case ast.KindDefDef:
		return p.lengthRecord(DEFDEF, func() error {
			p.buf.writeNat(uint64(p.Names.Ref(node.Name)))
			p.buf.writeNat(uint64(node.Flags))
			params := p.Arena.DefDefParams(id)
			p.buf.writeNat(uint64(len(params)))
			for _, param := range params {
				if err := p.pickleTree(param); err != nil {
					return err
				}
			}
			if err := p.pickleTree(p.Arena.DefDefTpt(id)); err != nil {
				return err
			}
			return p.pickleTree(p.Arena.DefDefRhs(id))
		})

	case ast.KindTypeDef:
		return p.lengthRecord(TYPEDEF, func() error {
			p.buf.writeNat(uint64(p.Names.Ref(node.Name)))
			p.buf.writeNat(uint64(node.Flags))
			if err := p.pickleTree(p.Arena.TypeDefRhs(id)); err != nil {
				return err
			}
			return p.pickleAnnotations(id)
		})

	case ast.KindTemplate:
		return p.lengthRecord(TEMPLATE, func() error {
			if err := p.pickleTree(p.Arena.TemplateConstr(id)); err != nil {
				return err
			}
			parents := p.Arena.TemplateParents(id)
			p.buf.writeNat(uint64(len(parents)))
			for _, parent := range parents {
				if err := p.pickleTree(parent); err != nil {
					return err
				}
			}
			return p.pickleKids(p.Arena.TemplateBody(id))
		})

	case ast.KindInlined:
		// Only the trimmed call reference survives pickling.
		return p.lengthRecord(INLINED, func() error {
			return p.pickleTree(p.Arena.InlinedCall(id))
		})

	case ast.KindTypedSplice, ast.KindUntypedSplice:
		return p.lengthRecord(SPLICE, func() error {
			return p.pickleTree(p.Arena.SpliceInner(id))
		})

	default:
		return fmt.Errorf("tasty: cannot pickle %s", node.Kind)
	}
}

// registerDef resolves every pending forward reference to a definition the
// moment its record starts, so self-references inside the body land on a
// direct address.
func (p *Pickler) registerDef(tree ast.NodeID, addr Addr) {
	id, ok := p.Table.DefSymbol(tree)
	if !ok {
		return
	}
	p.symAddr[id] = addr
	for _, slotIdx := range p.pending[id] {
		p.buf.PatchAddr(slotIdx, addr)
	}
	delete(p.pending, id)
}

func (p *Pickler) pickleKids(kids []ast.NodeID) error {
	for _, kid := range kids {
		if err := p.pickleTree(kid); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pickler) pickleAnnotations(tree ast.NodeID) error {
	id, ok := p.Table.DefSymbol(tree)
	if !ok {
		p.buf.writeNat(0)
		return nil
	}
	annots := p.Table.Symbols.Get(id).Denot().Annotations
	p.buf.writeNat(uint64(len(annots)))
	for _, a := range annots {
		p.buf.writeNat(uint64(p.Names.Ref(a.Name)))
		if err := p.pickleTree(a.Arg); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pickler) lengthRecord(tag Tag, body func() error) error {
	p.buf.writeByte(byte(tag))
	slot := p.buf.ReserveLength()
	if err := body(); err != nil {
		return err
	}
	p.buf.PatchLength(slot)
	return nil
}

func (p *Pickler) pickleConst(c ast.Constant) error {
	switch c.Tag {
	case ast.ConstUnit:
		p.buf.writeByte(byte(UNITconst))
	case ast.ConstTrue:
		p.buf.writeByte(byte(TRUEconst))
	case ast.ConstFalse:
		p.buf.writeByte(byte(FALSEconst))
	case ast.ConstByte:
		p.buf.writeByte(byte(BYTEconst))
		p.buf.writeFixed(c.Bits, 1)
	case ast.ConstShort:
		p.buf.writeByte(byte(SHORTconst))
		p.buf.writeFixed(c.Bits, 2)
	case ast.ConstChar:
		p.buf.writeByte(byte(CHARconst))
		p.buf.writeFixed(c.Bits, 4)
	case ast.ConstInt:
		p.buf.writeByte(byte(INTconst))
		p.buf.writeFixed(c.Bits, 4)
	case ast.ConstLong:
		p.buf.writeByte(byte(LONGconst))
		p.buf.writeFixed(c.Bits, 8)
	case ast.ConstFloat:
		// Raw IEEE-754 bits; never a decimal rendering.
		p.buf.writeByte(byte(FLOATconst))
		p.buf.writeFixed(c.Bits, 4)
	case ast.ConstDouble:
		p.buf.writeByte(byte(DOUBLEconst))
		p.buf.writeFixed(c.Bits, 8)
	case ast.ConstString:
		p.buf.writeByte(byte(STRINGconst))
		p.buf.writeNat(uint64(p.Names.Ref(c.Str)))
	default:
		return fmt.Errorf("tasty: cannot pickle constant %s", c.Tag)
	}
	return nil
}

// pickleTypeOrNone writes NOTYPE for untyped positions.
func (p *Pickler) pickleTypeOrNone(ty types.TypeID) error {
	if ty == types.NoTypeID {
		p.buf.writeByte(byte(NOTYPE))
		return nil
	}
	return p.pickleType(ty)
}

func (p *Pickler) pickleType(ty types.TypeID) error {
	t, ok := p.Table.Types.Lookup(ty)
	if !ok {
		diag.ReportError(p.reporter, diag.PickleUnknownType, source.Span{},
			fmt.Sprintf("unknown type %d in pickled tree", ty)).Emit()
		return fmt.Errorf("tasty: unknown type %d", ty)
	}

	switch t.Kind {
	case types.KindNoPrefix:
		p.buf.writeByte(byte(NOPREFIX))
		return nil
	case types.KindError, types.KindUnit, types.KindBool, types.KindByte,
		types.KindShort, types.KindInt, types.KindLong, types.KindFloat,
		types.KindDouble, types.KindChar, types.KindString, types.KindAny,
		types.KindNothing:
		p.buf.writeByte(byte(BUILTINtype))
		p.buf.writeNat(uint64(t.Kind))
		return nil
	}

	if addr, ok := p.typeAddr[ty]; ok {
		p.buf.writeByte(byte(SHAREDtype))
		p.buf.WriteAddr(addr)
		return nil
	}
	p.typeAddr[ty] = Addr(p.buf.Len())

	switch t.Kind {
	case types.KindTermRef, types.KindTypeRef:
		isType := t.Kind == types.KindTypeRef
		if t.Sym != types.NoSymbolRef {
			p.pickleSymRef(symbols.SymbolID(t.Sym), isType)
			return nil
		}
		tag := TERMREFname
		if isType {
			tag = TYPEREFname
		}
		return p.lengthRecord(tag, func() error {
			p.buf.writeNat(uint64(p.Names.Ref(t.Name)))
			return p.pickleType(t.Prefix)
		})

	case types.KindApplied:
		return p.lengthRecord(APPLIEDtype, func() error {
			if err := p.pickleType(t.Prefix); err != nil {
				return err
			}
			return p.pickleTypes(t.Args)
		})

	case types.KindMethod:
		return p.lengthRecord(METHODtype, func() error {
			if err := p.pickleType(t.Result); err != nil {
				return err
			}
			return p.pickleTypes(t.Args)
		})

	case types.KindExpr:
		return p.lengthRecord(EXPRtype, func() error {
			return p.pickleType(t.Result)
		})

	case types.KindBounds:
		return p.lengthRecord(BOUNDStype, func() error {
			if err := p.pickleType(t.Lo); err != nil {
				return err
			}
			return p.pickleType(t.Hi)
		})

	case types.KindClassInfo:
		return p.lengthRecord(CLASSinfo, func() error {
			p.pickleSymRef(symbols.SymbolID(t.Sym), true)
			return p.pickleTypes(t.Args)
		})

	default:
		diag.ReportError(p.reporter, diag.PickleUnknownType, source.Span{},
			fmt.Sprintf("cannot pickle type kind %v", t.Kind)).Emit()
		return fmt.Errorf("tasty: cannot pickle type kind %v", t.Kind)
	}
}

func (p *Pickler) pickleTypes(tys []types.TypeID) error {
	for _, ty := range tys {
		if err := p.pickleType(ty); err != nil {
			return err
		}
	}
	return nil
}

// pickleSymRef encodes a symbol reference in one of three forms: direct
// address when the definition was already emitted, a reserved forward slot
// when the symbol is local but still ahead in the stream, or a structural
// name reference for symbols this unit does not define.
func (p *Pickler) pickleSymRef(id symbols.SymbolID, isType bool) {
	tag := TERMREFsym
	if isType {
		tag = TYPEREFsym
	}
	if addr, ok := p.symAddr[id]; ok {
		p.buf.writeByte(byte(tag))
		p.buf.WriteAddr(addr)
		return
	}
	if p.registered[id] {
		p.buf.writeByte(byte(tag))
		slotIdx := p.buf.ReserveAddr()
		p.pending[id] = append(p.pending[id], slotIdx)
		return
	}

	nameTag := TERMREFname
	if isType {
		nameTag = TYPEREFname
	}
	p.buf.writeByte(byte(nameTag))
	slot := p.buf.ReserveLength()
	name := source.StringID(0)
	if sym := p.Table.Symbols.Get(id); sym != nil {
		name = sym.Name
	}
	p.buf.writeNat(uint64(p.Names.Ref(name)))
	p.buf.writeByte(byte(NOPREFIX))
	p.buf.PatchLength(slot)
}
