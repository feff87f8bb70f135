package types

import (
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"github.com/skvithalani/dotty/internal/source"
)

// Builtins stores TypeIDs for descriptors every phase needs.
type Builtins struct {
	Error    TypeID
	Unit     TypeID
	Bool     TypeID
	Byte     TypeID
	Short    TypeID
	Int      TypeID
	Long     TypeID
	Float    TypeID
	Double   TypeID
	Char     TypeID
	String   TypeID
	Any      TypeID
	Nothing  TypeID
	NoPrefix TypeID
}

// Interner provides stable TypeIDs keyed by structural equality.
type Interner struct {
	types []Type
	index map[typeKey]TypeID
	b     Builtins
}

// NewInterner constructs an interner seeded with built-in descriptors.
func NewInterner() *Interner {
	in := &Interner{
		types: make([]Type, 1, 64), // index 0 reserved for NoTypeID
		index: make(map[typeKey]TypeID, 64),
	}
	in.b.Error = in.Intern(Type{Kind: KindError})
	in.b.Unit = in.Intern(Type{Kind: KindUnit})
	in.b.Bool = in.Intern(Type{Kind: KindBool})
	in.b.Byte = in.Intern(Type{Kind: KindByte})
	in.b.Short = in.Intern(Type{Kind: KindShort})
	in.b.Int = in.Intern(Type{Kind: KindInt})
	in.b.Long = in.Intern(Type{Kind: KindLong})
	in.b.Float = in.Intern(Type{Kind: KindFloat})
	in.b.Double = in.Intern(Type{Kind: KindDouble})
	in.b.Char = in.Intern(Type{Kind: KindChar})
	in.b.String = in.Intern(Type{Kind: KindString})
	in.b.Any = in.Intern(Type{Kind: KindAny})
	in.b.Nothing = in.Intern(Type{Kind: KindNothing})
	in.b.NoPrefix = in.Intern(Type{Kind: KindNoPrefix})
	return in
}

// Builtins returns the seeded TypeIDs.
func (in *Interner) Builtins() Builtins {
	return in.b
}

// Intern ensures the descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	key := makeKey(t)
	if id, ok := in.index[key]; ok {
		return id
	}
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("types: interner overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	in.index[key] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	t, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return t
}

// Len counts interned descriptors, including the sentinel slot.
func (in *Interner) Len() int { return len(in.types) }

// Convenience constructors.

// TermRef interns a reference to a local term symbol.
func (in *Interner) TermRef(sym SymbolRef) TypeID {
	return in.Intern(Type{Kind: KindTermRef, Sym: sym, Prefix: in.b.NoPrefix})
}

// TypeRef interns a reference to a local type symbol.
func (in *Interner) TypeRef(sym SymbolRef) TypeID {
	return in.Intern(Type{Kind: KindTypeRef, Sym: sym, Prefix: in.b.NoPrefix})
}

// ExternalRef interns a reference by prefix and name, for symbols that live
// outside the current compilation unit.
func (in *Interner) ExternalRef(kind Kind, prefix TypeID, name source.StringID) TypeID {
	if kind != KindTermRef && kind != KindTypeRef {
		panic("types: external ref must be a term or type reference")
	}
	return in.Intern(Type{Kind: kind, Prefix: prefix, Name: name})
}

// Applied interns a type constructor application.
func (in *Interner) Applied(tycon TypeID, args []TypeID) TypeID {
	return in.Intern(Type{Kind: KindApplied, Prefix: tycon, Args: args})
}

// Method interns a method signature.
func (in *Interner) Method(params []TypeID, result TypeID) TypeID {
	return in.Intern(Type{Kind: KindMethod, Args: params, Result: result})
}

// Expr interns a by-name result type.
func (in *Interner) Expr(result TypeID) TypeID {
	return in.Intern(Type{Kind: KindExpr, Result: result})
}

// Bounds interns a type-bounds interval.
func (in *Interner) Bounds(lo, hi TypeID) TypeID {
	return in.Intern(Type{Kind: KindBounds, Lo: lo, Hi: hi})
}

// ClassInfo interns a class descriptor with the given parents. The self
// reference is the symbol owning the info.
func (in *Interner) ClassInfo(self SymbolRef, parents []TypeID) TypeID {
	return in.Intern(Type{Kind: KindClassInfo, Sym: self, Args: parents})
}

// typeKey flattens a descriptor into a comparable value. The variable-length
// Args slice is folded into a string so the whole key is hashable.
type typeKey struct {
	Kind   Kind
	Sym    SymbolRef
	Name   source.StringID
	Prefix TypeID
	Result TypeID
	Lo     TypeID
	Hi     TypeID
	args   string
}

func makeKey(t Type) typeKey {
	key := typeKey{
		Kind:   t.Kind,
		Sym:    t.Sym,
		Name:   t.Name,
		Prefix: t.Prefix,
		Result: t.Result,
		Lo:     t.Lo,
		Hi:     t.Hi,
	}
	if len(t.Args) > 0 {
		var sb strings.Builder
		for _, a := range t.Args {
			sb.WriteString(strconv.FormatUint(uint64(a), 36))
			sb.WriteByte(',')
		}
		key.args = sb.String()
	}
	return key
}
