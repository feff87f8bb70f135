// Package types holds the interned type descriptors produced by completion.
// Descriptors are immutable and referenced by dense TypeIDs, so a symbol's
// info can be swapped wholesale without touching anything that captured the
// old ID's holder.
package types

import (
	"github.com/skvithalani/dotty/internal/source"
)

// TypeID references an interned type descriptor.
type TypeID uint32

// NoTypeID marks the absence of a type. A symbol whose info is NoTypeID has
// not been completed yet.
const NoTypeID TypeID = 0

// SymbolRef mirrors symbols.SymbolID without importing the symbols package;
// types sit below symbols in the dependency order.
type SymbolRef uint32

// NoSymbolRef marks the absence of a symbol reference.
const NoSymbolRef SymbolRef = 0

// Kind discriminates type descriptors.
type Kind uint8

const (
	KindInvalid Kind = iota
	// KindError is the error marker installed after a reported failure.
	// Callers must treat it as "already reported".
	KindError
	KindUnit
	KindBool
	KindByte
	KindShort
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindChar
	KindString
	KindAny
	KindNothing
	// KindNoPrefix is the empty prefix of a direct reference.
	KindNoPrefix
	// KindTermRef references a term symbol, locally by SymbolRef or
	// externally by prefix and name.
	KindTermRef
	// KindTypeRef references a type symbol the same way.
	KindTypeRef
	// KindApplied is a type constructor application.
	KindApplied
	// KindMethod is a method signature: parameter types and a result.
	KindMethod
	// KindExpr is a by-name result type.
	KindExpr
	// KindClassInfo carries a class's parents and self reference.
	KindClassInfo
	// KindBounds is a type-bounds interval.
	KindBounds
)

func (k Kind) String() string {
	switch k {
	case KindError:
		return "<error>"
	case KindUnit:
		return "Unit"
	case KindBool:
		return "Boolean"
	case KindByte:
		return "Byte"
	case KindShort:
		return "Short"
	case KindInt:
		return "Int"
	case KindLong:
		return "Long"
	case KindFloat:
		return "Float"
	case KindDouble:
		return "Double"
	case KindChar:
		return "Char"
	case KindString:
		return "String"
	case KindAny:
		return "Any"
	case KindNothing:
		return "Nothing"
	case KindNoPrefix:
		return "<noprefix>"
	case KindTermRef:
		return "termref"
	case KindTypeRef:
		return "typeref"
	case KindApplied:
		return "applied"
	case KindMethod:
		return "method"
	case KindExpr:
		return "expr"
	case KindClassInfo:
		return "classinfo"
	case KindBounds:
		return "bounds"
	default:
		return "invalid"
	}
}

// Type is a structural descriptor. Which fields are meaningful depends on
// Kind; unused fields stay zero so structurally equal descriptors intern to
// the same ID.
type Type struct {
	Kind   Kind
	Sym    SymbolRef       // TermRef/TypeRef: local symbol
	Name   source.StringID // TermRef/TypeRef: external name
	Prefix TypeID          // TermRef/TypeRef: qualifier
	Result TypeID          // Method/Expr: result type
	Lo     TypeID          // Bounds
	Hi     TypeID          // Bounds
	Args   []TypeID        // Applied: args; Method: params; ClassInfo: parents
}

// IsError reports whether t is the error marker.
func (t Type) IsError() bool { return t.Kind == KindError }

// IsRef reports whether t references a symbol.
func (t Type) IsRef() bool { return t.Kind == KindTermRef || t.Kind == KindTypeRef }
