package symbols

import (
	"github.com/skvithalani/dotty/internal/source"
)

// ScopeKind enumerates supported scope categories.
type ScopeKind uint8

const (
	ScopeInvalid ScopeKind = iota
	ScopePackage           // top-level declarations of a unit
	ScopeClass             // members of a class or module class
	ScopeMethod            // parameters and locals of a method
	ScopeBlock             // generic block scope
)

func (k ScopeKind) String() string {
	switch k {
	case ScopePackage:
		return "package"
	case ScopeClass:
		return "class"
	case ScopeMethod:
		return "method"
	case ScopeBlock:
		return "block"
	default:
		return "invalid"
	}
}

// Scope models a lexical scope with a parent-child hierarchy. NameIndex may
// hold several symbols per name: at most one term-side and one type-side
// entry coexist legally (a class and its companion module).
type Scope struct {
	Kind      ScopeKind
	Parent    ScopeID
	Owner     SymbolID // symbol whose definition introduced the scope
	Span      source.Span
	NameIndex map[source.StringID][]SymbolID
	Symbols   []SymbolID
	Children  []ScopeID
}

// Lookup returns the symbols registered under name in this scope only.
func (s *Scope) Lookup(name source.StringID) []SymbolID {
	return s.NameIndex[name]
}

// Insert registers a symbol under its name.
func (s *Scope) Insert(name source.StringID, id SymbolID) {
	s.Symbols = append(s.Symbols, id)
	s.NameIndex[name] = append(s.NameIndex[name], id)
}
