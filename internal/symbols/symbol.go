package symbols

import (
	"github.com/skvithalani/dotty/internal/ast"
	"github.com/skvithalani/dotty/internal/flags"
	"github.com/skvithalani/dotty/internal/source"
	"github.com/skvithalani/dotty/internal/types"
)

// Annotation attaches structured metadata to a denotation. Arg points at
// the annotation's argument tree when it has one.
type Annotation struct {
	Name source.StringID
	Arg  ast.NodeID
}

// Denotation is the mutable record behind a symbol: what the name means
// right now. Replacing it wholesale (incremental recompilation) leaves every
// captured SymbolID valid and transparently pointing at the new meaning.
type Denotation struct {
	Flags         flags.FlagSet
	Info          types.TypeID // NoTypeID until completed
	Owner         SymbolID
	PrivateWithin SymbolID
	Annotations   []Annotation
	Span          source.Span
}

// SymbolDecl records the AST origin of a symbol for diagnostics and for the
// pickler's definition lookup.
type SymbolDecl struct {
	SourceFile source.FileID
	Node       ast.NodeID
}

// Symbol is a stable identity. Everything that can change lives in the
// denotation; the completer fields drive lazy signature computation.
type Symbol struct {
	Name   source.StringID
	IsType bool // type-side symbol (class, type member) vs term-side
	Scope  ScopeID // member scope the symbol owns; NoScopeID for plain vals
	Decl   SymbolDecl

	denot     Denotation
	state     CompleterState
	completer *Completer
}

// Denot returns the current denotation.
func (s *Symbol) Denot() *Denotation { return &s.denot }

// Flags returns the current flags without forcing completion.
func (s *Symbol) Flags() flags.FlagSet { return s.denot.Flags }

// SetFlags adds flags to the denotation.
func (s *Symbol) SetFlags(fl flags.FlagSet) {
	s.denot.Flags = s.denot.Flags.Union(fl)
}

// Owner returns the owning symbol without forcing completion.
func (s *Symbol) Owner() SymbolID { return s.denot.Owner }

// Span returns the declaration span.
func (s *Symbol) Span() source.Span { return s.denot.Span }

// IsCompleted reports whether info is final (successfully or not).
func (s *Symbol) IsCompleted() bool {
	return s.state == CompleterDone || s.state == CompleterFailed || s.state == CompleterNone
}

// IsAbsent reports whether the symbol was invalidated across runs.
func (s *Symbol) IsAbsent() bool { return s.denot.Flags.Is(flags.Absent) }

// AddAnnotation appends an annotation, skipping duplicates by name.
func (s *Symbol) AddAnnotation(a Annotation) bool {
	for _, existing := range s.denot.Annotations {
		if existing.Name == a.Name {
			return false
		}
	}
	s.denot.Annotations = append(s.denot.Annotations, a)
	return true
}

// HasAnnotation reports whether an annotation with the name is attached.
func (s *Symbol) HasAnnotation(name source.StringID) bool {
	for _, a := range s.denot.Annotations {
		if a.Name == name {
			return true
		}
	}
	return false
}
