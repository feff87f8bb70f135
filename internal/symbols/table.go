package symbols

import (
	"github.com/skvithalani/dotty/internal/ast"
	"github.com/skvithalani/dotty/internal/diag"
	"github.com/skvithalani/dotty/internal/flags"
	"github.com/skvithalani/dotty/internal/source"
	"github.com/skvithalani/dotty/internal/types"
)

// Hints provide optional capacity suggestions for the table arenas.
type Hints struct{ Scopes, Symbols uint32 }

// Table aggregates the symbol arenas and shared resources for one
// compilation run. Tables are single-threaded; concurrent units each get
// their own.
type Table struct {
	Scopes   *Scopes
	Symbols  *Symbols
	Strings  *source.Interner
	Types    *types.Interner
	Reporter diag.Reporter

	defs       map[ast.NodeID]SymbolID // definition tree -> its symbol
	companions map[SymbolID]SymbolID   // class <-> module val, both ways
	prevNames  map[source.StringID]bool
}

// NewTable builds a fresh table. Nil interners are allocated on demand so
// tests can start from zero.
func NewTable(h Hints, strings *source.Interner, tys *types.Interner, reporter diag.Reporter) *Table {
	if strings == nil {
		strings = source.NewInterner()
	}
	if tys == nil {
		tys = types.NewInterner()
	}
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	return &Table{
		Scopes:     NewScopes(h.Scopes),
		Symbols:    NewSymbols(h.Symbols),
		Strings:    strings,
		Types:      tys,
		Reporter:   reporter,
		defs:       make(map[ast.NodeID]SymbolID),
		companions: make(map[SymbolID]SymbolID),
		prevNames:  make(map[source.StringID]bool),
	}
}

// NewSymbol creates an indexed symbol. When completer is nil the info is
// final immediately (state CompleterNone); otherwise the symbol stays
// uncompleted until first Info access.
func (t *Table) NewSymbol(name source.StringID, isType bool, owner SymbolID, fl flags.FlagSet,
	span source.Span, decl SymbolDecl, info types.TypeID, completer *Completer) SymbolID {

	sym := Symbol{
		Name:   name,
		IsType: isType,
		Decl:   decl,
		denot: Denotation{
			Flags: fl,
			Info:  info,
			Owner: owner,
			Span:  span,
		},
	}
	if completer != nil {
		sym.state = CompleterPending
		sym.completer = completer
	}
	id := t.Symbols.New(&sym)
	if decl.Node.IsValid() {
		t.defs[decl.Node] = id
	}
	return id
}

// DefSymbol returns the symbol created for a definition tree.
func (t *Table) DefSymbol(node ast.NodeID) (SymbolID, bool) {
	id, ok := t.defs[node]
	return id, ok
}

// Definitions lists every symbol that was created for a definition tree.
// The pickler's pre-registration scan uses it to tell local symbols from
// external ones.
func (t *Table) Definitions() []SymbolID {
	out := make([]SymbolID, 0, len(t.defs))
	for _, id := range t.defs {
		out = append(out, id)
	}
	return out
}

// SetDenotation replaces a symbol's denotation wholesale, e.g. when a
// definition is re-entered in incremental compilation. The completer state
// resets so the new info (or completer) governs.
func (t *Table) SetDenotation(id SymbolID, d Denotation, completer *Completer) {
	sym := t.Symbols.Get(id)
	if sym == nil {
		return
	}
	sym.denot = d
	sym.completer = completer
	if completer != nil {
		sym.state = CompleterPending
	} else {
		sym.state = CompleterNone
	}
}

// MarkAbsent invalidates a symbol whose defining tree is gone. Stale
// lookups see the Absent flag instead of leaking an outdated denotation.
func (t *Table) MarkAbsent(id SymbolID) {
	sym := t.Symbols.Get(id)
	if sym == nil {
		return
	}
	sym.denot.Flags = sym.denot.Flags.Union(flags.Absent)
	sym.denot.Info = t.Types.Builtins().Error
	sym.state = CompleterNone
	sym.completer = nil
}

// BeginRun records the names that existed in the previous run, feeding the
// absent-companion placeholders.
func (t *Table) BeginRun(previous []source.StringID) {
	t.prevNames = make(map[source.StringID]bool, len(previous))
	for _, n := range previous {
		t.prevNames[n] = true
	}
}

// HadPreviously reports whether a name was defined in the previous run.
func (t *Table) HadPreviously(name source.StringID) bool {
	return t.prevNames[name]
}

// LinkCompanions cross-references a class and its module value.
func (t *Table) LinkCompanions(class, module SymbolID) {
	t.companions[class] = module
	t.companions[module] = class
}

// Companion returns the linked companion, if any.
func (t *Table) Companion(id SymbolID) (SymbolID, bool) {
	c, ok := t.companions[id]
	return c, ok
}

// MemberScope returns the scope a class-like or method symbol owns.
func (t *Table) MemberScope(id SymbolID) ScopeID {
	if sym := t.Symbols.Get(id); sym != nil {
		return sym.Scope
	}
	return NoScopeID
}

// LookupIn searches a scope chain for a name, innermost first. wantType
// selects the type-side or term-side symbol when both share the name.
func (t *Table) LookupIn(scope ScopeID, name source.StringID, wantType bool) SymbolID {
	for scope.IsValid() {
		s := t.Scopes.Get(scope)
		if s == nil {
			break
		}
		ids := s.Lookup(name)
		for i := len(ids) - 1; i >= 0; i-- {
			if sym := t.Symbols.Get(ids[i]); sym != nil && sym.IsType == wantType {
				return ids[i]
			}
		}
		scope = s.Parent
	}
	return NoSymbolID
}

// OwnerChain reports whether candidate appears in the owner chain of id.
func (t *Table) OwnerChain(id, candidate SymbolID) bool {
	for id.IsValid() {
		if id == candidate {
			return true
		}
		sym := t.Symbols.Get(id)
		if sym == nil {
			break
		}
		id = sym.denot.Owner
	}
	return false
}

// Name renders a symbol's name for diagnostics.
func (t *Table) Name(id SymbolID) string {
	sym := t.Symbols.Get(id)
	if sym == nil {
		return "<none>"
	}
	return t.Strings.MustLookup(sym.Name)
}
