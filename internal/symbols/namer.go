package symbols

import (
	"fmt"

	"github.com/skvithalani/dotty/internal/ast"
	"github.com/skvithalani/dotty/internal/diag"
	"github.com/skvithalani/dotty/internal/flags"
	"github.com/skvithalani/dotty/internal/source"
	"github.com/skvithalani/dotty/internal/types"
)

// Result carries what indexing produced for one file.
type Result struct {
	RootScope ScopeID
	TopLevel  []SymbolID
}

// Namer drives the cheap first phase of symbol creation: walk definition
// trees, allocate symbols with their flags and owners, enter them into
// scopes, and attach completers for the expensive signature work. Nothing
// here forces a completer.
type Namer struct {
	table *Table
	arena *ast.Arena
	typer Typer
	file  source.FileID
}

// NewNamer wires a namer to a table and one file's tree arena. A nil typer
// falls back to the in-tree signature typer.
func NewNamer(table *Table, arena *ast.Arena, typer Typer) *Namer {
	if typer == nil {
		typer = &SignatureTyper{Table: table}
	}
	return &Namer{table: table, arena: arena, typer: typer}
}

// IndexFile indexes all top-level definitions of a file, then links
// companions. PackageDef roots are transparent: their stats are indexed
// into the same root scope.
func (n *Namer) IndexFile(file source.FileID, roots []ast.NodeID) *Result {
	n.file = file
	rootScope := n.table.Scopes.New(ScopePackage, NoScopeID, NoSymbolID, source.Span{File: file})

	var stats []ast.NodeID
	for _, root := range roots {
		if node := n.arena.Get(root); node != nil && node.Kind == ast.KindPackageDef {
			stats = append(stats, node.Kids[1:]...)
			continue
		}
		stats = append(stats, root)
	}
	stats = n.expandCompanions(stats)

	res := &Result{RootScope: rootScope}
	for _, stat := range stats {
		if id := n.indexDef(stat, rootScope, NoSymbolID); id.IsValid() {
			res.TopLevel = append(res.TopLevel, id)
		}
	}
	n.linkCompanions(rootScope)
	return res
}

// indexDef allocates the symbol(s) for one definition tree and returns the
// primary one.
func (n *Namer) indexDef(stat ast.NodeID, scope ScopeID, owner SymbolID) SymbolID {
	node := n.arena.Get(stat)
	if node == nil {
		return NoSymbolID
	}
	switch node.Kind {
	case ast.KindValDef:
		return n.indexVal(stat, node, scope, owner)
	case ast.KindDefDef:
		return n.indexDefDef(stat, node, scope, owner)
	case ast.KindTypeDef:
		if node.Flags.Is(flags.Module) {
			return n.indexModule(stat, node, scope, owner)
		}
		if rhs := n.arena.TypeDefRhs(stat); rhs.IsValid() && n.arena.Get(rhs).Kind == ast.KindTemplate {
			return n.indexClass(stat, node, scope, owner)
		}
		return n.indexTypeAlias(stat, node, scope, owner)
	default:
		// Imports and plain statements introduce no symbols.
		return NoSymbolID
	}
}

func (n *Namer) indexVal(stat ast.NodeID, node *ast.Node, scope ScopeID, owner SymbolID) SymbolID {
	name, fresh := n.declareName(node.Name, false, scope, node.Span)
	fl := node.Flags.ToTermFlags()
	if fresh {
		fl = fl.Union(flags.Fresh)
	}
	id := n.table.NewSymbol(name, false, owner, fl, node.Span,
		SymbolDecl{SourceFile: n.file, Node: stat}, types.NoTypeID,
		&Completer{Fn: valComplete, Arena: n.arena, Tree: stat, Scope: scope, Typer: n.typer})
	n.insert(scope, name, id)
	return id
}

func (n *Namer) indexDefDef(stat ast.NodeID, node *ast.Node, scope ScopeID, owner SymbolID) SymbolID {
	name, fresh := n.declareName(node.Name, false, scope, node.Span)
	fl := node.Flags.ToTermFlags().Union(flags.Method)
	if fresh {
		fl = fl.Union(flags.Fresh)
	}
	completer := &Completer{Fn: defComplete, Arena: n.arena, Tree: stat, Scope: scope, Typer: n.typer}
	id := n.table.NewSymbol(name, false, owner, fl, node.Span,
		SymbolDecl{SourceFile: n.file, Node: stat}, types.NoTypeID, completer)
	n.insert(scope, name, id)

	// Parameters live in a method scope so result types can refer to them.
	if params := n.arena.DefDefParams(stat); len(params) > 0 {
		mscope := n.table.Scopes.New(ScopeMethod, scope, id, node.Span)
		for _, param := range params {
			n.indexParam(param, mscope, id)
		}
		completer.Scope = mscope
		n.table.Symbols.Get(id).Scope = mscope
	}
	return id
}

func (n *Namer) indexParam(param ast.NodeID, scope ScopeID, owner SymbolID) SymbolID {
	node := n.arena.Get(param)
	if node == nil || node.Kind != ast.KindValDef {
		return NoSymbolID
	}
	fl := node.Flags.ToTermFlags().Union(flags.Param)
	id := n.table.NewSymbol(node.Name, false, owner, fl, node.Span,
		SymbolDecl{SourceFile: n.file, Node: param}, types.NoTypeID,
		&Completer{Fn: valComplete, Arena: n.arena, Tree: param, Scope: scope, Typer: n.typer})
	n.insert(scope, node.Name, id)
	return id
}

// indexClass allocates the class symbol, then enters the primary
// constructor's parameters into the class scope before anything resolves
// parent types: parents may reference those parameters. Parent resolution
// itself waits until the class completer runs, after the parameters have
// been completed, which breaks the cyclic-bounds failure mode where a
// parent needs the class's own still-unknown shape.
func (n *Namer) indexClass(stat ast.NodeID, node *ast.Node, scope ScopeID, owner SymbolID) SymbolID {
	name, fresh := n.declareName(node.Name, true, scope, node.Span)
	fl := node.Flags.ToTypeFlags()
	if fresh {
		fl = fl.Union(flags.Fresh)
	}
	completer := &Completer{Fn: classComplete, Arena: n.arena, Tree: stat, Scope: scope, Typer: n.typer}
	id := n.table.NewSymbol(name, true, owner, fl, node.Span,
		SymbolDecl{SourceFile: n.file, Node: stat}, types.NoTypeID, completer)
	n.insert(scope, name, id)

	classScope := n.table.Scopes.New(ScopeClass, scope, id, node.Span)
	completer.Scope = classScope
	n.table.Symbols.Get(id).Scope = classScope

	tmpl := n.arena.TypeDefRhs(stat)
	if ctor := n.arena.TemplateConstr(tmpl); ctor.IsValid() {
		for _, param := range n.arena.DefDefParams(ctor) {
			pid := n.indexParam(param, classScope, id)
			if sym := n.table.Symbols.Get(pid); sym != nil {
				sym.SetFlags(flags.ParamAccessor)
			}
		}
	}
	for _, member := range n.arena.TemplateBody(tmpl) {
		n.indexDef(member, classScope, id)
	}
	return id
}

// indexModule allocates the module value / module class pair. The class is
// entered under the mangled name "name$"; the value's info resolves to a
// reference to the class once completed.
func (n *Namer) indexModule(stat ast.NodeID, node *ast.Node, scope ScopeID, owner SymbolID) SymbolID {
	name, fresh := n.declareName(node.Name, false, scope, node.Span)
	classNameStr := n.table.Strings.MustLookup(name) + "$"
	className := n.table.Strings.Intern(classNameStr)

	classFl := node.Flags.ToTypeFlags().Diff(flags.Module.ToTypeFlags()).
		Union(flags.ModuleClass).Union(flags.Final.ToTypeFlags())
	classCompleter := &Completer{Fn: classComplete, Arena: n.arena, Tree: stat, Scope: scope, Typer: n.typer}
	tmpl := n.arena.TypeDefRhs(stat)
	classID := n.table.NewSymbol(className, true, owner, classFl, node.Span,
		SymbolDecl{SourceFile: n.file, Node: tmpl}, types.NoTypeID, classCompleter)
	n.insert(scope, className, classID)

	valFl := node.Flags.ToTermFlags().Union(flags.ModuleCreation)
	if fresh {
		valFl = valFl.Union(flags.Fresh)
	}
	valID := n.table.NewSymbol(name, false, owner, valFl, node.Span,
		SymbolDecl{SourceFile: n.file, Node: stat}, types.NoTypeID,
		&Completer{Fn: moduleValComplete, Arena: n.arena, Tree: stat, Scope: scope, Typer: n.typer, Assoc: classID})
	n.insert(scope, name, valID)

	classScope := n.table.Scopes.New(ScopeClass, scope, classID, node.Span)
	classCompleter.Scope = classScope
	n.table.Symbols.Get(classID).Scope = classScope
	for _, member := range n.arena.TemplateBody(tmpl) {
		n.indexDef(member, classScope, classID)
	}
	return valID
}

func (n *Namer) indexTypeAlias(stat ast.NodeID, node *ast.Node, scope ScopeID, owner SymbolID) SymbolID {
	name, fresh := n.declareName(node.Name, true, scope, node.Span)
	fl := node.Flags.ToTypeFlags()
	if fresh {
		fl = fl.Union(flags.Fresh)
	}
	id := n.table.NewSymbol(name, true, owner, fl, node.Span,
		SymbolDecl{SourceFile: n.file, Node: stat}, types.NoTypeID,
		&Completer{Fn: typeAliasComplete, Arena: n.arena, Tree: stat, Scope: scope, Typer: n.typer})
	n.insert(scope, name, id)
	return id
}

// declareName checks for a same-side redefinition in the scope. Conflicts
// are reported once and recovered by freshening, so downstream passes keep
// a usable (if renamed) symbol.
func (n *Namer) declareName(name source.StringID, isType bool, scope ScopeID, span source.Span) (source.StringID, bool) {
	s := n.table.Scopes.Get(scope)
	if s == nil {
		return name, false
	}
	var prev *Symbol
	for _, id := range s.Lookup(name) {
		if sym := n.table.Symbols.Get(id); sym != nil && sym.IsType == isType && !sym.IsAbsent() {
			prev = sym
		}
	}
	if prev == nil {
		return name, false
	}

	nameStr := n.table.Strings.MustLookup(name)
	builder := diag.ReportError(n.table.Reporter, diag.NameDuplicate, span,
		fmt.Sprintf("%s is already defined in this scope", nameStr))
	if prevSpan := prev.Span(); prevSpan != (source.Span{}) {
		builder.WithNote(prevSpan, "previous definition here")
	}
	builder.Emit()

	for k := 1; ; k++ {
		fresh := n.table.Strings.Intern(fmt.Sprintf("%s$%d", nameStr, k))
		if len(s.Lookup(fresh)) == 0 {
			return fresh, true
		}
	}
}

func (n *Namer) insert(scope ScopeID, name source.StringID, id SymbolID) {
	if s := n.table.Scopes.Get(scope); s != nil {
		s.Insert(name, id)
	}
}
