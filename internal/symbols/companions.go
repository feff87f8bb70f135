package symbols

import (
	"github.com/skvithalani/dotty/internal/ast"
	"github.com/skvithalani/dotty/internal/flags"
	"github.com/skvithalani/dotty/internal/source"
	"github.com/skvithalani/dotty/internal/types"
)

// Companion expansion runs before indexing: every case class gets a
// companion module carrying the synthetic apply/unapply. When the user
// wrote a module of the same name the synthetic members merge into it,
// user members winning on a name clash without a duplicate diagnostic.

func (n *Namer) expandCompanions(stats []ast.NodeID) []ast.NodeID {
	userModules := make(map[source.StringID]ast.NodeID)
	var caseClasses []ast.NodeID
	for _, stat := range stats {
		node := n.arena.Get(stat)
		if node == nil || node.Kind != ast.KindTypeDef {
			continue
		}
		if node.Flags.Is(flags.Module) {
			userModules[node.Name] = stat
			continue
		}
		if !node.Flags.Is(flags.Case) {
			continue
		}
		if rhs := n.arena.TypeDefRhs(stat); rhs.IsValid() && n.arena.Get(rhs).Kind == ast.KindTemplate {
			caseClasses = append(caseClasses, stat)
		}
	}

	for _, class := range caseClasses {
		members := n.companionMembers(class)
		node := n.arena.Get(class)
		name, span := node.Name, node.Span
		if mod, ok := userModules[name]; ok {
			n.mergeIntoModule(mod, members)
			continue
		}
		modFl := flags.Module.Union(flags.Synthetic).Union(flags.Final)
		tmpl := n.arena.Template(span, ast.NoNodeID, nil, members)
		stats = append(stats, n.arena.TypeDef(span, name, modFl, tmpl))
	}
	return stats
}

// companionMembers builds the synthetic apply and unapply for a case
// class. Parameter type annotations are shared with the constructor's
// subtrees, not copied; the pickler's structural sharing depends on that.
func (n *Namer) companionMembers(class ast.NodeID) []ast.NodeID {
	node := n.arena.Get(class)
	name, span := node.Name, node.Span
	ctor := n.arena.TemplateConstr(n.arena.TypeDefRhs(class))

	ctorParams := n.arena.DefDefParams(ctor)
	params := make([]ast.NodeID, 0, len(ctorParams))
	for _, p := range ctorParams {
		pn := n.arena.Get(p)
		params = append(params, n.arena.ValDef(pn.Span, pn.Name, flags.Param, n.arena.ValDefTpt(p), ast.NoNodeID))
	}

	synthFl := flags.Synthetic.Union(flags.Method)
	apply := n.arena.DefDef(span, n.table.Strings.Intern("apply"), synthFl,
		params, n.arena.TypeIdent(span, name), ast.NoNodeID)
	scrutinee := n.arena.ValDef(span, n.table.Strings.Intern("x$0"), flags.Param,
		n.arena.TypeIdent(span, name), ast.NoNodeID)
	unapply := n.arena.DefDef(span, n.table.Strings.Intern("unapply"), synthFl,
		[]ast.NodeID{scrutinee}, n.arena.TypeIdent(span, name), ast.NoNodeID)
	return []ast.NodeID{apply, unapply}
}

func (n *Namer) mergeIntoModule(mod ast.NodeID, members []ast.NodeID) {
	tmpl := n.arena.TypeDefRhs(mod)
	existing := make(map[source.StringID]bool)
	for _, m := range n.arena.TemplateBody(tmpl) {
		if mn := n.arena.Get(m); mn != nil {
			existing[mn.Name] = true
		}
	}
	node := n.arena.Get(tmpl)
	for _, m := range members {
		if mn := n.arena.Get(m); mn != nil && existing[mn.Name] {
			continue
		}
		node.Kids = append(node.Kids, m)
	}
}

// linkCompanions pairs each class with the module value sharing its base
// name, scope by scope. Paired sides get synthetic companion accessors in
// both member scopes. When one side existed in the previous run but is
// gone now, an absent placeholder takes its slot so stale downstream
// references fail loudly instead of resolving to nothing.
func (n *Namer) linkCompanions(scope ScopeID) {
	s := n.table.Scopes.Get(scope)
	if s == nil {
		return
	}
	for name, ids := range s.NameIndex {
		var class, moduleVal SymbolID
		for _, id := range ids {
			sym := n.table.Symbols.Get(id)
			if sym == nil || sym.IsAbsent() {
				continue
			}
			if sym.IsType && !sym.Flags().Is(flags.ModuleClass) {
				class = id
			} else if !sym.IsType && sym.Flags().Is(flags.Module) {
				moduleVal = id
			}
		}
		switch {
		case class.IsValid() && moduleVal.IsValid():
			n.table.LinkCompanions(class, moduleVal)
			n.addCompanionAccessors(class, moduleVal, n.moduleClassOf(s, name))
		case class.IsValid() && n.table.HadPreviously(name):
			n.absentPlaceholder(s, name, false)
		case moduleVal.IsValid() && n.table.HadPreviously(name):
			n.absentPlaceholder(s, name, true)
		}
	}
	for _, child := range s.Children {
		n.linkCompanions(child)
	}
}

// moduleClassOf finds the module class paired with a module value: the
// type-side symbol indexed under the mangled `name$` in the same scope.
func (n *Namer) moduleClassOf(s *Scope, name source.StringID) SymbolID {
	mangled := n.table.Strings.Intern(n.table.Strings.MustLookup(name) + "$")
	for _, id := range s.Lookup(mangled) {
		if sym := n.table.Symbols.Get(id); sym != nil && sym.IsType && sym.Flags().Is(flags.ModuleClass) {
			return id
		}
	}
	return NoSymbolID
}

// addCompanionAccessors plants `companion` members on both sides of a
// pair: a method on the class resolving to the module value, and a type
// member on the module class resolving back to the class.
func (n *Namer) addCompanionAccessors(class, moduleVal, moduleClass SymbolID) {
	n.plantCompanionAccessor(class, false,
		flags.Synthetic.Union(flags.Method).Union(flags.Artifact),
		n.table.Types.TermRef(types.SymbolRef(moduleVal)))
	if moduleClass.IsValid() {
		n.plantCompanionAccessor(moduleClass, true,
			flags.Synthetic.Union(flags.Artifact).ToTypeFlags(),
			n.table.Types.TypeRef(types.SymbolRef(class)))
	}
}

func (n *Namer) plantCompanionAccessor(owner SymbolID, isType bool, fl flags.FlagSet, info types.TypeID) {
	scope := n.table.MemberScope(owner)
	if !scope.IsValid() {
		return
	}
	name := n.table.Strings.Intern("companion")
	for _, id := range n.table.Scopes.Get(scope).Lookup(name) {
		if sym := n.table.Symbols.Get(id); sym != nil && sym.IsType == isType {
			return
		}
	}
	sym := n.table.Symbols.Get(owner)
	id := n.table.NewSymbol(name, isType, owner, fl, sym.Span(),
		SymbolDecl{}, info, nil)
	n.table.Scopes.Get(scope).Insert(name, id)
}

// absentPlaceholder records that a companion of the given side used to
// exist. Lookups see the Absent flag and the error marker.
func (n *Namer) absentPlaceholder(s *Scope, name source.StringID, isType bool) {
	fl := flags.Synthetic.Union(flags.Absent)
	if isType {
		fl = fl.ToTypeFlags()
	} else {
		fl = fl.ToTermFlags()
	}
	id := n.table.NewSymbol(name, isType, s.Owner, fl, s.Span,
		SymbolDecl{}, n.table.Types.Builtins().Error, nil)
	s.Insert(name, id)
}
