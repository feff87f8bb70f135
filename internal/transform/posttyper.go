package transform

import (
	"fmt"

	"github.com/skvithalani/dotty/internal/ast"
	"github.com/skvithalani/dotty/internal/diag"
	"github.com/skvithalani/dotty/internal/flags"
	"github.com/skvithalani/dotty/internal/source"
	"github.com/skvithalani/dotty/internal/symbols"
	"github.com/skvithalani/dotty/internal/types"
)

// PostTyper is the single depth-first rewrite over fully typed definitions,
// run once per compilation unit before pickling. It inserts access-bridging
// accessors, checks construction sites for instantiability, trims inlined
// call metadata, and stamps top-level type definitions with their source
// file.
type PostTyper struct {
	Table      *symbols.Table
	Arena      *ast.Arena
	Reporter   diag.Reporter
	SourcePath string

	annotName source.StringID
	pathLit   ast.NodeID
}

// New builds a transformer over one unit's table and tree arena.
func New(tbl *symbols.Table, arena *ast.Arena, reporter diag.Reporter, sourcePath string) *PostTyper {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	return &PostTyper{Table: tbl, Arena: arena, Reporter: reporter, SourcePath: sourcePath}
}

// ctx carries the walk state down the tree.
type ctx struct {
	scope  symbols.ScopeID
	owner  symbols.SymbolID // enclosing class symbol
	exempt bool             // inside an annotation argument
}

// TransformFile rewrites every root definition of a unit in place.
func (p *PostTyper) TransformFile(rootScope symbols.ScopeID, roots []ast.NodeID) {
	p.annotName = p.Table.Strings.Intern("SourceFile")
	p.pathLit = p.Arena.Literal(source.Span{}, ast.StringConstant(p.Table.Strings.Intern(p.SourcePath)))
	for _, root := range roots {
		p.annotateSourceFile(root)
	}
	for _, root := range roots {
		p.transform(root, ctx{scope: rootScope})
	}
}

// annotateSourceFile attaches the source-file annotation to a top-level
// type definition. AddAnnotation deduplicates by name, so re-running the
// transform cannot double-stamp.
func (p *PostTyper) annotateSourceFile(root ast.NodeID) {
	node := p.Arena.Get(root)
	if node == nil || node.Kind != ast.KindTypeDef {
		return
	}
	id, ok := p.Table.DefSymbol(root)
	if !ok {
		return
	}
	p.Table.Symbols.Get(id).AddAnnotation(symbols.Annotation{Name: p.annotName, Arg: p.pathLit})
}

func (p *PostTyper) transform(tree ast.NodeID, c ctx) {
	node := p.Arena.Get(tree)
	if node == nil {
		return
	}
	switch node.Kind {
	case ast.KindNew:
		p.checkInstantiable(tree, c)

	case ast.KindInlined:
		p.trimInlined(tree)
		p.transform(p.Arena.InlinedCall(tree), c)
		return

	case ast.KindAnnotated:
		p.transform(p.Arena.Get(tree).Kids[0], c)
		// Construction inside annotation arguments is exempt from the
		// instantiability check.
		c.exempt = true
		p.transform(p.Arena.Get(tree).Kids[1], c)
		return

	case ast.KindTypeDef:
		if owner, member := p.classOf(tree); member.IsValid() {
			p.transformTemplate(p.Arena.TypeDefRhs(tree), ctx{scope: member, owner: owner, exempt: c.exempt})
			return
		}

	case ast.KindDefDef:
		if id, ok := p.Table.DefSymbol(tree); ok {
			if member := p.Table.MemberScope(id); member.IsValid() {
				c.scope = member
			}
		}
	}

	for _, kid := range node.Kids {
		p.transform(kid, c)
	}
}

// classOf resolves the class symbol behind a TypeDef. For modules the
// definition tree maps to the module value, so the module class is found
// through its template.
func (p *PostTyper) classOf(tree ast.NodeID) (symbols.SymbolID, symbols.ScopeID) {
	if id, ok := p.Table.DefSymbol(tree); ok {
		if member := p.Table.MemberScope(id); member.IsValid() {
			return id, member
		}
	}
	if id, ok := p.Table.DefSymbol(p.Arena.TypeDefRhs(tree)); ok {
		if member := p.Table.MemberScope(id); member.IsValid() {
			return id, member
		}
	}
	return symbols.NoSymbolID, symbols.NoScopeID
}

// transformTemplate handles one class body. Accessors for all members are
// inserted before the recursive rewrite reaches nested templates, so a
// sibling member visited later already sees them.
func (p *PostTyper) transformTemplate(tmpl ast.NodeID, c ctx) {
	for _, member := range p.Arena.TemplateBody(tmpl) {
		p.insertAccessors(member, c)
	}
	node := p.Arena.Get(tmpl)
	if node == nil {
		return
	}
	for _, kid := range node.Kids {
		p.transform(kid, c)
	}
}

// insertAccessors scans one member's body, stopping at nested templates,
// for references to private or protected members of other classes. Each
// such reference gets a synthetic accessor planted in the target class's
// member scope.
func (p *PostTyper) insertAccessors(tree ast.NodeID, c ctx) {
	node := p.Arena.Get(tree)
	if node == nil || node.Kind == ast.KindTemplate {
		return
	}
	if node.Kind == ast.KindIdent {
		p.maybeAccessor(node.Name, node.Span, c)
	}
	for _, kid := range node.Kids {
		p.insertAccessors(kid, c)
	}
}

func (p *PostTyper) maybeAccessor(name source.StringID, span source.Span, c ctx) {
	t := p.Table
	id := t.LookupIn(c.scope, name, false)
	if !id.IsValid() {
		return
	}
	sym := t.Symbols.Get(id)
	if !sym.Flags().Is(flags.AccessFlags) {
		return
	}
	owner := sym.Owner()
	if !owner.IsValid() || owner == c.owner {
		return
	}
	if sym.Flags().IsAllOf(flags.PrivateLocal) {
		diag.ReportError(p.Reporter, diag.TransformIllegalAccess, span,
			fmt.Sprintf("%s is private[this] and cannot be accessed from %s",
				t.Name(id), t.Name(c.owner))).Emit()
		return
	}
	ownerScope := t.MemberScope(owner)
	if !ownerScope.IsValid() {
		return
	}
	accName := t.Strings.Intern(t.Strings.MustLookup(name) + "$access")
	scope := t.Scopes.Get(ownerScope)
	if len(scope.Lookup(accName)) > 0 {
		return
	}
	fl := flags.UnionAll(flags.Accessor, flags.Method, flags.Synthetic.ToTermFlags(), flags.Artifact.ToTermFlags())
	info := t.Types.Method(nil, t.InfoOrError(id))
	acc := t.NewSymbol(accName, false, owner, fl, sym.Span(), symbols.SymbolDecl{}, info, nil)
	scope.Insert(accName, acc)
}

// checkInstantiable verifies a construction site targets a concrete class.
// The tree stays intact either way; only a diagnostic is produced.
func (p *PostTyper) checkInstantiable(tree ast.NodeID, c ctx) {
	if c.exempt {
		return
	}
	tpt := p.Arena.Get(tree).Kids[0]
	id := p.constructedSymbol(tpt, c)
	if !id.IsValid() {
		return
	}
	sym := p.Table.Symbols.Get(id)
	if !sym.Flags().Is(flags.AbstractOrTrait) || sym.Flags().Is(flags.Exempt) {
		return
	}
	span := p.Arena.Get(tree).Span
	diag.ReportError(p.Reporter, diag.TransformAbstractNew, span,
		fmt.Sprintf("%s is abstract; it cannot be instantiated", p.Table.Name(id))).Emit()
}

// constructedSymbol resolves the type tree under a New to a local class
// symbol, preferring the attached type over a name lookup.
func (p *PostTyper) constructedSymbol(tpt ast.NodeID, c ctx) symbols.SymbolID {
	node := p.Arena.Get(tpt)
	if node == nil {
		return symbols.NoSymbolID
	}
	if node.Type != types.NoTypeID {
		if ty, ok := p.Table.Types.Lookup(node.Type); ok && ty.Kind == types.KindTypeRef && ty.Sym != types.NoSymbolRef {
			return symbols.SymbolID(ty.Sym)
		}
	}
	switch node.Kind {
	case ast.KindTypeIdent, ast.KindIdent:
		return p.Table.LookupIn(c.scope, node.Name, true)
	case ast.KindAppliedType:
		return p.constructedSymbol(p.Arena.Fun(tpt), c)
	}
	return symbols.NoSymbolID
}

// trimInlined collapses an inlined call's retained metadata to the call
// reference and position. A second trim of the same node is an internal
// invariant breach.
func (p *PostTyper) trimInlined(tree ast.NodeID) {
	if p.Arena.TrimInlined(tree) {
		return
	}
	if p.Arena.InlinedIsTrimmed(tree) {
		span := p.Arena.Get(tree).Span
		diag.ReportError(p.Reporter, diag.TransformDoubleTrim, span,
			"inlined call metadata trimmed twice").Emit()
	}
}
