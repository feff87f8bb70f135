package symbols

import (
	"fmt"

	"github.com/skvithalani/dotty/internal/ast"
	"github.com/skvithalani/dotty/internal/diag"
	"github.com/skvithalani/dotty/internal/source"
	"github.com/skvithalani/dotty/internal/types"
)

// Typer resolves an untyped type-expression tree against an expected type.
// The full type checker implements this; completion only needs the
// signature-level subset, so a structural implementation ships below.
type Typer interface {
	TypeTree(arena *ast.Arena, tree ast.NodeID, scope ScopeID, expected types.TypeID) (types.TypeID, error)
}

// SignatureTyper resolves the type trees that occur in signatures: named
// references, qualified references, applications, and bounds. Anything it
// cannot resolve becomes the error marker plus a diagnostic.
type SignatureTyper struct {
	Table *Table
}

func (st *SignatureTyper) TypeTree(arena *ast.Arena, tree ast.NodeID, scope ScopeID, expected types.TypeID) (types.TypeID, error) {
	t := st.Table
	node := arena.Get(tree)
	if node == nil {
		return t.Types.Builtins().Error, fmt.Errorf("symbols: typing a missing tree")
	}

	var ty types.TypeID
	switch node.Kind {
	case ast.KindTypeIdent, ast.KindIdent:
		ty = st.typeName(node.Name, node.Span, scope)

	case ast.KindTypeSelect:
		prefix := st.termPrefix(arena, arena.Qualifier(tree), scope)
		ty = t.Types.ExternalRef(types.KindTypeRef, prefix, node.Name)

	case ast.KindAppliedType:
		tycon, err := st.TypeTree(arena, arena.Fun(tree), scope, types.NoTypeID)
		if err != nil {
			return t.Types.Builtins().Error, err
		}
		args := make([]types.TypeID, 0, len(arena.Args(tree)))
		for _, arg := range arena.Args(tree) {
			argTy, err := st.TypeTree(arena, arg, scope, types.NoTypeID)
			if err != nil {
				return t.Types.Builtins().Error, err
			}
			args = append(args, argTy)
		}
		ty = t.Types.Applied(tycon, args)

	case ast.KindTypeBoundsTree:
		lo := t.Types.Builtins().Nothing
		hi := t.Types.Builtins().Any
		n := arena.Get(tree)
		if len(n.Kids) == 2 {
			var err error
			if n.Kids[0].IsValid() {
				if lo, err = st.TypeTree(arena, n.Kids[0], scope, types.NoTypeID); err != nil {
					return t.Types.Builtins().Error, err
				}
			}
			if n.Kids[1].IsValid() {
				if hi, err = st.TypeTree(arena, n.Kids[1], scope, types.NoTypeID); err != nil {
					return t.Types.Builtins().Error, err
				}
			}
		}
		ty = t.Types.Bounds(lo, hi)

	default:
		diag.ReportError(t.Reporter, diag.NameUnresolvedType, node.Span,
			fmt.Sprintf("unexpected %s in type position", node.Kind)).Emit()
		return t.Types.Builtins().Error, fmt.Errorf("symbols: %s in type position", node.Kind)
	}

	arena.WithType(tree, ty)
	return ty, nil
}

func (st *SignatureTyper) typeName(name source.StringID, span source.Span, scope ScopeID) types.TypeID {
	t := st.Table
	if sym := t.LookupIn(scope, name, true); sym.IsValid() {
		return t.Types.TypeRef(types.SymbolRef(sym))
	}
	if builtin, ok := st.builtinNamed(name); ok {
		return builtin
	}
	diag.ReportError(t.Reporter, diag.NameUnresolvedType, span,
		fmt.Sprintf("not found: type %s", t.Strings.MustLookup(name))).Emit()
	return t.Types.Builtins().Error
}

// termPrefix resolves the qualifier of a qualified type reference. A local
// term symbol becomes a TermRef; anything else stays an external name path.
func (st *SignatureTyper) termPrefix(arena *ast.Arena, qual ast.NodeID, scope ScopeID) types.TypeID {
	t := st.Table
	node := arena.Get(qual)
	if node == nil {
		return t.Types.Builtins().NoPrefix
	}
	switch node.Kind {
	case ast.KindIdent:
		if sym := t.LookupIn(scope, node.Name, false); sym.IsValid() {
			return t.Types.TermRef(types.SymbolRef(sym))
		}
		return t.Types.ExternalRef(types.KindTermRef, t.Types.Builtins().NoPrefix, node.Name)
	case ast.KindSelect, ast.KindTypeSelect:
		prefix := st.termPrefix(arena, arena.Qualifier(qual), scope)
		return t.Types.ExternalRef(types.KindTermRef, prefix, node.Name)
	default:
		return t.Types.Builtins().NoPrefix
	}
}

func (st *SignatureTyper) builtinNamed(name source.StringID) (types.TypeID, bool) {
	b := st.Table.Types.Builtins()
	switch st.Table.Strings.MustLookup(name) {
	case "Unit":
		return b.Unit, true
	case "Boolean":
		return b.Bool, true
	case "Byte":
		return b.Byte, true
	case "Short":
		return b.Short, true
	case "Int":
		return b.Int, true
	case "Long":
		return b.Long, true
	case "Float":
		return b.Float, true
	case "Double":
		return b.Double, true
	case "Char":
		return b.Char, true
	case "String":
		return b.String, true
	case "Any":
		return b.Any, true
	case "Nothing":
		return b.Nothing, true
	default:
		return types.NoTypeID, false
	}
}
