package symbols

import (
	"github.com/skvithalani/dotty/internal/ast"
	"github.com/skvithalani/dotty/internal/types"
)

// The completion functions. Each receives its indexing context through the
// Completer record; none of them captures ambient state, so forcing order
// does not matter.

// valComplete resolves a ValDef's declared type, falling back to the
// literal's type when no annotation is present.
func valComplete(tbl *Table, sym SymbolID, c *Completer) (types.TypeID, error) {
	if tpt := c.Arena.ValDefTpt(c.Tree); tpt.IsValid() {
		return c.Typer.TypeTree(c.Arena, tpt, c.Scope, types.NoTypeID)
	}
	if rhs := c.Arena.ValDefRhs(c.Tree); rhs.IsValid() {
		if ty := literalType(tbl, c.Arena, rhs); ty != types.NoTypeID {
			return ty, nil
		}
	}
	return tbl.Types.Builtins().Any, nil
}

// defComplete computes a method signature: parameter types first (forcing
// the indexed parameter symbols), then the result. A parameterless def
// gets an expression type rather than a zero-argument method type.
func defComplete(tbl *Table, sym SymbolID, c *Completer) (types.TypeID, error) {
	params := c.Arena.DefDefParams(c.Tree)
	paramTys := make([]types.TypeID, 0, len(params))
	for _, param := range params {
		if pid, ok := tbl.DefSymbol(param); ok {
			ty, err := tbl.Info(pid)
			if err != nil {
				return tbl.Types.Builtins().Error, err
			}
			paramTys = append(paramTys, ty)
			continue
		}
		if tpt := c.Arena.ValDefTpt(param); tpt.IsValid() {
			ty, err := c.Typer.TypeTree(c.Arena, tpt, c.Scope, types.NoTypeID)
			if err != nil {
				return tbl.Types.Builtins().Error, err
			}
			paramTys = append(paramTys, ty)
			continue
		}
		paramTys = append(paramTys, tbl.Types.Builtins().Any)
	}

	result := tbl.Types.Builtins().Unit
	if tpt := c.Arena.DefDefTpt(c.Tree); tpt.IsValid() {
		ty, err := c.Typer.TypeTree(c.Arena, tpt, c.Scope, types.NoTypeID)
		if err != nil {
			return tbl.Types.Builtins().Error, err
		}
		result = ty
	} else if rhs := c.Arena.DefDefRhs(c.Tree); rhs.IsValid() {
		if ty := literalType(tbl, c.Arena, rhs); ty != types.NoTypeID {
			result = ty
		}
	}
	if len(params) == 0 {
		return tbl.Types.Expr(result), nil
	}
	return tbl.Types.Method(paramTys, result), nil
}

// classComplete finishes a class-like symbol: force the primary
// constructor's parameters, only then resolve parent type expressions in
// the class scope, and intern the resulting class info.
func classComplete(tbl *Table, sym SymbolID, c *Completer) (types.TypeID, error) {
	tmpl := c.Tree
	if node := c.Arena.Get(tmpl); node != nil && node.Kind == ast.KindTypeDef {
		tmpl = c.Arena.TypeDefRhs(tmpl)
	}

	if ctor := c.Arena.TemplateConstr(tmpl); ctor.IsValid() {
		for _, param := range c.Arena.DefDefParams(ctor) {
			pid, ok := tbl.DefSymbol(param)
			if !ok {
				continue
			}
			if _, err := tbl.Info(pid); err != nil {
				return tbl.Types.Builtins().Error, err
			}
		}
	}

	parents := c.Arena.TemplateParents(tmpl)
	parentTys := make([]types.TypeID, 0, len(parents))
	for _, parent := range parents {
		ty, err := c.Typer.TypeTree(c.Arena, parent, c.Scope, types.NoTypeID)
		if err != nil {
			// The parent failed to resolve; record the marker and keep
			// completing so dependents see a class, not a cascade.
			parentTys = append(parentTys, tbl.Types.Builtins().Error)
			continue
		}
		parentTys = append(parentTys, ty)
	}
	return tbl.Types.ClassInfo(types.SymbolRef(sym), parentTys), nil
}

// moduleValComplete types the module value as a reference to its module
// class.
func moduleValComplete(tbl *Table, sym SymbolID, c *Completer) (types.TypeID, error) {
	if _, err := tbl.Info(c.Assoc); err != nil {
		return tbl.Types.Builtins().Error, err
	}
	return tbl.Types.TypeRef(types.SymbolRef(c.Assoc)), nil
}

// typeAliasComplete resolves the alias or bounds on the right-hand side.
func typeAliasComplete(tbl *Table, sym SymbolID, c *Completer) (types.TypeID, error) {
	rhs := c.Arena.TypeDefRhs(c.Tree)
	if !rhs.IsValid() {
		return tbl.Types.Bounds(tbl.Types.Builtins().Nothing, tbl.Types.Builtins().Any), nil
	}
	return c.Typer.TypeTree(c.Arena, rhs, c.Scope, types.NoTypeID)
}

func literalType(tbl *Table, arena *ast.Arena, tree ast.NodeID) types.TypeID {
	node := arena.Get(tree)
	if node == nil || node.Kind != ast.KindLiteral {
		return types.NoTypeID
	}
	b := tbl.Types.Builtins()
	switch node.Const.Tag {
	case ast.ConstUnit:
		return b.Unit
	case ast.ConstTrue, ast.ConstFalse:
		return b.Bool
	case ast.ConstByte:
		return b.Byte
	case ast.ConstShort:
		return b.Short
	case ast.ConstInt:
		return b.Int
	case ast.ConstLong:
		return b.Long
	case ast.ConstFloat:
		return b.Float
	case ast.ConstDouble:
		return b.Double
	case ast.ConstChar:
		return b.Char
	case ast.ConstString:
		return b.String
	default:
		return types.NoTypeID
	}
}
