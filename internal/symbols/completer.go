package symbols

import (
	"fmt"

	"github.com/skvithalani/dotty/internal/ast"
	"github.com/skvithalani/dotty/internal/diag"
	"github.com/skvithalani/dotty/internal/flags"
	"github.com/skvithalani/dotty/internal/types"
)

// CompleterState tracks the lazy-completion protocol per symbol.
type CompleterState uint8

const (
	// CompleterNone: info was set directly at creation; nothing to force.
	CompleterNone CompleterState = iota
	// CompleterPending: a completer is attached and has not run.
	CompleterPending
	// CompleterInProgress: the completer is on the call stack right now.
	// Forcing again from here is a cyclic reference.
	CompleterInProgress
	// CompleterDone: info holds the computed type.
	CompleterDone
	// CompleterFailed: info holds the error marker; the failure was
	// already reported.
	CompleterFailed
)

func (s CompleterState) String() string {
	switch s {
	case CompleterNone:
		return "none"
	case CompleterPending:
		return "pending"
	case CompleterInProgress:
		return "in-progress"
	case CompleterDone:
		return "done"
	case CompleterFailed:
		return "failed"
	default:
		return "invalid"
	}
}

// CompleteFn computes the final info for a symbol. It runs with the
// completer's captured indexing context, not with ambient state.
type CompleteFn func(tbl *Table, sym SymbolID, c *Completer) (types.TypeID, error)

// Completer is the deferred signature computation attached at indexing
// time. The indexing context travels as data so that forcing is
// order-independent.
type Completer struct {
	Fn    CompleteFn
	Arena *ast.Arena
	Tree  ast.NodeID
	Scope ScopeID
	Typer Typer
	Assoc SymbolID // associated symbol, e.g. a module value's module class
}

// CyclicError reports completion re-entering itself. The symbol's info is
// already the error marker and a diagnostic was already emitted.
type CyclicError struct {
	Sym  SymbolID
	Name string
}

func (e *CyclicError) Error() string {
	return fmt.Sprintf("cyclic reference involving %s", e.Name)
}

// Info returns the symbol's type, forcing the completer on first access.
// Repeated forcing returns the identical TypeID. A cyclic force reports one
// diagnostic, installs the error marker, and returns a *CyclicError; later
// accesses see the marker with no error, as the failure was already
// reported.
func (t *Table) Info(id SymbolID) (types.TypeID, error) {
	sym := t.Symbols.Get(id)
	if sym == nil {
		return types.NoTypeID, fmt.Errorf("symbols: invalid symbol %d", id)
	}
	switch sym.state {
	case CompleterNone, CompleterDone, CompleterFailed:
		return sym.denot.Info, nil

	case CompleterInProgress:
		name := t.Strings.MustLookup(sym.Name)
		sym.state = CompleterFailed
		sym.denot.Info = t.Types.Builtins().Error
		sym.denot.Flags = sym.denot.Flags.Union(flags.Erroneous.Union(flags.Touched))
		diag.ReportError(t.Reporter, diag.NameCyclicReference, sym.denot.Span,
			fmt.Sprintf("cyclic reference involving %s", name)).Emit()
		return sym.denot.Info, &CyclicError{Sym: id, Name: name}

	case CompleterPending:
		c := sym.completer
		sym.state = CompleterInProgress
		sym.denot.Flags = sym.denot.Flags.Union(flags.Touched)
		info, err := c.Fn(t, id, c)

		// The completer may have moved the symbol to Failed via a nested
		// cyclic force; keep that outcome.
		sym = t.Symbols.Get(id)
		if sym.state != CompleterInProgress {
			return sym.denot.Info, err
		}
		if err != nil {
			sym.state = CompleterFailed
			sym.denot.Info = t.Types.Builtins().Error
			sym.denot.Flags = sym.denot.Flags.Union(flags.Erroneous)
			return sym.denot.Info, err
		}
		sym.state = CompleterDone
		sym.denot.Info = info
		sym.completer = nil
		return info, nil

	default:
		return types.NoTypeID, fmt.Errorf("symbols: bad completer state %v", sym.state)
	}
}

// InfoOrError returns the info, falling back to the error marker when
// forcing fails; use where a type is needed unconditionally.
func (t *Table) InfoOrError(id SymbolID) types.TypeID {
	info, err := t.Info(id)
	if err != nil || info == types.NoTypeID {
		return t.Types.Builtins().Error
	}
	return info
}
