// Package ast models syntax trees as arena-allocated nodes referenced by
// dense IDs. The same node shape serves the untyped and typed universes; a
// node crosses from untyped to typed exactly once, through WithType's
// copy-on-write rule, and the two universes may only embed each other
// through explicit splice nodes.
package ast

import (
	"github.com/skvithalani/dotty/internal/flags"
	"github.com/skvithalani/dotty/internal/source"
	"github.com/skvithalani/dotty/internal/types"
)

// NodeID references a node in an Arena.
type NodeID uint32

// NoNodeID marks the absence of a node reference.
const NoNodeID NodeID = 0

// IsValid reports whether the ID refers to an allocated node.
func (id NodeID) IsValid() bool { return id != NoNodeID }

// NodeKind discriminates tree nodes.
type NodeKind uint8

const (
	KindInvalid NodeKind = iota

	// Terms
	KindIdent
	KindSelect
	KindApply
	KindTypeApply
	KindLiteral
	KindNew
	KindIf
	KindMatch
	KindCaseDef
	KindBlock

	// Definitions
	KindValDef
	KindDefDef
	KindTypeDef
	KindTemplate
	KindPackageDef
	KindImport

	// Wrappers
	KindAnnotated
	KindInlined

	// Universe escapes: TypedSplice embeds a typed subtree in an untyped
	// tree; UntypedSplice embeds an untyped subtree in a typed tree.
	KindTypedSplice
	KindUntypedSplice

	// Type trees
	KindTypeIdent
	KindTypeSelect
	KindAppliedType
	KindTypeBoundsTree
)

func (k NodeKind) String() string {
	switch k {
	case KindIdent:
		return "Ident"
	case KindSelect:
		return "Select"
	case KindApply:
		return "Apply"
	case KindTypeApply:
		return "TypeApply"
	case KindLiteral:
		return "Literal"
	case KindNew:
		return "New"
	case KindIf:
		return "If"
	case KindMatch:
		return "Match"
	case KindCaseDef:
		return "CaseDef"
	case KindBlock:
		return "Block"
	case KindValDef:
		return "ValDef"
	case KindDefDef:
		return "DefDef"
	case KindTypeDef:
		return "TypeDef"
	case KindTemplate:
		return "Template"
	case KindPackageDef:
		return "PackageDef"
	case KindImport:
		return "Import"
	case KindAnnotated:
		return "Annotated"
	case KindInlined:
		return "Inlined"
	case KindTypedSplice:
		return "TypedSplice"
	case KindUntypedSplice:
		return "UntypedSplice"
	case KindTypeIdent:
		return "TypeIdent"
	case KindTypeSelect:
		return "TypeSelect"
	case KindAppliedType:
		return "AppliedType"
	case KindTypeBoundsTree:
		return "TypeBoundsTree"
	default:
		return "Invalid"
	}
}

// IsDef reports whether the kind introduces a definition.
func (k NodeKind) IsDef() bool {
	switch k {
	case KindValDef, KindDefDef, KindTypeDef:
		return true
	default:
		return false
	}
}

// IsTypeTree reports whether the kind denotes a type expression.
func (k NodeKind) IsTypeTree() bool {
	switch k {
	case KindTypeIdent, KindTypeSelect, KindAppliedType, KindTypeBoundsTree:
		return true
	default:
		return false
	}
}

// Node is one tree node. Kids follow a per-kind layout documented on the
// Arena constructors; Aux carries kind-specific counts (Template parent
// count, Inlined trim marker).
type Node struct {
	Kind  NodeKind
	Span  source.Span
	Name  source.StringID
	Flags flags.FlagSet
	Type  types.TypeID
	Typed bool
	Aux   uint32
	Kids  []NodeID
	Const Constant
}

// HasType reports whether a resolved type is attached.
func (n *Node) HasType() bool { return n.Type != types.NoTypeID }
