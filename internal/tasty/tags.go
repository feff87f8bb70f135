package tasty

import "fmt"

// Magic identifies a pickled artifact. The version pair gates binary
// compatibility: readers reject artifacts whose major version differs, and
// any change to a tag's payload shape requires a bump.
const (
	Magic        uint32 = 0x5CA1AB1F
	MajorVersion        = 1
	MinorVersion        = 0
)

// Tag is the one-byte record discriminator. The numbering is frozen:
// append new tags, never renumber. Tags group by payload shape — the
// boundaries below let a reader skip records it does not understand.
type Tag uint8

const (
	// Tags without payload.
	UNITconst  Tag = 2
	TRUEconst  Tag = 3
	FALSEconst Tag = 4
	NOTYPE     Tag = 5
	NOPREFIX   Tag = 6
	EMPTYtree  Tag = 7

	// Tags with a single nat payload.
	SHAREDterm  Tag = 32 // address of an earlier tree record
	SHAREDtype  Tag = 33 // address of an earlier type record
	TERMREFsym  Tag = 34 // address of a local term symbol's definition
	TYPEREFsym  Tag = 35 // address of a local type symbol's definition
	STRINGconst Tag = 36 // name-pool index
	BUILTINtype Tag = 37 // builtin type kind ordinal

	// Tags with a fixed-width payload (raw bit patterns, no nat encoding).
	BYTEconst   Tag = 48 // 1 byte
	SHORTconst  Tag = 49 // 2 bytes
	CHARconst   Tag = 50 // 4 bytes
	INTconst    Tag = 51 // 4 bytes
	LONGconst   Tag = 52 // 8 bytes
	FLOATconst  Tag = 53 // 4 bytes, IEEE-754 bits
	DOUBLEconst Tag = 54 // 8 bytes, IEEE-754 bits

	// Length-prefixed composite records. Payload starts with the shapes
	// noted; trailing fields may grow in minor versions since readers skip
	// by length.
	TERMREFname Tag = 64 // name ref, prefix type
	TYPEREFname Tag = 65 // name ref, prefix type
	APPLIEDtype Tag = 66 // tycon type, arg types
	METHODtype  Tag = 67 // result type, param types
	EXPRtype    Tag = 68 // result type
	BOUNDStype  Tag = 69 // lo type, hi type
	CLASSinfo   Tag = 70 // self symbol address slot, parent types

	IDENT      Tag = 96  // name ref, type
	SELECT     Tag = 97  // name ref, qualifier
	APPLY      Tag = 98  // fun, args
	TYPEAPPLY  Tag = 99  // fun, type args
	NEW        Tag = 100 // constructed type tree
	IF         Tag = 101 // cond, then, else
	MATCH      Tag = 102 // selector, cases
	CASEDEF    Tag = 103 // pattern, guard, body
	BLOCK      Tag = 104 // stats, expr
	VALDEF     Tag = 105 // name ref, flags, tpt, rhs
	DEFDEF     Tag = 106 // name ref, flags, params, tpt, rhs
	TYPEDEF    Tag = 107 // name ref, flags, rhs
	TEMPLATE   Tag = 108 // constructor, parent count, parents, body
	PACKAGEdef Tag = 109 // pid, stats
	IMPORT     Tag = 110 // expr, selectors
	ANNOTATED  Tag = 111 // arg, annotation
	INLINED    Tag = 112 // call reference
	SPLICE     Tag = 113 // wrapped subtree
	TYPEIDENT  Tag = 114 // name ref, type
	TYPESELECT Tag = 115 // name ref, qualifier
	APPLIEDtpt Tag = 116 // tycon tree, arg trees
	TYPEBOUNDS Tag = 117 // lo tree, hi tree
)

const (
	firstNatTag    Tag = 32
	firstFixedTag  Tag = 48
	firstLengthTag Tag = 64
)

// HasPayload reports whether a tag carries any payload bytes.
func (t Tag) HasPayload() bool { return t >= firstNatTag }

// HasNatPayload reports whether the payload is a single nat.
func (t Tag) HasNatPayload() bool { return t >= firstNatTag && t < firstFixedTag }

// FixedPayloadSize returns the byte count of a fixed-width payload, or 0.
func (t Tag) FixedPayloadSize() int {
	switch t {
	case BYTEconst:
		return 1
	case SHORTconst:
		return 2
	case CHARconst, INTconst, FLOATconst:
		return 4
	case LONGconst, DOUBLEconst:
		return 8
	default:
		return 0
	}
}

// HasLengthPrefix reports whether the payload is a length-prefixed group.
func (t Tag) HasLengthPrefix() bool { return t >= firstLengthTag }

func (t Tag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Tag(%d)", uint8(t))
}

var tagNames = map[Tag]string{
	UNITconst: "UNITconst", TRUEconst: "TRUEconst", FALSEconst: "FALSEconst",
	NOTYPE: "NOTYPE", NOPREFIX: "NOPREFIX", EMPTYtree: "EMPTYtree",
	SHAREDterm: "SHAREDterm", SHAREDtype: "SHAREDtype",
	TERMREFsym: "TERMREFsym", TYPEREFsym: "TYPEREFsym",
	STRINGconst: "STRINGconst", BUILTINtype: "BUILTINtype",
	BYTEconst: "BYTEconst", SHORTconst: "SHORTconst", CHARconst: "CHARconst",
	INTconst: "INTconst", LONGconst: "LONGconst",
	FLOATconst: "FLOATconst", DOUBLEconst: "DOUBLEconst",
	TERMREFname: "TERMREFname", TYPEREFname: "TYPEREFname",
	APPLIEDtype: "APPLIEDtype", METHODtype: "METHODtype", EXPRtype: "EXPRtype",
	BOUNDStype: "BOUNDStype", CLASSinfo: "CLASSinfo",
	IDENT: "IDENT", SELECT: "SELECT", APPLY: "APPLY", TYPEAPPLY: "TYPEAPPLY",
	NEW: "NEW", IF: "IF", MATCH: "MATCH", CASEDEF: "CASEDEF", BLOCK: "BLOCK",
	VALDEF: "VALDEF", DEFDEF: "DEFDEF", TYPEDEF: "TYPEDEF", TEMPLATE: "TEMPLATE",
	PACKAGEdef: "PACKAGEdef", IMPORT: "IMPORT", ANNOTATED: "ANNOTATED",
	INLINED: "INLINED", SPLICE: "SPLICE", TYPEIDENT: "TYPEIDENT",
	TYPESELECT: "TYPESELECT", APPLIEDtpt: "APPLIEDtpt", TYPEBOUNDS: "TYPEBOUNDS",
}
