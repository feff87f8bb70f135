// Package flags implements the modifier bit-set attached to every symbol
// denotation. A single 64-bit word multiplexes term-side and type-side
// modifiers: the two low bits say which side(s) a set applies to, and each
// property bit above them carries an independent meaning per side (bit 7 is
// "method" for terms but "higher-kinded" for types).
package flags

import (
	"fmt"
	"math/bits"
	"strings"
)

// FlagSet is a union-style set: a symbol "is" a flag when the corresponding
// property bit is present together with a compatible kind bit.
type FlagSet uint64

const (
	// Terms marks a set as applicable to term symbols (vals, defs, modules).
	Terms FlagSet = 1 << 0
	// Types marks a set as applicable to type symbols (classes, type members).
	Types FlagSet = 1 << 1

	kindBits = Terms | Types

	// firstFlagBit is the lowest usable property bit.
	firstFlagBit = 2
	maxFlagBit   = 64
)

// Empty composes as an identity with every other set.
const Empty FlagSet = 0

func (fs FlagSet) kind() FlagSet  { return fs & kindBits }
func (fs FlagSet) props() FlagSet { return fs &^ kindBits }

// IsTermFlags reports whether the set applies to terms.
func (fs FlagSet) IsTermFlags() bool { return fs&Terms != 0 }

// IsTypeFlags reports whether the set applies to types.
func (fs FlagSet) IsTypeFlags() bool { return fs&Types != 0 }

// IsCommonFlags reports whether the set applies to both terms and types.
func (fs FlagSet) IsCommonFlags() bool { return fs.kind() == kindBits }

// Union combines two sets. The applicability of the result is the
// intersection of the operands' kinds: a term-only set united with a
// common set stays term-only. Uniting sets with disjoint kinds would
// silently conflate unrelated per-side meanings, so it panics instead.
func (fs FlagSet) Union(other FlagSet) FlagSet {
	if fs == Empty {
		return other
	}
	if other == Empty {
		return fs
	}
	kind := fs.kind() & other.kind()
	if kind == 0 {
		panic(fmt.Sprintf("flags: illegal union of kind-disjoint sets %s and %s", fs, other))
	}
	return kind | fs.props() | other.props()
}

// UnionAll folds Union over its arguments.
func UnionAll(sets ...FlagSet) FlagSet {
	out := Empty
	for _, fs := range sets {
		out = out.Union(fs)
	}
	return out
}

// Intersect keeps the bits common to both sets.
func (fs FlagSet) Intersect(other FlagSet) FlagSet {
	return fs & other
}

// Diff removes other's property bits. When the kinds do not overlap the
// receiver is returned unchanged: a type-only flag cannot be subtracted
// from a term-only set.
func (fs FlagSet) Diff(other FlagSet) FlagSet {
	if fs.kind()&other.kind() == 0 {
		return fs
	}
	return fs.kind() | (fs.props() &^ other.props())
}

// Is reports whether any of the given flags is present. Kind bits and
// property bits are tested separately: a property-bit match without a
// compatible kind does not count, since the same bit index means different
// things per side.
func (fs FlagSet) Is(other FlagSet) bool {
	both := fs & other
	return both.kind() != 0 && both.props() != 0
}

// IsButNot reports whether any of the given flags is present and none of
// butNot is.
func (fs FlagSet) IsButNot(other, butNot FlagSet) bool {
	return fs.Is(other) && !fs.Is(butNot)
}

// SubsetOf reports whether every bit of the receiver occurs in other.
func (fs FlagSet) SubsetOf(other FlagSet) bool {
	return fs&other == fs
}

// ToTermFlags restamps the set as term-applicable.
func (fs FlagSet) ToTermFlags() FlagSet {
	if fs == Empty {
		return fs
	}
	return fs.props() | Terms
}

// ToTypeFlags restamps the set as type-applicable.
func (fs FlagSet) ToTypeFlags() FlagSet {
	if fs == Empty {
		return fs
	}
	return fs.props() | Types
}

// ToCommonFlags restamps the set as applicable to both sides.
func (fs FlagSet) ToCommonFlags() FlagSet {
	if fs == Empty {
		return fs
	}
	return fs.props() | kindBits
}

// NumFlags counts the property bits present.
func (fs FlagSet) NumFlags() int {
	return bits.OnesCount64(uint64(fs.props()))
}

// FirstBit returns the index of the lowest property bit, or -1 for sets
// without properties.
func (fs FlagSet) FirstBit() int {
	p := uint64(fs.props())
	if p == 0 {
		return -1
	}
	return bits.TrailingZeros64(p)
}

// String renders the set with one name per property bit, choosing the
// term-side or type-side name according to the set's kind.
func (fs FlagSet) String() string {
	if fs == Empty {
		return "<empty>"
	}
	var parts []string
	for idx := firstFlagBit; idx < maxFlagBit; idx++ {
		if fs.props()&(1<<idx) == 0 {
			continue
		}
		name := flagName(idx, fs.kind())
		if name != "" {
			parts = append(parts, name)
		}
	}
	if len(parts) == 0 {
		return "<empty>"
	}
	return strings.Join(parts, " ")
}

// FlagConjunction is a FlagSet-shaped value read as "all of these bits must
// be present" instead of "any of these".
type FlagConjunction FlagSet

// AllOf builds a conjunction. Every argument must be a single disambiguated
// flag; multi-bit or empty inputs would make the conjunction ambiguous, so
// they panic.
func AllOf(sets ...FlagSet) FlagConjunction {
	out := Empty
	for _, fs := range sets {
		if fs.NumFlags() != 1 {
			panic(fmt.Sprintf("flags: conjunction operand %s is not a single flag", fs))
		}
		out = out.Union(fs)
	}
	return FlagConjunction(out)
}

// IsAllOf reports whether every flag of the conjunction is present.
func (fs FlagSet) IsAllOf(conj FlagConjunction) bool {
	want := FlagSet(conj)
	both := fs & want
	return both.kind() != 0 && both.props() == want.props()
}

// IsAllOfButNot reports whether every flag of the conjunction is present and
// none of butNot is.
func (fs FlagSet) IsAllOfButNot(conj FlagConjunction, butNot FlagSet) bool {
	return fs.IsAllOf(conj) && !fs.Is(butNot)
}

func (c FlagConjunction) String() string {
	return FlagSet(c).String()
}
