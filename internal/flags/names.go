package flags

// flagNames maps property-bit index to the per-side display names,
// [0] for the term side and [1] for the type side.
var flagNames [maxFlagBit][2]string

func flagName(idx int, kind FlagSet) string {
	term, typ := flagNames[idx][0], flagNames[idx][1]
	switch kind {
	case Terms:
		return term
	case Types:
		return typ
	default:
		if term == typ {
			return term
		}
		if term == "" {
			return typ
		}
		if typ == "" {
			return term
		}
		return term + "/" + typ
	}
}

// termFlag defines a term-only flag at the given bit index.
func termFlag(idx int, name string) FlagSet {
	flagNames[idx][0] = name
	return Terms | 1<<idx
}

// typeFlag defines a type-only flag at the given bit index.
func typeFlag(idx int, name string) FlagSet {
	flagNames[idx][1] = name
	return Types | 1<<idx
}

// commonFlag defines a flag with the same meaning on both sides.
func commonFlag(idx int, name string) FlagSet {
	flagNames[idx][0] = name
	flagNames[idx][1] = name
	return kindBits | 1<<idx
}

// The modifier inventory. A bit index may be handed out twice, once per
// side, as long as the two definitions agree on which sides they cover.
var (
	Private   = commonFlag(2, "private")
	Protected = commonFlag(3, "protected")
	Override  = commonFlag(4, "override")
	Final     = commonFlag(5, "final")
	Case      = commonFlag(6, "case")

	// Bit 7: a term with it is a method; a type with it is higher-kinded.
	Method       = termFlag(7, "<method>")
	HigherKinded = typeFlag(7, "<higher kinded>")

	Param = commonFlag(8, "<param>")

	// Bit 9: accessor for a constructor parameter vs. covariant type param.
	ParamAccessor = termFlag(9, "<paramaccessor>")
	Covariant     = typeFlag(9, "<covariant>")

	// Bit 10: the module value vs. the class carrying its members.
	Module      = termFlag(10, "module")
	ModuleClass = typeFlag(10, "module class")

	Package   = commonFlag(11, "<package>")
	Synthetic = commonFlag(12, "<synthetic>")
	Artifact  = commonFlag(13, "<artifact>")

	Mutable       = termFlag(14, "mutable")
	Contravariant = typeFlag(14, "<contravariant>")

	Local    = commonFlag(15, "<local>")
	Deferred = commonFlag(16, "<deferred>")

	Implicit = termFlag(17, "implicit")
	Sealed   = typeFlag(17, "sealed")

	Lazy  = termFlag(18, "lazy")
	Trait = typeFlag(18, "<trait>")

	Accessor = termFlag(19, "<accessor>")
	Abstract = typeFlag(19, "abstract")

	CaseAccessor = termFlag(20, "<caseaccessor>")

	Inline = commonFlag(21, "inline")

	// Touched marks a denotation whose completion has started; it is the
	// re-entrancy guard behind cyclic-reference detection.
	Touched = commonFlag(22, "<touched>")

	// Provisional marks infos that may still be replaced by completion.
	Provisional = commonFlag(23, "<provisional>")

	// Erroneous marks symbols whose info is the error marker; the error was
	// already reported.
	Erroneous = commonFlag(24, "<erroneous>")

	// Absent marks a symbol whose defining tree disappeared between runs.
	Absent = commonFlag(25, "<absent>")

	// Fresh marks a symbol renamed to recover from a redefinition conflict.
	Fresh = commonFlag(26, "<fresh>")

	// NonMember marks symbols excluded from member lookup (e.g. imports).
	NonMember = commonFlag(27, "<non-member>")

	// Exempt suppresses the instantiability check at a construction site.
	Exempt = commonFlag(28, "<exempt>")
)

// Frequently tested groups.
var (
	AccessFlags     = Private.Union(Protected)
	ModuleCreation  = Module.Union(Final)
	RetainedFlags   = UnionAll(Private, Protected, Override, Final, Case, Inline)
	AbstractOrTrait = Abstract.Union(Trait)
)

// Common conjunctions.
var (
	PrivateLocal   = AllOf(Private, Local)
	FinalMethod    = AllOf(Final.ToTermFlags(), Method)
	AbstractSealed = AllOf(Abstract, Sealed)
)
