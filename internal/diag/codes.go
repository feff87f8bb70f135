package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Naming and completion (4000-4099)
	NameInfo            Code = 4000
	NameDuplicate       Code = 4001
	NameCyclicReference Code = 4002
	NameShadow          Code = 4003
	NameUnresolvedType  Code = 4004
	NameCompanionStale  Code = 4005

	// Post-typer transform (4100-4199)
	TransformInfo            Code = 4100
	TransformAbstractNew     Code = 4101
	TransformIllegalAccess   Code = 4102
	TransformDoubleTrim      Code = 4103
	TransformMissingSymbol   Code = 4104
	TransformOrphanSourceRef Code = 4105

	// Pickling (4200-4299)
	PickleInfo          Code = 4200
	PickleStrandedRef   Code = 4201
	PickleUnknownType   Code = 4202
	PickleNameOverflow  Code = 4203
	PickleFormatVersion Code = 4204
)

func (c Code) String() string {
	return fmt.Sprintf("DOT%04d", uint16(c))
}
