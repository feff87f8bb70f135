package ast

import (
	"math"

	"github.com/skvithalani/dotty/internal/source"
)

// ConstTag discriminates literal constants. Every tag maps to a fixed
// pickle tag, so the set is append-only.
type ConstTag uint8

const (
	ConstInvalid ConstTag = iota
	ConstUnit
	ConstTrue
	ConstFalse
	ConstByte
	ConstShort
	ConstInt
	ConstLong
	ConstFloat
	ConstDouble
	ConstChar
	ConstString
)

func (t ConstTag) String() string {
	switch t {
	case ConstUnit:
		return "unit"
	case ConstTrue:
		return "true"
	case ConstFalse:
		return "false"
	case ConstByte:
		return "byte"
	case ConstShort:
		return "short"
	case ConstInt:
		return "int"
	case ConstLong:
		return "long"
	case ConstFloat:
		return "float"
	case ConstDouble:
		return "double"
	case ConstChar:
		return "char"
	case ConstString:
		return "string"
	default:
		return "invalid"
	}
}

// Constant is a literal value. Numeric payloads live in Bits: integers
// sign-extended, floating values as their raw IEEE-754 pattern so pickling
// round-trips bit for bit. Strings are interned.
type Constant struct {
	Tag  ConstTag
	Bits uint64
	Str  source.StringID
}

func UnitConstant() Constant { return Constant{Tag: ConstUnit} }

func BoolConstant(v bool) Constant {
	if v {
		return Constant{Tag: ConstTrue}
	}
	return Constant{Tag: ConstFalse}
}

func ByteConstant(v int8) Constant   { return Constant{Tag: ConstByte, Bits: uint64(uint8(v))} }
func ShortConstant(v int16) Constant { return Constant{Tag: ConstShort, Bits: uint64(uint16(v))} }
func IntConstant(v int32) Constant   { return Constant{Tag: ConstInt, Bits: uint64(uint32(v))} }
func LongConstant(v int64) Constant  { return Constant{Tag: ConstLong, Bits: uint64(v)} }
func CharConstant(v rune) Constant   { return Constant{Tag: ConstChar, Bits: uint64(uint32(v))} }

func FloatConstant(v float32) Constant {
	return Constant{Tag: ConstFloat, Bits: uint64(math.Float32bits(v))}
}

func DoubleConstant(v float64) Constant {
	return Constant{Tag: ConstDouble, Bits: math.Float64bits(v)}
}

func StringConstant(id source.StringID) Constant {
	return Constant{Tag: ConstString, Str: id}
}

func (c Constant) BoolValue() bool     { return c.Tag == ConstTrue }
func (c Constant) ByteValue() int8     { return int8(uint8(c.Bits)) }
func (c Constant) ShortValue() int16   { return int16(uint16(c.Bits)) }
func (c Constant) IntValue() int32     { return int32(uint32(c.Bits)) }
func (c Constant) LongValue() int64    { return int64(c.Bits) }
func (c Constant) CharValue() rune     { return rune(uint32(c.Bits)) }
func (c Constant) FloatValue() float32 { return math.Float32frombits(uint32(c.Bits)) }
func (c Constant) DoubleValue() float64 {
	return math.Float64frombits(c.Bits)
}
