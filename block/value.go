package block

import "fmt"

// Value is the closed set of fixed-width value types a block can hold.
// Floating-point columns are stored through their IEEE-754 bit patterns
// (math.Float32bits / math.Float64bits) in Int and Long blocks.
type Value interface {
	int8 | int16 | int32 | int64
}

// Kind identifies a concrete fixed-width block kind.
type Kind uint8

const (
	// KindByte holds int8 values.
	KindByte Kind = iota + 1
	// KindShort holds int16 values.
	KindShort
	// KindInt holds int32 values.
	KindInt
	// KindLong holds int64 values.
	KindLong
)

// Encoding names. They are part of the wire contract with the block serializer
// and must never change.
const (
	ByteArrayEncoding  = "BYTE_ARRAY"
	ShortArrayEncoding = "SHORT_ARRAY"
	IntArrayEncoding   = "INT_ARRAY"
	LongArrayEncoding  = "LONG_ARRAY"
)

var kindTable = [...]struct {
	name  string
	width int
}{
	KindByte:  {ByteArrayEncoding, 1},
	KindShort: {ShortArrayEncoding, 2},
	KindInt:   {IntArrayEncoding, 4},
	KindLong:  {LongArrayEncoding, 8},
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k >= KindByte && k <= KindLong
}

// Width returns the value width in bytes.
func (k Kind) Width() int {
	if !k.Valid() {
		return 0
	}
	return kindTable[k].width
}

// EncodingName returns the stable encoding name of the kind.
func (k Kind) EncodingName() string {
	if !k.Valid() {
		return ""
	}
	return kindTable[k].name
}

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
	return kindTable[k].name
}

// KindOf returns the kind that stores values of type T.
func KindOf[T Value]() Kind {
	var zero T
	switch any(zero).(type) {
	case int8:
		return KindByte
	case int16:
		return KindShort
	case int32:
		return KindInt
	default:
		return KindLong
	}
}

// KindByName returns the kind registered under an encoding name.
func KindByName(name string) (Kind, bool) {
	switch name {
	case ByteArrayEncoding:
		return KindByte, true
	case ShortArrayEncoding:
		return KindShort, true
	case IntArrayEncoding:
		return KindInt, true
	case LongArrayEncoding:
		return KindLong, true
	default:
		return 0, false
	}
}

func widthOf[T Value]() int {
	return KindOf[T]().Width()
}
