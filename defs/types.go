// types.go - the unit/register/field object graph

package defs

import "github.com/embedded-tools/regdecode/regval"

// Endian describes how a unit's hardware organizes addresses or data; the
// core never interprets this value, it only carries it through to readers
// (spec.md §9 "Endianness").
type Endian uint8

const (
	EndianNative Endian = 0
	EndianLittle Endian = 1
	EndianBig    Endian = 2
)

// AddrWidth is the address bus width of a unit's reader, in bits (0 means
// "unspecified / inherit from the reader").
type AddrWidth uint8

const (
	AddrWidthUnspecified AddrWidth = 0
	AddrWidth8           AddrWidth = 8
	AddrWidth16          AddrWidth = 16
	AddrWidth32          AddrWidth = 32
)

// Access is the 2-bit read/write permission carried on registers and
// fields.
type Access uint8

const (
	AccessNone      Access = 0
	AccessRead      Access = 1 << 0
	AccessWrite     Access = 1 << 1
	AccessReadWrite Access = AccessRead | AccessWrite
)

// Display is the 1-bit formatting hint carried on a field.
type Display uint8

const (
	DisplayDec Display = 0
	DisplayHex Display = 1
)

// Unit is a contiguous hardware address region owning an ordered sequence
// of registers. Start/End are inclusive; Start <= End.
type Unit struct {
	Start uint64
	End   uint64

	ID   string
	Name string

	AddrWidth AddrWidth
	// AddrEndian/DataEndian come from the packed endian byte: hi nibble is
	// address endian, lo nibble is data endian.
	AddrEndian Endian
	DataEndian Endian

	Registers []Register
}

// Register is a single word at a fixed offset within a unit.
type Register struct {
	Offset uint64
	Width  int // bits; a multiple of 8, <= regval.MaxWidthBits
	Flags  Access

	ID   string
	Name string

	Unit *Unit

	Fields []Field
}

// FieldHeader is the header common to every field kind.
type FieldHeader struct {
	Access  Access
	Display Display

	ID   string
	Name string

	Register *Register
}

// Field is implemented by the five field kinds (Bool, Frac, Enum, Int,
// Reserved). The interface is closed to this package: only types.go's
// kind() method set may implement it, matching spec.md §9's "tagged
// variant, shared header" design note.
type Field interface {
	Header() *FieldHeader
	kind() fieldKind
}

type fieldKind uint8

const (
	kindBool fieldKind = iota
	kindFrac
	kindEnum
	kindInt
	kindReserved
)

// BoolField tests a single bit of the register.
type BoolField struct {
	FieldHeader
	Bit int // 0 <= Bit < register.Width
}

func (f *BoolField) Header() *FieldHeader { return &f.FieldHeader }
func (f *BoolField) kind() fieldKind      { return kindBool }

// FracField is a fixed-point fraction over two disjoint bitmasks: the
// integer part uses bits where IntPart is set, the fractional part uses
// bits where FracPart is set.
type FracField struct {
	FieldHeader
	IntPart  regval.RV
	FracPart regval.RV
}

func (f *FracField) Header() *FieldHeader { return &f.FieldHeader }
func (f *FracField) kind() fieldKind      { return kindFrac }

// EnumVal is one (value, name) mapping within an EnumField.
type EnumVal struct {
	Value uint32
	Name  string
}

// EnumField maps the gap-compressed value under Bitmask to a name via a
// linear scan of Enums.
type EnumField struct {
	FieldHeader
	Bitmask regval.RV
	Enums   []EnumVal
}

func (f *EnumField) Header() *FieldHeader { return &f.FieldHeader }
func (f *EnumField) kind() fieldKind      { return kindEnum }

// IntField is a signed or unsigned integer gap-compressed over Bitmask.
type IntField struct {
	FieldHeader
	Bitmask  regval.RV
	IsSigned bool
}

func (f *IntField) Header() *FieldHeader { return &f.FieldHeader }
func (f *IntField) kind() fieldKind      { return kindInt }

// ReservedField carries no semantic value; renderers may skip it.
type ReservedField struct {
	FieldHeader
	Bitmask regval.RV
}

func (f *ReservedField) Header() *FieldHeader { return &f.FieldHeader }
func (f *ReservedField) kind() fieldKind      { return kindReserved }

// Definitions is the parsed, immutable (after Parse returns) object graph
// rooted at a sequence of units. It is the lifetime owner (spec.md's C8).
// Parse copies every string out of the input buffer, so the tree does not
// reference that buffer and stays valid after the caller drops it; there is
// no explicit "buffer" handle to hold separately — see SPEC_FULL.md §3.
type Definitions struct {
	Units []Unit
}
