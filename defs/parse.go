// parse.go - definitions-stream deserializer (C4)

package defs

import (
	"fmt"

	"github.com/embedded-tools/regdecode/regval"
	"github.com/embedded-tools/regdecode/stream"
)

// Field kind tags, per spec.md §6.1.
const (
	tagEnum     = 1
	tagBool     = 2
	tagFrac     = 3
	tagSInt     = 4
	tagUInt     = 5
	tagReserved = 6
)

// Minimum possible on-wire size of one item of each kind, used only to
// reject absurd counts (e.g. num_regs near 65535 when far fewer bytes
// remain) before allocating - spec.md §4.4's "count-checked... guards
// against overflow", adapted to Go's GC-backed allocator where the actual
// overflow risk is a resource-exhaustion DoS rather than wraparound.
const (
	minRegisterBytes = 4 + 1 + 1 + 2 + 2 + 2 // offset,width,flags,id,name,num_fields
	minFieldBytes    = 1 + 2 + 2 + 1         // flags,id,name,kind
)

func checkCount(cnt, minItemBytes, remaining int, unitID, regID, reason string) error {
	if cnt > 0 && cnt*minItemBytes > remaining {
		return invariant(unitID, regID, "", fmt.Sprintf("%s: count %d exceeds remaining stream length", reason, cnt))
	}
	return nil
}

// Parse deserializes a definitions stream, returning the built tree and any
// unconsumed trailing bytes. Any failure aborts the whole parse; no partial
// tree is returned (spec.md §4.4).
func Parse(buf []byte) (*Definitions, []byte, error) {
	c := stream.New(buf)

	numUnits, err := c.PopU16()
	if err != nil {
		return nil, nil, fmt.Errorf("defs: parsing unit count: %w", err)
	}
	if err := checkCount(int(numUnits), 4+4+2+2+1+1+2, c.Remaining(), "", "", "num_units"); err != nil {
		return nil, nil, err
	}

	units := make([]Unit, numUnits)
	for i := range units {
		if err := popUnit(&units[i], c); err != nil {
			return nil, nil, err
		}
	}

	return &Definitions{Units: units}, c.Rest(), nil
}

func popUnit(u *Unit, c *stream.Cursor) error {
	start, err := c.PopU32()
	if err != nil {
		return fmt.Errorf("defs: unit.start: %w", err)
	}
	end, err := c.PopU32()
	if err != nil {
		return fmt.Errorf("defs: unit.end: %w", err)
	}
	id, err := c.PopString()
	if err != nil {
		return fmt.Errorf("defs: unit.id: %w", err)
	}
	name, err := c.PopString()
	if err != nil {
		return fmt.Errorf("defs: unit(%s).name: %w", id, err)
	}
	addrWidth, err := c.PopU8()
	if err != nil {
		return fmt.Errorf("defs: unit(%s).addr_width: %w", id, err)
	}
	endian, err := c.PopU8()
	if err != nil {
		return fmt.Errorf("defs: unit(%s).endian: %w", id, err)
	}
	numRegs, err := c.PopU16()
	if err != nil {
		return fmt.Errorf("defs: unit(%s).num_regs: %w", id, err)
	}
	if err := checkCount(int(numRegs), minRegisterBytes, c.Remaining(), id, "", "num_regs"); err != nil {
		return err
	}
	if uint64(start) > uint64(end) {
		return invariant(id, "", "", fmt.Sprintf("unit.start (%#x) > unit.end (%#x)", start, end))
	}

	u.Start = uint64(start)
	u.End = uint64(end)
	u.ID = id
	u.Name = name
	u.AddrWidth = AddrWidth(addrWidth)
	u.AddrEndian = Endian(endian >> 4)
	u.DataEndian = Endian(endian & 0x0F)

	regs := make([]Register, numRegs)
	for i := range regs {
		regs[i].Unit = u
		if err := popRegister(&regs[i], c); err != nil {
			return err
		}
		if regs[i].Offset+uint64((regs[i].Width+7)/8) > u.End-u.Start+1 {
			return invariant(id, regs[i].ID, "", "register extends past unit address range")
		}
	}
	u.Registers = regs

	return nil
}

func popRegister(r *Register, c *stream.Cursor) error {
	offset, err := c.PopU32()
	if err != nil {
		return fmt.Errorf("defs: register.offset: %w", err)
	}
	width, err := c.PopU8()
	if err != nil {
		return fmt.Errorf("defs: register.width: %w", err)
	}
	flags, err := c.PopUintVar(2)
	if err != nil {
		return fmt.Errorf("defs: register.flags: %w", err)
	}
	id, err := c.PopString()
	if err != nil {
		return fmt.Errorf("defs: register.id: %w", err)
	}
	name, err := c.PopString()
	if err != nil {
		return fmt.Errorf("defs: register(%s).name: %w", id, err)
	}
	numFields, err := c.PopU16()
	if err != nil {
		return fmt.Errorf("defs: register(%s).num_fields: %w", id, err)
	}
	if err := checkCount(int(numFields), minFieldBytes, c.Remaining(), "", id, "num_fields"); err != nil {
		return err
	}
	if int(width) == 0 || int(width)%8 != 0 || int(width) > regval.MaxWidthBits {
		return invariant("", id, "", fmt.Sprintf("register.width %d is not a multiple of 8 in (0,%d]", width, regval.MaxWidthBits))
	}

	r.Offset = uint64(offset)
	r.Width = int(width)
	r.Flags = Access(flags)
	r.ID = id
	r.Name = name

	fields := make([]Field, numFields)
	for i := range fields {
		f, err := popField(r, c)
		if err != nil {
			return err
		}
		fields[i] = f
	}
	r.Fields = fields

	return nil
}

func popField(reg *Register, c *stream.Cursor) (Field, error) {
	flags, err := c.PopUintVar(2)
	if err != nil {
		return nil, fmt.Errorf("defs: field.flags: %w", err)
	}
	id, err := c.PopString()
	if err != nil {
		return nil, fmt.Errorf("defs: field.id: %w", err)
	}
	name, err := c.PopString()
	if err != nil {
		return nil, fmt.Errorf("defs: field(%s).name: %w", id, err)
	}
	kind, err := c.PopU8()
	if err != nil {
		return nil, fmt.Errorf("defs: field(%s).kind: %w", id, err)
	}

	header := FieldHeader{
		Access:   Access(flags & 0x3),
		Display:  Display((flags >> 2) & 0x1),
		ID:       id,
		Name:     name,
		Register: reg,
	}

	var field Field
	switch kind {
	case tagBool:
		bit, err := c.PopU8()
		if err != nil {
			return nil, fmt.Errorf("defs: field(%s).bit: %w", id, err)
		}
		if int(bit) >= reg.Width {
			return nil, invariant("", reg.ID, id, fmt.Sprintf("bool bit %d >= register width %d", bit, reg.Width))
		}
		field = &BoolField{FieldHeader: header, Bit: int(bit)}

	case tagFrac:
		intPart, err := c.PopReg(reg.Width)
		if err != nil {
			return nil, fmt.Errorf("defs: field(%s).int_part: %w", id, err)
		}
		fracPart, err := c.PopReg(reg.Width)
		if err != nil {
			return nil, fmt.Errorf("defs: field(%s).frac_part: %w", id, err)
		}
		if overlap(intPart, fracPart) {
			return nil, invariant("", reg.ID, id, "frac int_part and frac_part overlap")
		}
		if order := intPart.Popcount(); order > 64 {
			return nil, invariant("", reg.ID, id, fmt.Sprintf("frac int_part popcount %d exceeds 64", order))
		}
		if order := fracPart.Popcount(); order > 64 {
			return nil, invariant("", reg.ID, id, fmt.Sprintf("frac frac_part popcount %d exceeds 64", order))
		}
		field = &FracField{FieldHeader: header, IntPart: intPart, FracPart: fracPart}

	case tagSInt, tagUInt:
		mask, err := c.PopReg(reg.Width)
		if err != nil {
			return nil, fmt.Errorf("defs: field(%s).bitmask: %w", id, err)
		}
		if order := mask.Popcount(); order > 64 {
			return nil, invariant("", reg.ID, id, fmt.Sprintf("int bitmask popcount %d exceeds 64", order))
		}
		field = &IntField{FieldHeader: header, Bitmask: mask, IsSigned: kind == tagSInt}

	case tagEnum:
		mask, err := c.PopReg(reg.Width)
		if err != nil {
			return nil, fmt.Errorf("defs: field(%s).bitmask: %w", id, err)
		}
		order := mask.Popcount()
		if order > 32 {
			return nil, invariant("", reg.ID, id, fmt.Sprintf("enum bitmask popcount %d exceeds 32", order))
		}
		numEnums, err := c.PopUintVar(order)
		if err != nil {
			return nil, fmt.Errorf("defs: field(%s).num_enums: %w", id, err)
		}
		if err := checkCount(int(numEnums), 1+2, c.Remaining(), "", reg.ID, "num_enums"); err != nil {
			return nil, err
		}
		enums := make([]EnumVal, numEnums)
		for i := range enums {
			val, err := c.PopUintVar(order)
			if err != nil {
				return nil, fmt.Errorf("defs: field(%s).enums[%d].val: %w", id, i, err)
			}
			ename, err := c.PopString()
			if err != nil {
				return nil, fmt.Errorf("defs: field(%s).enums[%d].name: %w", id, i, err)
			}
			enums[i] = EnumVal{Value: val, Name: ename}
		}
		field = &EnumField{FieldHeader: header, Bitmask: mask, Enums: enums}

	case tagReserved:
		mask, err := c.PopReg(reg.Width)
		if err != nil {
			return nil, fmt.Errorf("defs: field(%s).bitmask: %w", id, err)
		}
		if order := mask.Popcount(); order > 64 {
			return nil, invariant("", reg.ID, id, fmt.Sprintf("reserved bitmask popcount %d exceeds 64", order))
		}
		field = &ReservedField{FieldHeader: header, Bitmask: mask}

	default:
		return nil, invariant("", reg.ID, id, fmt.Sprintf("unknown field kind tag %d", kind))
	}

	return field, nil
}

// overlap reports whether a and b share any set bit; used to enforce
// spec.md invariant (c) for Frac fields (int_part & frac_part == 0).
// Invariant (a) (every bitmask's set bits fall within [0, register.width))
// is enforced structurally rather than by a runtime scan: popRegister
// already rejects any register.Width that isn't a multiple of 8 before a
// single field is parsed, and every bitmask RV here is allocated via
// c.PopReg(reg.Width) — so a bitmask's byte array exactly spans
// [0, reg.Width) with no partial top byte in which a stray bit could hide.
func overlap(a, b regval.RV) bool {
	ab, bb := a.Bytes(), b.Bytes()
	for i := range ab {
		if ab[i]&bb[i] != 0 {
			return true
		}
	}
	return false
}
