// encode.go - the inverse of Parse (C9), grounded on original_source/lib/serializer.c

package defs

import (
	"encoding/binary"
	"fmt"

	"github.com/embedded-tools/regdecode/regval"
)

// encoder accumulates the on-wire byte stream, mirroring the pop order
// Parse reads in exactly, field for field.
type encoder struct {
	buf []byte
}

func (e *encoder) u8(v uint8)   { e.buf = append(e.buf, v) }
func (e *encoder) u16(v uint16) { e.buf = append(e.buf, 0, 0); binary.LittleEndian.PutUint16(e.buf[len(e.buf)-2:], v) }
func (e *encoder) u32(v uint32) { e.buf = append(e.buf, 0, 0, 0, 0); binary.LittleEndian.PutUint32(e.buf[len(e.buf)-4:], v) }

func (e *encoder) uintVar(v uint32, order int) {
	switch {
	case order <= 8:
		e.u8(uint8(v))
	case order <= 16:
		e.u16(uint16(v))
	case order <= 32:
		e.u32(v)
	default:
		panic("defs: Encode: order > 32")
	}
}

func (e *encoder) str(s string) {
	e.u16(uint16(len(s)))
	e.buf = append(e.buf, s...)
}

func (e *encoder) reg(r regval.RV) {
	e.buf = append(e.buf, r.Bytes()...)
}

// Encode serializes a Definitions tree back into the wire format described
// in spec.md §6.1. It recomputes every count (num_regs, num_fields,
// num_enums) and enum order (popcount of the enclosing bitmask) from the
// tree itself rather than trusting any cached value, so Encode(Parse(buf))
// round-trips even if a caller hand-built a Definitions value with
// inconsistent slice lengths.
func Encode(d *Definitions) ([]byte, error) {
	e := &encoder{}
	e.u16(uint16(len(d.Units)))
	for i := range d.Units {
		if err := encodeUnit(e, &d.Units[i]); err != nil {
			return nil, err
		}
	}
	return e.buf, nil
}

func encodeUnit(e *encoder, u *Unit) error {
	e.u32(uint32(u.Start))
	e.u32(uint32(u.End))
	e.str(u.ID)
	e.str(u.Name)
	e.u8(uint8(u.AddrWidth))
	e.u8(uint8(u.AddrEndian)<<4 | uint8(u.DataEndian))
	e.u16(uint16(len(u.Registers)))
	for i := range u.Registers {
		if err := encodeRegister(e, &u.Registers[i]); err != nil {
			return err
		}
	}
	return nil
}

func encodeRegister(e *encoder, r *Register) error {
	e.u32(uint32(r.Offset))
	e.u8(uint8(r.Width))
	e.uintVar(uint32(r.Flags), 2)
	e.str(r.ID)
	e.str(r.Name)
	e.u16(uint16(len(r.Fields)))
	for _, f := range r.Fields {
		if err := encodeField(e, f); err != nil {
			return err
		}
	}
	return nil
}

func encodeField(e *encoder, f Field) error {
	h := f.Header()
	flags := uint32(h.Access&0x3) | uint32(h.Display&0x1)<<2
	e.uintVar(flags, 2)
	e.str(h.ID)
	e.str(h.Name)

	switch v := f.(type) {
	case *BoolField:
		e.u8(tagBool)
		e.u8(uint8(v.Bit))
	case *FracField:
		e.u8(tagFrac)
		e.reg(v.IntPart)
		e.reg(v.FracPart)
	case *IntField:
		if v.IsSigned {
			e.u8(tagSInt)
		} else {
			e.u8(tagUInt)
		}
		e.reg(v.Bitmask)
	case *EnumField:
		e.u8(tagEnum)
		e.reg(v.Bitmask)
		order := v.Bitmask.Popcount()
		e.uintVar(uint32(len(v.Enums)), order)
		for _, ev := range v.Enums {
			e.uintVar(ev.Value, order)
			e.str(ev.Name)
		}
	case *ReservedField:
		e.u8(tagReserved)
		e.reg(v.Bitmask)
	default:
		return fmt.Errorf("defs: Encode: unknown field type %T", f)
	}
	return nil
}
