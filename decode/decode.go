// decode.go - per-kind field decoders (C5) and per-register orchestration

package decode

import (
	"github.com/embedded-tools/regdecode/defs"
	"github.com/embedded-tools/regdecode/regval"
)

// DecodeRegister iterates reg's fields in declaration order, decoding each
// independently against the single shared raw value. Fields never mutate
// raw; it is passed by value throughout.
func DecodeRegister(reg *defs.Register, raw regval.RV, sink Sink) {
	sink.BeginRegister(reg, raw)
	for _, f := range reg.Fields {
		decodeField(f, raw, sink)
	}
	sink.EndRegister(reg)
}

func decodeField(f defs.Field, raw regval.RV, sink Sink) {
	switch fld := f.(type) {
	case *defs.BoolField:
		sink.Bool(fld, raw.TestBit(fld.Bit))

	case *defs.IntField:
		v := regval.Extract(raw, fld.Bitmask)
		if fld.IsSigned {
			sink.SInt(fld, regval.SignExtend(v, fld.Bitmask.Popcount()))
		} else {
			sink.UInt(fld, v)
		}

	case *defs.FracField:
		i := regval.Extract(raw, fld.IntPart)
		frac := regval.Extract(raw, fld.FracPart)
		divisor := uint64(1) << uint(fld.FracPart.Popcount())
		sink.Frac(fld, i, frac, divisor)

	case *defs.EnumField:
		idx := regval.Extract(raw, fld.Bitmask)
		var match *defs.EnumVal
		for i := range fld.Enums {
			if uint64(fld.Enums[i].Value) == idx {
				match = &fld.Enums[i]
				break
			}
		}
		sink.Enum(fld, match, idx)

	case *defs.ReservedField:
		v := regval.Extract(raw, fld.Bitmask)
		sink.Reserved(fld, v)

	default:
		panic("decode: unknown field type")
	}
}
