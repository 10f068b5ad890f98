// sink.go - the renderer callback interface (C7, interface half)

package decode

import (
	"github.com/embedded-tools/regdecode/defs"
	"github.com/embedded-tools/regdecode/regval"
)

// Sink receives one callback per decoded field plus per-register
// begin/end hooks. The core never formats text; it supplies typed values
// and the field descriptor, matching spec.md §4.7.
type Sink interface {
	BeginRegister(reg *defs.Register, raw regval.RV)
	EndRegister(reg *defs.Register)

	Bool(field *defs.BoolField, v bool)
	Enum(field *defs.EnumField, val *defs.EnumVal, idx uint64)
	SInt(field *defs.IntField, v int64)
	UInt(field *defs.IntField, v uint64)
	Frac(field *defs.FracField, intPart, fracPart, divisor uint64)
	Reserved(field *defs.ReservedField, v uint64)
}
