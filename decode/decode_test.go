// decode_test.go - tests for per-field decode and per-register orchestration

package decode

import (
	"testing"

	"github.com/embedded-tools/regdecode/defs"
	"github.com/embedded-tools/regdecode/regval"
)

// spySink records every callback invocation for assertion.
type spySink struct {
	begun, ended int
	bools        []bool
	enums        []struct {
		val *defs.EnumVal
		idx uint64
	}
	sints []int64
	uints []uint64
	fracs []struct{ i, f, d uint64 }
	resv  []uint64
}

func (s *spySink) BeginRegister(*defs.Register, regval.RV) { s.begun++ }
func (s *spySink) EndRegister(*defs.Register)              { s.ended++ }
func (s *spySink) Bool(_ *defs.BoolField, v bool)          { s.bools = append(s.bools, v) }
func (s *spySink) Enum(_ *defs.EnumField, val *defs.EnumVal, idx uint64) {
	s.enums = append(s.enums, struct {
		val *defs.EnumVal
		idx uint64
	}{val, idx})
}
func (s *spySink) SInt(_ *defs.IntField, v int64)  { s.sints = append(s.sints, v) }
func (s *spySink) UInt(_ *defs.IntField, v uint64) { s.uints = append(s.uints, v) }
func (s *spySink) Frac(_ *defs.FracField, i, f, d uint64) {
	s.fracs = append(s.fracs, struct{ i, f, d uint64 }{i, f, d})
}
func (s *spySink) Reserved(_ *defs.ReservedField, v uint64) { s.resv = append(s.resv, v) }

func TestDecodeRegisterEnumScenario(t *testing.T) {
	// Scenario 1: W=16, value 0x00A5, enum field bitmask=0x000F, 0->"A", 5->"B".
	reg := &defs.Register{Width: 16}
	enumField := &defs.EnumField{
		FieldHeader: defs.FieldHeader{ID: "mode", Register: reg},
		Bitmask:     regval.FromUint64(16, 0x000F),
		Enums: []defs.EnumVal{
			{Value: 0, Name: "A"},
			{Value: 5, Name: "B"},
		},
	}
	reg.Fields = []defs.Field{enumField}

	sink := &spySink{}
	DecodeRegister(reg, regval.FromUint64(16, 0x00A5), sink)

	if sink.begun != 1 || sink.ended != 1 {
		t.Fatalf("begin/end = %d/%d, want 1/1", sink.begun, sink.ended)
	}
	if len(sink.enums) != 1 {
		t.Fatalf("len(enums) = %d, want 1", len(sink.enums))
	}
	got := sink.enums[0]
	if got.idx != 5 {
		t.Errorf("idx = %d, want 5", got.idx)
	}
	if got.val == nil || got.val.Name != "B" {
		t.Errorf("val = %+v, want name B", got.val)
	}
}

func TestDecodeRegisterSignedIntScenario(t *testing.T) {
	// Scenario 2: W=16, value 0xF0F0, bitmask=0xFF00, signed -> -16.
	reg := &defs.Register{Width: 16}
	intField := &defs.IntField{
		FieldHeader: defs.FieldHeader{ID: "s", Register: reg},
		Bitmask:     regval.FromUint64(16, 0xFF00),
		IsSigned:    true,
	}
	reg.Fields = []defs.Field{intField}

	sink := &spySink{}
	DecodeRegister(reg, regval.FromUint64(16, 0xF0F0), sink)

	if len(sink.sints) != 1 || sink.sints[0] != -16 {
		t.Fatalf("sints = %v, want [-16]", sink.sints)
	}
	if len(sink.uints) != 0 {
		t.Errorf("uints = %v, want empty (field is signed)", sink.uints)
	}
}

func TestDecodeRegisterFracScenario(t *testing.T) {
	// Scenario 3: W=16, value 0x0034, int_part=0xFF00, frac_part=0x00FF
	// -> frac(0, 52, 256).
	reg := &defs.Register{Width: 16}
	fracField := &defs.FracField{
		FieldHeader: defs.FieldHeader{ID: "gain", Register: reg},
		IntPart:     regval.FromUint64(16, 0xFF00),
		FracPart:    regval.FromUint64(16, 0x00FF),
	}
	reg.Fields = []defs.Field{fracField}

	sink := &spySink{}
	DecodeRegister(reg, regval.FromUint64(16, 0x0034), sink)

	if len(sink.fracs) != 1 {
		t.Fatalf("len(fracs) = %d, want 1", len(sink.fracs))
	}
	f := sink.fracs[0]
	if f.i != 0 || f.f != 52 || f.d != 256 {
		t.Errorf("frac = %+v, want {0 52 256}", f)
	}
}

func TestDecodeRegisterBoolTopBit(t *testing.T) {
	// Scenario 6: W=64, only bit 63 set, bool field bit=63.
	reg := &defs.Register{Width: 64}
	boolField := &defs.BoolField{
		FieldHeader: defs.FieldHeader{ID: "hi", Register: reg},
		Bit:         63,
	}
	reg.Fields = []defs.Field{boolField}

	sink := &spySink{}
	DecodeRegister(reg, regval.FromUint64(64, 1<<63), sink)

	if len(sink.bools) != 1 || !sink.bools[0] {
		t.Fatalf("bools = %v, want [true]", sink.bools)
	}
}

func TestDecodeRegisterEnumNoMatch(t *testing.T) {
	reg := &defs.Register{Width: 8}
	enumField := &defs.EnumField{
		FieldHeader: defs.FieldHeader{ID: "mode", Register: reg},
		Bitmask:     regval.FromUint64(8, 0x03),
		Enums:       []defs.EnumVal{{Value: 1, Name: "on"}},
	}
	reg.Fields = []defs.Field{enumField}

	sink := &spySink{}
	DecodeRegister(reg, regval.FromUint64(8, 0x02), sink) // idx = 2, no match

	if len(sink.enums) != 1 {
		t.Fatalf("len(enums) = %d, want 1", len(sink.enums))
	}
	if sink.enums[0].val != nil {
		t.Errorf("val = %+v, want nil", sink.enums[0].val)
	}
	if sink.enums[0].idx != 2 {
		t.Errorf("idx = %d, want 2", sink.enums[0].idx)
	}
}

func TestDecodeRegisterReservedPassthrough(t *testing.T) {
	reg := &defs.Register{Width: 8}
	resField := &defs.ReservedField{
		FieldHeader: defs.FieldHeader{ID: "rsvd", Register: reg},
		Bitmask:     regval.FromUint64(8, 0xF0),
	}
	reg.Fields = []defs.Field{resField}

	sink := &spySink{}
	DecodeRegister(reg, regval.FromUint64(8, 0xA0), sink)

	if len(sink.resv) != 1 || sink.resv[0] != 0xA {
		t.Fatalf("resv = %v, want [0xa]", sink.resv)
	}
}

func TestDecodeRegisterFieldsIndependentOrder(t *testing.T) {
	reg := &defs.Register{Width: 8}
	f1 := &defs.BoolField{FieldHeader: defs.FieldHeader{ID: "a", Register: reg}, Bit: 0}
	f2 := &defs.BoolField{FieldHeader: defs.FieldHeader{ID: "b", Register: reg}, Bit: 1}
	reg.Fields = []defs.Field{f1, f2}

	sink := &spySink{}
	DecodeRegister(reg, regval.FromUint64(8, 0x01), sink)

	if len(sink.bools) != 2 || sink.bools[0] != true || sink.bools[1] != false {
		t.Fatalf("bools = %v, want [true false] in declaration order", sink.bools)
	}
}
