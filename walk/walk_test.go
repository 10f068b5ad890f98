// walk_test.go - tests for the range walker

package walk

import (
	"testing"

	"github.com/embedded-tools/regdecode/decode"
	"github.com/embedded-tools/regdecode/defs"
	"github.com/embedded-tools/regdecode/regval"
)

func twoUnitsOneRegisterEach() []defs.Unit {
	return []defs.Unit{
		{Start: 0x1000, End: 0x10FF, ID: "u0", Registers: []defs.Register{{Offset: 0, Width: 8, ID: "r0"}}},
		{Start: 0x2000, End: 0x20FF, ID: "u1", Registers: []defs.Register{{Offset: 0, Width: 8, ID: "r1"}}},
	}
}

func TestWalkRangeDeliversBothInOrder(t *testing.T) {
	// Scenario 4: two units, each with one register at offset 0, walk
	// [0x1000, 0x2000] delivers both registers in order.
	units := twoUnitsOneRegisterEach()

	var seen []string
	rc := Walk(units, 0x1000, 0x2000, func(reg *defs.Register) int {
		seen = append(seen, reg.ID)
		return 0
	})

	if rc != 0 {
		t.Fatalf("Walk() = %d, want 0", rc)
	}
	if len(seen) != 2 || seen[0] != "r0" || seen[1] != "r1" {
		t.Fatalf("seen = %v, want [r0 r1]", seen)
	}
}

func TestWalkStartAfterEndReturnsZeroNoCallback(t *testing.T) {
	units := twoUnitsOneRegisterEach()
	calls := 0
	rc := Walk(units, 0x2000, 0x1000, func(*defs.Register) int {
		calls++
		return 0
	})
	if rc != 0 {
		t.Errorf("Walk() = %d, want 0", rc)
	}
	if calls != 0 {
		t.Errorf("callback invoked %d times, want 0", calls)
	}
}

func TestWalkSkipsDisjointUnits(t *testing.T) {
	units := twoUnitsOneRegisterEach()
	var seen []string
	Walk(units, 0x1000, 0x10FF, func(reg *defs.Register) int {
		seen = append(seen, reg.ID)
		return 0
	})
	if len(seen) != 1 || seen[0] != "r0" {
		t.Fatalf("seen = %v, want [r0]", seen)
	}
}

func TestWalkStopsOnNegativeReturn(t *testing.T) {
	units := twoUnitsOneRegisterEach()
	calls := 0
	rc := Walk(units, 0x1000, 0x20FF, func(*defs.Register) int {
		calls++
		return -5
	})
	if rc != -5 {
		t.Errorf("Walk() = %d, want -5", rc)
	}
	if calls != 1 {
		t.Errorf("callback invoked %d times, want 1 (stop on first failure)", calls)
	}
}

func TestWalkSkipsRegisterOutsideWalkRangeEvenInsideUnit(t *testing.T) {
	units := []defs.Unit{
		{Start: 0x1000, End: 0x10FF, ID: "u0", Registers: []defs.Register{
			{Offset: 0x00, Width: 8, ID: "low"},
			{Offset: 0x80, Width: 8, ID: "high"},
		}},
	}
	var seen []string
	Walk(units, 0x1000, 0x1010, func(reg *defs.Register) int {
		seen = append(seen, reg.ID)
		return 0
	})
	if len(seen) != 1 || seen[0] != "low" {
		t.Fatalf("seen = %v, want [low]", seen)
	}
}

// recordingSink is a minimal decode.Sink for DecodeOne tests.
type recordingSink struct {
	bools []bool
}

var _ decode.Sink = (*recordingSink)(nil)

func (s *recordingSink) BeginRegister(*defs.Register, regval.RV) {}
func (s *recordingSink) EndRegister(*defs.Register)              {}
func (s *recordingSink) Bool(_ *defs.BoolField, v bool)          { s.bools = append(s.bools, v) }
func (s *recordingSink) Enum(*defs.EnumField, *defs.EnumVal, uint64) {}
func (s *recordingSink) SInt(*defs.IntField, int64)                  {}
func (s *recordingSink) UInt(*defs.IntField, uint64)                 {}
func (s *recordingSink) Frac(*defs.FracField, uint64, uint64, uint64) {}
func (s *recordingSink) Reserved(*defs.ReservedField, uint64)         {}

func TestDecodeOneFindsFirstMatch(t *testing.T) {
	reg := defs.Register{Offset: 0, Width: 8}
	field := &defs.BoolField{FieldHeader: defs.FieldHeader{ID: "en", Register: &reg}, Bit: 0}
	reg.Fields = []defs.Field{field}
	units := []defs.Unit{{Start: 0x1000, End: 0x10FF, Registers: []defs.Register{reg}}}

	sink := &recordingSink{}
	found := DecodeOne(units, 0x1000, regval.FromUint64(8, 0x01), sink)

	if !found {
		t.Fatalf("DecodeOne() = false, want true")
	}
	if len(sink.bools) != 1 || !sink.bools[0] {
		t.Fatalf("bools = %v, want [true]", sink.bools)
	}
}

func TestDecodeOneNoMatch(t *testing.T) {
	units := twoUnitsOneRegisterEach()
	sink := &recordingSink{}
	found := DecodeOne(units, 0x9999, regval.FromUint64(8, 0), sink)
	if found {
		t.Errorf("DecodeOne() = true, want false")
	}
}
