// walk.go - range-walking driver (C6)

package walk

import (
	"github.com/embedded-tools/regdecode/decode"
	"github.com/embedded-tools/regdecode/defs"
	"github.com/embedded-tools/regdecode/regval"
)

// OnRegister is invoked once per matching register during Walk. A negative
// return value stops iteration and is propagated as Walk's own return
// value; spec.md §4.6 reserves this for reader-error propagation.
type OnRegister func(reg *defs.Register) int

// Walk iterates [start, end] in stream order — units in definition order,
// registers within a unit in definition order — calling onReg for every
// register whose absolute address (unit.Start + register.Offset) falls
// inside the range. No sorting occurs. Returns 0 on a full, uninterrupted
// walk, or whatever negative code onReg returned to stop early.
func Walk(units []defs.Unit, start, end uint64, onReg OnRegister) int {
	if start > end {
		return 0
	}

	for ui := range units {
		u := &units[ui]
		if start > u.End || end < u.Start {
			continue // unit's range is disjoint from [start, end]
		}

		for ri := range u.Registers {
			r := &u.Registers[ri]
			abs := u.Start + r.Offset
			if abs < start || abs > end {
				continue
			}
			if rc := onReg(r); rc < 0 {
				return rc
			}
		}
	}

	return 0
}

// DecodeOne finds the first register whose absolute address equals addr
// (scanning units, then registers, in stream order), decodes all of its
// fields against raw into sink, and reports whether a match was found.
func DecodeOne(units []defs.Unit, addr uint64, raw regval.RV, sink decode.Sink) bool {
	for ui := range units {
		u := &units[ui]
		if addr < u.Start || addr > u.End {
			continue
		}
		for ri := range u.Registers {
			r := &u.Registers[ri]
			if u.Start+r.Offset != addr {
				continue
			}
			decode.DecodeRegister(r, raw, sink)
			return true
		}
	}
	return false
}
