// errors.go - error taxonomy for the definitions codec

package defs

import (
	"errors"
	"fmt"
)

// ErrCorruptDefinitions is the sentinel wrapped by every InvariantError, so
// callers that trust their input (spec.md §7: "these conditions must never
// be caused by valid input; they mark corrupt definitions") can test for it
// with errors.Is rather than matching on error text.
var ErrCorruptDefinitions = errors.New("defs: corrupt definitions stream")

// InvariantError reports a structural invariant violation discovered while
// parsing: a width that isn't a multiple of 8, a bitmask bit outside the
// register's width, an enum popcount exceeding the variable-width integer
// ceiling, an unknown field kind tag, or a pop_uint_var order above 32.
// Go has no equivalent to the C original's BUG()/abort() that a library can
// use without forcing every caller to recover() from a panic, so this is
// returned like any other parse error but distinguished via errors.Is.
type InvariantError struct {
	UnitID, RegisterID, FieldID string
	Reason                      string
}

func (e *InvariantError) Error() string {
	where := e.UnitID
	if e.RegisterID != "" {
		where += "/" + e.RegisterID
	}
	if e.FieldID != "" {
		where += "/" + e.FieldID
	}
	if where == "" {
		return fmt.Sprintf("defs: invariant violation: %s", e.Reason)
	}
	return fmt.Sprintf("defs: invariant violation at %s: %s", where, e.Reason)
}

func (e *InvariantError) Unwrap() error { return ErrCorruptDefinitions }

func invariant(unitID, regID, fieldID, reason string) error {
	return &InvariantError{UnitID: unitID, RegisterID: regID, FieldID: fieldID, Reason: reason}
}
