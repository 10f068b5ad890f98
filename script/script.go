// script.go - optional Lua post-processing hook (C13), wrapping a
// decode.Sink so a site-supplied script can override how a field's value
// is rendered before it reaches the underlying sink.
//
// The teacher's go.mod already carries github.com/yuin/gopher-lua for its
// assembler macro tooling; this package gives that dependency a second,
// unrelated home: letting an operator reshape field values (e.g. applying
// a site-specific calibration curve to an Int reading) without a rebuild.

package script

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/embedded-tools/regdecode/decode"
	"github.com/embedded-tools/regdecode/defs"
	"github.com/embedded-tools/regdecode/regval"
)

// Hook wraps a decode.Sink, running bool and integer field values through a
// Lua function named after the field's ID before forwarding to Sink. A field
// with no matching Lua global passes through unchanged; enum, frac and
// reserved fields are always forwarded unchanged.
type Hook struct {
	Sink decode.Sink

	l *lua.LState
}

var _ decode.Sink = (*Hook)(nil)

// New loads src (Lua source defining zero or more top-level functions) and
// returns a Hook delivering to sink. Each decoded bool or integer field whose
// ID matches a defined function name has that function called with the
// field's decoded value; the function's first return value, if it is of the
// same Lua type (boolean or number), becomes the value forwarded to sink's
// matching callback. Enum, frac and reserved fields are not passed to Lua.
func New(sink decode.Sink, src string) (*Hook, error) {
	l := lua.NewState()
	if err := l.DoString(src); err != nil {
		l.Close()
		return nil, fmt.Errorf("script: load: %w", err)
	}
	return &Hook{Sink: sink, l: l}, nil
}

// Close releases the Lua interpreter's resources.
func (h *Hook) Close() { h.l.Close() }

func (h *Hook) fn(name string) *lua.LFunction {
	v := h.l.GetGlobal(name)
	f, ok := v.(*lua.LFunction)
	if !ok {
		return nil
	}
	return f
}

func (h *Hook) callNumber(name string, arg lua.LValue) (lua.LValue, bool) {
	f := h.fn(name)
	if f == nil {
		return nil, false
	}
	if err := h.l.CallByParam(lua.P{Fn: f, NRet: 1, Protect: true}, arg); err != nil {
		return nil, false
	}
	ret := h.l.Get(-1)
	h.l.Pop(1)
	return ret, true
}

func (h *Hook) BeginRegister(reg *defs.Register, raw regval.RV) { h.Sink.BeginRegister(reg, raw) }
func (h *Hook) EndRegister(reg *defs.Register)                  { h.Sink.EndRegister(reg) }

func (h *Hook) Bool(f *defs.BoolField, v bool) {
	arg := lua.LBool(v)
	if ret, ok := h.callNumber(f.ID, arg); ok {
		if b, ok := ret.(lua.LBool); ok {
			v = bool(b)
		}
	}
	h.Sink.Bool(f, v)
}

func (h *Hook) Enum(f *defs.EnumField, val *defs.EnumVal, idx uint64) {
	h.Sink.Enum(f, val, idx)
}

func (h *Hook) SInt(f *defs.IntField, v int64) {
	if ret, ok := h.callNumber(f.ID, lua.LNumber(v)); ok {
		if n, ok := ret.(lua.LNumber); ok {
			v = int64(n)
		}
	}
	h.Sink.SInt(f, v)
}

func (h *Hook) UInt(f *defs.IntField, v uint64) {
	if ret, ok := h.callNumber(f.ID, lua.LNumber(v)); ok {
		if n, ok := ret.(lua.LNumber); ok {
			v = uint64(n)
		}
	}
	h.Sink.UInt(f, v)
}

func (h *Hook) Frac(f *defs.FracField, intPart, fracPart, divisor uint64) {
	h.Sink.Frac(f, intPart, fracPart, divisor)
}

func (h *Hook) Reserved(f *defs.ReservedField, v uint64) { h.Sink.Reserved(f, v) }
