// render.go - text rendering of decoded registers, grounded on
// original_source/lib/common.c's col_printf/dump_field_* helpers and
// decode-device.c's _decode_reg.

package render

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/embedded-tools/regdecode/defs"
	"github.com/embedded-tools/regdecode/regval"
)

// ANSI codes matching common.c's COL_* macros.
const (
	colAddr    = "\033[31m"
	colRegName = "\033[1m"
	colRawVal  = "\033[34m"
	colAccess  = "\033[1m"
	colTrue    = "\033[94m"
	colFalse   = "\033[91m"
	colOff     = "\033[0;39m"
)

// Renderer formats decoded registers as aligned "name: value" text,
// colorized with ANSI escapes when writing to a terminal. It implements
// decode.Sink directly; walk.Walk/decode.DecodeRegister drive it exactly
// like any other sink.
type Renderer struct {
	w     *bufio.Writer
	color bool

	lastUnit *defs.Unit
	numShown int
}

// New wraps w for rendering. If w is an *os.File connected to a terminal,
// output is colorized; otherwise (redirected to a file or pipe) it is
// plain text, matching col_init's isatty gate in the original tool.
func New(w io.Writer) *Renderer {
	color := false
	if f, ok := w.(*os.File); ok {
		color = term.IsTerminal(int(f.Fd()))
	}
	return &Renderer{w: bufio.NewWriter(w), color: color}
}

// NewWithColor wraps w, forcing the color setting rather than probing w.
func NewWithColor(w io.Writer, color bool) *Renderer {
	return &Renderer{w: bufio.NewWriter(w), color: color}
}

// Flush must be called after the last register has been rendered.
func (r *Renderer) Flush() error { return r.w.Flush() }

func (r *Renderer) col(code string) string {
	if !r.color {
		return ""
	}
	return code
}

func (r *Renderer) BeginRegister(reg *defs.Register, raw regval.RV) {
	if reg.Unit != r.lastUnit {
		if r.numShown > 0 {
			fmt.Fprintln(r.w)
		}
		fmt.Fprintf(r.w, "======================== %s ==============================\n", reg.Unit.Name)
		r.lastUnit = reg.Unit
	}

	addr := reg.Offset + reg.Unit.Start
	// raw.Bytes() is little-endian (byte 0 least significant); Reversed()
	// puts the most significant byte first so hex.EncodeToString reads the
	// way an operator expects, and covers the full register width (unlike
	// raw.Uint64(), which truncates registers wider than 64 bits).
	rawHex := hex.EncodeToString(raw.Reversed().Bytes())
	fmt.Fprintf(r.w, "%s@0x%08x%s %s%-28s%s\t%s0x%s%s",
		r.col(colAddr), addr, r.col(colOff),
		r.col(colRegName), reg.Name, r.col(colOff),
		r.col(colRawVal), rawHex, r.col(colOff))
}

func (r *Renderer) EndRegister(reg *defs.Register) {
	fmt.Fprintln(r.w)
	r.numShown++
}

func (r *Renderer) fieldStart(name string) {
	fmt.Fprintf(r.w, "\n  %-36s:\t", name)
}

func (r *Renderer) fieldEnd(h *defs.FieldHeader) {
	switch h.Access {
	case defs.AccessRead:
		fmt.Fprintf(r.w, " (%sro%s)", r.col(colAccess), r.col(colOff))
	case defs.AccessWrite:
		fmt.Fprintf(r.w, " (%swo%s)", r.col(colAccess), r.col(colOff))
	}
}

func (r *Renderer) Bool(f *defs.BoolField, v bool) {
	r.fieldStart(f.Name)
	if v {
		fmt.Fprintf(r.w, "%strue%s", r.col(colTrue), r.col(colOff))
	} else {
		fmt.Fprintf(r.w, "%sfalse%s", r.col(colFalse), r.col(colOff))
	}
	r.fieldEnd(&f.FieldHeader)
}

func (r *Renderer) Enum(f *defs.EnumField, val *defs.EnumVal, raw uint64) {
	r.fieldStart(f.Name)
	if val != nil {
		fmt.Fprint(r.w, val.Name)
	} else {
		fmt.Fprintf(r.w, "#%d", raw)
	}
	r.fieldEnd(&f.FieldHeader)
}

func (r *Renderer) SInt(f *defs.IntField, v int64) {
	r.fieldStart(f.Name)
	switch f.Display {
	case defs.DisplayHex:
		// The C original formats %lx on the raw signed long, i.e. the
		// two's-complement bit pattern, not "-<abs>"; uint64(v) reproduces
		// that bit pattern here.
		w := hexWidth(f.Bitmask)
		fmt.Fprintf(r.w, "0x%.*x", w, uint64(v))
	default:
		fmt.Fprintf(r.w, "%d", v)
	}
	r.fieldEnd(&f.FieldHeader)
}

func (r *Renderer) UInt(f *defs.IntField, v uint64) {
	r.fieldStart(f.Name)
	switch f.Display {
	case defs.DisplayHex:
		w := hexWidth(f.Bitmask)
		fmt.Fprintf(r.w, "0x%.*x", w, v)
	default:
		fmt.Fprintf(r.w, "%d", v)
	}
	r.fieldEnd(&f.FieldHeader)
}

// Frac renders int_part + frac_part/divisor, matching deserialize_dump_frac's
// float reconstruction exactly.
func (r *Renderer) Frac(f *defs.FracField, intPart, fracPart, divisor uint64) {
	r.fieldStart(f.Name)
	v := float64(intPart) + float64(fracPart)/float64(divisor)
	fmt.Fprintf(r.w, "%f", v)
	r.fieldEnd(&f.FieldHeader)
}

// Reserved fields are never printed, matching deserialize_dump_reserved's
// empty body: a reserved bit range carries no operator-meaningful value.
func (r *Renderer) Reserved(*defs.ReservedField, uint64) {}

// hexWidth mirrors common.c's (popcount(bitmask) + 3) / 4: the number of
// hex digits needed to show every bit the field actually occupies.
func hexWidth(mask regval.RV) int {
	pop := mask.Popcount()
	return (pop + 3) / 4
}
