// cursor.go - bounded cursor over a definitions-stream byte buffer

package stream

import (
	"encoding/binary"
	"errors"

	"github.com/embedded-tools/regdecode/regval"
)

// ErrShortRead is returned when a pop would read past the end of the
// buffer. The cursor is left in an unusable state after this error; no
// further pops should be attempted.
var ErrShortRead = errors.New("stream: short read")

// Cursor is a bounded, forward-only reader over a byte buffer. It never
// copies on PopBytes/PopString beyond the single string(...) conversion
// needed for Go's immutable string type; every other pop reads directly out
// of the backing buffer.
type Cursor struct {
	buf []byte
}

// New wraps buf in a Cursor starting at offset 0.
func New(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Remaining reports the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.buf) }

// Rest returns the remainder of the stream without advancing the cursor.
// Used by callers that want the leftover bytes after a top-level parse.
func (c *Cursor) Rest() []byte { return c.buf }

func (c *Cursor) take(n int) ([]byte, error) {
	if len(c.buf) < n {
		c.buf = nil
		return nil, ErrShortRead
	}
	b := c.buf[:n]
	c.buf = c.buf[n:]
	return b, nil
}

// PopU8 reads one byte.
func (c *Cursor) PopU8() (uint8, error) {
	b, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// PopU16 reads a little-endian uint16.
func (c *Cursor) PopU16() (uint16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// PopU32 reads a little-endian uint32.
func (c *Cursor) PopU32() (uint32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// PopUintVar reads an unsigned integer whose on-wire width is chosen by
// order (the number of bits it must be able to represent): order<=8 reads a
// u8, order<=16 a u16, order<=32 a u32. order>32 is a hard error — it can
// only arise from a corrupt definitions stream or a bug in the caller
// computing order, since spec.md derives order from a bitmask popcount that
// this package's callers already validate to be <= 32.
func (c *Cursor) PopUintVar(order int) (uint32, error) {
	switch {
	case order <= 8:
		v, err := c.PopU8()
		return uint32(v), err
	case order <= 16:
		v, err := c.PopU16()
		return uint32(v), err
	case order <= 32:
		return c.PopU32()
	default:
		panic("stream: PopUintVar: order > 32")
	}
}

// PopBytes returns a slice of length n, advancing the cursor. The returned
// slice aliases the cursor's backing buffer and must not be retained past
// the buffer's own lifetime.
func (c *Cursor) PopBytes(n int) ([]byte, error) {
	return c.take(n)
}

// PopString reads a u16 length followed by that many bytes, returning a Go
// string. This copies once (Go strings are immutable and cannot borrow a
// mutable buffer without unsafe), trading the original's zero-copy borrow
// for memory safety; see SPEC_FULL.md §3.
func (c *Cursor) PopString() (string, error) {
	n, err := c.PopU16()
	if err != nil {
		return "", err
	}
	b, err := c.take(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// PopReg reads ceil(widthBits/8) bytes into an RV of that width. The wire
// format is little-endian and RV is little-endian-in-memory, so bytes are
// copied as-is.
func (c *Cursor) PopReg(widthBits int) (regval.RV, error) {
	n := (widthBits + 7) / 8
	b, err := c.take(n)
	if err != nil {
		return regval.RV{}, err
	}
	return regval.NewRV(widthBits, b), nil
}
