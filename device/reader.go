// reader.go - the Reader capability (C10), grounded on
// original_source/lib/decode-device.c's struct device_ops

package device

import (
	"context"
	"errors"
	"fmt"

	"github.com/embedded-tools/regdecode/regval"
)

// ErrUnsupportedWidth is returned by a Reader when asked to read a width
// its backing transport cannot fetch atomically.
var ErrUnsupportedWidth = errors.New("device: unsupported read width")

// Reader is the external capability the core delegates register reads to
// (spec.md §6.2: "read(addr, width) -> raw"). Implementations never
// interpret the bytes they return beyond byte-ordering.
type Reader interface {
	// Read returns the raw register value at addr, width bits wide.
	Read(ctx context.Context, addr uint64, width int) (regval.RV, error)
	// Close releases any OS resources (file descriptors, mappings).
	Close() error
}

// EmuReader always returns the same literal value, truncated/extended to
// whatever width is requested. It is the "EMU" device type from
// original_source/lib/decode-device.c's --value option: useful for
// exercising a definitions stream against a single already-known register
// value without any hardware attached.
type EmuReader struct {
	Value uint64
}

func (e EmuReader) Read(_ context.Context, _ uint64, width int) (regval.RV, error) {
	if width <= 0 || width > regval.MaxWidthBits || width%8 != 0 {
		return regval.RV{}, fmt.Errorf("%w: %d", ErrUnsupportedWidth, width)
	}
	// Widths above 64 bits can't come from a single uint64 literal;
	// FromUint64 zero-extends the remaining bytes, which is the only
	// sensible interpretation of "the same literal value" at a wider width.
	return regval.FromUint64(width, e.Value), nil
}

func (e EmuReader) Close() error { return nil }
