// mem.go - /dev/mem window reader, grounded on original_source/lib/decode-devmem.c

package device

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/embedded-tools/regdecode/regval"
)

// MemReader maps successive pages of /dev/mem on demand, mirroring
// decode-devmem.c's _mem_read: it keeps at most one page mapped at a time
// and remaps only when the requested address falls outside the current
// page.
type MemReader struct {
	file    *os.File
	pageSz  int
	mapping []byte
	page    uint64
	mapped  bool
}

// OpenMem opens /dev/mem read-only for windowed register access.
func OpenMem() (*MemReader, error) {
	f, err := os.OpenFile("/dev/mem", os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("device: mem: open /dev/mem: %w", err)
	}
	return &MemReader{file: f, pageSz: os.Getpagesize()}, nil
}

func (r *MemReader) Read(_ context.Context, addr uint64, width int) (regval.RV, error) {
	if width <= 0 || width%8 != 0 || width > 64 {
		return regval.RV{}, fmt.Errorf("%w: %d", ErrUnsupportedWidth, width)
	}

	pageMask := uint64(r.pageSz - 1)
	page := addr &^ pageMask

	if !r.mapped || r.page != page {
		if r.mapped {
			if err := unix.Munmap(r.mapping); err != nil {
				return regval.RV{}, fmt.Errorf("device: mem: munmap: %w", err)
			}
			r.mapped = false
			r.mapping = nil
		}

		m, err := unix.Mmap(int(r.file.Fd()), int64(page), r.pageSz, unix.PROT_READ, unix.MAP_SHARED)
		if err != nil {
			return regval.RV{}, fmt.Errorf("device: mem: mmap at %#x: %w", page, err)
		}
		r.mapping = m
		r.page = page
		r.mapped = true
	}

	off := addr & pageMask
	n := width / 8
	if int(off)+n > len(r.mapping) {
		return regval.RV{}, fmt.Errorf("device: mem: register at %#x width %d crosses page boundary", addr, width)
	}

	return regval.NewRV(width, r.mapping[off:int(off)+n]), nil
}

func (r *MemReader) Close() error {
	if r.mapped {
		if err := unix.Munmap(r.mapping); err != nil {
			r.file.Close()
			return fmt.Errorf("device: mem: munmap: %w", err)
		}
		r.mapped = false
	}
	return r.file.Close()
}
