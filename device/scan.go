// scan.go - bounded-concurrency probe of many addresses on one bus (C14)

package device

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/embedded-tools/regdecode/regval"
)

// ScanResult is one address's outcome from ScanBus.
type ScanResult struct {
	Addr uint64
	RV   regval.RV
	Err  error
}

// ScanBus reads every address in addrs at the given width, using up to
// maxInFlight concurrent reads. Unlike walk.Walk — whose per-register
// ordering guarantee (spec.md §4.6/§5) must hold so a renderer sees
// begin/end pairs strictly in between reads — this is a CLI convenience
// for probing an I2C bus's address space where no such ordering is implied:
// the caller only cares which addresses answered, not in what order the
// reads completed. Results are returned sorted by address regardless of
// completion order, so output is deterministic.
func ScanBus(ctx context.Context, r Reader, addrs []uint64, width, maxInFlight int) []ScanResult {
	if maxInFlight < 1 {
		maxInFlight = 1
	}
	sem := semaphore.NewWeighted(int64(maxInFlight))

	results := make([]ScanResult, len(addrs))
	var wg sync.WaitGroup
	for i, addr := range addrs {
		i, addr := i, addr
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i] = ScanResult{Addr: addr, Err: err}
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)
			rv, err := r.Read(ctx, addr, width)
			results[i] = ScanResult{Addr: addr, RV: rv, Err: err}
		}()
	}
	wg.Wait()

	sort.Slice(results, func(a, b int) bool { return results[a].Addr < results[b].Addr })
	return results
}
