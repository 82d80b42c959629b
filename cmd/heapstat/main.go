// Command heapstat drives a synthetic allocate/release/resize workload
// against a segheap.Heap and reports the validator's findings alongside
// operation counts and the number of blocks still live; it computes no
// byte-level utilization figures. It is not a replay tool for external
// allocation traces; it exists to exercise the allocator end to end.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"unsafe"

	"segheap"
	"segheap/region"
)

func main() {
	var (
		capacity = flag.Uint("capacity", 64<<20, "bytes of address space to reserve")
		ops      = flag.Int("ops", 20000, "number of allocate/release/resize operations to run")
		seed     = flag.Int64("seed", 1, "PRNG seed")
		maxAlloc = flag.Uint("max-alloc", 4096, "largest single request size")
	)
	flag.Parse()

	if err := run(uint32(*capacity), *ops, *seed, uint32(*maxAlloc)); err != nil {
		fmt.Fprintln(os.Stderr, "heapstat:", err)
		os.Exit(1)
	}
}

func run(capacity uint32, ops int, seed int64, maxAlloc uint32) error {
	provider := region.NewSliceProvider(capacity)
	h, err := segheap.New(provider)
	if err != nil {
		return fmt.Errorf("segheap.New: %w", err)
	}

	rng := rand.New(rand.NewSource(seed))
	live := make(map[uintptr]unsafe.Pointer)

	var allocs, releases, resizes, failures int

	for i := 0; i < ops; i++ {
		switch rng.Intn(3) {
		case 0:
			n := uint32(rng.Intn(int(maxAlloc))) + 1
			p, err := h.Allocate(n)
			if err != nil {
				failures++
				continue
			}
			allocs++
			live[uintptr(p)] = p
		case 1:
			if len(live) == 0 {
				continue
			}
			k := pickKey(live, rng)
			h.Release(live[k])
			delete(live, k)
			releases++
		case 2:
			if len(live) == 0 {
				continue
			}
			k := pickKey(live, rng)
			n := uint32(rng.Intn(int(maxAlloc))) + 1
			np, err := h.Resize(live[k], n)
			if err != nil {
				failures++
				continue
			}
			delete(live, k)
			live[uintptr(np)] = np
			resizes++
		}
	}

	report := h.Check()
	fmt.Printf("ops: %d allocs, %d releases, %d resizes, %d failures\n", allocs, releases, resizes, failures)
	fmt.Printf("live blocks at end: %d\n", len(live))
	fmt.Printf("check: ok=%v violations=%d\n", report.OK, len(report.Violations))
	for _, v := range report.Violations {
		fmt.Println("  -", v)
	}
	if !report.OK {
		return fmt.Errorf("%d invariant violations found", len(report.Violations))
	}
	return nil
}

// pickKey returns a uniformly random key from a non-empty map. Go map
// iteration order is randomized per-run, so a single Intn-bounded skip
// is enough to pick a pseudo-random element without building an index.
func pickKey(m map[uintptr]unsafe.Pointer, rng *rand.Rand) uintptr {
	skip := rng.Intn(len(m))
	for k := range m {
		if skip == 0 {
			return k
		}
		skip--
	}
	panic("unreachable")
}
