package segheap

import (
	"fmt"
	"os"
)

// debugAlloc gates verbose per-operation logging. Flip to true locally when
// chasing a corruption; left off by default since the formatting cost is
// not free even when nothing is printed in a hot loop.
const debugAlloc = false

// logAlloc additionally enables logging at runtime via SEGHEAP_LOG_ALLOC,
// for builds where flipping debugAlloc and recompiling isn't convenient.
var logAlloc = debugAlloc || os.Getenv("SEGHEAP_LOG_ALLOC") != ""

func debugLogf(format string, args ...any) {
	if !logAlloc {
		return
	}
	fmt.Fprintf(os.Stderr, "[SEGHEAP] "+format+"\n", args...)
}
