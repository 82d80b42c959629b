package segheap

import "errors"

// ErrOutOfMemory is returned by Allocate and Resize when the page provider
// refused to grow the region. No partial state change is visible to the
// caller when this error is returned.
var ErrOutOfMemory = errors.New("segheap: out of memory")

// ErrInvalidPointer is returned by the debug-mode hooks (see Heap.SetStrict)
// when a pointer handed to Release or Resize does not reference a live
// block header. Ordinary (non-strict) builds never return this: verifying
// it costs an O(n) region scan the hot path cannot afford, and releasing an
// unknown pointer otherwise remains undefined behavior per design.
var ErrInvalidPointer = errors.New("segheap: pointer does not reference a live block")
