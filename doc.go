/* This program is free software. It comes without any warranty, to
 * the extent permitted by applicable law. You can redistribute it
 * and/or modify it under the terms of the Do What The Fuck You Want
 * To Public License, Version 2, as published by Sam Hocevar. See
 * http://sam.zoy.org/wtfpl/COPYING for more details. */

// Package segheap implements a serial, boundary-tag heap allocator over a
// single contiguous, monotonically growing memory region.
//
// The region is obtained from a PageProvider, an external collaborator that
// exposes grow-only semantics: the allocator never returns memory to it.
// Allocation requests are served first from segregated free lists indexed by
// size class, falling back to extending the top of the region only when no
// free block is large enough.
//
// IMPORTANT: This package is NOT goroutine-safe. A Heap's bins and backing
// region are mutated by every Allocate, Release, and Resize call. Concurrent
// access from multiple goroutines is not supported and may corrupt the heap.
// It is the caller's responsibility to serialize access, e.g. with a mutex,
// if a Heap is shared across goroutines.
package segheap
