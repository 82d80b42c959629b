// Package region collects PageProvider implementations for segheap.
package region

import (
	"fmt"
	"unsafe"
)

// SliceProvider backs a segheap.Heap with a single Go byte slice whose
// capacity is reserved up front. Growth only advances a high-water mark
// into that reserved capacity; the slice is never appended to and never
// reallocated, because segheap stores raw addresses into the region and a
// relocation would invalidate every one of them.
type SliceProvider struct {
	buf  []byte
	used int
}

// NewSliceProvider reserves capacity bytes and returns a provider with an
// empty, zero-length region.
func NewSliceProvider(capacity uint32) *SliceProvider {
	return &SliceProvider{buf: make([]byte, 0, capacity)}
}

// LowBound returns the address of the first reserved byte.
func (s *SliceProvider) LowBound() uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(s.buf[:cap(s.buf)])))
}

// HighBound returns the last byte currently in use, or LowBound()-1 when
// the region is empty.
func (s *SliceProvider) HighBound() uintptr {
	return s.LowBound() + uintptr(s.used) - 1
}

// Grow extends the used region by n bytes, returning the address of the
// first newly usable byte.
func (s *SliceProvider) Grow(n uint32) (unsafe.Pointer, error) {
	if s.used+int(n) > cap(s.buf) {
		return nil, fmt.Errorf("region: slice provider exhausted: used %d + requested %d exceeds capacity %d", s.used, n, cap(s.buf))
	}
	start := s.used
	s.used += int(n)
	base := unsafe.Pointer(unsafe.SliceData(s.buf[:cap(s.buf)]))
	return unsafe.Add(base, uintptr(start)), nil
}
