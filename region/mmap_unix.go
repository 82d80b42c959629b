//go:build unix

package region

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// MmapProvider backs a segheap.Heap with a single anonymous mmap, reserved
// at its maximum size up front via PROT_NONE and committed page by page on
// Grow via mprotect. Like SliceProvider, the mapping's base address is
// fixed for the provider's lifetime: segheap never tolerates a moving
// region.
type MmapProvider struct {
	region []byte
	used   int
}

// NewMmapProvider reserves maxBytes of address space, rounded up to a
// whole number of pages by the kernel, with no memory committed yet.
func NewMmapProvider(maxBytes int) (*MmapProvider, error) {
	region, err := unix.Mmap(-1, 0, maxBytes, unix.PROT_NONE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("region: mmap reservation of %d bytes failed: %w", maxBytes, err)
	}
	return &MmapProvider{region: region}, nil
}

// LowBound returns the address of the first page of the reservation.
func (m *MmapProvider) LowBound() uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(m.region)))
}

// HighBound returns the last byte currently committed, or LowBound()-1
// when nothing has been committed yet.
func (m *MmapProvider) HighBound() uintptr {
	return m.LowBound() + uintptr(m.used) - 1
}

// Grow commits n more bytes by marking the covering pages PROT_READ|
// PROT_WRITE, returning the address of the first newly usable byte.
func (m *MmapProvider) Grow(n uint32) (unsafe.Pointer, error) {
	if m.used+int(n) > len(m.region) {
		return nil, fmt.Errorf("region: mmap provider exhausted: used %d + requested %d exceeds reservation %d", m.used, n, len(m.region))
	}
	start := m.used
	end := start + int(n)

	pageSize := unix.Getpagesize()
	lo := (start / pageSize) * pageSize
	hi := ((end + pageSize - 1) / pageSize) * pageSize
	if hi > lo {
		if err := unix.Mprotect(m.region[lo:hi], unix.PROT_READ|unix.PROT_WRITE); err != nil {
			return nil, fmt.Errorf("region: mprotect commit failed: %w", err)
		}
	}

	m.used = end
	base := unsafe.Pointer(unsafe.SliceData(m.region))
	return unsafe.Add(base, uintptr(start)), nil
}

// Close releases the entire reservation back to the kernel.
func (m *MmapProvider) Close() error {
	return unix.Munmap(m.region)
}
