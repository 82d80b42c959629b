//go:build unix

package region

import (
	"testing"
	"unsafe"
)

func TestMmapProviderGrowCommitsPages(t *testing.T) {
	p, err := NewMmapProvider(1 << 20)
	if err != nil {
		t.Fatalf("NewMmapProvider failed: %v", err)
	}
	defer p.Close()

	low := p.LowBound()
	addr, err := p.Grow(100)
	if err != nil {
		t.Fatalf("Grow(100) failed: %v", err)
	}
	if uintptr(addr) != low {
		t.Fatalf("first Grow should return the low bound")
	}

	// Touching the committed bytes must not fault.
	buf := unsafe.Slice((*byte)(addr), 100)
	for i := range buf {
		buf[i] = byte(i)
	}
	for i := range buf {
		if buf[i] != byte(i) {
			t.Fatalf("byte %d = %d, want %d", i, buf[i], byte(i))
		}
	}
}

func TestMmapProviderBaseNeverMoves(t *testing.T) {
	p, err := NewMmapProvider(1 << 20)
	if err != nil {
		t.Fatalf("NewMmapProvider failed: %v", err)
	}
	defer p.Close()

	low := p.LowBound()
	for i := 0; i < 20; i++ {
		if _, err := p.Grow(4096); err != nil {
			t.Fatalf("Grow failed on iteration %d: %v", i, err)
		}
		if p.LowBound() != low {
			t.Fatalf("LowBound moved after Grow")
		}
	}
}
