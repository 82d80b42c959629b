package segheap

import "fmt"

// Config holds the compile-time tunables spec.md describes as compile-time
// constants. Go has no compile-time constant-with-default mechanism that
// suits a library, so they become a struct assembled via functional Options,
// mirroring the SizeClassConfig/DefaultConfig pattern other allocators in
// this codebase's lineage use.
type Config struct {
	// Alignment is the byte alignment every payload address and every
	// stored size must satisfy. Must be a power of two, >= 8.
	Alignment uint32

	// MinSizeExp is the exponent of the smallest bin's lower bound (2^MinSizeExp).
	MinSizeExp uint32

	// SizeLimitExp is the exponent of the largest bin's upper bound
	// (2^SizeLimitExp). Bounded by the 32-bit size field's width.
	SizeLimitExp uint32

	// MinBlockSize is the smallest total size (header + payload) a block
	// may have. Must be >= headerSize + 16 (room for free-list linkage).
	MinBlockSize uint32
}

// DefaultConfig matches spec.md §6.3's defaults.
var DefaultConfig = Config{
	Alignment:    8,
	MinSizeExp:   5,
	SizeLimitExp: 32,
	MinBlockSize: 24,
}

// Option mutates a Config being assembled by New.
type Option func(*Config)

// WithAlignment overrides the payload/size alignment. n must be a power of
// two and >= 8.
func WithAlignment(n uint32) Option {
	return func(c *Config) { c.Alignment = n }
}

// WithSizeClassRange overrides the exponents bounding the size-class bins.
func WithSizeClassRange(minExp, limitExp uint32) Option {
	return func(c *Config) { c.MinSizeExp, c.SizeLimitExp = minExp, limitExp }
}

// WithMinBlockSize overrides the split threshold.
func WithMinBlockSize(n uint32) Option {
	return func(c *Config) { c.MinBlockSize = n }
}

// ConfigError reports an invalid Config field discovered at construction.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("segheap: invalid config field %s: %s", e.Field, e.Reason)
}

func (c Config) numBins() int {
	return int(c.SizeLimitExp - c.MinSizeExp)
}

func (c Config) validate() error {
	if c.Alignment < 8 || c.Alignment&(c.Alignment-1) != 0 {
		return &ConfigError{"Alignment", "must be a power of two >= 8"}
	}
	if c.SizeLimitExp <= c.MinSizeExp {
		return &ConfigError{"SizeLimitExp", "must be greater than MinSizeExp"}
	}
	if c.SizeLimitExp > 32 {
		return &ConfigError{"SizeLimitExp", "must not exceed 32 (the size field's width)"}
	}
	if c.MinBlockSize < uint32(headerSize)+16 {
		return &ConfigError{"MinBlockSize", "must be at least header size plus 16 bytes of free-list linkage"}
	}
	return nil
}
