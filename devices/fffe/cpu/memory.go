package cpu

import "fmt"

// Memory capacity limits. Addresses live in byte-wide registers and stack
// slots, so the address space can not grow past 256 bytes.
const (
	MaxMemoryCapacity     = 0x100
	DefaultMemoryCapacity = MaxMemoryCapacity
)

// ValidMemoryCapacity returns true if size is a power of two no larger
// than MaxMemoryCapacity.
func ValidMemoryCapacity(size int) bool {
	return size > 0 && size <= MaxMemoryCapacity && size&(size-1) == 0
}

// Memory defines the system's memory bank.
//
// Its length is always a power of two and every address is masked with
// len-1 before use, so addressing wraps around instead of faulting.
type Memory []byte

// NewMemory creates a zeroed memory bank of the given size.
// It panics if size is not a valid capacity.
func NewMemory(size int) Memory {
	if !ValidMemoryCapacity(size) {
		panic(fmt.Sprintf("cpu: memory capacity %d is not a power of two up to %d", size, MaxMemoryCapacity))
	}
	return make(Memory, size)
}

// Read returns the byte at the given address.
func (m Memory) Read(addr int) byte {
	return m[m.mask(addr)]
}

// Write stores v at the given address.
func (m Memory) Write(addr int, v byte) {
	m[m.mask(addr)] = v
}

// Len returns the capacity of the memory bank.
func (m Memory) Len() int {
	return len(m)
}

// Reset zeroes the memory bank.
func (m Memory) Reset() {
	for i := range m {
		m[i] = 0
	}
}

func (m Memory) mask(addr int) int {
	return addr & (len(m) - 1)
}
