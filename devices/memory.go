package devices

// Memory defines the system's memory bank as seen from outside the CPU.
// Addresses wrap around; every address is valid.
type Memory interface {
	// Read returns the byte stored at the given address.
	Read(addr int) byte

	// Write stores v at the given address.
	Write(addr int, v byte)

	// Len returns the capacity of the memory bank in bytes.
	Len() int
}

// Load writes p into m, one byte at a time, starting at the given address.
// It is used by program loaders before the clock starts.
func Load(m Memory, addr int, p []byte) {
	for i, v := range p {
		m.Write(addr+i, v)
	}
}
