package interp

import "github.com/go-applesoft/applesoft/berrors"

// memory is the 64KiB address space PEEK and POKE address, matching
// the Apple II's addressable range. Locations are zeroed at start and
// never special-cased; POKE to a soft-switch address is a plain memory
// write and CALL touches no memory, rather than emulating hardware.
type memory struct {
	bytes [65536]byte
}

func newMemory() *memory { return &memory{} }

func (m *memory) peek(addr int) (byte, error) {
	if addr < 0 || addr > 65535 {
		return 0, berrors.New(berrors.IllegalQuantity)
	}
	return m.bytes[addr], nil
}

func (m *memory) poke(addr int, val int) error {
	if addr < 0 || addr > 65535 || val < 0 || val > 255 {
		return berrors.New(berrors.IllegalQuantity)
	}
	m.bytes[addr] = byte(val)
	return nil
}
