package vm

import "fmt"

// Address is a 12-bit memory address.
type Address uint16

// Memory is the flat 4k address space. Glyphs live at 0, programs at 0x200.
type Memory struct {
	bytes [MemorySize]uint8
}

func (m *Memory) Read(addr Address) (uint8, error) {
	if int(addr) >= MemorySize {
		return 0, &MemoryError{Op: "read", Addr: int(addr)}
	}
	return m.bytes[addr], nil
}

func (m *Memory) Write(addr Address, value uint8) error {
	if int(addr) >= MemorySize {
		return &MemoryError{Op: "write", Addr: int(addr)}
	}
	m.bytes[addr] = value
	return nil
}

// Load copies data into memory starting at addr.
func (m *Memory) Load(addr Address, data []byte) error {
	if int(addr)+len(data) > MemorySize {
		return &MemoryError{Op: "load", Addr: int(addr) + len(data) - 1}
	}
	copy(m.bytes[addr:], data)
	return nil
}

// Fetch reads the big-endian instruction word at pc.
func (m *Memory) Fetch(pc Address) (uint16, error) {
	if int(pc)+InstructionSize > MemorySize {
		return 0, &MemoryError{Op: "fetch", Addr: int(pc)}
	}

	hi := m.bytes[pc]
	lo := m.bytes[pc+1]

	return uint16(hi)<<8 | uint16(lo), nil
}

func (m *Memory) clear() {
	for i := range m.bytes {
		m.bytes[i] = 0
	}
}

func (a Address) String() string {
	return fmt.Sprintf("0x%03x", uint16(a))
}
