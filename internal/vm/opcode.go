package vm

// Decode fetches the instruction word at pc and decodes it. Failures are
// returned as a *Fault.
func Decode(pc Address, mem *Memory) (Instruction, uint16, error) {
	opcode, err := mem.Fetch(pc)
	if err != nil {
		return nil, 0, &Fault{PC: pc, Err: err}
	}

	instr, ok := DecodeOpcode(opcode)
	if !ok {
		return nil, opcode, &Fault{PC: pc, Opcode: opcode, Err: ErrUnknownOpcode}
	}

	return instr, opcode, nil
}

// DecodeOpcode maps a raw instruction word onto its instruction variant.
// It reports false when no variant matches.
func DecodeOpcode(opcode uint16) (Instruction, bool) {
	x := Register((opcode & 0x0F00) >> 8)
	y := Register((opcode & 0x00F0) >> 4)
	n := uint8(opcode & 0x000F)
	nn := uint8(opcode & 0x00FF)
	nnn := Address(opcode & 0x0FFF)

	switch opcode & 0xF000 {
	case 0x0000:
		switch opcode {
		case 0x00E0:
			return ClearScreen{}, true
		case 0x00EE:
			return Return{}, true
		}
		return SysCall{Addr: nnn}, true

	case 0x1000:
		return Jump{Addr: nnn}, true

	case 0x2000:
		return Call{Addr: nnn}, true

	case 0x3000:
		return SkipEqualImm{X: x, Value: nn}, true

	case 0x4000:
		return SkipNotEqualImm{X: x, Value: nn}, true

	case 0x5000:
		if n == 0x0 {
			return SkipEqualReg{X: x, Y: y}, true
		}

	case 0x6000:
		return LoadImm{X: x, Value: nn}, true

	case 0x7000:
		return AddImm{X: x, Value: nn}, true

	case 0x8000:
		switch n {
		case 0x0:
			return Move{X: x, Y: y}, true
		case 0x1:
			return Or{X: x, Y: y}, true
		case 0x2:
			return And{X: x, Y: y}, true
		case 0x3:
			return Xor{X: x, Y: y}, true
		case 0x4:
			return AddReg{X: x, Y: y}, true
		case 0x5:
			return Sub{X: x, Y: y}, true
		case 0x6:
			return ShiftRight{X: x, Y: y}, true
		case 0x7:
			return SubReverse{X: x, Y: y}, true
		case 0xE:
			return ShiftLeft{X: x, Y: y}, true
		}

	case 0x9000:
		if n == 0x0 {
			return SkipNotEqualReg{X: x, Y: y}, true
		}

	case 0xA000:
		return LoadIndex{Addr: nnn}, true

	case 0xB000:
		return JumpOffset{Addr: nnn}, true

	case 0xC000:
		return Random{X: x, Mask: nn}, true

	case 0xD000:
		return Draw{X: x, Y: y, Height: n}, true

	case 0xE000:
		switch nn {
		case 0x9E:
			return SkipKeyPressed{X: x}, true
		case 0xA1:
			return SkipKeyNotPressed{X: x}, true
		}

	case 0xF000:
		switch nn {
		case 0x07:
			return LoadDelay{X: x}, true
		case 0x0A:
			return WaitKey{X: x}, true
		case 0x15:
			return SetDelay{X: x}, true
		case 0x18:
			return SetSound{X: x}, true
		case 0x1E:
			return AddIndex{X: x}, true
		case 0x29:
			return LoadGlyph{X: x}, true
		case 0x33:
			return StoreBCD{X: x}, true
		case 0x55:
			return StoreRegisters{X: x}, true
		case 0x65:
			return LoadRegisters{X: x}, true
		}
	}

	return nil, false
}
