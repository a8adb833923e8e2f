package vm

import (
	"fmt"
	"io"
	"log/slog"
)

// execute applies instr to the machine and commits the next program counter.
// On error the program counter is left on the faulting instruction.
func (vm *VM) execute(instr Instruction) error {
	s := &vm.state
	next := s.PC + InstructionSize

	switch in := instr.(type) {
	case SysCall:
		return fmt.Errorf("%w: machine code call to %s", ErrUnsupported, in.Addr)

	case ClearScreen:
		vm.display.Clear()

	case Return:
		addr, err := s.pop()
		if err != nil {
			return err
		}
		next = addr

	case Jump:
		if in.Addr == s.PC {
			s.Halted = true
			slog.Info("program halted", "pc", s.PC.String())
		}
		next = in.Addr

	case Call:
		if err := s.push(next); err != nil {
			return err
		}
		next = in.Addr

	case SkipEqualImm:
		if s.V[in.X] == in.Value {
			next += InstructionSize
		}

	case SkipNotEqualImm:
		if s.V[in.X] != in.Value {
			next += InstructionSize
		}

	case SkipEqualReg:
		if s.V[in.X] == s.V[in.Y] {
			next += InstructionSize
		}

	case LoadImm:
		s.V[in.X] = in.Value

	case AddImm:
		s.V[in.X] += in.Value

	case Move:
		s.V[in.X] = s.V[in.Y]

	case Or:
		s.V[in.X] |= s.V[in.Y]

	case And:
		s.V[in.X] &= s.V[in.Y]

	case Xor:
		s.V[in.X] ^= s.V[in.Y]

	case AddReg:
		sum := uint16(s.V[in.X]) + uint16(s.V[in.Y])
		s.V[in.X] = uint8(sum)
		s.setFlag(sum > 0xFF)

	case Sub:
		x, y := s.V[in.X], s.V[in.Y]
		s.V[in.X] = x - y
		s.setFlag(x >= y)

	case ShiftRight:
		x := s.V[in.X]
		s.V[in.X] = x >> 1
		s.V[VF] = x & 0x01

	case SubReverse:
		x, y := s.V[in.X], s.V[in.Y]
		s.V[in.X] = y - x
		s.setFlag(y >= x)

	case ShiftLeft:
		x := s.V[in.X]
		s.V[in.X] = x << 1
		s.V[VF] = x >> 7

	case SkipNotEqualReg:
		if s.V[in.X] != s.V[in.Y] {
			next += InstructionSize
		}

	case LoadIndex:
		s.Index = in.Addr

	case JumpOffset:
		next = in.Addr + Address(s.V[0])

	case Random:
		var b [1]byte
		if _, err := io.ReadFull(vm.rand, b[:]); err != nil {
			return fmt.Errorf("read random byte: %w", err)
		}
		s.V[in.X] = b[0] & in.Mask

	case Draw:
		if err := vm.drawSprite(in); err != nil {
			return err
		}

	case SkipKeyPressed:
		if vm.keypad.Pressed(Key(s.V[in.X])) {
			next += InstructionSize
		}

	case SkipKeyNotPressed:
		if !vm.keypad.Pressed(Key(s.V[in.X])) {
			next += InstructionSize
		}

	case LoadDelay:
		s.V[in.X] = vm.timers.Delay()

	case WaitKey:
		if !s.Waiting {
			vm.keypad.clearLatch()
			s.Waiting = true
			slog.Debug("waiting for key", "pc", s.PC.String())
		}

		key, ok := vm.keypad.takePress()
		if !ok {
			return nil
		}
		s.V[in.X] = uint8(key)
		s.Waiting = false

	case SetDelay:
		vm.timers.SetDelay(s.V[in.X])

	case SetSound:
		vm.timers.SetSound(s.V[in.X])

	case AddIndex:
		s.Index = (s.Index + Address(s.V[in.X])) & 0x0FFF

	case LoadGlyph:
		s.Index = GlyphAddress(s.V[in.X])

	case StoreBCD:
		x := s.V[in.X]
		digits := [3]uint8{x / 100, (x / 10) % 10, x % 10}
		for i, d := range digits {
			if err := vm.memory.Write(s.Index+Address(i), d); err != nil {
				return err
			}
		}

	case StoreRegisters:
		for i := 0; i <= int(in.X); i++ {
			if err := vm.memory.Write(s.Index+Address(i), s.V[i]); err != nil {
				return err
			}
		}

	case LoadRegisters:
		for i := 0; i <= int(in.X); i++ {
			b, err := vm.memory.Read(s.Index + Address(i))
			if err != nil {
				return err
			}
			s.V[i] = b
		}

	default:
		return fmt.Errorf("%w: %T", ErrUnsupported, instr)
	}

	s.PC = next
	return nil
}

// drawSprite XORs height rows of 8 pixels read from I onto the display at
// (VX, VY). Pixels past an edge wrap to the opposite edge. VF is set when any
// pixel goes from set to unset.
func (vm *VM) drawSprite(in Draw) error {
	s := &vm.state
	x0, y0 := int(s.V[in.X]), int(s.V[in.Y])

	collision := false
	for row := 0; row < int(in.Height); row++ {
		bits, err := vm.memory.Read(s.Index + Address(row))
		if err != nil {
			return err
		}

		const width = 8
		for col := 0; col < width; col++ {
			if bits&(0x80>>col) == 0 {
				continue
			}
			if vm.display.flip(x0+col, y0+row) {
				collision = true
			}
		}
	}

	s.setFlag(collision)
	return nil
}
