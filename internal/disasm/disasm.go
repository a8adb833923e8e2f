// Package disasm prints a listing of a program image.
package disasm

import (
	"bufio"
	"fmt"
	"io"

	"github.com/kapitanov/chip8emu/internal/vm"
)

// Write decodes program as if loaded at vm.ProgramStart and writes one line
// per instruction word: address, raw opcode and mnemonic. Words that do not
// decode are printed as "???".
func Write(w io.Writer, program []byte) error {
	if len(program) > vm.MaxProgramSize {
		return fmt.Errorf("%w: %d bytes", vm.ErrProgramTooLarge, len(program))
	}

	bw := bufio.NewWriter(w)
	addr := vm.ProgramStart

	for i := 0; i+1 < len(program); i += vm.InstructionSize {
		opcode := uint16(program[i])<<8 | uint16(program[i+1])

		text := "???"
		if instr, ok := vm.DecodeOpcode(opcode); ok {
			text = instr.String()
		}

		if _, err := fmt.Fprintf(bw, "%s  %04X  %s\n", addr, opcode, text); err != nil {
			return err
		}
		addr += vm.InstructionSize
	}

	if len(program)%2 != 0 {
		if _, err := fmt.Fprintf(bw, "%s  %02X    db 0x%02x\n", addr, program[len(program)-1], program[len(program)-1]); err != nil {
			return err
		}
	}

	return bw.Flush()
}
