package vm

// Register selects one of V0-VF.
type Register uint8

// VF is the flag register written by arithmetic and sprite instructions.
const VF = Register(0x0F)

// State is the CPU register file.
type State struct {
	PC    Address // Program counter
	Index Address // Index register (I)
	V     [RegisterCount]uint8

	Stack [StackSize]Address
	SP    int // Number of entries on the stack

	Halted  bool // Set when the program jumped onto itself
	Waiting bool // Parked on a key wait
}

func (s *State) reset() {
	*s = State{PC: ProgramStart}
}

func (s *State) push(addr Address) error {
	if s.SP >= StackSize {
		return &StackError{Depth: s.SP, Err: ErrStackOverflow}
	}
	s.Stack[s.SP] = addr
	s.SP++
	return nil
}

func (s *State) pop() (Address, error) {
	if s.SP == 0 {
		return 0, &StackError{Depth: s.SP, Err: ErrStackUnderflow}
	}
	s.SP--
	addr := s.Stack[s.SP]
	s.Stack[s.SP] = 0
	return addr, nil
}

func (s *State) setFlag(set bool) {
	if set {
		s.V[VF] = 1
	} else {
		s.V[VF] = 0
	}
}
