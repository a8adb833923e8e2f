package vm

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"time"
)

const (
	MemorySize    = 4096
	StackSize     = 16
	RegisterCount = 16
	ScreenWidth   = 64
	ScreenHeight  = 32
	KeyCount      = 16

	ProgramStart    = Address(0x200)
	MaxProgramSize  = MemorySize - int(ProgramStart)
	InstructionSize = 2
)

type VM struct {
	state   State
	memory  Memory
	display Display
	timers  Timers
	keypad  Keypad

	clock Clock
	rand  io.Reader

	program []byte
	fault   *Fault
}

type Option func(*VM)

// WithClock replaces the wall clock driving the timers.
func WithClock(c Clock) Option {
	return func(vm *VM) {
		vm.clock = c
	}
}

// WithRandom sets the byte stream used by the rand instruction.
func WithRandom(r io.Reader) Option {
	return func(vm *VM) {
		vm.rand = r
	}
}

// WithSeed seeds the default random source.
func WithSeed(seed uint64) Option {
	return func(vm *VM) {
		vm.rand = newRandom(seed)
	}
}

// New creates a machine with program loaded at ProgramStart, ready to Step.
func New(program []byte, opts ...Option) (*VM, error) {
	if len(program) > MaxProgramSize {
		return nil, fmt.Errorf("%w: %d bytes, at most %d fit", ErrProgramTooLarge, len(program), MaxProgramSize)
	}

	vm := &VM{
		clock:   systemClock{},
		program: program,
	}
	for _, opt := range opts {
		opt(vm)
	}
	if vm.rand == nil {
		vm.rand = newRandom(uint64(time.Now().UnixNano()))
	}

	if err := vm.Reset(); err != nil {
		return nil, err
	}

	return vm, nil
}

func newRandom(seed uint64) io.Reader {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:], seed)
	return rand.NewChaCha8(key)
}

// HAL is the host side of the machine: input, rendering and pacing.
type HAL interface {
	ReadInput(keyDown func(Key), keyUp func(Key)) error
	Draw(gfx []uint8) error
	WaitForNextFrame() error
}

// Run resets the machine and executes it until ctx is done, the HAL returns an
// error or a fault occurs.
func (vm *VM) Run(ctx context.Context, hal HAL) error {
	if err := vm.Reset(); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := vm.runStep(hal); err != nil {
			return err
		}
	}
}

func (vm *VM) runStep(hal HAL) error {
	ticked := vm.timers.Tick(vm.clock.Now())

	if err := vm.Step(); err != nil {
		return err
	}

	if ticked {
		if err := hal.Draw(vm.display.Pixels()); err != nil {
			return err
		}
	}

	if err := hal.ReadInput(vm.keypad.Press, vm.keypad.Release); err != nil {
		return err
	}

	if err := hal.WaitForNextFrame(); err != nil {
		return err
	}

	return nil
}

// Step decodes and executes one instruction. It does nothing once the
// program has halted. After a fault every call returns that same fault until
// Reset.
func (vm *VM) Step() error {
	if vm.fault != nil {
		return vm.fault
	}
	if vm.state.Halted {
		return nil
	}

	pc := vm.state.PC
	instr, opcode, err := Decode(pc, &vm.memory)
	if err != nil {
		var fault *Fault
		if !errors.As(err, &fault) {
			fault = &Fault{PC: pc, Err: err}
		}
		return vm.fail(fault)
	}

	if !vm.state.Waiting && slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		slog.Debug(
			"exec",
			"pc", pc.String(),
			"opcode", fmt.Sprintf("0x%04x", opcode),
			"instr", instr.String(),
		)
	}

	if err := vm.execute(instr); err != nil {
		return vm.fail(&Fault{PC: pc, Opcode: opcode, Instr: instr, Err: err})
	}

	return nil
}

func (vm *VM) fail(fault *Fault) error {
	vm.fault = fault
	slog.Debug("machine faulted", "err", fault)
	return fault
}

// Reset reinstalls the font and the program and zeroes every register,
// timer, key and pixel.
func (vm *VM) Reset() error {
	vm.fault = nil
	vm.state.reset()
	vm.keypad.reset()
	vm.display.Clear()
	vm.timers.reset(vm.clock.Now())

	slog.Debug("clear memory", "n", MemorySize)
	vm.memory.clear()

	slog.Debug("load font", "at", Address(0).String(), "n", len(chip8Font))
	if err := vm.memory.Load(0, chip8Font); err != nil {
		return fmt.Errorf("unable to load font: %w", err)
	}

	slog.Info("load program", "at", ProgramStart.String(), "n", len(vm.program))
	if err := vm.memory.Load(ProgramStart, vm.program); err != nil {
		return fmt.Errorf("unable to load program: %w", err)
	}

	return nil
}

// State returns a copy of the register file.
func (vm *VM) State() State {
	return vm.state
}

// Timers returns the delay and sound counters.
func (vm *VM) Timers() *Timers {
	return &vm.timers
}
