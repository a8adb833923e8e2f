package vm

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/retroenv/retrogolib/assert"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func program(words ...uint16) []byte {
	bs := make([]byte, 0, 2*len(words))
	for _, w := range words {
		bs = append(bs, byte(w>>8), byte(w))
	}
	return bs
}

func newTestVM(t *testing.T, words ...uint16) (*VM, *fakeClock) {
	t.Helper()

	clock := &fakeClock{now: time.Unix(0, 0)}
	machine, err := New(program(words...),
		WithClock(clock),
		WithRandom(bytes.NewReader(bytes.Repeat([]byte{0xFF}, 64))),
	)
	assert.NoError(t, err)
	return machine, clock
}

func step(t *testing.T, machine *VM, n int) {
	t.Helper()

	for i := 0; i < n; i++ {
		assert.NoError(t, machine.Step())
	}
}

func TestNewRejectsOversizedProgram(t *testing.T) {
	_, err := New(make([]byte, MaxProgramSize+1))
	assert.True(t, errors.Is(err, ErrProgramTooLarge))

	_, err = New(make([]byte, MaxProgramSize))
	assert.NoError(t, err)
}

func TestNewInitialState(t *testing.T) {
	machine, _ := newTestVM(t, 0x6005)

	s := machine.State()
	assert.Equal(t, ProgramStart, s.PC)
	assert.Equal(t, Address(0), s.Index)
	assert.Equal(t, 0, s.SP)
	assert.Equal(t, [RegisterCount]uint8{}, s.V)

	b, err := machine.memory.Read(0)
	assert.NoError(t, err)
	assert.Equal(t, uint8(0xF0), b)

	b, err = machine.memory.Read(ProgramStart)
	assert.NoError(t, err)
	assert.Equal(t, uint8(0x60), b)
}

func TestTwoCycleProgram(t *testing.T) {
	machine, _ := newTestVM(t, 0x6005, 0x7003)

	step(t, machine, 2)

	assert.Equal(t, uint8(8), machine.state.V[0])
	assert.Equal(t, Address(516), machine.state.PC)
}

func TestStepAfterHaltIsNoop(t *testing.T) {
	machine, _ := newTestVM(t, 0x1200)

	step(t, machine, 1)
	assert.True(t, machine.state.Halted)
	assert.Equal(t, ProgramStart, machine.state.PC)

	step(t, machine, 3)
	assert.Equal(t, ProgramStart, machine.state.PC)
}

func TestStepUnknownOpcodeFaults(t *testing.T) {
	machine, _ := newTestVM(t, 0x6001, 0x5121)

	step(t, machine, 1)
	err := machine.Step()
	assert.True(t, errors.Is(err, ErrUnknownOpcode))

	var fault *Fault
	assert.True(t, errors.As(err, &fault))
	assert.Equal(t, Address(0x202), fault.PC)
	assert.Equal(t, uint16(0x5121), fault.Opcode)
	assert.True(t, fault.Instr == nil)
}

func TestStepFetchPastMemoryEndFaults(t *testing.T) {
	machine, _ := newTestVM(t)
	machine.state.PC = MemorySize - 1

	err := machine.Step()
	assert.True(t, errors.Is(err, ErrOutOfBounds))

	var memErr *MemoryError
	assert.True(t, errors.As(err, &memErr))
	assert.Equal(t, "fetch", memErr.Op)
}

func TestResetRestoresProgram(t *testing.T) {
	machine, _ := newTestVM(t, 0x6005, 0xA300, 0xF055)

	step(t, machine, 3)
	assert.NoError(t, machine.Reset())

	s := machine.State()
	assert.Equal(t, ProgramStart, s.PC)
	assert.Equal(t, uint8(0), s.V[0])
	b, err := machine.memory.Read(0x300)
	assert.NoError(t, err)
	assert.Equal(t, uint8(0), b)
}

type fakeHAL struct {
	draws   int
	maxDraw int
	reads   int
	onRead  func(reads int, keyDown, keyUp func(Key))
	clock   *fakeClock
}

func (h *fakeHAL) ReadInput(keyDown func(Key), keyUp func(Key)) error {
	h.reads++
	if h.onRead != nil {
		h.onRead(h.reads, keyDown, keyUp)
	}
	if h.maxDraw > 0 && h.draws >= h.maxDraw {
		return ErrQuit
	}
	return nil
}

func (h *fakeHAL) Draw(gfx []uint8) error {
	h.draws++
	return nil
}

func (h *fakeHAL) WaitForNextFrame() error {
	h.clock.Advance(time.Millisecond)
	return nil
}

func TestRunDrawsOncePerTimerTick(t *testing.T) {
	// spin: jmp 0x202 / jmp 0x200
	machine, clock := newTestVM(t, 0x1202, 0x1200)
	hal := &fakeHAL{maxDraw: 3, clock: clock}

	err := machine.Run(context.Background(), hal)
	assert.True(t, errors.Is(err, ErrQuit))
	assert.Equal(t, 3, hal.draws)
	// 1 ms per instruction, a draw every 17 ms starting at 17 ms
	assert.Equal(t, 52, hal.reads)
}

func TestRunStopsOnCancel(t *testing.T) {
	machine, clock := newTestVM(t, 0x1202, 0x1200)

	ctx, cancel := context.WithCancel(context.Background())
	hal := &fakeHAL{clock: clock, onRead: func(reads int, _, _ func(Key)) {
		if reads == 10 {
			cancel()
		}
	}}

	err := machine.Run(ctx, hal)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 10, hal.reads)
}

func TestRunReturnsFault(t *testing.T) {
	machine, clock := newTestVM(t, 0x00EE)

	err := machine.Run(context.Background(), &fakeHAL{clock: clock})
	assert.True(t, errors.Is(err, ErrStackUnderflow))
}

func TestRunWaitKeyStaysCancelable(t *testing.T) {
	// key v3 / mov v4, 1
	machine, clock := newTestVM(t, 0xF30A, 0x6401)

	ctx, cancel := context.WithCancel(context.Background())
	hal := &fakeHAL{clock: clock, onRead: func(reads int, _, _ func(Key)) {
		if reads == 100 {
			cancel()
		}
	}}

	err := machine.Run(ctx, hal)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.True(t, machine.state.Waiting)
	assert.Equal(t, ProgramStart, machine.state.PC)
	assert.Equal(t, uint8(0), machine.state.V[4])
}

func TestRunWaitKeyResumesOnPress(t *testing.T) {
	// key v3 / mov v4, 1 / jmp 0x204
	machine, clock := newTestVM(t, 0xF30A, 0x6401, 0x1204)

	hal := &fakeHAL{clock: clock, maxDraw: 2, onRead: func(reads int, keyDown, keyUp func(Key)) {
		switch reads {
		case 5:
			keyDown(KeyB)
		case 6:
			keyUp(KeyB)
		}
	}}

	err := machine.Run(context.Background(), hal)
	assert.True(t, errors.Is(err, ErrQuit))
	assert.Equal(t, uint8(0x0B), machine.state.V[3])
	assert.Equal(t, uint8(1), machine.state.V[4])
	assert.True(t, machine.state.Halted)
	assert.False(t, machine.state.Waiting)
}

func TestFaultSticksUntilReset(t *testing.T) {
	machine, _ := newTestVM(t, 0x00EE)

	err := machine.Step()
	assert.True(t, errors.Is(err, ErrStackUnderflow))
	assert.Equal(t, "fault at 0x200 (opcode 0x00EE, rts): stack underflow (depth 0)", err.Error())
	assert.False(t, machine.state.Halted)

	again := machine.Step()
	assert.True(t, again == err)
	assert.True(t, machine.fault == err)
	assert.Equal(t, Address(0x200), machine.state.PC)

	assert.NoError(t, machine.Reset())
	assert.True(t, machine.fault == nil)
	err = machine.Step()
	assert.True(t, errors.Is(err, ErrStackUnderflow))
}

func TestDecodeFaultSticks(t *testing.T) {
	machine, _ := newTestVM(t, 0xFFFF)

	err := machine.Step()
	var fault *Fault
	assert.True(t, errors.As(err, &fault))
	assert.Equal(t, uint16(0xFFFF), fault.Opcode)
	assert.True(t, machine.Step() == err)
}
