//go:build !windows

// Package term runs the machine inside a text terminal. The tty is switched
// to raw mode for input and the display is drawn with half-block characters,
// two pixel rows per text row.
package term

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/kapitanov/chip8emu/internal/vm"
	rawterm "github.com/pkg/term"
	"golang.org/x/sys/unix"
)

type Config struct {
	// Device is the tty read for key presses.
	Device string
	Output *os.File
	// KeyHold is how long a key counts as pressed after its last byte
	// arrived. Terminals do not report key releases.
	KeyHold          time.Duration
	InstructionDelay time.Duration
}

func DefaultConfig() Config {
	return Config{
		Device:           "/dev/tty",
		Output:           os.Stdout,
		KeyHold:          100 * time.Millisecond,
		InstructionDelay: 1200 * time.Microsecond,
	}
}

type Terminal struct {
	tty    *rawterm.Term
	output *os.File
	out    *bufio.Writer
	input  <-chan []byte

	held    [vm.KeyCount]time.Time
	keyHold time.Duration
	delay   time.Duration
	now     func() time.Time
}

var _ vm.HAL = (*Terminal)(nil)

func New(cfg Config) (*Terminal, error) {
	tty, err := rawterm.Open(cfg.Device, rawterm.RawMode)
	if err != nil {
		return nil, fmt.Errorf("failed to open terminal %q: %w", cfg.Device, err)
	}
	slog.Debug("term: raw mode", "device", cfg.Device)

	checkGeometry(cfg.Output)

	input := make(chan []byte, 16)
	go readInput(tty, input)

	t := newTerminal(cfg, cfg.Output, input)
	t.tty = tty
	t.output = cfg.Output

	// clear screen, hide cursor
	_, _ = t.out.WriteString("\x1b[2J\x1b[?25l")

	return t, nil
}

func newTerminal(cfg Config, w io.Writer, input <-chan []byte) *Terminal {
	return &Terminal{
		out:     bufio.NewWriter(w),
		input:   input,
		keyHold: cfg.KeyHold,
		delay:   cfg.InstructionDelay,
		now:     time.Now,
	}
}

func readInput(tty *rawterm.Term, input chan<- []byte) {
	defer close(input)

	for {
		buf := make([]byte, 32)
		n, err := tty.Read(buf)
		if err != nil {
			slog.Debug("term: input closed", "err", err)
			return
		}
		if n > 0 {
			input <- buf[:n]
		}
	}
}

func checkGeometry(f *os.File) {
	ws, err := unix.IoctlGetWinsize(int(f.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		slog.Debug("term: unable to read terminal size", "err", err)
		return
	}

	if int(ws.Col) < vm.ScreenWidth || int(ws.Row) < vm.ScreenHeight/2 {
		slog.Warn("term: terminal too small",
			"cols", ws.Col,
			"rows", ws.Row,
			"want", fmt.Sprintf("%dx%d", vm.ScreenWidth, vm.ScreenHeight/2),
		)
	}
}

func (t *Terminal) Shutdown() {
	if _, err := t.out.WriteString("\x1b[?25h\x1b[0m\r\n"); err != nil {
		slog.Error("failed to reset terminal", "err", err)
	}
	if err := t.out.Flush(); err != nil {
		slog.Error("failed to flush terminal", "err", err)
	}

	if err := t.tty.Restore(); err != nil {
		slog.Error("failed to restore terminal mode", "err", err)
	}
	if err := t.tty.Close(); err != nil {
		slog.Error("failed to close terminal", "err", err)
	}
}

func (t *Terminal) ReadInput(keyDown func(vm.Key), keyUp func(vm.Key)) error {
	for {
		select {
		case chunk, ok := <-t.input:
			if !ok {
				return vm.ErrQuit
			}
			if err := t.processInput(chunk, keyDown); err != nil {
				return err
			}

		default:
			t.releaseKeys(keyUp)
			return nil
		}
	}
}

func (t *Terminal) processInput(chunk []byte, keyDown func(vm.Key)) error {
	now := t.now()

	for i := 0; i < len(chunk); i++ {
		b := chunk[i]

		switch b {
		case 0x03: // ctrl-c
			slog.Debug("term: exit requested")
			return vm.ErrQuit

		case 0x1b:
			if i+1 < len(chunk) {
				// escape sequence (arrows, function keys), ignored
				i = skipEscape(chunk, i)
				continue
			}
			slog.Debug("term: exit requested")
			return vm.ErrQuit

		case 0x7f, 0x08:
			slog.Debug("term: reboot requested")
			return vm.ErrReboot
		}

		key, ok := keyMap(b)
		if !ok {
			continue
		}
		if t.held[key].IsZero() {
			keyDown(key)
		}
		t.held[key] = now.Add(t.keyHold)
	}

	return nil
}

// skipEscape returns the index of the last byte of the escape sequence
// starting at chunk[i].
func skipEscape(chunk []byte, i int) int {
	i++
	switch chunk[i] {
	case '[':
		// CSI: parameter bytes up to a final byte in 0x40-0x7e
		for i++; i < len(chunk); i++ {
			if chunk[i] >= 0x40 && chunk[i] <= 0x7e {
				return i
			}
		}
		return len(chunk) - 1

	case 'O':
		// SS3: one more byte (F1-F4 on most terminals)
		if i+1 < len(chunk) {
			return i + 1
		}
		return i

	default:
		// alt+key
		return i
	}
}

func (t *Terminal) releaseKeys(keyUp func(vm.Key)) {
	now := t.now()

	for i, deadline := range t.held {
		if deadline.IsZero() || now.Before(deadline) {
			continue
		}
		t.held[i] = time.Time{}
		keyUp(vm.Key(i))
	}
}

func (t *Terminal) Draw(gfx []uint8) error {
	render(t.out, gfx)
	if err := t.out.Flush(); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	return nil
}

func (t *Terminal) WaitForNextFrame() error {
	if t.delay > 0 {
		time.Sleep(t.delay)
	}
	return nil
}

// render writes the frame from the top-left corner of the terminal.
func render(w *bufio.Writer, gfx []uint8) {
	_, _ = w.WriteString("\x1b[H")

	for y := 0; y < vm.ScreenHeight; y += 2 {
		for x := 0; x < vm.ScreenWidth; x++ {
			top := gfx[y*vm.ScreenWidth+x] != 0
			bottom := gfx[(y+1)*vm.ScreenWidth+x] != 0

			switch {
			case top && bottom:
				_, _ = w.WriteString("█")
			case top:
				_, _ = w.WriteString("▀")
			case bottom:
				_, _ = w.WriteString("▄")
			default:
				_ = w.WriteByte(' ')
			}
		}
		_, _ = w.WriteString("\r\n")
	}
}

func keyMap(b byte) (vm.Key, bool) {
	// Physical                Logical
	// ================        =================
	// | 1 | 2 | 3 | 4 |       | 1 | 2 | 3 | C |
	// | q | w | e | r |       | 4 | 5 | 6 | D |
	// | a | s | d | f |  <=>  | 7 | 8 | 9 | E |
	// | z | x | c | v |       | A | 0 | B | F |
	// ================        =================

	if b >= 'A' && b <= 'Z' {
		b += 'a' - 'A'
	}

	switch b {
	case 'x':
		return vm.Key0, true
	case '1':
		return vm.Key1, true
	case '2':
		return vm.Key2, true
	case '3':
		return vm.Key3, true
	case 'q':
		return vm.Key4, true
	case 'w':
		return vm.Key5, true
	case 'e':
		return vm.Key6, true
	case 'a':
		return vm.Key7, true
	case 's':
		return vm.Key8, true
	case 'd':
		return vm.Key9, true
	case 'z':
		return vm.KeyA, true
	case 'c':
		return vm.KeyB, true
	case '4':
		return vm.KeyC, true
	case 'r':
		return vm.KeyD, true
	case 'f':
		return vm.KeyE, true
	case 'v':
		return vm.KeyF, true
	default:
		return 0, false
	}
}
