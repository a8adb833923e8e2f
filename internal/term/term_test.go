//go:build !windows

package term

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kapitanov/chip8emu/internal/vm"
	"github.com/retroenv/retrogolib/assert"
)

type keyLog struct {
	down []vm.Key
	up   []vm.Key
}

func (k *keyLog) keyDown(key vm.Key) { k.down = append(k.down, key) }
func (k *keyLog) keyUp(key vm.Key)   { k.up = append(k.up, key) }

func newTestTerminal(input chan []byte) (*Terminal, *time.Time) {
	now := time.Unix(0, 0)
	cfg := DefaultConfig()
	t := newTerminal(cfg, &bytes.Buffer{}, input)
	t.now = func() time.Time { return now }
	return t, &now
}

func TestKeyMap(t *testing.T) {
	tests := []struct {
		in  byte
		key vm.Key
	}{
		{'1', vm.Key1},
		{'4', vm.KeyC},
		{'x', vm.Key0},
		{'X', vm.Key0},
		{'f', vm.KeyE},
		{'V', vm.KeyF},
	}

	for _, tt := range tests {
		key, ok := keyMap(tt.in)
		assert.True(t, ok)
		assert.Equal(t, tt.key, key)
	}

	for _, b := range []byte{'p', '5', 0x11, ' '} {
		_, ok := keyMap(b)
		assert.False(t, ok)
	}
}

func TestReadInputHoldsAndReleasesKeys(t *testing.T) {
	input := make(chan []byte, 4)
	term, now := newTestTerminal(input)
	var keys keyLog

	input <- []byte("qq")
	assert.NoError(t, term.ReadInput(keys.keyDown, keys.keyUp))
	assert.Equal(t, 1, len(keys.down))
	assert.Equal(t, vm.Key4, keys.down[0])
	assert.Equal(t, 0, len(keys.up))

	*now = now.Add(50 * time.Millisecond)
	input <- []byte("q")
	assert.NoError(t, term.ReadInput(keys.keyDown, keys.keyUp))
	assert.Equal(t, 1, len(keys.down))

	*now = now.Add(120 * time.Millisecond)
	assert.NoError(t, term.ReadInput(keys.keyDown, keys.keyUp))
	assert.Equal(t, 1, len(keys.up))
	assert.Equal(t, vm.Key4, keys.up[0])
}

func TestReadInputControlKeys(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		err   error
	}{
		{"ctrl-c", []byte{0x03}, vm.ErrQuit},
		{"escape", []byte{0x1b}, vm.ErrQuit},
		{"backspace", []byte{0x7f}, vm.ErrReboot},
		{"arrow key", []byte{0x1b, '[', 'A'}, nil},
		{"function key", []byte{0x1b, 'O', 'P'}, nil},
		{"page up", []byte{0x1b, '[', '5', '~'}, nil},
		{"unterminated sequence", []byte{0x1b, '[', '1', ';'}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := make(chan []byte, 1)
			term, _ := newTestTerminal(input)
			var keys keyLog

			input <- tt.input
			err := term.ReadInput(keys.keyDown, keys.keyUp)
			if tt.err == nil {
				assert.NoError(t, err)
				assert.Equal(t, 0, len(keys.down))
			} else {
				assert.True(t, errors.Is(err, tt.err))
			}
		})
	}
}

func TestReadInputKeysAfterEscapeSequence(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		down  []vm.Key
	}{
		{"arrow then key", []byte{0x1b, '[', 'A', 'q'}, []vm.Key{vm.Key4}},
		{"key around arrow", []byte{'1', 0x1b, '[', 'B', 'w'}, []vm.Key{vm.Key1, vm.Key5}},
		{"modified arrow then key", []byte{0x1b, '[', '1', ';', '5', 'C', 'e'}, []vm.Key{vm.Key6}},
		{"function key then key", []byte{0x1b, 'O', 'Q', 'a'}, []vm.Key{vm.Key7}},
		{"alt key then key", []byte{0x1b, 'x', 's'}, []vm.Key{vm.Key8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := make(chan []byte, 1)
			term, _ := newTestTerminal(input)
			var keys keyLog

			input <- tt.input
			assert.NoError(t, term.ReadInput(keys.keyDown, keys.keyUp))
			assert.Equal(t, len(tt.down), len(keys.down))
			for i, key := range tt.down {
				assert.Equal(t, key, keys.down[i])
			}
		})
	}
}

func TestReadInputClosedTTY(t *testing.T) {
	input := make(chan []byte)
	close(input)
	term, _ := newTestTerminal(input)
	var keys keyLog

	err := term.ReadInput(keys.keyDown, keys.keyUp)
	assert.True(t, errors.Is(err, vm.ErrQuit))
}

func TestRender(t *testing.T) {
	gfx := make([]uint8, vm.ScreenWidth*vm.ScreenHeight)
	gfx[0] = 1                // (0,0) top only
	gfx[vm.ScreenWidth+1] = 1 // (1,1) bottom only
	gfx[2] = 1                // (2,0) and (2,1) both
	gfx[vm.ScreenWidth+2] = 1

	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	render(w, gfx)
	assert.NoError(t, w.Flush())

	out := strings.TrimPrefix(buf.String(), "\x1b[H")
	lines := strings.Split(out, "\r\n")
	assert.Equal(t, vm.ScreenHeight/2+1, len(lines))
	assert.True(t, strings.HasPrefix(lines[0], "▀▄█ "))
	assert.Equal(t, strings.Repeat(" ", vm.ScreenWidth), lines[1])
}
