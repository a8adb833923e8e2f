// Package headless runs the machine without a window for a fixed number of
// frames and prints the last frame as text.
package headless

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"

	"github.com/kapitanov/chip8emu/internal/vm"
)

type HAL struct {
	frames    int
	maxFrames int
	last      []uint8
}

var _ vm.HAL = (*HAL)(nil)

// New returns a HAL that quits after maxFrames draws.
func New(maxFrames int) (*HAL, error) {
	if maxFrames <= 0 {
		return nil, fmt.Errorf("invalid frame count %d", maxFrames)
	}

	return &HAL{
		maxFrames: maxFrames,
		last:      make([]uint8, vm.ScreenWidth*vm.ScreenHeight),
	}, nil
}

func (h *HAL) ReadInput(_ func(vm.Key), _ func(vm.Key)) error {
	if h.frames >= h.maxFrames {
		slog.Debug("headless: frame budget reached", "frames", h.frames)
		return vm.ErrQuit
	}
	return nil
}

func (h *HAL) Draw(gfx []uint8) error {
	copy(h.last, gfx)
	h.frames++
	return nil
}

func (h *HAL) WaitForNextFrame() error {
	return nil
}

func (h *HAL) Frames() int {
	return h.frames
}

// Dump writes the last frame, '#' for set pixels and '.' for unset ones.
func (h *HAL) Dump(w io.Writer) error {
	bw := bufio.NewWriter(w)

	for y := 0; y < vm.ScreenHeight; y++ {
		for x := 0; x < vm.ScreenWidth; x++ {
			c := byte('.')
			if h.last[y*vm.ScreenWidth+x] != 0 {
				c = '#'
			}
			_ = bw.WriteByte(c)
		}
		_ = bw.WriteByte('\n')
	}

	return bw.Flush()
}
