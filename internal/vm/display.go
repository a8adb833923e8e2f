package vm

// Display is the 64x32 monochrome framebuffer. Each cell is 0 or 1.
type Display struct {
	gfx [ScreenWidth * ScreenHeight]uint8
}

func (d *Display) Clear() {
	for i := range d.gfx {
		d.gfx[i] = 0
	}
}

// Get reports whether the pixel at (x, y) is set. Coordinates wrap.
func (d *Display) Get(x, y int) bool {
	return d.gfx[screenAddr(x, y)] != 0
}

// Set sets or unsets the pixel at (x, y). Coordinates wrap.
func (d *Display) Set(x, y int, on bool) {
	if on {
		d.gfx[screenAddr(x, y)] = 1
	} else {
		d.gfx[screenAddr(x, y)] = 0
	}
}

// Pixels exposes the row-major buffer for renderers. It must not be modified.
func (d *Display) Pixels() []uint8 {
	return d.gfx[:]
}

// flip toggles the pixel at (x, y) and reports whether it went from set to
// unset.
func (d *Display) flip(x, y int) bool {
	i := screenAddr(x, y)
	wasSet := d.gfx[i] != 0
	d.gfx[i] ^= 1
	return wasSet
}

func screenAddr(x, y int) int {
	x %= ScreenWidth
	if x < 0 {
		x += ScreenWidth
	}
	y %= ScreenHeight
	if y < 0 {
		y += ScreenHeight
	}

	return ScreenWidth*y + x
}
