package console

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Buttons, as bits:
// 0 - A
// 1 - B
// 2 - Select
// 3 - Start
// 4 - Up
// 5 - Down
// 6 - Left
// 7 - Right
var player1Keys []ebiten.Key = []ebiten.Key{
	ebiten.KeyZ,     // A
	ebiten.KeyX,     // B
	ebiten.KeyS,     // Select
	ebiten.KeyEnter, // Start
	ebiten.KeyUp,    // Up
	ebiten.KeyDown,  // Down
	ebiten.KeyLeft,  // Left
	ebiten.KeyRight, // Right
}

// controller models a single NES controller's shift-register
// behavior at $4016/$4017: holding strobe high continuously latches
// the live button state, and each read after strobe drops shifts out
// one more bit. The index saturates at 7 once all 8 bits have been
// read, so further reads keep returning the live value of bit 7
// (Right) rather than a fixed constant.
// A controller with a nil key table (port 2) is present but inert.
type controller struct {
	strobe  bool
	buttons uint8
	idx     uint8
	keys    []ebiten.Key
}

func newController(keys []ebiten.Key) *controller {
	return &controller{keys: keys}
}

func (c *controller) write(val uint8) {
	switch val & 0x01 {
	case 0:
		c.strobe = false
		c.buttons = 0
		c.poll()
		c.idx = 0

	case 1:
		c.strobe = true
		c.idx = 0
	}
}

func (c *controller) read() uint8 {
	if c.strobe {
		return c.buttons & 1
	}
	ret := (c.buttons >> c.idx) & 1
	if c.idx < 7 {
		c.idx++
	}
	return ret
}

func (c *controller) poll() {
	for i, key := range c.keys {
		var pressed uint8
		if ebiten.IsKeyPressed(key) {
			pressed = 1
		}
		c.buttons = (c.buttons &^ (1 << i)) | (pressed << i)
	}
}
