// Package input implements the NES controller shift-register protocol.
package input

// Button identifies a single controller button by its bit position in
// the 8-bit shift register (A, B, Select, Start, Up, Down, Left, Right).
type Button uint8

const (
	ButtonA Button = 1 << iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

// Controller models one $4016/$4017 port: an 8-bit parallel-load shift
// register plus the strobe latch that continuously reloads it.
type Controller struct {
	buttons       uint8
	shiftRegister uint8
	strobe        bool
}

// New creates a controller with no buttons pressed.
func New() *Controller {
	return &Controller{}
}

// SetButton sets or clears a single button.
func (c *Controller) SetButton(button Button, pressed bool) {
	if pressed {
		c.buttons |= uint8(button)
	} else {
		c.buttons &^= uint8(button)
	}
}

// SetButtons replaces all eight button states at once, in
// A, B, Select, Start, Up, Down, Left, Right order.
func (c *Controller) SetButtons(buttons [8]bool) {
	c.buttons = 0
	for i, pressed := range buttons {
		if pressed {
			c.buttons |= 1 << uint(i)
		}
	}
}

// IsPressed reports whether button is currently held.
func (c *Controller) IsPressed(button Button) bool {
	return c.buttons&uint8(button) != 0
}

// Write handles a write to this controller's strobe line. While strobe
// is held high the shift register continuously reloads from the live
// button state; the register is captured and frozen on the falling
// edge so Read can shift it out one bit per call.
func (c *Controller) Write(value uint8) {
	if c.strobe || value&1 != 0 {
		c.shiftRegister = c.buttons
	}
	c.strobe = value&1 != 0
}

// Read shifts out the next bit. With strobe held high, bit 0 (button A)
// is returned on every read instead of advancing. Once eight bits have
// been shifted out, further reads return 1 (the register fills with
// ones from the top, matching real hardware).
func (c *Controller) Read() uint8 {
	if c.strobe {
		c.shiftRegister = c.buttons
		return c.shiftRegister & 1
	}
	bit := c.shiftRegister & 1
	c.shiftRegister = c.shiftRegister>>1 | 0x80
	return bit
}

// Reset clears all button and shift-register state.
func (c *Controller) Reset() {
	c.buttons = 0
	c.shiftRegister = 0
	c.strobe = false
}

// InputState owns both controller ports and routes $4016/$4017
// reads and writes to them.
type InputState struct {
	Controller1 *Controller
	Controller2 *Controller
}

// NewInputState creates an InputState with two fresh controllers.
func NewInputState() *InputState {
	return &InputState{
		Controller1: New(),
		Controller2: New(),
	}
}

// Reset resets both controllers.
func (is *InputState) Reset() {
	is.Controller1.Reset()
	is.Controller2.Reset()
}

// Read handles a CPU read of $4016 or $4017. Only bit 0 is driven by
// the shift register; the remaining seven bits come from whatever the
// bus last drove (open bus), matching real hardware.
func (is *InputState) Read(address uint16, openBus uint8) uint8 {
	switch address {
	case 0x4016:
		return (openBus &^ 0x01) | is.Controller1.Read()
	case 0x4017:
		return (openBus &^ 0x01) | is.Controller2.Read()
	default:
		return openBus
	}
}

// Write handles a CPU write to $4016. Both controllers share the same
// strobe line and latch together.
func (is *InputState) Write(address uint16, value uint8) {
	if address == 0x4016 {
		is.Controller1.Write(value)
		is.Controller2.Write(value)
	}
}
