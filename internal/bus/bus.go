// Package bus implements the NES CPU address map: internal RAM, PPU
// and APU register mirroring, controller ports, OAM DMA triggering,
// and the open-bus latch for unmapped reads.
package bus

// PPUInterface is the register surface the Bus routes $2000-$3FFF to.
type PPUInterface interface {
	ReadRegister(address uint16) uint8
	WriteRegister(address uint16, value uint8)
}

// APUInterface is the register surface the Bus routes $4000-$4013,
// $4015, and $4017 writes/$4015 reads to.
type APUInterface interface {
	WriteRegister(address uint16, value uint8)
	ReadStatus() uint8
}

// InputInterface is the controller-port surface the Bus routes $4016
// writes and $4016/$4017 reads to. Read receives the bus's open-bus
// latch so the controller can blend its driven bit into the
// undriven upper bits, matching real hardware.
type InputInterface interface {
	Read(address uint16, openBus uint8) uint8
	Write(address uint16, value uint8)
}

// CartridgeInterface is the PRG surface the Bus routes $4020-$FFFF to.
type CartridgeInterface interface {
	ReadPRG(address uint16) uint8
	WritePRG(address uint16, value uint8)
}

// Bus is the sole mutator of CPU RAM, the open-bus latch, and DMA
// triggering, per the single-writer-per-resource design of this core.
type Bus struct {
	ram [0x800]uint8

	ppu   PPUInterface
	apu   APUInterface
	input InputInterface
	cart  CartridgeInterface

	dmaCallback func(uint8)

	openBus uint8
}

// New creates a Bus wired to a PPU and APU; the cartridge and input
// system are attached separately once available.
func New(ppu PPUInterface, apu APUInterface) *Bus {
	return &Bus{ppu: ppu, apu: apu}
}

// SetCartridge attaches the cartridge whose mapper serves $4020-$FFFF.
func (b *Bus) SetCartridge(cart CartridgeInterface) {
	b.cart = cart
}

// SetInputSystem attaches the controller ports serving $4016/$4017.
func (b *Bus) SetInputSystem(input InputInterface) {
	b.input = input
}

// SetDMACallback registers the function invoked on a $4014 write; the
// callback is expected to perform the 256-byte OAM copy and account
// for the CPU stall cycles.
func (b *Bus) SetDMACallback(callback func(uint8)) {
	b.dmaCallback = callback
}

// Reset clears RAM and the open-bus latch.
func (b *Bus) Reset() {
	b.ram = [0x800]uint8{}
	b.openBus = 0
}

// Read reads a byte from the full $0000-$FFFF CPU address space.
func (b *Bus) Read(address uint16) uint8 {
	var value uint8
	switch {
	case address < 0x2000:
		value = b.ram[address&0x07FF]
	case address < 0x4000:
		value = b.ppu.ReadRegister(0x2000 | (address & 0x0007))
	case address == 0x4015:
		value = b.apu.ReadStatus()
	case address == 0x4016 || address == 0x4017:
		if b.input != nil {
			value = b.input.Read(address, b.openBus)
		} else {
			value = b.openBus
		}
	case address < 0x4020:
		value = b.openBus
	case b.cart != nil:
		value = b.cart.ReadPRG(address)
	default:
		value = b.openBus
	}
	b.openBus = value
	return value
}

// Write writes a byte to the full $0000-$FFFF CPU address space.
func (b *Bus) Write(address uint16, value uint8) {
	b.openBus = value
	switch {
	case address < 0x2000:
		b.ram[address&0x07FF] = value
	case address < 0x4000:
		b.ppu.WriteRegister(0x2000|(address&0x0007), value)
	case address == 0x4014:
		if b.dmaCallback != nil {
			b.dmaCallback(value)
		}
	case address == 0x4016:
		if b.input != nil {
			b.input.Write(address, value)
		}
	case address >= 0x4000 && address <= 0x4013, address == 0x4015, address == 0x4017:
		b.apu.WriteRegister(address, value)
	case address < 0x4020:
		// $4018-$401F: open bus, writes dropped.
	case b.cart != nil:
		b.cart.WritePRG(address, value)
	}
}

// OpenBus returns the last driven bus value, for devices that need to
// fill unmapped bit ranges with bus noise.
func (b *Bus) OpenBus() uint8 {
	return b.openBus
}
