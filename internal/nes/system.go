// Package nes composes the CPU, PPU, APU, Bus, and cartridge into a
// runnable system and drives the per-frame cooperative stepping loop.
package nes

import (
	"io"

	"gones/internal/apu"
	"gones/internal/bus"
	"gones/internal/cartridge"
	"gones/internal/cpu"
	"gones/internal/input"
	"gones/internal/ppu"
)

// System owns every subsystem directly; devices never hold
// back-pointers to each other, only to the buffers/interfaces they
// were constructed with.
type System struct {
	CPU   *cpu.CPU
	PPU   *ppu.PPU
	APU   *apu.APU
	Bus   *bus.Bus
	Input *input.InputState

	cart *cartridge.Cartridge

	totalCPUCycles uint64
	dmaStallCycles int
	frameComplete  bool
}

// New creates a zeroed System with no cartridge attached.
func New() *System {
	s := &System{
		PPU:   ppu.New(),
		APU:   apu.New(),
		Input: input.NewInputState(),
	}
	s.Bus = bus.New(s.PPU, s.APU)
	s.Bus.SetInputSystem(s.Input)
	s.CPU = cpu.New(s.Bus)

	s.PPU.SetNMICallback(s.CPU.RequestNMI)
	s.PPU.SetFrameCompleteCallback(s.onFrameComplete)
	s.Bus.SetDMACallback(s.triggerOAMDMA)

	return s
}

// LoadROM parses an iNES image and attaches its cartridge to the Bus
// and PPU, then resets the system. On failure the System is left
// exactly as it was before the call.
func (s *System) LoadROM(r io.Reader) error {
	cart, err := cartridge.LoadFromReader(r)
	if err != nil {
		return err
	}
	s.cart = cart
	s.Bus.SetCartridge(cart)
	s.PPU.SetCartridge(cart)
	s.Reset()
	return nil
}

// Cartridge returns the currently loaded cartridge, or nil.
func (s *System) Cartridge() *cartridge.Cartridge {
	return s.cart
}

// Reset resets every subsystem and clears the framebuffer to black.
func (s *System) Reset() {
	s.CPU.Reset()
	s.PPU.Reset()
	s.APU.Reset()
	s.Bus.Reset()
	s.Input.Reset()

	s.totalCPUCycles = 0
	s.dmaStallCycles = 0
	s.frameComplete = false

	fb := s.PPU.FrameBuffer()
	for i := range fb {
		fb[i] = 0xFF000000
	}
}

// SetInput updates both controller ports' button snapshots.
func (s *System) SetInput(p1, p2 [8]bool) {
	s.Input.Controller1.SetButtons(p1)
	s.Input.Controller2.SetButtons(p2)
}

// FrameBuffer returns the 256x240 ARGB framebuffer, row-major.
func (s *System) FrameBuffer() []uint32 {
	return s.PPU.FrameBuffer()
}

// RunFrame steps the system until the PPU signals a completed frame.
func (s *System) RunFrame() {
	s.frameComplete = false
	for !s.frameComplete {
		s.step()
	}
}

func (s *System) onFrameComplete() {
	s.frameComplete = true
}

// step advances the system by one CPU instruction (or, during a DMA
// stall, by one stalled CPU cycle), ticking the PPU three times and
// the APU once per CPU cycle throughout.
func (s *System) step() {
	if s.dmaStallCycles > 0 {
		s.dmaStallCycles--
		s.tick()
		return
	}

	s.CPU.SetIRQLine(s.APU.IRQPending())
	cycles := s.CPU.Step()
	for i := uint64(0); i < cycles; i++ {
		s.tick()
	}
}

func (s *System) tick() {
	s.PPU.Step()
	s.PPU.Step()
	s.PPU.Step()
	s.APU.Step()
	s.totalCPUCycles++
}

// triggerOAMDMA performs the 256-byte copy from CPU page to OAM
// through the normal CPU read path (honoring mappers and MMIO), then
// schedules the CPU stall. 513 cycles if the CPU's cycle count was
// even at the time of the write, 514 if odd.
func (s *System) triggerOAMDMA(page uint8) {
	stall := 513
	if s.totalCPUCycles%2 != 0 {
		stall = 514
	}

	base := uint16(page) << 8
	for i := 0; i < 256; i++ {
		value := s.Bus.Read(base + uint16(i))
		s.PPU.WriteOAMByte(value)
	}

	s.dmaStallCycles += stall
}
