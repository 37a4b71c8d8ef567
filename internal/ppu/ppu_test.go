package ppu

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"

	"gones/internal/cartridge"
)

// loopyState snapshots the scroll registers for the round-trip test
// below, so a mismatch dumps the full before/after state instead of a
// single failing field.
type loopyState struct {
	V, T uint16
	X    uint8
	W    bool
}

// fakeCartridge is a minimal CartridgeInterface stub backed by plain
// CHR RAM, with no mapper-driven mirroring changes.
type fakeCartridge struct {
	chr    [0x2000]uint8
	mirror cartridge.MirrorMode
}

func newFakeCartridge(mirror cartridge.MirrorMode) *fakeCartridge {
	return &fakeCartridge{mirror: mirror}
}

func (f *fakeCartridge) ReadCHR(address uint16) uint8 { return f.chr[address&0x1FFF] }

func (f *fakeCartridge) WriteCHR(address uint16, value uint8) {
	f.chr[address&0x1FFF] = value
}

func (f *fakeCartridge) GetMirrorMode() cartridge.MirrorMode { return f.mirror }

func newTestPPU() *PPU {
	p := New()
	p.SetCartridge(newFakeCartridge(cartridge.MirrorHorizontal))
	p.Reset()
	return p
}

func TestStatusReadClearsVBlankAndWriteToggle(t *testing.T) {
	p := newTestPPU()
	p.status |= statusVBlank
	p.w = true

	value := p.ReadRegister(0x2002)
	assert.NotEqual(t, uint8(0), value&statusVBlank)
	assert.Equal(t, uint8(0), p.status&statusVBlank)
	assert.False(t, p.w)
}

func TestScrollWriteSequenceLoadsTAndFineX(t *testing.T) {
	p := newTestPPU()
	p.WriteRegister(0x2005, 0x7D) // coarse X=15, fine X=5
	assert.True(t, p.w)
	assert.Equal(t, uint8(0x05), p.x)

	p.WriteRegister(0x2005, 0x5E) // coarse Y=11, fine Y=6
	assert.False(t, p.w)
	assert.Equal(t, uint16(0x6), (p.t>>12)&0x7)
}

func TestAddressWriteSequenceLoadsVFromT(t *testing.T) {
	p := newTestPPU()
	p.WriteRegister(0x2006, 0x3F)
	p.WriteRegister(0x2006, 0x00)
	assert.Equal(t, uint16(0x3F00), p.v)
}

func TestVRAMReadIsBufferedExceptForPalette(t *testing.T) {
	p := newTestPPU()
	p.vram[0x000] = 0xAB
	p.WriteRegister(0x2006, 0x20)
	p.WriteRegister(0x2006, 0x00)

	first := p.ReadRegister(0x2007)
	assert.NotEqual(t, uint8(0xAB), first, "first post-seek read must return the stale buffer, not fresh data")

	second := p.ReadRegister(0x2007)
	assert.Equal(t, uint8(0xAB), second)

	p.WriteRegister(0x2006, 0x3F)
	p.WriteRegister(0x2006, 0x00)
	p.WriteRegister(0x2007, 0x21)
	p.WriteRegister(0x2006, 0x3F)
	p.WriteRegister(0x2006, 0x00)
	assert.Equal(t, uint8(0x21), p.ReadRegister(0x2007), "palette reads bypass the buffer")
}

func TestPaletteMirroring(t *testing.T) {
	p := newTestPPU()
	p.WriteRegister(0x2006, 0x3F)
	p.WriteRegister(0x2006, 0x00)
	p.WriteRegister(0x2007, 0x0F)

	assert.Equal(t, uint8(0x0F), p.paletteRAM[paletteMirror(0x3F10)])
}

func TestVBlankSetsStatusAndFiresNMI(t *testing.T) {
	p := newTestPPU()
	fired := false
	p.SetNMICallback(func() { fired = true })
	p.ctrl = ctrlNMIEnable
	p.scanline = 241
	p.cycle = 1

	p.Step()

	assert.NotEqual(t, uint8(0), p.status&statusVBlank)
	assert.True(t, fired)
}

func TestPreRenderClearsStatusFlags(t *testing.T) {
	p := newTestPPU()
	p.status = statusVBlank | statusSprite0 | statusOverflow
	p.scanline = -1
	p.cycle = 1

	p.Step()

	assert.Equal(t, uint8(0), p.status)
}

func TestFrameCompleteCallbackFiresOncePerFrame(t *testing.T) {
	p := newTestPPU()
	completions := 0
	p.SetFrameCompleteCallback(func() { completions++ })

	p.scanline = 260
	p.cycle = 340

	p.Step()

	assert.Equal(t, 1, completions)
	assert.Equal(t, -1, p.scanline)
}

func TestLoopyRegisterRoundTripThroughScrollAndAddressWrites(t *testing.T) {
	p := newTestPPU()

	p.WriteRegister(0x2005, 0x7D) // scroll write 1: coarse X=15, fine X=5
	p.WriteRegister(0x2005, 0x5E) // scroll write 2: coarse Y=11, fine Y=6
	// $2006/$2006 reloads v from t; the first $2006 write clears bit 14
	// of t (the top fine-Y bit), so both end up as t without that bit.
	want := loopyState{V: p.t &^ 0x4000, T: p.t &^ 0x4000, X: p.x, W: p.w}

	hi := uint8(p.t >> 8)
	lo := uint8(p.t)
	p.WriteRegister(0x2006, hi)
	p.WriteRegister(0x2006, lo)
	got := loopyState{V: p.v, T: p.t, X: p.x, W: p.w}

	if spew.Sdump(got) != spew.Sdump(want) {
		t.Fatalf("loopy registers diverged across the address-port round trip:\ngot:  %s\nwant: %s", spew.Sdump(got), spew.Sdump(want))
	}
}

func TestOAMDMAWriteAdvancesAddress(t *testing.T) {
	p := newTestPPU()
	p.oamAddr = 0
	for i := 0; i < 256; i++ {
		p.WriteOAMByte(uint8(i))
	}
	assert.Equal(t, uint8(0), p.oamAddr, "256 writes wrap OAMADDR back to 0")
	assert.Equal(t, uint8(10), p.oam[10])
}
