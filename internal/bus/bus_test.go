package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakePPU struct {
	reads  map[uint16]uint8
	writes map[uint16]uint8
}

func newFakePPU() *fakePPU {
	return &fakePPU{reads: map[uint16]uint8{}, writes: map[uint16]uint8{}}
}

func (p *fakePPU) ReadRegister(address uint16) uint8 { return p.reads[address] }
func (p *fakePPU) WriteRegister(address uint16, value uint8) {
	p.writes[address] = value
}

type fakeAPU struct {
	writes map[uint16]uint8
	status uint8
}

func newFakeAPU() *fakeAPU {
	return &fakeAPU{writes: map[uint16]uint8{}}
}

func (a *fakeAPU) WriteRegister(address uint16, value uint8) { a.writes[address] = value }
func (a *fakeAPU) ReadStatus() uint8                         { return a.status }

type fakeInput struct {
	lastWrite uint8
	readValue uint8
}

func (i *fakeInput) Read(address uint16, openBus uint8) uint8 { return i.readValue }
func (i *fakeInput) Write(address uint16, value uint8) {
	i.lastWrite = value
}

type fakeCart struct {
	prg    [0x10000]uint8
	writes map[uint16]uint8
}

func newFakeCart() *fakeCart {
	return &fakeCart{writes: map[uint16]uint8{}}
}

func (c *fakeCart) ReadPRG(address uint16) uint8 { return c.prg[address] }
func (c *fakeCart) WritePRG(address uint16, value uint8) {
	c.writes[address] = value
}

func newTestBus() (*Bus, *fakePPU, *fakeAPU, *fakeCart) {
	ppu := newFakePPU()
	apu := newFakeAPU()
	cart := newFakeCart()
	b := New(ppu, apu)
	b.SetCartridge(cart)
	return b, ppu, apu, cart
}

func TestRAMIsMirroredEveryTwoKB(t *testing.T) {
	b, _, _, _ := newTestBus()
	b.Write(0x0000, 0x42)
	assert.Equal(t, uint8(0x42), b.Read(0x0800))
	assert.Equal(t, uint8(0x42), b.Read(0x1000))
	assert.Equal(t, uint8(0x42), b.Read(0x1800))
}

func TestPPURegistersMirrorEveryEightBytes(t *testing.T) {
	b, ppu, _, _ := newTestBus()
	b.Write(0x2000, 0x11)
	b.Write(0x2008, 0x22)
	assert.Equal(t, uint8(0x22), ppu.writes[0x2000], "writes must collapse to the canonical $2000-$2007 register")
}

func TestCartridgeServesFullUpperRange(t *testing.T) {
	b, _, _, cart := newTestBus()
	cart.prg[0x4020] = 0xAB
	assert.Equal(t, uint8(0xAB), b.Read(0x4020), "$4020-$FFFF routes to the cartridge, not open bus")

	b.Write(0x6000, 0x77)
	assert.Equal(t, uint8(0x77), cart.writes[0x6000])
}

func TestDMATriggerInvokesCallback(t *testing.T) {
	b, _, _, _ := newTestBus()
	var seenPage uint8
	invoked := false
	b.SetDMACallback(func(page uint8) {
		invoked = true
		seenPage = page
	})

	b.Write(0x4014, 0x02)
	assert.True(t, invoked)
	assert.Equal(t, uint8(0x02), seenPage)
}

func TestControllerReadsAndWritesRouteToInput(t *testing.T) {
	b, _, _, _ := newTestBus()
	in := &fakeInput{readValue: 0x01}
	b.SetInputSystem(in)

	b.Write(0x4016, 0x01)
	assert.Equal(t, uint8(0x01), in.lastWrite)
	assert.Equal(t, uint8(0x01), b.Read(0x4016))
}

func TestOpenBusLatchPersistsLastDrivenValue(t *testing.T) {
	b, _, _, _ := newTestBus()
	b.Write(0x0000, 0x99)
	value := b.Read(0x4018) // $4018-$401F is open bus
	assert.Equal(t, uint8(0x99), value)
}
