// Package ppu implements the 2C02 picture processing unit: background
// and sprite rendering, the loopy v/t/x/w scroll registers, and the
// $2000-$2007 register interface as seen from the CPU bus.
package ppu

import "gones/internal/cartridge"

const (
	statusVBlank   = 0x80
	statusSprite0  = 0x40
	statusOverflow = 0x20

	ctrlNMIEnable   = 0x80
	ctrlSpriteSize  = 0x20 // unused: this core renders 8x8 sprites only
	ctrlBGTable     = 0x10
	ctrlSpriteTable = 0x08
	ctrlIncrement32 = 0x04

	maskShowBGLeft  = 0x02
	maskShowSprLeft = 0x04
	maskShowBG      = 0x08
	maskShowSprites = 0x10
)

// CartridgeInterface is the subset of Cartridge the PPU needs: CHR
// access routed through the mapper, and the board's nametable wiring.
type CartridgeInterface interface {
	ReadCHR(address uint16) uint8
	WriteCHR(address uint16, value uint8)
	GetMirrorMode() cartridge.MirrorMode
}

// sprite holds one scanline's worth of evaluated sprite state: pattern
// bits already shifted into MSB-first order, ready for per-pixel scan.
type sprite struct {
	patternLo uint8
	patternHi uint8
	x         uint8
	palette   uint8
	priority  bool // true = behind background
	isZero    bool
}

// PPU is a 2C02. Step advances it by exactly one PPU dot (1/3 of a CPU
// cycle).
type PPU struct {
	ctrl   uint8
	mask   uint8
	status uint8

	oamAddr uint8
	oam     [256]uint8

	sprites     [8]sprite
	spriteCount int

	v, t uint16 // loopy scroll registers, 15 bits used
	x    uint8  // fine X scroll, 3 bits
	w    bool   // first/second write toggle

	vram       [0x800]uint8
	paletteRAM [32]uint8
	readBuffer uint8
	openBus    uint8

	ntByte  uint8
	atByte  uint8
	patLo   uint8
	patHi   uint8
	bgPatLo uint16
	bgPatHi uint16
	bgAtLo  uint16
	bgAtHi  uint16

	scanline int // -1..260
	cycle    int // 0..340
	frame    uint64
	oddFrame bool

	frameBuffer [256 * 240]uint32

	cartridge CartridgeInterface

	nmiCallback           func()
	frameCompleteCallback func()
}

// New creates a PPU with everything zeroed; call Reset for power-on
// state and SetCartridge before the first Step.
func New() *PPU {
	p := &PPU{}
	p.scanline = -1
	return p
}

// SetCartridge wires the cartridge/mapper this PPU fetches CHR data
// and mirroring configuration from.
func (p *PPU) SetCartridge(cart CartridgeInterface) {
	p.cartridge = cart
}

// SetNMICallback registers the function called exactly once per frame
// when vblank begins with NMI generation enabled in CTRL.
func (p *PPU) SetNMICallback(fn func()) {
	p.nmiCallback = fn
}

// SetFrameCompleteCallback registers the function called once a full
// frame has elapsed: when scanline 260 ends and the PPU wraps to the
// pre-render scanline (-1).
func (p *PPU) SetFrameCompleteCallback(fn func()) {
	p.frameCompleteCallback = fn
}

// Reset restores power-on-like register state.
func (p *PPU) Reset() {
	p.ctrl = 0
	p.mask = 0
	p.status = 0
	p.oamAddr = 0
	p.v, p.t = 0, 0
	p.x = 0
	p.w = false
	p.readBuffer = 0
	p.scanline = -1
	p.cycle = 0
	p.frame = 0
	p.oddFrame = false
}

// FrameBuffer returns the 256x240 ARGB framebuffer, row-major.
func (p *PPU) FrameBuffer() []uint32 {
	return p.frameBuffer[:]
}

// FrameCount returns the number of frames completed since Reset.
func (p *PPU) FrameCount() uint64 {
	return p.frame
}

func (p *PPU) renderingEnabled() bool {
	return p.mask&(maskShowBG|maskShowSprites) != 0
}

// Step advances the PPU by one dot.
func (p *PPU) Step() {
	if p.scanline >= -1 && p.scanline <= 239 && p.renderingEnabled() {
		p.renderTick()
	}

	if p.scanline == 241 && p.cycle == 1 {
		p.status |= statusVBlank
		if p.ctrl&ctrlNMIEnable != 0 && p.nmiCallback != nil {
			p.nmiCallback()
		}
	}
	if p.scanline == -1 && p.cycle == 1 {
		p.status &^= statusVBlank | statusSprite0 | statusOverflow
	}

	p.cycle++
	// The pre-render line is one dot short on odd frames while
	// rendering is enabled, the well-known NTSC "skipped dot".
	skip := p.scanline == -1 && p.cycle == 340 && p.oddFrame && p.renderingEnabled()
	if p.cycle > 340 || skip {
		p.cycle = 0
		p.scanline++
		if p.scanline > 260 {
			p.scanline = -1
			p.frame++
			p.oddFrame = !p.oddFrame
			if p.frameCompleteCallback != nil {
				p.frameCompleteCallback()
			}
		}
	}
}

func (p *PPU) renderTick() {
	c := p.cycle

	if (c >= 2 && c <= 257) || (c >= 322 && c <= 337) {
		p.shiftBackgroundRegisters()
	}

	if (c >= 1 && c <= 256) || (c >= 321 && c <= 336) {
		switch c % 8 {
		case 1:
			p.loadBackgroundShifters()
			p.ntByte = p.readVRAM(0x2000 | (p.v & 0x0FFF))
		case 3:
			addr := 0x23C0 | (p.v & 0x0C00) | ((p.v >> 4) & 0x38) | ((p.v >> 2) & 0x07)
			at := p.readVRAM(addr)
			if p.v&0x40 != 0 {
				at >>= 4
			}
			if p.v&0x02 != 0 {
				at >>= 2
			}
			p.atByte = at & 0x03
		case 5:
			p.patLo = p.cartridge.ReadCHR(p.bgPatternAddress())
		case 7:
			p.patHi = p.cartridge.ReadCHR(p.bgPatternAddress() + 8)
		case 0:
			p.incrementCoarseX()
		}
	}

	if c == 256 {
		p.incrementFineY()
	}
	if c == 257 {
		p.loadBackgroundShifters()
		p.copyHorizontalBits()
		p.evaluateSprites()
	}
	if p.scanline == -1 && c >= 280 && c <= 304 {
		p.copyVerticalBits()
	}

	if p.scanline >= 0 && p.scanline <= 239 && c >= 1 && c <= 256 {
		p.renderPixel(c-1, p.scanline)
	}
}

func (p *PPU) bgPatternAddress() uint16 {
	fineY := (p.v >> 12) & 7
	base := uint16(0)
	if p.ctrl&ctrlBGTable != 0 {
		base = 0x1000
	}
	return base + uint16(p.ntByte)*16 + fineY
}

func (p *PPU) loadBackgroundShifters() {
	p.bgPatLo = (p.bgPatLo & 0xFF00) | uint16(p.patLo)
	p.bgPatHi = (p.bgPatHi & 0xFF00) | uint16(p.patHi)
	lo, hi := uint16(0), uint16(0)
	if p.atByte&0x01 != 0 {
		lo = 0xFF
	}
	if p.atByte&0x02 != 0 {
		hi = 0xFF
	}
	p.bgAtLo = (p.bgAtLo & 0xFF00) | lo
	p.bgAtHi = (p.bgAtHi & 0xFF00) | hi
}

func (p *PPU) shiftBackgroundRegisters() {
	if p.mask&maskShowBG == 0 {
		return
	}
	p.bgPatLo <<= 1
	p.bgPatHi <<= 1
	p.bgAtLo <<= 1
	p.bgAtHi <<= 1
}

func (p *PPU) incrementCoarseX() {
	if p.v&0x001F == 31 {
		p.v &^= 0x001F
		p.v ^= 0x0400
	} else {
		p.v++
	}
}

func (p *PPU) incrementFineY() {
	if p.v&0x7000 != 0x7000 {
		p.v += 0x1000
		return
	}
	p.v &^= 0x7000
	y := (p.v & 0x03E0) >> 5
	switch y {
	case 29:
		y = 0
		p.v ^= 0x0800
	case 31:
		y = 0
	default:
		y++
	}
	p.v = (p.v &^ 0x03E0) | (y << 5)
}

func (p *PPU) copyHorizontalBits() {
	p.v = (p.v &^ 0x041F) | (p.t & 0x041F)
}

func (p *PPU) copyVerticalBits() {
	p.v = (p.v &^ 0x7BE0) | (p.t & 0x7BE0)
}

// evaluateSprites builds the sprite cache used while rendering the
// next scanline. This core supports 8x8 sprites only.
func (p *PPU) evaluateSprites() {
	target := p.scanline + 1
	count := 0
	for i := 0; i < 64; i++ {
		y := int(p.oam[i*4+0])
		row := target - (y + 1)
		if row < 0 || row >= 8 {
			continue
		}
		if count == 8 {
			p.status |= statusOverflow
			break
		}
		tile := p.oam[i*4+1]
		attr := p.oam[i*4+2]
		xPos := p.oam[i*4+3]

		if attr&0x80 != 0 { // vertical flip
			row = 7 - row
		}
		base := uint16(0)
		if p.ctrl&ctrlSpriteTable != 0 {
			base = 0x1000
		}
		addr := base + uint16(tile)*16 + uint16(row)
		lo := p.cartridge.ReadCHR(addr)
		hi := p.cartridge.ReadCHR(addr + 8)
		if attr&0x40 != 0 { // horizontal flip
			lo = reverseBits(lo)
			hi = reverseBits(hi)
		}

		p.sprites[count] = sprite{
			patternLo: lo,
			patternHi: hi,
			x:         xPos,
			palette:   attr & 0x03,
			priority:  attr&0x20 != 0,
			isZero:    i == 0,
		}
		count++
	}
	p.spriteCount = count
}

func reverseBits(b uint8) uint8 {
	var r uint8
	for i := 0; i < 8; i++ {
		r <<= 1
		r |= b & 1
		b >>= 1
	}
	return r
}

func (p *PPU) spritePixelAt(x int) (pixel, palette uint8, priority, isZero bool) {
	if p.mask&maskShowSprites == 0 {
		return 0, 0, false, false
	}
	if x < 8 && p.mask&maskShowSprLeft == 0 {
		return 0, 0, false, false
	}
	for i := 0; i < p.spriteCount; i++ {
		offset := x - int(p.sprites[i].x)
		if offset < 0 || offset > 7 {
			continue
		}
		bit := uint(7 - offset)
		lo := (p.sprites[i].patternLo >> bit) & 1
		hi := (p.sprites[i].patternHi >> bit) & 1
		px := hi<<1 | lo
		if px == 0 {
			continue
		}
		return px, p.sprites[i].palette, p.sprites[i].priority, p.sprites[i].isZero
	}
	return 0, 0, false, false
}

func (p *PPU) backgroundPixelAt(x int) (pixel, palette uint8) {
	if p.mask&maskShowBG == 0 {
		return 0, 0
	}
	if x < 8 && p.mask&maskShowBGLeft == 0 {
		return 0, 0
	}
	mux := uint16(0x8000) >> p.x
	p0, p1 := uint16(0), uint16(0)
	if p.bgPatLo&mux != 0 {
		p0 = 1
	}
	if p.bgPatHi&mux != 0 {
		p1 = 1
	}
	a0, a1 := uint16(0), uint16(0)
	if p.bgAtLo&mux != 0 {
		a0 = 1
	}
	if p.bgAtHi&mux != 0 {
		a1 = 1
	}
	return uint8(p1<<1 | p0), uint8(a1<<1 | a0)
}

func (p *PPU) renderPixel(x, y int) {
	bgPixel, bgPalette := p.backgroundPixelAt(x)
	spPixel, spPalette, spPriority, spZero := p.spritePixelAt(x)

	var finalPixel, finalPalette uint8
	var spriteLayer bool
	switch {
	case bgPixel == 0 && spPixel == 0:
		finalPixel, finalPalette = 0, 0
	case bgPixel == 0 && spPixel != 0:
		finalPixel, finalPalette, spriteLayer = spPixel, spPalette, true
	case bgPixel != 0 && spPixel == 0:
		finalPixel, finalPalette = bgPixel, bgPalette
	default:
		if spZero && x < 255 {
			p.status |= statusSprite0
		}
		if spPriority {
			finalPixel, finalPalette = bgPixel, bgPalette
		} else {
			finalPixel, finalPalette, spriteLayer = spPixel, spPalette, true
		}
	}

	var paletteAddr uint16
	if finalPixel != 0 {
		paletteAddr = uint16(finalPalette)*4 + uint16(finalPixel)
		if spriteLayer {
			paletteAddr |= 0x10
		}
	}
	color := p.paletteRAM[paletteMirror(paletteAddr)] & 0x3F
	p.frameBuffer[y*256+x] = nesColorPalette[color]
}

func paletteMirror(addr uint16) uint16 {
	addr &= 0x1F
	if addr == 0x10 || addr == 0x14 || addr == 0x18 || addr == 0x1C {
		addr -= 0x10
	}
	return addr
}

func (p *PPU) mirrorNametable(addr uint16) uint16 {
	addr &= 0x0FFF
	table := addr / 0x400
	offset := addr % 0x400
	switch p.cartridge.GetMirrorMode() {
	case cartridge.MirrorHorizontal:
		return (table/2)*0x400 + offset
	case cartridge.MirrorSingleScreen0:
		return offset
	case cartridge.MirrorSingleScreen1:
		return 0x400 + offset
	default: // Vertical and FourScreen (falls back to Vertical)
		return (table%2)*0x400 + offset
	}
}

func (p *PPU) readVRAM(addr uint16) uint8 {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		return p.cartridge.ReadCHR(addr)
	case addr < 0x3F00:
		return p.vram[p.mirrorNametable(addr)]
	default:
		return p.paletteRAM[paletteMirror(addr)] & 0x3F
	}
}

func (p *PPU) writeVRAM(addr uint16, value uint8) {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		p.cartridge.WriteCHR(addr, value)
	case addr < 0x3F00:
		p.vram[p.mirrorNametable(addr)] = value
	default:
		p.paletteRAM[paletteMirror(addr)] = value
	}
}

func (p *PPU) incrementV() {
	if p.ctrl&ctrlIncrement32 != 0 {
		p.v += 32
	} else {
		p.v++
	}
	p.v &= 0x7FFF
}

// ReadRegister handles a CPU read of $2000-$2007 (address pre-mirrored
// to that range by the bus).
func (p *PPU) ReadRegister(address uint16) uint8 {
	switch address & 7 {
	case 2:
		value := (p.status & 0xE0) | (p.openBus & 0x1F)
		p.status &^= statusVBlank
		p.w = false
		p.openBus = value
		return value
	case 4:
		value := p.oam[p.oamAddr]
		p.openBus = value
		return value
	case 7:
		var value uint8
		addr := p.v & 0x3FFF
		if addr >= 0x3F00 {
			value = p.paletteRAM[paletteMirror(addr)] & 0x3F
			p.readBuffer = p.readVRAM(addr - 0x1000)
		} else {
			value = p.readBuffer
			p.readBuffer = p.readVRAM(addr)
		}
		p.incrementV()
		p.openBus = value
		return value
	default:
		return p.openBus
	}
}

// WriteRegister handles a CPU write of $2000-$2007.
func (p *PPU) WriteRegister(address uint16, value uint8) {
	p.openBus = value
	switch address & 7 {
	case 0:
		p.ctrl = value
		p.t = (p.t &^ 0x0C00) | (uint16(value&0x03) << 10)
	case 1:
		p.mask = value
	case 3:
		p.oamAddr = value
	case 4:
		p.oam[p.oamAddr] = value
		p.oamAddr++
	case 5:
		if !p.w {
			p.x = value & 0x07
			p.t = (p.t &^ 0x001F) | uint16(value>>3)
			p.w = true
		} else {
			p.t = (p.t &^ 0x73E0) | (uint16(value&0x07) << 12) | (uint16(value&0xF8) << 2)
			p.w = false
		}
	case 6:
		if !p.w {
			p.t = (p.t &^ 0x7F00) | (uint16(value&0x3F) << 8)
			p.w = true
		} else {
			p.t = (p.t &^ 0x00FF) | uint16(value)
			p.v = p.t
			p.w = false
		}
	case 7:
		addr := p.v & 0x3FFF
		if addr >= 0x3F00 {
			p.paletteRAM[paletteMirror(addr)] = value
		} else {
			p.writeVRAM(addr, value)
		}
		p.incrementV()
	}
}

// WriteOAMByte writes one byte to OAM at the current OAMADDR and
// advances it, matching OAM DMA ($4014) semantics.
func (p *PPU) WriteOAMByte(value uint8) {
	p.oam[p.oamAddr] = value
	p.oamAddr++
}

// NES 2C02 NTSC master palette, 64 entries, ARGB with full alpha.
var nesColorPalette = [64]uint32{
	0xFF666666, 0xFF002A88, 0xFF1412A7, 0xFF3B00A4, 0xFF5C007E, 0xFF6E0040, 0xFF6C0600, 0xFF561D00,
	0xFF333500, 0xFF0B4800, 0xFF005200, 0xFF004F08, 0xFF00404D, 0xFF000000, 0xFF000000, 0xFF000000,
	0xFFADADAD, 0xFF155FD9, 0xFF4240FF, 0xFF7527FE, 0xFFA01ACC, 0xFFB71E7B, 0xFFB53120, 0xFF994E00,
	0xFF6B6D00, 0xFF388700, 0xFF0C9300, 0xFF008F32, 0xFF007C8D, 0xFF000000, 0xFF000000, 0xFF000000,
	0xFFFFFEFF, 0xFF64B0FF, 0xFF9290FF, 0xFFC676FF, 0xFFF36AFF, 0xFFFE6ECC, 0xFFFE8170, 0xFFEA9E22,
	0xFFBCBE00, 0xFF88D800, 0xFF5CE430, 0xFF45E082, 0xFF48CDDE, 0xFF4F4F4F, 0xFF000000, 0xFF000000,
	0xFFFFFEFF, 0xFFC0DFFF, 0xFFD3D2FF, 0xFFE8C8FF, 0xFFFBC2FF, 0xFFFEC4EA, 0xFFFECCC5, 0xFFF7D8A5,
	0xFFE4E594, 0xFFCFF29B, 0xFFBEFBB3, 0xFFB8F8D8, 0xFFB8F8F8, 0xFF000000, 0xFF000000, 0xFF000000,
}
