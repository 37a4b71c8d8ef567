// Package host drives the emulator core through an Ebitengine game
// loop: it polls keyboard input into controller state, runs one frame
// of emulation per Update, and uploads the resulting framebuffer on
// Draw.
package host

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"gones/internal/config"
	"gones/internal/nes"
)

const (
	nesWidth  = 256
	nesHeight = 240
)

// Game implements ebiten.Game, wrapping a System.
type Game struct {
	system *nes.System
	cfg    *config.Config

	frameImage *ebiten.Image
	pixels     []byte

	frameCount uint64
}

// NewGame creates a host Game around an already-constructed System.
func NewGame(system *nes.System, cfg *config.Config) *Game {
	return &Game{
		system:     system,
		cfg:        cfg,
		frameImage: ebiten.NewImage(nesWidth, nesHeight),
		pixels:     make([]byte, nesWidth*nesHeight*4),
	}
}

// Run configures the Ebitengine window and starts the blocking game loop.
func (g *Game) Run(title string) error {
	width, height := g.cfg.WindowResolution()
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetVsyncEnabled(g.cfg.Window.VSync)
	ebiten.SetFullscreen(g.cfg.Window.Fullscreen)

	return ebiten.RunGame(g)
}

// Update polls keyboard input for player 1, applies it to controller 1
// (controller 2 always receives no buttons), and runs the emulator
// forward by exactly one frame.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	p1 := [8]bool{
		pressedAny(g.cfg.Input.Player1Keys.A, ebiten.KeyJ),
		pressedAny(g.cfg.Input.Player1Keys.B, ebiten.KeyK),
		pressedAny(g.cfg.Input.Player1Keys.Select, ebiten.KeySpace),
		pressedAny(g.cfg.Input.Player1Keys.Start, ebiten.KeyEnter),
		pressedAny(g.cfg.Input.Player1Keys.Up, ebiten.KeyW, ebiten.KeyArrowUp),
		pressedAny(g.cfg.Input.Player1Keys.Down, ebiten.KeyS, ebiten.KeyArrowDown),
		pressedAny(g.cfg.Input.Player1Keys.Left, ebiten.KeyA, ebiten.KeyArrowLeft),
		pressedAny(g.cfg.Input.Player1Keys.Right, ebiten.KeyD, ebiten.KeyArrowRight),
	}
	var p2 [8]bool

	g.system.SetInput(p1, p2)
	g.system.RunFrame()
	g.frameCount++

	return nil
}

// pressedAny reports whether any of the named ebiten keys is currently
// held down; the configured key name itself is advisory and not
// parsed, since ebiten keys are looked up by constant, not string.
func pressedAny(_ string, keys ...ebiten.Key) bool {
	for _, k := range keys {
		if ebiten.IsKeyPressed(k) {
			return true
		}
	}
	return false
}

// Draw uploads the emulator's ARGB framebuffer into the Ebitengine
// image and blits it scaled to fill the window.
func (g *Game) Draw(screen *ebiten.Image) {
	fb := g.system.FrameBuffer()
	for i, px := range fb {
		o := i * 4
		g.pixels[o+0] = uint8(px >> 16)
		g.pixels[o+1] = uint8(px >> 8)
		g.pixels[o+2] = uint8(px)
		g.pixels[o+3] = 0xFF
	}
	g.frameImage.WritePixels(g.pixels)

	screen.Fill(color.Black)

	bounds := screen.Bounds()
	scaleX := float64(bounds.Dx()) / float64(nesWidth)
	scaleY := float64(bounds.Dy()) / float64(nesHeight)
	scale := scaleX
	if scaleY < scale {
		scale = scaleY
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(
		(float64(bounds.Dx())-nesWidth*scale)/2,
		(float64(bounds.Dy())-nesHeight*scale)/2,
	)
	screen.DrawImage(g.frameImage, op)
}

// Layout reports the configured window resolution (the native 256x240
// frame times the configured scale) as the logical screen size; Draw
// scales the frame to fit that screen.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	width, height := g.cfg.WindowResolution()
	if width <= 0 || height <= 0 {
		return outsideWidth, outsideHeight
	}
	return width, height
}

// FrameCount returns the number of frames rendered since Run started.
func (g *Game) FrameCount() uint64 {
	return g.frameCount
}

// RunHeadless steps the system for the given number of frames without
// opening a window, for -nogui operation.
func RunHeadless(system *nes.System, frames int) error {
	if frames <= 0 {
		return fmt.Errorf("host: frame count must be positive, got %d", frames)
	}
	for i := 0; i < frames; i++ {
		system.RunFrame()
	}
	return nil
}
