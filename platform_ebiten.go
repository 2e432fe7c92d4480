package legacygfx

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// EbitenPlatform hosts a renderer inside the Ebitengine game loop. Each tick
// runs the caller's step function; each frame shows the device's last
// presented image on the window.
type EbitenPlatform struct {
	dev   *EbitenDevice
	title string

	interval int
	lastSwap time.Time
	swaps    int
}

// NewEbitenPlatform creates the platform for dev, which must be an
// *EbitenDevice. Any other device is a programming error and panics.
func NewEbitenPlatform(dev Device, title string) *EbitenPlatform {
	ed, ok := dev.(*EbitenDevice)
	if !ok {
		panic("legacygfx: EbitenPlatform requires an *EbitenDevice")
	}
	return &EbitenPlatform{dev: ed, title: title, interval: 1}
}

// Run opens the window and calls step once per tick until it returns an
// error. Returning ebiten.Termination ends the loop without error.
func (p *EbitenPlatform) Run(step func() error) error {
	w, h := p.dev.BackBufferSize()
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle(p.title)
	ebiten.SetVsyncEnabled(p.interval > 0)
	return ebiten.RunGame(&ebitenGame{platform: p, step: step})
}

func (p *EbitenPlatform) SwapBuffers() error {
	p.lastSwap = time.Now()
	p.swaps++
	return nil
}

func (p *EbitenPlatform) SwapInterval() int { return p.interval }

func (p *EbitenPlatform) SetSwapInterval(n int) {
	p.interval = max(n, 0)
	ebiten.SetVsyncEnabled(p.interval > 0)
}

// WaitVSync sleeps until one tick after the last swap. Ebitengine does not
// expose the display's blank, so the tick rate stands in for it.
func (p *EbitenPlatform) WaitVSync() {
	tps := ebiten.TPS()
	if tps <= 0 {
		tps = 60
	}
	next := p.lastSwap.Add(time.Second / time.Duration(tps))
	if d := time.Until(next); d > 0 {
		time.Sleep(d)
	}
}

// Swaps returns how many frames have been swapped.
func (p *EbitenPlatform) Swaps() int { return p.swaps }

// ebitenGame adapts the platform to ebiten.Game.
type ebitenGame struct {
	platform *EbitenPlatform
	step     func() error
}

func (g *ebitenGame) Update() error {
	return g.step()
}

func (g *ebitenGame) Draw(screen *ebiten.Image) {
	front := g.platform.dev.FrontBuffer()
	var op ebiten.DrawImageOptions
	fw, fh := front.Bounds().Dx(), front.Bounds().Dy()
	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	if fw != sw || fh != sh {
		op.GeoM.Scale(float64(sw)/float64(fw), float64(sh)/float64(fh))
	}
	op.Filter = ebiten.FilterNearest
	op.Blend = ebiten.BlendCopy
	screen.DrawImage(front, &op)
}

func (g *ebitenGame) Layout(_, _ int) (int, int) {
	return g.platform.dev.BackBufferSize()
}
