package legacygfx

import "time"

// Platform is the windowing layer the renderer presents through. It owns the
// swap interval and knows when the display's vertical blank occurs.
type Platform interface {
	// SwapBuffers hands the presented frame to the display.
	SwapBuffers() error
	// SwapInterval returns the number of vertical blanks per swap; 0 means
	// vsync is off.
	SwapInterval() int
	SetSwapInterval(n int)
	// WaitVSync blocks until the next vertical blank.
	WaitVSync()
}

// HeadlessPlatform paces frames against a simulated display refresh. Now and
// Sleep may be replaced to run on a fake clock.
type HeadlessPlatform struct {
	Now   func() time.Time
	Sleep func(time.Duration)

	period   time.Duration
	epoch    time.Time
	interval int
	swaps    int
}

// NewHeadlessPlatform creates a platform whose display refreshes refreshHz
// times per second. A non-positive rate means 60 Hz.
func NewHeadlessPlatform(refreshHz int) *HeadlessPlatform {
	if refreshHz <= 0 {
		refreshHz = 60
	}
	p := &HeadlessPlatform{
		Now:    time.Now,
		Sleep:  time.Sleep,
		period: time.Second / time.Duration(refreshHz),
	}
	p.epoch = p.Now()
	return p
}

// SwapBuffers counts the swap and, with vsync on, waits for the blank.
func (p *HeadlessPlatform) SwapBuffers() error {
	for i := 0; i < p.interval; i++ {
		p.WaitVSync()
	}
	p.swaps++
	return nil
}

func (p *HeadlessPlatform) SwapInterval() int { return p.interval }

func (p *HeadlessPlatform) SetSwapInterval(n int) { p.interval = max(n, 0) }

// WaitVSync sleeps until the next multiple of the refresh period.
func (p *HeadlessPlatform) WaitVSync() {
	elapsed := p.Now().Sub(p.epoch)
	next := (elapsed/p.period + 1) * p.period
	p.Sleep(next - elapsed)
}

// Swaps returns how many frames have been swapped.
func (p *HeadlessPlatform) Swaps() int { return p.swaps }
