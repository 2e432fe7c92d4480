package legacygfx

import "fmt"

// Present submits the pending batch, makes the back buffer the displayed
// frame and swaps through the platform.
func (r *Renderer) Present() error {
	r.flush(flushFrame)
	if err := r.dev.Present(); err != nil {
		return fmt.Errorf("legacygfx: present: %w", err)
	}
	if err := r.plat.SwapBuffers(); err != nil {
		return fmt.Errorf("legacygfx: swap buffers: %w", err)
	}
	r.endFrame()
	return nil
}

// Finish ends a step of the caller's loop: it presents, resets the viewport
// and scissor to the full w×h frame and clears the back buffer to
// clearColour. Drawing to a surface is ended first.
func (r *Renderer) Finish(w, h int, clearColour Colour) error {
	r.ResetTarget()
	if err := r.Present(); err != nil {
		return err
	}
	r.setViewportScissor(IRect{0, 0, w, h})
	r.dev.Clear(clearColour.RGBA(1))
	return nil
}

// ClearView clears the active scissor region of the active target, leaving
// the rest of it untouched. Several views can so be cleared independently.
func (r *Renderer) ClearView(colour Colour, alpha float64) {
	r.flush(flushClear)
	r.dev.Clear(colour.RGBA(alpha))
}

// VSync reports whether swaps wait for the vertical blank.
func (r *Renderer) VSync() bool { return r.plat.SwapInterval() != 0 }

// SetVSync turns waiting for the vertical blank on or off.
func (r *Renderer) SetVSync(on bool) {
	n := 0
	if on {
		n = 1
	}
	r.plat.SetSwapInterval(n)
}

// WaitVSync blocks the calling goroutine until the next vertical blank.
func (r *Renderer) WaitVSync() { r.plat.WaitVSync() }
