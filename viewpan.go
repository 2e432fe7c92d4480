package legacygfx

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// ViewPan animates the source rectangle and angle of a View from one value
// to another. Ports switch to the destination immediately.
type ViewPan struct {
	to      View
	current View
	tweens  [5]*gween.Tween
	done    [5]bool
}

// NewViewPan creates a pan from -> to lasting duration seconds. A nil easeFn
// means linear.
func NewViewPan(from, to View, duration float32, easeFn ease.TweenFunc) *ViewPan {
	if easeFn == nil {
		easeFn = ease.Linear
	}
	p := &ViewPan{to: to, current: from}
	p.current.PortX, p.current.PortY = to.PortX, to.PortY
	p.current.PortW, p.current.PortH = to.PortW, to.PortH

	begin := [5]float64{from.SrcX, from.SrcY, from.SrcW, from.SrcH, from.Angle}
	end := [5]float64{to.SrcX, to.SrcY, to.SrcW, to.SrcH, to.Angle}
	for i := range p.tweens {
		p.tweens[i] = gween.New(float32(begin[i]), float32(end[i]), duration, easeFn)
	}
	return p
}

// Update advances the pan by dt seconds and returns the view to apply.
// finished is true once every component has reached its destination; the
// returned view then equals the destination exactly.
func (p *ViewPan) Update(dt float32) (v View, finished bool) {
	fields := [5]*float64{&p.current.SrcX, &p.current.SrcY, &p.current.SrcW, &p.current.SrcH, &p.current.Angle}
	finished = true
	for i, tw := range p.tweens {
		if !p.done[i] {
			val, done := tw.Update(dt)
			*fields[i] = float64(val)
			p.done[i] = done
		}
		finished = finished && p.done[i]
	}
	if finished {
		p.current = p.to
	}
	return p.current, finished
}

// Done reports whether the pan has finished.
func (p *ViewPan) Done() bool {
	for _, d := range p.done {
		if !d {
			return false
		}
	}
	return true
}
