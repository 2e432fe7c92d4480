package legacygfx

import "math"

// View is a legacy camera: the world rectangle at (SrcX, SrcY) of size
// SrcW×SrcH, rotated by Angle degrees, is shown in the port rectangle, which
// is given in unscaled (game) pixels with a top-left origin.
type View struct {
	SrcX, SrcY, SrcW, SrcH float64
	Angle                  float64
	PortX, PortY           int
	PortW, PortH           int
}

// SetView applies a legacy view. width×height is the actual size of the
// active target and unscaledW×unscaledH the size the game believes it has;
// the port is scaled between the two. On the back buffer the port's Y is
// flipped to the device's bottom-left origin. Surfaces are not flipped since
// their projection already compensates.
func (r *Renderer) SetView(width, height, unscaledW, unscaledH int, v View) {
	r.SetProjectionOrtho(v.SrcX, v.SrcY, v.SrcW, v.SrcH, v.Angle)
	r.setViewportScissor(viewPort(width, height, unscaledW, unscaledH, v, r.target == noTarget))
}

// viewPort scales a view's port to device window coordinates. Edges are
// scaled independently so that adjacent ports never leave gaps.
func viewPort(width, height, unscaledW, unscaledH int, v View, backBuffer bool) IRect {
	sx, sy := 1.0, 1.0
	if unscaledW > 0 {
		sx = float64(width) / float64(unscaledW)
	}
	if unscaledH > 0 {
		sy = float64(height) / float64(unscaledH)
	}
	x0 := int(math.Floor(float64(v.PortX) * sx))
	x1 := int(math.Floor(float64(v.PortX+v.PortW) * sx))
	y0 := int(math.Floor(float64(v.PortY) * sy))
	y1 := int(math.Floor(float64(v.PortY+v.PortH) * sy))

	rect := IRect{X: x0, Y: y0, W: max(x1-x0, 0), H: max(y1-y0, 0)}
	if backBuffer {
		rect.Y = height - y1
	}
	return rect
}
