package legacygfx

import (
	"log/slog"
	"math"
)

// Flat-colour primitives. Every one of them is a quad (or a set of quads)
// sampling the reserved white pixel, so they batch with each other and with
// sprites on the white pixel's page.

// DrawRectangle fills the rectangle spanning (x1, y1) to (x2, y2). Both
// corners are inclusive, so the filled area is one pixel wider and taller
// than the coordinate difference.
func (r *Renderer) DrawRectangle(x1, y1, x2, y2 float64, colour Colour, alpha float64) {
	r.DrawRectangleGradient(x1, y1, x2, y2, colour, colour, colour, colour, alpha)
}

// DrawRectangleGradient fills a rectangle with per-corner colours: c1
// top-left, c2 top-right, c3 bottom-right, c4 bottom-left.
func (r *Renderer) DrawRectangleGradient(x1, y1, x2, y2 float64, c1, c2, c3, c4 Colour, alpha float64) {
	if x2 < x1 {
		x1, x2 = x2, x1
	}
	if y2 < y1 {
		y1, y2 = y2, y1
	}
	r.DrawSpriteGeneral(r.white, 0, 0, 1, 1, x1, y1, x2-x1+1, y2-y1+1, 0, c1, c2, c3, c4, alpha)
}

// DrawRectangleOutline draws a one pixel border along the inside of the
// rectangle spanning (x1, y1) to (x2, y2).
func (r *Renderer) DrawRectangleOutline(x1, y1, x2, y2 float64, colour Colour, alpha float64) {
	if x2 < x1 {
		x1, x2 = x2, x1
	}
	if y2 < y1 {
		y1, y2 = y2, y1
	}
	r.DrawRectangle(x1, y1, x2, y1, colour, alpha)
	if y2 == y1 {
		return
	}
	r.DrawRectangle(x1, y2, x2, y2, colour, alpha)
	if y2-y1 > 1 {
		r.DrawRectangle(x1, y1+1, x1, y2-1, colour, alpha)
		if x2 != x1 {
			r.DrawRectangle(x2, y1+1, x2, y2-1, colour, alpha)
		}
	}
}

// DrawPoint sets the single pixel at (x, y).
func (r *Renderer) DrawPoint(x, y float64, colour Colour, alpha float64) {
	r.DrawRectangle(x, y, x, y, colour, alpha)
}

// DrawLine draws a line width pixels thick from (x1, y1) to (x2, y2),
// shading from c1 at the start to c2 at the end.
func (r *Renderer) DrawLine(x1, y1, x2, y2, width float64, c1, c2 Colour, alpha float64) {
	dx, dy := x2-x1, y2-y1
	length := math.Hypot(dx, dy)
	if length == 0 || width <= 0 {
		return
	}
	angle := math.Atan2(-dy, dx) * 180 / math.Pi
	start, end := c1.RGBA(alpha), c2.RGBA(alpha)
	r.spriteQuad(r.white, 0, 0, 1, 1, x1, y1, length, width, angle, 0, 0.5,
		[4][4]float32{start, end, start, end})
}

// DrawTriangle fills the triangle (x1, y1), (x2, y2), (x3, y3) with a colour
// per vertex.
func (r *Renderer) DrawTriangle(x1, y1, x2, y2, x3, y3 float64, c1, c2, c3 Colour, alpha float64) {
	k3 := c3.RGBA(alpha)
	r.whiteQuad([4][2]float64{{x1, y1}, {x2, y2}, {x3, y3}, {x3, y3}},
		[4][4]float32{c1.RGBA(alpha), c2.RGBA(alpha), k3, k3})
}

// DrawEllipse draws the ellipse inscribed in the rectangle (x1, y1) to
// (x2, y2), either filled or as a one pixel outline. The number of segments
// is set by SetCirclePrecision.
func (r *Renderer) DrawEllipse(x1, y1, x2, y2 float64, colour Colour, alpha float64, outline bool) {
	cx, cy := (x1+x2)/2, (y1+y2)/2
	rx, ry := math.Abs(x2-x1)/2, math.Abs(y2-y1)/2
	if rx == 0 && ry == 0 {
		r.DrawPoint(cx, cy, colour, alpha)
		return
	}

	n := r.circlePrecision
	px, py := cx+rx, cy
	rgba := colour.RGBA(alpha)
	for i := 1; i <= n; i++ {
		sin, cos := math.Sincos(2 * math.Pi * float64(i) / float64(n))
		nx, ny := cx+rx*cos, cy+ry*sin
		if outline {
			r.DrawLine(px, py, nx, ny, 1, colour, colour, alpha)
		} else {
			r.whiteQuad([4][2]float64{{cx, cy}, {px, py}, {nx, ny}, {nx, ny}},
				[4][4]float32{rgba, rgba, rgba, rgba})
		}
		px, py = nx, ny
	}
}

// SetCirclePrecision sets the segment count for DrawEllipse. The value is
// clamped to [4, 64] and rounded down to a multiple of 4.
func (r *Renderer) SetCirclePrecision(n int) {
	n = min(max(n, 4), maxCirclePrecision)
	r.circlePrecision = n - n%4
}

// CirclePrecision returns the segment count used by DrawEllipse.
func (r *Renderer) CirclePrecision() int { return r.circlePrecision }

// whiteQuad enqueues a quad with explicit world corners (top-left,
// top-right, bottom-left, bottom-right) on the white pixel. A triangle is a
// quad whose last two corners coincide.
func (r *Renderer) whiteQuad(corners [4][2]float64, colours [4][4]float32) {
	ref := r.white
	_, _, tw, th, ok := r.res.lookup(ref.AtlasID)
	if !ok {
		r.stats.Dropped++
		Logger().Debug("legacygfx: dropped primitive, atlases not built", slog.Int("atlas", ref.AtlasID))
		return
	}
	var q quad
	for i, c := range corners {
		q.corners[i] = [2]float32{float32(c[0]), float32(c[1])}
	}
	q.colours = colours
	fw, fh := float64(tw), float64(th)
	u, v := float32((float64(ref.X)+0.5)/fw), float32((float64(ref.Y)+0.5)/fh)
	q.u0, q.v0, q.u1, q.v1 = u, v, u, v
	q.region = [4]float32{float32(float64(ref.X) / fw), float32(float64(ref.Y) / fh), float32(1 / fw), float32(1 / fh)}
	r.enqueue(ref.AtlasID, &q)
}
