package legacygfx

import (
	"log/slog"
	"math"
)

const verticesPerQuad = 6

// flushCause records why a batch was submitted.
type flushCause uint8

const (
	flushAtlas flushCause = iota
	flushBlend
	flushFilter
	flushTransform
	flushViewport
	flushTarget
	flushClear
	flushReadback
	flushFull
	flushFrame
	numFlushCauses
)

// flush submits the queued quads as one device draw. The queue is always
// empty afterwards. A queue whose atlas slot was deleted is discarded.
func (r *Renderer) flush(cause flushCause) {
	if len(r.queue) == 0 {
		return
	}
	verts := r.queue
	r.queue = r.queue[:0]

	tex, _, _, _, ok := r.res.lookup(r.boundAtlas)
	if !ok {
		Logger().Debug("legacygfx: dropped batch for deleted atlas", slog.Int("atlas", r.boundAtlas))
		return
	}
	mustDraw(r.dev.Draw(verts, DrawState{Texture: tex, Blend: r.blend, Filter: r.filter}))
	r.stats.DrawCalls++
	r.stats.Flushes[cause]++
}

// quad is one sprite quad in world space. Corners and colours are ordered
// top-left, top-right, bottom-left, bottom-right.
type quad struct {
	corners [4][2]float32
	colours [4][4]float32
	u0, v0  float32
	u1, v1  float32
	region  [4]float32
}

// enqueue appends q against atlas, flushing first when the atlas changes or
// the batch is full.
func (r *Renderer) enqueue(atlas int, q *quad) {
	if atlas != r.boundAtlas {
		r.flush(flushAtlas)
		r.boundAtlas = atlas
	}
	if len(r.queue) >= verticesPerQuad*r.cfg.MaxBatchQuads {
		r.flush(flushFull)
	}

	tex := [4][2]float32{{q.u0, q.v0}, {q.u1, q.v0}, {q.u0, q.v1}, {q.u1, q.v1}}
	// Two triangles: TL-TR-BL, TR-BR-BL.
	for _, i := range [verticesPerQuad]int{0, 1, 2, 1, 3, 2} {
		r.queue = append(r.queue, Vertex{
			Pos:       [3]float32{q.corners[i][0], q.corners[i][1], 0},
			Tex:       tex[i],
			Blend:     q.colours[i],
			AtlasXYWH: q.region,
		})
	}
	r.stats.Quads++
}

// spriteQuad draws the part (px, py, pw, ph) of ref, scaled, rotated by
// angle degrees about the pivot (pivotX, pivotY) given in part pixels, with
// the pivot placed at (x, y). Draws of stale refs are dropped.
func (r *Renderer) spriteQuad(ref AtlasRef, px, py, pw, ph, x, y, xscale, yscale, angle, pivotX, pivotY float64, colours [4][4]float32) {
	_, _, tw, th, ok := r.res.lookup(ref.AtlasID)
	if !ok {
		r.stats.Dropped++
		Logger().Debug("legacygfx: dropped draw of deleted sprite", slog.Int("atlas", ref.AtlasID))
		return
	}

	// Clamp the part to the sprite. Clipping the top or left edge moves the
	// pivot with it so the remaining texels stay in place.
	if px < 0 {
		pw += px
		pivotX += px
		px = 0
	}
	if py < 0 {
		ph += py
		pivotY += py
		py = 0
	}
	pw = math.Min(pw, float64(ref.W)-px)
	ph = math.Min(ph, float64(ref.H)-py)
	if pw <= 0 || ph <= 0 {
		return
	}

	left := -pivotX * xscale
	top := -pivotY * yscale
	right := (pw - pivotX) * xscale
	bottom := (ph - pivotY) * yscale

	sin, cos := math.Sincos(degToRad(angle))
	local := [4][2]float64{{left, top}, {right, top}, {left, bottom}, {right, bottom}}

	var q quad
	for i, c := range local {
		// Counter-clockwise on screen, whose Y axis points down.
		q.corners[i][0] = float32(x + c[0]*cos + c[1]*sin)
		q.corners[i][1] = float32(y - c[0]*sin + c[1]*cos)
	}
	q.colours = colours

	fw, fh := float64(tw), float64(th)
	if ref == r.white {
		// Sample the texel centre so linear filtering never reaches neighbours.
		u, v := float32((float64(ref.X)+0.5)/fw), float32((float64(ref.Y)+0.5)/fh)
		q.u0, q.v0, q.u1, q.v1 = u, v, u, v
	} else {
		q.u0 = float32((float64(ref.X) + px) / fw)
		q.v0 = float32((float64(ref.Y) + py) / fh)
		q.u1 = float32((float64(ref.X) + px + pw) / fw)
		q.v1 = float32((float64(ref.Y) + py + ph) / fh)
	}
	q.region = [4]float32{
		float32(float64(ref.X) / fw), float32(float64(ref.Y) / fh),
		float32(float64(ref.W) / fw), float32(float64(ref.H) / fh),
	}
	r.enqueue(ref.AtlasID, &q)
}

func uniformColours(c Colour, alpha float64) [4][4]float32 {
	rgba := c.RGBA(alpha)
	return [4][4]float32{rgba, rgba, rgba, rgba}
}

// DrawSprite draws ref with its pivot at (x, y), scaled and rotated
// counter-clockwise by angle degrees.
func (r *Renderer) DrawSprite(ref AtlasRef, x, y, xscale, yscale, angle float64, colour Colour, alpha float64) {
	r.spriteQuad(ref, 0, 0, float64(ref.W), float64(ref.H), x, y, xscale, yscale, angle,
		ref.OriginX*float64(ref.W), ref.OriginY*float64(ref.H), uniformColours(colour, alpha))
}

// DrawSpritePart draws the part (partX, partY, partW, partH) of ref with the
// part's top-left at (x, y).
func (r *Renderer) DrawSpritePart(ref AtlasRef, partX, partY, partW, partH int, x, y, xscale, yscale, angle float64, colour Colour, alpha float64) {
	r.spriteQuad(ref, float64(partX), float64(partY), float64(partW), float64(partH),
		x, y, xscale, yscale, angle, 0, 0, uniformColours(colour, alpha))
}

// DrawSpriteGeneral draws a part of ref with its top-left at (x, y) and a
// colour per corner: c1 top-left, c2 top-right, c3 bottom-right,
// c4 bottom-left.
func (r *Renderer) DrawSpriteGeneral(ref AtlasRef, partX, partY, partW, partH int, x, y, xscale, yscale, angle float64, c1, c2, c3, c4 Colour, alpha float64) {
	colours := [4][4]float32{c1.RGBA(alpha), c2.RGBA(alpha), c4.RGBA(alpha), c3.RGBA(alpha)}
	r.spriteQuad(ref, float64(partX), float64(partY), float64(partW), float64(partH),
		x, y, xscale, yscale, angle, 0, 0, colours)
}

// DrawSpriteTiled repeats ref across region, aligned so that one tile has
// its pivot at (x, y).
func (r *Renderer) DrawSpriteTiled(ref AtlasRef, x, y, xscale, yscale float64, region Rect, colour Colour, alpha float64) {
	tw := float64(ref.W) * math.Abs(xscale)
	th := float64(ref.H) * math.Abs(yscale)
	if tw <= 0 || th <= 0 {
		return
	}
	left := x - ref.OriginX*tw
	top := y - ref.OriginY*th
	startX := left - math.Ceil((left-region.X)/tw)*tw
	startY := top - math.Ceil((top-region.Y)/th)*th
	colours := uniformColours(colour, alpha)
	for ty := startY; ty < region.Y+region.Height; ty += th {
		for tx := startX; tx < region.X+region.Width; tx += tw {
			r.spriteQuad(ref, 0, 0, float64(ref.W), float64(ref.H), tx, ty, math.Abs(xscale), math.Abs(yscale), 0, 0, 0, colours)
		}
	}
}

// SetBlendMode changes the blend factors, flushing if they differ.
func (r *Renderer) SetBlendMode(m BlendMode) {
	if m == r.blend {
		return
	}
	r.flush(flushBlend)
	r.blend = m
}

// BlendMode returns the current blend factors.
func (r *Renderer) BlendMode() BlendMode { return r.blend }

// SetInterpolation switches between linear and nearest texture filtering,
// flushing if the mode changes.
func (r *Renderer) SetInterpolation(linear bool) {
	f := FilterNearest
	if linear {
		f = FilterLinear
	}
	if f == r.filter {
		return
	}
	r.flush(flushFilter)
	r.filter = f
}

// Interpolation reports whether linear filtering is on.
func (r *Renderer) Interpolation() bool { return r.filter == FilterLinear }
