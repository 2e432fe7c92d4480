package legacygfx

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func assertPos(t *testing.T, name string, v Vertex, x, y float64) {
	t.Helper()
	if math.Abs(float64(v.Pos[0])-x) > 1e-4 || math.Abs(float64(v.Pos[1])-y) > 1e-4 {
		t.Errorf("%s = (%v, %v), want (%v, %v)", name, v.Pos[0], v.Pos[1], x, y)
	}
}

func TestSameStateDrawsMakeOneBatch(t *testing.T) {
	r, dev, _ := newTestRenderer(t)
	a := buildTestAtlases(t, r)

	r.DrawSprite(a.hero, 10, 20, 1, 1, 0, ColourWhite, 1)
	r.DrawSprite(a.hero, 30, 40, 1, 1, 0, ColourWhite, 1)
	r.DrawSprite(a.hero, 50, 60, 1, 1, 0, ColourWhite, 1)
	if len(dev.DrawCalls()) != 0 {
		t.Fatalf("draws before flush = %d, want 0", len(dev.DrawCalls()))
	}
	if err := r.Present(); err != nil {
		t.Fatalf("Present: %v", err)
	}

	calls := dev.DrawCalls()
	if len(calls) != 1 {
		t.Fatalf("draw calls = %d, want 1", len(calls))
	}
	verts := calls[0].Vertices
	if len(verts) != 18 {
		t.Fatalf("vertices = %d, want 18", len(verts))
	}
	assertPos(t, "quad 0", verts[0], 10, 20)
	assertPos(t, "quad 1", verts[6], 30, 40)
	assertPos(t, "quad 2", verts[12], 50, 60)
	if calls[0].State.Blend != BlendNormal || calls[0].State.Filter != FilterNearest {
		t.Errorf("state = %+v", calls[0].State)
	}
}

func TestStateChangeFlushes(t *testing.T) {
	tests := []struct {
		name   string
		change func(r *Renderer, a testAtlas)
	}{
		{"blend", func(r *Renderer, _ testAtlas) { r.SetBlendMode(BlendAdd) }},
		{"filter", func(r *Renderer, _ testAtlas) { r.SetInterpolation(true) }},
		{"model matrix", func(r *Renderer, _ testAtlas) { r.SetModelMatrix(mgl32.Translate3D(1, 0, 0)) }},
		{"mult model matrix", func(r *Renderer, _ testAtlas) { r.MultModelMatrix(mgl32.Scale3D(2, 2, 1)) }},
		{"view matrix", func(r *Renderer, _ testAtlas) { r.SetViewMatrix(mgl32.Ident4()) }},
		{"view projection", func(r *Renderer, _ testAtlas) { r.SetViewProjMatrix(mgl32.Ident4(), mgl32.Ident4()) }},
		{"ortho", func(r *Renderer, _ testAtlas) { r.SetProjectionOrtho(0, 0, 400, 300, 0) }},
		{"view", func(r *Renderer, _ testAtlas) { r.SetView(800, 600, 800, 600, View{SrcW: 800, SrcH: 600, PortW: 400, PortH: 300}) }},
		{"clear", func(r *Renderer, _ testAtlas) { r.ClearView(ColourBlack, 1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, dev, _ := newTestRenderer(t)
			a := buildTestAtlases(t, r)

			r.DrawSprite(a.hero, 0, 0, 1, 1, 0, ColourWhite, 1)
			tt.change(r, a)
			if len(r.queue) != 0 {
				t.Errorf("queue = %d vertices after state change, want 0", len(r.queue))
			}
			if len(dev.DrawCalls()) != 1 {
				t.Errorf("draw calls = %d, want 1", len(dev.DrawCalls()))
			}
		})
	}
}

func TestAtlasChangeFlushes(t *testing.T) {
	r, dev, _ := newTestRenderer(t)
	a := buildTestAtlases(t, r)

	r.DrawSprite(a.hero, 0, 0, 1, 1, 0, ColourWhite, 1)
	r.DrawSprite(a.coin, 0, 0, 1, 1, 0, ColourWhite, 1)
	if len(dev.DrawCalls()) != 1 {
		t.Fatalf("draw calls = %d, want 1", len(dev.DrawCalls()))
	}
	if len(r.queue) != verticesPerQuad {
		t.Errorf("queue = %d vertices, want %d", len(r.queue), verticesPerQuad)
	}
	pageTex, _, _, _, _ := r.res.lookup(0)
	if got := dev.DrawCalls()[0].State.Texture; got != pageTex {
		t.Errorf("texture = %d, want page 0 texture %d", got, pageTex)
	}
}

func TestUnchangedStateDoesNotFlush(t *testing.T) {
	r, dev, _ := newTestRenderer(t)
	a := buildTestAtlases(t, r)

	r.DrawSprite(a.hero, 0, 0, 1, 1, 0, ColourWhite, 1)
	r.SetBlendMode(BlendNormal)
	r.SetInterpolation(false)
	if len(dev.DrawCalls()) != 0 {
		t.Errorf("draw calls = %d, want 0", len(dev.DrawCalls()))
	}
}

func TestBatchLimitFlushes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxBatchQuads = 2
	r, dev, _ := newTestRendererConfig(t, cfg)
	a := buildTestAtlases(t, r)

	for i := 0; i < 5; i++ {
		r.DrawSprite(a.hero, float64(i), 0, 1, 1, 0, ColourWhite, 1)
	}
	if err := r.Present(); err != nil {
		t.Fatalf("Present: %v", err)
	}
	if len(dev.DrawCalls()) != 3 {
		t.Errorf("draw calls = %d, want 3", len(dev.DrawCalls()))
	}
	if s := r.Stats(); s.Flushes[flushFull] != 2 || s.Quads != 5 {
		t.Errorf("stats = %+v", s)
	}
}

func TestStaleDrawIsDropped(t *testing.T) {
	r, dev, _ := newTestRenderer(t)
	buildTestAtlases(t, r)
	s, err := r.CreateSurface(8, 8)
	if err != nil {
		t.Fatalf("CreateSurface: %v", err)
	}
	r.DeleteSprite(s)

	r.DrawSprite(s, 0, 0, 1, 1, 0, ColourWhite, 1)
	if len(r.queue) != 0 {
		t.Errorf("queue = %d vertices, want 0", len(r.queue))
	}
	if err := r.Present(); err != nil {
		t.Fatalf("Present: %v", err)
	}
	if len(dev.DrawCalls()) != 0 {
		t.Errorf("draw calls = %d, want 0", len(dev.DrawCalls()))
	}
	if r.Stats().Dropped != 1 {
		t.Errorf("Dropped = %d, want 1", r.Stats().Dropped)
	}
}

func TestDeletingBoundSurfaceFlushesFirst(t *testing.T) {
	r, dev, _ := newTestRenderer(t)
	buildTestAtlases(t, r)
	s, err := r.CreateSurface(8, 8)
	if err != nil {
		t.Fatalf("CreateSurface: %v", err)
	}
	r.DrawSprite(s, 0, 0, 1, 1, 0, ColourWhite, 1)
	r.DeleteSprite(s)
	if len(dev.DrawCalls()) != 1 {
		t.Errorf("draw calls = %d, want 1", len(dev.DrawCalls()))
	}
}

func TestDrawSpriteTexCoords(t *testing.T) {
	r, _, _ := newTestRenderer(t)
	a := buildTestAtlases(t, r)

	r.DrawSprite(a.coin, 0, 0, 1, 1, 0, ColourWhite, 1)
	tl, br := r.queue[0], r.queue[4]
	if tl.Tex != [2]float32{8.0 / 64, 8.0 / 64} {
		t.Errorf("top-left tex = %v", tl.Tex)
	}
	if br.Tex != [2]float32{16.0 / 64, 16.0 / 64} {
		t.Errorf("bottom-right tex = %v", br.Tex)
	}
	if tl.AtlasXYWH != [4]float32{8.0 / 64, 8.0 / 64, 8.0 / 64, 8.0 / 64} {
		t.Errorf("atlas region = %v", tl.AtlasXYWH)
	}
}

func TestDrawSpriteColour(t *testing.T) {
	r, _, _ := newTestRenderer(t)
	a := buildTestAtlases(t, r)

	r.DrawSprite(a.hero, 0, 0, 1, 1, 0, ColourRed, 0.5)
	for i, v := range r.queue {
		if v.Blend != [4]float32{1, 0, 0, 0.5} {
			t.Errorf("vertex %d blend = %v", i, v.Blend)
		}
	}
}

func TestDrawSpritePivotScaleRotation(t *testing.T) {
	r, _, _ := newTestRenderer(t)
	a := buildTestAtlases(t, r)
	centred := a.hero.WithOrigin(0.5, 0.5)

	r.DrawSprite(centred, 100, 100, 2, 1, 0, ColourWhite, 1)
	assertPos(t, "scaled TL", r.queue[0], 84, 92)
	assertPos(t, "scaled BR", r.queue[4], 116, 108)

	r.queue = r.queue[:0]
	r.DrawSprite(centred, 100, 100, 1, 1, 90, ColourWhite, 1)
	// Counter-clockwise: the top-left corner swings to the bottom-left.
	assertPos(t, "rotated TL", r.queue[0], 92, 108)
	assertPos(t, "rotated TR", r.queue[1], 92, 92)
}

func TestDrawSpritePartClampsToSprite(t *testing.T) {
	r, _, _ := newTestRenderer(t)
	a := buildTestAtlases(t, r)

	r.DrawSpritePart(a.hero, 8, 8, 16, 16, 0, 0, 1, 1, 0, ColourWhite, 1)
	assertPos(t, "BR", r.queue[4], 8, 8)
	if got := r.queue[4].Tex; got != [2]float32{16.0 / 64, 16.0 / 64} {
		t.Errorf("BR tex = %v", got)
	}

	r.queue = r.queue[:0]
	r.DrawSpritePart(a.hero, 20, 0, 4, 4, 0, 0, 1, 1, 0, ColourWhite, 1)
	if len(r.queue) != 0 {
		t.Errorf("part outside the sprite enqueued %d vertices", len(r.queue))
	}
}

func TestDrawSpritePartNegativeOffset(t *testing.T) {
	r, _, _ := newTestRenderer(t)
	a := buildTestAtlases(t, r)

	// Texels (0, 0) onwards keep the position they have in the unclipped part.
	r.DrawSpritePart(a.hero, -4, -2, 10, 10, 100, 50, 2, 3, 0, ColourWhite, 1)
	assertPos(t, "TL", r.queue[0], 108, 56)
	assertPos(t, "BR", r.queue[4], 120, 80)
	if got := r.queue[0].Tex; got != [2]float32{0, 0} {
		t.Errorf("TL tex = %v", got)
	}
	if got := r.queue[4].Tex; got != [2]float32{6.0 / 64, 8.0 / 64} {
		t.Errorf("BR tex = %v", got)
	}

	// The shift rotates with the quad.
	r.queue = r.queue[:0]
	r.DrawSpritePart(a.hero, -4, -2, 10, 10, 100, 50, 2, 3, 90, ColourWhite, 1)
	assertPos(t, "rotated TL", r.queue[0], 106, 42)
}

func TestDrawSpriteGeneralCornerColours(t *testing.T) {
	r, _, _ := newTestRenderer(t)
	a := buildTestAtlases(t, r)

	r.DrawSpriteGeneral(a.hero, 0, 0, 16, 16, 0, 0, 1, 1, 0, ColourRed, ColourGreen, ColourBlue, ColourWhite, 1)
	want := map[int][4]float32{
		0: {1, 0, 0, 1}, // TL
		1: {0, 1, 0, 1}, // TR
		4: {0, 0, 1, 1}, // BR
		2: {1, 1, 1, 1}, // BL
	}
	for i, c := range want {
		if r.queue[i].Blend != c {
			t.Errorf("vertex %d blend = %v, want %v", i, r.queue[i].Blend, c)
		}
	}
}

func TestDrawSpriteTiled(t *testing.T) {
	tests := []struct {
		name  string
		x     float64
		quads int
	}{
		{"aligned", 0, 8},
		{"offset", 8, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _ := newTestRenderer(t)
			a := buildTestAtlases(t, r)
			r.DrawSpriteTiled(a.hero, tt.x, 0, 1, 1, Rect{0, 0, 64, 32}, ColourWhite, 1)
			if got := len(r.queue) / verticesPerQuad; got != tt.quads {
				t.Errorf("quads = %d, want %d", got, tt.quads)
			}
		})
	}
}

func TestSetInterpolationFilter(t *testing.T) {
	r, dev, _ := newTestRenderer(t)
	a := buildTestAtlases(t, r)

	r.SetInterpolation(true)
	if !r.Interpolation() {
		t.Fatal("Interpolation() = false")
	}
	r.DrawSprite(a.hero, 0, 0, 1, 1, 0, ColourWhite, 1)
	r.SetBlendMode(BlendAdd)
	if r.BlendMode() != BlendAdd {
		t.Errorf("BlendMode() = %+v", r.BlendMode())
	}
	if got := dev.DrawCalls()[0].State; got.Filter != FilterLinear || got.Blend != BlendNormal {
		t.Errorf("state = %+v", got)
	}
}
