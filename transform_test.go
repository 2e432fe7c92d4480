package legacygfx

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const epsilon = 1e-5

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertClip(t *testing.T, r *Renderer, wx, wy, cx, cy float64) {
	t.Helper()
	x, y := r.WorldToClip(wx, wy)
	if math.Abs(x-cx) > epsilon || math.Abs(y-cy) > epsilon {
		t.Errorf("WorldToClip(%v, %v) = (%v, %v), want (%v, %v)", wx, wy, x, y, cx, cy)
	}
}

func TestOrthoMapsRectangleToViewport(t *testing.T) {
	r, _, _ := newTestRenderer(t)
	r.SetProjectionOrtho(0, 0, 800, 600, 0)

	// Clip (-1, +1) is the viewport's top-left on the back buffer.
	assertClip(t, r, 0, 0, -1, 1)
	assertClip(t, r, 800, 600, 1, -1)
	assertClip(t, r, 400, 300, 0, 0)
}

func TestOrthoOffsetRectangle(t *testing.T) {
	r, _, _ := newTestRenderer(t)
	r.SetProjectionOrtho(100, 50, 200, 100, 0)

	assertClip(t, r, 100, 50, -1, 1)
	assertClip(t, r, 300, 150, 1, -1)
}

func TestOrthoRotation(t *testing.T) {
	r, _, _ := newTestRenderer(t)
	r.SetProjectionOrtho(0, 0, 200, 200, 90)

	// With the camera rotated 90°, the world point right of centre shows
	// up at the top of the view.
	assertClip(t, r, 200, 100, 0, 1)
}

func TestOrthoDepthRange(t *testing.T) {
	r, _, _ := newTestRenderer(t)
	p := r.ProjectionMatrix()
	near := p.Mul4x1(mgl32.Vec4{0, 0, orthoNear, 1})
	far := p.Mul4x1(mgl32.Vec4{0, 0, orthoFar, 1})
	if math.Abs(math.Abs(float64(near.Z()))-1) > epsilon || math.Abs(math.Abs(float64(far.Z()))-1) > epsilon {
		t.Errorf("depth range maps to %v and %v, want ±1", near.Z(), far.Z())
	}
}

func TestCombinedMatrixUploaded(t *testing.T) {
	r, dev, _ := newTestRenderer(t)
	model := mgl32.Translate3D(10, 20, 0)
	r.SetModelMatrix(model)

	want := r.ProjectionMatrix().Mul4(r.ViewMatrix()).Mul4(model)
	if !r.CombinedMatrix().ApproxEqual(want) {
		t.Errorf("combined = %v, want %v", r.CombinedMatrix(), want)
	}
	if dev.Matrix() != r.CombinedMatrix() {
		t.Error("device matrix differs from combined matrix")
	}
}

func TestModelMatrixApplied(t *testing.T) {
	r, _, _ := newTestRenderer(t)
	r.SetModelMatrix(mgl32.Translate3D(400, 300, 0))
	assertClip(t, r, 0, 0, 0, 0)

	r.ResetTransforms()
	if r.ModelMatrix() != mgl32.Ident4() {
		t.Errorf("model = %v, want identity", r.ModelMatrix())
	}
	assertClip(t, r, 0, 0, -1, 1)
}

func TestMultModelMatrixAppends(t *testing.T) {
	r, _, _ := newTestRenderer(t)
	r.SetModelMatrix(mgl32.Scale3D(2, 2, 1))
	r.MultModelMatrix(mgl32.Translate3D(10, 0, 0))

	// Scale first, then translate.
	p := r.ModelMatrix().Mul4x1(mgl32.Vec4{5, 0, 0, 1})
	assertNear(t, "x", float64(p.X()), 20)
}

func TestOffscreenProjectionIsFlipped(t *testing.T) {
	r, dev, _ := newTestRenderer(t)
	buildTestAtlases(t, r)
	s, _ := r.CreateSurface(100, 50)

	if err := r.SetTarget(s); err != nil {
		t.Fatalf("SetTarget: %v", err)
	}
	// Window row 0 of a surface is its first memory row, so the world's
	// top-left must land at clip (-1, -1).
	assertClip(t, r, 0, 0, -1, -1)
	assertClip(t, r, 100, 50, 1, 1)
	if !r.ProjectionMatrix().ApproxEqual(orthoProjection(100, 50)) {
		t.Error("stored projection includes the flip")
	}
	if dev.Viewport() != (IRect{0, 0, 100, 50}) {
		t.Errorf("viewport = %+v", dev.Viewport())
	}

	r.SetViewProjMatrix(mgl32.Ident4(), mgl32.Ident4())
	if !r.CombinedMatrix().ApproxEqual(yFlip) {
		t.Errorf("combined = %v, want Y flip", r.CombinedMatrix())
	}
}

func TestResetTargetRestoresCamera(t *testing.T) {
	r, _, _ := newTestRenderer(t)
	buildTestAtlases(t, r)
	r.SetView(800, 600, 800, 600, View{SrcX: 100, SrcY: 50, SrcW: 400, SrcH: 300, PortW: 400, PortH: 300})
	view, proj, vp := r.ViewMatrix(), r.ProjectionMatrix(), r.Viewport()

	s, _ := r.CreateSurface(64, 64)
	if err := r.SetTarget(s); err != nil {
		t.Fatalf("SetTarget: %v", err)
	}
	s2, _ := r.CreateSurface(32, 32)
	if err := r.SetTarget(s2); err != nil {
		t.Fatalf("SetTarget: %v", err)
	}
	r.ResetTarget()

	if r.ViewMatrix() != view || r.ProjectionMatrix() != proj || r.Viewport() != vp {
		t.Error("back buffer camera not restored")
	}
	assertClip(t, r, 100, 50, -1, 1)
}

func TestStateRoundTrip(t *testing.T) {
	r, _, _ := newTestRenderer(t)
	r.SetBlendMode(BlendAdd)
	r.SetInterpolation(true)
	r.SetModelMatrix(mgl32.Translate3D(3, 4, 0))
	r.SetProjectionOrtho(10, 10, 100, 100, 45)
	saved := r.State()

	r.SetBlendMode(BlendNormal)
	r.SetInterpolation(false)
	r.ResetTransforms()
	r.SetProjectionOrtho(0, 0, 800, 600, 0)

	r.SetState(saved)
	if r.State() != saved {
		t.Errorf("state = %+v, want %+v", r.State(), saved)
	}
	want := saved.Projection.Mul4(saved.View).Mul4(saved.Model)
	if !r.CombinedMatrix().ApproxEqual(want) {
		t.Error("combined matrix not recomposed")
	}
}
