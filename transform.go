package legacygfx

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"
)

// Depth range of the legacy orthographic projection.
const (
	orthoNear = -32000
	orthoFar  = 32000
)

// yFlip mirrors clip-space Y. Offscreen targets store rows in the order they
// were uploaded, which is upside down relative to the back buffer.
var yFlip = mgl32.Scale3D(1, -1, 1)

// recompose rebuilds the combined matrix and hands it to the device.
//
// In row-vector notation the combined matrix is model × (view × projection);
// mgl32 uses column vectors, so it is built as P·V·M.
func (r *Renderer) recompose() {
	proj := r.proj
	if r.target != noTarget {
		proj = yFlip.Mul4(proj)
	}
	r.combined = proj.Mul4(r.view).Mul4(r.model)
	r.dev.SetMatrix(r.combined)
}

// SetModelMatrix replaces the model matrix.
func (r *Renderer) SetModelMatrix(m mgl32.Mat4) {
	r.flush(flushTransform)
	r.model = m
	r.recompose()
}

// MultModelMatrix appends m after the current model transform.
func (r *Renderer) MultModelMatrix(m mgl32.Mat4) {
	r.flush(flushTransform)
	r.model = m.Mul4(r.model)
	r.recompose()
}

// SetViewMatrix replaces the view matrix.
func (r *Renderer) SetViewMatrix(m mgl32.Mat4) {
	r.flush(flushTransform)
	r.view = m
	r.recompose()
}

// SetViewProjMatrix replaces both the view and projection matrices. When the
// active target is a surface, the projection is additionally Y-flipped.
func (r *Renderer) SetViewProjMatrix(view, proj mgl32.Mat4) {
	r.flush(flushTransform)
	r.view = view
	r.proj = proj
	r.recompose()
}

// ResetTransforms sets the model matrix back to identity.
func (r *Renderer) ResetTransforms() {
	r.SetModelMatrix(mgl32.Ident4())
}

// ModelMatrix returns the current model matrix.
func (r *Renderer) ModelMatrix() mgl32.Mat4 { return r.model }

// ViewMatrix returns the current view matrix.
func (r *Renderer) ViewMatrix() mgl32.Mat4 { return r.view }

// ProjectionMatrix returns the current projection without the offscreen flip.
func (r *Renderer) ProjectionMatrix() mgl32.Mat4 { return r.proj }

// CombinedMatrix returns the matrix last uploaded to the device.
func (r *Renderer) CombinedMatrix() mgl32.Mat4 { return r.combined }

// SetProjectionOrtho points the camera at the w×h rectangle at (x, y),
// rotated by angle degrees. The rectangle's top-left maps to the top-left of
// the viewport. A rectangle with no width or height leaves the camera as it
// was.
func (r *Renderer) SetProjectionOrtho(x, y, w, h, angle float64) {
	if w == 0 || h == 0 {
		Logger().Debug("legacygfx: ignored empty projection", slog.Float64("w", w), slog.Float64("h", h))
		return
	}
	r.SetViewProjMatrix(orthoView(x, y, w, h, angle), orthoProjection(w, h))
}

// orthoView moves the rectangle's centre to the origin, then rotates by
// -angle.
func orthoView(x, y, w, h, angle float64) mgl32.Mat4 {
	centre := mgl32.Translate3D(float32(-(x + w/2)), float32(-(y + h/2)), 0)
	return mgl32.HomogRotate3DZ(float32(degToRad(-angle))).Mul4(centre)
}

// orthoProjection maps a w×h rectangle centred on the origin to clip space
// with Y pointing down.
func orthoProjection(w, h float64) mgl32.Mat4 {
	hw, hh := float32(w/2), float32(h/2)
	return mgl32.Ortho(-hw, hw, hh, -hh, orthoNear, orthoFar)
}

// WorldToClip transforms a world point by the combined matrix and returns
// its normalized device coordinates.
func (r *Renderer) WorldToClip(x, y float64) (float64, float64) {
	v := r.combined.Mul4x1(mgl32.Vec4{float32(x), float32(y), 0, 1})
	w := v.W()
	if w == 0 {
		w = 1
	}
	return float64(v.X() / w), float64(v.Y() / w)
}
