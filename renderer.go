package legacygfx

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// noTarget marks the back buffer as the active render target.
const noTarget = -1

// Renderer is the legacy engine's rendering backend. It owns the resource
// table, the vertex batcher, the transform pipeline and the frame loop, and
// drives a Device and a Platform. All methods must be called from the
// goroutine that owns the graphics context.
type Renderer struct {
	dev  Device
	plat Platform
	cfg  Config

	res   resourceTable
	white AtlasRef

	// Batcher state. boundAtlas is the resource id queued vertices sample.
	queue           []Vertex
	boundAtlas      int
	blend           BlendMode
	filter          FilterMode
	circlePrecision int

	// Transform state. proj is kept without the offscreen flip, which is
	// applied in recompose.
	model, view, proj mgl32.Mat4
	combined          mgl32.Mat4

	target   int
	viewport IRect
	scissor  IRect
	// backBuffer holds the back buffer's camera while a surface is the
	// target.
	backBuffer savedCamera

	stats     FrameStats
	lastStats FrameStats
}

// New creates a renderer over dev and plat. The back buffer is bound with a
// full-frame viewport and an orthographic projection over it.
func New(dev Device, plat Platform, cfg Config) (*Renderer, error) {
	if dev == nil || plat == nil {
		return nil, fmt.Errorf("legacygfx: New requires a device and a platform")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if w, h := dev.BackBufferSize(); w != cfg.Width || h != cfg.Height {
		return nil, fmt.Errorf("legacygfx: device back buffer is %dx%d, config wants %dx%d", w, h, cfg.Width, cfg.Height)
	}
	if err := dev.BindFramebuffer(BackBuffer); err != nil {
		return nil, fmt.Errorf("legacygfx: bind back buffer: %w", err)
	}

	r := &Renderer{
		dev:        dev,
		plat:       plat,
		cfg:        cfg,
		queue:      make([]Vertex, 0, verticesPerQuad*cfg.MaxBatchQuads),
		boundAtlas: -1,
		blend:      BlendNormal,
		model:      mgl32.Ident4(),
		view:       mgl32.Ident4(),
		proj:       mgl32.Ident4(),
		target:     noTarget,
	}
	if cfg.Interpolate {
		r.filter = FilterLinear
	}
	r.SetCirclePrecision(cfg.CirclePrecision)
	r.SetVSync(cfg.VSync)
	r.setViewportScissor(IRect{0, 0, cfg.Width, cfg.Height})
	r.SetProjectionOrtho(0, 0, float64(cfg.Width), float64(cfg.Height), 0)
	return r, nil
}

// Device returns the renderer's device.
func (r *Renderer) Device() Device { return r.dev }

// Config returns the configuration the renderer was created with.
func (r *Renderer) Config() Config { return r.cfg }

// setViewportScissor flushes and sets both the viewport and the scissor to
// rect, in device window coordinates.
func (r *Renderer) setViewportScissor(rect IRect) {
	if rect.W < 0 {
		rect.W = 0
	}
	if rect.H < 0 {
		rect.H = 0
	}
	r.flush(flushViewport)
	r.viewport = rect
	r.scissor = rect
	r.dev.SetViewport(rect)
	r.dev.SetScissor(rect)
}

// Viewport returns the active viewport in device window coordinates.
func (r *Renderer) Viewport() IRect { return r.viewport }

// State holds the renderer settings a save game or script needs to restore.
type State struct {
	Blend       BlendMode
	Interpolate bool
	Model       mgl32.Mat4
	View        mgl32.Mat4
	Projection  mgl32.Mat4
}

// State captures the current blend mode, interpolation and matrices.
func (r *Renderer) State() State {
	return State{
		Blend:       r.blend,
		Interpolate: r.filter == FilterLinear,
		Model:       r.model,
		View:        r.view,
		Projection:  r.proj,
	}
}

// SetState restores settings captured by State.
func (r *Renderer) SetState(s State) {
	r.SetBlendMode(s.Blend)
	r.SetInterpolation(s.Interpolate)
	r.flush(flushTransform)
	r.model = s.Model
	r.view = s.View
	r.proj = s.Projection
	r.recompose()
}
