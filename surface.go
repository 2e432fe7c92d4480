package legacygfx

import (
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"
)

// TextureSnapshot is the saved contents of one dynamic surface: Width×Height
// straight RGBA pixels, rows top-down.
type TextureSnapshot struct {
	Width, Height int
	Pixels        []byte
}

// DynamicTextures is a snapshot of every slot from StockAtlasCount on, in
// slot order. A nil entry marks a free slot.
type DynamicTextures []*TextureSnapshot

// savedCamera is the back buffer state restored by ResetTarget.
type savedCamera struct {
	view, proj mgl32.Mat4
	viewport   IRect
}

// allocSurface creates a texture and a framebuffer over it.
func (r *Renderer) allocSurface(w, h int) (Texture, Framebuffer, error) {
	tex, err := r.dev.NewTexture(w, h)
	if err != nil {
		return 0, 0, fmt.Errorf("legacygfx: create surface %dx%d: %w", w, h, err)
	}
	fb, err := r.dev.NewFramebuffer(tex)
	if err != nil {
		r.dev.DeleteTexture(tex)
		return 0, 0, fmt.Errorf("legacygfx: create surface %dx%d framebuffer: %w", w, h, err)
	}
	return tex, fb, nil
}

// CreateSurface allocates a w×h render target in the first free slot, or a
// new slot at the end of the table. The surface starts transparent black.
func (r *Renderer) CreateSurface(w, h int) (AtlasRef, error) {
	tex, fb, err := r.allocSurface(w, h)
	if err != nil {
		return AtlasRef{}, err
	}
	id := r.res.install(tex, fb, w, h)
	Logger().Debug("legacygfx: surface created", slog.Int("id", id), slog.Int("w", w), slog.Int("h", h))
	return AtlasRef{AtlasID: id, W: w, H: h}, nil
}

// DeleteSprite releases a surface and frees its slot. Stock atlas refs and
// refs to already deleted surfaces are ignored. Deleting the active target
// switches back to the back buffer first.
func (r *Renderer) DeleteSprite(ref AtlasRef) {
	id := ref.AtlasID
	if id < r.res.stock {
		return
	}
	tex, fb, _, _, ok := r.res.lookup(id)
	if !ok {
		return
	}
	if id == r.target {
		r.ResetTarget()
	}
	if id == r.boundAtlas {
		r.flush(flushAtlas)
	}
	r.dev.DeleteFramebuffer(fb)
	r.dev.DeleteTexture(tex)
	r.res.free(id)
	Logger().Debug("legacygfx: surface deleted", slog.Int("id", id))
}

// DuplicateSprite copies ref's region into a new surface on the device,
// without reading pixels back. The copy keeps ref's origin.
func (r *Renderer) DuplicateSprite(ref AtlasRef) (AtlasRef, error) {
	_, srcFB, _, _, ok := r.res.lookup(ref.AtlasID)
	if !ok {
		return AtlasRef{}, ErrStaleRef
	}
	r.flush(flushReadback)

	dst, err := r.CreateSurface(ref.W, ref.H)
	if err != nil {
		return AtlasRef{}, err
	}
	dstTex := r.res.textures[dst.AtlasID]
	if err := r.dev.BlitFramebuffer(srcFB, IRect{ref.X, ref.Y, ref.W, ref.H}, dstTex, 0, 0); err != nil {
		r.DeleteSprite(dst)
		return AtlasRef{}, fmt.Errorf("legacygfx: duplicate sprite: %w", err)
	}
	return dst.WithOrigin(ref.OriginX, ref.OriginY), nil
}

// UploadSprite creates a w×h surface holding pixels (straight RGBA rows,
// top-down) with the given pivot.
func (r *Renderer) UploadSprite(pixels []byte, w, h int, originX, originY float64) (AtlasRef, error) {
	if len(pixels) != 4*w*h {
		return AtlasRef{}, fmt.Errorf("legacygfx: upload sprite: have %d bytes, want %d", len(pixels), 4*w*h)
	}
	ref, err := r.CreateSurface(w, h)
	if err != nil {
		return AtlasRef{}, err
	}
	if err := r.dev.UploadTexture(r.res.textures[ref.AtlasID], IRect{0, 0, w, h}, pixels); err != nil {
		r.DeleteSprite(ref)
		return AtlasRef{}, fmt.Errorf("legacygfx: upload sprite: %w", err)
	}
	return ref.WithOrigin(originX, originY), nil
}

// withFramebuffer binds fb for the duration of fn and then restores the
// previous binding, whoever made it.
func (r *Renderer) withFramebuffer(fb Framebuffer, fn func() error) error {
	prev := r.dev.BoundFramebuffer()
	if err := r.dev.BindFramebuffer(fb); err != nil {
		return err
	}
	err := fn()
	if rerr := r.dev.BindFramebuffer(prev); rerr != nil && err == nil {
		err = rerr
	}
	return err
}

// DumpSprite reads ref's region back as straight RGBA rows, top-down. It
// blocks until the device has finished every pending draw.
func (r *Renderer) DumpSprite(ref AtlasRef) ([]byte, error) {
	_, fb, _, _, ok := r.res.lookup(ref.AtlasID)
	if !ok {
		return nil, ErrStaleRef
	}
	if ref.W < 0 || ref.H < 0 {
		return nil, &DeviceError{Op: fmt.Sprintf("dump sprite %dx%d", ref.W, ref.H), Code: CodeInvalidValue}
	}
	r.flush(flushReadback)
	pix := make([]byte, 4*ref.W*ref.H)
	err := r.withFramebuffer(fb, func() error {
		return r.dev.ReadPixels(IRect{ref.X, ref.Y, ref.W, ref.H}, pix)
	})
	if err != nil {
		return nil, fmt.Errorf("legacygfx: dump sprite: %w", err)
	}
	return pix, nil
}

// GetPixels reads a region of the active target, given with a top-left
// origin, as straight RGBA rows, top-down. It blocks like DumpSprite.
func (r *Renderer) GetPixels(x, y, w, h int) ([]byte, error) {
	if w < 0 || h < 0 {
		return nil, &DeviceError{Op: fmt.Sprintf("get pixels %dx%d", w, h), Code: CodeInvalidValue}
	}
	r.flush(flushReadback)
	pix := make([]byte, 4*w*h)
	if r.target != noTarget {
		if err := r.dev.ReadPixels(IRect{x, y, w, h}, pix); err != nil {
			return nil, fmt.Errorf("legacygfx: get pixels: %w", err)
		}
		return pix, nil
	}

	// The back buffer's window rows run bottom-up.
	_, height := r.dev.BackBufferSize()
	if err := r.dev.ReadPixels(IRect{x, height - (y + h), w, h}, pix); err != nil {
		return nil, fmt.Errorf("legacygfx: get pixels: %w", err)
	}
	flipRows(pix, 4*w)
	return pix, nil
}

func flipRows(pix []byte, stride int) {
	if stride == 0 {
		return
	}
	tmp := make([]byte, stride)
	for top, bottom := 0, len(pix)/stride-1; top < bottom; top, bottom = top+1, bottom-1 {
		a := pix[top*stride : (top+1)*stride]
		b := pix[bottom*stride : (bottom+1)*stride]
		copy(tmp, a)
		copy(a, b)
		copy(b, tmp)
	}
}

// DumpDynamicTextures snapshots every surface slot, holes included, for a
// save game. It blocks like DumpSprite.
func (r *Renderer) DumpDynamicTextures() (DynamicTextures, error) {
	snap := make(DynamicTextures, 0, r.res.len()-r.res.stock)
	for id := r.res.stock; id < r.res.len(); id++ {
		_, _, w, h, ok := r.res.lookup(id)
		if !ok {
			snap = append(snap, nil)
			continue
		}
		pix, err := r.DumpSprite(AtlasRef{AtlasID: id, W: w, H: h})
		if err != nil {
			return nil, fmt.Errorf("legacygfx: dump surface %d: %w", id, err)
		}
		snap = append(snap, &TextureSnapshot{Width: w, Height: h, Pixels: pix})
	}
	return snap, nil
}

// UploadDynamicTextures replaces every surface with the contents of snap.
// Existing surfaces are deleted first; the snapshot's entries are then
// recreated in order, so slot i of the snapshot becomes id
// StockAtlasCount+i again and refs saved alongside it stay valid.
func (r *Renderer) UploadDynamicTextures(snap DynamicTextures) error {
	maxSize := r.dev.MaxTextureSize()
	for i, s := range snap {
		if s == nil {
			continue
		}
		if s.Width <= 0 || s.Height <= 0 || s.Width > maxSize || s.Height > maxSize {
			return fmt.Errorf("legacygfx: upload dynamic textures: entry %d has invalid size %dx%d", i, s.Width, s.Height)
		}
		if len(s.Pixels) != 4*s.Width*s.Height {
			return fmt.Errorf("legacygfx: upload dynamic textures: %dx%d entry has %d bytes", s.Width, s.Height, len(s.Pixels))
		}
	}

	if r.target != noTarget {
		r.ResetTarget()
	}
	r.flush(flushFrame)
	for id := r.res.stock; id < r.res.len(); id++ {
		if tex, fb, _, _, ok := r.res.lookup(id); ok {
			r.dev.DeleteFramebuffer(fb)
			r.dev.DeleteTexture(tex)
		}
	}
	r.res.truncate(r.res.stock)

	for i, s := range snap {
		if s == nil {
			r.res.append(0, 0, 0, 0)
			continue
		}
		tex, fb, err := r.allocSurface(s.Width, s.Height)
		if err != nil {
			return fmt.Errorf("legacygfx: restore surface %d: %w", r.res.stock+i, err)
		}
		r.res.append(tex, fb, s.Width, s.Height)
		if err := r.dev.UploadTexture(tex, IRect{0, 0, s.Width, s.Height}, s.Pixels); err != nil {
			return fmt.Errorf("legacygfx: restore surface %d: %w", r.res.stock+i, err)
		}
	}
	Logger().Debug("legacygfx: dynamic textures restored", slog.Int("slots", len(snap)))
	return nil
}

// SetTarget directs drawing to a surface. The viewport and scissor cover the
// whole surface and the camera maps it one to one; ResetTarget restores the
// back buffer's camera.
func (r *Renderer) SetTarget(ref AtlasRef) error {
	id := ref.AtlasID
	if id >= 0 && id < r.res.stock {
		return ErrStockTarget
	}
	_, fb, w, h, ok := r.res.lookup(id)
	if !ok {
		return ErrStaleRef
	}
	if id == r.target {
		return nil
	}
	r.flush(flushTarget)
	if err := r.dev.BindFramebuffer(fb); err != nil {
		return fmt.Errorf("legacygfx: set target: %w", err)
	}
	if r.target == noTarget {
		r.backBuffer = savedCamera{view: r.view, proj: r.proj, viewport: r.viewport}
	}
	r.target = id
	r.setViewportScissor(IRect{0, 0, w, h})
	r.SetProjectionOrtho(0, 0, float64(w), float64(h), 0)
	return nil
}

// ResetTarget directs drawing back to the back buffer.
func (r *Renderer) ResetTarget() {
	if r.target == noTarget {
		return
	}
	r.flush(flushTarget)
	mustDraw(r.dev.BindFramebuffer(BackBuffer))
	r.target = noTarget
	r.setViewportScissor(r.backBuffer.viewport)
	r.SetViewProjMatrix(r.backBuffer.view, r.backBuffer.proj)
}

// Target returns a ref spanning the active surface, or false when drawing
// goes to the back buffer.
func (r *Renderer) Target() (AtlasRef, bool) {
	if r.target == noTarget {
		return AtlasRef{}, false
	}
	_, _, w, h, _ := r.res.lookup(r.target)
	return AtlasRef{AtlasID: r.target, W: w, H: h}, true
}
