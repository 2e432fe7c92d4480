package legacygfx

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/draw"
)

const headlessMaxTextureSize = 8192

// DrawCall is a draw recorded by HeadlessDevice together with the state that
// was current when it was issued.
type DrawCall struct {
	State       DrawState
	Framebuffer Framebuffer
	Matrix      mgl32.Mat4
	Viewport    IRect
	Scissor     IRect
	Vertices    []Vertex
}

// HeadlessDevice is a CPU implementation of Device. Textures are straight
// RGBA pixel buffers; draws are recorded rather than rasterized, while
// uploads, blits, clears and read-back operate on real pixels. It is meant
// for servers, replays and tests.
type HeadlessDevice struct {
	width, height int

	back  *image.NRGBA
	front *image.NRGBA

	// MemoryLimit caps the bytes held by textures; NewTexture fails with
	// CodeOutOfMemory past it. Zero means no limit.
	MemoryLimit int
	memory      int

	textures     map[Texture]*image.NRGBA
	framebuffers map[Framebuffer]Texture
	nextTexture  Texture
	nextFB       Framebuffer
	bound        Framebuffer

	matrix   mgl32.Mat4
	viewport IRect
	scissor  IRect

	calls    []DrawCall
	presents int
}

// NewHeadlessDevice creates a device with a w×h back buffer.
func NewHeadlessDevice(w, h int) (*HeadlessDevice, error) {
	if w <= 0 || h <= 0 || w > headlessMaxTextureSize || h > headlessMaxTextureSize {
		return nil, fmt.Errorf("legacygfx: headless device: invalid back buffer size %dx%d", w, h)
	}
	full := IRect{0, 0, w, h}
	return &HeadlessDevice{
		width:        w,
		height:       h,
		back:         image.NewNRGBA(image.Rect(0, 0, w, h)),
		front:        image.NewNRGBA(image.Rect(0, 0, w, h)),
		textures:     make(map[Texture]*image.NRGBA),
		framebuffers: make(map[Framebuffer]Texture),
		matrix:       mgl32.Ident4(),
		viewport:     full,
		scissor:      full,
	}, nil
}

func (d *HeadlessDevice) MaxTextureSize() int { return headlessMaxTextureSize }

func (d *HeadlessDevice) BackBufferSize() (int, int) { return d.width, d.height }

func (d *HeadlessDevice) NewTexture(w, h int) (Texture, error) {
	if w <= 0 || h <= 0 || w > headlessMaxTextureSize || h > headlessMaxTextureSize {
		return 0, &DeviceError{Op: fmt.Sprintf("create texture %dx%d", w, h), Code: CodeInvalidValue}
	}
	if d.MemoryLimit > 0 && d.memory+4*w*h > d.MemoryLimit {
		return 0, &DeviceError{Op: fmt.Sprintf("create texture %dx%d", w, h), Code: CodeOutOfMemory}
	}
	d.nextTexture++
	d.textures[d.nextTexture] = image.NewNRGBA(image.Rect(0, 0, w, h))
	d.memory += 4 * w * h
	return d.nextTexture, nil
}

func (d *HeadlessDevice) UploadTexture(t Texture, rect IRect, pix []byte) error {
	img, ok := d.textures[t]
	if !ok {
		return &DeviceError{Op: "upload texture", Code: CodeInvalidOperation}
	}
	if !rectWithin(rect, img.Rect.Dx(), img.Rect.Dy()) || len(pix) != 4*rect.W*rect.H {
		return &DeviceError{Op: "upload texture", Code: CodeInvalidValue}
	}
	rowLen := 4 * rect.W
	for row := 0; row < rect.H; row++ {
		off := img.PixOffset(rect.X, rect.Y+row)
		copy(img.Pix[off:off+rowLen], pix[row*rowLen:(row+1)*rowLen])
	}
	return nil
}

func (d *HeadlessDevice) DeleteTexture(t Texture) {
	if img, ok := d.textures[t]; ok {
		d.memory -= len(img.Pix)
		delete(d.textures, t)
	}
}

func (d *HeadlessDevice) NewFramebuffer(t Texture) (Framebuffer, error) {
	if _, ok := d.textures[t]; !ok {
		return 0, &DeviceError{Op: "create framebuffer", Code: CodeInvalidValue}
	}
	d.nextFB++
	d.framebuffers[d.nextFB] = t
	return d.nextFB, nil
}

func (d *HeadlessDevice) DeleteFramebuffer(f Framebuffer) {
	if f == d.bound {
		d.bound = BackBuffer
	}
	delete(d.framebuffers, f)
}

func (d *HeadlessDevice) BindFramebuffer(f Framebuffer) error {
	if f != BackBuffer {
		if _, ok := d.framebuffers[f]; !ok {
			return &DeviceError{Op: "bind framebuffer", Code: CodeInvalidOperation}
		}
	}
	d.bound = f
	return nil
}

func (d *HeadlessDevice) BoundFramebuffer() Framebuffer { return d.bound }

// surface resolves a framebuffer to its pixels. flipped reports whether
// window rows run bottom-up in the image, which is the case for the back
// buffer only.
func (d *HeadlessDevice) surface(f Framebuffer) (img *image.NRGBA, flipped bool, err error) {
	if f == BackBuffer {
		return d.back, true, nil
	}
	t, ok := d.framebuffers[f]
	if !ok {
		return nil, false, &DeviceError{Op: "resolve framebuffer", Code: CodeInvalidFramebufferOperation}
	}
	img, ok = d.textures[t]
	if !ok {
		return nil, false, &DeviceError{Op: "resolve framebuffer", Code: CodeInvalidFramebufferOperation}
	}
	return img, false, nil
}

// imageRow maps window row y of a surface to an image row.
func imageRow(y, height int, flipped bool) int {
	if flipped {
		return height - 1 - y
	}
	return y
}

func (d *HeadlessDevice) BlitFramebuffer(src Framebuffer, srcRect IRect, dst Texture, dstX, dstY int) error {
	from, flipped, err := d.surface(src)
	if err != nil {
		return err
	}
	to, ok := d.textures[dst]
	if !ok {
		return &DeviceError{Op: "blit framebuffer", Code: CodeInvalidOperation}
	}
	h := from.Rect.Dy()
	if !rectWithin(srcRect, from.Rect.Dx(), h) ||
		!rectWithin(IRect{dstX, dstY, srcRect.W, srcRect.H}, to.Rect.Dx(), to.Rect.Dy()) {
		return &DeviceError{Op: "blit framebuffer", Code: CodeInvalidValue}
	}
	for row := 0; row < srcRect.H; row++ {
		sy := imageRow(srcRect.Y+row, h, flipped)
		draw.Copy(to, image.Pt(dstX, dstY+row), from,
			image.Rect(srcRect.X, sy, srcRect.X+srcRect.W, sy+1), draw.Src, nil)
	}
	return nil
}

func (d *HeadlessDevice) ReadPixels(rect IRect, dst []byte) error {
	img, flipped, err := d.surface(d.bound)
	if err != nil {
		return err
	}
	h := img.Rect.Dy()
	if !rectWithin(rect, img.Rect.Dx(), h) || len(dst) < 4*rect.W*rect.H {
		return &DeviceError{Op: "read pixels", Code: CodeInvalidValue}
	}
	rowLen := 4 * rect.W
	for row := 0; row < rect.H; row++ {
		off := img.PixOffset(rect.X, imageRow(rect.Y+row, h, flipped))
		copy(dst[row*rowLen:(row+1)*rowLen], img.Pix[off:off+rowLen])
	}
	return nil
}

func (d *HeadlessDevice) SetMatrix(m mgl32.Mat4) { d.matrix = m }
func (d *HeadlessDevice) SetViewport(r IRect)    { d.viewport = r }
func (d *HeadlessDevice) SetScissor(r IRect)     { d.scissor = r }

func (d *HeadlessDevice) Clear(rgba [4]float32) {
	img, flipped, err := d.surface(d.bound)
	if err != nil {
		return
	}
	h := img.Rect.Dy()
	s := d.scissor
	var r image.Rectangle
	if flipped {
		r = image.Rect(s.X, h-(s.Y+s.H), s.X+s.W, h-s.Y)
	} else {
		r = image.Rect(s.X, s.Y, s.X+s.W, s.Y+s.H)
	}
	c := color.NRGBA{R: unitToByte(rgba[0]), G: unitToByte(rgba[1]), B: unitToByte(rgba[2]), A: unitToByte(rgba[3])}
	draw.Draw(img, r.Intersect(img.Rect), &image.Uniform{C: c}, image.Point{}, draw.Src)
}

func (d *HeadlessDevice) Draw(verts []Vertex, state DrawState) error {
	if len(verts)%3 != 0 {
		return &DeviceError{Op: "draw", Code: CodeInvalidValue}
	}
	if !state.validEnums() {
		return &DeviceError{Op: "draw", Code: CodeInvalidEnum}
	}
	if _, ok := d.textures[state.Texture]; !ok {
		return &DeviceError{Op: "draw", Code: CodeInvalidOperation}
	}
	if _, _, err := d.surface(d.bound); err != nil {
		return err
	}
	d.calls = append(d.calls, DrawCall{
		State:       state,
		Framebuffer: d.bound,
		Matrix:      d.matrix,
		Viewport:    d.viewport,
		Scissor:     d.scissor,
		Vertices:    append([]Vertex(nil), verts...),
	})
	return nil
}

func (d *HeadlessDevice) Present() error {
	draw.Copy(d.front, image.Point{}, d.back, d.back.Rect, draw.Src, nil)
	d.presents++
	return nil
}

// DrawCalls returns the draws recorded since the last ResetDrawCalls.
func (d *HeadlessDevice) DrawCalls() []DrawCall { return d.calls }

// ResetDrawCalls forgets all recorded draws.
func (d *HeadlessDevice) ResetDrawCalls() { d.calls = d.calls[:0] }

// Presents returns how many times Present has been called.
func (d *HeadlessDevice) Presents() int { return d.presents }

// FrontBuffer returns the most recently presented frame.
func (d *HeadlessDevice) FrontBuffer() *image.NRGBA { return d.front }

// TextureMemory returns the bytes held by live textures.
func (d *HeadlessDevice) TextureMemory() int { return d.memory }

// LiveTextures returns the number of textures not yet deleted.
func (d *HeadlessDevice) LiveTextures() int { return len(d.textures) }

// Viewport returns the current viewport rectangle.
func (d *HeadlessDevice) Viewport() IRect { return d.viewport }

// Scissor returns the current scissor rectangle.
func (d *HeadlessDevice) Scissor() IRect { return d.scissor }

// Matrix returns the current combined matrix.
func (d *HeadlessDevice) Matrix() mgl32.Mat4 { return d.matrix }

func rectWithin(r IRect, w, h int) bool {
	return r.X >= 0 && r.Y >= 0 && r.W >= 0 && r.H >= 0 && r.X+r.W <= w && r.Y+r.H <= h
}

func unitToByte(v float32) uint8 {
	return uint8(math.Round(clamp01(float64(v)) * 255))
}
