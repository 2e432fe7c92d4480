package legacygfx

import (
	"fmt"
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
)

const ebitenMaxTextureSize = 8192

// EbitenDevice implements Device on Ebitengine images. Every texture is an
// *ebiten.Image and every framebuffer is a view onto its texture's image.
//
// Pixels are stored straight (not premultiplied): uploads write raw bytes,
// vertex colours are passed through unmodified and the legacy blend factors
// are mapped one-to-one, so blending follows the fixed-function maths the
// legacy engine expects.
type EbitenDevice struct {
	width, height int

	back    *ebiten.Image
	front   *ebiten.Image
	scratch *ebiten.Image

	textures     map[Texture]*ebiten.Image
	framebuffers map[Framebuffer]Texture
	nextTexture  Texture
	nextFB       Framebuffer
	bound        Framebuffer

	matrix   mgl32.Mat4
	viewport IRect
	scissor  IRect

	verts []ebiten.Vertex
	inds  []uint32
}

// NewEbitenDevice creates a device with a w×h back buffer.
func NewEbitenDevice(w, h int) (*EbitenDevice, error) {
	if w <= 0 || h <= 0 || w > ebitenMaxTextureSize || h > ebitenMaxTextureSize {
		return nil, fmt.Errorf("legacygfx: ebiten device: invalid back buffer size %dx%d", w, h)
	}
	full := IRect{0, 0, w, h}
	return &EbitenDevice{
		width:        w,
		height:       h,
		back:         newUnmanagedImage(w, h),
		front:        newUnmanagedImage(w, h),
		textures:     make(map[Texture]*ebiten.Image),
		framebuffers: make(map[Framebuffer]Texture),
		matrix:       mgl32.Ident4(),
		viewport:     full,
		scissor:      full,
	}, nil
}

func newUnmanagedImage(w, h int) *ebiten.Image {
	return ebiten.NewImageWithOptions(image.Rect(0, 0, w, h), &ebiten.NewImageOptions{Unmanaged: true})
}

func (d *EbitenDevice) MaxTextureSize() int { return ebitenMaxTextureSize }

func (d *EbitenDevice) BackBufferSize() (int, int) { return d.width, d.height }

// FrontBuffer returns the image holding the most recently presented frame.
func (d *EbitenDevice) FrontBuffer() *ebiten.Image { return d.front }

func (d *EbitenDevice) NewTexture(w, h int) (Texture, error) {
	if w <= 0 || h <= 0 || w > ebitenMaxTextureSize || h > ebitenMaxTextureSize {
		return 0, &DeviceError{Op: fmt.Sprintf("create texture %dx%d", w, h), Code: CodeInvalidValue}
	}
	d.nextTexture++
	d.textures[d.nextTexture] = newUnmanagedImage(w, h)
	return d.nextTexture, nil
}

func (d *EbitenDevice) UploadTexture(t Texture, rect IRect, pix []byte) error {
	img, ok := d.textures[t]
	if !ok {
		return &DeviceError{Op: "upload texture", Code: CodeInvalidOperation}
	}
	b := img.Bounds()
	if !rectWithin(rect, b.Dx(), b.Dy()) || len(pix) != 4*rect.W*rect.H {
		return &DeviceError{Op: "upload texture", Code: CodeInvalidValue}
	}
	if rect.W == 0 || rect.H == 0 {
		return nil
	}
	sub := img.SubImage(image.Rect(rect.X, rect.Y, rect.X+rect.W, rect.Y+rect.H)).(*ebiten.Image)
	sub.WritePixels(pix)
	return nil
}

func (d *EbitenDevice) DeleteTexture(t Texture) {
	if img, ok := d.textures[t]; ok {
		img.Deallocate()
		delete(d.textures, t)
	}
}

func (d *EbitenDevice) NewFramebuffer(t Texture) (Framebuffer, error) {
	if _, ok := d.textures[t]; !ok {
		return 0, &DeviceError{Op: "create framebuffer", Code: CodeInvalidValue}
	}
	d.nextFB++
	d.framebuffers[d.nextFB] = t
	return d.nextFB, nil
}

func (d *EbitenDevice) DeleteFramebuffer(f Framebuffer) {
	if f == d.bound {
		d.bound = BackBuffer
	}
	delete(d.framebuffers, f)
}

func (d *EbitenDevice) BindFramebuffer(f Framebuffer) error {
	if f != BackBuffer {
		if _, ok := d.framebuffers[f]; !ok {
			return &DeviceError{Op: "bind framebuffer", Code: CodeInvalidOperation}
		}
	}
	d.bound = f
	return nil
}

func (d *EbitenDevice) BoundFramebuffer() Framebuffer { return d.bound }

// surface resolves a framebuffer to its image. flipped reports whether window
// rows run bottom-up in the image (back buffer only).
func (d *EbitenDevice) surface(f Framebuffer) (img *ebiten.Image, flipped bool, err error) {
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

// windowToImage converts a window-coordinate rectangle to image space.
func windowToImage(r IRect, height int, flipped bool) image.Rectangle {
	if flipped {
		return image.Rect(r.X, height-(r.Y+r.H), r.X+r.W, height-r.Y)
	}
	return image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
}

func (d *EbitenDevice) BlitFramebuffer(src Framebuffer, srcRect IRect, dst Texture, dstX, dstY int) error {
	from, flipped, err := d.surface(src)
	if err != nil {
		return err
	}
	to, ok := d.textures[dst]
	if !ok || to == from {
		return &DeviceError{Op: "blit framebuffer", Code: CodeInvalidOperation}
	}
	fb, tb := from.Bounds(), to.Bounds()
	if !rectWithin(srcRect, fb.Dx(), fb.Dy()) ||
		!rectWithin(IRect{dstX, dstY, srcRect.W, srcRect.H}, tb.Dx(), tb.Dy()) {
		return &DeviceError{Op: "blit framebuffer", Code: CodeInvalidValue}
	}
	sub := from.SubImage(windowToImage(srcRect, fb.Dy(), flipped)).(*ebiten.Image)
	var op ebiten.DrawImageOptions
	if flipped {
		// Window row order is bottom-up on the back buffer.
		op.GeoM.Scale(1, -1)
		op.GeoM.Translate(0, float64(srcRect.H))
	}
	op.GeoM.Translate(float64(dstX), float64(dstY))
	op.Blend = ebiten.BlendCopy
	to.DrawImage(sub, &op)
	return nil
}

func (d *EbitenDevice) ReadPixels(rect IRect, dst []byte) error {
	img, flipped, err := d.surface(d.bound)
	if err != nil {
		return err
	}
	b := img.Bounds()
	if !rectWithin(rect, b.Dx(), b.Dy()) || len(dst) < 4*rect.W*rect.H {
		return &DeviceError{Op: "read pixels", Code: CodeInvalidValue}
	}
	if rect.W == 0 || rect.H == 0 {
		return nil
	}
	sub := img.SubImage(windowToImage(rect, b.Dy(), flipped)).(*ebiten.Image)
	if !flipped {
		sub.ReadPixels(dst[:4*rect.W*rect.H])
		return nil
	}
	buf := make([]byte, 4*rect.W*rect.H)
	sub.ReadPixels(buf)
	rowLen := 4 * rect.W
	for row := 0; row < rect.H; row++ {
		srcRow := rect.H - 1 - row
		copy(dst[row*rowLen:(row+1)*rowLen], buf[srcRow*rowLen:(srcRow+1)*rowLen])
	}
	return nil
}

func (d *EbitenDevice) SetMatrix(m mgl32.Mat4) { d.matrix = m }
func (d *EbitenDevice) SetViewport(r IRect)    { d.viewport = r }
func (d *EbitenDevice) SetScissor(r IRect)     { d.scissor = r }

func (d *EbitenDevice) Clear(rgba [4]float32) {
	img, flipped, err := d.surface(d.bound)
	if err != nil {
		return
	}
	b := img.Bounds()
	r := windowToImage(d.scissor, b.Dy(), flipped).Intersect(b)
	if r.Empty() {
		return
	}
	img.SubImage(r).(*ebiten.Image).Fill(color.RGBA{
		R: unitToByte(rgba[0]),
		G: unitToByte(rgba[1]),
		B: unitToByte(rgba[2]),
		A: unitToByte(rgba[3]),
	})
}

func (d *EbitenDevice) Draw(verts []Vertex, state DrawState) error {
	if len(verts)%3 != 0 {
		return &DeviceError{Op: "draw", Code: CodeInvalidValue}
	}
	if !state.validEnums() {
		return &DeviceError{Op: "draw", Code: CodeInvalidEnum}
	}
	src, ok := d.textures[state.Texture]
	if !ok {
		return &DeviceError{Op: "draw", Code: CodeInvalidOperation}
	}
	target, flipped, err := d.surface(d.bound)
	if err != nil {
		return err
	}
	if src == target {
		// Ebitengine cannot sample the image it renders into.
		src = d.copyToScratch(src)
	}

	tb := target.Bounds()
	sb := src.Bounds()
	sw, sh := float32(sb.Dx()), float32(sb.Dy())

	d.verts = d.verts[:0]
	d.inds = d.inds[:0]
	for i := range verts {
		v := &verts[i]
		x, y := clipToWindow(d.matrix, d.viewport, v.Pos)
		if flipped {
			y = float32(tb.Dy()) - y
		}
		d.verts = append(d.verts, ebiten.Vertex{
			DstX:   x,
			DstY:   y,
			SrcX:   v.Tex[0] * sw,
			SrcY:   v.Tex[1] * sh,
			ColorR: v.Blend[0],
			ColorG: v.Blend[1],
			ColorB: v.Blend[2],
			ColorA: v.Blend[3],
		})
		d.inds = append(d.inds, uint32(i))
	}

	dst := target.SubImage(windowToImage(d.scissor, tb.Dy(), flipped)).(*ebiten.Image)
	var op ebiten.DrawTrianglesOptions
	op.Blend = ebitenBlend(state.Blend)
	op.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
	if state.Filter == FilterLinear {
		op.Filter = ebiten.FilterLinear
	} else {
		op.Filter = ebiten.FilterNearest
	}
	dst.DrawTriangles32(d.verts, d.inds, src, &op)
	return nil
}

func (d *EbitenDevice) copyToScratch(src *ebiten.Image) *ebiten.Image {
	b := src.Bounds()
	if d.scratch == nil || d.scratch.Bounds().Dx() < b.Dx() || d.scratch.Bounds().Dy() < b.Dy() {
		if d.scratch != nil {
			d.scratch.Deallocate()
		}
		d.scratch = newUnmanagedImage(b.Dx(), b.Dy())
	}
	var op ebiten.DrawImageOptions
	op.Blend = ebiten.BlendCopy
	d.scratch.DrawImage(src, &op)
	return d.scratch.SubImage(image.Rect(0, 0, b.Dx(), b.Dy())).(*ebiten.Image)
}

func (d *EbitenDevice) Present() error {
	var op ebiten.DrawImageOptions
	op.Blend = ebiten.BlendCopy
	d.front.DrawImage(d.back, &op)
	return nil
}

// clipToWindow transforms a world position by m and maps the result from
// clip space into window coordinates inside viewport.
func clipToWindow(m mgl32.Mat4, viewport IRect, pos [3]float32) (x, y float32) {
	clip := m.Mul4x1(mgl32.Vec4{pos[0], pos[1], pos[2], 1})
	w := clip.W()
	if w == 0 {
		w = 1
	}
	nx, ny := clip.X()/w, clip.Y()/w
	x = float32(viewport.X) + (nx+1)/2*float32(viewport.W)
	y = float32(viewport.Y) + (ny+1)/2*float32(viewport.H)
	return x, y
}

// ebitenBlend returns the ebiten.Blend equivalent of a legacy blend pair.
func ebitenBlend(m BlendMode) ebiten.Blend {
	return ebiten.Blend{
		BlendFactorSourceRGB:        ebitenBlendFactor(m.Src),
		BlendFactorSourceAlpha:      ebitenBlendFactor(m.Src),
		BlendFactorDestinationRGB:   ebitenBlendFactor(m.Dst),
		BlendFactorDestinationAlpha: ebitenBlendFactor(m.Dst),
		BlendOperationRGB:           ebiten.BlendOperationAdd,
		BlendOperationAlpha:         ebiten.BlendOperationAdd,
	}
}

func ebitenBlendFactor(f BlendFactor) ebiten.BlendFactor {
	switch f {
	case BlendZero:
		return ebiten.BlendFactorZero
	case BlendOne:
		return ebiten.BlendFactorOne
	case BlendSrcColour:
		return ebiten.BlendFactorSourceColor
	case BlendInvSrcColour:
		return ebiten.BlendFactorOneMinusSourceColor
	case BlendSrcAlpha:
		return ebiten.BlendFactorSourceAlpha
	case BlendInvSrcAlpha:
		return ebiten.BlendFactorOneMinusSourceAlpha
	case BlendDestAlpha:
		return ebiten.BlendFactorDestinationAlpha
	case BlendInvDestAlpha:
		return ebiten.BlendFactorOneMinusDestinationAlpha
	case BlendDestColour:
		return ebiten.BlendFactorDestinationColor
	case BlendInvDestColour:
		return ebiten.BlendFactorOneMinusDestinationColor
	case BlendSrcAlphaSaturate:
		// No saturate factor in Ebitengine; source alpha is the closest match.
		return ebiten.BlendFactorSourceAlpha
	default:
		return ebiten.BlendFactorOne
	}
}
