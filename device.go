package legacygfx

import "github.com/go-gl/mathgl/mgl32"

// Texture is a device texture handle. Zero is never a valid texture.
type Texture uint32

// Framebuffer is a device framebuffer handle. Zero names the back buffer.
type Framebuffer uint32

// BackBuffer is the default framebuffer.
const BackBuffer Framebuffer = 0

// Vertex is one corner of a batched triangle.
type Vertex struct {
	Pos       [3]float32 // world position
	Tex       [2]float32 // normalized texture coordinate
	Blend     [4]float32 // straight RGBA multiplied into the texel
	AtlasXYWH [4]float32 // normalized atlas region of the source sprite
	Normal    [3]float32 // reserved
}

// DrawState is the per-batch state a device needs to issue one draw.
type DrawState struct {
	Texture Texture
	Blend   BlendMode
	Filter  FilterMode
}

// validEnums reports whether the blend factors and filter are ones every
// device knows how to translate.
func (s DrawState) validEnums() bool {
	return s.Blend.Src <= BlendSrcAlphaSaturate && s.Blend.Dst <= BlendSrcAlphaSaturate && s.Filter <= FilterLinear
}

// Device is the capability set a rendering backend provides: texture and
// framebuffer management, triangle submission, clears and read-back, and the
// front/back buffer swap.
//
// The coordinate conventions are those of OpenGL. Viewport and scissor
// rectangles are given in window coordinates with the origin at the bottom
// left of the bound framebuffer. For an offscreen framebuffer, window row y is
// texture memory row y, so the first uploaded row is window row 0. ReadPixels
// returns rows in window order.
//
// Devices are not safe for concurrent use.
type Device interface {
	// MaxTextureSize is the largest width or height NewTexture accepts.
	MaxTextureSize() int
	// BackBufferSize returns the size of the default framebuffer.
	BackBufferSize() (w, h int)

	NewTexture(w, h int) (Texture, error)
	// UploadTexture replaces the texels in rect with pix (tightly packed
	// RGBA rows, first row at rect.Y).
	UploadTexture(t Texture, rect IRect, pix []byte) error
	DeleteTexture(t Texture)

	// NewFramebuffer creates a framebuffer with t as its colour attachment.
	NewFramebuffer(t Texture) (Framebuffer, error)
	DeleteFramebuffer(f Framebuffer)
	BindFramebuffer(f Framebuffer) error
	BoundFramebuffer() Framebuffer

	// BlitFramebuffer copies src's region into dst at (dstX, dstY) without a
	// CPU round-trip. It does not change the bound framebuffer.
	BlitFramebuffer(src Framebuffer, srcRect IRect, dst Texture, dstX, dstY int) error
	// ReadPixels blocks until the bound framebuffer's region is available.
	ReadPixels(rect IRect, dst []byte) error

	SetMatrix(m mgl32.Mat4)
	SetViewport(r IRect)
	SetScissor(r IRect)
	// Clear fills the scissor region of the bound framebuffer.
	Clear(rgba [4]float32)
	// Draw submits triangles (three vertices each) with the current matrix,
	// viewport and scissor.
	Draw(verts []Vertex, state DrawState) error
	// Present makes the back buffer's contents the displayed frame.
	Present() error
}
