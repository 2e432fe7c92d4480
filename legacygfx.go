package legacygfx

import "math"

// Colour is a packed 24-bit legacy colour laid out as 0xBBGGRR (red in the
// low byte). Alpha is always carried separately.
type Colour uint32

// Common colours.
const (
	ColourBlack Colour = 0x000000
	ColourWhite Colour = 0xFFFFFF
	ColourRed   Colour = 0x0000FF
	ColourGreen Colour = 0x00FF00
	ColourBlue  Colour = 0xFF0000
)

// RGB returns the colour's channels in [0, 1].
func (c Colour) RGB() (r, g, b float32) {
	r = float32(c&0xFF) / 255
	g = float32((c>>8)&0xFF) / 255
	b = float32((c>>16)&0xFF) / 255
	return
}

// RGBA returns the colour with the given alpha as straight (not
// premultiplied) float components.
func (c Colour) RGBA(alpha float64) [4]float32 {
	r, g, b := c.RGB()
	return [4]float32{r, g, b, float32(clamp01(alpha))}
}

// MakeColour packs 8-bit channels into a Colour.
func MakeColour(r, g, b uint8) Colour {
	return Colour(r) | Colour(g)<<8 | Colour(b)<<16
}

// BlendFactor is an engine-neutral blend factor. Devices translate it to their
// own tokens at the draw boundary.
type BlendFactor uint8

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcColour
	BlendInvSrcColour
	BlendSrcAlpha
	BlendInvSrcAlpha
	BlendDestAlpha
	BlendInvDestAlpha
	BlendDestColour
	BlendInvDestColour
	BlendSrcAlphaSaturate
)

// BlendMode is a source/destination blend factor pair.
type BlendMode struct {
	Src, Dst BlendFactor
}

// Predefined blend modes matching the legacy bm_* constants.
var (
	BlendNormal   = BlendMode{BlendSrcAlpha, BlendInvSrcAlpha}
	BlendAdd      = BlendMode{BlendSrcAlpha, BlendOne}
	BlendSubtract = BlendMode{BlendZero, BlendInvSrcColour}
	BlendMax      = BlendMode{BlendSrcAlpha, BlendInvSrcColour}
)

// FilterMode selects texture sampling for a batch.
type FilterMode uint8

const (
	FilterNearest FilterMode = iota // no pixel interpolation
	FilterLinear                    // bilinear pixel interpolation
)

// Rect is an axis-aligned rectangle with its origin at the top-left and Y
// increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// IRect is an integer pixel rectangle used for viewports, scissors and
// read-backs.
type IRect struct {
	X, Y, W, H int
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}
