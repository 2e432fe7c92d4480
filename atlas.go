package legacygfx

import (
	"fmt"
	"log/slog"
)

// AtlasRef describes a rectangular sub-region of an atlas page or surface
// plus a pivot. Value type; refs into deleted surfaces go stale but stay
// harmless to draw.
type AtlasRef struct {
	AtlasID    int     // resource table index
	X, Y, W, H int     // region within the texture, in pixels
	OriginX    float64 // horizontal pivot, normalized to [0, 1] of W
	OriginY    float64 // vertical pivot, normalized to [0, 1] of H
}

// WithOrigin returns a copy of the ref with a different pivot.
func (r AtlasRef) WithOrigin(ox, oy float64) AtlasRef {
	r.OriginX = ox
	r.OriginY = oy
	return r
}

// AtlasPage is one stock atlas page. Pixels, when non-nil, holds the page's
// initial RGBA contents (4*Width*Height bytes).
type AtlasPage struct {
	Width, Height int
	Pixels        []byte
}

// SpriteUpload is a packed sprite image destined for its place on a page.
// Pixels holds 4*Ref.W*Ref.H RGBA bytes.
type SpriteUpload struct {
	Ref    AtlasRef
	Pixels []byte
}

var whitePixelRGBA = []byte{0xFF, 0xFF, 0xFF, 0xFF}

// BuildAtlases creates the stock atlas pages, uploads every sprite and
// reserves a 1×1 opaque white region used by flat-colour primitives. It must
// be called once, before any surface exists; calling it again panics.
//
// Sprites should be sorted by atlas id: the page is switched only when the
// id changes. The white pixel goes in a free corner of an existing page when
// one exists, otherwise on an extra page, so StockAtlasCount may exceed
// len(pages).
func (r *Renderer) BuildAtlases(pages []AtlasPage, sprites []SpriteUpload) (AtlasRef, error) {
	if !r.res.empty() {
		panic("legacygfx: BuildAtlases called on a non-empty resource table")
	}
	if err := r.validateAtlasInput(pages, sprites); err != nil {
		return AtlasRef{}, err
	}

	white, extra := placeWhitePixel(pages, sprites)
	if extra {
		pages = append(pages[:len(pages):len(pages)], AtlasPage{Width: 1, Height: 1})
		Logger().Warn("legacygfx: white pixel placed on an extra atlas page", slog.Int("page", white.AtlasID))
	}

	if err := r.uploadAtlases(pages, sprites, white); err != nil {
		r.releaseTable()
		return AtlasRef{}, err
	}
	r.res.stock = len(pages)
	r.white = white

	Logger().Info("legacygfx: atlases built",
		slog.Int("pages", len(pages)),
		slog.Int("sprites", len(sprites)))
	return white, nil
}

func (r *Renderer) validateAtlasInput(pages []AtlasPage, sprites []SpriteUpload) error {
	maxSize := r.dev.MaxTextureSize()
	for i, p := range pages {
		if p.Width <= 0 || p.Height <= 0 || p.Width > maxSize || p.Height > maxSize {
			return fmt.Errorf("legacygfx: atlas page %d: invalid size %dx%d", i, p.Width, p.Height)
		}
		if p.Pixels != nil && len(p.Pixels) != 4*p.Width*p.Height {
			return fmt.Errorf("legacygfx: atlas page %d: have %d bytes, want %d", i, len(p.Pixels), 4*p.Width*p.Height)
		}
	}
	for i, s := range sprites {
		ref := s.Ref
		if ref.AtlasID < 0 || ref.AtlasID >= len(pages) {
			return fmt.Errorf("legacygfx: sprite %d: atlas id %d out of range", i, ref.AtlasID)
		}
		page := pages[ref.AtlasID]
		if !rectWithin(IRect{ref.X, ref.Y, ref.W, ref.H}, page.Width, page.Height) {
			return fmt.Errorf("legacygfx: sprite %d: region %dx%d+%d+%d outside page %d",
				i, ref.W, ref.H, ref.X, ref.Y, ref.AtlasID)
		}
		if len(s.Pixels) != 4*ref.W*ref.H {
			return fmt.Errorf("legacygfx: sprite %d: have %d bytes, want %d", i, len(s.Pixels), 4*ref.W*ref.H)
		}
	}
	return nil
}

func (r *Renderer) uploadAtlases(pages []AtlasPage, sprites []SpriteUpload, white AtlasRef) error {
	for i, p := range pages {
		tex, err := r.dev.NewTexture(p.Width, p.Height)
		if err != nil {
			return fmt.Errorf("legacygfx: atlas page %d: %w", i, err)
		}
		r.res.append(tex, 0, p.Width, p.Height)
		if p.Pixels != nil {
			if err := r.dev.UploadTexture(tex, IRect{0, 0, p.Width, p.Height}, p.Pixels); err != nil {
				return fmt.Errorf("legacygfx: atlas page %d: %w", i, err)
			}
		}
	}

	current := -1
	var tex Texture
	switches := 0
	for i, s := range sprites {
		if s.Ref.AtlasID != current {
			current = s.Ref.AtlasID
			tex = r.res.textures[current]
			switches++
		}
		ref := s.Ref
		if err := r.dev.UploadTexture(tex, IRect{ref.X, ref.Y, ref.W, ref.H}, s.Pixels); err != nil {
			return fmt.Errorf("legacygfx: sprite %d: %w", i, err)
		}
	}
	if len(sprites) > 0 {
		Logger().Debug("legacygfx: sprites uploaded", slog.Int("page_switches", switches))
	}

	if err := r.dev.UploadTexture(r.res.textures[white.AtlasID], IRect{white.X, white.Y, 1, 1}, whitePixelRGBA); err != nil {
		return fmt.Errorf("legacygfx: white pixel: %w", err)
	}

	for i := range pages {
		fb, err := r.dev.NewFramebuffer(r.res.textures[i])
		if err != nil {
			return fmt.Errorf("legacygfx: atlas page %d framebuffer: %w", i, err)
		}
		r.res.framebuffers[i] = fb
	}
	return nil
}

// placeWhitePixel finds a page corner no sprite covers. Later pages are
// tried first since they are usually the least full. When every corner is
// taken, the pixel goes on a new page appended after the given ones.
func placeWhitePixel(pages []AtlasPage, sprites []SpriteUpload) (ref AtlasRef, extraPage bool) {
	for id := len(pages) - 1; id >= 0; id-- {
		p := pages[id]
		corners := [4][2]int{
			{p.Width - 1, p.Height - 1},
			{0, p.Height - 1},
			{p.Width - 1, 0},
			{0, 0},
		}
		for _, c := range corners {
			if !pixelCovered(sprites, id, c[0], c[1]) {
				return AtlasRef{AtlasID: id, X: c[0], Y: c[1], W: 1, H: 1}, false
			}
		}
	}
	return AtlasRef{AtlasID: len(pages), W: 1, H: 1}, true
}

func pixelCovered(sprites []SpriteUpload, page, x, y int) bool {
	for _, s := range sprites {
		ref := s.Ref
		if ref.AtlasID == page && x >= ref.X && x < ref.X+ref.W && y >= ref.Y && y < ref.Y+ref.H {
			return true
		}
	}
	return false
}

// WhitePixel returns the reserved 1×1 white region.
func (r *Renderer) WhitePixel() AtlasRef { return r.white }

// StockAtlasCount returns the number of stock atlas pages, including any
// extra page created for the white pixel.
func (r *Renderer) StockAtlasCount() int { return r.res.stock }

// TextureCount returns the length of the resource table, free slots included.
func (r *Renderer) TextureCount() int { return r.res.len() }

// releaseTable deletes every device resource in the table and empties it.
func (r *Renderer) releaseTable() {
	for i := range r.res.textures {
		if fb := r.res.framebuffers[i]; fb != 0 {
			r.dev.DeleteFramebuffer(fb)
		}
		if tex := r.res.textures[i]; tex != 0 {
			r.dev.DeleteTexture(tex)
		}
	}
	r.res.truncate(0)
	r.res.stock = 0
}
