package legacygfx

import (
	"fmt"
	"image"
	"image/png"
	"os"
)

// SaveSpritePNG reads ref back and writes it to path as a PNG. It blocks
// like DumpSprite.
func (r *Renderer) SaveSpritePNG(ref AtlasRef, path string) error {
	pix, err := r.DumpSprite(ref)
	if err != nil {
		return err
	}
	img := &image.NRGBA{Pix: pix, Stride: 4 * ref.W, Rect: image.Rect(0, 0, ref.W, ref.H)}
	return writePNG(path, img)
}

// writePNG encodes an image to a PNG file at the given path.
func writePNG(path string, img *image.NRGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("legacygfx: create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("legacygfx: encode %s: %w", path, err)
	}
	return f.Close()
}
