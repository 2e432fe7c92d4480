package legacygfx

import (
	"image"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
)

func TestEbitenBlendFactor(t *testing.T) {
	tests := []struct {
		in   BlendFactor
		want ebiten.BlendFactor
	}{
		{BlendZero, ebiten.BlendFactorZero},
		{BlendOne, ebiten.BlendFactorOne},
		{BlendSrcColour, ebiten.BlendFactorSourceColor},
		{BlendInvSrcColour, ebiten.BlendFactorOneMinusSourceColor},
		{BlendSrcAlpha, ebiten.BlendFactorSourceAlpha},
		{BlendInvSrcAlpha, ebiten.BlendFactorOneMinusSourceAlpha},
		{BlendDestAlpha, ebiten.BlendFactorDestinationAlpha},
		{BlendInvDestAlpha, ebiten.BlendFactorOneMinusDestinationAlpha},
		{BlendDestColour, ebiten.BlendFactorDestinationColor},
		{BlendInvDestColour, ebiten.BlendFactorOneMinusDestinationColor},
		{BlendSrcAlphaSaturate, ebiten.BlendFactorSourceAlpha},
	}
	for _, tt := range tests {
		if got := ebitenBlendFactor(tt.in); got != tt.want {
			t.Errorf("ebitenBlendFactor(%d) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestEbitenBlendNormal(t *testing.T) {
	b := ebitenBlend(BlendNormal)
	if b.BlendFactorSourceRGB != ebiten.BlendFactorSourceAlpha ||
		b.BlendFactorDestinationRGB != ebiten.BlendFactorOneMinusSourceAlpha ||
		b.BlendOperationRGB != ebiten.BlendOperationAdd {
		t.Errorf("blend = %+v", b)
	}
}

func TestClipToWindow(t *testing.T) {
	vp := IRect{10, 20, 100, 50}
	tests := []struct {
		name string
		pos  [3]float32
		x, y float32
	}{
		{"centre", [3]float32{0, 0, 0}, 60, 45},
		{"bottom-left", [3]float32{-1, -1, 0}, 10, 20},
		{"top-right", [3]float32{1, 1, 0}, 110, 70},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := clipToWindow(mgl32.Ident4(), vp, tt.pos)
			if x != tt.x || y != tt.y {
				t.Errorf("clipToWindow = (%v, %v), want (%v, %v)", x, y, tt.x, tt.y)
			}
		})
	}
}

func TestWindowToImage(t *testing.T) {
	r := IRect{5, 10, 20, 30}
	if got, want := windowToImage(r, 100, false), image.Rect(5, 10, 25, 40); got != want {
		t.Errorf("offscreen = %v, want %v", got, want)
	}
	if got, want := windowToImage(r, 100, true), image.Rect(5, 60, 25, 90); got != want {
		t.Errorf("back buffer = %v, want %v", got, want)
	}
}

func TestNewEbitenPlatformRequiresEbitenDevice(t *testing.T) {
	dev, _ := NewHeadlessDevice(8, 8)
	defer func() {
		if recover() == nil {
			t.Error("expected panic for a non-ebiten device")
		}
	}()
	NewEbitenPlatform(dev, "test")
}
