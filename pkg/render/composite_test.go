package render

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

func solidRGBA(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestCompositeOpaqueForeground(t *testing.T) {
	fg := solidRGBA(4, 4, color.RGBA{R: 255, A: 255})
	bg := solidRGBA(4, 4, color.RGBA{G: 255, A: 255})

	out := Composite(fg, bg)

	if got := out.RGBAAt(2, 2); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("opaque foreground should win: got %+v", got)
	}
}

func TestCompositeTransparentForeground(t *testing.T) {
	fg := solidRGBA(4, 4, color.RGBA{})
	bg := solidRGBA(4, 4, color.RGBA{G: 255, A: 255})

	out := Composite(fg, bg)

	if got := out.RGBAAt(1, 3); got != (color.RGBA{G: 255, A: 255}) {
		t.Errorf("background should show through: got %+v", got)
	}
}

func TestCompositeBlend(t *testing.T) {
	// Premultiplied half-transparent white over solid blue.
	fg := solidRGBA(2, 2, color.RGBA{R: 128, G: 128, B: 128, A: 128})
	bg := solidRGBA(2, 2, color.RGBA{B: 255, A: 255})

	out := Composite(fg, bg)

	got := out.RGBAAt(0, 0)
	if got.A != 255 {
		t.Errorf("output must be opaque, got alpha %d", got.A)
	}
	// r = 128 + 0*(127/255), b = 128 + 255*127/255
	if got.R != 128 || got.G != 128 || got.B != 255 {
		t.Errorf("unexpected blend: %+v", got)
	}
}

func TestCompositeLargerBackgroundCropsTopLeft(t *testing.T) {
	fg := solidRGBA(2, 2, color.RGBA{})
	bg := image.NewRGBA(image.Rect(0, 0, 4, 4))
	bg.SetRGBA(0, 0, color.RGBA{R: 10, A: 255})
	bg.SetRGBA(1, 1, color.RGBA{R: 20, A: 255})
	bg.SetRGBA(3, 3, color.RGBA{R: 99, A: 255})

	out := Composite(fg, bg)

	if out.Bounds().Dx() != 2 || out.Bounds().Dy() != 2 {
		t.Fatalf("output must keep the foreground size, got %v", out.Bounds())
	}
	if got := out.RGBAAt(0, 0); got.R != 10 {
		t.Errorf("top-left crop expected r=10, got %+v", got)
	}
	if got := out.RGBAAt(1, 1); got.R != 20 {
		t.Errorf("top-left crop expected r=20, got %+v", got)
	}
}

func TestCompositeSmallerBackgroundTolerated(t *testing.T) {
	fg := solidRGBA(4, 4, color.RGBA{})
	bg := solidRGBA(2, 2, color.RGBA{G: 255, A: 255})

	out := Composite(fg, bg)

	if got := out.RGBAAt(0, 0); got.G != 255 {
		t.Errorf("covered area should show the background: %+v", got)
	}
	// Outside the background the transparent foreground blends against
	// nothing, leaving opaque black.
	if got := out.RGBAAt(3, 3); got != (color.RGBA{A: 255}) {
		t.Errorf("uncovered area should be opaque black: %+v", got)
	}
}

func TestDecodeBackground(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, solidRGBA(2, 2, color.RGBA{R: 1, A: 255})); err != nil {
		t.Fatalf("failed to encode fixture: %v", err)
	}

	img, err := DecodeBackground(&buf)
	if err != nil {
		t.Fatalf("DecodeBackground failed: %v", err)
	}
	if img.Bounds().Dx() != 2 {
		t.Errorf("unexpected decoded size: %v", img.Bounds())
	}

	_, err = DecodeBackground(strings.NewReader("not an image"))
	if err == nil {
		t.Fatal("expected an error for undecodable input")
	}
	var compErr *CompositeError
	if !errors.As(err, &compErr) {
		t.Errorf("expected a CompositeError, got %T", err)
	}
}
