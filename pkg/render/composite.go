package render

import (
	"fmt"
	"image"
	"io"
)

// DecodeBackground decodes a caller-supplied background photo. PNG, JPEG,
// GIF and WebP are registered.
func DecodeBackground(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, &CompositeError{Err: fmt.Errorf("decoding background image: %w", err)}
	}
	return img, nil
}

// Composite alpha-blends the rendered foreground over a background image and
// returns a fully opaque result of the foreground's dimensions. The
// background is anchored at its own top-left corner; a larger background is
// cropped, a smaller one leaves the uncovered area blended against black.
func Composite(fg *image.RGBA, bg image.Image) *image.RGBA {
	bounds := fg.Bounds()
	out := image.NewRGBA(bounds)
	bgMin := bg.Bounds().Min
	bgMax := bg.Bounds().Max

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			i := fg.PixOffset(x, y)
			fr, fgreen, fb, fa := fg.Pix[i], fg.Pix[i+1], fg.Pix[i+2], fg.Pix[i+3]

			var br, bgrn, bb uint32
			bx, by := bgMin.X+x-bounds.Min.X, bgMin.Y+y-bounds.Min.Y
			if bx < bgMax.X && by < bgMax.Y {
				r, g, b, _ := bg.At(bx, by).RGBA()
				br, bgrn, bb = r>>8, g>>8, b>>8
			}

			// Foreground pixels are premultiplied, so the blend is
			// fg + bg*(1-alpha). The output is forced opaque.
			inv := uint32(255 - fa)
			out.Pix[i] = fr + uint8((br*inv+127)/255)
			out.Pix[i+1] = fgreen + uint8((bgrn*inv+127)/255)
			out.Pix[i+2] = fb + uint8((bb*inv+127)/255)
			out.Pix[i+3] = 255
		}
	}
	return out
}
