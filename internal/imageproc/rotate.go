package imageproc

import (
	"image"
	"math"

	"github.com/fnodes/ImageScaler/internal/tensor"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Rotate warps the first frame of img by angle degrees (counter-clockwise)
// about its center, always with the cubic kernel. With expand the canvas
// grows to hold the rotated content; without it the canvas keeps the input
// size and anything outside is clipped.
func Rotate(img *tensor.Image, angle float64, expand bool) (*tensor.Image, error) {
	if img == nil || img.Batch == 0 || img.Width == 0 || img.Height == 0 {
		return nil, ErrEmptyImage
	}

	src := img.Frame(0)
	w, h := img.Width, img.Height
	cx, cy := float64(w)/2, float64(h)/2

	theta := angle * math.Pi / 180
	cos, sin := math.Cos(theta), math.Sin(theta)

	// Source-to-destination rotation about (cx, cy); y grows downward, so a
	// positive angle turns counter-clockwise on screen.
	tx := (1-cos)*cx - sin*cy
	ty := sin*cx + (1-cos)*cy

	outW, outH := w, h
	if expand {
		absCos, absSin := math.Abs(cos), math.Abs(sin)
		outW = int(float64(h)*absSin + float64(w)*absCos)
		outH = int(float64(h)*absCos + float64(w)*absSin)

		// Recenter the rotated content on the grown canvas.
		tx += float64(outW)/2 - cx
		ty += float64(outH)/2 - cy
	}

	m := f64.Aff3{
		cos, sin, tx,
		-sin, cos, ty,
	}

	dst := image.NewNRGBA(image.Rect(0, 0, outW, outH))
	draw.CatmullRom.Transform(dst, m, src, src.Bounds(), draw.Src, nil)

	out := tensor.NewImage(1, outH, outW, 3)
	out.PutFrame(0, dst)
	return out, nil
}
