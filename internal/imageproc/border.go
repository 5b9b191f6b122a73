package imageproc

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/fnodes/ImageScaler/internal/tensor"
)

// Trim crops the first frame of img to the bounding box of pixels whose
// luminance exceeds threshold (0..255). If nothing exceeds the threshold
// the input is returned unchanged.
func Trim(img *tensor.Image, threshold int) (*tensor.Image, error) {
	if img == nil || img.Batch == 0 || img.Width == 0 || img.Height == 0 {
		return nil, ErrEmptyImage
	}

	frame := img.Frame(0)
	minX, minY := img.Width, img.Height
	maxX, maxY := -1, -1

	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			px := frame.NRGBAAt(x, y)
			lum := 0.299*float64(px.R) + 0.587*float64(px.G) + 0.114*float64(px.B)
			if int(lum) > threshold {
				if x < minX {
					minX = x
				}
				if x > maxX {
					maxX = x
				}
				if y < minY {
					minY = y
				}
				if y > maxY {
					maxY = y
				}
			}
		}
	}

	// Entirely below threshold: nothing to crop to.
	if maxX < 0 {
		return img, nil
	}

	cropped := imaging.Crop(frame, image.Rect(minX, minY, maxX+1, maxY+1))
	out := tensor.NewImage(1, cropped.Bounds().Dy(), cropped.Bounds().Dx(), 3)
	out.PutFrame(0, cropped)
	return out, nil
}

// AddBorder pastes the first frame of img centered on a canvas filled with
// the given color. The border width is max(width, ratio*min(h,w)). The
// returned mask is 0 over the pasted content and 1 over the border.
func AddBorder(img *tensor.Image, width int, ratio float64, r, g, b uint8) (*tensor.Image, *tensor.Mask, error) {
	if img == nil || img.Batch == 0 || img.Width == 0 || img.Height == 0 {
		return nil, nil, ErrEmptyImage
	}

	border := width
	if byRatio := int(float64(min(img.Height, img.Width)) * ratio); byRatio > border {
		border = byRatio
	}

	newW := img.Width + 2*border
	newH := img.Height + 2*border

	canvas := imaging.New(newW, newH, color.NRGBA{R: r, G: g, B: b, A: 255})
	bordered := imaging.Paste(canvas, img.Frame(0), image.Pt(border, border))

	out := tensor.NewImage(1, newH, newW, 3)
	out.PutFrame(0, bordered)

	mask := tensor.SolidMask(newW, newH, 1)
	for y := border; y < border+img.Height; y++ {
		for x := border; x < border+img.Width; x++ {
			mask.Set(0, y, x, 0)
		}
	}

	return out, mask, nil
}
