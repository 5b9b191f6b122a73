// Package imageproc provides the pixel-level operations behind the nodes:
// exact-size resampling, rotation, border trim and border padding. All
// operations take and return tensor values and allocate fresh outputs.
package imageproc

import (
	"errors"
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/fnodes/ImageScaler/internal/tensor"
)

var ErrUnknownMethod = errors.New("unsupported resample method")
var ErrEmptyImage = errors.New("empty image provided")

// Resample kernels keyed by method name. The names follow the host
// pipeline's fixed method list.
var resampleFilters = map[string]imaging.ResampleFilter{
	"lanczos":       imaging.Lanczos,
	"nearest-exact": imaging.NearestNeighbor,
	"bilinear":      imaging.Linear,
	"area":          imaging.Box,
	"bicubic":       imaging.CatmullRom,
}

// Methods lists the supported resample method names in UI order.
var Methods = []string{"lanczos", "nearest-exact", "bilinear", "area", "bicubic"}

func Filter(method string) (imaging.ResampleFilter, error) {
	f, ok := resampleFilters[method]
	if !ok {
		return imaging.ResampleFilter{}, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
	return f, nil
}

// Scale stretches every frame of img to exactly width x height with the
// given method, no aspect-preserving letterboxing. A supplied mask is
// resampled the same way; without one a fully-opaque mask of the target
// size is returned.
func Scale(img *tensor.Image, mask *tensor.Mask, width, height int, method string) (*tensor.Image, *tensor.Mask, error) {
	if img == nil || img.Batch == 0 || img.Width == 0 || img.Height == 0 {
		return nil, nil, ErrEmptyImage
	}
	if width <= 0 || height <= 0 {
		return nil, nil, fmt.Errorf("invalid target size %dx%d", width, height)
	}

	filter, err := Filter(method)
	if err != nil {
		return nil, nil, err
	}

	out := tensor.NewImage(img.Batch, height, width, 3)
	for b := 0; b < img.Batch; b++ {
		resized := imaging.Resize(img.Frame(b), width, height, filter)
		out.PutFrame(b, resized)
	}

	resultMask := tensor.SolidMask(width, height, 1)
	if mask != nil {
		resultMask = tensor.NewMask(mask.Batch, height, width)
		for b := 0; b < mask.Batch; b++ {
			resized := imaging.Resize(mask.Frame(b), width, height, filter)
			frame := tensor.MaskFromImage(resized)
			copy(resultMask.Data[b*height*width:], frame.Data)
		}
	}

	return out, resultMask, nil
}
