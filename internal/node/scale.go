package node

import (
	"fmt"

	"github.com/fnodes/ImageScaler/internal/imageproc"
	"github.com/fnodes/ImageScaler/internal/planner"
	"github.com/fnodes/ImageScaler/internal/tensor"
)

// SDModelScaler resamples an image to the pixel budget of a diffusion-model
// preset, keeping aspect ratio.
type SDModelScaler struct {
	method string
	preset planner.ModelPreset
}

func NewSDModelScaler(method string, preset planner.ModelPreset) (*SDModelScaler, error) {
	if _, err := imageproc.Filter(method); err != nil {
		return nil, err
	}
	// Unknown presets are accepted: the planner falls back to the largest budget.
	return &SDModelScaler{method: method, preset: preset}, nil
}

func (*SDModelScaler) Name() string { return "ImageScalerForSDModels" }

func (n *SDModelScaler) Execute(req *Request) (*Result, error) {
	if req.Image == nil {
		return nil, imageproc.ErrEmptyImage
	}

	w, h, err := planner.PlanForModel(req.Image.Width, req.Image.Height, n.preset)
	if err != nil {
		return nil, err
	}

	return scaleResult(req.Image, req.Mask, w, h, n.method)
}

// SideScaler resamples an image so that its shorter or longer side lands on
// the requested length.
type SideScaler struct {
	method  string
	size    int
	shorter bool
}

func NewSideScaler(method string, size int, shorter bool) (*SideScaler, error) {
	if _, err := imageproc.Filter(method); err != nil {
		return nil, err
	}
	if size < 0 || size > 99999 {
		return nil, fmt.Errorf("%w: size %d", ErrOptionRange, size)
	}
	return &SideScaler{method: method, size: size, shorter: shorter}, nil
}

func (*SideScaler) Name() string { return "ImageScaleBySpecifiedSide" }

func (n *SideScaler) Execute(req *Request) (*Result, error) {
	if req.Image == nil {
		return nil, imageproc.ErrEmptyImage
	}

	w, h, err := planner.PlanBySide(req.Image.Width, req.Image.Height, n.size, n.shorter)
	if err != nil {
		return nil, err
	}

	return scaleResult(req.Image, req.Mask, w, h, n.method)
}

func scaleResult(img *tensor.Image, mask *tensor.Mask, w, h int, method string) (*Result, error) {
	scaled, scaledMask, err := imageproc.Scale(img, mask, w, h, method)
	if err != nil {
		return nil, err
	}

	return &Result{
		Image:        scaled,
		Mask:         scaledMask,
		Width:        w,
		Height:       h,
		MinDimension: min(w, h),
	}, nil
}
