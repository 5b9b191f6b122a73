package node

import (
	"fmt"

	"github.com/fnodes/ImageScaler/internal/imageproc"
	"github.com/fnodes/ImageScaler/internal/planner"
)

// GetImageSize reports the spatial dimensions and batch count of an image.
type GetImageSize struct{}

func (GetImageSize) Name() string { return "GetImageSize" }

func (GetImageSize) Execute(req *Request) (*Result, error) {
	if req.Image == nil {
		return nil, imageproc.ErrEmptyImage
	}

	return &Result{
		Width:      req.Image.Width,
		Height:     req.Image.Height,
		BatchCount: req.Image.Batch,
	}, nil
}

// ScaleRatio computes the ratio that would bring the image's larger
// dimension to the target size, plus the even-rounded result dimensions.
// It performs no pixel work.
type ScaleRatio struct {
	targetMaxSize int
}

func NewScaleRatio(targetMaxSize int) (*ScaleRatio, error) {
	if targetMaxSize < 0 || targetMaxSize > 99999 {
		return nil, fmt.Errorf("%w: target_max_size %d", ErrOptionRange, targetMaxSize)
	}
	return &ScaleRatio{targetMaxSize: targetMaxSize}, nil
}

func (*ScaleRatio) Name() string { return "ComputeImageScaleRatio" }

func (n *ScaleRatio) Execute(req *Request) (*Result, error) {
	if req.Image == nil {
		return nil, imageproc.ErrEmptyImage
	}

	ratio, w, h, err := planner.PlanByMaxDim(req.Image.Width, req.Image.Height, n.targetMaxSize)
	if err != nil {
		return nil, err
	}

	return &Result{Ratio: ratio, Width: w, Height: h}, nil
}
