package node

import (
	"fmt"

	"github.com/fnodes/ImageScaler/internal/imageproc"
)

// Rotate warps the image by a free angle about its center, optionally
// growing the canvas to keep the whole rotated content visible.
type Rotate struct {
	angle  float64
	expand bool
}

func NewRotate(angle float64, expand bool) (*Rotate, error) {
	if angle < -14096 || angle > 14096 {
		return nil, fmt.Errorf("%w: angle %v", ErrOptionRange, angle)
	}
	return &Rotate{angle: angle, expand: expand}, nil
}

func (*Rotate) Name() string { return "ImageRotate" }

func (n *Rotate) Execute(req *Request) (*Result, error) {
	rotated, err := imageproc.Rotate(req.Image, n.angle, n.expand)
	if err != nil {
		return nil, err
	}

	return &Result{
		Image:  rotated,
		Width:  rotated.Width,
		Height: rotated.Height,
	}, nil
}
