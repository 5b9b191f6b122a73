package node

import (
	"fmt"

	"github.com/fnodes/ImageScaler/internal/imageproc"
)

// TrimBorders crops away near-uniform dark borders: pixels whose luminance
// stays at or below the threshold count as border.
type TrimBorders struct {
	threshold int
}

func NewTrimBorders(threshold int) (*TrimBorders, error) {
	if threshold < 0 || threshold > 14096 {
		return nil, fmt.Errorf("%w: threshold %d", ErrOptionRange, threshold)
	}
	return &TrimBorders{threshold: threshold}, nil
}

func (*TrimBorders) Name() string { return "TrimImageBorders" }

func (n *TrimBorders) Execute(req *Request) (*Result, error) {
	trimmed, err := imageproc.Trim(req.Image, n.threshold)
	if err != nil {
		return nil, err
	}

	return &Result{
		Image:  trimmed,
		Width:  trimmed.Width,
		Height: trimmed.Height,
	}, nil
}

// AddBorder pads the image with a colored border and reports the border
// region as a coverage mask.
type AddBorder struct {
	width   int
	ratio   float64
	r, g, b uint8
}

func NewAddBorder(width int, ratio float64, r, g, b int) (*AddBorder, error) {
	if width < 0 || width > 1000 {
		return nil, fmt.Errorf("%w: border_width %d", ErrOptionRange, width)
	}
	if ratio < 0 || ratio > 1 {
		return nil, fmt.Errorf("%w: border_ratio %v", ErrOptionRange, ratio)
	}
	for _, c := range []int{r, g, b} {
		if c < 0 || c > 255 {
			return nil, fmt.Errorf("%w: color component %d", ErrOptionRange, c)
		}
	}
	return &AddBorder{width: width, ratio: ratio, r: uint8(r), g: uint8(g), b: uint8(b)}, nil
}

func (*AddBorder) Name() string { return "AddImageBorder" }

func (n *AddBorder) Execute(req *Request) (*Result, error) {
	bordered, mask, err := imageproc.AddBorder(req.Image, n.width, n.ratio, n.r, n.g, n.b)
	if err != nil {
		return nil, err
	}

	return &Result{
		Image:  bordered,
		Mask:   mask,
		Width:  bordered.Width,
		Height: bordered.Height,
	}, nil
}
