// Package node exposes the image-scale operations as plain transforms with
// typed, bounded option structs. The host side (transport and worker here,
// or any other runtime) performs its own registration and dispatch; nothing
// in this package knows how it is being called.
package node

import (
	"errors"

	"github.com/fnodes/ImageScaler/internal/tensor"
)

// ErrOptionRange is returned by a constructor when an option falls outside
// its declared bounds.
var ErrOptionRange = errors.New("option value out of range")

type Request struct {
	Image *tensor.Image
	Mask  *tensor.Mask
}

// Result is the fixed output tuple. Each transform fills the fields its
// signature declares and leaves the rest zero.
type Result struct {
	Image        *tensor.Image
	Mask         *tensor.Mask
	Width        int
	Height       int
	MinDimension int
	BatchCount   int
	Ratio        float64
}

type Transform interface {
	Name() string
	Execute(req *Request) (*Result, error)
}

// Option defaults, matching the declared input fields of each node.
const (
	DefaultMethod        = "lanczos"
	DefaultSize          = 512
	DefaultTargetMaxSize = 1920
	DefaultAngle         = 0.1
	DefaultExpand        = true
	DefaultThreshold     = 10
	DefaultBorderWidth   = 10
	DefaultBorderRatio   = 0.0
)

// DisplayNames maps node names to the names shown by the host UI.
var DisplayNames = map[string]string{
	"GetImageSize":              "Get Image Size",
	"ImageScalerForSDModels":    "Image Scaler for SD Models",
	"ImageScaleBySpecifiedSide": "Image Scale By Specified Side",
	"ComputeImageScaleRatio":    "Compute Image Scale Ratio",
	"ImageRotate":               "Image Rotate",
	"TrimImageBorders":          "Trim Image Borders",
	"AddImageBorder":            "Add Image Border",
}
