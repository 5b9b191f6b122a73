package transport

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"

	"github.com/fnodes/ImageScaler/internal/imageproc"
	"github.com/fnodes/ImageScaler/internal/model"
	"github.com/fnodes/ImageScaler/internal/node"
	"github.com/fnodes/ImageScaler/internal/planner"
	"github.com/wb-go/wbf/ginext"
)

func errorCodeDefiner(err error) int {
	switch {
	case errors.Is(err, model.ErrCommon500):
		return 500
	case errors.Is(err, model.ErrTaskNotFound),
		errors.Is(err, model.ErrResultNotReady),
		errors.Is(err, model.ErrMaskNotAvailable):
		return 404
	case errors.Is(err, model.ErrIncorrectQuery),
		errors.Is(err, model.ErrIncorrectID),
		errors.Is(err, model.ErrIncorrectOp),
		errors.Is(err, model.ErrEmptySource),
		errors.Is(err, model.ErrEmptyMask),
		errors.Is(err, model.ErrIncorrectParams),
		errors.Is(err, model.ErrIncorrectStatus),
		errors.Is(err, model.ErrUnsupportedMaskFormat),
		errors.Is(err, model.ErrUnsupportedFormat),
		errors.Is(err, imageproc.ErrUnknownMethod),
		errors.Is(err, imageproc.ErrEmptyImage),
		errors.Is(err, planner.ErrDegenerateInput),
		errors.Is(err, node.ErrOptionRange):
		return 400
	default:
		return 500
	}
}

func closeFileFlow(res io.ReadCloser) {
	if res == nil {
		return
	}
	if err := res.Close(); err != nil {
		log.Println("Handler failed to close fileflow:", err)
	}
}

// paramsFromForm picks up whatever option fields the form carries; the
// service applies defaults and bounds per operation. A field that is
// present but unparsable is a client error, not a zero value.
func paramsFromForm(ctx *ginext.Context) (model.Params, error) {
	var p model.Params
	var err error

	p.Method = ctx.PostForm("method")
	p.ModelPreset = ctx.PostForm("model_preset")

	if p.Size, err = intField(ctx, "size"); err != nil {
		return p, err
	}
	if p.Shorter, err = boolField(ctx, "shorter"); err != nil {
		return p, err
	}
	if p.Angle, err = floatField(ctx, "angle"); err != nil {
		return p, err
	}
	if p.Expand, err = boolField(ctx, "expand"); err != nil {
		return p, err
	}
	if p.Threshold, err = intField(ctx, "threshold"); err != nil {
		return p, err
	}
	if p.BorderWidth, err = intField(ctx, "border_width"); err != nil {
		return p, err
	}
	if p.BorderRatio, err = floatField(ctx, "border_ratio"); err != nil {
		return p, err
	}
	if p.R, err = intField(ctx, "r"); err != nil {
		return p, err
	}
	if p.G, err = intField(ctx, "g"); err != nil {
		return p, err
	}
	if p.B, err = intField(ctx, "b"); err != nil {
		return p, err
	}

	return p, nil
}

func intField(ctx *ginext.Context, name string) (*int, error) {
	s := ctx.PostForm(name)
	if s == "" {
		return nil, nil
	}
	val, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s=%q", model.ErrIncorrectParams, name, s)
	}
	return &val, nil
}

func floatField(ctx *ginext.Context, name string) (*float64, error) {
	s := ctx.PostForm(name)
	if s == "" {
		return nil, nil
	}
	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s=%q", model.ErrIncorrectParams, name, s)
	}
	return &val, nil
}

func boolField(ctx *ginext.Context, name string) (*bool, error) {
	s := ctx.PostForm(name)
	if s == "" {
		return nil, nil
	}
	val, err := strconv.ParseBool(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s=%q", model.ErrIncorrectParams, name, s)
	}
	return &val, nil
}
