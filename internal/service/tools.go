package service

import (
	"errors"
	"strings"

	"github.com/fnodes/ImageScaler/internal/model"
	"github.com/fnodes/ImageScaler/internal/node"
	"github.com/fnodes/ImageScaler/internal/planner"
)

func validateQueryParams(req *model.ListRequest) {
	// Fill empty values with defaults
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 30
	}
	if req.Sort == "" {
		req.Sort = model.ByCreated
	}
	if req.Order == "" {
		req.Order = model.OrderDESC
	}

	req.Sort = strings.ToLower(strings.TrimSpace(req.Sort))
	switch {
	case strings.Contains(req.Sort, model.ByUUID):
		req.Sort = "task_uid"
	case strings.Contains(req.Sort, model.ByCreated):
		req.Sort = "created_at"
	default:
		req.Sort = "created_at"
	}

	req.Order = strings.ToLower(strings.TrimSpace(req.Order))
	switch {
	case strings.Contains(req.Order, model.OrderASC):
		req.Order = "ASC"
	case strings.Contains(req.Order, model.OrderDESC):
		req.Order = "DESC"
	default:
		req.Order = "DESC"
	}
}

func takesMask(op model.Operation) bool {
	return op == model.OpScaleForModel || op == model.OpScaleBySide
}

func validateNormalizeTaskInfo(raw *model.TaskCreateData, clean *model.Task) error {
	clean.Operation = model.Operation(raw.Operation)
	if !model.OperationsMap[clean.Operation] {
		return model.ErrIncorrectOp
	}

	if raw.OrigImg == nil || raw.OrigImgSize <= 0 || !model.InImageTypeMap[raw.OrigContentType] {
		return model.ErrEmptySource
	}

	// The mask rides along only for the scale operations and must be PNG
	if raw.MaskImg != nil && takesMask(clean.Operation) {
		if raw.MaskImgSize <= 0 {
			return model.ErrEmptyMask
		}
		if raw.MaskContentType != model.PNG {
			return model.ErrUnsupportedMaskFormat
		}
	}

	clean.Params = raw.Params

	return validateNormalizeOperation(clean)
}

// validateNormalizeOperation fills option defaults and proves the options
// build a valid node, so the worker can't fail on them later.
func validateNormalizeOperation(input *model.Task) error {
	p := &input.Params

	var err error
	switch input.Operation {
	case model.OpScaleForModel:
		defaultMethod(p)
		if p.ModelPreset == "" {
			p.ModelPreset = string(planner.PresetSDXL)
		}
		_, err = node.NewSDModelScaler(p.Method, planner.ModelPreset(p.ModelPreset))

	case model.OpScaleBySide:
		defaultMethod(p)
		if p.Size == nil {
			p.Size = ptr(node.DefaultSize)
		}
		if p.Shorter == nil {
			p.Shorter = ptr(false)
		}
		if *p.Size <= 0 {
			// Zero reference side means division by zero downstream
			return model.ErrIncorrectParams
		}
		_, err = node.NewSideScaler(p.Method, *p.Size, *p.Shorter)

	case model.OpRotate:
		if p.Angle == nil {
			p.Angle = ptr(node.DefaultAngle)
		}
		if p.Expand == nil {
			p.Expand = ptr(node.DefaultExpand)
		}
		_, err = node.NewRotate(*p.Angle, *p.Expand)

	case model.OpTrimBorders:
		if p.Threshold == nil {
			p.Threshold = ptr(node.DefaultThreshold)
		}
		_, err = node.NewTrimBorders(*p.Threshold)

	case model.OpAddBorder:
		if p.BorderWidth == nil {
			p.BorderWidth = ptr(node.DefaultBorderWidth)
		}
		if p.BorderRatio == nil {
			p.BorderRatio = ptr(node.DefaultBorderRatio)
		}
		if p.R == nil {
			p.R = ptr(0)
		}
		if p.G == nil {
			p.G = ptr(0)
		}
		if p.B == nil {
			p.B = ptr(0)
		}
		_, err = node.NewAddBorder(*p.BorderWidth, *p.BorderRatio, *p.R, *p.G, *p.B)
	}

	if err != nil {
		if errors.Is(err, node.ErrOptionRange) {
			return model.ErrIncorrectParams
		}
		return err
	}
	return nil
}

func defaultMethod(p *model.Params) {
	if p.Method == "" {
		p.Method = node.DefaultMethod
	}
}

func ptr[T any](v T) *T { return &v }
