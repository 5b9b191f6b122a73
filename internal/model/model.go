// Package model provides data-structs for internal app-usage
package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

type (
	Status    string
	Operation string
)

const (
	StatusCreated    Status = "created"
	StatusInProgress Status = "in_progress"
	StatusFailed     Status = "failed"
	StatusDone       Status = "done"
)

var StatusMap = map[Status]bool{
	StatusCreated:    true,
	StatusInProgress: true,
	StatusFailed:     true,
	StatusDone:       true,
}

// Async operations - each one maps to a node in internal/node. GetImageSize
// and ComputeImageScaleRatio are served synchronously and never become tasks.
const (
	OpScaleForModel Operation = "scale_sd_model"
	OpScaleBySide   Operation = "scale_by_side"
	OpRotate        Operation = "rotate"
	OpTrimBorders   Operation = "trim_borders"
	OpAddBorder     Operation = "add_border"
)

var OperationsMap = map[Operation]bool{
	OpScaleForModel: true,
	OpScaleBySide:   true,
	OpRotate:        true,
	OpTrimBorders:   true,
	OpAddBorder:     true,
}

//---------------------

type Task struct {
	UID           uuid.UUID   `json:"uid"`
	SourceKey     string      `json:"-"`
	MaskKey       string      `json:"-"`
	ResultKey     string      `json:"-"`
	ResultMaskKey string      `json:"-"`
	Operation     Operation   `json:"operation"`
	Params        Params      `json:"params"`
	Status        Status      `json:"status,omitempty"`
	ErrMsg        StringSlice `json:"error,omitempty"`
	CreatedAt     *time.Time  `json:"created_at,omitempty"`
	UpdatedAt     *time.Time  `json:"updated_at,omitempty"`
}

// Params carries the per-operation option fields. Only the fields relevant
// to the task's operation are set; the rest stay nil and get defaulted
// during validation. Stored as JSONB.
type Params struct {
	Method      string   `json:"method,omitempty"`
	ModelPreset string   `json:"model_preset,omitempty"`
	Size        *int     `json:"size,omitempty"`
	Shorter     *bool    `json:"shorter,omitempty"`
	Angle       *float64 `json:"angle,omitempty"`
	Expand      *bool    `json:"expand,omitempty"`
	Threshold   *int     `json:"threshold,omitempty"`
	BorderWidth *int     `json:"border_width,omitempty"`
	BorderRatio *float64 `json:"border_ratio,omitempty"`
	R           *int     `json:"r,omitempty"`
	G           *int     `json:"g,omitempty"`
	B           *int     `json:"b,omitempty"`
}

//-------------------

type ListRequest struct {
	Page  int    `form:"page"`
	Limit int    `form:"limit"`
	Sort  string `form:"sort"`
	Order string `form:"order"`
}

const (
	ByUUID    = "uid"
	ByCreated = "created"
	OrderASC  = "ascend"
	OrderDESC = "descend"
)

type TaskCreateData struct {
	Operation       string
	Params          Params
	OrigImg         multipart.File
	OrigContentType string
	OrigImgSize     int64
	MaskImg         multipart.File
	MaskContentType string
	MaskImgSize     int64
}

// ------------------

var (
	ErrCommon500             error = errors.New("something went wrong. Try again later") // 500
	ErrIncorrectQuery        error = errors.New("incorrect query parameters")            // 400
	ErrIncorrectID           error = errors.New("incorrect task UUID")                   // 400
	ErrTaskNotFound          error = errors.New("specified task UUID doesn't exist")     // 404
	ErrResultNotReady        error = errors.New("requested task is not processed yet")   // 404
	ErrMaskNotAvailable      error = errors.New("task has no result mask")               // 404
	ErrIncorrectOp           error = errors.New("operation is not supported")            // 400
	ErrEmptySource           error = errors.New("empty/incorrect source image provided") // 400
	ErrEmptyMask             error = errors.New("empty/incorrect mask provided")         // 400
	ErrIncorrectParams       error = errors.New("incorrect operation parameters")        // 400
	ErrIncorrectStatus       error = errors.New("incorrect status provided")             // 400
	ErrUnsupportedMaskFormat error = errors.New("unsupported mask-image format")         // 400
	ErrUnsupportedFormat     error = errors.New("unsupported base image format")         // 400
)

//--------------------

const (
	JPEG = "image/jpeg"
	PNG  = "image/png"
	GIF  = "image/gif"
)

var GetImageFileExt = map[string]string{
	JPEG: ".jpg",
	PNG:  ".png",
	GIF:  ".gif",
}

var InImageTypeMap = map[string]bool{
	JPEG: true,
	PNG:  true,
	GIF:  true,
}

var GetCType = map[imaging.Format]string{
	imaging.JPEG: JPEG,
	imaging.GIF:  GIF,
	imaging.PNG:  PNG,
}

//--------------------

func (p *Params) Scan(value any) error {
	if value == nil {
		*p = Params{}
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("invalid type for Params")
	}

	if err := json.Unmarshal(b, p); err != nil {
		return fmt.Errorf("failed to unmarshal JSONB to Params: %w", err)
	}
	return nil
}

func (p Params) Value() (driver.Value, error) {
	res, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal Params to JSONB: %w", err)
	}

	return res, nil
}

//--------------------

type StringSlice []string

func (s *StringSlice) Scan(value any) error {
	if value == nil {
		*s = []string{}
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("invalid type for StringSlice")
	}

	if err := json.Unmarshal(b, s); err != nil {
		return fmt.Errorf("failed to unmarshal JSONB to []StringSlice: %w", err)
	}
	return nil
}

func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return []byte(`[]`), nil
	}
	res, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal []StringSlice to JSONB: %w", err)
	}

	return res, nil
}
