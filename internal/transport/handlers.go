// Package transport provides methods for processing requests from endpoints
package transport

import (
	"context"
	"io"
	"log"

	"github.com/disintegration/imaging"
	"github.com/fnodes/ImageScaler/internal/model"
	"github.com/fnodes/ImageScaler/internal/node"
	"github.com/fnodes/ImageScaler/internal/tensor"
	"github.com/wb-go/wbf/ginext"
)

type TaskHandler struct {
	service TaskService
}

type TaskService interface {
	Create(ctx context.Context, newTask *model.TaskCreateData) (*model.Task, error)
	Delete(ctx context.Context, id string) error                                    // remove from DB and from minio
	LoadResult(ctx context.Context, id string) (io.ReadCloser, string, error)       // download the result image
	LoadResultMask(ctx context.Context, id string) (io.ReadCloser, string, error)   // download the result coverage mask
	GetList(ctx context.Context, req *model.ListRequest) ([]model.Task, error)      // paginated listing
	Get(ctx context.Context, id string) (*model.Task, error)                        // single task metadata
}

func NewTaskHandler(svc TaskService) *TaskHandler {
	return &TaskHandler{
		service: svc,
	}
}

func (h TaskHandler) SimplePinger(ctx *ginext.Context) {
	ctx.JSON(200, map[string]string{"message": "pong"})
}

func (h TaskHandler) Create(ctx *ginext.Context) {
	var newTaskRaw model.TaskCreateData
	newTaskRaw.Operation = ctx.PostForm("operation")

	params, err := paramsFromForm(ctx)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}
	newTaskRaw.Params = params

	// Source image
	imageFile, imageHeader, err := ctx.Request.FormFile("image")
	if err != nil {
		ctx.JSON(400, map[string]string{"error": "image is required"})
		return
	}
	defer closeFileFlow(imageFile)
	newTaskRaw.OrigImg = imageFile
	newTaskRaw.OrigContentType = imageHeader.Header.Get("Content-Type")
	newTaskRaw.OrigImgSize = imageHeader.Size

	// Optional input mask
	maskFile, maskHeader, err := ctx.Request.FormFile("mask")
	if err == nil {
		defer closeFileFlow(maskFile)
		newTaskRaw.MaskImg = maskFile
		newTaskRaw.MaskContentType = maskHeader.Header.Get("Content-Type")
		newTaskRaw.MaskImgSize = maskHeader.Size
	}

	res, err := h.service.Create(ctx.Request.Context(), &newTaskRaw)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(201, res)
}

func (h TaskHandler) GetAllTasks(ctx *ginext.Context) {
	var req model.ListRequest

	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(400, map[string]string{"error": "failed to parse query-params"})
		return
	}

	res, err := h.service.GetList(ctx.Request.Context(), &req)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(200, res)
}

func (h TaskHandler) GetTask(ctx *ginext.Context) {
	id := ctx.Param("id")

	res, err := h.service.Get(ctx.Request.Context(), id)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(200, res)
}

func (h TaskHandler) LoadResult(ctx *ginext.Context) {
	h.streamObject(ctx, h.service.LoadResult)
}

func (h TaskHandler) LoadResultMask(ctx *ginext.Context) {
	h.streamObject(ctx, h.service.LoadResultMask)
}

func (h TaskHandler) streamObject(ctx *ginext.Context, load func(context.Context, string) (io.ReadCloser, string, error)) {
	id := ctx.Param("id")

	res, cType, err := load(ctx.Request.Context(), id)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}
	defer closeFileFlow(res)

	ctx.Writer.Header().Set("Content-Type", cType)
	ctx.Writer.WriteHeader(200)
	if n, err := io.Copy(ctx.Writer, res); err != nil {
		log.Printf("Failed to write response at byte %d for task id %q: %v", n, id, err)
	}
}

func (h TaskHandler) Delete(ctx *ginext.Context) {
	id := ctx.Param("id")
	if err := h.service.Delete(ctx.Request.Context(), id); err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.Status(204)
}

// ImageSize answers synchronously: decode the uploaded image and report its
// dimensions without creating a task.
func (h TaskHandler) ImageSize(ctx *ginext.Context) {
	img, ok := decodeUploadedImage(ctx)
	if !ok {
		return
	}

	res, err := node.GetImageSize{}.Execute(&node.Request{Image: img})
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(200, map[string]int{
		"width":  res.Width,
		"height": res.Height,
		"count":  res.BatchCount,
	})
}

// ScaleRatio answers synchronously: decode the uploaded image and report the
// ratio that would bring its larger dimension to target_max_size.
func (h TaskHandler) ScaleRatio(ctx *ginext.Context) {
	img, ok := decodeUploadedImage(ctx)
	if !ok {
		return
	}

	target := node.DefaultTargetMaxSize
	v, err := intField(ctx, "target_max_size")
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}
	if v != nil {
		target = *v
	}

	n, err := node.NewScaleRatio(target)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	res, err := n.Execute(&node.Request{Image: img})
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(200, map[string]any{
		"rescale_ratio": res.Ratio,
		"width":         res.Width,
		"height":        res.Height,
	})
}

func decodeUploadedImage(ctx *ginext.Context) (*tensor.Image, bool) {
	imageFile, _, err := ctx.Request.FormFile("image")
	if err != nil {
		ctx.JSON(400, map[string]string{"error": "image is required"})
		return nil, false
	}
	defer closeFileFlow(imageFile)

	decoded, err := imaging.Decode(imageFile)
	if err != nil {
		ctx.JSON(400, map[string]string{"error": model.ErrUnsupportedFormat.Error()})
		return nil, false
	}

	return tensor.FromImage(decoded), true
}
