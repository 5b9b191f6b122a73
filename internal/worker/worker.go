// Package worker contains methods for worker to init at start, and to process tasks
package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/fnodes/ImageScaler/internal/model"
	"github.com/fnodes/ImageScaler/internal/node"
	"github.com/fnodes/ImageScaler/internal/planner"
	"github.com/fnodes/ImageScaler/internal/service"
	"github.com/fnodes/ImageScaler/internal/tensor"
	kafkago "github.com/segmentio/kafka-go"
	wbfkafka "github.com/wb-go/wbf/kafka"
)

type TaskWorkerService interface {
	UpdateStatus(ctx context.Context, id string, newStat model.Status) error
	SaveResult(ctx context.Context, res *model.Task) error
	Get(ctx context.Context, id string) (*model.Task, error)
}

type Worker struct {
	storage          service.ObjectStorage
	service          TaskWorkerService
	queue            <-chan kafkago.Message
	consumer         *wbfkafka.Consumer
	resultPrefix     string
	resultMaskPrefix string
}

func NewWorkerInstance(strg service.ObjectStorage, svc TaskWorkerService, q <-chan kafkago.Message, cons *wbfkafka.Consumer, resPr, resMaskPr string) *Worker {
	return &Worker{storage: strg, service: svc, queue: q, consumer: cons, resultPrefix: resPr, resultMaskPrefix: resMaskPr}
}

func (w *Worker) StartWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-w.queue:
			if !ok {
				log.Println("Queue channel closed, stopping worker...")
				return
			}
			id := string(msg.Key)
			if err := w.initProcessor(ctx, id); err != nil && !errors.Is(err, model.ErrTaskNotFound) {
				log.Printf("Task %s failed: %v", id, err)
				continue
			}
			if err := w.consumer.Commit(ctx, msg); err != nil {
				log.Printf("Failed to commit queue-message: %v", err)
			}
		}
	}
}

func (w *Worker) initProcessor(ctx context.Context, id string) error {
	task, err := w.service.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("Worker failed to fetch task info %q from DB: %w", id, err)
	}

	switch task.Status {
	case model.StatusDone:
		return nil
	case model.StatusInProgress:
		return fmt.Errorf("already in progress")
	}

	// A done-but-not-marked task can appear after a crash between Put and SaveResult
	if strings.Contains(task.ResultKey, w.resultPrefix) {
		if err := w.service.UpdateStatus(ctx, id, model.StatusDone); err != nil {
			return fmt.Errorf("failed to update status of already-done task in DB: %w", err)
		}
		return nil
	}

	if err := w.service.UpdateStatus(ctx, id, model.StatusInProgress); err != nil {
		return fmt.Errorf("failed to update status of task %q to `in_progress` in DB: %w", id, err)
	}

	if pErr := w.processTask(ctx, task); pErr != nil {
		if uErr := w.service.UpdateStatus(ctx, id, model.StatusFailed); uErr != nil {
			return fmt.Errorf("failed to set status of task %q to `failed` in DB: %w \nAFTER\n error while processing task: %w", id, uErr, pErr)
		}
		return fmt.Errorf("failed to process task %q: %w", id, pErr)
	}

	return nil
}

func (w *Worker) processTask(ctx context.Context, task *model.Task) error {
	// Fetch the source image
	base, _, err := w.storage.Get(ctx, task.SourceKey)
	if err != nil {
		return fmt.Errorf("worker failed to fetch base-image from storage: %w", err)
	}
	defer closeFileFlow(base)

	pBase, format, err := validateImgFormat(base, false)
	if err != nil {
		return fmt.Errorf("worker failed to validate base-image format: %w", err)
	}

	decoded, err := imaging.Decode(pBase)
	if err != nil {
		return fmt.Errorf("worker failed to decode base-image: %w", err)
	}

	req := &node.Request{Image: tensor.FromImage(decoded)}

	// Fetch the optional input mask
	if task.MaskKey != "" {
		maskFlow, _, err := w.storage.Get(ctx, task.MaskKey)
		if err != nil {
			return fmt.Errorf("worker failed to fetch input mask from storage: %w", err)
		}
		defer closeFileFlow(maskFlow)

		pMask, _, err := validateImgFormat(maskFlow, true)
		if err != nil {
			return fmt.Errorf("worker failed to validate input-mask format: %w", err)
		}

		decodedMask, err := imaging.Decode(pMask)
		if err != nil {
			return fmt.Errorf("worker failed to decode input mask: %w", err)
		}
		req.Mask = tensor.MaskFromImage(decodedMask)
	}

	// Build the node and run it
	transform, err := buildTransform(task)
	if err != nil {
		return fmt.Errorf("worker failed to build %q node: %w", task.Operation, err)
	}

	res, err := transform.Execute(req)
	if err != nil {
		return fmt.Errorf("worker failed to execute %q node: %w", task.Operation, err)
	}

	// Encode and store the result image in the source format
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, res.Image.Frame(0), format); err != nil {
		return fmt.Errorf("worker failed to encode result image: %w", err)
	}

	resCType := model.GetCType[format]
	resKey := w.resultPrefix + task.UID.String() + model.GetImageFileExt[resCType]
	if err := w.storage.Put(ctx, resKey, int64(buf.Len()), resCType, &buf); err != nil {
		return fmt.Errorf("worker failed to put result image to storage: %w", err)
	}
	task.ResultKey = resKey

	// The coverage mask, when the node produced one, always goes out as PNG
	if res.Mask != nil {
		var maskBuf bytes.Buffer
		if err := imaging.Encode(&maskBuf, res.Mask.Frame(0), imaging.PNG); err != nil {
			return fmt.Errorf("worker failed to encode result mask: %w", err)
		}

		maskKey := w.resultMaskPrefix + task.UID.String() + model.GetImageFileExt[model.PNG]
		if err := w.storage.Put(ctx, maskKey, int64(maskBuf.Len()), model.PNG, &maskBuf); err != nil {
			return fmt.Errorf("worker failed to put result mask to storage: %w", err)
		}
		task.ResultMaskKey = maskKey
	}

	task.Status = model.StatusDone

	if err := w.service.SaveResult(ctx, task); err != nil {
		return fmt.Errorf("worker failed to save result to DB: %w", err)
	}
	return nil
}

// buildTransform maps a stored task onto its node. Options were validated
// at creation time; defaults still apply for fields left empty.
func buildTransform(task *model.Task) (node.Transform, error) {
	p := task.Params

	switch task.Operation {
	case model.OpScaleForModel:
		return node.NewSDModelScaler(methodOrDefault(p.Method), planner.ModelPreset(p.ModelPreset))
	case model.OpScaleBySide:
		return node.NewSideScaler(methodOrDefault(p.Method), deref(p.Size, node.DefaultSize), deref(p.Shorter, false))
	case model.OpRotate:
		return node.NewRotate(deref(p.Angle, node.DefaultAngle), deref(p.Expand, node.DefaultExpand))
	case model.OpTrimBorders:
		return node.NewTrimBorders(deref(p.Threshold, node.DefaultThreshold))
	case model.OpAddBorder:
		return node.NewAddBorder(
			deref(p.BorderWidth, node.DefaultBorderWidth),
			deref(p.BorderRatio, node.DefaultBorderRatio),
			deref(p.R, 0), deref(p.G, 0), deref(p.B, 0))
	default:
		return nil, model.ErrIncorrectOp
	}
}

func methodOrDefault(method string) string {
	if method == "" {
		return node.DefaultMethod
	}
	return method
}

func deref[T any](v *T, def T) T {
	if v == nil {
		return def
	}
	return *v
}

func validateImgFormat(r io.ReadCloser, mask bool) (io.Reader, imaging.Format, error) {
	if r == nil {
		return nil, -1, errors.New("nil-reader provided")
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, -1, err
	}

	_, f, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, -1, err
	}

	format, err := imaging.FormatFromExtension(f)
	if err != nil {
		return nil, -1, err
	}

	if mask && format != imaging.PNG {
		return nil, -1, model.ErrUnsupportedMaskFormat
	}

	switch format {
	case imaging.PNG, imaging.JPEG, imaging.GIF:
	default:
		return nil, -1, model.ErrUnsupportedFormat
	}

	return bytes.NewReader(data), format, nil
}

func closeFileFlow(res io.ReadCloser) {
	if res == nil {
		return
	}

	if err := res.Close(); err != nil {
		log.Println("Worker failed to close fileflow:", err)
	}
}
