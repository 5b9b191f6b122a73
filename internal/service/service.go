// Package service provides business-logic for the app
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fnodes/ImageScaler/internal/model"
	"github.com/fnodes/ImageScaler/internal/mwlogger"
	"github.com/fnodes/ImageScaler/internal/repository"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/retry"
)

type TaskService struct {
	repo          repository.TaskRepo
	publisher     TaskPublisher
	storage       ObjectStorage
	srcKeyPrefix  string
	maskKeyPrefix string
}

func NewTaskService(taskRepo repository.TaskRepo, pub TaskPublisher, strg ObjectStorage, srcPrefix, maskPrefix string) *TaskService {
	return &TaskService{
		repo:          taskRepo,
		publisher:     pub,
		storage:       strg,
		srcKeyPrefix:  srcPrefix,
		maskKeyPrefix: maskPrefix,
	}
}

// TaskPublisher - queue contract
type TaskPublisher interface {
	SendWithRetry(ctx context.Context, strategy retry.Strategy, key []byte, v []byte) error
}

// ObjectStorage - image storage contract
type ObjectStorage interface {
	Delete(ctx context.Context, key string) error
	Get(ctx context.Context, key string) (output io.ReadCloser, ctype string, err error)
	Put(ctx context.Context, key string, size int64, contentType string, r io.Reader) error
}

// Publish retry strategy - values could move to config later
var retryStrategy = retry.Strategy{
	Attempts: 5,
	Delay:    3 * time.Second,
	Backoff:  1.5,
}

func (c TaskService) Create(ctx context.Context, taskData *model.TaskCreateData) (*model.Task, error) {
	logger := mwlogger.LoggerFromContext(ctx)
	newTask := &model.Task{}

	// Validate operation + options, apply option defaults
	if err := validateNormalizeTaskInfo(taskData, newTask); err != nil {
		return nil, err
	}

	newTask.UID = uuid.New()

	// Store the source image
	srcKey := c.srcKeyPrefix + newTask.UID.String() + model.GetImageFileExt[taskData.OrigContentType]

	if err := c.storage.Put(ctx, srcKey, taskData.OrigImgSize, taskData.OrigContentType, taskData.OrigImg); err != nil {
		logger.Error().Err(err).Msg("Failed to save src-image in Storage")
		return nil, model.ErrCommon500
	}
	newTask.SourceKey = srcKey

	// Store the optional input mask - only the scale operations take one
	if taskData.MaskImg != nil && takesMask(newTask.Operation) {
		maskKey := c.maskKeyPrefix + newTask.UID.String() + model.GetImageFileExt[taskData.MaskContentType]

		if err := c.storage.Put(ctx, maskKey, taskData.MaskImgSize, taskData.MaskContentType, taskData.MaskImg); err != nil {
			logger.Error().Err(err).Msg("Failed to save input mask in Storage")
			return nil, model.ErrCommon500
		}
		newTask.MaskKey = maskKey
	}

	newTask.Status = model.StatusCreated
	now := time.Now().UTC()
	newTask.CreatedAt = &now

	if err := c.repo.Create(ctx, newTask); err != nil {
		logger.Error().Err(err).Msg("Failed to create task in DB")
		return nil, model.ErrCommon500
	}

	// Queue the task
	if err := c.publisher.SendWithRetry(ctx, retryStrategy, []byte(newTask.UID.String()), nil); err != nil {
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to publish task %q to task-queue", newTask.UID))
		return nil, model.ErrCommon500
	}
	return newTask, nil
}

func (c TaskService) GetList(ctx context.Context, req *model.ListRequest) ([]model.Task, error) {
	logger := mwlogger.LoggerFromContext(ctx)
	validateQueryParams(req)

	res, err := c.repo.GetList(ctx, req)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to fetch task list from DB")
		return nil, model.ErrCommon500
	}

	return res, nil
}

func (c TaskService) Get(ctx context.Context, id string) (*model.Task, error) {
	logger := mwlogger.LoggerFromContext(ctx)
	if err := uuid.Validate(id); err != nil {
		return nil, model.ErrIncorrectID
	}

	res, err := c.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrTaskNotFound) {
			return nil, model.ErrTaskNotFound
		}
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to fetch task %q from DB", id))
		return nil, model.ErrCommon500
	}

	return res, nil
}

func (c TaskService) LoadResult(ctx context.Context, id string) (io.ReadCloser, string, error) {
	return c.loadObject(ctx, id, func(t *model.Task) (string, error) {
		return t.ResultKey, nil
	})
}

func (c TaskService) LoadResultMask(ctx context.Context, id string) (io.ReadCloser, string, error) {
	return c.loadObject(ctx, id, func(t *model.Task) (string, error) {
		if t.ResultMaskKey == "" {
			return "", model.ErrMaskNotAvailable
		}
		return t.ResultMaskKey, nil
	})
}

func (c TaskService) loadObject(ctx context.Context, id string, pickKey func(*model.Task) (string, error)) (io.ReadCloser, string, error) {
	logger := mwlogger.LoggerFromContext(ctx)
	if err := uuid.Validate(id); err != nil {
		return nil, "", model.ErrIncorrectID
	}

	res, err := c.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrTaskNotFound) {
			return nil, "", model.ErrTaskNotFound
		}
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to fetch task %q from DB", id))
		return nil, "", model.ErrCommon500
	}
	if res.Status != model.StatusDone {
		return nil, "", model.ErrResultNotReady
	}

	key, err := pickKey(res)
	if err != nil {
		return nil, "", err
	}

	data, cType, err := c.storage.Get(ctx, key)
	if err != nil {
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to fetch result object %q from Storage", key))
		return nil, "", model.ErrCommon500
	}
	return data, cType, nil
}

func (c TaskService) Delete(ctx context.Context, id string) error {
	logger := mwlogger.LoggerFromContext(ctx)
	if err := uuid.Validate(id); err != nil {
		return model.ErrIncorrectID
	}

	res, err := c.repo.Get(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows), errors.Is(err, model.ErrTaskNotFound):
			return model.ErrTaskNotFound // 404
		default:
			logger.Error().Err(err).Msg(fmt.Sprintf("Failed to fetch task %q from DB", id))
			return model.ErrCommon500
		}
	}

	if err := c.repo.Delete(ctx, id); err != nil {
		logger.Error().Err(err).Msg("Failed to delete task from DB")
		return model.ErrCommon500
	}

	// Remove every object the task owns
	keys := []string{res.SourceKey}
	if res.MaskKey != "" {
		keys = append(keys, res.MaskKey)
	}
	if res.Status == model.StatusDone {
		keys = append(keys, res.ResultKey)
		if res.ResultMaskKey != "" {
			keys = append(keys, res.ResultMaskKey)
		}
	}
	for _, key := range keys {
		if err := c.storage.Delete(ctx, key); err != nil {
			logger.Error().Err(err).Msg(fmt.Sprintf("Failed to delete object %q from Storage", key))
			return model.ErrCommon500
		}
	}

	return nil
}

func (c TaskService) UpdateStatus(ctx context.Context, id string, newStat model.Status) error {
	if err := uuid.Validate(id); err != nil {
		return model.ErrIncorrectID
	}

	logger := mwlogger.LoggerFromContext(ctx)

	if err := c.repo.UpdateStatus(ctx, id, newStat); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows), errors.Is(err, model.ErrTaskNotFound):
			return model.ErrTaskNotFound // 404
		default:
			logger.Error().Err(err).Msg("Failed to update task status in DB")
			return model.ErrCommon500 // 500
		}
	}

	return nil
}

func (c TaskService) SaveResult(ctx context.Context, input *model.Task) error {
	logger := mwlogger.LoggerFromContext(ctx)
	t := time.Now().UTC()
	input.UpdatedAt = &t
	if err := c.repo.SaveResult(ctx, input); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows), errors.Is(err, model.ErrTaskNotFound):
			return model.ErrTaskNotFound // 404
		default:
			logger.Error().Err(err).Msg("Failed to save task result in DB")
			return model.ErrCommon500 // 500
		}
	}

	return nil
}

func (c TaskService) ReviveOrphans(ctx context.Context, limit int) {
	logger := mwlogger.LoggerFromContext(ctx)

	orphans, err := c.repo.FetchOrphans(ctx, limit)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load orphans from DB")
		return
	}

	for _, v := range orphans {
		if err := c.publisher.SendWithRetry(ctx, retryStrategy, []byte(v), nil); err != nil {
			logger.Error().Err(err).Msg("Failed to publish orphan to queue")
		}
	}
}
