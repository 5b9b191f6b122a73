package main

import (
	"context"

	"github.com/fnodes/ImageScaler/internal/model"
	"github.com/wb-go/wbf/retry"
)

type TaskWorkerService interface {
	UpdateStatus(ctx context.Context, id string, newStat model.Status) error
	SaveResult(ctx context.Context, res *model.Task) error
	Get(ctx context.Context, id string) (*model.Task, error)
}

// NoopPublisher - the worker-side service never enqueues anything
type NoopPublisher struct{}

func (NoopPublisher) SendWithRetry(ctx context.Context, strategy retry.Strategy, k []byte, v []byte) error {
	return nil
}
