package queue

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/rohitdas13/postdeck/internal/dispatch"
)

type Worker struct {
	engine *dispatch.Engine
}

func NewWorker(engine *dispatch.Engine) *Worker {
	return &Worker{engine: engine}
}

// HandleDispatchPassTask runs one engine pass. The engine resolves every
// post it touched before returning and skips overlapping invocations, so a
// redelivered task produces no duplicate submissions.
func (w *Worker) HandleDispatchPassTask(ctx context.Context, task *asynq.Task) error {
	w.engine.RunPass(ctx)
	return nil
}
