package job

import (
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/rohitdas13/postdeck/internal/queue"
)

// DispatchJob is the cron-driven trigger: every interval it enqueues one
// dispatch pass for the queue worker to run.
type DispatchJob struct {
	asynqClient *asynq.Client
}

func NewDispatchJob(asynqClient *asynq.Client) *DispatchJob {
	return &DispatchJob{asynqClient: asynqClient}
}

func (j *DispatchJob) Run() {
	if err := queue.EnqueuePass(j.asynqClient); err != nil {
		slog.Info(err.Error())
	}
}
