package queue

import (
	"log"
	"time"

	"github.com/hibiken/asynq"
)

const TaskTypeDispatchPass = "dispatch:pass"

// EnqueuePass queues one dispatch pass. Passes carry no payload: the engine
// re-reads everything it needs, so at-least-once delivery is safe.
func EnqueuePass(asynqClient *asynq.Client) error {
	task := asynq.NewTask(TaskTypeDispatchPass, nil)

	_, err := asynqClient.Enqueue(task, asynq.MaxRetry(0), asynq.Timeout(5*time.Minute))
	if err != nil {
		return err
	}

	log.Println("dispatch pass queued")
	return nil
}
