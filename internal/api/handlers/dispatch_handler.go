package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/rohitdas13/postdeck/internal/queue"
)

type DispatchHandler struct {
	AsynqClient *asynq.Client
}

func NewDispatchHandler(asynqClient *asynq.Client) *DispatchHandler {
	return &DispatchHandler{AsynqClient: asynqClient}
}

// TriggerPass queues an on-demand dispatch pass. The engine guards against
// overlap, so triggering while the cron pass is running is safe.
func (h *DispatchHandler) TriggerPass(c *fiber.Ctx) error {
	if err := queue.EnqueuePass(h.AsynqClient); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to queue dispatch pass",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Dispatch pass queued",
	})
}
