package api

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/kbukum/chunkscribe/errors"
	"github.com/kbukum/chunkscribe/jobs"
	"github.com/kbukum/chunkscribe/logger"
	"github.com/kbukum/chunkscribe/server"
	"github.com/kbukum/chunkscribe/sse"
)

func jobPattern(id string) string { return fmt.Sprintf("job:%s:*", id) }

// statusEvent carries the job's lifecycle rank as Seq, so a subscriber
// never sees the status move backwards.
func statusEvent(job jobs.Job) (sse.Event, error) {
	ev, err := sse.JSONEvent(sse.EventTypeStatus, job, job.Status.Terminal())
	ev.Seq = uint64(job.Status.Rank() + 1)
	return ev, err
}

// PublishJob returns a jobs.Tracker observer that streams every status
// change to the job's subscribers on hub.
func PublishJob(hub *sse.Hub, log *logger.Logger) func(jobs.Job) {
	if log == nil {
		log = logger.NewNop()
	}
	return func(job jobs.Job) {
		ev, err := statusEvent(job)
		if err != nil {
			log.Warn("status event not published", logger.MergeWithError(logger.Fields(logger.FieldJobID, job.ID), err))
			return
		}
		hub.Publish(jobPattern(job.ID), ev)
	}
}

// StreamJob streams a job's status changes as server-sent events, starting
// with its current state. The stream ends after the terminal status.
func (h *Handler) StreamJob(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.jobs.Get(id); err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			server.RespondWithError(c, apperrors.NotFound("job", id))
			return
		}
		server.RespondWithError(c, err)
		return
	}

	clientID := fmt.Sprintf("job:%s:%s", id, uuid.NewString())
	sse.ServeSSE(h.events, c.Writer, c.Request, clientID, func() []sse.Event {
		// Re-read after subscribing; the job may have moved on or been evicted.
		job, err := h.jobs.Get(id)
		if err != nil {
			return nil
		}
		ev, err := statusEvent(job)
		if err != nil {
			return nil
		}
		return []sse.Event{ev}
	})
}
