package notify

import (
	"context" // Cancellation
	"strings" // Recipient formatting
	"time"    // Poll timeout and backoff

	"github.com/sirupsen/logrus" // Logging library
)

// Worker drains a RedisQueue and hands each job to a Sender
type Worker struct {
	Queue       *RedisQueue
	Sender      Sender
	PollTimeout time.Duration // How long one BRPOP blocks
	ErrBackoff  time.Duration // Pause after a queue error
}

// NewWorker creates a worker with default timings
func NewWorker(queue *RedisQueue, sender Sender) *Worker {
	return &Worker{
		Queue:       queue,
		Sender:      sender,
		PollTimeout: 5 * time.Second,
		ErrBackoff:  time.Second,
	}
}

// Run processes jobs until ctx is cancelled
func (w *Worker) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		if _, err := w.ProcessOne(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logrus.WithField("error", err.Error()).Error("Email queue read failed")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(w.ErrBackoff):
			}
		}
	}
}

// ProcessOne waits for one job and delivers it. It reports whether a job
// was taken off the queue; a delivery failure is logged, not returned, and
// the job is not requeued.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	job, err := w.Queue.Dequeue(ctx, w.PollTimeout)
	if err != nil {
		return false, err
	}
	if job == nil {
		return false, nil
	}
	recipients := strings.Join(job.Recipients, ", ")
	if err := w.Sender.Send(ctx, *job); err != nil {
		logrus.WithFields(logrus.Fields{
			"job_id":     job.ID,
			"subject":    job.Subject,
			"recipients": recipients,
			"error":      err.Error(),
		}).Error("Failed to send email")
		return true, nil
	}
	logrus.WithFields(logrus.Fields{
		"job_id":     job.ID,
		"recipients": recipients,
	}).Info("Email sent")
	return true, nil
}
