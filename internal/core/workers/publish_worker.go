package workers

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lifeblock/activity-engine/internal/observability"
)

// Publisher rebuilds and publishes the shared snapshot. ActivityService
// satisfies this.
type Publisher interface {
	PublishCurrent(ctx context.Context, now time.Time) error
}

type PublishJob struct {
	Requested time.Time
}

// PublishWorker keeps snapshot publishes off the UI path: the main process
// enqueues after ledger writes and a single background goroutine serializes
// the publishes. The queue drops when saturated; a dropped publish costs one
// stale refresh cycle at most, the next publish or reconcile pass heals it.
type PublishWorker struct {
	publisher Publisher
	jobs      chan PublishJob
	log       *logrus.Logger
}

func NewPublishWorker(publisher Publisher, log *logrus.Logger) *PublishWorker {
	return &PublishWorker{
		publisher: publisher,
		jobs:      make(chan PublishJob, 100),
		log:       log,
	}
}

func (w *PublishWorker) Start(ctx context.Context) {
	go func() {
		w.log.Info("snapshot publish worker started")
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				w.log.Info("snapshot publish worker shutting down")
				return
			}
		}
	}()
}

func (w *PublishWorker) Enqueue(requested time.Time) {
	select {
	case w.jobs <- PublishJob{Requested: requested}:
	default:
		w.log.Warn("publish queue full, dropping job")
		observability.RecordDroppedPublishJob()
	}
}

func (w *PublishWorker) processJob(ctx context.Context, job PublishJob) {
	if err := w.publisher.PublishCurrent(ctx, job.Requested); err != nil {
		w.log.WithError(err).Warn("background snapshot publish failed")
	}
}
