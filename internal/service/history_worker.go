package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/graphstudio/studio/internal/metrics"
	"github.com/graphstudio/studio/internal/models"
)

const recordTimeout = 10 * time.Second

// RunRecorder writes one finished query run.
type RunRecorder interface {
	RecordRun(ctx context.Context, run models.QueryRun) error
}

// HistoryWorker buffers finished query runs and writes them via a single worker goroutine.
type HistoryWorker struct {
	recorder RunRecorder
	log      *logrus.Logger
	jobs     chan models.QueryRun
}

// NewHistoryWorker creates a HistoryWorker with the given queue capacity.
func NewHistoryWorker(recorder RunRecorder, log *logrus.Logger, queueSize int) *HistoryWorker {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &HistoryWorker{
		recorder: recorder,
		log:      log,
		jobs:     make(chan models.QueryRun, queueSize),
	}
}

// Enqueue adds a run. Non-blocking; drops the run if the queue is full.
func (w *HistoryWorker) Enqueue(run models.QueryRun) {
	select {
	case w.jobs <- run:
		metrics.HistoryQueueDepth.Set(float64(len(w.jobs)))
	default:
		w.log.WithField("session_id", run.SessionID).Warn("history queue full, dropping run")
	}
}

// Run processes runs until the context is cancelled, then drains remaining runs.
func (w *HistoryWorker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return
		case run := <-w.jobs:
			w.process(run)
		}
	}
}

func (w *HistoryWorker) drain() {
	for {
		select {
		case run := <-w.jobs:
			w.process(run)
		default:
			return
		}
	}
}

func (w *HistoryWorker) process(run models.QueryRun) {
	metrics.HistoryQueueDepth.Set(float64(len(w.jobs)))

	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	if err := w.recorder.RecordRun(ctx, run); err != nil {
		w.log.WithError(err).WithField("session_id", run.SessionID).Warn("history record failed")
	}
}
