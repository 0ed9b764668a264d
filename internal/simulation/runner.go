package simulation

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/graphstudio/studio/internal/models"
)

// Default loop timings.
const (
	DefaultFrameInterval = 16667 * time.Microsecond
	DefaultDrainInterval = 50 * time.Millisecond
)

// Source is the drainable side of a query stream.
type Source interface {
	Drain() (models.GraphData, error)
	IsCompletedAndFullyDrained() bool
}

// RunnerConfig tunes a Runner.
type RunnerConfig struct {
	FrameInterval time.Duration
	DrainInterval time.Duration
	// OnError is called once with the stream's terminal error.
	OnError func(err error)
	// OnFrame is called after every rendered frame.
	OnFrame func()
	// OnDrain is called with every non-empty batch.
	OnDrain func(g models.GraphData)
}

// Runner couples one stream to one visualiser: it drains on a fixed cadence,
// feeds batches to the visualiser and ticks it once per frame.
type Runner struct {
	source Source
	vis    *Visualiser
	simID  string
	cfg    RunnerConfig
	log    *logrus.Logger

	mu        sync.Mutex
	lastDrain time.Time
	failed    bool
	done      chan struct{}
	stop      chan struct{}
	stopOnce  sync.Once
}

// NewRunner creates a runner for the given stream and visualiser.
func NewRunner(source Source, vis *Visualiser, simID string, cfg RunnerConfig, log *logrus.Logger) *Runner {
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = DefaultFrameInterval
	}
	if cfg.DrainInterval <= 0 {
		cfg.DrainInterval = DefaultDrainInterval
	}
	return &Runner{
		source: source,
		vis:    vis,
		simID:  simID,
		cfg:    cfg,
		log:    log,
		done:   make(chan struct{}),
		stop:   make(chan struct{}),
	}
}

// Run loops until ctx is cancelled or Stop is called, then destroys the visualiser.
func (r *Runner) Run(ctx context.Context) {
	defer close(r.done)
	defer r.vis.Destroy()

	ticker := time.NewTicker(r.cfg.FrameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stop:
			return
		case now := <-ticker.C:
			r.Step(now)
		}
	}
}

// Step runs one frame: drain if the drain interval has elapsed, then tick.
func (r *Runner) Step(now time.Time) {
	if r.shouldDrain(now) {
		r.drain()
	}
	if r.vis.Tick() && r.cfg.OnFrame != nil {
		r.cfg.OnFrame()
	}
}

func (r *Runner) shouldDrain(now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failed || now.Sub(r.lastDrain) < r.cfg.DrainInterval {
		return false
	}
	r.lastDrain = now
	return true
}

func (r *Runner) drain() {
	g, err := r.source.Drain()
	if err != nil {
		r.mu.Lock()
		r.failed = true
		r.mu.Unlock()

		r.log.WithError(err).WithField("simulation_id", r.simID).Warn("query stream failed")
		if r.cfg.OnError != nil {
			r.cfg.OnError(err)
		}
		return
	}
	if g.IsEmpty() {
		return
	}
	if err := r.vis.Update(Batch{SimulationID: r.simID, Graph: g}); err != nil {
		r.log.WithError(err).Debug("dropping batch")
		return
	}
	if r.cfg.OnDrain != nil {
		r.cfg.OnDrain(g)
	}
}

// Stop ends Run. Safe to call more than once.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
}

// Wait blocks until Run has returned.
func (r *Runner) Wait() {
	<-r.done
}

// Failed reports whether the stream returned an error.
func (r *Runner) Failed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failed
}

// Done reports whether the stream completed cleanly and everything was drained.
func (r *Runner) Done() bool {
	return r.source.IsCompletedAndFullyDrained()
}
