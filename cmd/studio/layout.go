package main

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/graphstudio/studio/internal/graph"
	"github.com/graphstudio/studio/internal/loader"
	"github.com/graphstudio/studio/internal/render"
	"github.com/graphstudio/studio/internal/simulation"
	"github.com/graphstudio/studio/internal/stream"
)

// queryLoader is the slice of loader.Runner the headless commands use.
type queryLoader interface {
	Run(ctx context.Context, req loader.Request, b *graph.Builder, h graph.Handler) error
}

// layoutQuery loads req to completion, then runs at most ticks layout steps
// and returns the positioned graph. It stops early once the layout cools.
func layoutQuery(ctx context.Context, l queryLoader, req loader.Request, seed uint64, ticks int, log *logrus.Logger) (render.Snapshot, error) {
	s := stream.New()
	b := graph.NewBuilder(s)

	if err := l.Run(ctx, req, b, s); err != nil {
		return render.Snapshot{}, fmt.Errorf("running query: %w", err)
	}

	recorder := render.NewRecorder()
	vis := simulation.NewVisualiser(func(string) simulation.Surface { return recorder }, seed, log)
	runner := simulation.NewRunner(s, vis, "headless", simulation.RunnerConfig{}, log)

	// The stream is complete, so the first step drains everything.
	runner.Step(time.Now())
	for i := 1; i < ticks; i++ {
		if !vis.Tick() {
			break
		}
	}

	snap := recorder.Snapshot()
	vis.Destroy()
	return snap, nil
}
