// Package loader runs a query against TypeDB and feeds the answers, plus
// follow-up exploration of each new concept, into a graph builder.
package loader

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/graphstudio/studio/driver"
	"github.com/graphstudio/studio/internal/graph"
	"github.com/graphstudio/studio/internal/models"
)

const (
	defaultWorkers = 4
	closeTimeout   = 5 * time.Second
)

// Request describes one query to load.
type Request struct {
	Database string
	Query    string
	Explore  bool
}

// Runner loads query answers into a graph.
type Runner struct {
	opener  Opener
	workers int
	log     *logrus.Logger
}

// New creates a Runner. Follow-up queries run at most workers at a time.
func New(opener Opener, workers int, log *logrus.Logger) *Runner {
	if workers < 1 {
		workers = defaultWorkers
	}
	return &Runner{opener: opener, workers: workers, log: log}
}

// Run loads req into b and reports the outcome to h: Complete on success,
// PutError on the first failure. The returned error is the one reported.
func (r *Runner) Run(ctx context.Context, req Request, b *graph.Builder, h graph.Handler) error {
	err := r.run(ctx, req, b)
	if err != nil {
		h.PutError(err)
		return err
	}
	h.Complete()

	if pending := b.PendingEdges(); pending > 0 {
		r.log.WithFields(logrus.Fields{
			"database": req.Database,
			"pending":  pending,
		}).Debug("dropping incomplete edges with no endpoint in the answer set")
	}
	return nil
}

func (r *Runner) run(ctx context.Context, req Request, b *graph.Builder) error {
	tx, err := r.opener.Open(ctx, req.Database)
	if err != nil {
		return fmt.Errorf("opening transaction: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
		defer cancel()
		if cerr := tx.Close(closeCtx); cerr != nil {
			r.log.WithError(cerr).Warn("closing read transaction")
		}
	}()

	resp, err := tx.Query(ctx, req.Query)
	if err != nil {
		return fmt.Errorf("running query: %w", err)
	}
	if resp.AnswerType != driver.AnswerConceptRows {
		r.log.WithField("answer_type", resp.AnswerType).Debug("query produced no concept rows")
		return nil
	}

	ex := &explorer{builder: b, explore: req.Explore}
	for _, row := range resp.Answers {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, name := range sortedVariables(row) {
			ex.visit(row.Data[name])
		}
	}

	return r.exploreAll(ctx, tx, ex)
}

// exploreAll runs follow-up queries level by level until no new concepts appear.
func (r *Runner) exploreAll(ctx context.Context, tx Transaction, ex *explorer) error {
	for level := 0; ; level++ {
		tasks := ex.takeQueued()
		if len(tasks) == 0 {
			return nil
		}
		r.log.WithFields(logrus.Fields{"level": level, "tasks": len(tasks)}).Debug("exploring")

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.workers)
		for _, t := range tasks {
			g.Go(func() error {
				resp, err := tx.Query(gctx, t.query)
				if err != nil {
					return fmt.Errorf("exploring %s: %w", t.name, err)
				}
				for _, row := range resp.Answers {
					t.handle(row, t.vertex, ex)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
}

// explorer registers concepts with the builder and queues follow-up tasks for new ones.
type explorer struct {
	builder *graph.Builder
	explore bool

	mu     sync.Mutex
	queued []task
}

// visit returns the vertex id of c, creating the vertex on first sight and,
// when exploring, queueing its follow-up tasks. Role types and values are not
// vertices.
func (ex *explorer) visit(c *driver.Concept) (int, bool) {
	id, created, ok := ex.add(c)
	if ok && created && ex.explore {
		ex.mu.Lock()
		ex.queued = append(ex.queued, tasksFor(c, id)...)
		ex.mu.Unlock()
	}
	return id, ok
}

// add returns the vertex id of c, creating the vertex on first sight without
// exploring it further.
func (ex *explorer) add(c *driver.Concept) (id int, created, ok bool) {
	key, ok := graph.KeyFor(c)
	if !ok {
		return 0, false, false
	}

	enc, err := graph.EncodingFor(c)
	if err != nil {
		return 0, false, false
	}
	label := graph.LabelFor(c)

	id, created = ex.builder.PutVertex(key, func(id int) models.VertexData {
		return graph.NewVertex(id, enc, label)
	})
	return id, created, true
}

func (ex *explorer) takeQueued() []task {
	ex.mu.Lock()
	defer ex.mu.Unlock()

	tasks := ex.queued
	ex.queued = nil
	return tasks
}

func sortedVariables(row driver.ConceptRow) []string {
	names := make([]string, 0, len(row.Data))
	for name := range row.Data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
