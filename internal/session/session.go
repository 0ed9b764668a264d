// Package session runs visualised queries. Each session owns one stream,
// graph builder, visualiser and render loop, identified by a UUID that is
// also the simulation identity.
package session

import (
	"context"
	"encoding/binary"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/graphstudio/studio/internal/graph"
	"github.com/graphstudio/studio/internal/models"
	"github.com/graphstudio/studio/internal/render"
	"github.com/graphstudio/studio/internal/simulation"
	"github.com/graphstudio/studio/internal/stream"
)

// Session is one running or finished query visualisation.
type Session struct {
	ID        uuid.UUID
	Database  string
	Query     string
	Explore   bool
	StartedAt time.Time

	stream   *stream.Stream
	builder  *graph.Builder
	vis      *simulation.Visualiser
	runner   *simulation.Runner
	recorder *render.Recorder
	cancel   context.CancelFunc
	loaded   chan struct{}

	mu          sync.Mutex
	status      models.SessionStatus
	err         error
	finishedAt  time.Time
	frame       *simulation.Frame
	frameDirty  bool
	lastFrameAt time.Time
}

func newSession(id uuid.UUID, req models.QueryRequest, now time.Time) *Session {
	s := &Session{
		ID:        id,
		Database:  req.Database,
		Query:     req.Query,
		Explore:   req.Explore,
		StartedAt: now,
		stream:    stream.New(),
		loaded:    make(chan struct{}),
		status:    models.StatusRunning,
	}
	s.builder = graph.NewBuilder(s.stream)
	return s
}

// seedFor derives a layout seed from the session id so layouts are reproducible.
func seedFor(id uuid.UUID) uint64 {
	return binary.BigEndian.Uint64(id[:8])
}

// Info returns a point-in-time description of the session.
func (s *Session) Info() models.SessionInfo {
	stats := s.stream.Stats()

	info := models.SessionInfo{
		ID:        s.ID,
		Database:  s.Database,
		Query:     s.Query,
		Vertices:  stats.Vertices,
		Edges:     stats.Edges,
		StartedAt: s.StartedAt,
		Drained:   s.Drained(),
	}

	s.mu.Lock()
	info.Status = s.status
	if s.err != nil {
		info.Error = s.err.Error()
	}
	if s.frame != nil {
		info.Alpha = s.frame.Alpha
	}
	s.mu.Unlock()

	return info
}

// Status returns the lifecycle phase.
func (s *Session) Status() models.SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Err returns the error the query failed with, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Snapshot returns the graph inserted into the layout so far with its latest positions.
func (s *Session) Snapshot() render.Snapshot {
	return s.recorder.Snapshot()
}

// Loaded is closed once the loader has finished, successfully or not.
func (s *Session) Loaded() <-chan struct{} {
	return s.loaded
}

// Drained reports whether the query completed and every element reached the layout.
func (s *Session) Drained() bool {
	return s.runner != nil && s.runner.Done()
}

// finish records the loader outcome. It reports false if the session had already left the running phase.
func (s *Session) finish(err error, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != models.StatusRunning {
		return false
	}

	s.finishedAt = now
	if err != nil {
		s.status = models.StatusFailed
		s.err = err
	} else {
		s.status = models.StatusCompleted
	}
	return true
}

// markStopped moves a running session to stopped and reports whether it did.
func (s *Session) markStopped(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != models.StatusRunning {
		return false
	}
	s.status = models.StatusStopped
	s.finishedAt = now
	return true
}

// expired reports whether a finished session has outlived ttl. A completed
// session is kept until its stream is fully drained into the layout; failed
// and stopped streams never drain, so only their age counts.
func (s *Session) expired(now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	status, finishedAt := s.status, s.finishedAt
	s.mu.Unlock()

	switch status {
	case models.StatusRunning:
		return false
	case models.StatusCompleted:
		if !s.Drained() {
			return false
		}
	}
	return now.Sub(finishedAt) >= ttl
}

func (s *Session) setFrame(f simulation.Frame) {
	s.mu.Lock()
	s.frame = &f
	s.frameDirty = true
	s.mu.Unlock()
}

// takeFrame returns the latest frame when it is due for broadcast.
func (s *Session) takeFrame(now time.Time, every time.Duration, force bool) (simulation.Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.frameDirty || s.frame == nil {
		return simulation.Frame{}, false
	}
	if !force && now.Sub(s.lastFrameAt) < every {
		return simulation.Frame{}, false
	}
	s.frameDirty = false
	s.lastFrameAt = now
	return *s.frame, true
}

// record builds the history row for a finished session.
func (s *Session) record() models.QueryRun {
	stats := s.stream.Stats()

	s.mu.Lock()
	defer s.mu.Unlock()

	run := models.QueryRun{
		SessionID: s.ID,
		Database:  s.Database,
		Query:     s.Query,
		Vertices:  stats.Vertices,
		Edges:     stats.Edges,
		StartedAt: s.StartedAt,
	}
	if !s.finishedAt.IsZero() {
		finished := s.finishedAt
		run.FinishedAt = &finished
	}
	if s.err != nil {
		msg := s.err.Error()
		run.Error = &msg
	}
	return run
}
