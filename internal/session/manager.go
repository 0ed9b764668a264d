package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/graphstudio/studio/internal/graph"
	"github.com/graphstudio/studio/internal/loader"
	"github.com/graphstudio/studio/internal/metrics"
	"github.com/graphstudio/studio/internal/models"
	"github.com/graphstudio/studio/internal/render"
	"github.com/graphstudio/studio/internal/simulation"
	"github.com/graphstudio/studio/internal/ws"
)

// Default manager settings.
const (
	DefaultMaxSessions    = 16
	DefaultTTL            = 10 * time.Minute
	DefaultFrameBroadcast = 100 * time.Millisecond
	reapInterval          = 30 * time.Second
)

// Loader fills a graph builder with the answers of one query.
type Loader interface {
	Run(ctx context.Context, req loader.Request, b *graph.Builder, h graph.Handler) error
}

// Broadcaster pushes session events to WebSocket subscribers.
type Broadcaster interface {
	BroadcastEvent(eventType, sessionID string, data any)
	CloseSession(sessionID string)
}

// HistoryRecorder accepts finished query runs for persistence.
type HistoryRecorder interface {
	Enqueue(run models.QueryRun)
}

// Config tunes a Manager.
type Config struct {
	MaxSessions    int
	TTL            time.Duration
	FrameInterval  time.Duration
	DrainInterval  time.Duration
	FrameBroadcast time.Duration
}

// Manager owns the query sessions of a server process.
type Manager struct {
	ctx     context.Context
	loader  Loader
	hub     Broadcaster
	history HistoryRecorder
	cfg     Config
	log     *logrus.Logger
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	wg       sync.WaitGroup
}

// NewManager creates a Manager. Sessions live until stopped, reaped, or ctx is done.
// hub and history may be nil.
func NewManager(ctx context.Context, l Loader, hub Broadcaster, history HistoryRecorder, cfg Config, log *logrus.Logger) *Manager {
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = DefaultMaxSessions
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.FrameBroadcast <= 0 {
		cfg.FrameBroadcast = DefaultFrameBroadcast
	}

	return &Manager{
		ctx:      ctx,
		loader:   l,
		hub:      hub,
		history:  history,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Start validates req, creates a session and launches its loader and render loop.
func (m *Manager) Start(req models.QueryRequest) (*Session, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if m.Len() >= m.cfg.MaxSessions {
		m.Reap()
	}

	s := newSession(uuid.New(), req, m.now())
	ctx := m.assemble(s)

	m.mu.Lock()
	if len(m.sessions) >= m.cfg.MaxSessions {
		m.mu.Unlock()
		s.cancel()
		return nil, fmt.Errorf("%w: limit is %d", models.ErrTooManySessions, m.cfg.MaxSessions)
	}
	m.sessions[s.ID] = s
	metrics.ActiveSessions.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	m.launch(ctx, s)

	m.log.WithFields(logrus.Fields{
		"session_id": s.ID,
		"database":   s.Database,
		"explore":    s.Explore,
	}).Info("query session started")

	return s, nil
}

// Open starts a session and returns its initial info.
func (m *Manager) Open(req models.QueryRequest) (models.SessionInfo, error) {
	s, err := m.Start(req)
	if err != nil {
		return models.SessionInfo{}, err
	}
	return s.Info(), nil
}

// assemble wires the session's recorder, visualiser and render loop.
func (m *Manager) assemble(s *Session) context.Context {
	id := s.ID.String()
	ctx, cancel := context.WithCancel(m.ctx)
	s.cancel = cancel

	s.recorder = render.NewRecorder(
		render.OnAdd(func(vertices []models.VertexData, edges []models.EdgeData) {
			m.broadcast(ws.EventGraph, id, models.GraphData{Vertices: vertices, Edges: edges})
		}),
		render.OnFrame(s.setFrame),
	)
	s.vis = simulation.NewVisualiser(func(string) simulation.Surface { return s.recorder }, seedFor(s.ID), m.log)
	s.runner = simulation.NewRunner(s.stream, s.vis, id, simulation.RunnerConfig{
		FrameInterval: m.cfg.FrameInterval,
		DrainInterval: m.cfg.DrainInterval,
		OnError: func(error) {
			metrics.StreamErrors.Inc()
		},
		OnFrame: func() {
			metrics.SimulationTicks.Inc()
			m.flushFrame(s, false)
		},
		OnDrain: func(g models.GraphData) {
			metrics.Drains.Inc()
			metrics.VerticesStreamed.Add(float64(len(g.Vertices)))
			metrics.EdgesStreamed.Add(float64(len(g.Edges)))
		},
	}, m.log)

	return ctx
}

func (m *Manager) launch(ctx context.Context, s *Session) {
	m.wg.Add(2)
	go func() {
		defer m.wg.Done()
		s.runner.Run(ctx)
	}()
	go func() {
		defer m.wg.Done()
		defer close(s.loaded)
		m.load(ctx, s)
	}()
}

func (m *Manager) load(ctx context.Context, s *Session) {
	req := loader.Request{Database: s.Database, Query: s.Query, Explore: s.Explore}
	err := m.loader.Run(ctx, req, s.builder, s.stream)
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return
	}

	if !s.finish(err, m.now()) {
		return
	}

	info := s.Info()
	log := m.log.WithFields(logrus.Fields{
		"session_id": s.ID,
		"vertices":   info.Vertices,
		"edges":      info.Edges,
	})
	if err != nil {
		log.WithError(err).Warn("query session failed")
	} else {
		log.Info("query session completed")
	}

	m.broadcast(ws.EventStatus, s.ID.String(), info)
	m.recordHistory(s)
}

// flushFrame broadcasts the latest frame when due. A cooled layout always
// flushes so subscribers see the resting positions.
func (m *Manager) flushFrame(s *Session, force bool) {
	if m.hub == nil {
		return
	}
	if l := s.vis.Layout(); l != nil && l.Cooled() {
		force = true
	}
	if f, ok := s.takeFrame(m.now(), m.cfg.FrameBroadcast, force); ok {
		m.hub.BroadcastEvent(ws.EventFrame, s.ID.String(), f)
	}
}

func (m *Manager) broadcast(eventType, sessionID string, data any) {
	if m.hub != nil {
		m.hub.BroadcastEvent(eventType, sessionID, data)
	}
}

func (m *Manager) recordHistory(s *Session) {
	if m.history != nil {
		m.history.Enqueue(s.record())
	}
}

// Get returns the session with the given id.
func (m *Manager) Get(id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, models.ErrSessionNotFound
	}
	return s, nil
}

// Info returns the current info of the session with the given id.
func (m *Manager) Info(id uuid.UUID) (models.SessionInfo, error) {
	s, err := m.Get(id)
	if err != nil {
		return models.SessionInfo{}, err
	}
	return s.Info(), nil
}

// SessionActive implements ws.SessionValidator.
func (m *Manager) SessionActive(_ context.Context, sessionID string) bool {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return false
	}
	_, err = m.Get(id)
	return err == nil
}

// List returns every held session, oldest first.
func (m *Manager) List() []models.SessionInfo {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	infos := make([]models.SessionInfo, 0, len(sessions))
	for _, s := range sessions {
		infos = append(infos, s.Info())
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].StartedAt.Equal(infos[j].StartedAt) {
			return infos[i].ID.String() < infos[j].ID.String()
		}
		return infos[i].StartedAt.Before(infos[j].StartedAt)
	})
	return infos
}

// Snapshot returns the positioned graph of a session.
func (m *Manager) Snapshot(id uuid.UUID) (render.Snapshot, error) {
	s, err := m.Get(id)
	if err != nil {
		return render.Snapshot{}, err
	}
	return s.Snapshot(), nil
}

// Stop cancels a session's loader and render loop and removes it.
func (m *Manager) Stop(id uuid.UUID) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	metrics.ActiveSessions.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	if !ok {
		return models.ErrSessionNotFound
	}

	m.shutdown(s)
	m.log.WithField("session_id", id).Info("query session stopped")
	return nil
}

func (m *Manager) shutdown(s *Session) {
	stopped := s.markStopped(m.now())
	s.cancel()
	s.runner.Stop()
	s.runner.Wait()
	<-s.loaded

	if stopped {
		m.recordHistory(s)
	}
	if m.hub != nil {
		m.hub.CloseSession(s.ID.String())
	}
}

// Reap removes finished sessions older than the TTL and returns how many were removed.
func (m *Manager) Reap() int {
	now := m.now()

	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if s.expired(now, m.cfg.TTL) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	metrics.ActiveSessions.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	for _, s := range expired {
		m.shutdown(s)
	}
	if len(expired) > 0 {
		m.log.WithField("count", len(expired)).Debug("reaped expired query sessions")
	}
	return len(expired)
}

// Run reaps expired sessions until ctx is done, then stops every session.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(reapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.Close()
			return
		case <-ticker.C:
			m.Reap()
		}
	}
}

// Close stops every session and waits for their goroutines.
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for id, s := range m.sessions {
		sessions = append(sessions, s)
		delete(m.sessions, id)
	}
	metrics.ActiveSessions.Set(0)
	m.mu.Unlock()

	for _, s := range sessions {
		m.shutdown(s)
	}
	m.wg.Wait()
}

// Len returns the number of held sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
