package ws

import (
	"sync"
	"time"
)

const (
	defaultBufferMaxLen = 600
	defaultBufferMaxAge = 15 * time.Minute
)

// sessionLog is the replayable history of one session. evicted is the highest
// event id dropped by the size or age limit; superseded frames do not count.
type sessionLog struct {
	events  []Event
	evicted uint64
}

// EventBuffer keeps recent events per session so reconnecting clients can
// catch up. Only the newest frame event is kept because a frame carries the
// whole layout; graph and status events are kept in order.
type EventBuffer struct {
	mu       sync.RWMutex
	sessions map[string]*sessionLog
	maxLen   int
	maxAge   time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

// NewEventBuffer creates a buffer and starts its minute-by-minute sweep of
// idle sessions. Call Stop to end the sweep.
func NewEventBuffer(maxLen int, maxAge time.Duration) *EventBuffer {
	eb := &EventBuffer{
		sessions: make(map[string]*sessionLog),
		maxLen:   maxLen,
		maxAge:   maxAge,
		stop:     make(chan struct{}),
	}
	go eb.sweep()
	return eb
}

// Stop ends the background sweep.
func (eb *EventBuffer) Stop() {
	eb.stopOnce.Do(func() { close(eb.stop) })
}

func (eb *EventBuffer) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-eb.stop:
			return
		case now := <-ticker.C:
			eb.evictStale(now)
		}
	}
}

// evictStale forgets sessions whose newest event is older than maxAge.
func (eb *EventBuffer) evictStale(now time.Time) {
	cutoff := now.Add(-eb.maxAge)

	eb.mu.Lock()
	defer eb.mu.Unlock()

	for id, log := range eb.sessions {
		if n := len(log.events); n == 0 || log.events[n-1].Time.Before(cutoff) {
			delete(eb.sessions, id)
		}
	}
}

// Append records event for sessionID.
func (eb *EventBuffer) Append(sessionID string, event *Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	log := eb.sessions[sessionID]
	if log == nil {
		log = &sessionLog{}
		eb.sessions[sessionID] = log
	}

	cutoff := event.Time.Add(-eb.maxAge)
	kept := log.events[:0]
	for _, e := range log.events {
		switch {
		case e.Time.Before(cutoff):
			log.evicted = max(log.evicted, e.ID)
		case event.Type == EventFrame && e.Type == EventFrame:
		default:
			kept = append(kept, e)
		}
	}
	kept = append(kept, *event)

	if over := len(kept) - eb.maxLen; over > 0 {
		log.evicted = max(log.evicted, kept[over-1].ID)
		kept = append([]Event(nil), kept[over:]...)
	}
	log.events = kept
}

// Since returns the session's buffered events with id greater than lastEventID,
// or nil when there are none.
func (eb *EventBuffer) Since(sessionID string, lastEventID uint64) []Event {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	log := eb.sessions[sessionID]
	if log == nil {
		return nil
	}

	var out []Event
	for _, e := range log.events {
		if e.ID > lastEventID {
			out = append(out, e)
		}
	}
	return out
}

// Evicted returns the highest event id of sessionID that can no longer be
// replayed, or 0 when nothing has been lost.
func (eb *EventBuffer) Evicted(sessionID string) uint64 {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if log := eb.sessions[sessionID]; log != nil {
		return log.evicted
	}
	return 0
}

// Drop forgets every buffered event of sessionID.
func (eb *EventBuffer) Drop(sessionID string) {
	eb.mu.Lock()
	delete(eb.sessions, sessionID)
	eb.mu.Unlock()
}
