package ws

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"
)

// Event types pushed to clients of a query session.
const (
	EventGraph     = "graph"     // vertices and edges newly inserted into the layout
	EventFrame     = "frame"     // positioned snapshot of the layout
	EventStatus    = "status"    // session status change (completed, failed, stopped)
	EventDestroyed = "destroyed" // session removed, no further events follow
)

// Event is the structured message sent to WebSocket clients.
type Event struct {
	Type      string          `json:"type"`
	ID        uint64          `json:"id"`
	SessionID string          `json:"-"`
	Data      json.RawMessage `json:"data"`
	Time      time.Time       `json:"time"`
}

// SubscribeMsg is sent by the client on connect to request event replay.
type SubscribeMsg struct {
	Type        string `json:"type"`
	LastEventID uint64 `json:"last_event_id"`
}

// ResetMsg tells the client to fetch a full snapshot (requested events too old).
type ResetMsg struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// EventSequence tracks monotonic event IDs per session.
type EventSequence struct {
	mu       sync.Mutex
	counters map[string]*atomic.Uint64
}

// NewEventSequence creates a new EventSequence.
func NewEventSequence() *EventSequence {
	return &EventSequence{
		counters: make(map[string]*atomic.Uint64),
	}
}

// Next returns the next sequence number for a session.
func (es *EventSequence) Next(sessionID string) uint64 {
	es.mu.Lock()
	counter, ok := es.counters[sessionID]
	if !ok {
		counter = &atomic.Uint64{}
		es.counters[sessionID] = counter
	}
	es.mu.Unlock()

	return counter.Add(1)
}

// Forget drops the counter of a finished session.
func (es *EventSequence) Forget(sessionID string) {
	es.mu.Lock()
	delete(es.counters, sessionID)
	es.mu.Unlock()
}
