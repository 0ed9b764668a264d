// Package ws implements the WebSocket hub that pushes layout frames of query
// sessions to connected clients.
package ws

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/graphstudio/studio/internal/metrics"
)

// Hub channel buffer sizes and connection caps.
const (
	broadcastBuffer      = 256
	registerBuffer       = 64
	maxClients           = 1000
	maxClientsPerSession = 50
)

// maxBroadcastPayload is the maximum allowed event payload size (1 MB).
const maxBroadcastPayload = 1 << 20

// sessionBroadcast is sent through the broadcast channel to the Run goroutine.
type sessionBroadcast struct {
	sessionID string
	msg       []byte
	closing   bool
}

// Hub manages active WebSocket clients and broadcasts session events.
// All client map mutations happen exclusively in the Run goroutine.
type Hub struct {
	clients      map[*Client]bool
	sessionCount map[string]int
	register     chan *Client
	unregister   chan *Client
	broadcast    chan sessionBroadcast
	shutdown     chan struct{}
	done         chan struct{}
	count        atomic.Int64
	log          *logrus.Logger
	seq          *EventSequence
	buffer       *EventBuffer
	now          func() time.Time
	drainTimeout time.Duration
}

// NewHub creates a new Hub instance.
func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		clients:      make(map[*Client]bool),
		sessionCount: make(map[string]int),
		register:     make(chan *Client, registerBuffer),
		unregister:   make(chan *Client, registerBuffer),
		broadcast:    make(chan sessionBroadcast, broadcastBuffer),
		shutdown:     make(chan struct{}),
		done:         make(chan struct{}),
		log:          log,
		seq:          NewEventSequence(),
		buffer:       NewEventBuffer(defaultBufferMaxLen, defaultBufferMaxAge),
		now:          time.Now,
		drainTimeout: defaultDrainTimeout,
	}
}

// defaultDrainTimeout is how long the hub waits for clients to flush after shutdown.
const defaultDrainTimeout = 3 * time.Second

// Run starts the hub event loop. It should be run as a goroutine.
// It exits when Shutdown is called or the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	defer h.buffer.Stop()

	for {
		select {
		case <-ctx.Done():
			h.drainClients()

			return
		case <-h.shutdown:
			h.drainClients()

			return

		case client := <-h.register:
			h.add(client)

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.remove(client)
			}
			h.updateCount()
			h.log.WithField("total", len(h.clients)).Debug("client unregistered")

		case b := <-h.broadcast:
			h.deliver(b)
		}
	}
}

func (h *Hub) add(client *Client) {
	if len(h.clients) >= maxClients {
		h.log.Warn("global connection limit reached, dropping client")
		client.closeSend()

		return
	}

	if h.sessionCount[client.SessionID] >= maxClientsPerSession {
		h.log.WithField("session_id", client.SessionID).Warn("per-session connection limit reached, dropping client")
		client.closeSend()

		return
	}

	h.clients[client] = true
	h.sessionCount[client.SessionID]++
	h.updateCount()
	h.log.WithFields(logrus.Fields{
		"session_id": client.SessionID,
		"total":      len(h.clients),
	}).Debug("client registered")
}

func (h *Hub) remove(client *Client) {
	delete(h.clients, client)
	client.closeSend()
	h.sessionCount[client.SessionID]--
	if h.sessionCount[client.SessionID] <= 0 {
		delete(h.sessionCount, client.SessionID)
	}
}

func (h *Hub) deliver(b sessionBroadcast) {
	for client := range h.clients {
		if client.SessionID != b.sessionID {
			continue
		}
		select {
		case client.send <- b.msg:
			if b.closing {
				h.remove(client)
			}
		default:
			h.remove(client)
		}
	}
	h.updateCount()
}

func (h *Hub) updateCount() {
	h.count.Store(int64(len(h.clients)))
	metrics.WSConnections.Set(float64(len(h.clients)))
}

// BroadcastToSession sends a message only to clients subscribed to the given session.
// Oversized payloads are dropped with a warning log.
func (h *Hub) BroadcastToSession(sessionID string, msg []byte) {
	h.enqueue(sessionBroadcast{sessionID: sessionID, msg: msg})
}

func (h *Hub) enqueue(b sessionBroadcast) {
	if len(b.msg) > maxBroadcastPayload {
		h.log.WithFields(logrus.Fields{
			"session_id":   b.sessionID,
			"payload_size": len(b.msg),
			"max_size":     maxBroadcastPayload,
		}).Warn("dropping oversized broadcast payload")
		return
	}
	select {
	case h.broadcast <- b:
	default:
		h.log.Warn("broadcast channel full, dropping message")
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	default:
		h.log.Warn("register channel full, dropping client")
		c.closeSend()
	}
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	default:
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// BroadcastEvent assigns a sequence ID, stores the event in the replay
// buffer and broadcasts it to every client of the session.
func (h *Hub) BroadcastEvent(eventType, sessionID string, data any) {
	evt, msg, ok := h.newEvent(eventType, sessionID, data)
	if !ok {
		return
	}

	h.buffer.Append(sessionID, &evt)
	h.BroadcastToSession(sessionID, msg)
}

// CloseSession sends a final destroyed event to the session's clients,
// disconnects them and forgets its replay state.
func (h *Hub) CloseSession(sessionID string) {
	_, msg, ok := h.newEvent(EventDestroyed, sessionID, map[string]string{"session_id": sessionID})

	h.buffer.Drop(sessionID)
	h.seq.Forget(sessionID)

	if ok {
		h.enqueue(sessionBroadcast{sessionID: sessionID, msg: msg, closing: true})
	}
}

func (h *Hub) newEvent(eventType, sessionID string, data any) (Event, []byte, bool) {
	raw, err := json.Marshal(data)
	if err != nil {
		h.log.WithError(err).WithField("type", eventType).Error("failed to marshal event data")
		return Event{}, nil, false
	}

	evt := Event{
		Type:      eventType,
		ID:        h.seq.Next(sessionID),
		SessionID: sessionID,
		Data:      raw,
		Time:      h.now(),
	}

	msg, err := json.Marshal(evt)
	if err != nil {
		h.log.WithError(err).Error("failed to marshal event")
		return Event{}, nil, false
	}

	return evt, msg, true
}

// Shutdown initiates a graceful WebSocket drain: sends a shutdown frame to
// every connected client, waits for their write pumps to flush, then closes
// all connections. It blocks until drain is complete or the timeout expires.
func (h *Hub) Shutdown() {
	close(h.shutdown)
	<-h.done
}

// drainClients sends a shutdown message to every client and waits for buffers to flush.
func (h *Hub) drainClients() {
	if len(h.clients) == 0 {
		return
	}

	h.log.WithField("clients", len(h.clients)).Info("draining WebSocket clients")

	shutdownMsg := []byte(`{"type":"shutdown","message":"server shutting down"}`)
	for client := range h.clients {
		select {
		case client.send <- shutdownMsg:
		default:
		}
	}

	deadline := time.After(h.drainTimeout)
	ticker := time.NewTicker(50 * time.Millisecond) //nolint:mnd // poll interval
	defer ticker.Stop()

wait:
	for {
		allDrained := true

		for client := range h.clients {
			if len(client.send) > 0 {
				allDrained = false

				break
			}
		}

		if allDrained {
			break
		}

		select {
		case <-deadline:
			h.log.Warn("WebSocket drain timeout, closing remaining clients")

			break wait
		case <-ticker.C:
		}
	}

	for client := range h.clients {
		client.closeSend()
		delete(h.clients, client)
	}

	h.sessionCount = make(map[string]int)
	h.updateCount()
}

// ReplayEvents sends buffered events since lastEventID to the client.
// It returns false when events after lastEventID have already been evicted.
func (h *Hub) ReplayEvents(client *Client, lastEventID uint64) bool {
	if lastEventID < h.buffer.Evicted(client.SessionID) {
		return false
	}

	events := h.buffer.Since(client.SessionID, lastEventID)
	for _, evt := range events {
		msg, err := json.Marshal(evt)
		if err != nil {
			continue
		}
		select {
		case client.send <- msg:
		default:
			return true
		}
	}
	return true
}
