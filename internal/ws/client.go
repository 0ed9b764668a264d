package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"
)

// Connection limits and liveness timings.
const (
	maxInboundMessage = 4096
	sendQueueLen      = 256
	writeTimeout      = 10 * time.Second
	connLifetime      = 4 * time.Hour
	pingEvery         = 30 * time.Second
	pongWait          = 10 * time.Second
	pongMisses        = 2
	revalidateEvery   = 30 * time.Second
	revalidateTimeout = 5 * time.Second
)

const msgSubscribe = "subscribe"

// SessionValidator reports whether a query session is still held by the server.
type SessionValidator interface {
	SessionActive(ctx context.Context, sessionID string) bool
}

// Client is one browser connection following one query session.
type Client struct {
	SessionID string

	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	log       *logrus.Entry
	validator SessionValidator
	opened    time.Time
	closeOnce sync.Once
}

// NewClient creates a client for conn. A nil validator skips re-validation.
func NewClient(hub *Hub, conn *websocket.Conn, sessionID string, validator SessionValidator) *Client {
	return &Client{
		SessionID: sessionID,
		hub:       hub,
		conn:      conn,
		send:      make(chan []byte, sendQueueLen),
		log:       hub.log.WithField("session_id", sessionID),
		validator: validator,
		opened:    time.Now(),
	}
}

func (c *Client) closeSend() {
	c.closeOnce.Do(func() { close(c.send) })
}

// offer queues msg without blocking. It reports false when the queue is full.
func (c *Client) offer(msg []byte) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// ReadPump consumes client messages until the connection ends, then
// unregisters the client.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.CloseNow()
	}()

	c.conn.SetReadLimit(maxInboundMessage)
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			if status := websocket.CloseStatus(err); status != -1 {
				c.log.WithField("status", status).Debug("client closed connection")
			}
			return
		}
		c.handleMessage(data)
	}
}

// handleMessage answers a subscribe request by replaying buffered events, or
// with a reset when they have already been evicted. Anything else is ignored.
func (c *Client) handleMessage(data []byte) {
	var msg SubscribeMsg
	if json.Unmarshal(data, &msg) != nil || msg.Type != msgSubscribe {
		return
	}
	if c.hub.ReplayEvents(c, msg.LastEventID) {
		return
	}

	reset, err := json.Marshal(ResetMsg{Type: "reset", Reason: "events evicted, fetch the graph snapshot"})
	if err != nil {
		return
	}
	c.offer(reset)
}

// WritePump delivers queued messages and keeps the connection honest: it pings,
// re-validates the session and enforces a maximum lifetime.
func (c *Client) WritePump(ctx context.Context) {
	defer func() { _ = c.conn.CloseNow() }()

	lifetime := time.NewTimer(time.Until(c.opened.Add(connLifetime)))
	ping := time.NewTicker(pingEvery)
	revalidate := time.NewTicker(revalidateEvery)
	defer func() {
		lifetime.Stop()
		ping.Stop()
		revalidate.Stop()
	}()

	missed := 0
	for {
		select {
		case <-ctx.Done():
			return

		case msg, ok := <-c.send:
			if !ok {
				_ = c.conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			if err := c.write(ctx, msg); err != nil {
				c.log.WithError(err).Debug("websocket write failed")
				return
			}

		case <-ping.C:
			if c.ping(ctx) {
				missed = 0
				continue
			}
			if missed++; missed >= pongMisses {
				c.log.Debug("closing websocket after missed pongs")
				return
			}

		case <-revalidate.C:
			if !c.stillActive(ctx) {
				c.log.Debug("closing websocket, session gone")
				_ = c.conn.Close(websocket.StatusGoingAway, "session closed")
				return
			}

		case <-lifetime.C:
			c.log.Info("closing websocket at max lifetime")
			_ = c.conn.Close(websocket.StatusNormalClosure, "max connection lifetime exceeded")
			return
		}
	}
}

func (c *Client) write(ctx context.Context, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return c.conn.Write(ctx, websocket.MessageText, msg)
}

func (c *Client) ping(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, pongWait)
	defer cancel()
	return c.conn.Ping(ctx) == nil
}

func (c *Client) stillActive(ctx context.Context) bool {
	if c.validator == nil {
		return true
	}
	ctx, cancel := context.WithTimeout(ctx, revalidateTimeout)
	defer cancel()
	return c.validator.SessionActive(ctx, c.SessionID)
}
