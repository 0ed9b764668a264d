// Package security tracks failed API key attempts per client.
package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	BruteForceMaxAttempts = 5
	BruteForceWindow      = 15 * time.Minute
	BruteForceLockout     = 5 * time.Minute
	bruteForceCleanup     = 60 * time.Second
	bruteForceMaxRecords  = 10000
)

type failureRecord struct {
	attempts  int
	firstFail time.Time
	lockedAt  time.Time
}

// BruteForceGuard tracks authentication failures per client address and
// locks out clients that exceed the failure threshold within the window.
type BruteForceGuard struct {
	mu      sync.Mutex
	records map[string]*failureRecord
	log     *logrus.Logger
	now     func() time.Time
}

// NewBruteForceGuard creates a new guard and starts a background cleanup goroutine
// that stops when ctx is cancelled.
func NewBruteForceGuard(ctx context.Context, log *logrus.Logger) *BruteForceGuard {
	g := newGuard(log, time.Now)
	go g.cleanupLoop(ctx)
	return g
}

func newGuard(log *logrus.Logger, now func() time.Time) *BruteForceGuard {
	return &BruteForceGuard{
		records: make(map[string]*failureRecord),
		log:     log,
		now:     now,
	}
}

// clientHash keeps raw client addresses out of memory dumps and logs.
func clientHash(client string) string {
	h := sha256.Sum256([]byte(client))
	return hex.EncodeToString(h[:])
}

// IsBlocked reports whether the client is currently locked out.
func (g *BruteForceGuard) IsBlocked(client string) bool {
	ch := clientHash(client)
	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.records[ch]
	if !ok {
		return false
	}

	return !rec.lockedAt.IsZero() && g.now().Sub(rec.lockedAt) < BruteForceLockout
}

// RecordFailure records a failed authentication attempt by the client.
func (g *BruteForceGuard) RecordFailure(client string) {
	ch := clientHash(client)
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.records[ch]
	if !ok {
		g.records[ch] = &failureRecord{attempts: 1, firstFail: now}
		return
	}

	if now.Sub(rec.firstFail) > BruteForceWindow {
		rec.attempts = 1
		rec.firstFail = now
		rec.lockedAt = time.Time{}
		return
	}

	rec.attempts++
	if rec.attempts >= BruteForceMaxAttempts && rec.lockedAt.IsZero() {
		rec.lockedAt = now
		g.log.WithField("client_hash", ch[:16]+"...").Warn("client locked out after repeated auth failures")
	}
}

// Reset clears failure tracking for a client after a successful authentication.
func (g *BruteForceGuard) Reset(client string) {
	ch := clientHash(client)
	g.mu.Lock()
	delete(g.records, ch)
	g.mu.Unlock()
}

func (g *BruteForceGuard) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(bruteForceCleanup)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.sweep()
		}
	}
}

// sweep drops expired lockouts and stale windows and caps the table size.
func (g *BruteForceGuard) sweep() {
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	for k, rec := range g.records {
		if !rec.lockedAt.IsZero() && now.Sub(rec.lockedAt) >= BruteForceLockout {
			delete(g.records, k)
		} else if rec.lockedAt.IsZero() && now.Sub(rec.firstFail) >= BruteForceWindow {
			delete(g.records, k)
		}
	}
	if len(g.records) > bruteForceMaxRecords {
		g.evictOldest(len(g.records) - bruteForceMaxRecords)
	}
}

// evictOldest removes n entries with the oldest firstFail times.
// Caller must hold g.mu.
func (g *BruteForceGuard) evictOldest(n int) {
	type entry struct {
		key  string
		time time.Time
	}
	entries := make([]entry, 0, len(g.records))
	for k, rec := range g.records {
		entries = append(entries, entry{k, rec.firstFail})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].time.Before(entries[j].time)
	})
	for i := range n {
		delete(g.records, entries[i].key)
	}
}

// Len returns the number of tracked clients.
func (g *BruteForceGuard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.records)
}
