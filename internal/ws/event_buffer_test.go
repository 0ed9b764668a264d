package ws

import (
	"testing"
	"time"
)

func TestEventBuffer_SinceAndMaxLen(t *testing.T) {
	eb := NewEventBuffer(3, time.Hour)
	defer eb.Stop()

	now := time.Now()
	for i := uint64(1); i <= 5; i++ {
		eb.Append("s", &Event{ID: i, Type: EventGraph, Time: now})
	}

	if got := eb.Evicted("s"); got != 2 {
		t.Errorf("expected events up to 2 evicted, got %d", got)
	}

	events := eb.Since("s", 3)
	if len(events) != 2 || events[0].ID != 4 || events[1].ID != 5 {
		t.Errorf("unexpected events: %+v", events)
	}
	if eb.Since("s", 5) != nil {
		t.Error("expected nil when caught up")
	}
	if eb.Since("unknown", 0) != nil {
		t.Error("expected nil for unknown session")
	}
}

func TestEventBuffer_KeepsNewestFrameOnly(t *testing.T) {
	eb := NewEventBuffer(10, time.Hour)
	defer eb.Stop()

	now := time.Now()
	eb.Append("s", &Event{ID: 1, Type: EventGraph, Time: now})
	eb.Append("s", &Event{ID: 2, Type: EventFrame, Time: now})
	eb.Append("s", &Event{ID: 3, Type: EventGraph, Time: now})
	eb.Append("s", &Event{ID: 4, Type: EventFrame, Time: now})

	events := eb.Since("s", 0)
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %+v", events)
	}
	if events[0].ID != 1 || events[1].ID != 3 || events[2].ID != 4 {
		t.Errorf("unexpected order %+v", events)
	}
	if got := eb.Evicted("s"); got != 0 {
		t.Errorf("superseded frames must not count as evicted, got %d", got)
	}
}

func TestEventBuffer_EvictsByAge(t *testing.T) {
	eb := NewEventBuffer(10, time.Minute)
	defer eb.Stop()

	start := time.Now()
	eb.Append("s", &Event{ID: 1, Type: EventGraph, Time: start})
	eb.Append("s", &Event{ID: 2, Type: EventGraph, Time: start.Add(2 * time.Minute)})

	if got := eb.Evicted("s"); got != 1 {
		t.Errorf("expected expired event evicted, got %d", got)
	}

	eb.Append("idle", &Event{ID: 1, Type: EventGraph, Time: start})
	eb.evictStale(start.Add(5 * time.Minute))

	if eb.Since("idle", 0) != nil {
		t.Error("expected idle session evicted")
	}
}

func TestEventBuffer_Drop(t *testing.T) {
	eb := NewEventBuffer(10, time.Hour)
	defer eb.Stop()

	eb.Append("s", &Event{ID: 1, Time: time.Now()})
	eb.Drop("s")

	if eb.Since("s", 0) != nil {
		t.Error("expected session dropped")
	}
}
