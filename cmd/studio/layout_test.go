package main

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/graphstudio/studio/internal/graph"
	"github.com/graphstudio/studio/internal/loader"
	"github.com/graphstudio/studio/internal/models"
)

type fakeLoader struct {
	runFn func(ctx context.Context, req loader.Request, b *graph.Builder, h graph.Handler) error
}

func (f *fakeLoader) Run(ctx context.Context, req loader.Request, b *graph.Builder, h graph.Handler) error {
	return f.runFn(ctx, req, b, h)
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func personWithName(b *graph.Builder) {
	person, _ := b.PutVertex(graph.ThingKey("0x01"), func(id int) models.VertexData {
		return models.VertexData{ID: id, Encoding: models.EncodingEntity, Label: "person: 0x01", ShortLabel: "person", Width: 110, Height: 60}
	})
	name, _ := b.PutVertex(graph.AttributeKey("name", "alice"), func(id int) models.VertexData {
		return models.VertexData{ID: id, Encoding: models.EncodingAttribute, Label: "name: alice", ShortLabel: "alice", Width: 110, Height: 60}
	})
	b.Link(person, name, "has", models.HighlightNone)
}

func TestLayoutQuery(t *testing.T) {
	l := &fakeLoader{runFn: func(_ context.Context, req loader.Request, b *graph.Builder, h graph.Handler) error {
		if req.Database != "social" {
			t.Errorf("database = %s", req.Database)
		}
		personWithName(b)
		h.Complete()
		return nil
	}}

	snap, err := layoutQuery(context.Background(), l, loader.Request{Database: "social", Query: "match $x isa person;"}, 7, 50, quietLogger())
	if err != nil {
		t.Fatalf("layoutQuery: %v", err)
	}

	if len(snap.Graph.Vertices) != 2 || len(snap.Graph.Edges) != 1 {
		t.Fatalf("got %d vertices, %d edges", len(snap.Graph.Vertices), len(snap.Graph.Edges))
	}
	if snap.Frame == nil {
		t.Fatal("expected a frame")
	}
	if len(snap.Frame.Vertices) != 2 {
		t.Errorf("frame has %d vertex positions, want 2", len(snap.Frame.Vertices))
	}
}

func TestLayoutQuery_Deterministic(t *testing.T) {
	l := &fakeLoader{runFn: func(_ context.Context, _ loader.Request, b *graph.Builder, h graph.Handler) error {
		personWithName(b)
		h.Complete()
		return nil
	}}

	a, err := layoutQuery(context.Background(), l, loader.Request{Database: "social", Query: "q"}, 3, 20, quietLogger())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	b, err := layoutQuery(context.Background(), l, loader.Request{Database: "social", Query: "q"}, 3, 20, quietLogger())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	for i := range a.Frame.Vertices {
		if a.Frame.Vertices[i] != b.Frame.Vertices[i] {
			t.Errorf("vertex %d differs: %+v vs %+v", i, a.Frame.Vertices[i], b.Frame.Vertices[i])
		}
	}
}

func TestLayoutQuery_LoaderError(t *testing.T) {
	boom := errors.New("boom")
	l := &fakeLoader{runFn: func(_ context.Context, _ loader.Request, _ *graph.Builder, h graph.Handler) error {
		h.PutError(boom)
		return boom
	}}

	_, err := layoutQuery(context.Background(), l, loader.Request{Database: "social", Query: "q"}, 1, 10, quietLogger())
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped boom", err)
	}
}
