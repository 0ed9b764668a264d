package models_test

import (
	"strings"
	"testing"

	"github.com/graphstudio/studio/internal/models"
)

func assertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func assertErrorContains(t *testing.T, err error, want string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected error containing %q, got nil", want)
	}

	if !strings.Contains(err.Error(), want) {
		t.Errorf("expected error containing %q, got %q", want, err.Error())
	}
}

func TestIncompleteEdgeData_Resolve(t *testing.T) {
	tests := []struct {
		name       string
		dir        models.EdgeDirection
		wantSource int
		wantTarget int
	}{
		{name: "outgoing starts at known vertex", dir: models.DirectionOutgoing, wantSource: 3, wantTarget: 9},
		{name: "incoming ends at known vertex", dir: models.DirectionIncoming, wantSource: 9, wantTarget: 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := models.IncompleteEdgeData{ID: 5, VertexID: 3, Direction: tc.dir, Label: "has", Highlight: models.HighlightInferred}
			got := e.Resolve(9)
			if got.Source != tc.wantSource || got.Target != tc.wantTarget {
				t.Errorf("got %d->%d, want %d->%d", got.Source, got.Target, tc.wantSource, tc.wantTarget)
			}
			if got.ID != 5 || got.Label != "has" || got.Highlight != models.HighlightInferred {
				t.Errorf("resolved edge lost fields: %+v", got)
			}
		})
	}
}

func TestGraphData_IsEmpty(t *testing.T) {
	if !(models.GraphData{}).IsEmpty() {
		t.Error("zero GraphData should be empty")
	}
	g := models.GraphData{Edges: []models.EdgeData{{ID: 1}}}
	if g.IsEmpty() {
		t.Error("graph with an edge should not be empty")
	}
}

func TestGraphData_Merge(t *testing.T) {
	g := models.GraphData{Vertices: []models.VertexData{{ID: 1}}, Edges: []models.EdgeData{{ID: 10}}}
	g.Merge(models.GraphData{
		Vertices: []models.VertexData{{ID: 1}, {ID: 2}},
		Edges:    []models.EdgeData{{ID: 10}, {ID: 11}},
	})

	if len(g.Vertices) != 2 || g.Vertices[1].ID != 2 {
		t.Errorf("vertices = %+v, want ids [1 2]", g.Vertices)
	}
	if len(g.Edges) != 2 || g.Edges[1].ID != 11 {
		t.Errorf("edges = %+v, want ids [10 11]", g.Edges)
	}
}

func TestVertexEncoding(t *testing.T) {
	if !models.EncodingRelationType.IsType() || models.EncodingRelation.IsType() {
		t.Error("IsType misclassifies relation encodings")
	}
	if !models.EncodingRelation.IsRelationLike() || models.EncodingEntity.IsRelationLike() {
		t.Error("IsRelationLike misclassifies")
	}
	if models.VertexEncoding("roleType").Valid() {
		t.Error("roleType is not a vertex encoding")
	}
}

func TestQueryRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     models.QueryRequest
		wantErr string
	}{
		{name: "valid", req: models.QueryRequest{Database: "social", Query: "match $x isa person;"}},
		{name: "missing database", req: models.QueryRequest{Query: "match $x isa person;"}, wantErr: "database is required"},
		{name: "blank database", req: models.QueryRequest{Database: "  ", Query: "match"}, wantErr: "database is required"},
		{name: "missing query", req: models.QueryRequest{Database: "social", Query: " "}, wantErr: "query is required"},
		{name: "database too long", req: models.QueryRequest{Database: strings.Repeat("x", 256), Query: "match"}, wantErr: "exceeds maximum length"},
		{name: "query too long", req: models.QueryRequest{Database: "d", Query: strings.Repeat("x", 65537)}, wantErr: "exceeds maximum length"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if tc.wantErr != "" {
				assertErrorContains(t, err, tc.wantErr)
				return
			}
			assertNoError(t, err)
		})
	}
}

func TestCreateDatabaseRequest_Validate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"valid", "  social_network-1 ", ""},
		{"empty", "   ", "database is required"},
		{"slash", "a/b", "may only contain"},
		{"space", "a b", "may only contain"},
		{"too long", strings.Repeat("d", 256), "exceeds maximum length"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := models.CreateDatabaseRequest{Name: tt.in}
			err := req.Validate()
			if tt.want == "" {
				assertNoError(t, err)
				if req.Name != "social_network-1" {
					t.Errorf("expected trimmed name, got %q", req.Name)
				}
				return
			}
			assertErrorContains(t, err, tt.want)
		})
	}
}
