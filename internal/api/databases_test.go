package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/graphstudio/studio/driver"
	"github.com/graphstudio/studio/internal/api"
)

func newDatabaseRouter(m *mockDatabases) *gin.Engine {
	h := api.NewDatabaseHandler(m, testLogger())

	r := gin.New()
	r.GET("/databases", h.List)
	r.POST("/databases", h.Create)
	r.DELETE("/databases/:name", h.Delete)

	return r
}

func TestListDatabases(t *testing.T) {
	r := newDatabaseRouter(&mockDatabases{
		listFn: func(context.Context) ([]driver.Database, error) {
			return []driver.Database{{Name: "social"}, {Name: "bio"}}, nil
		},
	})

	w := doRequest(r, http.MethodGet, "/databases", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body struct {
		Databases []driver.Database `json:"databases"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(body.Databases) != 2 || body.Databases[0].Name != "social" {
		t.Errorf("unexpected databases %+v", body.Databases)
	}
}

func TestListDatabases_UpstreamFailure(t *testing.T) {
	r := newDatabaseRouter(&mockDatabases{
		listFn: func(context.Context) ([]driver.Database, error) {
			return nil, errors.New("connection refused")
		},
	})

	w := doRequest(r, http.MethodGet, "/databases", "")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
}

func TestCreateDatabase(t *testing.T) {
	var created string
	m := &mockDatabases{
		createFn: func(_ context.Context, name string) error {
			if name == "taken" {
				return &driver.APIError{StatusCode: http.StatusConflict, Code: "DBE1", Message: "exists"}
			}
			created = name
			return nil
		},
	}
	r := newDatabaseRouter(m)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"created", `{"name":" social "}`, http.StatusCreated},
		{"malformed", `{"name":`, http.StatusBadRequest},
		{"invalid name", `{"name":"a/b"}`, http.StatusBadRequest},
		{"conflict", `{"name":"taken"}`, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, http.MethodPost, "/databases", tt.body)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.want, w.Body.String())
			}
		})
	}

	if created != "social" {
		t.Errorf("expected trimmed name to reach the server, got %q", created)
	}
}

func TestDeleteDatabase(t *testing.T) {
	r := newDatabaseRouter(&mockDatabases{
		deleteFn: func(_ context.Context, name string) error {
			if name == "missing" {
				return &driver.APIError{StatusCode: http.StatusNotFound, Code: "DBE2", Message: "no such database"}
			}
			return nil
		},
	})

	if w := doRequest(r, http.MethodDelete, "/databases/social", ""); w.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", w.Code)
	}
	if w := doRequest(r, http.MethodDelete, "/databases/missing", ""); w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if w := doRequest(r, http.MethodDelete, "/databases/bad%20name", ""); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}
