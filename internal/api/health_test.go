package api_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/graphstudio/studio/internal/api"
	"github.com/graphstudio/studio/internal/db"
)

func TestLiveness_ReturnsOK(t *testing.T) {
	t.Parallel()

	h := api.NewHealthHandler(&mockServer{err: errors.New("down")}, nil, &mockSessions{}, testLogger(), "test-v1")

	r := gin.New()
	r.GET("/health", h.Liveness)

	w := doRequest(r, http.MethodGet, "/health", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if body["status"] != "ok" {
		t.Errorf("expected status 'ok', got %v", body["status"])
	}

	if body["version"] != "test-v1" {
		t.Errorf("expected version 'test-v1', got %v", body["version"])
	}

	if body["history"] != "disabled" {
		t.Errorf("expected history 'disabled', got %v", body["history"])
	}
}

func TestReadiness(t *testing.T) {
	t.Parallel()

	current := int64(db.SchemaVersion())

	tests := []struct {
		name      string
		typedbErr error
		historyDB api.HistoryDB
		want      int
		checks    map[string]string
	}{
		{
			name:   "typedb only",
			want:   http.StatusOK,
			checks: map[string]string{"typedb": "ok"},
		},
		{
			name:      "typedb down",
			typedbErr: errors.New("connection refused"),
			want:      http.StatusServiceUnavailable,
			checks:    map[string]string{"typedb": "error"},
		},
		{
			name:      "history ready",
			historyDB: &mockHistoryDB{version: current},
			want:      http.StatusOK,
			checks:    map[string]string{"typedb": "ok", "database": "ok", "schema": "ok"},
		},
		{
			name:      "history unreachable",
			historyDB: &mockHistoryDB{pingErr: errors.New("refused")},
			want:      http.StatusServiceUnavailable,
			checks:    map[string]string{"typedb": "ok", "database": "error", "schema": "unknown"},
		},
		{
			name:      "schema behind",
			historyDB: &mockHistoryDB{version: current - 1},
			want:      http.StatusServiceUnavailable,
			checks:    map[string]string{"typedb": "ok", "database": "ok", "schema": "error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := api.NewHealthHandler(&mockServer{err: tt.typedbErr}, tt.historyDB, nil, testLogger(), "test")

			r := gin.New()
			r.GET("/ready", h.Readiness)

			w := doRequest(r, http.MethodGet, "/ready", "")
			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, w.Code)
			}

			var body struct {
				Checks map[string]string `json:"checks"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if len(body.Checks) != len(tt.checks) {
				t.Fatalf("expected checks %v, got %v", tt.checks, body.Checks)
			}
			for k, v := range tt.checks {
				if body.Checks[k] != v {
					t.Errorf("check %s = %q, want %q", k, body.Checks[k], v)
				}
			}
		})
	}
}
