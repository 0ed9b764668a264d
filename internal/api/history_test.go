package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/graphstudio/studio/internal/api"
	"github.com/graphstudio/studio/internal/models"
	"github.com/graphstudio/studio/internal/service"
)

func newHistoryRouter(m *mockHistory) *gin.Engine {
	h := api.NewHistoryHandler(m, testLogger())

	r := gin.New()
	r.GET("/history", h.List)
	r.DELETE("/history", h.Purge)

	return r
}

func TestListHistory(t *testing.T) {
	var got models.HistoryQueryOpts
	r := newHistoryRouter(&mockHistory{
		enabled: true,
		listFn: func(_ context.Context, opts models.HistoryQueryOpts) ([]models.QueryRun, bool, error) {
			got = opts
			return []models.QueryRun{{ID: 7, Database: "social", Query: "match $x;", Vertices: 3}}, true, nil
		},
	})

	w := doRequest(r, http.MethodGet, "/history?database=social&since=2026-01-01T00:00:00Z&limit=5000&offset=-3", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if got.Database != "social" || got.Limit != 1000 || got.Offset != 0 {
		t.Errorf("unexpected opts %+v", got)
	}
	if got.Since == nil || !got.Since.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected since %v", got.Since)
	}

	var body struct {
		Runs    []models.QueryRun `json:"runs"`
		HasMore bool              `json:"has_more"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(body.Runs) != 1 || !body.HasMore {
		t.Errorf("unexpected body %+v", body)
	}
}

func TestListHistory_BadSince(t *testing.T) {
	r := newHistoryRouter(&mockHistory{enabled: true})

	if w := doRequest(r, http.MethodGet, "/history?since=yesterday", ""); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestListHistory_Disabled(t *testing.T) {
	r := newHistoryRouter(&mockHistory{
		listFn: func(context.Context, models.HistoryQueryOpts) ([]models.QueryRun, bool, error) {
			return nil, false, service.ErrHistoryDisabled
		},
	})

	w := doRequest(r, http.MethodGet, "/history", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["code"] != api.ErrCodeHistoryDisabled {
		t.Errorf("expected code %q, got %v", api.ErrCodeHistoryDisabled, body["code"])
	}
}

func TestPurgeHistory(t *testing.T) {
	var cutoff time.Time
	r := newHistoryRouter(&mockHistory{
		enabled: true,
		purgeFn: func(_ context.Context, before time.Time) (int64, error) {
			if before.Year() == 1999 {
				return 0, errors.New("db down")
			}
			cutoff = before
			return 4, nil
		},
	})

	w := doRequest(r, http.MethodDelete, "/history?before=2026-02-01T00:00:00Z", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !cutoff.Equal(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected cutoff %v", cutoff)
	}

	var body struct {
		Deleted int64 `json:"deleted"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Deleted != 4 {
		t.Errorf("expected 4 deleted, got %d", body.Deleted)
	}

	if w := doRequest(r, http.MethodDelete, "/history", ""); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without before, got %d", w.Code)
	}
	if w := doRequest(r, http.MethodDelete, "/history?before=soon", ""); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad before, got %d", w.Code)
	}
	if w := doRequest(r, http.MethodDelete, "/history?before=1999-01-01T00:00:00Z", ""); w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 on store failure, got %d", w.Code)
	}
}
