package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/graphstudio/studio/internal/middleware"
	"github.com/graphstudio/studio/internal/security"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func authRouter(key string, guard *security.BruteForceGuard) *gin.Engine {
	r := gin.New()
	r.Use(middleware.StaticKeyAuth(key, guard, quietLogger()))
	r.GET("/test", func(c *gin.Context) {
		if key != "" && !c.GetBool(middleware.AuthenticatedKey) {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusOK)
	})
	return r
}

func doAuth(r *gin.Engine, header string) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.RemoteAddr = "10.1.1.1:4000"
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	r.ServeHTTP(w, req)
	return w.Code
}

func TestStaticKeyAuth(t *testing.T) {
	r := authRouter("good-key", nil)

	tests := []struct {
		name       string
		authHeader string
		wantCode   int
	}{
		{"valid token", "Bearer good-key", http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"invalid token", "Bearer bad-key", http.StatusUnauthorized},
		{"prefix of key", "Bearer good", http.StatusUnauthorized},
		{"no bearer prefix", "good-key", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := doAuth(r, tt.authHeader); got != tt.wantCode {
				t.Errorf("got %d, want %d", got, tt.wantCode)
			}
		})
	}
}

func TestStaticKeyAuth_DisabledWithoutKey(t *testing.T) {
	r := authRouter("", nil)

	if got := doAuth(r, ""); got != http.StatusOK {
		t.Errorf("expected open access without a key, got %d", got)
	}
}

func TestStaticKeyAuth_LocksOutRepeatedFailures(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	guard := security.NewBruteForceGuard(ctx, quietLogger())
	r := authRouter("good-key", guard)

	for range security.BruteForceMaxAttempts {
		if got := doAuth(r, "Bearer wrong"); got != http.StatusUnauthorized {
			t.Fatalf("expected 401 while counting failures, got %d", got)
		}
	}

	if got := doAuth(r, "Bearer good-key"); got != http.StatusTooManyRequests {
		t.Errorf("expected locked-out client to get 429, got %d", got)
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		upgrade string
		query   string
		want    string
	}{
		{name: "bearer", header: "Bearer abc123", want: "abc123"},
		{name: "no prefix", header: "abc123", want: ""},
		{name: "empty", want: ""},
		{name: "empty bearer", header: "Bearer ", want: ""},
		{name: "lowercase scheme", header: "bearer abc", want: ""},
		{name: "websocket query", upgrade: "websocket", query: "?access_token=ws-key", want: "ws-key"},
		{name: "query ignored without upgrade", query: "?access_token=ws-key", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/"+tt.query, http.NoBody)
			if tt.header != "" {
				c.Request.Header.Set("Authorization", tt.header)
			}
			if tt.upgrade != "" {
				c.Request.Header.Set("Upgrade", tt.upgrade)
			}
			got := middleware.ExtractBearerToken(c)
			if got != tt.want {
				t.Errorf("ExtractBearerToken() = %q, want %q", got, tt.want)
			}
		})
	}
}
