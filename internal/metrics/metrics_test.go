package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"forklift-training-service/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestAttemptCompletedCountsByTier(t *testing.T) {
	m := New()
	m.AttemptCompleted(domain.NewScoreRecord("op", 3, 3, time.Now()))
	m.AttemptCompleted(domain.NewScoreRecord("op", 1, 3, time.Now()))
	m.AttemptCompleted(domain.NewScoreRecord("op", 3, 3, time.Now()))

	if got := testutil.ToFloat64(m.attempts.WithLabelValues(string(domain.TierPass))); got != 2 {
		t.Fatalf("expected 2 passes, got %v", got)
	}
	if got := testutil.ToFloat64(m.attempts.WithLabelValues(string(domain.TierFail))); got != 1 {
		t.Fatalf("expected 1 fail, got %v", got)
	}
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/metrics", m.Handler())

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `http_requests_total{endpoint="/ping",method="GET",status="200"} 1`) {
		t.Fatalf("request counter missing from output:\n%s", w.Body.String())
	}
}
