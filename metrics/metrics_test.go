package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordPrediction(t *testing.T) {
	before := testutil.ToFloat64(intentPredictions.WithLabelValues("pricing", "rules"))

	RecordPrediction("pricing", "rules")
	RecordPrediction("pricing", "rules")

	after := testutil.ToFloat64(intentPredictions.WithLabelValues("pricing", "rules"))
	if after-before != 2 {
		t.Errorf("counter grew by %v, want 2", after-before)
	}
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Middleware())
	router.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	counter := httpRequests.WithLabelValues("GET", "/items/:id", "204")
	before := testutil.ToFloat64(counter)

	for _, path := range []string{"/items/1", "/items/2"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := testutil.ToFloat64(counter) - before; got != 2 {
		t.Errorf("counter grew by %v, want 2", got)
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	RecordCall("booked")

	router := gin.New()
	router.GET("/metrics", Handler())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "receptionist_calls_total") {
		t.Error("metrics output missing receptionist_calls_total")
	}
}
