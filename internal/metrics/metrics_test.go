package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRegisterExposesMetricsEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	Register(r, "/metrics")

	UploadsTotal.WithLabelValues("succeeded").Inc()
	DeletesTotal.Inc()

	req, _ := http.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()

	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "artifact_uploads_total") {
		t.Fatalf("expected upload counter in metrics output")
	}
	if !strings.Contains(body, "artifact_deletes_total") {
		t.Fatalf("expected delete counter in metrics output")
	}
}
