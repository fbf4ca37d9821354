package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandlerExposesCounters(t *testing.T) {
	Mutations.WithLabelValues("add_task", "ok").Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `notiq_store_mutations_total{op="add_task",outcome="ok"}`) {
		t.Fatalf("missing mutation counter in output:\n%s", rec.Body.String())
	}
}
