package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveAttempt(t *testing.T) {
	before := testutil.ToFloat64(AnalysisAttempts.WithLabelValues("text", OutcomeQuota))

	ObserveAttempt("text", OutcomeQuota, 1500*time.Millisecond)

	after := testutil.ToFloat64(AnalysisAttempts.WithLabelValues("text", OutcomeQuota))
	if after-before != 1 {
		t.Fatalf("expected attempt counter to grow by 1, got %v", after-before)
	}
}

func TestRecordRotation(t *testing.T) {
	before := testutil.ToFloat64(KeyRotations.WithLabelValues(RotationAuth))

	RecordRotation(RotationAuth)
	RecordRotation(RotationAuth)

	if got := testutil.ToFloat64(KeyRotations.WithLabelValues(RotationAuth)) - before; got != 2 {
		t.Fatalf("expected 2 rotations, got %v", got)
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	RecordTransition("ready")
	RecordExport(OutcomeSuccess)

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	for _, name := range []string{"agentcv_workflow_transitions_total", "agentcv_exports_total"} {
		if !strings.Contains(string(body), name) {
			t.Fatalf("expected %s in metrics output", name)
		}
	}
}
