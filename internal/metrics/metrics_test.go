package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func findMetric(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) *dto.Metric {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue next
				}
			}
			return m
		}
	}
	t.Fatalf("metric %s%v not found", name, labels)
	return nil
}

func TestCollector_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordMagicLink("sent")
	c.RecordMagicLink("sent")
	c.RecordMagicLink("skipped")
	c.RecordSignIn(true)
	c.RecordSignIn(false)
	c.RecordProfileOp("update", "saved")

	if v := findMetric(t, reg, "magicprofile_magic_link_requests_total", map[string]string{"outcome": "sent"}).GetCounter().GetValue(); v != 2 {
		t.Errorf("sent = %v, want 2", v)
	}
	if v := findMetric(t, reg, "magicprofile_magic_link_requests_total", map[string]string{"outcome": "skipped"}).GetCounter().GetValue(); v != 1 {
		t.Errorf("skipped = %v, want 1", v)
	}
	if v := findMetric(t, reg, "magicprofile_sign_ins_total", map[string]string{"result": "failure"}).GetCounter().GetValue(); v != 1 {
		t.Errorf("failed sign-ins = %v, want 1", v)
	}
	if v := findMetric(t, reg, "magicprofile_profile_operations_total", map[string]string{"op": "update", "status": "saved"}).GetCounter().GetValue(); v != 1 {
		t.Errorf("profile updates = %v, want 1", v)
	}
}

func TestCollector_HTTPRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPRequest("POST", "/account", 303, 20*time.Millisecond)

	m := findMetric(t, reg, "magicprofile_http_requests_total", map[string]string{"route": "/account", "status_code": "303"})
	if m.GetCounter().GetValue() != 1 {
		t.Errorf("requests = %v, want 1", m.GetCounter().GetValue())
	}
	h := findMetric(t, reg, "magicprofile_http_request_duration_seconds", map[string]string{"route": "/account"})
	if h.GetHistogram().GetSampleCount() != 1 {
		t.Errorf("latency samples = %d, want 1", h.GetHistogram().GetSampleCount())
	}
}

func TestHandler_ExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordSignIn(true)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `magicprofile_sign_ins_total{result="success"} 1`) {
		t.Errorf("metrics output missing sign-in counter:\n%s", body)
	}
}

func TestNoop_SatisfiesRecorder(t *testing.T) {
	var r Recorder = Noop{}
	r.RecordMagicLink("sent")
	r.RecordHTTPRequest("GET", "/", 200, time.Millisecond)
}
