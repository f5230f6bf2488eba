package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what handlers and middleware report to.
type Recorder interface {
	RecordMagicLink(outcome string)
	RecordSignIn(success bool)
	RecordProfileOp(op, status string)
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
}

type Collector struct {
	magicLinks   *prometheus.CounterVec
	signIns      *prometheus.CounterVec
	profileOps   *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		magicLinks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "magicprofile_magic_link_requests_total",
			Help: "Sign-in link requests by outcome (sent, skipped, failed).",
		}, []string{"outcome"}),
		signIns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "magicprofile_sign_ins_total",
			Help: "Magic link verifications by result.",
		}, []string{"result"}),
		profileOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "magicprofile_profile_operations_total",
			Help: "Profile controller operations by operation and status.",
		}, []string{"op", "status"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "magicprofile_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "magicprofile_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		c.magicLinks,
		c.signIns,
		c.profileOps,
		c.httpRequests,
		c.httpLatency,
	)

	return c
}

func (c *Collector) RecordMagicLink(outcome string) {
	c.magicLinks.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordSignIn(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	c.signIns.WithLabelValues(result).Inc()
}

func (c *Collector) RecordProfileOp(op, status string) {
	c.profileOps.WithLabelValues(op, status).Inc()
}

func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Handler serves the registry for Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Noop discards everything. Used when metrics are disabled and in tests.
type Noop struct{}

func (Noop) RecordMagicLink(string)                               {}
func (Noop) RecordSignIn(bool)                                    {}
func (Noop) RecordProfileOp(string, string)                       {}
func (Noop) RecordHTTPRequest(string, string, int, time.Duration) {}
