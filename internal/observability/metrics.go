package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	editsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "retouch_edits_total",
		Help: "Edit requests by outcome.",
	}, []string{"outcome"})

	downloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "retouch_downloads_total",
		Help: "Download resolutions by outcome.",
	}, []string{"outcome"})

	editDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "retouch_edit_duration_seconds",
		Help:    "Latency of the external image edit call.",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	}, []string{"success"})
)

func CountEdit(outcome string) {
	editsTotal.WithLabelValues(outcome).Inc()
}

func CountDownload(outcome string) {
	downloadsTotal.WithLabelValues(outcome).Inc()
}

func ObserveEditDuration(d time.Duration, success bool) {
	editDuration.WithLabelValues(strconv.FormatBool(success)).Observe(d.Seconds())
}

// MetricsHandler exposes the prometheus registry for the /metrics route.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
