package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// BookingsTotal counts admission outcomes by resulting status.
	BookingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "railbook_bookings_total",
		Help: "Bookings created, labelled by admission outcome",
	}, []string{"status"})

	// CancellationsTotal counts cancelled bookings.
	CancellationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "railbook_cancellations_total",
		Help: "Bookings cancelled",
	})

	// PromotionsTotal counts promotion cascade steps by origin tier.
	PromotionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "railbook_promotions_total",
		Help: "Promotion steps, labelled by the tier they left",
	}, []string{"from"})

	// QueueDepth tracks the last observed depth of each waiting tier
	// per train.
	QueueDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "railbook_queue_depth",
		Help: "Active queue entries per tier and train",
	}, []string{"kind", "train_id"})

	// HTTPDuration observes request latency per route.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "railbook_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)

// Handler exposes the default registry for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveRequest records one finished HTTP request.
func ObserveRequest(method, path string, status int, elapsed time.Duration) {
	HTTPDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
