package obs

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Общие HTTP-метрики
var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets, // [0.005..10]
		},
		[]string{"method", "path", "status"},
	)

	kudosCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kudos_created_total",
			Help: "Kudos created, by resulting status.",
		},
		[]string{"status"},
	)

	kudosReviewedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kudos_reviewed_total",
			Help: "Kudos approval decisions, by outcome.",
		},
		[]string{"outcome"},
	)

	vouchersRedeemedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vouchers_redeemed_total",
		Help: "Vouchers redeemed.",
	})

	budgetResetsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "budget_resets_total",
		Help: "Monthly budget resets applied (lazy and sweep).",
	})

	initOnce sync.Once
)

// Регистрация метрик в default-регистре.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			httpInFlight, httpRequestsTotal, httpRequestDuration,
			kudosCreatedTotal, kudosReviewedTotal, vouchersRedeemedTotal, budgetResetsTotal,
		)
	})
}

// Хэндлер Prometheus.
func Handler() http.Handler {
	return promhttp.Handler()
}

// KudosCreated увеличивает счётчик создания kudos.
func KudosCreated(status string) {
	kudosCreatedTotal.WithLabelValues(strings.ToLower(status)).Inc()
}

// KudosReviewed увеличивает счётчик решений модерации.
func KudosReviewed(outcome string) {
	kudosReviewedTotal.WithLabelValues(strings.ToLower(outcome)).Inc()
}

// VoucherRedeemed увеличивает счётчик погашений ваучеров.
func VoucherRedeemed() { vouchersRedeemedTotal.Inc() }

// BudgetResets записывает число применённых месячных сбросов.
func BudgetResets(n int64) {
	if n > 0 {
		budgetResetsTotal.Add(float64(n))
	}
}

// CanonicalPath collapses entity ids in API paths so metric labels stay
// low-cardinality. Query strings are stripped.
func CanonicalPath(p string) string {
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/api/") {
		return p
	}
	parts := strings.Split(p[1:], "/")
	// статичные подпути, которые не являются идентификаторами
	static := map[string]struct{}{
		"me": {}, "all": {}, "user": {}, "tags": {}, "read": {}, "read-all": {},
		"approve": {}, "reject": {}, "review": {}, "redeem": {}, "members": {},
		"leaderboard": {}, "login": {}, "register": {}, "change-password": {},
		"comments": {}, "events": {},
	}
	for i := 2; i < len(parts); i++ {
		if _, ok := static[parts[i]]; ok {
			continue
		}
		parts[i] = ":id"
	}
	return "/" + strings.Join(parts, "/")
}

// Обёртка для измерения RPS/latency/в полёте.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := CanonicalPath(r.URL.Path)
		method := r.Method

		httpInFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: 200}
		next.ServeHTTP(sw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(sw.code)

		httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpInFlight.Dec()
	})
}

// statusWriter — локальная копия, чтобы знать код ответа.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// Flush пробрасываем дальше: без него не работает SSE.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
