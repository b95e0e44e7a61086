package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	OrdersCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Total number of orders placed",
		},
	)

	// reason: validation / not_found / stock / price_mismatch / conflict / timeout / internal
	CheckoutFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_failures_total",
			Help: "Total number of rejected or failed checkouts",
		},
		[]string{"reason"},
	)

	OrderStatusTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_status_transitions_total",
			Help: "Total number of order status changes",
		},
		[]string{"from", "to"},
	)

	// 注文金額（ドル）
	OrderAmount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "order_amount_dollars",
			Help:    "Order totals in dollars",
			Buckets: []float64{10, 50, 100, 500, 1000, 5000},
		},
	)
)

// Middlewareはリクエスト数と処理時間を記録する
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			endpoint := c.Path()
			if endpoint == "" {
				endpoint = "unmatched"
			}

			RequestsTotal.WithLabelValues(
				c.Request().Method,
				endpoint,
				strconv.Itoa(c.Response().Status),
			).Inc()

			RequestDuration.WithLabelValues(
				c.Request().Method,
				endpoint,
			).Observe(time.Since(start).Seconds())

			return nil
		}
	}
}
