package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPRequestsTotal 按路由、方法、状态码计数
var HTTPRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "posts_http_requests_total",
		Help: "Total number of HTTP requests handled",
	},
	[]string{"path", "method", "status"},
)

// HTTPRequestDuration 请求耗时分布
var HTTPRequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "posts_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"path", "method"},
)

// RateLimitedTotal 被限流拒绝的请求数
var RateLimitedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "posts_http_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	},
)

func init() {
	prometheus.MustRegister(HTTPRequestsTotal, HTTPRequestDuration, RateLimitedTotal)
}
