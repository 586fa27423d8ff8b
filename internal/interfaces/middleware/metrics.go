package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetrics counts requests and observes latency per route template,
// so path parameters do not explode label cardinality.
func RequestMetrics(requests *prometheus.CounterVec, latency *prometheus.HistogramVec) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		requests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		latency.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
