package middleware

import (
	"strconv"
	"time"

	tbmetrics "tastebook/backend/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics collects Prometheus metrics for every HTTP request.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		method := c.Request.Method

		// FullPath keeps label cardinality bounded; fall back to the raw
		// path for unmatched routes.
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		latency := time.Since(start)

		if tbmetrics.HTTPRequestCounter != nil {
			tbmetrics.HTTPRequestCounter.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
		}
		if tbmetrics.HTTPRequestDuration != nil {
			tbmetrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(latency.Seconds())
		}
	}
}
