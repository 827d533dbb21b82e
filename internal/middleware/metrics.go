// Package middleware provides HTTP middleware for metrics collection.
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"infographic-service/internal/metrics"
)

// Metrics records request counts and durations per route. The route template
// (e.g. /api/infographic/:taskId/status) is used as the endpoint label so task
// ids do not explode label cardinality.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		metrics.RecordHTTPRequest(c.Request.Method, endpoint, status, time.Since(start))
	}
}
