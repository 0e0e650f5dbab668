package handlers

import (
	tracer "github.com/dhawal-pandya/aeonis/packages/tracer-sdk/go"
	"github.com/gin-gonic/gin"
)

// Tracer is the process-wide span factory. It is set once at startup (or by
// test setup) before any request is served.
var Tracer *tracer.Tracer

func SetTracer(t *tracer.Tracer) {
	Tracer = t
}

// InitTracerForTests wires a tracer pointed at a local collector that does
// not need to be running.
func InitTracerForTests() {
	if Tracer != nil {
		return
	}
	Tracer = tracer.NewTracer(
		"dinehub-test",
		"http://localhost:8000/v1/traces",
		"test-key",
		tracer.NewPIISanitizer(),
	)
}

// TraceMiddleware creates the root span for each request.
func TraceMiddleware(t *tracer.Tracer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := t.StartSpan(c.Request.Context(), c.Request.URL.Path)
		defer span.End()

		span.SetAttributes(map[string]interface{}{
			"http.method":     c.Request.Method,
			"http.url":        c.Request.URL.String(),
			"http.client_ip":  c.ClientIP(),
			"http.user_agent": c.Request.UserAgent(),
		})

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		span.SetAttributes(map[string]interface{}{
			"http.status_code": c.Writer.Status(),
		})
	}
}
