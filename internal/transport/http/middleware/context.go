package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/infra/logger"
)

const (
	// RequestIDHeader carries the correlation identifier in both directions.
	RequestIDHeader = "X-Request-ID"
	// TraceIDHeader exposes the trace identifier to the console UI.
	TraceIDHeader = "X-Trace-ID"
	// TraceIDKey is the gin context key for the trace identifier.
	TraceIDKey = "trace_id"

	requestContextKey = "request_context"
)

// RequestContext holds request-scoped metadata.
type RequestContext struct {
	RequestID string
	TraceID   string
	IP        string
	UserAgent string
}

// EnrichContext assigns request and trace identifiers and stores them on both the gin
// context and the request context, so logger.WithContext and the backend client see them.
func EnrichContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		traceID := c.GetHeader(TraceIDHeader)
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
			traceID = sc.TraceID().String()
		}
		if traceID == "" {
			traceID = uuid.NewString()
		}

		c.Header(RequestIDHeader, requestID)
		c.Header(TraceIDHeader, traceID)
		c.Set(TraceIDKey, traceID)
		c.Set(requestContextKey, &RequestContext{
			RequestID: requestID,
			TraceID:   traceID,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		})

		ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey{}, requestID)
		ctx = context.WithValue(ctx, logger.TraceIDKey{}, traceID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetTraceID retrieves the trace ID from the context.
func GetTraceID(c *gin.Context) string {
	if id, ok := c.Get(TraceIDKey); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}

// GetRequestContext retrieves the request metadata, never nil.
func GetRequestContext(c *gin.Context) *RequestContext {
	if v, ok := c.Get(requestContextKey); ok {
		if reqCtx, ok := v.(*RequestContext); ok {
			return reqCtx
		}
	}
	return &RequestContext{}
}
