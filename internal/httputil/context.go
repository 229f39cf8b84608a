package httputil

import (
	"context"
	"net/http"
)

// Context key type to avoid collisions
type contextKey string

const requestIDKey contextKey = "requestID"

// WithRequestID adds the request id to the request context.
func WithRequestID(r *http.Request, id string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), requestIDKey, id))
}

// RequestID retrieves the request id, or empty string if not set.
func RequestID(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey).(string)
	return id
}
