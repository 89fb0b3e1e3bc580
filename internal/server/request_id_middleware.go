package server

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

var contextKeyRequestID = contextKey("request-id")

// RequestIDMiddleware tags each request with an ID for log correlation. The
// ID lives in the request context; the request itself is left untouched so
// that forwarded requests reach the origin exactly as sent.
type RequestIDMiddleware struct {
	next http.Handler
}

func WithRequestIDMiddleware(next http.Handler) http.Handler {
	return &RequestIDMiddleware{
		next: next,
	}
}

func RequestID(r *http.Request) string {
	id, _ := r.Context().Value(contextKeyRequestID).(string)
	return id
}

func (h *RequestIDMiddleware) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.Header.Get(requestIDHeader)
	if id == "" {
		id = h.generateID()
	}

	ctx := context.WithValue(r.Context(), contextKeyRequestID, id)
	h.next.ServeHTTP(w, r.WithContext(ctx))
}

func (h *RequestIDMiddleware) generateID() string {
	return uuid.New().String()
}
