package server

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/resdevops/maintenance-proxy/internal/metrics"
)

type contextKey string

type LoggingMiddleware struct {
	logger    *slog.Logger
	extractor ClientAddressExtractor
	next      http.Handler
}

func WithLoggingMiddleware(logger *slog.Logger, extractor ClientAddressExtractor, next http.Handler) http.Handler {
	return &LoggingMiddleware{
		logger:    logger,
		extractor: extractor,
		next:      next,
	}
}

func (h *LoggingMiddleware) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writer := newLoggerResponseWriter(w)

	var decision Decision
	ctx := context.WithValue(r.Context(), contextKeyDecision, &decision)
	r = r.WithContext(ctx)

	metrics.Tracker.AddInflightRequest()
	defer metrics.Tracker.SubtractInflightRequest()

	started := time.Now()
	h.next.ServeHTTP(writer, r)
	elapsed := time.Since(started)

	metrics.Tracker.TrackRequest(decision.String(), r.Method, writer.statusCode, elapsed)

	h.logger.LogAttrs(r.Context(), slog.LevelInfo, "Request",
		slog.String("host", r.Host),
		slog.String("path", r.URL.Path),
		slog.String("query", r.URL.RawQuery),
		slog.String("request_id", RequestID(r)),
		slog.String("decision", decision.String()),
		slog.Int("status", writer.statusCode),
		slog.Int64("duration", elapsed.Nanoseconds()),
		slog.String("method", r.Method),
		slog.Int64("req_content_length", r.ContentLength),
		slog.String("req_content_type", r.Header.Get("Content-Type")),
		slog.Int64("resp_content_length", writer.bytesWritten),
		slog.String("resp_content_type", writer.Header().Get("Content-Type")),
		slog.String("client_addr", h.extractor(r)),
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("user_agent", r.Header.Get("User-Agent")),
	)
}

type loggerResponseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
}

func newLoggerResponseWriter(w http.ResponseWriter) *loggerResponseWriter {
	return &loggerResponseWriter{w, http.StatusOK, 0}
}

// WriteHeader is used to capture the status code
func (r *loggerResponseWriter) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

// Write is used to capture the amount of data written
func (r *loggerResponseWriter) Write(b []byte) (int, error) {
	bytesWritten, err := r.ResponseWriter.Write(b)
	r.bytesWritten += int64(bytesWritten)
	return bytesWritten, err
}

func (r *loggerResponseWriter) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func (r *loggerResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("ResponseWriter does not implement http.Hijacker")
	}

	con, rw, err := hijacker.Hijack()
	if err == nil {
		r.statusCode = http.StatusSwitchingProtocols
	}
	return con, rw, err
}
