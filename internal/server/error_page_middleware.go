package server

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
)

var (
	//go:embed pages
	pages embed.FS

	contextKeyErrorResponse = contextKey("error-response")
)

type errorResponseContent struct {
	StatusCode int
}

// ErrorPageMiddleware renders a page for failures that happen after the
// request was classified as trusted, such as an unreachable origin.
type ErrorPageMiddleware struct {
	template *template.Template
	next     http.Handler
}

func WithErrorPageMiddleware(next http.Handler) http.Handler {
	template, err := template.ParseFS(pages, "pages/[0-9]*.html")
	if err != nil {
		slog.Error("Failed to parse error page templates", "error", err)
		template = nil
	}

	return &ErrorPageMiddleware{
		template: template,
		next:     next,
	}
}

// SetErrorResponse asks the error page middleware to render the page for
// statusCode once the handler returns. Without the middleware in the chain,
// a plain text error is written instead.
func SetErrorResponse(w http.ResponseWriter, r *http.Request, statusCode int) {
	errorResponse, ok := r.Context().Value(contextKeyErrorResponse).(*errorResponseContent)
	if ok {
		errorResponse.StatusCode = statusCode
	} else {
		http.Error(w, http.StatusText(statusCode), statusCode)
	}
}

func (h *ErrorPageMiddleware) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var errorResponse errorResponseContent
	ctx := context.WithValue(r.Context(), contextKeyErrorResponse, &errorResponse)
	r = r.WithContext(ctx)

	h.next.ServeHTTP(w, r)

	if errorResponse.StatusCode != 0 {
		h.respondWithErrorPage(w, errorResponse.StatusCode)
	}
}

// Private

func (h *ErrorPageMiddleware) respondWithErrorPage(w http.ResponseWriter, statusCode int) {
	template := h.getTemplate(statusCode)
	if template == nil {
		http.Error(w, http.StatusText(statusCode), statusCode)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)

	err := template.Execute(w, nil)
	if err != nil {
		slog.Error("Failed to render error page template", "status", statusCode, "error", err)
	}
}

func (h *ErrorPageMiddleware) getTemplate(statusCode int) *template.Template {
	if h.template == nil {
		return nil
	}

	return h.template.Lookup(fmt.Sprintf("%d.html", statusCode))
}
