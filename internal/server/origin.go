package server

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"github.com/resdevops/maintenance-proxy/internal/metrics"
)

const (
	DefaultHealthCheckInterval = time.Second * 10
	DefaultHealthCheckTimeout  = time.Second * 5

	MaxIdleConnsPerHost = 100
)

var (
	ErrorInvalidOriginURL = errors.New("invalid origin URL")

	hostRegex = regexp.MustCompile(`^(\w[-_.\w+]+)(:\d+)?$`)

	forwardingHeaders = []string{"Forwarded", "X-Forwarded-For", "X-Forwarded-Host", "X-Forwarded-Proto"}
)

type HealthCheckConfig struct {
	Path     string        `json:"path"`
	Interval time.Duration `json:"interval"`
	Timeout  time.Duration `json:"timeout"`
}

type OriginOptions struct {
	ResponseTimeout    time.Duration     `json:"response_timeout"`
	MaxRequestBodySize int64             `json:"max_request_body_size"`
	HealthCheckConfig  HealthCheckConfig `json:"health_check_config"`
}

// Origin forwards trusted requests to the site being maintained and relays
// its responses without modification.
type Origin struct {
	originURL *url.URL
	options   OriginOptions
	proxy     *httputil.ReverseProxy

	healthcheck *HealthCheck
	healthy     atomic.Bool
}

func NewOrigin(originURL string, options OriginOptions) (*Origin, error) {
	uri, err := parseOriginURL(originURL)
	if err != nil {
		return nil, err
	}

	origin := &Origin{
		originURL: uri,
		options:   options,
	}

	origin.proxy = &httputil.ReverseProxy{
		Rewrite:       origin.rewrite,
		ErrorHandler:  origin.handleProxyError,
		Transport:     origin.createTransport(),
		FlushInterval: -1,
	}

	return origin, nil
}

func (o *Origin) Host() string {
	return o.originURL.Host
}

func (o *Origin) URL() *url.URL {
	return o.originURL
}

func (o *Origin) Healthy() bool {
	return o.healthy.Load()
}

// ServeHTTP forwards req to the origin. When a request body limit is set,
// oversized bodies are refused with a 413 rather than forwarded.
func (o *Origin) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	limit := o.options.MaxRequestBodySize
	if limit > 0 {
		if req.ContentLength > limit {
			slog.Debug("Request body too large", "origin", o.Host(), "path", req.URL.Path, "content_length", req.ContentLength)
			SetErrorResponse(w, req, http.StatusRequestEntityTooLarge)
			return
		}
		if req.Body != nil && req.Body != http.NoBody {
			req.Body = http.MaxBytesReader(w, req.Body, limit)
		}
	}

	o.proxy.ServeHTTP(w, req)
}

func (o *Origin) BeginHealthChecks() {
	if o.options.HealthCheckConfig.Path == "" {
		return
	}

	o.healthcheck = NewHealthCheck(o,
		o.originURL.JoinPath(o.options.HealthCheckConfig.Path),
		cmp.Or(o.options.HealthCheckConfig.Interval, DefaultHealthCheckInterval),
		cmp.Or(o.options.HealthCheckConfig.Timeout, DefaultHealthCheckTimeout),
	)
}

func (o *Origin) StopHealthChecks() {
	if o.healthcheck != nil {
		o.healthcheck.Close()
		o.healthcheck = nil
	}
}

// HealthCheckConsumer

func (o *Origin) HealthCheckCompleted(success bool) {
	previous := o.healthy.Swap(success)
	metrics.Tracker.SetOriginHealthy(success)

	if previous != success {
		slog.Info("Origin health changed", "origin", o.Host(), "healthy", success)
	}
}

// Private

func (o *Origin) rewrite(req *httputil.ProxyRequest) {
	// Forwarding headers are stripped before Rewrite runs; pass on whatever
	// the client sent and add nothing of our own.
	for _, name := range forwardingHeaders {
		if values, ok := req.In.Header[name]; ok {
			req.Out.Header[name] = values
		}
	}

	req.SetURL(o.originURL)
	req.Out.Host = req.In.Host
}

func (o *Origin) createTransport() *http.Transport {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = MaxIdleConnsPerHost
	transport.ResponseHeaderTimeout = o.options.ResponseTimeout
	transport.DisableCompression = true

	return transport
}

func (o *Origin) handleProxyError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("Error while forwarding to origin", "origin", o.Host(), "path", r.URL.Path, "error", err)

	switch {
	case o.isRequestEntityTooLarge(err):
		SetErrorResponse(w, r, http.StatusRequestEntityTooLarge)
	case o.isTimeout(err):
		SetErrorResponse(w, r, http.StatusGatewayTimeout)
	default:
		SetErrorResponse(w, r, http.StatusBadGateway)
	}
}

func (o *Origin) isRequestEntityTooLarge(err error) bool {
	var maxBytesError *http.MaxBytesError
	return errors.As(err, &maxBytesError)
}

func (o *Origin) isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func parseOriginURL(originURL string) (*url.URL, error) {
	if !strings.Contains(originURL, "://") {
		if !hostRegex.MatchString(originURL) {
			return nil, fmt.Errorf("%s: %w", originURL, ErrorInvalidOriginURL)
		}
		originURL = "http://" + originURL
	}

	uri, err := url.Parse(originURL)
	if err != nil || uri.Host == "" || (uri.Scheme != "http" && uri.Scheme != "https") {
		return nil, fmt.Errorf("%s: %w", originURL, ErrorInvalidOriginURL)
	}

	return uri, nil
}
