package server

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const (
	healthCheckUserAgent = "maintenance-proxy"
)

type HealthCheckConsumer interface {
	HealthCheckCompleted(success bool)
}

// HealthCheck polls an origin endpoint in the background. Results are only
// reported; they never affect how requests are classified.
type HealthCheck struct {
	consumer HealthCheckConsumer
	endpoint *url.URL
	interval time.Duration
	timeout  time.Duration
	client   *http.Client

	shutdown chan bool
}

func NewHealthCheck(consumer HealthCheckConsumer, endpoint *url.URL, interval time.Duration, timeout time.Duration) *HealthCheck {
	hc := &HealthCheck{
		consumer: consumer,
		endpoint: endpoint,
		interval: interval,
		timeout:  timeout,
		client: &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},

		shutdown: make(chan bool),
	}

	go hc.run()
	return hc
}

func (hc *HealthCheck) Close() {
	close(hc.shutdown)
}

// Private

func (hc *HealthCheck) run() {
	ticker := time.NewTicker(hc.interval)
	defer ticker.Stop()

	hc.check()

	for {
		select {
		case <-ticker.C:
			hc.check()

		case <-hc.shutdown:
			return
		}
	}
}

func (hc *HealthCheck) check() {
	ctx, cancel := context.WithTimeout(context.Background(), hc.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, hc.endpoint.String(), nil)
	if err != nil {
		slog.Error("Unable to create origin health check request", "error", err)
		hc.consumer.HealthCheckCompleted(false)
		return
	}

	req.Header.Set("User-Agent", healthCheckUserAgent)

	resp, err := hc.client.Do(req)
	if err != nil {
		slog.Debug("Origin health check failed", "endpoint", hc.endpoint.String(), "error", err)
		hc.consumer.HealthCheckCompleted(false)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Debug("Origin health check failed", "endpoint", hc.endpoint.String(), "status", resp.StatusCode)
		hc.consumer.HealthCheckCompleted(false)
		return
	}

	hc.consumer.HealthCheckCompleted(true)
}
