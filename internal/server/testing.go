package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

const testTrustedAddress = "123.123.123.123"

var (
	defaultTrustedEntries = []string{testTrustedAddress}
	defaultOriginOptions  = OriginOptions{}
)

func testOrigin(t testing.TB, handler http.HandlerFunc) *Origin {
	t.Helper()

	return testOriginWithOptions(t, defaultOriginOptions, handler)
}

func testOriginWithOptions(t testing.TB, options OriginOptions, handler http.HandlerFunc) *Origin {
	t.Helper()

	_, originURL := testBackendWithHandler(t, handler)

	origin, err := NewOrigin(originURL, options)
	require.NoError(t, err)
	return origin
}

func testBackend(t testing.TB, body string, statusCode int) (*httptest.Server, string) {
	t.Helper()

	return testBackendWithHandler(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(statusCode)
		w.Write([]byte(body))
	})
}

func testBackendWithHandler(t testing.TB, handler http.HandlerFunc) (*httptest.Server, string) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	serverURL, err := url.Parse(server.URL)
	require.NoError(t, err)

	return server, serverURL.Host
}

func testMaintenancePage(t testing.TB) *MaintenancePage {
	t.Helper()

	page, err := NewMaintenancePage(PageOptions{})
	require.NoError(t, err)
	return page
}

func testMaintenanceHandler(t testing.TB, trusted []string, origin http.Handler) *MaintenanceHandler {
	t.Helper()

	allowlist, err := NewAllowlist(trusted)
	require.NoError(t, err)

	return NewMaintenanceHandler(allowlist, HeaderClientAddress(DefaultClientAddressHeader), testMaintenancePage(t), origin)
}

func testServer(t testing.TB, originURL string, trusted []string) *Server {
	t.Helper()

	config := &Config{
		Bind:                "127.0.0.1",
		HttpPort:            0,
		OriginURL:           originURL,
		TrustedEntries:      trusted,
		ClientAddressHeader: DefaultClientAddressHeader,
		AlternateConfigDir:  t.TempDir(),
	}
	server, err := NewServer(config)
	require.NoError(t, err)

	err = server.Start()
	require.NoError(t, err)
	t.Cleanup(server.Stop)

	return server
}

func sendRequestFrom(handler http.Handler, clientAddress string, req *http.Request) *httptest.ResponseRecorder {
	if clientAddress != "" {
		req.Header.Set(DefaultClientAddressHeader, clientAddress)
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func sendGETRequestFrom(handler http.Handler, clientAddress string, url string) (int, string) {
	w := sendRequestFrom(handler, clientAddress, httptest.NewRequest(http.MethodGet, url, nil))
	return w.Code, w.Body.String()
}

// failingReader fails the test if the body is ever read.
type failingReader struct {
	t testing.TB
}

func (r failingReader) Read([]byte) (int, error) {
	r.t.Error("request body should not be read")
	return 0, io.EOF
}

func readAll(t testing.TB, r io.Reader) string {
	t.Helper()

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	return strings.TrimSpace(string(data))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func PerformConcurrently(fns ...func()) {
	var wg sync.WaitGroup

	for _, fn := range fns {
		wg.Go(fn)
	}

	wg.Wait()
}
