package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingMiddleware(t *testing.T) {
	out := &strings.Builder{}
	logger := slog.New(slog.NewJSONHandler(out, nil))
	middleware := WithLoggingMiddleware(logger, HeaderClientAddress(DefaultClientAddressHeader), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*r.Context().Value(contextKeyDecision).(*Decision) = DecisionForwarded

		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintln(w, "goodbye")
	}))

	req := httptest.NewRequest("POST", "http://example.com/somepath?q=ok", bytes.NewReader([]byte("hello")))
	req.Header.Set(DefaultClientAddressHeader, "123.123.123.123")
	req.Header.Set("User-Agent", "Robot/1")
	req.Header.Set("Content-Type", "application/json")

	WithRequestIDMiddleware(middleware).ServeHTTP(httptest.NewRecorder(), req)

	logline := struct {
		Message           string `json:"msg"`
		Level             string `json:"level"`
		Host              string `json:"host"`
		Path              string `json:"path"`
		Query             string `json:"query"`
		RequestID         string `json:"request_id"`
		Decision          string `json:"decision"`
		Status            int    `json:"status"`
		Method            string `json:"method"`
		ReqContentLength  int64  `json:"req_content_length"`
		ReqContentType    string `json:"req_content_type"`
		RespContentLength int64  `json:"resp_content_length"`
		RespContentType   string `json:"resp_content_type"`
		ClientAddr        string `json:"client_addr"`
		UserAgent         string `json:"user_agent"`
	}{}

	err := json.NewDecoder(strings.NewReader(out.String())).Decode(&logline)
	require.NoError(t, err)

	assert.Equal(t, "Request", logline.Message)
	assert.Equal(t, "INFO", logline.Level)
	assert.Equal(t, "example.com", logline.Host)
	assert.Equal(t, "/somepath", logline.Path)
	assert.Equal(t, "q=ok", logline.Query)
	assert.NotEmpty(t, logline.RequestID)
	assert.Equal(t, "forwarded", logline.Decision)
	assert.Equal(t, http.StatusCreated, logline.Status)
	assert.Equal(t, "POST", logline.Method)
	assert.Equal(t, int64(5), logline.ReqContentLength)
	assert.Equal(t, "application/json", logline.ReqContentType)
	assert.Equal(t, int64(8), logline.RespContentLength)
	assert.Equal(t, "text/html", logline.RespContentType)
	assert.Equal(t, "123.123.123.123", logline.ClientAddr)
	assert.Equal(t, "Robot/1", logline.UserAgent)
}

func TestLoggingMiddleware_MaintenanceDecision(t *testing.T) {
	out := &strings.Builder{}
	logger := slog.New(slog.NewJSONHandler(out, nil))
	handler := testMaintenanceHandler(t, defaultTrustedEntries, unreachableOrigin(t))
	middleware := WithLoggingMiddleware(logger, HeaderClientAddress(DefaultClientAddressHeader), handler)

	sendGETRequestFrom(middleware, "8.8.8.8", "http://example.com/")

	var logline map[string]any
	require.NoError(t, json.Unmarshal([]byte(out.String()), &logline))

	assert.Equal(t, "maintenance", logline["decision"])
	assert.Equal(t, float64(http.StatusOK), logline["status"])
	assert.Equal(t, "8.8.8.8", logline["client_addr"])
}

func TestCreateECSLogger(t *testing.T) {
	out := &strings.Builder{}
	logger := CreateECSLogger(slog.LevelInfo, out)

	logger.Debug("hidden")
	logger.Info("shown", "origin", "localhost:3000")

	var logline map[string]any
	require.NoError(t, json.Unmarshal([]byte(out.String()), &logline))

	assert.Equal(t, "shown", logline["message"])
	assert.Equal(t, "INFO", logline["log.level"])
	assert.Contains(t, logline, "@timestamp")
	assert.Equal(t, "localhost:3000", logline["origin"])
}
