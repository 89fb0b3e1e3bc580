package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeaders_SetReplacesValues(t *testing.T) {
	h := NewHeaders()
	h.Append("X-Thing", "one")
	h.Append("X-Thing", "two")
	h.Set("x-thing", "three")

	assert.Equal(t, []string{"three"}, h.Values("X-Thing"))
	assert.Equal(t, "three", h.Get("X-THING"))
}

func TestHeaders_AppendKeepsExistingValues(t *testing.T) {
	h := NewHeaders()
	h.Set("Pragma", "no-cache")
	h.Append("pragma", "x-second")

	assert.Equal(t, []string{"no-cache", "x-second"}, h.Values("Pragma"))
}

func TestHeaders_KeysKeepInsertionOrder(t *testing.T) {
	h := NewHeaders()
	h.Set("Content-Type", "text/html")
	h.Append("Pragma", "no-cache")
	h.Set("content-type", "text/plain")

	assert.Equal(t, []string{"Content-Type", "Pragma"}, h.Keys())
}

func TestHeaders_MissingKey(t *testing.T) {
	h := NewHeaders()

	assert.Equal(t, "", h.Get("Missing"))
	assert.Empty(t, h.Values("Missing"))
}

func TestHeaders_WriteTo(t *testing.T) {
	h := NewHeaders()
	h.Set("Content-Type", "text/html")
	h.Append("Pragma", "no-cache")
	h.Append("Pragma", "x-other")

	dst := http.Header{}
	dst.Set("Content-Type", "application/json")
	dst.Add("Pragma", "x-existing")
	dst.Set("X-Unrelated", "kept")

	h.WriteTo(dst)

	assert.Equal(t, []string{"text/html"}, dst.Values("Content-Type"))
	assert.Equal(t, []string{"x-existing", "no-cache", "x-other"}, dst.Values("Pragma"))
	assert.Equal(t, "kept", dst.Get("X-Unrelated"))
}
