package server

import (
	"net/http"
	"net/textproto"
)

// Headers is an ordered multi-map of response header values. Set replaces
// every value for a key, Append adds one after any existing values.
type Headers struct {
	keys     []string
	values   map[string][]string
	replaces map[string]bool
}

func NewHeaders() *Headers {
	return &Headers{
		values:   map[string][]string{},
		replaces: map[string]bool{},
	}
}

func (h *Headers) Set(key, value string) {
	key = textproto.CanonicalMIMEHeaderKey(key)
	h.remember(key)
	h.values[key] = []string{value}
	h.replaces[key] = true
}

func (h *Headers) Append(key, value string) {
	key = textproto.CanonicalMIMEHeaderKey(key)
	h.remember(key)
	h.values[key] = append(h.values[key], value)
}

func (h *Headers) Get(key string) string {
	values := h.Values(key)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func (h *Headers) Values(key string) []string {
	return h.values[textproto.CanonicalMIMEHeaderKey(key)]
}

func (h *Headers) Keys() []string {
	return h.keys
}

// WriteTo copies the values into dst in insertion order. Keys that were Set
// replace whatever dst holds; keys that were only appended to keep the values
// already present in dst.
func (h *Headers) WriteTo(dst http.Header) {
	for _, key := range h.keys {
		if h.replaces[key] {
			dst.Del(key)
		}
		for _, value := range h.values[key] {
			dst.Add(key, value)
		}
	}
}

// Private

func (h *Headers) remember(key string) {
	if _, ok := h.values[key]; !ok {
		h.keys = append(h.keys, key)
	}
}
