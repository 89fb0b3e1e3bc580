package main

import (
	"cmp"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sort"
)

// A stand-in origin for trying out the proxy locally. It echoes back the
// request it received so that forwarded requests can be compared with what
// the client sent.

func upHandler(w http.ResponseWriter, r *http.Request) {
	slog.Info("Health request", "method", r.Method, "url", r.URL)
	w.WriteHeader(http.StatusOK)
}

func echoHandler(w http.ResponseWriter, r *http.Request) {
	slog.Info("Request", "method", r.Method, "url", r.URL, "remote_addr", r.RemoteAddr)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "%s %s %s\n", r.Method, r.URL.RequestURI(), r.Proto)
	fmt.Fprintf(w, "Host: %s\n", r.Host)

	keys := make([]string, 0, len(r.Header))
	for key := range r.Header {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		for _, value := range r.Header[key] {
			fmt.Fprintf(w, "%s: %s\n", key, value)
		}
	}
}

func main() {
	addr := ":" + cmp.Or(os.Getenv("PORT"), "3000")

	http.HandleFunc("/up", upHandler)
	http.HandleFunc("/", echoHandler)

	slog.Info("Origin listening", "addr", addr)
	panic(http.ListenAndServe(addr, nil))
}
