package server

import (
	"net"
	"net/http"
)

const DefaultClientAddressHeader = "CF-Connecting-IP"

// ClientAddressExtractor returns the token used to decide whether a request
// is trusted. An empty result is never trusted.
type ClientAddressExtractor func(r *http.Request) string

// HeaderClientAddress reads the address from a header set by the edge
// network. The value is returned as-is.
func HeaderClientAddress(name string) ClientAddressExtractor {
	return func(r *http.Request) string {
		return r.Header.Get(name)
	}
}

// PeerClientAddress uses the host of the connecting peer, for deployments
// that are reached directly rather than through an edge network.
func PeerClientAddress(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func NewClientAddressExtractor(headerName string) ClientAddressExtractor {
	if headerName == "" {
		return PeerClientAddress
	}
	return HeaderClientAddress(headerName)
}
