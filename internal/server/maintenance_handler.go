package server

import (
	"log/slog"
	"net/http"
)

var contextKeyDecision = contextKey("decision")

type Decision int

const (
	DecisionNone Decision = iota
	DecisionMaintenanceServed
	DecisionForwarded
)

func (d Decision) String() string {
	switch d {
	case DecisionMaintenanceServed:
		return "maintenance"
	case DecisionForwarded:
		return "forwarded"
	default:
		return ""
	}
}

// MaintenanceHandler serves the maintenance page to every caller that the
// trust policy does not accept, and hands trusted callers to the origin.
type MaintenanceHandler struct {
	policy    TrustPolicy
	extractor ClientAddressExtractor
	page      *MaintenancePage
	origin    http.Handler
}

func NewMaintenanceHandler(policy TrustPolicy, extractor ClientAddressExtractor, page *MaintenancePage, origin http.Handler) *MaintenanceHandler {
	return &MaintenanceHandler{
		policy:    policy,
		extractor: extractor,
		page:      page,
		origin:    origin,
	}
}

// ClientAddress is the address the decision for r is based on.
func (h *MaintenanceHandler) ClientAddress(r *http.Request) string {
	return h.extractor(r)
}

func (h *MaintenanceHandler) Classify(r *http.Request) Decision {
	if h.policy.Trusts(h.ClientAddress(r)) {
		return DecisionForwarded
	}
	return DecisionMaintenanceServed
}

func (h *MaintenanceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	decision := h.Classify(r)
	h.recordDecision(r, decision)

	if decision == DecisionForwarded {
		slog.Debug("Forwarding trusted request", "path", r.URL.Path)
		h.origin.ServeHTTP(w, r)
		return
	}

	h.page.WriteTo(w)
}

// Private

func (h *MaintenanceHandler) recordDecision(r *http.Request, decision Decision) {
	slot, ok := r.Context().Value(contextKeyDecision).(*Decision)
	if ok {
		*slot = decision
	}
}
