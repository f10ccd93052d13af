package server

import (
	"net/http"

	"github.com/probing-go/probing/internal/probe"
)

// FlamegraphHandler serves GET /apis/flamegraph, rendering the
// process-wide sampler's current SVG. Unlike /probe, this bypasses the
// per-connection Probe and pulls from a shared Probe instance since
// the sampler is a process-wide collector, not per-connection state.
type FlamegraphHandler struct {
	shared probe.Probe
}

func NewFlamegraphHandler(shared probe.Probe) *FlamegraphHandler {
	return &FlamegraphHandler{shared: shared}
}

func (h *FlamegraphHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	svg, err := h.shared.Flamegraph()
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write([]byte(svg))
}
