package server

import (
	"encoding/json"
	"net/http"

	"github.com/probing-go/probing/internal/probe"
	"github.com/probing-go/probing/internal/wire"
)

// ProbeHandler serves POST /probe: decode wire.ProbeCall, dispatch
// through a per-connection probe.Probe, encode wire.ProbeReply.
type ProbeHandler struct {
	factory *probe.Factory
}

func NewProbeHandler(factory *probe.Factory) *ProbeHandler {
	return &ProbeHandler{factory: factory}
}

func (h *ProbeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var call wire.ProbeCall
	if err := json.NewDecoder(r.Body).Decode(&call); err != nil {
		http.Error(w, "invalid probe call", http.StatusBadRequest)
		return
	}
	p := h.factory.New(connID(r))
	reply := p.Handle(call)
	w.Header().Set("Content-Type", "application/json")
	if reply.Kind == wire.ReturnErr {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}
	_ = json.NewEncoder(w).Encode(reply)
}
