package server

import (
	"encoding/json"
	"net/http"

	"github.com/probing-go/probing/internal/cluster"
)

// NodesHandler serves GET/PUT /apis/nodes against a cluster.Registry.
type NodesHandler struct {
	registry *cluster.Registry
}

func NewNodesHandler(registry *cluster.Registry) *NodesHandler {
	return &NodesHandler{registry: registry}
}

func (h *NodesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(h.registry.List())
	case http.MethodPut:
		var node cluster.Node
		if err := json.NewDecoder(r.Body).Decode(&node); err != nil {
			http.Error(w, "invalid node body", http.StatusBadRequest)
			return
		}
		stored := h.registry.Put(node)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(stored)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}
