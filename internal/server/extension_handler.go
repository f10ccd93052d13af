package server

import (
	"io"
	"net/http"

	"github.com/probing-go/probing/internal/extension"
)

// ExtensionHandler dispatches any path not matched by a built-in route
// to extension.Manager.Call, per spec.md §4.D's RPCHandler chain.
type ExtensionHandler struct {
	manager *extension.Manager
}

func NewExtensionHandler(manager *extension.Manager) *ExtensionHandler {
	return &ExtensionHandler{manager: manager}
}

func (h *ExtensionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	params := map[string]string{}
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}
	reply, err := h.manager.Call(r.URL.Path, params, body)
	if err != nil {
		if _, ok := err.(*extension.ErrNoRoute); ok {
			http.NotFound(w, r)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Write(reply)
}
