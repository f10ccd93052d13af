package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/probing-go/probing/internal/probe"
)

// upgrader mirrors the teacher's cmd/bd/monitor.go WebSocket upgrader:
// generous buffers, origin check left permissive since the control
// plane is already gated by Auth before reaching this handler.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// replRequest/replResponse are the WS/repl wire messages: one eval per
// incoming text frame, one reply per outgoing text frame.
type replRequest struct {
	Code string `json:"code"`
}

type replResponse struct {
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}

// ReplHandler serves WS /ws/repl, evaluating each incoming code frame
// against a fresh probe.Probe and replying with its text/error.
type ReplHandler struct {
	factory *probe.Factory
}

// NewReplHandler builds a handler using factory to mint one Probe per
// connection, consistent with spec.md §4.F's per-connection isolation.
func NewReplHandler(factory *probe.Factory) *ReplHandler {
	return &ReplHandler{factory: factory}
}

func (h *ReplHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws/repl: upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	p := h.factory.New(connID(r))
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		var req replRequest
		if err := json.Unmarshal(data, &req); err != nil {
			h.reply(conn, replResponse{Error: "invalid request: " + err.Error()})
			continue
		}
		text, err := p.Eval(req.Code)
		if err != nil {
			h.reply(conn, replResponse{Error: err.Error()})
			continue
		}
		h.reply(conn, replResponse{Text: text})
	}
}

func (h *ReplHandler) reply(conn *websocket.Conn, resp replResponse) {
	out, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, out); err != nil {
		slog.Debug("ws/repl: write failed", "error", err)
	}
}

func connID(r *http.Request) string {
	return r.RemoteAddr
}
