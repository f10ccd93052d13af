package server

import (
	"encoding/json"
	"net/http"

	"github.com/probing-go/probing/internal/query"
	"github.com/probing-go/probing/internal/wire"
)

// QueryHandler serves POST /query, translating spec.md §4.H's
// wire.Query/wire.Data envelope over the query.Engine.
type QueryHandler struct {
	engine *query.Engine
}

func NewQueryHandler(engine *query.Engine) *QueryHandler {
	return &QueryHandler{engine: engine}
}

func (h *QueryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var q wire.Query
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		writeQueryError(w, "bad_request", err)
		return
	}

	for k, v := range q.Opts {
		if err := h.engine.Options.Set(k, v); err != nil {
			writeQueryError(w, "bad_option", err)
			return
		}
	}

	df, err := h.engine.Query(r.Context(), q.Expr)
	if err != nil {
		writeQueryError(w, queryErrorCode(err), err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(wire.Data{Kind: wire.DataFrame, Frame: wire.FrameToJSON(df)})
}

func queryErrorCode(err error) string {
	switch err.(type) {
	case *query.ParseError:
		return "parse_error"
	case *query.TimeoutError:
		return "timeout"
	case *query.UnknownTableError:
		return "unknown_table"
	case *query.UnknownColumnError:
		return "unknown_column"
	case *query.ExecutionError:
		return "execution_error"
	default:
		return "internal_error"
	}
}

func writeQueryError(w http.ResponseWriter, code string, err error) {
	status := http.StatusInternalServerError
	switch code {
	case "bad_request", "bad_option", "parse_error", "unknown_table", "unknown_column":
		status = http.StatusBadRequest
	case "timeout":
		status = http.StatusGatewayTimeout
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(wire.Data{Kind: wire.DataError, Err: &wire.QueryError{
		Code:    code,
		Message: err.Error(),
	}})
}
