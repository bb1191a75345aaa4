package rpc

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	nativecommon "namechain/native/common"
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeServerError    = -32000
	codeUnauthorized   = -32001
)

// Server exposes the node over JSON-RPC 2.0 on a single POST endpoint, plus
// health and metrics endpoints.
type Server struct {
	node   *Node
	logger *slog.Logger
	router chi.Router
}

// NewServer wires the HTTP surface for node.
func NewServer(node *Node, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{node: node, logger: logger}

	r := chi.NewRouter()
	r.Use(s.requestLogger)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/", s.handleRPC)
	s.router = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe starts serving on addr.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("http request",
			"requestId", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"durationMs", time.Since(start).Milliseconds(),
		)
	})
}

// RPCRequest is the JSON-RPC 2.0 request envelope.
type RPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	ID      interface{}     `json:"id"`
}

// RPCResponse is the JSON-RPC 2.0 response envelope.
type RPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
	ID      interface{} `json:"id"`
}

// RPCError carries a JSON-RPC error object.
type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func writeError(w http.ResponseWriter, status int, id interface{}, code int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(RPCResponse{
		JSONRPC: "2.0",
		Error:   &RPCError{Code: code, Message: message, Data: data},
		ID:      id,
	})
}

func writeResult(w http.ResponseWriter, id interface{}, result interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(RPCResponse{JSONRPC: "2.0", Result: result, ID: id})
}

// writeEngineError maps a module failure kind onto a JSON-RPC error code.
func writeEngineError(w http.ResponseWriter, id interface{}, err error) {
	code := codeServerError
	status := http.StatusBadRequest
	switch nativecommon.Kind(err) {
	case nativecommon.ErrUnauthorized:
		code = codeUnauthorized
		status = http.StatusForbidden
	case nativecommon.ErrInvalidInput:
		code = codeInvalidParams
	}
	kind := ""
	if k := nativecommon.Kind(err); k != nil {
		kind = k.Error()
	}
	writeError(w, status, id, code, err.Error(), kind)
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := &RPCRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "invalid JSON payload", err.Error())
		observeRequest("invalid", "parse_error", time.Since(start).Seconds())
		return
	}
	if req.JSONRPC != "" && req.JSONRPC != "2.0" {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "unsupported jsonrpc version", req.JSONRPC)
		observeRequest(req.Method, "invalid_request", time.Since(start).Seconds())
		return
	}
	if req.Method == "" {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "method required", nil)
		observeRequest("missing", "invalid_request", time.Since(start).Seconds())
		return
	}

	handler, ok := s.methods()[req.Method]
	if !ok {
		writeError(w, http.StatusNotFound, req.ID, codeMethodNotFound, "unknown method "+req.Method, nil)
		observeRequest(req.Method, "not_found", time.Since(start).Seconds())
		return
	}
	handler(w, req)
	observeRequest(req.Method, "handled", time.Since(start).Seconds())
}
