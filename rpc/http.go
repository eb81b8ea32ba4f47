package rpc

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"decentrashop/core"
	"decentrashop/observability"
)

const (
	jsonRPCVersion  = "2.0"
	maxRequestBytes = 1 << 20 // 1 MiB
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeServerError    = -32000
)

// Server exposes the node's settlement operations over JSON-RPC.
type Server struct {
	node   *core.Node
	limits *rateLimiter
}

func NewServer(node *core.Node) *Server {
	return &Server{node: node}
}

// SetRateLimit throttles JSON-RPC callers to perMinute requests each with
// the given burst. A non-positive rate disables throttling.
func (s *Server) SetRateLimit(perMinute float64, burst int) {
	if perMinute <= 0 {
		s.limits = nil
		return
	}
	s.limits = newRateLimiter(perMinute, burst)
}

// Router mounts the JSON-RPC endpoint next to the health and metrics
// surfaces.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if s.limits != nil {
		r.Use(s.limits.middleware)
	}
	r.Post("/", s.handle)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// Start serves the router on addr, blocking until the listener fails.
func (s *Server) Start(addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return server.ListenAndServe()
}

type RPCRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      int               `json:"id"`
}

type RPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func writeError(w http.ResponseWriter, status int, id interface{}, code int, message string, data interface{}) {
	if status <= 0 {
		status = http.StatusBadRequest
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	errObj := &RPCError{Code: code, Message: message}
	if data != nil {
		errObj.Data = data
	}
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Error: errObj}
	_ = json.NewEncoder(w).Encode(resp)
}

func writeResult(w http.ResponseWriter, id interface{}, result interface{}) {
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result}
	_ = json.NewEncoder(w).Encode(resp)
}

type handlerFunc func(w http.ResponseWriter, req *RPCRequest)

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, nil, codeInvalidRequest, "unable to read request body", err.Error())
		return
	}
	if len(body) == 0 {
		writeError(w, http.StatusBadRequest, nil, codeInvalidRequest, "request body required", nil)
		return
	}
	var req RPCRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "invalid JSON payload", err.Error())
		return
	}
	if req.JSONRPC != "" && req.JSONRPC != jsonRPCVersion {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "unsupported jsonrpc version", req.JSONRPC)
		return
	}
	if req.Method == "" {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "method required", nil)
		return
	}

	handler, ok := s.methods()[req.Method]
	if !ok {
		writeError(w, http.StatusNotFound, req.ID, codeMethodNotFound, fmt.Sprintf("unknown method %s", req.Method), nil)
		observability.SettlementMetrics().RecordRPC(req.Method, "unknown", 0)
		return
	}

	start := time.Now()
	recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	handler(recorder, &req)
	outcome := "ok"
	if recorder.status >= http.StatusBadRequest {
		outcome = "error"
	}
	observability.SettlementMetrics().RecordRPC(req.Method, outcome, time.Since(start).Seconds())
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) methods() map[string]handlerFunc {
	return map[string]handlerFunc{
		"escrow_createOrders":         s.handleEscrowCreateOrders,
		"escrow_confirmDelivery":      s.handleEscrowConfirmDelivery,
		"escrow_batchConfirmDelivery": s.handleEscrowBatchConfirmDelivery,
		"escrow_openDispute":          s.handleEscrowOpenDispute,
		"escrow_get":                  s.handleEscrowGet,
		"escrow_withdraw":             s.handleEscrowWithdraw,
		"escrow_withdrawDev":          s.handleEscrowWithdrawDev,
		"escrow_withdrawTreasury":     s.handleEscrowWithdrawTreasury,
		"escrow_withdrawArbitrator":   s.handleEscrowWithdrawArbitrator,
		"escrow_pendingBalance":       s.handleEscrowPendingBalance,

		"market_buyProduct":          s.handleMarketBuyProduct,
		"market_withdrawAllBalances": s.handleMarketWithdrawAllBalances,
		"market_pendingBalance":      s.handleMarketPendingBalance,

		"ledger_makeOrder":      s.handleLedgerMakeOrder,
		"ledger_paySeller":      s.handleLedgerPaySeller,
		"ledger_batchPaySeller": s.handleLedgerBatchPaySeller,
		"ledger_refund":         s.handleLedgerRefund,
		"ledger_pendingBalance": s.handleLedgerPendingBalance,

		"fidelity_stake":            s.handleFidelityStake,
		"fidelity_unstake":          s.handleFidelityUnstake,
		"fidelity_stakedAmount":     s.handleFidelityStakedAmount,
		"fidelity_setStakingPeriod": s.handleFidelitySetStakingPeriod,

		"admin_setMinimumPrice":   s.handleAdminSetMinimumPrice,
		"admin_setSupplier":       s.handleAdminSetSupplier,
		"admin_setBeneficiary":    s.handleAdminSetBeneficiary,
		"admin_transferOwnership": s.handleAdminTransferOwnership,
		"admin_sweep":             s.handleAdminSweep,
		"admin_owner":             s.handleAdminOwner,

		"token_balanceOf": s.handleTokenBalanceOf,
		"token_approve":   s.handleTokenApprove,
		"token_allowance": s.handleTokenAllowance,
		"token_transfer":  s.handleTokenTransfer,
	}
}
