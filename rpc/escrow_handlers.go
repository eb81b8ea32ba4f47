package rpc

import (
	"fmt"
	"math/big"
	"net/http"

	"decentrashop/native/escrow"
)

type escrowOrderInput struct {
	ID     uint64 `json:"id"`
	Seller string `json:"seller"`
	Price  string `json:"price"`
}

type escrowCreateOrdersParams struct {
	Buyer    string             `json:"buyer"`
	Orders   []escrowOrderInput `json:"orders"`
	Attached string             `json:"attached"`
}

type escrowConfirmParams struct {
	ID     uint64 `json:"id"`
	Caller string `json:"caller"`
}

type escrowBatchConfirmParams struct {
	IDs    []uint64 `json:"ids"`
	Caller string   `json:"caller"`
}

type escrowDisputeParams struct {
	ID     uint64 `json:"id"`
	Caller string `json:"caller"`
	Fee    string `json:"fee"`
}

type escrowIDParams struct {
	ID uint64 `json:"id"`
}

type addressParams struct {
	Address string `json:"address"`
}

type callerParams struct {
	Caller string `json:"caller"`
}

type escrowOrderJSON struct {
	ID        uint64 `json:"id"`
	Buyer     string `json:"buyer"`
	Seller    string `json:"seller"`
	Price     string `json:"price"`
	Delivered bool   `json:"delivered"`
	Disputed  bool   `json:"disputed"`
	CreatedAt int64  `json:"createdAt"`
}

type withdrawalResult struct {
	Address string `json:"address"`
	Amount  string `json:"amount"`
}

type balanceResult struct {
	Address string `json:"address"`
	Amount  string `json:"amount"`
}

func orderToJSON(order *escrow.Order) escrowOrderJSON {
	return escrowOrderJSON{
		ID:        order.ID,
		Buyer:     formatAddress(order.Buyer),
		Seller:    formatAddress(order.Seller),
		Price:     formatAmount(order.Price),
		Delivered: order.Delivered,
		Disputed:  order.Disputed,
		CreatedAt: order.CreatedAt,
	}
}

func (s *Server) handleEscrowCreateOrders(w http.ResponseWriter, req *RPCRequest) {
	var params escrowCreateOrdersParams
	if err := decodeParams(req, &params); err != nil {
		writeInvalidParams(w, req, codeEscrowInvalidParams, err)
		return
	}
	buyer, err := parseAddress(params.Buyer)
	if err != nil {
		writeInvalidParams(w, req, codeEscrowInvalidParams, err)
		return
	}
	if len(params.Orders) == 0 {
		writeInvalidParams(w, req, codeEscrowInvalidParams, fmt.Errorf("at least one order required"))
		return
	}
	ids := make([]uint64, 0, len(params.Orders))
	sellers := make([][20]byte, 0, len(params.Orders))
	prices := make([]*big.Int, 0, len(params.Orders))
	for i, order := range params.Orders {
		seller, err := parseAddress(order.Seller)
		if err != nil {
			writeInvalidParams(w, req, codeEscrowInvalidParams, fmt.Errorf("orders[%d]: %w", i, err))
			return
		}
		price, err := parseAmount(order.Price)
		if err != nil {
			writeInvalidParams(w, req, codeEscrowInvalidParams, fmt.Errorf("orders[%d]: %w", i, err))
			return
		}
		ids = append(ids, order.ID)
		sellers = append(sellers, seller)
		prices = append(prices, price)
	}
	attached, err := parseAmount(params.Attached)
	if err != nil {
		writeInvalidParams(w, req, codeEscrowInvalidParams, err)
		return
	}
	if err := s.node.CreateOrders(buyer, ids, sellers, prices, attached); err != nil {
		writeEngineError(w, req, escrowCodes, err)
		return
	}
	writeResult(w, req.ID, map[string]int{"created": len(ids)})
}

func (s *Server) handleEscrowConfirmDelivery(w http.ResponseWriter, req *RPCRequest) {
	var params escrowConfirmParams
	if err := decodeParams(req, &params); err != nil {
		writeInvalidParams(w, req, codeEscrowInvalidParams, err)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeInvalidParams(w, req, codeEscrowInvalidParams, err)
		return
	}
	if err := s.node.ConfirmDelivery(params.ID, caller); err != nil {
		writeEngineError(w, req, escrowCodes, err)
		return
	}
	writeResult(w, req.ID, map[string]uint64{"delivered": params.ID})
}

func (s *Server) handleEscrowBatchConfirmDelivery(w http.ResponseWriter, req *RPCRequest) {
	var params escrowBatchConfirmParams
	if err := decodeParams(req, &params); err != nil {
		writeInvalidParams(w, req, codeEscrowInvalidParams, err)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeInvalidParams(w, req, codeEscrowInvalidParams, err)
		return
	}
	if err := s.node.BatchConfirmDelivery(params.IDs, caller); err != nil {
		writeEngineError(w, req, escrowCodes, err)
		return
	}
	writeResult(w, req.ID, map[string]int{"delivered": len(params.IDs)})
}

func (s *Server) handleEscrowOpenDispute(w http.ResponseWriter, req *RPCRequest) {
	var params escrowDisputeParams
	if err := decodeParams(req, &params); err != nil {
		writeInvalidParams(w, req, codeEscrowInvalidParams, err)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeInvalidParams(w, req, codeEscrowInvalidParams, err)
		return
	}
	fee := big.NewInt(0)
	if params.Fee != "" {
		fee, err = parseAmount(params.Fee)
		if err != nil {
			writeInvalidParams(w, req, codeEscrowInvalidParams, err)
			return
		}
	}
	if err := s.node.OpenDispute(params.ID, caller, fee); err != nil {
		writeEngineError(w, req, escrowCodes, err)
		return
	}
	writeResult(w, req.ID, map[string]uint64{"disputed": params.ID})
}

func (s *Server) handleEscrowGet(w http.ResponseWriter, req *RPCRequest) {
	var params escrowIDParams
	if err := decodeParams(req, &params); err != nil {
		writeInvalidParams(w, req, codeEscrowInvalidParams, err)
		return
	}
	order, err := s.node.GetOrder(params.ID)
	if err != nil {
		writeEngineError(w, req, escrowCodes, err)
		return
	}
	writeResult(w, req.ID, orderToJSON(order))
}

func (s *Server) handleEscrowWithdraw(w http.ResponseWriter, req *RPCRequest) {
	s.handleEscrowWithdrawal(w, req, s.node.Withdraw)
}

func (s *Server) handleEscrowWithdrawDev(w http.ResponseWriter, req *RPCRequest) {
	s.handleEscrowWithdrawal(w, req, s.node.WithdrawDev)
}

func (s *Server) handleEscrowWithdrawTreasury(w http.ResponseWriter, req *RPCRequest) {
	s.handleEscrowWithdrawal(w, req, s.node.WithdrawTreasury)
}

func (s *Server) handleEscrowWithdrawArbitrator(w http.ResponseWriter, req *RPCRequest) {
	s.handleEscrowWithdrawal(w, req, s.node.WithdrawArbitrator)
}

func (s *Server) handleEscrowWithdrawal(w http.ResponseWriter, req *RPCRequest, withdraw func([20]byte) (*big.Int, error)) {
	var params callerParams
	if err := decodeParams(req, &params); err != nil {
		writeInvalidParams(w, req, codeEscrowInvalidParams, err)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeInvalidParams(w, req, codeEscrowInvalidParams, err)
		return
	}
	amount, err := withdraw(caller)
	if err != nil {
		writeEngineError(w, req, escrowCodes, err)
		return
	}
	writeResult(w, req.ID, withdrawalResult{Address: formatAddress(caller), Amount: formatAmount(amount)})
}

func (s *Server) handleEscrowPendingBalance(w http.ResponseWriter, req *RPCRequest) {
	var params addressParams
	if err := decodeParams(req, &params); err != nil {
		writeInvalidParams(w, req, codeEscrowInvalidParams, err)
		return
	}
	addr, err := parseAddress(params.Address)
	if err != nil {
		writeInvalidParams(w, req, codeEscrowInvalidParams, err)
		return
	}
	balance, err := s.node.EscrowPendingBalance(addr)
	if err != nil {
		writeEngineError(w, req, escrowCodes, err)
		return
	}
	writeResult(w, req.ID, balanceResult{Address: formatAddress(addr), Amount: formatAmount(balance)})
}
