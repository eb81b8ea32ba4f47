package rpc

import (
	"fmt"
	"math/big"
	"net/http"
)

type ledgerMakeOrderParams struct {
	Buyer  string `json:"buyer"`
	Amount string `json:"amount"`
}

type ledgerPayParams struct {
	Caller string `json:"caller"`
	Buyer  string `json:"buyer"`
	Seller string `json:"seller"`
	Amount string `json:"amount"`
}

type ledgerRefundParams struct {
	Caller string `json:"caller"`
	Buyer  string `json:"buyer"`
	Amount string `json:"amount"`
}

type ledgerBatchItem struct {
	Buyer  string `json:"buyer"`
	Seller string `json:"seller"`
	Amount string `json:"amount"`
}

type ledgerBatchParams struct {
	Caller string            `json:"caller"`
	Items  []ledgerBatchItem `json:"items"`
}

func (s *Server) handleLedgerMakeOrder(w http.ResponseWriter, req *RPCRequest) {
	var params ledgerMakeOrderParams
	if err := decodeParams(req, &params); err != nil {
		writeInvalidParams(w, req, codeLedgerInvalidParams, err)
		return
	}
	buyer, err := parseAddress(params.Buyer)
	if err != nil {
		writeInvalidParams(w, req, codeLedgerInvalidParams, err)
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		writeInvalidParams(w, req, codeLedgerInvalidParams, err)
		return
	}
	if err := s.node.MakeOrder(buyer, amount); err != nil {
		writeEngineError(w, req, ledgerCodes, err)
		return
	}
	writeResult(w, req.ID, balanceResult{Address: formatAddress(buyer), Amount: formatAmount(amount)})
}

func (s *Server) handleLedgerPaySeller(w http.ResponseWriter, req *RPCRequest) {
	var params ledgerPayParams
	if err := decodeParams(req, &params); err != nil {
		writeInvalidParams(w, req, codeLedgerInvalidParams, err)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeInvalidParams(w, req, codeLedgerInvalidParams, err)
		return
	}
	buyer, err := parseAddress(params.Buyer)
	if err != nil {
		writeInvalidParams(w, req, codeLedgerInvalidParams, err)
		return
	}
	seller, err := parseAddress(params.Seller)
	if err != nil {
		writeInvalidParams(w, req, codeLedgerInvalidParams, err)
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		writeInvalidParams(w, req, codeLedgerInvalidParams, err)
		return
	}
	if err := s.node.PaySeller(caller, buyer, seller, amount); err != nil {
		writeEngineError(w, req, ledgerCodes, err)
		return
	}
	writeResult(w, req.ID, map[string]string{"paid": formatAmount(amount)})
}

func (s *Server) handleLedgerRefund(w http.ResponseWriter, req *RPCRequest) {
	var params ledgerRefundParams
	if err := decodeParams(req, &params); err != nil {
		writeInvalidParams(w, req, codeLedgerInvalidParams, err)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeInvalidParams(w, req, codeLedgerInvalidParams, err)
		return
	}
	buyer, err := parseAddress(params.Buyer)
	if err != nil {
		writeInvalidParams(w, req, codeLedgerInvalidParams, err)
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		writeInvalidParams(w, req, codeLedgerInvalidParams, err)
		return
	}
	if err := s.node.Refund(caller, buyer, amount); err != nil {
		writeEngineError(w, req, ledgerCodes, err)
		return
	}
	writeResult(w, req.ID, map[string]string{"refunded": formatAmount(amount)})
}

func (s *Server) handleLedgerBatchPaySeller(w http.ResponseWriter, req *RPCRequest) {
	var params ledgerBatchParams
	if err := decodeParams(req, &params); err != nil {
		writeInvalidParams(w, req, codeLedgerInvalidParams, err)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeInvalidParams(w, req, codeLedgerInvalidParams, err)
		return
	}
	if len(params.Items) == 0 {
		writeInvalidParams(w, req, codeLedgerInvalidParams, fmt.Errorf("at least one item required"))
		return
	}
	buyers := make([][20]byte, 0, len(params.Items))
	sellers := make([][20]byte, 0, len(params.Items))
	amounts := make([]*big.Int, 0, len(params.Items))
	for i, item := range params.Items {
		buyer, err := parseAddress(item.Buyer)
		if err != nil {
			writeInvalidParams(w, req, codeLedgerInvalidParams, fmt.Errorf("items[%d]: %w", i, err))
			return
		}
		seller, err := parseAddress(item.Seller)
		if err != nil {
			writeInvalidParams(w, req, codeLedgerInvalidParams, fmt.Errorf("items[%d]: %w", i, err))
			return
		}
		amount, err := parseAmount(item.Amount)
		if err != nil {
			writeInvalidParams(w, req, codeLedgerInvalidParams, fmt.Errorf("items[%d]: %w", i, err))
			return
		}
		buyers = append(buyers, buyer)
		sellers = append(sellers, seller)
		amounts = append(amounts, amount)
	}
	if err := s.node.BatchPaySeller(caller, buyers, sellers, amounts); err != nil {
		writeEngineError(w, req, ledgerCodes, err)
		return
	}
	writeResult(w, req.ID, map[string]int{"settled": len(params.Items)})
}

func (s *Server) handleLedgerPendingBalance(w http.ResponseWriter, req *RPCRequest) {
	var params addressParams
	if err := decodeParams(req, &params); err != nil {
		writeInvalidParams(w, req, codeLedgerInvalidParams, err)
		return
	}
	addr, err := parseAddress(params.Address)
	if err != nil {
		writeInvalidParams(w, req, codeLedgerInvalidParams, err)
		return
	}
	balance, err := s.node.LedgerPendingBalance(addr)
	if err != nil {
		writeEngineError(w, req, ledgerCodes, err)
		return
	}
	writeResult(w, req.ID, balanceResult{Address: formatAddress(addr), Amount: formatAmount(balance)})
}
