package rpc

import (
	"net/http"
)

type tokenBalanceParams struct {
	Asset   string `json:"asset"`
	Address string `json:"address"`
}

type tokenApproveParams struct {
	Owner   string `json:"owner"`
	Spender string `json:"spender"`
	Amount  string `json:"amount"`
}

type tokenAllowanceParams struct {
	Owner   string `json:"owner"`
	Spender string `json:"spender"`
}

type tokenTransferParams struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

func (s *Server) handleTokenBalanceOf(w http.ResponseWriter, req *RPCRequest) {
	var params tokenBalanceParams
	if err := decodeParams(req, &params); err != nil {
		writeInvalidParams(w, req, codeTokenInvalidParams, err)
		return
	}
	addr, err := parseAddress(params.Address)
	if err != nil {
		writeInvalidParams(w, req, codeTokenInvalidParams, err)
		return
	}
	balance, err := s.node.BalanceOf(params.Asset, addr)
	if err != nil {
		writeEngineError(w, req, tokenCodes, err)
		return
	}
	writeResult(w, req.ID, balanceResult{Address: formatAddress(addr), Amount: formatAmount(balance)})
}

func (s *Server) handleTokenApprove(w http.ResponseWriter, req *RPCRequest) {
	var params tokenApproveParams
	if err := decodeParams(req, &params); err != nil {
		writeInvalidParams(w, req, codeTokenInvalidParams, err)
		return
	}
	owner, err := parseAddress(params.Owner)
	if err != nil {
		writeInvalidParams(w, req, codeTokenInvalidParams, err)
		return
	}
	spender, err := parseAddress(params.Spender)
	if err != nil {
		writeInvalidParams(w, req, codeTokenInvalidParams, err)
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		writeInvalidParams(w, req, codeTokenInvalidParams, err)
		return
	}
	if err := s.node.Approve(owner, spender, amount); err != nil {
		writeEngineError(w, req, tokenCodes, err)
		return
	}
	writeResult(w, req.ID, map[string]string{"allowance": formatAmount(amount)})
}

func (s *Server) handleTokenAllowance(w http.ResponseWriter, req *RPCRequest) {
	var params tokenAllowanceParams
	if err := decodeParams(req, &params); err != nil {
		writeInvalidParams(w, req, codeTokenInvalidParams, err)
		return
	}
	owner, err := parseAddress(params.Owner)
	if err != nil {
		writeInvalidParams(w, req, codeTokenInvalidParams, err)
		return
	}
	spender, err := parseAddress(params.Spender)
	if err != nil {
		writeInvalidParams(w, req, codeTokenInvalidParams, err)
		return
	}
	allowance, err := s.node.Allowance(owner, spender)
	if err != nil {
		writeEngineError(w, req, tokenCodes, err)
		return
	}
	writeResult(w, req.ID, map[string]string{"allowance": formatAmount(allowance)})
}

func (s *Server) handleTokenTransfer(w http.ResponseWriter, req *RPCRequest) {
	var params tokenTransferParams
	if err := decodeParams(req, &params); err != nil {
		writeInvalidParams(w, req, codeTokenInvalidParams, err)
		return
	}
	from, err := parseAddress(params.From)
	if err != nil {
		writeInvalidParams(w, req, codeTokenInvalidParams, err)
		return
	}
	to, err := parseAddress(params.To)
	if err != nil {
		writeInvalidParams(w, req, codeTokenInvalidParams, err)
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		writeInvalidParams(w, req, codeTokenInvalidParams, err)
		return
	}
	if err := s.node.TokenTransfer(from, to, amount); err != nil {
		writeEngineError(w, req, tokenCodes, err)
		return
	}
	writeResult(w, req.ID, map[string]string{"transferred": formatAmount(amount)})
}
