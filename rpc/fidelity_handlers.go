package rpc

import (
	"net/http"
)

type fidelityStakeParams struct {
	Holder string `json:"holder"`
	Amount string `json:"amount"`
}

type fidelityHolderParams struct {
	Holder string `json:"holder"`
}

type fidelityPeriodParams struct {
	Caller  string `json:"caller"`
	Seconds int64  `json:"seconds"`
}

func (s *Server) handleFidelityStake(w http.ResponseWriter, req *RPCRequest) {
	var params fidelityStakeParams
	if err := decodeParams(req, &params); err != nil {
		writeInvalidParams(w, req, codeFidelityInvalidParams, err)
		return
	}
	holder, err := parseAddress(params.Holder)
	if err != nil {
		writeInvalidParams(w, req, codeFidelityInvalidParams, err)
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		writeInvalidParams(w, req, codeFidelityInvalidParams, err)
		return
	}
	if err := s.node.Stake(holder, amount); err != nil {
		writeEngineError(w, req, fidelityCodes, err)
		return
	}
	writeResult(w, req.ID, balanceResult{Address: formatAddress(holder), Amount: formatAmount(amount)})
}

func (s *Server) handleFidelityUnstake(w http.ResponseWriter, req *RPCRequest) {
	var params fidelityHolderParams
	if err := decodeParams(req, &params); err != nil {
		writeInvalidParams(w, req, codeFidelityInvalidParams, err)
		return
	}
	holder, err := parseAddress(params.Holder)
	if err != nil {
		writeInvalidParams(w, req, codeFidelityInvalidParams, err)
		return
	}
	amount, err := s.node.Unstake(holder)
	if err != nil {
		writeEngineError(w, req, fidelityCodes, err)
		return
	}
	writeResult(w, req.ID, withdrawalResult{Address: formatAddress(holder), Amount: formatAmount(amount)})
}

func (s *Server) handleFidelityStakedAmount(w http.ResponseWriter, req *RPCRequest) {
	var params fidelityHolderParams
	if err := decodeParams(req, &params); err != nil {
		writeInvalidParams(w, req, codeFidelityInvalidParams, err)
		return
	}
	holder, err := parseAddress(params.Holder)
	if err != nil {
		writeInvalidParams(w, req, codeFidelityInvalidParams, err)
		return
	}
	amount, err := s.node.StakedAmount(holder)
	if err != nil {
		writeEngineError(w, req, fidelityCodes, err)
		return
	}
	writeResult(w, req.ID, balanceResult{Address: formatAddress(holder), Amount: formatAmount(amount)})
}

func (s *Server) handleFidelitySetStakingPeriod(w http.ResponseWriter, req *RPCRequest) {
	var params fidelityPeriodParams
	if err := decodeParams(req, &params); err != nil {
		writeInvalidParams(w, req, codeFidelityInvalidParams, err)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeInvalidParams(w, req, codeFidelityInvalidParams, err)
		return
	}
	if err := s.node.SetStakingPeriod(caller, params.Seconds); err != nil {
		writeEngineError(w, req, fidelityCodes, err)
		return
	}
	writeResult(w, req.ID, map[string]int64{"stakingPeriodSeconds": params.Seconds})
}
