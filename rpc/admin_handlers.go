package rpc

import (
	"net/http"
)

type adminMinPriceParams struct {
	Caller string `json:"caller"`
	Module string `json:"module"`
	Price  string `json:"price"`
}

type adminAddressParams struct {
	Caller  string `json:"caller"`
	Address string `json:"address"`
}

type adminSweepParams struct {
	Caller string `json:"caller"`
	Module string `json:"module"`
	Asset  string `json:"asset"`
	To     string `json:"to"`
}

func (s *Server) handleAdminSetMinimumPrice(w http.ResponseWriter, req *RPCRequest) {
	var params adminMinPriceParams
	if err := decodeParams(req, &params); err != nil {
		writeInvalidParams(w, req, codeAdminInvalidParams, err)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeInvalidParams(w, req, codeAdminInvalidParams, err)
		return
	}
	price, err := parseAmount(params.Price)
	if err != nil {
		writeInvalidParams(w, req, codeAdminInvalidParams, err)
		return
	}
	if err := s.node.SetMinimumPrice(caller, params.Module, price); err != nil {
		writeEngineError(w, req, adminCodes, err)
		return
	}
	writeResult(w, req.ID, map[string]string{"module": params.Module, "minimumPrice": formatAmount(price)})
}

func (s *Server) handleAdminSetSupplier(w http.ResponseWriter, req *RPCRequest) {
	s.handleAdminAddressUpdate(w, req, s.node.SetSupplier, "supplier")
}

func (s *Server) handleAdminSetBeneficiary(w http.ResponseWriter, req *RPCRequest) {
	s.handleAdminAddressUpdate(w, req, s.node.SetBeneficiary, "beneficiary")
}

func (s *Server) handleAdminTransferOwnership(w http.ResponseWriter, req *RPCRequest) {
	s.handleAdminAddressUpdate(w, req, s.node.TransferOwnership, "owner")
}

func (s *Server) handleAdminAddressUpdate(w http.ResponseWriter, req *RPCRequest, update func(caller, addr [20]byte) error, field string) {
	var params adminAddressParams
	if err := decodeParams(req, &params); err != nil {
		writeInvalidParams(w, req, codeAdminInvalidParams, err)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeInvalidParams(w, req, codeAdminInvalidParams, err)
		return
	}
	addr, err := parseAddress(params.Address)
	if err != nil {
		writeInvalidParams(w, req, codeAdminInvalidParams, err)
		return
	}
	if err := update(caller, addr); err != nil {
		writeEngineError(w, req, adminCodes, err)
		return
	}
	writeResult(w, req.ID, map[string]string{field: formatAddress(addr)})
}

func (s *Server) handleAdminSweep(w http.ResponseWriter, req *RPCRequest) {
	var params adminSweepParams
	if err := decodeParams(req, &params); err != nil {
		writeInvalidParams(w, req, codeAdminInvalidParams, err)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeInvalidParams(w, req, codeAdminInvalidParams, err)
		return
	}
	to, err := parseAddress(params.To)
	if err != nil {
		writeInvalidParams(w, req, codeAdminInvalidParams, err)
		return
	}
	amount, err := s.node.Sweep(caller, params.Module, params.Asset, to)
	if err != nil {
		writeEngineError(w, req, adminCodes, err)
		return
	}
	writeResult(w, req.ID, withdrawalResult{Address: formatAddress(to), Amount: formatAmount(amount)})
}

func (s *Server) handleAdminOwner(w http.ResponseWriter, req *RPCRequest) {
	writeResult(w, req.ID, map[string]string{"owner": formatAddress(s.node.Owner())})
}
