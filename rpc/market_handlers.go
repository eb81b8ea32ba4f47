package rpc

import (
	"net/http"
)

type marketBuyParams struct {
	Buyer  string `json:"buyer"`
	Margin uint32 `json:"margin"`
	Amount string `json:"amount"`
}

type marketBuyResult struct {
	SupplierShare  string `json:"supplierShare"`
	SellerShare    string `json:"sellerShare"`
	DeveloperShare string `json:"developerShare"`
	TreasuryShare  string `json:"treasuryShare"`
	IncentiveShare string `json:"incentiveShare"`
}

func (s *Server) handleMarketBuyProduct(w http.ResponseWriter, req *RPCRequest) {
	var params marketBuyParams
	if err := decodeParams(req, &params); err != nil {
		writeInvalidParams(w, req, codeMarketInvalidParams, err)
		return
	}
	buyer, err := parseAddress(params.Buyer)
	if err != nil {
		writeInvalidParams(w, req, codeMarketInvalidParams, err)
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		writeInvalidParams(w, req, codeMarketInvalidParams, err)
		return
	}
	split, err := s.node.BuyProduct(buyer, params.Margin, amount)
	if err != nil {
		writeEngineError(w, req, marketCodes, err)
		return
	}
	writeResult(w, req.ID, marketBuyResult{
		SupplierShare:  formatAmount(split.Supplier),
		SellerShare:    formatAmount(split.Seller),
		DeveloperShare: formatAmount(split.Developer),
		TreasuryShare:  formatAmount(split.Treasury),
		IncentiveShare: formatAmount(split.Incentive),
	})
}

func (s *Server) handleMarketWithdrawAllBalances(w http.ResponseWriter, req *RPCRequest) {
	var params callerParams
	if err := decodeParams(req, &params); err != nil {
		writeInvalidParams(w, req, codeMarketInvalidParams, err)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeInvalidParams(w, req, codeMarketInvalidParams, err)
		return
	}
	paid, err := s.node.MarketWithdrawAllBalances(caller)
	if err != nil {
		writeEngineError(w, req, marketCodes, err)
		return
	}
	writeResult(w, req.ID, map[string]int{"withdrawals": paid})
}

func (s *Server) handleMarketPendingBalance(w http.ResponseWriter, req *RPCRequest) {
	var params addressParams
	if err := decodeParams(req, &params); err != nil {
		writeInvalidParams(w, req, codeMarketInvalidParams, err)
		return
	}
	addr, err := parseAddress(params.Address)
	if err != nil {
		writeInvalidParams(w, req, codeMarketInvalidParams, err)
		return
	}
	balance, err := s.node.MarketPendingBalance(addr)
	if err != nil {
		writeEngineError(w, req, marketCodes, err)
		return
	}
	writeResult(w, req.ID, balanceResult{Address: formatAddress(addr), Amount: formatAmount(balance)})
}
