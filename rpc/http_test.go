package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"decentrashop/config"
	"decentrashop/core"
	"decentrashop/storage"
)

func testHexAddress(fill byte) string {
	addr := make([]byte, 20)
	for i := range addr {
		addr[i] = fill
	}
	return fmt.Sprintf("0x%x", addr)
}

var (
	ownerAddr    = testHexAddress(0x10)
	devAddr      = testHexAddress(0x11)
	treasuryAddr = testHexAddress(0x12)
	arbAddr      = testHexAddress(0x13)
	buyerAddr    = testHexAddress(0x20)
	sellerAddr   = testHexAddress(0x21)
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := config.Default()
	cfg.Escrow.Owner = ownerAddr
	cfg.Escrow.DevWallet = devAddr
	cfg.Escrow.TreasuryWallet = treasuryAddr
	cfg.Escrow.Arbitrator = arbAddr
	cfg.Marketplace.Supplier = testHexAddress(0x14)
	cfg.Marketplace.Seller = testHexAddress(0x15)
	cfg.Marketplace.IncentiveWallet = testHexAddress(0x16)
	cfg.Genesis.Alloc = []config.GenesisAccount{
		{Address: buyerAddr, Asset: "DSH", Balance: "1000000"},
		{Address: buyerAddr, Asset: "DXS", Balance: "1000000"},
	}
	node, err := core.NewNode(storage.NewMemDB(), cfg, nil)
	if err != nil {
		t.Fatalf("creating node: %v", err)
	}
	ts := httptest.NewServer(NewServer(node).Router())
	t.Cleanup(ts.Close)
	return ts
}

type testResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

func call(t *testing.T, ts *httptest.Server, method string, params ...interface{}) (int, testResponse) {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  params,
	})
	if err != nil {
		t.Fatalf("encoding request: %v", err)
	}
	resp, err := http.Post(ts.URL+"/", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("posting %s: %v", method, err)
	}
	defer resp.Body.Close()
	var decoded testResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decoding %s response: %v", method, err)
	}
	return resp.StatusCode, decoded
}

func mustResult(t *testing.T, ts *httptest.Server, method string, params interface{}, dst interface{}) {
	t.Helper()
	status, resp := call(t, ts, method, params)
	if status != http.StatusOK || resp.Error != nil {
		t.Fatalf("%s failed: status=%d error=%+v", method, status, resp.Error)
	}
	if err := json.Unmarshal(resp.Result, dst); err != nil {
		t.Fatalf("decoding %s result: %v", method, err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("health check: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d, want 200", resp.StatusCode)
	}
}

func TestRateLimitThrottles(t *testing.T) {
	cfg := config.Default()
	node, err := core.NewNode(storage.NewMemDB(), cfg, nil)
	if err != nil {
		t.Fatalf("creating node: %v", err)
	}
	server := NewServer(node)
	server.SetRateLimit(1, 1)
	ts := httptest.NewServer(server.Router())
	defer ts.Close()

	first, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("first request: %v", err)
	}
	first.Body.Close()
	if first.StatusCode != http.StatusOK {
		t.Fatalf("first status = %d, want 200", first.StatusCode)
	}
	second, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("second request: %v", err)
	}
	second.Body.Close()
	if second.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("second status = %d, want 429", second.StatusCode)
	}
}

func TestUnknownMethodReturnsMethodNotFound(t *testing.T) {
	ts := newTestServer(t)
	status, resp := call(t, ts, "escrow_doesNotExist", map[string]string{})
	if status != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", status)
	}
	if resp.Error == nil || resp.Error.Code != codeMethodNotFound {
		t.Fatalf("error = %+v, want code %d", resp.Error, codeMethodNotFound)
	}
}

func TestInvalidParamsRejected(t *testing.T) {
	ts := newTestServer(t)

	// No parameter object at all.
	status, resp := call(t, ts, "escrow_createOrders")
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
	if resp.Error == nil || resp.Error.Code != codeEscrowInvalidParams {
		t.Fatalf("error = %+v, want code %d", resp.Error, codeEscrowInvalidParams)
	}

	// Malformed address.
	status, resp = call(t, ts, "escrow_withdraw", map[string]string{"caller": "bogus"})
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
	if resp.Error == nil || resp.Error.Code != codeEscrowInvalidParams {
		t.Fatalf("error = %+v, want code %d", resp.Error, codeEscrowInvalidParams)
	}
}

func TestEscrowLifecycleOverRPC(t *testing.T) {
	ts := newTestServer(t)

	var created map[string]int
	mustResult(t, ts, "escrow_createOrders", map[string]interface{}{
		"buyer": buyerAddr,
		"orders": []map[string]interface{}{
			{"id": 1, "seller": sellerAddr, "price": "10000"},
		},
		"attached": "10000",
	}, &created)
	if created["created"] != 1 {
		t.Fatalf("created = %d, want 1", created["created"])
	}

	var order escrowOrderJSON
	mustResult(t, ts, "escrow_get", map[string]uint64{"id": 1}, &order)
	if order.Price != "10000" || order.Delivered || order.Disputed {
		t.Fatalf("unexpected order state: %+v", order)
	}

	// Only the buyer may confirm an undisputed order.
	status, resp := call(t, ts, "escrow_confirmDelivery", map[string]interface{}{"id": 1, "caller": sellerAddr})
	if status != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", status)
	}
	if resp.Error == nil || resp.Error.Code != codeEscrowForbidden {
		t.Fatalf("error = %+v, want code %d", resp.Error, codeEscrowForbidden)
	}

	var delivered map[string]uint64
	mustResult(t, ts, "escrow_confirmDelivery", map[string]interface{}{"id": 1, "caller": buyerAddr}, &delivered)

	// Re-confirming is a conflict.
	status, resp = call(t, ts, "escrow_confirmDelivery", map[string]interface{}{"id": 1, "caller": buyerAddr})
	if status != http.StatusConflict {
		t.Fatalf("status = %d, want 409", status)
	}
	if resp.Error == nil || resp.Error.Code != codeEscrowConflict {
		t.Fatalf("error = %+v, want code %d", resp.Error, codeEscrowConflict)
	}

	var payout withdrawalResult
	mustResult(t, ts, "escrow_withdraw", map[string]string{"caller": sellerAddr}, &payout)
	if payout.Amount != "9650" {
		t.Fatalf("seller payout = %s, want 9650", payout.Amount)
	}

	status, resp = call(t, ts, "escrow_get", map[string]uint64{"id": 99})
	if status != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", status)
	}
	if resp.Error == nil || resp.Error.Code != codeEscrowNotFound {
		t.Fatalf("error = %+v, want code %d", resp.Error, codeEscrowNotFound)
	}
}

func TestDisputeOverRPC(t *testing.T) {
	ts := newTestServer(t)

	var created map[string]int
	mustResult(t, ts, "escrow_createOrders", map[string]interface{}{
		"buyer": buyerAddr,
		"orders": []map[string]interface{}{
			{"id": 5, "seller": sellerAddr, "price": "2000"},
		},
		"attached": "2000",
	}, &created)

	var disputed map[string]uint64
	mustResult(t, ts, "escrow_openDispute", map[string]interface{}{
		"id": 5, "caller": buyerAddr, "fee": "0",
	}, &disputed)

	var order escrowOrderJSON
	mustResult(t, ts, "escrow_get", map[string]uint64{"id": 5}, &order)
	if !order.Disputed {
		t.Fatalf("order not marked disputed: %+v", order)
	}

	// A second dispute on the same order is a conflict.
	status, resp := call(t, ts, "escrow_openDispute", map[string]interface{}{
		"id": 5, "caller": buyerAddr, "fee": "0",
	})
	if status != http.StatusConflict {
		t.Fatalf("status = %d, want 409", status)
	}
	if resp.Error == nil || resp.Error.Code != codeEscrowConflict {
		t.Fatalf("error = %+v, want code %d", resp.Error, codeEscrowConflict)
	}
}

func TestAdminMethodsEnforceOwner(t *testing.T) {
	ts := newTestServer(t)

	var ownerResult map[string]string
	mustResult(t, ts, "admin_owner", map[string]string{}, &ownerResult)
	if got := ownerResult["owner"]; got == "" {
		t.Fatal("owner missing from result")
	}

	status, resp := call(t, ts, "admin_setMinimumPrice", map[string]string{
		"caller": buyerAddr,
		"module": "escrow",
		"price":  "100",
	})
	if status != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", status)
	}
	if resp.Error == nil || resp.Error.Code != codeAdminForbidden {
		t.Fatalf("error = %+v, want code %d", resp.Error, codeAdminForbidden)
	}

	var updated map[string]string
	mustResult(t, ts, "admin_setMinimumPrice", map[string]string{
		"caller": ownerAddr,
		"module": "escrow",
		"price":  "100",
	}, &updated)
	if updated["minimumPrice"] != "100" {
		t.Fatalf("minimumPrice = %s, want 100", updated["minimumPrice"])
	}
}

func TestTokenFlowOverRPC(t *testing.T) {
	ts := newTestServer(t)
	spender := testHexAddress(0x30)

	var balance balanceResult
	mustResult(t, ts, "token_balanceOf", map[string]string{"asset": "DXS", "address": buyerAddr}, &balance)
	if balance.Amount != "1000000" {
		t.Fatalf("balance = %s, want 1000000", balance.Amount)
	}

	var approved map[string]string
	mustResult(t, ts, "token_approve", map[string]string{
		"owner":   buyerAddr,
		"spender": spender,
		"amount":  "5000",
	}, &approved)

	var allowance map[string]string
	mustResult(t, ts, "token_allowance", map[string]string{"owner": buyerAddr, "spender": spender}, &allowance)
	if allowance["allowance"] != "5000" {
		t.Fatalf("allowance = %s, want 5000", allowance["allowance"])
	}

	var transferred map[string]string
	mustResult(t, ts, "token_transfer", map[string]string{
		"from":   buyerAddr,
		"to":     spender,
		"amount": "2500",
	}, &transferred)
	mustResult(t, ts, "token_balanceOf", map[string]string{"asset": "DXS", "address": spender}, &balance)
	if balance.Amount != "2500" {
		t.Fatalf("recipient balance = %s, want 2500", balance.Amount)
	}

	// Overdraft is a settlement failure.
	status, resp := call(t, ts, "token_transfer", map[string]string{
		"from":   spender,
		"to":     buyerAddr,
		"amount": "999999",
	})
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", status)
	}
	if resp.Error == nil || resp.Error.Code != codeTokenFailed {
		t.Fatalf("error = %+v, want code %d", resp.Error, codeTokenFailed)
	}
}

func TestLedgerDepositOverRPC(t *testing.T) {
	ts := newTestServer(t)

	var made map[string]string
	mustResult(t, ts, "ledger_makeOrder", map[string]string{"buyer": buyerAddr, "amount": "4000"}, &made)

	var pending balanceResult
	mustResult(t, ts, "ledger_pendingBalance", map[string]string{"address": buyerAddr}, &pending)
	if pending.Amount != "4000" {
		t.Fatalf("pending = %s, want 4000", pending.Amount)
	}

	// Settlement is owner gated while the batch incentive is disabled.
	status, resp := call(t, ts, "ledger_paySeller", map[string]string{
		"caller": buyerAddr,
		"buyer":  buyerAddr,
		"seller": sellerAddr,
		"amount": "4000",
	})
	if status != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", status)
	}
	if resp.Error == nil || resp.Error.Code != codeLedgerForbidden {
		t.Fatalf("error = %+v, want code %d", resp.Error, codeLedgerForbidden)
	}

	var paid map[string]string
	mustResult(t, ts, "ledger_paySeller", map[string]string{
		"caller": ownerAddr,
		"buyer":  buyerAddr,
		"seller": sellerAddr,
		"amount": "4000",
	}, &paid)

	var balance balanceResult
	mustResult(t, ts, "token_balanceOf", map[string]string{"asset": "DSH", "address": sellerAddr}, &balance)
	if balance.Amount != "4000" {
		t.Fatalf("seller balance = %s, want 4000", balance.Amount)
	}
}
