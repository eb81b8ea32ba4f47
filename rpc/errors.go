package rpc

import (
	"errors"
	"net/http"

	"decentrashop/core"
	"decentrashop/core/state"
	"decentrashop/native/escrow"
	"decentrashop/native/fidelity"
	"decentrashop/native/ledger"
)

// Per-family JSON-RPC error codes, one block of five per handler family.
const (
	codeEscrowInvalidParams = -32021
	codeEscrowNotFound      = -32022
	codeEscrowForbidden     = -32023
	codeEscrowConflict      = -32024
	codeEscrowFailed        = -32025

	codeMarketInvalidParams = -32031
	codeMarketNotFound      = -32032
	codeMarketForbidden     = -32033
	codeMarketConflict      = -32034
	codeMarketFailed        = -32035

	codeLedgerInvalidParams = -32041
	codeLedgerNotFound      = -32042
	codeLedgerForbidden     = -32043
	codeLedgerConflict      = -32044
	codeLedgerFailed        = -32045

	codeFidelityInvalidParams = -32051
	codeFidelityNotFound      = -32052
	codeFidelityForbidden     = -32053
	codeFidelityConflict      = -32054
	codeFidelityFailed        = -32055

	codeAdminInvalidParams = -32061
	codeAdminNotFound      = -32062
	codeAdminForbidden     = -32063
	codeAdminConflict      = -32064
	codeAdminFailed        = -32065

	codeTokenInvalidParams = -32071
	codeTokenNotFound      = -32072
	codeTokenForbidden     = -32073
	codeTokenConflict      = -32074
	codeTokenFailed        = -32075
)

type familyCodes struct {
	invalidParams int
	notFound      int
	forbidden     int
	conflict      int
	failed        int
}

var (
	escrowCodes = familyCodes{
		invalidParams: codeEscrowInvalidParams,
		notFound:      codeEscrowNotFound,
		forbidden:     codeEscrowForbidden,
		conflict:      codeEscrowConflict,
		failed:        codeEscrowFailed,
	}
	marketCodes = familyCodes{
		invalidParams: codeMarketInvalidParams,
		notFound:      codeMarketNotFound,
		forbidden:     codeMarketForbidden,
		conflict:      codeMarketConflict,
		failed:        codeMarketFailed,
	}
	ledgerCodes = familyCodes{
		invalidParams: codeLedgerInvalidParams,
		notFound:      codeLedgerNotFound,
		forbidden:     codeLedgerForbidden,
		conflict:      codeLedgerConflict,
		failed:        codeLedgerFailed,
	}
	fidelityCodes = familyCodes{
		invalidParams: codeFidelityInvalidParams,
		notFound:      codeFidelityNotFound,
		forbidden:     codeFidelityForbidden,
		conflict:      codeFidelityConflict,
		failed:        codeFidelityFailed,
	}
	adminCodes = familyCodes{
		invalidParams: codeAdminInvalidParams,
		notFound:      codeAdminNotFound,
		forbidden:     codeAdminForbidden,
		conflict:      codeAdminConflict,
		failed:        codeAdminFailed,
	}
	tokenCodes = familyCodes{
		invalidParams: codeTokenInvalidParams,
		notFound:      codeTokenNotFound,
		forbidden:     codeTokenForbidden,
		conflict:      codeTokenConflict,
		failed:        codeTokenFailed,
	}
)

// writeEngineError maps a categorical engine error onto the family's
// JSON-RPC error codes and the matching HTTP status.
func writeEngineError(w http.ResponseWriter, req *RPCRequest, codes familyCodes, err error) {
	switch {
	case errors.Is(err, escrow.ErrUnknownOrder):
		writeError(w, http.StatusNotFound, req.ID, codes.notFound, "not_found", err.Error())
	case errors.Is(err, ledger.ErrUnauthorized):
		writeError(w, http.StatusForbidden, req.ID, codes.forbidden, "forbidden", err.Error())
	case errors.Is(err, escrow.ErrDuplicateOrder),
		errors.Is(err, escrow.ErrAlreadyDelivered),
		errors.Is(err, escrow.ErrAlreadyDisputed):
		writeError(w, http.StatusConflict, req.ID, codes.conflict, "conflict", err.Error())
	case errors.Is(err, escrow.ErrInsufficientPayment),
		errors.Is(err, escrow.ErrInsufficientFee),
		errors.Is(err, ledger.ErrBelowMinimumPrice),
		errors.Is(err, ledger.ErrInsufficientBalance),
		errors.Is(err, ledger.ErrNothingToWithdraw),
		errors.Is(err, ledger.ErrTransferFailed),
		errors.Is(err, state.ErrInsufficientFunds),
		errors.Is(err, state.ErrInsufficientAllowance),
		errors.Is(err, fidelity.ErrNoStake),
		errors.Is(err, fidelity.ErrStakeLocked),
		errors.Is(err, fidelity.ErrPeriodTooLong),
		errors.Is(err, core.ErrInvalidOwner):
		writeError(w, http.StatusUnprocessableEntity, req.ID, codes.failed, "settlement_failed", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, "internal_error", err.Error())
	}
}
