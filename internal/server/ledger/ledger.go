// Package ledger talks to the external token ledger. The ledger is the
// authority on balances and transfers; this package only shapes requests,
// decodes the ledger's structured errors, and renders them for callers.
package ledger

import (
	"context"
	"fmt"
	"time"

	"notemint/internal/server/models"
)

// SatsPerBTC converts whole-coin prices to the ledger's smallest unit.
const SatsPerBTC = 100_000_000

// Account identifies a party on the ledger.
type Account struct {
	Owner      models.Principal `json:"owner"`
	Subaccount []byte           `json:"subaccount,omitempty"`
}

// TransferFromArgs describes a pre-approved transfer pulled by this service.
type TransferFromArgs struct {
	From      Account    `json:"from"`
	To        Account    `json:"to"`
	Amount    uint64     `json:"amount"`
	Fee       *uint64    `json:"fee,omitempty"`
	Memo      string     `json:"memo,omitempty"`
	CreatedAt *time.Time `json:"created_at_time,omitempty"`
}

// Client is the boundary to the ledger service.
type Client interface {
	// BalanceOf is a pure read and may be retried by implementations.
	BalanceOf(ctx context.Context, account Account) (uint64, error)
	// TransferFrom moves funds and returns the ledger block index on success.
	// Failures are returned as *TransferError when the ledger rejected the
	// transfer, or as plain errors when the call itself failed.
	TransferFrom(ctx context.Context, args TransferFromArgs) (uint64, error)
}

// ErrorCode enumerates the ledger's transfer rejection variants.
type ErrorCode string

const (
	CodeBadFee                 ErrorCode = "bad_fee"
	CodeBadBurn                ErrorCode = "bad_burn"
	CodeInsufficientFunds      ErrorCode = "insufficient_funds"
	CodeInsufficientAllowance  ErrorCode = "insufficient_allowance"
	CodeTooOld                 ErrorCode = "too_old"
	CodeCreatedInFuture        ErrorCode = "created_in_future"
	CodeDuplicate              ErrorCode = "duplicate"
	CodeTemporarilyUnavailable ErrorCode = "temporarily_unavailable"
	CodeGenericError           ErrorCode = "generic_error"
)

// TransferError is a structured rejection from the ledger. Only the fields
// relevant to the code are populated.
type TransferError struct {
	Code          ErrorCode `json:"code"`
	ExpectedFee   uint64    `json:"expected_fee,omitempty"`
	MinBurnAmount uint64    `json:"min_burn_amount,omitempty"`
	Balance       uint64    `json:"balance,omitempty"`
	Allowance     uint64    `json:"allowance,omitempty"`
	LedgerTime    uint64    `json:"ledger_time,omitempty"`
	DuplicateOf   uint64    `json:"duplicate_of,omitempty"`
	ErrorCode     uint64    `json:"error_code,omitempty"`
	Message       string    `json:"message,omitempty"`
}

// Error renders every ledger rejection variant as a human-readable message.
func (e *TransferError) Error() string {
	switch e.Code {
	case CodeBadFee:
		return fmt.Sprintf("bad fee, expected %d", e.ExpectedFee)
	case CodeBadBurn:
		return fmt.Sprintf("bad burn, minimum burn amount %d", e.MinBurnAmount)
	case CodeInsufficientFunds:
		return fmt.Sprintf("insufficient funds, balance %d", e.Balance)
	case CodeInsufficientAllowance:
		return fmt.Sprintf("insufficient allowance, allowance %d", e.Allowance)
	case CodeTooOld:
		return "transaction too old"
	case CodeCreatedInFuture:
		return fmt.Sprintf("transaction created in future, ledger time %d", e.LedgerTime)
	case CodeDuplicate:
		return fmt.Sprintf("duplicate transaction, duplicate of %d", e.DuplicateOf)
	case CodeTemporarilyUnavailable:
		return "ledger temporarily unavailable"
	case CodeGenericError:
		return fmt.Sprintf("ledger error %d - %s", e.ErrorCode, e.Message)
	default:
		return fmt.Sprintf("unknown ledger error %q", e.Code)
	}
}

// BTCToSats converts a whole-coin price into sats, flooring the fraction.
func BTCToSats(btc float64) uint64 {
	if btc <= 0 {
		return 0
	}
	return uint64(btc * SatsPerBTC)
}
