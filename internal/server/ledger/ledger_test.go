package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func TestTransferError_Messages(t *testing.T) {
	tests := []struct {
		name string
		err  TransferError
		want string
	}{
		{"bad fee", TransferError{Code: CodeBadFee, ExpectedFee: 10}, "bad fee, expected 10"},
		{"bad burn", TransferError{Code: CodeBadBurn, MinBurnAmount: 5}, "bad burn, minimum burn amount 5"},
		{"insufficient funds", TransferError{Code: CodeInsufficientFunds, Balance: 7}, "insufficient funds, balance 7"},
		{"insufficient allowance", TransferError{Code: CodeInsufficientAllowance, Allowance: 3}, "insufficient allowance, allowance 3"},
		{"too old", TransferError{Code: CodeTooOld}, "transaction too old"},
		{"created in future", TransferError{Code: CodeCreatedInFuture, LedgerTime: 42}, "transaction created in future, ledger time 42"},
		{"duplicate", TransferError{Code: CodeDuplicate, DuplicateOf: 9}, "duplicate transaction, duplicate of 9"},
		{"temporarily unavailable", TransferError{Code: CodeTemporarilyUnavailable}, "ledger temporarily unavailable"},
		{"generic", TransferError{Code: CodeGenericError, ErrorCode: 1, Message: "oops"}, "ledger error 1 - oops"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Fatalf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHTTPClient_TransferFrom_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/icrc2/transfer_from") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var args TransferFromArgs
		if err := json.NewDecoder(r.Body).Decode(&args); err != nil {
			t.Errorf("decode error: %v", err)
		}
		if args.Memo == "" {
			t.Errorf("expected generated memo")
		}
		idx := uint64(17)
		json.NewEncoder(w).Encode(transferFromResponse{BlockIndex: &idx})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	idx, err := c.TransferFrom(context.Background(), TransferFromArgs{
		From:   Account{Owner: "buyer"},
		To:     Account{Owner: "seller"},
		Amount: 970,
	})
	if err != nil {
		t.Fatalf("TransferFrom error: %v", err)
	}
	if idx != 17 {
		t.Fatalf("block index = %d, want 17", idx)
	}
}

func TestHTTPClient_TransferFrom_LedgerRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(transferFromResponse{
			Err: &TransferError{Code: CodeInsufficientFunds, Balance: 12},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	_, err := c.TransferFrom(context.Background(), TransferFromArgs{Amount: 100})
	if err == nil {
		t.Fatalf("expected error")
	}
	te, ok := err.(*TransferError)
	if !ok {
		t.Fatalf("expected *TransferError, got %T", err)
	}
	if te.Code != CodeInsufficientFunds || te.Balance != 12 {
		t.Fatalf("unexpected error: %+v", te)
	}
}

func TestHTTPClient_BalanceOf_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(balanceOfResponse{Balance: 555})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	balance, err := c.BalanceOf(context.Background(), Account{Owner: "alice"})
	if err != nil {
		t.Fatalf("BalanceOf error: %v", err)
	}
	if balance != 555 {
		t.Fatalf("balance = %d, want 555", balance)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestHTTPClient_BalanceOf_GivesUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	_, err := c.BalanceOf(context.Background(), Account{Owner: "alice"})
	if err == nil {
		t.Fatalf("expected error after exhausting retries")
	}
	if got := calls.Load(); got != balanceAttempts {
		t.Fatalf("expected %d attempts, got %d", balanceAttempts, got)
	}
}

func TestBTCToSats(t *testing.T) {
	if got := BTCToSats(1); got != SatsPerBTC {
		t.Fatalf("BTCToSats(1) = %d", got)
	}
	if got := BTCToSats(0.00000001); got != 1 {
		t.Fatalf("BTCToSats(1e-8) = %d", got)
	}
	if got := BTCToSats(-1); got != 0 {
		t.Fatalf("BTCToSats(-1) = %d", got)
	}
}
