package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const balanceAttempts = 3

// HTTPClient is a ledger Client over the gateway's JSON API.
type HTTPClient struct {
	endpoint string
	client   *http.Client
}

func NewHTTPClient(endpoint string) *HTTPClient {
	return &HTTPClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type transferFromResponse struct {
	BlockIndex *uint64        `json:"block_index,omitempty"`
	Err        *TransferError `json:"err,omitempty"`
}

type balanceOfResponse struct {
	Balance uint64 `json:"balance"`
}

// TransferFrom performs a single transfer call. A fresh memo is attached so
// the ledger can deduplicate an accidental re-send of the same request.
func (c *HTTPClient) TransferFrom(ctx context.Context, args TransferFromArgs) (uint64, error) {
	if args.Memo == "" {
		args.Memo = uuid.NewString()
	}
	if args.CreatedAt == nil {
		now := time.Now().UTC()
		args.CreatedAt = &now
	}

	var resp transferFromResponse
	if err := c.post(ctx, "/icrc2/transfer_from", args, &resp); err != nil {
		return 0, fmt.Errorf("ledger call error: %w", err)
	}
	if resp.Err != nil {
		return 0, resp.Err
	}
	if resp.BlockIndex == nil {
		return 0, fmt.Errorf("ledger call error: malformed response")
	}
	return *resp.BlockIndex, nil
}

// BalanceOf queries the balance of an account. The query is a pure read, so
// transient failures are retried a few times before giving up.
func (c *HTTPClient) BalanceOf(ctx context.Context, account Account) (uint64, error) {
	var lastErr error
	for attempt := 0; attempt < balanceAttempts; attempt++ {
		var resp balanceOfResponse
		if err := c.post(ctx, "/icrc1/balance_of", account, &resp); err != nil {
			lastErr = err
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(time.Duration(attempt+1) * 100 * time.Millisecond):
			}
			continue
		}
		return resp.Balance, nil
	}
	return 0, fmt.Errorf("balance query failed after %d attempts: %w", balanceAttempts, lastErr)
}

func (c *HTTPClient) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
