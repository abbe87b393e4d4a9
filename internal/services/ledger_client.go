// internal/services/ledger_client.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/harvestx/harvestx-backend/internal/config"
)

// LedgerClient checks escrow deposits against the external token
// ledger gateway over HTTP. It satisfies PaymentVerifier.
type LedgerClient struct {
	baseURL string
	client  *http.Client
}

type ledgerBalanceResponse struct {
	Subaccount string `json:"subaccount"`
	Balance    int64  `json:"balance"`
}

func NewLedgerClient(cfg *config.Config) *LedgerClient {
	return &LedgerClient{
		baseURL: cfg.Ledger.GatewayURL,
		client: &http.Client{
			Timeout: time.Duration(cfg.Ledger.RequestTimeout) * time.Second,
		},
	}
}

// VerifyDeposit reports whether the sub-account holds at least the
// expected amount. Transport and decoding failures are returned as
// errors so the caller can distinguish "not paid" from "unknown".
func (c *LedgerClient) VerifyDeposit(ctx context.Context, subaccount string, amount int64) (bool, error) {
	endpoint := fmt.Sprintf("%s/v1/accounts/%s/balance", c.baseURL, url.PathEscape(subaccount))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("failed to build ledger request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("ledger gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// Account never funded
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("ledger gateway returned status %d", resp.StatusCode)
	}

	var balance ledgerBalanceResponse
	if err := json.NewDecoder(resp.Body).Decode(&balance); err != nil {
		return false, fmt.Errorf("failed to decode ledger response: %w", err)
	}

	return balance.Balance >= amount, nil
}
