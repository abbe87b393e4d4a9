// internal/services/ledger_client_test.go
package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harvestx/harvestx-backend/internal/config"
)

func ledgerClientForURL(url string) *LedgerClient {
	cfg := testConfig()
	cfg.Ledger = config.LedgerConfig{GatewayURL: url, Decimals: 8, RequestTimeout: 2}
	return NewLedgerClient(cfg)
}

func TestVerifyDepositSufficientBalance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/accounts/abc123/balance", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"subaccount":"abc123","balance":500}`))
	}))
	defer srv.Close()

	client := ledgerClientForURL(srv.URL)

	ok, err := client.VerifyDeposit(context.Background(), "abc123", 500)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.VerifyDeposit(context.Background(), "abc123", 501)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyDepositUnfundedAccount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := ledgerClientForURL(srv.URL)

	ok, err := client.VerifyDeposit(context.Background(), "missing", 100)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyDepositGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := ledgerClientForURL(srv.URL)

	_, err := client.VerifyDeposit(context.Background(), "abc123", 100)
	require.Error(t, err)
}

func TestVerifyDepositUnreachableGateway(t *testing.T) {
	client := ledgerClientForURL("http://127.0.0.1:1")

	_, err := client.VerifyDeposit(context.Background(), "abc123", 100)
	require.Error(t, err)
}
