package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sangkips/tillpoint/internal/application/register"
	"github.com/sangkips/tillpoint/internal/domain/enum"
	"github.com/sangkips/tillpoint/internal/domain/settlement"
	"github.com/sangkips/tillpoint/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvelope(w http.ResponseWriter, status int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": status < http.StatusBadRequest,
		"message": message,
		"data":    data,
	})
}

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			writeEnvelope(w, http.StatusUnauthorized, "Invalid token", nil)
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", "secret", time.Second)
}

func TestClient_Inventory(t *testing.T) {
	mux := http.NewServeMux()
	var patched stockRequest
	mux.HandleFunc("/api/v1/inventory", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeEnvelope(w, http.StatusOK, "ok", map[string]interface{}{
				"version": 4,
				"items": []map[string]interface{}{
					{"id": "p1", "code": "100", "name": "Soda Can", "price": "1.50", "category": "Drinks", "taxable": true, "stock": 10},
				},
			})
		case http.MethodPatch:
			require.NoError(t, json.NewDecoder(r.Body).Decode(&patched))
			writeEnvelope(w, http.StatusOK, "Stock updated", map[string]interface{}{"version": 5, "updated": 1, "missing": []string{}})
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	snap, err := c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), snap.Version)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "Soda Can", snap.Items[0].Name)
	assert.True(t, decimal.RequireFromString("1.50").Equal(snap.Items[0].Price))

	version, err := c.Update(ctx, []register.StockLevel{{ID: "p1", Stock: 8}})
	require.NoError(t, err)
	assert.Equal(t, int64(5), version)
	assert.Equal(t, []register.StockLevel{{ID: "p1", Stock: 8}}, patched.Items)
}

func TestClient_CreateTransaction(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/transactions", func(w http.ResponseWriter, r *http.Request) {
		var body transactionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "lane-2", body.TerminalID)
		writeEnvelope(w, http.StatusCreated, "Transaction recorded", map[string]interface{}{
			"id":          "7b0c9a52-4d3e-4f2a-9c55-2f1de0c2d6a1",
			"transaction": body.Transaction,
		})
	})
	c := newTestClient(t, mux)

	rec := settlement.Transaction{
		Items:      []settlement.Item{{Identity: "p1", Kind: enum.LineKindItem, Name: "Soda Can", UnitPrice: decimal.RequireFromString("1.50"), Quantity: 1}},
		FinalTotal: decimal.RequireFromString("1.70"),
	}
	out, err := c.Create(context.Background(), "lane-2", rec)
	require.NoError(t, err)
	assert.Equal(t, "7b0c9a52-4d3e-4f2a-9c55-2f1de0c2d6a1", out.ID)
	assert.True(t, rec.FinalTotal.Equal(out.Transaction.FinalTotal))
}

func TestClient_CreditLedger(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/credit/accounts", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			if r.URL.Query().Get("name") == "Jo Smith" {
				writeEnvelope(w, http.StatusOK, "ok", map[string]interface{}{"customer_name": "Jo Smith", "balance": "12.00"})
				return
			}
			writeEnvelope(w, http.StatusNotFound, "Credit account not found", nil)
			return
		}
		var body ledgerRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.Action == enum.LedgerActionPayment {
			writeEnvelope(w, http.StatusUnprocessableEntity, "Payment exceeds outstanding balance", nil)
			return
		}
		assert.Equal(t, "tx-9", body.TransactionRef)
		assert.Equal(t, "tx-9-addCredit", r.Header.Get("Idempotency-Key"))
		writeEnvelope(w, http.StatusOK, "Credit applied", map[string]interface{}{
			"customer_name": body.CustomerName,
			"balance":       body.Amount.Add(decimal.NewFromInt(12)),
		})
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	found, err := c.LookupCustomer(ctx, "Jo Smith")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, decimal.RequireFromString("12").Equal(found.Balance))

	missing, err := c.LookupCustomer(ctx, "Nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)

	added, err := c.AddCredit(ctx, "Jo Smith", decimal.RequireFromString("3.25"), "tx-9")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("15.25").Equal(added.Balance))

	_, err = c.ApplyPayment(ctx, "Jo Smith", decimal.RequireFromString("99"), "tx-10")
	require.Error(t, err)
	appErr := apperror.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.Code)
	assert.Equal(t, "Payment exceeds outstanding balance", appErr.Message)
}

func TestClient_Unauthorized(t *testing.T) {
	c := newTestClient(t, http.NewServeMux())
	c.token = "wrong"

	_, err := c.List(context.Background())
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, apperror.GetAppError(err).Code)
}

func TestClient_Unreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "", 200*time.Millisecond)
	_, err := c.List(context.Background())
	require.Error(t, err)
	assert.False(t, apperror.IsAppError(err))
}
