package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sangkips/tillpoint/internal/application/register"
	"github.com/sangkips/tillpoint/internal/domain/cart"
	"github.com/sangkips/tillpoint/internal/domain/enum"
	"github.com/sangkips/tillpoint/internal/domain/settlement"
	"github.com/sangkips/tillpoint/pkg/apperror"
	"github.com/shopspring/decimal"
)

// envelope mirrors the API's standard response body.
type envelope struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Data    json.RawMessage       `json:"data"`
	Errors  []apperror.FieldError `json:"errors"`
}

type accountBody struct {
	CustomerName string          `json:"customer_name"`
	Balance      decimal.Decimal `json:"balance"`
}

type ledgerRequest struct {
	Action         enum.LedgerAction `json:"action"`
	CustomerName   string            `json:"customerName"`
	Amount         decimal.Decimal   `json:"amount"`
	TransactionRef string            `json:"transactionRef,omitempty"`
}

type transactionRequest struct {
	TerminalID  string                 `json:"terminal_id"`
	Transaction settlement.Transaction `json:"transaction"`
}

type stockRequest struct {
	Items []register.StockLevel `json:"items"`
}

type stockResponse struct {
	Version int64 `json:"version"`
}

// Client reaches a remote back office over its REST API. Non-2xx answers
// come back as *apperror.AppError carrying the server's status and message.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Create(ctx context.Context, terminalID string, tx settlement.Transaction) (*register.CommittedTransaction, error) {
	var out register.CommittedTransaction
	err := c.do(ctx, http.MethodPost, "/api/v1/transactions", transactionRequest{TerminalID: terminalID, Transaction: tx}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) List(ctx context.Context) (*register.InventorySnapshot, error) {
	var out struct {
		Version int64       `json:"version"`
		Items   []cart.Item `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/inventory", nil, &out); err != nil {
		return nil, err
	}
	return &register.InventorySnapshot{Version: out.Version, Items: out.Items}, nil
}

func (c *Client) Update(ctx context.Context, levels []register.StockLevel) (int64, error) {
	var out stockResponse
	if err := c.do(ctx, http.MethodPatch, "/api/v1/inventory", stockRequest{Items: levels}, &out); err != nil {
		return 0, err
	}
	return out.Version, nil
}

func (c *Client) LookupCustomer(ctx context.Context, name string) (*settlement.Customer, error) {
	var out accountBody
	err := c.do(ctx, http.MethodGet, "/api/v1/credit/accounts?name="+url.QueryEscape(name), nil, &out)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &settlement.Customer{Name: out.CustomerName, Balance: out.Balance}, nil
}

func (c *Client) AddCredit(ctx context.Context, name string, amount decimal.Decimal, ref string) (*settlement.Customer, error) {
	return c.ledger(ctx, enum.LedgerActionAddCredit, name, amount, ref)
}

func (c *Client) ApplyPayment(ctx context.Context, name string, amount decimal.Decimal, ref string) (*settlement.Customer, error) {
	return c.ledger(ctx, enum.LedgerActionPayment, name, amount, ref)
}

func (c *Client) ledger(ctx context.Context, action enum.LedgerAction, name string, amount decimal.Decimal, ref string) (*settlement.Customer, error) {
	var out accountBody
	req := ledgerRequest{Action: action, CustomerName: name, Amount: amount, TransactionRef: ref}
	var headers map[string]string
	if ref != "" {
		// outbox retries resend the same op; the server replays the first reply
		headers = map[string]string{"Idempotency-Key": ref + "-" + action.String()}
	}
	if err := c.send(ctx, http.MethodPost, "/api/v1/credit/accounts", req, &out, headers); err != nil {
		return nil, err
	}
	return &settlement.Customer{Name: out.CustomerName, Balance: out.Balance}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	return c.send(ctx, method, path, body, out, nil)
}

func (c *Client) send(ctx context.Context, method, path string, body, out interface{}, headers map[string]string) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%s %s: unreadable response (status %d): %w", method, path, resp.StatusCode, err)
	}
	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		appErr := apperror.NewAppError(resp.StatusCode, env.Message)
		appErr.Errors = env.Errors
		return appErr
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%s %s: decode data: %w", method, path, err)
	}
	return nil
}
