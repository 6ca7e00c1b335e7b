package terminal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNotConfigured is the decline reason reported by the null terminal.
var ErrNotConfigured = errors.New("no payment terminal configured")

// ChargeRequest asks the card terminal to collect amount.
type ChargeRequest struct {
	Amount     decimal.Decimal `json:"amount"`
	Processor  string          `json:"processor"`
	TerminalID string          `json:"terminalId"`
}

// ChargeResult is the processor's answer. A declined charge has Success
// false and a Message from the processor.
type ChargeResult struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transactionId,omitempty"`
	CardType      string `json:"cardType,omitempty"`
	Last4         string `json:"last4,omitempty"`
	Message       string `json:"message,omitempty"`
}

// Terminal is the interface for an external card payment terminal.
type Terminal interface {
	// Charge runs a card payment. Transport failures are returned as errors;
	// declines come back as a result with Success false.
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
	// IsConnected returns true if the terminal answers.
	IsConnected(ctx context.Context) bool
}

// --- HTTP Terminal (payment bridge speaking JSON, e.g. http://10.0.0.20:8080) ---

type httpTerminal struct {
	baseURL string
	client  *http.Client
}

// NewHTTPTerminal creates a terminal that posts charges to a payment bridge.
func NewHTTPTerminal(baseURL string, timeout time.Duration) Terminal {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &httpTerminal{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (t *httpTerminal) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("terminal: failed to encode charge: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/charge", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("terminal: failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("terminal: failed to reach %s: %w", t.baseURL, err)
	}
	defer resp.Body.Close()

	var result ChargeResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("terminal: unreadable response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode >= http.StatusInternalServerError && result.Message == "" {
		return nil, fmt.Errorf("terminal: bridge returned status %d", resp.StatusCode)
	}
	if !result.Success && result.Message == "" {
		result.Message = "card payment declined"
	}
	return &result, nil
}

func (t *httpTerminal) IsConnected(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/status", nil)
	if err != nil {
		return false
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < http.StatusBadRequest
}

// --- Null Terminal (declines everything, used when no hardware is configured) ---

type nullTerminal struct{}

// NewNullTerminal creates a terminal that declines every charge.
func NewNullTerminal() Terminal {
	return &nullTerminal{}
}

func (t *nullTerminal) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	return &ChargeResult{Success: false, Message: ErrNotConfigured.Error()}, nil
}

func (t *nullTerminal) IsConnected(ctx context.Context) bool {
	return false
}

// NewTerminalFromConfig creates the appropriate Terminal based on type.
//
//	terminalType: "http" or "null"
//	address: base URL of the payment bridge (e.g. "http://10.0.0.20:8080")
func NewTerminalFromConfig(terminalType, address string, timeout time.Duration) (Terminal, error) {
	switch terminalType {
	case "http":
		if address == "" {
			return nil, fmt.Errorf("terminal: address is required for http terminal type")
		}
		return NewHTTPTerminal(address, timeout), nil
	case "null", "none", "":
		return NewNullTerminal(), nil
	default:
		return nil, fmt.Errorf("terminal: unknown terminal type %q (use http or null)", terminalType)
	}
}
