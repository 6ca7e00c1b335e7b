package service

import (
	"context"
	"fmt"

	"github.com/sangkips/tillpoint/pkg/terminal"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TerminalService drives the card payment terminal.
type TerminalService struct {
	terminal     terminal.Terminal
	terminalType string
	processor    string
	terminalID   string
	log          *zap.Logger
}

// NewTerminalService creates a new terminal service.
func NewTerminalService(t terminal.Terminal, terminalType, processor, terminalID string, log *zap.Logger) *TerminalService {
	return &TerminalService{
		terminal:     t,
		terminalType: terminalType,
		processor:    processor,
		terminalID:   terminalID,
		log:          log.Named("terminal"),
	}
}

// TerminalStatus returns the current terminal status information.
type TerminalStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
	Processor  string `json:"processor,omitempty"`
}

// GetStatus returns terminal connection status.
func (s *TerminalService) GetStatus(ctx context.Context) *TerminalStatus {
	return &TerminalStatus{
		Configured: s.terminalType != "null" && s.terminalType != "none" && s.terminalType != "",
		Connected:  s.terminal.IsConnected(ctx),
		Type:       s.terminalType,
		Processor:  s.processor,
	}
}

// Charge asks the terminal to collect amount with the configured processor.
func (s *TerminalService) Charge(ctx context.Context, amount decimal.Decimal) (*terminal.ChargeResult, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("terminal: charge amount must be positive")
	}
	res, err := s.terminal.Charge(ctx, terminal.ChargeRequest{
		Amount:     amount.Round(2),
		Processor:  s.processor,
		TerminalID: s.terminalID,
	})
	if err != nil {
		s.log.Error("terminal charge failed", zap.Error(err))
		return nil, err
	}
	if !res.Success {
		s.log.Info("terminal declined charge", zap.String("message", res.Message))
	}
	return res, nil
}
