// Command tokengen issues a bearer token for one register terminal.
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sangkips/tillpoint/internal/config"
	"github.com/sangkips/tillpoint/pkg/utils"
	"github.com/spf13/pflag"
)

func main() {
	terminalID := pflag.StringP("terminal", "t", "", "terminal id the token is bound to")
	cashier := pflag.StringP("cashier", "c", "", "cashier name recorded in the token")
	expiry := pflag.Duration("expiry", 0, "token lifetime (defaults to JWT_EXPIRY_HOURS)")
	pflag.Parse()

	if *terminalID == "" {
		fmt.Fprintln(os.Stderr, "usage: tokengen --terminal lane-1 [--cashier name] [--expiry 12h]")
		os.Exit(2)
	}

	cfg := config.Load()
	lifetime := cfg.JWT.ExpiryHours
	if *expiry > 0 {
		lifetime = *expiry
	}
	if lifetime <= 0 {
		lifetime = 12 * time.Hour
	}

	token, err := utils.NewJWTManager(cfg.JWT.Secret, lifetime).GenerateTerminalToken(*terminalID, *cashier)
	if err != nil {
		log.Fatalf("Failed to issue token: %v", err)
	}
	fmt.Println(token)
}
