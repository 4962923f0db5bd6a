// admintoken mints a bearer token for the admin HTTP endpoints.
// Requires ADMIN_API_SECRET; the token lifetime comes from ADMIN_TOKEN_TTL.
package main

import (
	"flag"
	"fmt"
	"os"

	"delta-market/backend/internal/config"
	"delta-market/backend/internal/security"
)

func main() {
	subject := flag.String("subject", "ops", "Token subject (operator name)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if cfg.AdminAPISecret == "" {
		fmt.Fprintln(os.Stderr, "ADMIN_API_SECRET is not set")
		os.Exit(1)
	}

	tokens, err := security.NewTokenProvider(cfg.AdminAPISecret, "deltamarket-admin", "deltamarket-api", cfg.AdminTokenValidity())
	if err != nil {
		fmt.Fprintln(os.Stderr, "security:", err)
		os.Exit(1)
	}

	token, expiresAt, err := tokens.Issue(*subject)
	if err != nil {
		fmt.Fprintln(os.Stderr, "issue:", err)
		os.Exit(1)
	}

	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires %s\n", expiresAt.Format("2006-01-02 15:04:05 MST"))
}
