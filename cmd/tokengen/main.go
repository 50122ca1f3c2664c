// Command tokengen mints a bearer token for the walletstore API using the
// configured JWT secret.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"walletstore/config"
	"walletstore/internal/service"
)

func main() {
	subject := flag.String("sub", "", "token subject, e.g. the calling service name")
	expiry := flag.Duration("expiry", 0, "token lifetime (defaults to jwt.expiry)")
	flag.Parse()

	config.LoadEnv()

	cfg, err := config.Load(os.Getenv("WS_CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.JWT.Secret == "" {
		fmt.Fprintln(os.Stderr, "jwt.secret is not set (WS_JWT_SECRET)")
		os.Exit(1)
	}
	if *subject == "" {
		fmt.Fprintln(os.Stderr, "usage: tokengen -sub <subject> [-expiry 24h]")
		os.Exit(2)
	}

	lifetime := cfg.JWT.Expiry
	if *expiry > 0 {
		lifetime = *expiry
	}

	token, exp, err := service.NewJWTTokenService(cfg.JWT.Secret, lifetime, cfg.JWT.Issuer).Generate(*subject)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to generate token: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "expires %s\n", exp.Format(time.RFC3339))
	fmt.Println(token)
}
