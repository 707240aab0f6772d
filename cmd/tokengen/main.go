package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"ProductCRUD/internal/config"
	"ProductCRUD/internal/product"
)

func main() {
	subject := flag.String("sub", "cli", "token subject")
	role := flag.String("role", product.RoleWriter, "writer or admin")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime, 0 for no expiry")
	flag.Parse()

	if *role != product.RoleWriter && *role != product.RoleAdmin {
		fmt.Fprintf(os.Stderr, "unknown role %q\n", *role)
		os.Exit(2)
	}

	cfg, err := config.Load(config.DefaultSources())
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.Auth.Secret == "" {
		fmt.Fprintln(os.Stderr, "auth secret is not configured (PRODUCT_SVC_AUTH_SECRET)")
		os.Exit(1)
	}

	tok, err := product.NewTokenMaker(cfg.Auth.Secret).New(*subject, *role, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sign token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
