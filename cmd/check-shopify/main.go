package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/unionretail/promosync/internal/config"
	"github.com/unionretail/promosync/internal/shopify"
)

// Simple test query
const shopQuery = `
query {
  shop {
    name
    myshopifyDomain
  }
}
`

func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Testing Shopify connection...\n\n")
	fmt.Printf("Shop Domain: %s\n", cfg.Shopify.ShopDomain)
	fmt.Printf("Access Token: %s...%s\n",
		cfg.Shopify.AccessToken[:min(10, len(cfg.Shopify.AccessToken))],
		cfg.Shopify.AccessToken[max(0, len(cfg.Shopify.AccessToken)-4):])
	fmt.Println()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	client := shopify.NewClient(cfg.Shopify, logger)

	resp, err := client.Execute(context.Background(), shopQuery, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection failed: %v\n\n", err)
		fmt.Println("Please check:")
		fmt.Println("  1. SHOPIFY_SHOP format: should be 'store-name.myshopify.com' (no https://)")
		fmt.Println("  2. SHOPIFY_TOKEN: should start with 'shpat_' and be the full token")
		fmt.Println("  3. Token permissions: needs 'read_products' and 'write_products' scopes")
		os.Exit(1)
	}

	var shop struct {
		Shop struct {
			Name            string `json:"name"`
			MyshopifyDomain string `json:"myshopifyDomain"`
		} `json:"shop"`
	}
	if err := json.Unmarshal(resp.Data, &shop); err != nil {
		fmt.Fprintf(os.Stderr, "Unexpected response shape: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Connection successful!")
	fmt.Printf("Shop: %s (%s)\n", shop.Shop.Name, shop.Shop.MyshopifyDomain)
}
