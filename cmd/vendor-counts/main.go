package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/unionretail/promosync/internal/config"
	"github.com/unionretail/promosync/internal/domain"
	"github.com/unionretail/promosync/internal/repository/postgres"
	"github.com/unionretail/promosync/internal/shopify"
)

// Maps every vendor in a DB master table to its Shopify presence: product
// count, matching collection (by exact title), collection product count.
// Counts are best-effort approximations. The results file is rewritten after
// every vendor so partial runs still produce usable output.

const (
	defaultTable = "sm_vendor"

	resultsFile = "all_vendor_product_counts.json"
	viewFile    = "all_vendor_product_counts_view.json"
	csvFile     = "all_vendor_product_counts.csv"
)

// groupedView buckets the results the way the reporting spreadsheet wants them
type groupedView struct {
	NoProducts              []domain.VendorCount `json:"no_products"`
	NoCollectionButProducts []domain.VendorCount `json:"no_collection_but_products"`
	CollectionMatched       []domain.VendorCount `json:"collection_matched"`
}

func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	table := defaultTable
	if len(os.Args) > 1 {
		table = os.Args[1]
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}

	vendors, err := postgres.NewVendorRepository(db, logger).ListDistinctVendors(ctx, table)
	db.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list vendors from %s: %v\n", table, err)
		os.Exit(1)
	}

	fmt.Printf("=== All Vendors -> Shopify Collection/Product Counts ===\n")
	fmt.Printf("Found %d unique vendors in %s\n\n", len(vendors), table)

	client := shopify.NewClient(cfg.Shopify, logger)

	var results []domain.VendorCount
	for i, vendor := range vendors {
		if ctx.Err() != nil {
			fmt.Println("Interrupted, partial results kept.")
			break
		}

		vendor = strings.TrimSpace(vendor)
		if vendor == "" {
			continue
		}
		fmt.Printf("[%d/%d] %s\n", i+1, len(vendors), vendor)

		// Vendor-level count first; zero means we skip the expensive
		// collection match (could also mean the count call failed)
		vendorCount := client.CountProductsByVendor(ctx, vendor)

		entry := domain.VendorCount{Vendor: vendor}
		if vendorCount == 0 {
			fmt.Println("  Products found: 0 (skip collection match)")
		} else {
			col, err := client.FindCollectionByTitleExact(ctx, vendor)
			if err != nil {
				fmt.Printf("  Error finding collection: %v. Fallback to product.vendor\n", err)
				col = nil
			}
			if col != nil {
				fmt.Printf("  Collection matched: %s\n", col.Title)
				entry.CollectionMatched = true
				entry.CollectionTitle = col.Title
				entry.ProductsFound = client.CountProductsInCollection(ctx, col.ID)
			} else {
				fmt.Println("  Collection not found. Fallback: product.vendor")
				entry.ProductsFound = vendorCount
			}
			fmt.Printf("  Products found: %d\n", entry.ProductsFound)
		}
		entry.WillWrite = entry.ProductsFound

		results = append(results, entry)

		// Rewrite the progress file after each vendor
		if err := writeJSON(resultsFile, results); err != nil {
			fmt.Printf("  Warning: failed to write progress file: %v\n", err)
		}

		if cfg.Run.SleepBetweenCalls > 0 {
			pause(ctx, cfg.Run.SleepBetweenCalls)
		}
	}

	if err := writeJSON(resultsFile, results); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", resultsFile, err)
		os.Exit(1)
	}

	view := buildGroupedView(results)
	if err := writeJSON(viewFile, view); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", viewFile, err)
		os.Exit(1)
	}
	if err := writeCSV(csvFile, results); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", csvFile, err)
		os.Exit(1)
	}

	fmt.Printf("\nWrote %s\n", resultsFile)
	fmt.Printf("Wrote %s\n", viewFile)
	fmt.Printf("Wrote %s\n", csvFile)
	fmt.Printf("Total vendors processed: %d\n", len(results))
}

func buildGroupedView(results []domain.VendorCount) groupedView {
	var view groupedView
	for _, e := range results {
		switch {
		case e.ProductsFound == 0:
			view.NoProducts = append(view.NoProducts, e)
		case !e.CollectionMatched:
			view.NoCollectionButProducts = append(view.NoCollectionButProducts, e)
		default:
			view.CollectionMatched = append(view.CollectionMatched, e)
		}
	}
	byVendor := func(list []domain.VendorCount) {
		sort.Slice(list, func(i, j int) bool {
			return strings.ToLower(list[i].Vendor) < strings.ToLower(list[j].Vendor)
		})
	}
	byVendor(view.NoProducts)
	byVendor(view.NoCollectionButProducts)
	byVendor(view.CollectionMatched)
	return view
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func writeCSV(path string, results []domain.VendorCount) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"vendor", "collection_matched", "collection_title", "products_found", "will_write", "will_delete"}); err != nil {
		return err
	}
	for _, e := range results {
		record := []string{
			e.Vendor,
			strconv.FormatBool(e.CollectionMatched),
			e.CollectionTitle,
			strconv.Itoa(e.ProductsFound),
			strconv.Itoa(e.WillWrite),
			strconv.Itoa(e.WillDelete),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func pause(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
