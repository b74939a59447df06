package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/unionretail/promosync/internal/config"
	"github.com/unionretail/promosync/internal/shopify"
)

// Exports every collection of the store with an approximate product count and
// the distinct vendors inside it. Enrichment is the slow part; an interrupt
// flushes whatever has been collected so far.

const (
	jsonFile = "shopify_collections_export.json"
	csvFile  = "shopify_collections_export.csv"
)

type collectionRow struct {
	CollectionGID string   `json:"collection_gid"`
	CollectionID  string   `json:"collection_id"`
	Title         string   `json:"title"`
	Handle        string   `json:"handle"`
	UpdatedAt     string   `json:"updated_at"`
	ProductCount  int      `json:"product_count"`
	Vendors       []string `json:"vendors"`
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := shopify.NewClient(cfg.Shopify, logger)

	fmt.Println("Fetching all collections from Shopify...")
	collections, err := client.ListCollections(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list collections: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Found %d collection(s)\n\n", len(collections))

	rows := make([]collectionRow, 0, len(collections))
	for _, c := range collections {
		rows = append(rows, collectionRow{
			CollectionGID: c.ID,
			CollectionID:  shopify.NumericID(c.ID),
			Title:         c.Title,
			Handle:        c.Handle,
			UpdatedAt:     c.UpdatedAt,
		})
	}

	fmt.Println("Enriching collections with product counts and vendors...")
	start := time.Now()
	enriched := 0
	for i := range rows {
		if ctx.Err() != nil {
			fmt.Printf("\nInterrupted after %d/%d collections, flushing partial export.\n", enriched, len(rows))
			break
		}

		rows[i].ProductCount = client.CountProductsInCollection(ctx, rows[i].CollectionGID)
		vendors, err := client.ListVendorsInCollection(ctx, rows[i].CollectionGID)
		if err != nil {
			fmt.Printf("  ! Vendor listing failed for %q: %v\n", rows[i].Title, err)
		}
		rows[i].Vendors = vendors
		enriched++

		if enriched%10 == 0 || enriched == len(rows) {
			elapsed := time.Since(start)
			avg := elapsed / time.Duration(enriched)
			remaining := time.Duration(len(rows)-enriched) * avg
			fmt.Printf("  [%d/%d - %d%%] ETA: %s - Last: %.50s\n",
				enriched, len(rows), enriched*100/len(rows), remaining.Round(time.Second), rows[i].Title)
		}

		if cfg.Run.SleepBetweenCalls > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(cfg.Run.SleepBetweenCalls):
			}
		}
	}

	if err := writeJSON(jsonFile, rows[:enrichedOrAll(enriched, rows)]); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", jsonFile, err)
		os.Exit(1)
	}
	if err := writeCSV(csvFile, rows[:enrichedOrAll(enriched, rows)]); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", csvFile, err)
		os.Exit(1)
	}

	fmt.Printf("\nWrote %s\n", jsonFile)
	fmt.Printf("Wrote %s\n", csvFile)
}

func enrichedOrAll(enriched int, rows []collectionRow) int {
	if enriched < len(rows) {
		return enriched
	}
	return len(rows)
}

func writeJSON(path string, rows []collectionRow) error {
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func writeCSV(path string, rows []collectionRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"collection_gid", "collection_id", "title", "handle", "updated_at", "product_count", "vendors"}); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.CollectionGID,
			r.CollectionID,
			r.Title,
			r.Handle,
			r.UpdatedAt,
			fmt.Sprintf("%d", r.ProductCount),
			strings.Join(r.Vendors, "; "),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
