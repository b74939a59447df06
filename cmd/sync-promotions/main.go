package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/unionretail/promosync/internal/config"
	"github.com/unionretail/promosync/internal/domain"
	"github.com/unionretail/promosync/internal/promo"
	"github.com/unionretail/promosync/internal/repository/postgres"
	"github.com/unionretail/promosync/internal/service"
	"github.com/unionretail/promosync/internal/shopify"
)

const summaryFile = "vendor_product_counts.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	var logger *zap.Logger
	if cfg.Environment == "production" {
		logger, _ = zap.NewProduction()
	} else {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	offsets := promo.Offsets{
		SalePreDays: cfg.Promo.SalePreDays,
		PIPreDays:   cfg.Promo.PIPreDays,
		PIPostDays:  cfg.Promo.PIPostDays,
	}

	fmt.Println("=== Retail Promotions -> Shopify Metafields ===")
	fmt.Printf("Today: %s\n", time.Now().Format("2006-01-02"))
	fmt.Printf("SALE_PRE_DAYS (X) = %d\n", offsets.SalePreDays)
	fmt.Printf("PI_PRE_DAYS   (Y) = %d\n", offsets.PIPreDays)
	fmt.Printf("PI_POST_DAYS  (Z) = %d\n", offsets.PIPostDays)
	fmt.Printf("DRY_RUN = %v\n", cfg.Run.DryRun)
	fmt.Printf("DB_ONLY = %v\n", cfg.Run.DBOnly)
	fmt.Println("")

	// Interrupts cancel the context; the reconciler flushes partial results
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	rows, err := postgres.NewPromotionRepository(db, logger).FetchActiveToday(ctx, offsets)
	db.Close()
	if err != nil {
		logger.Fatal("Failed to fetch promotions", zap.Error(err))
	}

	if len(rows) == 0 {
		fmt.Println("No active retail promotions today. Nothing to write.")
		return
	}

	plans := promo.AggregateByVendor(rows, offsets)
	fmt.Printf("Vendors to process: %d\n\n", len(plans))

	if cfg.Run.DBOnly {
		fmt.Println("DB_ONLY=1 so Shopify steps are skipped.")
		for _, plan := range plans {
			printPlan(plan)
		}
		return
	}

	client := shopify.NewClient(cfg.Shopify, logger)
	reconciler := service.NewReconciler(client, cfg.Run, logger)

	summary := service.NewRunSummary(cfg.Run.DryRun)
	reconciler.OnVendorDone = func(v domain.VendorSummary) {
		summary.Append(v)
		if err := summary.WriteFile(summaryFile); err != nil {
			logger.Warn("Failed to write progress file", zap.Error(err))
		}
	}

	result, err := reconciler.Reconcile(ctx, plans)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Reconciliation failed", zap.Error(err))
	}

	fmt.Println("=== Done ===")
	if result.Interrupted {
		fmt.Printf("Interrupted: partial results for %d vendor(s) flushed to %s\n", len(result.Vendors), summaryFile)
	}
	if cfg.Run.DryRun {
		fmt.Println("Dry run mode. No changes written.")
		fmt.Printf("Wrote %s\n", summaryFile)
	} else {
		fmt.Printf("Total products updated: %d\n", result.ProductsUpdated)
		fmt.Printf("Total metafields deleted: %d\n", result.MetafieldsDeleted)
		if result.ProductFailures > 0 {
			fmt.Printf("Per-product failures (skipped): %d\n", result.ProductFailures)
		}
	}

	if result.Interrupted {
		os.Exit(130)
	}
}

func printPlan(plan *domain.VendorPlan) {
	fmt.Printf("%s | Sale display: %s -> %s real: %s -> %s | PI display: %s -> %s real: %s -> %s\n",
		plan.Vendor,
		fmtDate(plan.SaleDisplayStart), fmtDate(plan.SaleDisplayEnd),
		fmtDate(plan.SaleRealStart), fmtDate(plan.SaleRealEnd),
		fmtDate(plan.PIDisplayStart), fmtDate(plan.PIDisplayEnd),
		fmtDate(plan.PIRealStart), fmtDate(plan.PIRealEnd),
	)
}

func fmtDate(d *time.Time) string {
	if d == nil {
		return "none"
	}
	return d.Format("2006-01-02")
}
