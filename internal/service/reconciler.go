package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/unionretail/promosync/internal/config"
	"github.com/unionretail/promosync/internal/domain"
	"github.com/unionretail/promosync/internal/shopify"
)

// StorefrontAPI is the slice of the Shopify client the reconciler needs.
// Count primitives are best-effort and report failures as zero.
type StorefrontAPI interface {
	CountProductsInCollection(ctx context.Context, collectionID string) int
	CountProductsByVendor(ctx context.Context, vendor string) int
	ListProductIDsInCollection(ctx context.Context, collectionID string) ([]string, error)
	ListProductIDsByVendor(ctx context.Context, vendor string) ([]string, error)
	MetafieldsSet(ctx context.Context, metafields []shopify.MetafieldsSetInput) error
	GetMetafieldIDs(ctx context.Context, productID, namespace string, keys []string) (map[string]string, error)
	MetafieldDelete(ctx context.Context, metafieldID string) error
}

// Result aggregates the outcome of one reconciliation run
type Result struct {
	Vendors           []domain.VendorSummary
	ProductsUpdated   int
	MetafieldsDeleted int
	ProductFailures   int
	Interrupted       bool
}

// Reconciler turns vendor plans into metafield writes and deletes. Execution
// is strictly sequential; the only pacing is a fixed inter-call sleep for
// rate-limit courtesy. Desired state is re-derived from the database every
// run and the storefront converges eventually, so a partial run self-heals on
// the next one.
type Reconciler struct {
	api    StorefrontAPI
	run    config.RunConfig
	logger *zap.Logger

	// OnVendorDone, when set, is invoked after each vendor so callers can
	// flush a usable partial summary on forced termination
	OnVendorDone func(domain.VendorSummary)

	now   func() time.Time
	sleep func(time.Duration)

	// per-run scope cache, write-once per key within a single run
	countCache map[string]int
	idCache    map[string][]string
}

func NewReconciler(api StorefrontAPI, run config.RunConfig, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		api:        api,
		run:        run,
		logger:     logger,
		now:        time.Now,
		sleep:      time.Sleep,
		countCache: make(map[string]int),
		idCache:    make(map[string][]string),
	}
}

// windowActive reports whether today falls inside a display window. A
// category with no contributing rows has nil bounds and is never active.
func windowActive(start, end *time.Time, today time.Time) bool {
	return start != nil && end != nil && !today.Before(*start) && !today.After(*end)
}

// BuildSetPayload builds the metafields to write for one product. Values are
// always the real dates, never the display window. Sale requires both real
// bounds; Price Increase requires only a start and sets an end only when the
// source supplied one.
func BuildSetPayload(plan *domain.VendorPlan, saleExists, piExists bool, productID string) []shopify.MetafieldsSetInput {
	var toSet []shopify.MetafieldsSetInput
	if saleExists && plan.SaleRealStart != nil && plan.SaleRealEnd != nil {
		toSet = append(toSet,
			shopify.NewDateMetafield(productID, domain.MetafieldNamespace, domain.KeySaleStart, *plan.SaleRealStart),
			shopify.NewDateMetafield(productID, domain.MetafieldNamespace, domain.KeySaleEnd, *plan.SaleRealEnd),
		)
	}
	if piExists && plan.PIRealStart != nil {
		toSet = append(toSet, shopify.NewDateMetafield(productID, domain.MetafieldNamespace, domain.KeyPIStart, *plan.PIRealStart))
		if plan.PIRealEnd != nil {
			toSet = append(toSet, shopify.NewDateMetafield(productID, domain.MetafieldNamespace, domain.KeyPIEnd, *plan.PIRealEnd))
		}
	}
	return toSet
}

// Reconcile processes every vendor plan in order. On context cancellation the
// partial result collected so far is returned together with the context
// error; no in-flight remote call is aborted mid-request.
func (r *Reconciler) Reconcile(ctx context.Context, plans []*domain.VendorPlan) (*Result, error) {
	today := dateOnly(r.now())
	result := &Result{}

	for _, plan := range plans {
		if err := ctx.Err(); err != nil {
			result.Interrupted = true
			return result, err
		}

		summary, err := r.reconcileVendor(ctx, plan, today, result)
		if summary != nil {
			result.Vendors = append(result.Vendors, *summary)
			if r.OnVendorDone != nil {
				r.OnVendorDone(*summary)
			}
		}
		if err != nil {
			result.Interrupted = true
			return result, err
		}
	}

	return result, nil
}

func (r *Reconciler) reconcileVendor(ctx context.Context, plan *domain.VendorPlan, today time.Time, result *Result) (*domain.VendorSummary, error) {
	saleExists := windowActive(plan.SaleDisplayStart, plan.SaleDisplayEnd, today)
	piExists := windowActive(plan.PIDisplayStart, plan.PIDisplayEnd, today)

	// Product targeting priority: collection ids from the DB win, otherwise
	// fall back to all products carrying the vendor name
	source := domain.ScopeSourceVendorFallback
	if len(plan.CollectionIDs) > 0 {
		source = domain.ScopeSourceCollection
	}

	r.logger.Info("Reconciling vendor",
		zap.String("vendor", plan.Vendor),
		zap.String("scope_source", string(source)),
		zap.Bool("sale_should_exist", saleExists),
		zap.Bool("pi_should_exist", piExists),
	)

	summary := &domain.VendorSummary{
		Vendor:           plan.Vendor,
		ScopeSource:      source,
		UsedCollectionID: source == domain.ScopeSourceCollection,
		CollectionIDs:    plan.CollectionIDs,
	}

	if r.run.DryRun {
		count := r.resolveCount(ctx, plan, source)
		summary.ProductsFound = count

		// Estimate only: assumes uniformly that every product in scope
		// carries (or lacks) the relevant metafields, which is not verified
		if payloadWillExist(plan, saleExists, piExists) {
			summary.WillWrite = count
		}
		if !saleExists || !piExists {
			summary.WillDelete = count
		}
		return summary, nil
	}

	ids, err := r.resolveIDs(ctx, plan, source)
	if err != nil {
		// Scope resolution failure skips the vendor but not the run
		r.logger.Error("Failed to resolve product scope", zap.String("vendor", plan.Vendor), zap.Error(err))
		return summary, nil
	}
	summary.ProductsFound = len(ids)

	var keysToDelete []string
	if !saleExists {
		keysToDelete = append(keysToDelete, domain.SaleKeys()...)
	}
	if !piExists {
		keysToDelete = append(keysToDelete, domain.PriceIncreaseKeys()...)
	}

	for _, pid := range ids {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		toSet := BuildSetPayload(plan, saleExists, piExists, pid)
		if len(toSet) > 0 {
			if err := r.api.MetafieldsSet(ctx, toSet); err != nil {
				r.logger.Warn("Failed to set metafields", zap.String("product_id", pid), zap.Error(err))
				summary.Failed++
				result.ProductFailures++
			} else {
				summary.Written++
				result.ProductsUpdated++
			}
		}

		if len(keysToDelete) > 0 {
			existing, err := r.api.GetMetafieldIDs(ctx, pid, domain.MetafieldNamespace, keysToDelete)
			if err != nil {
				r.logger.Warn("Failed to fetch metafields", zap.String("product_id", pid), zap.Error(err))
				summary.Failed++
				result.ProductFailures++
			} else {
				for key, mid := range existing {
					if mid == "" {
						continue
					}
					if err := r.api.MetafieldDelete(ctx, mid); err != nil {
						r.logger.Warn("Failed to delete metafield",
							zap.String("product_id", pid),
							zap.String("key", key),
							zap.Error(err),
						)
						summary.Failed++
						result.ProductFailures++
					} else {
						summary.Deleted++
						result.MetafieldsDeleted++
					}
				}
			}
		}

		if r.run.SleepBetweenCalls > 0 {
			r.sleep(r.run.SleepBetweenCalls)
		}
	}

	return summary, nil
}

// payloadWillExist reports whether any product in scope would receive a
// non-empty write (sale fully dated, or price increase with at least a start)
func payloadWillExist(plan *domain.VendorPlan, saleExists, piExists bool) bool {
	if saleExists && plan.SaleRealStart != nil && plan.SaleRealEnd != nil {
		return true
	}
	return piExists && plan.PIRealStart != nil
}

func (r *Reconciler) scopeKey(plan *domain.VendorPlan, source domain.ScopeSource) string {
	return plan.Vendor + "::" + string(source) + "::" + strings.Join(plan.CollectionIDs, ",")
}

// resolveCount returns the approximate scope size without enumerating
// products, cached per vendor+scope key for the run
func (r *Reconciler) resolveCount(ctx context.Context, plan *domain.VendorPlan, source domain.ScopeSource) int {
	key := r.scopeKey(plan, source)
	if count, ok := r.countCache[key]; ok {
		return count
	}

	var count int
	if source == domain.ScopeSourceCollection {
		for _, cid := range plan.CollectionIDs {
			count += r.api.CountProductsInCollection(ctx, cid)
		}
	} else {
		count = r.api.CountProductsByVendor(ctx, plan.Vendor)
	}

	r.countCache[key] = count
	return count
}

// resolveIDs enumerates the exact product scope, deduplicated across
// collections with first-seen order preserved, cached per vendor+scope key
func (r *Reconciler) resolveIDs(ctx context.Context, plan *domain.VendorPlan, source domain.ScopeSource) ([]string, error) {
	key := r.scopeKey(plan, source)
	if ids, ok := r.idCache[key]; ok {
		return ids, nil
	}

	var ids []string
	if source == domain.ScopeSourceCollection {
		seen := make(map[string]bool)
		for _, cid := range plan.CollectionIDs {
			collectionIDs, err := r.api.ListProductIDsInCollection(ctx, cid)
			if err != nil {
				return nil, err
			}
			for _, pid := range collectionIDs {
				if !seen[pid] {
					seen[pid] = true
					ids = append(ids, pid)
				}
			}
		}
	} else {
		var err error
		ids, err = r.api.ListProductIDsByVendor(ctx, plan.Vendor)
		if err != nil {
			return nil, err
		}
	}

	r.idCache[key] = ids
	return ids, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
