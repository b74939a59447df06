package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unionretail/promosync/internal/config"
	"github.com/unionretail/promosync/internal/domain"
	"github.com/unionretail/promosync/internal/shopify"
)

// fakeStorefront is an in-memory StorefrontAPI with a mutable metafield store
type fakeStorefront struct {
	countsByCollection map[string]int
	countsByVendor     map[string]int
	idsByCollection    map[string][]string
	idsByVendor        map[string][]string

	// productID -> key -> metafield id
	metafields map[string]map[string]string

	setCalls    [][]shopify.MetafieldsSetInput
	deletedIDs  []string
	countCalls  int
	listCalls   int
	setErrByPID map[string]error
}

func newFakeStorefront() *fakeStorefront {
	return &fakeStorefront{
		countsByCollection: map[string]int{},
		countsByVendor:     map[string]int{},
		idsByCollection:    map[string][]string{},
		idsByVendor:        map[string][]string{},
		metafields:         map[string]map[string]string{},
		setErrByPID:        map[string]error{},
	}
}

func (f *fakeStorefront) CountProductsInCollection(_ context.Context, collectionID string) int {
	f.countCalls++
	return f.countsByCollection[collectionID]
}

func (f *fakeStorefront) CountProductsByVendor(_ context.Context, vendor string) int {
	f.countCalls++
	return f.countsByVendor[vendor]
}

func (f *fakeStorefront) ListProductIDsInCollection(_ context.Context, collectionID string) ([]string, error) {
	f.listCalls++
	return f.idsByCollection[collectionID], nil
}

func (f *fakeStorefront) ListProductIDsByVendor(_ context.Context, vendor string) ([]string, error) {
	f.listCalls++
	return f.idsByVendor[vendor], nil
}

func (f *fakeStorefront) MetafieldsSet(_ context.Context, metafields []shopify.MetafieldsSetInput) error {
	if len(metafields) > 0 {
		if err := f.setErrByPID[metafields[0].OwnerID]; err != nil {
			return err
		}
	}
	f.setCalls = append(f.setCalls, metafields)
	for _, mf := range metafields {
		if f.metafields[mf.OwnerID] == nil {
			f.metafields[mf.OwnerID] = map[string]string{}
		}
		f.metafields[mf.OwnerID][mf.Key] = "gid://shopify/Metafield/" + mf.OwnerID + "-" + mf.Key
	}
	return nil
}

func (f *fakeStorefront) GetMetafieldIDs(_ context.Context, productID, _ string, keys []string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		out[k] = f.metafields[productID][k]
	}
	return out, nil
}

func (f *fakeStorefront) MetafieldDelete(_ context.Context, metafieldID string) error {
	f.deletedIDs = append(f.deletedIDs, metafieldID)
	for _, byKey := range f.metafields {
		for k, id := range byKey {
			if id == metafieldID {
				delete(byKey, k)
			}
		}
	}
	return nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func newTestReconciler(api StorefrontAPI, run config.RunConfig, today time.Time) *Reconciler {
	r := NewReconciler(api, run, zap.NewNop())
	r.now = func() time.Time { return today }
	r.sleep = func(time.Duration) {}
	return r
}

// salePlan has a sale active around 2024-06-06 (display 2024-06-05..20)
func salePlan() *domain.VendorPlan {
	return &domain.VendorPlan{
		Vendor:           "Acme",
		CollectionIDs:    []string{"111"},
		SaleDisplayStart: datePtr(2024, time.June, 5),
		SaleDisplayEnd:   datePtr(2024, time.June, 20),
		SaleRealStart:    datePtr(2024, time.June, 10),
		SaleRealEnd:      datePtr(2024, time.June, 20),
	}
}

func TestReconcile_DryRunEstimates(t *testing.T) {
	api := newFakeStorefront()
	api.countsByCollection["111"] = 7

	r := newTestReconciler(api, config.RunConfig{DryRun: true}, date(2024, time.June, 6))
	result, err := r.Reconcile(context.Background(), []*domain.VendorPlan{salePlan()})

	require.NoError(t, err)
	require.Len(t, result.Vendors, 1)
	v := result.Vendors[0]

	assert.Equal(t, domain.ScopeSourceCollection, v.ScopeSource)
	assert.True(t, v.UsedCollectionID)
	assert.Equal(t, 7, v.ProductsFound)
	assert.Equal(t, 7, v.WillWrite, "sale payload would exist on every product in scope")
	assert.Equal(t, 7, v.WillDelete, "pi should not exist, so its keys are delete targets")
	assert.Equal(t, 0, api.listCalls, "dry-run never enumerates products")
}

func TestReconcile_DryRunCachesCounts(t *testing.T) {
	api := newFakeStorefront()
	api.countsByCollection["111"] = 3

	plans := []*domain.VendorPlan{salePlan(), salePlan()}
	r := newTestReconciler(api, config.RunConfig{DryRun: true}, date(2024, time.June, 6))
	_, err := r.Reconcile(context.Background(), plans)

	require.NoError(t, err)
	assert.Equal(t, 1, api.countCalls, "same vendor+scope key must hit the cache")
}

func TestReconcile_ExecuteWritesRealDates(t *testing.T) {
	api := newFakeStorefront()
	api.idsByCollection["111"] = []string{"gid://shopify/Product/1", "gid://shopify/Product/2"}

	r := newTestReconciler(api, config.RunConfig{}, date(2024, time.June, 6))
	result, err := r.Reconcile(context.Background(), []*domain.VendorPlan{salePlan()})

	require.NoError(t, err)
	assert.Equal(t, 2, result.ProductsUpdated)
	require.Len(t, api.setCalls, 2)

	payload := api.setCalls[0]
	require.Len(t, payload, 2)
	assert.Equal(t, domain.KeySaleStart, payload[0].Key)
	assert.Equal(t, "2024-06-10", payload[0].Value, "published start is the real date, not the display date")
	assert.Equal(t, domain.KeySaleEnd, payload[1].Key)
	assert.Equal(t, "2024-06-20", payload[1].Value)
}

func TestReconcile_OpenEndedPriceIncreaseOmitsEndKey(t *testing.T) {
	api := newFakeStorefront()
	api.idsByVendor["Acme"] = []string{"gid://shopify/Product/1"}

	// Scenario: PI start 2024-06-10, no end, Y=15/Z=5, today 2024-06-12
	plan := &domain.VendorPlan{
		Vendor:         "Acme",
		PIDisplayStart: datePtr(2024, time.May, 26),
		PIDisplayEnd:   datePtr(2024, time.June, 15),
		PIRealStart:    datePtr(2024, time.June, 10),
	}

	r := newTestReconciler(api, config.RunConfig{}, date(2024, time.June, 12))
	result, err := r.Reconcile(context.Background(), []*domain.VendorPlan{plan})

	require.NoError(t, err)
	require.Len(t, result.Vendors, 1)
	assert.Equal(t, domain.ScopeSourceVendorFallback, result.Vendors[0].ScopeSource)

	require.Len(t, api.setCalls, 1)
	payload := api.setCalls[0]
	require.Len(t, payload, 1)
	assert.Equal(t, domain.KeyPIStart, payload[0].Key)
	assert.Equal(t, "2024-06-10", payload[0].Value)
}

func TestReconcile_LapsedSaleDeletesOnlyExistingSaleKeys(t *testing.T) {
	api := newFakeStorefront()
	api.idsByCollection["111"] = []string{"gid://shopify/Product/1"}
	api.metafields["gid://shopify/Product/1"] = map[string]string{
		domain.KeySaleStart: "gid://shopify/Metafield/sale-start",
		domain.KeySaleEnd:   "gid://shopify/Metafield/sale-end",
	}

	// today is the day after the sale display window ends
	plan := salePlan()
	r := newTestReconciler(api, config.RunConfig{}, date(2024, time.June, 21))
	result, err := r.Reconcile(context.Background(), []*domain.VendorPlan{plan})

	require.NoError(t, err)
	assert.Empty(t, api.setCalls, "no payload when nothing should exist")
	assert.ElementsMatch(t,
		[]string{"gid://shopify/Metafield/sale-start", "gid://shopify/Metafield/sale-end"},
		api.deletedIDs,
		"only metafields that actually exist are deleted")
	assert.Equal(t, 2, result.MetafieldsDeleted)
}

func TestReconcile_SecondRunIsIdempotent(t *testing.T) {
	api := newFakeStorefront()
	api.idsByCollection["111"] = []string{"gid://shopify/Product/1"}
	api.metafields["gid://shopify/Product/1"] = map[string]string{
		domain.KeySaleStart: "gid://shopify/Metafield/s1",
		domain.KeySaleEnd:   "gid://shopify/Metafield/s2",
	}

	run := func() *Result {
		r := newTestReconciler(api, config.RunConfig{}, date(2024, time.June, 21))
		result, err := r.Reconcile(context.Background(), []*domain.VendorPlan{salePlan()})
		require.NoError(t, err)
		return result
	}

	first := run()
	assert.Equal(t, 2, first.MetafieldsDeleted)

	second := run()
	assert.Equal(t, 0, second.MetafieldsDeleted, "nothing left to delete on the second run")
	assert.Equal(t, 0, second.ProductsUpdated)
}

func TestReconcile_PerProductFailuresDoNotAbortRun(t *testing.T) {
	api := newFakeStorefront()
	api.idsByCollection["111"] = []string{"gid://shopify/Product/1", "gid://shopify/Product/2"}
	api.setErrByPID["gid://shopify/Product/1"] = errors.New("metafieldsSet userErrors: value is invalid")

	r := newTestReconciler(api, config.RunConfig{}, date(2024, time.June, 6))
	result, err := r.Reconcile(context.Background(), []*domain.VendorPlan{salePlan()})

	require.NoError(t, err)
	assert.Equal(t, 1, result.ProductsUpdated, "second product still processed")
	assert.Equal(t, 1, result.ProductFailures)
	require.Len(t, result.Vendors, 1)
	assert.Equal(t, 1, result.Vendors[0].Failed)
}

func TestReconcile_MultipleCollectionsDeduplicated(t *testing.T) {
	api := newFakeStorefront()
	api.idsByCollection["111"] = []string{"gid://shopify/Product/1", "gid://shopify/Product/2"}
	api.idsByCollection["222"] = []string{"gid://shopify/Product/2", "gid://shopify/Product/3"}

	plan := salePlan()
	plan.CollectionIDs = []string{"111", "222"}

	r := newTestReconciler(api, config.RunConfig{}, date(2024, time.June, 6))
	result, err := r.Reconcile(context.Background(), []*domain.VendorPlan{plan})

	require.NoError(t, err)
	require.Len(t, result.Vendors, 1)
	assert.Equal(t, 3, result.Vendors[0].ProductsFound)
	assert.Equal(t, 3, result.ProductsUpdated)
}

func TestReconcile_CancellationFlushesPartialResult(t *testing.T) {
	api := newFakeStorefront()
	api.countsByCollection["111"] = 1

	ctx, cancel := context.WithCancel(context.Background())

	planA := salePlan()
	planB := salePlan()
	planB.Vendor = "Other"
	planB.CollectionIDs = []string{"222"}

	var flushed []domain.VendorSummary
	r := newTestReconciler(api, config.RunConfig{DryRun: true}, date(2024, time.June, 6))
	r.OnVendorDone = func(v domain.VendorSummary) {
		flushed = append(flushed, v)
		cancel() // interrupt arrives after the first vendor
	}

	result, err := r.Reconcile(ctx, []*domain.VendorPlan{planA, planB})

	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, result.Interrupted)
	require.Len(t, result.Vendors, 1)
	require.Len(t, flushed, 1)
	assert.Equal(t, "Acme", flushed[0].Vendor)
}

func TestWindowActive_Boundaries(t *testing.T) {
	start := datePtr(2024, time.June, 5)
	end := datePtr(2024, time.June, 20)

	assert.True(t, windowActive(start, end, date(2024, time.June, 5)))
	assert.True(t, windowActive(start, end, date(2024, time.June, 20)))
	assert.False(t, windowActive(start, end, date(2024, time.June, 4)))
	assert.False(t, windowActive(start, end, date(2024, time.June, 21)))
	assert.False(t, windowActive(nil, end, date(2024, time.June, 10)), "missing bound is never active")
	assert.False(t, windowActive(start, nil, date(2024, time.June, 10)))
}

func TestBuildSetPayload_SaleRequiresBothRealBounds(t *testing.T) {
	plan := &domain.VendorPlan{
		Vendor:        "Acme",
		SaleRealStart: datePtr(2024, time.June, 10),
	}
	assert.Empty(t, BuildSetPayload(plan, true, false, "gid://shopify/Product/1"))
}
