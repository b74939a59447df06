package promo

import (
	"time"

	"github.com/unionretail/promosync/internal/domain"
)

// AggregateByVendor folds promotion rows into one plan per vendor. Vendors
// are identified case-insensitively but keep their first-seen casing, and the
// returned slice preserves first-seen vendor order. Per category the display
// and real bounds widen monotonically: starts take the minimum, ends the
// maximum among rows that actually carry a value. A Price Increase real end
// is only ever taken from a row's own end date, never synthesized, so Liquid
// can render "starts on" for open-ended increases.
func AggregateByVendor(rows []domain.PromotionRow, off Offsets) []*domain.VendorPlan {
	byVendor := make(map[string]*domain.VendorPlan)
	var order []string

	for _, r := range rows {
		key := Normalize(r.Vendor)
		plan, ok := byVendor[key]
		if !ok {
			plan = &domain.VendorPlan{Vendor: r.Vendor}
			byVendor[key] = plan
			order = append(order, key)
		}

		if r.CollectionID != "" && !containsString(plan.CollectionIDs, r.CollectionID) {
			plan.CollectionIDs = append(plan.CollectionIDs, r.CollectionID)
		}

		cat, ok := Category(r.EntryType)
		if !ok {
			continue
		}

		displayStart, displayEnd := ComputeDisplayWindow(r, off)

		switch cat {
		case domain.CategorySale:
			plan.SaleDisplayStart = minDate(plan.SaleDisplayStart, displayStart)
			plan.SaleDisplayEnd = maxDate(plan.SaleDisplayEnd, displayEnd)

			plan.SaleRealStart = minDate(plan.SaleRealStart, r.StartDate)
			realEnd := r.StartDate
			if r.EndDate != nil {
				realEnd = *r.EndDate
			}
			plan.SaleRealEnd = maxDate(plan.SaleRealEnd, realEnd)

		case domain.CategoryPriceIncrease:
			plan.PIDisplayStart = minDate(plan.PIDisplayStart, displayStart)
			plan.PIDisplayEnd = maxDate(plan.PIDisplayEnd, displayEnd)

			plan.PIRealStart = minDate(plan.PIRealStart, r.StartDate)
			if r.EndDate != nil {
				plan.PIRealEnd = maxDate(plan.PIRealEnd, *r.EndDate)
			}
		}
	}

	plans := make([]*domain.VendorPlan, 0, len(order))
	for _, key := range order {
		plans = append(plans, byVendor[key])
	}
	return plans
}

func minDate(current *time.Time, candidate time.Time) *time.Time {
	if current == nil || candidate.Before(*current) {
		return &candidate
	}
	return current
}

func maxDate(current *time.Time, candidate time.Time) *time.Time {
	if current == nil || candidate.After(*current) {
		return &candidate
	}
	return current
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
