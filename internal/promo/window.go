package promo

import (
	"strings"
	"time"

	"github.com/unionretail/promosync/internal/domain"
)

// Offsets are the three configured display-window offsets (X/Y/Z)
type Offsets struct {
	SalePreDays int // X
	PIPreDays   int // Y
	PIPostDays  int // Z
}

// Normalize lowercases, trims, and collapses inner whitespace so entry types
// and vendor names compare reliably regardless of how they were keyed in.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Category maps a raw entry type to a category; ok is false for unknown types
func Category(entryType string) (domain.Category, bool) {
	switch Normalize(entryType) {
	case "sale":
		return domain.CategorySale, true
	case "price increase":
		return domain.CategoryPriceIncrease, true
	}
	return "", false
}

// ComputeDisplayWindow returns the window during which a promotion row's
// banner should be visible:
//
//	Sale:           start-X .. end (or start when end is missing)
//	Price Increase: start-Y .. end (or start+Z when end is missing)
//
// Unknown entry types collapse to a zero-width window at start; that is a
// defensive default, the source is not expected to contain other types.
// The real dates published to the storefront are never modified by this.
func ComputeDisplayWindow(row domain.PromotionRow, off Offsets) (time.Time, time.Time) {
	cat, ok := Category(row.EntryType)
	if !ok {
		return row.StartDate, row.StartDate
	}

	switch cat {
	case domain.CategorySale:
		end := row.StartDate
		if row.EndDate != nil {
			end = *row.EndDate
		}
		return row.StartDate.AddDate(0, 0, -off.SalePreDays), end
	default: // price increase
		end := row.StartDate.AddDate(0, 0, off.PIPostDays)
		if row.EndDate != nil {
			end = *row.EndDate
		}
		return row.StartDate.AddDate(0, 0, -off.PIPreDays), end
	}
}

// DateOnly truncates a timestamp to its calendar date in UTC
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
