package domain

import "time"

// PromotionRow is one promotion fact from the retail database. Rows missing
// vendor, entry type, or start date are discarded by the reader and never
// reach this type.
type PromotionRow struct {
	ID           int
	Vendor       string
	CollectionID string // empty when the row carries no collection scope
	EntryType    string // "Sale" / "Price Increase" as stored, compared normalized
	StartDate    time.Time
	EndDate      *time.Time
}

// VendorPlan aggregates every promotion row of one vendor into per-category
// windows. Display windows decide whether the banner should exist today;
// real windows are the only dates ever published to the storefront.
type VendorPlan struct {
	Vendor        string   // original casing, identity is case-insensitive
	CollectionIDs []string // distinct, first-seen order

	// Display windows (never written to the storefront)
	SaleDisplayStart *time.Time
	SaleDisplayEnd   *time.Time
	PIDisplayStart   *time.Time
	PIDisplayEnd     *time.Time

	// Real dates (written to the storefront)
	SaleRealStart *time.Time
	SaleRealEnd   *time.Time
	PIRealStart   *time.Time
	PIRealEnd     *time.Time // stays nil when no contributing row had an end date
}

// VendorSummary is the per-vendor run artifact consumed by the reporting
// tools. The JSON shape is a stable contract.
type VendorSummary struct {
	Vendor           string      `json:"vendor"`
	ScopeSource      ScopeSource `json:"scope_source"`
	UsedCollectionID bool        `json:"used_collection_id"`
	CollectionIDs    []string    `json:"collection_ids,omitempty"`
	ProductsFound    int         `json:"products_found"`
	WillWrite        int         `json:"will_write"`
	WillDelete       int         `json:"will_delete"`
	Written          int         `json:"written"`
	Deleted          int         `json:"deleted"`
	Failed           int         `json:"failed,omitempty"`
}

// VendorCount is one row of the vendor count reports (cmd/vendor-counts)
type VendorCount struct {
	Vendor            string `json:"vendor"`
	CollectionMatched bool   `json:"collection_matched"`
	CollectionTitle   string `json:"collection_title,omitempty"`
	ProductsFound     int    `json:"products_found"`
	WillWrite         int    `json:"will_write"`
	WillDelete        int    `json:"will_delete"`
}
