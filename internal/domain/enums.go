package domain

// Category identifies which promotion banner a window belongs to
type Category string

const (
	// CategorySale - discount promotion, always has a terminal date in the source data
	CategorySale Category = "sale"
	// CategoryPriceIncrease - may be open-ended (no end date in the source)
	CategoryPriceIncrease Category = "price_increase"
)

// ScopeSource records how the product scope of a vendor was resolved
type ScopeSource string

const (
	// ScopeSourceCollection - scope is the union of products in the plan's collections
	ScopeSourceCollection ScopeSource = "collection_id"
	// ScopeSourceVendorFallback - no collection id in the DB, scope is products whose vendor matches
	ScopeSourceVendorFallback ScopeSource = "vendor_fallback"
)

// Metafield namespace and keys written to products on the storefront.
// Liquid templates read these four keys; changing them breaks the theme.
const (
	MetafieldNamespace = "custom"

	KeySaleStart = "promo_sale_start_date"
	KeySaleEnd   = "promo_sale_end_date"
	KeyPIStart   = "promo_pi_start_date"
	KeyPIEnd     = "promo_pi_end_date"
)

// SaleKeys returns the metafield keys of the sale banner
func SaleKeys() []string {
	return []string{KeySaleStart, KeySaleEnd}
}

// PriceIncreaseKeys returns the metafield keys of the price-increase banner
func PriceIncreaseKeys() []string {
	return []string{KeyPIStart, KeyPIEnd}
}
