package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/unionretail/promosync/internal/domain"
	"github.com/unionretail/promosync/internal/promo"
)

// PromotionRepository reads retail promotion facts
type PromotionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPromotionRepository(db *sql.DB, logger *zap.Logger) *PromotionRepository {
	return &PromotionRepository{db: db, logger: logger}
}

// activePromotionsQuery pre-filters rows to "active-ish today" with the same
// X/Y/Z offsets the window calculator uses, so downstream date math only
// refines eligibility instead of recomputing it. $1=X, $2=Y, $3=Z.
const activePromotionsQuery = `
SELECT
    id,
    vendor,
    collection_id,
    entry_type,
    date_of_start::date AS start_d,
    date_of_end::date   AS end_d
FROM sm_retail_sales
WHERE
(
    btrim(entry_type) = 'Sale'
    AND date_of_start IS NOT NULL
    AND date_of_end IS NOT NULL
    AND date_of_start::date - $1::int <= current_date
    AND date_of_end::date >= current_date
)
OR
(
    btrim(entry_type) = 'Price Increase'
    AND date_of_start IS NOT NULL
    AND date_of_start::date - $2::int <= current_date
    AND COALESCE(date_of_end::date, date_of_start::date + $3::int) >= current_date
)
`

// FetchActiveToday returns the promotion rows whose display window can
// overlap today. Rows missing vendor, entry type, or start date are
// discarded at the source.
func (r *PromotionRepository) FetchActiveToday(ctx context.Context, off promo.Offsets) ([]domain.PromotionRow, error) {
	rows, err := r.db.QueryContext(ctx, activePromotionsQuery, off.SalePreDays, off.PIPreDays, off.PIPostDays)
	if err != nil {
		return nil, fmt.Errorf("query active promotions: %w", err)
	}
	defer rows.Close()

	var out []domain.PromotionRow
	raw := 0
	for rows.Next() {
		raw++
		var (
			id           int
			vendor       sql.NullString
			collectionID sql.NullString
			entryType    sql.NullString
			startDate    sql.NullTime
			endDate      sql.NullTime
		)
		if err := rows.Scan(&id, &vendor, &collectionID, &entryType, &startDate, &endDate); err != nil {
			return nil, fmt.Errorf("scan promotion row: %w", err)
		}

		row := domain.PromotionRow{
			ID:        id,
			Vendor:    strings.TrimSpace(vendor.String),
			EntryType: strings.TrimSpace(entryType.String),
		}
		if collectionID.Valid {
			row.CollectionID = strings.TrimSpace(collectionID.String)
		}
		if row.Vendor == "" || row.EntryType == "" || !startDate.Valid {
			continue
		}
		row.StartDate = promo.DateOnly(startDate.Time)
		if endDate.Valid {
			e := promo.DateOnly(endDate.Time)
			row.EndDate = &e
		}

		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate promotion rows: %w", err)
	}

	r.logger.Debug("Fetched active promotions", zap.Int("raw_rows", raw), zap.Int("usable_rows", len(out)))
	return out, nil
}
