package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"go.uber.org/zap"

	apperrors "github.com/unionretail/promosync/pkg/errors"
)

// vendorColumnCandidates are acceptable vendor column names, in preference
// order, for tables whose schema varies between environments
var vendorColumnCandidates = []string{"vendor", "vendorname", "name", "vendor_name"}

// VendorRepository lists distinct vendor names from master tables whose
// exact schema is not guaranteed (SM_Vendor vs VH_Vendors style tables)
type VendorRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewVendorRepository(db *sql.DB, logger *zap.Logger) *VendorRepository {
	return &VendorRepository{db: db, logger: logger}
}

// ListDistinctVendors returns the distinct, trimmed, non-empty vendor names
// of a table. It tries the expected "vendor" column first; when that fails it
// probes the table's columns and walks the candidate list in order, failing
// with ErrNoUsableColumn when nothing matches.
func (r *VendorRepository) ListDistinctVendors(ctx context.Context, table string) ([]string, error) {
	vendors, err := r.selectDistinct(ctx, table, "vendor")
	if err == nil {
		return vendors, nil
	}
	r.logger.Debug("Expected vendor column missing, probing table", zap.String("table", table), zap.Error(err))

	cols, err := r.probeColumns(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", table, err)
	}

	present := make(map[string]string, len(cols))
	for _, c := range cols {
		present[strings.ToLower(c)] = c
	}
	for _, candidate := range vendorColumnCandidates {
		if col, ok := present[candidate]; ok {
			return r.selectDistinct(ctx, table, col)
		}
	}

	return nil, &apperrors.ErrNoUsableColumn{Table: table, Tried: vendorColumnCandidates}
}

func (r *VendorRepository) selectDistinct(ctx context.Context, table, column string) ([]string, error) {
	query := fmt.Sprintf(
		"SELECT DISTINCT btrim(%[1]s) FROM %[2]s WHERE %[1]s IS NOT NULL AND btrim(%[1]s) <> ''",
		pq.QuoteIdentifier(column), pq.QuoteIdentifier(table),
	)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vendors []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		if v != "" {
			vendors = append(vendors, v)
		}
	}
	return vendors, rows.Err()
}

func (r *VendorRepository) probeColumns(ctx context.Context, table string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT 1", pq.QuoteIdentifier(table)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return rows.Columns()
}
