package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/unionretail/promosync/pkg/errors"
)

func setShopifyCreds(t *testing.T) {
	t.Setenv("SHOPIFY_SHOP", "example.myshopify.com")
	t.Setenv("SHOPIFY_TOKEN", "shpat_test")
}

func TestLoad_Defaults(t *testing.T) {
	setShopifyCreds(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Promo.SalePreDays)
	assert.Equal(t, 15, cfg.Promo.PIPreDays)
	assert.Equal(t, 5, cfg.Promo.PIPostDays)
	assert.True(t, cfg.Run.DryRun, "dry run is the default, writes must be opted into")
	assert.False(t, cfg.Run.DBOnly)
	assert.InDelta(t, 0.12, cfg.Run.SleepBetweenCalls.Seconds(), 1e-6)
	assert.Equal(t, "2024-01", cfg.Shopify.APIVersion)
	assert.Equal(t, "5432", cfg.Database.Port)
}

func TestLoad_LegacyOffsetAliases(t *testing.T) {
	setShopifyCreds(t)
	t.Setenv("X_DAYS_BEFORE_SALE_START", "7")
	t.Setenv("PI_PRE_DAYS", "20")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Promo.SalePreDays)
	assert.Equal(t, 20, cfg.Promo.PIPreDays, "alias honored when primary name unset")
}

func TestLoad_PrimaryNameWinsOverAlias(t *testing.T) {
	setShopifyCreds(t)
	t.Setenv("Y_DAYS_BEFORE_PI_START", "10")
	t.Setenv("PI_PRE_DAYS", "99")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Promo.PIPreDays)
}

func TestLoad_NegativeOffsetRejected(t *testing.T) {
	setShopifyCreds(t)
	t.Setenv("Z_DAYS_AFTER_PI_START", "-1")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-negative")
}

func TestLoad_MissingShopifyCredentials(t *testing.T) {
	t.Setenv("SHOPIFY_SHOP", "")
	t.Setenv("SHOPIFY_TOKEN", "")
	t.Setenv("DB_ONLY", "0")

	_, err := Load()
	require.Error(t, err)

	var missing *apperrors.ErrMissingConfig
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "SHOPIFY_SHOP", missing.Key)
}

func TestLoad_DBOnlySkipsShopifyValidation(t *testing.T) {
	t.Setenv("SHOPIFY_SHOP", "")
	t.Setenv("SHOPIFY_TOKEN", "")
	t.Setenv("DB_ONLY", "1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Run.DBOnly)
}

func TestLoad_SleepBetweenCallsFloatSeconds(t *testing.T) {
	setShopifyCreds(t)
	t.Setenv("SLEEP_BETWEEN_CALLS", "0.5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, cfg.Run.SleepBetweenCalls)
}

func TestParseBool(t *testing.T) {
	assert.True(t, parseBool("1"))
	assert.True(t, parseBool("TRUE"))
	assert.True(t, parseBool(" yes "))
	assert.False(t, parseBool("0"))
	assert.False(t, parseBool(""))
	assert.False(t, parseBool("no"))
}
