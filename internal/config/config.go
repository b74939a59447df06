package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	apperrors "github.com/unionretail/promosync/pkg/errors"
)

type Config struct {
	Environment string
	LogLevel    string
	Database    DatabaseConfig
	Shopify     ShopifyConfig
	Promo       PromoConfig
	Run         RunConfig
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type ShopifyConfig struct {
	ShopDomain     string
	AccessToken    string
	APIVersion     string
	RequestTimeout time.Duration
}

// PromoConfig holds the three display-window offsets.
//   - SalePreDays (X): days before a Sale start to begin writing/keeping the metafields
//   - PIPreDays (Y): days before a Price Increase start to begin writing/keeping the metafields
//   - PIPostDays (Z): when a Price Increase has no end date, metafields are retained
//     until Z days after the start
//
// These only control whether metafields exist; the front-end display of dates
// is handled in Liquid templates.
type PromoConfig struct {
	SalePreDays int
	PIPreDays   int
	PIPostDays  int
}

type RunConfig struct {
	DryRun            bool
	DBOnly            bool // skip all remote calls, print plans only
	SleepBetweenCalls time.Duration
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")

	viper.AutomaticEnv()

	// .env file is optional, env vars alone are fine
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		LogLevel:    getEnvOrViper("LOG_LEVEL", "info"),
		Database: DatabaseConfig{
			Host:     getEnvOrViper("DB_HOST", "localhost"),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper("DB_NAME", "ecomm"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
		},
		Shopify: ShopifyConfig{
			ShopDomain:     strings.TrimSpace(getEnvOrViper("SHOPIFY_SHOP", "")),
			AccessToken:    strings.TrimSpace(getEnvOrViper("SHOPIFY_TOKEN", "")),
			APIVersion:     getEnvOrViper("SHOPIFY_API_VERSION", "2024-01"),
			RequestTimeout: time.Duration(getIntWithAliases(30, "REQUEST_TIMEOUT")) * time.Second,
		},
		Promo: PromoConfig{
			SalePreDays: getIntWithAliases(5, "X_DAYS_BEFORE_SALE_START", "SALE_PRE_DAYS"),
			PIPreDays:   getIntWithAliases(15, "Y_DAYS_BEFORE_PI_START", "PI_PRE_DAYS"),
			PIPostDays:  getIntWithAliases(5, "Z_DAYS_AFTER_PI_START", "PI_POST_DAYS"),
		},
		Run: RunConfig{
			DryRun:            parseBool(getEnvOrViper("DRY_RUN", "1")),
			DBOnly:            parseBool(getEnvOrViper("DB_ONLY", "0")),
			SleepBetweenCalls: time.Duration(getFloatOrDefault("SLEEP_BETWEEN_CALLS", 0.12) * float64(time.Second)),
		},
	}

	if cfg.Promo.SalePreDays < 0 || cfg.Promo.PIPreDays < 0 || cfg.Promo.PIPostDays < 0 {
		return nil, fmt.Errorf("promotion day offsets must be non-negative")
	}

	// Credentials are only required when we actually talk to Shopify
	if !cfg.Run.DBOnly {
		if cfg.Shopify.ShopDomain == "" {
			return nil, &apperrors.ErrMissingConfig{Key: "SHOPIFY_SHOP"}
		}
		if cfg.Shopify.AccessToken == "" {
			return nil, &apperrors.ErrMissingConfig{Key: "SHOPIFY_TOKEN"}
		}
	}

	return cfg, nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}

// getIntWithAliases reads the first set key among the given names. Later
// names are legacy aliases kept for existing deployments.
func getIntWithAliases(defaultValue int, keys ...string) int {
	for _, key := range keys {
		if raw := getEnvOrViper(key, ""); raw != "" {
			if v, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
				return v
			}
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if raw := getEnvOrViper(key, ""); raw != "" {
		if v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			return v
		}
	}
	return defaultValue
}

func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
