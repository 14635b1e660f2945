package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	ServerPort    string
	LogLevel      string
	AdminToken    string
	OverridesFile string

	QuoteAPIURL         string
	QuoteTimeoutSeconds string
	QuoteTTLSeconds     string

	TenantID     string
	ClientID     string
	ClientSecret string

	SharePointHost   string
	SitePath         string
	SettingsListName string
	SettingsColumn   string
	CertChargeColumn string
	XRatesListName   string
	XRatesRateField  string
	XRatesTypeField  string

	StorageTimeoutSeconds string
	StorageTTLSeconds     string
}

// GetQuoteTTL returns the quote cache window from environment or default
func (c *Config) GetQuoteTTL() time.Duration {
	if c.QuoteTTLSeconds == "" {
		return 15 * time.Second
	}

	seconds, err := strconv.Atoi(c.QuoteTTLSeconds)
	if err != nil {
		logrus.Warnf("Invalid QUOTE_TTL_SECONDS value: %s, using default 15 seconds", c.QuoteTTLSeconds)
		return 15 * time.Second
	}

	return time.Duration(seconds) * time.Second
}

// GetStorageTTL returns the list-storage cache window from environment or default
func (c *Config) GetStorageTTL() time.Duration {
	if c.StorageTTLSeconds == "" {
		return 300 * time.Second
	}

	seconds, err := strconv.Atoi(c.StorageTTLSeconds)
	if err != nil {
		logrus.Warnf("Invalid STORAGE_TTL_SECONDS value: %s, using default 300 seconds", c.StorageTTLSeconds)
		return 300 * time.Second
	}

	return time.Duration(seconds) * time.Second
}

// GetQuoteTimeout returns the quote feed HTTP timeout from environment or default
func (c *Config) GetQuoteTimeout() time.Duration {
	if c.QuoteTimeoutSeconds == "" {
		return 20 * time.Second
	}

	seconds, err := strconv.Atoi(c.QuoteTimeoutSeconds)
	if err != nil {
		logrus.Warnf("Invalid QUOTE_TIMEOUT_SECONDS value: %s, using default 20 seconds", c.QuoteTimeoutSeconds)
		return 20 * time.Second
	}

	return time.Duration(seconds) * time.Second
}

// GetStorageTimeout returns the list-storage HTTP timeout from environment or default
func (c *Config) GetStorageTimeout() time.Duration {
	if c.StorageTimeoutSeconds == "" {
		return 25 * time.Second
	}

	seconds, err := strconv.Atoi(c.StorageTimeoutSeconds)
	if err != nil {
		logrus.Warnf("Invalid STORAGE_TIMEOUT_SECONDS value: %s, using default 25 seconds", c.StorageTimeoutSeconds)
		return 25 * time.Second
	}

	return time.Duration(seconds) * time.Second
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		logrus.Warn("Error loading .env file, using system environment variables")
	}

	return &Config{
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		AdminToken:    getEnv("ADMIN_TOKEN", ""),
		OverridesFile: getEnv("OVERRIDES_FILE", "overrides.env"),

		QuoteAPIURL:         getEnv("QUOTE_API_URL", "https://www.successfn.com/wp-content/themes/neve/page-templates/getprice.php?site=cfgs"),
		QuoteTimeoutSeconds: getEnv("QUOTE_TIMEOUT_SECONDS", "20"),
		QuoteTTLSeconds:     getEnv("QUOTE_TTL_SECONDS", "15"),

		TenantID:     getEnv("TENANT_ID", ""),
		ClientID:     getEnv("CLIENT_ID", ""),
		ClientSecret: getEnv("CLIENT_SECRET", ""),

		SharePointHost:   getEnv("SP_HOST", "anvarluxuryjewellery.sharepoint.com"),
		SitePath:         getEnv("SP_SITE_PATH", "/sites/PRODUCTENTRY"),
		SettingsListName: getEnv("SP_LIST_NAME", "staffinstructions"),
		SettingsColumn:   getEnv("SP_COLUMN_NAME", "setval"),
		CertChargeColumn: getEnv("SP_CERTCHARGE_COLUMN", "certcharge"),
		XRatesListName:   getEnv("XRATES_LIST_NAME", "xrates"),
		XRatesRateField:  getEnv("XRATES_RATE_FIELD", "rate"),
		XRatesTypeField:  getEnv("XRATES_TYPE_FIELD", "type"),

		StorageTimeoutSeconds: getEnv("STORAGE_TIMEOUT_SECONDS", "25"),
		StorageTTLSeconds:     getEnv("STORAGE_TTL_SECONDS", "300"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
