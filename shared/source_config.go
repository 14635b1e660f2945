package shared

import (
	"time"

	"github.com/sirupsen/logrus"
)

// QuoteSourceConfig holds configuration for the quote feed gateway
type QuoteSourceConfig struct {
	URL     string        `json:"url"`
	Timeout time.Duration `json:"timeout"`
}

// ListStorageConfig holds configuration for the Microsoft Graph list-storage
// gateway. AuthorityBase and GraphBase exist so tests can point the gateway
// at a local fake.
type ListStorageConfig struct {
	TenantID     string `json:"tenant_id"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"-"`

	AuthorityBase string `json:"authority_base"`
	GraphBase     string `json:"graph_base"`

	Host     string `json:"host"`
	SitePath string `json:"site_path"`

	SettingsList     string `json:"settings_list"`
	SettingsColumn   string `json:"settings_column"`
	CertChargeColumn string `json:"cert_charge_column"`

	XRatesList      string `json:"xrates_list"`
	XRatesRateField string `json:"xrates_rate_field"`
	XRatesTypeField string `json:"xrates_type_field"`

	Timeout time.Duration `json:"timeout"`
}

// NewDefaultQuoteSourceConfig returns production-ready defaults for the quote feed
func NewDefaultQuoteSourceConfig() *QuoteSourceConfig {
	return &QuoteSourceConfig{
		URL:     "https://www.successfn.com/wp-content/themes/neve/page-templates/getprice.php?site=cfgs",
		Timeout: 20 * time.Second,
	}
}

// NewDefaultListStorageConfig returns defaults for everything except credentials
func NewDefaultListStorageConfig() *ListStorageConfig {
	return &ListStorageConfig{
		AuthorityBase:    "https://login.microsoftonline.com",
		GraphBase:        "https://graph.microsoft.com/v1.0",
		Host:             "anvarluxuryjewellery.sharepoint.com",
		SitePath:         "/sites/PRODUCTENTRY",
		SettingsList:     "staffinstructions",
		SettingsColumn:   "setval",
		CertChargeColumn: "certcharge",
		XRatesList:       "xrates",
		XRatesRateField:  "rate",
		XRatesTypeField:  "type",
		Timeout:          25 * time.Second,
	}
}

// ValidateAndApplyDefaults validates configuration and applies defaults for invalid values
func (c *QuoteSourceConfig) ValidateAndApplyDefaults() {
	logger := logrus.WithField("component", "QuoteSourceConfig")

	if c.URL == "" {
		c.URL = NewDefaultQuoteSourceConfig().URL
		logger.Debug("Applied default QuoteSource.URL")
	}

	if c.Timeout <= 0 {
		c.Timeout = 20 * time.Second
		logger.Debug("Applied default QuoteSource.Timeout")
	}
}

// ValidateAndApplyDefaults validates configuration and applies defaults for
// invalid values. Credentials have no defaults and are required.
func (c *ListStorageConfig) ValidateAndApplyDefaults() error {
	logger := logrus.WithField("component", "ListStorageConfig")

	if c.TenantID == "" || c.ClientID == "" || c.ClientSecret == "" {
		return NewServiceError(
			ErrorCategoryConfiguration,
			"MISSING_CREDENTIALS",
			"TENANT_ID, CLIENT_ID and CLIENT_SECRET must be configured",
			"ListStorageConfig",
			"ValidateAndApplyDefaults",
			nil,
		)
	}

	defaults := NewDefaultListStorageConfig()

	if c.AuthorityBase == "" {
		c.AuthorityBase = defaults.AuthorityBase
		logger.Debug("Applied default ListStorage.AuthorityBase")
	}

	if c.GraphBase == "" {
		c.GraphBase = defaults.GraphBase
		logger.Debug("Applied default ListStorage.GraphBase")
	}

	if c.Host == "" {
		c.Host = defaults.Host
		logger.Debug("Applied default ListStorage.Host")
	}

	if c.SitePath == "" {
		c.SitePath = defaults.SitePath
		logger.Debug("Applied default ListStorage.SitePath")
	}

	if c.SettingsList == "" {
		c.SettingsList = defaults.SettingsList
		logger.Debug("Applied default ListStorage.SettingsList")
	}

	if c.SettingsColumn == "" {
		c.SettingsColumn = defaults.SettingsColumn
		logger.Debug("Applied default ListStorage.SettingsColumn")
	}

	if c.CertChargeColumn == "" {
		c.CertChargeColumn = defaults.CertChargeColumn
		logger.Debug("Applied default ListStorage.CertChargeColumn")
	}

	if c.XRatesList == "" {
		c.XRatesList = defaults.XRatesList
		logger.Debug("Applied default ListStorage.XRatesList")
	}

	if c.XRatesRateField == "" {
		c.XRatesRateField = defaults.XRatesRateField
		logger.Debug("Applied default ListStorage.XRatesRateField")
	}

	if c.XRatesTypeField == "" {
		c.XRatesTypeField = defaults.XRatesTypeField
		logger.Debug("Applied default ListStorage.XRatesTypeField")
	}

	if c.Timeout <= 0 {
		c.Timeout = 25 * time.Second
		logger.Debug("Applied default ListStorage.Timeout")
	}

	return nil
}
