//go:build ignore

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/avjpriceboard/priceboard-backend/config"
	"github.com/avjpriceboard/priceboard-backend/services"
	"github.com/avjpriceboard/priceboard-backend/shared"
)

func main() {
	fmt.Printf("🏥 Price Board Health Check - %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Println(strings.Repeat("=", 50))

	cfg := config.LoadConfig()

	quoteConfig := &shared.QuoteSourceConfig{
		URL:     cfg.QuoteAPIURL,
		Timeout: cfg.GetQuoteTimeout(),
	}
	quoteConfig.ValidateAndApplyDefaults()

	storageConfig := &shared.ListStorageConfig{
		TenantID:         cfg.TenantID,
		ClientID:         cfg.ClientID,
		ClientSecret:     cfg.ClientSecret,
		Host:             cfg.SharePointHost,
		SitePath:         cfg.SitePath,
		SettingsList:     cfg.SettingsListName,
		SettingsColumn:   cfg.SettingsColumn,
		CertChargeColumn: cfg.CertChargeColumn,
		XRatesList:       cfg.XRatesListName,
		XRatesRateField:  cfg.XRatesRateField,
		XRatesTypeField:  cfg.XRatesTypeField,
		Timeout:          cfg.GetStorageTimeout(),
	}
	storageReady := true
	if err := storageConfig.ValidateAndApplyDefaults(); err != nil {
		storageReady = false
	}

	clientFactory := shared.NewHTTPClientFactory(cfg.GetQuoteTimeout())
	utility := services.NewUtilityService()

	// Quick tests
	healthScore := 0
	totalTests := 4

	// Test 1: Quote feed
	fmt.Print("📡 Quote Feed: ")
	quotes := services.NewQuoteService(quoteConfig, clientFactory, utility)
	if snapshot, err := quotes.FetchQuote(); err != nil {
		fmt.Printf("❌ FAILED (%v)\n", err)
	} else {
		fmt.Printf("✅ OK (gold %.2f, silver %.4f)\n", snapshot.Gold, snapshot.Silver)
		healthScore++
	}

	// Test 2: Graph token
	fmt.Print("🔑 Graph Token: ")
	tokens := services.NewTokenService(storageConfig, clientFactory)
	if !storageReady {
		fmt.Println("❌ FAILED (credentials not configured)")
	} else if _, err := tokens.GetAccessToken(); err != nil {
		fmt.Printf("❌ FAILED (%v)\n", err)
	} else {
		fmt.Println("✅ OK")
		healthScore++
	}

	// Test 3: Site resolution
	fmt.Print("🗄️  Site Resolution: ")
	storage := services.NewStorageService(storageConfig, tokens, clientFactory, utility)
	siteID := ""
	if !storageReady {
		fmt.Println("❌ FAILED (credentials not configured)")
	} else if id, err := storage.ResolveSiteID(); err != nil {
		fmt.Printf("❌ FAILED (%v)\n", err)
	} else {
		fmt.Println("✅ OK")
		siteID = id
		healthScore++
	}

	// Test 4: Settings list
	fmt.Print("📊 Settings List: ")
	if siteID == "" {
		fmt.Println("❌ FAILED (no site id)")
	} else if settings, err := storage.FetchSettings(siteID); err != nil {
		fmt.Printf("❌ FAILED (%v)\n", err)
	} else {
		fmt.Printf("✅ OK (%d fields)\n", len(settings))
		healthScore++
	}

	// Overall health
	fmt.Println(strings.Repeat("-", 50))
	healthPercent := float64(healthScore) / float64(totalTests) * 100

	if healthScore == totalTests {
		fmt.Printf("🎉 SYSTEM HEALTHY: %d/%d tests passed (%.0f%%)\n", healthScore, totalTests, healthPercent)
	} else if healthScore >= totalTests/2 {
		fmt.Printf("⚠️  SYSTEM DEGRADED: %d/%d tests passed (%.0f%%)\n", healthScore, totalTests, healthPercent)
	} else {
		fmt.Printf("❌ SYSTEM UNHEALTHY: %d/%d tests passed (%.0f%%)\n", healthScore, totalTests, healthPercent)
	}

	fmt.Printf("⏰ Check completed at: %s\n", time.Now().Format("15:04:05"))
}
