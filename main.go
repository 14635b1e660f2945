package main

import (
	"log"
	"strconv"
	"time"

	"github.com/avjpriceboard/priceboard-backend/config"
	"github.com/avjpriceboard/priceboard-backend/handlers"
	"github.com/avjpriceboard/priceboard-backend/jobs"
	"github.com/avjpriceboard/priceboard-backend/services"
	"github.com/avjpriceboard/priceboard-backend/shared"
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load config
	cfg := config.LoadConfig()

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	} else {
		log.Printf("Unknown log level %q, keeping default", cfg.LogLevel)
	}

	// Build upstream gateway configurations
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
	if err := storageConfig.ValidateAndApplyDefaults(); err != nil {
		log.Fatalf("Storage configuration invalid: %v", err)
	}

	// Initialize services
	clientFactory := shared.NewHTTPClientFactory(cfg.GetQuoteTimeout())
	utilityService := services.NewUtilityService()
	valuationService := services.NewValuationService()
	overrideService := services.NewOverrideService(cfg.OverridesFile, utilityService)
	tokenService := services.NewTokenService(storageConfig, clientFactory)
	storageService := services.NewStorageService(storageConfig, tokenService, clientFactory, utilityService)
	quoteService := services.NewQuoteService(quoteConfig, clientFactory, utilityService)

	cacheRegistry := services.NewCacheRegistry(logrus.New())
	boardService := services.NewBoardService(
		cacheRegistry,
		quoteService,
		storageService,
		valuationService,
		overrideService,
		utilityService,
		services.BoardTTLConfig{
			Quote:   cfg.GetQuoteTTL(),
			Storage: cfg.GetStorageTTL(),
		},
	)

	log.Println("Price board services initialized:")
	log.Printf("  - Quote feed (url: %s, timeout: %v, ttl: %v)",
		quoteConfig.URL, quoteConfig.Timeout, cfg.GetQuoteTTL())
	log.Printf("  - List storage (host: %s, site: %s, timeout: %v, ttl: %v)",
		storageConfig.Host, storageConfig.SitePath, storageConfig.Timeout, cfg.GetStorageTTL())
	log.Printf("  - Override store (file: %s)", cfg.OverridesFile)
	if cfg.AdminToken == "" {
		log.Println("ADMIN_TOKEN not set; POST /api/set is disabled")
	}

	// Initialize handlers
	valuesHandler := handlers.NewValuesHandler(boardService)
	ratesHandler := handlers.NewRatesHandler(boardService)
	discountsHandler := handlers.NewDiscountsHandler(boardService)
	storeHandler := handlers.NewStoreHandler(overrideService, cfg.AdminToken)
	pageHandler := handlers.NewPageHandler()

	// Warmup caches on startup
	go func() {
		time.Sleep(2 * time.Second) // Let the listener come up first
		boardService.Warmup()
	}()

	// Start the freshness sweep
	freshnessJob := jobs.NewFreshnessJob(boardService)
	freshnessJob.StartPeriodicUpdates(1 * time.Minute)

	// Setup Fiber
	app := fiber.New()

	// Middleware
	app.Use(logger.New())
	app.Use(cors.New())
	app.Use(func(c *fiber.Ctx) error {
		err := c.Next()
		shared.APIRequestsTotal.WithLabelValues(
			c.Route().Path,
			strconv.Itoa(c.Response().StatusCode()),
		).Inc()
		return err
	})

	// Display board page
	app.Get("/", pageHandler.GetBoard)

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"timestamp": time.Now().Unix(),
		})
	})

	// Prometheus metrics
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Routes
	api := app.Group("/api")

	api.Get("/values", valuesHandler.GetValues)
	api.Get("/xrates", ratesHandler.GetRates)
	api.Get("/discounts/:section", discountsHandler.GetDiscounts)
	api.Get("/store", storeHandler.GetStore)
	api.Post("/set", storeHandler.SetOverrides)

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
