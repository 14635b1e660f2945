package services

import (
	"strings"
	"sync"
	"time"

	"github.com/avjpriceboard/priceboard-backend/models"
	"github.com/avjpriceboard/priceboard-backend/shared"
	"github.com/sirupsen/logrus"
)

// BoardTTLConfig carries the per-source refresh windows.
type BoardTTLConfig struct {
	Quote   time.Duration
	Storage time.Duration
}

// BoardService builds the board payloads. One process-wide mutex serializes
// the whole check cache, fetch, update, compute sequence across all sources;
// upstream calls run to their fixed HTTP timeouts before the lock is
// released.
type BoardService struct {
	mutex     sync.Mutex
	registry  *CacheRegistry
	quotes    *QuoteService
	storage   *StorageService
	valuation *ValuationService
	overrides *OverrideService
	utility   *UtilityService
	logger    *logrus.Logger
}

// NewBoardService creates the board orchestration service and registers
// every cache source with its refresh window
func NewBoardService(
	registry *CacheRegistry,
	quotes *QuoteService,
	storage *StorageService,
	valuation *ValuationService,
	overrides *OverrideService,
	utility *UtilityService,
	ttl BoardTTLConfig,
) *BoardService {
	registry.Register(SourceQuotePrices, ttl.Quote)
	registry.Register(SourceSettings, ttl.Storage)
	registry.Register(SourceRateTable, ttl.Storage)
	for name := range models.DiscountSections() {
		registry.Register(DiscountSourceName(name), ttl.Storage)
	}

	return &BoardService{
		registry:  registry,
		quotes:    quotes,
		storage:   storage,
		valuation: valuation,
		overrides: overrides,
		utility:   utility,
		logger:    logrus.New(),
	}
}

// ValuesPayload builds the /api/values response under the board lock
func (s *BoardService) ValuesPayload() *models.ValuesPayload {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	siteID, err := s.storage.ResolveSiteID()
	if err != nil {
		return blankValues(shared.StatusTagOf(err, shared.StatusSiteError))
	}

	quote, err := s.refreshQuote()
	if err != nil {
		return blankValues(shared.StatusTagOf(err, shared.StatusGoldSourceError))
	}

	settings, err := s.refreshSettings(siteID)
	if err != nil {
		return blankValues(shared.StatusTagOf(err, shared.StatusListError))
	}

	payload := &models.ValuesPayload{Status: shared.StatusOK}

	for _, slot := range models.BoardSlots() {
		adjustment, ok := s.resolveSetting(slot.Key, settings[slot.Key])
		if !ok {
			setSlot(payload, slot.Key, models.SlotValue{Tag: slot.Tag, Value: models.InvalidValue})
			continue
		}

		value := s.valuation.ComputeSlotValue(quote.Gold, adjustment, slot.UseSecondary)
		setSlot(payload, slot.Key, models.SlotValue{Tag: slot.Tag, Value: s.valuation.FormatDisplayValue(value)})
	}

	if delta, ok := s.resolveSetting(models.KeySilverBuy, settings[models.KeySilverBuy]); ok {
		payload.SilverBuy = s.valuation.FormatDisplayValue(s.valuation.ComputeDerivedValue(quote.Silver, -delta))
	} else {
		payload.SilverBuy = models.InvalidValue
	}

	if delta, ok := s.resolveSetting(models.KeySilverSell, settings[models.KeySilverSell]); ok {
		payload.SilverSell = s.valuation.FormatDisplayValue(s.valuation.ComputeDerivedValue(quote.Silver, +delta))
	} else {
		payload.SilverSell = models.InvalidValue
	}

	return payload
}

// RatesPayload builds the /api/xrates response under the board lock
func (s *BoardService) RatesPayload() *models.RatesPayload {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	siteID, err := s.storage.ResolveSiteID()
	if err != nil {
		return &models.RatesPayload{
			Status: shared.StatusTagOf(err, shared.StatusSiteError),
			Items:  []models.RateRow{},
		}
	}

	rows, err := s.refreshRateRows(siteID)
	if err != nil {
		return &models.RatesPayload{
			Status: shared.StatusTagOf(err, shared.StatusXRatesError),
			Items:  []models.RateRow{},
		}
	}

	return &models.RatesPayload{Status: shared.StatusOK, Items: rows}
}

// DiscountsPayload builds the /api/discounts response for one section. The
// section name matches case-insensitively and is echoed back normalized; an
// unknown section reports INVALID SECTION before any upstream work happens.
func (s *BoardService) DiscountsPayload(rawSection string) *models.DiscountsPayload {
	sectionName := strings.ToUpper(strings.TrimSpace(rawSection))

	section, known := models.DiscountSections()[sectionName]
	if !known {
		return &models.DiscountsPayload{
			Status:  shared.StatusInvalidSection,
			Section: sectionName,
			Rows:    []models.DiscountRow{},
		}
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	siteID, err := s.storage.ResolveSiteID()
	if err != nil {
		return &models.DiscountsPayload{
			Status:  shared.StatusTagOf(err, shared.StatusSiteError),
			Section: sectionName,
			Rows:    []models.DiscountRow{},
		}
	}

	rows, err := s.refreshDiscountRows(siteID, section)
	if err != nil {
		return &models.DiscountsPayload{
			Status:  shared.StatusTagOf(err, shared.StatusDiscountsError),
			Section: sectionName,
			Rows:    []models.DiscountRow{},
		}
	}

	return &models.DiscountsPayload{Status: shared.StatusOK, Section: sectionName, Rows: rows}
}

// Warmup primes the values and rates caches by running the builders once
func (s *BoardService) Warmup() {
	values := s.ValuesPayload()
	rates := s.RatesPayload()

	s.logger.WithFields(logrus.Fields{
		"values_status": values.Status,
		"rates_status":  rates.Status,
	}).Info("Cache warmup complete")
}

// CacheAges reports the current per-source cache ages under the board lock
func (s *BoardService) CacheAges() map[string]time.Duration {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.registry.Ages()
}

// CacheSources lists the registered cache sources
func (s *BoardService) CacheSources() []string {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.registry.Sources()
}

// refreshQuote returns the current quote snapshot. A failed refresh falls
// back to the stale snapshot when one exists; the registry logs and counts
// the failure.
func (s *BoardService) refreshQuote() (*models.QuoteSnapshot, error) {
	value, err := s.registry.GetOrRefresh(SourceQuotePrices, func() (interface{}, error) {
		snapshot, fetchErr := s.quotes.FetchQuote()
		if fetchErr != nil {
			return nil, fetchErr
		}
		return snapshot, nil
	})
	if value == nil {
		return nil, err
	}
	return value.(*models.QuoteSnapshot), nil
}

// refreshSettings returns the current settings snapshot with stale fallback
func (s *BoardService) refreshSettings(siteID string) (models.SettingsSnapshot, error) {
	value, err := s.registry.GetOrRefresh(SourceSettings, func() (interface{}, error) {
		settings, fetchErr := s.storage.FetchSettings(siteID)
		if fetchErr != nil {
			return nil, fetchErr
		}
		return settings, nil
	})
	if value == nil {
		return nil, err
	}
	return value.(models.SettingsSnapshot), nil
}

// refreshRateRows returns the current rate table with stale fallback
func (s *BoardService) refreshRateRows(siteID string) ([]models.RateRow, error) {
	value, err := s.registry.GetOrRefresh(SourceRateTable, func() (interface{}, error) {
		rows, fetchErr := s.storage.FetchRateRows(siteID)
		if fetchErr != nil {
			return nil, fetchErr
		}
		return rows, nil
	})
	if value == nil {
		return nil, err
	}
	return value.([]models.RateRow), nil
}

// refreshDiscountRows returns one section's rows with stale fallback
func (s *BoardService) refreshDiscountRows(siteID string, section models.DiscountSection) ([]models.DiscountRow, error) {
	value, err := s.registry.GetOrRefresh(DiscountSourceName(section.Name), func() (interface{}, error) {
		rows, fetchErr := s.storage.FetchDiscountRows(siteID, section)
		if fetchErr != nil {
			return nil, fetchErr
		}
		return rows, nil
	})
	if value == nil {
		return nil, err
	}
	return value.([]models.DiscountRow), nil
}

// resolveSetting produces the numeric adjustment for a slot key, preferring
// a local override over the upstream raw string
func (s *BoardService) resolveSetting(key, raw string) (float64, bool) {
	if value, exists := s.overrides.Get(key); exists {
		return value, true
	}
	return s.utility.ParseLenientFloat(raw)
}

// blankValues builds the fully degraded payload for a status tag
func blankValues(status string) *models.ValuesPayload {
	payload := &models.ValuesPayload{
		Status:     status,
		SilverBuy:  models.Placeholder,
		SilverSell: models.Placeholder,
	}
	for _, slot := range models.BoardSlots() {
		setSlot(payload, slot.Key, models.SlotValue{Tag: slot.Tag, Value: models.Placeholder})
	}
	return payload
}

// setSlot writes one rendered cell into its payload position
func setSlot(payload *models.ValuesPayload, key string, value models.SlotValue) {
	switch key {
	case models.SlotTopLeft:
		payload.TL = value
	case models.SlotTopRight:
		payload.TR = value
	case models.SlotBottomLeft:
		payload.BL = value
	case models.SlotBottomRight:
		payload.BR = value
	}
}
