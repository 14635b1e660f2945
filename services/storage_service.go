package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/avjpriceboard/priceboard-backend/models"
	"github.com/avjpriceboard/priceboard-backend/shared"
	"github.com/sirupsen/logrus"
)

// StorageService reads board settings, exchange rates and discount rows from
// the Microsoft Graph list-storage service. The resolved site id is cached
// for process lifetime. Callers serialize access behind the board service's
// mutex.
type StorageService struct {
	config  *shared.ListStorageConfig
	tokens  *TokenService
	client  *http.Client
	utility *UtilityService
	logger  *logrus.Logger

	siteID string
}

// NewStorageService creates a new list-storage gateway
func NewStorageService(config *shared.ListStorageConfig, tokens *TokenService, clientFactory *shared.HTTPClientFactory, utility *UtilityService) *StorageService {
	return &StorageService{
		config:  config,
		tokens:  tokens,
		client:  clientFactory.CreateOptimizedHTTPClient(config.Timeout),
		utility: utility,
		logger:  logrus.New(),
	}
}

type siteResponse struct {
	ID string `json:"id"`
}

type itemResponse struct {
	Fields map[string]interface{} `json:"fields"`
}

type listResponse struct {
	Value []itemResponse `json:"value"`
}

// graphGet performs an authenticated GET and decodes the JSON reply into out
func (s *StorageService) graphGet(requestURL string, out interface{}) error {
	token, err := s.tokens.GetAccessToken()
	if err != nil {
		return err
	}

	request, err := http.NewRequest(http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build storage request: %w", err)
	}
	request.Header.Set("Authorization", "Bearer "+token)

	response, err := shared.ExecuteHTTPRequest(s.client, request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if err := json.NewDecoder(response.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode storage reply: %w", err)
	}

	return nil
}

// ResolveSiteID resolves the storage site id, caching it for process lifetime
func (s *StorageService) ResolveSiteID() (string, error) {
	if s.siteID != "" {
		return s.siteID, nil
	}

	start := time.Now()
	defer shared.ObserveUpstreamRequest("site", start)

	requestURL := fmt.Sprintf("%s/sites/%s:%s", s.config.GraphBase, s.config.Host, s.config.SitePath)

	var site siteResponse
	if err := s.graphGet(requestURL, &site); err != nil {
		return "", shared.WrapError(err, shared.ErrorCategoryNetwork, "SITE_RESOLVE_FAILED",
			"StorageService", "ResolveSiteID").WithStatusTag(shared.StatusSiteError)
	}

	if site.ID == "" {
		return "", shared.NewServiceError(
			shared.ErrorCategoryProcessing,
			"SITE_ID_MISSING",
			"storage reply carried no site id",
			"StorageService",
			"ResolveSiteID",
			nil,
		).WithStatusTag(shared.StatusSiteError)
	}

	s.siteID = site.ID
	s.logger.WithField("site_id", s.siteID).Info("Resolved storage site id")
	return s.siteID, nil
}

// FetchSettings reads the six board settings as raw strings keyed by slot
func (s *StorageService) FetchSettings(siteID string) (models.SettingsSnapshot, error) {
	start := time.Now()
	defer shared.ObserveUpstreamRequest(SourceSettings, start)

	settings := make(models.SettingsSnapshot)

	for _, slot := range models.BoardSlots() {
		value, err := s.fetchFieldValue(siteID, slot.ItemID, s.config.SettingsColumn)
		if err != nil {
			return nil, shared.WrapError(err, shared.ErrorCategoryNetwork, "SETTINGS_FETCH_FAILED",
				"StorageService", "FetchSettings").WithStatusTag(shared.StatusListError)
		}
		settings[slot.Key] = value
	}

	buyValue, err := s.fetchFieldValue(siteID, models.SilverBuyItemID, s.config.SettingsColumn)
	if err != nil {
		return nil, shared.WrapError(err, shared.ErrorCategoryNetwork, "SETTINGS_FETCH_FAILED",
			"StorageService", "FetchSettings").WithStatusTag(shared.StatusListError)
	}
	settings[models.KeySilverBuy] = buyValue

	sellValue, err := s.fetchFieldValue(siteID, models.SilverSellItemID, s.config.SettingsColumn)
	if err != nil {
		return nil, shared.WrapError(err, shared.ErrorCategoryNetwork, "SETTINGS_FETCH_FAILED",
			"StorageService", "FetchSettings").WithStatusTag(shared.StatusListError)
	}
	settings[models.KeySilverSell] = sellValue

	return settings, nil
}

// FetchRateRows reads the top rows of the exchange-rate list in upstream order
func (s *StorageService) FetchRateRows(siteID string) ([]models.RateRow, error) {
	start := time.Now()
	defer shared.ObserveUpstreamRequest(SourceRateTable, start)

	query := url.Values{}
	query.Set("$top", "10")
	query.Set("$orderby", "id asc")
	query.Set("expand", "fields")
	requestURL := fmt.Sprintf("%s/sites/%s/lists/%s/items?%s",
		s.config.GraphBase, siteID, s.config.XRatesList, query.Encode())

	var list listResponse
	if err := s.graphGet(requestURL, &list); err != nil {
		return nil, shared.WrapError(err, shared.ErrorCategoryNetwork, "XRATES_FETCH_FAILED",
			"StorageService", "FetchRateRows").WithStatusTag(shared.StatusXRatesError)
	}

	rows := make([]models.RateRow, 0, len(list.Value))
	for _, item := range list.Value {
		rows = append(rows, models.RateRow{
			Rate: s.utility.SafeString(item.Fields[s.config.XRatesRateField]),
			Type: s.utility.SafeString(item.Fields[s.config.XRatesTypeField]),
		})
	}

	return rows, nil
}

// FetchDiscountRows reads one discount section record by record in id order
func (s *StorageService) FetchDiscountRows(siteID string, section models.DiscountSection) ([]models.DiscountRow, error) {
	start := time.Now()
	defer shared.ObserveUpstreamRequest(DiscountSourceName(section.Name), start)

	rows := make([]models.DiscountRow, 0, section.LastID-section.FirstID+1)
	for itemID := section.FirstID; itemID <= section.LastID; itemID++ {
		fields, err := s.fetchItemFields(siteID, itemID)
		if err != nil {
			return nil, shared.WrapError(err, shared.ErrorCategoryNetwork, "DISCOUNTS_FETCH_FAILED",
				"StorageService", "FetchDiscountRows").WithStatusTag(shared.StatusDiscountsError)
		}

		rowType := s.utility.SafeString(fields["Title"])
		if rowType == "" {
			rowType = s.utility.SafeString(fields["title"])
		}

		rows = append(rows, models.DiscountRow{
			ID:         itemID,
			Type:       rowType,
			Disc:       s.utility.SafeString(fields[s.config.SettingsColumn]),
			CertCharge: s.utility.SafeString(fields[s.config.CertChargeColumn]),
		})
	}

	return rows, nil
}

// fetchFieldValue reads one column of one settings record as a string
func (s *StorageService) fetchFieldValue(siteID string, itemID int, column string) (string, error) {
	fields, err := s.fetchItemFields(siteID, itemID)
	if err != nil {
		return "", err
	}
	return s.utility.SafeString(fields[column]), nil
}

// fetchItemFields reads the expanded fields of one list record
func (s *StorageService) fetchItemFields(siteID string, itemID int) (map[string]interface{}, error) {
	requestURL := fmt.Sprintf("%s/sites/%s/lists/%s/items/%d?expand=fields",
		s.config.GraphBase, siteID, s.config.SettingsList, itemID)

	var item itemResponse
	if err := s.graphGet(requestURL, &item); err != nil {
		return nil, err
	}

	if item.Fields == nil {
		return map[string]interface{}{}, nil
	}
	return item.Fields, nil
}
