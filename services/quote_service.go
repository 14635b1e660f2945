package services

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avjpriceboard/priceboard-backend/models"
	"github.com/avjpriceboard/priceboard-backend/shared"
	"github.com/sirupsen/logrus"
)

// Symbols parsed out of the quote feed body.
const (
	goldSymbol   = "LLGUSD"
	silverSymbol = "LLSUSD"
)

// QuoteService fetches gold and silver prices from the quote feed. A fetch in
// which either symbol is missing or unparseable fails as a whole; snapshots
// are never partially populated.
type QuoteService struct {
	config  *shared.QuoteSourceConfig
	client  *http.Client
	utility *UtilityService
	logger  *logrus.Logger
}

// NewQuoteService creates a new quote feed gateway
func NewQuoteService(config *shared.QuoteSourceConfig, clientFactory *shared.HTTPClientFactory, utility *UtilityService) *QuoteService {
	return &QuoteService{
		config:  config,
		client:  clientFactory.CreateOptimizedHTTPClient(config.Timeout),
		utility: utility,
		logger:  logrus.New(),
	}
}

// FetchQuote reads the feed once and parses both symbols
func (s *QuoteService) FetchQuote() (*models.QuoteSnapshot, error) {
	start := time.Now()
	defer shared.ObserveUpstreamRequest(SourceQuotePrices, start)

	request, err := http.NewRequest(http.MethodGet, s.config.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build quote request: %w", err)
	}
	shared.SetBrowserLikeHeaders(request, "*/*")

	response, err := shared.ExecuteHTTPRequest(s.client, request)
	if err != nil {
		return nil, shared.WrapError(err, shared.ErrorCategoryNetwork, "QUOTE_FETCH_FAILED",
			"QuoteService", "FetchQuote").WithStatusTag(shared.StatusGoldSourceError)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, shared.WrapError(err, shared.ErrorCategoryNetwork, "QUOTE_READ_FAILED",
			"QuoteService", "FetchQuote").WithStatusTag(shared.StatusGoldSourceError)
	}

	text := strings.TrimSpace(string(body))

	gold, ok := s.utility.FindSymbolValue(text, goldSymbol)
	if !ok {
		return nil, shared.NewServiceError(
			shared.ErrorCategoryProcessing,
			"GOLD_SYMBOL_MISSING",
			"quote feed carried no parseable "+goldSymbol+" record",
			"QuoteService",
			"FetchQuote",
			nil,
		).WithStatusTag(shared.StatusGoldSourceError)
	}

	silver, ok := s.utility.FindSymbolValue(text, silverSymbol)
	if !ok {
		return nil, shared.NewServiceError(
			shared.ErrorCategoryProcessing,
			"SILVER_SYMBOL_MISSING",
			"quote feed carried no parseable "+silverSymbol+" record",
			"QuoteService",
			"FetchQuote",
			nil,
		).WithStatusTag(shared.StatusSilverSourceError)
	}

	return &models.QuoteSnapshot{Gold: gold, Silver: silver, FetchedAt: time.Now()}, nil
}
