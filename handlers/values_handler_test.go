package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/avjpriceboard/priceboard-backend/models"
	"github.com/avjpriceboard/priceboard-backend/services"
	"github.com/avjpriceboard/priceboard-backend/shared"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAdminToken = "secret-token"

// fakeQuote serves a mutable quote feed body
type fakeQuote struct {
	body   string
	status int
	server *httptest.Server
}

func newFakeQuote(t *testing.T) *fakeQuote {
	q := &fakeQuote{
		body:   "LLGUSD,4531.91\nLLSUSD,79.055\n",
		status: http.StatusOK,
	}
	q.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if q.status != http.StatusOK {
			w.WriteHeader(q.status)
			return
		}
		w.Write([]byte(q.body))
	}))
	t.Cleanup(q.server.Close)
	return q
}

// fakeGraph fakes the token endpoint and the list-storage surface
type fakeGraph struct {
	settings map[int]string
	failSite bool
	server   *httptest.Server
}

func newFakeGraph(t *testing.T) *fakeGraph {
	f := &fakeGraph{
		settings: map[int]string{
			1: `"100"`,
			2: `"200"`,
			3: `"300"`,
			4: `"400"`,
			5: `"-2.5"`,
			6: `"3.5"`,
		},
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeGraph) handle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.URL.Path == "/tenant/oauth2/v2.0/token":
		fmt.Fprint(w, `{"access_token":"tok","expires_in":3600}`)

	case r.URL.Path == "/sites/host.example:/sites/BOARD":
		if f.failSite {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"id":"site-123"}`)

	case r.URL.Path == "/sites/site-123/lists/xrates/items":
		fmt.Fprint(w, `{"value":[{"fields":{"rate":"83.10","type":"USD"}}]}`)

	case strings.HasPrefix(r.URL.Path, "/sites/site-123/lists/staffinstructions/items/"):
		id, err := strconv.Atoi(path.Base(r.URL.Path))
		if err != nil {
			http.NotFound(w, r)
			return
		}
		raw, ok := f.settings[id]
		if !ok {
			http.NotFound(w, r)
			return
		}
		fmt.Fprintf(w, `{"fields":{"setval":%s,"Title":"ROW %d","certcharge":"5"}}`, raw, id)

	default:
		http.NotFound(w, r)
	}
}

func newTestApp(t *testing.T) (*fiber.App, *fakeGraph, *fakeQuote, *services.OverrideService) {
	t.Helper()

	graph := newFakeGraph(t)
	quote := newFakeQuote(t)

	factory := shared.NewHTTPClientFactory(5 * time.Second)
	utility := services.NewUtilityService()

	quoteConfig := &shared.QuoteSourceConfig{
		URL:     quote.server.URL,
		Timeout: 5 * time.Second,
	}
	storageConfig := &shared.ListStorageConfig{
		TenantID:         "tenant",
		ClientID:         "client",
		ClientSecret:     "secret",
		AuthorityBase:    graph.server.URL,
		GraphBase:        graph.server.URL,
		Host:             "host.example",
		SitePath:         "/sites/BOARD",
		SettingsList:     "staffinstructions",
		SettingsColumn:   "setval",
		CertChargeColumn: "certcharge",
		XRatesList:       "xrates",
		XRatesRateField:  "rate",
		XRatesTypeField:  "type",
		Timeout:          5 * time.Second,
	}

	quotes := services.NewQuoteService(quoteConfig, factory, utility)
	tokens := services.NewTokenService(storageConfig, factory)
	storage := services.NewStorageService(storageConfig, tokens, factory, utility)
	overrides := services.NewOverrideService(filepath.Join(t.TempDir(), "overrides.env"), utility)

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	registry := services.NewCacheRegistry(logger)

	board := services.NewBoardService(registry, quotes, storage, services.NewValuationService(), overrides, utility,
		services.BoardTTLConfig{Quote: time.Minute, Storage: time.Minute})

	app := fiber.New()
	api := app.Group("/api")
	api.Get("/values", NewValuesHandler(board).GetValues)
	api.Get("/xrates", NewRatesHandler(board).GetRates)
	api.Get("/discounts/:section", NewDiscountsHandler(board).GetDiscounts)

	storeHandler := NewStoreHandler(overrides, testAdminToken)
	api.Get("/store", storeHandler.GetStore)
	api.Post("/set", storeHandler.SetOverrides)

	return app, graph, quote, overrides
}

func decodeValues(t *testing.T, resp *http.Response) models.ValuesPayload {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload models.ValuesPayload
	require.NoError(t, json.Unmarshal(body, &payload))
	return payload
}

func TestGetValuesEndToEnd(t *testing.T) {
	app, _, _, _ := newTestApp(t)
	v := services.NewValuationService()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/values", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	payload := decodeValues(t, resp)
	assert.Equal(t, shared.StatusOK, payload.Status)
	assert.Equal(t, "22EXCH", payload.TL.Tag)
	assert.Equal(t, "24EXCH", payload.BL.Tag)
	assert.Equal(t, "22CASH", payload.TR.Tag)
	assert.Equal(t, "24CASH", payload.BR.Tag)
	assert.Equal(t, v.FormatDisplayValue(v.ComputeSlotValue(4531.91, 100, true)), payload.TL.Value)
	assert.Equal(t, v.FormatDisplayValue(v.ComputeSlotValue(4531.91, 200, false)), payload.BL.Value)
	assert.Equal(t, v.FormatDisplayValue(v.ComputeDerivedValue(79.055, 2.5)), payload.SilverBuy)
	assert.Equal(t, v.FormatDisplayValue(v.ComputeDerivedValue(79.055, 3.5)), payload.SilverSell)
}

func TestGetValuesFieldNames(t *testing.T) {
	app, _, _, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/values", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &raw))
	for _, key := range []string{"status", "TL", "TR", "BL", "BR", "silver_buy", "silver_sell"} {
		assert.Contains(t, raw, key)
	}
}

func TestGetValuesMalformedQuoteFeed(t *testing.T) {
	app, _, quote, _ := newTestApp(t)
	quote.body = "<html>maintenance</html>"

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/values", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	payload := decodeValues(t, resp)
	assert.Equal(t, shared.StatusGoldSourceError, payload.Status)
	for _, slot := range []models.SlotValue{payload.TL, payload.TR, payload.BL, payload.BR} {
		assert.Equal(t, models.Placeholder, slot.Value)
	}
	assert.Equal(t, models.Placeholder, payload.SilverBuy)
	assert.Equal(t, models.Placeholder, payload.SilverSell)
}

func TestGetValuesPartialInvalidSetting(t *testing.T) {
	app, graph, _, _ := newTestApp(t)
	graph.settings[2] = `"not-a-number"`

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/values", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	payload := decodeValues(t, resp)
	assert.Equal(t, shared.StatusOK, payload.Status)
	assert.Equal(t, models.InvalidValue, payload.BL.Value)
	assert.NotEqual(t, models.InvalidValue, payload.TL.Value)
	assert.NotEqual(t, models.Placeholder, payload.TL.Value)
}
