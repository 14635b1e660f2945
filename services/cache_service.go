package services

import (
	"sort"
	"time"

	"github.com/avjpriceboard/priceboard-backend/shared"
	"github.com/sirupsen/logrus"
)

// Source names for the refresh cache registry. Discount sections register
// one source each via DiscountSourceName.
const (
	SourceQuotePrices = "quote-prices"
	SourceSettings    = "settings"
	SourceRateTable   = "rate-table"
)

// DiscountSourceName returns the registry source name for a discount section
func DiscountSourceName(section string) string {
	return "discounts:" + section
}

// CacheEntry holds the last good value for one upstream source. Value and
// LastRefreshedAt are only overwritten by a successful refresh; a failed
// refresh leaves both untouched.
type CacheEntry struct {
	Value           interface{}
	LastRefreshedAt time.Time
	TTL             time.Duration
}

// HasValue reports whether the entry has seen at least one successful refresh
func (ce *CacheEntry) HasValue() bool {
	return ce.Value != nil
}

// Age returns the time since the last successful refresh
func (ce *CacheEntry) Age(now time.Time) time.Duration {
	return now.Sub(ce.LastRefreshedAt)
}

// IsFresh reports whether the cached value may be served without refreshing
func (ce *CacheEntry) IsFresh(now time.Time) bool {
	return ce.Value != nil && ce.Age(now) < ce.TTL
}

// CacheRegistry owns one refresh cache entry per upstream source. Entries
// live for process lifetime and are never evicted. The registry performs no
// locking of its own: callers serialize access behind the board service's
// process-wide mutex.
type CacheRegistry struct {
	entries map[string]*CacheEntry
	logger  *logrus.Logger
}

// NewCacheRegistry creates an empty cache registry
func NewCacheRegistry(logger *logrus.Logger) *CacheRegistry {
	return &CacheRegistry{
		entries: make(map[string]*CacheEntry),
		logger:  logger,
	}
}

// Register adds a source with its refresh window. Registering an existing
// source updates the window but keeps the cached value.
func (cr *CacheRegistry) Register(source string, ttl time.Duration) {
	if entry, exists := cr.entries[source]; exists {
		entry.TTL = ttl
		return
	}

	cr.entries[source] = &CacheEntry{TTL: ttl}

	cr.logger.WithFields(logrus.Fields{
		"source": source,
		"ttl":    ttl,
	}).Debug("Registered cache source")
}

// GetOrRefresh returns the cached value for source while it is fresh,
// otherwise calls fetch exactly once. On success the entry is overwritten and
// the new value returned. On failure the entry is left untouched and the
// previous value (possibly nil) is returned together with the error, so the
// caller can fall back to the stale value when one exists.
func (cr *CacheRegistry) GetOrRefresh(source string, fetch func() (interface{}, error)) (interface{}, error) {
	entry, exists := cr.entries[source]
	if !exists {
		return nil, shared.NewServiceError(
			shared.ErrorCategoryProcessing,
			"UNKNOWN_SOURCE",
			"cache source "+source+" is not registered",
			"CacheRegistry",
			"GetOrRefresh",
			nil,
		)
	}

	now := time.Now()
	if entry.IsFresh(now) {
		shared.CacheHitsTotal.WithLabelValues(source).Inc()
		return entry.Value, nil
	}

	shared.CacheMissesTotal.WithLabelValues(source).Inc()

	value, err := fetch()
	if err != nil {
		shared.CacheRefreshFailuresTotal.WithLabelValues(source).Inc()
		if entry.HasValue() {
			shared.CacheStaleServedTotal.WithLabelValues(source).Inc()
			cr.logger.WithFields(logrus.Fields{
				"source":    source,
				"value_age": entry.Age(now).String(),
			}).WithError(err).Warn("Refresh failed, serving stale value")
		} else {
			cr.logger.WithField("source", source).WithError(err).Error("Refresh failed with no cached value to fall back on")
		}
		return entry.Value, err
	}

	entry.Value = value
	entry.LastRefreshedAt = now
	return value, nil
}

// Ages returns the current value age per source, omitting sources that have
// never refreshed successfully
func (cr *CacheRegistry) Ages() map[string]time.Duration {
	now := time.Now()
	ages := make(map[string]time.Duration)
	for source, entry := range cr.entries {
		if entry.HasValue() {
			ages[source] = entry.Age(now)
		}
	}
	return ages
}

// Sources returns all registered source names in sorted order
func (cr *CacheRegistry) Sources() []string {
	sources := make([]string, 0, len(cr.entries))
	for source := range cr.entries {
		sources = append(sources, source)
	}
	sort.Strings(sources)
	return sources
}
