package services

import (
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func newTestRegistry() *CacheRegistry {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewCacheRegistry(logger)
}

func TestGetOrRefreshFetchesOnceAndCaches(t *testing.T) {
	registry := newTestRegistry()
	registry.Register("source", time.Minute)

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return "payload", nil
	}

	value, err := registry.GetOrRefresh("source", fetch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "payload" {
		t.Fatalf("expected payload, got %v", value)
	}
	if calls != 1 {
		t.Fatalf("expected one fetch, got %d", calls)
	}

	if _, err := registry.GetOrRefresh("source", fetch); err != nil {
		t.Fatalf("unexpected error on fresh entry: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected fresh entry to skip the fetch, got %d calls", calls)
	}
}

func TestGetOrRefreshExpiry(t *testing.T) {
	registry := newTestRegistry()
	registry.Register("source", time.Minute)

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return calls, nil
	}

	if _, err := registry.GetOrRefresh("source", fetch); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	registry.entries["source"].LastRefreshedAt = time.Now().Add(-2 * time.Minute)

	value, err := registry.GetOrRefresh("source", fetch)
	if err != nil {
		t.Fatalf("unexpected error after expiry: %v", err)
	}
	if value != 2 {
		t.Errorf("expected expired entry to refetch, got %v", value)
	}
	if calls != 2 {
		t.Errorf("expected two fetches, got %d", calls)
	}
}

func TestGetOrRefreshFailureKeepsEntry(t *testing.T) {
	registry := newTestRegistry()
	registry.Register("source", time.Minute)

	if _, err := registry.GetOrRefresh("source", func() (interface{}, error) { return 41, nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	staleTime := time.Now().Add(-2 * time.Minute)
	registry.entries["source"].LastRefreshedAt = staleTime

	refreshErr := errors.New("upstream down")
	value, err := registry.GetOrRefresh("source", func() (interface{}, error) { return nil, refreshErr })
	if !errors.Is(err, refreshErr) {
		t.Fatalf("expected refresh error to propagate, got %v", err)
	}
	if value != 41 {
		t.Errorf("expected stale value 41, got %v", value)
	}

	entry := registry.entries["source"]
	if entry.Value != 41 {
		t.Errorf("expected entry value untouched, got %v", entry.Value)
	}
	if !entry.LastRefreshedAt.Equal(staleTime) {
		t.Errorf("expected refresh timestamp untouched, got %v", entry.LastRefreshedAt)
	}
}

func TestGetOrRefreshFailureWithoutValue(t *testing.T) {
	registry := newTestRegistry()
	registry.Register("source", time.Minute)

	refreshErr := errors.New("upstream down")
	value, err := registry.GetOrRefresh("source", func() (interface{}, error) { return nil, refreshErr })
	if !errors.Is(err, refreshErr) {
		t.Fatalf("expected refresh error to propagate, got %v", err)
	}
	if value != nil {
		t.Errorf("expected no value, got %v", value)
	}

	// A later success must still populate the entry
	value, err = registry.GetOrRefresh("source", func() (interface{}, error) { return 7, nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != 7 {
		t.Errorf("expected 7, got %v", value)
	}
}

func TestGetOrRefreshUnknownSource(t *testing.T) {
	registry := newTestRegistry()

	if _, err := registry.GetOrRefresh("missing", func() (interface{}, error) { return 1, nil }); err == nil {
		t.Error("expected unknown source to report an error")
	}
}

func TestRegisterKeepsValueOnReRegister(t *testing.T) {
	registry := newTestRegistry()
	registry.Register("source", time.Minute)

	if _, err := registry.GetOrRefresh("source", func() (interface{}, error) { return "kept", nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	registry.Register("source", time.Hour)

	entry := registry.entries["source"]
	if entry.TTL != time.Hour {
		t.Errorf("expected TTL updated to 1h, got %v", entry.TTL)
	}
	if entry.Value != "kept" {
		t.Errorf("expected cached value kept, got %v", entry.Value)
	}
}

func TestAgesOmitsNeverRefreshed(t *testing.T) {
	registry := newTestRegistry()
	registry.Register("warm", time.Minute)
	registry.Register("cold", time.Minute)

	if _, err := registry.GetOrRefresh("warm", func() (interface{}, error) { return 1, nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ages := registry.Ages()
	if _, ok := ages["warm"]; !ok {
		t.Error("expected warm source in ages")
	}
	if _, ok := ages["cold"]; ok {
		t.Error("expected never-refreshed source to be omitted")
	}
}

func TestSourcesSorted(t *testing.T) {
	registry := newTestRegistry()
	registry.Register("zeta", time.Minute)
	registry.Register("alpha", time.Minute)
	registry.Register("mid", time.Minute)

	sources := registry.Sources()
	expected := []string{"alpha", "mid", "zeta"}
	if len(sources) != len(expected) {
		t.Fatalf("expected %d sources, got %d", len(expected), len(sources))
	}
	for i := range expected {
		if sources[i] != expected[i] {
			t.Errorf("expected sources[%d]=%s, got %s", i, expected[i], sources[i])
		}
	}
}
