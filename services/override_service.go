package services

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/avjpriceboard/priceboard-backend/models"
	"github.com/avjpriceboard/priceboard-backend/shared"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// maxChangeLogEntries bounds the in-memory override change history.
const maxChangeLogEntries = 100

// OverrideService owns the local override store: named numeric values that
// take precedence over the upstream settings when the board is built.
// Updates are all-or-nothing and persisted to a flat key-value file rewritten
// wholesale on every accepted change. The store has its own lock and never
// touches the refresh cache.
type OverrideService struct {
	mutex    sync.RWMutex
	values   map[string]float64
	changes  []models.OverrideChange
	filePath string
	allowed  map[string]bool
	utility  *UtilityService
	logger   *logrus.Logger
}

// NewOverrideService creates the override store and loads any persisted
// values from filePath
func NewOverrideService(filePath string, utility *UtilityService) *OverrideService {
	allowed := map[string]bool{
		models.KeySilverBuy:  true,
		models.KeySilverSell: true,
	}
	for _, slot := range models.BoardSlots() {
		allowed[slot.Key] = true
	}

	s := &OverrideService{
		values:   make(map[string]float64),
		filePath: filePath,
		allowed:  allowed,
		utility:  utility,
		logger:   logrus.New(),
	}
	s.load()
	return s
}

// Apply validates and applies a batch of override updates. The batch is
// all-or-nothing: an unrecognized key or a non-numeric value rejects the
// whole request and leaves the store untouched. The new state is persisted
// before it becomes visible.
func (s *OverrideService) Apply(updates map[string]string) (*models.SetResult, error) {
	if len(updates) == 0 {
		return nil, shared.NewServiceError(
			shared.ErrorCategoryValidation,
			"EMPTY_UPDATE",
			"no override pairs supplied",
			"OverrideService",
			"Apply",
			nil,
		)
	}

	parsed := make(map[string]float64, len(updates))
	for key, rawValue := range updates {
		if !s.allowed[key] {
			return nil, shared.NewServiceError(
				shared.ErrorCategoryValidation,
				"UNKNOWN_KEY",
				fmt.Sprintf("unrecognized override key %q", key),
				"OverrideService",
				"Apply",
				nil,
			)
		}

		value, ok := s.utility.ParseLenientFloat(rawValue)
		if !ok {
			return nil, shared.NewServiceError(
				shared.ErrorCategoryValidation,
				"INVALID_VALUE",
				fmt.Sprintf("override %s carries a non-numeric value", key),
				"OverrideService",
				"Apply",
				nil,
			)
		}
		parsed[key] = value
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	next := make(map[string]float64, len(s.values)+len(parsed))
	for key, value := range s.values {
		next[key] = value
	}
	for key, value := range parsed {
		next[key] = value
	}

	if err := s.saveSnapshot(next); err != nil {
		return nil, shared.WrapError(err, shared.ErrorCategoryProcessing, "PERSIST_FAILED",
			"OverrideService", "Apply")
	}

	changeID := uuid.New()
	now := time.Now()
	applied := make([]string, 0, len(parsed))
	for key, value := range parsed {
		oldValue := ""
		if prior, exists := s.values[key]; exists {
			oldValue = strconv.FormatFloat(prior, 'f', -1, 64)
		}

		s.changes = append(s.changes, models.OverrideChange{
			ID:        changeID,
			Key:       key,
			OldValue:  oldValue,
			NewValue:  strconv.FormatFloat(value, 'f', -1, 64),
			Timestamp: now,
		})
		applied = append(applied, key)
	}
	sort.Strings(applied)

	if len(s.changes) > maxChangeLogEntries {
		s.changes = s.changes[len(s.changes)-maxChangeLogEntries:]
	}

	s.values = next

	s.logger.WithFields(logrus.Fields{
		"change_id": changeID,
		"keys":      applied,
	}).Info("Applied override update")

	return &models.SetResult{
		Status:   shared.StatusOK,
		ChangeID: changeID,
		Applied:  applied,
	}, nil
}

// Get returns the override for key when one is set
func (s *OverrideService) Get(key string) (float64, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	value, exists := s.values[key]
	return value, exists
}

// Snapshot returns a copy of all current overrides
func (s *OverrideService) Snapshot() map[string]float64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	snapshot := make(map[string]float64, len(s.values))
	for key, value := range s.values {
		snapshot[key] = value
	}
	return snapshot
}

// Changes returns a copy of the recent change history, oldest first
func (s *OverrideService) Changes() []models.OverrideChange {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	changes := make([]models.OverrideChange, len(s.changes))
	copy(changes, s.changes)
	return changes
}

// load reads the persisted store, skipping lines it cannot use
func (s *OverrideService) load() {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.WithError(err).Warn("Could not read overrides file")
		}
		return
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		key, rawValue, found := strings.Cut(line, "=")
		if !found {
			s.logger.WithField("line", line).Warn("Skipping malformed overrides line")
			continue
		}

		key = strings.TrimSpace(key)
		value, ok := s.utility.ParseLenientFloat(rawValue)
		if !s.allowed[key] || !ok {
			s.logger.WithField("line", line).Warn("Skipping unrecognized overrides line")
			continue
		}

		s.values[key] = value
	}

	if len(s.values) > 0 {
		s.logger.WithFields(logrus.Fields{
			"count": len(s.values),
			"file":  s.filePath,
		}).Info("Loaded persisted overrides")
	}
}

// saveSnapshot rewrites the store file wholesale through a temp file rename
func (s *OverrideService) saveSnapshot(values map[string]float64) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var builder strings.Builder
	for _, key := range keys {
		builder.WriteString(key)
		builder.WriteByte('=')
		builder.WriteString(strconv.FormatFloat(values[key], 'f', -1, 64))
		builder.WriteByte('\n')
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.filePath), filepath.Base(s.filePath)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary overrides file: %w", err)
	}

	if _, err := tmp.WriteString(builder.String()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write overrides file: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to sync overrides file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close overrides file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.filePath); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace overrides file: %w", err)
	}

	return nil
}
